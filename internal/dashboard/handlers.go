package dashboard

import (
	"encoding/json"
	"log"
	"net/http"

	"monitoring-systemv1/internal/store"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin:       func(r *http.Request) bool { return true },
	EnableCompression: true,
}

// SetCORS sets CORS headers for REST endpoints.
func SetCORS(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
}

// RegisterRoutes registers the dashboard HTTP routes on the provided mux.
func RegisterRoutes(mux *http.ServeMux, hub *Hub, st *store.Store, b *Broadcaster) {
	// WebSocket endpoint
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("[dashboard] ws upgrade error: %v", err)
			return
		}
		hub.HandleConn(conn)
	})

	// REST: one-shot state snapshot
	mux.HandleFunc("/api/snapshot", func(w http.ResponseWriter, r *http.Request) {
		SetCORS(w)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(b.Snapshot())
	})

	// REST: full spectrum for one sensor
	mux.HandleFunc("/api/spectrum", func(w http.ResponseWriter, r *http.Request) {
		SetCORS(w)
		w.Header().Set("Content-Type", "application/json")

		sensor := r.URL.Query().Get("sensor")
		if sensor == "" {
			http.Error(w, `{"error":"sensor is required"}`, http.StatusBadRequest)
			return
		}
		sp, ok := st.LatestFtir(sensor)
		if !ok {
			http.Error(w, `{"error":"no spectrum for sensor"}`, http.StatusNotFound)
			return
		}
		json.NewEncoder(w).Encode(sp)
	})

	// REST: reset alarm history and lifecycle states
	mux.HandleFunc("/api/alarms/clear", func(w http.ResponseWriter, r *http.Request) {
		SetCORS(w)
		w.Header().Set("Content-Type", "application/json")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		if r.Method != "POST" {
			http.Error(w, `{"error":"method not allowed"}`, http.StatusMethodNotAllowed)
			return
		}

		st.ClearAlarmHistory()
		log.Println("[dashboard] alarm history cleared")
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})
}
