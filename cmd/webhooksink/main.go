// cmd/webhooksink — Demo webhook receiver.
// Accepts alarm notifications from monengine and keeps them in a bounded
// in-memory list for inspection. Useful for acceptance runs without a real
// alarm endpoint.
//
// Config (env vars):
//
//	WEBHOOKSINK_ADDR     — listen address            (default ":8081")
//	WEBHOOK_TOKEN        — expected Bearer token     (default "dev-token")
//	WEB_UI_USER          — browser login username    (default "admin")
//	WEB_UI_PASS          — browser login password    (default "admin")
//	WEBHOOK_TOTP_SECRET  — when set, the login form also requires a valid
//	                       TOTP passcode for this secret
package main

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/pquerna/otp/totp"
)

const (
	maxEvents     = 1000
	recentLimit   = 200
	sessionCookie = "webhooksink_session"
	sessionTTL    = 12 * time.Hour
)

// receivedEvent is one delivered webhook body plus arrival time.
type receivedEvent struct {
	ReceivedAt string          `json:"received_at"`
	Body       json.RawMessage `json:"body"`
}

// ─── Event ring ───────────────────────────────────────────────────────────────

type eventRing struct {
	mu     sync.Mutex
	events []receivedEvent
}

func (r *eventRing) add(ev receivedEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	if len(r.events) > maxEvents {
		r.events = r.events[len(r.events)-maxEvents:]
	}
}

// recent returns up to recentLimit events, newest first, plus the ring size.
func (r *eventRing) recent() (int, []receivedEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := len(r.events)
	k := n
	if k > recentLimit {
		k = recentLimit
	}
	out := make([]receivedEvent, 0, k)
	for i := n - 1; i >= n-k; i-- {
		out = append(out, r.events[i])
	}
	return n, out
}

// ─── Sessions ─────────────────────────────────────────────────────────────────

type sessionStore struct {
	mu     sync.Mutex
	tokens map[string]time.Time
}

func newSessionStore() *sessionStore {
	return &sessionStore{tokens: make(map[string]time.Time)}
}

func (s *sessionStore) create() string {
	buf := make([]byte, 16)
	rand.Read(buf)
	tok := hex.EncodeToString(buf)
	s.mu.Lock()
	s.tokens[tok] = time.Now().Add(sessionTTL)
	s.mu.Unlock()
	return tok
}

func (s *sessionStore) valid(tok string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	exp, ok := s.tokens[tok]
	if !ok {
		return false
	}
	if time.Now().After(exp) {
		delete(s.tokens, tok)
		return false
	}
	return true
}

func (s *sessionStore) drop(tok string) {
	s.mu.Lock()
	delete(s.tokens, tok)
	s.mu.Unlock()
}

// ─── Server ───────────────────────────────────────────────────────────────────

type sinkServer struct {
	ring       *eventRing
	sessions   *sessionStore
	token      string
	uiUser     string
	uiPass     string
	totpSecret string
}

func (s *sinkServer) hasSession(r *http.Request) bool {
	c, err := r.Cookie(sessionCookie)
	return err == nil && s.sessions.valid(c.Value)
}

// authAPI allows either a browser session or a Bearer token. Writes the
// error response itself and reports whether the request may proceed.
func (s *sinkServer) authAPI(w http.ResponseWriter, r *http.Request) bool {
	if s.hasSession(r) {
		return true
	}
	auth := r.Header.Get("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		tok := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
		if tok == s.token {
			return true
		}
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "invalid token"})
		return false
	}
	writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
	return false
}

func (s *sinkServer) handleWebhook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if !s.authAPI(w, r) {
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil || !json.Valid(body) {
		body = []byte("{}")
	}
	s.ring.add(receivedEvent{
		ReceivedAt: time.Now().Format("2006-01-02T15:04:05"),
		Body:       json.RawMessage(body),
	})

	log.Printf("[webhooksink] alarm received: %.300s", body)
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *sinkServer) handleEvents(w http.ResponseWriter, r *http.Request) {
	if !s.authAPI(w, r) {
		return
	}
	count, recent := s.ring.recent()
	writeJSON(w, http.StatusOK, map[string]any{"count": count, "events": recent})
}

func (s *sinkServer) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodPost {
		user := r.FormValue("username")
		pass := r.FormValue("password")
		if user != s.uiUser || pass != s.uiPass {
			renderLogin(w, "Invalid username/password", s.totpSecret != "")
			return
		}
		if s.totpSecret != "" && !totp.Validate(r.FormValue("passcode"), s.totpSecret) {
			renderLogin(w, "Invalid passcode", true)
			return
		}
		http.SetCookie(w, &http.Cookie{
			Name:     sessionCookie,
			Value:    s.sessions.create(),
			Path:     "/",
			HttpOnly: true,
		})
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}
	renderLogin(w, "", s.totpSecret != "")
}

func (s *sinkServer) handleLogout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(sessionCookie); err == nil {
		s.sessions.drop(c.Value)
	}
	http.SetCookie(w, &http.Cookie{Name: sessionCookie, Value: "", Path: "/", MaxAge: -1})
	http.Redirect(w, r, "/login", http.StatusFound)
}

func (s *sinkServer) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if !s.hasSession(r) {
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, indexPage)
}

// ─── main ─────────────────────────────────────────────────────────────────────

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds | log.Lshortfile)
	log.Println("[webhooksink] starting demo webhook receiver...")

	addr := envOrDefault("WEBHOOKSINK_ADDR", ":8081")
	srv := &sinkServer{
		ring:       &eventRing{},
		sessions:   newSessionStore(),
		token:      envOrDefault("WEBHOOK_TOKEN", "dev-token"),
		uiUser:     envOrDefault("WEB_UI_USER", "admin"),
		uiPass:     envOrDefault("WEB_UI_PASS", "admin"),
		totpSecret: os.Getenv("WEBHOOK_TOTP_SECRET"),
	}
	if srv.totpSecret != "" {
		log.Println("[webhooksink] TOTP enabled for browser login")
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", srv.handleIndex)
	mux.HandleFunc("/webhook", srv.handleWebhook)
	mux.HandleFunc("/events", srv.handleEvents)
	mux.HandleFunc("/login", srv.handleLogin)
	mux.HandleFunc("/logout", srv.handleLogout)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "service": "webhooksink"})
	})

	log.Printf("[webhooksink] ✅ listening on %s  (POST http://localhost%s/webhook)", addr, addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatalf("[webhooksink] server error: %v", err)
	}
}

// ─── helpers ──────────────────────────────────────────────────────────────────

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func renderLogin(w http.ResponseWriter, errMsg string, withTOTP bool) {
	passcode := ""
	if withTOTP {
		passcode = `<label>Passcode <input name="passcode" autocomplete="one-time-code"></label>`
	}
	errLine := ""
	if errMsg != "" {
		errLine = `<p class="err">` + errMsg + `</p>`
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, loginPage, errLine, passcode)
}

const loginPage = `<!doctype html>
<html><head><title>webhooksink login</title>
<style>body{font-family:sans-serif;max-width:22em;margin:4em auto}label{display:block;margin:.6em 0}.err{color:#b00}</style>
</head><body>
<h2>webhooksink</h2>
%s
<form method="post" action="/login">
<label>Username <input name="username" autofocus></label>
<label>Password <input name="password" type="password"></label>
%s
<button type="submit">Sign in</button>
</form>
</body></html>
`

const indexPage = `<!doctype html>
<html><head><title>webhooksink</title>
<style>body{font-family:sans-serif;max-width:60em;margin:2em auto}pre{background:#f4f4f4;padding:.5em;overflow-x:auto}</style>
</head><body>
<h2>Received alarms</h2>
<p><a href="/logout">Log out</a></p>
<div id="events">loading...</div>
<script>
async function refresh() {
  const res = await fetch('/events');
  if (!res.ok) { document.getElementById('events').textContent = 'error ' + res.status; return; }
  const data = await res.json();
  const parts = data.events.map(e => '<pre>' + e.received_at + '\n' +
    JSON.stringify(e.body, null, 2).replace(/</g, '&lt;') + '</pre>');
  document.getElementById('events').innerHTML =
    '<p>' + data.count + ' event(s)</p>' + parts.join('');
}
refresh();
setInterval(refresh, 2000);
</script>
</body></html>
`

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
