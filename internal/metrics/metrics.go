package metrics

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the monitoring engine.
type Metrics struct {
	ReadingsTotal    prometheus.Counter
	SpectraTotal     prometheus.Counter
	BadLinesTotal    prometheus.Counter
	StreamReconnects prometheus.Counter
	IngestDrops      prometheus.Counter

	// Alarm engine metrics
	AlarmEventsTotal *prometheus.CounterVec // labels: transition
	ActiveAlarms     prometheus.Gauge
	EvalDur          prometheus.Histogram

	// Backpressure metrics
	BusPublishDrops      prometheus.Counter
	FanoutDropsTotal     *prometheus.CounterVec // labels: subscriber
	ChannelSaturationPct *prometheus.GaugeVec   // labels: channel_name

	// Notification metrics
	NotifyQueueDrops  prometheus.Counter
	WebhookDeliveries prometheus.Counter
	WebhookFailures   prometheus.Counter
	WebhookSendDur    prometheus.Histogram

	// Dashboard metrics
	DashboardClients prometheus.Gauge
}

// NewMetrics registers and returns all Prometheus metrics.
func NewMetrics() *Metrics {
	m := &Metrics{
		ReadingsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "monengine_readings_total",
			Help: "Total scalar sensor readings ingested",
		}),
		SpectraTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "monengine_spectra_total",
			Help: "Total FTIR spectra ingested",
		}),
		BadLinesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "monengine_bad_lines_total",
			Help: "Malformed NDJSON lines skipped by the receiver",
		}),
		StreamReconnects: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "monengine_stream_reconnects_total",
			Help: "Total TCP stream reconnection attempts",
		}),
		IngestDrops: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "monengine_ingest_drops_total",
			Help: "Readings dropped because the ingest queue was full",
		}),

		// Alarm engine
		AlarmEventsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "monengine_alarm_events_total",
			Help: "Total alarm events emitted (by transition)",
		}, []string{"transition"}),
		ActiveAlarms: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "monengine_active_alarms",
			Help: "Number of currently active alarm states",
		}),
		EvalDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "monengine_eval_duration_seconds",
			Help:    "Alarm evaluation latency per reading",
			Buckets: []float64{0.000001, 0.000005, 0.00001, 0.00005, 0.0001, 0.0005, 0.001},
		}),

		// Backpressure
		BusPublishDrops: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "monengine_bus_publish_drops_total",
			Help: "Alarm events dropped because the event bus was full",
		}),
		FanoutDropsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "monengine_fanout_drops_total",
			Help: "Alarm events dropped by FanOut bus per subscriber",
		}, []string{"subscriber"}),
		ChannelSaturationPct: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "monengine_channel_saturation_pct",
			Help: "Channel fill percentage (len/cap * 100)",
		}, []string{"channel_name"}),

		// Notification
		NotifyQueueDrops: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "monengine_notify_queue_drops_total",
			Help: "Notification events dropped because the delivery queue was full",
		}),
		WebhookDeliveries: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "monengine_webhook_deliveries_total",
			Help: "Successful notifier deliveries",
		}),
		WebhookFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "monengine_webhook_failures_total",
			Help: "Notifier deliveries that failed after all retries",
		}),
		WebhookSendDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "monengine_webhook_send_duration_seconds",
			Help:    "Webhook delivery latency including retries",
			Buckets: prometheus.DefBuckets,
		}),

		// Dashboard
		DashboardClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "monengine_dashboard_clients",
			Help: "Connected dashboard WebSocket clients",
		}),
	}

	prometheus.MustRegister(
		m.ReadingsTotal,
		m.SpectraTotal,
		m.BadLinesTotal,
		m.StreamReconnects,
		m.IngestDrops,
		m.AlarmEventsTotal,
		m.ActiveAlarms,
		m.EvalDur,
		m.BusPublishDrops,
		m.FanoutDropsTotal,
		m.ChannelSaturationPct,
		m.NotifyQueueDrops,
		m.WebhookDeliveries,
		m.WebhookFailures,
		m.WebhookSendDur,
		m.DashboardClients,
	)

	return m
}

// HealthStatus represents the system health.
type HealthStatus struct {
	mu sync.RWMutex

	StreamConnected bool      `json:"stream_connected"`
	LastReadingTime time.Time `json:"last_reading_time"`
	WebhookOK       bool      `json:"webhook_ok"`
	ActiveAlarms    int       `json:"active_alarms"`
	StartedAt       time.Time `json:"started_at"`

	// StaleAfter marks the stream degraded when it stays silent this long
	// even though the TCP connection is up.
	StaleAfter time.Duration `json:"-"`
}

// NewHealthStatus returns a default health status. The webhook is assumed
// healthy until a delivery fails.
func NewHealthStatus() *HealthStatus {
	return &HealthStatus{
		WebhookOK:  true,
		StartedAt:  time.Now(),
		StaleAfter: 10 * time.Second,
	}
}

func (h *HealthStatus) SetStreamConnected(v bool) {
	h.mu.Lock()
	h.StreamConnected = v
	h.mu.Unlock()
}

func (h *HealthStatus) SetLastReadingTime(t time.Time) {
	h.mu.Lock()
	h.LastReadingTime = t
	h.mu.Unlock()
}

func (h *HealthStatus) SetWebhookOK(v bool) {
	h.mu.Lock()
	h.WebhookOK = v
	h.mu.Unlock()
}

func (h *HealthStatus) SetActiveAlarms(n int) {
	h.mu.Lock()
	h.ActiveAlarms = n
	h.mu.Unlock()
}

// ServeHTTP handles the /healthz endpoint.
func (h *HealthStatus) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	// Determine overall status. A connected stream that has gone silent
	// past StaleAfter counts as down.
	streamOK := h.StreamConnected
	if streamOK && h.StaleAfter > 0 && !h.LastReadingTime.IsZero() &&
		time.Since(h.LastReadingTime) > h.StaleAfter {
		streamOK = false
	}

	overallStatus := "healthy"
	httpCode := http.StatusOK

	if !streamOK || !h.WebhookOK {
		overallStatus = "degraded"
		httpCode = http.StatusServiceUnavailable
	}
	if !streamOK && !h.WebhookOK {
		overallStatus = "unhealthy"
	}

	// Reading age
	readingAge := ""
	if !h.LastReadingTime.IsZero() {
		readingAge = time.Since(h.LastReadingTime).Round(time.Millisecond).String()
	}

	status := struct {
		Status          string `json:"status"`
		Uptime          string `json:"uptime"`
		StreamConnected bool   `json:"stream_connected"`
		LastReadingTime string `json:"last_reading_time"`
		ReadingAge      string `json:"reading_age"`
		WebhookOK       bool   `json:"webhook_ok"`
		ActiveAlarms    int    `json:"active_alarms"`
	}{
		Status:          overallStatus,
		Uptime:          time.Since(h.StartedAt).Round(time.Second).String(),
		StreamConnected: h.StreamConnected,
		LastReadingTime: h.LastReadingTime.Format(time.RFC3339),
		ReadingAge:      readingAge,
		WebhookOK:       h.WebhookOK,
		ActiveAlarms:    h.ActiveAlarms,
	}

	w.Header().Set("Content-Type", "application/json")
	if httpCode != http.StatusOK {
		w.WriteHeader(httpCode)
	}
	json.NewEncoder(w).Encode(status)
}

// Server runs an HTTP server exposing /metrics and /healthz.
type Server struct {
	health *HealthStatus
	addr   string
	srv    *http.Server
}

// NewServer creates a metrics and health server.
func NewServer(addr string, health *HealthStatus) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", health.ServeHTTP)

	return &Server{
		health: health,
		addr:   addr,
		srv: &http.Server{
			Addr:    addr,
			Handler: mux,
		},
	}
}

// Start launches the HTTP server in a goroutine.
func (s *Server) Start() {
	go func() {
		log.Printf("[metrics] server listening on %s", s.addr)
		if err := s.srv.ListenAndServe(); err != http.ErrServerClosed {
			log.Printf("[metrics] server error: %v", err)
		}
	}()
}

// Stop gracefully shuts down the metrics server.
func (s *Server) Stop(ctx context.Context) {
	s.srv.Shutdown(ctx)
}
