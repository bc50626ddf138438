package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"monitoring-systemv1/config"
	"monitoring-systemv1/internal/alarm"
	"monitoring-systemv1/internal/bus"
	"monitoring-systemv1/internal/dashboard"
	"monitoring-systemv1/internal/metrics"
	"monitoring-systemv1/internal/model"
	"monitoring-systemv1/internal/notification"
	"monitoring-systemv1/internal/pipeline"
	"monitoring-systemv1/internal/store"
	"monitoring-systemv1/internal/transport"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds | log.Lshortfile)
	log.Println("[monengine] starting...")

	configPath := flag.String("config", "", "path to config.yaml (default: APP_CONFIG, exe dir, then cwd)")
	watchConfig := flag.Bool("watch-config", false, "re-apply scalar limit changes when the config file is edited")
	flag.Parse()

	// ---- Load config ----
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("[monengine] config load failed: %v", err)
	}
	log.Printf("[monengine] config loaded from %s (%d sensors)", cfg.Path, len(cfg.Sensors.ScalarConfigs))

	// ---- Seed the state store ----
	st := store.New()
	for _, sc := range cfg.Sensors.ScalarConfigs {
		st.SetConfig(sc)
	}

	// ---- Build alarm criteria ----
	var criteria []alarm.Criteria
	if cfg.Alarms.EnableScalarLimits {
		criteria = append(criteria, alarm.ScalarLimit{})
	}
	if td := cfg.Alarms.TempDiff; td != nil {
		criteria = append(criteria, alarm.TempDiff{
			SensorLower: td.SensorLower,
			SensorUpper: td.SensorUpper,
			MaxDelta:    td.MaxDelta,
		})
	}
	if fp := cfg.Alarms.FtirPeakShift; fp != nil {
		fc := alarm.NewFtirPeakShift(fp.SensorName, fp.ExpectedPeaksNm, fp.MaxAllowedShiftNm)
		fc.SearchWindowNm = fp.SearchWindowNm
		fc.RequireLengthMatch = *fp.RequireLengthMatch
		criteria = append(criteria, fc)
	}
	engine := alarm.NewEngine(criteria, cfg.Alarms.ValueEps)

	// ---- Pipeline channels ----
	readingsCh := make(chan any, 5000)
	eventsCh := make(chan model.AlarmEvent, 5000)

	// ---- Metrics & health ----
	prom := metrics.NewMetrics()
	health := metrics.NewHealthStatus()
	metricsSrv := metrics.NewServer(cfg.MetricsAddr, health)
	metricsSrv.Start()

	// ---- Context for graceful shutdown ----
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	// ---- Notification worker ----
	var notifiers []notification.Notifier
	notifiers = append(notifiers, notification.NewWebhookNotifier(notification.WebhookConfig{
		URL:        cfg.Webhook.URL,
		AuthHeader: cfg.Webhook.AuthorizationHeader(),
		Timeout:    cfg.Webhook.Timeout(),
		VerifyTLS:  cfg.Webhook.VerifyTLS,
	}))
	if token := os.Getenv("TELEGRAM_BOT_TOKEN"); token != "" {
		if chatID := os.Getenv("TELEGRAM_CHAT_ID"); chatID != "" {
			notifiers = append(notifiers, notification.NewTelegramNotifier(token, chatID))
			log.Println("[monengine] telegram notifier enabled")
		}
	}
	if strings.EqualFold(getEnv("NOTIFY_LOG", "false"), "true") {
		notifiers = append(notifiers, notification.NewLogNotifier())
	}

	notifyWorker := notification.NewWorker(notifiers, notification.WorkerConfig{})
	notifyWorker.OnDrop = func() { prom.NotifyQueueDrops.Inc() }
	notifyWorker.OnDelivered = func(d time.Duration) {
		prom.WebhookDeliveries.Inc()
		prom.WebhookSendDur.Observe(d.Seconds())
		health.SetWebhookOK(true)
	}
	notifyWorker.OnFailed = func() {
		prom.WebhookFailures.Inc()
		health.SetWebhookOK(false)
	}

	// The notifier runs on its own context so queued deliveries can drain
	// after the pipeline stops.
	notifyCtx, notifyCancel := context.WithCancel(context.Background())
	defer notifyCancel()
	notifyDone := make(chan struct{})
	go func() {
		defer close(notifyDone)
		notifyWorker.Run(notifyCtx)
	}()

	// ---- Fan-out for alarm events (notify + dashboard) ----
	fan := bus.New(5000)
	fan.OnDrop = func(subscriberIdx int) {
		prom.FanoutDropsTotal.WithLabelValues(strconv.Itoa(subscriberIdx)).Inc()
	}
	notifyIn := fan.Subscribe()
	dashIn := fan.Subscribe()
	go fan.Run(ctx, eventsCh)

	// ---- Controller + alarm worker + notify adapter ----
	controller := pipeline.NewController(st, engine, eventsCh)
	controller.OnPublishDrop = func() { prom.BusPublishDrops.Inc() }
	controller.OnEvent = func(ev model.AlarmEvent) {
		prom.AlarmEventsTotal.WithLabelValues(string(ev.Transition)).Inc()
	}

	alarmWorker := pipeline.NewWorker(controller)
	alarmWorker.OnHandled = func(d time.Duration) { prom.EvalDur.Observe(d.Seconds()) }

	adapter := pipeline.NewAdapter(st, notifyWorker)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		alarmWorker.Run(ctx, readingsCh)
	}()
	wg.Add(1)
	go func() {
		defer wg.Done()
		adapter.Run(ctx, notifyIn)
	}()

	// ---- Dashboard ----
	hub := dashboard.NewHub()
	hub.OnClientCount = func(n int) { prom.DashboardClients.Set(float64(n)) }
	history := dashboard.NewHistory(cfg.PlotWindow())
	broadcaster := dashboard.NewBroadcaster(hub, st, history)
	go broadcaster.Run(ctx, dashIn)

	dashMux := http.NewServeMux()
	dashboard.RegisterRoutes(dashMux, hub, st, broadcaster)
	dashSrv := &http.Server{Addr: cfg.DashboardAddr, Handler: dashMux}
	go func() {
		log.Printf("[monengine] dashboard listening on %s", cfg.DashboardAddr)
		if err := dashSrv.ListenAndServe(); err != http.ErrServerClosed {
			log.Printf("[monengine] dashboard server error: %v", err)
		}
	}()

	// ---- Queue saturation + active alarm sampler ----
	go func() {
		ticker := time.NewTicker(5 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				prom.ChannelSaturationPct.WithLabelValues("readings").
					Set(float64(len(readingsCh)) / float64(cap(readingsCh)) * 100)
				prom.ChannelSaturationPct.WithLabelValues("events").
					Set(float64(len(eventsCh)) / float64(cap(eventsCh)) * 100)
				if qlen, qcap := notifyWorker.QueueStats(); qcap > 0 {
					prom.ChannelSaturationPct.WithLabelValues("notify").
						Set(float64(qlen) / float64(qcap) * 100)
				}
				for i, s := range fan.ChannelStats() {
					if s.Cap > 0 {
						pct := float64(s.Len) / float64(s.Cap) * 100
						prom.ChannelSaturationPct.WithLabelValues("fanout_" + strconv.Itoa(i)).Set(pct)
					}
				}
				active := len(st.ActiveAlarmStates())
				prom.ActiveAlarms.Set(float64(active))
				health.SetActiveAlarms(active)
			}
		}
	}()

	// ---- Receiver ----
	recv := transport.NewReceiver(transport.ReceiverConfig{
		Host:           cfg.Transport.Host,
		Port:           cfg.Transport.Port,
		DialTimeout:    cfg.Transport.DialTimeout(),
		ReconnectDelay: cfg.Transport.ReconnectDelay(),
	})
	recv.OnReconnect = func() {
		prom.StreamReconnects.Inc()
		health.SetStreamConnected(false)
	}
	recv.OnDecoded = func(msg any) {
		switch msg.(type) {
		case model.SensorReading:
			prom.ReadingsTotal.Inc()
		case model.FtirReading:
			prom.SpectraTotal.Inc()
		}
		health.SetStreamConnected(true)
		health.SetLastReadingTime(time.Now())
	}
	recv.OnBadLine = func() { prom.BadLinesTotal.Inc() }
	recv.OnDrop = func() { prom.IngestDrops.Inc() }

	go func() {
		if err := recv.Start(ctx, readingsCh); err != nil {
			log.Printf("[monengine] receiver error: %v", err)
			health.SetStreamConnected(false)
		}
	}()

	// ---- Config watcher ----
	if *watchConfig {
		if err := config.Watch(ctx, cfg.Path, st); err != nil {
			log.Printf("[monengine] WARNING: config watcher disabled: %v", err)
		} else {
			log.Printf("[monengine] watching %s for scalar limit changes", cfg.Path)
		}
	}

	streamAddr := fmt.Sprintf("%s:%d", cfg.Transport.Host, cfg.Transport.Port)
	log.Println("[monengine] ╔════════════════════════════════════════════════════════════════╗")
	log.Println("[monengine] ║  Sensor Monitoring Engine                                      ║")
	log.Println("[monengine] ║                                                                ║")
	log.Println("[monengine] ║  [TCP NDJSON] → [Alarm Engine] → [Webhook + Dashboard]         ║")
	log.Printf("[monengine] ║  Stream: %-53s ║", streamAddr)
	log.Printf("[monengine] ║  Sensors: %-51d  ║", len(cfg.Sensors.ScalarConfigs))
	log.Printf("[monengine] ║  Criteria: %-51d ║", len(criteria))
	log.Println("[monengine] ╚════════════════════════════════════════════════════════════════╝")

	// ---- Wait for shutdown signal ----
	<-sigCh
	log.Println("[monengine] shutdown signal received, cleaning up...")
	cancel()

	// Bounded join for the pipeline workers.
	pipelineDone := make(chan struct{})
	go func() {
		wg.Wait()
		close(pipelineDone)
	}()
	select {
	case <-pipelineDone:
	case <-time.After(2 * time.Second):
		log.Println("[monengine] pipeline drain timed out")
	}

	// Let queued notifications finish briefly before the hard stop.
	notifyWorker.Stop()
	select {
	case <-notifyDone:
	case <-time.After(2 * time.Second):
		log.Println("[monengine] notifier drain timed out")
		notifyCancel()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	metricsSrv.Stop(shutdownCtx)
	dashSrv.Shutdown(shutdownCtx)

	log.Println("[monengine] shutdown complete.")
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
