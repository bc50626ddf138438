// cmd/simserver — Demo sensor simulator.
// Publishes NDJSON sensor readings over TCP for testing monengine without
// real instrument hardware. Serves one client at a time; a new connection
// replaces the old one.
//
// The chamber, shaking table and FTNIR fault injection replace the control
// panel of the physical rig, driven here by flags:
//
//	-host / -port            listen address           (default 127.0.0.1:9009)
//	-chamber-power           chamber heater on        (default true)
//	-chamber-mode            HEAT or COOL             (default HEAT)
//	-chamber-setpoint        target temperature °C    (default 30.0)
//	-shake                   OFF/WEAK/MEDIUM/STRONG   (default OFF)
//	-enable-ftnir            emit FTNIR spectra       (default false)
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"monitoring-systemv1/internal/sim"
	"monitoring-systemv1/internal/transport"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds | log.Lshortfile)
	log.Println("[sim] starting sensor simulator...")

	host := flag.String("host", "127.0.0.1", "listen host")
	port := flag.Int("port", 9009, "listen port")
	chamberPower := flag.Bool("chamber-power", true, "chamber heater powered on")
	chamberMode := flag.String("chamber-mode", "HEAT", "chamber mode: HEAT or COOL")
	chamberSetpoint := flag.Float64("chamber-setpoint", sim.ChamberDefaultSetpointC, "chamber setpoint in °C")
	shake := flag.String("shake", "OFF", "shaking mode: OFF, WEAK, MEDIUM or STRONG")
	enableFtnir := flag.Bool("enable-ftnir", false, "emit FTNIR spectra")
	flag.Parse()

	device := sim.NewDeviceState()
	for name, enabled := range sim.DefaultEnabled() {
		device.RegisterSensor(name, enabled)
	}
	if *enableFtnir {
		device.SetSensorEnabled(sim.FtnirName, true)
	}
	device.SetChamberPower(*chamberPower)
	device.SetChamberMode(sim.ChamberMode(strings.ToUpper(*chamberMode)))
	device.SetChamberSetpoint(*chamberSetpoint)
	device.SetShakingMode(sim.ShakeMode(strings.ToUpper(*shake)))

	engine := sim.NewEngine(device, sim.DefaultSensors())

	srv := transport.NewPublishServer(*host, *port)
	if err := srv.Start(); err != nil {
		log.Fatalf("[sim] listen failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("[sim] shutting down...")
		cancel()
		srv.Close()
	}()

	log.Printf("[sim] chamber power=%v mode=%s setpoint=%.1f°C shake=%s ftnir=%v",
		*chamberPower, strings.ToUpper(*chamberMode), *chamberSetpoint,
		strings.ToUpper(*shake), *enableFtnir)

	publishLoop(ctx, srv, engine)
	log.Println("[sim] stopped.")
}

// publishLoop serves clients one at a time. Each iteration advances the
// engine by the real elapsed time and streams every emitted message.
func publishLoop(ctx context.Context, srv *transport.PublishServer, engine *sim.Engine) {
	for {
		if err := srv.AcceptOne(); err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Printf("[sim] accept failed: %v", err)
			return
		}

		log.Println("[sim] Streaming data.")
		last := time.Now()

		for ctx.Err() == nil {
			now := time.Now()
			dt := now.Sub(last).Seconds()
			last = now

			for _, msg := range engine.Step(now, dt) {
				if err := srv.Send(msg); err != nil {
					log.Printf("[sim] encode failed: %v", err)
				}
			}

			if !srv.HasClient() {
				break
			}
			time.Sleep(10 * time.Millisecond)
		}
	}
}
