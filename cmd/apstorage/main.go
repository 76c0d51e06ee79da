// cmd/apstorage/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/tamzrod/apstorage-modbus/internal/config"
	"github.com/tamzrod/apstorage-modbus/internal/metrics"
	"github.com/tamzrod/apstorage-modbus/internal/poller"
	"github.com/tamzrod/apstorage-modbus/internal/register"
	"github.com/tamzrod/apstorage-modbus/internal/status"
	tmodbus "github.com/tamzrod/apstorage-modbus/internal/transport/modbus"
	"github.com/tamzrod/apstorage-modbus/internal/writer"
	wmqtt "github.com/tamzrod/apstorage-modbus/internal/writer/mqtt"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: apstorage <config.yaml>")
		os.Exit(2)
	}

	// --------------------
	// Load + validate config
	// --------------------

	cfg, err := config.Load(os.Args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}
	if err := config.Validate(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "config validation failed: %v\n", err)
		os.Exit(1)
	}
	config.Normalize(cfg)

	log := newLogger(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("apstorage stopped")
	}
}

func newLogger(c config.LogConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(c.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}

	var log zerolog.Logger
	if c.Pretty {
		log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	} else {
		log = zerolog.New(os.Stderr)
	}
	return log.Level(level).With().Timestamp().Logger()
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	log = log.With().Str("device", cfg.Device.ID).Logger()
	cat := register.Default()

	// ---- transport ----
	port, err := tmodbus.Build(cfg.Device, log)
	if err != nil {
		return fmt.Errorf("transport build failed: %w", err)
	}

	// ---- metrics (optional) ----
	var (
		p         *poller.Poller
		collector *metrics.Collector
		rec       poller.Recorder
		writers   []writer.Writer
	)
	if cfg.Metrics != nil {
		collector = metrics.New(cfg.Device.ID, cat, func() status.Health { return p.Health() })
		rec = collector
		writers = append(writers, collector)
	}

	// ---- poller ----
	p, err = poller.New(poller.Config{
		Device:           cfg.Device.ID,
		Interval:         cfg.Poll.Interval(),
		Catalog:          cat,
		FailureThreshold: cfg.Poll.FailureThreshold,
		Logger:           log,
		Recorder:         rec,
	}, port)
	if err != nil {
		return fmt.Errorf("poller build failed: %w", err)
	}

	if !p.Initialize() {
		return errors.New("device initialization failed")
	}

	// ---- mqtt (optional) ----
	var mw *wmqtt.Writer
	if cfg.MQTT != nil {
		mc, err := wmqtt.Dial(*cfg.MQTT)
		if err != nil {
			return err
		}
		defer mc.Disconnect(250)

		mw, err = wmqtt.New(wmqtt.Config{
			Device:  cfg.Device.ID,
			Prefix:  cfg.MQTT.TopicPrefix,
			QoS:     cfg.MQTT.QoS,
			Retain:  cfg.MQTT.Retain,
			Catalog: cat,
			Logger:  log,
		}, mc)
		if err != nil {
			return err
		}
		writers = append(writers, mw)

		if cfg.MQTT.Commands {
			if err := mw.ServeCommands(p); err != nil {
				return err
			}
			defer func() {
				if err := mw.StopCommands(); err != nil {
					log.Warn().Err(err).Msg("mqtt unsubscribe failed")
				}
			}()
		}
	}

	if collector != nil {
		mux := http.NewServeMux()
		mux.Handle(cfg.Metrics.Path, collector.Handler())
		srv := &http.Server{Addr: cfg.Metrics.Listen, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

		go func() {
			log.Info().Str("listen", cfg.Metrics.Listen).Str("path", cfg.Metrics.Path).Msg("metrics listening")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error().Err(err).Msg("metrics server failed")
			}
		}()
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = srv.Shutdown(sctx)
		}()
	}

	// ---- delivery ----
	id, ch := p.Subscribe()
	delivered := make(chan struct{})
	go func() {
		defer close(delivered)
		writer.Deliver(context.Background(), ch, writer.Multi(writers...), log)
	}()

	log.Info().
		Str("endpoint", cfg.Device.Endpoint()).
		Dur("interval", cfg.Poll.Interval()).
		Int("registers", cat.Len()).
		Msg("polling started")

	// Run closes every subscription on return, which ends delivery.
	err = p.Run(ctx)
	p.Unsubscribe(id)
	<-delivered

	if mw != nil {
		if err := mw.Offline(); err != nil {
			log.Warn().Err(err).Msg("mqtt offline publish failed")
		}
	}
	return err
}
