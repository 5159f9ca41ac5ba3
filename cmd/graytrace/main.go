// Graytrace records automation runs published over MQTT and serves their
// reconstructed, human-readable timelines over HTTP and WebSocket.
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

	"github.com/nerrad567/gray-logic-trace/internal/api"
	"github.com/nerrad567/gray-logic-trace/internal/describe"
	"github.com/nerrad567/gray-logic-trace/internal/i18n"
	"github.com/nerrad567/gray-logic-trace/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-trace/internal/infrastructure/database"
	"github.com/nerrad567/gray-logic-trace/internal/infrastructure/influxdb"
	"github.com/nerrad567/gray-logic-trace/internal/infrastructure/logging"
	"github.com/nerrad567/gray-logic-trace/internal/infrastructure/mqtt"
	"github.com/nerrad567/gray-logic-trace/internal/logbook"
	"github.com/nerrad567/gray-logic-trace/internal/recorder"
	"github.com/nerrad567/gray-logic-trace/internal/store"
	"github.com/nerrad567/gray-logic-trace/internal/timeline"
	"github.com/nerrad567/gray-logic-trace/internal/viewer"
	"github.com/nerrad567/gray-logic-trace/migrations"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

const defaultConfigPath = "configs/config.yaml"

const day = 24 * time.Hour

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run wires every component and blocks until ctx is cancelled. Deferred
// closes run in reverse start order.
func run(ctx context.Context) error {
	log := logging.Default()
	log.Info("starting graytrace",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log = logging.New(cfg.Logging, version)
	log.Info("configuration loaded", "path", configPath, "site", cfg.Site.ID)

	db, err := database.Open(database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	if migrateErr := db.Migrate(ctx, migrations.FS); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database ready", "path", cfg.Database.Path)

	traces := store.NewTraceRepository(db.DB)
	entries := store.NewLogbookRepository(db.DB)

	timelines, bundle, err := newTimelineService(cfg, traces, entries)
	if err != nil {
		return err
	}
	log.Info("timeline service ready",
		"locales", bundle.Locales(),
		"default_locale", cfg.Timeline.Locale,
		"timezone", cfg.Timeline.Timezone,
	)

	// Shared by the recorder and the API server.
	hub := api.NewHub(cfg.WebSocket, log)
	go hub.Run(ctx)

	mqttClient, err := mqtt.Connect(cfg.MQTT)
	if err != nil {
		return fmt.Errorf("connecting to MQTT: %w", err)
	}
	defer func() {
		log.Info("disconnecting from MQTT")
		if closeErr := mqttClient.Close(); closeErr != nil {
			log.Error("error closing MQTT", "error", closeErr)
		}
	}()
	mqttClient.SetLogger(log)
	mqttClient.SetOnConnect(func() { log.Info("MQTT reconnected") })
	mqttClient.SetOnDisconnect(func(err error) { log.Warn("MQTT disconnected", "error", err) })
	log.Info("MQTT connected",
		"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
		"client_id", cfg.MQTT.Broker.ClientID,
	)

	checks := map[string]api.HealthChecker{
		"database": db,
		"mqtt":     mqttClient,
	}

	recDeps := recorder.Deps{
		Traces:      traces,
		Logbook:     entries,
		Broadcaster: hub,
		Logger:      log.With("component", "recorder"),
		TraceTopic:  cfg.MQTT.Topics.Traces,
		StateTopic:  cfg.MQTT.Topics.States,
		QoS:         byte(cfg.MQTT.QoS), //nolint:gosec // validated to 0..2
	}

	influxClient, err := influxdb.Connect(cfg.InfluxDB)
	switch {
	case errors.Is(err, influxdb.ErrDisabled):
		log.Info("InfluxDB disabled")
	case err != nil:
		return fmt.Errorf("connecting to InfluxDB: %w", err)
	default:
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
		recDeps.Metrics = influxClient
		checks["influxdb"] = influxClient
		log.Info("InfluxDB connected", "url", cfg.InfluxDB.URL, "bucket", cfg.InfluxDB.Bucket)
	}

	rec, err := recorder.New(recDeps)
	if err != nil {
		return fmt.Errorf("creating recorder: %w", err)
	}
	if startErr := rec.Start(mqttClient); startErr != nil {
		return fmt.Errorf("starting recorder: %w", startErr)
	}

	var traceViewer http.Handler
	if cfg.API.Viewer.Enabled {
		traceViewer = viewer.Handler(cfg.API.Viewer.Dir)
	}

	server, err := api.New(api.Deps{
		Config:      cfg.API,
		WS:          cfg.WebSocket,
		Logger:      log.With("component", "api"),
		Traces:      traces,
		Timelines:   timelines,
		Describe:    describe.New(bundle.Localizer(cfg.Timeline.Locale)).Describe,
		Checks:      checks,
		DB:          db,
		Viewer:      traceViewer,
		ExternalHub: hub,
		Version:     version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if startErr := server.Start(ctx); startErr != nil {
		return fmt.Errorf("starting API server: %w", startErr)
	}
	defer func() {
		if closeErr := server.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()

	if sweeper := newSweeper(cfg.Retention, log, traces, entries); sweeper != nil {
		go sweeper.Run(ctx)
	}

	log.Info("initialisation complete, waiting for shutdown signal")
	<-ctx.Done()
	log.Info("shutdown signal received, cleaning up")
	return nil
}

// getConfigPath returns GRAYTRACE_CONFIG, or the default path.
func getConfigPath() string {
	if path := os.Getenv("GRAYTRACE_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

func newTimelineService(cfg *config.Config, traces timeline.TraceSource, entries timeline.LogbookSource) (*timeline.Service, *i18n.Bundle, error) {
	bundle, err := i18n.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("loading message catalogs: %w", err)
	}
	filter, err := logbook.CompileFilter(cfg.Timeline.LogbookFilter)
	if err != nil {
		return nil, nil, fmt.Errorf("compiling logbook filter: %w", err)
	}
	svc, err := timeline.NewService(traces, entries, bundle, timeline.Config{
		DefaultLocale: cfg.Timeline.Locale,
		Location:      cfg.Location(),
		Filter:        filter,
		Padding:       cfg.LogbookPadding(),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("creating timeline service: %w", err)
	}
	return svc, bundle, nil
}

// newSweeper builds the retention sweeper. A zero day count keeps that
// table forever; nil is returned when nothing is pruned.
func newSweeper(cfg config.RetentionConfig, log *logging.Logger, traces, entries store.Pruner) *store.Sweeper {
	var policies []store.RetentionPolicy
	if cfg.TracesDays > 0 {
		policies = append(policies, store.RetentionPolicy{
			Name: "traces", Pruner: traces, Keep: time.Duration(cfg.TracesDays) * day,
		})
	}
	if cfg.LogbookDays > 0 {
		policies = append(policies, store.RetentionPolicy{
			Name: "logbook", Pruner: entries, Keep: time.Duration(cfg.LogbookDays) * day,
		})
	}
	if len(policies) == 0 || cfg.SweepInterval <= 0 {
		return nil
	}
	return store.NewSweeper(time.Duration(cfg.SweepInterval)*time.Minute, log.With("component", "retention"), policies...)
}
