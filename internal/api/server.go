package api

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/nerrad567/gray-logic-trace/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-trace/internal/infrastructure/logging"
	"github.com/nerrad567/gray-logic-trace/internal/store"
	"github.com/nerrad567/gray-logic-trace/internal/timeline"
	"github.com/nerrad567/gray-logic-trace/internal/trace"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight requests
// to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// TraceStore is the read side of the trace repository.
type TraceStore interface {
	Get(ctx context.Context, runID string) (*trace.Record, error)
	List(ctx context.Context, f store.TraceFilter) ([]store.TraceSummary, error)
}

// TimelineBuilder reconstructs stored runs.
type TimelineBuilder interface {
	Build(ctx context.Context, runID, locale string) (*timeline.Result, error)
	Locales() []string
}

// HealthChecker is implemented by every infrastructure client.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// StatsProvider exposes connection pool statistics.
type StatsProvider interface {
	Stats() sql.DBStats
}

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config    config.APIConfig
	WS        config.WebSocketConfig
	Logger    *logging.Logger
	Traces    TraceStore
	Timelines TimelineBuilder

	// Describe labels graph nodes. Nil uses the engine's fallback.
	Describe trace.DescribeFn

	// Checks are reported by /health, keyed by component name.
	Checks map[string]HealthChecker
	DB     StatsProvider

	// Viewer is mounted at / when set.
	Viewer http.Handler

	ExternalHub *Hub // If set, the server uses this hub instead of creating its own
	Version     string
}

// Server is the HTTP API server.
type Server struct {
	cfg         config.APIConfig
	wsCfg       config.WebSocketConfig
	logger      *logging.Logger
	traces      TraceStore
	timelines   TimelineBuilder
	describe    trace.DescribeFn
	checks      map[string]HealthChecker
	db          StatsProvider
	viewer      http.Handler
	version     string
	startTime   time.Time
	server      *http.Server
	hub         *Hub
	externalHub bool
	cancel      context.CancelFunc
}

// New creates a new API server with the given dependencies.
// The server is not started until Start() is called.
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Traces == nil {
		return nil, fmt.Errorf("trace store is required")
	}
	if deps.Timelines == nil {
		return nil, fmt.Errorf("timeline builder is required")
	}

	s := &Server{
		cfg:       deps.Config,
		wsCfg:     deps.WS,
		logger:    deps.Logger,
		traces:    deps.Traces,
		timelines: deps.Timelines,
		describe:  deps.Describe,
		checks:    deps.Checks,
		db:        deps.DB,
		viewer:    deps.Viewer,
		version:   deps.Version,
		startTime: time.Now(),
	}

	// The recorder broadcasts through the hub before the API starts, so
	// main usually creates it.
	if deps.ExternalHub != nil {
		s.hub = deps.ExternalHub
		s.externalHub = true
	}
	return s, nil
}

// Start builds the router and listens in a background goroutine until
// Close is called.
func (s *Server) Start(ctx context.Context) error {
	var srvCtx context.Context
	srvCtx, s.cancel = context.WithCancel(ctx)

	if s.hub == nil {
		s.hub = NewHub(s.wsCfg, s.logger)
		go s.hub.Run(srvCtx)
	}

	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:           s.buildRouter(),
		ReadTimeout:       time.Duration(s.cfg.Timeouts.Read) * time.Second,
		ReadHeaderTimeout: time.Duration(s.cfg.Timeouts.Read) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.Timeouts.Write) * time.Second,
		IdleTimeout:       time.Duration(s.cfg.Timeouts.Idle) * time.Second,
	}

	go func() {
		s.logger.Info("API server starting", "address", s.server.Addr)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()
	return nil
}

// Close waits up to 10 seconds for in-flight requests, then closes
// remaining connections.
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}
	if s.cancel != nil {
		s.cancel()
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	s.logger.Info("API server shutting down")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down API server: %w", err)
	}
	return nil
}

// HealthCheck reports whether the server has been started.
func (s *Server) HealthCheck(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("api health check: %w", ctx.Err())
	default:
	}
	if s.server == nil {
		return fmt.Errorf("api server not started")
	}
	return nil
}
