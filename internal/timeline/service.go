// Package timeline assembles the inputs of a reconstruction: it loads a
// stored run, selects its logbook entries, applies the configured filter
// and hands everything to trace.Reconstruct with a localized describer.
//
// Logbook entries are selected by the run's context ID. Runs recorded
// without one fall back to every entry inside the padded run window.
package timeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nerrad567/gray-logic-trace/internal/describe"
	"github.com/nerrad567/gray-logic-trace/internal/i18n"
	"github.com/nerrad567/gray-logic-trace/internal/logbook"
	"github.com/nerrad567/gray-logic-trace/internal/trace"
)

// ErrNoBundle is returned by NewService without a message bundle.
var ErrNoBundle = errors.New("timeline: message bundle is required")

// TraceSource loads stored runs.
type TraceSource interface {
	Get(ctx context.Context, runID string) (*trace.Record, error)
}

// LogbookSource loads logbook entries by context or by time range.
type LogbookSource interface {
	ForContext(ctx context.Context, contextID string) ([]trace.LogEntry, error)
	Range(ctx context.Context, from, to time.Time) ([]trace.LogEntry, error)
}

// Config controls how timelines are built.
type Config struct {
	// DefaultLocale is used when a request names none.
	DefaultLocale string

	// Location is the time zone absolute times are shown in.
	Location *time.Location

	// Filter drops logbook entries before reconstruction. Nil keeps all.
	Filter *logbook.Filter

	// Padding widens the logbook window on both sides of the run. Only
	// used for runs without a context ID.
	Padding time.Duration
}

// Result is one reconstructed timeline.
type Result struct {
	RunID   string        `json:"run_id"`
	Locale  string        `json:"locale"`
	Entries []trace.Entry `json:"entries"`
}

// Service builds timelines. Sources may be nil when only Render is used.
type Service struct {
	traces  TraceSource
	logbook LogbookSource
	bundle  *i18n.Bundle
	cfg     Config
	now     func() time.Time
}

// NewService creates a Service.
func NewService(traces TraceSource, entries LogbookSource, bundle *i18n.Bundle, cfg Config) (*Service, error) {
	if bundle == nil {
		return nil, ErrNoBundle
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	return &Service{
		traces:  traces,
		logbook: entries,
		bundle:  bundle,
		cfg:     cfg,
		now:     time.Now,
	}, nil
}

// Build reconstructs the stored run runID in locale (or the default
// locale when empty). Errors from the trace source are wrapped, so
// store.ErrTraceNotFound survives errors.Is.
func (s *Service) Build(ctx context.Context, runID, locale string) (*Result, error) {
	if s.traces == nil {
		return nil, fmt.Errorf("building timeline for %s: no trace source", runID)
	}
	rec, err := s.traces.Get(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("loading trace %s: %w", runID, err)
	}

	entries, err := s.logbookFor(ctx, rec)
	if err != nil {
		return nil, fmt.Errorf("loading logbook for %s: %w", runID, err)
	}
	return s.Render(rec, entries, locale)
}

func (s *Service) logbookFor(ctx context.Context, rec *trace.Record) ([]trace.LogEntry, error) {
	if s.logbook == nil {
		return nil, nil
	}
	if rec.Context.ID != "" {
		return s.logbook.ForContext(ctx, rec.Context.ID)
	}
	from, to := logbook.Window(rec, s.cfg.Padding, s.now)
	return s.logbook.Range(ctx, from, to)
}

// Render reconstructs rec against entries without touching any store.
func (s *Service) Render(rec *trace.Record, entries []trace.LogEntry, locale string) (*Result, error) {
	kept, err := s.cfg.Filter.Apply(entries)
	if err != nil {
		return nil, fmt.Errorf("filtering logbook: %w", err)
	}

	if locale == "" {
		locale = s.cfg.DefaultLocale
	}
	loc := s.bundle.Localizer(locale)

	result := &Result{
		Locale: loc.Locale(),
		Entries: trace.Reconstruct(rec, kept, describe.New(loc).Describe,
			trace.WithLocalizer(loc),
			trace.WithLocation(s.cfg.Location),
		),
	}
	if rec != nil {
		result.RunID = rec.RunID
	}
	return result, nil
}

// Locales lists the locales timelines can be rendered in.
func (s *Service) Locales() []string {
	return s.bundle.Locales()
}
