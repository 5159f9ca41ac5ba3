package store

import (
	"context"
	"time"
)

// Pruner deletes rows older than a retention period.
type Pruner interface {
	Prune(ctx context.Context, olderThan time.Duration) (int64, error)
}

// Logger is the logging interface used by the sweeper.
type Logger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
}

// RetentionPolicy pairs a table's pruner with how long its rows are kept.
type RetentionPolicy struct {
	Name   string
	Pruner Pruner
	Keep   time.Duration
}

// Sweeper applies retention policies periodically.
type Sweeper struct {
	policies []RetentionPolicy
	interval time.Duration
	logger   Logger
}

// NewSweeper returns a Sweeper that runs every interval.
func NewSweeper(interval time.Duration, logger Logger, policies ...RetentionPolicy) *Sweeper {
	return &Sweeper{policies: policies, interval: interval, logger: logger}
}

// Sweep applies every policy once and returns the rows deleted per policy.
// A failing policy is logged and does not stop the others.
func (s *Sweeper) Sweep(ctx context.Context) map[string]int64 {
	deleted := make(map[string]int64, len(s.policies))
	for _, p := range s.policies {
		n, err := p.Pruner.Prune(ctx, p.Keep)
		if err != nil {
			if s.logger != nil {
				s.logger.Warn("retention sweep failed", "table", p.Name, "error", err)
			}
			continue
		}
		deleted[p.Name] = n
		if n > 0 && s.logger != nil {
			s.logger.Info("retention sweep", "table", p.Name, "deleted", n)
		}
	}
	return deleted
}

// Run sweeps immediately and then on every tick until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	s.Sweep(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}
