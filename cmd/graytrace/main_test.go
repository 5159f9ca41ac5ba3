package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/nerrad567/gray-logic-trace/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-trace/internal/infrastructure/logging"
	"github.com/nerrad567/gray-logic-trace/internal/store"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	t.Setenv("GRAYTRACE_CONFIG", path)
	return path
}

func TestRun_InvalidConfig(t *testing.T) {
	t.Setenv("GRAYTRACE_CONFIG", "/nonexistent/path/config.yaml")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := run(ctx)
	if err == nil || !strings.Contains(err.Error(), "loading config") {
		t.Fatalf("run() error = %v, want loading config failure", err)
	}
}

func TestRun_InvalidLogbookFilter(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "trace.db")
	writeConfig(t, `
site:
  id: test-site
database:
  path: "`+dbPath+`"
timeline:
  logbook_filter: "domain =="
`)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := run(ctx)
	if err == nil || !strings.Contains(err.Error(), "logbook filter") {
		t.Fatalf("run() error = %v, want logbook filter failure", err)
	}
	if _, statErr := os.Stat(dbPath); statErr != nil {
		t.Errorf("database should have been created before the filter failed: %v", statErr)
	}
}

func TestRun_UnreachableBroker(t *testing.T) {
	writeConfig(t, `
site:
  id: test-site
database:
  path: "`+filepath.Join(t.TempDir(), "trace.db")+`"
mqtt:
  broker:
    host: "127.0.0.1"
    port: 1
    client_id: "graytrace-test"
logging:
  level: error
  format: text
`)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	err := run(ctx)
	if err == nil || !strings.Contains(err.Error(), "connecting to MQTT") {
		t.Fatalf("run() error = %v, want MQTT failure", err)
	}
}

func TestGetConfigPath(t *testing.T) {
	t.Setenv("GRAYTRACE_CONFIG", "")
	if got := getConfigPath(); got != defaultConfigPath {
		t.Errorf("getConfigPath() = %q, want %q", got, defaultConfigPath)
	}
	t.Setenv("GRAYTRACE_CONFIG", "/etc/graytrace.yaml")
	if got := getConfigPath(); got != "/etc/graytrace.yaml" {
		t.Errorf("getConfigPath() = %q", got)
	}
}

type nopPruner struct{}

func (nopPruner) Prune(context.Context, time.Duration) (int64, error) { return 0, nil }

func TestNewSweeper(t *testing.T) {
	log := logging.Default()

	tests := []struct {
		name    string
		cfg     config.RetentionConfig
		wantNil bool
	}{
		{"both tables", config.RetentionConfig{TracesDays: 30, LogbookDays: 10, SweepInterval: 60}, false},
		{"traces only", config.RetentionConfig{TracesDays: 30, SweepInterval: 60}, false},
		{"keep forever", config.RetentionConfig{SweepInterval: 60}, true},
		{"no interval", config.RetentionConfig{TracesDays: 30}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newSweeper(tt.cfg, log, nopPruner{}, nopPruner{})
			if (s == nil) != tt.wantNil {
				t.Fatalf("newSweeper() nil = %v, want %v", s == nil, tt.wantNil)
			}
			if s == nil {
				return
			}
			deleted := s.Sweep(context.Background())
			if _, ok := deleted["traces"]; ok != (tt.cfg.TracesDays > 0) {
				t.Errorf("traces policy present = %v", ok)
			}
			if _, ok := deleted["logbook"]; ok != (tt.cfg.LogbookDays > 0) {
				t.Errorf("logbook policy present = %v", ok)
			}
		})
	}
}

var _ store.Pruner = nopPruner{}
