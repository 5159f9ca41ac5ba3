package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/nerrad567/gray-logic-trace/internal/infrastructure/database"
	"github.com/nerrad567/gray-logic-trace/internal/trace"
	"github.com/nerrad567/gray-logic-trace/migrations"
)

var base = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func openTestDB(t *testing.T) *database.DB {
	t.Helper()

	db, err := database.Open(database.Config{
		Path:        filepath.Join(t.TempDir(), "trace.db"),
		WALMode:     true,
		BusyTimeout: 5,
	})
	if err != nil {
		t.Fatalf("opening database: %v", err)
	}
	t.Cleanup(func() { db.Close() }) //nolint:errcheck // Test cleanup

	if err := db.Migrate(context.Background(), migrations.FS); err != nil {
		t.Fatalf("migrating: %v", err)
	}
	return db
}

func sampleRecord(runID, itemID string, start time.Time) *trace.Record {
	finish := start.Add(1500 * time.Millisecond)
	return &trace.Record{
		RunID:           runID,
		ItemID:          itemID,
		State:           trace.StateStopped,
		ScriptExecution: trace.ExecutionFinished,
		Timestamp:       trace.Timestamps{Start: start, Finish: &finish},
		Steps: trace.Steps{
			{Path: "trigger/0", Executions: []trace.StepExecution{{Path: "trigger/0", Timestamp: start}}},
			{Path: "action/1", Executions: []trace.StepExecution{{Path: "action/1", Timestamp: start.Add(time.Second)}}},
			{Path: "action/0", Executions: []trace.StepExecution{{Path: "action/0", Timestamp: start.Add(500 * time.Millisecond)}}},
		},
		Config: trace.ActionConfig{
			"alias":   "Hallway lights",
			"actions": []any{map[string]any{"action": "light.turn_on"}, map[string]any{"delay": float64(5)}},
		},
	}
}

func TestTraceRepository_SaveGet(t *testing.T) {
	repo := NewTraceRepository(openTestDB(t).DB)
	ctx := context.Background()

	rec := sampleRecord("run-1", "hallway", base)
	rec.Context.ID = "ctx-run"
	if err := repo.Save(ctx, rec); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := repo.Get(ctx, "run-1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.ItemID != "hallway" || got.OwnDomain() != trace.DefaultDomain {
		t.Errorf("unexpected record %+v", got)
	}
	if !got.Timestamp.Start.Equal(base) || got.Timestamp.Finish == nil {
		t.Errorf("timestamps not preserved: %+v", got.Timestamp)
	}
	if got.Context.ID != "ctx-run" {
		t.Errorf("context = %q, want ctx-run", got.Context.ID)
	}

	// Recorded step order must survive storage.
	paths := got.Steps.Paths()
	want := []string{"trigger/0", "action/1", "action/0"}
	if len(paths) != len(want) {
		t.Fatalf("paths = %v, want %v", paths, want)
	}
	for i := range want {
		if paths[i] != want[i] {
			t.Errorf("paths[%d] = %q, want %q", i, paths[i], want[i])
		}
	}
	if got.Config["alias"] != "Hallway lights" {
		t.Errorf("config not preserved: %v", got.Config)
	}
}

func TestTraceRepository_SaveUpserts(t *testing.T) {
	repo := NewTraceRepository(openTestDB(t).DB)
	ctx := context.Background()

	rec := sampleRecord("run-1", "hallway", base)
	rec.State = trace.StateRunning
	rec.Timestamp.Finish = nil
	if err := repo.Save(ctx, rec); err != nil {
		t.Fatalf("Save() running error = %v", err)
	}

	done := sampleRecord("run-1", "hallway", base)
	done.ScriptExecution = trace.ExecutionError
	done.Error = "Service not found"
	if err := repo.Save(ctx, done); err != nil {
		t.Fatalf("Save() stopped error = %v", err)
	}

	list, err := repo.List(ctx, TraceFilter{})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 trace after upsert, got %d", len(list))
	}
	if list[0].State != trace.StateStopped || list[0].Error != "Service not found" || list[0].Finish == nil {
		t.Errorf("summary not updated: %+v", list[0])
	}
}

func TestTraceRepository_Errors(t *testing.T) {
	repo := NewTraceRepository(openTestDB(t).DB)
	ctx := context.Background()

	if err := repo.Save(ctx, &trace.Record{}); !errors.Is(err, ErrRunIDRequired) {
		t.Errorf("Save() without run id error = %v, want ErrRunIDRequired", err)
	}
	if err := repo.Save(ctx, nil); !errors.Is(err, ErrRunIDRequired) {
		t.Errorf("Save(nil) error = %v, want ErrRunIDRequired", err)
	}
	if _, err := repo.Get(ctx, "missing"); !errors.Is(err, ErrTraceNotFound) {
		t.Errorf("Get() error = %v, want ErrTraceNotFound", err)
	}
	if _, err := repo.Prune(ctx, 0); !errors.Is(err, ErrInvalidRetention) {
		t.Errorf("Prune(0) error = %v, want ErrInvalidRetention", err)
	}
}

func TestTraceRepository_List(t *testing.T) {
	repo := NewTraceRepository(openTestDB(t).DB)
	ctx := context.Background()

	for i, item := range []string{"hallway", "porch", "hallway", "hallway"} {
		rec := sampleRecord("run-"+string(rune('a'+i)), item, base.Add(time.Duration(i)*time.Minute))
		if err := repo.Save(ctx, rec); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
	}
	script := sampleRecord("run-script", "hallway", base.Add(time.Hour))
	script.Domain = "script"
	if err := repo.Save(ctx, script); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	tests := []struct {
		name   string
		filter TraceFilter
		want   []string
	}{
		{"all newest first", TraceFilter{}, []string{"run-script", "run-d", "run-c", "run-b", "run-a"}},
		{"by domain", TraceFilter{Domain: "automation"}, []string{"run-d", "run-c", "run-b", "run-a"}},
		{"by item", TraceFilter{Domain: "automation", ItemID: "hallway"}, []string{"run-d", "run-c", "run-a"}},
		{"limited", TraceFilter{Limit: 2}, []string{"run-script", "run-d"}},
		{"no match", TraceFilter{ItemID: "garage"}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.List(ctx, tt.filter)
			if err != nil {
				t.Fatalf("List() error = %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("List() returned %d traces, want %d", len(got), len(tt.want))
			}
			for i := range tt.want {
				if got[i].RunID != tt.want[i] {
					t.Errorf("[%d] = %s, want %s", i, got[i].RunID, tt.want[i])
				}
			}
		})
	}
}

func TestTraceRepository_Prune(t *testing.T) {
	repo := NewTraceRepository(openTestDB(t).DB)
	repo.now = func() time.Time { return base.Add(48 * time.Hour) }
	ctx := context.Background()

	if err := repo.Save(ctx, sampleRecord("old", "hallway", base)); err != nil {
		t.Fatal(err)
	}
	if err := repo.Save(ctx, sampleRecord("new", "hallway", base.Add(47*time.Hour))); err != nil {
		t.Fatal(err)
	}

	n, err := repo.Prune(ctx, 24*time.Hour)
	if err != nil {
		t.Fatalf("Prune() error = %v", err)
	}
	if n != 1 {
		t.Errorf("Prune() deleted %d, want 1", n)
	}
	if _, err := repo.Get(ctx, "old"); !errors.Is(err, ErrTraceNotFound) {
		t.Errorf("old trace should be gone, got %v", err)
	}
	if _, err := repo.Get(ctx, "new"); err != nil {
		t.Errorf("new trace should remain: %v", err)
	}
}

func TestLogbookRepository_RecordRange(t *testing.T) {
	repo := NewLogbookRepository(openTestDB(t).DB)
	ctx := context.Background()

	entries := []trace.LogEntry{
		{When: trace.EpochSeconds(base.Add(2 * time.Second)), Domain: "light", EntityID: "light.hall", Name: "Hall", State: "on"},
		{When: trace.EpochSeconds(base), Domain: "binary_sensor", EntityID: "binary_sensor.motion", Name: "Motion", State: "on", ContextID: "ctx-1"},
		{When: trace.EpochSeconds(base.Add(2 * time.Second)), Domain: "light", EntityID: "light.stairs", Name: "Stairs", State: "on"},
		{When: trace.EpochSeconds(base.Add(time.Minute)), Domain: "light", EntityID: "light.hall", Name: "Hall", State: "off"},
	}
	for _, e := range entries {
		if err := repo.Record(ctx, e); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
	}

	got, err := repo.Range(ctx, base, base.Add(10*time.Second))
	if err != nil {
		t.Fatalf("Range() error = %v", err)
	}
	want := []string{"binary_sensor.motion", "light.hall", "light.stairs"}
	if len(got) != len(want) {
		t.Fatalf("Range() returned %d entries, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].EntityID != want[i] {
			t.Errorf("[%d] = %s, want %s", i, got[i].EntityID, want[i])
		}
	}
	if got[0].ContextID != "ctx-1" || !got[0].Time().Equal(base) {
		t.Errorf("entry not preserved: %+v", got[0])
	}

	if err := repo.Record(ctx, trace.LogEntry{When: 1}); !errors.Is(err, ErrEntityIDRequired) {
		t.Errorf("Record() without entity error = %v", err)
	}
}

func TestLogbookRepository_ForContext(t *testing.T) {
	repo := NewLogbookRepository(openTestDB(t).DB)
	ctx := context.Background()

	entries := []trace.LogEntry{
		{When: trace.EpochSeconds(base.Add(-10 * time.Millisecond)), Domain: "binary_sensor", EntityID: "binary_sensor.motion", State: "on", ContextID: "ctx-sensor"},
		{When: trace.EpochSeconds(base.Add(time.Second)), Domain: "light", EntityID: "light.hall", State: "on", ContextID: "ctx-run"},
		{When: trace.EpochSeconds(base), Domain: "automation", EntityID: "automation.hallway", Message: "triggered", ContextID: "ctx-run"},
		{When: trace.EpochSeconds(base.Add(500 * time.Millisecond)), Domain: "light", EntityID: "light.kitchen", State: "on"},
	}
	for _, e := range entries {
		if err := repo.Record(ctx, e); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
	}

	got, err := repo.ForContext(ctx, "ctx-run")
	if err != nil {
		t.Fatalf("ForContext() error = %v", err)
	}
	want := []string{"automation.hallway", "light.hall"}
	if len(got) != len(want) {
		t.Fatalf("ForContext() returned %d entries, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].EntityID != want[i] {
			t.Errorf("[%d] = %s, want %s", i, got[i].EntityID, want[i])
		}
	}

	if got, err := repo.ForContext(ctx, "ctx-unknown"); err != nil || len(got) != 0 {
		t.Errorf("ForContext(unknown) = %v, %v", got, err)
	}
	if _, err := repo.ForContext(ctx, ""); !errors.Is(err, ErrContextIDRequired) {
		t.Errorf("ForContext(\"\") error = %v, want ErrContextIDRequired", err)
	}
}

func TestLogbookRepository_Prune(t *testing.T) {
	repo := NewLogbookRepository(openTestDB(t).DB)
	repo.now = func() time.Time { return base.Add(24 * time.Hour) }
	ctx := context.Background()

	for _, offset := range []time.Duration{0, 12 * time.Hour, 23 * time.Hour} {
		e := trace.LogEntry{When: trace.EpochSeconds(base.Add(offset)), Domain: "light", EntityID: "light.hall", State: "on"}
		if err := repo.Record(ctx, e); err != nil {
			t.Fatal(err)
		}
	}

	n, err := repo.Prune(ctx, 6*time.Hour)
	if err != nil {
		t.Fatalf("Prune() error = %v", err)
	}
	if n != 2 {
		t.Errorf("Prune() deleted %d, want 2", n)
	}
}
