package logbook

import (
	"errors"
	"testing"
	"time"

	"github.com/nerrad567/gray-logic-trace/internal/trace"
)

var entries = []trace.LogEntry{
	{Domain: "light", EntityID: "light.porch", Name: "Porch", State: "on"},
	{Domain: "sensor", EntityID: "sensor.lux", Name: "Lux", State: "12"},
	{Domain: "switch", EntityID: "switch.fan", Name: "Fan", State: "unavailable"},
	{Domain: "automation", EntityID: "automation.night", Message: "triggered"},
}

func TestFilter_Apply(t *testing.T) {
	tests := []struct {
		source string
		want   []string
	}{
		{"", []string{"light.porch", "sensor.lux", "switch.fan", "automation.night"}},
		{`domain in ["light", "switch"]`, []string{"light.porch", "switch.fan"}},
		{`state != "unavailable" && domain != "automation"`, []string{"light.porch", "sensor.lux"}},
		{`entity_id startsWith "sensor."`, []string{"sensor.lux"}},
		{`message contains "trigger"`, []string{"automation.night"}},
	}
	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			f, err := CompileFilter(tt.source)
			if err != nil {
				t.Fatalf("CompileFilter() error: %v", err)
			}
			got, err := f.Apply(entries)
			if err != nil {
				t.Fatalf("Apply() error: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("Apply() kept %d, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if got[i].EntityID != tt.want[i] {
					t.Errorf("Apply()[%d] = %s, want %s", i, got[i].EntityID, tt.want[i])
				}
			}
		})
	}
}

func TestCompileFilter_Invalid(t *testing.T) {
	for _, source := range []string{`domain +`, `state`, `brightness > 3`} {
		if _, err := CompileFilter(source); !errors.Is(err, ErrInvalidFilter) {
			t.Errorf("CompileFilter(%q) error = %v, want ErrInvalidFilter", source, err)
		}
	}
}

func TestFilter_NilKeepsAll(t *testing.T) {
	var f *Filter
	got, err := f.Apply(entries)
	if err != nil || len(got) != len(entries) {
		t.Errorf("nil Filter.Apply() = %d, %v", len(got), err)
	}
}

func TestWindow(t *testing.T) {
	start := time.Date(2026, 2, 1, 6, 0, 0, 0, time.UTC)
	finish := start.Add(30 * time.Second)
	now := func() time.Time { return start.Add(time.Hour) }

	rec := &trace.Record{Timestamp: trace.Timestamps{Start: start, Finish: &finish}}
	from, to := Window(rec, 5*time.Second, now)
	if !from.Equal(start.Add(-5*time.Second)) || !to.Equal(finish.Add(5*time.Second)) {
		t.Errorf("Window(finished) = %v..%v", from, to)
	}

	rec.Timestamp.Finish = nil
	_, to = Window(rec, 5*time.Second, now)
	if !to.Equal(now()) {
		t.Errorf("Window(running) to = %v, want now", to)
	}
}
