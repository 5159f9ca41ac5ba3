package trace

import (
	"strings"
	"testing"
	"time"
)

// ─── Fixtures ───────────────────────────────────────────────────────

var t0 = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func at(ms int) time.Time { return t0.Add(time.Duration(ms) * time.Millisecond) }

func run(ms int) StepExecution { return StepExecution{Timestamp: at(ms)} }

func chose(ms int, choice any) StepExecution {
	return StepExecution{Timestamp: at(ms), Result: map[string]any{"choice": choice}}
}

func step(path string, execs ...StepExecution) PathSteps {
	for i := range execs {
		execs[i].Path = path
	}
	return PathSteps{Path: path, Executions: execs}
}

func call(service string) map[string]any {
	return map[string]any{"action": service}
}

func finishedRecord(config ActionConfig, steps ...PathSteps) *Record {
	finish := at(2500)
	return &Record{
		RunID:           "run-1",
		Domain:          "automation",
		ItemID:          "hallway_lights",
		State:           StateStopped,
		ScriptExecution: ExecutionFinished,
		Timestamp:       Timestamps{Start: t0, Finish: &finish},
		Steps:           steps,
		Config:          config,
	}
}

func testDescribe(action ActionConfig, flow FlowType) string {
	if s, ok := action["action"].(string); ok {
		return "Call " + s
	}
	return string(flow)
}

func logAt(ms int, entityID, state string) LogEntry {
	return LogEntry{
		When:     EpochSeconds(at(ms)),
		Domain:   strings.SplitN(entityID, ".", 2)[0],
		EntityID: entityID,
		Name:     entityID,
		State:    state,
	}
}

func kinds(entries []Entry) []EntryKind {
	out := make([]EntryKind, len(entries))
	for i, e := range entries {
		out[i] = e.Kind
	}
	return out
}

func stepPaths(entries []Entry) []string {
	var out []string
	for _, e := range entries {
		if e.Kind == KindStep {
			out = append(out, e.Path)
		}
	}
	return out
}

func countKind(entries []Entry, kind EntryKind) int {
	n := 0
	for _, e := range entries {
		if e.Kind == kind {
			n++
		}
	}
	return n
}

func assertPaths(t *testing.T, got, want []string) {
	t.Helper()
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("paths = %v, want %v", got, want)
	}
}
