package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"flag"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nerrad567/gray-logic-trace/internal/timeline"
	"github.com/nerrad567/gray-logic-trace/internal/trace"
)

const runJSON = `{
  "run_id": "run-1",
  "domain": "automation",
  "item_id": "hallway_lights",
  "state": "stopped",
  "script_execution": "finished",
  "timestamp": {"start": "2026-03-14T09:30:00Z", "finish": "2026-03-14T09:30:03Z"},
  "trace": {
    "trigger/0": [{"path": "trigger/0", "timestamp": "2026-03-14T09:30:00Z"}],
    "action/0": [{"path": "action/0", "timestamp": "2026-03-14T09:30:00.2Z"}],
    "action/1": [{"path": "action/1", "timestamp": "2026-03-14T09:30:02.5Z"}]
  },
  "config": {
    "alias": "Hallway lights",
    "actions": [
      {"action": "light.turn_on", "target": {"entity_id": "light.hall"}},
      {"alias": "Announce", "action": "notify.kitchen"}
    ]
  }
}`

// 1773480600.3 is 2026-03-14T09:30:00.3Z.
const logbookJSON = `[
  {"when": 1773480600.3, "domain": "light", "entity_id": "light.hall", "name": "Hall light", "state": "on"},
  {"when": 1773480600.35, "domain": "switch", "entity_id": "switch.fan", "name": "Fan", "state": "on"},
  {"when": 1773480600.4, "domain": "sensor", "entity_id": "sensor.lux", "name": "Lux", "state": "12"}
]`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	return path
}

func TestParseOptions(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr bool
	}{
		{"defaults", []string{"-trace", "run.json"}, false},
		{"all flags", []string{"-trace", "run.json", "-logbook", "lb.json", "-lang", "de-DE", "-tz", "Europe/Berlin", "-format", "dot"}, false},
		{"missing trace", []string{"-format", "json"}, true},
		{"bad format", []string{"-trace", "run.json", "-format", "yaml"}, true},
		{"unknown flag", []string{"-trace", "run.json", "-verbose"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := flag.NewFlagSet("tracerender", flag.ContinueOnError)
			fs.SetOutput(io.Discard)
			opts, err := parseOptions(fs, tt.args)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseOptions() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && opts.format == "" {
				t.Error("format should default to text")
			}
		})
	}

	fs := flag.NewFlagSet("tracerender", flag.ContinueOnError)
	if _, err := parseOptions(fs, nil); !errors.Is(err, errTraceRequired) {
		t.Errorf("parseOptions(nil) error = %v, want errTraceRequired", err)
	}
}

func TestRun_Text(t *testing.T) {
	opts := options{
		tracePath:   writeFile(t, "run.json", runJSON),
		logbookPath: writeFile(t, "logbook.json", logbookJSON),
		lang:        "en-US",
		timezone:    "UTC",
		format:      formatText,
	}

	var out bytes.Buffer
	if err := run(opts, &out); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	got := out.String()

	for _, want := range []string{
		"- Triggered manually at 2026-03-14 09:30:00\n",
		"- Hall light (light.hall) turned on\n",
		"  Fan (switch.fan) turned on\n",
		"  Lux (sensor.lux) turned 12\n",
		"~ 2 seconds later\n",
		"- Announce\n",
		"- Finished at 2026-03-14 09:30:03 (runtime: 3.00 seconds)\n",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output lacks %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "more)") {
		t.Errorf("a single extra logbook line should be shown inline:\n%s", got)
	}
}

func TestRun_JSONFilteredGerman(t *testing.T) {
	opts := options{
		tracePath:   writeFile(t, "run.json", runJSON),
		logbookPath: writeFile(t, "logbook.json", logbookJSON),
		lang:        "de",
		timezone:    "Europe/Berlin",
		filter:      `domain != "sensor"`,
		format:      formatJSON,
	}

	var out bytes.Buffer
	if err := run(opts, &out); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	var result timeline.Result
	if err := json.Unmarshal(out.Bytes(), &result); err != nil {
		t.Fatalf("decoding output: %v", err)
	}
	if result.Locale != "de-DE" || result.RunID != "run-1" {
		t.Errorf("result = %s/%s", result.RunID, result.Locale)
	}

	for _, e := range result.Entries {
		if e.Kind == trace.KindLogbook && strings.Contains(e.Description, "sensor.lux") {
			t.Error("filtered entity should not appear")
		}
	}
	last := result.Entries[len(result.Entries)-1]
	if last.Kind != trace.KindFooter || !strings.Contains(last.Description, "10:30:03") {
		t.Errorf("footer = %+v", last)
	}
}

func TestRun_DOT(t *testing.T) {
	opts := options{tracePath: writeFile(t, "run.json", runJSON), lang: "en-US", format: formatDOT}

	var out bytes.Buffer
	if err := run(opts, &out); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if !strings.Contains(out.String(), "digraph") {
		t.Errorf("expected DOT output, got %s", out.String())
	}
}

func TestRun_Errors(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, "run.json", runJSON)

	tests := []struct {
		name string
		opts options
	}{
		{"missing trace file", options{tracePath: filepath.Join(dir, "nope.json"), format: formatText, timezone: "UTC"}},
		{"malformed trace", options{tracePath: writeFile(t, "bad.json", `{"trace": [1, 2]}`), format: formatText, timezone: "UTC"}},
		{"malformed logbook", options{tracePath: good, logbookPath: writeFile(t, "lb.json", `{}`), format: formatText, timezone: "UTC"}},
		{"bad zone", options{tracePath: good, format: formatText, timezone: "Mars/Olympus"}},
		{"bad filter", options{tracePath: good, format: formatText, timezone: "UTC", filter: "state =="}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := run(tt.opts, io.Discard); err == nil {
				t.Error("run() should fail")
			}
		})
	}
}

func TestWriteText_Fold(t *testing.T) {
	entries := []trace.Entry{
		{Kind: trace.KindLogbook, Description: "a\nb", MoreItems: []trace.Entry{{Description: "c"}, {Description: "d"}}},
		{Kind: trace.KindStep, Description: "Wait (disabled)", Disabled: true},
		{Kind: trace.KindPathError, Description: "Unable to extract path action/9."},
	}
	var out bytes.Buffer
	if err := writeText(&out, entries); err != nil {
		t.Fatal(err)
	}
	want := "- a\n  b\n  (+2 more)\n    c\n    d\nx Wait (disabled)\n! Unable to extract path action/9.\n"
	if out.String() != want {
		t.Errorf("writeText() =\n%q\nwant\n%q", out.String(), want)
	}
}
