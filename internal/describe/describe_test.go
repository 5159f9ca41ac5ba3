package describe

import (
	"testing"
	"time"

	"github.com/nerrad567/gray-logic-trace/internal/i18n"
	"github.com/nerrad567/gray-logic-trace/internal/trace"
)

func newDescriber(t *testing.T, locale string) *Describer {
	t.Helper()
	bundle, err := i18n.Load()
	if err != nil {
		t.Fatalf("i18n.Load() error: %v", err)
	}
	return New(bundle.Localizer(locale))
}

func TestDescribe_Leaf(t *testing.T) {
	d := newDescriber(t, "en-US")

	tests := []struct {
		name   string
		action trace.ActionConfig
		want   string
	}{
		{"alias wins", trace.ActionConfig{"alias": "Wake up", "action": "light.turn_on"}, "Wake up"},
		{"service", trace.ActionConfig{"action": "light.turn_on"}, "Call light.turn_on"},
		{"legacy service key", trace.ActionConfig{"service": "switch.toggle"}, "Call switch.toggle"},
		{"service with target", trace.ActionConfig{
			"action": "light.turn_on",
			"target": map[string]any{"entity_id": []any{"light.b", "light.a"}},
		}, "Call light.turn_on on light.a, light.b"},
		{"service with entity", trace.ActionConfig{"action": "lock.lock", "entity_id": "lock.front"}, "Call lock.lock on lock.front"},
		{"delay seconds", trace.ActionConfig{"delay": 90}, "Delay 0:01:30"},
		{"delay mapping", trace.ActionConfig{"delay": map[string]any{"hours": 1, "milliseconds": 250}}, "Delay 1:00:00.250"},
		{"delay template", trace.ActionConfig{"delay": "{{ states('input_number.wait') }}"}, "Delay {{ states('input_number.wait') }}"},
		{"wait template", trace.ActionConfig{"wait_template": "{{ true }}"}, "Wait for a template to render true"},
		{"state condition", trace.ActionConfig{"condition": "state", "entity_id": "sun.sun", "state": "below_horizon"}, "Confirm sun.sun is below_horizon"},
		{"other condition", trace.ActionConfig{"condition": "zone"}, "Test a zone condition"},
		{"and shorthand", trace.ActionConfig{"and": []any{}}, "Test if all conditions match"},
		{"event", trace.ActionConfig{"event": "doorbell_pressed"}, "Fire event doorbell_pressed"},
		{"device", trace.ActionConfig{"device_id": "abc123", "domain": "light"}, "Run a device action on abc123"},
		{"variables", trace.ActionConfig{"variables": map[string]any{"x": 1}}, "Define variables"},
		{"stop with reason", trace.ActionConfig{"stop": "Nobody home"}, "Stop: Nobody home"},
		{"scene", trace.ActionConfig{"scene": "scene.movie"}, "Activate scene scene.movie"},
		{"unknown", trace.ActionConfig{"frobnicate": true}, "Unknown action"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := d.Describe(tt.action, trace.FlowLeaf); got != tt.want {
				t.Errorf("Describe() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDescribe_ControlFlow(t *testing.T) {
	d := newDescriber(t, "en-US")

	tests := []struct {
		flow   trace.FlowType
		action trace.ActionConfig
		want   string
	}{
		{trace.FlowSequence, trace.ActionConfig{"sequence": []any{}}, "Run in sequence"},
		{trace.FlowParallel, trace.ActionConfig{"parallel": []any{}}, "Run in parallel"},
		{trace.FlowChoose, trace.ActionConfig{"choose": []any{}}, "Choose an action"},
		{trace.FlowIf, trace.ActionConfig{"if": []any{}}, "Conditionally run an action"},
		{trace.FlowRepeat, trace.ActionConfig{"repeat": map[string]any{"count": 3}}, "Repeat 3 times"},
		{trace.FlowRepeat, trace.ActionConfig{"repeat": map[string]any{"while": []any{}}}, "Repeat while a condition matches"},
		{trace.FlowRepeat, trace.ActionConfig{"repeat": map[string]any{"until": []any{}}}, "Repeat until a condition matches"},
		{trace.FlowRepeat, trace.ActionConfig{"repeat": map[string]any{"for_each": []any{"a"}}}, "Repeat for each item"},
		{trace.FlowRepeat, trace.ActionConfig{"repeat": map[string]any{"count": "{{ n }}"}}, "Repeat an action"},
	}
	for _, tt := range tests {
		if got := d.Describe(tt.action, tt.flow); got != tt.want {
			t.Errorf("Describe(%s) = %q, want %q", tt.flow, got, tt.want)
		}
	}
}

func TestDescribe_German(t *testing.T) {
	d := newDescriber(t, "de-DE")

	if got := d.Describe(trace.ActionConfig{"action": "light.turn_on"}, trace.FlowLeaf); got != "light.turn_on aufrufen" {
		t.Errorf("service = %q", got)
	}
	if got := d.Describe(trace.ActionConfig{"repeat": map[string]any{"count": 2}}, trace.FlowRepeat); got != "2-mal wiederholen" {
		t.Errorf("repeat = %q", got)
	}
}

func TestDescribe_AsDescribeFn(t *testing.T) {
	d := newDescriber(t, "en-US")
	var fn trace.DescribeFn = d.Describe

	at := time.Date(2026, 5, 2, 7, 0, 0, 0, time.UTC)
	rec := &trace.Record{
		State:           trace.StateStopped,
		ScriptExecution: trace.ExecutionFinished,
		Timestamp:       trace.Timestamps{Start: at, Finish: &at},
		Steps: trace.Steps{
			{Path: "trigger", Executions: []trace.StepExecution{{Path: "trigger", Timestamp: at}}},
			{Path: "action/0", Executions: []trace.StepExecution{{Path: "action/0", Timestamp: at}}},
		},
		Config: trace.ActionConfig{"actions": []any{map[string]any{"action": "fan.turn_on"}}},
	}
	got := trace.Reconstruct(rec, nil, fn)
	if got[1].Description != "Call fan.turn_on" {
		t.Errorf("step = %q", got[1].Description)
	}
}
