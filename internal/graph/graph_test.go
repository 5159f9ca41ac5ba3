package graph

import (
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/awalterschulze/gographviz"

	"github.com/nerrad567/gray-logic-trace/internal/trace"
)

func sampleRecord() *trace.Record {
	t0 := time.Date(2026, 1, 9, 22, 15, 0, 0, time.UTC)
	exec := func(path string, ms ...int) trace.PathSteps {
		ps := trace.PathSteps{Path: path}
		for _, m := range ms {
			ps.Executions = append(ps.Executions, trace.StepExecution{Path: path, Timestamp: t0.Add(time.Duration(m) * time.Millisecond)})
		}
		return ps
	}
	return &trace.Record{
		ItemID: "night_mode",
		Steps: trace.Steps{
			exec("trigger/0", 0),
			exec("action/0", 10),
			exec("action/0/choose/0/conditions/0", 11),
			exec("action/0/choose/0/sequence/0", 20),
			exec("action/1", 30),
			exec("action/1/repeat/sequence/0", 40, 50, 60),
			exec("action/9", 70),
		},
		Config: trace.ActionConfig{
			"actions": []any{
				map[string]any{"choose": []any{map[string]any{
					"conditions": []any{map[string]any{"condition": "state"}},
					"sequence":   []any{map[string]any{"action": "light.turn_off"}},
				}}},
				map[string]any{"repeat": map[string]any{"count": 3, "sequence": []any{map[string]any{"delay": 1}}}},
			},
		},
	}
}

func parse(t *testing.T, dot string) *gographviz.Graph {
	t.Helper()
	ast, err := gographviz.ParseString(dot)
	if err != nil {
		t.Fatalf("ParseString() error: %v\n%s", err, dot)
	}
	g := gographviz.NewGraph()
	if err := gographviz.Analyse(ast, g); err != nil {
		t.Fatalf("Analyse() error: %v", err)
	}
	return g
}

func hasEdge(g *gographviz.Graph, src, dst string) bool {
	_, ok := g.Edges.SrcToDsts[src][dst]
	return ok
}

func TestRender_Structure(t *testing.T) {
	rec := sampleRecord()
	dot, err := Render(rec, func(a trace.ActionConfig, f trace.FlowType) string { return string(f) })
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	g := parse(t, dot)

	if got, want := len(g.Nodes.Nodes), len(rec.Steps)+1; got != want {
		t.Errorf("nodes = %d, want %d", got, want)
	}
	if got := len(g.Edges.Edges); got != len(rec.Steps) {
		t.Errorf("edges = %d, want %d", got, len(rec.Steps))
	}

	q := strconv.Quote
	edges := [][2]string{
		{startNode, q("trigger/0")},
		{startNode, q("action/0")},
		{q("action/0"), q("action/0/choose/0/conditions/0")},
		{q("action/0"), q("action/0/choose/0/sequence/0")},
		{q("action/1"), q("action/1/repeat/sequence/0")},
	}
	for _, e := range edges {
		if !hasEdge(g, e[0], e[1]) {
			t.Errorf("missing edge %s -> %s", e[0], e[1])
		}
	}
}

func TestRender_Attributes(t *testing.T) {
	dot, err := Render(sampleRecord(), nil)
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	g := parse(t, dot)

	node := func(path string) gographviz.Attrs {
		n, ok := g.Nodes.Lookup[strconv.Quote(path)]
		if !ok {
			t.Fatalf("node %s missing", path)
		}
		return n.Attrs
	}

	if got := node("action/9")["color"]; got != "red" {
		t.Errorf("unresolvable path color = %q", got)
	}
	if got := node("action/0/choose/0/conditions/0")["style"]; got != "dashed" {
		t.Errorf("condition style = %q", got)
	}
	if got := node("action/1/repeat/sequence/0")["label"]; !strings.Contains(got, "(x3)") {
		t.Errorf("repeat body label = %q", got)
	}
	if got := node("action/0")["shape"]; got != "diamond" {
		t.Errorf("choose shape = %q", got)
	}
}
