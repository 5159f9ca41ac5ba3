// Package graph renders a recorded run as a Graphviz digraph.
//
// Every recorded path becomes a node hanging off its nearest recorded
// ancestor; top-level paths hang off a synthetic "start" node. Condition
// evaluations are drawn dashed and paths missing from the config red.
package graph

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/awalterschulze/gographviz"

	"github.com/nerrad567/gray-logic-trace/internal/trace"
)

const (
	graphName = "trace"
	startNode = "start"
)

// Render returns the DOT source for rec. describe labels the nodes; a nil
// describe labels them by path only.
func Render(rec *trace.Record, describe trace.DescribeFn) (string, error) {
	g := gographviz.NewGraph()
	if err := g.SetName(graphName); err != nil {
		return "", fmt.Errorf("set graph name: %w", err)
	}
	if err := g.SetDir(true); err != nil {
		return "", fmt.Errorf("set graph direction: %w", err)
	}
	if err := g.AddAttr(graphName, "rankdir", "TB"); err != nil {
		return "", fmt.Errorf("set rankdir: %w", err)
	}

	if err := g.AddNode(graphName, startNode, map[string]string{
		"shape": "circle",
		"label": strconv.Quote(rec.ItemID),
	}); err != nil {
		return "", fmt.Errorf("add start node: %w", err)
	}

	recorded := make(map[string]bool, len(rec.Steps))
	for _, step := range rec.Steps {
		attrs := nodeAttrs(rec, step, describe)
		if err := g.AddNode(graphName, nodeID(step.Path), attrs); err != nil {
			return "", fmt.Errorf("add node %s: %w", step.Path, err)
		}

		parent := parentOf(step.Path, recorded)
		edge := map[string]string{}
		if isCondition(step.Path) {
			edge["style"] = "dashed"
		}
		if err := g.AddEdge(parent, nodeID(step.Path), true, edge); err != nil {
			return "", fmt.Errorf("add edge to %s: %w", step.Path, err)
		}
		recorded[step.Path] = true
	}

	return g.String(), nil
}

func nodeAttrs(rec *trace.Record, step trace.PathSteps, describe trace.DescribeFn) map[string]string {
	label := step.Path
	attrs := map[string]string{"shape": "box"}

	value, err := trace.GetDataFromPath(rec.Config, step.Path)
	switch {
	case trace.IsTriggerPath(step.Path):
		attrs["shape"] = "oval"
	case err != nil:
		attrs["color"] = "red"
	default:
		node := trace.Classify(value)
		if describe != nil {
			label = describe(node.Config(), node.Flow()) + "\n" + step.Path
		}
		if node.Flow() != trace.FlowLeaf {
			attrs["shape"] = "diamond"
		}
		if trace.IsDisabled(node.Config()) {
			attrs["fontcolor"] = "gray"
		}
	}

	if n := len(step.Executions); n > 1 {
		label = fmt.Sprintf("%s (x%d)", label, n)
	}
	for _, e := range step.Executions {
		if e.Error != "" {
			attrs["color"] = "red"
			break
		}
	}
	if isCondition(step.Path) {
		attrs["style"] = "dashed"
	}

	attrs["label"] = strconv.Quote(label)
	return attrs
}

// parentOf returns the node of the longest recorded ancestor of path.
func parentOf(path string, recorded map[string]bool) string {
	for i := strings.LastIndexByte(path, '/'); i > 0; i = strings.LastIndexByte(path[:i], '/') {
		if recorded[path[:i]] {
			return nodeID(path[:i])
		}
	}
	return startNode
}

func isCondition(path string) bool {
	segs := trace.Segments(path)
	for _, s := range segs {
		switch s {
		case "conditions", "condition", "if":
			return true
		}
	}
	return false
}

func nodeID(path string) string {
	return strconv.Quote(path)
}
