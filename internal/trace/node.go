package trace

import (
	"fmt"
	"strconv"
)

// FlowType is the control-flow shape of a config node.
type FlowType string

const (
	FlowSequence FlowType = "sequence"
	FlowChoose   FlowType = "choose"
	FlowIf       FlowType = "if"
	FlowRepeat   FlowType = "repeat"
	FlowParallel FlowType = "parallel"
	FlowLeaf     FlowType = "leaf"
)

// Node is a classified config node. The concrete type is one of
// SequenceNode, ChooseNode, IfNode, RepeatNode, ParallelNode or LeafNode.
type Node interface {
	Flow() FlowType
	Config() ActionConfig
	node()
}

type base struct{ config ActionConfig }

func (b base) Config() ActionConfig { return b.config }
func (base) node()                  {}

// SequenceNode runs its children in order.
type SequenceNode struct{ base }

// ChooseNode runs the first option whose conditions pass, or the default.
type ChooseNode struct {
	base
	Options []ActionConfig
}

// IfNode runs then or else depending on its conditions.
type IfNode struct{ base }

// RepeatNode runs its body until a count, condition or item list is exhausted.
type RepeatNode struct{ base }

// ParallelNode runs every branch concurrently.
type ParallelNode struct{ base }

// LeafNode is any action without nested actions.
type LeafNode struct{ base }

func (SequenceNode) Flow() FlowType { return FlowSequence }
func (ChooseNode) Flow() FlowType   { return FlowChoose }
func (IfNode) Flow() FlowType       { return FlowIf }
func (RepeatNode) Flow() FlowType   { return FlowRepeat }
func (ParallelNode) Flow() FlowType { return FlowParallel }
func (LeafNode) Flow() FlowType     { return FlowLeaf }

// Classify turns a resolved config value into a Node. Classification uses
// only the keys present; anything unrecognised is a leaf. A bare string is
// the shorthand for a template condition.
func Classify(value any) Node {
	cfg := asConfig(value)
	switch {
	case has(cfg, "choose"):
		return ChooseNode{base: base{cfg}, Options: asConfigList(cfg["choose"])}
	case has(cfg, "repeat"):
		return RepeatNode{base{cfg}}
	case has(cfg, "if"):
		return IfNode{base{cfg}}
	case has(cfg, "parallel"):
		return ParallelNode{base{cfg}}
	case has(cfg, "sequence"):
		return SequenceNode{base{cfg}}
	default:
		return LeafNode{base{cfg}}
	}
}

// ControlFlowType classifies value and returns only the shape.
func ControlFlowType(value any) FlowType {
	return Classify(value).Flow()
}

func asConfig(value any) ActionConfig {
	switch v := value.(type) {
	case map[string]any:
		return v
	case string:
		return ActionConfig{"condition": "template", "value_template": v}
	case nil:
		return ActionConfig{}
	default:
		return ActionConfig{"value": v}
	}
}

func asConfigList(value any) []ActionConfig {
	switch v := value.(type) {
	case []any:
		out := make([]ActionConfig, 0, len(v))
		for _, item := range v {
			out = append(out, asConfig(item))
		}
		return out
	case map[string]any:
		return []ActionConfig{v}
	default:
		return nil
	}
}

func has(cfg ActionConfig, key string) bool {
	v, ok := cfg[key]
	return ok && v != nil
}

// Alias returns the user-given name of cfg, if any.
func Alias(cfg ActionConfig) string {
	s, _ := cfg["alias"].(string)
	return s
}

// IsDisabled reports whether cfg is switched off with "enabled: false".
func IsDisabled(cfg ActionConfig) bool {
	enabled, ok := cfg["enabled"].(bool)
	return ok && !enabled
}

// choiceIndex interprets a recorded choose result. JSON numbers arrive as
// float64, YAML ones as int.
func choiceIndex(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		if n != float64(int(n)) {
			return 0, false
		}
		return int(n), true
	case string:
		i, err := strconv.Atoi(n)
		return i, err == nil
	default:
		return 0, false
	}
}

// stringify renders an arbitrary result value for display.
func stringify(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
