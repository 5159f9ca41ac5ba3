// Package describe turns automation action configs into short sentences
// for the timeline.
package describe

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/nerrad567/gray-logic-trace/internal/trace"
)

// Message keys, defined in the describe catalog namespace.
const (
	MsgSequence          = "describe.sequence"
	MsgParallel          = "describe.parallel"
	MsgChoose            = "describe.choose"
	MsgIf                = "describe.if"
	MsgRepeat            = "describe.repeat"
	MsgRepeatCount       = "describe.repeat_count"
	MsgRepeatWhile       = "describe.repeat_while"
	MsgRepeatUntil       = "describe.repeat_until"
	MsgRepeatForEach     = "describe.repeat_for_each"
	MsgDelay             = "describe.delay"
	MsgWaitTemplate      = "describe.wait_template"
	MsgWaitForTrigger    = "describe.wait_for_trigger"
	MsgConditionState    = "describe.condition_state"
	MsgConditionTemplate = "describe.condition_template"
	MsgConditionAnd      = "describe.condition_and"
	MsgConditionOr       = "describe.condition_or"
	MsgConditionNot      = "describe.condition_not"
	MsgCondition         = "describe.condition"
	MsgEvent             = "describe.event"
	MsgDevice            = "describe.device"
	MsgVariables         = "describe.variables"
	MsgStop              = "describe.stop"
	MsgStopPlain         = "describe.stop_plain"
	MsgConversation      = "describe.conversation"
	MsgScene             = "describe.scene"
	MsgService           = "describe.service"
	MsgServiceOn         = "describe.service_on"
	MsgUnknown           = "describe.unknown"
)

// Describer describes actions in one locale.
type Describer struct {
	loc trace.Localizer
}

// New returns a Describer that formats through loc.
func New(loc trace.Localizer) *Describer {
	return &Describer{loc: loc}
}

// Describe implements trace.DescribeFn. The alias wins when present.
func (d *Describer) Describe(action trace.ActionConfig, flow trace.FlowType) string {
	if alias := trace.Alias(action); alias != "" {
		return alias
	}

	switch flow {
	case trace.FlowSequence:
		return d.loc.Text(MsgSequence)
	case trace.FlowParallel:
		return d.loc.Text(MsgParallel)
	case trace.FlowChoose:
		return d.loc.Text(MsgChoose)
	case trace.FlowIf:
		return d.loc.Text(MsgIf)
	case trace.FlowRepeat:
		return d.repeat(action)
	}
	return d.leaf(action)
}

func (d *Describer) repeat(action trace.ActionConfig) string {
	spec, _ := action["repeat"].(map[string]any)
	switch {
	case spec == nil:
		return d.loc.Text(MsgRepeat)
	case spec["count"] != nil:
		if n, ok := intValue(spec["count"]); ok {
			return d.loc.Text(MsgRepeatCount, n)
		}
		return d.loc.Text(MsgRepeat)
	case spec["while"] != nil:
		return d.loc.Text(MsgRepeatWhile)
	case spec["until"] != nil:
		return d.loc.Text(MsgRepeatUntil)
	case spec["for_each"] != nil:
		return d.loc.Text(MsgRepeatForEach)
	default:
		return d.loc.Text(MsgRepeat)
	}
}

// leaf picks the description by the first recognised key, in the same
// precedence the automation engine uses to type an action.
func (d *Describer) leaf(action trace.ActionConfig) string {
	switch {
	case action["delay"] != nil:
		return d.loc.Text(MsgDelay, formatDelay(action["delay"]))
	case action["wait_template"] != nil:
		return d.loc.Text(MsgWaitTemplate)
	case action["condition"] != nil:
		return d.condition(action)
	case action["and"] != nil:
		return d.loc.Text(MsgConditionAnd)
	case action["or"] != nil:
		return d.loc.Text(MsgConditionOr)
	case action["not"] != nil:
		return d.loc.Text(MsgConditionNot)
	case action["event"] != nil:
		return d.loc.Text(MsgEvent, str(action["event"]))
	case action["device_id"] != nil:
		return d.loc.Text(MsgDevice, str(action["device_id"]))
	case action["wait_for_trigger"] != nil:
		return d.loc.Text(MsgWaitForTrigger)
	case action["variables"] != nil:
		return d.loc.Text(MsgVariables)
	case action["stop"] != nil:
		if reason := str(action["stop"]); reason != "" {
			return d.loc.Text(MsgStop, reason)
		}
		return d.loc.Text(MsgStopPlain)
	case action["set_conversation_response"] != nil:
		return d.loc.Text(MsgConversation)
	case action["scene"] != nil:
		return d.loc.Text(MsgScene, str(action["scene"]))
	case action["action"] != nil || action["service"] != nil:
		return d.service(action)
	default:
		return d.loc.Text(MsgUnknown)
	}
}

func (d *Describer) condition(action trace.ActionConfig) string {
	kind := str(action["condition"])
	switch kind {
	case "state":
		if entity := joinList(action["entity_id"]); entity != "" {
			return d.loc.Text(MsgConditionState, entity, joinList(action["state"]))
		}
	case "template":
		return d.loc.Text(MsgConditionTemplate)
	case "and":
		return d.loc.Text(MsgConditionAnd)
	case "or":
		return d.loc.Text(MsgConditionOr)
	case "not":
		return d.loc.Text(MsgConditionNot)
	}
	return d.loc.Text(MsgCondition, kind)
}

func (d *Describer) service(action trace.ActionConfig) string {
	name := str(action["action"])
	if name == "" {
		name = str(action["service"])
	}

	target := joinList(action["entity_id"])
	if t, ok := action["target"].(map[string]any); ok {
		for _, key := range []string{"entity_id", "device_id", "area_id"} {
			if target = joinList(t[key]); target != "" {
				break
			}
		}
	}
	if target == "" {
		return d.loc.Text(MsgService, name)
	}
	return d.loc.Text(MsgServiceOn, name, target)
}

// formatDelay renders seconds, "HH:MM:SS" strings and duration mappings as
// H:MM:SS. Templates are shown verbatim.
func formatDelay(v any) string {
	var dur time.Duration
	switch delay := v.(type) {
	case string:
		return delay
	case map[string]any:
		dur = time.Duration(floatValue(delay["days"])*24*float64(time.Hour)) +
			time.Duration(floatValue(delay["hours"])*float64(time.Hour)) +
			time.Duration(floatValue(delay["minutes"])*float64(time.Minute)) +
			time.Duration(floatValue(delay["seconds"])*float64(time.Second)) +
			time.Duration(floatValue(delay["milliseconds"])*float64(time.Millisecond))
	default:
		dur = time.Duration(floatValue(delay) * float64(time.Second))
	}

	h := int(dur / time.Hour)
	m := int(dur % time.Hour / time.Minute)
	s := int(dur % time.Minute / time.Second)
	if ms := int(dur % time.Second / time.Millisecond); ms > 0 {
		return fmt.Sprintf("%d:%02d:%02d.%03d", h, m, s, ms)
	}
	return fmt.Sprintf("%d:%02d:%02d", h, m, s)
}

func str(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	default:
		return fmt.Sprint(s)
	}
}

func joinList(v any) string {
	list, ok := v.([]any)
	if !ok {
		return str(v)
	}
	parts := make([]string, 0, len(list))
	for _, item := range list {
		parts = append(parts, str(item))
	}
	sort.Strings(parts)
	return strings.Join(parts, ", ")
}

func intValue(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), n == float64(int(n))
	default:
		return 0, false
	}
}

func floatValue(v any) float64 {
	switch n := v.(type) {
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case float64:
		return n
	default:
		return 0
	}
}
