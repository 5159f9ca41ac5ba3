package recorder

import (
	"fmt"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/nerrad567/gray-logic-trace/internal/infrastructure/mqtt"
	"github.com/nerrad567/gray-logic-trace/internal/trace"
)

// decodeState maps a state message onto a logbook entry.
//
// Accepted payload fields: entity_id or device_id, name, domain, state
// (string or object), message, context_id and timestamp (RFC 3339 or epoch
// seconds). Topic levels fill in a missing domain and entity.
func decodeState(topic string, payload []byte, now func() time.Time) (trace.LogEntry, error) {
	if !gjson.ValidBytes(payload) {
		return trace.LogEntry{}, fmt.Errorf("%w: state on %s is not JSON", ErrInvalidPayload, topic)
	}
	doc := gjson.ParseBytes(payload)
	if !doc.IsObject() {
		return trace.LogEntry{}, fmt.Errorf("%w: state on %s is not an object", ErrInvalidPayload, topic)
	}

	protocol, address, _ := mqtt.ParseState(topic)

	e := trace.LogEntry{
		EntityID:  firstString(doc, "entity_id", "device_id"),
		Name:      doc.Get("name").String(),
		Domain:    doc.Get("domain").String(),
		Message:   doc.Get("message").String(),
		ContextID: doc.Get("context_id").String(),
		State:     stateText(doc.Get("state")),
	}
	if e.EntityID == "" {
		e.EntityID = address
	}
	if e.Domain == "" {
		e.Domain = entityDomain(e.EntityID, protocol)
	}
	if e.EntityID == "" {
		return trace.LogEntry{}, fmt.Errorf("%w: state on %s names no entity", ErrInvalidPayload, topic)
	}

	when, err := stateTime(doc.Get("timestamp"), now)
	if err != nil {
		return trace.LogEntry{}, fmt.Errorf("%w: state on %s: %w", ErrInvalidPayload, topic, err)
	}
	e.When = trace.EpochSeconds(when)
	return e, nil
}

func firstString(doc gjson.Result, keys ...string) string {
	for _, k := range keys {
		if v := doc.Get(k).String(); v != "" {
			return v
		}
	}
	return ""
}

// entityDomain uses the "domain." prefix of an entity ID when there is one.
func entityDomain(entityID, fallback string) string {
	if domain, _, ok := strings.Cut(entityID, "."); ok && domain != "" {
		return domain
	}
	return fallback
}

// stateText flattens a state value. Objects keep their key order; a boolean
// "on" key reads as on/off.
func stateText(v gjson.Result) string {
	if !v.IsObject() {
		return v.String()
	}
	var parts []string
	v.ForEach(func(key, value gjson.Result) bool {
		if key.String() == "on" && value.IsBool() {
			if value.Bool() {
				parts = append(parts, "on")
			} else {
				parts = append(parts, "off")
			}
			return true
		}
		parts = append(parts, key.String()+"="+value.String())
		return true
	})
	return strings.Join(parts, ", ")
}

func stateTime(v gjson.Result, now func() time.Time) (time.Time, error) {
	switch v.Type {
	case gjson.Null:
		return now(), nil
	case gjson.Number:
		return time.UnixMicro(int64(v.Float() * 1e6)).UTC(), nil
	case gjson.String:
		t, err := time.Parse(time.RFC3339Nano, v.String())
		if err != nil {
			return time.Time{}, fmt.Errorf("parsing timestamp: %w", err)
		}
		return t, nil
	default:
		return time.Time{}, fmt.Errorf("unsupported timestamp %s", v.Raw)
	}
}
