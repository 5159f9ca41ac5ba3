package mqtt

import (
	"fmt"
	"strings"
)

// TopicPrefix is the root of every Gray Logic topic.
const TopicPrefix = "graylogic"

// Topics provides builders for the topics graytrace uses.
//
//	topic := mqtt.Topics{}.Trace("automation", "hallway_lights")
//	// Returns: "graylogic/trace/automation/hallway_lights"
type Topics struct{}

// Trace returns the topic a run of domain/itemID is published on.
func (Topics) Trace(domain, itemID string) string {
	return fmt.Sprintf("%s/trace/%s/%s", TopicPrefix, domain, itemID)
}

// State returns the state topic of one device behind a bridge.
//
// Example: graylogic/state/knx/light-living-main
func (Topics) State(protocol, address string) string {
	return fmt.Sprintf("%s/state/%s/%s", TopicPrefix, protocol, address)
}

// AllTraces matches every trace topic.
func (Topics) AllTraces() string {
	return TopicPrefix + "/trace/+/+"
}

// AllStates matches every bridge state topic.
func (Topics) AllStates() string {
	return TopicPrefix + "/state/+/+"
}

// ServiceStatus returns the retained online/offline topic for clientID.
//
// Example: graylogic/system/status/graytrace-01
func (Topics) ServiceStatus(clientID string) string {
	return fmt.Sprintf("%s/system/status/%s", TopicPrefix, clientID)
}

// ParseTrace splits a trace topic into its domain and item ID.
func ParseTrace(topic string) (domain, itemID string, ok bool) {
	return parseTwoLevel(topic, "trace")
}

// ParseState splits a state topic into its protocol and device address.
func ParseState(topic string) (protocol, address string, ok bool) {
	return parseTwoLevel(topic, "state")
}

func parseTwoLevel(topic, category string) (first, second string, ok bool) {
	parts := strings.Split(topic, "/")
	if len(parts) != 4 || parts[0] != TopicPrefix || parts[1] != category {
		return "", "", false
	}
	if parts[2] == "" || parts[3] == "" {
		return "", "", false
	}
	return parts[2], parts[3], true
}

// Matches reports whether topic matches an MQTT subscription filter,
// honouring the + and # wildcards.
func Matches(filter, topic string) bool {
	f := strings.Split(filter, "/")
	t := strings.Split(topic, "/")
	for i, part := range f {
		if part == "#" {
			return true
		}
		if i >= len(t) {
			return false
		}
		if part != "+" && part != t[i] {
			return false
		}
	}
	return len(f) == len(t)
}
