package recorder

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nerrad567/gray-logic-trace/internal/infrastructure/mqtt"
	"github.com/nerrad567/gray-logic-trace/internal/trace"
)

// EventTraceRecorded is the WebSocket channel new and updated runs are
// announced on.
const EventTraceRecorded = "trace.recorded"

const storeTimeout = 5 * time.Second

// TraceStore persists run records.
type TraceStore interface {
	Save(ctx context.Context, rec *trace.Record) error
}

// LogbookStore persists state changes.
type LogbookStore interface {
	Record(ctx context.Context, e trace.LogEntry) error
}

// MetricsWriter receives every stored run. It may ignore runs that have
// not finished.
type MetricsWriter interface {
	WriteRun(rec *trace.Record) bool
}

// Broadcaster pushes events to connected clients.
type Broadcaster interface {
	Broadcast(channel string, payload any)
}

// Subscriber is the part of the MQTT client the recorder needs.
type Subscriber interface {
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error
}

// Logger is the logging interface used by the recorder.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Deps holds the recorder's collaborators. Metrics, Broadcaster and Logger
// are optional.
type Deps struct {
	Traces      TraceStore
	Logbook     LogbookStore
	Metrics     MetricsWriter
	Broadcaster Broadcaster
	Logger      Logger

	// TraceTopic and StateTopic default to the graylogic wildcards.
	TraceTopic string
	StateTopic string
	QoS        byte
}

// TraceSummary is the payload of a trace.recorded event.
type TraceSummary struct {
	RunID           string          `json:"run_id"`
	Domain          string          `json:"domain"`
	ItemID          string          `json:"item_id"`
	State           trace.RunState  `json:"state"`
	ScriptExecution trace.Execution `json:"script_execution,omitempty"`
}

// Recorder handles trace and state messages.
type Recorder struct {
	traces      TraceStore
	logbook     LogbookStore
	metrics     MetricsWriter
	broadcaster Broadcaster
	logger      Logger

	traceTopic string
	stateTopic string
	qos        byte

	now   func() time.Time
	newID func() string
}

// New validates deps and returns a Recorder.
func New(deps Deps) (*Recorder, error) {
	if deps.Traces == nil {
		return nil, fmt.Errorf("%w: trace store", ErrMissingDependency)
	}
	if deps.Logbook == nil {
		return nil, fmt.Errorf("%w: logbook store", ErrMissingDependency)
	}

	r := &Recorder{
		traces:      deps.Traces,
		logbook:     deps.Logbook,
		metrics:     deps.Metrics,
		broadcaster: deps.Broadcaster,
		logger:      deps.Logger,
		traceTopic:  deps.TraceTopic,
		stateTopic:  deps.StateTopic,
		qos:         deps.QoS,
		now:         time.Now,
		newID:       uuid.NewString,
	}
	if r.logger == nil {
		r.logger = noopLogger{}
	}
	if r.traceTopic == "" {
		r.traceTopic = mqtt.Topics{}.AllTraces()
	}
	if r.stateTopic == "" {
		r.stateTopic = mqtt.Topics{}.AllStates()
	}
	return r, nil
}

// Start subscribes both handlers.
func (r *Recorder) Start(sub Subscriber) error {
	if err := sub.Subscribe(r.traceTopic, r.qos, r.HandleTrace); err != nil {
		return fmt.Errorf("subscribing to %s: %w", r.traceTopic, err)
	}
	if err := sub.Subscribe(r.stateTopic, r.qos, r.HandleState); err != nil {
		return fmt.Errorf("subscribing to %s: %w", r.stateTopic, err)
	}
	r.logger.Info("recorder subscribed", "traces", r.traceTopic, "states", r.stateTopic)
	return nil
}

// HandleTrace stores one published run record.
//
// Domain and item ID missing from the payload are taken from the topic,
// and a run without an ID gets a fresh UUID.
func (r *Recorder) HandleTrace(topic string, payload []byte) error {
	var rec trace.Record
	if err := json.Unmarshal(payload, &rec); err != nil {
		return fmt.Errorf("%w: trace on %s: %w", ErrInvalidPayload, topic, err)
	}
	if domain, itemID, ok := mqtt.ParseTrace(topic); ok {
		if rec.Domain == "" {
			rec.Domain = domain
		}
		if rec.ItemID == "" {
			rec.ItemID = itemID
		}
	}
	if rec.Timestamp.Start.IsZero() {
		return fmt.Errorf("%w: trace on %s has no start time", ErrInvalidPayload, topic)
	}
	if rec.RunID == "" {
		rec.RunID = r.newID()
	}
	if rec.State == "" {
		rec.State = trace.StateStopped
		if rec.Timestamp.Finish == nil {
			rec.State = trace.StateRunning
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()
	if err := r.traces.Save(ctx, &rec); err != nil {
		r.logger.Error("storing trace failed", "run_id", rec.RunID, "error", err)
		return err
	}

	if r.metrics != nil {
		r.metrics.WriteRun(&rec)
	}
	if r.broadcaster != nil {
		r.broadcaster.Broadcast(EventTraceRecorded, TraceSummary{
			RunID:           rec.RunID,
			Domain:          rec.OwnDomain(),
			ItemID:          rec.ItemID,
			State:           rec.State,
			ScriptExecution: rec.ScriptExecution,
		})
	}

	r.logger.Debug("trace recorded",
		"run_id", rec.RunID,
		"item_id", rec.ItemID,
		"state", rec.State,
		"steps", len(rec.Steps),
	)
	return nil
}

// HandleState stores one bridge state change as a logbook entry.
func (r *Recorder) HandleState(topic string, payload []byte) error {
	entry, err := decodeState(topic, payload, r.now)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()
	if err := r.logbook.Record(ctx, entry); err != nil {
		r.logger.Error("storing logbook entry failed", "entity_id", entry.EntityID, "error", err)
		return err
	}
	return nil
}
