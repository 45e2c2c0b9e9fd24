package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/turtacn/hypocal-explain/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/hypocal-explain/pkg/errors"
)

const (
	// TopicAssessments carries every assessment event.
	TopicAssessments = "hypocal.assessments"

	EventRiskEstimated        = "risk.estimated"
	EventCounterfactualSolved = "counterfactual.solved"
	EventExplanationGenerated = "explanation.generated"

	SourceService = "hypocal-explain"
	SchemaVersion = "v1"
)

// Header keys written on every event message.
const (
	HeaderEventType     = "event_type"
	HeaderSourceService = "source_service"
	HeaderSchemaVersion = "schema_version"
	HeaderTraceID       = "trace_id"
)

// EventEnvelope wraps an event payload with routing metadata.
type EventEnvelope struct {
	EventID       string            `json:"event_id"`
	EventType     string            `json:"event_type"`
	Source        string            `json:"source"`
	Timestamp     time.Time         `json:"timestamp"`
	SchemaVersion string            `json:"schema_version"`
	TraceID       string            `json:"trace_id,omitempty"`
	Payload       json.RawMessage   `json:"payload"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

// NewEventEnvelope marshals payload into a fresh envelope.
func NewEventEnvelope(eventType, source string, payload interface{}) (*EventEnvelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to marshal event payload")
	}
	return &EventEnvelope{
		EventID:       uuid.New().String(),
		EventType:     eventType,
		Source:        source,
		Timestamp:     time.Now().UTC(),
		SchemaVersion: SchemaVersion,
		Payload:       raw,
	}, nil
}

// DecodePayload unmarshals the payload into target.
func (e *EventEnvelope) DecodePayload(target interface{}) error {
	if err := json.Unmarshal(e.Payload, target); err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "failed to decode event payload")
	}
	return nil
}

// ToMessage encodes the envelope as a producer message keyed by key.
func (e *EventEnvelope) ToMessage(topic, key string) (*Message, error) {
	value, err := json.Marshal(e)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to marshal event envelope")
	}
	headers := map[string]string{
		HeaderEventType:     e.EventType,
		HeaderSourceService: e.Source,
		HeaderSchemaVersion: e.SchemaVersion,
	}
	if e.TraceID != "" {
		headers[HeaderTraceID] = e.TraceID
	}
	if key == "" {
		key = e.EventID
	}
	return &Message{
		Topic:     topic,
		Key:       []byte(key),
		Value:     value,
		Headers:   headers,
		Timestamp: e.Timestamp,
	}, nil
}

// MessagePublisher is the subset of Producer used by EventPublisher.
type MessagePublisher interface {
	Publish(ctx context.Context, msg *Message) error
}

// EventPublisher emits assessment events onto a single topic.
type EventPublisher struct {
	producer MessagePublisher
	topic    string
	logger   logging.Logger
}

// NewEventPublisher returns a publisher writing to topic, or to
// TopicAssessments when topic is empty.
func NewEventPublisher(producer MessagePublisher, topic string, logger logging.Logger) *EventPublisher {
	if topic == "" {
		topic = TopicAssessments
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &EventPublisher{producer: producer, topic: topic, logger: logger}
}

// PublishEvent wraps payload in an envelope and publishes it. The request id
// carried by ctx, if any, becomes the trace id.
func (p *EventPublisher) PublishEvent(ctx context.Context, eventType, key string, payload interface{}) error {
	env, err := NewEventEnvelope(eventType, SourceService, payload)
	if err != nil {
		return err
	}
	env.TraceID = logging.RequestIDFromContext(ctx)
	msg, err := env.ToMessage(p.topic, key)
	if err != nil {
		return err
	}
	if err := p.producer.Publish(ctx, msg); err != nil {
		p.logger.Warn("event publish failed",
			logging.String("event_type", eventType),
			logging.String("event_id", env.EventID),
			logging.Err(err))
		return err
	}
	return nil
}

//Personal.AI order the ending
