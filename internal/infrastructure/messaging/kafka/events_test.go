package kafka

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/hypocal-explain/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/hypocal-explain/internal/testutil"
	"github.com/turtacn/hypocal-explain/pkg/errors"
)

type riskPayload struct {
	Variant     string  `json:"variant"`
	Probability float64 `json:"probability"`
}

type recordingPublisher struct {
	msgs []*Message
	err  error
}

func (r *recordingPublisher) Publish(_ context.Context, msg *Message) error {
	r.msgs = append(r.msgs, msg)
	return r.err
}

func TestNewEventEnvelope(t *testing.T) {
	env, err := NewEventEnvelope(EventRiskEstimated, SourceService, riskPayload{"baseline", 0.02})
	require.NoError(t, err)

	_, err = uuid.Parse(env.EventID)
	assert.NoError(t, err)
	assert.Equal(t, SchemaVersion, env.SchemaVersion)
	assert.False(t, env.Timestamp.IsZero())

	var got riskPayload
	require.NoError(t, env.DecodePayload(&got))
	assert.Equal(t, "baseline", got.Variant)
	assert.InDelta(t, 0.02, got.Probability, 1e-12)
}

func TestNewEventEnvelope_Unmarshalable(t *testing.T) {
	_, err := NewEventEnvelope(EventRiskEstimated, SourceService, make(chan int))
	assert.True(t, errors.IsCode(err, errors.ErrCodeSerialization))
}

func TestEventEnvelope_ToMessage(t *testing.T) {
	env, err := NewEventEnvelope(EventExplanationGenerated, SourceService, riskPayload{})
	require.NoError(t, err)
	env.TraceID = "trace-1"

	msg, err := env.ToMessage(TopicAssessments, "")
	require.NoError(t, err)
	assert.Equal(t, []byte(env.EventID), msg.Key)
	assert.Equal(t, EventExplanationGenerated, msg.Headers[HeaderEventType])
	assert.Equal(t, "trace-1", msg.Headers[HeaderTraceID])

	var decoded EventEnvelope
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, env.EventID, decoded.EventID)
}

func TestEventPublisher_PublishEvent(t *testing.T) {
	rec := &recordingPublisher{}
	pub := NewEventPublisher(rec, "", nil)

	ctx := logging.WithRequestID(context.Background(), "req-9")
	require.NoError(t, pub.PublishEvent(ctx, EventCounterfactualSolved, "baseline", riskPayload{"baseline", 0.4}))

	require.Len(t, rec.msgs, 1)
	msg := rec.msgs[0]
	assert.Equal(t, TopicAssessments, msg.Topic)
	assert.Equal(t, []byte("baseline"), msg.Key)
	assert.Equal(t, "req-9", msg.Headers[HeaderTraceID])
	assert.Equal(t, SourceService, msg.Headers[HeaderSourceService])
}

func TestEventPublisher_FailureIsLogged(t *testing.T) {
	log := testutil.NewMockLogger()
	rec := &recordingPublisher{err: stderrors.New("down")}
	pub := NewEventPublisher(rec, "custom", log)

	err := pub.PublishEvent(context.Background(), EventRiskEstimated, "", riskPayload{})
	assert.Error(t, err)
	assert.Equal(t, "custom", rec.msgs[0].Topic)
	assert.Equal(t, 1, log.Count("warn"))
}

//Personal.AI order the ending
