package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mzton/vantage/internal/constants"
	"github.com/mzton/vantage/internal/contextkeys"
	"github.com/mzton/vantage/internal/core/domain"
	"github.com/mzton/vantage/internal/core/port"
)

type publishCall struct {
	routingKey  string
	msg         amqp.Publishing
	hasDeadline bool
}

type fakePublisher struct {
	calls []publishCall
	err   error
}

func (f *fakePublisher) Publish(ctx context.Context, routingKey string, msg amqp.Publishing) error {
	_, ok := ctx.Deadline()
	f.calls = append(f.calls, publishCall{routingKey: routingKey, msg: msg, hasDeadline: ok})
	return f.err
}

func TestSessionEventsAdapter_Publish(t *testing.T) {
	fake := &fakePublisher{}
	adapter, err := NewSessionEventsAdapter(fake)
	require.NoError(t, err)

	ctx := contextkeys.ContextWithTraceID(context.Background(), "trace-1")
	event := domain.SessionEvent{
		Type:       domain.EventListingSelected,
		SessionID:  "s-1",
		ListingID:  "3",
		RequestSeq: 4,
		OccurredAt: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
	}
	require.NoError(t, adapter.Publish(ctx, event))

	require.Len(t, fake.calls, 1)
	call := fake.calls[0]
	assert.Equal(t, constants.RoutingKeyListingSelected, call.routingKey)
	assert.True(t, call.hasDeadline)
	assert.Equal(t, "trace-1", call.msg.Headers["x-trace-id"])
	assert.Equal(t, "application/json", call.msg.ContentType)

	var decoded domain.SessionEvent
	require.NoError(t, json.Unmarshal(call.msg.Body, &decoded))
	assert.Equal(t, event, decoded)
}

func TestSessionEventsAdapter_RejectsInvalidEvents(t *testing.T) {
	fake := &fakePublisher{}
	adapter, err := NewSessionEventsAdapter(fake)
	require.NoError(t, err)

	err = adapter.Publish(context.Background(), domain.SessionEvent{Type: "unknown", SessionID: "s-1", OccurredAt: time.Now()})
	assert.Error(t, err)

	// listing_selected requires a listing id
	err = adapter.Publish(context.Background(), domain.SessionEvent{Type: domain.EventListingSelected, SessionID: "s-1", OccurredAt: time.Now()})
	assert.Error(t, err)

	assert.Empty(t, fake.calls)
}

func TestSessionEventsAdapter_PublishError(t *testing.T) {
	fake := &fakePublisher{err: errors.New("channel closed")}
	adapter, err := NewSessionEventsAdapter(fake)
	require.NoError(t, err)

	err = adapter.Publish(context.Background(), domain.SessionEvent{
		Type:       domain.EventSelectionCleared,
		SessionID:  "s-1",
		OccurredAt: time.Now(),
	})
	require.Error(t, err)
	assert.Equal(t, constants.RoutingKeySelectionCleared, fake.calls[0].routingKey)
}

func TestNewSessionEventsAdapter_NilProducer(t *testing.T) {
	_, err := NewSessionEventsAdapter(nil)
	assert.Error(t, err)
}

type recordingLogger struct {
	entries []port.Fields
}

func (r *recordingLogger) Info(msg string, fields port.Fields)             { r.entries = append(r.entries, fields) }
func (r *recordingLogger) Warn(msg string, fields port.Fields)             { r.entries = append(r.entries, fields) }
func (r *recordingLogger) Error(msg string, err error, fields port.Fields) { r.entries = append(r.entries, fields) }
func (r *recordingLogger) Debug(msg string, fields port.Fields)            { r.entries = append(r.entries, fields) }
func (r *recordingLogger) WithFields(fields port.Fields) port.LoggerPort   { return r }

func TestPkgLoggerBridge_ToFields(t *testing.T) {
	rec := &recordingLogger{}
	bridge := NewPkgLoggerBridge(rec)

	bridge.Info("declared", "name", "exchange", "type", "topic", 42, "ignored", "dangling")
	require.Len(t, rec.entries, 1)
	assert.Equal(t, port.Fields{"name": "exchange", "type": "topic"}, rec.entries[0])
}
