package mq

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"habitflow/pkg/trace"
)

type fakeAcker struct {
	acked   int
	nacked  int
	requeue bool
}

func (f *fakeAcker) Ack(uint64, bool) error { f.acked++; return nil }

func (f *fakeAcker) Nack(_ uint64, _ bool, requeue bool) error {
	f.nacked++
	f.requeue = requeue
	return nil
}

func (f *fakeAcker) Reject(uint64, bool) error { return nil }

func delivery(acker *fakeAcker, headers amqp091.Table) amqp091.Delivery {
	return amqp091.Delivery{
		Acknowledger: acker,
		RoutingKey:   "habit.log.recorded",
		Headers:      headers,
		Body:         []byte(`{"habit_id":"h1"}`),
	}
}

func TestDispatchAcksOnSuccess(t *testing.T) {
	acker := &fakeAcker{}
	var gotTrace, gotKey string
	handler := func(ctx context.Context, key string, data json.RawMessage) error {
		gotTrace = trace.FromContext(ctx)
		gotKey = key
		return nil
	}

	dispatch(context.Background(), zap.NewNop(), "q", handler, delivery(acker, amqp091.Table{TraceHeader: "trace-1"}))

	assert.Equal(t, 1, acker.acked)
	assert.Equal(t, 0, acker.nacked)
	assert.Equal(t, "trace-1", gotTrace)
	assert.Equal(t, "habit.log.recorded", gotKey)
}

func TestDispatchGeneratesTraceWhenMissing(t *testing.T) {
	acker := &fakeAcker{}
	var gotTrace string
	handler := func(ctx context.Context, _ string, _ json.RawMessage) error {
		gotTrace = trace.FromContext(ctx)
		return nil
	}

	dispatch(context.Background(), zap.NewNop(), "q", handler, delivery(acker, nil))
	assert.NotEmpty(t, gotTrace)
}

func TestDispatchNacksOnError(t *testing.T) {
	acker := &fakeAcker{}
	handler := func(context.Context, string, json.RawMessage) error { return errors.New("boom") }

	dispatch(context.Background(), zap.NewNop(), "q", handler, delivery(acker, nil))

	assert.Equal(t, 0, acker.acked)
	assert.Equal(t, 1, acker.nacked)
	assert.True(t, acker.requeue)
}

func TestDispatchRecoversPanic(t *testing.T) {
	acker := &fakeAcker{}
	handler := func(context.Context, string, json.RawMessage) error { panic("bad") }

	assert.NotPanics(t, func() {
		dispatch(context.Background(), zap.NewNop(), "q", handler, delivery(acker, nil))
	})
	assert.Equal(t, 1, acker.nacked)
}

func TestEncode(t *testing.T) {
	raw := []byte(`{"a":1}`)
	got, err := encode(raw)
	assert.NoError(t, err)
	assert.Equal(t, raw, got)

	got, err = encode(map[string]int{"a": 1})
	assert.NoError(t, err)
	assert.JSONEq(t, `{"a":1}`, string(got))

	_, err = encode(make(chan int))
	assert.Error(t, err)
}

func TestNewPublishingCarriesTrace(t *testing.T) {
	msg := newPublishing(trace.WithContext(context.Background(), "abc"), []byte("{}"))
	assert.Equal(t, "abc", msg.Headers[TraceHeader])
	assert.Equal(t, amqp091.Persistent, msg.DeliveryMode)

	msg = newPublishing(context.Background(), []byte("{}"))
	assert.Nil(t, msg.Headers)
}
