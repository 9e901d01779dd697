package mq

import (
	"errors"
	"testing"

	"github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBinder struct {
	declared string
	bound    []string
	bindErr  error
}

func (f *fakeBinder) QueueDeclare(name string, durable, _, _, _ bool, _ amqp091.Table) (amqp091.Queue, error) {
	if !durable {
		return amqp091.Queue{}, errors.New("queue must be durable")
	}
	f.declared = name
	return amqp091.Queue{Name: name}, nil
}

func (f *fakeBinder) QueueBind(name, key, exchange string, _ bool, _ amqp091.Table) error {
	if f.bindErr != nil {
		return f.bindErr
	}
	f.bound = append(f.bound, exchange+"/"+key+"->"+name)
	return nil
}

func TestDialConfig(t *testing.T) {
	cfg := dialConfig("habitflow-api")
	assert.Equal(t, heartbeat, cfg.Heartbeat)
	assert.Equal(t, "habitflow-api", cfg.Properties["connection_name"])
}

func TestDeclareQueue(t *testing.T) {
	b := &fakeBinder{}
	q, err := declareQueue(b, "snapshot.refresh", []string{"habit.created", "habit.logged"})
	require.NoError(t, err)
	assert.Equal(t, "snapshot.refresh", q.Name)
	assert.Equal(t, []string{
		"events/habit.created->snapshot.refresh",
		"events/habit.logged->snapshot.refresh",
	}, b.bound)

	_, err = declareQueue(&fakeBinder{bindErr: errors.New("access refused")}, "q", []string{"habit.created"})
	assert.ErrorContains(t, err, "habit.created")
}
