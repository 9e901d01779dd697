package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"habitflow/pkg/otel"
	"habitflow/pkg/trace"
)

// TraceHeader 消息头中携带的 trace id
const TraceHeader = "x-trace-id"

type Publisher struct {
	conn    *amqp091.Connection
	channel *amqp091.Channel
}

// NewPublisher opens a publishing channel; name labels the connection on the broker.
func NewPublisher(url, name string) (*Publisher, error) {
	conn, err := NewConnection(url, name)
	if err != nil {
		return nil, err
	}
	ch, err := openChannel(conn)
	if err != nil {
		return nil, err
	}
	if err := DeclareDLQExchange(ch); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare dlq exchange: %w", err)
	}

	return &Publisher{
		conn:    conn,
		channel: ch,
	}, nil
}

func (p *Publisher) Close() {
	if p.channel != nil {
		_ = p.channel.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
}

// IsConnected checks if the publisher connection is still alive
func (p *Publisher) IsConnected() bool {
	if p.conn == nil || p.channel == nil {
		return false
	}
	return !p.conn.IsClosed()
}

// Publish publishes an event to the exchange with the given routing key.
func (p *Publisher) Publish(routingKey string, payload any) error {
	return p.PublishWithContext(context.Background(), routingKey, payload)
}

// PublishWithContext 发布事件，并把 ctx 中的 trace id 与 span context 写入消息头
func (p *Publisher) PublishWithContext(ctx context.Context, routingKey string, payload any) (err error) {
	ctx, span := otel.StartPublishSpan(ctx, ExchangeName, routingKey)
	defer func() { otel.EndSpan(span, err) }()

	body, err := encode(payload)
	if err != nil {
		return err
	}

	return p.channel.PublishWithContext(
		ctx,
		ExchangeName,
		routingKey,
		false,
		false,
		newPublishing(ctx, body),
	)
}

func newPublishing(ctx context.Context, body []byte) amqp091.Publishing {
	msg := amqp091.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp091.Persistent,
		Timestamp:    time.Now(),
	}
	headers := amqp091.Table{}
	if traceID := trace.FromContext(ctx); traceID != "" {
		headers[TraceHeader] = traceID
	}
	otel.InjectAMQP(ctx, headers)
	if len(headers) > 0 {
		msg.Headers = headers
	}
	return msg
}

// 已经序列化的 payload 不重复编码
func encode(payload any) ([]byte, error) {
	switch v := payload.(type) {
	case []byte:
		return v, nil
	case json.RawMessage:
		return v, nil
	default:
		body, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal payload: %w", err)
		}
		return body, nil
	}
}
