package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"habitflow/pkg/metrics"
	"habitflow/pkg/otel"
	"habitflow/pkg/trace"
)

// MessageHandler 处理一条消息；routingKey 为实际投递的路由键
type MessageHandler func(ctx context.Context, routingKey string, data json.RawMessage) error

type Consumer struct {
	channel     *amqp091.Channel
	queue       amqp091.Queue
	routingKeys []string
	handler     MessageHandler
	conn        *amqp091.Connection
	logger      *zap.Logger
}

// NewConsumer creates a consumer whose queue is bound to every given routing key.
func NewConsumer(url, queueName string, routingKeys []string, logger *zap.Logger) (*Consumer, error) {
	if len(routingKeys) == 0 {
		return nil, fmt.Errorf("no routing keys for queue %s", queueName)
	}

	conn, err := NewConnection(url, "habitflow-"+queueName)
	if err != nil {
		return nil, err
	}
	ch, err := openChannel(conn)
	if err != nil {
		return nil, err
	}

	q, err := declareQueue(ch, queueName, routingKeys)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	logger.Info("Consumer initialized",
		zap.Strings("routing_keys", routingKeys),
		zap.String("queue", queueName),
		zap.String("exchange", ExchangeName),
	)

	return &Consumer{
		conn:        conn,
		channel:     ch,
		queue:       q,
		routingKeys: routingKeys,
		logger:      logger,
	}, nil
}

func (c *Consumer) SetHandler(h MessageHandler) {
	c.handler = h
}

func (c *Consumer) Close() {
	if c.channel != nil {
		_ = c.channel.Close()
	}
	if c.conn != nil {
		_ = c.conn.Close()
	}
}

// StartConsuming consumes until ctx is cancelled or the channel closes.
func (c *Consumer) StartConsuming(ctx context.Context) error {
	if c.handler == nil {
		return fmt.Errorf("consumer handler not set")
	}

	deliveries, err := c.channel.Consume(
		c.queue.Name,
		"worker",
		false, // 手动ack
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	c.logger.Info("Consumer started consuming messages",
		zap.Strings("routing_keys", c.routingKeys),
		zap.String("queue", c.queue.Name),
	)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-deliveries:
			if !ok {
				return fmt.Errorf("delivery channel closed")
			}
			dispatch(ctx, c.logger, c.queue.Name, c.handler, msg)
		}
	}
}

// dispatch 保证每条消息都会被 ack 或 nack
func dispatch(ctx context.Context, logger *zap.Logger, queue string, handler MessageHandler, msg amqp091.Delivery) {
	start := time.Now()
	traceID, _ := msg.Headers[TraceHeader].(string)
	ctx = trace.WithContext(otel.ExtractAMQP(ctx, msg.Headers), trace.FromHeader(traceID))
	ctx, span := otel.StartConsumeSpan(ctx, queue, msg.RoutingKey)
	defer span.End()
	log := logger.With(
		zap.String("routing_key", msg.RoutingKey),
		zap.String("queue", queue),
		zap.String("trace_id", trace.FromContext(ctx)),
	)

	log.Debug("Received message", zap.Int("message_size", len(msg.Body)))

	// Panic 恢复：确保即使 handler panic 也能正确处理消息
	defer func() {
		if r := recover(); r != nil {
			log.Error("Handler panic recovered", zap.Any("panic", r))
			if err := msg.Nack(false, true); err != nil {
				log.Error("Failed to nack message after panic", zap.Error(err))
			}
		}
	}()

	if err := handler(ctx, msg.RoutingKey, msg.Body); err != nil {
		log.Error("Handler error", zap.Error(err))
		span.RecordError(err)
		// 业务失败 → 拒绝消息并重新入队，让 MQ 重试
		if err := msg.Nack(false, true); err != nil {
			log.Error("Failed to nack message", zap.Error(err))
		}
		return
	}

	if err := msg.Ack(false); err != nil {
		log.Error("Failed to ack message", zap.Error(err))
		return
	}
	metrics.RecordMQConsumeLatency(msg.RoutingKey, queue, time.Since(start))
	log.Debug("Message processed successfully")
}
