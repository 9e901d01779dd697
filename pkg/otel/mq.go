package otel

import (
	"context"

	"github.com/rabbitmq/amqp091-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// AMQPHeaderCarrier 让 traceparent/tracestate 通过 RabbitMQ 消息头传播
type AMQPHeaderCarrier amqp091.Table

func (c AMQPHeaderCarrier) Get(key string) string {
	if v, ok := c[key].(string); ok {
		return v
	}
	return ""
}

func (c AMQPHeaderCarrier) Set(key, value string) {
	c[key] = value
}

func (c AMQPHeaderCarrier) Keys() []string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	return keys
}

// InjectAMQP 把当前 span context 写入 headers（headers 不能为 nil）
func InjectAMQP(ctx context.Context, headers amqp091.Table) {
	otel.GetTextMapPropagator().Inject(ctx, AMQPHeaderCarrier(headers))
}

// ExtractAMQP 从消息头恢复上游 span context
func ExtractAMQP(ctx context.Context, headers amqp091.Table) context.Context {
	if headers == nil {
		return ctx
	}
	return otel.GetTextMapPropagator().Extract(ctx, AMQPHeaderCarrier(headers))
}

// StartPublishSpan 在 MQ 发布时创建 producer span
func StartPublishSpan(ctx context.Context, exchange, routingKey string) (context.Context, trace.Span) {
	return Tracer().Start(ctx, exchange+" publish",
		trace.WithSpanKind(trace.SpanKindProducer),
		trace.WithAttributes(
			attribute.String("messaging.system", "rabbitmq"),
			attribute.String("messaging.destination.name", exchange),
			attribute.String("messaging.rabbitmq.destination.routing_key", routingKey),
		),
	)
}

// StartConsumeSpan 在 MQ 消费时创建 consumer span；调用前应先 ExtractAMQP
func StartConsumeSpan(ctx context.Context, queue, routingKey string) (context.Context, trace.Span) {
	return Tracer().Start(ctx, queue+" process",
		trace.WithSpanKind(trace.SpanKindConsumer),
		trace.WithAttributes(
			attribute.String("messaging.system", "rabbitmq"),
			attribute.String("messaging.destination.name", queue),
			attribute.String("messaging.rabbitmq.destination.routing_key", routingKey),
		),
	)
}

// EndSpan 结束 span，并在 err 非空时标记错误
func EndSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
