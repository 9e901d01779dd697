package mq

import (
	"fmt"
	"time"

	"github.com/rabbitmq/amqp091-go"
)

// ExchangeName 领域事件的 topic exchange
const ExchangeName = "events"

const heartbeat = 10 * time.Second

// dialConfig 设置心跳和 connection_name，方便在管理界面区分 api 与 worker 的连接
func dialConfig(name string) amqp091.Config {
	return amqp091.Config{
		Heartbeat:  heartbeat,
		Locale:     "en_US",
		Properties: amqp091.Table{"connection_name": name},
	}
}

// NewConnection dials RabbitMQ and labels the connection with name.
func NewConnection(url, name string) (*amqp091.Connection, error) {
	conn, err := amqp091.DialConfig(url, dialConfig(name))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ as %s: %w", name, err)
	}
	return conn, nil
}

// openChannel opens a channel with the events exchange declared.
// The connection is closed when anything fails.
func openChannel(conn *amqp091.Connection) (*amqp091.Channel, error) {
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}
	if err := DeclareExchange(ch); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}
	return ch, nil
}

// DeclareExchange declares the events exchange.
func DeclareExchange(ch *amqp091.Channel) error {
	return ch.ExchangeDeclare(ExchangeName, "topic", true, false, false, false, nil)
}

// queueBinder is the part of *amqp091.Channel used to set up a consumer queue.
type queueBinder interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp091.Table) (amqp091.Queue, error)
	QueueBind(name, key, exchange string, noWait bool, args amqp091.Table) error
}

// declareQueue declares a durable queue and binds it to every routing key on the events exchange.
func declareQueue(ch queueBinder, name string, routingKeys []string) (amqp091.Queue, error) {
	q, err := ch.QueueDeclare(name, true, false, false, false, nil)
	if err != nil {
		return amqp091.Queue{}, fmt.Errorf("failed to declare queue: %w", err)
	}
	for _, key := range routingKeys {
		if err := ch.QueueBind(q.Name, key, ExchangeName, false, nil); err != nil {
			return amqp091.Queue{}, fmt.Errorf("failed to bind queue to %s: %w", key, err)
		}
	}
	return q, nil
}
