// Package rabbitmq содержит подключение к RabbitMQ, объявление обменника
// и очередей домена benefits и потребителя сообщений.
package rabbitmq

import (
	"fmt"

	"github.com/streadway/amqp"
)

// Exchange — обменник событий о покупках.
const Exchange = "benefits"

type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

// GetBenefitQueues возвращает очереди, которые объявляет и слушает
// отправитель уведомлений.
func GetBenefitQueues() []QueueConfig {
	return []QueueConfig{
		{QueueName: "benefits.purchase", RoutingKey: "purchase.created"},
	}
}

func SetupChannel(conn *amqp.Connection, queues []QueueConfig) (*amqp.Channel, error) {
	const op = "rabbitmq.SetupChannel"

	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := ch.Qos(10, 0, false); err != nil {
		return nil, fmt.Errorf("failed to set QoS: %w", err)
	}

	err = ch.ExchangeDeclare(
		Exchange,
		"direct",
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	for _, q := range queues {
		_, err := ch.QueueDeclare(
			q.QueueName,
			true,
			false,
			false,
			false,
			nil,
		)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to declare queue %s: %w", op, q.QueueName, err)
		}

		err = ch.QueueBind(
			q.QueueName,
			q.RoutingKey,
			Exchange,
			false,
			nil,
		)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to bind queue %s with routing key %s: %w", op, q.QueueName, q.RoutingKey, err)
		}
	}

	return ch, nil
}
