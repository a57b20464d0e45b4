package config

import (
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	logrus "github.com/sirupsen/logrus"
)

const (
	dialRetries    = 10
	dialRetryDelay = 3 * time.Second
)

// InitRabbitMQ dials the broker, retrying while it starts up.
func InitRabbitMQ(s RabbitMQSettings) (*amqp.Connection, error) {
	var (
		conn *amqp.Connection
		err  error
	)
	for i := 0; i < dialRetries; i++ {
		conn, err = amqp.Dial(s.URL())
		if err == nil {
			logrus.WithField("host", s.Host).Info("connected to RabbitMQ")
			return conn, nil
		}
		if i < dialRetries-1 {
			logrus.Warnf("failed to connect to RabbitMQ (attempt %d/%d): %v. Retrying in %v...", i+1, dialRetries, err, dialRetryDelay)
			time.Sleep(dialRetryDelay)
		}
	}
	return nil, fmt.Errorf("failed to connect to RabbitMQ after %d attempts: %w", dialRetries, err)
}

// PurgeQueue removes all messages from a queue without deleting it.
func PurgeQueue(conn *amqp.Connection, queueName string) (int, error) {
	ch, err := conn.Channel()
	if err != nil {
		return 0, fmt.Errorf("failed to open channel: %w", err)
	}
	defer ch.Close()

	n, err := ch.QueuePurge(queueName, false)
	if err != nil {
		return 0, fmt.Errorf("failed to purge queue %s: %w", queueName, err)
	}
	logrus.WithFields(logrus.Fields{"queue": queueName, "messages": n}).Info("purged queue")
	return n, nil
}

func declareQueue(ch *amqp.Channel, queueName string) (amqp.Queue, error) {
	return ch.QueueDeclare(
		queueName,
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,
	)
}
