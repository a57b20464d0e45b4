package service

import "strategystore/internal/models"

// Publisher is the part of config.Publisher the queue sink needs.
type Publisher interface {
	Publish(queueName string, message interface{}) error
}

// QueueSink forwards events to a durable message queue.
type QueueSink struct {
	pub   Publisher
	queue string
}

func NewQueueSink(pub Publisher, queue string) *QueueSink {
	return &QueueSink{pub: pub, queue: queue}
}

func (q *QueueSink) Emit(ev models.StrategyEvent) error {
	return q.pub.Publish(q.queue, ev)
}
