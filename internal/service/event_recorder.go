package service

import (
	"context"
	"encoding/json"
	"time"

	"strategystore/internal/models"
	"strategystore/internal/repository"

	"github.com/sirupsen/logrus"
)

// EventRecorder appends queued strategy events to the audit trail.
type EventRecorder struct {
	events  repository.StrategyEventRepository
	timeout time.Duration
}

func NewEventRecorder(events repository.StrategyEventRepository, timeout time.Duration) *EventRecorder {
	return &EventRecorder{events: events, timeout: timeout}
}

// Handle stores one queue message. Undecodable messages are dropped so they
// cannot be redelivered forever; storage errors are returned for requeue.
func (r *EventRecorder) Handle(body []byte) error {
	var ev models.StrategyEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		logrus.WithField("body", string(body)).Errorf("dropping undecodable event: %v", err)
		return nil
	}
	if ev.StrategyID == "" || ev.Type == "" {
		logrus.WithField("event_id", ev.ID).Error("dropping event without strategy id or type")
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()
	if err := r.events.Add(ctx, ev); err != nil {
		return err
	}

	logrus.WithFields(logrus.Fields{
		"event":       ev.Type,
		"strategy_id": ev.StrategyID,
		"caller":      ev.Caller,
	}).Info("strategy event recorded")
	return nil
}
