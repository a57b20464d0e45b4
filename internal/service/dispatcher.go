package service

import (
	"sync"

	"strategystore/internal/models"

	"github.com/sirupsen/logrus"
)

// dispatcher hands events to the sinks from a single goroutine, in the order
// they were queued, so a slow sink never holds up the catalog.
type dispatcher struct {
	sinks []EventSink

	mu      sync.Mutex
	pending []models.StrategyEvent
	closed  bool

	wake chan struct{}
	done chan struct{}
	once sync.Once
}

func newDispatcher(sinks []EventSink) *dispatcher {
	d := &dispatcher{
		sinks: sinks,
		wake:  make(chan struct{}, 1),
		done:  make(chan struct{}),
	}
	go d.run()
	return d
}

// enqueue never blocks.
func (d *dispatcher) enqueue(ev models.StrategyEvent) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		logrus.WithFields(logrus.Fields{
			"event":       ev.Type,
			"strategy_id": ev.StrategyID,
		}).Warn("event dispatcher closed, dropping strategy event")
		return
	}
	d.pending = append(d.pending, ev)
	d.mu.Unlock()

	select {
	case d.wake <- struct{}{}:
	default:
	}
}

func (d *dispatcher) run() {
	defer close(d.done)
	for {
		d.mu.Lock()
		batch := d.pending
		d.pending = nil
		closed := d.closed
		d.mu.Unlock()

		for _, ev := range batch {
			d.deliver(ev)
		}
		if closed && len(batch) == 0 {
			return
		}
		if len(batch) == 0 {
			<-d.wake
		}
	}
}

func (d *dispatcher) deliver(ev models.StrategyEvent) {
	for _, sink := range d.sinks {
		if err := sink.Emit(ev); err != nil {
			logrus.WithFields(logrus.Fields{
				"event":       ev.Type,
				"strategy_id": ev.StrategyID,
			}).Warnf("failed to emit strategy event: %v", err)
		}
	}
}

// Close delivers what is already queued and stops the goroutine.
func (d *dispatcher) Close() {
	d.once.Do(func() {
		d.mu.Lock()
		d.closed = true
		d.mu.Unlock()
		select {
		case d.wake <- struct{}{}:
		default:
		}
	})
	<-d.done
}
