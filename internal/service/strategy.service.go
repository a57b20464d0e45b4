package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"strategystore/internal/catalog"
	"strategystore/internal/models"
	"strategystore/internal/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ErrPersistence wraps a journal write failure. The catalog is rolled back to
// its previous state before it is returned.
var ErrPersistence = errors.New("failed to persist strategy change")

// EventSink receives an event after every successful mutation.
type EventSink interface {
	Emit(ev models.StrategyEvent) error
}

// StrategyService hosts one catalog for concurrent callers. Mutations run one
// at a time and are journaled before they return; events reach the sinks
// asynchronously in mutation order.
type StrategyService struct {
	mu          sync.RWMutex
	reconcileMu sync.Mutex
	catalog     *catalog.Catalog

	strategies repository.StrategyRepository
	stats      repository.CatalogStatRepository
	sinks      []EventSink
	dispatch   *dispatcher
	now        func() time.Time
}

type Option func(*StrategyService)

// WithRepositories enables the durable journal. Either may be nil.
func WithRepositories(strategies repository.StrategyRepository, stats repository.CatalogStatRepository) Option {
	return func(s *StrategyService) {
		s.strategies = strategies
		s.stats = stats
	}
}

func WithSinks(sinks ...EventSink) Option {
	return func(s *StrategyService) {
		s.sinks = append(s.sinks, sinks...)
	}
}

// WithClock sets the time source for event timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *StrategyService) {
		s.now = now
	}
}

func NewStrategyService(c *catalog.Catalog, opts ...Option) *StrategyService {
	s := &StrategyService{
		catalog: c,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if len(s.sinks) > 0 {
		s.dispatch = newDispatcher(s.sinks)
	}
	return s
}

// Close flushes queued events to the sinks. Mutations after Close still
// succeed but their events are dropped.
func (s *StrategyService) Close() {
	if s.dispatch != nil {
		s.dispatch.Close()
	}
}

func (s *StrategyService) CreateMinimal(ctx context.Context, caller, id, goal string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := s.catalog.Checkpoint(id)
	msg, err := s.catalog.CreateMinimal(caller, id, goal)
	if err != nil {
		logFailure("create_minimal", caller, err)
		return "", err
	}
	if err := s.commitSave(ctx, models.StrategyCreated, caller, cp); err != nil {
		return "", err
	}
	return msg, nil
}

func (s *StrategyService) CreateFull(ctx context.Context, caller string, payload []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	draft, err := catalog.DecodeDraft(payload)
	if err != nil {
		logFailure("create_full", caller, err)
		return "", err
	}
	cp := s.catalog.Checkpoint(draft.ID)
	msg, err := s.catalog.Store(caller, draft)
	if err != nil {
		logFailure("create_full", caller, err)
		return "", err
	}
	if err := s.commitSave(ctx, models.StrategyCreated, caller, cp); err != nil {
		return "", err
	}
	return msg, nil
}

func (s *StrategyService) Update(ctx context.Context, caller string, payload []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	draft, err := catalog.DecodeDraft(payload)
	if err != nil {
		logFailure("update", caller, err)
		return "", err
	}
	cp := s.catalog.Checkpoint(draft.ID)
	msg, err := s.catalog.Replace(caller, draft)
	if err != nil {
		logFailure("update", caller, err)
		return "", err
	}
	if err := s.commitSave(ctx, models.StrategyUpdated, caller, cp); err != nil {
		return "", err
	}
	return msg, nil
}

func (s *StrategyService) Delete(ctx context.Context, caller, id string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := s.catalog.Checkpoint(id)
	msg, err := s.catalog.Delete(caller, id)
	if err != nil {
		logFailure("delete", caller, err)
		return "", err
	}

	if s.strategies != nil {
		if err := s.strategies.Delete(ctx, id); err != nil {
			s.catalog.Rollback(cp)
			return "", journalFailure("delete", id, err)
		}
	}
	s.emit(models.StrategyDeleted, caller, id)
	return msg, nil
}

func (s *StrategyService) Get(id string) (models.StrategyRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.catalog.Get(id)
}

func (s *StrategyService) ListAll() []models.StrategyRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.catalog.ListAll()
}

func (s *StrategyService) ListByCreator(identity string) []models.StrategyRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.catalog.ListByCreator(identity)
}

func (s *StrategyService) Stats() catalog.Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.catalog.Stats()
}

// Load replaces the catalog contents with the journal.
func (s *StrategyService) Load(ctx context.Context) error {
	if s.strategies == nil {
		return nil
	}
	recs, err := s.strategies.List(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.catalog.Restore(recs)
	logrus.WithField("count", s.catalog.Count()).Info("strategy catalog restored")
	return nil
}

// Reconcile rewrites the journal from the catalog and records a stat sample.
// Mutations wait until the journal rewrite is done so it never overwrites a
// newer change with a stale snapshot.
func (s *StrategyService) Reconcile(ctx context.Context) error {
	s.reconcileMu.Lock()
	defer s.reconcileMu.Unlock()

	s.mu.RLock()
	stats := s.catalog.Stats()
	var err error
	if s.strategies != nil {
		err = s.strategies.ReplaceAll(ctx, s.catalog.Snapshot())
	}
	s.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("failed to reconcile journal: %w", err)
	}

	if s.stats != nil {
		if err := s.stats.Add(ctx, models.CatalogStatRecord{Count: stats.Count, Summary: stats.Summary}); err != nil {
			return err
		}
	}
	logrus.WithField("count", stats.Count).Info("strategy journal reconciled")
	return nil
}

// commitSave journals the current version of cp's id and queues the event.
// On a journal failure the catalog goes back to cp. Must be called with s.mu
// held.
func (s *StrategyService) commitSave(ctx context.Context, typ models.StrategyEventType, caller string, cp catalog.Checkpoint) error {
	id := cp.ID()
	if s.strategies != nil {
		rec, _ := s.catalog.Get(id)
		if err := s.strategies.Save(ctx, rec); err != nil {
			s.catalog.Rollback(cp)
			return journalFailure(string(typ), id, err)
		}
	}
	s.emit(typ, caller, id)
	return nil
}

// emit builds the event under s.mu so Total matches the mutation, then queues
// it for delivery.
func (s *StrategyService) emit(typ models.StrategyEventType, caller, id string) {
	if s.dispatch == nil {
		return
	}
	s.dispatch.enqueue(models.StrategyEvent{
		ID:         uuid.New(),
		Type:       typ,
		StrategyID: id,
		Caller:     caller,
		Total:      s.catalog.Count(),
		OccurredAt: s.now().UTC(),
	})
}

func journalFailure(op, id string, err error) error {
	logrus.WithFields(logrus.Fields{
		"operation":   op,
		"strategy_id": id,
	}).Errorf("journal write failed: %v", err)
	return fmt.Errorf("%w: %w", ErrPersistence, err)
}

func logFailure(op, caller string, err error) {
	fields := logrus.Fields{
		"operation": op,
		"caller":    caller,
		"kind":      catalog.KindOf(err).String(),
	}
	var ce *catalog.Error
	if errors.As(err, &ce) && ce.Kind == catalog.KindMalformedInput {
		fields["payload"] = ce.Payload
		logrus.WithFields(fields).Warnf("JSON parse error: %v", ce.Err)
		return
	}
	logrus.WithFields(fields).Info(err.Error())
}
