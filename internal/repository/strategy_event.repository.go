package repository

//go:generate mockgen -source=strategy_event.repository.go -destination=mocks/mock_strategy_event.repository.go -package=mocks

import (
	"context"
	"fmt"

	"strategystore/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StrategyEventRepository stores the audit trail written by the worker.
type StrategyEventRepository interface {
	Add(ctx context.Context, ev models.StrategyEvent) error
	ListByStrategy(ctx context.Context, strategyID string) ([]models.StrategyEvent, error)
}

type strategyEventRepositoryHandler struct {
	Db *gorm.DB
}

func NewStrategyEventRepository(db *gorm.DB) StrategyEventRepository {
	return strategyEventRepositoryHandler{Db: db}
}

// Add is idempotent on the event id, so a redelivered message is harmless.
func (h strategyEventRepositoryHandler) Add(ctx context.Context, ev models.StrategyEvent) error {
	err := h.Db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&ev).Error
	if err != nil {
		return fmt.Errorf("failed to insert strategy event %s: %w", ev.ID, err)
	}
	return nil
}

func (h strategyEventRepositoryHandler) ListByStrategy(ctx context.Context, strategyID string) ([]models.StrategyEvent, error) {
	var out []models.StrategyEvent
	err := h.Db.WithContext(ctx).
		Where("strategy_id = ?", strategyID).
		Order("occurred_at ASC").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list events for strategy %s: %w", strategyID, err)
	}
	return out, nil
}
