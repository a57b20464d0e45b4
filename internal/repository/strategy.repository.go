package repository

//go:generate mockgen -source=strategy.repository.go -destination=mocks/mock_strategy.repository.go -package=mocks

import (
	"context"
	"errors"
	"fmt"

	"strategystore/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const saveBatchSize = 200

// StrategyRepository is the durable journal of the in-memory catalog.
type StrategyRepository interface {
	List(ctx context.Context) ([]models.StrategyRecord, error)
	Save(ctx context.Context, rec models.StrategyRecord) error
	Delete(ctx context.Context, id string) error
	ReplaceAll(ctx context.Context, recs []models.StrategyRecord) error
	Count(ctx context.Context) (int64, error)
}

type strategyRepositoryHandler struct {
	Db *gorm.DB
}

func NewStrategyRepository(db *gorm.DB) StrategyRepository {
	return strategyRepositoryHandler{Db: db}
}

// List returns every stored record, oldest first.
func (h strategyRepositoryHandler) List(ctx context.Context) ([]models.StrategyRecord, error) {
	var out []models.StrategyRecord
	if err := h.Db.WithContext(ctx).Order("created_at ASC").Order("id ASC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("failed to list strategies: %w", err)
	}
	return out, nil
}

// Save inserts rec or overwrites the row with the same id.
func (h strategyRepositoryHandler) Save(ctx context.Context, rec models.StrategyRecord) error {
	err := h.Db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&rec).Error
	if err != nil {
		return fmt.Errorf("failed to save strategy %s: %w", rec.ID, err)
	}
	return nil
}

func (h strategyRepositoryHandler) Delete(ctx context.Context, id string) error {
	if err := h.Db.WithContext(ctx).Delete(&models.StrategyRecord{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("failed to delete strategy %s: %w", id, err)
	}
	return nil
}

// ReplaceAll makes the table hold exactly recs. A row the database rejects
// is skipped so it cannot hold back the rest; the rejected ids are reported
// in the returned error after the others are committed.
func (h strategyRepositoryHandler) ReplaceAll(ctx context.Context, recs []models.StrategyRecord) error {
	var rejected []error
	err := h.Db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ids := make([]string, 0, len(recs))
		for _, rec := range recs {
			ids = append(ids, rec.ID)
		}

		stale := tx.Session(&gorm.Session{AllowGlobalUpdate: true})
		if len(ids) > 0 {
			stale = stale.Where("id NOT IN ?", ids)
		}
		if err := stale.Delete(&models.StrategyRecord{}).Error; err != nil {
			return fmt.Errorf("failed to prune strategies: %w", err)
		}

		if len(recs) == 0 {
			return nil
		}
		upsert := func() *gorm.DB { return tx.Clauses(clause.OnConflict{UpdateAll: true}) }

		if err := tx.SavePoint("upsert_batch").Error; err != nil {
			return fmt.Errorf("failed to create savepoint: %w", err)
		}
		if err := upsert().CreateInBatches(&recs, saveBatchSize).Error; err == nil {
			return nil
		}
		if err := tx.RollbackTo("upsert_batch").Error; err != nil {
			return fmt.Errorf("failed to roll back batch upsert: %w", err)
		}

		for i := range recs {
			rec := recs[i]
			if err := tx.SavePoint("upsert_row").Error; err != nil {
				return fmt.Errorf("failed to create savepoint: %w", err)
			}
			if err := upsert().Create(&rec).Error; err != nil {
				if rbErr := tx.RollbackTo("upsert_row").Error; rbErr != nil {
					return fmt.Errorf("failed to roll back upsert of %s: %w", rec.ID, rbErr)
				}
				rejected = append(rejected, fmt.Errorf("strategy %s: %w", rec.ID, err))
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	if len(rejected) > 0 {
		return fmt.Errorf("failed to upsert %d of %d strategies: %w", len(rejected), len(recs), errors.Join(rejected...))
	}
	return nil
}

func (h strategyRepositoryHandler) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := h.Db.WithContext(ctx).Model(&models.StrategyRecord{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count strategies: %w", err)
	}
	return n, nil
}
