package repository

//go:generate mockgen -source=catalog_stat.repository.go -destination=mocks/mock_catalog_stat.repository.go -package=mocks

import (
	"context"
	"fmt"

	"strategystore/internal/models"

	"gorm.io/gorm"
)

type CatalogStatRepository interface {
	Add(ctx context.Context, stat models.CatalogStatRecord) error
	Latest(ctx context.Context) (*models.CatalogStatRecord, error)
}

type catalogStatRepositoryHandler struct {
	Db *gorm.DB
}

func NewCatalogStatRepository(db *gorm.DB) CatalogStatRepository {
	return catalogStatRepositoryHandler{Db: db}
}

func (h catalogStatRepositoryHandler) Add(ctx context.Context, stat models.CatalogStatRecord) error {
	if err := h.Db.WithContext(ctx).Create(&stat).Error; err != nil {
		return fmt.Errorf("failed to insert catalog stat: %w", err)
	}
	return nil
}

// Latest returns nil when no sample has been recorded yet.
func (h catalogStatRepositoryHandler) Latest(ctx context.Context) (*models.CatalogStatRecord, error) {
	var out models.CatalogStatRecord
	err := h.Db.WithContext(ctx).Order("created_at DESC").Order("id DESC").Limit(1).Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get latest catalog stat: %w", err)
	}
	if out.ID == 0 {
		return nil, nil
	}
	return &out, nil
}
