package models

import (
	"time"

	"github.com/google/uuid"
)

// StrategyEventType names the catalog mutation an event reports.
type StrategyEventType string

const (
	StrategyCreated StrategyEventType = "strategy.created"
	StrategyUpdated StrategyEventType = "strategy.updated"
	StrategyDeleted StrategyEventType = "strategy.deleted"
)

// StrategyEvent is published after every successful mutation and kept by the
// worker as an audit trail.
type StrategyEvent struct {
	ID         uuid.UUID         `gorm:"column:id;type:uuid;primarykey" json:"id"`
	Type       StrategyEventType `gorm:"column:type;size:32;not null;index" json:"type"`
	StrategyID string            `gorm:"column:strategy_id;type:text;not null;index" json:"strategy_id"`
	Caller     string            `gorm:"column:caller;type:text;not null" json:"caller"`
	Total      uint64            `gorm:"column:total;not null" json:"total"`
	OccurredAt time.Time         `gorm:"column:occurred_at;not null" json:"occurred_at"`
}

func (StrategyEvent) TableName() string {
	return "strategy_event"
}

// CatalogStatRecord is a periodic sample of the catalog size.
type CatalogStatRecord struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	Count     uint64    `gorm:"column:count;not null" json:"count"`
	Summary   string    `gorm:"column:summary;size:128" json:"summary"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (CatalogStatRecord) TableName() string {
	return "catalog_stat_record"
}
