package config

import (
	"fmt"

	"strategystore/internal/models"

	logrus "github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// InitDB opens the postgres connection, sizes the pool and migrates the
// strategy tables.
func InitDB(s DBSettings) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(s.DSN()), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}
	sqlDB.SetMaxIdleConns(s.MaxIdleConns)
	sqlDB.SetMaxOpenConns(s.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(s.ConnMaxLifetime)

	if err := AutoMigrate(db); err != nil {
		return nil, err
	}
	logrus.WithField("host", s.Host).Info("database connected")
	return db, nil
}

func AutoMigrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.StrategyRecord{},
		&models.StrategyEvent{},
		&models.CatalogStatRecord{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}
