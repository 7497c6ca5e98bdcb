package database

import (
	"fmt"

	"salesledger/internal/config"
	"salesledger/internal/logger"
	"salesledger/internal/model"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// NewConnection opens the configured database, migrates the schema and seeds
// the brand catalog
func NewConnection(cfg config.DatabaseConfig, log *zap.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "postgres":
		dialector = postgres.Open(cfg.DSN())
	case "sqlite":
		dialector = sqlite.Open(cfg.DSN())
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.NewGormLogger(log, logger.GormLevel(cfg.LogLevel)),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", cfg.Driver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	if cfg.Driver == "sqlite" {
		// one connection: SQLite has a single writer and ":memory:" is per connection
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetMaxIdleConns(1)
	} else {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}
	if err := SeedBrands(db); err != nil {
		return nil, err
	}

	log.Info("Database ready", zap.String("driver", cfg.Driver))
	return db, nil
}

// Migrate creates or updates every table
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&model.User{},
		&model.RefreshToken{},
		&model.Brand{},
		&model.Client{},
		&model.Product{},
		&model.Sale{},
		&model.SaleItem{},
		&model.ReceivableAccount{},
		&model.PayableAccount{},
		&model.AuditLog{},
	)
	if err != nil {
		return fmt.Errorf("failed to auto-migrate models: %w", err)
	}
	return nil
}

// SeedBrands inserts the default brands that are missing
func SeedBrands(db *gorm.DB) error {
	for _, name := range model.DefaultBrands {
		brand := model.Brand{Name: name}
		if err := db.Where(model.Brand{Name: name}).FirstOrCreate(&brand).Error; err != nil {
			return fmt.Errorf("failed to seed brand %s: %w", name, err)
		}
	}
	return nil
}
