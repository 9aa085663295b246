package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/academy/backend/internal/infrastructure/config"
	"github.com/academy/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const slowQueryThreshold = 200 * time.Millisecond

// Database holds the database connection
type Database struct {
	DB *gorm.DB
}

// NewDatabase opens the PostgreSQL connection pool and verifies it with a ping
func NewDatabase(cfg *config.DatabaseConfig, log *zap.Logger) (*Database, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger:                 logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.LogLevel), slowQueryThreshold),
		SkipDefaultTransaction: true,
		PrepareStmt:            true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Minute)
	sqlDB.SetConnMaxIdleTime(time.Duration(cfg.ConnMaxIdleTime) * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Database{DB: db}, nil
}

// Close closes the database connection
func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.Close()
}

// Ping checks if the database connection is alive
func (d *Database) Ping(ctx context.Context) error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

// Repositories bundles every GORM repository of the billing service
type Repositories struct {
	Enrollments *GormEnrollmentRepository
	Charges     *GormChargeRepository
	ChargeTypes *GormChargeTypeRepository
	Payments    *GormPaymentRepository
	Allocations *GormAllocationRepository
	Balances    *GormBalanceRepository
	Guardians   *GormGuardianRepository
	Teams       *GormTeamRepository
}

// NewRepositories builds every repository on db
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Enrollments: NewGormEnrollmentRepository(db),
		Charges:     NewGormChargeRepository(db),
		ChargeTypes: NewGormChargeTypeRepository(db),
		Payments:    NewGormPaymentRepository(db),
		Allocations: NewGormAllocationRepository(db),
		Balances:    NewGormBalanceRepository(db),
		Guardians:   NewGormGuardianRepository(db),
		Teams:       NewGormTeamRepository(db),
	}
}
