// Package sqldb implements the repository interfaces on GORM (PostgreSQL or SQLite). Table
// shapes follow the gorm tags on the domain types.
package sqldb

import (
	"alcyxob/fitness-planner/internal/domain"
	"alcyxob/fitness-planner/internal/repository"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

// Connect opens a GORM connection for driver "postgres" or "sqlite".
func Connect(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "postgres", "postgresql":
		dialector = postgres.Open(dsn)
	case "sqlite":
		// For SQLite the dsn is the file path (or ":memory:")
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   gormLogger.Default.LogMode(gormLogger.Silent),
		NowFunc:                                  func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying SQL DB: %w", err)
	}
	if driver == "sqlite" {
		// one writer; also keeps an in-memory database alive on a single connection
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetMaxIdleConns(5)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
	}
	return db, nil
}

// activePlanIndex keeps at most one currently-active plan per owner. Partial indexes are
// supported by both PostgreSQL and SQLite but cannot be declared through gorm tags.
const activePlanIndex = `CREATE UNIQUE INDEX IF NOT EXISTS idx_plan_one_active
	ON training_plans (owner_id) WHERE is_currently_active`

// AutoMigrate creates or updates every table used by the planner.
func AutoMigrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&domain.User{},
		&domain.TrainingPlan{},
		&domain.DayPlanSlot{},
		&domain.Routine{},
		&domain.RoutineExercise{},
		&domain.ExerciseSet{},
		&domain.DayCustomization{},
		&domain.WorkoutSession{},
		&domain.PlanExport{},
	)
	if err != nil {
		return err
	}
	if err := db.Exec(activePlanIndex).Error; err != nil {
		return fmt.Errorf("failed to create active plan index: %w", err)
	}
	return nil
}

// Close releases the underlying connection pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// NewStore wires every GORM repository onto db.
func NewStore(db *gorm.DB) *repository.Store {
	return &repository.Store{
		Tx:             NewTransactor(db),
		Users:          NewUserRepository(db),
		Plans:          NewTrainingPlanRepository(db),
		Slots:          NewDayPlanSlotRepository(db),
		Routines:       NewRoutineRepository(db),
		Customizations: NewDayCustomizationRepository(db),
		Sessions:       NewWorkoutSessionRepository(db),
		Exports:        NewPlanExportRepository(db),
	}
}

// --- Transactions ---

type txKey struct{}

type transactor struct {
	db *gorm.DB
}

// NewTransactor returns a repository.Transactor backed by db.
func NewTransactor(db *gorm.DB) repository.Transactor {
	return &transactor{db: db}
}

func (t *transactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return fn(ctx)
	}
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

// conn picks the transaction carried by ctx, falling back to db.
func conn(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx.WithContext(ctx)
	}
	return db.WithContext(ctx)
}

// translateErr maps driver errors onto repository errors.
func translateErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return repository.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey), isUniqueViolation(err):
		return repository.ErrDuplicate
	default:
		return err
	}
}

func isUniqueViolation(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "sqlstate 23505")
}
