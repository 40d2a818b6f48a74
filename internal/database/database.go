package database

import (
	"context"
	"fmt"
	stdlog "log"
	"time"

	"github.com/rs/zerolog"
	"github.com/yukikurage/board-collab-api/internal/config"
	"github.com/yukikurage/board-collab-api/internal/models"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connect opens the configured database. The handle is passed explicitly to
// repositories; there is no package-level connection.
func Connect(cfg *config.Config, log zerolog.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.DBDriver {
	case "postgres":
		dialector = postgres.Open(cfg.DSN())
	default:
		dialector = mysql.Open(cfg.DSN())
	}

	db, err := gorm.Open(dialector, GormConfig(log, cfg.IsProduction()))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access connection pool: %w", err)
	}
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	log.Info().Str("driver", cfg.DBDriver).Str("host", cfg.DBHost).Msg("database connection established")
	return db, nil
}

// GormConfig returns the gorm settings shared by the server and tests.
// Constraint violations are translated into gorm.ErrDuplicatedKey.
func GormConfig(log zerolog.Logger, quiet bool) *gorm.Config {
	level := logger.Info
	if quiet {
		level = logger.Warn
	}
	return &gorm.Config{
		TranslateError: true,
		Logger: logger.New(stdlog.New(log, "", 0), logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
		}),
	}
}

// Models lists every table owned by the service, parents first.
func Models() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Workspace{},
		&models.Board{},
		&models.List{},
		&models.Card{},
		&models.CardMember{},
		&models.BoardMember{},
		&models.BoardInvitation{},
		&models.AuditLog{},
	}
}

// Migrate creates or updates the schema and secondary indexes.
func Migrate(ctx context.Context, db *gorm.DB, log zerolog.Logger) error {
	log.Info().Msg("running database migrations")
	if err := db.WithContext(ctx).AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	if err := AddIndexes(ctx, db, log); err != nil {
		return err
	}
	log.Info().Msg("database migrations completed")
	return nil
}

// Close releases the underlying pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
