package database

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/emilythestrangee/forum/backend/internal/config"
	"github.com/emilythestrangee/forum/backend/internal/models"
	"github.com/emilythestrangee/forum/backend/internal/observability"
)

// Service owns the process database handle.
type Service interface {
	// Health pings the database and reports pool counters.
	Health() map[string]string
	Close() error
	GetDB() *gorm.DB
}

type service struct {
	db   *gorm.DB
	name string
}

// New opens the configured database, migrates the schema and tunes the pool.
func New(cfg *config.Config) (Service, error) {
	dialector, name, err := dialectorFor(cfg)
	if err != nil {
		return nil, err
	}

	db, err := Open(dialector, NewGormLogger(os.Stdout, GormLogLevel(cfg)))
	if err != nil {
		return nil, err
	}
	observability.Logger.Info("database connected", "driver", cfg.DBDriver, "name", name)

	if err := Migrate(db); err != nil {
		return nil, err
	}
	observability.Logger.Info("database migrations completed")

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}
	sqlDB.SetMaxIdleConns(cfg.DBMaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.DBMaxOpenConns)
	sqlDB.SetConnMaxLifetime(time.Hour)
	if cfg.DBDriver == "sqlite" {
		// sqlite allows a single writer; queue at the pool instead of failing with SQLITE_BUSY.
		sqlDB.SetMaxOpenConns(1)
	}

	return &service{db: db, name: name}, nil
}

func dialectorFor(cfg *config.Config) (gorm.Dialector, string, error) {
	switch cfg.DBDriver {
	case "sqlite":
		return sqlite.Open(cfg.DBSQLitePath), cfg.DBSQLitePath, nil
	case "postgres":
		conn, err := openPostgres(cfg.PostgresDSN())
		if err != nil {
			return nil, "", err
		}
		return postgres.New(postgres.Config{Conn: conn}), cfg.DBName, nil
	default:
		return nil, "", fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
}

// openPostgres builds a database/sql handle on top of pgx so pgx options
// stay configurable in one place.
func openPostgres(dsn string) (*sql.DB, error) {
	connConfig, err := pgx.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("error parsing database config: %w", err)
	}
	db := stdlib.OpenDB(*connConfig)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("error connecting to database: %w", err)
	}
	return db, nil
}

// GormLogLevel maps LOG_LEVEL onto gorm's levels. Statements are only
// traced at debug outside production.
func GormLogLevel(cfg *config.Config) logger.LogLevel {
	level := strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	switch {
	case level == "debug" && !cfg.IsProduction():
		return logger.Info
	case level == "error":
		return logger.Error
	default:
		return logger.Warn
	}
}

// NewGormLogger writes gorm's SQL log to w. Bound values are never printed,
// so password hashes and emails stay out of the log.
func NewGormLogger(w io.Writer, level logger.LogLevel) logger.Interface {
	return logger.New(
		log.New(w, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
			ParameterizedQueries:      true,
			Colorful:                  false,
		},
	)
}

// Open wraps gorm.Open with the settings every caller shares.
func Open(dialector gorm.Dialector, gormLogger logger.Interface) (*gorm.DB, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         gormLogger,
		TranslateError: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// Migrate creates or updates the tables for every model.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Post{},
		&models.Comment{},
		&models.Vote{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

func (s *service) GetDB() *gorm.DB {
	return s.db
}

func (s *service) Health() map[string]string {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	sqlDB, err := s.db.DB()
	if err != nil {
		return map[string]string{"status": "down", "error": fmt.Sprintf("db error: %v", err)}
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return map[string]string{"status": "down", "error": fmt.Sprintf("db down: %v", err)}
	}

	pool := sqlDB.Stats()
	return map[string]string{
		"status":           "up",
		"database":         s.name,
		"open_connections": fmt.Sprint(pool.OpenConnections),
		"in_use":           fmt.Sprint(pool.InUse),
		"idle":             fmt.Sprint(pool.Idle),
	}
}

func (s *service) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}

	observability.Logger.Info("disconnected from database", "name", s.name)
	return sqlDB.Close()
}

// NewFromDB wraps an already opened connection, mainly for tests.
func NewFromDB(db *gorm.DB) Service {
	return &service{db: db, name: db.Dialector.Name()}
}
