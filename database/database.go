package database

import (
	"fmt"
	"strings"

	"tomaai-api/internal/domain/billing"
	"tomaai-api/internal/domain/images"
	"tomaai-api/internal/domain/media"
	"tomaai-api/internal/domain/users"

	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

func InitDB(dsn string) {
	if dsn == "" {
		log.Fatal().Msg("DB_URL not set")
	}

	db, err := Connect(dsn)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}

	if err := Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("auto-migrate failed")
	}

	DB = db
	log.Info().Str("dialect", db.Dialector.Name()).Msg("connected and migrated")
}

// Connect opens postgres for postgres:// DSNs and sqlite for everything
// prefixed with sqlite: or file:.
func Connect(dsn string) (*gorm.DB, error) {
	cfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)}

	switch {
	case strings.HasPrefix(dsn, "sqlite:"):
		return openSQLite(strings.TrimPrefix(dsn, "sqlite:"), cfg)
	case strings.HasPrefix(dsn, "file:"):
		return openSQLite(dsn, cfg)
	default:
		db, err := gorm.Open(postgres.Open(dsn), cfg)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		return db, nil
	}
}

func openSQLite(dsn string, cfg *gorm.Config) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dsn), cfg)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// One writer at a time; this also serialises the usage check-and-record.
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("sqlite handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)
	return db, nil
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&users.User{},
		&images.GeneratedImage{},
		&media.Image{},
		&billing.Payment{},
		&billing.ProcessedEvent{},
	)
}

// OpenMemory opens a migrated in-memory sqlite database private to name.
func OpenMemory(name string) (*gorm.DB, error) {
	safe := strings.NewReplacer("/", "_", " ", "_", "?", "_", "&", "_").Replace(name)
	db, err := Connect(fmt.Sprintf("file:%s?mode=memory&cache=shared", safe))
	if err != nil {
		return nil, err
	}
	if err := Migrate(db); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}
