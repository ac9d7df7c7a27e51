package database

import (
	"strings"

	"stockex-backend/internal/domain"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const sqlitePrefix = "sqlite:"

// Open opens a GORM DB from DSN. A "sqlite:" prefix selects the embedded SQLite driver,
// anything else is treated as a Postgres URL.
// PreferSimpleProtocol disables prepared statement caching to avoid 42P05
// ("prepared statement already exists") when using connection poolers (e.g. PgBouncer).
func Open(dsn string) (*gorm.DB, error) {
	if strings.HasPrefix(dsn, sqlitePrefix) {
		return OpenSQLite(strings.TrimPrefix(dsn, sqlitePrefix))
	}
	return gorm.Open(postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true,
	}), &gorm.Config{TranslateError: true})
}

// OpenSQLite opens an SQLite database. SQLite allows a single writer, so the pool is capped at one connection;
// code running inside a transaction must use the transaction handle.
func OpenSQLite(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	return db, nil
}

// Models lists every table the service owns, in dependency order.
func Models() []interface{} {
	return []interface{}{
		&domain.User{},
		&domain.Stock{},
		&domain.IpoRound{},
		&domain.Application{},
		&domain.Portfolio{},
		&domain.Holding{},
		&domain.Transaction{},
		&domain.Notification{},
	}
}

// AutoMigrate runs migrations for all models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(Models()...)
}

// Pinger adapts a GORM DB to the health check's DBPinger.
type Pinger struct {
	DB *gorm.DB
}

func (p *Pinger) Ping() error {
	if p == nil || p.DB == nil {
		return nil
	}
	sqlDB, err := p.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}
