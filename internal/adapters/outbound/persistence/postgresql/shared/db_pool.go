package shared

import (
	"database/sql"
	"log"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

type PoolSettings struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxIdleTime time.Duration
	ConnMaxLifetime time.Duration
}

// DefaultPoolSettings sizes the pool for one orchestrator process: the
// journal writes once per phase, so a small pool is enough.
func DefaultPoolSettings() PoolSettings {
	return PoolSettings{
		MaxOpenConns:    10,
		MaxIdleConns:    10,
		ConnMaxIdleTime: 5 * time.Minute,
		ConnMaxLifetime: 30 * time.Minute,
	}
}

func NewDatabasePool(databaseURL string, logger *log.Logger) *sql.DB {
	return NewDatabasePoolWithSettings(databaseURL, DefaultPoolSettings(), logger)
}

func NewDatabasePoolWithSettings(databaseURL string, settings PoolSettings, logger *log.Logger) *sql.DB {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		panic(err)
	}

	db.SetMaxOpenConns(settings.MaxOpenConns)
	db.SetMaxIdleConns(settings.MaxIdleConns)
	db.SetConnMaxIdleTime(settings.ConnMaxIdleTime)
	db.SetConnMaxLifetime(settings.ConnMaxLifetime)

	if logger != nil {
		logger.Printf(
			"database pool initialized max_open_conns=%d max_idle_conns=%d",
			settings.MaxOpenConns,
			settings.MaxIdleConns,
		)
	}

	return db
}
