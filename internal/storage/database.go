package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"wabridge/internal/app/config"
	"wabridge/internal/domain"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog/log"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

// Database wraps the SQLite connection shared by the bridge's own tables
// and the protocol credential store
type Database struct {
	*bun.DB
}

// New opens the database file. Opening retries with exponential backoff:
// on restart the previous process may still hold the write lock for a
// moment.
func New(cfg config.DatabaseConfig) (*Database, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", cfg.Path)

	sqldb, err := sql.Open(sqliteshim.ShimName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite tolerates a single writer; keep the pool at one connection so
	// bun and the credential store never contend.
	sqldb.SetMaxOpenConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 500 * time.Millisecond
	bo.MaxElapsedTime = 15 * time.Second

	err = backoff.Retry(func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return db.PingContext(ctx)
	}, bo)
	if err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Info().Str("path", cfg.Path).Msg("Database connected successfully")

	return &Database{DB: db}, nil
}

// Migrate runs all pending database migrations
func (d *Database) Migrate(ctx context.Context) error {
	log.Info().Msg("Starting database migration")

	_, err := d.NewCreateTable().
		Model((*domain.BridgeState)(nil)).
		IfNotExists().
		Exec(ctx)

	if err != nil {
		log.Error().Err(err).Msg("Failed to create bridge_state table")
		return fmt.Errorf("failed to create bridge_state table: %w", err)
	}

	log.Info().Msg("Database migration completed successfully")
	return nil
}

// Close closes the database connection
func (d *Database) Close() error {
	log.Info().Msg("Closing database connection")
	return d.DB.Close()
}

// Health checks the database health
func (d *Database) Health(ctx context.Context) error {
	return d.PingContext(ctx)
}
