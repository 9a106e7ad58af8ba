package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
)

const uniqueViolationCode = "23505"

// Database wraps the pgx connection pool.
type Database struct {
	Pool   *pgxpool.Pool
	logger logrus.FieldLogger
}

// New establishes a new connection pool against the provided DSN.
func New(ctx context.Context, dsn string, logger logrus.FieldLogger) (*Database, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	cfg.MaxConnLifetime = time.Hour
	cfg.MaxConnIdleTime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}

	logger.WithField("host", cfg.ConnConfig.Host).
		WithField("database", cfg.ConnConfig.Database).
		Info("connected to postgres")
	return &Database{Pool: pool, logger: logger}, nil
}

// Close drains the connection pool.
func (db *Database) Close() {
	if db != nil && db.Pool != nil {
		db.Pool.Close()
	}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}

func isUUID(id string) bool {
	return uuid.Validate(id) == nil
}
