package db

import (
	"context"
	"fmt"
	"time"

	"github.com/RoyceAzure/lab/storefront/internal/logger"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func DSN(user, pas, host, port, dbname, sslmode string) string {
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s", user, pas, host, port, dbname, sslmode)
}

func NewPgxPool(ctx context.Context, dsn string, maxConns int32) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	if maxConns > 0 {
		cfg.MaxConns = maxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

// GetDbConn exposes the pgx pool to gorm. Closing the returned gorm DB does
// not close the pool, the pool is owned by the caller.
func GetDbConn(pool *pgxpool.Pool, l *zerolog.Logger, slowThreshold time.Duration) (*gorm.DB, error) {
	sqlDB := stdlib.OpenDBFromPool(pool)

	cfg := &gorm.Config{TranslateError: true}
	if l != nil {
		cfg.Logger = logger.NewGormLogger(l, slowThreshold)
	}

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), cfg)
	if err != nil {
		return nil, err
	}
	return db, nil
}
