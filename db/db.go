// Package db provides database connectivity, transactions and schema migrations.
package db

import (
	"context"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver
	"github.com/jmoiron/sqlx"

	"github.com/axdbertuol/carford/apperror"
	"github.com/axdbertuol/carford/config"
)

const (
	driverName      = "pgx"
	connMaxIdleTime = 10 * time.Minute
	connMaxLifetime = 30 * time.Minute
	pingTimeout     = 5 * time.Second
)

// Open connects to PostgreSQL and verifies the connection with a ping.
func Open(ctx context.Context, cfg *config.DatabaseConfig) (*sqlx.DB, error) {
	conn, err := sqlx.Open(driverName, cfg.DSN())
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to open database", err)
	}

	conn.SetMaxOpenConns(cfg.PoolSize)
	conn.SetMaxIdleConns(cfg.PoolSize / 2)
	conn.SetConnMaxIdleTime(connMaxIdleTime)
	conn.SetConnMaxLifetime(connMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := conn.PingContext(pingCtx); err != nil {
		conn.Close()
		return nil, apperror.NewDatabaseError("failed to connect to database "+cfg.DBName, err)
	}

	return conn, nil
}
