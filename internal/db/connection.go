//-------------------------------------------------------------------------
//
// pgEdge Data Warehouse Loader
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package db provides database connection management for pgedge-dwload.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pgEdge/pgedge-dwload/internal/config"
	"github.com/pgEdge/pgedge-dwload/internal/logging"
)

// The pipeline is strictly sequential; a couple of connections cover the
// stage transaction plus the occasional read outside it.
const (
	maxConns        = 2
	maxConnLifetime = 30 * time.Minute
	maxConnIdleTime = 5 * time.Minute
)

// Open connects using the configured dialect.
func Open(ctx context.Context, cfg *config.Config) (DB, error) {
	switch cfg.Dialect {
	case config.DialectMySQL:
		sqlDB, err := ConnectMySQL(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		return NewSQLDB(sqlDB), nil
	case config.DialectPostgres:
		pool, err := ConnectPostgres(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		return NewPgxDB(pool), nil
	default:
		return nil, fmt.Errorf("unsupported dialect: %s", cfg.Dialect)
	}
}

// PostgresConnString builds a postgres:// URL from the connection
// parameters, escaping user and password.
func PostgresConnString(dc config.DatabaseConfig) string {
	u := url.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(dc.Host, strconv.Itoa(dc.Port)),
		Path:   "/" + dc.Name,
	}
	if dc.Password != "" {
		u.User = url.UserPassword(dc.User, dc.Password)
	} else {
		u.User = url.User(dc.User)
	}
	if dc.SSLMode != "" {
		u.RawQuery = url.Values{"sslmode": {dc.SSLMode}}.Encode()
	}
	return u.String()
}

// ConnectPostgres establishes a connection pool to PostgreSQL.
func ConnectPostgres(ctx context.Context, dc config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(PostgresConnString(dc))
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}

	poolConfig.MaxConns = maxConns
	poolConfig.MinConns = 0
	poolConfig.MaxConnLifetime = maxConnLifetime
	poolConfig.MaxConnIdleTime = maxConnIdleTime

	logging.Debug().
		Str("host", poolConfig.ConnConfig.Host).
		Uint16("port", poolConfig.ConnConfig.Port).
		Str("database", poolConfig.ConnConfig.Database).
		Msg("Connecting to database")

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logging.Info().
		Str("host", poolConfig.ConnConfig.Host).
		Str("database", poolConfig.ConnConfig.Database).
		Msg("Connected to database")

	return pool, nil
}

// MySQLDSN builds a go-sql-driver DSN from the connection parameters.
func MySQLDSN(dc config.DatabaseConfig) string {
	mc := mysql.NewConfig()
	mc.User = dc.User
	mc.Passwd = dc.Password
	mc.Net = "tcp"
	mc.Addr = net.JoinHostPort(dc.Host, strconv.Itoa(dc.Port))
	mc.DBName = dc.Name
	mc.ParseTime = true
	mc.Loc = time.UTC
	return mc.FormatDSN()
}

// ConnectMySQL opens and verifies a MySQL handle.
func ConnectMySQL(ctx context.Context, dc config.DatabaseConfig) (*sql.DB, error) {
	logging.Debug().
		Str("host", dc.Host).
		Int("port", dc.Port).
		Str("database", dc.Name).
		Msg("Connecting to database")

	sqlDB, err := sql.Open("mysql", MySQLDSN(dc))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB.SetMaxOpenConns(maxConns)
	sqlDB.SetMaxIdleConns(maxConns)
	sqlDB.SetConnMaxLifetime(maxConnLifetime)
	sqlDB.SetConnMaxIdleTime(maxConnIdleTime)

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logging.Info().
		Str("host", dc.Host).
		Str("database", dc.Name).
		Msg("Connected to database")

	return sqlDB, nil
}
