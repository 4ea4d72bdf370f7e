//-------------------------------------------------------------------------
//
// pgEdge Data Warehouse Loader
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pgEdge/pgedge-dwload/internal/logging"
)

// Row is a single-row query result.
type Row interface {
	Scan(dest ...any) error
}

// Rows is a multi-row query result.
type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close()
}

// Execer runs statements. Inside InTx it is bound to the transaction.
type Execer interface {
	// Exec runs a statement and returns the rows affected.
	Exec(ctx context.Context, query string, args ...any) (int64, error)
	QueryRow(ctx context.Context, query string, args ...any) Row
	Query(ctx context.Context, query string, args ...any) (Rows, error)
}

// DB is the capability every stage consumes: run statements, and run a
// unit of work transactionally.
type DB interface {
	Execer

	// InTx acquires a connection, begins a transaction and runs fn. The
	// transaction commits if fn returns nil and rolls back otherwise;
	// the connection is released on every path.
	InTx(ctx context.Context, fn func(tx Execer) error) error

	Close()
}

// PgxDB adapts a pgx connection pool.
type PgxDB struct {
	pool *pgxpool.Pool
}

// NewPgxDB wraps an open pool.
func NewPgxDB(pool *pgxpool.Pool) *PgxDB {
	return &PgxDB{pool: pool}
}

// Exec runs a statement outside an explicit transaction.
func (p *PgxDB) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	return pgxExecer{p.pool}.Exec(ctx, query, args...)
}

// QueryRow runs a single-row query.
func (p *PgxDB) QueryRow(ctx context.Context, query string, args ...any) Row {
	return p.pool.QueryRow(ctx, query, args...)
}

// Query runs a multi-row query.
func (p *PgxDB) Query(ctx context.Context, query string, args ...any) (Rows, error) {
	return pgxExecer{p.pool}.Query(ctx, query, args...)
}

// InTx runs fn inside a transaction on a pooled connection.
func (p *PgxDB) InTx(ctx context.Context, fn func(tx Execer) error) error {
	return pgx.BeginFunc(ctx, p.pool, func(tx pgx.Tx) error {
		return fn(pgxExecer{tx})
	})
}

// Close closes the pool.
func (p *PgxDB) Close() {
	p.pool.Close()
}

// pgxConn is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type pgxConn interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type pgxExecer struct {
	conn pgxConn
}

func (e pgxExecer) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	tag, err := e.conn.Exec(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (e pgxExecer) QueryRow(ctx context.Context, query string, args ...any) Row {
	return e.conn.QueryRow(ctx, query, args...)
}

func (e pgxExecer) Query(ctx context.Context, query string, args ...any) (Rows, error) {
	return e.conn.Query(ctx, query, args...)
}

// SQLDB adapts a database/sql handle. It is used for MySQL.
type SQLDB struct {
	db *sql.DB
}

// NewSQLDB wraps an open handle.
func NewSQLDB(db *sql.DB) *SQLDB {
	return &SQLDB{db: db}
}

// Exec runs a statement outside an explicit transaction.
func (s *SQLDB) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	return sqlExecer{s.db}.Exec(ctx, query, args...)
}

// QueryRow runs a single-row query.
func (s *SQLDB) QueryRow(ctx context.Context, query string, args ...any) Row {
	return s.db.QueryRowContext(ctx, query, args...)
}

// Query runs a multi-row query.
func (s *SQLDB) Query(ctx context.Context, query string, args ...any) (Rows, error) {
	return sqlExecer{s.db}.Query(ctx, query, args...)
}

// InTx runs fn inside a transaction.
func (s *SQLDB) InTx(ctx context.Context, fn func(tx Execer) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(sqlExecer{tx}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logging.Warn().Err(rbErr).Msg("Rollback failed")
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Close closes the handle.
func (s *SQLDB) Close() {
	if err := s.db.Close(); err != nil {
		logging.Warn().Err(err).Msg("Failed to close database handle")
	}
}

// sqlConn is satisfied by *sql.DB and *sql.Tx.
type sqlConn interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type sqlExecer struct {
	conn sqlConn
}

func (e sqlExecer) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	res, err := e.conn.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		// Not every statement reports a count; DDL in particular.
		return 0, nil
	}
	return n, nil
}

func (e sqlExecer) QueryRow(ctx context.Context, query string, args ...any) Row {
	return e.conn.QueryRowContext(ctx, query, args...)
}

func (e sqlExecer) Query(ctx context.Context, query string, args ...any) (Rows, error) {
	rows, err := e.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return sqlRows{rows}, nil
}

type sqlRows struct {
	*sql.Rows
}

func (r sqlRows) Close() {
	_ = r.Rows.Close()
}
