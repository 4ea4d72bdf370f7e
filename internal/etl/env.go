//-------------------------------------------------------------------------
//
// pgEdge Data Warehouse Loader
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package etl implements the warehouse load pipeline: the stages, the
// surrogate key resolution shared by the fact loaders, and the
// post-load reconciliation.
package etl

import (
	"fmt"

	"github.com/pgEdge/pgedge-dwload/internal/config"
	"github.com/pgEdge/pgedge-dwload/internal/db"
	"github.com/pgEdge/pgedge-dwload/internal/sqlgen"
)

// Env is what every stage is constructed from.
type Env struct {
	DB      db.DB
	Dialect sqlgen.Dialect

	SourceSchema    string
	WarehouseSchema string

	// CalendarBatchSize bounds the rows per calendar INSERT.
	CalendarBatchSize int
}

// NewEnv builds an Env from validated configuration.
func NewEnv(database db.DB, cfg *config.Config) (*Env, error) {
	d, err := sqlgen.ForName(cfg.Dialect)
	if err != nil {
		return nil, err
	}
	for _, name := range []string{cfg.Schemas.Source, cfg.Schemas.Warehouse} {
		if !sqlgen.ValidIdentifier(name) {
			return nil, fmt.Errorf("invalid schema name: %q", name)
		}
	}

	batch := cfg.Load.CalendarBatchSize
	if batch <= 0 {
		batch = config.DefaultCalendarBatchSize
	}

	return &Env{
		DB:                database,
		Dialect:           d,
		SourceSchema:      cfg.Schemas.Source,
		WarehouseSchema:   cfg.Schemas.Warehouse,
		CalendarBatchSize: batch,
	}, nil
}

// Src qualifies a source table.
func (e *Env) Src(table string) string {
	return sqlgen.Qualify(e.Dialect, e.SourceSchema, table)
}

// DW qualifies a warehouse table.
func (e *Env) DW(table string) string {
	return sqlgen.Qualify(e.Dialect, e.WarehouseSchema, table)
}
