//-------------------------------------------------------------------------
//
// pgEdge Data Warehouse Loader
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package etl

import (
	"context"
	"fmt"

	"github.com/pgEdge/pgedge-dwload/internal/db"
	"github.com/pgEdge/pgedge-dwload/internal/logging"
	"github.com/pgEdge/pgedge-dwload/internal/sqlgen"
)

// ReferenceLoader inserts the natural keys of every code dimension not
// yet present in the warehouse. Existing rows are never touched, so
// surrogate keys stay stable across runs.
type ReferenceLoader struct {
	env  *Env
	dims []*Dimension
}

// NewReferenceLoader returns the reference dimension stage.
func NewReferenceLoader(env *Env) *ReferenceLoader {
	return &ReferenceLoader{env: env, dims: References}
}

// Name returns the stage name.
func (l *ReferenceLoader) Name() string { return StageReference }

// Description returns a short description of the stage.
func (l *ReferenceLoader) Description() string {
	return fmt.Sprintf("Insert new codes into the %d reference dimensions", len(l.dims))
}

// Statements renders one insert-if-absent statement per dimension, in
// load order.
func (l *ReferenceLoader) Statements() []string {
	stmts := make([]string, len(l.dims))
	for i, dim := range l.dims {
		stmts[i] = l.statement(dim)
	}
	return stmts
}

func (l *ReferenceLoader) statement(dim *Dimension) string {
	hop := dim.Hops[0]
	q := newSelect(fmt.Sprintf("%s %s", l.env.Src(hop.Table), hop.Alias()))
	q.distinct = true

	q.sel(hop.Code, hop.Alias()+"."+hop.Code)
	for _, attr := range dim.Attrs {
		q.sel(attr, hop.Alias()+"."+attr)
	}

	if p := dim.Parent; p != nil {
		// Children whose parent code is not in the warehouse are held
		// back until it is.
		ph := p.Dimension.Hops[0]
		q.join(
			fmt.Sprintf("JOIN %s %s ON %s", l.env.Src(ph.Table), ph.Alias(),
				sqlgen.Eq(ph.Alias()+"."+ph.ID, hop.Alias()+"."+p.ID)),
			fmt.Sprintf("JOIN %s %s ON %s", l.env.DW(p.Dimension.Table), p.Dimension.Alias(),
				sqlgen.Eq(p.Dimension.Alias()+"."+ph.Code, ph.Alias()+"."+ph.Code)),
		)
		q.sel(p.Dimension.Key, p.Dimension.Alias()+"."+p.Dimension.Key)
	}

	return sqlgen.InsertIfAbsent(l.env.Dialect, l.env.DW(dim.Table), q.columns(), dim.NaturalKey(), q.String())
}

// Run loads every reference dimension in order.
func (l *ReferenceLoader) Run(ctx context.Context, tx db.Execer) (int64, error) {
	log := logging.Stage(StageReference)

	var total int64
	for i, stmt := range l.Statements() {
		table := l.dims[i].Table
		n, err := tx.Exec(ctx, stmt)
		if err != nil {
			return total, fmt.Errorf("failed to load %s: %w", table, err)
		}
		log.Debug().Str("table", table).Int64("rows", n).Msg("Dimension loaded")
		total += n
	}
	return total, nil
}
