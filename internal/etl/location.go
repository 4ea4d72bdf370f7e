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

// LocationLoader derives dim_location from the (state, zip3) pairs used
// by application addresses. An address whose state or zip3 is unknown
// contributes a pair with a NULL member; that pair is inserted once and
// matched null-safely from then on.
type LocationLoader struct {
	env      *Env
	resolver *Resolver
}

// NewLocationLoader returns the location dimension stage.
func NewLocationLoader(env *Env) *LocationLoader {
	return &LocationLoader{env: env, resolver: NewResolver(env)}
}

// Name returns the stage name.
func (l *LocationLoader) Name() string { return StageLocation }

// Description returns a short description of the stage.
func (l *LocationLoader) Description() string {
	return "Insert new (state, zip3) pairs referenced by application addresses"
}

// Statement renders the insert-if-absent statement.
func (l *LocationLoader) Statement() string {
	dim := &Location
	q := newSelect(l.env.Src("application_address") + " aa")
	q.distinct = true
	q.join(l.resolver.SourceJoins(dim, "aa")...)
	for _, h := range dim.Hops {
		q.sel(h.Code, h.Alias()+"."+h.Code)
	}
	return sqlgen.InsertIfAbsent(l.env.Dialect, l.env.DW(dim.Table), q.columns(), dim.NaturalKey(), q.String())
}

// Run loads the location dimension.
func (l *LocationLoader) Run(ctx context.Context, tx db.Execer) (int64, error) {
	n, err := tx.Exec(ctx, l.Statement())
	if err != nil {
		return 0, fmt.Errorf("failed to load %s: %w", Location.Table, err)
	}
	logging.Stage(StageLocation).Debug().Int64("rows", n).Msg("Dimension loaded")
	return n, nil
}
