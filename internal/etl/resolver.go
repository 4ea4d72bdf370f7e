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
	"fmt"
	"strings"

	"github.com/pgEdge/pgedge-dwload/internal/sqlgen"
)

// Resolver renders the join chains that turn an operational foreign key
// into a warehouse surrogate key:
//
//	referencing row --ID--> source lookup --Code--> warehouse dimension
//
// Every join is a LEFT JOIN, so a missing link yields a NULL key rather
// than dropping the referencing row.
type Resolver struct {
	env *Env
}

// NewResolver returns a resolver over env's schemas.
func NewResolver(env *Env) *Resolver {
	return &Resolver{env: env}
}

// SourceJoins returns the joins from the source row aliased from to each
// of dim's lookup tables.
func (r *Resolver) SourceJoins(dim *Dimension, from string) []string {
	joins := make([]string, 0, len(dim.Hops))
	for _, h := range dim.Hops {
		joins = append(joins, fmt.Sprintf("LEFT JOIN %s %s ON %s",
			r.env.Src(h.Table), h.Alias(), sqlgen.Eq(h.Alias()+"."+h.ID, from+"."+h.ID)))
	}
	return joins
}

// Joins returns the full chain resolving dim from the source row aliased
// from, ending at the warehouse table.
func (r *Resolver) Joins(dim *Dimension, from string) []string {
	eq := sqlgen.Eq
	if dim.NullSafe {
		eq = sqlgen.NullSafeEq
	}

	conds := make([]string, 0, len(dim.Hops))
	for _, h := range dim.Hops {
		conds = append(conds, eq(dim.Alias()+"."+h.Code, h.Alias()+"."+h.Code))
	}

	joins := r.SourceJoins(dim, from)
	return append(joins, fmt.Sprintf("LEFT JOIN %s %s ON %s",
		r.env.DW(dim.Table), dim.Alias(), strings.Join(conds, " AND ")))
}

// KeyExpr returns the resolved surrogate key expression for dim.
func (r *Resolver) KeyExpr(dim *Dimension) string {
	return dim.Alias() + "." + dim.Key
}

// Bind adds dim's joins to q and selects its surrogate key under the
// key's own column name.
func (r *Resolver) Bind(q *selectQuery, dim *Dimension, from string) {
	q.join(r.Joins(dim, from)...)
	q.sel(dim.Key, r.KeyExpr(dim))
}

// selectQuery accumulates a SELECT whose every output column is named.
type selectQuery struct {
	distinct bool
	cols     []string
	exprs    []string
	from     string
	joins    []string
}

func newSelect(from string) *selectQuery {
	return &selectQuery{from: from}
}

func (q *selectQuery) sel(col, expr string) *selectQuery {
	q.cols = append(q.cols, col)
	q.exprs = append(q.exprs, expr)
	return q
}

func (q *selectQuery) join(joins ...string) *selectQuery {
	q.joins = append(q.joins, joins...)
	return q
}

// columns returns the output column names in select order.
func (q *selectQuery) columns() []string {
	return append([]string(nil), q.cols...)
}

func (q *selectQuery) String() string {
	items := make([]string, len(q.cols))
	for i, c := range q.cols {
		if q.exprs[i] == c {
			items[i] = c
		} else {
			items[i] = q.exprs[i] + " AS " + c
		}
	}

	var b strings.Builder
	b.WriteString("SELECT ")
	if q.distinct {
		b.WriteString("DISTINCT ")
	}
	b.WriteString(strings.Join(items, ", "))
	b.WriteString(" FROM ")
	b.WriteString(q.from)
	for _, j := range q.joins {
		b.WriteByte(' ')
		b.WriteString(j)
	}
	return b.String()
}
