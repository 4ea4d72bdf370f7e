//-------------------------------------------------------------------------
//
// pgEdge Data Warehouse Loader
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package sqlgen renders the set-based statements the loader executes.
//
// Identifiers (schema, table and column names) are interpolated into the
// SQL text and must come from validated configuration or from constants
// in this repository. Values are never interpolated: callers pass them
// as bound parameters using the dialect's placeholder syntax.
package sqlgen

import (
	"fmt"
	"regexp"
	"strings"
)

// Dialect captures the handful of places where PostgreSQL and MySQL
// disagree on syntax.
type Dialect interface {
	// Name returns the dialect name used in configuration.
	Name() string

	// Placeholder returns the bind marker for the n-th (1-based) parameter.
	Placeholder(n int) string

	// QuoteIdent quotes a single identifier.
	QuoteIdent(name string) string

	// InsertIgnore renders an INSERT of query into table that silently
	// skips rows colliding with a unique key.
	InsertIgnore(table string, cols []string, query string) string

	// Replace renders an INSERT of query into table that fully
	// overwrites every non-key column of rows colliding on keys.
	Replace(table string, cols, keys []string, query string) string

	// DateKey renders an expression converting a DATE expression to its
	// YYYYMMDD integer, NULL in NULL out.
	DateKey(expr string) string

	// CastText renders expr cast to a character type.
	CastText(expr string) string

	// TimestampType is the column type used for wall-clock timestamps.
	TimestampType() string

	// IdentityColumn is the column definition of a generated surrogate key.
	IdentityColumn() string
}

var identifierRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]{0,62}$`)

// ValidIdentifier reports whether name is safe to use as an unquoted
// identifier on every supported dialect.
func ValidIdentifier(name string) bool {
	return identifierRe.MatchString(name)
}

// ForName returns the dialect registered under name.
func ForName(name string) (Dialect, error) {
	switch strings.ToLower(name) {
	case "postgres", "postgresql", "":
		return Postgres{}, nil
	case "mysql":
		return MySQL{}, nil
	default:
		return nil, fmt.Errorf("unknown dialect: %s", name)
	}
}

// Qualify returns schema.table with the schema quoted. Table names are
// constants and are emitted as-is.
func Qualify(d Dialect, schema, table string) string {
	return d.QuoteIdent(schema) + "." + table
}

// NullSafeEq renders a three-valued-logic equality that treats two NULLs
// as equal. It is spelled out rather than using IS NOT DISTINCT FROM or
// <=> so the same text works on every dialect.
func NullSafeEq(a, b string) string {
	return fmt.Sprintf("(%s = %s OR (%s IS NULL AND %s IS NULL))", a, b, a, b)
}

// Eq renders a plain equality.
func Eq(a, b string) string {
	return a + " = " + b
}

// Values renders a multi-row VALUES list of rows tuples with cols
// columns each, numbering placeholders from 1.
func Values(d Dialect, rows, cols int) string {
	var b strings.Builder
	b.WriteString("VALUES ")
	n := 1
	for r := 0; r < rows; r++ {
		if r > 0 {
			b.WriteString(", ")
		}
		b.WriteByte('(')
		for c := 0; c < cols; c++ {
			if c > 0 {
				b.WriteString(", ")
			}
			b.WriteString(d.Placeholder(n))
			n++
		}
		b.WriteByte(')')
	}
	return b.String()
}

// InsertIfAbsent renders an insert of the rows produced by query whose
// natural key (keys, a prefix-free subset of cols) is not yet present in
// table. The key match is null-safe so a NULL member never produces a
// second copy of the same natural key on re-runs. The dialect's
// ignore-on-conflict form is layered on top so unique constraints never
// turn a duplicate into an error.
//
// query must expose every column in cols under its own name.
func InsertIfAbsent(d Dialect, table string, cols, keys []string, query string) string {
	conds := make([]string, 0, len(keys))
	for _, k := range keys {
		conds = append(conds, NullSafeEq("existing."+k, "incoming."+k))
	}

	sel := make([]string, 0, len(cols))
	for _, c := range cols {
		sel = append(sel, "incoming."+c)
	}

	body := fmt.Sprintf(
		"SELECT %s FROM (%s) incoming WHERE NOT EXISTS (SELECT 1 FROM %s existing WHERE %s)",
		strings.Join(sel, ", "), query, table, strings.Join(conds, " AND "),
	)
	return d.InsertIgnore(table, cols, body)
}

// ReplaceFrom renders a full-replace load of query into table keyed by
// keys. query must expose every column in cols under its own name.
func ReplaceFrom(d Dialect, table string, cols, keys []string, query string) string {
	body := fmt.Sprintf("SELECT %s FROM (%s) incoming", strings.Join(cols, ", "), query)
	return d.Replace(table, cols, keys, body)
}

func nonKeys(cols, keys []string) []string {
	isKey := make(map[string]bool, len(keys))
	for _, k := range keys {
		isKey[k] = true
	}
	out := make([]string, 0, len(cols))
	for _, c := range cols {
		if !isKey[c] {
			out = append(out, c)
		}
	}
	return out
}
