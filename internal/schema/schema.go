//-------------------------------------------------------------------------
//
// pgEdge Data Warehouse Loader
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package schema holds the reference DDL for the source and warehouse
// schemas and the statement splitter used to execute DDL files.
package schema

import (
	"context"
	"fmt"
	"strings"

	"github.com/pgEdge/pgedge-dwload/internal/db"
	"github.com/pgEdge/pgedge-dwload/internal/sqlgen"
)

// Kind selects which schema to render.
type Kind string

const (
	Source    Kind = "source"
	Warehouse Kind = "warehouse"
)

// Render returns the DDL of kind for dialect d, qualified by schemaName.
func Render(d sqlgen.Dialect, kind Kind, schemaName string) (string, error) {
	if !sqlgen.ValidIdentifier(schemaName) {
		return "", fmt.Errorf("invalid schema name: %q", schemaName)
	}

	var tmpl string
	switch kind {
	case Source:
		tmpl = sourceTemplate
	case Warehouse:
		tmpl = warehouseTemplate
	default:
		return "", fmt.Errorf("unknown schema kind: %s", kind)
	}

	r := strings.NewReplacer(
		"{{schema}}", d.QuoteIdent(schemaName),
		"{{identity}}", d.IdentityColumn(),
	)
	return strings.TrimSpace(r.Replace(tmpl)) + "\n", nil
}

// Split breaks DDL text into statements on ';'. Chunks holding only
// whitespace or '--' comments are dropped. Semicolons inside literals are
// not recognized.
func Split(text string) []string {
	var stmts []string
	for _, chunk := range strings.Split(text, ";") {
		chunk = strings.TrimSpace(chunk)
		if chunk == "" || commentOnly(chunk) {
			continue
		}
		stmts = append(stmts, chunk)
	}
	return stmts
}

func commentOnly(chunk string) bool {
	for _, line := range strings.Split(chunk, "\n") {
		line = strings.TrimSpace(line)
		if line != "" && !strings.HasPrefix(line, "--") {
			return false
		}
	}
	return true
}

// Apply executes every statement in text, in order, on ex.
func Apply(ctx context.Context, ex db.Execer, text string) (int, error) {
	stmts := Split(text)
	for i, stmt := range stmts {
		if _, err := ex.Exec(ctx, stmt); err != nil {
			return i, fmt.Errorf("statement %d of %d failed: %w", i+1, len(stmts), err)
		}
	}
	return len(stmts), nil
}
