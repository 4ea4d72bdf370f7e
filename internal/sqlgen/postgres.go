package sqlgen

import (
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
)

// Postgres renders SQL for PostgreSQL. Schema qualifiers are schemas
// inside the connected database.
type Postgres struct{}

// Name returns the dialect name.
func (Postgres) Name() string { return "postgres" }

// Placeholder returns $n.
func (Postgres) Placeholder(n int) string { return fmt.Sprintf("$%d", n) }

// QuoteIdent quotes name with double quotes.
func (Postgres) QuoteIdent(name string) string {
	return pgx.Identifier{name}.Sanitize()
}

// InsertIgnore renders INSERT ... ON CONFLICT DO NOTHING.
func (Postgres) InsertIgnore(table string, cols []string, query string) string {
	return fmt.Sprintf("INSERT INTO %s (%s) %s ON CONFLICT DO NOTHING",
		table, strings.Join(cols, ", "), query)
}

// Replace renders INSERT ... ON CONFLICT (keys) DO UPDATE over every
// non-key column.
func (Postgres) Replace(table string, cols, keys []string, query string) string {
	sets := make([]string, 0, len(cols))
	for _, c := range nonKeys(cols, keys) {
		sets = append(sets, fmt.Sprintf("%s = EXCLUDED.%s", c, c))
	}
	action := "DO NOTHING"
	if len(sets) > 0 {
		action = "DO UPDATE SET " + strings.Join(sets, ", ")
	}
	return fmt.Sprintf("INSERT INTO %s (%s) %s ON CONFLICT (%s) %s",
		table, strings.Join(cols, ", "), query, strings.Join(keys, ", "), action)
}

// DateKey renders to_char(expr, 'YYYYMMDD') as an integer.
func (Postgres) DateKey(expr string) string {
	return fmt.Sprintf("CAST(to_char(%s, 'YYYYMMDD') AS INTEGER)", expr)
}

// CastText casts to TEXT.
func (Postgres) CastText(expr string) string {
	return fmt.Sprintf("CAST(%s AS TEXT)", expr)
}

// TimestampType returns TIMESTAMPTZ.
func (Postgres) TimestampType() string { return "TIMESTAMPTZ" }

// IdentityColumn returns an identity integer column.
func (Postgres) IdentityColumn() string {
	return "INTEGER GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY"
}
