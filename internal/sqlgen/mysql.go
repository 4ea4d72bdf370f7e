package sqlgen

import (
	"fmt"
	"strings"
)

// MySQL renders SQL for MySQL 8. Schema qualifiers are databases.
type MySQL struct{}

// Name returns the dialect name.
func (MySQL) Name() string { return "mysql" }

// Placeholder returns ?.
func (MySQL) Placeholder(int) string { return "?" }

// QuoteIdent quotes name with backticks.
func (MySQL) QuoteIdent(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

// InsertIgnore renders INSERT IGNORE.
func (MySQL) InsertIgnore(table string, cols []string, query string) string {
	return fmt.Sprintf("INSERT IGNORE INTO %s (%s) %s",
		table, strings.Join(cols, ", "), query)
}

// Replace renders REPLACE INTO, which deletes the colliding row and
// inserts the new one, so no stale column survives. keys must be the
// table's primary or unique key.
func (MySQL) Replace(table string, cols, _ []string, query string) string {
	return fmt.Sprintf("REPLACE INTO %s (%s) %s",
		table, strings.Join(cols, ", "), query)
}

// DateKey renders DATE_FORMAT(expr, '%Y%m%d') as an unsigned integer.
func (MySQL) DateKey(expr string) string {
	return fmt.Sprintf("CAST(DATE_FORMAT(%s, '%%Y%%m%%d') AS UNSIGNED)", expr)
}

// CastText casts to CHAR.
func (MySQL) CastText(expr string) string {
	return fmt.Sprintf("CAST(%s AS CHAR)", expr)
}

// TimestampType returns DATETIME(6).
func (MySQL) TimestampType() string { return "DATETIME(6)" }

// IdentityColumn returns an AUTO_INCREMENT column.
func (MySQL) IdentityColumn() string { return "INT AUTO_INCREMENT PRIMARY KEY" }
