package database

import (
	"database/sql"
	"strconv"
	"strings"
)

// Dialect abstracts the differences between the supported SQL engines.
// Repository queries are written once with ? placeholders and passed
// through RewriteQuery before execution.
type Dialect interface {
	// DriverName returns the driver name for sql.Open.
	DriverName() string

	// DSN returns the data source name for the connection.
	DSN(config DialectConfig) string

	// RewriteQuery converts placeholder syntax where the engine needs it.
	RewriteQuery(query string) string

	// ConfigureConnection applies engine-specific connection settings.
	ConfigureConnection(db *sql.DB) error

	// MigrationsSubdir names the per-engine migrations directory.
	MigrationsSubdir() string

	// CreateMigrationsTableQuery returns the SQL for the migrations
	// tracking table.
	CreateMigrationsTableQuery() string

	// BoolValue returns the engine's literal for a boolean.
	BoolValue(b bool) string
}

// DialectConfig carries the connection target: a file path for sqlite,
// a URL for postgres and mysql.
type DialectConfig struct {
	Path string
	URL  string
}

// rewritePlaceholdersToNumbered turns each ? into $1, $2, ... in order.
func rewritePlaceholdersToNumbered(query string) string {
	var b strings.Builder
	b.Grow(len(query))
	n := 0
	for _, c := range query {
		if c == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(c)
	}
	return b.String()
}
