package migrations

import (
	_ "embed"
	"strings"
)

//go:embed postgres.sql
var postgresDDL string

//go:embed clickhouse.sql
var clickhouseDDL string

// PostgresDDL returns the full Postgres schema as one executable script
func PostgresDDL() string {
	return postgresDDL
}

// ClickHouseStatements returns the ClickHouse schema split into individual
// statements; the native protocol executes one statement at a time
func ClickHouseStatements() []string {
	var out []string
	for _, stmt := range strings.Split(clickhouseDDL, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		out = append(out, stmt)
	}
	return out
}
