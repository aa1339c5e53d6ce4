package schema

import (
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/vvka-141/pgcsv/pkg/pgcsv"
)

// QuoteIdent quotes a single identifier, doubling embedded quotes.
func QuoteIdent(name string) string {
	return pgx.Identifier{name}.Sanitize()
}

// QualifiedName returns "schema"."table".
func QualifiedName(t pgcsv.TargetTable) string {
	return pgx.Identifier{t.Schema, t.Name}.Sanitize()
}

// QuotedColumns returns every column name quoted, in order.
func QuotedColumns(t pgcsv.TargetTable) []string {
	cols := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		cols[i] = QuoteIdent(c.Name)
	}
	return cols
}

// BuildCreateSchemaSQL returns an idempotent CREATE SCHEMA statement.
func BuildCreateSchemaSQL(schema, owner string) (string, error) {
	if strings.TrimSpace(schema) == "" {
		return "", fmt.Errorf("schema name must not be empty: %w", pgcsv.ErrInvalidConfig)
	}
	stmt := "CREATE SCHEMA IF NOT EXISTS " + QuoteIdent(schema)
	if owner != "" {
		stmt += " AUTHORIZATION " + QuoteIdent(owner)
	}
	return stmt, nil
}

// BuildCreateTableSQL returns an idempotent CREATE TABLE statement with one
// TEXT column per header field.
func BuildCreateTableSQL(t pgcsv.TargetTable) (string, error) {
	if t.Name == "" {
		return "", fmt.Errorf("table name must not be empty: %w", pgcsv.ErrInvalidConfig)
	}
	if len(t.Columns) == 0 {
		return "", fmt.Errorf("table %s: at least one column is required: %w", t, pgcsv.ErrEmptyInput)
	}

	defs := make([]string, len(t.Columns))
	for i, col := range QuotedColumns(t) {
		defs[i] = col + " " + pgcsv.ColumnType
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", QualifiedName(t), strings.Join(defs, ", ")), nil
}

// NewTargetTable pairs a schema and table name with header-derived columns.
func NewTargetTable(schema, table string, header []string) pgcsv.TargetTable {
	cols := make([]pgcsv.Column, len(header))
	for i, h := range header {
		cols[i] = pgcsv.Column{Name: h}
	}
	return pgcsv.TargetTable{Schema: schema, Name: table, Columns: cols}
}
