package schema

import (
	"context"
	"fmt"
	"slices"

	"github.com/jackc/pgx/v5"
	"github.com/vvka-141/pgcsv/pkg/pgcsv"
)

const existingColumnsSQL = `
SELECT column_name
FROM information_schema.columns
WHERE table_schema = $1 AND table_name = $2
ORDER BY ordinal_position`

// Provisioner creates the target schema and table when absent. Existing
// tables are never altered.
type Provisioner struct {
	owner  string
	strict bool
	logger pgcsv.Logger
}

// NewProvisioner creates a provisioner from load options.
// Panics if logger is nil.
func NewProvisioner(opts pgcsv.LoadOptions, logger pgcsv.Logger) *Provisioner {
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &Provisioner{
		owner:  opts.SchemaOwner,
		strict: opts.StrictColumns,
		logger: logger,
	}
}

// Provision runs CREATE SCHEMA and CREATE TABLE, each in its own committed
// transaction. With strict columns enabled, a pre-existing table whose
// columns differ from the header fails with pgcsv.ErrColumnMismatch.
func (p *Provisioner) Provision(ctx context.Context, conn pgcsv.DBConn, target pgcsv.TargetTable) error {
	schemaSQL, err := BuildCreateSchemaSQL(target.Schema, p.owner)
	if err != nil {
		return err
	}
	tableSQL, err := BuildCreateTableSQL(target)
	if err != nil {
		return err
	}

	if p.strict {
		if err := p.checkColumns(ctx, conn, target); err != nil {
			return err
		}
	}

	p.logger.Verbose("%s", schemaSQL)
	if err := execCommitted(ctx, conn, schemaSQL); err != nil {
		return fmt.Errorf("failed to create schema %s: %w", target.Schema, err)
	}

	p.logger.Verbose("%s", tableSQL)
	if err := execCommitted(ctx, conn, tableSQL); err != nil {
		return fmt.Errorf("failed to create table %s: %w", target, err)
	}

	return nil
}

func execCommitted(ctx context.Context, conn pgcsv.DBConn, sql string) error {
	return pgx.BeginFunc(ctx, conn, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, sql)
		return err
	})
}

// ExistingColumns returns the column names of schema.table in ordinal
// order, or nil when the table does not exist.
func ExistingColumns(ctx context.Context, conn pgcsv.DBConn, schemaName, table string) ([]string, error) {
	rows, err := conn.Query(ctx, existingColumnsSQL, schemaName, table)
	if err != nil {
		return nil, fmt.Errorf("failed to read columns of %s.%s: %w", schemaName, table, err)
	}
	cols, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("failed to read columns of %s.%s: %w", schemaName, table, err)
	}
	return cols, nil
}

func (p *Provisioner) checkColumns(ctx context.Context, conn pgcsv.DBConn, target pgcsv.TargetTable) error {
	existing, err := ExistingColumns(ctx, conn, target.Schema, target.Name)
	if err != nil {
		return err
	}
	if len(existing) == 0 {
		return nil
	}
	want := target.ColumnNames()
	if !slices.Equal(existing, want) {
		return fmt.Errorf("table %s has columns %q, file header has %q: %w",
			target, existing, want, pgcsv.ErrColumnMismatch)
	}
	return nil
}

var _ pgcsv.Provisioner = (*Provisioner)(nil)
