package pgcsv

import (
	"context"
	"iter"

	"github.com/jackc/pgx/v5"
)

// DBConn is the part of a pgx connection the provisioner and loader use.
// *pgxpool.Conn and *pgx.Conn both satisfy it.
type DBConn interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// FileDiscoverer turns a user supplied path into source files.
type FileDiscoverer interface {
	// Resolve yields one file for a file path, the matching entries for a
	// directory, or a single error when the path cannot be used.
	Resolve(path string) iter.Seq2[SourceFile, error]
}

// SourceReader parses a source file into a Table.
type SourceReader interface {
	ReadTable(file SourceFile) (*Table, error)
}

// Provisioner makes sure the schema and table exist.
type Provisioner interface {
	Provision(ctx context.Context, conn DBConn, target TargetTable) error
}

// RowCleaner sanitizes data fields.
type RowCleaner interface {
	CleanTable(t *Table) *Table
}

// BulkLoader copies a cleaned table into the target.
type BulkLoader interface {
	Load(ctx context.Context, conn DBConn, target TargetTable, data *Table) (int64, error)
}

// PathPrompter asks the user for the path when none was given.
type PathPrompter interface {
	PromptPath(ctx context.Context) (string, error)
}
