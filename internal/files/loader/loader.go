package loader

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/vvka-141/pgcsv/internal/schema"
	"github.com/vvka-141/pgcsv/pkg/pgcsv"
	"golang.org/x/sync/errgroup"
)

// Loader copies cleaned tables into their target table.
type Loader struct {
	logger pgcsv.Logger
}

// NewLoader creates a new bulk loader.
// Panics if logger is nil.
func NewLoader(logger pgcsv.Logger) *Loader {
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &Loader{logger: logger}
}

// BuildCopySQL returns the COPY statement for target. Columns are listed
// explicitly and empty fields load as empty strings, not NULL.
func BuildCopySQL(target pgcsv.TargetTable) (string, error) {
	if len(target.Columns) == 0 {
		return "", fmt.Errorf("table %s: at least one column is required: %w", target, pgcsv.ErrEmptyInput)
	}
	cols := strings.Join(schema.QuotedColumns(target), ", ")
	return fmt.Sprintf(
		"COPY %s (%s) FROM STDIN WITH (FORMAT csv, HEADER true, FORCE_NOT_NULL (%s))",
		schema.QualifiedName(target), cols, cols,
	), nil
}

// WriteCSV serializes data as comma-delimited CSV with a header line and
// minimal quoting. Rows are written as they are, ragged or not.
func WriteCSV(w io.Writer, data *pgcsv.Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(data.Header); err != nil {
		return err
	}
	for _, row := range data.Rows {
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Load streams data into target in one transaction and returns the number
// of rows copied. Any failure rolls the transaction back; data errors wrap
// pgcsv.ErrLoadData.
func (l *Loader) Load(ctx context.Context, conn pgcsv.DBConn, target pgcsv.TargetTable, data *pgcsv.Table) (int64, error) {
	stmt, err := BuildCopySQL(target)
	if err != nil {
		return 0, err
	}
	l.logger.Verbose("%s", stmt)

	var copied int64
	err = pgx.BeginFunc(ctx, conn, func(tx pgx.Tx) error {
		n, err := copyTable(ctx, tx, stmt, data)
		copied = n
		return err
	})
	if err != nil {
		if pgcsv.Classify(err) == pgcsv.KindConnectivity || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return 0, fmt.Errorf("copy into %s: %w", target, err)
		}
		return 0, fmt.Errorf("%w: copy into %s: %w", pgcsv.ErrLoadData, target, err)
	}
	return copied, nil
}

func copyTable(ctx context.Context, tx pgx.Tx, stmt string, data *pgcsv.Table) (int64, error) {
	pr, pw := io.Pipe()

	var g errgroup.Group
	g.Go(func() error {
		err := WriteCSV(pw, data)
		pw.CloseWithError(err)
		return err
	})

	var copied int64
	g.Go(func() error {
		tag, err := tx.Conn().PgConn().CopyFrom(ctx, pr, stmt)
		// unblocks the writer if COPY stopped reading early
		pr.CloseWithError(err)
		if err != nil {
			return err
		}
		copied = tag.RowsAffected()
		return nil
	})

	err := g.Wait()
	return copied, err
}
