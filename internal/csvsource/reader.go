package csvsource

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strconv"

	"github.com/vvka-141/pgcsv/internal/checksum"
	"github.com/vvka-141/pgcsv/internal/files/filesystem"
	"github.com/vvka-141/pgcsv/pkg/pgcsv"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Reader parses CSV files into pgcsv.Table values.
// Reader is safe for concurrent use as long as the filesystem provider is.
type Reader struct {
	fsProvider filesystem.FileSystemProvider
	calculator checksum.Calculator
}

// NewReader creates a CSV reader over the given filesystem.
// Panics if fsProvider or calculator is nil.
func NewReader(fsProvider filesystem.FileSystemProvider, calculator checksum.Calculator) *Reader {
	if fsProvider == nil {
		panic("fsProvider cannot be nil")
	}
	if calculator == nil {
		panic("calculator cannot be nil")
	}
	return &Reader{fsProvider: fsProvider, calculator: calculator}
}

// ReadTable reads the whole file. The first record is the header. A file
// without a header or without data rows is pgcsv.ErrEmptyInput; a missing
// file is pgcsv.ErrInputNotFound; a parse failure is pgcsv.ErrLoadData.
func (r *Reader) ReadTable(file pgcsv.SourceFile) (*pgcsv.Table, error) {
	rc, err := r.fsProvider.Open(file.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: file %s: %w", pgcsv.ErrInputNotFound, file.Path, err)
		}
		return nil, fmt.Errorf("failed to open %s: %w", file.Path, err)
	}
	defer rc.Close()

	hashed := r.calculator.Reader(rc)
	table, err := Parse(hashed)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", file.Path, err)
	}

	// Drain anything the parser left behind so the digest covers the whole file.
	if _, err := io.Copy(io.Discard, hashed); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", file.Path, err)
	}
	table.Checksum = hashed.Sum()
	return table, nil
}

// Parse reads CSV from src. A leading UTF-8 BOM is dropped and UTF-16
// input with a BOM is decoded to UTF-8. Rows are returned as parsed; ragged
// rows are left for the database to reject.
func Parse(src io.Reader) (*pgcsv.Table, error) {
	decoded := transform.NewReader(src, unicode.BOMOverride(transform.Nop))

	cr := csv.NewReader(decoded)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("no header row: %w", pgcsv.ErrEmptyInput)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse header: %w: %w", pgcsv.ErrLoadData, err)
	}

	var rows [][]string
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse row %d: %w: %w", len(rows)+1, pgcsv.ErrLoadData, err)
		}
		rows = append(rows, record)
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("no data rows: %w", pgcsv.ErrEmptyInput)
	}

	return &pgcsv.Table{Header: NormalizeHeader(header), Rows: rows}, nil
}

// NormalizeHeader makes header names usable as column names: blank names
// become unnamed_<position> and repeated names get .1, .2 suffixes in
// order of appearance.
func NormalizeHeader(header []string) []string {
	out := make([]string, len(header))
	seen := make(map[string]int, len(header))
	used := make(map[string]bool, len(header))

	for i, name := range header {
		if name == "" {
			name = "unnamed_" + strconv.Itoa(i)
		}
		candidate := name
		for used[candidate] {
			seen[name]++
			candidate = name + "." + strconv.Itoa(seen[name])
		}
		used[candidate] = true
		out[i] = candidate
	}
	return out
}

var _ pgcsv.SourceReader = (*Reader)(nil)
