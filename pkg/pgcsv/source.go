package pgcsv

import (
	"time"
)

// SourceFile is one CSV file selected for loading.
type SourceFile struct {
	// Path as given or as joined with the discovered directory.
	Path string
	// Name is the base name including suffix.
	Name string
	// Stem is Name without the suffix.
	Stem string
	// Table is the sanitized table name derived from Stem.
	Table string
}

// ColumnType is the only column type pgcsv creates.
const ColumnType = "TEXT"

// Column describes one target column. Every column is TEXT.
type Column struct {
	Name string
}

// TargetTable is a schema-qualified table with ordered columns.
type TargetTable struct {
	Schema  string
	Name    string
	Columns []Column
}

// ColumnNames returns the column names in order.
func (t TargetTable) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// String returns schema.name without quoting, for messages.
func (t TargetTable) String() string {
	return t.Schema + "." + t.Name
}

// Table is a parsed CSV file: header plus rows of string fields.
type Table struct {
	Header []string
	Rows   [][]string

	// Checksum is the SHA-256 of the raw file bytes, hex encoded.
	Checksum string
}

// FileState tracks a file through the load pipeline.
type FileState int

const (
	StatePending FileState = iota
	StateConnected
	StateSchemaReady
	StateDataCleaned
	StateLoaded
	StateFailed
)

func (s FileState) String() string {
	switch s {
	case StatePending:
		return "PENDING"
	case StateConnected:
		return "CONNECTED"
	case StateSchemaReady:
		return "SCHEMA_READY"
	case StateDataCleaned:
		return "DATA_CLEANED"
	case StateLoaded:
		return "LOADED"
	case StateFailed:
		return "FAILED"
	default:
		return "UNKNOWN"
	}
}

// IsTerminal reports whether no further transition is possible.
func (s FileState) IsTerminal() bool {
	return s == StateLoaded || s == StateFailed
}

// FileResult is the outcome for a single file.
type FileResult struct {
	Source SourceFile
	// Target is schema.table, unquoted.
	Target string
	// ID is stable for a given path across runs.
	ID string
	// State is LOADED or FAILED once the orchestrator is done with the file.
	State FileState
	// LastState is the last state reached before failing.
	LastState FileState
	Rows      int64
	Checksum  string
	Err       error
	Kind      ErrorKind
	Duration  time.Duration
}

// RunSummary collects every FileResult of one invocation.
type RunSummary struct {
	RunID   string
	Results []FileResult
	Loaded  int
	Failed  int
}

// Add appends a result and updates the counters.
func (s *RunSummary) Add(r FileResult) {
	s.Results = append(s.Results, r)
	if r.State == StateLoaded {
		s.Loaded++
	} else {
		s.Failed++
	}
}

// TotalRows sums rows over loaded files.
func (s *RunSummary) TotalRows() int64 {
	var n int64
	for _, r := range s.Results {
		n += r.Rows
	}
	return n
}
