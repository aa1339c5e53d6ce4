package pgcsv

import (
	"context"
	"errors"
	"net"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// Sentinel errors for common failure scenarios.
// These enable callers to distinguish error types using errors.Is().
//
// Example usage:
//
//	summary, _ := orchestrator.Run(ctx, path)
//	for _, r := range summary.Results {
//	    if errors.Is(r.Err, pgcsv.ErrEmptyInput) {
//	        // header-only or empty file, nothing was touched
//	    }
//	}
var (
	// ErrInvalidConfig indicates the provided configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrUnsupportedAuthMethod indicates the requested authentication method is not supported.
	ErrUnsupportedAuthMethod = errors.New("unsupported authentication method")

	// ErrConnectionFailed indicates database connection failed.
	ErrConnectionFailed = errors.New("connection failed")

	// ErrInputNotFound indicates the file or directory to load does not exist.
	ErrInputNotFound = errors.New("input not found")

	// ErrNotADirectory indicates discovery was asked to list something that is not a directory.
	ErrNotADirectory = errors.New("not a directory")

	// ErrEmptyInput indicates a CSV file without a header or without data rows.
	ErrEmptyInput = errors.New("empty input")

	// ErrLoadData indicates the bulk copy rejected the file's data.
	ErrLoadData = errors.New("load failed")

	// ErrColumnMismatch indicates an existing table's columns differ from the CSV header.
	ErrColumnMismatch = errors.New("column mismatch")

	// ErrTargetInUse indicates a second file of the same run maps to a table
	// an earlier file already loaded into.
	ErrTargetInUse = errors.New("target table already used in this run")

	// ErrUsage indicates the command line could not be turned into a run.
	ErrUsage = errors.New("usage error")

	// ErrLoadFailed indicates at least one file of a run did not load.
	ErrLoadFailed = errors.New("one or more files failed to load")
)

// ErrorKind is the coarse category a per-file failure is reported under.
type ErrorKind int

const (
	KindNone ErrorKind = iota
	KindConnectivity
	KindMissingInput
	KindEmptyInput
	KindLoadData
	KindUnclassified
)

func (k ErrorKind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindConnectivity:
		return "connectivity"
	case KindMissingInput:
		return "missing-input"
	case KindEmptyInput:
		return "empty-input"
	case KindLoadData:
		return "load-data"
	default:
		return "unclassified"
	}
}

// Classify maps an error to its ErrorKind. Sentinels win over server error
// codes, which win over network error types.
func Classify(err error) ErrorKind {
	if err == nil {
		return KindNone
	}

	switch {
	case errors.Is(err, ErrInputNotFound), errors.Is(err, ErrNotADirectory):
		return KindMissingInput
	case errors.Is(err, ErrEmptyInput):
		return KindEmptyInput
	case errors.Is(err, ErrLoadData), errors.Is(err, ErrColumnMismatch), errors.Is(err, ErrTargetInUse):
		return KindLoadData
	case errors.Is(err, ErrConnectionFailed):
		return KindConnectivity
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && len(pgErr.Code) >= 2 {
		switch {
		case pgErr.Code[:2] == "08", pgErr.Code[:2] == "28", strings.HasPrefix(pgErr.Code, "57P0"):
			return KindConnectivity
		case pgErr.Code[:2] == "22", pgErr.Code[:2] == "23", pgErr.Code[:2] == "42",
			pgErr.Code[:2] == "53", pgErr.Code == "57014":
			// 53: insufficient resources, 57014: statement cancelled by the server
			return KindLoadData
		}
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return KindUnclassified
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return KindConnectivity
	}
	if isConnectionMessage(err.Error()) {
		return KindConnectivity
	}

	return KindUnclassified
}

func isConnectionMessage(msg string) bool {
	return strings.Contains(msg, "failed to connect") ||
		strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "no such host")
}

// ExitCodeForError returns the appropriate exit code for an error.
// Returns ExitSuccess (0) for nil errors, semantic codes for known errors,
// and ExitGeneralError (1) for unclassified errors.
func ExitCodeForError(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Check for sentinel errors
	switch {
	case errors.Is(err, ErrInvalidConfig):
		return ExitConfigError
	case errors.Is(err, ErrUnsupportedAuthMethod):
		return ExitConfigError
	case errors.Is(err, ErrConnectionFailed):
		return ExitConnectionError
	case errors.Is(err, ErrInputNotFound), errors.Is(err, ErrNotADirectory):
		return ExitInputError
	case errors.Is(err, ErrLoadFailed):
		return ExitLoadFailed
	case errors.Is(err, ErrUsage):
		return ExitUsageError
	}

	errStr := err.Error()

	// Cobra reports usage problems as plain errors
	if strings.HasPrefix(errStr, "unknown flag") ||
		strings.HasPrefix(errStr, "unknown shorthand flag") ||
		strings.HasPrefix(errStr, "unknown command") ||
		strings.HasPrefix(errStr, "invalid argument") ||
		strings.HasPrefix(errStr, "required flag") ||
		strings.Contains(errStr, "arg(s), received") {
		return ExitUsageError
	}

	if isConnectionMessage(errStr) {
		return ExitConnectionError
	}

	return ExitGeneralError
}
