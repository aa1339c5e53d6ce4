package pgcsv

import "time"

// Exit codes for semantic error classification.
// These follow Unix/GNU conventions:
//   - 0: Success (including runs where individual files failed and were reported)
//   - 1: General error
//   - 2: CLI usage error (misuse of command line)
//   - 3+: Application-specific errors
const (
	ExitSuccess         = 0  // Run completed, per-file failures already reported
	ExitGeneralError    = 1  // Unknown or unclassified error
	ExitUsageError      = 2  // CLI usage error (bad args, invalid flags, empty path)
	ExitPanic           = 3  // Internal panic (unexpected crash)
	ExitConfigError     = 10 // Invalid configuration
	ExitConnectionError = 11 // Failed to connect to database
	ExitInputError      = 12 // Input path absent or unusable
	ExitLoadFailed      = 13 // At least one file failed and --fail-on-error was set
)

const (
	// DefaultSchema is the namespace every table is created in.
	DefaultSchema = "sources"

	// DefaultSuffix selects which directory entries are loaded. Matching is case-sensitive.
	DefaultSuffix = ".csv"

	// DefaultStripChar is removed from every data field before loading.
	DefaultStripChar = "'"

	// DefaultTableName is used when a file stem sanitizes to nothing.
	DefaultTableName = "csv_file"

	// MaxIdentifierLength mirrors PostgreSQL's NAMEDATALEN-1.
	MaxIdentifierLength = 63

	// DefaultRetryInitialDelay is the default initial delay before the first retry attempt.
	DefaultRetryInitialDelay = 100 * time.Millisecond

	// DefaultRetryMaxDelay is the default maximum delay between retry attempts.
	DefaultRetryMaxDelay = 1 * time.Minute

	// DefaultRetryMaxAttempts is the default maximum number of connection retry attempts.
	DefaultRetryMaxAttempts = 3

	// DefaultAppName is reported to the server as application_name.
	DefaultAppName = "pgcsv"
)
