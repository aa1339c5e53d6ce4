package tui

import (
	"os"

	"golang.org/x/term"
)

// Mode represents the interaction mode for pgcsv.
type Mode int

const (
	// ModeNonInteractive is used for CI/CD pipelines, scripts, and piped input.
	ModeNonInteractive Mode = iota
	// ModeInteractive is used when a human is at the terminal.
	ModeInteractive
)

// DetectMode determines whether pgcsv may show the full-screen prompt.
//
// Returns ModeNonInteractive if:
//   - PGCSV_NON_INTERACTIVE=1 is set
//   - CI is set
//   - NO_COLOR is set
//   - stdin or stderr is not a terminal
func DetectMode() Mode {
	if os.Getenv("PGCSV_NON_INTERACTIVE") == "1" {
		return ModeNonInteractive
	}
	if os.Getenv("CI") != "" {
		return ModeNonInteractive
	}
	if os.Getenv("NO_COLOR") != "" {
		return ModeNonInteractive
	}

	// the prompt renders on stderr
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stderr.Fd())) {
		return ModeNonInteractive
	}
	return ModeInteractive
}

// IsInteractive is a convenience function that returns true if running in interactive mode.
func IsInteractive() bool {
	return DetectMode() == ModeInteractive
}

