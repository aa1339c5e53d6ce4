package logging

import (
	"fmt"
	"io"
	"os"
	"sync"
)

const (
	verbosePrefix = "[VERBOSE] "
	errorPrefix   = "[ERROR] "
)

// ConsoleLogger writes one line per message. Progress and errors go to
// stderr by default so stdout stays free for the run summary.
type ConsoleLogger struct {
	out     io.Writer
	verbose bool
	mu      sync.Mutex
}

// NewConsoleLogger creates a ConsoleLogger writing to stderr.
// Verbose() output is produced only when verbose is true.
func NewConsoleLogger(verbose bool) *ConsoleLogger {
	return NewConsoleLoggerTo(os.Stderr, verbose)
}

// NewConsoleLoggerTo creates a ConsoleLogger writing to out.
func NewConsoleLoggerTo(out io.Writer, verbose bool) *ConsoleLogger {
	return &ConsoleLogger{out: out, verbose: verbose}
}

// IsVerbose reports whether Verbose() produces output.
func (l *ConsoleLogger) IsVerbose() bool {
	return l.verbose
}

func (l *ConsoleLogger) Verbose(format string, args ...interface{}) {
	if !l.verbose {
		return
	}
	l.write(verbosePrefix, format, args)
}

func (l *ConsoleLogger) Info(format string, args ...interface{}) {
	l.write("", format, args)
}

func (l *ConsoleLogger) Error(format string, args ...interface{}) {
	l.write(errorPrefix, format, args)
}

func (l *ConsoleLogger) write(prefix, format string, args []interface{}) {
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprint(l.out, prefix+msg+"\n")
}
