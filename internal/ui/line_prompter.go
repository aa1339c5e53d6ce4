package ui

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/vvka-141/pgcsv/pkg/pgcsv"
)

// LinePrompter asks for the input path on one line. It is used when stdin
// is not a terminal, or when the full-screen prompt is disabled.
type LinePrompter struct {
	in  io.Reader
	out io.Writer
}

// NewLinePrompter creates a LinePrompter on stdin and stderr.
func NewLinePrompter() *LinePrompter {
	return NewLinePrompterWith(os.Stdin, os.Stderr)
}

// NewLinePrompterWith creates a LinePrompter on the given streams.
func NewLinePrompterWith(in io.Reader, out io.Writer) *LinePrompter {
	return &LinePrompter{in: in, out: out}
}

// PromptPath prints the question and returns the trimmed answer. An empty
// answer, or end of input before any answer, is a usage error.
func (p *LinePrompter) PromptPath(ctx context.Context) (string, error) {
	fmt.Fprint(p.out, "Path to a CSV file or a directory of CSV files: ")

	type answer struct {
		line string
		err  error
	}
	answers := make(chan answer, 1)

	go func() {
		line, err := bufio.NewReader(p.in).ReadString('\n')
		answers <- answer{line: line, err: err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case a := <-answers:
		path := strings.TrimSpace(a.line)
		if a.err != nil && !(errors.Is(a.err, io.EOF) && path != "") {
			if errors.Is(a.err, io.EOF) {
				return "", fmt.Errorf("no path given: %w", pgcsv.ErrUsage)
			}
			return "", fmt.Errorf("failed to read input: %w", a.err)
		}
		if path == "" {
			return "", fmt.Errorf("no path given: %w", pgcsv.ErrUsage)
		}
		return path, nil
	}
}

var _ pgcsv.PathPrompter = (*LinePrompter)(nil)
