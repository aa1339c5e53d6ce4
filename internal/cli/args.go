package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// OptionalSourcePath accepts zero or one path argument. The message keeps
// cobra's "arg(s), received" wording so the exit code stays a usage error.
func OptionalSourcePath(cmd *cobra.Command, args []string) error {
	if len(args) > 1 {
		return fmt.Errorf(`accepts at most 1 arg(s), received %d

Usage: %s

Load several directories with one call each, or put the files in one directory:
  %s ./exports`, len(args), cmd.UseLine(), cmd.CommandPath())
	}
	return nil
}
