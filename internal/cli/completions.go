package cli

import (
	"strings"

	"github.com/spf13/cobra"
)

// sslModes contains valid PostgreSQL SSL modes for shell completion.
var sslModes = []string{"disable", "allow", "prefer", "require", "verify-ca", "verify-full"}

// authMethods are the canonical --auth-method values.
var authMethods = []string{"standard", "aws", "google", "azure"}

func matchingPrefix(values []string, toComplete string) []string {
	var matches []string
	for _, v := range values {
		if strings.HasPrefix(v, toComplete) {
			matches = append(matches, v)
		}
	}
	return matches
}

// completeSSLModes provides shell completion for SSL mode flag values.
func completeSSLModes(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return matchingPrefix(sslModes, toComplete), cobra.ShellCompDirectiveNoFileComp
}

func completeAuthMethods(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return matchingPrefix(authMethods, toComplete), cobra.ShellCompDirectiveNoFileComp
}

// completeSourcePaths lets the shell complete directories and files ending
// in the configured suffix.
func completeSourcePaths(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	ext := strings.TrimPrefix(loadFlags.suffix, ".")
	if ext == "" {
		ext = "csv"
	}
	return []string{ext}, cobra.ShellCompDirectiveFilterFileExt
}
