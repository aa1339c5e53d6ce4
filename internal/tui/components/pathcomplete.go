package components

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// PathCompleter completes filesystem paths on Tab. Directories always match;
// files match only when they carry the configured suffix.
//
// Feed the returned value back on the next Tab to cycle through matches:
//
//	completer := NewPathCompleter(".csv")
//	input.SetValue(completer.Next(input.Value()))
//
// Call Reset on any other keypress.
type PathCompleter struct {
	suffix     string
	parent     string
	matches    []string
	cycleIndex int
	last       string
}

// NewPathCompleter creates a completer for files ending in suffix. An empty
// suffix matches every file.
func NewPathCompleter(suffix string) *PathCompleter {
	return &PathCompleter{suffix: suffix}
}

// Next returns the completion for input. The first call extends input to the
// longest common prefix of the matches, or to the only match. Calling again
// with the previous result cycles through the matches.
func (c *PathCompleter) Next(input string) string {
	if c.matches != nil && input == c.last {
		c.cycleIndex = (c.cycleIndex + 1) % len(c.matches)
		c.last = c.formatMatch(c.parent, c.matches[c.cycleIndex])
		return c.last
	}

	parent, prefix := splitPath(input)
	c.parent = parent
	c.matches = c.findMatches(parent, prefix)
	if len(c.matches) == 0 {
		c.Reset()
		return input
	}

	if len(c.matches) > 1 {
		candidate := filepath.Join(parent, longestCommonPrefix(c.matches))
		if len(candidate) > len(input) {
			c.cycleIndex = -1
			c.last = candidate
			return candidate
		}
	}

	c.cycleIndex = 0
	c.last = c.formatMatch(parent, c.matches[0])
	return c.last
}

// Reset clears the cycle state.
func (c *PathCompleter) Reset() {
	c.matches = nil
	c.cycleIndex = 0
	c.parent = ""
	c.last = ""
}

func (c *PathCompleter) findMatches(parent, prefix string) []string {
	entries, err := os.ReadDir(parent)
	if err != nil {
		return nil
	}

	var matches []string
	lowPrefix := strings.ToLower(prefix)
	for _, entry := range entries {
		name := entry.Name()
		if !entry.IsDir() && !strings.HasSuffix(name, c.suffix) {
			continue
		}
		if strings.HasPrefix(strings.ToLower(name), lowPrefix) {
			matches = append(matches, name)
		}
	}

	sort.Strings(matches)
	return matches
}

func (c *PathCompleter) formatMatch(parent, name string) string {
	result := filepath.Join(parent, name)
	if info, err := os.Stat(result); err == nil && info.IsDir() {
		result += string(filepath.Separator)
	}
	return result
}

// splitPath splits an input into parent directory and name prefix.
//
//	"./src/com" → ("src", "com")
//	"./src/"    → ("./src", "")
//	"my"        → (".", "my")
//	""          → (".", "")
func splitPath(input string) (parent, prefix string) {
	if input == "" || input == "." {
		return ".", ""
	}
	if strings.HasSuffix(input, string(filepath.Separator)) || strings.HasSuffix(input, "/") {
		parent = strings.TrimRight(input, `/\`)
		if parent == "" {
			parent = string(filepath.Separator)
		}
		return parent, ""
	}
	return filepath.Dir(input), filepath.Base(input)
}

// longestCommonPrefix finds the longest common prefix among strs, ignoring case.
func longestCommonPrefix(strs []string) string {
	if len(strs) == 0 {
		return ""
	}

	first := strings.ToLower(strs[0])
	for i := 0; i < len(first); i++ {
		for _, s := range strs[1:] {
			if i >= len(s) || strings.ToLower(s[i:i+1]) != first[i:i+1] {
				return strs[0][:i]
			}
		}
	}
	return strs[0]
}
