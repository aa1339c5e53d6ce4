// Package logging provides the pgcsv.Logger implementations.
//
//   - ConsoleLogger writes prefixed lines to stderr, or any writer
//   - NullLogger discards everything
//
// Both are safe for concurrent use.
package logging
