// Package filesystem provides the filesystem abstraction used to discover
// and read CSV files.
//
// Implementations:
//   - OSFileSystem: Production implementation using the OS filesystem
//   - MemoryFileSystem: In-memory implementation for testing
package filesystem
