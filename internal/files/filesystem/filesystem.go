package filesystem

import (
	"io"
	"io/fs"
)

// FileInfo is an alias for fs.FileInfo from the standard library.
// This provides compatibility with the fs.FS ecosystem while maintaining
// a stable local type for our abstraction layer.
type FileInfo = fs.FileInfo

// FileSystemProvider is the read-only view of a filesystem used to find and
// read CSV sources. Missing paths are reported with errors wrapping
// fs.ErrNotExist in every implementation.
type FileSystemProvider interface {
	// Open opens a regular file for streaming reads. The caller closes it.
	Open(path string) (io.ReadCloser, error)

	// ReadDir returns the direct entries of a directory, sorted by name.
	// It never descends into subdirectories.
	ReadDir(path string) ([]FileInfo, error)

	// Stat returns file information for the given path
	Stat(path string) (FileInfo, error)

	// Join builds a child path in the provider's path syntax.
	Join(dir, name string) string
}
