package discover

import (
	"errors"
	"fmt"
	"io/fs"
	"iter"
	"path/filepath"
	"strings"

	"github.com/vvka-141/pgcsv/internal/files/filesystem"
	"github.com/vvka-141/pgcsv/internal/schema"
	"github.com/vvka-141/pgcsv/pkg/pgcsv"
)

// Discoverer finds CSV files. Listing is lazy: entries are produced as the
// caller ranges over the sequence.
type Discoverer struct {
	fsProvider filesystem.FileSystemProvider
	suffix     string
}

// NewDiscoverer creates a discoverer on the OS filesystem.
func NewDiscoverer(suffix string) *Discoverer {
	return NewDiscovererWithFS(filesystem.NewOSFileSystem(), suffix)
}

// NewDiscovererWithFS creates a discoverer with a custom filesystem provider.
// This is primarily useful for testing with in-memory filesystems.
// Panics if fsProvider is nil.
func NewDiscovererWithFS(fsProvider filesystem.FileSystemProvider, suffix string) *Discoverer {
	if fsProvider == nil {
		panic("fsProvider cannot be nil")
	}
	if suffix == "" {
		suffix = pgcsv.DefaultSuffix
	}
	return &Discoverer{fsProvider: fsProvider, suffix: suffix}
}

// Discover yields the regular files directly inside dir whose name ends
// with the suffix. A missing path or a path that is not a directory yields
// a single error and nothing else.
func (d *Discoverer) Discover(dir string) iter.Seq2[pgcsv.SourceFile, error] {
	return func(yield func(pgcsv.SourceFile, error) bool) {
		info, err := d.fsProvider.Stat(dir)
		if err != nil {
			yield(pgcsv.SourceFile{Path: dir}, statError("directory", dir, err))
			return
		}
		if !info.IsDir() {
			yield(pgcsv.SourceFile{Path: dir}, fmt.Errorf("%w: %s", pgcsv.ErrNotADirectory, dir))
			return
		}

		entries, err := d.fsProvider.ReadDir(dir)
		if err != nil {
			yield(pgcsv.SourceFile{Path: dir}, fmt.Errorf("failed to list %s: %w", dir, err))
			return
		}

		for _, entry := range entries {
			if entry.IsDir() || !entry.Mode().IsRegular() {
				continue
			}
			if !strings.HasSuffix(entry.Name(), d.suffix) {
				continue
			}
			if !yield(d.sourceFile(d.fsProvider.Join(dir, entry.Name())), nil) {
				return
			}
		}
	}
}

// Resolve yields one file for a file path and the discovered files for a
// directory path.
func (d *Discoverer) Resolve(path string) iter.Seq2[pgcsv.SourceFile, error] {
	return func(yield func(pgcsv.SourceFile, error) bool) {
		info, err := d.fsProvider.Stat(path)
		if err != nil {
			yield(pgcsv.SourceFile{Path: path}, statError("file or directory", path, err))
			return
		}
		if !info.IsDir() {
			yield(d.sourceFile(path), nil)
			return
		}
		for file, err := range d.Discover(path) {
			if !yield(file, err) {
				return
			}
		}
	}
}

func (d *Discoverer) sourceFile(path string) pgcsv.SourceFile {
	name := filepath.Base(filepath.FromSlash(path))
	stem := strings.TrimSuffix(name, d.suffix)
	if stem == name {
		stem = strings.TrimSuffix(name, filepath.Ext(name))
	}
	return pgcsv.SourceFile{
		Path:  path,
		Name:  name,
		Stem:  stem,
		Table: schema.TableName(stem),
	}
}

func statError(what, path string, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s not found at '%s'", pgcsv.ErrInputNotFound, what, path)
	}
	return fmt.Errorf("failed to access %s: %w", path, err)
}

var _ pgcsv.FileDiscoverer = (*Discoverer)(nil)
