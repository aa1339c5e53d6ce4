package discover

import (
	"errors"
	"iter"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vvka-141/pgcsv/internal/files/filesystem"
	"github.com/vvka-141/pgcsv/pkg/pgcsv"
)

func collect(t *testing.T, seq iter.Seq2[pgcsv.SourceFile, error]) ([]pgcsv.SourceFile, []error) {
	t.Helper()
	var files []pgcsv.SourceFile
	var errs []error
	for f, err := range seq {
		if err != nil {
			errs = append(errs, err)
			continue
		}
		files = append(files, f)
	}
	return files, errs
}

func newFS() *filesystem.MemoryFileSystem {
	mfs := filesystem.NewMemoryFileSystem("/data")
	mfs.AddFile("a.csv", "id\n1\n")
	mfs.AddFile("b.csv", "")
	mfs.AddFile("notes.txt", "hello")
	mfs.AddFile("UPPER.CSV", "x\n1\n")
	mfs.AddFile("nested/c.csv", "id\n2\n")
	return mfs
}

func TestDiscover_FiltersBySuffixWithoutRecursion(t *testing.T) {
	d := NewDiscovererWithFS(newFS(), ".csv")

	files, errs := collect(t, d.Discover("/data"))
	require.Empty(t, errs)

	var names []string
	for _, f := range files {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"a.csv", "b.csv"}, names)
	assert.Equal(t, "/data/a.csv", files[0].Path)
	assert.Equal(t, "a", files[0].Stem)
	assert.Equal(t, "a", files[0].Table)
}

func TestDiscover_SuffixIsCaseSensitive(t *testing.T) {
	d := NewDiscovererWithFS(newFS(), ".CSV")

	files, errs := collect(t, d.Discover("/data"))
	require.Empty(t, errs)
	require.Len(t, files, 1)
	assert.Equal(t, "UPPER.CSV", files[0].Name)
	assert.Equal(t, "upper", files[0].Table)
}

func TestDiscover_DirectoryNotFound(t *testing.T) {
	d := NewDiscovererWithFS(newFS(), ".csv")

	files, errs := collect(t, d.Discover("/missing"))
	assert.Empty(t, files)
	require.Len(t, errs, 1)
	assert.True(t, errors.Is(errs[0], pgcsv.ErrInputNotFound))
	assert.Contains(t, errs[0].Error(), "directory not found")
}

func TestDiscover_NotADirectory(t *testing.T) {
	d := NewDiscovererWithFS(newFS(), ".csv")

	files, errs := collect(t, d.Discover("/data/a.csv"))
	assert.Empty(t, files)
	require.Len(t, errs, 1)
	assert.True(t, errors.Is(errs[0], pgcsv.ErrNotADirectory))
}

func TestDiscover_IsLazy(t *testing.T) {
	d := NewDiscovererWithFS(newFS(), ".csv")

	var seen int
	for range d.Discover("/data") {
		seen++
		break
	}
	assert.Equal(t, 1, seen)
}

func TestResolve_SingleFile(t *testing.T) {
	d := NewDiscovererWithFS(newFS(), ".csv")

	files, errs := collect(t, d.Resolve("/data/notes.txt"))
	require.Empty(t, errs)
	require.Len(t, files, 1)
	assert.Equal(t, "notes", files[0].Stem)
}

func TestResolve_Directory(t *testing.T) {
	d := NewDiscovererWithFS(newFS(), ".csv")

	files, errs := collect(t, d.Resolve("/data"))
	require.Empty(t, errs)
	assert.Len(t, files, 2)
}

func TestResolve_Missing(t *testing.T) {
	d := NewDiscovererWithFS(newFS(), ".csv")

	files, errs := collect(t, d.Resolve("/data/ghost.csv"))
	assert.Empty(t, files)
	require.Len(t, errs, 1)
	assert.Equal(t, pgcsv.KindMissingInput, pgcsv.Classify(errs[0]))
}

func TestNewDiscovererWithFS_Defaults(t *testing.T) {
	assert.Panics(t, func() { NewDiscovererWithFS(nil, ".csv") })

	d := NewDiscovererWithFS(newFS(), "")
	assert.Equal(t, pgcsv.DefaultSuffix, d.suffix)
}
