package filesystem

import (
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// memoryFileInfo implements fs.FileInfo for in-memory files
type memoryFileInfo struct {
	name    string
	size    int64
	mode    fs.FileMode
	modTime time.Time
	isDir   bool
}

func (f *memoryFileInfo) Name() string       { return f.name }
func (f *memoryFileInfo) Size() int64        { return f.size }
func (f *memoryFileInfo) Mode() fs.FileMode  { return f.mode }
func (f *memoryFileInfo) ModTime() time.Time { return f.modTime }
func (f *memoryFileInfo) IsDir() bool        { return f.isDir }
func (f *memoryFileInfo) Sys() interface{}   { return nil }

type memoryFile struct {
	content []byte
	info    *memoryFileInfo
}

// MemoryFileSystem implements FileSystemProvider for in-memory testing
type MemoryFileSystem struct {
	mu    sync.RWMutex
	files map[string]*memoryFile // map of absolute path -> file or directory
	root  string                 // root directory path
}

// NewMemoryFileSystem creates a new in-memory filesystem.
// The root path is normalized to use forward slashes for virtual filesystem consistency.
func NewMemoryFileSystem(root string) *MemoryFileSystem {
	root = path.Clean(filepath.ToSlash(root))

	mfs := &MemoryFileSystem{
		files: make(map[string]*memoryFile),
		root:  root,
	}
	mfs.files[root] = newMemoryDir(root)
	return mfs
}

func newMemoryDir(p string) *memoryFile {
	return &memoryFile{
		info: &memoryFileInfo{
			name:    path.Base(p),
			mode:    0755 | fs.ModeDir,
			modTime: time.Now(),
			isDir:   true,
		},
	}
}

// Root returns the normalized root directory.
func (mfs *MemoryFileSystem) Root() string {
	return mfs.root
}

// AddFile adds a file to the in-memory filesystem. Relative paths are
// resolved against the root.
func (mfs *MemoryFileSystem) AddFile(filePath string, content string) {
	mfs.mu.Lock()
	defer mfs.mu.Unlock()

	absPath := mfs.resolve(filePath)
	data := []byte(content)
	mfs.files[absPath] = &memoryFile{
		content: data,
		info: &memoryFileInfo{
			name:    path.Base(absPath),
			size:    int64(len(data)),
			mode:    0644,
			modTime: time.Now(),
		},
	}
	mfs.ensureDirectoriesExist(absPath)
}

// AddDir adds an empty directory.
func (mfs *MemoryFileSystem) AddDir(dirPath string) {
	mfs.mu.Lock()
	defer mfs.mu.Unlock()

	absPath := mfs.resolve(dirPath)
	if _, ok := mfs.files[absPath]; !ok {
		mfs.files[absPath] = newMemoryDir(absPath)
	}
	mfs.ensureDirectoriesExist(absPath)
}

// ensureDirectoriesExist creates directory entries for all parent directories
func (mfs *MemoryFileSystem) ensureDirectoriesExist(p string) {
	dir := path.Dir(p)
	if dir == p || dir == "." {
		return
	}
	if _, exists := mfs.files[dir]; exists {
		return
	}
	mfs.files[dir] = newMemoryDir(dir)
	mfs.ensureDirectoriesExist(dir)
}

func (mfs *MemoryFileSystem) resolve(p string) string {
	p = filepath.ToSlash(p)
	if p == "" || p == "." {
		return mfs.root
	}
	if !path.IsAbs(p) {
		p = path.Join(mfs.root, p)
	}
	return path.Clean(p)
}

func (mfs *MemoryFileSystem) lookup(op, p string) (*memoryFile, error) {
	file, ok := mfs.files[mfs.resolve(p)]
	if !ok {
		return nil, &fs.PathError{Op: op, Path: p, Err: fs.ErrNotExist}
	}
	return file, nil
}

// Open implements FileSystemProvider.Open
func (mfs *MemoryFileSystem) Open(filePath string) (io.ReadCloser, error) {
	mfs.mu.RLock()
	defer mfs.mu.RUnlock()

	file, err := mfs.lookup("open", filePath)
	if err != nil {
		return nil, err
	}
	if file.info.isDir {
		return nil, fmt.Errorf("path is a directory, not a file: %s", filePath)
	}
	return io.NopCloser(bytes.NewReader(file.content)), nil
}

// ReadDir implements FileSystemProvider.ReadDir
func (mfs *MemoryFileSystem) ReadDir(dirPath string) ([]FileInfo, error) {
	mfs.mu.RLock()
	defer mfs.mu.RUnlock()

	dir, err := mfs.lookup("readdir", dirPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}
	if !dir.info.isDir {
		return nil, fmt.Errorf("failed to read directory: %s is not a directory", dirPath)
	}

	base := mfs.resolve(dirPath)
	var result []FileInfo
	for p, f := range mfs.files {
		if p == base || path.Dir(p) != base {
			continue
		}
		result = append(result, f.info)
	}
	sort.Slice(result, func(i, j int) bool {
		return strings.Compare(result[i].Name(), result[j].Name()) < 0
	})
	return result, nil
}

// Stat implements FileSystemProvider.Stat
func (mfs *MemoryFileSystem) Stat(statPath string) (FileInfo, error) {
	mfs.mu.RLock()
	defer mfs.mu.RUnlock()

	file, err := mfs.lookup("stat", statPath)
	if err != nil {
		return nil, err
	}
	return file.info, nil
}

// Join implements FileSystemProvider.Join
func (mfs *MemoryFileSystem) Join(dir, name string) string {
	return path.Join(filepath.ToSlash(dir), name)
}
