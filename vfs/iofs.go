package vfs

import (
	"fmt"
	"io"
	"io/fs"
)

// FS adapts an io/fs.FS (embed.FS, fstest.MapFS, os.DirFS...).
type FS struct {
	fsys fs.FS
}

// FromFS wraps fsys.
func FromFS(fsys fs.FS) *FS {
	return &FS{fsys: fsys}
}

// Open opens p in the wrapped filesystem.
func (f *FS) Open(p string) (io.ReadCloser, error) {
	clean, err := Clean(p)
	if err != nil {
		return nil, err
	}
	file, err := f.fsys.Open(clean)
	if err != nil {
		return nil, fmt.Errorf("vfs: open %s: %w", p, err)
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("vfs: stat %s: %w", p, err)
	}
	if info.IsDir() {
		file.Close()
		return nil, fmt.Errorf("vfs: open %s: is a directory: %w", p, ErrNotExist)
	}
	return &sizedFile{File: file, size: info.Size()}, nil
}

// Exists reports whether p is a regular file.
func (f *FS) Exists(p string) bool {
	clean, err := Clean(p)
	if err != nil {
		return false
	}
	info, err := fs.Stat(f.fsys, clean)
	return err == nil && info.Mode().IsRegular()
}

type sizedFile struct {
	fs.File
	size int64
}

func (f *sizedFile) Size() int64 { return f.size }
