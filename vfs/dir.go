package vfs

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/maskerad/stackmem/internal/mmfile"
)

// Dir serves files below a root directory. Files are memory-mapped read-only
// for the lifetime of the returned reader.
type Dir struct {
	root string
}

// NewDir returns a filesystem rooted at root.
func NewDir(root string) *Dir {
	return &Dir{root: root}
}

// Root returns the directory the filesystem serves.
func (d *Dir) Root() string { return d.root }

// Open maps the file at p.
func (d *Dir) Open(p string) (io.ReadCloser, error) {
	full, err := d.resolve(p)
	if err != nil {
		return nil, err
	}
	data, unmap, err := mmfile.Map(full)
	if err != nil {
		return nil, fmt.Errorf("vfs: open %s: %w", p, err)
	}
	return &mappedFile{Reader: bytes.NewReader(data), unmap: unmap}, nil
}

// Exists reports whether p is a regular file below the root.
func (d *Dir) Exists(p string) bool {
	full, err := d.resolve(p)
	if err != nil {
		return false
	}
	info, err := os.Stat(full)
	return err == nil && info.Mode().IsRegular()
}

func (d *Dir) resolve(p string) (string, error) {
	clean, err := Clean(p)
	if err != nil {
		return "", err
	}
	return filepath.Join(d.root, filepath.FromSlash(clean)), nil
}

type mappedFile struct {
	*bytes.Reader
	unmap func() error
}

func (f *mappedFile) Close() error {
	if f.unmap == nil {
		return nil
	}
	err := f.unmap()
	f.unmap = nil
	f.Reader = bytes.NewReader(nil)
	return err
}
