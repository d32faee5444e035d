// Package vfs is the filesystem boundary of the resource manager: it opens
// resource files by slash-separated path and answers existence queries.
package vfs

import (
	"errors"
	"io"
	"io/fs"
	"path"
	"strings"
)

var (
	// ErrNotExist is returned (wrapped) when a path does not name a file.
	ErrNotExist = fs.ErrNotExist

	// ErrInvalidPath indicates a path that escapes the filesystem root.
	ErrInvalidPath = errors.New("vfs: invalid path")
)

// Filesystem opens resource files.
type Filesystem interface {
	// Open returns a reader over the file at path. Readers returned by the
	// implementations in this package also implement Sized.
	Open(path string) (io.ReadCloser, error)

	// Exists reports whether path names a regular file.
	Exists(path string) bool
}

// Sized is implemented by readers that know their total length up front.
type Sized interface {
	Size() int64
}

// Clean normalizes a resource path to the io/fs form: slash separated,
// no leading slash, no "." or ".." elements.
func Clean(p string) (string, error) {
	p = strings.ReplaceAll(p, "\\", "/")
	p = strings.TrimPrefix(path.Clean("/"+p), "/")
	if p == "" {
		p = "."
	}
	if !fs.ValidPath(p) || p == "." {
		return "", &fs.PathError{Op: "open", Path: p, Err: ErrInvalidPath}
	}
	return p, nil
}
