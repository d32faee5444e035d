package vfs

import (
	"io"
	"io/fs"
	"path"
	"time"
)

// Sub returns an io/fs view of f rooted at dir. Decoders use it to resolve
// files referenced relative to the resource they are decoding, such as the
// external buffers of a glTF document.
func Sub(f Filesystem, dir string) fs.FS {
	return &subFS{f: f, dir: dir}
}

type subFS struct {
	f   Filesystem
	dir string
}

func (s *subFS) Open(name string) (fs.File, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrInvalid}
	}
	rc, err := s.f.Open(path.Join(s.dir, name))
	if err != nil {
		return nil, err
	}
	var size int64
	if sz, ok := rc.(Sized); ok {
		size = sz.Size()
	}
	return &subFile{ReadCloser: rc, info: fileInfo{name: path.Base(name), size: size}}, nil
}

// ReadFile implements fs.ReadFileFS.
func (s *subFS) ReadFile(name string) ([]byte, error) {
	file, err := s.Open(name)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return io.ReadAll(file)
}

type subFile struct {
	io.ReadCloser
	info fileInfo
}

func (f *subFile) Stat() (fs.FileInfo, error) { return f.info, nil }

type fileInfo struct {
	name string
	size int64
}

func (fi fileInfo) Name() string       { return fi.name }
func (fi fileInfo) Size() int64        { return fi.size }
func (fi fileInfo) Mode() fs.FileMode  { return 0o444 }
func (fi fileInfo) ModTime() time.Time { return time.Time{} }
func (fi fileInfo) IsDir() bool        { return false }
func (fi fileInfo) Sys() any           { return nil }
