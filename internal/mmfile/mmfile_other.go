//go:build !unix

// Package mmfile provides platform-specific memory mappings: anonymous
// mappings used as allocator backing storage and read-only file mappings
// used by the directory filesystem.
package mmfile

import "os"

// Map reads the entire file when mmap is not available.
func Map(path string) ([]byte, func() error, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, func() error { return nil }, err
	}
	return data, func() error { return nil }, nil
}

// Anonymous returns a zeroed heap slice when mmap is not available.
func Anonymous(size int) ([]byte, func() error, error) {
	if size < 0 {
		return nil, nil, errNegativeSize(size)
	}
	return make([]byte, size), func() error { return nil }, nil
}
