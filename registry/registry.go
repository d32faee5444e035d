// Package registry maps resource paths to loaded resources.
//
// A Registry does not own the resources it indexes: their payloads live in
// allocator regions, and clearing a registry only forgets the entries.
package registry

import (
	"slices"

	"golang.org/x/text/unicode/norm"

	"github.com/maskerad/stackmem/resource"
	"github.com/maskerad/stackmem/vfs"
)

// Registry is a path-keyed index of resources. Keys are normalized with Key,
// so "ui\\font.png", "/ui/font.png" and "ui/./font.png" name the same entry.
// The zero value is ready to use.
type Registry struct {
	entries map[string]*resource.Resource
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{entries: make(map[string]*resource.Resource)}
}

// Key returns the normalized form of path: cleaned to slash-separated
// io/fs form and composed to Unicode NFC.
func Key(path string) (string, error) {
	p, err := vfs.Clean(path)
	if err != nil {
		return "", err
	}
	return norm.NFC.String(p), nil
}

// Insert records res under path and returns the resource previously stored
// there, or nil.
func (r *Registry) Insert(path string, res *resource.Resource) (*resource.Resource, error) {
	key, err := Key(path)
	if err != nil {
		return nil, err
	}
	if r.entries == nil {
		r.entries = make(map[string]*resource.Resource)
	}
	prev := r.entries[key]
	r.entries[key] = res
	return prev, nil
}

// Get returns the resource stored under path.
func (r *Registry) Get(path string) (*resource.Resource, bool) {
	key, err := Key(path)
	if err != nil {
		return nil, false
	}
	res, ok := r.entries[key]
	return res, ok
}

// Contains reports whether path has an entry.
func (r *Registry) Contains(path string) bool {
	_, ok := r.Get(path)
	return ok
}

// Remove deletes the entry for path and returns it.
func (r *Registry) Remove(path string) (*resource.Resource, bool) {
	key, err := Key(path)
	if err != nil {
		return nil, false
	}
	res, ok := r.entries[key]
	delete(r.entries, key)
	return res, ok
}

// Clear removes every entry.
func (r *Registry) Clear() {
	clear(r.entries)
}

// Len returns the number of entries.
func (r *Registry) Len() int { return len(r.entries) }

// IsEmpty reports whether the registry has no entries.
func (r *Registry) IsEmpty() bool { return len(r.entries) == 0 }

// Paths returns the normalized keys in sorted order.
func (r *Registry) Paths() []string {
	paths := make([]string, 0, len(r.entries))
	for p := range r.entries {
		paths = append(paths, p)
	}
	slices.Sort(paths)
	return paths
}

// Size returns the total payload bytes of all entries.
func (r *Registry) Size() int {
	total := 0
	for _, res := range r.entries {
		total += res.Size()
	}
	return total
}
