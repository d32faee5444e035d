// Package manager loads resources into the double-ended allocator and keeps
// track of where they live.
//
// Global resources go to the global stack and stay loaded until Clear.
// Level resources go to the level stack and are discarded on every level
// transition. Which side a resource lands on is decided by the caller: the
// manager never infers it from the resource type.
//
// A Manager is not safe for concurrent use.
package manager

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"

	"github.com/maskerad/stackmem/alloc"
	"github.com/maskerad/stackmem/internal/logger"
	"github.com/maskerad/stackmem/level"
	"github.com/maskerad/stackmem/registry"
	"github.com/maskerad/stackmem/resource"
	"github.com/maskerad/stackmem/vfs"
)

// Scope selects the side of the allocator a resource is loaded into.
type Scope uint8

const (
	ScopeGlobal Scope = iota
	ScopeLevel
)

func (s Scope) String() string {
	switch s {
	case ScopeGlobal:
		return "global"
	case ScopeLevel:
		return "level"
	default:
		return fmt.Sprintf("scope(%d)", uint8(s))
	}
}

// Options configures New.
type Options struct {
	Capacities alloc.Capacities

	// Logger receives load and unload events at debug level.
	// Default: logger.L.
	Logger *slog.Logger

	// Decoders overrides the extension table. Default: resource.DefaultDecoders().
	Decoders resource.Decoders
}

// Manager owns the allocator pair and the global and level registries.
type Manager struct {
	fs       vfs.Filesystem
	pair     *alloc.Pair
	global   *registry.Registry
	level    *registry.Registry
	decoders resource.Decoders
	log      *slog.Logger

	levelName string
	closed    bool
}

// New reserves the allocator memory described by opts.Capacities.
func New(fs vfs.Filesystem, opts Options) (*Manager, error) {
	if fs == nil {
		return nil, errors.New("manager: nil filesystem")
	}
	pair, err := alloc.NewPair(opts.Capacities)
	if err != nil {
		return nil, fmt.Errorf("manager: %w", err)
	}
	m := &Manager{
		fs:       fs,
		pair:     pair,
		global:   registry.New(),
		level:    registry.New(),
		decoders: opts.Decoders,
		log:      opts.Logger,
	}
	if m.decoders == nil {
		m.decoders = resource.DefaultDecoders()
	}
	if m.log == nil {
		m.log = logger.L
	}
	m.log.Debug("resource manager created",
		"global", opts.Capacities.Global,
		"global_copy", opts.Capacities.GlobalCopy,
		"level", opts.Capacities.Level,
		"level_copy", opts.Capacities.LevelCopy)
	return m, nil
}

// LoadGlobalResources loads every path into the global stack, then records
// the boundary between global and level memory.
//
// The first failure aborts the call; resources loaded before it stay loaded
// and the boundary is not recorded.
func (m *Manager) LoadGlobalResources(paths []string) error {
	if m.closed {
		return ErrClosed
	}
	for _, p := range paths {
		if _, err := m.Load(p, ScopeGlobal); err != nil {
			return err
		}
	}
	b := m.pair.MarkBoundary()
	m.log.Debug("global resources loaded", "count", m.global.Len(), "boundary", b.Offset())
	return nil
}

// LoadLevelResources unloads the current level and loads every resource
// desc needs into the level stack. Resources already loaded globally are
// shared, not reloaded.
//
// The first failure aborts the call; resources loaded before it stay loaded.
// Call UnloadLevelResources to roll back instead.
func (m *Manager) LoadLevelResources(desc *level.Description) error {
	if m.closed {
		return ErrClosed
	}
	m.UnloadLevelResources()
	m.levelName = desc.Name

	for _, p := range desc.Needed() {
		if m.global.Contains(p) {
			m.log.Debug("resource shared with global scope", "path", p, "level", desc.Name)
			continue
		}
		if _, err := m.Load(p, ScopeLevel); err != nil {
			return err
		}
	}
	m.log.Debug("level resources loaded", "level", desc.Name, "count", m.level.Len())
	return nil
}

// LoadLevel reads the level description at path and loads its resources.
func (m *Manager) LoadLevel(path string) (*level.Description, error) {
	desc, err := level.Load(m.fs, path)
	if err != nil {
		return nil, err
	}
	return desc, m.LoadLevelResources(desc)
}

// Load loads a single resource into scope and registers it. Loading a path
// that is already registered in scope (or globally, for ScopeLevel) returns
// the existing resource.
func (m *Manager) Load(path string, scope Scope) (*resource.Resource, error) {
	if m.closed {
		return nil, ErrClosed
	}
	if scope != ScopeGlobal && scope != ScopeLevel {
		return nil, fmt.Errorf("manager: unknown scope %d", scope)
	}

	clean, err := vfs.Clean(path)
	if err != nil {
		return nil, &LoadError{Path: path, Scope: scope, Op: OpOpen, Err: err}
	}
	key, err := registry.Key(clean)
	if err != nil {
		return nil, &LoadError{Path: path, Scope: scope, Op: OpOpen, Err: err}
	}
	if res, ok := m.global.Get(key); ok {
		return res, nil
	}
	reg, stack := m.side(scope)
	if res, ok := reg.Get(key); ok {
		return res, nil
	}

	res, err := m.decode(clean, key, scope, stack)
	if err != nil {
		m.log.Debug("resource load failed", "path", key, "scope", scope.String(), "error", err)
		return nil, err
	}
	if _, err := reg.Insert(key, res); err != nil {
		return nil, &LoadError{Path: key, Scope: scope, Op: OpDecode, Err: err}
	}
	m.log.Debug("resource loaded",
		"path", key,
		"scope", scope.String(),
		"kind", res.Kind.String(),
		"bytes", res.Size(),
		"offset", res.Handle.Offset())
	return res, nil
}

// decode opens name, stages its bytes in the copy region when possible and
// runs the decoder against the main region. On failure both regions are
// left as they were. name is the cleaned caller path; key is its registry
// form, which may differ in Unicode normalization.
func (m *Manager) decode(name, key string, scope Scope, stack *alloc.Stack) (*resource.Resource, error) {
	fail := func(op string, err error) (*resource.Resource, error) {
		return nil, &LoadError{Path: key, Scope: scope, Op: op, Err: err}
	}

	dec, ok := m.decoders.Lookup(name)
	if !ok {
		return fail(OpDecode, resource.ErrUnsupportedExtension)
	}
	if fd, ok := dec.(resource.FSDecoder); ok {
		dec = fd.WithFS(vfs.Sub(m.fs, path.Dir(name)))
	}

	rc, err := m.fs.Open(name)
	if err != nil {
		return fail(OpOpen, err)
	}
	defer rc.Close()

	staging := stack.Copy()
	mark := staging.Marker()
	defer func() {
		// Staged bytes are dead once the decoder returns.
		_ = staging.ResetToMarker(mark)
	}()

	var r io.Reader = rc
	if sz, ok := rc.(vfs.Sized); ok && sz.Size() <= int64(staging.Remaining()) {
		h, err := staging.Alloc(int(sz.Size()), 1, func(dst []byte) error {
			_, err := io.ReadFull(rc, dst)
			return err
		})
		if err != nil {
			return fail(OpStage, err)
		}
		raw, err := staging.Bytes(h)
		if err != nil {
			return fail(OpStage, err)
		}
		r = bytes.NewReader(raw)
		m.log.Debug("resource staged", "path", key, "scope", scope.String(), "bytes", len(raw))
	}

	main := stack.Main()
	before := main.Marker()
	res, err := dec.Decode(r, resource.RegionPlacer(main))
	if err != nil {
		_ = main.ResetToMarker(before)
		return fail(OpDecode, err)
	}
	res.Path = key
	return res, nil
}

// UnloadLevelResources forgets every level resource and resets the level
// stack. Global resources are untouched.
func (m *Manager) UnloadLevelResources() {
	if m.closed {
		return
	}
	n := m.level.Len()
	m.level.Clear()
	m.pair.UnloadLevel()
	if m.levelName != "" || n > 0 {
		m.log.Debug("level resources unloaded", "level", m.levelName, "count", n)
	}
	m.levelName = ""
}

// Clear forgets every resource and resets all four regions.
func (m *Manager) Clear() {
	if m.closed {
		return
	}
	m.global.Clear()
	m.level.Clear()
	m.pair.UnloadAll()
	m.levelName = ""
	m.log.Debug("all resources unloaded")
}

// Get returns the resource registered under path in either scope.
func (m *Manager) Get(path string) (*resource.Resource, bool) {
	if res, ok := m.global.Get(path); ok {
		return res, true
	}
	return m.level.Get(path)
}

// Bytes returns the payload of res. The slice aliases allocator memory and
// is only valid until the resource is unloaded.
func (m *Manager) Bytes(res *resource.Resource) ([]byte, error) {
	if m.closed {
		return nil, ErrClosed
	}
	b, err := m.pair.Bytes(res.Handle)
	if err != nil {
		return nil, fmt.Errorf("manager: %s: %w", res.Path, err)
	}
	return b, nil
}

// GlobalResources returns the global registry. Callers must not modify it.
func (m *Manager) GlobalResources() *registry.Registry { return m.global }

// LevelResources returns the level registry. Callers must not modify it.
func (m *Manager) LevelResources() *registry.Registry { return m.level }

// LevelName returns the name of the loaded level, if any.
func (m *Manager) LevelName() string { return m.levelName }

// Boundary returns the global marker recorded after global loading.
func (m *Manager) Boundary() (alloc.Marker, bool) { return m.pair.Boundary() }

// BoundaryCopy returns the global copy region marker recorded with Boundary.
func (m *Manager) BoundaryCopy() (alloc.Marker, bool) { return m.pair.BoundaryCopy() }

// Close releases all allocator memory. The manager is unusable afterwards.
func (m *Manager) Close() error {
	if m.closed {
		return nil
	}
	m.closed = true
	m.global.Clear()
	m.level.Clear()
	return m.pair.Close()
}

func (m *Manager) side(scope Scope) (*registry.Registry, *alloc.Stack) {
	if scope == ScopeGlobal {
		return m.global, m.pair.Global()
	}
	return m.level, m.pair.Level()
}
