package alloc

import (
	"errors"
	"fmt"
)

// Pair is the double-ended allocator: one Stack for global resources that
// survive level transitions and one for the current level's resources.
//
// Layout: the two sides are separate regions, so unloading a level is a full
// reset of the level side and never touches global memory. The boundary
// marker recorded by MarkBoundary therefore only describes where global
// loading ended; it is not needed to unload a level.
//
// Lifecycle:
//
//	p, _ := alloc.NewPair(caps)
//	// load global resources with AllocGlobal...
//	p.MarkBoundary()
//	// per level: AllocLevel..., then UnloadLevel()
//	p.UnloadAll() // shutdown
type Pair struct {
	global *Stack
	level  *Stack

	boundary     Marker
	boundaryCopy Marker
	marked       bool
}

// NewPair creates the global and level stacks.
func NewPair(c Capacities) (*Pair, error) {
	global, err := NewStack(c.Global, c.GlobalCopy)
	if err != nil {
		return nil, fmt.Errorf("global stack: %w", err)
	}
	level, err := NewStack(c.Level, c.LevelCopy)
	if err != nil {
		_ = global.Close()
		return nil, fmt.Errorf("level stack: %w", err)
	}
	return &Pair{global: global, level: level}, nil
}

// Global returns the global stack.
func (p *Pair) Global() *Stack { return p.global }

// Level returns the level stack.
func (p *Pair) Level() *Stack { return p.level }

// AllocGlobal allocates from the global main region.
func (p *Pair) AllocGlobal(size, align int, build BuildFunc) (Handle, error) {
	return p.global.main.Alloc(size, align, build)
}

// AllocLevel allocates from the level main region.
func (p *Pair) AllocLevel(size, align int, build BuildFunc) (Handle, error) {
	return p.level.main.Alloc(size, align, build)
}

// MarkBoundary records the global main (and copy) markers as the end of
// global loading and returns the main one. Call it once, after every
// cross-level resource is loaded.
func (p *Pair) MarkBoundary() Marker {
	p.boundary = p.global.main.Marker()
	p.boundaryCopy = p.global.copy.Marker()
	p.marked = true
	return p.boundary
}

// Boundary returns the recorded boundary and whether one was recorded.
func (p *Pair) Boundary() (Marker, bool) {
	return p.boundary, p.marked
}

// BoundaryCopy returns the global copy region marker recorded with the boundary.
func (p *Pair) BoundaryCopy() (Marker, bool) {
	return p.boundaryCopy, p.marked
}

// UnloadLevel discards every level allocation. Level resources have no
// cross-level dependents, so a full reset is always safe.
func (p *Pair) UnloadLevel() {
	p.level.Reset()
}

// RewindGlobal discards global allocations made after the boundary,
// keeping everything loaded before MarkBoundary.
func (p *Pair) RewindGlobal() error {
	if !p.marked {
		return fmt.Errorf("%w: no boundary recorded", ErrInvalidMarker)
	}
	return errors.Join(
		p.global.main.ResetToMarker(p.boundary),
		p.global.copy.ResetToMarker(p.boundaryCopy),
	)
}

// UnloadAll resets all four regions and forgets the boundary. This is the
// only way to reclaim global memory.
func (p *Pair) UnloadAll() {
	p.global.Reset()
	p.level.Reset()
	p.boundary = Marker{}
	p.boundaryCopy = Marker{}
	p.marked = false
}

// Bytes resolves a handle issued by any of the four regions.
func (p *Pair) Bytes(h Handle) ([]byte, error) {
	for _, r := range []*Region{p.global.main, p.global.copy, p.level.main, p.level.copy} {
		if r.Owns(h) {
			return r.Bytes(h)
		}
	}
	return nil, ErrForeignHandle
}

// Close releases all backing storage.
func (p *Pair) Close() error {
	return errors.Join(p.global.Close(), p.level.Close())
}
