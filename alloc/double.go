package alloc

import "errors"

// DoubleBuffered is a pair of equally sized regions where one is active for
// allocation and the other holds the previous frame's data.
//
//	db.Reset()       // start of frame: discard the frame before last
//	h, _ := db.Alloc(...)
//	...
//	db.SwapBuffers() // end of frame: this frame becomes "last frame"
type DoubleBuffered struct {
	buffers [2]*Region
	active  int
}

// NewDoubleBuffered creates two regions of capacity bytes each.
func NewDoubleBuffered(capacity int) (*DoubleBuffered, error) {
	front, err := NewRegion(capacity)
	if err != nil {
		return nil, err
	}
	back, err := NewRegion(capacity)
	if err != nil {
		_ = front.Close()
		return nil, err
	}
	return &DoubleBuffered{buffers: [2]*Region{front, back}}, nil
}

// SwapBuffers flips the active and inactive regions. No data is copied.
func (d *DoubleBuffered) SwapBuffers() {
	d.active ^= 1
}

// Active returns the region allocations currently go to.
func (d *DoubleBuffered) Active() *Region { return d.buffers[d.active] }

// Inactive returns the other region, typically last frame's data.
func (d *DoubleBuffered) Inactive() *Region { return d.buffers[d.active^1] }

// Alloc allocates from the active region.
func (d *DoubleBuffered) Alloc(size, align int, build BuildFunc) (Handle, error) {
	return d.Active().Alloc(size, align, build)
}

// AllocUnchecked allocates from the active region without a capacity check.
func (d *DoubleBuffered) AllocUnchecked(size, align int, build func(buf []byte)) Handle {
	return d.Active().AllocUnchecked(size, align, build)
}

// Bytes resolves a handle from either buffer.
func (d *DoubleBuffered) Bytes(h Handle) ([]byte, error) {
	for _, r := range d.buffers {
		if r.Owns(h) {
			return r.Bytes(h)
		}
	}
	return nil, ErrForeignHandle
}

// Marker returns the active region's marker.
func (d *DoubleBuffered) Marker() Marker { return d.Active().Marker() }

// ResetToMarker rewinds the active region.
func (d *DoubleBuffered) ResetToMarker(m Marker) error { return d.Active().ResetToMarker(m) }

// Reset rewinds the active region to zero.
func (d *DoubleBuffered) Reset() { d.Active().Reset() }

// Capacity returns the capacity of one buffer.
func (d *DoubleBuffered) Capacity() int { return d.Active().Capacity() }

// Used returns the active region's cursor.
func (d *DoubleBuffered) Used() int { return d.Active().Used() }

// Close releases both regions.
func (d *DoubleBuffered) Close() error {
	return errors.Join(d.buffers[0].Close(), d.buffers[1].Close())
}

var _ Allocator = (*DoubleBuffered)(nil)
