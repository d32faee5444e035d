package alloc

import (
	"fmt"
	"sort"
	"sync/atomic"
	"unsafe"

	"github.com/maskerad/stackmem/internal/buf"
	"github.com/maskerad/stackmem/internal/mmfile"
)

// regionIDs hands out region identities. Zero is reserved for the zero Marker.
var regionIDs atomic.Uint64

// Region is a fixed-capacity linear allocator.
//
// Key characteristics:
//   - O(1) allocation: pure bump pointer plus one append to the live log
//   - Strictly increasing offsets in program order
//   - No per-allocation free: memory is reclaimed by Reset or ResetToMarker
//   - Backing storage is an anonymous mapping outside the Go heap
type Region struct {
	id       uint64
	data     []byte
	base     uintptr
	capacity int

	// cursor is the offset where the next allocation starts (before padding).
	cursor int

	// peak is the highest cursor ever reached. Not reset.
	peak int

	// seq counts allocations over the region's lifetime; each handle carries
	// the value it was issued with.
	seq uint64

	// live holds the allocations below the cursor, ordered by seq (and
	// therefore by offset).
	live []span

	// ver counts state changes (allocations and rewinds). rewinds keeps the
	// rewinds that can still invalidate a marker: ver and target both
	// strictly increase, so the first entry newer than a marker carries the
	// lowest target it was exposed to.
	ver     uint64
	rewinds []rewind

	release  func() error
	closed   bool
	building bool
}

type span struct {
	off  int
	size int
	seq  uint64
}

type rewind struct {
	ver uint64
	to  uint64 // seq of the topmost allocation kept
}

// NewRegion reserves capacity bytes of backing storage.
// A failure here means the memory could not be reserved at all; callers
// usually treat it as fatal.
func NewRegion(capacity int) (*Region, error) {
	if capacity < 0 {
		return nil, fmt.Errorf("%w: %d", ErrBadCapacity, capacity)
	}
	data, release, err := mmfile.Anonymous(capacity)
	if err != nil {
		return nil, err
	}
	r := &Region{
		id:       regionIDs.Add(1),
		data:     data,
		capacity: capacity,
		release:  release,
	}
	if len(data) > 0 {
		r.base = uintptr(unsafe.Pointer(unsafe.SliceData(data)))
	}
	return r, nil
}

// Alloc reserves size bytes whose first byte is aligned to align, calls
// build with the reserved slice and commits the allocation.
//
// The slice contents are unspecified; build is expected to overwrite them.
// build may be nil to reserve without writing. If the allocation does not
// fit, build is not called, the region is unchanged and the error is an
// *OutOfMemoryError. If build fails, nothing is committed and its error is
// returned as is.
func (r *Region) Alloc(size, align int, build BuildFunc) (Handle, error) {
	off, err := r.reserve(size, align)
	if err != nil {
		return Handle{}, err
	}
	if build != nil {
		if err := r.run(r.data[off:off+size:off+size], build); err != nil {
			return Handle{}, err
		}
	}
	return r.commit(off, size), nil
}

// AllocUnchecked is Alloc without the capacity and argument checks.
//
// The caller must already know the allocation fits (for example from a
// prior sizing pass) and that align is a power of two. Violating that
// precondition panics on the slice bounds.
func (r *Region) AllocUnchecked(size, align int, build func(buf []byte)) Handle {
	off := r.cursor + buf.Padding(r.base+uintptr(r.cursor), uintptr(align))
	payload := r.data[off : off+size : off+size]
	if build != nil {
		_ = r.run(payload, func(b []byte) error {
			build(b)
			return nil
		})
	}
	return r.commit(off, size)
}

// run calls build with the region marked busy, so a callback cannot allocate
// from or rewind the region underneath its own reservation.
func (r *Region) run(payload []byte, build BuildFunc) error {
	r.building = true
	defer func() { r.building = false }()
	return build(payload)
}

func (r *Region) reserve(size, align int) (int, error) {
	switch {
	case r.closed:
		return 0, ErrClosed
	case r.building:
		return 0, ErrBusy
	case size < 0:
		return 0, fmt.Errorf("%w: %d", ErrBadSize, size)
	case !buf.IsPow2(align):
		return 0, fmt.Errorf("%w: %d", ErrBadAlignment, align)
	}

	pad := buf.Padding(r.base+uintptr(r.cursor), uintptr(align))
	remaining := r.capacity - r.cursor
	need, ok := buf.AddOverflowSafe(pad, size)
	if !ok || need > remaining {
		if !ok {
			need = size
		}
		return 0, &OutOfMemoryError{Requested: need, Remaining: remaining}
	}
	return r.cursor + pad, nil
}

func (r *Region) commit(off, size int) Handle {
	r.seq++
	r.ver++
	r.cursor = off + size
	if r.cursor > r.peak {
		r.peak = r.cursor
	}
	r.live = append(r.live, span{off: off, size: size, seq: r.seq})
	return Handle{region: r.id, off: off, size: size, gen: r.seq}
}

// Bytes returns the payload of a live allocation. The slice aliases region
// memory and is only valid until the allocation is rewound.
func (r *Region) Bytes(h Handle) ([]byte, error) {
	if err := r.check(h); err != nil {
		return nil, err
	}
	return r.data[h.off : h.off+h.size : h.off+h.size], nil
}

// Valid reports whether h still refers to a live allocation of r.
func (r *Region) Valid(h Handle) bool {
	return r.check(h) == nil
}

// Owns reports whether h was issued by r, live or not.
func (r *Region) Owns(h Handle) bool {
	return h.region == r.id
}

func (r *Region) check(h Handle) error {
	if h.region != r.id || h.gen == 0 {
		return ErrForeignHandle
	}
	if r.closed {
		return ErrClosed
	}
	i := sort.Search(len(r.live), func(i int) bool { return r.live[i].seq >= h.gen })
	if i == len(r.live) || r.live[i].seq != h.gen {
		return fmt.Errorf("%w: %s", ErrStaleHandle, h)
	}
	return nil
}

// Marker returns the current cursor position.
func (r *Region) Marker() Marker {
	return Marker{region: r.id, off: r.cursor, seq: r.top(), ver: r.ver}
}

func (r *Region) top() uint64 {
	if len(r.live) == 0 {
		return 0
	}
	return r.live[len(r.live)-1].seq
}

// noteRewind records a rewind that kept allocations up to seq to.
func (r *Region) noteRewind(to uint64) {
	r.ver++
	for n := len(r.rewinds); n > 0 && r.rewinds[n-1].to >= to; n-- {
		r.rewinds = r.rewinds[:n-1]
	}
	r.rewinds = append(r.rewinds, rewind{ver: r.ver, to: to})
}

// outdated reports whether a rewind after m was taken discarded
// allocations m covers.
func (r *Region) outdated(m Marker) bool {
	i := sort.Search(len(r.rewinds), func(i int) bool { return r.rewinds[i].ver > m.ver })
	return i < len(r.rewinds) && r.rewinds[i].to < m.seq
}

// Reset rewinds the cursor to zero. Every handle issued so far becomes stale.
// Calling Reset from inside a build callback panics.
func (r *Region) Reset() {
	if r.building {
		panic("alloc: Reset called from inside a build callback")
	}
	r.cursor = 0
	r.live = r.live[:0]
	r.noteRewind(0)
}

// ResetToMarker rewinds the cursor to m. Allocations made after m was taken
// become stale; earlier ones stay valid.
//
// m must come from this region (or be the zero Marker), must not lie beyond
// the current cursor and must not have been undercut by an earlier rewind:
// after Reset, or after rewinding to an older marker, markers taken in
// between are invalid even if the cursor has since grown past them.
func (r *Region) ResetToMarker(m Marker) error {
	switch {
	case r.closed:
		return ErrClosed
	case r.building:
		return ErrBusy
	case m.region == 0 && m.off != 0,
		m.region != 0 && m.region != r.id:
		return fmt.Errorf("%w: %s does not belong to this region", ErrInvalidMarker, m)
	case m.off > r.cursor:
		return fmt.Errorf("%w: %s is beyond cursor %d", ErrInvalidMarker, m, r.cursor)
	case m.region != 0 && r.outdated(m):
		return fmt.Errorf("%w: %s was discarded by an earlier rewind", ErrInvalidMarker, m)
	}

	if m.region == 0 {
		r.Reset()
		return nil
	}
	keep := sort.Search(len(r.live), func(i int) bool { return r.live[i].seq > m.seq })
	r.live = r.live[:keep]
	r.cursor = m.off
	r.noteRewind(m.seq)
	return nil
}

// Capacity returns the size of the backing storage in bytes.
func (r *Region) Capacity() int { return r.capacity }

// Used returns the current cursor, padding included.
func (r *Region) Used() int { return r.cursor }

// Remaining returns the bytes left above the cursor.
func (r *Region) Remaining() int { return r.capacity - r.cursor }

// Peak returns the high-water mark of the cursor. Resets do not lower it.
func (r *Region) Peak() int { return r.peak }

// Live returns the number of live allocations.
func (r *Region) Live() int { return len(r.live) }

// Close releases the backing storage. All handles become invalid and further
// allocations fail with ErrClosed. Close is idempotent.
func (r *Region) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	r.data = nil
	r.live = nil
	r.rewinds = nil
	r.cursor = 0
	if r.release == nil {
		return nil
	}
	return r.release()
}

// Compile-time interface check
var _ Allocator = (*Region)(nil)
