package alloc

import "fmt"

// Marker is a saved cursor position of one region.
//
// The zero Marker denotes the start of any region, so ResetToMarker(Marker{})
// is equivalent to Reset. Any other marker stops being valid once the region
// is rewound below it.
type Marker struct {
	region uint64
	off    int
	seq    uint64 // seq of the topmost live allocation, 0 if none
	ver    uint64 // region version when the marker was taken
}

// Offset returns the byte offset the marker points at.
func (m Marker) Offset() int { return m.off }

func (m Marker) String() string {
	return fmt.Sprintf("marker(%d)", m.off)
}

// Handle identifies one allocation inside a region.
// The zero Handle is never valid.
type Handle struct {
	region uint64
	off    int
	size   int
	gen    uint64
}

// Offset returns the payload offset inside the region.
func (h Handle) Offset() int { return h.off }

// Size returns the payload size in bytes.
func (h Handle) Size() int { return h.size }

// IsZero reports whether h is the zero Handle.
func (h Handle) IsZero() bool { return h.gen == 0 }

func (h Handle) String() string {
	return fmt.Sprintf("handle(off=%d size=%d gen=%d)", h.off, h.size, h.gen)
}

// BuildFunc writes an allocation's payload into buf, which is exactly the
// requested size. Returning an error aborts the allocation.
type BuildFunc func(buf []byte) error

// Allocator is the linear allocation contract shared by Region and
// DoubleBuffered.
type Allocator interface {
	// Alloc reserves size bytes aligned to align and runs build on them.
	Alloc(size, align int, build BuildFunc) (Handle, error)

	// Bytes returns the payload of a live allocation.
	Bytes(h Handle) ([]byte, error)

	// Marker returns the current cursor position.
	Marker() Marker

	// ResetToMarker rewinds the cursor to m.
	ResetToMarker(m Marker) error

	// Reset rewinds the cursor to zero.
	Reset()

	// Capacity returns the size of the backing storage.
	Capacity() int

	// Used returns the number of bytes below the cursor.
	Used() int
}

// Capacities sizes the four regions of a Pair, in bytes.
type Capacities struct {
	Global     int
	GlobalCopy int
	Level      int
	LevelCopy  int
}

// Total returns the sum of all capacities.
func (c Capacities) Total() int {
	return c.Global + c.GlobalCopy + c.Level + c.LevelCopy
}
