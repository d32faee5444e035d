// Package alloc provides linear (stack) allocators backed by pre-reserved
// memory regions.
//
// # Overview
//
// A Region is a fixed-capacity block of bytes with a bump-pointer cursor.
// Allocation advances the cursor; the only way to give memory back is to
// rewind the cursor to a Marker taken earlier, or to reset it to zero.
// There is no per-object free.
//
//	r, err := alloc.NewRegion(64 << 10)
//	if err != nil {
//	    return err
//	}
//	defer r.Close()
//
//	start := r.Marker()
//	h, err := r.Alloc(256, 8, func(buf []byte) error {
//	    copy(buf, payload)
//	    return nil
//	})
//	...
//	r.ResetToMarker(start) // h is now stale
//
// # Handles
//
// Alloc returns a Handle rather than a raw slice. A Handle records the
// region, offset, size and generation of the allocation. Region.Bytes checks
// the handle against the region's live allocation log, so using a handle
// after the memory was rewound fails with ErrStaleHandle instead of reading
// whatever was written there later.
//
// Allocate places a pointer-free Go value directly in a region and returns a
// typed Ref:
//
//	ref, err := alloc.Allocate(r, func() Vertex { return Vertex{X: 1} })
//	v, err := ref.Get(r)
//
// Types that contain Go pointers (strings, slices, maps, pointers,
// interfaces) are rejected with ErrPointerType, since the garbage collector
// does not scan region memory.
//
// # Allocators
//
//   - Region: a single linear allocator.
//   - DoubleBuffered: two regions of equal size swapped each frame, so last
//     frame's data stays readable while this frame's is written.
//   - Stack: a main region plus a copy region (decoded data and staging).
//   - Pair: the double-ended allocator. A global Stack for resources that live
//     across levels and a level Stack discarded on every level transition.
//
// # Capacity
//
// Capacity exhaustion is the only expected runtime failure. It is reported
// as *OutOfMemoryError (errors.Is(err, ErrOutOfMemory)) with the requested and
// remaining byte counts, and the region is left untouched.
//
// # Thread Safety
//
// Allocators are not thread-safe. Callers must synchronize access
// externally. Bytes of live allocations may be read from other goroutines as
// long as no reset happens concurrently.
package alloc
