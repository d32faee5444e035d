package alloc

import (
	"fmt"
	"reflect"
	"sync"
	"unsafe"
)

// Ref is a typed handle to a value placed in a region by Allocate.
type Ref[T any] struct {
	h Handle
}

// Handle returns the untyped handle.
func (ref Ref[T]) Handle() Handle { return ref.h }

// Get returns a pointer to the value inside r. The pointer aliases region
// memory; it must not be used after the allocation is rewound.
func (ref Ref[T]) Get(r *Region) (*T, error) {
	b, err := r.Bytes(ref.h)
	if err != nil {
		return nil, err
	}
	if len(b) == 0 {
		return new(T), nil
	}
	return (*T)(unsafe.Pointer(unsafe.SliceData(b))), nil
}

// Allocate places the value returned by ctor in r, sized and aligned for T.
// ctor runs only once the space is known to fit; a nil ctor places the zero
// value. T must not contain Go pointers.
func Allocate[T any](r *Region, ctor func() T) (Ref[T], error) {
	size, align, err := layoutOf[T]()
	if err != nil {
		return Ref[T]{}, err
	}
	h, err := r.Alloc(size, align, func(b []byte) error {
		place(b, ctor)
		return nil
	})
	if err != nil {
		return Ref[T]{}, err
	}
	return Ref[T]{h: h}, nil
}

// AllocateUnchecked is Allocate without the capacity check. It panics if T
// contains Go pointers or if the value does not fit.
func AllocateUnchecked[T any](r *Region, ctor func() T) Ref[T] {
	size, align, err := layoutOf[T]()
	if err != nil {
		panic(err)
	}
	h := r.AllocUnchecked(size, align, func(b []byte) {
		place(b, ctor)
	})
	return Ref[T]{h: h}
}

func place[T any](b []byte, ctor func() T) {
	var v T
	if ctor != nil {
		v = ctor()
	}
	if len(b) == 0 {
		return
	}
	*(*T)(unsafe.Pointer(unsafe.SliceData(b))) = v
}

func layoutOf[T any]() (size, align int, err error) {
	typ := reflect.TypeOf((*T)(nil)).Elem()
	if !pointerFree(typ) {
		return 0, 0, fmt.Errorf("%w: %s", ErrPointerType, typ)
	}
	return int(typ.Size()), typ.Align(), nil
}

var pointerFreeCache sync.Map // reflect.Type -> bool

// pointerFree reports whether values of typ can live in memory the garbage
// collector does not scan.
func pointerFree(typ reflect.Type) bool {
	if v, ok := pointerFreeCache.Load(typ); ok {
		return v.(bool)
	}
	ok := computePointerFree(typ)
	pointerFreeCache.Store(typ, ok)
	return ok
}

func computePointerFree(typ reflect.Type) bool {
	switch typ.Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		return true
	case reflect.Array:
		return typ.Len() == 0 || pointerFree(typ.Elem())
	case reflect.Struct:
		for i := 0; i < typ.NumField(); i++ {
			if !pointerFree(typ.Field(i).Type) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
