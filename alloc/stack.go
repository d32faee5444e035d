package alloc

import "errors"

// Stack couples a main region with a copy region.
//
// The resource manager keeps decoded payloads in the main region and uses the
// copy region to stage raw file bytes while a decoder runs. Both have their
// own cursor and markers.
type Stack struct {
	main *Region
	copy *Region
}

// NewStack creates the main and copy regions.
func NewStack(capacity, copyCapacity int) (*Stack, error) {
	main, err := NewRegion(capacity)
	if err != nil {
		return nil, err
	}
	cp, err := NewRegion(copyCapacity)
	if err != nil {
		_ = main.Close()
		return nil, err
	}
	return &Stack{main: main, copy: cp}, nil
}

// Main returns the main region.
func (s *Stack) Main() *Region { return s.main }

// Copy returns the copy region.
func (s *Stack) Copy() *Region { return s.copy }

// Bytes resolves a handle issued by either region.
func (s *Stack) Bytes(h Handle) ([]byte, error) {
	if s.copy.Owns(h) {
		return s.copy.Bytes(h)
	}
	return s.main.Bytes(h)
}

// Reset rewinds both regions to zero.
func (s *Stack) Reset() {
	s.main.Reset()
	s.copy.Reset()
}

// Close releases both regions.
func (s *Stack) Close() error {
	return errors.Join(s.main.Close(), s.copy.Close())
}
