package manager

import (
	"errors"
	"fmt"
)

// ErrClosed is returned by operations on a closed Manager.
var ErrClosed = errors.New("manager: closed")

// Load operations reported in LoadError.Op.
const (
	OpOpen   = "open"   // filesystem access
	OpStage  = "stage"  // reading raw bytes into the copy region
	OpDecode = "decode" // decoder dispatch, decoding and payload allocation
)

// LoadError attributes a failed load to the resource path and the step that
// failed. Err is the underlying filesystem, decoder or allocator error.
type LoadError struct {
	Path  string
	Scope Scope
	Op    string
	Err   error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("manager: %s %s resource %s: %v", e.Op, e.Scope, e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }
