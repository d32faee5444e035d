package resource

import (
	"fmt"

	"github.com/maskerad/stackmem/alloc"
)

// Kind is the category of a resource.
type Kind uint8

const (
	KindImage Kind = iota + 1
	KindModel
	KindSound
)

func (k Kind) String() string {
	switch k {
	case KindImage:
		return "image"
	case KindModel:
		return "model"
	case KindSound:
		return "sound"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Resource is a decoded asset. Its payload lives in allocator memory and is
// reached through Handle; the struct itself only carries metadata.
type Resource struct {
	Path   string
	Kind   Kind
	Handle alloc.Handle

	// Exactly one of these is set, matching Kind.
	Image *ImageInfo
	Model *ModelInfo
	Sound *SoundInfo
}

// Size returns the payload size in bytes.
func (r *Resource) Size() int { return r.Handle.Size() }

// ImageInfo describes a pixel payload, RGBA8 unless Format says otherwise.
type ImageInfo struct {
	Width  int
	Height int
	Stride int // bytes per row
	Format ColorFormat
}

// ModelInfo describes a glTF payload: every buffer of the document laid out
// back to back, each 4-byte aligned.
type ModelInfo struct {
	Meshes    int
	Nodes     int
	Materials int
	Buffers   []BufferSpan
}

// BufferSpan locates one glTF buffer inside the model payload.
type BufferSpan struct {
	Offset int
	Length int
}

// SoundInfo describes an interleaved little-endian float32 stereo payload.
type SoundInfo struct {
	SampleRate int
	Channels   int // channels in the source file; the payload is always stereo
	Frames     int // number of stereo frames in the payload
}

// Duration returns the playing time in seconds.
func (s *SoundInfo) Duration() float64 {
	if s.SampleRate == 0 {
		return 0
	}
	return float64(s.Frames) / float64(s.SampleRate)
}
