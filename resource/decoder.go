package resource

import (
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"io/fs"
	"path"
	"strings"

	"github.com/ftrvxmtrx/tga"
	"github.com/lukegb/dds"
	"github.com/mdouchement/hdr/codec/rgbe"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	"golang.org/x/image/webp"

	"github.com/maskerad/stackmem/alloc"
)

// Placer hands out allocator memory to a decoder. Place has the contract of
// alloc.Region.Alloc: build receives exactly size bytes aligned to align.
type Placer interface {
	Place(size, align int, build alloc.BuildFunc) (alloc.Handle, error)
}

// PlacerFunc adapts a function to Placer.
type PlacerFunc func(size, align int, build alloc.BuildFunc) (alloc.Handle, error)

// Place calls f.
func (f PlacerFunc) Place(size, align int, build alloc.BuildFunc) (alloc.Handle, error) {
	return f(size, align, build)
}

// RegionPlacer places into an allocator.
func RegionPlacer(a alloc.Allocator) Placer {
	return PlacerFunc(a.Alloc)
}

// Decoder turns an encoded file into a Resource whose payload was written
// through p. Decoders call p.Place at most once. Path is filled in by the
// caller.
type Decoder interface {
	Decode(r io.Reader, p Placer) (*Resource, error)
}

// FSDecoder is implemented by decoders that read files referenced by the
// document, such as external glTF buffers. WithFS returns a copy that
// resolves those references in fsys, which is rooted at the directory of the
// file being decoded.
type FSDecoder interface {
	Decoder
	WithFS(fsys fs.FS) Decoder
}

// Decoders maps lower-case file extensions (with the dot) to decoders.
type Decoders map[string]Decoder

// DefaultDecoders returns the built-in decoders. Images are decoded to
// FormatRGBA.
func DefaultDecoders() Decoders {
	model := ModelDecoder{}
	return Decoders{
		".png":  ImageDecoder{Codec: png.Decode},
		".jpg":  ImageDecoder{Codec: jpeg.Decode},
		".jpeg": ImageDecoder{Codec: jpeg.Decode},
		".gif":  ImageDecoder{Codec: gif.Decode},
		".bmp":  ImageDecoder{Codec: bmp.Decode},
		".tif":  ImageDecoder{Codec: tiff.Decode},
		".tiff": ImageDecoder{Codec: tiff.Decode},
		".webp": ImageDecoder{Codec: webp.Decode},
		".tga":  ImageDecoder{Codec: tga.Decode},
		".dds":  ImageDecoder{Codec: dds.Decode},
		".hdr":  ImageDecoder{Codec: rgbe.Decode},
		".gltf": model,
		".glb":  model,
		".wav":  SoundDecoder{Format: SoundWAV},
		".ogg":  SoundDecoder{Format: SoundVorbis},
	}
}

// Lookup returns the decoder for the extension of p.
func (d Decoders) Lookup(p string) (Decoder, bool) {
	dec, ok := d[strings.ToLower(path.Ext(p))]
	return dec, ok
}
