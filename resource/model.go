package resource

import (
	"fmt"
	"io"
	"io/fs"

	"github.com/qmuntal/gltf"

	"github.com/maskerad/stackmem/internal/buf"
)

// ModelDecoder decodes glTF 2.0 documents (.gltf with embedded, data-URI or
// external buffers, and binary .glb) and packs every buffer into the payload.
type ModelDecoder struct {
	// FS resolves external buffer URIs. Without it a document that references
	// an external buffer fails with ErrCorrupt.
	FS fs.FS
}

// WithFS implements FSDecoder.
func (d ModelDecoder) WithFS(fsys fs.FS) Decoder {
	d.FS = fsys
	return d
}

// Decode implements Decoder.
func (d ModelDecoder) Decode(r io.Reader, p Placer) (*Resource, error) {
	var dec *gltf.Decoder
	if d.FS != nil {
		dec = gltf.NewDecoderFS(r, d.FS)
	} else {
		dec = gltf.NewDecoder(r)
	}
	doc := new(gltf.Document)
	if err := dec.Decode(doc); err != nil {
		return nil, fmt.Errorf("%w: gltf: %w", ErrCorrupt, err)
	}

	spans := make([]BufferSpan, len(doc.Buffers))
	total := 0
	for i, b := range doc.Buffers {
		n := int(b.ByteLength)
		if len(b.Data) < n {
			return nil, fmt.Errorf("%w: gltf: buffer %d holds %d bytes, byteLength is %d",
				ErrCorrupt, i, len(b.Data), n)
		}
		off := int(buf.AlignUp(uintptr(total), 4))
		spans[i] = BufferSpan{Offset: off, Length: n}
		end, ok := buf.AddOverflowSafe(off, n)
		if !ok {
			return nil, fmt.Errorf("%w: gltf: buffer %d overflows payload size", ErrCorrupt, i)
		}
		total = end
	}

	handle, err := p.Place(total, 4, func(dst []byte) error {
		clear(dst)
		for i, b := range doc.Buffers {
			copy(dst[spans[i].Offset:], b.Data[:spans[i].Length])
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &Resource{
		Kind:   KindModel,
		Handle: handle,
		Model: &ModelInfo{
			Meshes:    len(doc.Meshes),
			Nodes:     len(doc.Nodes),
			Materials: len(doc.Materials),
			Buffers:   spans,
		},
	}, nil
}
