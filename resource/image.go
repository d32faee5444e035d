package resource

import (
	"fmt"
	"image"
	"image/color"
	"io"

	"golang.org/x/image/draw"

	"github.com/maskerad/stackmem/internal/buf"
)

// ImageCodec decodes one image format.
type ImageCodec func(r io.Reader) (image.Image, error)

// ImageDecoder decodes an image and converts it to Format directly in the
// placed payload.
type ImageDecoder struct {
	// Codec decodes the file. Nil sniffs the format with image.Decode, which
	// cannot recognize formats without a signature such as TGA.
	Codec ImageCodec

	// Format is the pixel layout of the payload. Default: FormatRGBA.
	Format ColorFormat
}

// Decode implements Decoder.
func (d ImageDecoder) Decode(r io.Reader, p Placer) (*Resource, error) {
	src, err := d.decode(r)
	if err != nil {
		return nil, fmt.Errorf("%w: image: %w", ErrCorrupt, err)
	}

	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	stride, err := buf.CheckSize(w, d.Format.Channels())
	if err != nil {
		return nil, fmt.Errorf("%w: image %dx%d: %w", ErrCorrupt, w, h, err)
	}
	size, err := buf.CheckSize(h, stride)
	if err != nil {
		return nil, fmt.Errorf("%w: image %dx%d: %w", ErrCorrupt, w, h, err)
	}

	info := &ImageInfo{Width: w, Height: h, Stride: stride, Format: d.Format}
	handle, err := p.Place(size, 4, func(pix []byte) error {
		if view := info.View(pix); view != nil {
			draw.Draw(view, image.Rect(0, 0, w, h), src, bounds.Min, draw.Src)
			return nil
		}
		convert(pix, stride, src, d.Format)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &Resource{Kind: KindImage, Handle: handle, Image: info}, nil
}

func (d ImageDecoder) decode(r io.Reader) (image.Image, error) {
	if d.Codec != nil {
		return d.Codec(r)
	}
	img, _, err := image.Decode(r)
	return img, err
}

// convert writes src into pix one pixel at a time in a layout draw.Draw has
// no destination type for.
func convert(pix []byte, stride int, src image.Image, f ColorFormat) {
	b := src.Bounds()
	ch := f.Channels()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := pix[(y-b.Min.Y)*stride:]
		for x := b.Min.X; x < b.Max.X; x++ {
			px := row[(x-b.Min.X)*ch:][:ch]
			f.put(px, color.NRGBAModel.Convert(src.At(x, y)).(color.NRGBA))
		}
	}
}

// View wraps a pixel payload as an *image.RGBA without copying. It returns
// nil unless the payload is FormatRGBA.
func (i *ImageInfo) View(pix []byte) *image.RGBA {
	if i.Format != FormatRGBA {
		return nil
	}
	return &image.RGBA{
		Pix:    pix,
		Stride: i.Stride,
		Rect:   image.Rect(0, 0, i.Width, i.Height),
	}
}
