package resource

import (
	"fmt"
	"image/color"
)

// ColorFormat is the pixel layout of an image payload. Every format stores
// 8 bits per channel, non-premultiplied except for FormatRGBA, which matches
// image.RGBA.
type ColorFormat uint8

const (
	FormatRGBA ColorFormat = iota
	FormatRGB
	FormatBGR
	FormatBGRA
	FormatARGB
	FormatABGR
	FormatGray      // luma only
	FormatGrayAlpha // luma, then alpha
)

var colorFormatNames = [...]string{
	FormatRGBA:      "rgba",
	FormatRGB:       "rgb",
	FormatBGR:       "bgr",
	FormatBGRA:      "bgra",
	FormatARGB:      "argb",
	FormatABGR:      "abgr",
	FormatGray:      "y",
	FormatGrayAlpha: "ya",
}

func (f ColorFormat) String() string {
	if int(f) < len(colorFormatNames) {
		return colorFormatNames[f]
	}
	return fmt.Sprintf("format(%d)", uint8(f))
}

// ParseColorFormat returns the format named s, as printed by String.
func ParseColorFormat(s string) (ColorFormat, error) {
	for f, name := range colorFormatNames {
		if name == s {
			return ColorFormat(f), nil
		}
	}
	return 0, fmt.Errorf("resource: unknown color format %q", s)
}

// Channels returns the bytes per pixel.
func (f ColorFormat) Channels() int {
	switch f {
	case FormatRGB, FormatBGR:
		return 3
	case FormatGray:
		return 1
	case FormatGrayAlpha:
		return 2
	default:
		return 4
	}
}

func (f ColorFormat) put(px []byte, c color.NRGBA) {
	switch f {
	case FormatRGB:
		px[0], px[1], px[2] = c.R, c.G, c.B
	case FormatBGR:
		px[0], px[1], px[2] = c.B, c.G, c.R
	case FormatBGRA:
		px[0], px[1], px[2], px[3] = c.B, c.G, c.R, c.A
	case FormatARGB:
		px[0], px[1], px[2], px[3] = c.A, c.R, c.G, c.B
	case FormatABGR:
		px[0], px[1], px[2], px[3] = c.A, c.B, c.G, c.R
	case FormatGray:
		px[0] = luma(c)
	case FormatGrayAlpha:
		px[0], px[1] = luma(c), c.A
	default:
		px[0], px[1], px[2], px[3] = c.R, c.G, c.B, c.A
	}
}

// luma uses the same weights as color.GrayModel.
func luma(c color.NRGBA) uint8 {
	y := (19595*uint32(c.R) + 38470*uint32(c.G) + 7471*uint32(c.B) + 1<<15) >> 16
	return uint8(y)
}
