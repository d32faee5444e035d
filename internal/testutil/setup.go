// Package testutil builds small, valid asset files in memory for tests.
package testutil

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"
	"testing/fstest"
)

// PNG encodes a w x h image where pixel (x, y) is (x, y, 0x80, 0xFF).
func PNG(t testing.TB, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: 0x80, A: 0xFF})
		}
	}
	var out bytes.Buffer
	if err := png.Encode(&out, img); err != nil {
		t.Fatalf("png.Encode: %v", err)
	}
	return out.Bytes()
}

// TGA encodes an uncompressed 32-bit top-left-origin Truevision image with
// the same pixels as PNG.
func TGA(t testing.TB, w, h int) []byte {
	t.Helper()
	var out bytes.Buffer
	out.Write([]byte{0, 0, 2}) // no id, no color map, uncompressed true-color
	out.Write(make([]byte, 5)) // color map spec
	for _, v := range []uint16{0, 0, uint16(w), uint16(h)} {
		if err := binary.Write(&out, binary.LittleEndian, v); err != nil {
			t.Fatalf("binary.Write: %v", err)
		}
	}
	out.Write([]byte{32, 0x28}) // 32 bpp; 8 alpha bits, top-left origin
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			out.Write([]byte{0x80, uint8(y), uint8(x), 0xFF}) // BGRA
		}
	}
	return out.Bytes()
}

// WAV builds a 16-bit PCM stereo RIFF file with the given number of frames.
// Left channel sample i is i*256, right channel is -(i*256).
func WAV(t testing.TB, frames, sampleRate int) []byte {
	t.Helper()
	const (
		channels      = 2
		bitsPerSample = 16
		blockAlign    = channels * bitsPerSample / 8
	)
	dataSize := frames * blockAlign

	var out bytes.Buffer
	w := func(v any) {
		if err := binary.Write(&out, binary.LittleEndian, v); err != nil {
			t.Fatalf("binary.Write: %v", err)
		}
	}
	out.WriteString("RIFF")
	w(uint32(36 + dataSize))
	out.WriteString("WAVE")
	out.WriteString("fmt ")
	w(uint32(16))
	w(uint16(1)) // PCM
	w(uint16(channels))
	w(uint32(sampleRate))
	w(uint32(sampleRate * blockAlign))
	w(uint16(blockAlign))
	w(uint16(bitsPerSample))
	out.WriteString("data")
	w(uint32(dataSize))
	for i := 0; i < frames; i++ {
		w(int16(i * 256))
		w(int16(-i * 256))
	}
	return out.Bytes()
}

// GLTF builds a glTF 2.0 JSON document with one data-URI buffer per entry
// of buffers, one mesh-less node per buffer.
func GLTF(buffers ...[]byte) []byte {
	var bufs, nodes []string
	for _, b := range buffers {
		bufs = append(bufs, fmt.Sprintf(
			`{"byteLength":%d,"uri":"data:application/octet-stream;base64,%s"}`,
			len(b), base64.StdEncoding.EncodeToString(b)))
		nodes = append(nodes, `{}`)
	}
	return []byte(fmt.Sprintf(
		`{"asset":{"version":"2.0"},"buffers":[%s],"nodes":[%s]}`,
		strings.Join(bufs, ","), strings.Join(nodes, ",")))
}

// GLTFExternal builds a glTF 2.0 document whose single buffer lives in the
// file named uri next to it.
func GLTFExternal(uri string, byteLength int) []byte {
	return []byte(fmt.Sprintf(
		`{"asset":{"version":"2.0"},"buffers":[{"byteLength":%d,"uri":%q}],"nodes":[{}]}`,
		byteLength, uri))
}

// Level builds a level description document.
func Level(name string, resources ...string) []byte {
	quoted := make([]string, len(resources))
	for i, r := range resources {
		quoted[i] = fmt.Sprintf("%q", r)
	}
	return []byte(fmt.Sprintf(`{"name":%q,"resources":[%s]}`, name, strings.Join(quoted, ",")))
}

// AssetFS returns a filesystem with every asset named in paths.go.
func AssetFS(t testing.TB) fstest.MapFS {
	t.Helper()
	return fstest.MapFS{
		FontImage:   {Data: PNG(t, 8, 4)},
		ClickSound:  {Data: WAV(t, 16, 22050)},
		TreeModel:   {Data: GLTF([]byte{1, 2, 3, 4, 5, 6}, []byte{7, 8, 9})},
		BarkImage:   {Data: PNG(t, 4, 4)},
		BirdSound:   {Data: WAV(t, 32, 44100)},
		RockModel:   {Data: GLTF([]byte{0xA, 0xB, 0xC, 0xD})},
		DripSound:   {Data: WAV(t, 8, 44100)},
		PineModel:   {Data: GLTFExternal("pine.bin", len(PineData))},
		PineBuffer:  {Data: PineData},
		AccentImage: {Data: PNG(t, 2, 2)},
		BannerImage: {Data: TGA(t, 3, 2)},
		CorruptPNG:  {Data: []byte("\x89PNG\r\n\x1a\nnot really")},
		UnknownFile: {Data: []byte("hello")},
		ForestLevel: {Data: []byte(`{
			"name": "forest",
			"resources": ["forest/bark.png", "ui/font.png"],
			"entities": [
				{"name": "oak", "model": "forest/tree.gltf", "textures": ["forest/bark.png"]},
				{"name": "bird", "sounds": ["forest/bird.wav"]}
			]
		}`)},
		CaveLevel: {Data: []byte(`{
			"name": "cave",
			"resources": ["cave/rock.gltf", "cave/drip.wav"]
		}`)},
	}
}
