package resource

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/vorbis"
	"github.com/gopxl/beep/v2/wav"

	"github.com/maskerad/stackmem/internal/buf"
)

// SoundFormat selects the container a SoundDecoder reads.
type SoundFormat uint8

const (
	SoundWAV SoundFormat = iota
	SoundVorbis
)

// frameBytes is the payload size of one stereo frame (2 x float32).
const frameBytes = 8

// SoundDecoder fully decodes a sound file and streams its samples into the
// payload as interleaved little-endian float32 stereo frames.
type SoundDecoder struct {
	Format SoundFormat
}

// Decode implements Decoder.
func (d SoundDecoder) Decode(r io.Reader, p Placer) (*Resource, error) {
	var (
		s      beep.StreamSeekCloser
		format beep.Format
		err    error
	)
	switch d.Format {
	case SoundVorbis:
		s, format, err = vorbis.Decode(io.NopCloser(r))
	default:
		s, format, err = wav.Decode(r)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: sound: %w", ErrCorrupt, err)
	}
	defer s.Close()

	frames := s.Len()
	size, err := buf.CheckSize(frames, frameBytes)
	if err != nil {
		return nil, fmt.Errorf("%w: sound: %w", ErrCorrupt, err)
	}

	handle, err := p.Place(size, 4, func(dst []byte) error {
		return streamFrames(dst, s, frames)
	})
	if err != nil {
		return nil, err
	}
	return &Resource{
		Kind:   KindSound,
		Handle: handle,
		Sound: &SoundInfo{
			SampleRate: int(format.SampleRate),
			Channels:   format.NumChannels,
			Frames:     frames,
		},
	}, nil
}

func streamFrames(dst []byte, s beep.Streamer, frames int) error {
	var chunk [512][2]float64
	written := 0
	for written < frames {
		n, ok := s.Stream(chunk[:min(len(chunk), frames-written)])
		for i := 0; i < n; i++ {
			o := (written + i) * frameBytes
			binary.LittleEndian.PutUint32(dst[o:], math.Float32bits(float32(chunk[i][0])))
			binary.LittleEndian.PutUint32(dst[o+4:], math.Float32bits(float32(chunk[i][1])))
		}
		written += n
		if !ok || n == 0 {
			break
		}
	}
	if err := s.Err(); err != nil {
		return fmt.Errorf("%w: sound: %w", ErrCorrupt, err)
	}
	// A stream shorter than its header claims is padded with silence.
	clear(dst[written*frameBytes:])
	return nil
}

// Frame returns stereo frame i of a sound payload.
func Frame(payload []byte, i int) (left, right float32) {
	o := i * frameBytes
	left = math.Float32frombits(binary.LittleEndian.Uint32(payload[o:]))
	right = math.Float32frombits(binary.LittleEndian.Uint32(payload[o+4:]))
	return left, right
}
