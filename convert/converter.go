// SPDX-License-Identifier: EPL-2.0

package convert

import (
	"encoding/binary"
	"errors"
	"math"

	"github.com/LuoYun-Team/SoundFlow/engine"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported sample format")
	ErrPlanarOutput      = errors.New("output format must be packed")
	ErrBadChannelCount   = errors.New("channel count must be positive")
	ErrChannelMismatch   = errors.New("frame channel count does not match converter")
)

type readFunc func(plane []byte, idx int) float64
type writeFunc func(plane []byte, idx int, v float64)

func reader(f engine.SampleFormat) readFunc {
	switch f.Packed() {
	case engine.FormatU8:
		return func(p []byte, i int) float64 {
			return (float64(p[i]) - 128) / 128
		}
	case engine.FormatS16:
		return func(p []byte, i int) float64 {
			return float64(int16(binary.LittleEndian.Uint16(p[i*2:]))) / 32768
		}
	case engine.FormatS32:
		return func(p []byte, i int) float64 {
			return float64(int32(binary.LittleEndian.Uint32(p[i*4:]))) / 2147483648
		}
	case engine.FormatF32:
		return func(p []byte, i int) float64 {
			return float64(math.Float32frombits(binary.LittleEndian.Uint32(p[i*4:])))
		}
	case engine.FormatF64:
		return func(p []byte, i int) float64 {
			return math.Float64frombits(binary.LittleEndian.Uint64(p[i*8:]))
		}
	default:
		return nil
	}
}

func writer(f engine.SampleFormat) writeFunc {
	switch f {
	case engine.FormatU8:
		return func(p []byte, i int, v float64) {
			p[i] = byte(clampInt(math.Round(v*128)+128, 0, 255))
		}
	case engine.FormatS16:
		return func(p []byte, i int, v float64) {
			s := clampInt(math.Round(v*32768), -32768, 32767)
			binary.LittleEndian.PutUint16(p[i*2:], uint16(int16(s)))
		}
	case engine.FormatS32:
		return func(p []byte, i int, v float64) {
			s := clampInt(math.Round(v*2147483648), -2147483648, 2147483647)
			binary.LittleEndian.PutUint32(p[i*4:], uint32(int32(s)))
		}
	case engine.FormatF32:
		return func(p []byte, i int, v float64) {
			binary.LittleEndian.PutUint32(p[i*4:], math.Float32bits(float32(clampFloat(v))))
		}
	default:
		return nil
	}
}

func clampInt(v float64, lo, hi int64) int64 {
	s := int64(v)
	if s < lo {
		return lo
	}
	if s > hi {
		return hi
	}
	return s
}

func clampFloat(v float64) float64 {
	if v > 1 {
		return 1
	}
	if v < -1 {
		return -1
	}
	return v
}

// Converter translates frames between an engine sample format and a
// packed output format, preserving channel count and sample rate. Input
// it cannot deliver immediately is carried internally, mirroring the
// behavior of a resampler whose output buffer is smaller than the frame
// it was fed: Convert consumes the whole frame, Drain releases what was
// held back.
type Converter struct {
	srcFormat engine.SampleFormat
	dstFormat engine.SampleFormat
	channels  int

	read  readFunc
	write writeFunc

	srcPlanar bool
	dstStride int

	carry []byte
}

// New builds a converter from src to dst for the given channel count.
// dst must be a packed format; neither side may be FormatNone. Channel
// layouts always match — the pipeline never remixes.
func New(src, dst engine.SampleFormat, channels int) (*Converter, error) {
	if channels <= 0 {
		return nil, ErrBadChannelCount
	}
	if dst.IsPlanar() {
		return nil, ErrPlanarOutput
	}

	read := reader(src)
	write := writer(dst)
	if read == nil || write == nil {
		return nil, ErrUnsupportedFormat
	}

	return &Converter{
		srcFormat: src,
		dstFormat: dst,
		channels:  channels,
		read:      read,
		write:     write,
		srcPlanar: src.IsPlanar(),
		dstStride: dst.BytesPerSample() * channels,
	}, nil
}

// Pending returns the number of carried frames not yet delivered.
func (c *Converter) Pending() int {
	return len(c.carry) / c.dstStride
}

// Reset discards all carried frames. Called after a seek, when buffered
// samples no longer belong to the stream position.
func (c *Converter) Reset() {
	c.carry = c.carry[:0]
}

// Convert consumes f entirely, writes up to maxFrames converted frames
// into dst (carried frames from earlier calls first) and holds back the
// rest. It returns the number of frames written to dst.
func (c *Converter) Convert(dst []byte, maxFrames int, f *engine.Frame) (int, error) {
	if f.Channels != c.channels {
		return 0, ErrChannelMismatch
	}

	written := c.drainCarry(dst, maxFrames)

	scratch := make([]byte, c.dstStride)
	for i := 0; i < f.NumSamples; i++ {
		for ch := 0; ch < c.channels; ch++ {
			v := c.readSample(f, i, ch)
			c.write(scratch, ch, v)
		}
		if written < maxFrames {
			copy(dst[written*c.dstStride:], scratch)
			written++
		} else {
			c.carry = append(c.carry, scratch...)
		}
	}

	return written, nil
}

// Drain writes up to maxFrames carried frames into dst and returns how
// many were written. A zero return means the converter is empty; this is
// the null-input flush loop's termination condition.
func (c *Converter) Drain(dst []byte, maxFrames int) int {
	return c.drainCarry(dst, maxFrames)
}

func (c *Converter) drainCarry(dst []byte, maxFrames int) int {
	if len(c.carry) == 0 || maxFrames <= 0 {
		return 0
	}

	frames := len(c.carry) / c.dstStride
	if frames > maxFrames {
		frames = maxFrames
	}

	n := frames * c.dstStride
	copy(dst, c.carry[:n])
	c.carry = c.carry[:copy(c.carry, c.carry[n:])]
	return frames
}

func (c *Converter) readSample(f *engine.Frame, idx, ch int) float64 {
	if c.srcPlanar {
		return c.read(f.Data[ch], idx)
	}
	return c.read(f.Data[0], idx*c.channels+ch)
}
