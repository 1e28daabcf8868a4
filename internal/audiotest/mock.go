// SPDX-License-Identifier: EPL-2.0

// Package audiotest generates PCM data and in-memory streams for tests.
package audiotest

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
)

// SineS16 generates interleaved 16-bit PCM: frames frames of a sine
// wave at the given frequency, identical on every channel.
func SineS16(sampleRate, channels, frames int, frequency float64) []byte {
	out := make([]byte, frames*channels*2)
	for i := 0; i < frames; i++ {
		t := float64(i) / float64(sampleRate)
		v := int16(math.Round(math.Sin(2*math.Pi*frequency*t) * 0.5 * 32767))
		for ch := 0; ch < channels; ch++ {
			binary.LittleEndian.PutUint16(out[(i*channels+ch)*2:], uint16(v))
		}
	}
	return out
}

// RampS16 generates interleaved 16-bit PCM where frame i carries the
// value i+ch on channel ch, wrapping at the int16 range. Useful when a
// test needs to check sample positions after a seek.
func RampS16(channels, frames int) []byte {
	out := make([]byte, frames*channels*2)
	for i := 0; i < frames; i++ {
		for ch := 0; ch < channels; ch++ {
			binary.LittleEndian.PutUint16(out[(i*channels+ch)*2:], uint16(int16(i+ch)))
		}
	}
	return out
}

// BuildWAV assembles a complete RIFF/WAVE file around 16-bit PCM data.
func BuildWAV(sampleRate, channels int, data []byte) []byte {
	var b bytes.Buffer
	stride := channels * 2
	write := func(v any) { binary.Write(&b, binary.LittleEndian, v) }

	b.WriteString("RIFF")
	write(uint32(36 + len(data)))
	b.WriteString("WAVE")
	b.WriteString("fmt ")
	write(uint32(16))
	write(uint16(1))
	write(uint16(channels))
	write(uint32(sampleRate))
	write(uint32(sampleRate * stride))
	write(uint16(stride))
	write(uint16(16))
	b.WriteString("data")
	write(uint32(len(data)))
	b.Write(data)
	return b.Bytes()
}

// ErrWriterFull is returned by ShortWriter once its limit is reached.
var ErrWriterFull = errors.New("writer full")

// ShortWriter accepts Limit bytes and then reports short writes,
// simulating a destination that runs out of space mid-stream.
type ShortWriter struct {
	Limit   int
	Written bytes.Buffer
}

func (w *ShortWriter) Write(p []byte) (int, error) {
	room := w.Limit - w.Written.Len()
	if room <= 0 {
		return 0, ErrWriterFull
	}
	if len(p) <= room {
		return w.Written.Write(p)
	}
	w.Written.Write(p[:room])
	return room, ErrWriterFull
}
