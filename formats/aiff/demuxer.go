// SPDX-License-Identifier: EPL-2.0

package aiff

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/go-audio/aiff"
	goaudio "github.com/go-audio/audio"

	"github.com/LuoYun-Team/SoundFlow/engine"
)

const packetFrames = 4096

func init() {
	engine.RegisterInputFormat(engine.InputFormat{
		Name:  "aiff",
		Probe: probe,
		Open:  open,
	})
}

// probe stays hand-rolled; aiff.Decoder validates a whole stream, not
// a sniff window.
func probe(b []byte) int {
	if len(b) < 12 || !bytes.Equal(b[:4], []byte("FORM")) {
		return 0
	}
	if bytes.Equal(b[8:12], []byte("AIFF")) || bytes.Equal(b[8:12], []byte("AIFC")) {
		return 100
	}
	return 0
}

// demuxer wraps aiff.Decoder. The library decodes big-endian sound
// data into host-order ints; payloads are packed from those into the
// engine's little-endian layout.
type demuxer struct {
	rs  io.ReadSeeker
	dec *aiff.Decoder

	stream  engine.StreamInfo
	srcBits int

	pos int64
	eof bool

	intBuf *goaudio.IntBuffer
	out    []byte
}

func open(rs io.ReadSeeker, _ engine.OpenOptions) (engine.Demuxer, error) {
	d := &demuxer{rs: rs}
	if err := d.reopen(); err != nil {
		return nil, err
	}
	dec := d.dec

	var format engine.SampleFormat
	switch dec.BitDepth {
	case 8:
		// AIFF 8-bit PCM is signed, unlike WAV; samples are re-biased
		// when packets are packed.
		format = engine.FormatU8
	case 16:
		format = engine.FormatS16
	case 24, 32:
		format = engine.FormatS32
	default:
		return nil, fmt.Errorf("%w: %d bits", ErrUnsupportedEncoding, dec.BitDepth)
	}
	d.srcBits = int(dec.BitDepth)

	layout := dec.Format()
	if layout == nil || layout.NumChannels <= 0 || layout.SampleRate <= 0 {
		return nil, ErrUnsupportedLayout
	}

	d.stream = engine.StreamInfo{
		Index:        0,
		Type:         engine.MediaTypeAudio,
		Codec:        engine.CodecPCM,
		SampleFormat: format,
		Channels:     layout.NumChannels,
		SampleRate:   layout.SampleRate,
		TimeBase:     engine.Rational{Num: 1, Den: int64(layout.SampleRate)},
		Duration:     int64(dec.NumSampleFrames),
		Score:        100,
	}
	return d, nil
}

// reopen rewinds the stream and parses the headers again. Seeking
// works by re-reading from the top because the library only decodes
// forward.
func (d *demuxer) reopen() error {
	if _, err := d.rs.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("rewinding aiff stream: %w", err)
	}
	dec := aiff.NewDecoder(d.rs)
	if !dec.IsValidFile() {
		return ErrNotAIFF
	}
	dec.ReadInfo()
	if err := dec.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrUnsupportedLayout, err)
	}
	if dec.Encoding != [4]byte{} && !bytes.Equal(dec.Encoding[:], []byte("NONE")) {
		return fmt.Errorf("%w: compression %q", ErrUnsupportedEncoding, dec.Encoding[:])
	}
	if dec.NumChans == 0 || dec.SampleRate <= 0 {
		return ErrUnsupportedLayout
	}
	d.dec = dec
	return nil
}

func (d *demuxer) Streams() []engine.StreamInfo { return []engine.StreamInfo{d.stream} }

func (d *demuxer) Duration() int64 { return engine.NoTimestamp }

func (d *demuxer) ReadPacket(pkt *engine.Packet) (engine.Status, error) {
	if d.eof {
		return engine.StatusEndOfStream, nil
	}

	ch := d.stream.Channels
	n, err := d.fill(packetFrames * ch)
	if n == 0 {
		d.eof = true
		if err != nil {
			return engine.StatusOK, fmt.Errorf("decoding aiff sound data: %w", err)
		}
		return engine.StatusEndOfStream, nil
	}
	n -= n % ch
	if n < packetFrames*ch {
		// A short decode with no error means the sound chunk ran out.
		d.eof = true
	}
	if n == 0 {
		return engine.StatusEndOfStream, nil
	}

	pkt.StreamIndex = 0
	pkt.PTS = d.pos
	pkt.TimeBase = d.stream.TimeBase
	pkt.Data = d.payload(d.intBuf.Data[:n])
	d.pos += int64(n / ch)
	return engine.StatusOK, nil
}

// fill decodes up to want samples into the reusable int buffer and
// returns how many arrived. io.EOF is folded into a short count.
func (d *demuxer) fill(want int) (int, error) {
	if d.intBuf == nil || cap(d.intBuf.Data) < want {
		d.intBuf = &goaudio.IntBuffer{
			Data:   make([]int, want),
			Format: d.dec.Format(),
		}
	}
	d.intBuf.Data = d.intBuf.Data[:want]

	n, err := d.dec.PCMBuffer(d.intBuf)
	if err != nil && (errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF)) {
		err = nil
	}
	return n, err
}

// payload packs decoded ints into the engine layout, widening 24-bit
// samples and re-biasing 8-bit ones.
func (d *demuxer) payload(vals []int) []byte {
	var out []byte
	switch d.srcBits {
	case 8:
		out = d.scratch(len(vals))
		for i, v := range vals {
			out[i] = byte(v + 128)
		}

	case 16:
		out = d.scratch(len(vals) * 2)
		for i, v := range vals {
			binary.LittleEndian.PutUint16(out[i*2:], uint16(int16(v)))
		}

	case 24:
		out = d.scratch(len(vals) * 4)
		for i, v := range vals {
			binary.LittleEndian.PutUint32(out[i*4:], uint32(int32(v)<<8))
		}

	default: // 32
		out = d.scratch(len(vals) * 4)
		for i, v := range vals {
			binary.LittleEndian.PutUint32(out[i*4:], uint32(int32(v)))
		}
	}
	return out
}

func (d *demuxer) scratch(n int) []byte {
	if cap(d.out) < n {
		d.out = make([]byte, n)
	}
	return d.out[:n]
}

func (d *demuxer) Seek(streamIndex int, timestamp int64) error {
	if streamIndex != 0 {
		return ErrBadStream
	}
	if timestamp < 0 {
		timestamp = 0
	}
	if frames := d.stream.Duration; timestamp > frames {
		timestamp = frames
	}

	if err := d.reopen(); err != nil {
		return err
	}
	d.pos = 0
	d.eof = false

	// Decode and discard up to the target frame.
	ch := d.stream.Channels
	for d.pos < timestamp {
		want := timestamp - d.pos
		if want > packetFrames {
			want = packetFrames
		}
		n, err := d.fill(int(want) * ch)
		if err != nil {
			return fmt.Errorf("seeking aiff stream: %w", err)
		}
		if n < ch {
			d.eof = true
			return nil
		}
		d.pos += int64(n / ch)
	}
	return nil
}

func (d *demuxer) SetDiscard(int, bool) {}

func (d *demuxer) Close() error {
	d.intBuf, d.out = nil, nil
	return nil
}
