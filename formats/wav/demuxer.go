// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/LuoYun-Team/SoundFlow/engine"
)

const (
	formatPCM        = 1
	formatIEEEFloat  = 3
	formatExtensible = 0xFFFE

	// Frames per packet handed to the codec.
	packetFrames = 4096

	// A data chunk with this size (or one running past the end of the
	// stream) is read until end of input; streamed writers cannot patch
	// the size fields after the fact.
	unknownChunkSize = 0xFFFFFFFF
)

func init() {
	engine.RegisterInputFormat(engine.InputFormat{
		Name:  "wav",
		Probe: probe,
		Open:  open,
	})
}

func probe(b []byte) int {
	if len(b) < 12 {
		return 0
	}
	if bytes.Equal(b[:4], []byte("RIFF")) && bytes.Equal(b[8:12], []byte("WAVE")) {
		return 100
	}
	return 0
}

// demuxer walks the RIFF chunk list by hand; it needs exact byte
// positions inside the data chunk for sample-accurate seeking, which a
// higher-level reader does not expose.
type demuxer struct {
	rs io.ReadSeeker

	stream    engine.StreamInfo
	duration  int64 // container-level, TimeUnit ticks
	srcBits   int   // bits per sample as stored in the file
	srcStride int   // bytes per frame as stored in the file

	dataStart  int64
	dataFrames int64 // NoTimestamp when the data size is unknown
	pos        int64 // next frame to read
	eof        bool

	raw []byte // staging for one packet of file bytes
	out []byte // widened packet payload for 24-bit sources
}

func open(rs io.ReadSeeker, _ engine.OpenOptions) (engine.Demuxer, error) {
	var header [12]byte
	if _, err := io.ReadFull(rs, header[:]); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotWAV, err)
	}
	if probe(header[:]) == 0 {
		return nil, ErrNotWAV
	}

	d := &demuxer{rs: rs, dataFrames: engine.NoTimestamp, duration: engine.NoTimestamp}

	var (
		haveFmt     bool
		audioFormat uint16
		channels    int
		sampleRate  int
	)

	for {
		var chunk [8]byte
		if _, err := io.ReadFull(rs, chunk[:]); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return nil, ErrNoDataChunk
			}
			return nil, fmt.Errorf("reading chunk header: %w", err)
		}
		id := chunk[:4]
		size := binary.LittleEndian.Uint32(chunk[4:8])

		switch {
		case bytes.Equal(id, []byte("fmt ")):
			if size < 16 {
				return nil, ErrUnsupportedLayout
			}
			body := make([]byte, size)
			if _, err := io.ReadFull(rs, body); err != nil {
				return nil, fmt.Errorf("reading fmt chunk: %w", err)
			}
			audioFormat = binary.LittleEndian.Uint16(body[0:2])
			channels = int(binary.LittleEndian.Uint16(body[2:4]))
			sampleRate = int(binary.LittleEndian.Uint32(body[4:8]))
			d.srcBits = int(binary.LittleEndian.Uint16(body[14:16]))
			if audioFormat == formatExtensible && size >= 40 {
				// The first two bytes of the extensible GUID hold the
				// actual format tag.
				audioFormat = binary.LittleEndian.Uint16(body[24:26])
			}
			haveFmt = true

		case bytes.Equal(id, []byte("data")):
			if !haveFmt {
				return nil, ErrUnsupportedLayout
			}
			if err := d.finish(audioFormat, channels, sampleRate, size); err != nil {
				return nil, err
			}
			return d, nil

		default:
			// Skip unknown chunks; chunk bodies are word aligned.
			skip := int64(size)
			if size%2 == 1 && size != unknownChunkSize {
				skip++
			}
			if _, err := rs.Seek(skip, io.SeekCurrent); err != nil {
				return nil, fmt.Errorf("skipping %q chunk: %w", id, err)
			}
		}
	}
}

func (d *demuxer) finish(audioFormat uint16, channels, sampleRate int, dataSize uint32) error {
	if channels <= 0 || sampleRate <= 0 {
		return ErrUnsupportedLayout
	}

	var format engine.SampleFormat
	switch {
	case audioFormat == formatPCM && d.srcBits == 8:
		format = engine.FormatU8
	case audioFormat == formatPCM && d.srcBits == 16:
		format = engine.FormatS16
	case audioFormat == formatPCM && (d.srcBits == 24 || d.srcBits == 32):
		format = engine.FormatS32
	case audioFormat == formatIEEEFloat && d.srcBits == 32:
		format = engine.FormatF32
	default:
		return fmt.Errorf("%w: format tag %d, %d bits", ErrUnsupportedEncoding, audioFormat, d.srcBits)
	}

	d.srcStride = channels * d.srcBits / 8

	start, err := d.rs.Seek(0, io.SeekCurrent)
	if err != nil {
		return fmt.Errorf("locating data chunk: %w", err)
	}
	d.dataStart = start

	streamDuration := int64(engine.NoTimestamp)
	if dataSize != unknownChunkSize {
		d.dataFrames = int64(dataSize) / int64(d.srcStride)
		streamDuration = d.dataFrames
	} else if end, err := d.rs.Seek(0, io.SeekEnd); err == nil {
		// No usable data size; derive a container-level duration from
		// the stream length so length queries can still fall back to it.
		d.duration = engine.Rescale((end-start)/int64(d.srcStride),
			engine.Rational{Num: 1, Den: int64(sampleRate)}, engine.MicrosecondBase)
		if _, err := d.rs.Seek(start, io.SeekStart); err != nil {
			return fmt.Errorf("rewinding to data chunk: %w", err)
		}
	}

	d.stream = engine.StreamInfo{
		Index:        0,
		Type:         engine.MediaTypeAudio,
		Codec:        engine.CodecPCM,
		SampleFormat: format,
		Channels:     channels,
		SampleRate:   sampleRate,
		TimeBase:     engine.Rational{Num: 1, Den: int64(sampleRate)},
		Duration:     streamDuration,
		Score:        100,
	}
	return nil
}

func (d *demuxer) Streams() []engine.StreamInfo { return []engine.StreamInfo{d.stream} }

func (d *demuxer) Duration() int64 { return d.duration }

func (d *demuxer) ReadPacket(pkt *engine.Packet) (engine.Status, error) {
	if d.eof {
		return engine.StatusEndOfStream, nil
	}

	want := int64(packetFrames)
	if d.dataFrames != engine.NoTimestamp {
		if remaining := d.dataFrames - d.pos; remaining < want {
			want = remaining
		}
	}
	if want <= 0 {
		d.eof = true
		return engine.StatusEndOfStream, nil
	}

	need := int(want) * d.srcStride
	if cap(d.raw) < need {
		d.raw = make([]byte, need)
	}
	n, err := io.ReadFull(d.rs, d.raw[:need])
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return engine.StatusOK, fmt.Errorf("reading pcm data: %w", err)
	}

	frames := n / d.srcStride
	if frames == 0 {
		d.eof = true
		return engine.StatusEndOfStream, nil
	}

	pkt.StreamIndex = 0
	pkt.PTS = d.pos
	pkt.TimeBase = d.stream.TimeBase
	pkt.Data = d.payload(frames)
	d.pos += int64(frames)
	if frames < int(want) {
		d.eof = true
	}
	return engine.StatusOK, nil
}

// payload returns the packet bytes for the first frames of d.raw,
// widening 24-bit samples into the engine's 32-bit container.
func (d *demuxer) payload(frames int) []byte {
	n := frames * d.srcStride
	if d.srcBits != 24 {
		return d.raw[:n]
	}

	samples := n / 3
	if cap(d.out) < samples*4 {
		d.out = make([]byte, samples*4)
	}
	out := d.out[:samples*4]
	for i := 0; i < samples; i++ {
		s := int32(d.raw[i*3]) | int32(d.raw[i*3+1])<<8 | int32(d.raw[i*3+2])<<16
		if s&0x800000 != 0 {
			s |= ^int32(0xFFFFFF)
		}
		binary.LittleEndian.PutUint32(out[i*4:], uint32(s<<8))
	}
	return out
}

func (d *demuxer) Seek(streamIndex int, timestamp int64) error {
	if streamIndex != 0 {
		return ErrBadStream
	}
	if timestamp < 0 {
		timestamp = 0
	}
	if d.dataFrames != engine.NoTimestamp && timestamp > d.dataFrames {
		timestamp = d.dataFrames
	}

	if _, err := d.rs.Seek(d.dataStart+timestamp*int64(d.srcStride), io.SeekStart); err != nil {
		return fmt.Errorf("seeking pcm data: %w", err)
	}
	d.pos = timestamp
	d.eof = false
	return nil
}

func (d *demuxer) SetDiscard(int, bool) {}

func (d *demuxer) Close() error {
	d.raw, d.out = nil, nil
	return nil
}
