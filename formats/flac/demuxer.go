// SPDX-License-Identifier: EPL-2.0

package flac

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	mewkiz "github.com/mewkiz/flac"

	"github.com/LuoYun-Team/SoundFlow/engine"
)

func init() {
	engine.RegisterInputFormat(engine.InputFormat{
		Name:  "flac",
		Probe: probe,
		Open:  open,
	})
	engine.RegisterOutputFormat(engine.OutputFormat{
		Name:         "flac",
		GlobalHeader: true,
		NewEncoder:   func() engine.Encoder { return &encoder{} },
		NewMuxer:     newMuxer,
	})
}

func probe(b []byte) int {
	if len(b) >= 4 && bytes.Equal(b[:4], []byte("fLaC")) {
		return 100
	}
	return 0
}

// demuxer exposes each FLAC frame as one planar PCM packet. Samples
// narrower than their container are shifted up to full scale, matching
// how the engine's sample formats are defined.
type demuxer struct {
	s      *mewkiz.Stream
	stream engine.StreamInfo
	depth  int // source bits per sample
	shift  uint
	wide   bool // 32-bit container
	pos    int64
	eof    bool
	raw    []byte
}

func open(rs io.ReadSeeker, _ engine.OpenOptions) (engine.Demuxer, error) {
	s, err := mewkiz.NewSeek(rs)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotFLAC, err)
	}
	info := s.Info

	d := &demuxer{s: s, depth: int(info.BitsPerSample)}
	format := engine.FormatS16P
	if d.depth > 16 {
		format = engine.FormatS32P
		d.wide = true
		d.shift = uint(32 - d.depth)
	} else {
		d.shift = uint(16 - d.depth)
	}

	duration := int64(engine.NoTimestamp)
	if info.NSamples > 0 {
		duration = int64(info.NSamples)
	}
	d.stream = engine.StreamInfo{
		Index:        0,
		Type:         engine.MediaTypeAudio,
		Codec:        engine.CodecPCM,
		SampleFormat: format,
		Channels:     int(info.NChannels),
		SampleRate:   int(info.SampleRate),
		TimeBase:     engine.Rational{Num: 1, Den: int64(info.SampleRate)},
		Duration:     duration,
		Score:        100,
	}
	return d, nil
}

func (d *demuxer) Streams() []engine.StreamInfo { return []engine.StreamInfo{d.stream} }

func (d *demuxer) Duration() int64 { return engine.NoTimestamp }

func (d *demuxer) ReadPacket(pkt *engine.Packet) (engine.Status, error) {
	if d.eof {
		return engine.StatusEndOfStream, nil
	}

	f, err := d.s.ParseNext()
	if err != nil {
		if errors.Is(err, io.EOF) {
			d.eof = true
			return engine.StatusEndOfStream, nil
		}
		return engine.StatusOK, fmt.Errorf("parsing flac frame: %w", err)
	}

	samples := int(f.Header.BlockSize)
	channels := len(f.Subframes)
	stride := 2
	if d.wide {
		stride = 4
	}

	need := samples * channels * stride
	if cap(d.raw) < need {
		d.raw = make([]byte, need)
	}
	buf := d.raw[:need]

	// One plane per channel, planes back to back.
	for ch, sub := range f.Subframes {
		plane := buf[ch*samples*stride:]
		if d.wide {
			for i, s := range sub.Samples[:samples] {
				binary.LittleEndian.PutUint32(plane[i*4:], uint32(s<<d.shift))
			}
		} else {
			for i, s := range sub.Samples[:samples] {
				binary.LittleEndian.PutUint16(plane[i*2:], uint16(int16(s<<d.shift)))
			}
		}
	}

	pkt.StreamIndex = 0
	pkt.Data = buf
	pkt.PTS = d.pos
	pkt.TimeBase = d.stream.TimeBase
	d.pos += int64(samples)
	return engine.StatusOK, nil
}

func (d *demuxer) Seek(streamIndex int, timestamp int64) error {
	if streamIndex != 0 {
		return ErrBadStream
	}
	if timestamp < 0 {
		timestamp = 0
	}
	// Seek lands on the start of the frame containing the target; the
	// next packet's timestamp reports the actual position.
	actual, err := d.s.Seek(uint64(timestamp))
	if err != nil {
		return fmt.Errorf("seeking flac stream: %w", err)
	}
	d.pos = int64(actual)
	d.eof = false
	return nil
}

func (d *demuxer) SetDiscard(int, bool) {}

func (d *demuxer) Close() error {
	d.raw = nil
	return d.s.Close()
}
