// SPDX-License-Identifier: EPL-2.0

package vorbis

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/jfreymuth/oggvorbis"

	"github.com/LuoYun-Team/SoundFlow/engine"
)

const packetFrames = 4096

func init() {
	engine.RegisterInputFormat(engine.InputFormat{
		Name:  "ogg",
		Probe: probe,
		Open:  open,
	})
}

func probe(b []byte) int {
	if len(b) >= 4 && bytes.Equal(b[:4], []byte("OggS")) {
		return 100
	}
	return 0
}

type demuxer struct {
	r      *oggvorbis.Reader
	stream engine.StreamInfo
	pos    int64
	eof    bool
	vals   []float32
	raw    []byte
}

func open(rs io.ReadSeeker, _ engine.OpenOptions) (engine.Demuxer, error) {
	r, err := newReader(rs)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotOggVorbis, err)
	}

	d := &demuxer{r: r}
	d.stream = engine.StreamInfo{
		Index:        0,
		Type:         engine.MediaTypeAudio,
		Codec:        engine.CodecPCM,
		SampleFormat: engine.FormatF32,
		Channels:     r.Channels(),
		SampleRate:   r.SampleRate(),
		TimeBase:     engine.Rational{Num: 1, Den: int64(r.SampleRate())},
		Duration:     r.Length(),
		Score:        100,
	}
	return d, nil
}

// newReader opens an Ogg Vorbis stream. oggvorbis panics while
// locating the last granule position of a stream whose pages are
// truncated or corrupt, so the panic is converted to an error here.
func newReader(rs io.ReadSeeker) (r *oggvorbis.Reader, err error) {
	defer func() {
		if p := recover(); p != nil {
			r, err = nil, fmt.Errorf("corrupt ogg page: %v", p)
		}
	}()
	return oggvorbis.NewReader(rs)
}

func (d *demuxer) Streams() []engine.StreamInfo { return []engine.StreamInfo{d.stream} }

func (d *demuxer) Duration() int64 { return engine.NoTimestamp }

func (d *demuxer) ReadPacket(pkt *engine.Packet) (engine.Status, error) {
	if d.eof {
		return engine.StatusEndOfStream, nil
	}

	ch := d.stream.Channels
	if cap(d.vals) < packetFrames*ch {
		d.vals = make([]float32, packetFrames*ch)
	}

	// Read returns interleaved values and may deliver short counts at
	// page boundaries; fill a whole packet before handing it over.
	total := 0
	for total < packetFrames*ch {
		n, err := d.r.Read(d.vals[total : packetFrames*ch])
		total += n
		if err != nil {
			if errors.Is(err, io.EOF) {
				d.eof = true
				break
			}
			return engine.StatusOK, fmt.Errorf("decoding vorbis stream: %w", err)
		}
	}

	total -= total % ch
	if total == 0 {
		d.eof = true
		return engine.StatusEndOfStream, nil
	}

	if cap(d.raw) < total*4 {
		d.raw = make([]byte, total*4)
	}
	buf := d.raw[:total*4]
	for i, v := range d.vals[:total] {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}

	pkt.StreamIndex = 0
	pkt.Data = buf
	pkt.PTS = d.pos
	pkt.TimeBase = d.stream.TimeBase
	d.pos += int64(total / ch)
	return engine.StatusOK, nil
}

func (d *demuxer) Seek(streamIndex int, timestamp int64) error {
	if streamIndex != 0 {
		return ErrBadStream
	}
	if timestamp < 0 {
		timestamp = 0
	}
	if length := d.r.Length(); timestamp > length {
		timestamp = length
	}
	if err := d.r.SetPosition(timestamp); err != nil {
		return fmt.Errorf("seeking vorbis stream: %w", err)
	}
	d.pos = timestamp
	d.eof = false
	return nil
}

func (d *demuxer) SetDiscard(int, bool) {}

func (d *demuxer) Close() error {
	d.vals, d.raw = nil, nil
	return nil
}
