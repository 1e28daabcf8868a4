// SPDX-License-Identifier: EPL-2.0

package mp3

import (
	"errors"
	"fmt"
	"io"

	gomp3 "github.com/hajimehoshi/go-mp3"

	"github.com/LuoYun-Team/SoundFlow/engine"
)

// go-mp3 always emits 16-bit stereo, four bytes per frame.
const frameStride = 4

const packetFrames = 4096

func init() {
	engine.RegisterInputFormat(engine.InputFormat{
		Name:  "mp3",
		Probe: probe,
		Open:  open,
	})
}

// probe accepts an ID3v2 tag or a bare MPEG audio sync word. The sync
// word alone is weak evidence (it can appear in arbitrary binary data),
// so it scores well below a container magic.
func probe(b []byte) int {
	if len(b) >= 3 && b[0] == 'I' && b[1] == 'D' && b[2] == '3' {
		return 90
	}
	if len(b) >= 2 && b[0] == 0xFF && b[1]&0xE0 == 0xE0 {
		// Layer and version bits must be valid.
		if b[1]&0x18 != 0x08 && b[1]&0x06 != 0 {
			return 25
		}
	}
	return 0
}

type demuxer struct {
	dec    *gomp3.Decoder
	stream engine.StreamInfo
	frames int64 // total, from the decoded byte length
	pos    int64
	eof    bool
	raw    []byte
}

func open(rs io.ReadSeeker, _ engine.OpenOptions) (engine.Demuxer, error) {
	dec, err := gomp3.NewDecoder(rs)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotMP3, err)
	}

	d := &demuxer{
		dec:    dec,
		frames: dec.Length() / frameStride,
	}
	d.stream = engine.StreamInfo{
		Index:        0,
		Type:         engine.MediaTypeAudio,
		Codec:        engine.CodecPCM,
		SampleFormat: engine.FormatS16,
		Channels:     2,
		SampleRate:   dec.SampleRate(),
		TimeBase:     engine.Rational{Num: 1, Den: int64(dec.SampleRate())},
		Duration:     d.frames,
		Score:        90,
	}
	return d, nil
}

func (d *demuxer) Streams() []engine.StreamInfo { return []engine.StreamInfo{d.stream} }

func (d *demuxer) Duration() int64 { return engine.NoTimestamp }

func (d *demuxer) ReadPacket(pkt *engine.Packet) (engine.Status, error) {
	if d.eof {
		return engine.StatusEndOfStream, nil
	}

	if cap(d.raw) < packetFrames*frameStride {
		d.raw = make([]byte, packetFrames*frameStride)
	}
	buf := d.raw[:packetFrames*frameStride]
	n, err := io.ReadFull(d.dec, buf)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return engine.StatusOK, fmt.Errorf("decoding mpeg frames: %w", err)
	}

	// Trim a trailing partial frame left by a truncated stream.
	n -= n % frameStride
	if n == 0 {
		d.eof = true
		return engine.StatusEndOfStream, nil
	}

	pkt.StreamIndex = 0
	pkt.Data = buf[:n]
	pkt.PTS = d.pos
	pkt.TimeBase = d.stream.TimeBase
	d.pos += int64(n / frameStride)
	if n < len(buf) {
		d.eof = true
	}
	return engine.StatusOK, nil
}

func (d *demuxer) Seek(streamIndex int, timestamp int64) error {
	if streamIndex != 0 {
		return ErrBadStream
	}
	if timestamp < 0 {
		timestamp = 0
	}
	if timestamp > d.frames {
		timestamp = d.frames
	}
	if _, err := d.dec.Seek(timestamp*frameStride, io.SeekStart); err != nil {
		return fmt.Errorf("seeking mpeg stream: %w", err)
	}
	d.pos = timestamp
	d.eof = false
	return nil
}

func (d *demuxer) SetDiscard(int, bool) {}

func (d *demuxer) Close() error {
	d.raw = nil
	return nil
}
