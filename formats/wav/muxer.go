// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/LuoYun-Team/SoundFlow/engine"
)

func init() {
	engine.RegisterOutputFormat(engine.OutputFormat{
		Name:       "wav",
		NewEncoder: func() engine.Encoder { return &encoder{} },
		NewMuxer:   newMuxer,
	})
}

// encoder passes 16-bit interleaved samples straight through to the
// container; WAV stores raw PCM, so "encoding" is a packetizing step.
type encoder struct {
	cfg    engine.CodecConfig
	queue  []engine.Packet
	opened bool
	done   bool
}

func (e *encoder) NativeFormats() []engine.SampleFormat {
	return []engine.SampleFormat{engine.FormatS16}
}

func (e *encoder) Open(cfg engine.CodecConfig) error {
	if cfg.SampleFormat != engine.FormatS16 {
		return fmt.Errorf("%w: %s", ErrUnsupportedEncoding, cfg.SampleFormat)
	}
	if cfg.Channels <= 0 || cfg.SampleRate <= 0 {
		return ErrUnsupportedLayout
	}
	e.cfg = cfg
	e.opened = true
	return nil
}

func (e *encoder) ExtraData() []byte { return nil }

func (e *encoder) TimeBase() engine.Rational {
	return engine.Rational{Num: 1, Den: int64(e.cfg.SampleRate)}
}

func (e *encoder) SendFrame(f *engine.Frame) error {
	if !e.opened {
		return ErrUnsupportedLayout
	}
	if f == nil {
		e.done = true
		return nil
	}
	if e.done {
		return fmt.Errorf("frame after flush")
	}
	data := make([]byte, f.NumSamples*e.cfg.Channels*2)
	copy(data, f.Data[0])
	e.queue = append(e.queue, engine.Packet{
		StreamIndex: 0,
		Data:        data,
		PTS:         f.PTS,
		TimeBase:    e.TimeBase(),
	})
	return nil
}

func (e *encoder) ReceivePacket(pkt *engine.Packet) (engine.Status, error) {
	if len(e.queue) == 0 {
		if e.done {
			return engine.StatusEndOfStream, nil
		}
		return engine.StatusNeedMoreInput, nil
	}
	*pkt = e.queue[0]
	e.queue = e.queue[1:]
	return engine.StatusOK, nil
}

func (e *encoder) Close() error {
	e.queue = nil
	return nil
}

// muxer emits a streaming RIFF file. The destination is write-only, so
// the RIFF and data sizes are written as the unknown-size marker and
// never patched; readers treat such files as data-until-EOF.
type muxer struct {
	w    io.Writer
	info engine.StreamInfo
}

func newMuxer(w io.Writer, info engine.StreamInfo) (engine.Muxer, error) {
	return &muxer{w: w, info: info}, nil
}

func (m *muxer) WriteHeader() error {
	stride := m.info.Channels * 2
	var header [44]byte
	copy(header[0:4], "RIFF")
	binary.LittleEndian.PutUint32(header[4:8], unknownChunkSize)
	copy(header[8:12], "WAVE")
	copy(header[12:16], "fmt ")
	binary.LittleEndian.PutUint32(header[16:20], 16)
	binary.LittleEndian.PutUint16(header[20:22], formatPCM)
	binary.LittleEndian.PutUint16(header[22:24], uint16(m.info.Channels))
	binary.LittleEndian.PutUint32(header[24:28], uint32(m.info.SampleRate))
	binary.LittleEndian.PutUint32(header[28:32], uint32(m.info.SampleRate*stride))
	binary.LittleEndian.PutUint16(header[32:34], uint16(stride))
	binary.LittleEndian.PutUint16(header[34:36], 16)
	copy(header[36:40], "data")
	binary.LittleEndian.PutUint32(header[40:44], unknownChunkSize)

	if _, err := m.w.Write(header[:]); err != nil {
		return fmt.Errorf("writing RIFF header: %w", err)
	}
	return nil
}

func (m *muxer) WritePacket(pkt *engine.Packet) error {
	if _, err := m.w.Write(pkt.Data); err != nil {
		return fmt.Errorf("writing pcm data: %w", err)
	}
	return nil
}

func (m *muxer) WriteTrailer() error { return nil }
