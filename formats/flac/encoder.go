// SPDX-License-Identifier: EPL-2.0

package flac

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	mewkiz "github.com/mewkiz/flac"
	"github.com/mewkiz/flac/frame"
	"github.com/mewkiz/flac/meta"

	"github.com/LuoYun-Team/SoundFlow/engine"
)

// Samples per encoded FLAC block. Input frames of any size are
// repacked into fixed blocks; a short final block is only emitted by
// the flush sentinel.
const blockSamples = 4096

type encoder struct {
	cfg   engine.CodecConfig
	bits  uint8 // bits per sample on the wire
	wide  bool  // 32-bit input container
	extra []byte

	out     bytes.Buffer
	enc     *mewkiz.Encoder
	planes  [][]int32 // buffered samples per channel
	held    int       // frames currently buffered
	written int64     // frames handed to the flac encoder
	num     uint64    // block index
	pending []engine.Packet
	done    bool
}

func (e *encoder) NativeFormats() []engine.SampleFormat {
	return []engine.SampleFormat{engine.FormatS16, engine.FormatS32}
}

func (e *encoder) Open(cfg engine.CodecConfig) error {
	switch cfg.SampleFormat {
	case engine.FormatS16:
		e.bits = 16
	case engine.FormatS32:
		// The 32-bit container carries 24 significant bits, matching
		// how narrow PCM is widened on the decode side.
		e.bits = 24
		e.wide = true
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedEncoding, cfg.SampleFormat)
	}
	if cfg.Channels <= 0 || cfg.Channels > 8 || cfg.SampleRate <= 0 {
		return ErrUnsupportedLayout
	}
	e.cfg = cfg

	info := &meta.StreamInfo{
		BlockSizeMin:  blockSamples,
		BlockSizeMax:  blockSamples,
		SampleRate:    uint32(cfg.SampleRate),
		NChannels:     uint8(cfg.Channels),
		BitsPerSample: e.bits,
	}
	enc, err := mewkiz.NewEncoder(&e.out, info)
	if err != nil {
		return fmt.Errorf("opening flac encoder: %w", err)
	}
	e.enc = enc

	// NewEncoder emits the fLaC marker and metadata immediately; that
	// prefix is the stream's global header, delivered out of band.
	e.extra = append([]byte(nil), e.out.Bytes()...)
	e.out.Reset()

	e.planes = make([][]int32, cfg.Channels)
	for ch := range e.planes {
		e.planes[ch] = make([]int32, 0, blockSamples*2)
	}
	return nil
}

func (e *encoder) ExtraData() []byte { return e.extra }

func (e *encoder) TimeBase() engine.Rational {
	return engine.Rational{Num: 1, Den: int64(e.cfg.SampleRate)}
}

func (e *encoder) SendFrame(f *engine.Frame) error {
	if e.enc == nil {
		return ErrUnsupportedLayout
	}
	if f == nil {
		if e.done {
			return nil
		}
		if e.held > 0 {
			if err := e.emitBlock(e.held); err != nil {
				return err
			}
		}
		if err := e.enc.Close(); err != nil {
			return fmt.Errorf("closing flac encoder: %w", err)
		}
		e.capture()
		e.done = true
		return nil
	}
	if e.done {
		return fmt.Errorf("frame after flush")
	}

	e.buffer(f)
	for e.held >= blockSamples {
		if err := e.emitBlock(blockSamples); err != nil {
			return err
		}
	}
	return nil
}

// buffer deinterleaves one packed input frame into the channel planes.
func (e *encoder) buffer(f *engine.Frame) {
	ch := e.cfg.Channels
	data := f.Data[0]
	if e.wide {
		for i := 0; i < f.NumSamples; i++ {
			for c := 0; c < ch; c++ {
				v := int32(binary.LittleEndian.Uint32(data[(i*ch+c)*4:]))
				e.planes[c] = append(e.planes[c], v>>8)
			}
		}
	} else {
		for i := 0; i < f.NumSamples; i++ {
			for c := 0; c < ch; c++ {
				v := int16(binary.LittleEndian.Uint16(data[(i*ch+c)*2:]))
				e.planes[c] = append(e.planes[c], int32(v))
			}
		}
	}
	e.held += f.NumSamples
}

func (e *encoder) emitBlock(n int) error {
	subframes := make([]*frame.Subframe, e.cfg.Channels)
	for ch := range subframes {
		samples := make([]int32, n)
		copy(samples, e.planes[ch][:n])
		subframes[ch] = &frame.Subframe{
			SubHeader: frame.SubHeader{Pred: frame.PredVerbatim},
			Samples:   samples,
			NSamples:  n,
		}
		e.planes[ch] = e.planes[ch][:copy(e.planes[ch], e.planes[ch][n:])]
	}

	f := &frame.Frame{
		Header: frame.Header{
			HasFixedBlockSize: true,
			BlockSize:         uint16(n),
			SampleRate:        uint32(e.cfg.SampleRate),
			Channels:          frame.Channels(e.cfg.Channels - 1),
			BitsPerSample:     e.bits,
			Num:               e.num,
		},
		Subframes: subframes,
	}
	if err := e.enc.WriteFrame(f); err != nil {
		return fmt.Errorf("encoding flac frame: %w", err)
	}
	e.num++
	e.held -= n
	e.capture()
	e.written += int64(n)
	return nil
}

// capture drains the encoder's output buffer into one packet.
func (e *encoder) capture() {
	if e.out.Len() == 0 {
		return
	}
	data := append([]byte(nil), e.out.Bytes()...)
	e.out.Reset()
	e.pending = append(e.pending, engine.Packet{
		StreamIndex: 0,
		Data:        data,
		PTS:         e.written,
		TimeBase:    e.TimeBase(),
	})
}

func (e *encoder) ReceivePacket(pkt *engine.Packet) (engine.Status, error) {
	if len(e.pending) == 0 {
		if e.done {
			return engine.StatusEndOfStream, nil
		}
		return engine.StatusNeedMoreInput, nil
	}
	*pkt = e.pending[0]
	e.pending = e.pending[1:]
	return engine.StatusOK, nil
}

func (e *encoder) Close() error {
	if e.enc != nil && !e.done {
		e.enc.Close()
	}
	e.enc = nil
	e.planes = nil
	e.pending = nil
	return nil
}

// muxer writes the raw FLAC stream: the global header from the codec
// parameters first, then each packet's bytes untouched.
type muxer struct {
	w    io.Writer
	info engine.StreamInfo
}

func newMuxer(w io.Writer, info engine.StreamInfo) (engine.Muxer, error) {
	return &muxer{w: w, info: info}, nil
}

func (m *muxer) WriteHeader() error {
	if len(m.info.ExtraData) == 0 {
		return ErrUnsupportedLayout
	}
	if _, err := m.w.Write(m.info.ExtraData); err != nil {
		return fmt.Errorf("writing flac header: %w", err)
	}
	return nil
}

func (m *muxer) WritePacket(pkt *engine.Packet) error {
	if _, err := m.w.Write(pkt.Data); err != nil {
		return fmt.Errorf("writing flac frame: %w", err)
	}
	return nil
}

func (m *muxer) WriteTrailer() error { return nil }
