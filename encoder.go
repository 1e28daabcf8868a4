// SPDX-License-Identifier: EPL-2.0

package soundflow

import (
	"errors"
	"fmt"

	"github.com/LuoYun-Team/SoundFlow/convert"
	"github.com/LuoYun-Team/SoundFlow/engine"
	"github.com/LuoYun-Team/SoundFlow/pcm"
)

// EncoderConfig wires an Encoder to the host's output stream.
//
// OnWrite is required; the destination is treated as write-only, so
// container headers are emitted in streaming form and never patched.
type EncoderConfig struct {
	// Format names the output container ("wav", "flac").
	Format string

	OnWrite  WriteProc
	UserData any

	// InputFormat describes the frames handed to WritePCMFrames.
	InputFormat pcm.Format
	Channels    int
	SampleRate  int
}

// Encoder pushes interleaved PCM frames into a containerized audio
// stream delivered through a host callback.
//
// An Encoder is created empty, initialized once with Init, fed with
// WritePCMFrames, and finished with Close, which flushes the codec and
// writes the container trailer. It is not safe for concurrent use.
type Encoder struct {
	writer *callbackWriter
	codec  engine.Encoder
	mux    engine.Muxer
	conv   *convert.Converter

	inputFormat pcm.Format
	channels    int
	sampleRate  int
	frameStride int // bytes per input frame
	codecFormat engine.SampleFormat
	streamBase  engine.Rational

	nextPTS int64
	frame   engine.Frame
	pkt     engine.Packet
	buf     []byte
	closed  bool
}

// NewEncoder returns an uninitialized Encoder.
func NewEncoder() *Encoder { return &Encoder{} }

// Init prepares encoding into the named container format. On failure
// the returned error wraps the Result classifying the stage that
// failed; a partially initialized encoder must not be used further.
func (e *Encoder) Init(cfg EncoderConfig) error {
	if cfg.OnWrite == nil || cfg.Channels <= 0 || cfg.SampleRate <= 0 {
		return ResultInvalidArgs
	}

	format, ok := engine.GuessOutputFormat(cfg.Format)
	if !ok {
		return ResultEncoderFormatNotFound
	}
	if format.NewEncoder == nil {
		return ResultEncoderCodecNotFound
	}

	codec := format.NewEncoder()
	native := codec.NativeFormats()
	if len(native) == 0 {
		return ResultEncoderCodecNotFound
	}

	codecCfg := engine.CodecConfig{
		SampleFormat: native[0],
		Channels:     cfg.Channels,
		SampleRate:   cfg.SampleRate,
		TimeBase:     engine.Rational{Num: 1, Den: int64(cfg.SampleRate)},
		GlobalHeader: format.GlobalHeader,
	}
	if err := codec.Open(codecCfg); err != nil {
		return fmt.Errorf("%w: %w", ResultEncoderCodecOpenFailed, err)
	}

	info := engine.StreamInfo{
		Index:        0,
		Type:         engine.MediaTypeAudio,
		Codec:        format.Name,
		SampleFormat: codecCfg.SampleFormat,
		Channels:     cfg.Channels,
		SampleRate:   cfg.SampleRate,
		TimeBase:     codec.TimeBase(),
		Duration:     engine.NoTimestamp,
		ExtraData:    codec.ExtraData(),
	}

	writer := newCallbackWriter(cfg.OnWrite, cfg.UserData)
	mux, err := format.NewMuxer(writer, info)
	if err != nil {
		codec.Close()
		return fmt.Errorf("%w: %w", ResultEncoderStreamAlloc, err)
	}
	if err := mux.WriteHeader(); err != nil {
		codec.Close()
		return fmt.Errorf("%w: %w", classifyWriteError(err, ResultEncoderWriteHeader), err)
	}

	if !cfg.InputFormat.Valid() {
		codec.Close()
		return ResultEncoderInvalidInputFormat
	}
	conv, err := convert.New(cfg.InputFormat.Native(), codecCfg.SampleFormat, cfg.Channels)
	if err != nil {
		codec.Close()
		return fmt.Errorf("%w: %w", ResultEncoderResamplerInitFailed, err)
	}

	e.writer = writer
	e.codec = codec
	e.mux = mux
	e.conv = conv
	e.inputFormat = cfg.InputFormat
	e.channels = cfg.Channels
	e.sampleRate = cfg.SampleRate
	e.frameStride = cfg.Channels * cfg.InputFormat.BytesPerSample()
	e.codecFormat = codecCfg.SampleFormat
	e.streamBase = info.TimeBase
	e.nextPTS = 0
	e.closed = false
	return nil
}

// classifyWriteError separates host I/O failures from everything else,
// so a refused write keeps its identity through wrapping.
func classifyWriteError(err error, fallback Result) Result {
	if errors.Is(err, ResultEncoderWriteFailed) {
		return ResultEncoderWriteFailed
	}
	return fallback
}

// WritePCMFrames encodes frameCount frames of interleaved PCM from src
// and hands the resulting packets to the container. The write is
// all-or-nothing: the returned count is frameCount on success and the
// frames written before the failure otherwise.
func (e *Encoder) WritePCMFrames(src []byte, frameCount int64) (int64, error) {
	if e.codec == nil || e.closed || src == nil || frameCount <= 0 {
		return 0, ResultInvalidArgs
	}
	// Divide rather than multiply so oversized counts cannot overflow
	// past the guard.
	if frameCount > int64(len(src))/int64(e.frameStride) {
		return 0, ResultInvalidArgs
	}

	// Repack the caller's buffer as one frame in the input format, then
	// convert it whole into the codec's native layout.
	in := engine.Frame{
		Format:     e.inputFormat.Native(),
		Channels:   e.channels,
		SampleRate: e.sampleRate,
		NumSamples: int(frameCount),
		Data:       [][]byte{src[:frameCount*int64(e.frameStride)]},
		PTS:        e.nextPTS,
	}

	outStride := e.channels * e.codecFormat.BytesPerSample()
	if need := int(frameCount) * outStride; cap(e.buf) < need {
		e.buf = make([]byte, need)
	}
	n, err := e.conv.Convert(e.buf[:int(frameCount)*outStride], int(frameCount), &in)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ResultEncoderEncodingFailed, err)
	}

	e.frame = engine.Frame{
		Format:     e.codecFormat,
		Channels:   e.channels,
		SampleRate: e.sampleRate,
		NumSamples: n,
		Data:       [][]byte{e.buf[:n*outStride]},
		PTS:        e.nextPTS,
	}
	e.nextPTS += frameCount

	if err := e.encodeAndWrite(&e.frame); err != nil {
		return 0, err
	}
	return frameCount, nil
}

// encodeAndWrite runs the send/receive loop until the codec is out of
// packets. A nil frame flushes the codec.
func (e *Encoder) encodeAndWrite(f *engine.Frame) error {
	if err := e.codec.SendFrame(f); err != nil {
		return fmt.Errorf("%w: %w", ResultEncoderEncodingFailed, err)
	}

	for {
		status, err := e.codec.ReceivePacket(&e.pkt)
		if err != nil {
			return fmt.Errorf("%w: %w", ResultEncoderEncodingFailed, err)
		}
		if status != engine.StatusOK {
			return nil
		}

		// Packet timestamps move from the codec's time base to the
		// container stream's.
		e.pkt.PTS = engine.Rescale(e.pkt.PTS, e.pkt.TimeBase, e.streamBase)
		e.pkt.TimeBase = e.streamBase
		e.pkt.StreamIndex = 0

		if err := e.mux.WritePacket(&e.pkt); err != nil {
			return fmt.Errorf("%w: %w", classifyWriteError(err, ResultEncoderEncodingFailed), err)
		}
	}
}

// Close flushes the codec, writes the container trailer, and pushes any
// staged bytes to the host. Close always runs the full teardown; the
// first error wins.
func (e *Encoder) Close() error {
	if e.codec == nil {
		return nil
	}

	err := e.encodeAndWrite(nil)

	if terr := e.mux.WriteTrailer(); err == nil && terr != nil {
		err = fmt.Errorf("%w: %w", classifyWriteError(terr, ResultEncoderEncodingFailed), terr)
	}
	if ferr := e.writer.Flush(); err == nil && ferr != nil {
		err = ferr
	}

	if cerr := e.codec.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("%w: %w", ResultEncoderEncodingFailed, cerr)
	}
	e.codec = nil
	e.mux = nil
	e.conv = nil
	e.closed = true
	return err
}
