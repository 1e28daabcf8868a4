// SPDX-License-Identifier: EPL-2.0

package soundflow

import (
	"fmt"
	"time"

	"github.com/LuoYun-Team/SoundFlow/convert"
	"github.com/LuoYun-Team/SoundFlow/engine"
	"github.com/LuoYun-Team/SoundFlow/pcm"
)

// Probe limits applied when opening an input container.
const (
	probeSize       = 5000000
	analyzeDuration = 10000000 * time.Microsecond
)

// DecoderConfig wires a Decoder to the host's stream.
//
// OnRead is required. OnSeek may be nil for purely sequential streams:
// seeks landing inside the staging buffer, including the probe rewind
// during open, are served from it, and anything past the staged window
// fails. UserData is handed back verbatim on every callback.
type DecoderConfig struct {
	OnRead   ReadProc
	OnSeek   SeekProc
	UserData any

	// TargetFormat is the sample format ReadPCMFrames delivers,
	// independent of what the source stream carries.
	TargetFormat pcm.Format
}

// Decoder pulls interleaved PCM frames out of a compressed or
// containerized audio stream supplied through host callbacks.
//
// A Decoder is created empty, initialized once with Init, and released
// with Close. It is not safe for concurrent use.
type Decoder struct {
	demux       engine.Demuxer
	codec       engine.Decoder
	conv        *convert.Converter
	stream      engine.StreamInfo
	streamIndex int

	targetFormat pcm.Format
	nativeFormat pcm.Format
	frameStride  int // bytes per output frame

	pkt      engine.Packet
	frame    engine.Frame
	draining bool
}

// NewDecoder returns an uninitialized Decoder.
func NewDecoder() *Decoder { return &Decoder{streamIndex: -1} }

// Init opens the stream behind cfg's callbacks, selects the best audio
// stream, and prepares decoding into cfg.TargetFormat. On failure the
// returned error wraps the Result classifying the stage that failed.
func (d *Decoder) Init(cfg DecoderConfig) error {
	if cfg.OnRead == nil {
		return ResultInvalidArgs
	}
	if !cfg.TargetFormat.Valid() {
		return ResultDecoderInvalidTargetFormat
	}

	reader := newCallbackReader(cfg.OnRead, cfg.OnSeek, cfg.UserData)
	demux, err := engine.OpenInput(reader, engine.OpenOptions{
		ProbeSize:       probeSize,
		AnalyzeDuration: analyzeDuration,
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ResultDecoderOpenInput, err)
	}

	streams := demux.Streams()
	if len(streams) == 0 {
		demux.Close()
		return ResultDecoderFindStreamInfo
	}

	// Best audio stream wins; everything else is discarded.
	best := -1
	for i, s := range streams {
		if s.Type != engine.MediaTypeAudio {
			continue
		}
		if best < 0 || s.Score > streams[best].Score {
			best = i
		}
	}
	if best < 0 {
		demux.Close()
		return ResultDecoderNoAudioStream
	}
	for i, s := range streams {
		if i != best {
			demux.SetDiscard(s.Index, true)
		}
	}
	stream := streams[best]

	open, ok := engine.FindDecoder(stream.Codec)
	if !ok {
		demux.Close()
		return ResultDecoderCodecNotFound
	}
	codec, err := open(stream)
	if err != nil {
		demux.Close()
		return fmt.Errorf("%w: %w", ResultDecoderCodecOpenFailed, err)
	}

	conv, err := convert.New(stream.SampleFormat, cfg.TargetFormat.Native(), stream.Channels)
	if err != nil {
		codec.Close()
		demux.Close()
		return fmt.Errorf("%w: %w", ResultDecoderResamplerInitFailed, err)
	}

	d.demux = demux
	d.codec = codec
	d.conv = conv
	d.stream = stream
	d.streamIndex = stream.Index
	d.targetFormat = cfg.TargetFormat
	d.nativeFormat = pcm.FromNative(stream.SampleFormat)
	d.frameStride = stream.Channels * cfg.TargetFormat.BytesPerSample()
	d.draining = false
	return nil
}

// NativeFormat reports the source stream's own sample format, mapped
// into the public format set. Streams whose native layout has no
// public equivalent report FormatUnknown.
func (d *Decoder) NativeFormat() pcm.Format { return d.nativeFormat }

// Channels reports the source stream's channel count. Output frames
// always carry this many channels.
func (d *Decoder) Channels() int { return d.stream.Channels }

// SampleRate reports the source stream's sample rate in Hz.
func (d *Decoder) SampleRate() int { return d.stream.SampleRate }

// ReadPCMFrames decodes up to frameCount frames of interleaved PCM in
// the target format into dst and returns the number of frames
// produced. Short reads only happen at end of stream; a count of 0
// with a nil error means the stream is exhausted.
func (d *Decoder) ReadPCMFrames(dst []byte, frameCount int64) (int64, error) {
	if d.demux == nil || dst == nil || frameCount <= 0 {
		return 0, ResultInvalidArgs
	}
	// Divide rather than multiply so oversized counts cannot overflow
	// past the guard.
	if frameCount > int64(len(dst))/int64(d.frameStride) {
		return 0, ResultInvalidArgs
	}

	var framesRead int64
	for framesRead < frameCount {
		out := dst[framesRead*int64(d.frameStride):]
		room := int(frameCount - framesRead)

		status, err := d.codec.ReceiveFrame(&d.frame)
		if err != nil {
			return framesRead, fmt.Errorf("%w: %w", ResultDecoderDecodingFailed, err)
		}

		switch status {
		case engine.StatusOK:
			n, err := d.conv.Convert(out, room, &d.frame)
			if err != nil {
				return framesRead, fmt.Errorf("%w: %w", ResultDecoderDecodingFailed, err)
			}
			framesRead += int64(n)
			continue

		case engine.StatusEndOfStream:
			// Codec is dry; hand out whatever the converter still holds.
			for framesRead < frameCount {
				n := d.conv.Drain(dst[framesRead*int64(d.frameStride):], int(frameCount-framesRead))
				if n == 0 {
					break
				}
				framesRead += int64(n)
			}
			return framesRead, nil
		}

		// StatusNeedMoreInput: feed the codec another packet.
		if d.draining {
			return framesRead, nil
		}

		readStatus, err := d.demux.ReadPacket(&d.pkt)
		switch {
		case err != nil:
			return framesRead, fmt.Errorf("%w: %w", ResultDecoderDecodingFailed, err)

		case readStatus == engine.StatusEndOfStream:
			// Start the drain with the nil sentinel, sent exactly once.
			if err := d.codec.SendPacket(nil); err != nil {
				return framesRead, fmt.Errorf("%w: %w", ResultDecoderDecodingFailed, err)
			}
			d.draining = true

		default:
			if d.pkt.StreamIndex == d.streamIndex {
				if err := d.codec.SendPacket(&d.pkt); err != nil {
					return framesRead, fmt.Errorf("%w: %w", ResultDecoderDecodingFailed, err)
				}
			}
		}
	}
	return framesRead, nil
}

// SeekToPCMFrame repositions the decoder so the next read starts at or
// near frameIndex. Codec and converter state from before the seek is
// discarded.
func (d *Decoder) SeekToPCMFrame(frameIndex int64) error {
	if d.demux == nil || frameIndex < 0 {
		return ResultInvalidArgs
	}

	timestamp := engine.Rescale(frameIndex,
		engine.Rational{Num: 1, Den: int64(d.stream.SampleRate)}, d.stream.TimeBase)

	d.codec.Flush()
	d.conv.Reset()

	if err := d.demux.Seek(d.streamIndex, timestamp); err != nil {
		return fmt.Errorf("%w: %w", ResultDecoderSeekFailed, err)
	}
	d.draining = false
	return nil
}

// LengthInPCMFrames reports the stream length in frames: the stream's
// own duration when declared, the container duration as fallback, and
// 0 when neither is known. Negative values signal an unusable decoder.
func (d *Decoder) LengthInPCMFrames() int64 {
	if d.demux == nil {
		return -1
	}
	sampleBase := engine.Rational{Num: 1, Den: int64(d.stream.SampleRate)}
	if d.stream.Duration != engine.NoTimestamp {
		return engine.Rescale(d.stream.Duration, d.stream.TimeBase, sampleBase)
	}
	if cd := d.demux.Duration(); cd != engine.NoTimestamp {
		return engine.Rescale(cd, engine.MicrosecondBase, sampleBase)
	}
	return 0
}

// Close releases the decoder. It is safe to call on a decoder whose
// Init failed or was never run.
func (d *Decoder) Close() error {
	var err error
	if d.codec != nil {
		err = d.codec.Close()
		d.codec = nil
	}
	if d.demux != nil {
		if cerr := d.demux.Close(); err == nil {
			err = cerr
		}
		d.demux = nil
	}
	d.conv = nil
	d.streamIndex = -1
	return err
}
