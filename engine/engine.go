// SPDX-License-Identifier: EPL-2.0

package engine

import (
	"math"
	"time"
)

// SampleFormat is the engine's native sample format enumeration. Packed
// formats keep all channels interleaved in a single plane; planar formats
// keep one plane per channel.
type SampleFormat int

const (
	FormatNone SampleFormat = iota
	FormatU8
	FormatS16
	FormatS32
	FormatF32
	FormatF64
	FormatU8P
	FormatS16P
	FormatS32P
	FormatF32P
	FormatF64P
)

// BytesPerSample returns the storage size of a single sample, or 0 for
// FormatNone.
func (f SampleFormat) BytesPerSample() int {
	switch f {
	case FormatU8, FormatU8P:
		return 1
	case FormatS16, FormatS16P:
		return 2
	case FormatS32, FormatS32P, FormatF32, FormatF32P:
		return 4
	case FormatF64, FormatF64P:
		return 8
	default:
		return 0
	}
}

// IsPlanar reports whether samples are stored one plane per channel.
func (f SampleFormat) IsPlanar() bool {
	switch f {
	case FormatU8P, FormatS16P, FormatS32P, FormatF32P, FormatF64P:
		return true
	default:
		return false
	}
}

// Packed returns the interleaved variant of f. Packed formats map to
// themselves.
func (f SampleFormat) Packed() SampleFormat {
	switch f {
	case FormatU8P:
		return FormatU8
	case FormatS16P:
		return FormatS16
	case FormatS32P:
		return FormatS32
	case FormatF32P:
		return FormatF32
	case FormatF64P:
		return FormatF64
	default:
		return f
	}
}

func (f SampleFormat) String() string {
	switch f {
	case FormatU8:
		return "u8"
	case FormatS16:
		return "s16"
	case FormatS32:
		return "s32"
	case FormatF32:
		return "f32"
	case FormatF64:
		return "f64"
	case FormatU8P:
		return "u8p"
	case FormatS16P:
		return "s16p"
	case FormatS32P:
		return "s32p"
	case FormatF32P:
		return "f32p"
	case FormatF64P:
		return "f64p"
	default:
		return "none"
	}
}

// Status is the tagged outcome of a packet/frame exchange with a demuxer
// or codec. It replaces in-band sentinel return codes: a component either
// produced data, is starved for input, or has reached the end of its
// stream. Genuine failures travel separately as errors.
type Status int

const (
	StatusOK Status = iota
	StatusNeedMoreInput
	StatusEndOfStream
)

// NoTimestamp marks an unknown timestamp or duration.
const NoTimestamp = math.MinInt64

// TimeUnit is the engine's internal time base for container-level
// durations: one microsecond per tick.
const TimeUnit = int64(time.Second / time.Microsecond)

// MediaType classifies a container stream.
type MediaType int

const (
	MediaTypeUnknown MediaType = iota
	MediaTypeAudio
	MediaTypeData
)

// StreamInfo describes one stream of a container.
type StreamInfo struct {
	Index        int
	Type         MediaType
	Codec        string // codec identifier resolved against the codec registry
	SampleFormat SampleFormat
	Channels     int
	SampleRate   int
	TimeBase     Rational
	Duration     int64 // in TimeBase units, NoTimestamp if the stream does not declare one
	Score        int   // stream selection score, higher wins
	ExtraData    []byte
}

// Packet is one unit of (possibly compressed) stream data. The Data slice
// may alias a buffer owned by the producer and is only valid until the
// next call that fills the packet; consumers that keep data must copy.
type Packet struct {
	StreamIndex int
	Data        []byte
	PTS         int64
	TimeBase    Rational
}

// Frame is one block of decoded PCM. Data holds a single plane for packed
// formats and one plane per channel for planar formats.
type Frame struct {
	Format     SampleFormat
	Channels   int
	SampleRate int
	NumSamples int // frames per channel
	Data       [][]byte
	PTS        int64
}

// Demuxer splits an opened container into per-stream packets.
type Demuxer interface {
	// Streams lists the container's streams. The slice is stable for the
	// demuxer's lifetime.
	Streams() []StreamInfo

	// Duration returns the container-level duration in TimeUnit ticks,
	// or NoTimestamp if unknown.
	Duration() int64

	// ReadPacket fills pkt with the next packet. It returns
	// StatusEndOfStream once the input is exhausted; that is not an
	// error.
	ReadPacket(pkt *Packet) (Status, error)

	// Seek repositions the stream so that the next packet read for
	// streamIndex is at or before timestamp (in the stream's TimeBase).
	Seek(streamIndex int, timestamp int64) error

	// SetDiscard tells the demuxer that packets of the given stream will
	// be thrown away, so it may skip work for them.
	SetDiscard(streamIndex int, discard bool)

	Close() error
}

// Decoder is the codec-side decode contract. Packets go in with
// SendPacket; a nil packet is the drain sentinel and must be sent at most
// once. Decoded frames come out of ReceiveFrame, which reports
// StatusNeedMoreInput when starved and StatusEndOfStream once the drain
// sentinel has been consumed and all buffered frames are out.
type Decoder interface {
	SendPacket(pkt *Packet) error
	ReceiveFrame(f *Frame) (Status, error)

	// Flush discards buffered codec state after a seek.
	Flush()

	Close() error
}

// CodecConfig configures an Encoder before Open. GlobalHeader must be set
// before Open when the output container requires header data up front;
// codecs read it at open time.
type CodecConfig struct {
	SampleFormat SampleFormat
	Channels     int
	SampleRate   int
	TimeBase     Rational
	GlobalHeader bool
}

// Encoder is the codec-side encode contract, mirroring Decoder: frames go
// in with SendFrame (nil flushes), packets come out of ReceivePacket.
type Encoder interface {
	// NativeFormats lists the sample formats the codec accepts, in
	// preference order. It is valid before Open.
	NativeFormats() []SampleFormat

	Open(cfg CodecConfig) error

	// ExtraData returns the codec's global header bytes after Open, nil
	// if the codec has none.
	ExtraData() []byte

	TimeBase() Rational

	SendFrame(f *Frame) error
	ReceivePacket(pkt *Packet) (Status, error)

	Close() error
}

// Muxer interleaves encoded packets into a container. WriteHeader is
// called exactly once before the first packet, WriteTrailer exactly once
// after the last.
type Muxer interface {
	WriteHeader() error
	WritePacket(pkt *Packet) error
	WriteTrailer() error
}
