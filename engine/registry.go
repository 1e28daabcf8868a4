// SPDX-License-Identifier: EPL-2.0

package engine

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"
)

var (
	ErrFormatNotRecognized = errors.New("input format not recognized")
	ErrNoStreams           = errors.New("container declares no streams")
)

// OpenOptions bounds the work done while identifying and opening an
// input container.
type OpenOptions struct {
	// ProbeSize caps the number of bytes read while identifying the
	// container format.
	ProbeSize int

	// AnalyzeDuration caps the amount of stream content a demuxer may
	// inspect while establishing stream parameters.
	AnalyzeDuration time.Duration
}

// InputFormat describes a registered container reader.
type InputFormat struct {
	Name string

	// Probe scores the likelihood that b is the start of this format,
	// 0 (no) to 100 (certain). b may be shorter than the format's
	// preferred window.
	Probe func(b []byte) int

	// Open constructs a demuxer positioned at the start of rs.
	Open func(rs io.ReadSeeker, opts OpenOptions) (Demuxer, error)
}

// OutputFormat describes a registered container writer and its default
// audio codec.
type OutputFormat struct {
	Name string

	// GlobalHeader reports whether the container needs the codec's
	// header data before the first packet.
	GlobalHeader bool

	// NewEncoder constructs the format's default audio codec, not yet
	// opened.
	NewEncoder func() Encoder

	// NewMuxer constructs a muxer writing to w for the single audio
	// stream described by info.
	NewMuxer func(w io.Writer, info StreamInfo) (Muxer, error)
}

var registry = struct {
	mtx     sync.Mutex
	inputs  []InputFormat
	outputs map[string]OutputFormat
	codecs  map[string]func(info StreamInfo) (Decoder, error)
}{
	outputs: make(map[string]OutputFormat),
	codecs:  make(map[string]func(info StreamInfo) (Decoder, error)),
}

// RegisterInputFormat adds a container reader to the probe list. Formats
// are probed in registration order; ties go to the earlier registration.
func RegisterInputFormat(f InputFormat) {
	registry.mtx.Lock()
	defer registry.mtx.Unlock()

	registry.inputs = append(registry.inputs, f)
}

// RegisterOutputFormat adds a container writer under its short name.
func RegisterOutputFormat(f OutputFormat) {
	registry.mtx.Lock()
	defer registry.mtx.Unlock()

	registry.outputs[f.Name] = f
}

// RegisterCodec adds a decode-side codec constructor under its codec
// identifier.
func RegisterCodec(name string, open func(info StreamInfo) (Decoder, error)) {
	registry.mtx.Lock()
	defer registry.mtx.Unlock()

	registry.codecs[name] = open
}

// GuessOutputFormat resolves a short container format name ("wav",
// "flac", ...).
func GuessOutputFormat(name string) (OutputFormat, bool) {
	registry.mtx.Lock()
	defer registry.mtx.Unlock()

	f, ok := registry.outputs[name]
	return f, ok
}

// FindDecoder resolves a codec identifier from a StreamInfo.
func FindDecoder(name string) (func(info StreamInfo) (Decoder, error), bool) {
	registry.mtx.Lock()
	defer registry.mtx.Unlock()

	open, ok := registry.codecs[name]
	return open, ok
}

func inputFormats() []InputFormat {
	registry.mtx.Lock()
	defer registry.mtx.Unlock()

	return append([]InputFormat(nil), registry.inputs...)
}

const initialProbeWindow = 4096

// OpenInput identifies the container format of rs by content and opens a
// demuxer for it. The sniff window starts small and grows up to
// opts.ProbeSize until some format recognizes the data.
func OpenInput(rs io.ReadSeeker, opts OpenOptions) (Demuxer, error) {
	if opts.ProbeSize <= 0 {
		opts.ProbeSize = initialProbeWindow
	}

	formats := inputFormats()
	if len(formats) == 0 {
		return nil, ErrFormatNotRecognized
	}

	window := initialProbeWindow
	if window > opts.ProbeSize {
		window = opts.ProbeSize
	}

	for {
		buf := make([]byte, window)
		n, err := io.ReadFull(rs, buf)
		if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, fmt.Errorf("probing input: %w", err)
		}
		buf = buf[:n]

		if _, err := rs.Seek(0, io.SeekStart); err != nil {
			return nil, fmt.Errorf("rewinding after probe: %w", err)
		}

		best := -1
		bestScore := 0
		for i, f := range formats {
			if score := f.Probe(buf); score > bestScore {
				best = i
				bestScore = score
			}
		}

		if best >= 0 {
			return formats[best].Open(rs, opts)
		}

		// Nothing matched; a larger window may reveal a sync point
		// past leading metadata.
		if n < window || window >= opts.ProbeSize {
			return nil, ErrFormatNotRecognized
		}
		window *= 2
		if window > opts.ProbeSize {
			window = opts.ProbeSize
		}
	}
}
