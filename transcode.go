// SPDX-License-Identifier: EPL-2.0

package soundflow

import (
	"io"

	"github.com/LuoYun-Team/SoundFlow/pcm"
)

// ReaderCallbacks adapts an io.Reader into decoder callbacks. Seeking
// is available when r also implements io.Seeker.
func ReaderCallbacks(r io.Reader) (ReadProc, SeekProc) {
	onRead := func(_ any, p []byte) int {
		n, _ := r.Read(p)
		return n
	}

	s, ok := r.(io.Seeker)
	if !ok {
		return onRead, nil
	}
	onSeek := func(_ any, offset int64, origin SeekOrigin) int64 {
		pos, err := s.Seek(offset, int(origin))
		if err != nil {
			return -1
		}
		return pos
	}
	return onRead, onSeek
}

// WriterCallbacks adapts an io.Writer into an encoder callback.
func WriterCallbacks(w io.Writer) WriteProc {
	return func(_ any, p []byte) int {
		n, _ := w.Write(p)
		return n
	}
}

// TranscodeConfig drives one Transcode run.
type TranscodeConfig struct {
	// Format names the output container ("wav", "flac").
	Format string

	// Intermediate is the PCM format frames travel through between the
	// two pipelines. FormatS16 when zero.
	Intermediate pcm.Format

	// FramesPerChunk sets how many frames move per iteration. 4096 when
	// zero.
	FramesPerChunk int
}

// Transcode decodes everything from r and re-encodes it into the named
// output format on w, moving PCM through an intermediate format in
// fixed-size chunks. The source's channel count and sample rate carry
// over unchanged.
func Transcode(w io.Writer, r io.Reader, cfg TranscodeConfig) error {
	if cfg.Intermediate == pcm.FormatUnknown {
		cfg.Intermediate = pcm.FormatS16
	}
	if cfg.FramesPerChunk <= 0 {
		cfg.FramesPerChunk = 4096
	}

	onRead, onSeek := ReaderCallbacks(r)
	dec := NewDecoder()
	if err := dec.Init(DecoderConfig{
		OnRead:       onRead,
		OnSeek:       onSeek,
		TargetFormat: cfg.Intermediate,
	}); err != nil {
		return err
	}
	defer dec.Close()

	enc := NewEncoder()
	if err := enc.Init(EncoderConfig{
		Format:      cfg.Format,
		OnWrite:     WriterCallbacks(w),
		InputFormat: cfg.Intermediate,
		Channels:    dec.Channels(),
		SampleRate:  dec.SampleRate(),
	}); err != nil {
		return err
	}

	stride := dec.Channels() * cfg.Intermediate.BytesPerSample()
	buf := make([]byte, cfg.FramesPerChunk*stride)
	for {
		n, err := dec.ReadPCMFrames(buf, int64(cfg.FramesPerChunk))
		if err != nil {
			enc.Close()
			return err
		}
		if n == 0 {
			break
		}
		if _, err := enc.WritePCMFrames(buf[:n*int64(stride)], n); err != nil {
			enc.Close()
			return err
		}
	}
	return enc.Close()
}
