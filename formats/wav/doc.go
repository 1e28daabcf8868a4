// SPDX-License-Identifier: EPL-2.0

// Package wav reads and writes RIFF/WAVE containers.
//
// The package registers a "wav" input and output format with the engine
// registries; importing it for side effects is enough to make WAV files
// usable by the pipeline:
//
//	import _ "github.com/LuoYun-Team/SoundFlow/formats/wav"
//
// # Reading
//
// The demuxer walks the RIFF chunk list by hand and exposes the data
// chunk as a PCM stream. Supported sample layouts:
//   - PCM 8-bit unsigned
//   - PCM 16-bit
//   - PCM 24-bit (widened to the engine's 32-bit container)
//   - PCM 32-bit
//   - IEEE float 32-bit
//
// WAVE_FORMAT_EXTENSIBLE files are unwrapped to their underlying format
// tag. Files whose data chunk reports an unknown size (0xFFFFFFFF, as
// produced by streaming writers) are read until end of input, with the
// container duration derived from the stream length instead.
//
// Seeking is sample exact: the data chunk is uncompressed, so a frame
// index maps directly to a byte offset.
//
// # Writing
//
// The muxer produces a streaming WAV file: 16-bit PCM with the RIFF and
// data sizes left as the unknown-size marker, because the destination
// is write-only and header fields cannot be patched afterwards.
//
// # Error Handling
//
// The package defines sentinel errors for the common failure modes:
//   - ErrNotWAV: the input is not a RIFF/WAVE stream
//   - ErrNoDataChunk: the chunk list ended without a data chunk
//   - ErrUnsupportedLayout: a malformed or unusable fmt chunk
//   - ErrUnsupportedEncoding: a format tag or bit depth outside the
//     supported set
package wav
