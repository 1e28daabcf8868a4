// SPDX-License-Identifier: EPL-2.0

// Package flac reads and writes FLAC streams.
//
// The package registers a "flac" input and output format with the
// engine registries; import it for side effects:
//
//	import _ "github.com/LuoYun-Team/SoundFlow/formats/flac"
//
// Parsing and encoding are handled by github.com/mewkiz/flac.
//
// # Reading
//
// Each FLAC frame becomes one planar PCM packet: S16P for sources up
// to 16 bits per sample, S32P above that. Samples narrower than their
// container (12-bit, 20-bit, 24-bit streams) are shifted up to full
// scale. Seeking uses the stream's seek table when present and lands
// on the start of the frame containing the target sample.
//
// # Writing
//
// The encoder repacks input frames into fixed 4096-sample blocks,
// stored verbatim. It accepts S16 (16 bits on the wire) and S32 input,
// where the 32-bit container carries 24 significant bits. The fLaC
// marker and metadata are produced as codec extradata and written by
// the muxer ahead of the first frame; any partial final block is held
// back until the encoder is flushed.
package flac
