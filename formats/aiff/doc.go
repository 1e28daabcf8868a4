// SPDX-License-Identifier: EPL-2.0

// Package aiff reads AIFF and uncompressed AIFF-C files.
//
// The package registers an "aiff" input format with the engine
// registry; import it for side effects:
//
//	import _ "github.com/LuoYun-Team/SoundFlow/formats/aiff"
//
// Decoding is backed by github.com/go-audio/aiff, which handles the
// chunk layout, the COMM chunk's 80-bit extended sample rate, and the
// big-endian sound data. Packets are packed from the library's int
// samples into the engine's little-endian layout, re-biasing 8-bit
// samples (AIFF 8-bit PCM is signed, unlike WAV) and widening 24-bit
// samples to the 32-bit container. The library only decodes forward,
// so seeking rewinds the stream and discards frames up to the target;
// it is sample exact.
//
// AIFF-C files are accepted only with compression type NONE.
//
// There is no AIFF output format.
package aiff
