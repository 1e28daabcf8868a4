// SPDX-License-Identifier: EPL-2.0

// Package mp3 reads MPEG audio streams.
//
// The package registers an "mp3" input format with the engine registry;
// import it for side effects:
//
//	import _ "github.com/LuoYun-Team/SoundFlow/formats/mp3"
//
// Decoding is handled by github.com/hajimehoshi/go-mp3, which always
// produces 16-bit stereo output regardless of the source channel
// layout, so the exposed stream is S16 with two channels. Mono sources
// arrive with both channels carrying the same signal.
//
// The stream length is known up front (go-mp3 scans the file on open),
// and seeking is sample exact.
//
// There is no MP3 output format: the pipeline does not include an MPEG
// audio encoder.
package mp3
