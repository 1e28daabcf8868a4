// SPDX-License-Identifier: EPL-2.0

// Package vorbis reads Ogg Vorbis streams.
//
// The package registers an "ogg" input format with the engine registry;
// import it for side effects:
//
//	import _ "github.com/LuoYun-Team/SoundFlow/formats/vorbis"
//
// Decoding is handled by github.com/jfreymuth/oggvorbis. Vorbis is a
// floating-point codec, so the exposed stream format is F32. The total
// length and sample-exact seeking come straight from the Ogg page
// structure.
//
// There is no Vorbis output format: the pipeline does not include a
// Vorbis encoder.
package vorbis
