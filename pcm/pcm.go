// SPDX-License-Identifier: EPL-2.0

package pcm

import "github.com/LuoYun-Team/SoundFlow/engine"

// Format is the public PCM sample format a caller asks for or declares.
type Format int

const (
	FormatUnknown Format = iota
	FormatU8
	FormatS16
	FormatS24
	FormatS32
	FormatF32
)

// BytesPerSample returns the storage size of one sample. S24 is held in a
// 32-bit slot (the engine has no packed 3-byte format), so it reports 4.
func (f Format) BytesPerSample() int {
	switch f {
	case FormatU8:
		return 1
	case FormatS16:
		return 2
	case FormatS24, FormatS32, FormatF32:
		return 4
	default:
		return 0
	}
}

// Valid reports whether f is one of the supported formats.
func (f Format) Valid() bool {
	switch f {
	case FormatU8, FormatS16, FormatS24, FormatS32, FormatF32:
		return true
	default:
		return false
	}
}

func (f Format) String() string {
	switch f {
	case FormatU8:
		return "u8"
	case FormatS16:
		return "s16"
	case FormatS24:
		return "s24"
	case FormatS32:
		return "s32"
	case FormatF32:
		return "f32"
	default:
		return "unknown"
	}
}

// Native maps f to the engine's sample format enumeration. S24 widens to
// the engine's 32-bit signed container; callers are still reported the
// format they requested, not the widened one. Unknown formats map to
// engine.FormatNone.
func (f Format) Native() engine.SampleFormat {
	switch f {
	case FormatU8:
		return engine.FormatU8
	case FormatS16:
		return engine.FormatS16
	case FormatS24, FormatS32:
		return engine.FormatS32
	case FormatF32:
		return engine.FormatF32
	default:
		return engine.FormatNone
	}
}

// FromNative maps an engine sample format back to the public enumeration.
// Planar and interleaved variants of the same depth are equivalent. A
// native format with no public equivalent (double precision, none) maps
// to FormatUnknown, never to a nearest guess.
func FromNative(f engine.SampleFormat) Format {
	switch f.Packed() {
	case engine.FormatU8:
		return FormatU8
	case engine.FormatS16:
		return FormatS16
	case engine.FormatS32:
		return FormatS32
	case engine.FormatF32:
		return FormatF32
	default:
		return FormatUnknown
	}
}
