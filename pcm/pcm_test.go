// SPDX-License-Identifier: EPL-2.0

package pcm

import (
	"testing"

	"github.com/LuoYun-Team/SoundFlow/engine"
)

func TestFormat_BytesPerSample(t *testing.T) {
	t.Parallel()

	tests := []struct {
		format Format
		want   int
	}{
		{FormatU8, 1},
		{FormatS16, 2},
		{FormatS24, 4}, // 24-bit travels in a 32-bit container
		{FormatS32, 4},
		{FormatF32, 4},
		{FormatUnknown, 0},
	}
	for _, tt := range tests {
		if got := tt.format.BytesPerSample(); got != tt.want {
			t.Errorf("%v.BytesPerSample() = %d, want %d", tt.format, got, tt.want)
		}
	}
}

func TestFormat_Native(t *testing.T) {
	t.Parallel()

	tests := []struct {
		format Format
		want   engine.SampleFormat
	}{
		{FormatU8, engine.FormatU8},
		{FormatS16, engine.FormatS16},
		{FormatS24, engine.FormatS32},
		{FormatS32, engine.FormatS32},
		{FormatF32, engine.FormatF32},
		{FormatUnknown, engine.FormatNone},
	}
	for _, tt := range tests {
		if got := tt.format.Native(); got != tt.want {
			t.Errorf("%v.Native() = %v, want %v", tt.format, got, tt.want)
		}
	}
}

func TestFromNative(t *testing.T) {
	t.Parallel()

	tests := []struct {
		native engine.SampleFormat
		want   Format
	}{
		{engine.FormatU8, FormatU8},
		{engine.FormatU8P, FormatU8},
		{engine.FormatS16, FormatS16},
		{engine.FormatS16P, FormatS16},
		{engine.FormatS32, FormatS32},
		{engine.FormatS32P, FormatS32},
		{engine.FormatF32, FormatF32},
		{engine.FormatF32P, FormatF32},
		// No packed public equivalent for doubles.
		{engine.FormatF64, FormatUnknown},
		{engine.FormatNone, FormatUnknown},
	}
	for _, tt := range tests {
		if got := FromNative(tt.native); got != tt.want {
			t.Errorf("FromNative(%v) = %v, want %v", tt.native, got, tt.want)
		}
	}
}

func TestFormat_Valid(t *testing.T) {
	t.Parallel()

	for _, f := range []Format{FormatU8, FormatS16, FormatS24, FormatS32, FormatF32} {
		if !f.Valid() {
			t.Errorf("%v.Valid() = false, want true", f)
		}
	}
	if FormatUnknown.Valid() {
		t.Error("FormatUnknown.Valid() = true, want false")
	}
	if Format(99).Valid() {
		t.Error("Format(99).Valid() = true, want false")
	}
}
