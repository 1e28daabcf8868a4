// SPDX-License-Identifier: EPL-2.0

package vorbis

import (
	"bytes"
	"errors"
	"testing"

	"github.com/LuoYun-Team/SoundFlow/engine"
)

func TestProbe(t *testing.T) {
	t.Parallel()

	if got := probe([]byte("OggS\x00....")); got != 100 {
		t.Errorf("probe(ogg) = %d, want 100", got)
	}
	if got := probe([]byte("fLaC....")); got != 0 {
		t.Errorf("probe(flac) = %d, want 0", got)
	}
	if got := probe([]byte("Og")); got != 0 {
		t.Errorf("probe(short) = %d, want 0", got)
	}
}

func TestOpen_RejectsNonVorbis(t *testing.T) {
	t.Parallel()

	// A valid-looking Ogg magic without a Vorbis stream behind it.
	data := append([]byte("OggS"), bytes.Repeat([]byte{0}, 128)...)
	if _, err := open(bytes.NewReader(data), engine.OpenOptions{}); !errors.Is(err, ErrNotOggVorbis) {
		t.Errorf("open() error = %v, want ErrNotOggVorbis", err)
	}
}

func TestOpen_RejectsTruncatedPage(t *testing.T) {
	t.Parallel()

	// A page cut off right after the magic makes the Ogg reader panic
	// while it scans for the final granule position; open must turn
	// that into an error instead.
	data := []byte("OggS\x00\x02")
	if _, err := open(bytes.NewReader(data), engine.OpenOptions{}); !errors.Is(err, ErrNotOggVorbis) {
		t.Errorf("open() error = %v, want ErrNotOggVorbis", err)
	}
}
