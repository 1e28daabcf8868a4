// SPDX-License-Identifier: EPL-2.0

package aiff

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/LuoYun-Team/SoundFlow/engine"
)

// buildAIFF assembles a minimal AIFF file with 16-bit big-endian PCM.
func buildAIFF(channels, rate int, samples []int16) []byte {
	frames := len(samples) / channels

	var comm bytes.Buffer
	binary.Write(&comm, binary.BigEndian, uint16(channels))
	binary.Write(&comm, binary.BigEndian, uint32(frames))
	binary.Write(&comm, binary.BigEndian, uint16(16))
	comm.Write(extended80(float64(rate)))

	var ssnd bytes.Buffer
	binary.Write(&ssnd, binary.BigEndian, uint32(0)) // offset
	binary.Write(&ssnd, binary.BigEndian, uint32(0)) // block size
	for _, s := range samples {
		binary.Write(&ssnd, binary.BigEndian, s)
	}

	var payload bytes.Buffer
	payload.WriteString("COMM")
	binary.Write(&payload, binary.BigEndian, uint32(comm.Len()))
	payload.Write(comm.Bytes())
	payload.WriteString("SSND")
	binary.Write(&payload, binary.BigEndian, uint32(ssnd.Len()))
	payload.Write(ssnd.Bytes())

	var out bytes.Buffer
	out.WriteString("FORM")
	binary.Write(&out, binary.BigEndian, uint32(4+payload.Len()))
	out.WriteString("AIFF")
	out.Write(payload.Bytes())
	return out.Bytes()
}

// extended80 encodes a positive integer-valued rate as an 80-bit
// extended float.
func extended80(v float64) []byte {
	out := make([]byte, 10)
	if v == 0 {
		return out
	}
	exp := 16383 + 63
	mant := uint64(v)
	for mant&(1<<63) == 0 {
		mant <<= 1
		exp--
	}
	binary.BigEndian.PutUint16(out[0:2], uint16(exp))
	binary.BigEndian.PutUint64(out[2:10], mant)
	return out
}

func TestProbe(t *testing.T) {
	t.Parallel()

	if got := probe(buildAIFF(1, 8000, []int16{0})); got != 100 {
		t.Errorf("probe(aiff) = %d, want 100", got)
	}
	if got := probe([]byte("FORM....XXXX")); got != 0 {
		t.Errorf("probe(non-aiff FORM) = %d, want 0", got)
	}
	if got := probe([]byte("RIFF....WAVE")); got != 0 {
		t.Errorf("probe(wav) = %d, want 0", got)
	}
}

func TestOpen_S16Stream(t *testing.T) {
	t.Parallel()

	samples := []int16{100, -100, 32000, -32000}
	data := buildAIFF(2, 44100, samples)

	d, err := open(bytes.NewReader(data), engine.OpenOptions{})
	if err != nil {
		t.Fatalf("open() error = %v", err)
	}
	defer d.Close()

	s := d.Streams()[0]
	if s.SampleFormat != engine.FormatS16 {
		t.Errorf("SampleFormat = %v, want FormatS16", s.SampleFormat)
	}
	if s.Channels != 2 || s.SampleRate != 44100 {
		t.Errorf("layout = %d ch @ %d Hz, want 2 ch @ 44100 Hz", s.Channels, s.SampleRate)
	}
	if s.Duration != 2 {
		t.Errorf("Duration = %d frames, want 2", s.Duration)
	}

	var pkt engine.Packet
	status, err := d.ReadPacket(&pkt)
	if err != nil || status != engine.StatusOK {
		t.Fatalf("ReadPacket() = (%v, %v)", status, err)
	}
	// Payload must come out little-endian.
	for i, want := range samples {
		got := int16(binary.LittleEndian.Uint16(pkt.Data[i*2:]))
		if got != want {
			t.Errorf("sample %d = %d, want %d", i, got, want)
		}
	}
}

func TestDemuxer_Seek(t *testing.T) {
	t.Parallel()

	samples := make([]int16, 9000)
	for i := range samples {
		samples[i] = int16(i)
	}
	data := buildAIFF(1, 8000, samples)

	d, err := open(bytes.NewReader(data), engine.OpenOptions{})
	if err != nil {
		t.Fatalf("open() error = %v", err)
	}
	defer d.Close()

	if err := d.Seek(0, 8500); err != nil {
		t.Fatalf("Seek() error = %v", err)
	}
	var pkt engine.Packet
	status, err := d.ReadPacket(&pkt)
	if err != nil || status != engine.StatusOK {
		t.Fatalf("ReadPacket() = (%v, %v)", status, err)
	}
	if pkt.PTS != 8500 {
		t.Errorf("PTS after seek = %d, want 8500", pkt.PTS)
	}
	if got := int16(binary.LittleEndian.Uint16(pkt.Data)); got != 8500 {
		t.Errorf("first sample after seek = %d, want 8500", got)
	}
}

func TestOpen_Failures(t *testing.T) {
	t.Parallel()

	t.Run("not aiff", func(t *testing.T) {
		t.Parallel()

		if _, err := open(bytes.NewReader([]byte("RIFF....WAVE")), engine.OpenOptions{}); !errors.Is(err, ErrNotAIFF) {
			t.Errorf("open() error = %v, want ErrNotAIFF", err)
		}
	})

	t.Run("compressed aifc", func(t *testing.T) {
		t.Parallel()

		var comm bytes.Buffer
		binary.Write(&comm, binary.BigEndian, uint16(1))
		binary.Write(&comm, binary.BigEndian, uint32(10))
		binary.Write(&comm, binary.BigEndian, uint16(16))
		comm.Write(extended80(8000))
		comm.WriteString("sowt")
		comm.Write([]byte{0, 0}) // empty pascal-string compression name, padded

		var out bytes.Buffer
		out.WriteString("FORM")
		binary.Write(&out, binary.BigEndian, uint32(4+8+comm.Len()))
		out.WriteString("AIFC")
		out.WriteString("COMM")
		binary.Write(&out, binary.BigEndian, uint32(comm.Len()))
		out.Write(comm.Bytes())

		if _, err := open(bytes.NewReader(out.Bytes()), engine.OpenOptions{}); !errors.Is(err, ErrUnsupportedEncoding) {
			t.Errorf("open() error = %v, want ErrUnsupportedEncoding", err)
		}
	})

	t.Run("ssnd before comm", func(t *testing.T) {
		t.Parallel()

		var out bytes.Buffer
		out.WriteString("FORM")
		binary.Write(&out, binary.BigEndian, uint32(4+8+8))
		out.WriteString("AIFF")
		out.WriteString("SSND")
		binary.Write(&out, binary.BigEndian, uint32(8))
		out.Write(make([]byte, 8))

		if _, err := open(bytes.NewReader(out.Bytes()), engine.OpenOptions{}); !errors.Is(err, ErrUnsupportedLayout) {
			t.Errorf("open() error = %v, want ErrUnsupportedLayout", err)
		}
	})
}
