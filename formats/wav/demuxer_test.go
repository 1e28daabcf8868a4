// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"os"
	"testing"

	"github.com/go-audio/audio"
	gowav "github.com/go-audio/wav"

	"github.com/LuoYun-Team/SoundFlow/engine"
)

type chunk struct {
	id   string
	body []byte
}

// buildRIFF assembles a WAV file from explicit chunks so tests can
// produce unusual layouts.
func buildRIFF(chunks ...chunk) []byte {
	var payload bytes.Buffer
	for _, c := range chunks {
		payload.WriteString(c.id)
		binary.Write(&payload, binary.LittleEndian, uint32(len(c.body)))
		payload.Write(c.body)
		if len(c.body)%2 == 1 {
			payload.WriteByte(0)
		}
	}

	var out bytes.Buffer
	out.WriteString("RIFF")
	binary.Write(&out, binary.LittleEndian, uint32(4+payload.Len()))
	out.WriteString("WAVE")
	out.Write(payload.Bytes())
	return out.Bytes()
}

func fmtChunk(tag uint16, channels, rate, bits int) chunk {
	var b bytes.Buffer
	binary.Write(&b, binary.LittleEndian, tag)
	binary.Write(&b, binary.LittleEndian, uint16(channels))
	binary.Write(&b, binary.LittleEndian, uint32(rate))
	binary.Write(&b, binary.LittleEndian, uint32(rate*channels*bits/8))
	binary.Write(&b, binary.LittleEndian, uint16(channels*bits/8))
	binary.Write(&b, binary.LittleEndian, uint16(bits))
	return chunk{id: "fmt ", body: b.Bytes()}
}

func s16Data(samples ...int16) []byte {
	out := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(out[i*2:], uint16(s))
	}
	return out
}

func TestProbe(t *testing.T) {
	t.Parallel()

	data := buildRIFF(fmtChunk(formatPCM, 1, 8000, 16), chunk{id: "data"})
	if got := probe(data); got != 100 {
		t.Errorf("probe(wav) = %d, want 100", got)
	}
	if got := probe([]byte("RIFFxxxxAVI ")); got != 0 {
		t.Errorf("probe(avi) = %d, want 0", got)
	}
	if got := probe([]byte("RI")); got != 0 {
		t.Errorf("probe(short) = %d, want 0", got)
	}
}

func TestOpen_S16Stream(t *testing.T) {
	t.Parallel()

	pcm := s16Data(1, 2, 3, 4, 5, 6)
	data := buildRIFF(fmtChunk(formatPCM, 2, 44100, 16), chunk{id: "data", body: pcm})

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
	if s.Duration != 3 {
		t.Errorf("Duration = %d frames, want 3", s.Duration)
	}

	var pkt engine.Packet
	status, err := d.ReadPacket(&pkt)
	if err != nil || status != engine.StatusOK {
		t.Fatalf("ReadPacket() = (%v, %v)", status, err)
	}
	if !bytes.Equal(pkt.Data, pcm) {
		t.Error("packet payload differs from the data chunk")
	}
	if status, _ := d.ReadPacket(&pkt); status != engine.StatusEndOfStream {
		t.Errorf("second ReadPacket() = %v, want StatusEndOfStream", status)
	}
}

func TestOpen_SkipsUnknownChunks(t *testing.T) {
	t.Parallel()

	data := buildRIFF(
		chunk{id: "JUNK", body: []byte{1, 2, 3}}, // odd size forces pad handling
		fmtChunk(formatPCM, 1, 8000, 16),
		chunk{id: "LIST", body: make([]byte, 10)},
		chunk{id: "data", body: s16Data(7, 8)},
	)

	d, err := open(bytes.NewReader(data), engine.OpenOptions{})
	if err != nil {
		t.Fatalf("open() error = %v", err)
	}
	defer d.Close()

	var pkt engine.Packet
	if status, err := d.ReadPacket(&pkt); err != nil || status != engine.StatusOK {
		t.Fatalf("ReadPacket() = (%v, %v)", status, err)
	}
	if got := int16(binary.LittleEndian.Uint16(pkt.Data)); got != 7 {
		t.Errorf("first sample = %d, want 7", got)
	}
}

func TestOpen_SampleLayouts(t *testing.T) {
	t.Parallel()

	t.Run("u8", func(t *testing.T) {
		t.Parallel()

		data := buildRIFF(fmtChunk(formatPCM, 1, 8000, 8), chunk{id: "data", body: []byte{0, 128, 255}})
		d, err := open(bytes.NewReader(data), engine.OpenOptions{})
		if err != nil {
			t.Fatalf("open() error = %v", err)
		}
		defer d.Close()
		if got := d.Streams()[0].SampleFormat; got != engine.FormatU8 {
			t.Errorf("SampleFormat = %v, want FormatU8", got)
		}
	})

	t.Run("s24 widened", func(t *testing.T) {
		t.Parallel()

		// One frame: 0x123456 as little-endian 24-bit.
		body := []byte{0x56, 0x34, 0x12}
		data := buildRIFF(fmtChunk(formatPCM, 1, 8000, 24), chunk{id: "data", body: body})
		d, err := open(bytes.NewReader(data), engine.OpenOptions{})
		if err != nil {
			t.Fatalf("open() error = %v", err)
		}
		defer d.Close()

		if got := d.Streams()[0].SampleFormat; got != engine.FormatS32 {
			t.Errorf("SampleFormat = %v, want FormatS32", got)
		}
		var pkt engine.Packet
		if status, err := d.ReadPacket(&pkt); err != nil || status != engine.StatusOK {
			t.Fatalf("ReadPacket() = (%v, %v)", status, err)
		}
		got := int32(binary.LittleEndian.Uint32(pkt.Data))
		if got != 0x12345600 {
			t.Errorf("widened sample = %#x, want 0x12345600", got)
		}
	})

	t.Run("float32", func(t *testing.T) {
		t.Parallel()

		body := make([]byte, 4)
		binary.LittleEndian.PutUint32(body, math.Float32bits(0.25))
		data := buildRIFF(fmtChunk(formatIEEEFloat, 1, 8000, 32), chunk{id: "data", body: body})
		d, err := open(bytes.NewReader(data), engine.OpenOptions{})
		if err != nil {
			t.Fatalf("open() error = %v", err)
		}
		defer d.Close()
		if got := d.Streams()[0].SampleFormat; got != engine.FormatF32 {
			t.Errorf("SampleFormat = %v, want FormatF32", got)
		}
	})

	t.Run("unsupported bits", func(t *testing.T) {
		t.Parallel()

		data := buildRIFF(fmtChunk(formatPCM, 1, 8000, 12), chunk{id: "data", body: make([]byte, 12)})
		if _, err := open(bytes.NewReader(data), engine.OpenOptions{}); !errors.Is(err, ErrUnsupportedEncoding) {
			t.Errorf("open() error = %v, want ErrUnsupportedEncoding", err)
		}
	})
}

func TestOpen_Failures(t *testing.T) {
	t.Parallel()

	t.Run("not wav", func(t *testing.T) {
		t.Parallel()

		if _, err := open(bytes.NewReader([]byte("FORM....AIFF")), engine.OpenOptions{}); !errors.Is(err, ErrNotWAV) {
			t.Errorf("open() error = %v, want ErrNotWAV", err)
		}
	})

	t.Run("no data chunk", func(t *testing.T) {
		t.Parallel()

		data := buildRIFF(fmtChunk(formatPCM, 1, 8000, 16))
		if _, err := open(bytes.NewReader(data), engine.OpenOptions{}); !errors.Is(err, ErrNoDataChunk) {
			t.Errorf("open() error = %v, want ErrNoDataChunk", err)
		}
	})

	t.Run("data before fmt", func(t *testing.T) {
		t.Parallel()

		data := buildRIFF(chunk{id: "data", body: s16Data(1)})
		if _, err := open(bytes.NewReader(data), engine.OpenOptions{}); !errors.Is(err, ErrUnsupportedLayout) {
			t.Errorf("open() error = %v, want ErrUnsupportedLayout", err)
		}
	})
}

func TestDemuxer_Seek(t *testing.T) {
	t.Parallel()

	samples := make([]int16, 10000)
	for i := range samples {
		samples[i] = int16(i)
	}
	data := buildRIFF(fmtChunk(formatPCM, 1, 8000, 16), chunk{id: "data", body: s16Data(samples...)})

	d, err := open(bytes.NewReader(data), engine.OpenOptions{})
	if err != nil {
		t.Fatalf("open() error = %v", err)
	}
	defer d.Close()

	if err := d.Seek(0, 7500); err != nil {
		t.Fatalf("Seek() error = %v", err)
	}
	var pkt engine.Packet
	status, err := d.ReadPacket(&pkt)
	if err != nil || status != engine.StatusOK {
		t.Fatalf("ReadPacket() = (%v, %v)", status, err)
	}
	if pkt.PTS != 7500 {
		t.Errorf("PTS after seek = %d, want 7500", pkt.PTS)
	}
	if got := int16(binary.LittleEndian.Uint16(pkt.Data)); got != 7500 {
		t.Errorf("first sample after seek = %d, want 7500", got)
	}

	// Past-the-end seeks clamp to the end of the data chunk.
	if err := d.Seek(0, 1<<40); err != nil {
		t.Fatalf("Seek(huge) error = %v", err)
	}
	if status, _ := d.ReadPacket(&pkt); status != engine.StatusEndOfStream {
		t.Errorf("ReadPacket() after clamped seek = %v, want StatusEndOfStream", status)
	}

	if err := d.Seek(1, 0); !errors.Is(err, ErrBadStream) {
		t.Errorf("Seek(bad stream) error = %v, want ErrBadStream", err)
	}
}

func TestOpen_UnknownDataSize(t *testing.T) {
	t.Parallel()

	// Streamed file: sizes are the unknown-size marker, data runs to EOF.
	pcm := s16Data(1, 2, 3, 4)
	var out bytes.Buffer
	out.WriteString("RIFF")
	binary.Write(&out, binary.LittleEndian, uint32(unknownChunkSize))
	out.WriteString("WAVE")
	fc := fmtChunk(formatPCM, 1, 8000, 16)
	out.WriteString(fc.id)
	binary.Write(&out, binary.LittleEndian, uint32(len(fc.body)))
	out.Write(fc.body)
	out.WriteString("data")
	binary.Write(&out, binary.LittleEndian, uint32(unknownChunkSize))
	out.Write(pcm)

	d, err := open(bytes.NewReader(out.Bytes()), engine.OpenOptions{})
	if err != nil {
		t.Fatalf("open() error = %v", err)
	}
	defer d.Close()

	if got := d.Streams()[0].Duration; got != engine.NoTimestamp {
		t.Errorf("stream Duration = %d, want NoTimestamp", got)
	}
	// Container duration derives from the stream length: 4 frames at
	// 8 kHz is 500 microseconds.
	if got := d.Duration(); got != 500 {
		t.Errorf("container Duration = %d, want 500", got)
	}

	var pkt engine.Packet
	status, err := d.ReadPacket(&pkt)
	if err != nil || status != engine.StatusOK {
		t.Fatalf("ReadPacket() = (%v, %v)", status, err)
	}
	if !bytes.Equal(pkt.Data, pcm) {
		t.Error("streamed payload differs from the written data")
	}
}

// TestOpen_CrossValidation decodes a file produced by the go-audio wav
// encoder, checking interoperability against an independent writer.
func TestOpen_CrossValidation(t *testing.T) {
	t.Parallel()

	f, err := os.CreateTemp(t.TempDir(), "cross*.wav")
	if err != nil {
		t.Fatalf("CreateTemp() error = %v", err)
	}
	defer f.Close()

	enc := gowav.NewEncoder(f, 8000, 16, 1, 1)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: 8000},
		Data:           []int{100, -100, 200, -200, 300, -300},
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		t.Fatalf("go-audio Write() error = %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("go-audio Close() error = %v", err)
	}
	if _, err := f.Seek(0, 0); err != nil {
		t.Fatalf("Seek() error = %v", err)
	}

	d, err := open(f, engine.OpenOptions{})
	if err != nil {
		t.Fatalf("open() error = %v", err)
	}
	defer d.Close()

	var pkt engine.Packet
	status, err := d.ReadPacket(&pkt)
	if err != nil || status != engine.StatusOK {
		t.Fatalf("ReadPacket() = (%v, %v)", status, err)
	}
	want := s16Data(100, -100, 200, -200, 300, -300)
	if !bytes.Equal(pkt.Data, want) {
		t.Error("decoded payload differs from what go-audio wrote")
	}
}
