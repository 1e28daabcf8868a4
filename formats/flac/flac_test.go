// SPDX-License-Identifier: EPL-2.0

package flac

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/LuoYun-Team/SoundFlow/engine"
)

func encodeStream(t *testing.T, channels, rate int, samples []int16) []byte {
	t.Helper()

	e := &encoder{}
	if err := e.Open(engine.CodecConfig{
		SampleFormat: engine.FormatS16,
		Channels:     channels,
		SampleRate:   rate,
		TimeBase:     engine.Rational{Num: 1, Den: int64(rate)},
		GlobalHeader: true,
	}); err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	data := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(data[i*2:], uint16(s))
	}
	f := &engine.Frame{
		Format:     engine.FormatS16,
		Channels:   channels,
		NumSamples: len(samples) / channels,
		Data:       [][]byte{data},
	}
	if err := e.SendFrame(f); err != nil {
		t.Fatalf("SendFrame() error = %v", err)
	}
	if err := e.SendFrame(nil); err != nil {
		t.Fatalf("SendFrame(nil) error = %v", err)
	}

	var out bytes.Buffer
	out.Write(e.ExtraData())
	var pkt engine.Packet
	for {
		status, err := e.ReceivePacket(&pkt)
		if err != nil {
			t.Fatalf("ReceivePacket() error = %v", err)
		}
		if status != engine.StatusOK {
			break
		}
		out.Write(pkt.Data)
	}
	if err := e.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	return out.Bytes()
}

func TestProbe(t *testing.T) {
	t.Parallel()

	if got := probe([]byte("fLaC....")); got != 100 {
		t.Errorf("probe(flac) = %d, want 100", got)
	}
	if got := probe([]byte("OggS....")); got != 0 {
		t.Errorf("probe(ogg) = %d, want 0", got)
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	t.Parallel()

	frames := 5000 // one full block plus a short tail
	samples := make([]int16, frames*2)
	for i := 0; i < frames; i++ {
		samples[i*2] = int16(i % 3000)
		samples[i*2+1] = int16(-(i % 3000))
	}
	stream := encodeStream(t, 2, 44100, samples)

	if !bytes.HasPrefix(stream, []byte("fLaC")) {
		t.Fatal("stream does not start with the fLaC marker")
	}

	d, err := open(bytes.NewReader(stream), engine.OpenOptions{})
	if err != nil {
		t.Fatalf("open() error = %v", err)
	}
	defer d.Close()

	s := d.Streams()[0]
	if s.SampleFormat != engine.FormatS16P {
		t.Errorf("SampleFormat = %v, want FormatS16P", s.SampleFormat)
	}
	if s.Channels != 2 || s.SampleRate != 44100 {
		t.Errorf("layout = %d ch @ %d Hz, want 2 ch @ 44100 Hz", s.Channels, s.SampleRate)
	}

	var (
		pkt   engine.Packet
		total int64
	)
	for {
		status, err := d.ReadPacket(&pkt)
		if err != nil {
			t.Fatalf("ReadPacket() error = %v", err)
		}
		if status == engine.StatusEndOfStream {
			break
		}
		if pkt.PTS != total {
			t.Fatalf("PTS = %d, want %d (monotonic sample positions)", pkt.PTS, total)
		}

		// Planes are back to back; verify the left channel content.
		frames := len(pkt.Data) / (2 * 2)
		for i := 0; i < frames; i++ {
			got := int16(binary.LittleEndian.Uint16(pkt.Data[i*2:]))
			want := int16((total + int64(i)) % 3000)
			if got != want {
				t.Fatalf("sample %d = %d, want %d", total+int64(i), got, want)
			}
		}
		total += int64(frames)
	}
	if total != int64(frames) {
		t.Errorf("decoded %d frames, want %d", total, frames)
	}
}

func TestEncoder_ShortBlockHeldUntilFlush(t *testing.T) {
	t.Parallel()

	e := &encoder{}
	if err := e.Open(engine.CodecConfig{
		SampleFormat: engine.FormatS16,
		Channels:     1,
		SampleRate:   8000,
		TimeBase:     engine.Rational{Num: 1, Den: 8000},
	}); err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	data := make([]byte, 100*2)
	f := &engine.Frame{
		Format:     engine.FormatS16,
		Channels:   1,
		NumSamples: 100,
		Data:       [][]byte{data},
	}
	if err := e.SendFrame(f); err != nil {
		t.Fatalf("SendFrame() error = %v", err)
	}

	var pkt engine.Packet
	if status, _ := e.ReceivePacket(&pkt); status != engine.StatusNeedMoreInput {
		t.Fatalf("ReceivePacket() before flush = %v, want StatusNeedMoreInput", status)
	}

	if err := e.SendFrame(nil); err != nil {
		t.Fatalf("SendFrame(nil) error = %v", err)
	}
	status, err := e.ReceivePacket(&pkt)
	if err != nil || status != engine.StatusOK {
		t.Fatalf("ReceivePacket() after flush = (%v, %v), want the held block", status, err)
	}
	if pkt.PTS != 0 {
		t.Errorf("PTS = %d, want 0", pkt.PTS)
	}
}

func TestEncoder_ExtraDataIsGlobalHeader(t *testing.T) {
	t.Parallel()

	e := &encoder{}
	if err := e.Open(engine.CodecConfig{
		SampleFormat: engine.FormatS16,
		Channels:     2,
		SampleRate:   48000,
		TimeBase:     engine.Rational{Num: 1, Den: 48000},
	}); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	extra := e.ExtraData()
	if !bytes.HasPrefix(extra, []byte("fLaC")) {
		t.Errorf("ExtraData() starts with %q, want the fLaC marker", extra[:4])
	}
}

func TestEncoder_RejectsBadConfig(t *testing.T) {
	t.Parallel()

	e := &encoder{}
	err := e.Open(engine.CodecConfig{SampleFormat: engine.FormatF32, Channels: 1, SampleRate: 8000})
	if !errors.Is(err, ErrUnsupportedEncoding) {
		t.Errorf("Open(F32) error = %v, want ErrUnsupportedEncoding", err)
	}

	e = &encoder{}
	err = e.Open(engine.CodecConfig{SampleFormat: engine.FormatS16, Channels: 0, SampleRate: 8000})
	if !errors.Is(err, ErrUnsupportedLayout) {
		t.Errorf("Open(0 channels) error = %v, want ErrUnsupportedLayout", err)
	}
}

func TestMuxer_WritesHeaderFromExtraData(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	m, err := newMuxer(&out, engine.StreamInfo{ExtraData: []byte("fLaC-header")})
	if err != nil {
		t.Fatalf("newMuxer() error = %v", err)
	}
	if err := m.WriteHeader(); err != nil {
		t.Fatalf("WriteHeader() error = %v", err)
	}
	if out.String() != "fLaC-header" {
		t.Errorf("header bytes = %q, want the codec extradata", out.String())
	}

	m, err = newMuxer(&out, engine.StreamInfo{})
	if err != nil {
		t.Fatalf("newMuxer() error = %v", err)
	}
	if err := m.WriteHeader(); err == nil {
		t.Error("WriteHeader() without extradata succeeded, want error")
	}
}
