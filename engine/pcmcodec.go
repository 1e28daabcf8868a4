// SPDX-License-Identifier: EPL-2.0

package engine

import "errors"

// CodecPCM identifies the shared uncompressed-PCM codec. Demuxers that
// decompress at the container layer (the common shape for pure-Go format
// libraries) declare their streams with this codec; the packets then
// carry raw PCM in the stream's native sample format.
const CodecPCM = "pcm"

var errPacketGeometry = errors.New("packet size is not a whole number of frames")

func init() {
	RegisterCodec(CodecPCM, newPCMDecoder)
}

// pcmDecoder turns PCM packets back into frames. It is deliberately a
// full participant in the send/receive protocol: it buffers submitted
// packets, reports StatusNeedMoreInput when starved, accepts the nil
// drain sentinel and reports StatusEndOfStream once drained.
type pcmDecoder struct {
	info     StreamInfo
	queue    [][]byte
	pts      int64
	draining bool
}

func newPCMDecoder(info StreamInfo) (Decoder, error) {
	if info.SampleFormat == FormatNone || info.Channels <= 0 {
		return nil, errors.New("pcm codec: stream parameters incomplete")
	}
	return &pcmDecoder{info: info}, nil
}

func (d *pcmDecoder) SendPacket(pkt *Packet) error {
	if pkt == nil {
		d.draining = true
		return nil
	}
	if d.draining {
		return errors.New("pcm codec: packet after drain sentinel")
	}

	// The packet buffer belongs to the demuxer and will be overwritten
	// by the next read.
	d.queue = append(d.queue, append([]byte(nil), pkt.Data...))
	return nil
}

func (d *pcmDecoder) ReceiveFrame(f *Frame) (Status, error) {
	if len(d.queue) == 0 {
		if d.draining {
			return StatusEndOfStream, nil
		}
		return StatusNeedMoreInput, nil
	}

	data := d.queue[0]
	d.queue = d.queue[1:]

	bps := d.info.SampleFormat.BytesPerSample()
	stride := bps * d.info.Channels
	if stride == 0 || len(data)%stride != 0 {
		return StatusOK, errPacketGeometry
	}
	samples := len(data) / stride

	f.Format = d.info.SampleFormat
	f.Channels = d.info.Channels
	f.SampleRate = d.info.SampleRate
	f.NumSamples = samples
	f.PTS = d.pts
	d.pts += int64(samples)

	if d.info.SampleFormat.IsPlanar() {
		// Planar packets hold the channel planes back to back.
		planeBytes := samples * bps
		f.Data = f.Data[:0]
		for ch := 0; ch < d.info.Channels; ch++ {
			f.Data = append(f.Data, data[ch*planeBytes:(ch+1)*planeBytes])
		}
	} else {
		f.Data = append(f.Data[:0], data)
	}

	return StatusOK, nil
}

func (d *pcmDecoder) Flush() {
	d.queue = nil
	d.draining = false
	d.pts = 0
}

func (d *pcmDecoder) Close() error {
	d.queue = nil
	return nil
}
