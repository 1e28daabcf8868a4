// SPDX-License-Identifier: EPL-2.0

// Package soundflow is a streaming audio transcoding pipeline.
//
// The package offers two symmetric surfaces. A Decoder pulls
// interleaved PCM frames out of a containerized audio stream, and an
// Encoder pushes PCM frames into one. Both talk to the host entirely
// through callbacks (ReadProc, SeekProc, WriteProc), so the audio can
// live anywhere: a file, a network response, an in-memory asset.
//
// # Supported Formats
//
// Container support is registered by importing format packages for
// their side effects:
//   - WAV (read/write) via formats/wav
//   - FLAC (read/write) via formats/flac
//   - MP3 (read) via formats/mp3
//   - Ogg Vorbis (read) via formats/vorbis
//   - AIFF (read) via formats/aiff
//
// # Quick Start
//
// Decoding a stream to 16-bit PCM:
//
//	onRead, onSeek := soundflow.ReaderCallbacks(file)
//	dec := soundflow.NewDecoder()
//	err := dec.Init(soundflow.DecoderConfig{
//		OnRead:       onRead,
//		OnSeek:       onSeek,
//		TargetFormat: pcm.FormatS16,
//	})
//	if err != nil {
//		// handle error
//	}
//	defer dec.Close()
//
//	buf := make([]byte, 4096*dec.Channels()*2)
//	for {
//		n, err := dec.ReadPCMFrames(buf, 4096)
//		if err != nil || n == 0 {
//			break
//		}
//		// consume buf[:n*stride]
//	}
//
// Re-encoding the other way, or converting a whole stream in one call,
// goes through Encoder and Transcode respectively.
//
// # Sample Formats
//
// Frames cross the API boundary in one of five interleaved formats:
// U8, S16, S24, S32 and F32 (see the pcm subpackage). S24 data travels
// in 32-bit containers with the sample in the upper 24 bits, matching
// how narrow PCM is widened internally. The Decoder converts from the
// stream's native format to the requested target; the Encoder converts
// from the declared input format to whatever the output codec wants.
//
// # Error Handling
//
// Failures are classified by the Result type, a closed set of codes
// with fixed messages. Errors returned by the pipeline either are a
// Result or wrap one, so hosts can classify with errors.Is:
//
//	if errors.Is(err, soundflow.ResultEncoderWriteFailed) {
//		// destination refused bytes
//	}
package soundflow
