// SPDX-License-Identifier: EPL-2.0

// Package engine defines the narrow contract the transcoding pipelines
// drive: container demuxers and muxers, codec decoders and encoders, and
// the registries that resolve them.
//
// # Exchange protocol
//
// Demuxers and codecs exchange data through the Packet and Frame types
// and report progress with a Status value instead of in-band sentinel
// codes:
//
//   - StatusOK: data was produced.
//   - StatusNeedMoreInput: the component is starved; feed it exactly one
//     more packet/frame.
//   - StatusEndOfStream: the stream is exhausted. Not an error.
//
// A nil packet (or frame, on the encode side) is the drain sentinel: it
// announces that no further input will arrive and unlocks any internally
// buffered output.
//
// # Registries
//
// Format implementations register themselves at package init time:
// input formats with a content-probe function, output formats by short
// name, codecs by codec identifier. OpenInput probes registered formats
// against a bounded sniff window and opens the best match.
//
// # Time
//
// Stream timestamps are kept in per-stream Rational time bases and
// converted with Rescale. Container-level durations use TimeUnit
// (microsecond) ticks.
package engine
