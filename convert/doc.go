// SPDX-License-Identifier: EPL-2.0

// Package convert translates PCM between the engine's sample formats.
//
// A Converter sits between a codec and the caller's buffer: the decode
// pipeline converts each decoded frame into the caller's requested
// format, the encode pipeline converts the caller's input into the
// codec's native format. Channel count and sample rate pass through
// unchanged — the pipelines never remix channels.
//
// Convert always consumes its whole input frame; output that does not
// fit the destination is carried and released by later Convert or Drain
// calls. Draining until Drain returns zero is the flush protocol at end
// of stream. Seeking invalidates carried samples; Reset discards them.
//
// Conversion goes through normalized float64 with power-of-two scale
// factors, so integer round trips at matching bit depth are exact.
package convert
