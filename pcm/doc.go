// SPDX-License-Identifier: EPL-2.0

// Package pcm names the closed set of PCM sample formats the public
// pipeline surface speaks — unsigned 8-bit, signed 16/24/32-bit and
// 32-bit float — and maps them to and from the engine's native format
// enumeration.
//
// The only asymmetry is 24-bit audio: the engine stores it in a 32-bit
// slot, so FormatS24 reports four bytes per sample and converts through
// the engine's signed 32-bit format. The requested format is still what
// callers are told is in effect.
package pcm
