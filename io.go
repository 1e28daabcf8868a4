// SPDX-License-Identifier: EPL-2.0

package soundflow

import (
	"errors"
	"io"
)

// Staging buffer size for callback I/O, both directions.
const ioBufferSize = 32768

// SeekOrigin names the reference point for a SeekProc request. The
// values match io.SeekStart, io.SeekCurrent and io.SeekEnd.
type SeekOrigin int32

const (
	SeekOriginStart   SeekOrigin = 0
	SeekOriginCurrent SeekOrigin = 1
	SeekOriginEnd     SeekOrigin = 2
)

// ReadProc reads up to len(p) bytes from the host's stream into p and
// returns the number of bytes read. A return of 0 means end of stream.
type ReadProc func(userData any, p []byte) int

// SeekProc repositions the host's stream and returns the new absolute
// position, or a negative value if the stream cannot seek there.
type SeekProc func(userData any, offset int64, origin SeekOrigin) int64

// WriteProc writes p to the host's stream and returns the number of
// bytes written. Anything short of len(p) is treated as an I/O error.
type WriteProc func(userData any, p []byte) int

var errUnseekable = errors.New("stream is not seekable")

// callbackReader adapts a ReadProc/SeekProc pair to io.ReadSeeker.
// Reads are staged through a fixed buffer so the host sees large,
// infrequent requests regardless of how the demuxer reads.
type callbackReader struct {
	onRead   ReadProc
	onSeek   SeekProc
	userData any

	buf  []byte
	r, w int   // unread window within buf
	base int64 // stream position of buf[0]
	eof  bool
}

func newCallbackReader(onRead ReadProc, onSeek SeekProc, userData any) *callbackReader {
	return &callbackReader{
		onRead:   onRead,
		onSeek:   onSeek,
		userData: userData,
		buf:      make([]byte, ioBufferSize),
	}
}

func (c *callbackReader) Read(p []byte) (int, error) {
	if c.r == c.w {
		if c.eof {
			return 0, io.EOF
		}
		c.base += int64(c.w)
		c.r, c.w = 0, 0
		n := c.onRead(c.userData, c.buf)
		if n <= 0 {
			c.eof = true
			return 0, io.EOF
		}
		if n > len(c.buf) {
			n = len(c.buf)
		}
		c.w = n
	}
	n := copy(p, c.buf[c.r:c.w])
	c.r += n
	return n, nil
}

// pos is the logical read position, which runs ahead of the host's
// position by however much of the staging buffer is unconsumed.
func (c *callbackReader) pos() int64 { return c.base + int64(c.r) }

func (c *callbackReader) Seek(offset int64, whence int) (int64, error) {
	var target int64
	switch whence {
	case io.SeekStart:
		target = offset
	case io.SeekCurrent:
		target = c.pos() + offset
	case io.SeekEnd:
		if c.onSeek == nil {
			return 0, errUnseekable
		}
		newPos := c.onSeek(c.userData, offset, SeekOriginEnd)
		if newPos < 0 {
			return 0, errUnseekable
		}
		c.base, c.r, c.w, c.eof = newPos, 0, 0, false
		return newPos, nil
	default:
		return 0, errUnseekable
	}
	if target < 0 {
		return 0, errUnseekable
	}

	// Positions still inside the staging buffer are served from it
	// without consulting the host, so the probe rewind and small
	// forward skips work even when the host cannot seek.
	if target >= c.base && target <= c.base+int64(c.w) {
		c.r = int(target - c.base)
		return target, nil
	}

	if c.onSeek == nil {
		return 0, errUnseekable
	}
	// The host's pointer sits at the end of the staging buffer, so
	// relative requests were converted to absolute ones above.
	newPos := c.onSeek(c.userData, target, SeekOriginStart)
	if newPos < 0 {
		return 0, errUnseekable
	}
	c.base, c.r, c.w, c.eof = newPos, 0, 0, false
	return newPos, nil
}

// callbackWriter adapts a WriteProc to io.Writer with a staging buffer
// mirroring the read side. A short write from the host surfaces as
// ResultEncoderWriteFailed.
type callbackWriter struct {
	onWrite  WriteProc
	userData any

	buf []byte
	n   int
	err error
}

func newCallbackWriter(onWrite WriteProc, userData any) *callbackWriter {
	return &callbackWriter{
		onWrite:  onWrite,
		userData: userData,
		buf:      make([]byte, ioBufferSize),
	}
}

func (c *callbackWriter) Write(p []byte) (int, error) {
	if c.err != nil {
		return 0, c.err
	}
	written := 0
	for len(p) > 0 {
		if c.n == len(c.buf) {
			if err := c.Flush(); err != nil {
				return written, err
			}
		}
		n := copy(c.buf[c.n:], p)
		c.n += n
		p = p[n:]
		written += n
	}
	return written, nil
}

// Flush hands the staged bytes to the host.
func (c *callbackWriter) Flush() error {
	if c.err != nil {
		return c.err
	}
	if c.n == 0 {
		return nil
	}
	chunk := c.buf[:c.n]
	if n := c.onWrite(c.userData, chunk); n < len(chunk) {
		c.err = ResultEncoderWriteFailed
		return c.err
	}
	c.n = 0
	return nil
}
