package wav

import "errors"

var (
	ErrNotWAV              = errors.New("not a WAV file")
	ErrNoDataChunk         = errors.New("no data chunk found")
	ErrUnsupportedLayout   = errors.New("unsupported WAV layout")
	ErrUnsupportedEncoding = errors.New("unsupported WAV encoding")
	ErrBadStream           = errors.New("no such stream")
)
