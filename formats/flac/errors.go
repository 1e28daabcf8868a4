package flac

import "errors"

var (
	ErrNotFLAC             = errors.New("not a FLAC stream")
	ErrUnsupportedLayout   = errors.New("unsupported FLAC layout")
	ErrUnsupportedEncoding = errors.New("unsupported FLAC encoding")
	ErrBadStream           = errors.New("no such stream")
)
