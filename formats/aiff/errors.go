package aiff

import "errors"

var (
	ErrNotAIFF             = errors.New("not an AIFF file")
	ErrUnsupportedLayout   = errors.New("unsupported AIFF layout")
	ErrUnsupportedEncoding = errors.New("unsupported AIFF encoding")
	ErrBadStream           = errors.New("no such stream")
)
