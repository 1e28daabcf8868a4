package mp3

import "errors"

var (
	ErrNotMP3    = errors.New("not an MP3 stream")
	ErrBadStream = errors.New("no such stream")
)
