package vorbis

import "errors"

var (
	ErrNotOggVorbis = errors.New("not an Ogg Vorbis stream")
	ErrBadStream    = errors.New("no such stream")
)
