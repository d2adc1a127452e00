package stickies

import "errors"

var (
	ErrSourceNotFound = errors.New("stickies source not found")
	ErrSourceLocked   = errors.New("stickies source is not readable")
)
