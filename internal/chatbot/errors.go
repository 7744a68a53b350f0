package chatbot

import "errors"

// Stage failures. Every error returned by this package wraps exactly one of
// them, so callers can branch with errors.Is.
var (
	ErrLoad   = errors.New("load failed")
	ErrRemote = errors.New("completion failed")
	ErrQuery  = errors.New("query failed")
)
