package trailblog

import "errors"

var (
	ErrPostNotFound     = errors.New("post not found")
	ErrInvalidPostInput = errors.New("invalid post input")
	ErrUnknownState     = errors.New("unknown state code")
	ErrCacheMiss        = errors.New("cache miss")
	ErrInvalidContact   = errors.New("invalid contact message")
)
