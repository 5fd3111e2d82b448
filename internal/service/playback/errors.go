package playback

import "errors"

var (
	// ErrUnavailable indicates that the album has no streaming context and cannot be played.
	ErrUnavailable = errors.New("album is not available for playback")
	// ErrNotFound indicates that the requested track does not exist in the album.
	ErrNotFound = errors.New("track not found")
	// ErrRetriesExhausted indicates that a track kept failing after every retry.
	ErrRetriesExhausted = errors.New("playback failed after multiple retries")
	// ErrNoSession indicates that a command needs a session but none was started.
	ErrNoSession = errors.New("no playback session")
	// ErrEmptyStream indicates that a stream ended before delivering any audio.
	ErrEmptyStream = errors.New("stream ended before any audio was received")
)
