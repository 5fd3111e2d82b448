package catalog

import "errors"

var (
	// ErrUnexpectedHTTPStatus indicates an unexpected HTTP status code was received.
	ErrUnexpectedHTTPStatus = errors.New("unexpected HTTP status")
	// ErrAlbumNotFound indicates that the catalog has no album with the requested ID.
	ErrAlbumNotFound = errors.New("album not found")
	// ErrNoSource indicates that a track has no source handle to resolve.
	ErrNoSource = errors.New("track has no stream source")
	// ErrEmptyStream indicates that the catalog resolved a source without a stream URL.
	ErrEmptyStream = errors.New("catalog returned an empty stream URL")
	// ErrUnsupportedFormat indicates that an audio format is not supported.
	ErrUnsupportedFormat = errors.New("unsupported audio format")
)
