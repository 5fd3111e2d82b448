package download

import (
	"errors"
	"fmt"
)

// Common errors of the download pipeline.
var (
	// ErrValidation is matched by every ValidationError.
	ErrValidation = errors.New("invalid batch")
	// ErrAlbumUnavailable indicates that the album cannot be downloaded.
	ErrAlbumUnavailable = errors.New("album is not available")
	// ErrTrackIndexOutOfRange indicates that a selected index has no track.
	ErrTrackIndexOutOfRange = errors.New("track index out of range")
	// ErrOutputDirBusy indicates that another active batch writes into the same directory.
	ErrOutputDirBusy = errors.New("output directory is used by another download")
	// ErrTransientFetch wraps network and stream failures that may succeed on another attempt.
	ErrTransientFetch = errors.New("failed to fetch track")
	// ErrSourceUnavailable indicates that a track has no resolvable stream source.
	ErrSourceUnavailable = errors.New("track source is unavailable")
	// ErrIncompleteDownload indicates that the downloaded size doesn't match the expected size.
	ErrIncompleteDownload = errors.New("incomplete download")
	// ErrTagging wraps failures of the tagger.
	ErrTagging = errors.New("failed to write tags")
	// ErrUnsupportedFormat indicates that the tagger cannot handle the file format.
	ErrUnsupportedFormat = errors.New("unsupported format for tagging")
	// ErrEmptyTrackPath indicates that the track file path is empty.
	ErrEmptyTrackPath = errors.New("track path cannot be empty")
	// ErrNoFreeFilename indicates that every collision suffix for a filename is taken.
	ErrNoFreeFilename = errors.New("no free filename")
)

// ValidationError describes why a batch was rejected before any work was done.
type ValidationError struct {
	// BatchID is the ID the rejected batch would have had.
	BatchID string
	// Reason is a human-readable description of the problem.
	Reason string
	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", ErrValidation, e.Reason)
}

// Unwrap returns the underlying cause.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Is makes every ValidationError match ErrValidation.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation //nolint:errorlint // Identity check of the sentinel.
}
