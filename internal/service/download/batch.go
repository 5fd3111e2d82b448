package download

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/oshokin/ytm-grabber/internal/client/catalog"
)

// Batch is a request to download a selection of album tracks.
// The pipeline owns the batch for its whole lifetime.
type Batch struct {
	// Album is the album the tracks belong to.
	Album *catalog.Album `validate:"required"`
	// TrackIndices are zero-based album positions, downloaded in this order.
	TrackIndices []int `validate:"required,min=1,unique,dive,min=0"`
	// OutputDir is the directory receiving the finished files.
	OutputDir string `validate:"required"`
	// Format is the requested audio format.
	Format catalog.AudioFormat `validate:"required,oneof=mp3 flac m4a opus wav"`
}

//nolint:gochecknoglobals // validator caches struct metadata and is safe for concurrent use.
var batchValidator = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the batch before any work is started.
// The returned error is always a *ValidationError.
func (b *Batch) Validate() error {
	if err := batchValidator.Struct(b); err != nil {
		return &ValidationError{Reason: describeValidationError(err), Err: err}
	}

	if !b.Album.IsAvailable() {
		return &ValidationError{
			Reason: fmt.Sprintf("album %s is not available", b.Album.ID),
			Err:    ErrAlbumUnavailable,
		}
	}

	for _, idx := range b.TrackIndices {
		if _, ok := b.Album.Track(idx); !ok {
			return &ValidationError{
				Reason: fmt.Sprintf("track %d does not exist, the album has %d tracks", idx+1, b.Album.TrackCount()),
				Err:    ErrTrackIndexOutOfRange,
			}
		}
	}

	return nil
}

// describeValidationError turns the first field error into a readable reason.
func describeValidationError(err error) string {
	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) || len(fieldErrors) == 0 {
		return err.Error()
	}

	fe := fieldErrors[0]

	switch field := fe.StructField(); {
	case field == "Album":
		return "album is required"
	case field == "TrackIndices" && fe.Tag() == "unique":
		return "track selection contains duplicates"
	case field == "TrackIndices":
		return "no tracks selected"
	case strings.HasPrefix(field, "TrackIndices["):
		return ErrTrackIndexOutOfRange.Error()
	case field == "OutputDir":
		return "output directory is required"
	case field == "Format":
		return fmt.Sprintf("unsupported audio format '%v'", fe.Value())
	default:
		return fmt.Sprintf("%s failed on '%s'", fe.Field(), fe.Tag())
	}
}
