package download

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dhowden/tag"
)

// FileTags is the metadata read back from an audio file.
type FileTags struct {
	// Path is the inspected file.
	Path string
	// FileType is the detected container, e.g. "MP3" or "FLAC".
	FileType string
	// TagFormat is the detected tag format, e.g. "ID3v2.4" or "VORBIS".
	TagFormat string
	Title     string
	Artist    string
	Album     string
	// AlbumArtist falls back to Artist when the file has none.
	AlbumArtist string
	Year        int
	Track       int
	TrackTotal  int
	// HasCover reports whether an embedded picture is present.
	HasCover bool
}

// ReadTags reads the metadata of an audio file.
func ReadTags(path string) (*FileTags, error) {
	file, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	defer file.Close() //nolint:errcheck // Read-only file.

	metadata, err := tag.ReadFrom(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read tags: %w", err)
	}

	trackNumber, trackTotal := metadata.Track()

	albumArtist := metadata.AlbumArtist()
	if albumArtist == "" {
		albumArtist = metadata.Artist()
	}

	return &FileTags{
		Path:        path,
		FileType:    string(metadata.FileType()),
		TagFormat:   string(metadata.Format()),
		Title:       metadata.Title(),
		Artist:      metadata.Artist(),
		Album:       metadata.Album(),
		AlbumArtist: albumArtist,
		Year:        metadata.Year(),
		Track:       trackNumber,
		TrackTotal:  trackTotal,
		HasCover:    metadata.Picture() != nil,
	}, nil
}
