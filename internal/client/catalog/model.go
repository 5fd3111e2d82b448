package catalog

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/oshokin/ytm-grabber/internal/constants"
)

// AudioFormat is a container/codec a track can be delivered in.
type AudioFormat string

// Supported audio formats.
const (
	FormatMP3  AudioFormat = "mp3"
	FormatFLAC AudioFormat = "flac"
	FormatM4A  AudioFormat = "m4a"
	FormatOpus AudioFormat = "opus"
	FormatWAV  AudioFormat = "wav"
)

// ParseAudioFormat converts a textual format name into an AudioFormat.
func ParseAudioFormat(s string) (AudioFormat, error) {
	f := AudioFormat(strings.ToLower(strings.TrimSpace(s)))
	if !f.IsValid() {
		return "", fmt.Errorf("%w: '%s'", ErrUnsupportedFormat, s)
	}

	return f, nil
}

// IsValid reports whether f is one of the supported formats.
func (f AudioFormat) IsValid() bool {
	switch f {
	case FormatMP3, FormatFLAC, FormatM4A, FormatOpus, FormatWAV:
		return true
	default:
		return false
	}
}

// Extension returns the file extension, with the leading dot, used for f.
func (f AudioFormat) Extension() string {
	switch f {
	case FormatMP3:
		return constants.ExtensionMP3
	case FormatFLAC:
		return constants.ExtensionFLAC
	case FormatM4A:
		return constants.ExtensionM4A
	case FormatOpus:
		return constants.ExtensionOpus
	case FormatWAV:
		return constants.ExtensionWAV
	default:
		return "." + string(f)
	}
}

// String implements fmt.Stringer.
func (f AudioFormat) String() string {
	return string(f)
}

// Track is a single track of an album. Values are never modified after being returned by the client.
type Track struct {
	// ID is the catalog identifier of the track.
	ID string
	// Title is the track title.
	Title string
	// Artist is the joined list of track artists.
	Artist string
	// Album is the title of the album the track belongs to.
	Album string
	// AlbumArtist is the joined list of album artists.
	AlbumArtist string
	// Year is the release year, zero when unknown.
	Year int
	// Duration is the track length.
	Duration time.Duration
	// Number is the 1-based position of the track in the album.
	Number int
	// ArtworkURL is the URL of the track or album artwork.
	ArtworkURL string
	// SourceID is the handle used to resolve a stream; empty means the track cannot be streamed.
	SourceID string
}

// Album is an album with its ordered track list.
type Album struct {
	// ID is the catalog identifier of the album.
	ID string
	// Title is the album title.
	Title string
	// Artist is the joined list of album artists.
	Artist string
	// Year is the release year, zero when unknown.
	Year int
	// CoverURL is the URL of the largest cover image.
	CoverURL string
	// PlaylistID is the streaming session context. Empty means the album is not available.
	PlaylistID string
	// Tracks is ordered by Number.
	Tracks []*Track
}

// IsAvailable reports whether tracks of the album may be fetched or played.
func (a *Album) IsAvailable() bool {
	if a == nil || a.PlaylistID == "" {
		return false
	}

	for _, t := range a.Tracks {
		if t != nil && t.SourceID != "" {
			return true
		}
	}

	return false
}

// Track returns the track at the zero-based index.
func (a *Album) Track(index int) (*Track, bool) {
	if a == nil || index < 0 || index >= len(a.Tracks) || a.Tracks[index] == nil {
		return nil, false
	}

	return a.Tracks[index], true
}

// TrackCount returns the number of tracks in the album.
func (a *Album) TrackCount() int {
	if a == nil {
		return 0
	}

	return len(a.Tracks)
}

// StreamSource is a resolved, short-lived location of a track's audio.
type StreamSource struct {
	// URL is the address to fetch the audio from.
	URL string
	// Format is the format the catalog will deliver.
	Format AudioFormat
	// Size is the expected number of bytes, -1 when unknown.
	Size int64
	// ExpiresAt is the moment the URL stops being valid, zero when unknown.
	ExpiresAt time.Time
}

// IsExpired reports whether the source URL is no longer valid at now.
func (s *StreamSource) IsExpired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// FetchTrackResult is an open audio stream.
type FetchTrackResult struct {
	// Body is the stream, closed by the caller.
	Body io.ReadCloser
	// TotalBytes is the Content-Length of the stream, -1 when unknown.
	TotalBytes int64
}
