package catalog

import (
	"slices"
	"strings"
	"time"

	"github.com/oshokin/ytm-grabber/internal/utils"
)

// artistSeparator joins several artist names into one display string.
const artistSeparator = ", "

// parseAlbum converts a GraphQL release node into an Album.
// Tracks are sorted by their position; missing positions keep catalog order.
func parseAlbum(node *releaseNode) *Album {
	album := &Album{
		ID:         node.ID,
		Title:      strings.TrimSpace(node.Title),
		Artist:     joinArtists(node.Artists),
		Year:       node.Year,
		CoverURL:   largestImage(node.Thumbnails),
		PlaylistID: node.AudioPlaylistID,
		Tracks:     make([]*Track, 0, len(node.Tracks)),
	}

	for i, tn := range node.Tracks {
		if tn == nil {
			continue
		}

		album.Tracks = append(album.Tracks, parseTrack(tn, album, i+1))
	}

	slices.SortStableFunc(album.Tracks, func(a, b *Track) int {
		return a.Number - b.Number
	})

	return album
}

func parseTrack(node *trackNode, album *Album, fallbackNumber int) *Track {
	track := &Track{
		ID:          node.ID,
		Title:       strings.TrimSpace(node.Title),
		Artist:      joinArtists(node.Artists),
		Album:       album.Title,
		AlbumArtist: album.Artist,
		Year:        album.Year,
		Duration:    time.Duration(node.DurationSeconds) * time.Second,
		Number:      node.Position,
		ArtworkURL:  largestImage(node.Thumbnails),
		SourceID:    node.VideoID,
	}

	if track.Number <= 0 {
		track.Number = fallbackNumber
	}

	if track.Artist == "" {
		track.Artist = album.Artist
	}

	if track.ArtworkURL == "" {
		track.ArtworkURL = album.CoverURL
	}

	// Unavailable tracks keep their place in the list but cannot be resolved.
	if node.IsAvailable != nil && !*node.IsAvailable {
		track.SourceID = ""
	}

	return track
}

func joinArtists(artists []*artistNode) string {
	names := utils.Map(artists, func(a *artistNode) string {
		if a == nil {
			return ""
		}

		return strings.TrimSpace(a.Name)
	})

	names = slices.DeleteFunc(names, func(s string) bool { return s == "" })

	return strings.Join(names, artistSeparator)
}

// largestImage picks the image with the biggest area, falling back to the last one.
func largestImage(images []*imageNode) string {
	var (
		best     string
		bestArea = -1
	)

	for _, img := range images {
		if img == nil || img.URL == "" {
			continue
		}

		if area := img.Width * img.Height; area >= bestArea {
			best, bestArea = img.URL, area
		}
	}

	return best
}

func parseStreamSource(node *streamNode, requested AudioFormat) (*StreamSource, error) {
	if node == nil || node.Stream == "" {
		return nil, ErrEmptyStream
	}

	source := &StreamSource{
		URL:    node.Stream,
		Format: requested,
		Size:   node.Size,
	}

	if f := AudioFormat(strings.ToLower(node.Format)); f.IsValid() {
		source.Format = f
	}

	if source.Size <= 0 {
		source.Size = -1
	}

	if node.Expire > 0 {
		source.ExpiresAt = time.Unix(node.Expire, 0)
	}

	return source, nil
}
