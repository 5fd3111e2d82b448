package app

import (
	"context"
	"fmt"
	"io"

	"github.com/oshokin/ytm-grabber/internal/logger"
	"github.com/oshokin/ytm-grabber/internal/service/download"
)

// ExecuteInspectCommand prints the tags of downloaded files.
// It reports whether every file could be read.
func ExecuteInspectCommand(ctx context.Context, out io.Writer, paths []string) bool {
	ok := true

	for _, path := range paths {
		tags, err := download.ReadTags(path)
		if err != nil {
			logger.Errorf(ctx, "Failed to inspect '%s': %v", path, err)

			ok = false

			continue
		}

		printTags(out, tags)
	}

	return ok
}

func printTags(out io.Writer, tags *download.FileTags) {
	cover := "no"
	if tags.HasCover {
		cover = "yes"
	}

	//nolint:errcheck // Terminal output.
	fmt.Fprintf(out,
		"%s\n  Format:       %s (%s)\n  Title:        %s\n  Artist:       %s\n  Album:        %s\n"+
			"  Album Artist: %s\n  Year:         %d\n  Track:        %d/%d\n  Cover:        %s\n",
		tags.Path, tags.FileType, tags.TagFormat, tags.Title, tags.Artist, tags.Album,
		tags.AlbumArtist, tags.Year, tags.Track, tags.TrackTotal, cover)
}
