package event

import (
	"fmt"
	"strings"
)

// Format renders an event as a short English status line. It has no side effects.
//
//nolint:cyclop,funlen // One branch per event type.
func Format(e Event) string {
	switch ev := e.(type) {
	case Preparing:
		return fmt.Sprintf("%sPreparing %s...", counter(ev.TrackRef), quote(ev.Title))
	case DownloadProgress:
		return fmt.Sprintf("%sDownloading %s: %d%%", counter(ev.TrackRef), quote(ev.Title), ev.Percent())
	case Processing:
		return fmt.Sprintf("%sProcessing %s...", counter(ev.TrackRef), quote(ev.Title))
	case MovingFiles:
		return fmt.Sprintf("%sMoving files...", counter(ev.TrackRef))
	case TrackFailed:
		return fmt.Sprintf("%sFailed %s while %s: %s", counter(ev.TrackRef), quote(ev.Title), ev.Phase, ev.Reason)
	case Cancelled:
		return fmt.Sprintf("Download cancelled after %s.", tracks(ev.Completed))
	case Succeeded:
		if ev.Failed > 0 {
			return fmt.Sprintf("Successfully downloaded %s! %s failed.", tracks(ev.Count), tracks(ev.Failed))
		}

		return fmt.Sprintf("Successfully downloaded %s!", tracks(ev.Count))
	case BatchFailed:
		return fmt.Sprintf("Download failed: none of %s could be downloaded.", tracks(ev.Failed))
	case ValidationFailed:
		return "Download rejected: " + ev.Reason
	case PreparingToPlay:
		return "Preparing to play track..."
	case FetchingStream:
		return "Fetching stream URL..."
	case Playing:
		if ev.Artist != "" {
			return fmt.Sprintf("Playing... %s - %s", ev.Artist, ev.Title)
		}

		return "Playing... " + ev.Title
	case Retrying:
		return fmt.Sprintf("Playback failed. Retrying... (%d/%d)", ev.Attempt, ev.Max)
	case PlaybackFailed:
		return "Playback failed. Please try another track."
	case Unavailable:
		return "Cannot play track - no album playlist ID found."
	case NotFound:
		return "Could not find track info."
	case Stopped:
		return "Playback stopped."
	case Finished:
		return "Reached the end of the album."
	case nil:
		return ""
	default:
		return string(e.Kind())
	}
}

func counter(ref TrackRef) string {
	if ref.Total <= 0 {
		return ""
	}

	return fmt.Sprintf("[%d/%d] ", ref.Position, ref.Total)
}

func quote(title string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		return "track"
	}

	return `"` + title + `"`
}

func tracks(n int) string {
	if n == 1 {
		return "1 track"
	}

	return fmt.Sprintf("%d tracks", n)
}
