package download

import (
	"time"

	"github.com/oshokin/ytm-grabber/internal/event"
)

// TrackFailure records a track that could not be downloaded completely.
type TrackFailure struct {
	// Index is the zero-based position of the track in the album.
	Index int
	// Title is the track title.
	Title string
	// Phase is the step that failed.
	Phase event.Phase
	// ErrorMessage is the error text.
	ErrorMessage string
	// Path is where the untagged file was kept after a tagging failure. Empty otherwise.
	Path string
}

// Outcome is the result of a finished batch. It is produced once per batch.
type Outcome struct {
	// BatchID is the ID of the batch.
	BatchID string
	// Succeeded is the number of tracks that reached the output directory tagged (or untagged for formats without tags).
	Succeeded int
	// Failed is the number of tracks that failed in any phase.
	Failed int
	// Cancelled reports whether the batch was stopped by the caller.
	Cancelled bool
	// Files are the final paths of successful tracks, in batch order.
	Files []string
	// Failures describes each failed track, in batch order.
	Failures []TrackFailure
	// BytesDownloaded is the total size of fetched audio.
	BytesDownloaded int64
	// StartedAt is the moment the batch started.
	StartedAt time.Time
	// FinishedAt is the moment the batch ended.
	FinishedAt time.Time
}

// Processed returns the number of tracks that were attempted to the end.
func (o *Outcome) Processed() int {
	return o.Succeeded + o.Failed
}

// Duration returns how long the batch ran.
func (o *Outcome) Duration() time.Duration {
	if o.StartedAt.IsZero() || o.FinishedAt.IsZero() {
		return 0
	}

	return o.FinishedAt.Sub(o.StartedAt)
}

// SuccessRate returns the share of processed tracks that succeeded, in percent.
func (o *Outcome) SuccessRate() float64 {
	processed := o.Processed()
	if processed == 0 {
		return 0
	}

	return float64(o.Succeeded) / float64(processed) * 100 //nolint:mnd // Percent.
}

// terminalEvent returns the event closing the batch.
func (o *Outcome) terminalEvent() event.Event {
	switch {
	case o.Cancelled:
		return event.Cancelled{Completed: o.Succeeded}
	case o.Succeeded > 0:
		return event.Succeeded{Count: o.Succeeded, Failed: o.Failed}
	default:
		return event.BatchFailed{Failed: o.Failed}
	}
}
