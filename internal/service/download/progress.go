package download

import "github.com/oshokin/ytm-grabber/internal/event"

// progressTracker turns raw byte counts into DownloadProgress events.
// The published fraction stays in [0, 1], never decreases and changes in whole-percent steps.
type progressTracker struct {
	publisher *event.Publisher
	ref       event.TrackRef
	fraction  float64
	percent   int
	started   bool
}

func (t *progressTracker) update(bytesRead, totalBytes int64) {
	fraction := 0.0
	if totalBytes > 0 {
		fraction = float64(bytesRead) / float64(totalBytes)
	}

	fraction = min(max(fraction, t.fraction), 1)

	percent := int(fraction * 100) //nolint:mnd // Percent.
	if t.started && percent == t.percent {
		return
	}

	t.started = true
	t.fraction = fraction
	t.percent = percent

	t.publisher.Publish(event.DownloadProgress{
		TrackRef:   t.ref,
		Fraction:   fraction,
		BytesRead:  bytesRead,
		TotalBytes: totalBytes,
	})
}

// finish publishes the final 100% event unless it was already sent.
func (t *progressTracker) finish(size int64) {
	if t.started && t.fraction >= 1 {
		return
	}

	t.started = true
	t.fraction = 1
	t.percent = 100

	t.publisher.Publish(event.DownloadProgress{
		TrackRef:   t.ref,
		Fraction:   1,
		BytesRead:  size,
		TotalBytes: size,
	})
}
