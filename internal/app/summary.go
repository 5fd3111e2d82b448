package app

import (
	"context"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/oshokin/ytm-grabber/internal/logger"
	"github.com/oshokin/ytm-grabber/internal/service/download"
)

// minReportedDuration hides duration and speed for batches that ended almost immediately.
const minReportedDuration = 100 * time.Millisecond

const summarySeparator = "═══════════════════════════════════════════════════════════════"

// PrintDownloadSummary logs the statistics of a finished batch.
func PrintDownloadSummary(ctx context.Context, outcome *download.Outcome) {
	if outcome.Processed() == 0 && !outcome.Cancelled {
		return
	}

	logger.Info(ctx, "")
	logger.Info(ctx, summarySeparator)

	if outcome.Cancelled {
		logger.Info(ctx, "           DOWNLOAD SUMMARY (Interrupted)")
	} else {
		logger.Info(ctx, "                     DOWNLOAD SUMMARY")
	}

	logger.Info(ctx, summarySeparator)
	logger.Infof(ctx, "Tracks:           %d processed", outcome.Processed())
	logger.Infof(ctx, "  Downloaded:     %d", outcome.Succeeded)

	if outcome.Failed > 0 {
		logger.Infof(ctx, "  Failed:         %d", outcome.Failed)
		logger.Infof(ctx, "  Success Rate:   %.1f%%", outcome.SuccessRate())
	}

	if outcome.BytesDownloaded > 0 {
		logger.Info(ctx, "")
		//nolint:gosec // BytesDownloaded is positive here.
		logger.Infof(ctx, "Data Downloaded:  %s", humanize.Bytes(uint64(outcome.BytesDownloaded)))
	}

	if duration := outcome.Duration(); duration > minReportedDuration {
		logger.Infof(ctx, "Duration:         %s", formatDuration(duration))

		if outcome.BytesDownloaded > 0 {
			bytesPerSecond := float64(outcome.BytesDownloaded) / duration.Seconds()
			//nolint:gosec // The speed is positive here.
			logger.Infof(ctx, "Average Speed:    %s/s", humanize.Bytes(uint64(bytesPerSecond)))
		}
	}

	logger.Info(ctx, summarySeparator)

	for _, failure := range outcome.Failures {
		message := fmt.Sprintf("  #%d %q (%s): %s", failure.Index+1, failure.Title, failure.Phase, failure.ErrorMessage)
		if failure.Path != "" {
			message += " [kept untagged at " + failure.Path + "]"
		}

		logger.Warn(ctx, message)
	}
}

func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}

	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60 //nolint:mnd // Minutes in an hour.
	seconds := int(d.Seconds()) % 60 //nolint:mnd // Seconds in a minute.

	if hours > 0 {
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	}

	if minutes > 0 {
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	}

	return fmt.Sprintf("%ds", seconds)
}
