package app

import (
	"context"
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/oshokin/ytm-grabber/internal/client/catalog"
	"github.com/oshokin/ytm-grabber/internal/config"
	"github.com/oshokin/ytm-grabber/internal/event"
	"github.com/oshokin/ytm-grabber/internal/logger"
	"github.com/oshokin/ytm-grabber/internal/service/download"
	"github.com/oshokin/ytm-grabber/internal/utils"
)

// ErrNothingDownloaded indicates that a batch ended without a single downloaded track.
var ErrNothingDownloaded = errors.New("no track was downloaded")

// ExecuteDownloadCommand downloads the selected tracks of an album and prints a summary.
func ExecuteDownloadCommand(ctx context.Context, cfg *config.Config, albumID, selection string) {
	client, err := catalog.NewClient(cfg)
	if err != nil {
		logger.Fatalf(ctx, "Failed to initialize catalog client: %v", err)
	}

	showBar := cfg.ShowProgressBar && logger.Level() <= zap.InfoLevel

	outcome, err := RunDownload(ctx, cfg, client, albumID, selection, NewRenderer(os.Stderr, showBar))
	if outcome != nil {
		PrintDownloadSummary(ctx, outcome)
	}

	if err != nil && ctx.Err() == nil {
		logger.Errorf(ctx, "Download failed: %v", err)
	}
}

// RunDownload resolves an album, downloads the tracks chosen by selection and renders
// every event of the batch. It returns once the batch ended and all events were rendered.
func RunDownload(
	ctx context.Context,
	cfg *config.Config,
	client catalog.Client,
	albumID string,
	selection string,
	renderer *Renderer,
) (*download.Outcome, error) {
	album, err := client.ResolveAlbum(ctx, albumID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve album: %w", err)
	}

	logger.Infof(ctx, "Album: %s - %s (%d tracks)", album.Artist, album.Title, album.TrackCount())

	indices, err := utils.ParseSelection(selection, album.TrackCount())
	if err != nil {
		return nil, err
	}

	format, err := catalog.ParseAudioFormat(cfg.AudioFormat)
	if err != nil {
		return nil, err
	}

	queue := event.NewQueue()
	pipeline := download.NewPipeline(
		cfg,
		client,
		download.NewStreamFetcher(cfg, client),
		download.NewTemplateManager(ctx, cfg),
		download.NewTagProcessor(),
		queue,
	)

	handle, startErr := pipeline.Start(ctx, download.Batch{
		Album:        album,
		TrackIndices: indices,
		OutputDir:    cfg.OutputPath,
		Format:       format,
	})

	var outcome download.Outcome

	group := new(errgroup.Group)

	group.Go(func() error {
		renderer.Consume(queue.Events())

		return nil
	})

	group.Go(func() error {
		defer queue.Close()

		if startErr != nil {
			return startErr
		}

		outcome = handle.Wait()

		return nil
	})

	if err = group.Wait(); err != nil {
		return nil, err
	}

	if outcome.Succeeded == 0 && !outcome.Cancelled {
		return &outcome, ErrNothingDownloaded
	}

	return &outcome, nil
}
