package app

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/oshokin/ytm-grabber/internal/client/catalog"
	"github.com/oshokin/ytm-grabber/internal/config"
	"github.com/oshokin/ytm-grabber/internal/event"
	"github.com/oshokin/ytm-grabber/internal/logger"
	"github.com/oshokin/ytm-grabber/internal/service/playback"
)

// ExecutePlayCommand plays an album starting at the 1-based trackNumber.
// Audio goes to the configured player command, or to stdout.
func ExecutePlayCommand(ctx context.Context, cfg *config.Config, albumID string, trackNumber int) {
	client, err := catalog.NewClient(cfg)
	if err != nil {
		logger.Fatalf(ctx, "Failed to initialize catalog client: %v", err)
	}

	player := playback.NewStreamPlayer(client, cfg.PlayerCommand, os.Stdout)

	if err = RunPlayback(ctx, cfg, client, player, albumID, trackNumber, os.Stderr); err != nil {
		logger.Errorf(ctx, "Playback failed: %v", err)
	}
}

// RunPlayback plays an album until it ends, a track gives up or ctx is done.
// Status lines are written to status.
func RunPlayback(
	ctx context.Context,
	cfg *config.Config,
	client catalog.Client,
	player playback.Player,
	albumID string,
	trackNumber int,
	status io.Writer,
) error {
	album, err := client.ResolveAlbum(ctx, albumID)
	if err != nil {
		return fmt.Errorf("failed to resolve album: %w", err)
	}

	queue := event.NewQueue()
	renderer := NewRenderer(status, false)

	go renderer.Consume(queue.Events())

	defer func() {
		queue.Close()
		<-queue.Done()
	}()

	controller := playback.NewController(cfg, client, player, queue)
	if err = controller.Play(ctx, album, trackNumber-1); err != nil {
		return err
	}

	err = controller.Wait()

	if ctx.Err() != nil {
		controller.Stop()

		return nil
	}

	return err
}
