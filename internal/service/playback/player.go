package playback

//go:generate $MOCKGEN -source=player.go -destination=mocks/player_mock.go

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"

	"github.com/oshokin/ytm-grabber/internal/client/catalog"
	"github.com/oshokin/ytm-grabber/internal/logger"
)

// Player plays a resolved stream until it ends, fails or ctx is done.
type Player interface {
	Play(ctx context.Context, source *catalog.StreamSource, track *catalog.Track) error
}

// StreamPlayer fetches the stream through the catalog client and hands the bytes
// to an external command, or to a writer when no command is configured.
type StreamPlayer struct {
	client  catalog.Client
	command []string
	output  io.Writer
}

// NewStreamPlayer creates a StreamPlayer.
// command is split on whitespace; the stream is written to its stdin.
// An empty command copies the stream to output.
func NewStreamPlayer(client catalog.Client, command string, output io.Writer) *StreamPlayer {
	return &StreamPlayer{
		client:  client,
		command: strings.Fields(command),
		output:  output,
	}
}

// Play implements Player.
func (p *StreamPlayer) Play(ctx context.Context, source *catalog.StreamSource, track *catalog.Track) error {
	result, err := p.client.FetchTrack(ctx, source.URL)
	if err != nil {
		return fmt.Errorf("failed to open stream: %w", err)
	}

	defer result.Body.Close() //nolint:errcheck // Error on close is not critical here.

	// Closing the body unblocks a pending read once ctx is done.
	stop := context.AfterFunc(ctx, func() {
		result.Body.Close() //nolint:errcheck,gosec // Error on close is not critical here.
	})
	defer stop()

	if len(p.command) == 0 {
		return p.copyTo(ctx, result.Body)
	}

	logger.Debugf(ctx, "Piping %q into %s", track.Title, p.command[0])

	//nolint:gosec // The player command comes from the user's own configuration.
	cmd := exec.CommandContext(ctx, p.command[0], p.command[1:]...)
	cmd.Stdin = result.Body

	if err = cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		return fmt.Errorf("player command failed: %w", err)
	}

	return nil
}

func (p *StreamPlayer) copyTo(ctx context.Context, body io.Reader) error {
	written, err := io.Copy(p.output, body)
	if ctx.Err() != nil {
		return ctx.Err()
	}

	if err != nil {
		return fmt.Errorf("stream interrupted after %d bytes: %w", written, err)
	}

	if written == 0 {
		return ErrEmptyStream
	}

	return nil
}
