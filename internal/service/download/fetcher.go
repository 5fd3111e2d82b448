package download

//go:generate $MOCKGEN -source=fetcher.go -destination=mocks/fetcher_mock.go

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/oshokin/ytm-grabber/internal/client/catalog"
	"github.com/oshokin/ytm-grabber/internal/config"
	"github.com/oshokin/ytm-grabber/internal/constants"
	"github.com/oshokin/ytm-grabber/internal/logger"
	"github.com/oshokin/ytm-grabber/internal/utils"
)

// TrackFetcher downloads the audio of a single track into a staging folder.
type TrackFetcher interface {
	// Fetch resolves the track source and streams it into req.StagingDir.
	Fetch(ctx context.Context, req *FetchRequest) (*FetchResult, error)
}

// ProgressFunc receives the number of bytes fetched so far and the expected total (-1 when unknown).
// Values passed across retries may go backwards; callers clamp them.
type ProgressFunc func(bytesRead, totalBytes int64)

// FetchRequest contains parameters for fetching a track.
type FetchRequest struct {
	// Track is the track to fetch.
	Track *catalog.Track
	// Format is the requested audio format.
	Format catalog.AudioFormat
	// StagingDir is the folder the file is written into.
	StagingDir string
	// OnProgress is called while bytes arrive. May be nil.
	OnProgress ProgressFunc
}

// FetchResult describes a fetched file.
type FetchResult struct {
	// Path is the location of the complete file in the staging folder.
	Path string
	// Format is the format actually delivered by the catalog.
	Format catalog.AudioFormat
	// Size is the number of bytes written.
	Size int64
}

// StreamFetcher is the default TrackFetcher, backed by the remote catalog.
type StreamFetcher struct {
	// cfg contains the application configuration.
	cfg *config.Config
	// client is the remote catalog.
	client catalog.Client
}

// NewStreamFetcher creates a TrackFetcher that downloads streams from the catalog.
func NewStreamFetcher(cfg *config.Config, client catalog.Client) TrackFetcher {
	return &StreamFetcher{
		cfg:    cfg,
		client: client,
	}
}

// Fetch implements TrackFetcher.
// Failed attempts are retried up to fetch_attempts_count times with a random pause in between.
func (f *StreamFetcher) Fetch(ctx context.Context, req *FetchRequest) (*FetchResult, error) {
	if req.Track == nil || req.Track.SourceID == "" {
		return nil, ErrSourceUnavailable
	}

	attempts := max(f.cfg.FetchAttemptsCount, 1)

	for attempt := int64(1); ; attempt++ {
		result, err := f.fetchOnce(ctx, req)
		if err == nil {
			return result, nil
		}

		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}

		if attempt >= attempts || errors.Is(err, ErrSourceUnavailable) {
			return nil, err
		}

		logger.Warnf(ctx, "Attempt %d/%d to fetch track '%s' failed: %v", attempt, attempts, req.Track.Title, err)

		if err = utils.RandomPause(ctx, f.cfg.ParsedMinRetryPause, f.cfg.ParsedMaxRetryPause); err != nil {
			return nil, err
		}
	}
}

func (f *StreamFetcher) fetchOnce(ctx context.Context, req *FetchRequest) (*FetchResult, error) {
	source, err := f.client.ResolveTrackSource(ctx, req.Track, req.Format)
	if err != nil {
		if errors.Is(err, catalog.ErrNoSource) || errors.Is(err, catalog.ErrEmptyStream) {
			return nil, fmt.Errorf("%w: %w", ErrSourceUnavailable, err)
		}

		return nil, fmt.Errorf("%w: failed to resolve source: %w", ErrTransientFetch, err)
	}

	format := source.Format
	if !format.IsValid() {
		format = req.Format
	}

	stream, err := f.client.FetchTrack(ctx, source.URL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTransientFetch, err)
	}

	defer stream.Body.Close() //nolint:errcheck // Error on close is not critical here.

	expectedSize := stream.TotalBytes
	if expectedSize <= 0 {
		expectedSize = source.Size
	}

	finalPath := filepath.Join(req.StagingDir, "track-"+uuid.NewString()+format.Extension())

	written, err := f.writeStream(ctx, stream.Body, finalPath, expectedSize, req.OnProgress)
	if err != nil {
		return nil, err
	}

	return &FetchResult{
		Path:   finalPath,
		Format: format,
		Size:   written,
	}, nil
}

// writeStream copies body into a .part file and renames it to finalPath once complete.
// The partial file is removed on any failure.
func (f *StreamFetcher) writeStream(
	ctx context.Context,
	body io.Reader,
	finalPath string,
	expectedSize int64,
	onProgress ProgressFunc,
) (written int64, err error) {
	tempPath := finalPath + constants.ExtensionPart

	file, err := os.OpenFile(filepath.Clean(tempPath), createNewFileOptions, constants.DefaultFilePermissions)
	if err != nil {
		return 0, fmt.Errorf("failed to create partial file: %w", err)
	}

	defer func() {
		if err == nil {
			return
		}

		if removeErr := os.Remove(tempPath); removeErr != nil && !os.IsNotExist(removeErr) {
			logger.Warnf(ctx, "Failed to remove partial file '%s': %v", tempPath, removeErr)
		}
	}()

	counter := &progressCounter{total: expectedSize, onProgress: onProgress}
	counter.report()

	written, err = f.copyThrottled(ctx, io.MultiWriter(file, counter), &contextReader{ctx: ctx, r: body})

	closeErr := file.Close()

	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return written, ctxErr
		}

		return written, fmt.Errorf("%w: %w", ErrTransientFetch, err)
	}

	if closeErr != nil {
		return written, fmt.Errorf("failed to close partial file: %w", closeErr)
	}

	if written == 0 {
		return 0, fmt.Errorf("%w: stream is empty", ErrIncompleteDownload)
	}

	if expectedSize > 0 && written != expectedSize {
		return written, fmt.Errorf("%w: expected %d bytes, got %d", ErrIncompleteDownload, expectedSize, written)
	}

	if err = os.Rename(tempPath, finalPath); err != nil {
		return written, fmt.Errorf("failed to finalize file: %w", err)
	}

	return written, nil
}

// copyThrottled copies src into dst, at most download_speed_limit bytes per second.
func (f *StreamFetcher) copyThrottled(ctx context.Context, dst io.Writer, src io.Reader) (int64, error) {
	limit := f.cfg.ParsedDownloadSpeedLimit
	if limit <= 0 {
		return io.Copy(dst, src)
	}

	var total int64

	for {
		n, err := io.CopyN(dst, src, limit)
		total += n

		if errors.Is(err, io.EOF) {
			return total, nil
		}

		if err != nil {
			return total, err
		}

		if err = utils.Sleep(ctx, time.Second); err != nil {
			return total, err
		}
	}
}

// contextReader stops reading once its context is done.
type contextReader struct {
	ctx context.Context //nolint:containedctx // The reader is bound to a single fetch.
	r   io.Reader
}

func (r *contextReader) Read(p []byte) (int, error) {
	if err := r.ctx.Err(); err != nil {
		return 0, err
	}

	return r.r.Read(p)
}

// progressCounter counts written bytes and forwards them to a ProgressFunc.
type progressCounter struct {
	read       int64
	total      int64
	onProgress ProgressFunc
}

func (c *progressCounter) Write(p []byte) (int, error) {
	c.read += int64(len(p))
	c.report()

	return len(p), nil
}

func (c *progressCounter) report() {
	if c.onProgress != nil {
		c.onProgress(c.read, c.total)
	}
}
