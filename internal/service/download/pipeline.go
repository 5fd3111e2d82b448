package download

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/oshokin/ytm-grabber/internal/client/catalog"
	"github.com/oshokin/ytm-grabber/internal/config"
	"github.com/oshokin/ytm-grabber/internal/constants"
	"github.com/oshokin/ytm-grabber/internal/event"
	"github.com/oshokin/ytm-grabber/internal/logger"
	"github.com/oshokin/ytm-grabber/internal/utils"
)

// Pipeline downloads batches of tracks in the background.
// Each batch runs in its own goroutine and processes its tracks sequentially.
type Pipeline struct {
	// cfg contains the application configuration.
	cfg *config.Config
	// client is the remote catalog, used for album artwork.
	client catalog.Client
	// fetcher downloads track audio.
	fetcher TrackFetcher
	// templateManager renders file names.
	templateManager TemplateManager
	// tagger writes metadata into fetched files.
	tagger Tagger
	// sink receives the events of every batch.
	sink event.Sink
	// activeDirs maps output directories of running batches to their batch IDs.
	activeDirs map[string]string
	// activeDirsMutex protects activeDirs.
	activeDirsMutex *sync.Mutex
}

// Handle controls a running batch.
type Handle struct {
	id      string
	cancel  context.CancelFunc
	done    chan struct{}
	outcome Outcome
}

// job is the state of one running batch. It is owned by the batch goroutine.
type job struct {
	batch      Batch
	publisher  *event.Publisher
	outputDir  string
	stagingDir string
	coverPath  string
	outcome    Outcome
}

// NewPipeline creates a download pipeline with dependency-injected components.
// A nil sink discards events.
func NewPipeline(
	cfg *config.Config,
	client catalog.Client,
	fetcher TrackFetcher,
	templateManager TemplateManager,
	tagger Tagger,
	sink event.Sink,
) *Pipeline {
	if sink == nil {
		sink = event.Discard
	}

	return &Pipeline{
		cfg:             cfg,
		client:          client,
		fetcher:         fetcher,
		templateManager: templateManager,
		tagger:          tagger,
		sink:            sink,
		activeDirs:      make(map[string]string),
		activeDirsMutex: new(sync.Mutex),
	}
}

// ID returns the batch ID stamped on every event of the batch.
func (h *Handle) ID() string {
	return h.id
}

// Cancel requests the batch to stop. It is safe to call more than once.
func (h *Handle) Cancel() {
	h.cancel()
}

// Done is closed once the batch has finished and its terminal event was published.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Wait blocks until the batch finishes and returns its outcome.
func (h *Handle) Wait() Outcome {
	<-h.done

	return h.outcome
}

// Start validates the batch and starts downloading it in the background.
// A rejected batch publishes a single ValidationFailed event and returns a *ValidationError.
func (p *Pipeline) Start(ctx context.Context, batch Batch) (*Handle, error) {
	batchID := uuid.NewString()
	publisher := event.NewPublisher(p.sink, batchID)
	ctx = logger.WithKV(ctx, "batch_id", batchID)

	if err := batch.Validate(); err != nil {
		return nil, p.reject(ctx, publisher, err)
	}

	outputDir, err := filepath.Abs(batch.OutputDir)
	if err != nil {
		return nil, p.reject(ctx, publisher, &ValidationError{Reason: "invalid output directory", Err: err})
	}

	if !p.acquireDir(outputDir, batchID) {
		return nil, p.reject(ctx, publisher, &ValidationError{
			Reason: fmt.Sprintf("output directory '%s' is used by another download", outputDir),
			Err:    ErrOutputDirBusy,
		})
	}

	stagingDir, err := p.prepareDirs(outputDir)
	if err != nil {
		p.releaseDir(outputDir)

		return nil, p.reject(ctx, publisher, &ValidationError{Reason: err.Error(), Err: err})
	}

	runCtx, cancel := context.WithCancel(ctx)

	handle := &Handle{
		id:     batchID,
		cancel: cancel,
		done:   make(chan struct{}),
	}

	j := &job{
		batch:      batch,
		publisher:  publisher,
		outputDir:  outputDir,
		stagingDir: stagingDir,
		outcome: Outcome{
			BatchID:   batchID,
			StartedAt: time.Now(),
		},
	}

	logger.Infof(ctx, "Starting download of %d tracks from album '%s'", len(batch.TrackIndices), batch.Album.Title)

	go p.run(runCtx, j, handle)

	return handle, nil
}

// reject publishes the terminal event of a batch that never started.
func (p *Pipeline) reject(ctx context.Context, publisher *event.Publisher, err error) error {
	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		validationErr = &ValidationError{Reason: err.Error(), Err: err}
	}

	validationErr.BatchID = publisher.JobID()

	logger.Warnf(ctx, "Download rejected: %s", validationErr.Reason)
	publisher.Publish(event.ValidationFailed{Reason: validationErr.Reason})

	return validationErr
}

func (p *Pipeline) acquireDir(dir, batchID string) bool {
	p.activeDirsMutex.Lock()
	defer p.activeDirsMutex.Unlock()

	if _, busy := p.activeDirs[dir]; busy {
		return false
	}

	p.activeDirs[dir] = batchID

	return true
}

func (p *Pipeline) releaseDir(dir string) {
	p.activeDirsMutex.Lock()
	defer p.activeDirsMutex.Unlock()

	delete(p.activeDirs, dir)
}

// prepareDirs creates the output directory and a fresh staging directory.
func (p *Pipeline) prepareDirs(outputDir string) (string, error) {
	if err := os.MkdirAll(outputDir, constants.DefaultFolderPermissions); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	if p.cfg.StagingPath != "" {
		if err := os.MkdirAll(p.cfg.StagingPath, constants.DefaultFolderPermissions); err != nil {
			return "", fmt.Errorf("failed to create staging path: %w", err)
		}
	}

	stagingDir, err := os.MkdirTemp(p.cfg.StagingPath, constants.StagingDirPattern)
	if err != nil {
		return "", fmt.Errorf("failed to create staging directory: %w", err)
	}

	return stagingDir, nil
}

// run processes the batch and publishes exactly one terminal event.
// Staging cleanup and the output directory release happen before the terminal event is published.
func (p *Pipeline) run(ctx context.Context, j *job, h *Handle) {
	defer close(h.done)
	defer h.cancel()

	defer func() {
		if r := recover(); r != nil {
			logger.Errorf(ctx, "Download batch crashed: %v", r)

			j.outcome.Failed = len(j.batch.TrackIndices) - j.outcome.Succeeded
		}

		p.removeStagingDir(ctx, j.stagingDir)
		p.releaseDir(j.outputDir)
		p.finish(ctx, j, h)
	}()

	p.prepareCover(ctx, j)

	for position, index := range j.batch.TrackIndices {
		if ctx.Err() != nil {
			j.outcome.Cancelled = true

			break
		}

		track, _ := j.batch.Album.Track(index)

		ref := event.TrackRef{
			Index:    index,
			Position: position + 1,
			Total:    len(j.batch.TrackIndices),
			Title:    track.Title,
		}

		if cancelled := p.processTrack(ctx, j, track, ref); cancelled {
			j.outcome.Cancelled = true

			break
		}
	}
}

// finish stores the outcome and publishes the terminal event.
func (p *Pipeline) finish(ctx context.Context, j *job, h *Handle) {
	j.outcome.FinishedAt = time.Now()
	h.outcome = j.outcome

	terminal := j.outcome.terminalEvent()

	logger.Info(ctx, event.Format(terminal))
	j.publisher.Publish(terminal)
}

func (p *Pipeline) removeStagingDir(ctx context.Context, dir string) {
	if err := os.RemoveAll(dir); err != nil {
		logger.Warnf(ctx, "Failed to remove staging directory '%s': %v", dir, err)
	}
}

// prepareCover downloads the album artwork once per batch. Failures only disable embedding.
func (p *Pipeline) prepareCover(ctx context.Context, j *job) {
	coverURL := j.batch.Album.CoverURL
	if coverURL == "" {
		return
	}

	coverPath, err := p.downloadCover(ctx, coverURL, j.stagingDir)
	if err != nil {
		if ctx.Err() == nil {
			logger.Warnf(ctx, "Failed to download album cover, tracks will have no artwork: %v", err)
		}

		return
	}

	j.coverPath = coverPath
}

// processTrack runs fetch, tag and relocate for one track. It reports whether the batch was cancelled.
func (p *Pipeline) processTrack(ctx context.Context, j *job, track *catalog.Track, ref event.TrackRef) bool {
	j.publisher.Publish(event.Preparing{TrackRef: ref})

	progress := &progressTracker{publisher: j.publisher, ref: ref}
	progress.update(0, -1)

	fetched, err := p.fetcher.Fetch(ctx, &FetchRequest{
		Track:      track,
		Format:     j.batch.Format,
		StagingDir: j.stagingDir,
		OnProgress: progress.update,
	})
	if err != nil {
		if ctx.Err() != nil {
			return true
		}

		p.recordFailure(ctx, j, ref, event.PhaseFetching, err)

		return false
	}

	progress.finish(fetched.Size)
	j.outcome.BytesDownloaded += fetched.Size

	if ctx.Err() != nil {
		discardFile(ctx, fetched.Path)

		return true
	}

	trackTags := buildTrackTags(j.batch.Album, track)

	j.publisher.Publish(event.Processing{TrackRef: ref})

	tagErr := p.tagger.WriteTags(ctx, &WriteTagsRequest{
		TrackPath: fetched.Path,
		CoverPath: j.coverPath,
		Format:    fetched.Format,
		TrackTags: trackTags,
	})

	switch {
	case tagErr == nil:
	case errors.Is(tagErr, ErrUnsupportedFormat):
		logger.Warnf(ctx, "Track '%s' is kept untagged: %v", track.Title, tagErr)

		tagErr = nil
	case !errors.Is(tagErr, ErrTagging):
		tagErr = fmt.Errorf("%w: %w", ErrTagging, tagErr)
	}

	if ctx.Err() != nil {
		discardFile(ctx, fetched.Path)

		return true
	}

	// The bytes of a track that failed tagging are still moved to the output directory.
	if tagErr != nil {
		p.recordFailure(ctx, j, ref, event.PhaseTagging, tagErr)
	}

	destination, err := p.relocate(ctx, j, fetched, trackTags, ref)

	switch {
	case err != nil && tagErr != nil:
		logger.Errorf(ctx, "Failed to keep untagged track '%s': %v", track.Title, err)
	case err != nil:
		p.recordFailure(ctx, j, ref, event.PhaseRelocating, err)
	case tagErr != nil:
		j.outcome.Failures[len(j.outcome.Failures)-1].Path = destination
	default:
		j.outcome.Succeeded++
		j.outcome.Files = append(j.outcome.Files, destination)

		logger.Infof(ctx, "Saved track '%s' to '%s'", track.Title, destination)
	}

	return false
}

// relocate moves a fetched file into the output directory under its rendered name.
func (p *Pipeline) relocate(
	ctx context.Context,
	j *job,
	fetched *FetchResult,
	trackTags map[string]string,
	ref event.TrackRef,
) (string, error) {
	destination, err := reserveDestination(j.outputDir, p.trackBaseName(ctx, trackTags), fetched.Format.Extension())
	if err != nil {
		return "", fmt.Errorf("failed to reserve destination: %w", err)
	}

	j.publisher.Publish(event.MovingFiles{TrackRef: ref, Destination: destination})

	if err = moveFile(ctx, fetched.Path, destination); err != nil {
		discardFile(ctx, destination)

		return "", fmt.Errorf("failed to move track: %w", err)
	}

	return destination, nil
}

// trackBaseName renders, sanitizes and truncates the file name of a track.
func (p *Pipeline) trackBaseName(ctx context.Context, trackTags map[string]string) string {
	name := utils.SanitizeFilename(p.templateManager.GetTrackFilename(ctx, trackTags))

	if p.cfg.MaxFilenameLength > 0 && int64(len([]rune(name))) > p.cfg.MaxFilenameLength {
		name = utils.SanitizeFilename(utils.TruncateRunes(name, int(p.cfg.MaxFilenameLength)))
		logger.Infof(ctx, "Track filename was truncated to %d characters", p.cfg.MaxFilenameLength)
	}

	if name == "" || name == "_" {
		name = trackTags["trackNumberPad"] + " - track"
	}

	return name
}

func (p *Pipeline) recordFailure(ctx context.Context, j *job, ref event.TrackRef, phase event.Phase, err error) {
	logger.Errorf(ctx, "Track '%s' failed while %s: %v", ref.Title, phase, err)

	j.outcome.Failed++
	j.outcome.Failures = append(j.outcome.Failures, TrackFailure{
		Index:        ref.Index,
		Title:        ref.Title,
		Phase:        phase,
		ErrorMessage: err.Error(),
	})

	j.publisher.Publish(event.TrackFailed{TrackRef: ref, Phase: phase, Reason: err.Error()})
}

func discardFile(ctx context.Context, path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		logger.Warnf(ctx, "Failed to remove '%s': %v", path, err)
	}
}

// buildTrackTags returns the tag values used by the tagger and the filename template.
func buildTrackTags(album *catalog.Album, track *catalog.Track) map[string]string {
	albumTitle := track.Album
	if albumTitle == "" {
		albumTitle = album.Title
	}

	albumArtist := track.AlbumArtist
	if albumArtist == "" {
		albumArtist = album.Artist
	}

	year := track.Year
	if year == 0 {
		year = album.Year
	}

	tags := map[string]string{
		"albumID":        album.ID,
		"albumTitle":     albumTitle,
		"albumArtist":    albumArtist,
		"playlistID":     album.PlaylistID,
		"trackID":        track.ID,
		"trackTitle":     track.Title,
		"trackArtist":    track.Artist,
		"trackNumber":    strconv.Itoa(track.Number),
		"trackNumberPad": fmt.Sprintf("%02d", track.Number),
		"trackCount":     strconv.Itoa(album.TrackCount()),
		"releaseYear":    "",
	}

	if year > 0 {
		tags["releaseYear"] = strconv.Itoa(year)
	}

	return tags
}
