package playback

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/oshokin/ytm-grabber/internal/client/catalog"
	"github.com/oshokin/ytm-grabber/internal/config"
	"github.com/oshokin/ytm-grabber/internal/event"
	"github.com/oshokin/ytm-grabber/internal/logger"
	"github.com/oshokin/ytm-grabber/internal/utils"
)

// Controller plays the tracks of one album at a time.
// Commands are serialized; each session is driven by a single worker goroutine.
type Controller struct {
	cfg    *config.Config
	client catalog.Client
	player Player
	sink   event.Sink
	format catalog.AudioFormat

	// commandMutex serializes Play, Next, Previous and Stop.
	commandMutex sync.Mutex
	// stateMutex guards the fields below.
	stateMutex sync.Mutex
	album      *catalog.Album
	session    Session
	publisher  *event.Publisher
	worker     *worker
}

type worker struct {
	cancel context.CancelFunc
	done   chan struct{}
	err    error
}

// NewController creates a Controller. A nil sink discards events.
func NewController(cfg *config.Config, client catalog.Client, player Player, sink event.Sink) *Controller {
	if sink == nil {
		sink = event.Discard
	}

	format, err := catalog.ParseAudioFormat(cfg.AudioFormat)
	if err != nil {
		format = catalog.AudioFormat(config.DefaultAudioFormat)
	}

	return &Controller{
		cfg:    cfg,
		client: client,
		player: player,
		sink:   sink,
		format: format,
	}
}

// Play starts a new session at the zero-based trackIndex of album, superseding the current one.
// An album without a streaming context or an index without a track is rejected
// before any network call, and the current session keeps running.
func (c *Controller) Play(ctx context.Context, album *catalog.Album, trackIndex int) error {
	c.commandMutex.Lock()
	defer c.commandMutex.Unlock()

	if !album.IsAvailable() {
		albumID := ""
		if album != nil {
			albumID = album.ID
		}

		logger.Warnf(ctx, "Cannot play track - album %q has no playlist ID or no playable tracks", albumID)
		event.NewPublisher(c.sink, uuid.NewString()).Publish(event.Unavailable{AlbumID: albumID})

		return fmt.Errorf("%w: %q", ErrUnavailable, albumID)
	}

	session := Session{
		ID:         uuid.NewString(),
		AlbumID:    album.ID,
		TrackCount: album.TrackCount(),
	}

	next, effect := Transition(session, Input{Kind: InputPlay, Index: trackIndex})

	track, ok := album.Track(trackIndex)
	if effect == EffectNotFound || !ok {
		logger.Warnf(ctx, "Could not find track %d in album %q", trackIndex, album.ID)
		event.NewPublisher(c.sink, session.ID).Publish(event.NotFound{AlbumID: album.ID, Index: trackIndex})

		return fmt.Errorf("%w: index %d of album %q", ErrNotFound, trackIndex, album.ID)
	}

	if track.SourceID == "" {
		logger.Warnf(ctx, "Track %q of album %q has no stream source", track.Title, album.ID)
		event.NewPublisher(c.sink, session.ID).Publish(event.NotFound{AlbumID: album.ID, Index: trackIndex})

		return fmt.Errorf("%w: index %d of album %q: %w", ErrNotFound, trackIndex, album.ID, catalog.ErrNoSource)
	}

	c.stopWorker()

	c.stateMutex.Lock()
	c.album = album
	c.session = next
	c.publisher = event.NewPublisher(c.sink, next.ID)
	c.stateMutex.Unlock()

	c.startWorker(ctx, effect)

	return nil
}

// Next skips to the following track. Past the last track the session finishes.
func (c *Controller) Next(ctx context.Context) error {
	return c.move(ctx, Input{Kind: InputNext})
}

// Previous goes back to the preceding track, or restarts the first one.
func (c *Controller) Previous(ctx context.Context) error {
	return c.move(ctx, Input{Kind: InputPrevious})
}

// Stop ends playback from any state. It never fails.
func (c *Controller) Stop() {
	c.commandMutex.Lock()
	defer c.commandMutex.Unlock()

	c.stopWorker()

	c.stateMutex.Lock()
	c.session, _ = Transition(c.session, Input{Kind: InputStop})

	publisher := c.publisher
	if publisher == nil {
		publisher = event.NewPublisher(c.sink, uuid.NewString())
	}
	c.stateMutex.Unlock()

	logger.Info(context.Background(), "Stopping playback")
	publisher.Publish(event.Stopped{})
}

// Session returns a snapshot of the current session.
func (c *Controller) Session() Session {
	c.stateMutex.Lock()
	defer c.stateMutex.Unlock()

	return c.session
}

// Wait blocks until the current worker exits.
// It returns an error wrapping ErrRetriesExhausted when a track kept failing,
// or ErrNotFound when a track turned out to have no stream source.
func (c *Controller) Wait() error {
	c.stateMutex.Lock()
	w := c.worker
	c.stateMutex.Unlock()

	if w == nil {
		return nil
	}

	<-w.done

	return w.err
}

func (c *Controller) move(ctx context.Context, in Input) error {
	c.commandMutex.Lock()
	defer c.commandMutex.Unlock()

	c.stateMutex.Lock()
	hasSession := c.album != nil
	c.stateMutex.Unlock()

	if !hasSession {
		return ErrNoSession
	}

	c.stopWorker()

	session, effect := c.apply(in)
	if effect == EffectFinish {
		c.finish(ctx, session)

		return nil
	}

	c.startWorker(ctx, effect)

	return nil
}

func (c *Controller) startWorker(ctx context.Context, effect Effect) {
	workerCtx, cancel := context.WithCancel(ctx)

	w := &worker{
		cancel: cancel,
		done:   make(chan struct{}),
	}

	c.stateMutex.Lock()
	c.worker = w
	sessionID := c.session.ID
	c.stateMutex.Unlock()

	go c.run(logger.WithKV(workerCtx, "session_id", sessionID), w, effect)
}

// stopWorker cancels the current worker and waits for it to exit.
func (c *Controller) stopWorker() {
	c.stateMutex.Lock()
	w := c.worker
	c.stateMutex.Unlock()

	if w == nil {
		return
	}

	w.cancel()
	<-w.done
}

func (c *Controller) run(ctx context.Context, w *worker, effect Effect) {
	defer close(w.done)
	defer w.cancel()

	defer func() {
		if r := recover(); r != nil {
			logger.Errorf(ctx, "Playback worker panicked: %v", r)

			w.err = fmt.Errorf("%w: panic: %v", ErrRetriesExhausted, r)
		}
	}()

	var lastErr error

	for ctx.Err() == nil {
		switch effect {
		case EffectResolve:
			effect, lastErr = c.playCurrent(ctx)
		case EffectScheduleRetry:
			if err := utils.Sleep(ctx, c.cfg.ParsedPlaybackRetryPause); err != nil {
				return
			}

			_, effect = c.apply(Input{Kind: InputRetryDue})
		case EffectGiveUp:
			session, track, publisher := c.snapshot()

			publisher.Publish(event.PlaybackFailed{
				TrackRef: trackRef(session, track),
				Reason:   lastErr.Error(),
			})

			if errors.Is(lastErr, catalog.ErrNoSource) {
				logger.Errorf(ctx, "Playback failed, the track cannot be played: %v", lastErr)

				w.err = fmt.Errorf("%w: %w", ErrNotFound, lastErr)

				return
			}

			logger.Errorf(ctx, "Playback failed after multiple retries: %v", lastErr)

			w.err = fmt.Errorf("%w: %w", ErrRetriesExhausted, lastErr)

			return
		case EffectFinish:
			session, _, _ := c.snapshot()
			c.finish(ctx, session)

			return
		default:
			return
		}
	}
}

// playCurrent resolves and plays the track at the cursor.
// It returns the next effect and the failure that caused it, if any.
func (c *Controller) playCurrent(ctx context.Context) (Effect, error) {
	session, track, publisher := c.snapshot()
	if track == nil {
		publisher.Publish(event.NotFound{AlbumID: session.AlbumID, Index: session.Cursor})

		return EffectNone, ErrNotFound
	}

	ref := trackRef(session, track)
	if session.Retries == 0 {
		publisher.Publish(event.PreparingToPlay{TrackRef: ref})
	}

	publisher.Publish(event.FetchingStream{TrackRef: ref})
	logger.Infof(ctx, "Fetching stream URL for track %q (index %d)", track.Title, session.Cursor+1)

	var (
		source *catalog.StreamSource
		err    error
	)

	if track.SourceID == "" {
		err = catalog.ErrNoSource
	} else {
		source, err = c.client.ResolveTrackSource(ctx, track, c.format)
	}

	if err == nil {
		if _, effect := c.apply(Input{Kind: InputResolved}); effect != EffectPlay {
			return EffectNone, nil
		}

		publisher.Publish(event.Playing{TrackRef: ref, Artist: track.Artist})
		logger.Infof(ctx, "Playing track %q", track.Title)

		if err = c.player.Play(ctx, source, track); err == nil {
			logger.Infof(ctx, "Track %q finished", track.Title)

			_, effect := c.apply(Input{Kind: InputEnded})

			return effect, nil
		}
	}

	if ctx.Err() != nil {
		return EffectNone, nil
	}

	logger.Errorf(ctx, "Playback of track %q failed: %v", track.Title, err)

	// A missing source never resolves, so it is not retried.
	if errors.Is(err, catalog.ErrNoSource) {
		_, effect := c.apply(Input{Kind: InputUnplayable})

		return effect, err
	}

	session, effect := c.apply(Input{Kind: InputFailed})
	if effect == EffectScheduleRetry {
		logger.Infof(ctx, "Retrying playback... (%d/%d)", session.Retries, MaxRetries)
		publisher.Publish(event.Retrying{
			TrackRef: ref,
			Attempt:  session.Retries,
			Max:      MaxRetries,
			Reason:   err.Error(),
		})
	}

	return effect, err
}

func (c *Controller) finish(ctx context.Context, session Session) {
	logger.Info(ctx, "End of album reached")

	c.stateMutex.Lock()
	publisher := c.publisher
	c.stateMutex.Unlock()

	publisher.Publish(event.Finished{AlbumID: session.AlbumID})
}

func (c *Controller) apply(in Input) (Session, Effect) {
	c.stateMutex.Lock()
	defer c.stateMutex.Unlock()

	var effect Effect

	c.session, effect = Transition(c.session, in)

	return c.session, effect
}

func (c *Controller) snapshot() (Session, *catalog.Track, *event.Publisher) {
	c.stateMutex.Lock()
	defer c.stateMutex.Unlock()

	track, _ := c.album.Track(c.session.Cursor)

	return c.session, track, c.publisher
}

func trackRef(session Session, track *catalog.Track) event.TrackRef {
	ref := event.TrackRef{
		Index:    session.Cursor,
		Position: session.Cursor + 1,
		Total:    session.TrackCount,
	}

	if track != nil {
		ref.Title = track.Title
	}

	return ref
}
