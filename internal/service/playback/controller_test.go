package playback_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/oshokin/ytm-grabber/internal/client/catalog"
	mock_catalog "github.com/oshokin/ytm-grabber/internal/client/catalog/mocks"
	"github.com/oshokin/ytm-grabber/internal/config"
	"github.com/oshokin/ytm-grabber/internal/event"
	"github.com/oshokin/ytm-grabber/internal/service/playback"
	mock_playback "github.com/oshokin/ytm-grabber/internal/service/playback/mocks"
)

const waitTimeout = 5 * time.Second

var errNetwork = errors.New("connection reset")

type controllerSetup struct {
	controller *playback.Controller
	client     *mock_catalog.MockClient
	player     *mock_playback.MockPlayer
	recorder   *event.Recorder
}

func newControllerSetup(t *testing.T) *controllerSetup {
	t.Helper()

	ctrl := gomock.NewController(t)

	cfg := config.Default()
	cfg.ParsedPlaybackRetryPause = time.Millisecond

	s := &controllerSetup{
		client:   mock_catalog.NewMockClient(ctrl),
		player:   mock_playback.NewMockPlayer(ctrl),
		recorder: event.NewRecorder(),
	}

	s.controller = playback.NewController(cfg, s.client, s.player, s.recorder)

	t.Cleanup(s.controller.Stop)

	return s
}

func newTestAlbum(trackCount int) *catalog.Album {
	album := &catalog.Album{
		ID:         "MPREb_test",
		Title:      "Test Album",
		Artist:     "Test Artist",
		PlaylistID: "OLAK5uy_test",
	}

	for i := range trackCount {
		album.Tracks = append(album.Tracks, &catalog.Track{
			ID:       fmt.Sprintf("track-%d", i),
			Title:    fmt.Sprintf("Track %d", i+1),
			Artist:   "Test Artist",
			Number:   i + 1,
			SourceID: fmt.Sprintf("video-%d", i),
		})
	}

	return album
}

func sourceOf(track *catalog.Track) *catalog.StreamSource {
	return &catalog.StreamSource{URL: "https://cdn/" + track.SourceID, Format: catalog.FormatMP3, Size: -1}
}

// blockUntilCancelled plays until the worker context is done.
func blockUntilCancelled(ctx context.Context, _ *catalog.StreamSource, _ *catalog.Track) error {
	<-ctx.Done()

	return ctx.Err()
}

func isPlaying(index int) func(event.Event) bool {
	return func(e event.Event) bool {
		playing, ok := e.(event.Playing)

		return ok && playing.Index == index
	}
}

func waitDone(t *testing.T, c *playback.Controller) error {
	t.Helper()

	result := make(chan error, 1)

	go func() { result <- c.Wait() }()

	select {
	case err := <-result:
		return err
	case <-time.After(waitTimeout):
		require.FailNow(t, "playback did not finish in time")

		return nil
	}
}

// TestController_RetriesExhausted tests that four failures give three retries and one failure event.
func TestController_RetriesExhausted(t *testing.T) {
	t.Parallel()

	s := newControllerSetup(t)
	album := newTestAlbum(3)

	s.client.EXPECT().
		ResolveTrackSource(gomock.Any(), album.Tracks[1], catalog.FormatMP3).
		Return(nil, errNetwork).
		Times(4)

	require.NoError(t, s.controller.Play(context.Background(), album, 1))

	err := waitDone(t, s.controller)
	require.ErrorIs(t, err, playback.ErrRetriesExhausted)
	require.ErrorIs(t, err, errNetwork)

	assert.Equal(t, []event.Kind{
		event.KindPreparingToPlay,
		event.KindFetchingStream,
		event.KindRetrying,
		event.KindFetchingStream,
		event.KindRetrying,
		event.KindFetchingStream,
		event.KindRetrying,
		event.KindFetchingStream,
		event.KindPlaybackFailed,
	}, s.recorder.Kinds())

	var attempts []int

	for _, e := range s.recorder.Events() {
		if retrying, ok := e.(event.Retrying); ok {
			attempts = append(attempts, retrying.Attempt)
			assert.Equal(t, playback.MaxRetries, retrying.Max)
			assert.Equal(t, 1, retrying.Index)
			assert.Equal(t, errNetwork.Error(), retrying.Reason)
		}
	}

	assert.Equal(t, []int{1, 2, 3}, attempts)

	session := s.controller.Session()
	assert.Equal(t, playback.StateFailed, session.State)
	assert.Equal(t, playback.MaxRetries, session.Retries)
	assert.Equal(t, 1, session.Cursor)
}

// TestController_UnavailableAlbum tests that an album without a playlist is rejected without network calls.
func TestController_UnavailableAlbum(t *testing.T) {
	t.Parallel()

	s := newControllerSetup(t)
	album := newTestAlbum(3)
	album.PlaylistID = ""

	err := s.controller.Play(context.Background(), album, 5)
	require.ErrorIs(t, err, playback.ErrUnavailable)

	events := s.recorder.Events()
	require.NotEmpty(t, events)
	assert.Equal(t, event.Unavailable{AlbumID: album.ID}, events[0])
	assert.Equal(t, playback.StateIdle, s.controller.Session().State)

	require.ErrorIs(t, s.controller.Play(context.Background(), nil, 0), playback.ErrUnavailable)
}

// TestController_TrackNotFound tests that a missing track is rejected without network calls.
func TestController_TrackNotFound(t *testing.T) {
	t.Parallel()

	s := newControllerSetup(t)
	album := newTestAlbum(2)

	err := s.controller.Play(context.Background(), album, 5)
	require.ErrorIs(t, err, playback.ErrNotFound)

	events := s.recorder.Events()
	require.NotEmpty(t, events)
	assert.Equal(t, event.NotFound{AlbumID: album.ID, Index: 5}, events[0])
}

// TestController_AlbumWithoutPlayableTracks tests that an album whose tracks have no source is rejected
// as unavailable without network calls.
func TestController_AlbumWithoutPlayableTracks(t *testing.T) {
	t.Parallel()

	s := newControllerSetup(t)
	album := newTestAlbum(3)

	for _, track := range album.Tracks {
		track.SourceID = ""
	}

	err := s.controller.Play(context.Background(), album, 1)
	require.ErrorIs(t, err, playback.ErrUnavailable)

	assert.Equal(t, []event.Event{event.Unavailable{AlbumID: album.ID}}, s.recorder.Events())
	assert.Equal(t, playback.StateIdle, s.controller.Session().State)
}

// TestController_TrackWithoutSource tests that a track without a source is rejected before any work.
func TestController_TrackWithoutSource(t *testing.T) {
	t.Parallel()

	s := newControllerSetup(t)
	album := newTestAlbum(3)
	album.Tracks[2].SourceID = ""

	err := s.controller.Play(context.Background(), album, 2)
	require.ErrorIs(t, err, playback.ErrNotFound)
	require.ErrorIs(t, err, catalog.ErrNoSource)

	assert.Equal(t, []event.Event{event.NotFound{AlbumID: album.ID, Index: 2}}, s.recorder.Events())
	assert.Equal(t, playback.StateIdle, s.controller.Session().State)
}

// TestController_AdvanceToTrackWithoutSource tests that reaching a track without a source
// fails it at once instead of retrying.
func TestController_AdvanceToTrackWithoutSource(t *testing.T) {
	t.Parallel()

	s := newControllerSetup(t)
	album := newTestAlbum(2)
	first := album.Tracks[0]
	album.Tracks[1].SourceID = ""

	s.client.EXPECT().ResolveTrackSource(gomock.Any(), first, catalog.FormatMP3).Return(sourceOf(first), nil)
	s.player.EXPECT().Play(gomock.Any(), sourceOf(first), first).Return(nil)

	require.NoError(t, s.controller.Play(context.Background(), album, 0))

	err := waitDone(t, s.controller)
	require.ErrorIs(t, err, playback.ErrNotFound)
	require.ErrorIs(t, err, catalog.ErrNoSource)
	require.NotErrorIs(t, err, playback.ErrRetriesExhausted)

	assert.Equal(t, []event.Kind{
		event.KindPreparingToPlay,
		event.KindFetchingStream,
		event.KindPlaying,
		event.KindPreparingToPlay,
		event.KindFetchingStream,
		event.KindPlaybackFailed,
	}, s.recorder.Kinds())

	session := s.controller.Session()
	assert.Equal(t, playback.StateFailed, session.State)
	assert.Equal(t, 0, session.Retries)
	assert.Equal(t, 1, session.Cursor)
}

// TestController_AutoAdvance tests that finished tracks advance until the end of the album.
func TestController_AutoAdvance(t *testing.T) {
	t.Parallel()

	s := newControllerSetup(t)
	album := newTestAlbum(2)

	for _, track := range album.Tracks {
		s.client.EXPECT().ResolveTrackSource(gomock.Any(), track, catalog.FormatMP3).Return(sourceOf(track), nil)
		s.player.EXPECT().Play(gomock.Any(), sourceOf(track), track).Return(nil)
	}

	require.NoError(t, s.controller.Play(context.Background(), album, 0))
	require.NoError(t, waitDone(t, s.controller))

	assert.Equal(t, []event.Kind{
		event.KindPreparingToPlay,
		event.KindFetchingStream,
		event.KindPlaying,
		event.KindPreparingToPlay,
		event.KindFetchingStream,
		event.KindPlaying,
		event.KindFinished,
	}, s.recorder.Kinds())

	playing, ok := s.recorder.Events()[2].(event.Playing)
	require.True(t, ok)
	assert.Equal(t, "Test Artist", playing.Artist)
	assert.Equal(t, event.TrackRef{Index: 0, Position: 1, Total: 2, Title: "Track 1"}, playing.TrackRef)

	assert.Equal(t, playback.StateIdle, s.controller.Session().State)
}

// TestController_RetriesResetOnAdvance tests that every track gets its own retries.
func TestController_RetriesResetOnAdvance(t *testing.T) {
	t.Parallel()

	s := newControllerSetup(t)
	album := newTestAlbum(2)
	first, second := album.Tracks[0], album.Tracks[1]

	gomock.InOrder(
		s.client.EXPECT().ResolveTrackSource(gomock.Any(), first, gomock.Any()).Return(nil, errNetwork).Times(2),
		s.client.EXPECT().ResolveTrackSource(gomock.Any(), first, gomock.Any()).Return(sourceOf(first), nil),
		s.player.EXPECT().Play(gomock.Any(), gomock.Any(), first).Return(nil),
		s.client.EXPECT().ResolveTrackSource(gomock.Any(), second, gomock.Any()).Return(nil, errNetwork).Times(3),
		s.client.EXPECT().ResolveTrackSource(gomock.Any(), second, gomock.Any()).Return(sourceOf(second), nil),
		s.player.EXPECT().Play(gomock.Any(), gomock.Any(), second).Return(nil),
	)

	require.NoError(t, s.controller.Play(context.Background(), album, 0))
	require.NoError(t, waitDone(t, s.controller))

	var attempts []int

	for _, e := range s.recorder.Events() {
		if retrying, ok := e.(event.Retrying); ok {
			attempts = append(attempts, retrying.Attempt)
		}
	}

	assert.Equal(t, []int{1, 2, 1, 2, 3}, attempts)
	assert.NotContains(t, s.recorder.Kinds(), event.KindPlaybackFailed)
	assert.Equal(t, event.KindFinished, s.recorder.Kinds()[len(s.recorder.Kinds())-1])
}

// TestController_StreamInterruptionRetries tests that a failure while playing is retried.
func TestController_StreamInterruptionRetries(t *testing.T) {
	t.Parallel()

	s := newControllerSetup(t)
	album := newTestAlbum(1)
	track := album.Tracks[0]

	s.client.EXPECT().ResolveTrackSource(gomock.Any(), track, gomock.Any()).Return(sourceOf(track), nil).Times(2)
	gomock.InOrder(
		s.player.EXPECT().Play(gomock.Any(), gomock.Any(), track).Return(playback.ErrEmptyStream),
		s.player.EXPECT().Play(gomock.Any(), gomock.Any(), track).Return(nil),
	)

	require.NoError(t, s.controller.Play(context.Background(), album, 0))
	require.NoError(t, waitDone(t, s.controller))

	assert.Equal(t, []event.Kind{
		event.KindPreparingToPlay,
		event.KindFetchingStream,
		event.KindPlaying,
		event.KindRetrying,
		event.KindFetchingStream,
		event.KindPlaying,
		event.KindFinished,
	}, s.recorder.Kinds())
}

// TestController_Stop tests stopping a track in the middle of playback.
func TestController_Stop(t *testing.T) {
	t.Parallel()

	s := newControllerSetup(t)
	album := newTestAlbum(2)

	s.client.EXPECT().ResolveTrackSource(gomock.Any(), album.Tracks[0], gomock.Any()).Return(sourceOf(album.Tracks[0]), nil)
	s.player.EXPECT().Play(gomock.Any(), gomock.Any(), album.Tracks[0]).DoAndReturn(blockUntilCancelled)

	require.NoError(t, s.controller.Play(context.Background(), album, 0))
	require.True(t, s.recorder.WaitFor(waitTimeout, isPlaying(0)))

	s.controller.Stop()
	require.NoError(t, waitDone(t, s.controller))

	kinds := s.recorder.Kinds()
	assert.Equal(t, event.KindStopped, kinds[len(kinds)-1])
	assert.NotContains(t, kinds, event.KindRetrying)
	assert.Equal(t, playback.StateIdle, s.controller.Session().State)

	// Stopping again is harmless.
	s.controller.Stop()
}

// TestController_PlaySupersedesSession tests that a new Play cancels the current session.
func TestController_PlaySupersedesSession(t *testing.T) {
	t.Parallel()

	s := newControllerSetup(t)
	album := newTestAlbum(3)

	s.client.EXPECT().ResolveTrackSource(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, track *catalog.Track, _ catalog.AudioFormat) (*catalog.StreamSource, error) {
			return sourceOf(track), nil
		}).
		Times(2)
	s.player.EXPECT().Play(gomock.Any(), gomock.Any(), album.Tracks[0]).DoAndReturn(blockUntilCancelled)
	s.player.EXPECT().Play(gomock.Any(), gomock.Any(), album.Tracks[2]).DoAndReturn(blockUntilCancelled)

	require.NoError(t, s.controller.Play(context.Background(), album, 0))
	require.True(t, s.recorder.WaitFor(waitTimeout, isPlaying(0)))

	firstSession := s.controller.Session().ID

	require.NoError(t, s.controller.Play(context.Background(), album, 2))
	require.True(t, s.recorder.WaitFor(waitTimeout, isPlaying(2)))

	secondSession := s.controller.Session()
	assert.NotEqual(t, firstSession, secondSession.ID)
	assert.Equal(t, 2, secondSession.Cursor)

	for _, msg := range s.recorder.Messages() {
		if msg.JobID == firstSession {
			assert.NotEqual(t, event.KindRetrying, msg.Event.Kind())
			assert.NotEqual(t, event.KindPlaybackFailed, msg.Event.Kind())
		}
	}
}

// TestController_NextPrevious tests moving the cursor during playback.
func TestController_NextPrevious(t *testing.T) {
	t.Parallel()

	s := newControllerSetup(t)
	album := newTestAlbum(2)

	require.ErrorIs(t, s.controller.Next(context.Background()), playback.ErrNoSession)

	s.client.EXPECT().ResolveTrackSource(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, track *catalog.Track, _ catalog.AudioFormat) (*catalog.StreamSource, error) {
			return sourceOf(track), nil
		}).
		Times(4)
	s.player.EXPECT().Play(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(blockUntilCancelled).Times(4)

	require.NoError(t, s.controller.Play(context.Background(), album, 0))
	waitPlaying(t, s.recorder, 0, 1)

	require.NoError(t, s.controller.Next(context.Background()))
	waitPlaying(t, s.recorder, 1, 1)
	assert.Equal(t, 1, s.controller.Session().Cursor)

	require.NoError(t, s.controller.Previous(context.Background()))
	waitPlaying(t, s.recorder, 0, 2)

	require.NoError(t, s.controller.Next(context.Background()))
	waitPlaying(t, s.recorder, 1, 2)

	// Skipping past the last track ends the session.
	require.NoError(t, s.controller.Next(context.Background()))
	require.NoError(t, waitDone(t, s.controller))

	kinds := s.recorder.Kinds()
	assert.Equal(t, event.KindFinished, kinds[len(kinds)-1])
	assert.Equal(t, playback.StateIdle, s.controller.Session().State)
}

// waitPlaying waits until the track at index started playing count times.
func waitPlaying(t *testing.T, recorder *event.Recorder, index, count int) {
	t.Helper()

	require.Eventually(t, func() bool {
		played := 0

		for _, e := range recorder.Events() {
			if isPlaying(index)(e) {
				played++
			}
		}

		return played == count
	}, waitTimeout, time.Millisecond)
}

// TestController_CancelledContext tests that cancelling the caller context ends playback quietly.
func TestController_CancelledContext(t *testing.T) {
	t.Parallel()

	s := newControllerSetup(t)
	album := newTestAlbum(1)

	ctx, cancel := context.WithCancel(context.Background())

	s.client.EXPECT().ResolveTrackSource(gomock.Any(), gomock.Any(), gomock.Any()).Return(sourceOf(album.Tracks[0]), nil)
	s.player.EXPECT().Play(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(blockUntilCancelled)

	require.NoError(t, s.controller.Play(ctx, album, 0))
	require.True(t, s.recorder.WaitFor(waitTimeout, isPlaying(0)))

	cancel()
	require.NoError(t, waitDone(t, s.controller))

	assert.NotContains(t, s.recorder.Kinds(), event.KindRetrying)
	assert.NotContains(t, s.recorder.Kinds(), event.KindPlaybackFailed)
}
