package download_test

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/oshokin/ytm-grabber/internal/client/catalog"
	mock_catalog "github.com/oshokin/ytm-grabber/internal/client/catalog/mocks"
	"github.com/oshokin/ytm-grabber/internal/config"
	"github.com/oshokin/ytm-grabber/internal/event"
	"github.com/oshokin/ytm-grabber/internal/service/download"
	mock_download "github.com/oshokin/ytm-grabber/internal/service/download/mocks"
)

// waitTimeout bounds every wait on background work in tests.
const waitTimeout = 5 * time.Second

// testPipelineSetup encapsulates common test dependencies.
type testPipelineSetup struct {
	ctrl        *gomock.Controller
	mockClient  *mock_catalog.MockClient
	mockFetcher *mock_download.MockTrackFetcher
	mockTagger  *mock_download.MockTagger
	recorder    *event.Recorder
	pipeline    *download.Pipeline
	config      *config.Config
	outputDir   string
	stagingRoot string
}

// newTestPipelineSetup creates a pipeline with mocked collaborators and a real template manager.
func newTestPipelineSetup(t *testing.T) *testPipelineSetup {
	t.Helper()

	ctrl := gomock.NewController(t)
	root := t.TempDir()

	cfg := config.Default()
	cfg.OutputPath = filepath.Join(root, "out")
	cfg.StagingPath = filepath.Join(root, "staging")
	require.NoError(t, config.ValidateConfig(cfg))

	s := &testPipelineSetup{
		ctrl:        ctrl,
		mockClient:  mock_catalog.NewMockClient(ctrl),
		mockFetcher: mock_download.NewMockTrackFetcher(ctrl),
		mockTagger:  mock_download.NewMockTagger(ctrl),
		recorder:    event.NewRecorder(),
		config:      cfg,
		outputDir:   cfg.OutputPath,
		stagingRoot: cfg.StagingPath,
	}

	s.pipeline = download.NewPipeline(
		cfg,
		s.mockClient,
		s.mockFetcher,
		download.NewTemplateManager(context.Background(), cfg),
		s.mockTagger,
		s.recorder,
	)

	return s
}

// batch builds a batch for the given album and indices writing into the setup's output directory.
func (s *testPipelineSetup) batch(album *catalog.Album, indices ...int) download.Batch {
	return download.Batch{
		Album:        album,
		TrackIndices: indices,
		OutputDir:    s.outputDir,
		Format:       catalog.FormatMP3,
	}
}

// newTestAlbum creates an available album with n tracks titled "Track 1"..."Track n".
func newTestAlbum(n int) *catalog.Album {
	album := &catalog.Album{
		ID:         "MPREb_test",
		Title:      "Test Album",
		Artist:     "Test Artist",
		Year:       2024,
		PlaylistID: "OLAK5uy_test",
	}

	for i := range n {
		album.Tracks = append(album.Tracks, &catalog.Track{
			ID:          fmt.Sprintf("track-%d", i+1),
			Title:       fmt.Sprintf("Track %d", i+1),
			Artist:      "Test Artist",
			Album:       album.Title,
			AlbumArtist: album.Artist,
			Year:        album.Year,
			Number:      i + 1,
			SourceID:    fmt.Sprintf("video-%d", i+1),
		})
	}

	return album
}

// makeFakeAudioData creates deterministic fake audio data for testing.
func makeFakeAudioData(size int) []byte {
	fakeData := make([]byte, size)
	for i := range fakeData {
		fakeData[i] = byte(i % 256)
	}

	return fakeData
}

// fetchInto returns a Fetch implementation that writes fake audio into the staging folder.
func fetchInto(data []byte) func(context.Context, *download.FetchRequest) (*download.FetchResult, error) {
	return func(_ context.Context, req *download.FetchRequest) (*download.FetchResult, error) {
		path := filepath.Join(req.StagingDir, req.Track.ID+req.Format.Extension())
		if err := os.WriteFile(path, data, 0o600); err != nil {
			return nil, err
		}

		total := int64(len(data))
		if req.OnProgress != nil {
			req.OnProgress(0, total)
			req.OnProgress(total/2, total)
			req.OnProgress(total, total)
		}

		return &download.FetchResult{
			Path:   path,
			Format: req.Format,
			Size:   total,
		}, nil
	}
}

// listFiles returns the names of regular files in dir.
func listFiles(t *testing.T, dir string) []string {
	t.Helper()

	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil
	}

	require.NoError(t, err)

	var names []string

	for _, entry := range entries {
		if !entry.IsDir() {
			names = append(names, entry.Name())
		}
	}

	return names
}

// waitOutcome waits for the batch to finish or fails the test.
func waitOutcome(t *testing.T, handle *download.Handle) download.Outcome {
	t.Helper()

	select {
	case <-handle.Done():
	case <-time.After(waitTimeout):
		require.FailNow(t, "batch did not finish in time")
	}

	return handle.Wait()
}

// filterKinds keeps only the listed kinds, in order.
func filterKinds(kinds []event.Kind, keep ...event.Kind) []event.Kind {
	wanted := make(map[event.Kind]struct{}, len(keep))
	for _, k := range keep {
		wanted[k] = struct{}{}
	}

	var result []event.Kind

	for _, k := range kinds {
		if _, ok := wanted[k]; ok {
			result = append(result, k)
		}
	}

	return result
}

// newReadCloser wraps data into an io.ReadCloser.
func newReadCloser(data []byte) io.ReadCloser {
	return io.NopCloser(bytes.NewReader(data))
}

// pngBytes encodes a tiny PNG image.
func pngBytes(t *testing.T) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	return buf.Bytes()
}
