package download

import (
	"bytes"
	"context"
	"encoding/binary"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oshokin/ytm-grabber/internal/client/catalog"
)

// testTrackTags returns the tag values of a typical track.
func testTrackTags() map[string]string {
	return map[string]string{
		"albumID":     "MPREb_1",
		"albumTitle":  "Album & Friends",
		"albumArtist": "Various",
		"trackID":     "t2",
		"trackTitle":  "Second Song",
		"trackArtist": "Singer",
		"trackNumber": "2",
		"trackCount":  "9",
		"releaseYear": "2021",
	}
}

// writeFakeMP3 writes a file of MPEG-like junk.
func writeFakeMP3(t *testing.T, dir string) string {
	t.Helper()

	data := make([]byte, 4096)
	for i := range data {
		data[i] = byte(i % 251)
	}

	// Frame sync, so the file does not start with a tag header.
	data[0], data[1] = 0xFF, 0xFB

	path := filepath.Join(dir, "track.mp3")
	require.NoError(t, os.WriteFile(path, data, 0o600))

	return path
}

// writeMinimalFLAC writes a FLAC file consisting of a single STREAMINFO block.
func writeMinimalFLAC(t *testing.T, dir string) string {
	t.Helper()

	const streamInfoLength = 34

	streamInfo := make([]byte, streamInfoLength)
	binary.BigEndian.PutUint16(streamInfo[0:2], 4096)
	binary.BigEndian.PutUint16(streamInfo[2:4], 4096)

	// Sample rate (20 bits), channels - 1 (3 bits), bits per sample - 1 (5 bits), total samples (36 bits).
	binary.BigEndian.PutUint64(streamInfo[10:18], uint64(44100)<<44|uint64(1)<<41|uint64(15)<<36)

	var buf bytes.Buffer

	buf.WriteString("fLaC")
	// Last-block flag set, block type 0 (STREAMINFO), 24-bit length.
	buf.Write([]byte{0x80, 0x00, 0x00, streamInfoLength})
	buf.Write(streamInfo)

	path := filepath.Join(dir, "track.flac")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))

	return path
}

// writeCover writes a tiny PNG image.
func writeCover(t *testing.T, dir string) string {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(1, 1, color.RGBA{G: 255, A: 255})

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	path := filepath.Join(dir, "cover.png")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))

	return path
}

// TestTagProcessor_MP3 tests writing and reading back ID3 tags.
func TestTagProcessor_MP3(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	trackPath := writeFakeMP3(t, dir)

	err := NewTagProcessor().WriteTags(context.Background(), &WriteTagsRequest{
		TrackPath: trackPath,
		CoverPath: writeCover(t, dir),
		Format:    catalog.FormatMP3,
		TrackTags: testTrackTags(),
	})
	require.NoError(t, err)

	tags, err := ReadTags(trackPath)
	require.NoError(t, err)

	assert.Equal(t, "MP3", tags.FileType)
	assert.Equal(t, "Second Song", tags.Title)
	assert.Equal(t, "Singer", tags.Artist)
	assert.Equal(t, "Album & Friends", tags.Album)
	assert.Equal(t, "Various", tags.AlbumArtist)
	assert.Equal(t, 2, tags.Track)
	assert.Equal(t, 9, tags.TrackTotal)
	assert.True(t, tags.HasCover)
}

// TestTagProcessor_FLAC tests writing and reading back Vorbis comments.
func TestTagProcessor_FLAC(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	trackPath := writeMinimalFLAC(t, dir)
	coverPath := writeCover(t, dir)
	tagger := NewTagProcessor()

	request := &WriteTagsRequest{
		TrackPath: trackPath,
		CoverPath: coverPath,
		Format:    catalog.FormatFLAC,
		TrackTags: testTrackTags(),
	}

	require.NoError(t, tagger.WriteTags(context.Background(), request))

	// Tagging twice replaces the previous values.
	request.TrackTags["trackTitle"] = "Renamed Song"
	require.NoError(t, tagger.WriteTags(context.Background(), request))

	tags, err := ReadTags(trackPath)
	require.NoError(t, err)

	assert.Equal(t, "FLAC", tags.FileType)
	assert.Equal(t, "Renamed Song", tags.Title)
	assert.Equal(t, "Singer", tags.Artist)
	assert.Equal(t, "Album & Friends", tags.Album)
	assert.Equal(t, 2021, tags.Year)
	assert.Equal(t, 2, tags.Track)
	assert.True(t, tags.HasCover)
}

// TestTagProcessor_DetectsContent tests that the container is identified from the file content.
func TestTagProcessor_DetectsContent(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	trackPath := writeMinimalFLAC(t, dir)

	// Declared as MP3 but the bytes are FLAC, so Vorbis comments are written.
	err := NewTagProcessor().WriteTags(context.Background(), &WriteTagsRequest{
		TrackPath: trackPath,
		Format:    catalog.FormatMP3,
		TrackTags: testTrackTags(),
	})
	require.NoError(t, err)

	tags, err := ReadTags(trackPath)
	require.NoError(t, err)
	assert.Equal(t, "FLAC", tags.FileType)
	assert.False(t, tags.HasCover)
}

// TestTagProcessor_Errors tests rejected requests.
func TestTagProcessor_Errors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	opusPath := filepath.Join(dir, "track.opus")
	require.NoError(t, os.WriteFile(opusPath, []byte("not really opus"), 0o600))

	brokenFLAC := filepath.Join(dir, "broken.flac")
	require.NoError(t, os.WriteFile(brokenFLAC, []byte("fLaC\x00"), 0o600))

	tests := []struct {
		name        string
		request     *WriteTagsRequest
		expectedErr error
	}{
		{
			name:        "empty path",
			request:     &WriteTagsRequest{Format: catalog.FormatMP3},
			expectedErr: ErrEmptyTrackPath,
		},
		{
			name:        "format without tags",
			request:     &WriteTagsRequest{TrackPath: opusPath, Format: catalog.FormatOpus},
			expectedErr: ErrUnsupportedFormat,
		},
		{
			name:        "corrupt file",
			request:     &WriteTagsRequest{TrackPath: brokenFLAC, Format: catalog.FormatFLAC, TrackTags: testTrackTags()},
			expectedErr: ErrTagging,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := NewTagProcessor().WriteTags(context.Background(), tt.request)
			require.ErrorIs(t, err, tt.expectedErr)
		})
	}
}

// TestTagProcessor_Cancelled tests that a cancelled context leaves the file untouched.
func TestTagProcessor_Cancelled(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		write  func(t *testing.T, dir string) string
		format catalog.AudioFormat
	}{
		{name: "mp3", write: writeFakeMP3, format: catalog.FormatMP3},
		{name: "flac", write: writeMinimalFLAC, format: catalog.FormatFLAC},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			dir := t.TempDir()
			trackPath := tt.write(t, dir)

			original, err := os.ReadFile(trackPath)
			require.NoError(t, err)

			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			err = NewTagProcessor().WriteTags(ctx, &WriteTagsRequest{
				TrackPath: trackPath,
				CoverPath: writeCover(t, dir),
				Format:    tt.format,
				TrackTags: testTrackTags(),
			})
			require.ErrorIs(t, err, context.Canceled)
			require.NotErrorIs(t, err, ErrTagging)

			current, err := os.ReadFile(trackPath)
			require.NoError(t, err)
			assert.Equal(t, original, current)
		})
	}
}

// TestTagProcessor_InvalidCoverIsSkipped tests that a non-image cover does not fail tagging.
func TestTagProcessor_InvalidCoverIsSkipped(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	trackPath := writeFakeMP3(t, dir)

	coverPath := filepath.Join(dir, "cover.jpg")
	require.NoError(t, os.WriteFile(coverPath, []byte("<html>not found</html>"), 0o600))

	err := NewTagProcessor().WriteTags(context.Background(), &WriteTagsRequest{
		TrackPath: trackPath,
		CoverPath: coverPath,
		Format:    catalog.FormatMP3,
		TrackTags: testTrackTags(),
	})
	require.NoError(t, err)

	tags, err := ReadTags(trackPath)
	require.NoError(t, err)
	assert.False(t, tags.HasCover)
}

// TestReadTags_MissingFile tests reading tags of a file that does not exist.
func TestReadTags_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := ReadTags(filepath.Join(t.TempDir(), "missing.mp3"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open file")
}
