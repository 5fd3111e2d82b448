package download

//go:generate $MOCKGEN -source=tagger.go -destination=mocks/tagger_mock.go

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dhowden/tag"
	"github.com/gabriel-vasile/mimetype"
	"github.com/go-flac/flacpicture"
	"github.com/go-flac/flacvorbis"
	"github.com/go-flac/go-flac"
	"github.com/oshokin/id3v2/v2"

	"github.com/oshokin/ytm-grabber/internal/client/catalog"
	"github.com/oshokin/ytm-grabber/internal/logger"
)

// Tagger writes metadata into audio files in place.
type Tagger interface {
	// WriteTags writes req.TrackTags and the optional cover into req.TrackPath.
	// Formats without tag support return an error matching ErrUnsupportedFormat.
	WriteTags(ctx context.Context, req *WriteTagsRequest) error
}

// WriteTagsRequest contains parameters for writing metadata to audio files.
type WriteTagsRequest struct {
	// TrackPath is the file path of the audio track.
	TrackPath string
	// CoverPath is the file path of the cover art image. Empty means no cover.
	CoverPath string
	// Format is the format the file is expected to be in.
	Format catalog.AudioFormat
	// TrackTags contains metadata key-value pairs to write.
	TrackTags map[string]string
}

// TagProcessorImpl writes ID3v2 tags into MP3 files and Vorbis comments into FLAC files.
type TagProcessorImpl struct{}

// imageMetadata contains image data and its MIME type.
type imageMetadata struct {
	// data contains the raw image bytes.
	data []byte
	// mimeType specifies the image format (e.g., "image/jpeg").
	mimeType string
}

// extractFLACCommentResult contains the result of extracting FLAC comment metadata.
type extractFLACCommentResult struct {
	// Comment is the FLAC Vorbis comment metadata block.
	Comment *flacvorbis.MetaDataBlockVorbisComment
	// Index is the index of the comment block in the FLAC file metadata (-1 if not found).
	Index int
}

// NewTagProcessor creates a new Tagger instance.
func NewTagProcessor() Tagger {
	return new(TagProcessorImpl)
}

// WriteTags implements Tagger.
func (tp *TagProcessorImpl) WriteTags(ctx context.Context, req *WriteTagsRequest) error {
	if req.TrackPath == "" {
		return ErrEmptyTrackPath
	}

	format := detectFormat(ctx, req.TrackPath, req.Format)
	if format != catalog.FormatFLAC && format != catalog.FormatMP3 {
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}

	image := tp.readCover(ctx, req.CoverPath)

	var err error
	if format == catalog.FormatFLAC {
		err = tp.writeFLACTags(ctx, req, image)
	} else {
		err = tp.writeMP3Tags(ctx, req, image)
	}

	if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
		return ctxErr
	}

	if err != nil {
		return fmt.Errorf("%w: %w", ErrTagging, err)
	}

	return nil
}

// readCover loads the cover image. A missing or unreadable cover is not an error.
func (tp *TagProcessorImpl) readCover(ctx context.Context, coverPath string) *imageMetadata {
	if coverPath == "" {
		return nil
	}

	data, err := os.ReadFile(filepath.Clean(coverPath))
	if err != nil {
		logger.Warnf(ctx, "Failed to read cover '%s': %v", coverPath, err)

		return nil
	}

	mimeType := mimetype.Detect(data)
	if !strings.HasPrefix(mimeType.String(), "image/") {
		logger.Warnf(ctx, "Cover '%s' is not an image (%s), skipping it", coverPath, mimeType)

		return nil
	}

	return &imageMetadata{
		data:     data,
		mimeType: mimeType.String(),
	}
}

// detectFormat identifies the container by its content and falls back to the declared format.
func detectFormat(ctx context.Context, path string, declared catalog.AudioFormat) catalog.AudioFormat {
	file, err := os.Open(filepath.Clean(path))
	if err != nil {
		return declared
	}

	defer file.Close() //nolint:errcheck // Read-only file.

	// Raw MP3 streams without an ID3 header are not recognized, so errors keep the declared format.
	_, fileType, err := tag.Identify(file)
	if err != nil {
		return declared
	}

	var detected catalog.AudioFormat

	switch fileType {
	case tag.FLAC:
		detected = catalog.FormatFLAC
	case tag.MP3:
		detected = catalog.FormatMP3
	case tag.M4A, tag.M4B, tag.M4P, tag.ALAC:
		detected = catalog.FormatM4A
	case tag.OGG:
		detected = catalog.FormatOpus
	default:
		return declared
	}

	if detected != declared {
		logger.Warnf(ctx, "File '%s' was requested as %s but contains %s", path, declared, detected)
	}

	return detected
}

func (tp *TagProcessorImpl) writeFLACTags(ctx context.Context, req *WriteTagsRequest, image *imageMetadata) error {
	f, err := flac.ParseFile(filepath.Clean(req.TrackPath))
	if err != nil {
		return err
	}

	commentResult := tp.extractFLACComment(f)

	// Existing comments are replaced, so a re-tagged file has no duplicate fields.
	comment := flacvorbis.New()
	if commentResult.Comment != nil {
		comment.Vendor = commentResult.Comment.Vendor
	}

	if err = tp.addFLACTags(comment, req); err != nil {
		return err
	}

	commentMeta := comment.Marshal()
	if commentResult.Index >= 0 {
		f.Meta[commentResult.Index] = &commentMeta
	} else {
		f.Meta = append(f.Meta, &commentMeta)
	}

	tp.embedFLACCover(ctx, f, image)

	// The file is left untouched once the batch is cancelled.
	if err = ctx.Err(); err != nil {
		return err
	}

	return f.Save(req.TrackPath)
}

func (tp *TagProcessorImpl) extractFLACComment(f *flac.File) *extractFLACCommentResult {
	for idx, meta := range f.Meta {
		if meta.Type != flac.VorbisComment {
			continue
		}

		comment, err := flacvorbis.ParseFromMetaDataBlock(*meta)
		if err == nil {
			return &extractFLACCommentResult{
				Comment: comment,
				Index:   idx,
			}
		}
	}

	return &extractFLACCommentResult{
		Comment: nil,
		Index:   -1,
	}
}

func (tp *TagProcessorImpl) addFLACTags(comment *flacvorbis.MetaDataBlockVorbisComment, req *WriteTagsRequest) error {
	flacTags := []struct {
		key   string
		value string
	}{
		{flacvorbis.FIELD_TITLE, req.TrackTags["trackTitle"]},
		{flacvorbis.FIELD_ARTIST, req.TrackTags["trackArtist"]},
		{flacvorbis.FIELD_ALBUM, req.TrackTags["albumTitle"]},
		{"ALBUMARTIST", req.TrackTags["albumArtist"]},
		{flacvorbis.FIELD_TRACKNUMBER, req.TrackTags["trackNumber"]},
		{"TOTALTRACKS", req.TrackTags["trackCount"]},
		{flacvorbis.FIELD_DATE, req.TrackTags["releaseYear"]},
		{"RELEASE_ID", req.TrackTags["albumID"]},
		{"TRACK_ID", req.TrackTags["trackID"]},
	}

	for _, t := range flacTags {
		if t.value == "" {
			continue
		}

		if err := comment.Add(t.key, t.value); err != nil {
			return err
		}
	}

	return nil
}

func (tp *TagProcessorImpl) embedFLACCover(ctx context.Context, f *flac.File, image *imageMetadata) {
	if image == nil {
		return
	}

	picture, err := flacpicture.NewFromImageData(flacpicture.PictureTypeFrontCover, "", image.data, image.mimeType)
	if err != nil {
		logger.Errorf(ctx, "Failed to embed image to FLAC: %v", err)

		return
	}

	// Drop previous pictures so the front cover is not duplicated.
	meta := f.Meta[:0]

	for _, block := range f.Meta {
		if block.Type != flac.Picture {
			meta = append(meta, block)
		}
	}

	pictureMeta := picture.Marshal()
	f.Meta = append(meta, &pictureMeta)
}

func (tp *TagProcessorImpl) writeMP3Tags(ctx context.Context, req *WriteTagsRequest, image *imageMetadata) error {
	//nolint:exhaustruct // ParseFrames intentionally omitted when Parse=false (parsing disabled).
	mp3Tag, err := id3v2.Open(req.TrackPath, id3v2.Options{Parse: false})
	if err != nil {
		return err
	}

	defer mp3Tag.Close()

	tp.addMP3Tags(mp3Tag, req)

	if image != nil {
		//nolint:exhaustruct // Description field intentionally empty for cover images.
		mp3Tag.AddAttachedPicture(id3v2.PictureFrame{
			Encoding:    id3v2.EncodingUTF8,
			MimeType:    image.mimeType,
			PictureType: id3v2.PTFrontCover,
			Picture:     image.data,
		})
	}

	if err = ctx.Err(); err != nil {
		return err
	}

	return mp3Tag.Save()
}

func (tp *TagProcessorImpl) addMP3Tags(mp3Tag *id3v2.Tag, req *WriteTagsRequest) {
	mp3Tag.SetDefaultEncoding(id3v2.EncodingUTF8)

	mp3Tag.SetAlbum(req.TrackTags["albumTitle"])
	mp3Tag.SetArtist(req.TrackTags["trackArtist"])
	mp3Tag.SetTitle(req.TrackTags["trackTitle"])
	mp3Tag.SetYear(req.TrackTags["releaseYear"])

	// Track number and total tracks, e.g. "1/10".
	var (
		trackNumber = req.TrackTags["trackNumber"]
		trackCount  = req.TrackTags["trackCount"]
	)

	if trackNumber != "" {
		position := trackNumber
		if trackCount != "" {
			position += "/" + trackCount
		}

		mp3Tag.AddTextFrame(mp3Tag.CommonID("Track number/Position in set"), mp3Tag.DefaultEncoding(), position)
	}

	if albumArtist := req.TrackTags["albumArtist"]; albumArtist != "" {
		mp3Tag.AddTextFrame(mp3Tag.CommonID("Band/Orchestra/Accompaniment"), mp3Tag.DefaultEncoding(), albumArtist)
	}
}
