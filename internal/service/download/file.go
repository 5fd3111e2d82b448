package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"

	"github.com/oshokin/ytm-grabber/internal/constants"
	"github.com/oshokin/ytm-grabber/internal/logger"
	"github.com/oshokin/ytm-grabber/internal/utils"
)

const (
	// File options for overwriting an existing file.
	overwriteFileOptions = os.O_CREATE | os.O_TRUNC | os.O_WRONLY

	// File options for creating a new file (fails if the file already exists).
	createNewFileOptions = os.O_CREATE | os.O_EXCL | os.O_WRONLY

	// maxCollisionSuffix bounds the " (n)" suffixes tried for one name.
	maxCollisionSuffix = 9999
)

// reserveDestination creates an empty file named baseName+extension inside dir.
// Taken names get " (1)", " (2)", ... suffixes. Creation uses O_EXCL, so two batches never pick the same path.
func reserveDestination(dir, baseName, extension string) (string, error) {
	for i := 0; i <= maxCollisionSuffix; i++ {
		name := baseName
		if i > 0 {
			name = fmt.Sprintf("%s (%d)", baseName, i)
		}

		path := filepath.Join(dir, name+extension)

		file, err := os.OpenFile(filepath.Clean(path), createNewFileOptions, constants.DefaultFilePermissions)
		if err == nil {
			return path, file.Close()
		}

		if !os.IsExist(err) {
			return "", err
		}
	}

	return "", fmt.Errorf("%w for '%s%s' in '%s'", ErrNoFreeFilename, baseName, extension, dir)
}

// moveFile moves src over the reserved dst, copying when a rename is impossible
// (e.g. staging and output are on different devices).
func moveFile(ctx context.Context, src, dst string) error {
	err := os.Rename(src, dst)
	if err == nil {
		return nil
	}

	logger.Debugf(ctx, "Rename of '%s' failed, copying instead: %v", src, err)

	if err = copyFile(src, dst); err != nil {
		return err
	}

	if err = os.Remove(src); err != nil {
		logger.Warnf(ctx, "Failed to remove staged file '%s': %v", src, err)
	}

	return nil
}

func copyFile(src, dst string) (err error) {
	in, err := os.Open(filepath.Clean(src))
	if err != nil {
		return err
	}

	defer in.Close() //nolint:errcheck // Read-only file.

	out, err := os.OpenFile(filepath.Clean(dst), overwriteFileOptions, constants.DefaultFilePermissions)
	if err != nil {
		return err
	}

	defer func() {
		err = errors.Join(err, out.Close())
	}()

	_, err = io.Copy(out, in)

	return err
}

// downloadCover saves the album cover into dir and returns its path.
// The extension follows the detected image type.
func (p *Pipeline) downloadCover(ctx context.Context, url, dir string) (string, error) {
	reader, err := p.client.DownloadFromURL(ctx, url)
	if err != nil {
		return "", err
	}

	defer reader.Close() //nolint:errcheck // Error on close is not critical here.

	tempPath := filepath.Join(dir, "cover"+constants.ExtensionPart)

	file, err := os.OpenFile(filepath.Clean(tempPath), overwriteFileOptions, constants.DefaultFilePermissions)
	if err != nil {
		return "", err
	}

	_, err = io.Copy(file, reader)
	if closeErr := file.Close(); err == nil {
		err = closeErr
	}

	if err != nil {
		return "", err
	}

	kind, err := mimetype.DetectFile(tempPath)
	if err != nil {
		return "", err
	}

	extension := constants.ExtensionJPG
	if kind.Is(utils.ImagePNGMimeType) {
		extension = constants.ExtensionPNG
	}

	coverPath := utils.SetFileExtension(tempPath, extension, true)
	if err = os.Rename(tempPath, coverPath); err != nil {
		return "", err
	}

	return coverPath, nil
}
