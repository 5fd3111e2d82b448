package download

//go:generate $MOCKGEN -source=template_manager.go -destination=mocks/template_manager_mock.go

import (
	"bytes"
	"context"
	"text/template"

	"github.com/oshokin/ytm-grabber/internal/config"
	"github.com/oshokin/ytm-grabber/internal/logger"
)

// TemplateManager renders file names from track tags.
type TemplateManager interface {
	// GetTrackFilename renders the base name, without extension, of a track file.
	GetTrackFilename(ctx context.Context, trackTags map[string]string) string
}

// TemplateManagerImpl implements the TemplateManager interface.
type TemplateManagerImpl struct {
	// trackFilenameTemplate is the configured template for track filenames. Nil if it failed to parse.
	trackFilenameTemplate *template.Template
	// defaultTrackFilenameTemplate is the fallback template for track filenames.
	defaultTrackFilenameTemplate *template.Template
}

// NewTemplateManager creates a TemplateManager.
// A configured template that fails to parse is replaced by the default one.
func NewTemplateManager(ctx context.Context, cfg *config.Config) TemplateManager {
	defaultTrackFilenameTemplate := template.Must(
		template.New("defaultTrackFilenameTemplate").Parse(config.DefaultTrackFilenameTemplate))

	trackFilenameTemplate, err := template.New("trackFilenameTemplate").Parse(cfg.TrackFilenameTemplate)
	if err != nil {
		logger.Errorf(ctx, "Failed to parse track filename template, using default: %v", err)

		trackFilenameTemplate = nil
	}

	return &TemplateManagerImpl{
		trackFilenameTemplate:        trackFilenameTemplate,
		defaultTrackFilenameTemplate: defaultTrackFilenameTemplate,
	}
}

// GetTrackFilename implements TemplateManager.
func (s *TemplateManagerImpl) GetTrackFilename(ctx context.Context, trackTags map[string]string) string {
	var buffer bytes.Buffer

	if s.trackFilenameTemplate != nil {
		err := s.trackFilenameTemplate.Execute(&buffer, trackTags)
		if err == nil {
			return buffer.String()
		}

		logger.Errorf(ctx, "Failed to execute template, using default: %v", err)
		buffer.Reset()
	}

	_ = s.defaultTrackFilenameTemplate.Execute(&buffer, trackTags) //nolint:errcheck // Default template is always valid.

	return buffer.String()
}
