package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/oshokin/ytm-grabber/internal/constants"
	"github.com/oshokin/ytm-grabber/internal/logger"
	"github.com/oshokin/ytm-grabber/internal/utils"
)

// Config holds all configuration settings.
type Config struct {
	// CatalogBaseURL is the base URL of the remote catalog API.
	CatalogBaseURL string `mapstructure:"catalog_base_url" yaml:"catalog_base_url"`
	// OutputPath is the default directory where downloaded tracks are placed.
	OutputPath string `mapstructure:"output_path" yaml:"output_path"`
	// StagingPath is the parent directory for per-batch staging folders.
	// Empty means the OS temporary directory.
	StagingPath string `mapstructure:"staging_path" yaml:"staging_path"`
	// AudioFormat is the preferred audio format (mp3, flac, m4a, opus, wav).
	AudioFormat string `mapstructure:"audio_format" yaml:"audio_format"`
	// TrackFilenameTemplate is the template for naming individual track files.
	TrackFilenameTemplate string `mapstructure:"track_filename_template" yaml:"track_filename_template"`
	// MaxFilenameLength is the maximum length of a rendered track filename without extension.
	MaxFilenameLength int64 `mapstructure:"max_filename_length" yaml:"max_filename_length"`
	// LogLevel specifies the logging verbosity level.
	LogLevel string `mapstructure:"log_level" yaml:"log_level"`
	// DownloadSpeedLimit sets the maximum download speed (e.g., "1MB", "500KB").
	DownloadSpeedLimit string `mapstructure:"download_speed_limit" yaml:"download_speed_limit"`
	// FetchAttemptsCount is the number of attempts made to fetch a single track.
	// One means a failed fetch is reported immediately.
	FetchAttemptsCount int64 `mapstructure:"fetch_attempts_count" yaml:"fetch_attempts_count"`
	// MinRetryPause is the minimum pause before another fetch attempt.
	MinRetryPause string `mapstructure:"min_retry_pause" yaml:"min_retry_pause"`
	// MaxRetryPause is the maximum pause before another fetch attempt.
	MaxRetryPause string `mapstructure:"max_retry_pause" yaml:"max_retry_pause"`
	// PlaybackRetryPause is the pause between playback retries.
	PlaybackRetryPause string `mapstructure:"playback_retry_pause" yaml:"playback_retry_pause"`
	// PlayerCommand is an external command receiving the audio stream on stdin.
	// Empty means the stream is written to stdout.
	PlayerCommand string `mapstructure:"player_command" yaml:"player_command"`
	// ShowProgressBar enables the terminal progress bar for downloads.
	ShowProgressBar bool `mapstructure:"show_progress_bar" yaml:"show_progress_bar"`
	// ParsedDownloadSpeedLimit is the parsed download speed limit in bytes.
	ParsedDownloadSpeedLimit int64 `yaml:"-"`
	// ParsedLogLevel is the parsed zap log level.
	ParsedLogLevel zapcore.Level `yaml:"-"`
	// ParsedMinRetryPause is the parsed minimum retry pause duration.
	ParsedMinRetryPause time.Duration `yaml:"-"`
	// ParsedMaxRetryPause is the parsed maximum retry pause duration.
	ParsedMaxRetryPause time.Duration `yaml:"-"`
	// ParsedPlaybackRetryPause is the parsed pause between playback retries.
	ParsedPlaybackRetryPause time.Duration `yaml:"-"`
}

const (
	// DefaultCatalogBaseURL is the base URL of the remote catalog.
	DefaultCatalogBaseURL = "https://music.youtube.com"

	// DefaultConfigFilename is the default name of the configuration file.
	DefaultConfigFilename = ".ytm-grabber.yaml"

	// DefaultTrackFilenameTemplate is the default template for naming downloaded track files.
	DefaultTrackFilenameTemplate = "{{.trackNumberPad}} - {{.trackArtist}} - {{.trackTitle}}"

	// DefaultAudioFormat is the format used when nothing else is configured.
	DefaultAudioFormat = "mp3"

	// DefaultMaxFilenameLength is the default limit for rendered track filenames.
	DefaultMaxFilenameLength = 200

	// DefaultPlaybackRetryPause is the default pause between playback retries.
	DefaultPlaybackRetryPause = "1s"

	// DefaultMaxLogLength is the default maximum size (in bytes) of a logged HTTP dump.
	DefaultMaxLogLength = 1 * 1024 * 1024 // 1 MB
)

// Static error definitions for better error handling.
var (
	// ErrInvalidCatalogURL indicates that the catalog base URL is malformed.
	ErrInvalidCatalogURL = errors.New("invalid catalog_base_url")
	// ErrUnsupportedAudioFormat indicates that the audio format is not recognized.
	ErrUnsupportedAudioFormat = errors.New("unsupported audio_format")
	// ErrInvalidFilenameLength indicates that max_filename_length is not positive.
	ErrInvalidFilenameLength = errors.New("max_filename_length must be a positive integer")
	// ErrUnknownLogLevel indicates that the log level is not recognized.
	ErrUnknownLogLevel = errors.New("unknown log level")
	// ErrInvalidFetchAttempts indicates that the fetch attempts count is invalid.
	ErrInvalidFetchAttempts = errors.New("fetch attempts count must be a positive integer")
	// ErrInvalidMinRetryPause indicates that the min retry pause duration is invalid.
	ErrInvalidMinRetryPause = errors.New("min_retry_pause must be positive")
	// ErrInvalidMaxRetryPause indicates that the max retry pause duration is invalid.
	ErrInvalidMaxRetryPause = errors.New("max_retry_pause must be positive")
	// ErrInvalidPlaybackRetryPause indicates that the playback retry pause is negative.
	ErrInvalidPlaybackRetryPause = errors.New("playback_retry_pause cannot be negative")
)

// SupportedAudioFormats lists the formats accepted by audio_format.
//
//nolint:gochecknoglobals // Immutable list used as a constant.
var SupportedAudioFormats = []string{"mp3", "flac", "m4a", "opus", "wav"}

// Default returns a configuration populated with default values.
func Default() *Config {
	return &Config{
		CatalogBaseURL:        DefaultCatalogBaseURL,
		OutputPath:            "downloads",
		AudioFormat:           DefaultAudioFormat,
		TrackFilenameTemplate: DefaultTrackFilenameTemplate,
		MaxFilenameLength:     DefaultMaxFilenameLength,
		LogLevel:              "info",
		FetchAttemptsCount:    1,
		MinRetryPause:         "1s",
		MaxRetryPause:         "3s",
		PlaybackRetryPause:    DefaultPlaybackRetryPause,
		ShowProgressBar:       true,
	}
}

// LoadConfig loads configuration settings from a YAML file.
func LoadConfig(configFilename string) (*Config, error) {
	if configFilename == "" {
		configFilename = DefaultConfigFilename
	}

	viper.SetConfigFile(configFilename)

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config from file: %w", err)
	}

	// Keys missing from the file keep their default values.
	cfg := Default()
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}

// ValidateConfig checks the configuration for validity and sets derived fields.
//
//nolint:funlen,cyclop // Validation functions naturally have high complexity and length due to sequential checks.
func ValidateConfig(cfg *Config) error {
	var (
		downloadSpeedLimit       = strings.TrimSpace(cfg.DownloadSpeedLimit)
		parsedDownloadSpeedLimit uint64
		err                      error
	)

	if strings.TrimSpace(cfg.CatalogBaseURL) == "" {
		cfg.CatalogBaseURL = DefaultCatalogBaseURL
	}

	baseURL, err := url.Parse(cfg.CatalogBaseURL)
	if err != nil || baseURL.Scheme == "" || baseURL.Host == "" {
		return fmt.Errorf("%w: '%s'", ErrInvalidCatalogURL, cfg.CatalogBaseURL)
	}

	cfg.AudioFormat = strings.ToLower(strings.TrimSpace(cfg.AudioFormat))
	if cfg.AudioFormat == "" {
		cfg.AudioFormat = DefaultAudioFormat
	}

	if !slices.Contains(SupportedAudioFormats, cfg.AudioFormat) {
		return fmt.Errorf("%w: '%s', expected one of %s",
			ErrUnsupportedAudioFormat, cfg.AudioFormat, strings.Join(SupportedAudioFormats, ", "))
	}

	if cfg.TrackFilenameTemplate == "" {
		cfg.TrackFilenameTemplate = DefaultTrackFilenameTemplate
	}

	if cfg.MaxFilenameLength <= 0 {
		return ErrInvalidFilenameLength
	}

	parsedLogLevel, isLogLevelCorrect := logger.ParseLogLevel(cfg.LogLevel)
	if !isLogLevelCorrect {
		return fmt.Errorf("%w: '%s'", ErrUnknownLogLevel, cfg.LogLevel)
	}

	cfg.ParsedLogLevel = parsedLogLevel

	if downloadSpeedLimit != "" && downloadSpeedLimit != "0" {
		parsedDownloadSpeedLimit, err = humanize.ParseBytes(downloadSpeedLimit)
		if err != nil {
			return fmt.Errorf("failed to parse download speed limit: %w", err)
		}
	}

	// io.CopyN accepts only int64 so we transform it safely in order to use it later.
	cfg.ParsedDownloadSpeedLimit = utils.SafeUint64ToInt64(parsedDownloadSpeedLimit)

	if cfg.FetchAttemptsCount <= 0 {
		return ErrInvalidFetchAttempts
	}

	cfg.ParsedMinRetryPause, err = time.ParseDuration(cfg.MinRetryPause)
	if err != nil {
		return fmt.Errorf("failed to parse min retry pause: %w", err)
	}

	if cfg.ParsedMinRetryPause <= 0 {
		return ErrInvalidMinRetryPause
	}

	cfg.ParsedMaxRetryPause, err = time.ParseDuration(cfg.MaxRetryPause)
	if err != nil {
		return fmt.Errorf("failed to parse max retry pause: %w", err)
	}

	if cfg.ParsedMaxRetryPause <= 0 {
		return ErrInvalidMaxRetryPause
	}

	playbackRetryPause := cfg.PlaybackRetryPause
	if playbackRetryPause == "" {
		playbackRetryPause = DefaultPlaybackRetryPause
	}

	cfg.ParsedPlaybackRetryPause, err = time.ParseDuration(playbackRetryPause)
	if err != nil {
		return fmt.Errorf("failed to parse playback retry pause: %w", err)
	}

	if cfg.ParsedPlaybackRetryPause < 0 {
		return ErrInvalidPlaybackRetryPause
	}

	return nil
}

// SaveConfig writes the configuration to the given file.
// An existing file is left untouched unless overwrite is set.
func SaveConfig(cfg *Config, configFilename string, overwrite bool) error {
	if configFilename == "" {
		configFilename = DefaultConfigFilename
	}

	exists, err := utils.IsFileExist(configFilename)
	if err != nil {
		return fmt.Errorf("failed to check config file: %w", err)
	}

	if exists && !overwrite {
		return fmt.Errorf("%w: %s", os.ErrExist, configFilename)
	}

	var node yaml.Node
	if err = node.Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	annotateNode(&node)

	content, err := yaml.Marshal(&node)
	if err != nil {
		return fmt.Errorf("failed to marshal YAML: %w", err)
	}

	if err = os.WriteFile(configFilename, content, constants.DefaultFilePermissions); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// keyComments holds the head comments written above keys of a generated config.
//
//nolint:gochecknoglobals // Immutable map used as a constant.
var keyComments = map[string]string{
	"audio_format":            "One of: mp3, flac, m4a, opus, wav.",
	"track_filename_template": "Available fields: trackNumber, trackNumberPad, trackTitle, trackArtist, albumTitle, albumArtist, releaseYear.", //nolint:lll
	"download_speed_limit":    "Empty or 0 disables throttling, e.g. 1MB or 500KB.",
	"fetch_attempts_count":    "1 means a failed track fetch is not retried.",
	"player_command":          "Receives the audio stream on stdin, e.g. \"ffplay -nodisp -autoexit -\".",
}

// annotateNode attaches head comments to known keys of an encoded mapping node.
func annotateNode(node *yaml.Node) {
	if node.Kind != yaml.MappingNode {
		return
	}

	// Iterate through key-value pairs (stored as alternating nodes).
	for i := 0; i < len(node.Content); i += 2 {
		keyNode := node.Content[i]
		if comment, ok := keyComments[keyNode.Value]; ok {
			keyNode.HeadComment = comment
		}
	}
}
