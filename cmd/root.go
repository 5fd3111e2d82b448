package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/oshokin/ytm-grabber/internal/app"
	"github.com/oshokin/ytm-grabber/internal/config"
	"github.com/oshokin/ytm-grabber/internal/logger"
	"github.com/oshokin/ytm-grabber/internal/utils"
)

var (
	//nolint:gochecknoglobals // It is required for configuration initialization before the application starts.
	configFilenameFromFlag string

	//nolint:gochecknoglobals,lll // It is initialized once during the application's startup and shared across the command execution logic.
	appConfig *config.Config

	//nolint:gochecknoglobals,lll // Cobra command requires a global definition for proper command-line parsing and execution.
	rootCmd = &cobra.Command{
		Use:   "ytm-grabber [flags] {album-id}",
		Short: "Download the tracks of an album with tags and artwork.",
		Long: `YTM Grabber is a CLI tool for downloading album tracks from a music catalog.
Selected tracks are fetched one by one, tagged with title, artist, album,
track number, year and cover art, and moved into the output directory.

Tracks are selected by their 1-based numbers, for example: -t 1,3-5.
Without a selection the whole album is downloaded.

Press Ctrl+C to cancel; tracks already finished are kept.`,
		Args:             cobra.ExactArgs(1),
		PersistentPreRun: initConfig,
		Run: func(cmd *cobra.Command, args []string) {
			if err := bindFlagsToConfig(cmd.Flags(), appConfig); err != nil {
				logger.Fatalf(cmd.Context(), "Failed to parse flags: %v", err)
			}

			selection, _ := cmd.Flags().GetString("tracks")

			app.ExecuteDownloadCommand(cmd.Context(), appConfig, args[0], selection)
		},
	}
)

// Execute executes the root command.
func Execute() {
	signals := []os.Signal{syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM}
	ctx, stop := signal.NotifyContext(context.Background(), signals...)

	defer func() {
		_ = logger.Logger().Sync()
	}()

	defer stop()

	go func() {
		defer stop()

		err := rootCmd.ExecuteContext(ctx)
		cobra.CheckErr(err)
	}()

	<-ctx.Done()
}

//nolint:gochecknoinits // Cobra requires the init function to set up flags before the command is executed.
func init() {
	rootCmd.PersistentFlags().StringVarP(
		&configFilenameFromFlag,
		"config",
		"c",
		"",
		fmt.Sprintf("path to the configuration file (default is '%s')",
			config.DefaultConfigFilename))

	rootCmdFlags := rootCmd.Flags()

	rootCmdFlags.StringP(
		"tracks",
		"t",
		"",
		"1-based track numbers to download, for example: 1,3-5 (default is the whole album).")

	addDownloadFlags(rootCmdFlags)
}

// addDownloadFlags registers the flags that override download settings.
func addDownloadFlags(flags *pflag.FlagSet) {
	flags.StringP(
		"format",
		"f",
		"",
		"audio format: mp3, flac, m4a, opus or wav.")

	flags.StringP(
		"output",
		"o",
		"",
		"directory to save downloaded files (the path will be created if it doesn’t exist).")

	flags.StringP(
		"speed-limit",
		"s",
		"",
		"set download speed limit, for example: 500KB, 1MB, 1.5MB.")
}

func initConfig(cmd *cobra.Command, _ []string) {
	var err error

	appConfig, err = loadConfig(configFilenameFromFlag)
	if err != nil {
		logger.Fatalf(cmd.Context(), "Failed to load configuration: %v", err)
	}

	if err = config.ValidateConfig(appConfig); err != nil {
		logger.Fatalf(cmd.Context(), "Invalid configuration: %v", err)
	}

	logger.SetLevel(appConfig.ParsedLogLevel)
}

// loadConfig reads the configuration file.
// Defaults are used when no file was requested and the default file does not exist.
func loadConfig(configFilename string) (*config.Config, error) {
	if configFilename == "" {
		exists, err := utils.IsFileExist(config.DefaultConfigFilename)
		if err != nil {
			return nil, err
		}

		if !exists {
			return config.Default(), nil
		}
	}

	return config.LoadConfig(configFilename)
}

func bindFlagsToConfig(flags *pflag.FlagSet, cfg *config.Config) error {
	if flag := flags.Lookup("format"); flag != nil && flag.Changed {
		cfg.AudioFormat, _ = flags.GetString("format")
	}

	if flag := flags.Lookup("output"); flag != nil && flag.Changed {
		cfg.OutputPath, _ = flags.GetString("output")
	}

	if flag := flags.Lookup("speed-limit"); flag != nil && flag.Changed {
		cfg.DownloadSpeedLimit, _ = flags.GetString("speed-limit")
	}

	return config.ValidateConfig(cfg)
}
