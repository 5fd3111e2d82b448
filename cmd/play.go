package cmd

import (
	"github.com/spf13/cobra"

	"github.com/oshokin/ytm-grabber/internal/app"
	"github.com/oshokin/ytm-grabber/internal/logger"
)

//nolint:gochecknoglobals // Cobra command requires a global definition.
var playCmd = &cobra.Command{
	Use:   "play [flags] {album-id}",
	Short: "Play the tracks of an album",
	Long: `Plays an album starting at the selected track and continues with the next ones.

The audio stream is written to the standard input of 'player_command' from the
configuration, for example "ffplay -nodisp -autoexit -". Without a player command
the stream goes to stdout, so it can be piped:

ytm-grabber play MPREb_xxxxxxxx -t 3 | mpv -

A track that fails to play is retried up to 3 times before playback stops.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		flags := cmd.Flags()

		if flag := flags.Lookup("player"); flag != nil && flag.Changed {
			appConfig.PlayerCommand, _ = flags.GetString("player")
		}

		if err := bindFlagsToConfig(flags, appConfig); err != nil {
			logger.Fatalf(cmd.Context(), "Failed to parse flags: %v", err)
		}

		trackNumber, _ := flags.GetInt("track")

		app.ExecutePlayCommand(cmd.Context(), appConfig, args[0], trackNumber)
	},
}

//nolint:gochecknoinits // Cobra requires the init function to set up commands.
func init() {
	playCmd.Flags().IntP("track", "t", 1, "1-based number of the first track to play.")
	playCmd.Flags().StringP("format", "f", "", "audio format: mp3, flac, m4a, opus or wav.")
	playCmd.Flags().StringP("player", "p", "", "command receiving the audio stream on stdin.")

	rootCmd.AddCommand(playCmd)
}
