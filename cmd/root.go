package cmd

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Rorical/Vibella/internal/app"
	"github.com/Rorical/Vibella/internal/config"
	"github.com/Rorical/Vibella/internal/logging"
)

var (
	overrides = config.NewOverrides()
	verbose   bool
)

var rootCmd = &cobra.Command{
	Use:   "vibella",
	Short: "Terminal client for the Vibella image chat backend",
	Long: `Vibella sends your message and an optional image to a Vibella backend
and shows the caption, hashtags and song suggestions it replies with.`,
	SilenceUsage: true,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.LoadConfig(overrides)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		runChat(cfg)
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// runChat runs the terminal UI with cfg until the user quits.
func runChat(cfg *config.Config) {
	logger := newLogger(cfg)
	application := app.NewApplication(cfg, logger)
	defer application.Stop()

	if err := application.Start(); err != nil {
		log.Fatalf("Application error: %v", err)
	}
}

// newLogger falls back to a no-op logger so a bad log path never blocks chat.
func newLogger(cfg *config.Config) *zap.Logger {
	logger, err := logging.New(cfg.GetLogFile(), cfg.GetLogLevel(), verbose)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Logging disabled: %v\n", err)
		return zap.NewNop()
	}
	return logger
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("base-url", "", "backend base URL (overrides the active profile)")
	flags.String("log-level", "", "log level: debug, info, warn or error")
	flags.String("log-file", "", "log file path")
	flags.BoolVarP(&verbose, "verbose", "v", false, "log at debug level")

	for key, flag := range map[string]string{
		config.KeyBaseURL:  "base-url",
		config.KeyLogLevel: "log-level",
		config.KeyLogFile:  "log-file",
	} {
		if err := overrides.BindPFlag(key, flags.Lookup(flag)); err != nil {
			log.Fatalf("Failed to bind flag %s: %v", flag, err)
		}
	}

	rootCmd.AddCommand(profileCmd)
}
