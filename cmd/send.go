package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Rorical/Vibella/internal/backend"
	"github.com/Rorical/Vibella/internal/config"
	"github.com/Rorical/Vibella/internal/core"
	"github.com/Rorical/Vibella/ui/components"
)

// Entries are printed unwrapped so scripts see the exact text.
const transcriptWidth = 0

var sendImage string

var errNothingToSend = errors.New("nothing to send: give a message or --image")

var sendCmd = &cobra.Command{
	Use:   "send [message]",
	Short: "Send one message without starting the chat app",
	Long: `Send one message, optionally with an image, and print the reply.
With only --image, the backend is asked for a caption, hashtags and songs.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig(overrides)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		logger := newLogger(cfg)
		defer func() { _ = logger.Sync() }()

		client := backend.NewClient(cfg.GetBaseURL(),
			backend.WithTimeout(cfg.GetRequestTimeout()),
			backend.WithLogger(logger),
		)
		defer client.Close()
		service := core.NewChatService(client, client.BaseURL(), nil, logger)

		if sendImage != "" {
			if err := service.SelectImage(sendImage); err != nil {
				return errors.New(core.NoticeFor(err))
			}
		}

		if !service.Send(strings.Join(args, " ")) {
			return errNothingToSend
		}

		transcript := service.Transcript()
		fmt.Fprintln(cmd.OutOrStdout(), components.RenderMessages(transcript, transcriptWidth))

		if last := transcript[len(transcript)-1]; last.Content == core.SendFailureMessage {
			return errors.New("request failed, see the log for details")
		}
		return nil
	},
}

func init() {
	sendCmd.Flags().StringVarP(&sendImage, "image", "i", "", "image to attach (JPEG, PNG or WebP, max 5MB)")
	rootCmd.AddCommand(sendCmd)
}
