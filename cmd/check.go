package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Rorical/Vibella/internal/backend"
	"github.com/Rorical/Vibella/internal/config"
	"github.com/Rorical/Vibella/internal/core"
)

const checkTimeout = 10 * time.Second

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check that the backend is reachable",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig(overrides)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		logger := newLogger(cfg)
		defer func() { _ = logger.Sync() }()

		client := backend.NewClient(cfg.GetBaseURL(), backend.WithLogger(logger))
		defer client.Close()
		service := core.NewChatService(client, client.BaseURL(), nil, logger)

		ctx, cancel := context.WithTimeout(cmd.Context(), checkTimeout)
		defer cancel()
		if !service.CheckConnectivity(ctx) {
			return errors.New(core.UnreachableMessage(client.BaseURL()))
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Backend is reachable at %s\n", client.BaseURL())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
