package cli

import (
	"context"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func NewRoot() *cobra.Command {
	var debug bool

	rootCmd := &cobra.Command{
		Use:           "lease-dashboard",
		Short:         "Reservation lease access for the dashboard",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			if debug {
				log.SetLevel(log.DebugLevel)
			}
		},
	}
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	initCommands(rootCmd)

	return rootCmd
}

func Execute(ctx context.Context) error {
	if err := NewRoot().ExecuteContext(ctx); err != nil {
		return err
	}

	return nil
}

func initCommands(rootCmd *cobra.Command) {
	rootCmd.AddCommand(
		NewServe(),
		NewLease(newApplication),
	)
}
