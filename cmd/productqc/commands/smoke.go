package commands

import (
	"context"

	"github.com/spf13/cobra"
)

func newSmokeTestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "smoke-test",
		Short: "Probe the vendor ML endpoint with live catalog rows",
		Long: `Samples up to five product descriptions from the catalog, sends them to
the embedding model and asks the generative model one boolean question
about the first of them. Remote failures are logged and do not fail
the command.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Shutdown(ctx)

			a.SmokeUC().Run(ctx)

			return nil
		},
	}
}
