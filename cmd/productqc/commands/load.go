package commands

import (
	"context"
	"fmt"

	"github.com/DRSN-tech/product-qc/internal/app"
	"github.com/DRSN-tech/product-qc/internal/ingest"
	"github.com/spf13/cobra"
)

func newSetupProductsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "setup-products <file>",
		Short: "Provision the dataset and append a normalized feed",
		Long: `Creates the dataset schema if it does not exist, applies pending
migrations and appends the normalized feed to the products table.

Supported inputs: line-delimited JSON (.json) and CSV with a header row (.csv).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Shutdown(ctx)

			outcome, err := a.DB.EnsureSchema(ctx)
			if err != nil {
				return err
			}
			a.Log.Infof("dataset schema %q: %s", a.Cfg.Pipeline.Dataset, outcome)

			if err := a.DB.RunMigrations(a.Log); err != nil {
				return err
			}

			return runLoad(ctx, a, args[0], false)
		},
	}
}

func newLoadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "load <file>",
		Short: "Replace the products table with a normalized feed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Shutdown(ctx)

			return runLoad(ctx, a, args[0], true)
		},
	}
}

func runLoad(ctx context.Context, a *app.App, path string, truncate bool) error {
	products, skipped, err := ingest.NewNormalizer().NormalizeFile(path)
	if err != nil {
		return err
	}
	if skipped > 0 {
		a.Log.Warnf("skipped %d rows without a product identifier in %s", skipped, path)
	}

	report, err := a.LoaderUC().Load(ctx, products, truncate)
	if err != nil {
		return err
	}

	fmt.Printf("loaded %d rows from %s\n", report.Rows, path)

	return nil
}
