package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newEmbedTextCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "embed-text",
		Short: "Regenerate text, spec and review embedding tables",
		Long: `Reads descriptions, serialized specs and unnested reviews from the
catalog, vectorizes them through the vendor ML endpoint and replaces
the corresponding embedding tables and their index collections.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Shutdown(ctx)

			if err := a.InitQdrant(); err != nil {
				return err
			}

			report, err := a.EmbedderUC().RegenerateText(ctx)
			if err != nil {
				return err
			}

			for table, rows := range report.Tables {
				fmt.Printf("%s: %d rows\n", table, rows)
			}

			return nil
		},
	}
}

func newEmbedImagesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "embed-images",
		Short: "Regenerate the image embedding table",
		Long: `Vectorizes stored object URIs through the vendor ML endpoint and
replaces the image embedding table and its index collection.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Shutdown(ctx)

			if err := a.InitQdrant(); err != nil {
				return err
			}

			report, err := a.EmbedderUC().RegenerateImages(ctx)
			if err != nil {
				return err
			}

			for table, rows := range report.Tables {
				fmt.Printf("%s: %d rows\n", table, rows)
			}

			return nil
		},
	}
}
