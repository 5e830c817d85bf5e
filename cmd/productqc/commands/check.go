package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newCheckConsistencyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check-consistency",
		Short: "Flag products whose text and image embeddings disagree",
		Args:  cobra.NoArgs,
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
			a.InitRedis(ctx)

			mismatches, err := a.CheckerUC().CheckConsistency(ctx)
			if err != nil {
				return err
			}

			if len(mismatches) == 0 {
				fmt.Println("no cross-modal mismatches found")
				return nil
			}

			fmt.Printf("%d products below threshold %.2f:\n", len(mismatches), a.Cfg.Pipeline.Threshold)
			for _, m := range mismatches {
				fmt.Printf("  %s\t%.4f\n", m.ProductID, m.Similarity)
			}

			return nil
		},
	}
}

func newSearchCmd() *cobra.Command {
	var topK int

	cmd := &cobra.Command{
		Use:   "search [product-id]",
		Short: "Find products most similar to the given product",
		Args:  cobra.MaximumNArgs(1),
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
			a.InitRedis(ctx)

			productID := a.Cfg.Pipeline.QueryProductID
			if len(args) == 1 {
				productID = args[0]
			}

			if topK <= 0 {
				topK = a.Cfg.Pipeline.TopK
			}

			hits, err := a.CheckerUC().SearchSimilar(ctx, productID, topK)
			if err != nil {
				return err
			}

			fmt.Printf("top %d neighbors of %s:\n", topK, productID)
			for _, hit := range hits {
				fmt.Printf("  %s\t%.4f\t%s / %s / %s\n", hit.ProductID, hit.Score, hit.Title, hit.Brand, hit.Category)
			}

			return nil
		},
	}

	cmd.Flags().IntVar(&topK, "top-k", 0, "number of neighbors to return (defaults to SEARCH_TOP_K)")

	return cmd
}
