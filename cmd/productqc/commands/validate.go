package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Report catalog coverage and the pipeline verdict",
		Long: `Counts how many catalog rows carry a description, non-empty specs and
image references, and reports PASS when every ratio reaches the
coverage threshold. The verdict is informational: the command exits
zero either way.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Shutdown(ctx)

			report, err := a.ValidatorUC().Validate(ctx)
			if err != nil {
				return err
			}

			fmt.Printf("rows:        %d\n", report.Stats.TotalRows)
			fmt.Printf("description: %.2f\n", report.DescriptionRatio)
			fmt.Printf("specs:       %.2f\n", report.SpecsRatio)
			fmt.Printf("images:      %.2f\n", report.ImagesRatio)

			if report.Passed {
				fmt.Println("verdict: PASS")
			} else {
				fmt.Println("verdict: FAIL")
			}

			return nil
		},
	}
}
