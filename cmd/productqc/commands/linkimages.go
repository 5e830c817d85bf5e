package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newLinkImagesCmd() *cobra.Command {
	var root string

	cmd := &cobra.Command{
		Use:   "link-images",
		Short: "Upload local images and link them to catalog rows",
		Long: `Scans <root>/<product_id>/ directories for image files, uploads them
to object storage, records them in the image table and patches image
references on matching catalog rows. Directories without a matching
product are skipped.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Shutdown(ctx)

			if err := a.InitMinio(ctx); err != nil {
				return err
			}

			if root == "" {
				root = a.Cfg.Pipeline.ImagesRoot
			}

			report, err := a.ImageLinkUC().LinkImages(ctx, root)
			if err != nil {
				return err
			}

			fmt.Printf("linked %d images for %d products (%d unknown dirs skipped)\n",
				report.Linked, report.Products, report.SkippedUnknown)

			return nil
		},
	}

	cmd.Flags().StringVar(&root, "root", "", "images root directory (defaults to IMAGES_ROOT)")

	return cmd
}
