// Package commands содержит CLI-команды QC-пайплайна каталога.
package commands

import (
	"context"

	"github.com/DRSN-tech/product-qc/internal/app"
	"github.com/DRSN-tech/product-qc/pkg/logger"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "productqc",
	Short: "Product catalog QC pipeline",
	Long: `productqc ingests raw product feeds, links local images,
regenerates embedding tables through a vendor ML endpoint and checks
cross-modal consistency and catalog coverage.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		_ = godotenv.Load()
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(
		newSetupProductsCmd(),
		newLoadCmd(),
		newLinkImagesCmd(),
		newEmbedTextCmd(),
		newEmbedImagesCmd(),
		newCheckConsistencyCmd(),
		newSearchCmd(),
		newValidateCmd(),
		newSmokeTestCmd(),
		newServeCmd(),
	)
}

// newApp собирает приложение с подключением к базе.
func newApp(ctx context.Context) (*app.App, error) {
	a, err := app.New(logger.NewSlogLogger())
	if err != nil {
		return nil, err
	}

	if err := a.ConnectDB(); err != nil {
		return nil, err
	}

	if err := a.InitKafka(); err != nil {
		a.Shutdown(ctx)
		return nil, err
	}

	return a, nil
}
