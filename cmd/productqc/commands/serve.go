package commands

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	v1Http "github.com/DRSN-tech/product-qc/internal/delivery/v1/http"
	"github.com/go-chi/chi/v5"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve read-only QC diagnostics over HTTP",
		Long: `Starts an HTTP server exposing the coverage report, cross-modal
mismatches and similarity search under /api/v1.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			a, err := newApp(ctx)
			if err != nil {
				return err
			}

			if err := a.InitQdrant(); err != nil {
				a.Shutdown(ctx)
				return err
			}
			a.InitRedis(ctx)

			mux := chi.NewRouter()
			router := v1Http.NewRouter(mux, a.Log)
			router.Init(a.CheckerUC(), a.ValidatorUC(), a.Cfg.Pipeline.TopK)

			server := v1Http.NewServer(mux, a.Cfg.Http)

			serverErr := make(chan error, 1)
			go func() {
				a.Log.Infof("http server listening on :%s", a.Cfg.Http.Port)
				serverErr <- server.Run()
			}()

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

			select {
			case err := <-serverErr:
				if err != nil && !errors.Is(err, http.ErrServerClosed) {
					a.Shutdown(ctx)
					return err
				}
			case sig := <-quit:
				a.Log.Infof("received %s, shutting down", sig)
			}

			stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			if err := server.Stop(stopCtx); err != nil {
				a.Log.Errorf(err, "http server shutdown failed")
			}

			a.Shutdown(stopCtx)

			return nil
		},
	}
}
