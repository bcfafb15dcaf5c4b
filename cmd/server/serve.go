package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"jobtrack/internal/api"
	"jobtrack/internal/logging"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, log, err := bootstrap(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			gin.SetMode(a.Config.Server.Mode)
			router := api.NewRouter(api.Dependencies{
				Workflows: a.Workflows,
				Jobs:      a.Jobs,
				Bus:       a.Bus,
				Metrics:   a.Metrics,
				Log:       logging.Component(log, "http"),
			})

			srv := &http.Server{
				Addr:              a.Config.Server.Addr,
				Handler:           router,
				ReadHeaderTimeout: 10 * time.Second,
				// Event streams end when the process is signalled.
				BaseContext: func(net.Listener) context.Context { return ctx },
			}

			errCh := make(chan error, 1)
			go func() {
				log.WithField("addr", srv.Addr).Info("server starting")
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-ctx.Done():
			}

			log.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
}
