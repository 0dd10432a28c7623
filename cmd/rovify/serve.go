package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"rovify-backend/config"
	"rovify-backend/factory"
	"rovify-backend/logger"
	"rovify-backend/middleware"
	"rovify-backend/router"
	"rovify-backend/scheduler"
	"syscall"
	"time"

	"github.com/codegangsta/negroni"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const shutdownTimeout = 15 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and the background jobs",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve()
	},
}

func serve() error {
	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	f := factory.NewFactory()
	muxRouter := router.Router(ctx, f)

	jobs, err := scheduler.NewManager(f.DB(ctx))
	if err != nil {
		return err
	}
	if err := jobs.Start(ctx, viper.GetDuration(config.SchedulerInterval)); err != nil {
		return err
	}
	defer jobs.Stop(ctx)

	n := negroni.New()
	n.UseHandler(middleware.CORS(viper.GetStringSlice(config.AllowedOrigins))(muxRouter))

	srv := &http.Server{
		Addr:              viper.GetString(config.Port),
		Handler:           n,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errs := make(chan error, 1)
	go func() {
		logger.Infof(ctx, "serve: listening on %s", srv.Addr)
		errs <- srv.ListenAndServe()
	}()

	select {
	case err := <-errs:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-sigCtx.Done():
	}

	logger.Infof(ctx, "serve: shutting down")
	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
