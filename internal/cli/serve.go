package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/RoyceAzure/lab/shopcore/config"
	"github.com/RoyceAzure/lab/shopcore/internal/appcontext"
	"github.com/RoyceAzure/lab/shopcore/internal/pkg/logger"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			if rootOpts.ConfigPath != "" {
				if err := os.Setenv("CONFIG_PATH", rootOpts.ConfigPath); err != nil {
					return err
				}
			}
			cf := config.GetConfig()
			config.OnChange(applyReload)
			return runServe(cf)
		},
	}
}

// applyReload 只有 log level 可以在執行中調整，其餘設定需要重啟
func applyReload(cf *config.Config) {
	level := logger.ParseLevel(cf.LogLevel)
	zerolog.SetGlobalLevel(level)
	log.Info().Str("level", level.String()).Msg("log level reloaded")
}

func runServe(cf *config.Config) error {
	app, err := appcontext.NewApplicationContext(cf)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := app.Start(ctx); err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cf.ServerPort),
		Handler:           app.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("Received shutdown signal")
	case err := <-serveErr:
		if err != nil {
			log.Error().Err(err).Msg("server stopped")
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var errs []error
	if err := srv.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("server shutdown: %w", err))
	}
	if err := app.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("application shutdown: %w", err))
	}
	log.Info().Msg("closed completed")
	return errors.Join(errs...)
}
