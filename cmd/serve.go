package cmd

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"districtlens/internal/ai"
	"districtlens/internal/config"
	"districtlens/internal/query"
	"districtlens/internal/registry"
	"districtlens/internal/routing"
	"districtlens/internal/server"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the analytics HTTP API",
	Long: `Serve starts the HTTP API: POST /api/ask for natural-language questions,
GET /api/dashboard/{district_id} for the per-district overview, and
GET /health for store connectivity.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config, :8080)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log, err := newLogger()
	if err != nil {
		return err
	}
	defer log.Sync()

	settings := config.LoadSettings()
	addr := serveAddr
	if addr == "" {
		addr = settings.ListenAddr
	}

	pg, err := config.PostgresConnection("")
	if err != nil {
		return err
	}
	exec, err := query.NewPostgresExecutor(ctx, pg, settings.MaxRows, log)
	if err != nil {
		return err
	}
	defer exec.Close()

	reg, err := registry.Default()
	if err != nil {
		return err
	}

	router := routing.New(reg, exec, log, routing.Options{
		MaxRows:             settings.MaxRows,
		RequestTimeout:      settings.RequestTimeout,
		ConfidenceThreshold: settings.ConfidenceThreshold,
		CacheSize:           settings.CacheSize,
		DefaultView:         settings.DefaultView,
	})

	composer, err := ai.NewComposer(ctx, log)
	if err != nil {
		return err
	}

	srv := server.New(router, composer, exec, log)
	log.Info("starting", zap.String("addr", addr), zap.String("database", pg.Database))
	if err := srv.ListenAndServe(ctx, addr); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
