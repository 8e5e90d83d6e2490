// Точка входа основного сервиса льгот: HTTP API, приём событий
// платёжного провайдера и ведение журнала требований.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	benefitledger "github.com/magabrotheeeer/benefit-ledger/internal/app/benefit-ledger"
	"github.com/magabrotheeeer/benefit-ledger/internal/config"
	"github.com/magabrotheeeer/benefit-ledger/internal/lib/sl"
)

func main() {
	cfg := config.MustLoad()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	logger.Info("starting benefit-ledger", slog.String("env", cfg.Env))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, err := benefitledger.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to init application", sl.Err(err))
		os.Exit(1)
	}

	if err := application.Run(ctx); err != nil {
		logger.Error("application stopped with error", sl.Err(err))
		os.Exit(1)
	}
	logger.Info("application stopped")
}
