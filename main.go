package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"pharmatrack/internal/auth"
	"pharmatrack/internal/config"
	"pharmatrack/internal/database"
	"pharmatrack/internal/docstore"
	"pharmatrack/internal/migrations"
	"pharmatrack/internal/notify"
	"pharmatrack/internal/report"
	"pharmatrack/internal/repository"
	"pharmatrack/internal/seed"
	"pharmatrack/internal/web"
)

func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg := config.Load()

	db, err := database.Open(cfg.DatabaseDriver, cfg.DatabaseDSN)
	if err != nil {
		logger.Error("database connection failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer db.Close()

	if err := migrations.Run(db); err != nil {
		logger.Error("migrations failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx := context.Background()

	users := auth.NewStore(db, logger)
	if err := seed.EnsureDefaultUsers(ctx, users, logger); err != nil {
		logger.Error("default account seeding failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	audit := repository.NewAuditLog(db, logger)
	inventory := repository.NewInventory(db, audit, logger)
	documents, err := docstore.New(cfg.UploadDir, repository.NewDocuments(db, logger), logger)
	if err != nil {
		logger.Error("upload directory setup failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	alerts := repository.NewAlerts(db, logger)
	imports := repository.NewImportHistory(db, logger)
	reports := report.New(db, logger)

	var mailer notify.Mailer
	if sg := notify.NewSendGridMailer(cfg.SendGridAPIKey); sg != nil {
		mailer = sg
	}
	notifier := notify.New(mailer, cfg.NotifyFrom, cfg.NotifyTo, logger)

	handler := web.NewHandler(cfg, users, inventory, documents, alerts, audit, imports, reports, notifier, logger)

	addr := ":" + cfg.HTTPPort
	logger.Info("server listening",
		slog.String("addr", addr),
		slog.String("driver", cfg.DatabaseDriver))
	if err := http.ListenAndServe(addr, handler.Router()); err != nil {
		logger.Error("server stopped", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
