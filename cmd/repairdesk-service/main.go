package main

import (
	"fmt"
	"os"

	"repairdesk-service/internal/auth"
	"repairdesk-service/internal/config"
	"repairdesk-service/internal/db"
	httphandler "repairdesk-service/internal/http"
	"repairdesk-service/internal/http/middleware"
	"repairdesk-service/internal/hub"
	"repairdesk-service/internal/logger"
	"repairdesk-service/internal/notify"
	"repairdesk-service/internal/receipt"
	"repairdesk-service/internal/repository"
	"repairdesk-service/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	appLogger := logger.New(cfg.Environment)

	database, err := db.New(cfg, appLogger)
	if err != nil {
		appLogger.Fatal().Err(err).Msg("failed to connect database")
	}

	ticketRepo := repository.NewTicketRepository(database)
	paymentLogRepo := repository.NewPaymentLogRepository(database)
	notificationLogRepo := repository.NewNotificationLogRepository(database)

	eventHub := hub.New(appLogger)

	ticketService := service.NewTicketService(database, ticketRepo, paymentLogRepo, eventHub, appLogger)
	reportService := service.NewReportService(ticketRepo, paymentLogRepo, appLogger)
	adminGate := service.NewAdminGate(cfg.Admin, cfg.Auth.AccessSecret)

	notifier := notify.NewWhatsAppNotifier(cfg.Shop, notificationLogRepo, appLogger)
	receiptRenderer, err := receipt.NewRenderer(cfg.Shop)
	if err != nil {
		appLogger.Fatal().Err(err).Msg("failed to parse receipt template")
	}

	tokenParser := auth.NewParser(cfg.Auth.AccessSecret)

	handler := httphandler.NewHandler(
		ticketService,
		reportService,
		adminGate,
		notifier,
		receiptRenderer,
		eventHub,
		cfg.Shop.Name,
		appLogger,
	)
	authMiddleware := middleware.Auth(tokenParser)
	router := httphandler.NewRouter(handler, authMiddleware, cfg.Environment)

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	appLogger.Info().Str("addr", addr).Msg("starting repairdesk service")

	if err := router.Run(addr); err != nil {
		appLogger.Error().Err(err).Msg("failed to start server")
		os.Exit(1)
	}
}
