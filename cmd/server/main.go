package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/mailfold/mailfold-backend/internal/api"
	"github.com/mailfold/mailfold-backend/internal/config"
	"github.com/mailfold/mailfold-backend/internal/database"
	"github.com/mailfold/mailfold-backend/internal/models"
	"github.com/mailfold/mailfold-backend/internal/notifier"
	"github.com/mailfold/mailfold-backend/internal/repository"
	"github.com/mailfold/mailfold-backend/internal/search"
	"github.com/mailfold/mailfold-backend/internal/services"
	"github.com/mailfold/mailfold-backend/internal/storage"
	ws "github.com/mailfold/mailfold-backend/internal/websocket"
)

func main() {
	// Load configuration first so the log level is known
	cfg, err := config.LoadWithValidation()
	if err != nil {
		slog.Error("Failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}))
	slog.SetDefault(logger)

	logger.Info("Starting Mailfold Backend Server...")
	cfg.LogConfig(logger)

	// Database
	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Error("Failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer database.Close(db)

	if err := database.Migrate(db); err != nil {
		logger.Error("Failed to run migrations", slog.Any("error", err))
		os.Exit(1)
	}

	// Attachment blob storage
	blobs, err := storage.NewLocalAttachmentStore(cfg.AttachmentStoragePath)
	if err != nil {
		logger.Error("Failed to initialize attachment storage", slog.Any("error", err))
		os.Exit(1)
	}

	// Participant registry with the built-in contact type
	contactRepo := repository.NewContactRepository(db)
	registry := models.NewParticipantRegistry()
	registry.Register(models.ParticipantTypeContact, repository.NewContactResolver(contactRepo))

	// Out-of-band notifier
	var mailer notifier.Notifier
	if cfg.EmailNotificationsEnabled {
		mailer = notifier.NewSMTPNotifier(notifier.SMTPConfig{
			Addr:     cfg.SMTPRelayAddr,
			From:     cfg.SMTPFrom,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
		}, true)
		logger.Info("Email notifications enabled", slog.String("relay", cfg.SMTPRelayAddr))
	} else {
		mailer = notifier.NewNoopNotifier()
	}

	// Search indexer
	indexer := search.NewNoopIndexer()
	if cfg.SearchEnabled {
		indexer, err = search.NewIndexer(context.Background(), search.Engine(cfg.SearchEngine), search.OpenSearchConfig{
			Addresses: cfg.OpenSearchAddresses,
			Username:  cfg.OpenSearchUsername,
			Password:  cfg.OpenSearchPassword,
			Index:     cfg.OpenSearchIndex,
		})
		if err != nil {
			logger.Error("Failed to initialize search indexer", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("Search indexing enabled", slog.String("engine", cfg.SearchEngine))
	}

	// WebSocket hub for delivery events
	hub := ws.NewHub(logger)
	go hub.Run()

	// Delivery service wired to broadcast committed message deliveries
	deliveries := services.NewDeliveryService(
		repository.NewNotificationRepository(db),
		repository.NewConversationRepository(db),
		mailer,
		indexer,
		services.DeliveryServiceConfig{
			OnDeliver: map[models.NotificationKind]services.DeliveryCallback{
				models.KindMessage: hub.BroadcastDelivery,
			},
		},
		logger,
	)

	e := api.NewRouter(&api.RouterConfig{
		DB:             db,
		Blobs:          blobs,
		Deliveries:     deliveries,
		Registry:       registry,
		Hub:            hub,
		Logger:         logger,
		AllowedOrigins: cfg.AllowedOriginList(),
	})

	// Start the API server
	go func() {
		addr := fmt.Sprintf(":%d", cfg.APIPort)
		logger.Info("API server listening", slog.String("addr", addr))
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Error("API server failed", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		logger.Error("Forced shutdown", slog.Any("error", err))
	}

	logger.Info("Server stopped")
}

// parseLogLevel maps the configured level name onto slog
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
