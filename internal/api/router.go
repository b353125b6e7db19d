package api

import (
	"log/slog"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/mailfold/mailfold-backend/internal/api/handlers"
	"github.com/mailfold/mailfold-backend/internal/api/middleware"
	"github.com/mailfold/mailfold-backend/internal/models"
	"github.com/mailfold/mailfold-backend/internal/repository"
	"github.com/mailfold/mailfold-backend/internal/services"
	"github.com/mailfold/mailfold-backend/internal/storage"
	ws "github.com/mailfold/mailfold-backend/internal/websocket"
)

// RouterConfig holds dependencies for the router
type RouterConfig struct {
	DB             *gorm.DB
	Blobs          storage.AttachmentStore
	Deliveries     services.DeliveryService
	Registry       *models.ParticipantRegistry
	Hub            *ws.Hub
	Logger         *slog.Logger
	AllowedOrigins []string
}

// NewRouter creates and configures the Echo router with all routes
func NewRouter(cfg *RouterConfig) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.Recover())
	e.Use(middleware.CORS(cfg.AllowedOrigins))
	if cfg.Logger != nil {
		e.Use(middleware.RequestLogger(cfg.Logger))
	}

	// Initialize repositories
	conversationRepo := repository.NewConversationRepository(cfg.DB)
	notificationRepo := repository.NewNotificationRepository(cfg.DB)
	receiptRepo := repository.NewReceiptRepository(cfg.DB)
	attachmentRepo := repository.NewAttachmentRepository(cfg.DB, cfg.Blobs)
	contactRepo := repository.NewContactRepository(cfg.DB)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(cfg.DB)
	deliveryHandler := handlers.NewDeliveryHandler(cfg.Deliveries, cfg.Registry)
	receiptHandler := handlers.NewReceiptHandler(receiptRepo)
	conversationHandler := handlers.NewConversationHandler(conversationRepo, notificationRepo)
	attachmentHandler := handlers.NewAttachmentHandler(attachmentRepo, notificationRepo, cfg.Blobs)
	contactHandler := handlers.NewContactHandler(contactRepo)

	// Health routes
	e.GET("/health", healthHandler.Health)
	e.GET("/ready", healthHandler.Ready)

	// Delivery-event stream
	if cfg.Hub != nil {
		upgrader := ws.NewSecureUpgrader(cfg.AllowedOrigins, cfg.Logger)
		wsHandler := handlers.NewWebSocketHandler(cfg.Hub, upgrader, cfg.Logger)
		e.GET("/ws", wsHandler.Connect)
	}

	// API routes
	api := e.Group("/api")

	// Delivery routes
	api.POST("/deliveries", deliveryHandler.Deliver)

	// Conversation routes
	conversations := api.Group("/conversations")
	conversations.GET("/:id", conversationHandler.Get)
	conversations.GET("/:id/notifications", conversationHandler.ListNotifications)
	conversations.POST("/:id/replies", deliveryHandler.Reply)

	// Receipt routes
	receipts := api.Group("/receipts")
	receipts.GET("", receiptHandler.List)
	receipts.GET("/unread_count", receiptHandler.UnreadCount)
	receipts.GET("/:id", receiptHandler.Get)
	receipts.PATCH("/:id/read", receiptHandler.MarkAsRead)
	receipts.PATCH("/:id/unread", receiptHandler.MarkAsUnread)
	receipts.PATCH("/:id/trash", receiptHandler.MoveToTrash)
	receipts.PATCH("/:id/untrash", receiptHandler.Untrash)
	receipts.PATCH("/:id/inbox", receiptHandler.MoveToInbox)
	receipts.PATCH("/:id/sentbox", receiptHandler.MoveToSentbox)
	receipts.POST("/bulk/read", receiptHandler.BulkMarkAsRead)
	receipts.POST("/bulk/unread", receiptHandler.BulkMarkAsUnread)
	receipts.POST("/bulk/trash", receiptHandler.BulkMoveToTrash)
	receipts.POST("/bulk/untrash", receiptHandler.BulkUntrash)
	receipts.POST("/bulk/inbox", receiptHandler.BulkMoveToInbox)
	receipts.POST("/bulk/sentbox", receiptHandler.BulkMoveToSentbox)

	// Attachment routes (nested under notifications)
	notifications := api.Group("/notifications")
	notifications.POST("/:notification_id/attachments", attachmentHandler.Upload)
	notifications.GET("/:notification_id/attachments", attachmentHandler.List)

	// Attachment routes (standalone)
	attachments := api.Group("/attachments")
	attachments.GET("/:id", attachmentHandler.Get)
	attachments.GET("/:id/download", attachmentHandler.Download)
	attachments.DELETE("/:id", attachmentHandler.Delete)

	// Contact routes
	contacts := api.Group("/contacts")
	contacts.POST("", contactHandler.Create)
	contacts.GET("/:id", contactHandler.Get)

	return e
}
