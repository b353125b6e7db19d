package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mailfold/mailfold-backend/internal/models"
	"github.com/mailfold/mailfold-backend/internal/notifier"
	"github.com/mailfold/mailfold-backend/internal/repository"
	"github.com/mailfold/mailfold-backend/internal/search"
	"github.com/mailfold/mailfold-backend/internal/validator"
)

// DeliveryCallback is invoked after a delivery of its notification kind has
// been committed. Callback failures are reported, never rolled back into the
// delivery.
type DeliveryCallback func(n *models.Notification)

// DeliveryOptions control one deliver call
type DeliveryOptions struct {
	// IsReply marks the notification as a reply; the conversation's
	// last_activity_at is bumped explicitly. The first message of a
	// conversation defines freshness through creation and is not touched.
	IsReply bool

	// ShouldClean strips markup from subject and body before persistence.
	ShouldClean bool
}

// DeliveryService turns one authored notification plus its recipient set
// into a committed batch of receipts.
type DeliveryService interface {
	// Deliver validates, persists and fans out the notification. It returns
	// the sender's sentbox receipt. On validation failure nothing is
	// persisted and the unsaved sender receipt comes back with its Errors
	// set, alongside the *models.ValidationError.
	Deliver(ctx context.Context, n *models.Notification, opts DeliveryOptions) (*models.Receipt, error)

	// DeliverReply delivers a message into an existing conversation under
	// the conversation's subject, bumping its freshness.
	DeliverReply(ctx context.Context, conversationID uint, sender models.Participant, recipients []models.Participant, body string, shouldClean bool) (*models.Receipt, error)
}

// DeliveryServiceConfig holds construction-time wiring for the service.
// Callbacks are registered once per notification kind, not process-wide.
type DeliveryServiceConfig struct {
	OnDeliver map[models.NotificationKind]DeliveryCallback
}

// deliveryService implements DeliveryService
type deliveryService struct {
	notifications repository.NotificationRepository
	conversations repository.ConversationRepository
	notifier      notifier.Notifier
	indexer       search.Indexer
	callbacks     map[models.NotificationKind]DeliveryCallback
	logger        *slog.Logger
}

// NewDeliveryService creates a new DeliveryService instance
func NewDeliveryService(
	notifications repository.NotificationRepository,
	conversations repository.ConversationRepository,
	n notifier.Notifier,
	indexer search.Indexer,
	config DeliveryServiceConfig,
	logger *slog.Logger,
) DeliveryService {
	if logger == nil {
		logger = slog.Default()
	}
	if indexer == nil {
		indexer = search.NewNoopIndexer()
	}
	return &deliveryService{
		notifications: notifications,
		conversations: conversations,
		notifier:      n,
		indexer:       indexer,
		callbacks:     config.OnDeliver,
		logger:        logger,
	}
}

// Deliver implements the delivery protocol. All receipts are persisted
// all-or-nothing; notification fan-out, the conversation touch, the
// registered callback and search indexing run only after the commit.
func (s *deliveryService) Deliver(ctx context.Context, n *models.Notification, opts DeliveryOptions) (*models.Receipt, error) {
	if opts.ShouldClean {
		n.Subject = validator.CleanText(n.Subject)
		n.Body = validator.CleanText(n.Body)
	}

	recipients := dedupeParticipants(n.Recipients)

	drafts := make([]*models.Receipt, 0, len(recipients)+1)
	for _, recipient := range recipients {
		draft := &models.Receipt{MailboxType: models.MailboxInbox, IsRead: false, Notification: *n}
		draft.SetReceiver(recipient)
		drafts = append(drafts, draft)
	}

	senderReceipt := &models.Receipt{MailboxType: models.MailboxSentbox, IsRead: true, Notification: *n}
	senderReceipt.SetReceiverRef(n.Sender())
	drafts = append(drafts, senderReceipt)

	verr := models.NewValidationError()
	for _, draft := range drafts {
		if dverr := draft.Validate(); dverr != nil {
			verr.Merge(dverr)
		}
	}
	if verr.HasErrors() {
		senderReceipt.Errors = verr
		return senderReceipt, verr
	}

	if err := s.notifications.CreateWithReceipts(ctx, n, drafts); err != nil {
		return nil, fmt.Errorf("failed to persist delivery: %w", err)
	}

	for _, recipient := range recipients {
		addr, ok := s.notifier.ShouldNotify(n, recipient)
		if !ok {
			continue
		}
		if err := s.notifier.Send(ctx, n, recipient, addr); err != nil {
			s.logger.Error("notification send failed",
				slog.String("receiver", models.RefOf(recipient).String()),
				slog.Uint64("notification_id", uint64(n.ID)),
				slog.Any("error", err),
			)
		}
	}

	if opts.IsReply && n.ConversationID != nil {
		if err := s.conversations.Touch(ctx, *n.ConversationID); err != nil {
			s.logger.Error("conversation touch failed",
				slog.Uint64("conversation_id", uint64(*n.ConversationID)),
				slog.Any("error", err),
			)
		}
	}

	// Drop the in-memory recipient set so the notification cannot be
	// accidentally re-delivered.
	n.Recipients = nil

	if callback, ok := s.callbacks[n.Kind]; ok && callback != nil {
		s.invokeCallback(callback, n)
	}

	s.indexDelivery(ctx, n, recipients)

	// The embedded copy predates the commit; refresh it so callers see the
	// persisted IDs.
	senderReceipt.Notification = *n

	return senderReceipt, nil
}

// DeliverReply delivers into an existing conversation
func (s *deliveryService) DeliverReply(ctx context.Context, conversationID uint, sender models.Participant, recipients []models.Participant, body string, shouldClean bool) (*models.Receipt, error) {
	conversation, err := s.conversations.GetByID(ctx, conversationID)
	if err != nil {
		return nil, fmt.Errorf("failed to load conversation: %w", err)
	}

	reply := models.NewMessage(sender, conversation, conversation.Subject, body, recipients...)
	return s.Deliver(ctx, reply, DeliveryOptions{IsReply: true, ShouldClean: shouldClean})
}

// invokeCallback shields the delivery from a failing hook
func (s *deliveryService) invokeCallback(callback DeliveryCallback, n *models.Notification) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("on-deliver callback panicked",
				slog.Uint64("notification_id", uint64(n.ID)),
				slog.Any("panic", r),
			)
		}
	}()
	callback(n)
}

// indexDelivery pushes the delivered content to the search boundary
func (s *deliveryService) indexDelivery(ctx context.Context, n *models.Notification, recipients []models.Participant) {
	refs := make([]string, 0, len(recipients))
	for _, recipient := range recipients {
		refs = append(refs, models.RefOf(recipient).String())
	}

	doc := search.Document{
		Recipients: refs,
		Sender:     n.Sender().String(),
		Subject:    n.Subject,
		Body:       n.Body,
		CreatedAt:  n.CreatedAt,
	}
	if err := s.indexer.Index(ctx, doc); err != nil {
		s.logger.Error("search indexing failed",
			slog.Uint64("notification_id", uint64(n.ID)),
			slog.Any("error", err),
		)
	}
}

// dedupeParticipants drops repeated recipients so one participant never
// gets two inbox receipts for the same notification.
func dedupeParticipants(participants []models.Participant) []models.Participant {
	seen := make(map[models.ParticipantRef]bool, len(participants))
	deduped := make([]models.Participant, 0, len(participants))
	for _, p := range participants {
		if p == nil {
			continue
		}
		ref := models.RefOf(p)
		if seen[ref] {
			continue
		}
		seen[ref] = true
		deduped = append(deduped, p)
	}
	return deduped
}
