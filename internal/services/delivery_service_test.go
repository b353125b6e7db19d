package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mailfold/mailfold-backend/internal/models"
	"github.com/mailfold/mailfold-backend/internal/repository"
	"github.com/mailfold/mailfold-backend/internal/search"
)

// fakeNotifier records fan-out calls and can be told to fail sends
type fakeNotifier struct {
	addresses map[models.ParticipantRef]string
	sendErr   error
	sentTo    []string
}

func (f *fakeNotifier) ShouldNotify(_ *models.Notification, recipient models.Participant) (string, bool) {
	addr, ok := f.addresses[models.RefOf(recipient)]
	return addr, ok && addr != ""
}

func (f *fakeNotifier) Send(_ context.Context, _ *models.Notification, _ models.Participant, addr string) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sentTo = append(f.sentTo, addr)
	return nil
}

// DeliveryServiceTestSuite is the test suite for DeliveryService
type DeliveryServiceTestSuite struct {
	suite.Suite
	db            *gorm.DB
	notifications repository.NotificationRepository
	conversations repository.ConversationRepository
	receipts      repository.ReceiptRepository
	fake          *fakeNotifier
	indexer       *search.MemoryIndexer
	delivered     []*models.Notification
	service       DeliveryService
	sender        *models.Contact
	alice         *models.Contact
	bob           *models.Contact
}

// SetupSuite runs once before all tests
func (s *DeliveryServiceTestSuite) SetupSuite() {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(s.T(), err)

	err = db.AutoMigrate(&models.Conversation{}, &models.Notification{}, &models.Receipt{}, &models.Attachment{}, &models.Contact{})
	require.NoError(s.T(), err)

	s.db = db
	s.notifications = repository.NewNotificationRepository(db)
	s.conversations = repository.NewConversationRepository(db)
	s.receipts = repository.NewReceiptRepository(db)
}

// TearDownSuite runs once after all tests
func (s *DeliveryServiceTestSuite) TearDownSuite() {
	sqlDB, _ := s.db.DB()
	if sqlDB != nil {
		sqlDB.Close()
	}
}

// SetupTest runs before each test - clean up data, rebuild service wiring
func (s *DeliveryServiceTestSuite) SetupTest() {
	s.db.Exec("DELETE FROM receipts")
	s.db.Exec("DELETE FROM attachments")
	s.db.Exec("DELETE FROM notifications")
	s.db.Exec("DELETE FROM conversations")
	s.db.Exec("DELETE FROM contacts")

	s.sender = &models.Contact{Name: "Sam", Email: "sam@example.com"}
	s.alice = &models.Contact{Name: "Alice", Email: "alice@example.com"}
	s.bob = &models.Contact{Name: "Bob", Email: "bob@example.com"}
	require.NoError(s.T(), s.db.Create(s.sender).Error)
	require.NoError(s.T(), s.db.Create(s.alice).Error)
	require.NoError(s.T(), s.db.Create(s.bob).Error)

	s.fake = &fakeNotifier{addresses: map[models.ParticipantRef]string{}}
	s.indexer = search.NewMemoryIndexer()
	s.delivered = nil

	s.service = NewDeliveryService(
		s.notifications,
		s.conversations,
		s.fake,
		s.indexer,
		DeliveryServiceConfig{
			OnDeliver: map[models.NotificationKind]DeliveryCallback{
				models.KindMessage: func(n *models.Notification) {
					s.delivered = append(s.delivered, n)
				},
			},
		},
		nil,
	)
}

// TestDeliveryServiceTestSuite runs the test suite
func TestDeliveryServiceTestSuite(t *testing.T) {
	suite.Run(t, new(DeliveryServiceTestSuite))
}

// allReceipts fetches every persisted receipt
func (s *DeliveryServiceTestSuite) allReceipts() []models.Receipt {
	var receipts []models.Receipt
	require.NoError(s.T(), s.db.Order("id").Find(&receipts).Error)
	return receipts
}

// ==================== Deliver Tests ====================

func (s *DeliveryServiceTestSuite) TestDeliver_CreatesOneReceiptPerRecipientPlusSender() {
	conversation := &models.Conversation{Subject: "Plans"}
	n := models.NewMessage(s.sender, conversation, "Plans", "Tomorrow?", s.alice, s.bob)

	senderReceipt, err := s.service.Deliver(context.Background(), n, DeliveryOptions{})

	require.NoError(s.T(), err)
	require.NotNil(s.T(), senderReceipt)
	assert.NotZero(s.T(), senderReceipt.ID)
	assert.Equal(s.T(), models.MailboxSentbox, senderReceipt.MailboxType)
	assert.True(s.T(), senderReceipt.IsRead, "sender starts read in the sentbox")
	assert.Equal(s.T(), models.RefOf(s.sender), senderReceipt.Receiver())

	receipts := s.allReceipts()
	require.Len(s.T(), receipts, 3)

	var inbox int
	for _, receipt := range receipts {
		if receipt.MailboxType == models.MailboxInbox {
			inbox++
			assert.False(s.T(), receipt.IsRead, "recipients start unread")
			assert.False(s.T(), receipt.Trashed)
		}
		assert.Equal(s.T(), n.ID, receipt.NotificationID)
	}
	assert.Equal(s.T(), 2, inbox)
}

func (s *DeliveryServiceTestSuite) TestDeliver_PersistsNewConversationWithNotification() {
	conversation := &models.Conversation{Subject: "Plans"}
	n := models.NewMessage(s.sender, conversation, "Plans", "Tomorrow?", s.alice)

	_, err := s.service.Deliver(context.Background(), n, DeliveryOptions{})

	require.NoError(s.T(), err)
	assert.NotZero(s.T(), conversation.ID)
	require.NotNil(s.T(), n.ConversationID)
	assert.Equal(s.T(), conversation.ID, *n.ConversationID)
}

func (s *DeliveryServiceTestSuite) TestDeliver_DeduplicatesRecipients() {
	n := models.NewNotice(s.sender, "Heads up", "One copy only", s.alice, s.alice)

	_, err := s.service.Deliver(context.Background(), n, DeliveryOptions{})

	require.NoError(s.T(), err)
	assert.Len(s.T(), s.allReceipts(), 2) // one inbox + sender
}

func (s *DeliveryServiceTestSuite) TestDeliver_ZeroRecipientsStillGetsSenderReceipt() {
	n := models.NewNotice(s.sender, "Note to self", "remember")

	senderReceipt, err := s.service.Deliver(context.Background(), n, DeliveryOptions{})

	require.NoError(s.T(), err)
	receipts := s.allReceipts()
	require.Len(s.T(), receipts, 1)
	assert.Equal(s.T(), senderReceipt.ID, receipts[0].ID)
	assert.Equal(s.T(), models.MailboxSentbox, receipts[0].MailboxType)
}

func (s *DeliveryServiceTestSuite) TestDeliver_ValidationFailurePersistsNothing() {
	// Blank subject on a message variant fails validation.
	conversation := &models.Conversation{Subject: "Plans"}
	n := models.NewMessage(s.sender, conversation, "", "Tomorrow?", s.alice)

	senderReceipt, err := s.service.Deliver(context.Background(), n, DeliveryOptions{})

	require.Error(s.T(), err)
	var verr *models.ValidationError
	require.ErrorAs(s.T(), err, &verr)
	assert.Contains(s.T(), verr.Fields, "notification.subject")

	require.NotNil(s.T(), senderReceipt)
	assert.Zero(s.T(), senderReceipt.ID, "draft must stay unsaved")
	assert.Same(s.T(), verr, senderReceipt.Errors)

	assert.Empty(s.T(), s.allReceipts())
	var notifications int64
	s.db.Model(&models.Notification{}).Count(&notifications)
	assert.Zero(s.T(), notifications)
	assert.Zero(s.T(), s.indexer.Len())
	assert.Empty(s.T(), s.delivered)
}

func (s *DeliveryServiceTestSuite) TestDeliver_BlankSubjectReportedOncePerGraph() {
	// Subject is blank on both the notification and its conversation; the
	// conversation-side complaint is dropped as redundant.
	conversation := &models.Conversation{Subject: ""}
	n := models.NewMessage(s.sender, conversation, "", "body", s.alice)

	_, err := s.service.Deliver(context.Background(), n, DeliveryOptions{})

	var verr *models.ValidationError
	require.ErrorAs(s.T(), err, &verr)
	assert.Contains(s.T(), verr.Fields, "notification.subject")
	assert.NotContains(s.T(), verr.Fields, "notification.conversation.subject")
}

func (s *DeliveryServiceTestSuite) TestDeliver_CleansSubjectAndBody() {
	n := models.NewNotice(s.sender, "<b>Bold</b> subject", "<script>x()</script>Hello <i>there</i>", s.alice)

	_, err := s.service.Deliver(context.Background(), n, DeliveryOptions{ShouldClean: true})

	require.NoError(s.T(), err)
	assert.Equal(s.T(), "Bold subject", n.Subject)
	assert.Equal(s.T(), "Hello there", n.Body)
}

func (s *DeliveryServiceTestSuite) TestDeliver_ClearsRecipientsAfterCommit() {
	n := models.NewNotice(s.sender, "Heads up", "body", s.alice)

	_, err := s.service.Deliver(context.Background(), n, DeliveryOptions{})

	require.NoError(s.T(), err)
	assert.Nil(s.T(), n.Recipients)
}

// ==================== Conversation freshness Tests ====================

func (s *DeliveryServiceTestSuite) TestDeliver_FirstMessageDoesNotTouchConversation() {
	past := time.Now().Add(-24 * time.Hour)
	conversation := &models.Conversation{Subject: "Plans", CreatedAt: past, LastActivityAt: past}
	require.NoError(s.T(), s.db.Create(conversation).Error)

	n := models.NewMessage(s.sender, conversation, "Plans", "first", s.alice)
	_, err := s.service.Deliver(context.Background(), n, DeliveryOptions{})

	require.NoError(s.T(), err)
	var reloaded models.Conversation
	require.NoError(s.T(), s.db.First(&reloaded, conversation.ID).Error)
	assert.WithinDuration(s.T(), past, reloaded.LastActivityAt, time.Second)
}

func (s *DeliveryServiceTestSuite) TestDeliver_ReplyTouchesConversation() {
	past := time.Now().Add(-24 * time.Hour)
	conversation := &models.Conversation{Subject: "Plans", CreatedAt: past, LastActivityAt: past}
	require.NoError(s.T(), s.db.Create(conversation).Error)

	n := models.NewMessage(s.sender, conversation, "Plans", "reply", s.alice)
	_, err := s.service.Deliver(context.Background(), n, DeliveryOptions{IsReply: true})

	require.NoError(s.T(), err)
	var reloaded models.Conversation
	require.NoError(s.T(), s.db.First(&reloaded, conversation.ID).Error)
	assert.True(s.T(), reloaded.LastActivityAt.After(past))
}

func (s *DeliveryServiceTestSuite) TestDeliverReply_UsesConversationSubject() {
	past := time.Now().Add(-24 * time.Hour)
	conversation := &models.Conversation{Subject: "Plans", CreatedAt: past, LastActivityAt: past}
	require.NoError(s.T(), s.db.Create(conversation).Error)

	senderReceipt, err := s.service.DeliverReply(context.Background(), conversation.ID, s.alice, []models.Participant{s.sender}, "count me in", false)

	require.NoError(s.T(), err)
	assert.Equal(s.T(), "Plans", senderReceipt.Notification.Subject)

	var reloaded models.Conversation
	require.NoError(s.T(), s.db.First(&reloaded, conversation.ID).Error)
	assert.True(s.T(), reloaded.LastActivityAt.After(past))
}

func (s *DeliveryServiceTestSuite) TestDeliverReply_ConversationNotFound() {
	_, err := s.service.DeliverReply(context.Background(), 99999, s.alice, []models.Participant{s.sender}, "hi", false)
	assert.ErrorIs(s.T(), err, repository.ErrNotFound)
}

// ==================== Fan-out Tests ====================

func (s *DeliveryServiceTestSuite) TestDeliver_NotifiesReachableRecipientsOnly() {
	s.fake.addresses[models.RefOf(s.alice)] = "alice@example.com"
	// bob has no address registered and is skipped.

	n := models.NewNotice(s.sender, "Heads up", "body", s.alice, s.bob)
	_, err := s.service.Deliver(context.Background(), n, DeliveryOptions{})

	require.NoError(s.T(), err)
	assert.Equal(s.T(), []string{"alice@example.com"}, s.fake.sentTo)
}

func (s *DeliveryServiceTestSuite) TestDeliver_SendFailureDoesNotAbortDelivery() {
	s.fake.addresses[models.RefOf(s.alice)] = "alice@example.com"
	s.fake.sendErr = errors.New("relay down")

	n := models.NewNotice(s.sender, "Heads up", "body", s.alice)
	senderReceipt, err := s.service.Deliver(context.Background(), n, DeliveryOptions{})

	require.NoError(s.T(), err)
	assert.NotZero(s.T(), senderReceipt.ID)
	assert.Len(s.T(), s.allReceipts(), 2)
}

// ==================== Callback and indexing Tests ====================

func (s *DeliveryServiceTestSuite) TestDeliver_InvokesKindCallback() {
	conversation := &models.Conversation{Subject: "Plans"}
	n := models.NewMessage(s.sender, conversation, "Plans", "body", s.alice)

	_, err := s.service.Deliver(context.Background(), n, DeliveryOptions{})

	require.NoError(s.T(), err)
	require.Len(s.T(), s.delivered, 1)
	assert.Equal(s.T(), n.ID, s.delivered[0].ID)
}

func (s *DeliveryServiceTestSuite) TestDeliver_NoCallbackForOtherKinds() {
	n := models.NewNotice(s.sender, "Heads up", "body", s.alice)

	_, err := s.service.Deliver(context.Background(), n, DeliveryOptions{})

	require.NoError(s.T(), err)
	assert.Empty(s.T(), s.delivered)
}

func (s *DeliveryServiceTestSuite) TestDeliver_CallbackPanicDoesNotFailDelivery() {
	service := NewDeliveryService(
		s.notifications,
		s.conversations,
		s.fake,
		s.indexer,
		DeliveryServiceConfig{
			OnDeliver: map[models.NotificationKind]DeliveryCallback{
				models.KindNotice: func(*models.Notification) { panic("hook exploded") },
			},
		},
		nil,
	)

	n := models.NewNotice(s.sender, "Heads up", "body", s.alice)
	senderReceipt, err := service.Deliver(context.Background(), n, DeliveryOptions{})

	require.NoError(s.T(), err)
	assert.NotZero(s.T(), senderReceipt.ID)
}

func (s *DeliveryServiceTestSuite) TestDeliver_IndexesDeliveredContent() {
	n := models.NewNotice(s.sender, "Release notes", "shipped", s.alice, s.bob)

	_, err := s.service.Deliver(context.Background(), n, DeliveryOptions{})

	require.NoError(s.T(), err)
	hits := s.indexer.Search("release")
	require.Len(s.T(), hits, 1)
	assert.Equal(s.T(), models.RefOf(s.sender).String(), hits[0].Sender)
	assert.ElementsMatch(s.T(), []string{models.RefOf(s.alice).String(), models.RefOf(s.bob).String()}, hits[0].Recipients)
}
