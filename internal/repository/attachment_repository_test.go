package repository

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mailfold/mailfold-backend/internal/models"
)

// fakeBlobStore records removals so tests can see blob cleanup
type fakeBlobStore struct {
	removed []string
}

func (f *fakeBlobStore) Store(_ uint, _ string, _ io.Reader) (string, int64, error) {
	return "", 0, nil
}

func (f *fakeBlobStore) Retrieve(_ string) (io.ReadCloser, error) {
	return nil, nil
}

func (f *fakeBlobStore) Remove(ref string) error {
	f.removed = append(f.removed, ref)
	return nil
}

// AttachmentRepositoryTestSuite is the test suite for AttachmentRepository
type AttachmentRepositoryTestSuite struct {
	suite.Suite
	db           *gorm.DB
	repo         AttachmentRepository
	blobs        *fakeBlobStore
	notification *models.Notification
}

// SetupSuite runs once before all tests
func (s *AttachmentRepositoryTestSuite) SetupSuite() {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(s.T(), err)

	err = db.AutoMigrate(&models.Conversation{}, &models.Notification{}, &models.Attachment{})
	require.NoError(s.T(), err)

	s.db = db
}

// TearDownSuite runs once after all tests
func (s *AttachmentRepositoryTestSuite) TearDownSuite() {
	sqlDB, _ := s.db.DB()
	if sqlDB != nil {
		sqlDB.Close()
	}
}

// SetupTest runs before each test - clean up data and create fixtures
func (s *AttachmentRepositoryTestSuite) SetupTest() {
	s.db.Exec("DELETE FROM attachments")
	s.db.Exec("DELETE FROM notifications")

	s.blobs = &fakeBlobStore{}
	s.repo = NewAttachmentRepository(s.db, s.blobs)

	s.notification = &models.Notification{
		Kind:       models.KindMessage,
		SenderType: models.ParticipantTypeContact,
		SenderID:   1,
		Subject:    "Plans",
		Body:       "see attached",
	}
	require.NoError(s.T(), s.db.Create(s.notification).Error)
}

// TestAttachmentRepositoryTestSuite runs the test suite
func TestAttachmentRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(AttachmentRepositoryTestSuite))
}

// createAttachment inserts an attachment for the suite notification
func (s *AttachmentRepositoryTestSuite) createAttachment(filename, ref string) *models.Attachment {
	attachment := &models.Attachment{
		NotificationID: s.notification.ID,
		Filename:       filename,
		ContentType:    "application/pdf",
		FilePath:       ref,
		SizeBytes:      1024,
	}
	require.NoError(s.T(), s.repo.Create(context.Background(), attachment))
	return attachment
}

// ==================== Create Tests ====================

func (s *AttachmentRepositoryTestSuite) TestCreate_ValidAttachment() {
	attachment := s.createAttachment("report.pdf", "1/report.pdf")

	assert.NotZero(s.T(), attachment.ID)
}

// ==================== GetByID Tests ====================

func (s *AttachmentRepositoryTestSuite) TestGetByID_ExistingAttachment() {
	created := s.createAttachment("report.pdf", "1/report.pdf")

	found, err := s.repo.GetByID(context.Background(), created.ID)

	require.NoError(s.T(), err)
	assert.Equal(s.T(), "report.pdf", found.Filename)
	assert.Equal(s.T(), int64(1024), found.SizeBytes)
}

func (s *AttachmentRepositoryTestSuite) TestGetByID_NotFound() {
	found, err := s.repo.GetByID(context.Background(), 9999)

	assert.Nil(s.T(), found)
	assert.ErrorIs(s.T(), err, ErrNotFound)
}

// ==================== ListByNotification Tests ====================

func (s *AttachmentRepositoryTestSuite) TestListByNotification_ReturnsAll() {
	s.createAttachment("report.pdf", "1/report.pdf")
	s.createAttachment("photo.jpg", "1/photo.jpg")

	attachments, err := s.repo.ListByNotification(context.Background(), s.notification.ID)

	require.NoError(s.T(), err)
	assert.Len(s.T(), attachments, 2)
}

func (s *AttachmentRepositoryTestSuite) TestListByNotification_Empty() {
	attachments, err := s.repo.ListByNotification(context.Background(), 9999)

	assert.NoError(s.T(), err)
	assert.Empty(s.T(), attachments)
}

// ==================== Delete Tests ====================

func (s *AttachmentRepositoryTestSuite) TestDelete_RemovesRowAndBlob() {
	created := s.createAttachment("report.pdf", "1/report.pdf")

	err := s.repo.Delete(context.Background(), created.ID)
	require.NoError(s.T(), err)

	_, err = s.repo.GetByID(context.Background(), created.ID)
	assert.ErrorIs(s.T(), err, ErrNotFound)
	assert.Equal(s.T(), []string{"1/report.pdf"}, s.blobs.removed)
}

func (s *AttachmentRepositoryTestSuite) TestDelete_NotFound() {
	err := s.repo.Delete(context.Background(), 9999)

	assert.ErrorIs(s.T(), err, ErrNotFound)
	assert.Empty(s.T(), s.blobs.removed)
}
