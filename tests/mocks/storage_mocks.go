package mocks

import (
	"io"

	"github.com/stretchr/testify/mock"
)

// MockAttachmentStore implements storage.AttachmentStore
type MockAttachmentStore struct {
	mock.Mock
}

// Store writes a blob and returns its reference and size
func (m *MockAttachmentStore) Store(notificationID uint, filename string, content io.Reader) (string, int64, error) {
	args := m.Called(notificationID, filename, content)
	return args.String(0), args.Get(1).(int64), args.Error(2)
}

// Retrieve opens a blob by its reference
func (m *MockAttachmentStore) Retrieve(ref string) (io.ReadCloser, error) {
	args := m.Called(ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.ReadCloser), args.Error(1)
}

// Remove deletes a blob by its reference
func (m *MockAttachmentStore) Remove(ref string) error {
	args := m.Called(ref)
	return args.Error(0)
}
