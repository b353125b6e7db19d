package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// Storage errors
var (
	ErrPathTraversal = errors.New("path traversal detected")
	ErrBlobNotFound  = errors.New("blob not found")
	ErrBlobTooLarge  = errors.New("blob exceeds size limit")
)

// MaxBlobSize is the maximum allowed attachment size (25 MB)
const MaxBlobSize = 25 * 1024 * 1024

// AttachmentStore is the blob boundary for notification attachments. Blobs
// are keyed by the owning notification id; Store returns the reference to
// persist on the attachment record.
type AttachmentStore interface {
	Store(notificationID uint, filename string, content io.Reader) (string, int64, error)
	Retrieve(ref string) (io.ReadCloser, error)
	Remove(ref string) error
}

// localAttachmentStore implements AttachmentStore on the local filesystem
type localAttachmentStore struct {
	basePath string
}

// NewLocalAttachmentStore creates a filesystem-backed store rooted at basePath
func NewLocalAttachmentStore(basePath string) (AttachmentStore, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &localAttachmentStore{basePath: basePath}, nil
}

// validateRef ensures a reference stays within basePath
func (s *localAttachmentStore) validateRef(ref string) (string, error) {
	cleanPath := filepath.Clean(ref)
	if filepath.IsAbs(cleanPath) || strings.Contains(cleanPath, "..") {
		return "", ErrPathTraversal
	}

	fullPath := filepath.Join(s.basePath, cleanPath)

	absPath, err := filepath.Abs(fullPath)
	if err != nil {
		return "", fmt.Errorf("invalid blob reference: %w", err)
	}
	absBase, err := filepath.Abs(s.basePath)
	if err != nil {
		return "", fmt.Errorf("invalid base path: %w", err)
	}
	if !strings.HasPrefix(absPath, absBase+string(filepath.Separator)) && absPath != absBase {
		return "", ErrPathTraversal
	}

	return absPath, nil
}

// Store writes the blob under a per-notification directory with a unique
// name and returns the relative reference plus the byte count written.
func (s *localAttachmentStore) Store(notificationID uint, filename string, content io.Reader) (string, int64, error) {
	ext := filepath.Ext(filename)
	subDir := strconv.FormatUint(uint64(notificationID), 10)
	if err := os.MkdirAll(filepath.Join(s.basePath, subDir), 0755); err != nil {
		return "", 0, fmt.Errorf("failed to create notification directory: %w", err)
	}

	ref := filepath.Join(subDir, uuid.New().String()+ext)
	fullPath := filepath.Join(s.basePath, ref)

	file, err := os.Create(fullPath)
	if err != nil {
		return "", 0, fmt.Errorf("failed to create blob file: %w", err)
	}
	defer file.Close()

	written, err := io.Copy(file, io.LimitReader(content, MaxBlobSize+1))
	if err != nil {
		os.Remove(fullPath)
		return "", 0, fmt.Errorf("failed to write blob: %w", err)
	}
	if written > MaxBlobSize {
		os.Remove(fullPath)
		return "", 0, ErrBlobTooLarge
	}

	return ref, written, nil
}

// Retrieve opens a blob by its reference
func (s *localAttachmentStore) Retrieve(ref string) (io.ReadCloser, error) {
	fullPath, err := s.validateRef(ref)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrBlobNotFound
		}
		return nil, fmt.Errorf("failed to open blob: %w", err)
	}
	return file, nil
}

// Remove deletes a blob by its reference; a missing blob is not an error
func (s *localAttachmentStore) Remove(ref string) error {
	fullPath, err := s.validateRef(ref)
	if err != nil {
		return err
	}

	if err := os.Remove(fullPath); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to remove blob: %w", err)
	}
	return nil
}
