package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/mailfold/mailfold-backend/internal/models"
	"gorm.io/gorm"
)

// ContactRepository defines the interface for contact data access
type ContactRepository interface {
	Create(ctx context.Context, contact *models.Contact) error
	GetByID(ctx context.Context, id uint) (*models.Contact, error)
	GetByEmail(ctx context.Context, email string) (*models.Contact, error)
}

// contactRepository implements ContactRepository using GORM
type contactRepository struct {
	db *gorm.DB
}

// NewContactRepository creates a new ContactRepository instance
func NewContactRepository(db *gorm.DB) ContactRepository {
	return &contactRepository{db: db}
}

// Create creates a new contact
func (r *contactRepository) Create(ctx context.Context, contact *models.Contact) error {
	result := r.db.WithContext(ctx).Create(contact)
	if result.Error != nil {
		if isDuplicateKeyError(result.Error) {
			return fmt.Errorf("contact with email '%s' already exists: %w", contact.Email, ErrDuplicateEntry)
		}
		return fmt.Errorf("failed to create contact: %w", result.Error)
	}
	return nil
}

// GetByID retrieves a contact by its ID
func (r *contactRepository) GetByID(ctx context.Context, id uint) (*models.Contact, error) {
	var contact models.Contact
	result := r.db.WithContext(ctx).First(&contact, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get contact by ID: %w", result.Error)
	}
	return &contact, nil
}

// GetByEmail retrieves a contact by its email address
func (r *contactRepository) GetByEmail(ctx context.Context, email string) (*models.Contact, error) {
	var contact models.Contact
	result := r.db.WithContext(ctx).Where("email = ?", email).First(&contact)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get contact by email: %w", result.Error)
	}
	return &contact, nil
}

// ContactResolver adapts a ContactRepository to the participant registry.
type ContactResolver struct {
	contacts ContactRepository
}

// NewContactResolver creates a resolver for the built-in contact type.
func NewContactResolver(contacts ContactRepository) *ContactResolver {
	return &ContactResolver{contacts: contacts}
}

// ResolveParticipant implements models.ParticipantResolver.
func (r *ContactResolver) ResolveParticipant(ctx context.Context, id uint) (models.Participant, error) {
	return r.contacts.GetByID(ctx, id)
}
