package handlers

import (
	"errors"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/mailfold/mailfold-backend/internal/api/response"
	"github.com/mailfold/mailfold-backend/internal/models"
	"github.com/mailfold/mailfold-backend/internal/repository"
)

// ContactHandler handles contact-related HTTP requests
type ContactHandler struct {
	contactRepo repository.ContactRepository
}

// NewContactHandler creates a new ContactHandler
func NewContactHandler(contactRepo repository.ContactRepository) *ContactHandler {
	return &ContactHandler{contactRepo: contactRepo}
}

// CreateContactRequest is the payload for creating a contact
type CreateContactRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Create handles POST /api/contacts
func (h *ContactHandler) Create(c echo.Context) error {
	var req CreateContactRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		return response.BadRequest(c, "a valid email is required")
	}

	contact := &models.Contact{
		Name:  strings.TrimSpace(req.Name),
		Email: req.Email,
	}
	if err := h.contactRepo.Create(c.Request().Context(), contact); err != nil {
		if errors.Is(err, repository.ErrDuplicateEntry) {
			return response.Conflict(c, "contact already exists")
		}
		return response.InternalError(c, "failed to create contact")
	}

	return response.Created(c, contact)
}

// Get handles GET /api/contacts/:id
func (h *ContactHandler) Get(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "invalid contact ID")
	}

	contact, err := h.contactRepo.GetByID(c.Request().Context(), uint(id))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return response.NotFound(c, "contact not found")
		}
		return response.InternalError(c, "failed to get contact")
	}

	return response.Success(c, contact)
}
