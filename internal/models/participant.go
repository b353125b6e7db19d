package models

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrUnknownParticipantType is returned when resolving a reference whose
// type has not been registered.
var ErrUnknownParticipantType = errors.New("unknown participant type")

// Participant is anything that can send or receive notifications. Concrete
// participant types live outside this package and register themselves with a
// ParticipantRegistry.
type Participant interface {
	ParticipantID() uint
	ParticipantType() string

	// NotificationAddress returns the out-of-band address (e.g. an email
	// address) to use for the given notification, or "" when the participant
	// cannot be reached out-of-band.
	NotificationAddress(n *Notification) string
}

// ParticipantRef is a tagged reference to a participant of any registered
// type. It is what gets persisted on notifications and receipts.
type ParticipantRef struct {
	Type string `json:"type"`
	ID   uint   `json:"id"`
}

// RefOf builds the stored reference for a participant.
func RefOf(p Participant) ParticipantRef {
	return ParticipantRef{Type: p.ParticipantType(), ID: p.ParticipantID()}
}

// IsZero reports whether the reference points at nothing.
func (r ParticipantRef) IsZero() bool {
	return r.Type == "" || r.ID == 0
}

// String renders the reference in "type:id" form, the shape used by search
// documents.
func (r ParticipantRef) String() string {
	return fmt.Sprintf("%s:%d", r.Type, r.ID)
}

// ParticipantResolver loads a concrete participant of one type by id.
type ParticipantResolver interface {
	ResolveParticipant(ctx context.Context, id uint) (Participant, error)
}

// ParticipantRegistry maps participant type tags to their resolvers. Types
// are registered once at startup.
type ParticipantRegistry struct {
	mu        sync.RWMutex
	resolvers map[string]ParticipantResolver
}

// NewParticipantRegistry creates an empty registry.
func NewParticipantRegistry() *ParticipantRegistry {
	return &ParticipantRegistry{resolvers: make(map[string]ParticipantResolver)}
}

// Register adds a resolver for a participant type, replacing any previous one.
func (g *ParticipantRegistry) Register(participantType string, resolver ParticipantResolver) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.resolvers[participantType] = resolver
}

// Resolve loads the participant behind a reference.
func (g *ParticipantRegistry) Resolve(ctx context.Context, ref ParticipantRef) (Participant, error) {
	g.mu.RLock()
	resolver, ok := g.resolvers[ref.Type]
	g.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownParticipantType, ref.Type)
	}
	return resolver.ResolveParticipant(ctx, ref.ID)
}
