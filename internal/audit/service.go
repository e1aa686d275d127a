package audit

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Repository is the persistence contract for audit events.
//
// It MUST be append-only.
// No Update/Delete methods are provided.
type Repository interface {
	Append(ctx context.Context, e Event) error
}

// Service logs internal audit information.
//
// Audit is internal-only; callers should treat logging as best-effort.
type Service struct {
	repo  Repository
	clock func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, clock: time.Now}
}

var ErrInvalidEvent = errors.New("audit: invalid event")

func (s *Service) Append(ctx context.Context, e Event) error {
	if s.repo == nil {
		return errors.New("audit: repository not configured")
	}
	if e.Type == "" {
		return ErrInvalidEvent
	}

	now := s.clock().UTC()
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now
	}
	return s.repo.Append(ctx, e)
}

// LogOutboundDial records an operator-initiated outbound call.
func (s *Service) LogOutboundDial(ctx context.Context, actorUserID, actorRole, ip, phone, callSID string) error {
	return s.Append(ctx, Event{
		Type:        EventTypeOutboundDial,
		ActorUserID: actorUserID,
		ActorRole:   actorRole,
		IPAddress:   ip,
		Phone:       phone,
		CallSID:     callSID,
		Message:     "outbound lead call placed",
	})
}
