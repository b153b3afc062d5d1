package application

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/clanarena/draftroom/internal/auction/domain"
)

// RoomConfig is the initial room configuration produced by the external setup
// step (out-of-scope CRUD), consumed as an opaque input when a room actor is
// first constructed
type RoomConfig struct {
	AuctionID      uuid.UUID
	Title          string
	CreatorID      uuid.UUID
	TeamCount      int
	StartingPoints int
	TurnTimeLimit  time.Duration
	BidExtension   time.Duration
	Participants   []*domain.Participant
}

// SetupService provides the initial participants and settings of an auction.
// Read-only, consulted once at room creation
type SetupService interface {
	GetRoomConfig(ctx context.Context, auctionID uuid.UUID) (*RoomConfig, error)
}

// RosterStore persists the finalized team rosters on auction completion
type RosterStore interface {
	SaveFinalRosters(ctx context.Context, auctionID uuid.UUID, teams []*domain.Team) error
}

// ScrimScheduler creates a scrim record from the finalized teams and returns
// its identifier
type ScrimScheduler interface {
	CreateScrim(ctx context.Context, auctionID uuid.UUID, scheduledAt time.Time, teams []*domain.Team) (uuid.UUID, error)
}

// ChatStore appends chat messages after they were broadcast. Failures never
// affect delivery
type ChatStore interface {
	SaveMessage(ctx context.Context, msg *domain.ChatMessage) error
}

// IdentityResolver resolves the identity and role of a connection joining a
// room. The real authorization service lives outside the engine
type IdentityResolver interface {
	Resolve(ctx context.Context, auctionID uuid.UUID, token string) (*Identity, error)
}

type Identity struct {
	UserID uuid.UUID
	Name   string
	Role   domain.Role
}
