package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// AuctionStatus represents the lifecycle state of an auction room
type AuctionStatus string

const (
	StatusPending   AuctionStatus = "PENDING"
	StatusOngoing   AuctionStatus = "ONGOING"
	StatusPaused    AuctionStatus = "PAUSED"
	StatusAssigning AuctionStatus = "ASSIGNING"
	StatusCompleted AuctionStatus = "COMPLETED"
	StatusCancelled AuctionStatus = "CANCELLED"
)

// BiddingPhase is the sub-state of an ONGOING auction describing where the
// current player stands in the sell cycle
type BiddingPhase string

const (
	PhaseWaiting BiddingPhase = "WAITING"
	PhaseBidding BiddingPhase = "BIDDING"
	PhaseSold    BiddingPhase = "SOLD"
)

// Role of an actor inside a room. Admin is a connection-level role resolved by
// the identity collaborator, the rest are participant roles
type Role string

const (
	RoleAdmin     Role = "ADMIN"
	RoleCaptain   Role = "CAPTAIN"
	RolePlayer    Role = "PLAYER"
	RoleSpectator Role = "SPECTATOR"
)

// Participant is one member of the room: a captain with a point balance, a
// player waiting to be drawn, or a spectator
type Participant struct {
	ID                uuid.UUID  `json:"id"`
	Name              string     `json:"name"`
	Role              Role       `json:"role"`
	Points            int        `json:"points"`
	AssignedCaptainID *uuid.UUID `json:"assigned_captain_id,omitempty"`
	PricePaid         int        `json:"price_paid"`
	WasUnsold         bool       `json:"was_unsold"`
	BiddingOrder      int        `json:"bidding_order"`
}

// Bid is the current highest bid for the player on the block. Superseded bids
// are discarded, only the highest one lives in room state
type Bid struct {
	BidderID   uuid.UUID `json:"bidder_id"`
	BidderName string    `json:"bidder_name"`
	Amount     int       `json:"amount"`
	PlacedAt   time.Time `json:"placed_at"`
}

// ChatMessage is an append-only chat entry, it never touches the state machine
type ChatMessage struct {
	ID        uuid.UUID `json:"id"`
	AuctionID uuid.UUID `json:"auction_id"`
	SenderID  uuid.UUID `json:"sender_id"`
	UserName  string    `json:"user_name"`
	Message   string    `json:"message"`
	Kind      string    `json:"kind"` // chat | system | bid
	SentAt    time.Time `json:"sent_at"`
}

// RoomState is the canonical, serializable snapshot of one auction. It is
// owned and mutated exclusively by the room actor
type RoomState struct {
	AuctionID      uuid.UUID     `json:"auction_id"`
	Title          string        `json:"title"`
	CreatorID      uuid.UUID     `json:"creator_id"`
	Status         AuctionStatus `json:"status"`
	Phase          BiddingPhase  `json:"phase"`
	TeamCount      int           `json:"team_count"`
	StartingPoints int           `json:"starting_points"`
	// TurnTimeLimit is the bidding countdown per player
	TurnTimeLimit time.Duration `json:"turn_time_limit"`
	// BidExtension is the anti-snipe window: a bid landing with less than this
	// remaining pushes the deadline back out to the full window. Zero disables it
	BidExtension time.Duration `json:"bid_extension"`

	CurrentPlayerID *uuid.UUID `json:"current_player_id,omitempty"`
	CurrentBid      *Bid       `json:"current_bid,omitempty"`
	// BiddingEndsAt is the absolute deadline of the running countdown, nil when
	// not bidding or while the countdown is frozen
	BiddingEndsAt *time.Time `json:"bidding_ends_at,omitempty"`
	TimerPaused   bool       `json:"timer_paused"`
	// PausedRemaining holds the frozen countdown, nil unless paused
	PausedRemaining *time.Duration `json:"paused_remaining,omitempty"`

	Participants []*Participant `json:"participants"`
	// Queue holds players not yet drawn, front first
	Queue []uuid.UUID `json:"queue"`
	// UnsoldPool holds players who received no bid and await re-draw or manual
	// assignment
	UnsoldPool []uuid.UUID `json:"unsold_pool"`

	// Teams is the derived read view, rebuilt by the actor after every applied
	// command. Never independently mutated
	Teams []*Team `json:"teams"`
}

// MarshalJSON emits the duration fields in seconds, the unit every timer
// value on the wire uses. In-memory they stay time.Duration
func (s *RoomState) MarshalJSON() ([]byte, error) {
	type alias RoomState
	out := struct {
		*alias
		TurnTimeLimit   float64  `json:"turn_time_limit"`
		BidExtension    float64  `json:"bid_extension"`
		PausedRemaining *float64 `json:"paused_remaining,omitempty"`
	}{
		alias:         (*alias)(s),
		TurnTimeLimit: s.TurnTimeLimit.Seconds(),
		BidExtension:  s.BidExtension.Seconds(),
	}
	if s.PausedRemaining != nil {
		rem := s.PausedRemaining.Seconds()
		out.PausedRemaining = &rem
	}
	return json.Marshal(out)
}

// Team is the derived roster view for one captain
type Team struct {
	CaptainID       uuid.UUID     `json:"captain_id"`
	CaptainName     string        `json:"captain_name"`
	RemainingPoints int           `json:"remaining_points"`
	Members         []*TeamMember `json:"members"`
}

type TeamMember struct {
	PlayerID  uuid.UUID `json:"player_id"`
	Name      string    `json:"name"`
	Price     int       `json:"price"`
	WasUnsold bool      `json:"was_unsold"`
}

// NewRoomState builds the initial PENDING state from the setup configuration.
// The player queue is derived from PLAYER participants ordered by bidding order
func NewRoomState(auctionID uuid.UUID, title string, creatorID uuid.UUID, teamCount, startingPoints int, turnTimeLimit, bidExtension time.Duration, participants []*Participant) *RoomState {
	s := &RoomState{
		AuctionID:      auctionID,
		Title:          title,
		CreatorID:      creatorID,
		Status:         StatusPending,
		Phase:          PhaseWaiting,
		TeamCount:      teamCount,
		StartingPoints: startingPoints,
		TurnTimeLimit:  turnTimeLimit,
		BidExtension:   bidExtension,
		Participants:   participants,
	}
	for _, p := range sortedPlayers(participants) {
		s.Queue = append(s.Queue, p.ID)
	}
	s.RebuildTeams()
	return s
}

func sortedPlayers(participants []*Participant) []*Participant {
	var players []*Participant
	for _, p := range participants {
		if p.Role == RolePlayer {
			players = append(players, p)
		}
	}
	for i := 1; i < len(players); i++ {
		for j := i; j > 0 && players[j].BiddingOrder < players[j-1].BiddingOrder; j-- {
			players[j], players[j-1] = players[j-1], players[j]
		}
	}
	return players
}

// Participant returns the participant with the given id, or nil
func (s *RoomState) Participant(id uuid.UUID) *Participant {
	for _, p := range s.Participants {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// Captain returns the CAPTAIN participant with the given id, or nil
func (s *RoomState) Captain(id uuid.UUID) *Participant {
	p := s.Participant(id)
	if p == nil || p.Role != RoleCaptain {
		return nil
	}
	return p
}

// CurrentPlayer returns the player on the block, or nil outside a sell cycle
func (s *RoomState) CurrentPlayer() *Participant {
	if s.CurrentPlayerID == nil {
		return nil
	}
	return s.Participant(*s.CurrentPlayerID)
}

func (s *RoomState) inQueue(id uuid.UUID) bool {
	for _, q := range s.Queue {
		if q == id {
			return true
		}
	}
	return false
}

func (s *RoomState) removeFromQueue(id uuid.UUID) {
	for i, q := range s.Queue {
		if q == id {
			s.Queue = append(s.Queue[:i], s.Queue[i+1:]...)
			return
		}
	}
}

func (s *RoomState) removeFromUnsold(id uuid.UUID) {
	for i, q := range s.UnsoldPool {
		if q == id {
			s.UnsoldPool = append(s.UnsoldPool[:i], s.UnsoldPool[i+1:]...)
			return
		}
	}
}

// RebuildTeams recomputes the derived Team views from participant state.
// Captains are listed in bidding-order, members in acquisition-independent
// participant order so the view is deterministic
func (s *RoomState) RebuildTeams() {
	var teams []*Team
	for _, c := range s.Participants {
		if c.Role != RoleCaptain {
			continue
		}
		team := &Team{
			CaptainID:       c.ID,
			CaptainName:     c.Name,
			RemainingPoints: c.Points,
		}
		for _, p := range s.Participants {
			if p.AssignedCaptainID != nil && *p.AssignedCaptainID == c.ID {
				team.Members = append(team.Members, &TeamMember{
					PlayerID:  p.ID,
					Name:      p.Name,
					Price:     p.PricePaid,
					WasUnsold: p.WasUnsold,
				})
			}
		}
		teams = append(teams, team)
	}
	s.Teams = teams
}

// Clone returns a deep copy of the state. The actor applies commands against a
// clone so a rejected command can never leave a partially applied state behind
func (s *RoomState) Clone() *RoomState {
	c := *s
	if s.CurrentPlayerID != nil {
		id := *s.CurrentPlayerID
		c.CurrentPlayerID = &id
	}
	if s.CurrentBid != nil {
		b := *s.CurrentBid
		c.CurrentBid = &b
	}
	if s.BiddingEndsAt != nil {
		t := *s.BiddingEndsAt
		c.BiddingEndsAt = &t
	}
	if s.PausedRemaining != nil {
		d := *s.PausedRemaining
		c.PausedRemaining = &d
	}
	c.Participants = make([]*Participant, len(s.Participants))
	for i, p := range s.Participants {
		cp := *p
		if p.AssignedCaptainID != nil {
			id := *p.AssignedCaptainID
			cp.AssignedCaptainID = &id
		}
		c.Participants[i] = &cp
	}
	c.Queue = append([]uuid.UUID(nil), s.Queue...)
	c.UnsoldPool = append([]uuid.UUID(nil), s.UnsoldPool...)
	c.RebuildTeams()
	return &c
}
