package domain

import "github.com/google/uuid"

// EventType identifies one outbound room event. The set is closed so the state
// machine's output is exhaustively enumerable
type EventType string

const (
	EventRoomState              EventType = "roomState"
	EventAuctionStarted         EventType = "auctionStarted"
	EventPlayerSelected         EventType = "playerSelected"
	EventBidPlaced              EventType = "bidPlaced"
	EventBidConfirmed           EventType = "bidConfirmed"
	EventPlayerPassed           EventType = "playerPassed"
	EventReadyForNextPlayer     EventType = "readyForNextPlayer"
	EventAuctionPaused          EventType = "auctionPaused"
	EventAuctionResumed         EventType = "auctionResumed"
	EventTimerPaused            EventType = "timerPaused"
	EventTimerResumed           EventType = "timerResumed"
	EventTimerUpdate            EventType = "timerUpdate"
	EventPlayerUndone           EventType = "playerUndone"
	EventAssignmentPhaseStarted EventType = "assignmentPhaseStarted"
	EventPlayerManuallyAssigned EventType = "playerManuallyAssigned"
	EventAuctionCompleted       EventType = "auctionCompleted"
	EventScrimCreated           EventType = "scrimCreated"
	EventChatMessage            EventType = "chatMessage"
	EventError                  EventType = "error"
	EventBidError               EventType = "bidError"
	EventInfraWarning           EventType = "infraWarning"
)

// Event is the broadcast-side output of an applied command. Auto marks
// transitions driven by timer expiry instead of an explicit admin command
type Event struct {
	Type       EventType `json:"type"`
	PlayerID   uuid.UUID `json:"player_id,omitempty"`
	CaptainID  uuid.UUID `json:"captain_id,omitempty"`
	BidderID   uuid.UUID `json:"bidder_id,omitempty"`
	BidderName string    `json:"bidder_name,omitempty"`
	Amount     int       `json:"amount,omitempty"`
	Auto       bool      `json:"auto"`
}
