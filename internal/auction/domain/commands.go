package domain

import (
	"time"

	"github.com/google/uuid"
)

// CommandType identifies one of the closed set of room commands
type CommandType string

const (
	CmdStartAuction         CommandType = "startAuction"
	CmdSelectPlayer         CommandType = "selectPlayer"
	CmdPlaceBid             CommandType = "placeBid"
	CmdConfirmBid           CommandType = "confirmBid"
	CmdPassPlayer           CommandType = "passPlayer"
	CmdNextPlayer           CommandType = "nextPlayer"
	CmdPauseAuction         CommandType = "pauseAuction"
	CmdResumeAuction        CommandType = "resumeAuction"
	CmdPauseTimer           CommandType = "pauseTimer"
	CmdResumeTimer          CommandType = "resumeTimer"
	CmdUndoSoldPlayer       CommandType = "undoSoldPlayer"
	CmdEnterAssignmentPhase CommandType = "enterAssignmentPhase"
	CmdManualAssignPlayer   CommandType = "manualAssignPlayer"
	CmdCompleteAuction      CommandType = "completeAuction"
	// CmdTimerExpired is synthetic, injected by the room when the countdown
	// fires. It never comes from a client
	CmdTimerExpired CommandType = "timerExpired"
)

// Command is one inbound mutation request, already carrying the resolved
// identity and role of the actor that sent it
type Command struct {
	Type      CommandType
	ActorID   uuid.UUID
	ActorName string
	ActorRole Role

	// PlayerID targets selectPlayer, placeBid, undoSoldPlayer and
	// manualAssignPlayer. Zero means "queue front" for selectPlayer
	PlayerID uuid.UUID
	// CaptainID targets manualAssignPlayer
	CaptainID uuid.UUID
	// Amount is the placeBid amount in points
	Amount int
	// Deadline carries the scheduled end time a timerExpired command was armed
	// for, so a stale expiry can be recognized and dropped
	Deadline time.Time
}

func (c Command) isAdmin() bool {
	return c.ActorRole == RoleAdmin
}
