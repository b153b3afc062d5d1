package websocket

import (
	"time"

	"github.com/google/uuid"

	"github.com/clanarena/draftroom/internal/auction/domain"
)

// MessageType tags every frame on the room channel
type MessageType string

// Inbound client commands. joinRoom happens implicitly at the handshake, the
// message form exists for clients that want a fresh catch-up
const (
	MessageTypeJoinRoom             MessageType = "joinRoom"
	MessageTypeLeaveRoom            MessageType = "leaveRoom"
	MessageTypeRequestRoomState     MessageType = "requestRoomState"
	MessageTypeStartAuction         MessageType = "startAuction"
	MessageTypeSelectPlayer         MessageType = "selectPlayer"
	MessageTypePlaceBid             MessageType = "placeBid"
	MessageTypeConfirmBid           MessageType = "confirmBid"
	MessageTypePassPlayer           MessageType = "passPlayer"
	MessageTypeNextPlayer           MessageType = "nextPlayer"
	MessageTypePauseAuction         MessageType = "pauseAuction"
	MessageTypeResumeAuction        MessageType = "resumeAuction"
	MessageTypePauseTimer           MessageType = "pauseTimer"
	MessageTypeResumeTimer          MessageType = "resumeTimer"
	MessageTypeUndoSoldPlayer       MessageType = "undoSoldPlayer"
	MessageTypeEnterAssignmentPhase MessageType = "enterAssignmentPhase"
	MessageTypeManualAssignPlayer   MessageType = "manualAssignPlayer"
	MessageTypeCompleteAuction      MessageType = "completeAuction"
	MessageTypeCreateScrim          MessageType = "createScrim"
	MessageTypeChatMessage          MessageType = "chatMessage"
)

// BaseMessage is the envelope shared by every frame
type BaseMessage struct {
	Type MessageType `json:"type"`
}

// ClientCommandMessage is the single inbound DTO. Only the payload fields
// relevant to the command type are set
type ClientCommandMessage struct {
	BaseMessage
	AuctionID uuid.UUID `json:"auction_id"`
	Payload   struct {
		TargetPlayerID uuid.UUID `json:"target_player_id,omitempty"`
		PlayerID       uuid.UUID `json:"player_id,omitempty"`
		CaptainID      uuid.UUID `json:"captain_id,omitempty"`
		Amount         int       `json:"amount,omitempty"`
		ScheduledDate  time.Time `json:"scheduled_date,omitempty"`
		Message        string    `json:"message,omitempty"`
		UserName       string    `json:"user_name,omitempty"`
	} `json:"payload"`
}

// ServerEventMessage carries a named room event plus the full updated state
type ServerEventMessage struct {
	BaseMessage
	Payload EventPayload `json:"payload"`
}

type EventPayload struct {
	domain.Event
	Room *domain.RoomState `json:"room,omitempty"`
}

// ServerRoomStateMessage is the full snapshot, sent on join and on request
type ServerRoomStateMessage struct {
	BaseMessage
	Payload struct {
		Room *domain.RoomState `json:"room"`
	} `json:"payload"`
}

// ServerTimerUpdateMessage is the lightweight 1s countdown ping, no full state
type ServerTimerUpdateMessage struct {
	BaseMessage
	Payload struct {
		RemainingTime float64 `json:"remaining_time"` // seconds
	} `json:"payload"`
}

// ServerChatMessage relays one chat entry to the room
type ServerChatMessage struct {
	BaseMessage
	Payload *domain.ChatMessage `json:"payload"`
}

// ServerScrimCreatedMessage announces the scheduling collaborator's identifier
type ServerScrimCreatedMessage struct {
	BaseMessage
	Payload struct {
		ScrimID uuid.UUID         `json:"scrim_id"`
		Room    *domain.RoomState `json:"room,omitempty"`
	} `json:"payload"`
}

// ServerErrorMessage goes to the originating connection only
type ServerErrorMessage struct {
	BaseMessage
	Payload struct {
		Message string `json:"message"`
	} `json:"payload"`
}
