package websocket

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/clanarena/draftroom/internal/auction/application"
	"github.com/clanarena/draftroom/internal/auction/domain"
	"github.com/clanarena/draftroom/internal/auction/room"
	"github.com/clanarena/draftroom/internal/shared/logger"
	sharedws "github.com/clanarena/draftroom/internal/shared/websocket"
)

var log = logger.GetLogger()

// AuctionWSHandler consumes inbound frames from the hub and routes them to
// the owning room actor (or the chat relay, which has no state to guard)
type AuctionWSHandler struct {
	hub      *sharedws.Hub
	registry *room.Registry
	relay    *room.ChatRelay
	emitter  *HubEmitter
}

func NewAuctionWSHandler(hub *sharedws.Hub, registry *room.Registry, relay *room.ChatRelay, emitter *HubEmitter) *AuctionWSHandler {
	return &AuctionWSHandler{
		hub:      hub,
		registry: registry,
		relay:    relay,
		emitter:  emitter,
	}
}

// ListenForMessages consumes the hub's inbound channel until ctx is cancelled.
// Frames are dispatched synchronously: that preserves the per-connection
// ordering the room queue depends on
func (h *AuctionWSHandler) ListenForMessages(ctx context.Context) {
	log.Info("auction ws handler started listening for inbound messages")
	for {
		select {
		case <-ctx.Done():
			log.Info("auction ws handler stopped")
			return
		case msg := <-h.hub.InboundMessages:
			h.processMessage(msg.Client, msg.Data)
		}
	}
}

func (h *AuctionWSHandler) processMessage(client *sharedws.Client, data []byte) {
	var msg ClientCommandMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		h.sendError(client, domain.EventError, "invalid message format")
		return
	}

	auctionID, err := uuid.Parse(client.RoomID)
	if err != nil {
		h.sendError(client, domain.EventError, "invalid room")
		return
	}
	if msg.AuctionID != uuid.Nil && msg.AuctionID != auctionID {
		h.sendError(client, domain.EventError, "auction ID mismatch")
		return
	}

	identity, err := clientIdentity(client)
	if err != nil {
		h.sendError(client, domain.EventError, "invalid identity")
		return
	}

	r, ok := h.registry.Get(auctionID)
	if !ok {
		h.sendError(client, domain.EventError, domain.ErrNotFound.Error())
		return
	}

	switch msg.Type {
	case MessageTypeJoinRoom:
		r.Join(client, identity)
	case MessageTypeLeaveRoom:
		r.Leave(client)
	case MessageTypeRequestRoomState:
		r.RequestState(client)
	case MessageTypeChatMessage:
		h.relay.Relay(auctionID, identity, msg.Payload.UserName, msg.Payload.Message)
	case MessageTypeCreateScrim:
		r.CreateScrim(client, identity, msg.Payload.ScheduledDate)
	default:
		cmd, ok := commandFromMessage(&msg, identity)
		if !ok {
			h.sendError(client, domain.EventError, "unknown message type")
			return
		}
		r.Enqueue(cmd, client)
	}
}

// commandFromMessage maps a wire frame onto a state machine command carrying
// the connection's resolved identity
func commandFromMessage(msg *ClientCommandMessage, identity *application.Identity) (domain.Command, bool) {
	cmd := domain.Command{
		ActorID:   identity.UserID,
		ActorName: identity.Name,
		ActorRole: identity.Role,
	}
	switch msg.Type {
	case MessageTypeStartAuction:
		cmd.Type = domain.CmdStartAuction
	case MessageTypeSelectPlayer:
		cmd.Type = domain.CmdSelectPlayer
		cmd.PlayerID = msg.Payload.PlayerID
	case MessageTypePlaceBid:
		cmd.Type = domain.CmdPlaceBid
		cmd.PlayerID = msg.Payload.TargetPlayerID
		cmd.Amount = msg.Payload.Amount
	case MessageTypeConfirmBid:
		cmd.Type = domain.CmdConfirmBid
	case MessageTypePassPlayer:
		cmd.Type = domain.CmdPassPlayer
	case MessageTypeNextPlayer:
		cmd.Type = domain.CmdNextPlayer
	case MessageTypePauseAuction:
		cmd.Type = domain.CmdPauseAuction
	case MessageTypeResumeAuction:
		cmd.Type = domain.CmdResumeAuction
	case MessageTypePauseTimer:
		cmd.Type = domain.CmdPauseTimer
	case MessageTypeResumeTimer:
		cmd.Type = domain.CmdResumeTimer
	case MessageTypeUndoSoldPlayer:
		cmd.Type = domain.CmdUndoSoldPlayer
		cmd.PlayerID = msg.Payload.PlayerID
	case MessageTypeEnterAssignmentPhase:
		cmd.Type = domain.CmdEnterAssignmentPhase
	case MessageTypeManualAssignPlayer:
		cmd.Type = domain.CmdManualAssignPlayer
		cmd.PlayerID = msg.Payload.PlayerID
		cmd.CaptainID = msg.Payload.CaptainID
	case MessageTypeCompleteAuction:
		cmd.Type = domain.CmdCompleteAuction
	default:
		return domain.Command{}, false
	}
	return cmd, true
}

func clientIdentity(client *sharedws.Client) (*application.Identity, error) {
	userID, err := uuid.Parse(client.UserID)
	if err != nil {
		return nil, err
	}
	return &application.Identity{
		UserID: userID,
		Name:   client.UserName,
		Role:   domain.Role(client.Role),
	}, nil
}

func (h *AuctionWSHandler) sendError(client *sharedws.Client, kind domain.EventType, message string) {
	h.emitter.SendError(client, kind, message)
	log.Debug("sent error to client",
		zap.String("clientID", client.ID),
		zap.String("message", message),
	)
}
