package websocket

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/clanarena/draftroom/internal/auction/domain"
	"github.com/clanarena/draftroom/internal/auction/room"
	sharedws "github.com/clanarena/draftroom/internal/shared/websocket"
)

// HubEmitter implements the room's outbound port on top of the shared hub:
// it encodes the wire DTOs and fans them out, or delivers them to a single
// subscriber for targeted responses
type HubEmitter struct {
	hub *sharedws.Hub
}

func NewHubEmitter(hub *sharedws.Hub) *HubEmitter {
	return &HubEmitter{hub: hub}
}

var _ room.Emitter = (*HubEmitter)(nil)

func (e *HubEmitter) BroadcastEvent(auctionID uuid.UUID, ev *domain.Event, state *domain.RoomState) {
	msg := ServerEventMessage{
		BaseMessage: BaseMessage{Type: MessageType(ev.Type)},
		Payload:     EventPayload{Event: *ev, Room: state},
	}
	e.broadcast(auctionID, msg)
}

func (e *HubEmitter) BroadcastTimer(auctionID uuid.UUID, remaining time.Duration) {
	msg := ServerTimerUpdateMessage{BaseMessage: BaseMessage{Type: MessageType(domain.EventTimerUpdate)}}
	msg.Payload.RemainingTime = remaining.Seconds()
	e.broadcast(auctionID, msg)
}

func (e *HubEmitter) BroadcastChat(auctionID uuid.UUID, chat *domain.ChatMessage) {
	msg := ServerChatMessage{
		BaseMessage: BaseMessage{Type: MessageType(domain.EventChatMessage)},
		Payload:     chat,
	}
	e.broadcast(auctionID, msg)
}

func (e *HubEmitter) BroadcastScrim(auctionID uuid.UUID, scrimID uuid.UUID, state *domain.RoomState) {
	msg := ServerScrimCreatedMessage{BaseMessage: BaseMessage{Type: MessageType(domain.EventScrimCreated)}}
	msg.Payload.ScrimID = scrimID
	msg.Payload.Room = state
	e.broadcast(auctionID, msg)
}

func (e *HubEmitter) SendSnapshot(sub room.Subscriber, state *domain.RoomState) {
	msg := ServerRoomStateMessage{BaseMessage: BaseMessage{Type: MessageType(domain.EventRoomState)}}
	msg.Payload.Room = state
	e.deliver(sub, msg)
}

func (e *HubEmitter) SendError(sub room.Subscriber, kind domain.EventType, message string) {
	msg := ServerErrorMessage{BaseMessage: BaseMessage{Type: MessageType(kind)}}
	msg.Payload.Message = message
	e.deliver(sub, msg)
}

func (e *HubEmitter) SendWarning(sub room.Subscriber, message string) {
	e.SendError(sub, domain.EventInfraWarning, message)
}

func (e *HubEmitter) broadcast(auctionID uuid.UUID, msg any) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Error("failed to marshal broadcast message", zap.Error(err))
		return
	}
	e.hub.BroadcastToRoom(auctionID.String(), data)
}

func (e *HubEmitter) deliver(sub room.Subscriber, msg any) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Error("failed to marshal targeted message", zap.Error(err))
		return
	}
	sub.Deliver(data)
}
