package room

import (
	"context"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/clanarena/draftroom/internal/auction/application"
	"github.com/clanarena/draftroom/internal/auction/domain"
)

// ChatRelay passes chat messages into the room's broadcast channel. It is
// stateless and deliberately bypasses the actor queue: chat carries no
// state-machine invariants, so it never competes with bidding commands.
// Messages are broadcast first and persisted after, fire-and-forget
type ChatRelay struct {
	emitter Emitter
	store   application.ChatStore
	retry   application.RetryPolicy
	clock   clockwork.Clock
}

func NewChatRelay(emitter Emitter, store application.ChatStore, retry application.RetryPolicy, clock clockwork.Clock) *ChatRelay {
	return &ChatRelay{emitter: emitter, store: store, retry: retry, clock: clock}
}

// Relay broadcasts the message to every subscriber of the room and appends it
// to chat history in the background
func (c *ChatRelay) Relay(auctionID uuid.UUID, sender *application.Identity, userName, text string) *domain.ChatMessage {
	if userName == "" {
		userName = sender.Name
	}
	msg := &domain.ChatMessage{
		ID:        uuid.New(),
		AuctionID: auctionID,
		SenderID:  sender.UserID,
		UserName:  userName,
		Message:   text,
		Kind:      "chat",
		SentAt:    c.clock.Now(),
	}
	c.emitter.BroadcastChat(auctionID, msg)
	go func() {
		_ = c.retry.Run(context.Background(), "persist chat message", func(ctx context.Context) error {
			return c.store.SaveMessage(ctx, msg)
		})
	}()
	return msg
}

// System broadcasts a server-originated notice into the room chat
func (c *ChatRelay) System(auctionID uuid.UUID, text string) *domain.ChatMessage {
	msg := &domain.ChatMessage{
		ID:        uuid.New(),
		AuctionID: auctionID,
		UserName:  "system",
		Message:   text,
		Kind:      "system",
		SentAt:    c.clock.Now(),
	}
	c.emitter.BroadcastChat(auctionID, msg)
	go func() {
		_ = c.retry.Run(context.Background(), "persist chat message", func(ctx context.Context) error {
			return c.store.SaveMessage(ctx, msg)
		})
	}()
	return msg
}
