package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clanarena/draftroom/internal/auction/application"
	"github.com/clanarena/draftroom/internal/auction/domain"
)

// ChatRepository appends chat history. Messages are broadcast before they are
// persisted, a failed insert never affects delivery
type ChatRepository struct {
	pool *pgxpool.Pool
}

func NewChatRepository(pool *pgxpool.Pool) *ChatRepository {
	return &ChatRepository{pool: pool}
}

var _ application.ChatStore = (*ChatRepository)(nil)

func (r *ChatRepository) SaveMessage(ctx context.Context, msg *domain.ChatMessage) error {
	query := `
        INSERT INTO chat_messages (id, auction_id, sender_id, user_name, message, kind, sent_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        ON CONFLICT (id) DO NOTHING
    `
	var senderID any
	if msg.SenderID != uuid.Nil {
		senderID = msg.SenderID
	}
	if _, err := r.pool.Exec(ctx, query,
		msg.ID,
		msg.AuctionID,
		senderID,
		msg.UserName,
		msg.Message,
		msg.Kind,
		msg.SentAt,
	); err != nil {
		return fmt.Errorf("chat repository: save message %s: %w", msg.ID, err)
	}
	return nil
}

// History returns the room's chat log in send order, for late-join catch-up
// endpoints outside the engine
func (r *ChatRepository) History(ctx context.Context, auctionID uuid.UUID, limit int) ([]*domain.ChatMessage, error) {
	query := `
        SELECT id, auction_id, COALESCE(sender_id, '00000000-0000-0000-0000-000000000000'), user_name, message, kind, sent_at
        FROM chat_messages
        WHERE auction_id = $1
        ORDER BY sent_at ASC
        LIMIT $2
    `
	rows, err := r.pool.Query(ctx, query, auctionID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []*domain.ChatMessage
	for rows.Next() {
		m := &domain.ChatMessage{}
		if err := rows.Scan(&m.ID, &m.AuctionID, &m.SenderID, &m.UserName, &m.Message, &m.Kind, &m.SentAt); err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return msgs, nil
}
