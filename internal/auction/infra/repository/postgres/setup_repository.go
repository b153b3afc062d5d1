package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clanarena/draftroom/internal/auction/application"
	"github.com/clanarena/draftroom/internal/auction/domain"
)

// SetupRepository loads the initial room configuration produced by the
// out-of-scope CRUD setup flow. Read-only from the engine's perspective
type SetupRepository struct {
	pool *pgxpool.Pool
}

func NewSetupRepository(pool *pgxpool.Pool) *SetupRepository {
	return &SetupRepository{pool: pool}
}

var _ application.SetupService = (*SetupRepository)(nil)

func (r *SetupRepository) GetRoomConfig(ctx context.Context, auctionID uuid.UUID) (*application.RoomConfig, error) {
	query := `
        SELECT id, title, creator_id, team_count, starting_points,
               turn_time_limit_seconds, bid_extension_seconds
        FROM auctions
        WHERE id = $1
    `
	cfg := &application.RoomConfig{}
	var turnSeconds, extensionSeconds int
	err := r.pool.QueryRow(ctx, query, auctionID).Scan(
		&cfg.AuctionID,
		&cfg.Title,
		&cfg.CreatorID,
		&cfg.TeamCount,
		&cfg.StartingPoints,
		&turnSeconds,
		&extensionSeconds,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("setup repository: load auction %s: %w", auctionID, err)
	}
	cfg.TurnTimeLimit = time.Duration(turnSeconds) * time.Second
	cfg.BidExtension = time.Duration(extensionSeconds) * time.Second

	participants, err := r.loadParticipants(ctx, auctionID)
	if err != nil {
		return nil, err
	}
	cfg.Participants = participants
	return cfg, nil
}

func (r *SetupRepository) loadParticipants(ctx context.Context, auctionID uuid.UUID) ([]*domain.Participant, error) {
	query := `
        SELECT id, user_name, role, points, bidding_order
        FROM auction_participants
        WHERE auction_id = $1
        ORDER BY bidding_order ASC
    `
	rows, err := r.pool.Query(ctx, query, auctionID)
	if err != nil {
		return nil, fmt.Errorf("setup repository: load participants for %s: %w", auctionID, err)
	}
	defer rows.Close()

	var participants []*domain.Participant
	for rows.Next() {
		p := &domain.Participant{}
		if err := rows.Scan(&p.ID, &p.Name, &p.Role, &p.Points, &p.BiddingOrder); err != nil {
			return nil, err
		}
		participants = append(participants, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return participants, nil
}
