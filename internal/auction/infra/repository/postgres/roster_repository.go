package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clanarena/draftroom/internal/auction/application"
	"github.com/clanarena/draftroom/internal/auction/domain"
)

// RosterRepository persists finalized team rosters on auction completion. The
// whole roster goes in one transaction so a rerun after a retry stays
// idempotent via the upsert
type RosterRepository struct {
	pool *pgxpool.Pool
}

func NewRosterRepository(pool *pgxpool.Pool) *RosterRepository {
	return &RosterRepository{pool: pool}
}

var _ application.RosterStore = (*RosterRepository)(nil)

func (r *RosterRepository) SaveFinalRosters(ctx context.Context, auctionID uuid.UUID, teams []*domain.Team) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("roster repository: begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	query := `
        INSERT INTO team_rosters (auction_id, captain_id, player_id, price_paid, was_unsold)
        VALUES ($1, $2, $3, $4, $5)
        ON CONFLICT (auction_id, player_id) DO UPDATE
        SET captain_id = EXCLUDED.captain_id,
            price_paid = EXCLUDED.price_paid,
            was_unsold = EXCLUDED.was_unsold
    `
	for _, team := range teams {
		for _, member := range team.Members {
			if _, err := tx.Exec(ctx, query,
				auctionID,
				team.CaptainID,
				member.PlayerID,
				member.Price,
				member.WasUnsold,
			); err != nil {
				return fmt.Errorf("roster repository: save member %s: %w", member.PlayerID, err)
			}
		}
	}

	markDone := `UPDATE auctions SET status = $2, updated_at = NOW() WHERE id = $1`
	if _, err := tx.Exec(ctx, markDone, auctionID, domain.StatusCompleted); err != nil {
		return fmt.Errorf("roster repository: mark auction completed: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("roster repository: commit: %w", err)
	}
	return nil
}
