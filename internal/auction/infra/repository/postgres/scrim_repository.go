package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clanarena/draftroom/internal/auction/application"
	"github.com/clanarena/draftroom/internal/auction/domain"
)

// ScrimRepository creates scrim records from finalized teams
type ScrimRepository struct {
	pool *pgxpool.Pool
}

func NewScrimRepository(pool *pgxpool.Pool) *ScrimRepository {
	return &ScrimRepository{pool: pool}
}

var _ application.ScrimScheduler = (*ScrimRepository)(nil)

func (r *ScrimRepository) CreateScrim(ctx context.Context, auctionID uuid.UUID, scheduledAt time.Time, teams []*domain.Team) (uuid.UUID, error) {
	scrimID := uuid.New()
	query := `
        INSERT INTO scrims (id, auction_id, scheduled_at)
        VALUES ($1, $2, $3)
    `
	if _, err := r.pool.Exec(ctx, query, scrimID, auctionID, scheduledAt); err != nil {
		return uuid.Nil, fmt.Errorf("scrim repository: create scrim for %s: %w", auctionID, err)
	}
	return scrimID, nil
}
