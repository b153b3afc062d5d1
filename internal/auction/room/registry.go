package room

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/clanarena/draftroom/internal/auction/application"
	"github.com/clanarena/draftroom/internal/auction/domain"
)

// Registry maps auction identifiers to their room actors. It is the only place
// holding the mapping and only ever hands out the actor handle, never the
// mutable state
type Registry struct {
	setup   application.SetupService
	rosters application.RosterStore
	scrims  application.ScrimScheduler
	retry   application.RetryPolicy
	clock   clockwork.Clock
	emitter Emitter

	mu      sync.Mutex
	rooms   map[uuid.UUID]*activeRoom
	baseCtx context.Context
}

type activeRoom struct {
	room   *Room
	cancel context.CancelFunc
}

func NewRegistry(ctx context.Context, setup application.SetupService, rosters application.RosterStore, scrims application.ScrimScheduler, retry application.RetryPolicy, clock clockwork.Clock, emitter Emitter) *Registry {
	return &Registry{
		setup:   setup,
		rosters: rosters,
		scrims:  scrims,
		retry:   retry,
		clock:   clock,
		emitter: emitter,
		rooms:   make(map[uuid.UUID]*activeRoom),
		baseCtx: ctx,
	}
}

// GetOrCreate returns the actor for auctionID, lazily constructing it on first
// join by loading the initial configuration from the setup collaborator
func (reg *Registry) GetOrCreate(ctx context.Context, auctionID uuid.UUID) (*Room, error) {
	reg.mu.Lock()
	if active, ok := reg.rooms[auctionID]; ok {
		reg.mu.Unlock()
		return active.room, nil
	}
	reg.mu.Unlock()

	// load the config outside the lock, setup lookups can be slow
	cfg, err := reg.setup.GetRoomConfig(ctx, auctionID)
	if err != nil {
		return nil, fmt.Errorf("registry: load room config for %s: %w", auctionID, err)
	}

	reg.mu.Lock()
	defer reg.mu.Unlock()
	if active, ok := reg.rooms[auctionID]; ok {
		// lost the construction race, use the winner
		return active.room, nil
	}

	state := domain.NewRoomState(
		cfg.AuctionID,
		cfg.Title,
		cfg.CreatorID,
		cfg.TeamCount,
		cfg.StartingPoints,
		cfg.TurnTimeLimit,
		cfg.BidExtension,
		cfg.Participants,
	)
	r := New(state, reg.clock, reg.emitter, reg.rosters, reg.scrims, reg.retry)
	runCtx, cancel := context.WithCancel(reg.baseCtx)
	reg.rooms[auctionID] = &activeRoom{room: r, cancel: cancel}
	go r.Run(runCtx)
	log.Info("auction room created",
		zap.String("auctionID", auctionID.String()),
		zap.String("title", cfg.Title),
		zap.Int("participants", len(cfg.Participants)),
	)
	return r, nil
}

// Get returns an already running actor
func (reg *Registry) Get(auctionID uuid.UUID) (*Room, bool) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	active, ok := reg.rooms[auctionID]
	if !ok {
		return nil, false
	}
	return active.room, true
}

// ReapIfIdle tears the actor down once the room is terminal and its last
// subscriber is gone. Wired to the hub's empty-group notification
func (reg *Registry) ReapIfIdle(auctionID uuid.UUID) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	active, ok := reg.rooms[auctionID]
	if !ok {
		return
	}
	if !active.room.Terminal() {
		return
	}
	active.cancel()
	delete(reg.rooms, auctionID)
	log.Info("auction room reaped", zap.String("auctionID", auctionID.String()))
}

// Shutdown cancels every running actor
func (reg *Registry) Shutdown() {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	for id, active := range reg.rooms {
		active.cancel()
		delete(reg.rooms, id)
	}
}
