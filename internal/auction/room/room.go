package room

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/clanarena/draftroom/internal/auction/application"
	"github.com/clanarena/draftroom/internal/auction/domain"
	"github.com/clanarena/draftroom/internal/shared/logger"
)

var log = logger.GetLogger()

const commandQueueSize = 64

// Subscriber is one connection able to receive targeted messages (snapshots on
// join, rejection errors, admin warnings)
type Subscriber interface {
	Key() string
	// Deliver must not block, it reports whether the message was accepted
	Deliver(data []byte) bool
}

// Emitter is the outbound port of a room: the websocket layer implements it by
// encoding the payloads and handing them to the hub
type Emitter interface {
	BroadcastEvent(auctionID uuid.UUID, ev *domain.Event, state *domain.RoomState)
	BroadcastTimer(auctionID uuid.UUID, remaining time.Duration)
	BroadcastChat(auctionID uuid.UUID, msg *domain.ChatMessage)
	BroadcastScrim(auctionID uuid.UUID, scrimID uuid.UUID, state *domain.RoomState)
	SendSnapshot(sub Subscriber, state *domain.RoomState)
	SendError(sub Subscriber, kind domain.EventType, message string)
	SendWarning(sub Subscriber, message string)
}

type envelopeKind int

const (
	kindCommand envelopeKind = iota
	kindJoin
	kindLeave
	kindSnapshot
	kindScrim
)

type envelope struct {
	kind        envelopeKind
	cmd         domain.Command
	origin      Subscriber
	identity    *application.Identity
	scheduledAt time.Time
}

// Room owns the canonical state of one auction and is its only writer. All
// commands pass through a single buffered queue and are processed one at a
// time on the actor goroutine, strict FIFO, which is the whole concurrency
// story: no locks around room state exist or are needed
type Room struct {
	id    uuid.UUID
	state *domain.RoomState

	clock clockwork.Clock
	timer *CountdownTimer

	emitter Emitter
	rosters application.RosterStore
	scrims  application.ScrimScheduler
	retry   application.RetryPolicy

	commands chan envelope
	quit     chan struct{}
	terminal atomic.Bool

	// admin sinks for non-blocking infra warnings, touched only on the actor
	// goroutine
	admins map[string]Subscriber
}

func New(state *domain.RoomState, clock clockwork.Clock, emitter Emitter, rosters application.RosterStore, scrims application.ScrimScheduler, retry application.RetryPolicy) *Room {
	return &Room{
		id:       state.AuctionID,
		state:    state,
		clock:    clock,
		timer:    NewCountdownTimer(clock),
		emitter:  emitter,
		rosters:  rosters,
		scrims:   scrims,
		retry:    retry,
		commands: make(chan envelope, commandQueueSize),
		quit:     make(chan struct{}),
		admins:   make(map[string]Subscriber),
	}
}

func (r *Room) ID() uuid.UUID { return r.id }

// Terminal reports whether the auction reached COMPLETED or CANCELLED, used by
// the registry to decide teardown
func (r *Room) Terminal() bool { return r.terminal.Load() }

// Run processes the command queue until ctx is cancelled. One goroutine per
// room, rooms run fully in parallel with respect to each other
func (r *Room) Run(ctx context.Context) {
	log.Info("auction room actor started", zap.String("auctionID", r.id.String()))
	ticker := r.clock.NewTicker(time.Second)
	defer func() {
		ticker.Stop()
		r.timer.Cancel()
		close(r.quit)
		log.Info("auction room actor stopped", zap.String("auctionID", r.id.String()))
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case env := <-r.commands:
			r.handle(env)
		case <-ticker.Chan():
			r.pushTimerUpdate()
		}
	}
}

// Enqueue hands a client command to the actor. The send blocks briefly when
// the queue is full so per-connection ordering is preserved, and gives up if
// the room shut down
func (r *Room) Enqueue(cmd domain.Command, origin Subscriber) bool {
	return r.send(envelope{kind: kindCommand, cmd: cmd, origin: origin})
}

// Join registers the connection with the room and immediately sends the full
// state snapshot, the late-joiner catch-up
func (r *Room) Join(origin Subscriber, identity *application.Identity) bool {
	return r.send(envelope{kind: kindJoin, origin: origin, identity: identity})
}

func (r *Room) Leave(origin Subscriber) bool {
	return r.send(envelope{kind: kindLeave, origin: origin})
}

func (r *Room) RequestState(origin Subscriber) bool {
	return r.send(envelope{kind: kindSnapshot, origin: origin})
}

// CreateScrim forwards the finalized teams and the supplied schedule timestamp
// to the scheduling collaborator, valid only after completion
func (r *Room) CreateScrim(origin Subscriber, identity *application.Identity, scheduledAt time.Time) bool {
	return r.send(envelope{kind: kindScrim, origin: origin, identity: identity, scheduledAt: scheduledAt})
}

func (r *Room) send(env envelope) bool {
	select {
	case <-r.quit:
		return false
	case r.commands <- env:
		return true
	}
}

func (r *Room) handle(env envelope) {
	switch env.kind {
	case kindJoin:
		if env.identity != nil && env.identity.Role == domain.RoleAdmin {
			r.admins[env.origin.Key()] = env.origin
		}
		r.emitter.SendSnapshot(env.origin, r.state)
	case kindLeave:
		delete(r.admins, env.origin.Key())
	case kindSnapshot:
		r.emitter.SendSnapshot(env.origin, r.state)
	case kindScrim:
		r.handleCreateScrim(env)
	case kindCommand:
		r.applyCommand(env)
	}
}

func (r *Room) applyCommand(env envelope) {
	next := r.state.Clone()
	ev, err := domain.Apply(next, env.cmd, r.clock.Now())
	if err != nil {
		// rejections are local to the originating connection, room state and
		// the other participants are unaffected
		log.Debug("command rejected",
			zap.String("auctionID", r.id.String()),
			zap.String("command", string(env.cmd.Type)),
			zap.String("actorID", env.cmd.ActorID.String()),
			zap.Error(err),
		)
		if env.origin != nil {
			kind := domain.EventError
			if env.cmd.Type == domain.CmdPlaceBid {
				kind = domain.EventBidError
			}
			r.emitter.SendError(env.origin, kind, err.Error())
		}
		return
	}
	if ev == nil {
		// defensive no-op, e.g. a stale timer expiry after the phase moved on
		return
	}

	r.state = next
	r.syncTimer()
	r.emitter.BroadcastEvent(r.id, ev, r.state)
	log.Info("command applied",
		zap.String("auctionID", r.id.String()),
		zap.String("command", string(env.cmd.Type)),
		zap.String("event", string(ev.Type)),
		zap.String("status", string(r.state.Status)),
		zap.String("phase", string(r.state.Phase)),
	)

	if r.state.Status == domain.StatusCompleted || r.state.Status == domain.StatusCancelled {
		r.terminal.Store(true)
	}
	if ev.Type == domain.EventAuctionCompleted {
		r.persistRosters()
	}
}

// syncTimer reconciles the pending wake-up with the countdown fields of the
// freshly applied state
func (r *Room) syncTimer() {
	if r.state.Status == domain.StatusOngoing && r.state.Phase == domain.PhaseBidding && r.state.BiddingEndsAt != nil {
		if !r.timer.Deadline().Equal(*r.state.BiddingEndsAt) {
			r.timer.ArmAt(*r.state.BiddingEndsAt, r.onExpire)
		}
		return
	}
	r.timer.Cancel()
}

// onExpire runs off the actor goroutine, it only injects the synthetic
// timerExpired command into the queue. The machine re-checks the phase and the
// armed deadline before acting, so a race with a manual resolution is a no-op
func (r *Room) onExpire(deadline time.Time) {
	r.send(envelope{kind: kindCommand, cmd: domain.Command{
		Type:     domain.CmdTimerExpired,
		Deadline: deadline,
	}})
}

// pushTimerUpdate emits the lightweight 1s countdown ping while bidding. A
// convenience for client drift correction, expiry itself does not depend on it
func (r *Room) pushTimerUpdate() {
	if r.state.Status != domain.StatusOngoing || r.state.Phase != domain.PhaseBidding || r.state.BiddingEndsAt == nil {
		return
	}
	remaining := r.state.BiddingEndsAt.Sub(r.clock.Now())
	if remaining < 0 {
		remaining = 0
	}
	r.emitter.BroadcastTimer(r.id, remaining)
}

// persistRosters hands the finalized rosters to the persistence collaborator,
// fire-and-forget with retries. The broadcast already happened and is never
// rolled back on infra failure
func (r *Room) persistRosters() {
	teams := r.state.Clone().Teams
	admins := r.adminSnapshot()
	go func() {
		err := r.retry.Run(context.Background(), "persist final rosters", func(ctx context.Context) error {
			return r.rosters.SaveFinalRosters(ctx, r.id, teams)
		})
		if err != nil {
			r.warnAdmins(admins, "final rosters could not be persisted: "+err.Error())
		}
	}()
}

func (r *Room) handleCreateScrim(env envelope) {
	if env.identity == nil || env.identity.Role != domain.RoleAdmin {
		r.emitter.SendError(env.origin, domain.EventError, domain.ErrUnauthorized.Error())
		return
	}
	if r.state.Status != domain.StatusCompleted {
		r.emitter.SendError(env.origin, domain.EventError, domain.ErrInvalidTransition.Error())
		return
	}
	snapshot := r.state.Clone()
	admins := r.adminSnapshot()
	scheduledAt := env.scheduledAt
	go func() {
		var scrimID uuid.UUID
		err := r.retry.Run(context.Background(), "create scrim", func(ctx context.Context) error {
			id, err := r.scrims.CreateScrim(ctx, r.id, scheduledAt, snapshot.Teams)
			if err != nil {
				return err
			}
			scrimID = id
			return nil
		})
		if err != nil {
			r.warnAdmins(admins, "scrim could not be created: "+err.Error())
			return
		}
		r.emitter.BroadcastScrim(r.id, scrimID, snapshot)
	}()
}

func (r *Room) adminSnapshot() []Subscriber {
	subs := make([]Subscriber, 0, len(r.admins))
	for _, s := range r.admins {
		subs = append(subs, s)
	}
	return subs
}

func (r *Room) warnAdmins(admins []Subscriber, message string) {
	for _, a := range admins {
		r.emitter.SendWarning(a, message)
	}
}
