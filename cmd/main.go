package main

import (
	"context"
	"os"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/clanarena/draftroom/internal/auction/application"
	httpinfra "github.com/clanarena/draftroom/internal/auction/infra/http"
	pgrepo "github.com/clanarena/draftroom/internal/auction/infra/repository/postgres"
	wsinfra "github.com/clanarena/draftroom/internal/auction/infra/websocket"
	"github.com/clanarena/draftroom/internal/auction/room"
	"github.com/clanarena/draftroom/internal/shared/db"
	"github.com/clanarena/draftroom/internal/shared/db/migrations"
	"github.com/clanarena/draftroom/internal/shared/httpserver"
	"github.com/clanarena/draftroom/internal/shared/logger"
	sharedws "github.com/clanarena/draftroom/internal/shared/websocket"
)

func main() {
	log := logger.GetLogger()
	defer log.Sync()

	log.Info("starting draftroom server...")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	log.Info("running database migrations...")
	if err := migrations.RunMigrations(); err != nil {
		log.Fatal("database migration failed", zap.Error(err))
	}

	pool, err := db.GetPostgresDBPool(ctx)
	if err != nil {
		log.Fatal("database connection failed", zap.Error(err))
	}
	defer pool.Close()

	hub := sharedws.NewHub()
	go hub.Run(ctx)

	emitter := wsinfra.NewHubEmitter(hub)
	clock := clockwork.NewRealClock()
	retry := application.DefaultRetryPolicy

	setupRepo := pgrepo.NewSetupRepository(pool)
	rosterRepo := pgrepo.NewRosterRepository(pool)
	scrimRepo := pgrepo.NewScrimRepository(pool)
	chatRepo := pgrepo.NewChatRepository(pool)

	registry := room.NewRegistry(ctx, setupRepo, rosterRepo, scrimRepo, retry, clock, emitter)
	defer registry.Shutdown()

	relay := room.NewChatRelay(emitter, chatRepo, retry, clock)

	hub.OnEmpty = func(roomID string) {
		if auctionID, err := uuid.Parse(roomID); err == nil {
			registry.ReapIfIdle(auctionID)
		}
	}
	hub.OnLeave = func(client *sharedws.Client) {
		auctionID, err := uuid.Parse(client.RoomID)
		if err != nil {
			return
		}
		if r, ok := registry.Get(auctionID); ok {
			// off the hub goroutine, the room queue may be busy
			go r.Leave(client)
		}
	}

	handler := wsinfra.NewAuctionWSHandler(hub, registry, relay, emitter)
	go handler.ListenForMessages(ctx)

	server := httpserver.NewServer()
	wsinfra.RegisterRoutes(ctx, server.App(), hub, registry, wsinfra.TokenIdentityResolver{})
	httpinfra.RegisterRoutes(server.App(), chatRepo)

	addr := os.Getenv("SERVER_ADDR")
	if addr == "" {
		addr = ":9000"
	}
	if err := server.Start(addr); err != nil {
		log.Fatal("HTTP server failed", zap.Error(err))
	}
}
