package websocket

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/clanarena/draftroom/internal/auction/application"
	"github.com/clanarena/draftroom/internal/auction/room"
	sharedws "github.com/clanarena/draftroom/internal/shared/websocket"
)

// RegisterRoutes mounts the room channel at /ws/auction/:auctionID. The
// identity of the connection is resolved once at the handshake, every frame
// after that carries it implicitly
func RegisterRoutes(ctx context.Context, app *fiber.App, hub *sharedws.Hub, registry *room.Registry, resolver application.IdentityResolver) {
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	app.Get("/ws/auction/:auctionID", websocket.New(func(conn *websocket.Conn) {
		auctionID, err := uuid.Parse(conn.Params("auctionID"))
		if err != nil {
			log.Warn("rejected ws connection with invalid auction ID",
				zap.String("raw", conn.Params("auctionID")))
			_ = conn.Close()
			return
		}

		identity, err := resolver.Resolve(ctx, auctionID, conn.Query("token"))
		if err != nil {
			log.Warn("rejected ws connection, identity resolution failed",
				zap.String("auctionID", auctionID.String()),
				zap.Error(err),
			)
			_ = conn.Close()
			return
		}

		r, err := registry.GetOrCreate(ctx, auctionID)
		if err != nil {
			log.Error("failed to create auction room",
				zap.String("auctionID", auctionID.String()),
				zap.Error(err),
			)
			_ = conn.Close()
			return
		}

		client := sharedws.NewClient(hub, conn,
			auctionID.String(),
			uuid.NewString(),
			identity.UserID.String(),
			identity.Name,
			string(identity.Role),
		)
		hub.RegisterClient(client)
		// late-joiner catch-up: the room answers with the full snapshot
		r.Join(client, identity)

		go client.WritePump(ctx)
		client.ReadPump(ctx)
	}))
}
