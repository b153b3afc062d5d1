package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/clanarena/draftroom/internal/auction/infra/repository/postgres"
)

const defaultHistoryLimit = 200

// RegisterRoutes mounts the read-side endpoints that live next to the room
// channel. Chat history is served over plain HTTP so late joiners can backfill
// without widening the websocket protocol
func RegisterRoutes(app *fiber.App, chat *postgres.ChatRepository) {
	app.Get("/auction/:auctionID/chat", func(c *fiber.Ctx) error {
		auctionID, err := uuid.Parse(c.Params("auctionID"))
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid auction ID")
		}
		limit := c.QueryInt("limit", defaultHistoryLimit)
		if limit <= 0 || limit > 1000 {
			limit = defaultHistoryLimit
		}
		msgs, err := chat.History(c.Context(), auctionID, limit)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to load chat history")
		}
		return c.JSON(fiber.Map{"messages": msgs})
	})
}
