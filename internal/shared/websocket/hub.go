package websocket

import (
	"context"
	"time"

	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/clanarena/draftroom/internal/shared/logger"
)

var log = logger.GetLogger()

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 4096

	// Per-client outbound buffer.
	sendBufferSize = 64
)

// Hub keeps the subscriber registry per auction room and fans broadcasts out
// to every connection subscribed to a room. No message ever goes to a subset
// of subscribers, targeted error responses go through Client.Deliver directly
type Hub struct {
	// Registered clients grouped by auction room ID.
	clients map[string]map[*Client]bool

	broadcast  chan *Message
	register   chan *Client
	unregister chan *Client

	// InboundMessages is consumed by the auction command dispatcher.
	InboundMessages chan *ClientMessage

	// OnEmpty, when set, is invoked from the hub goroutine after the last
	// subscriber of a room is gone. The registry uses it to reap terminal rooms
	OnEmpty func(roomID string)
	// OnLeave, when set, is invoked when a client is unregistered, so the room
	// actor can drop its targeted-sink bookkeeping
	OnLeave func(client *Client)
}

// Client is one websocket connection, already carrying the identity resolved
// at the handshake
type Client struct {
	Hub  *Hub
	Conn *websocket.Conn
	// Buffered channel of outbound messages.
	send chan []byte

	RoomID   string
	ID       string
	UserID   string
	UserName string
	Role     string
}

func NewClient(hub *Hub, conn *websocket.Conn, roomID, id, userID, userName, role string) *Client {
	return &Client{
		Hub:      hub,
		Conn:     conn,
		send:     make(chan []byte, sendBufferSize),
		RoomID:   roomID,
		ID:       id,
		UserID:   userID,
		UserName: userName,
		Role:     role,
	}
}

// Key identifies the connection for targeted bookkeeping
func (c *Client) Key() string { return c.ID }

// Deliver queues data for this connection without blocking. A full buffer
// means the client is not keeping up and the message is dropped
func (c *Client) Deliver(data []byte) bool {
	select {
	case c.send <- data:
		return true
	default:
		log.Warn("client send buffer full, dropping targeted message",
			zap.String("clientID", c.ID),
			zap.String("roomID", c.RoomID),
		)
		return false
	}
}

type Message struct {
	RoomID string
	Data   []byte
}

// ClientMessage wraps an inbound frame together with the client that sent it
type ClientMessage struct {
	Client *Client
	Data   []byte
}

func NewHub() *Hub {
	return &Hub{
		broadcast:       make(chan *Message, 256),
		register:        make(chan *Client),
		unregister:      make(chan *Client),
		clients:         make(map[string]map[*Client]bool),
		InboundMessages: make(chan *ClientMessage, 256),
	}
}

// Run starts the hub loop. Registration, unregistration and broadcast all
// happen here, the clients map is never touched from another goroutine
func (h *Hub) Run(ctx context.Context) {
	log.Info("websocket hub started")
	for {
		select {
		case <-ctx.Done():
			log.Info("websocket hub shutting down")
			for _, clients := range h.clients {
				for client := range clients {
					close(client.send)
				}
			}
			return

		case client := <-h.register:
			if _, ok := h.clients[client.RoomID]; !ok {
				h.clients[client.RoomID] = make(map[*Client]bool)
			}
			h.clients[client.RoomID][client] = true
			log.Info("client registered",
				zap.String("clientID", client.ID),
				zap.String("roomID", client.RoomID),
				zap.String("role", client.Role),
				zap.Int("room_clients", len(h.clients[client.RoomID])),
			)

		case client := <-h.unregister:
			if clients, ok := h.clients[client.RoomID]; ok {
				if _, ok := clients[client]; ok {
					h.removeClient(clients, client)
					log.Info("client unregistered",
						zap.String("clientID", client.ID),
						zap.String("roomID", client.RoomID),
					)
				}
			}

		case message := <-h.broadcast:
			if clients, ok := h.clients[message.RoomID]; ok {
				log.Debug("broadcasting to room",
					zap.String("roomID", message.RoomID),
					zap.Int("clients", len(clients)),
				)
				for client := range clients {
					select {
					case client.send <- message.Data:
					default:
						// client not draining its buffer, drop it. Same
						// teardown as unregister or room reaping leaks
						h.removeClient(clients, client)
						log.Warn("failed to send to client, unregistering",
							zap.String("clientID", client.ID),
							zap.String("roomID", client.RoomID),
						)
					}
				}
			}
		}
	}
}

// removeClient drops the client from its room group and runs the teardown
// hooks. Runs on the hub goroutine only. The caller must have verified the
// client is present in clients
func (h *Hub) removeClient(clients map[*Client]bool, client *Client) {
	delete(clients, client)
	close(client.send)
	if h.OnLeave != nil {
		h.OnLeave(client)
	}
	if len(clients) == 0 {
		delete(h.clients, client.RoomID)
		log.Info("room group removed as empty", zap.String("roomID", client.RoomID))
		if h.OnEmpty != nil {
			h.OnEmpty(client.RoomID)
		}
	}
}

// RegisterClient queues a client for registration
func (h *Hub) RegisterClient(client *Client) {
	h.register <- client
}

// UnregisterClient queues a client for removal
func (h *Hub) UnregisterClient(client *Client) {
	select {
	case h.unregister <- client:
	default:
		log.Error("unregister channel full, client unregistration failed",
			zap.String("clientID", client.ID),
			zap.String("roomID", client.RoomID),
		)
	}
}

// BroadcastToRoom fans data out to every client subscribed to roomID
func (h *Hub) BroadcastToRoom(roomID string, data []byte) {
	select {
	case h.broadcast <- &Message{RoomID: roomID, Data: data}:
	default:
		log.Error("broadcast channel full, message dropped", zap.String("roomID", roomID))
	}
}

// ReadPump reads frames from the peer and hands them to the inbound channel.
// Runs in its own goroutine per connection. Frames from one connection are
// forwarded in the order they arrive, which is what gives the per-connection
// ordering guarantee downstream
func (c *Client) ReadPump(ctx context.Context) {
	defer func() {
		c.Hub.UnregisterClient(c)
		c.Conn.Close()
		log.Debug("read pump stopped",
			zap.String("clientID", c.ID),
			zap.String("roomID", c.RoomID),
		)
	}()
	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error { c.Conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Error("websocket read error",
					zap.String("clientID", c.ID),
					zap.String("roomID", c.RoomID),
					zap.Error(err),
				)
			}
			break
		}

		select {
		case c.Hub.InboundMessages <- &ClientMessage{Client: c, Data: message}:
		case <-ctx.Done():
			return
		}
	}
}

// WritePump pumps messages from the hub to the websocket connection and keeps
// the connection alive with pings. The single writer per connection
func (c *Client) WritePump(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Hub.UnregisterClient(c)
		c.Conn.Close()
		log.Debug("write pump stopped",
			zap.String("clientID", c.ID),
			zap.String("roomID", c.RoomID),
		)
	}()

	for {
		select {
		case <-ctx.Done():
			_ = c.Conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeWait))
			return

		case message, ok := <-c.send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Error("websocket write error",
					zap.String("clientID", c.ID),
					zap.String("roomID", c.RoomID),
					zap.Error(err),
				)
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}
