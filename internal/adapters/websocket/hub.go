package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/IANDYI/pregnancy-service/internal/core/domain"
	"github.com/IANDYI/pregnancy-service/internal/core/ports"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBuffer     = 256
)

// RoleAdmin is the only role that receives alerts
const RoleAdmin = "ADMIN"

// MessageTypeAlert tags alert messages pushed to clinicians
const MessageTypeAlert = "pregnancy_alert"

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// AlertMessage is the frame written to clinician connections
type AlertMessage struct {
	Type  string               `json:"type"`
	Alert *domain.FindingAlert `json:"alert"`
}

// ClientInfo identifies the user behind a connection
type ClientInfo struct {
	UserID string
	Role   string
	Email  string
	Name   string
}

// Client represents a websocket connection
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
	done chan struct{}
	info ClientInfo
}

// NewClient wraps an upgraded connection; call Hub.Register then Start
func NewClient(hub *Hub, conn *websocket.Conn, info ClientInfo) *Client {
	return &Client{
		hub:  hub,
		conn: conn,
		send: make(chan []byte, sendBuffer),
		done: make(chan struct{}),
		info: info,
	}
}

// Info returns the user behind the connection
func (c *Client) Info() ClientInfo { return c.info }

// Done is closed once the connection's read side has ended
func (c *Client) Done() <-chan struct{} { return c.done }

// Start runs the read and write pumps in their own goroutines
func (c *Client) Start() {
	go c.writePump()
	go c.readPump()
}

// Hub maintains the set of active clients and broadcasts alerts to admins
type Hub struct {
	clients     map[*Client]bool
	broadcast   chan []byte
	register    chan *Client
	unregister  chan *Client
	countReq    chan chan int
	stopped     chan struct{}
	onBroadcast func(recipients int)
	logger      zerolog.Logger
}

// NewHub creates a new WebSocket hub; onBroadcast may be nil
func NewHub(logger zerolog.Logger, onBroadcast func(recipients int)) *Hub {
	return &Hub{
		clients:     make(map[*Client]bool),
		broadcast:   make(chan []byte, 256),
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		countReq:    make(chan chan int),
		stopped:     make(chan struct{}),
		onBroadcast: onBroadcast,
		logger:      logger.With().Str("component", "websocket_hub").Logger(),
	}
}

// Run owns the client set; it returns when ctx is cancelled
func (h *Hub) Run(ctx context.Context) {
	defer close(h.stopped)
	for {
		select {
		case <-ctx.Done():
			for client := range h.clients {
				h.remove(client)
			}
			return

		case client := <-h.register:
			h.clients[client] = true
			h.logger.Info().
				Str("user_id", client.info.UserID).
				Str("role", client.info.Role).
				Int("admins", h.adminCount()).
				Msg("websocket client connected")

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				h.remove(client)
				h.logger.Info().
					Str("user_id", client.info.UserID).
					Str("role", client.info.Role).
					Int("admins", h.adminCount()).
					Msg("websocket client disconnected")
			}

		case message := <-h.broadcast:
			sent := 0
			for client := range h.clients {
				if client.info.Role != RoleAdmin {
					continue
				}
				select {
				case client.send <- message:
					sent++
				default:
					h.logger.Warn().Str("user_id", client.info.UserID).Msg("admin send buffer full, dropping connection")
					h.remove(client)
				}
			}
			if sent == 0 {
				h.logger.Warn().Msg("no connected admins to receive alert")
			}
			if h.onBroadcast != nil {
				h.onBroadcast(sent)
			}

		case reply := <-h.countReq:
			reply <- h.adminCount()
		}
	}
}

func (h *Hub) remove(client *Client) {
	delete(h.clients, client)
	close(client.send)
}

func (h *Hub) adminCount() int {
	n := 0
	for client := range h.clients {
		if client.info.Role == RoleAdmin {
			n++
		}
	}
	return n
}

// Register adds a client to the hub
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.stopped:
		close(client.send)
	}
}

// BroadcastAlert sends an alert to every connected ADMIN client
func (h *Hub) BroadcastAlert(alert *domain.FindingAlert) {
	message, err := json.Marshal(AlertMessage{Type: MessageTypeAlert, Alert: alert})
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to encode alert message")
		return
	}
	select {
	case h.broadcast <- message:
	case <-h.stopped:
		h.logger.Warn().Msg("hub stopped, alert not broadcast")
	}
}

// ConnectedAdminCount returns number of connected ADMIN users
func (h *Hub) ConnectedAdminCount() int {
	reply := make(chan int, 1)
	select {
	case h.countReq <- reply:
		return <-reply
	case <-h.stopped:
		return 0
	}
}

// readPump drains the connection so pongs and close frames are processed
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.stopped:
		}
		c.conn.Close()
		close(c.done)
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Warn().Err(err).Str("user_id", c.info.UserID).Msg("websocket read error")
			}
			return
		}
	}
}

// writePump pumps messages from the hub to the websocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			// one JSON document per frame
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Upgrade upgrades HTTP connection to WebSocket
func Upgrade(w http.ResponseWriter, r *http.Request, responseHeader http.Header) (*websocket.Conn, error) {
	return upgrader.Upgrade(w, r, responseHeader)
}

var _ ports.AlertBroadcaster = (*Hub)(nil)
