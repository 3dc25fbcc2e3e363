package realtime

import (
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	sendBufferSize = 32
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Browser admin clients connect cross-origin in development
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Client is one websocket subscriber in an organization room
type Client struct {
	Hub            *Hub
	Conn           *websocket.Conn
	OrganizationID string
	UserID         string
	Send           chan []byte
}

// ServeWS upgrades an authenticated request and attaches the client to the
// hub's room for its organization
func ServeWS(hub *Hub, w http.ResponseWriter, r *http.Request, organizationID, userID string) error {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	client := &Client{
		Hub:            hub,
		Conn:           conn,
		OrganizationID: organizationID,
		UserID:         userID,
		Send:           make(chan []byte, sendBufferSize),
	}

	hub.Register <- client

	go client.writePump()
	go client.readPump()

	return nil
}

// readPump drains the connection. Clients are subscribe-only; inbound
// frames beyond control messages are discarded.
func (c *Client) readPump() {
	defer func() {
		c.Hub.Unregister <- c
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(512)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("⚠️ Websocket read error: %v", err)
			}
			return
		}
	}
}

// writePump forwards hub events to the connection and keeps it alive with
// pings
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Hub closed the channel
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
