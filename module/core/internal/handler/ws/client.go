package ws

import (
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// subscription is the message a client sends to join or leave a group.
type subscription struct {
	Action string `json:"action"` // join | leave
	Group  string `json:"group"`
}

type Client struct {
	id   string
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

func newClient(hub *Hub, conn *websocket.Conn) *Client {
	return &Client{
		id:   uuid.NewString(),
		hub:  hub,
		conn: conn,
		send: make(chan []byte, sendBuffer),
	}
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, payload, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("subscriber %s read: %v", c.id, err)
			}
			return
		}

		var sub subscription
		if err := json.Unmarshal(payload, &sub); err != nil {
			c.sendJSON(map[string]string{"error": "invalid subscription message"})
			continue
		}

		switch sub.Action {
		case "join":
			if !c.hub.Join(c, sub.Group) {
				c.sendJSON(map[string]string{"error": "unknown group: " + sub.Group})
				continue
			}
			c.sendJSON(map[string]string{"status": "joined", "group": sub.Group})
		case "leave":
			c.hub.Leave(c, sub.Group)
			c.sendJSON(map[string]string{"status": "left", "group": sub.Group})
		default:
			c.sendJSON(map[string]string{"error": "unknown action: " + sub.Action})
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case body, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, body); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// sendJSON queues a control response; dropped when the buffer is full, like
// any other frame.
func (c *Client) sendJSON(v any) {
	body, err := json.Marshal(v)
	if err != nil {
		return
	}
	select {
	case c.send <- body:
	default:
	}
}
