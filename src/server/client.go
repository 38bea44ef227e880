package server

import (
	"time"

	"spread-observer/src/models"

	"github.com/gorilla/websocket"
)

const (
	writeWait     = 2 * time.Second
	pongWait      = 60 * time.Second
	pingPeriod    = (pongWait * 9) / 10
	maxCommandLen = 4096
	sendQueueLen  = 16
)

// -----------------------------------------------------------------------------
// Client is one websocket subscriber. The hub owns send; the client only
// drains it in writePump.
// -----------------------------------------------------------------------------

type Client struct {
	hub  *FastAPIServer
	conn *websocket.Conn
	send chan *models.MSnapshot
}

func newClient(hub *FastAPIServer, conn *websocket.Conn) *Client {
	return &Client{
		hub:  hub,
		conn: conn,
		send: make(chan *models.MSnapshot, sendQueueLen),
	}
}

// addr is the remote address used in log lines.
func (c *Client) addr() string {
	if c.conn == nil {
		return "detached client"
	}
	return c.conn.RemoteAddr().String()
}

func (c *Client) close() {
	if c.conn != nil {
		c.conn.Close()
	}
}

// -----------------------------------------------------------------------------

// readPump forwards client commands to the server until the socket fails, then
// asks the hub to drop the client.
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.close()
		c.hub.Logger.Debug("Client %s disconnected", c.addr())
	}()

	c.conn.SetReadLimit(maxCommandLen)
	c.extendReadDeadline()
	c.conn.SetPongHandler(func(string) error {
		c.extendReadDeadline()
		return nil
	})

	for {
		_, command, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.Logger.Info("Client %s read error: %v", c.addr(), err)
			}
			return
		}
		c.hub.HandleClientMessage(c, command)
	}
}

func (c *Client) extendReadDeadline() {
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
}

// -----------------------------------------------------------------------------

// writePump pushes queued snapshots as JSON and keeps the connection alive
// with pings. A closed send channel means the hub dropped the client.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.close()
	}()

	for {
		select {
		case snapshot, open := <-c.send:
			if !open {
				c.writeFrame(websocket.CloseMessage, []byte{})
				return
			}
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(snapshot); err != nil {
				c.hub.Logger.Info("Client %s write error: %v", c.addr(), err)
				return
			}

		case <-ticker.C:
			if err := c.writeFrame(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) writeFrame(messageType int, data []byte) error {
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(messageType, data)
}
