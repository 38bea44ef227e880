package server

import (
	"context"
	"encoding/json"
	"net/http"

	"spread-observer/src/models"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// -----------------------------------------------------------------------------
// Hub Pattern Implementation
// -----------------------------------------------------------------------------

// handleWebsockets is the main Hub loop. It alone touches s.clients and is the
// only writer to (and closer of) every client's send channel.
func (s *FastAPIServer) handleWebsockets() {
	for {
		select {
		case <-s.done:
			for client := range s.clients {
				delete(s.clients, client)
				close(client.send)
			}
			s.setConnections(0)
			return

		case client := <-s.register:
			s.clients[client] = struct{}{}
			s.setConnections(len(s.clients))

			if latest := s.latest(); latest != nil {
				client.send <- latest
			}

		case client := <-s.unregister:
			if _, ok := s.clients[client]; ok {
				delete(s.clients, client)
				close(client.send)
				s.setConnections(len(s.clients))
			}

		case client := <-s.replay:
			if _, ok := s.clients[client]; !ok {
				continue
			}
			if latest := s.latest(); latest != nil {
				select {
				case client.send <- latest:
				default:
					s.Logger.Debug("Replay skipped for %s: send queue full", client.addr())
				}
			}

		case message := <-s.broadcast:
			for client := range s.clients {
				select {
				case client.send <- message:
				default:
					// Slow consumer: drop it rather than stall the hub
					delete(s.clients, client)
					close(client.send)
				}
			}
			s.setConnections(len(s.clients))
		}
	}
}

// -----------------------------------------------------------------------------
// Data Exchange Interface Implementation
// -----------------------------------------------------------------------------

// Broadcast records snapshot as the latest state and queues it for every
// connected client. It never blocks: when the queue is full the snapshot is
// only kept as latest.
func (s *FastAPIServer) Broadcast(snapshot *models.MSnapshot) {
	if snapshot == nil {
		return
	}

	s.stateMutex.Lock()
	s.latestState = snapshot
	s.stateMutex.Unlock()

	select {
	case <-s.done:
	case s.broadcast <- snapshot:
	default:
		s.Logger.Warning("Broadcast queue full, snapshot not pushed")
	}
}

// -----------------------------------------------------------------------------
// Helper Methods
// -----------------------------------------------------------------------------

func (s *FastAPIServer) latest() *models.MSnapshot {
	s.stateMutex.RLock()
	defer s.stateMutex.RUnlock()
	return s.latestState
}

func (s *FastAPIServer) setConnections(n int) {
	s.stateMutex.Lock()
	s.connections = n
	s.stateMutex.Unlock()
}

// -----------------------------------------------------------------------------
// WebSocket Handlers
// -----------------------------------------------------------------------------

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// -----------------------------------------------------------------------------

func (s *FastAPIServer) handleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.Logger.Info("Failed to upgrade websocket: %v", err)
		return
	}

	client := newClient(s, conn)

	select {
	case s.register <- client:
	case <-s.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

// -----------------------------------------------------------------------------
// Client Message Handling
// -----------------------------------------------------------------------------

// HandleClientMessage answers "refresh" with a fresh snapshot (also pushed to
// everyone) and "latest" with the last one.
func (s *FastAPIServer) HandleClientMessage(client *Client, message []byte) {
	var cmd models.MClientCommand
	if err := json.Unmarshal(message, &cmd); err != nil {
		s.Logger.Info("Bad command from %s: %v, disconnecting", client.addr(), err)
		client.close()
		return
	}

	switch cmd.Command {
	case "refresh":
		s.Broadcast(s.Session.Snapshot(context.Background()))
	case "latest":
		select {
		case s.replay <- client:
		case <-s.done:
		}
	default:
		s.Logger.Debug("Ignoring unknown client command %q", cmd.Command)
	}
}
