package api

import (
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/thereceipt/printer-directory/internal/discover"
)

// WebSocket event types pushed to clients.
const (
	EventPrinterAdded   = "printer_added"
	EventPrinterRemoved = "printer_removed"
)

// WSMessage is the envelope for every WebSocket event.
type WSMessage struct {
	Event string                 `json:"event"`
	Data  map[string]interface{} `json:"data"`
}

// wsClient is one connected WebSocket subscriber.
type wsClient struct {
	conn   *websocket.Conn
	send   chan WSMessage
	mu     sync.Mutex
	closed bool
}

// trySend queues a message unless the client is gone or backed up.
func (c *wsClient) trySend(msg WSMessage) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.send <- msg:
	default:
		// Slow client; drop rather than block the scan loop.
	}
}

func (c *wsClient) shutdown() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

func (s *Server) handleWebSocket(c *gin.Context) {
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := &wsClient{
		conn: conn,
		send: make(chan WSMessage, 256),
	}

	s.addClient(client)
	s.log.Debug().Msg("websocket client connected")

	go client.writePump()
	go s.readPump(client)
}

func (c *wsClient) writePump() {
	defer c.conn.Close()

	for msg := range c.send {
		if err := c.conn.WriteJSON(msg); err != nil {
			return
		}
	}
}

// readPump drains the connection; the directory feed is push-only, so
// inbound frames are only read to detect disconnects.
func (s *Server) readPump(c *wsClient) {
	defer func() {
		s.removeClient(c)
		c.conn.Close()
		s.log.Debug().Msg("websocket client disconnected")
	}()

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				s.log.Debug().Err(err).Msg("websocket read error")
			}
			return
		}
	}
}

// clientSet tracks subscribers for broadcasts.
type clientSet struct {
	clients map[*wsClient]bool
	mu      sync.RWMutex
}

func newClientSet() *clientSet {
	return &clientSet{clients: make(map[*wsClient]bool)}
}

func (s *Server) addClient(c *wsClient) {
	s.ws.mu.Lock()
	s.ws.clients[c] = true
	s.ws.mu.Unlock()
}

func (s *Server) removeClient(c *wsClient) {
	s.ws.mu.Lock()
	delete(s.ws.clients, c)
	s.ws.mu.Unlock()
	c.shutdown()
}

func (s *Server) broadcast(msg WSMessage) {
	s.ws.mu.RLock()
	defer s.ws.mu.RUnlock()

	for client := range s.ws.clients {
		client.trySend(msg)
	}
}

// BroadcastPrinterAdded pushes an attach event to every subscriber.
func (s *Server) BroadcastPrinterAdded(p *discover.Printer) {
	s.broadcast(WSMessage{
		Event: EventPrinterAdded,
		Data: map[string]interface{}{
			"id":          p.ID,
			"source":      p.Source,
			"description": p.Description,
			"name":        p.Name,
		},
	})
}

// BroadcastPrinterRemoved pushes a detach event to every subscriber.
func (s *Server) BroadcastPrinterRemoved(printerID string) {
	s.broadcast(WSMessage{
		Event: EventPrinterRemoved,
		Data: map[string]interface{}{
			"id": printerID,
		},
	})
}
