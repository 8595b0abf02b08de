package views

import (
	"context"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/GrainArc/SiteMeasure/models"
)

const (
	pingInterval = 30 * time.Second
	writeTimeout = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// liveSession pushes annotation snapshots to one websocket client.
type liveSession struct {
	conn   *websocket.Conn
	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
}

func (s *liveSession) writeJSON(v interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return s.conn.WriteJSON(v)
}

func (s *liveSession) writeControl(messageType int, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.WriteControl(messageType, data, time.Now().Add(writeTimeout))
}

// Live upgrades to a websocket and streams a snapshot after every change.
// The first message is the current state. Client messages are ignored.
func (h *SiteController) Live(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("Failed to upgrade to websocket: %v", err)
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	session := &liveSession{conn: conn, ctx: ctx, cancel: cancel}

	updates, unsubscribe := h.ws.Subscribe()
	defer func() {
		unsubscribe()
		cancel()
		conn.Close()
	}()

	go session.readLoop()
	session.pushLoop(updates)
}

func (s *liveSession) readLoop() {
	defer s.cancel()
	for {
		if _, _, err := s.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			return
		}
	}
}

func (s *liveSession) pushLoop(updates <-chan models.AnnotationSnapshot) {
	pingTicker := time.NewTicker(pingInterval)
	defer pingTicker.Stop()
	for {
		select {
		case <-s.ctx.Done():
			return
		case snap, ok := <-updates:
			if !ok {
				// dropped as a slow subscriber
				s.writeControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "too slow"))
				return
			}
			if err := s.writeJSON(snap); err != nil {
				log.Printf("live push failed: %v", err)
				return
			}
		case <-pingTicker.C:
			if err := s.writeControl(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
