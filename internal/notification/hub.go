package notification

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/maganghub/maganghub-api/internal/models"
)

// sessionMetrics tracks the connected session gauge.
type sessionMetrics interface {
	SessionOpened()
	SessionClosed()
}

// Hub relays workflow events to connected WebSocket sessions, keyed by user.
// A user may hold several sessions (multiple tabs); every session gets the
// event. Slow consumers are dropped rather than allowed to block the relay.
type Hub struct {
	upgrader      websocket.Upgrader
	logger        *zap.Logger
	metrics       sessionMetrics
	writeTimeout  time.Duration
	pingInterval  time.Duration
	sendQueueSize int

	mu       sync.RWMutex
	sessions map[string]map[*session]struct{}
}

// session's send channel is never closed; done marks the session dead so a
// concurrent Send cannot race a closing pump onto a closed channel.
type session struct {
	userID string
	conn   *websocket.Conn
	send   chan []byte
	done   chan struct{}
	once   sync.Once
}

func (s *session) close() {
	s.once.Do(func() {
		close(s.done)
		if s.conn != nil {
			_ = s.conn.Close()
		}
	})
}

func (s *session) closed() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

// NewHub constructs the relay hub.
func NewHub(logger *zap.Logger, metrics sessionMetrics, writeTimeout, pingInterval time.Duration) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	if writeTimeout <= 0 {
		writeTimeout = 10 * time.Second
	}
	if pingInterval <= 0 {
		pingInterval = 30 * time.Second
	}
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Token auth already gates the endpoint; cross-origin browser
			// clients are expected.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		logger:        logger,
		metrics:       metrics,
		writeTimeout:  writeTimeout,
		pingInterval:  pingInterval,
		sendQueueSize: 16,
		sessions:      make(map[string]map[*session]struct{}),
	}
}

// Serve upgrades the request and keeps the session registered until the
// connection drops. Blocks until the read side closes.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, userID string) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	s := &session{
		userID: userID,
		conn:   conn,
		send:   make(chan []byte, h.sendQueueSize),
		done:   make(chan struct{}),
	}
	h.register(s)
	defer h.unregister(s)

	go h.writePump(s)
	h.readPump(s)
	return nil
}

// Send delivers raw bytes to every session of the given user. Returns how many
// sessions received it.
func (h *Hub) Send(userID string, payload []byte) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	for s := range h.sessions[userID] {
		if s.closed() {
			// A pump gave up but Serve has not unregistered yet.
			continue
		}
		select {
		case s.send <- payload:
			delivered++
		default:
			// Queue full: the consumer stopped reading. Close and let the
			// pumps unwind; the client reconnects with fresh state.
			h.logger.Warn("dropping slow websocket session", zap.String("user_id", userID))
			s.close()
		}
	}
	return delivered
}

// SendEvent marshals and delivers an event envelope.
func (h *Hub) SendEvent(userID string, event models.Event) int {
	payload, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("failed to marshal event", zap.Error(err))
		return 0
	}
	return h.Send(userID, payload)
}

// SessionCount returns the total number of live sessions.
func (h *Hub) SessionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	total := 0
	for _, set := range h.sessions {
		total += len(set)
	}
	return total
}

// Close tears down every session, typically during shutdown.
func (h *Hub) Close() {
	h.mu.Lock()
	sessions := make([]*session, 0)
	for _, set := range h.sessions {
		for s := range set {
			sessions = append(sessions, s)
		}
	}
	h.mu.Unlock()

	for _, s := range sessions {
		s.close()
	}
}

func (h *Hub) register(s *session) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.sessions[s.userID]
	if !ok {
		set = make(map[*session]struct{})
		h.sessions[s.userID] = set
	}
	set[s] = struct{}{}
	if h.metrics != nil {
		h.metrics.SessionOpened()
	}
	h.logger.Debug("websocket session opened", zap.String("user_id", s.userID))
}

func (h *Hub) unregister(s *session) {
	h.mu.Lock()
	if set, ok := h.sessions[s.userID]; ok {
		if _, present := set[s]; present {
			delete(set, s)
			if len(set) == 0 {
				delete(h.sessions, s.userID)
			}
			if h.metrics != nil {
				h.metrics.SessionClosed()
			}
		}
	}
	h.mu.Unlock()
	s.close()
}

func (h *Hub) readPump(s *session) {
	s.conn.SetReadLimit(512)
	_ = s.conn.SetReadDeadline(time.Now().Add(h.pingInterval * 2))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(h.pingInterval * 2))
	})
	for {
		// Clients don't speak; the read loop exists to notice disconnects
		// and answer pings.
		if _, _, err := s.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writePump(s *session) {
	ticker := time.NewTicker(h.pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			_ = s.conn.WriteControl(websocket.CloseMessage, []byte{}, time.Now().Add(h.writeTimeout))
			return
		case payload := <-s.send:
			_ = s.conn.SetWriteDeadline(time.Now().Add(h.writeTimeout))
			if err := s.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				s.close()
				return
			}
		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(h.writeTimeout))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				s.close()
				return
			}
		}
	}
}
