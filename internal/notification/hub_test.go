package notification

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestSession(userID string, queue int) *session {
	return &session{
		userID: userID,
		send:   make(chan []byte, queue),
		done:   make(chan struct{}),
	}
}

func TestHubSendDeliversToLiveSessions(t *testing.T) {
	h := NewHub(zap.NewNop(), nil, time.Second, time.Second)
	s := newTestSession("u-1", 4)
	h.register(s)
	defer h.unregister(s)

	delivered := h.Send("u-1", []byte(`{"type":"pkl_approved"}`))
	require.Equal(t, 1, delivered)
	assert.Equal(t, []byte(`{"type":"pkl_approved"}`), <-s.send)
	assert.Equal(t, 0, h.Send("u-2", []byte(`{}`)))
}

// A pump that gives up on a failed write marks the session dead before Serve
// gets around to unregistering it. A concurrent Send must skip the session
// instead of panicking on its queue.
func TestHubSendSkipsDeadSession(t *testing.T) {
	h := NewHub(zap.NewNop(), nil, time.Second, time.Second)
	s := newTestSession("u-1", 1)
	h.register(s)

	s.close()
	require.NotPanics(t, func() {
		assert.Equal(t, 0, h.Send("u-1", []byte(`{}`)))
	})

	h.unregister(s)
	assert.Equal(t, 0, h.SessionCount())
}

func TestHubSendDropsSlowSession(t *testing.T) {
	h := NewHub(zap.NewNop(), nil, time.Second, time.Second)
	s := newTestSession("u-1", 1)
	h.register(s)
	defer h.unregister(s)

	require.Equal(t, 1, h.Send("u-1", []byte(`a`)))
	// queue full: the session is closed rather than blocking the relay
	assert.Equal(t, 0, h.Send("u-1", []byte(`b`)))
	assert.True(t, s.closed())
	// later sends skip it without touching the queue
	assert.Equal(t, 0, h.Send("u-1", []byte(`c`)))
}

func TestHubSessionCount(t *testing.T) {
	h := NewHub(zap.NewNop(), nil, time.Second, time.Second)
	a := newTestSession("u-1", 1)
	b := newTestSession("u-1", 1)
	c := newTestSession("u-2", 1)
	for _, s := range []*session{a, b, c} {
		h.register(s)
	}
	assert.Equal(t, 3, h.SessionCount())

	h.unregister(b)
	assert.Equal(t, 2, h.SessionCount())
	h.unregister(a)
	h.unregister(c)
	assert.Equal(t, 0, h.SessionCount())
}
