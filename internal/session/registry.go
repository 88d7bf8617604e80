// Package session tracks live connections and their conversation history.
package session

import (
	"sync"
	"time"

	"github.com/cleoai/cleo/internal/logging"
)

// DefaultCapacity is the maximum number of concurrent sessions unless
// configured otherwise.
const DefaultCapacity = 5000

// Conn is the connection identity a session is keyed by. The registry owns
// the connection for the session's lifetime and closes it on eviction.
type Conn interface {
	ID() string
	Close() error
}

// Session is the per-connection state bundle: when the connection arrived
// and its conversation history. One session per live connection.
type Session struct {
	ConnectedAt time.Time
	History     *History

	conn Conn
}

// Conn returns the connection this session belongs to.
func (s *Session) Conn() Conn {
	return s.conn
}

// Registry is a bounded mapping from connection ID to session. Inserting
// past capacity evicts the oldest session first, so the registry never
// exceeds its capacity.
type Registry struct {
	mu       sync.Mutex
	capacity int
	sessions map[string]*Session
	log      *logging.Logger
}

// NewRegistry creates a registry holding at most capacity sessions.
// A capacity of zero or less falls back to DefaultCapacity.
func NewRegistry(capacity int, log *logging.Logger) *Registry {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Registry{
		capacity: capacity,
		sessions: make(map[string]*Session),
		log:      log.Sub("sessions"),
	}
}

// Connect registers a new session for conn with an empty history. If the
// registry is full, the oldest session is evicted first and its connection
// closed. Connect always succeeds.
func (r *Registry) Connect(conn Conn) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.sessions) >= r.capacity {
		r.evictOldestLocked()
	}

	sess := &Session{
		ConnectedAt: time.Now(),
		History:     NewHistory(),
		conn:        conn,
	}
	r.sessions[conn.ID()] = sess
	r.log.Debug().Str("connId", conn.ID()).Int("sessions", len(r.sessions)).Msg("session created")
	return sess
}

// Disconnect removes the session for the given connection ID. Removing an
// unknown ID is a no-op.
func (r *Registry) Disconnect(connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[connID]; !ok {
		return
	}
	delete(r.sessions, connID)
	r.log.Debug().Str("connId", connID).Int("sessions", len(r.sessions)).Msg("session removed")
}

// Lookup returns the session for the given connection ID.
func (r *Registry) Lookup(connID string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sess, ok := r.sessions[connID]
	return sess, ok
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// evictOldestLocked removes the session with the minimum ConnectedAt and
// closes its connection. Ties go to whichever is found first. Caller holds
// the lock.
func (r *Registry) evictOldestLocked() {
	var oldestID string
	var oldest *Session
	for id, sess := range r.sessions {
		if oldest == nil || sess.ConnectedAt.Before(oldest.ConnectedAt) {
			oldestID = id
			oldest = sess
		}
	}
	if oldest == nil {
		return
	}

	delete(r.sessions, oldestID)
	if err := oldest.conn.Close(); err != nil {
		r.log.Debug().Err(err).Str("connId", oldestID).Msg("closing evicted connection")
	}
	r.log.Info().Str("connId", oldestID).Time("connectedAt", oldest.ConnectedAt).Msg("evicted oldest session")
}
