// session/session.go
package session

import (
	"sync"
	"time"

	"github.com/harelmarin/CultureClash/network"
)

// Session is one live connection, optionally bound to a player after the
// authenticate handshake.
type Session struct {
	ID        string
	Conn      network.Connection
	CreatedAt time.Time

	userID     string
	lastActive time.Time
	mutex      sync.RWMutex
}

func NewSession(id string, conn network.Connection) *Session {
	return &Session{
		ID:         id,
		Conn:       conn,
		CreatedAt:  time.Now(),
		lastActive: time.Now(),
	}
}

func (s *Session) GetID() string {
	return s.ID
}

// UserID returns the bound player id, or "" before authentication.
func (s *Session) UserID() string {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.userID
}

func (s *Session) setUserID(id string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.userID = id
}

// Touch records activity. Sends happen from the read loop, room ticks and
// timer callbacks alike, so the timestamp is guarded.
func (s *Session) Touch() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.lastActive = time.Now()
}

// LastActive returns the time of the last send or received event.
func (s *Session) LastActive() time.Time {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.lastActive
}

func (s *Session) Send(event string, payload interface{}) error {
	s.Touch()
	return s.Conn.Send(event, payload)
}

func (s *Session) Close() error {
	return s.Conn.Close()
}

// Manager is the connection registry: it tracks every live session and, per
// player, which one is the active delivery target. A player may hold several
// connections (tabs, devices); at most one is active.
type Manager struct {
	sessions map[string]*Session // session id -> session
	byUser   map[string][]*Session
	active   map[string]string // user id -> active session id
	mutex    sync.RWMutex
}

func NewManager() *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
		byUser:   make(map[string][]*Session),
		active:   make(map[string]string),
	}
}

// Add registers a freshly connected, not yet authenticated session.
func (m *Manager) Add(sess *Session) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.sessions[sess.ID] = sess
}

// Bind attaches a player identity to the session. The first bound connection
// of a player becomes the active one; later connections join the set without
// stealing the active slot. Re-binding is safe: binding the same identity
// again only re-claims a vacant active slot, and binding a different identity
// fully unlinks the session from the previous player first.
func (m *Manager) Bind(sess *Session, userID string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	previous := sess.UserID()
	if previous == userID {
		if _, ok := m.active[userID]; !ok {
			m.active[userID] = sess.ID
		}
		return
	}
	if previous != "" {
		m.unlink(sess, previous)
	}

	sess.setUserID(userID)
	m.byUser[userID] = append(m.byUser[userID], sess)
	if _, ok := m.active[userID]; !ok {
		m.active[userID] = sess.ID
	}
}

// unlink detaches the session from a player's bookkeeping. Caller holds the
// manager mutex.
func (m *Manager) unlink(sess *Session, userID string) {
	list := m.byUser[userID]
	for i, s := range list {
		if s.ID == sess.ID {
			m.byUser[userID] = append(list[:i], list[i+1:]...)
			break
		}
	}
	if len(m.byUser[userID]) == 0 {
		delete(m.byUser, userID)
	}
	if m.active[userID] == sess.ID {
		delete(m.active, userID)
	}
}

// ActiveSession returns the connection currently authoritative for delivery
// to the player, or nil.
func (m *Manager) ActiveSession(userID string) *Session {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	id, ok := m.active[userID]
	if !ok {
		return nil
	}
	return m.sessions[id]
}

// Remove unregisters the session. If it was the player's active connection
// the active slot is cleared; another connection is not promoted, the player
// has to re-announce itself.
func (m *Manager) Remove(sessionID string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	sess, ok := m.sessions[sessionID]
	if !ok {
		return
	}
	delete(m.sessions, sessionID)

	if userID := sess.UserID(); userID != "" {
		m.unlink(sess, userID)
	}
}

func (m *Manager) Get(sessionID string) (*Session, bool) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	sess, exists := m.sessions[sessionID]
	return sess, exists
}

// GetByUserID returns every connection bound to the player.
func (m *Manager) GetByUserID(userID string) []*Session {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	result := make([]*Session, len(m.byUser[userID]))
	copy(result, m.byUser[userID])
	return result
}
