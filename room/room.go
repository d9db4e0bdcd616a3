// room/room.go
package room

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/harelmarin/CultureClash/logger"
	"github.com/harelmarin/CultureClash/state"
	"github.com/harelmarin/CultureClash/timer"
)

// Settings holds the per-room timing knobs.
type Settings struct {
	AcceptDeadline time.Duration
	ForfeitGrace   time.Duration
}

// Room is one proposed or running match between exactly two players. The two
// participants are held as stable player ids; the transport a player is
// reachable on is resolved at delivery time, so reconnects never rewrite room
// state. All mutations serialize on the room mutex.
type Room struct {
	ID           string
	StateMachine state.StateMachine
	CreatedAt    time.Time

	playerOneID string
	playerTwoID string

	broadcaster Broadcaster
	presence    Presence
	svc         state.MatchService
	timers      *timer.Manager
	settings    Settings

	mutex     sync.Mutex
	ticker    *time.Ticker
	closeChan chan bool
	closed    bool
	onClose   func(r *Room, reason string)
}

// NewRoom creates a room for the given pairing. The room is inert until
// start is called: starting is kept separate so the manager can index the
// room before the proposal's matchFound notification goes out.
func NewRoom(id, playerOneID, playerTwoID string, b Broadcaster, p Presence,
	svc state.MatchService, timers *timer.Manager, settings Settings) *Room {
	return &Room{
		ID:          id,
		playerOneID: playerOneID,
		playerTwoID: playerTwoID,
		broadcaster: b,
		presence:    p,
		svc:         svc,
		timers:      timers,
		settings:    settings,
		CreatedAt:   time.Now(),
		closeChan:   make(chan bool),
	}
}

// start enters the proposal state, arming the acceptance deadline.
func (r *Room) start() {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	initialState := state.NewProposalState(r, r.settings.AcceptDeadline, r.settings.ForfeitGrace)
	r.StateMachine = state.NewBaseStateMachine(initialState)

	r.ticker = time.NewTicker(state.TickInterval)
	go r.loop()
}

// --- state.RoomContext ---

func (r *Room) GetID() string {
	return r.ID
}

func (r *Room) PlayerOneID() string {
	return r.playerOneID
}

func (r *Room) PlayerTwoID() string {
	return r.playerTwoID
}

func (r *Room) ChangeState(newState state.State) error {
	return r.StateMachine.ChangeState(newState)
}

func (r *Room) Broadcast(event string, payload interface{}) error {
	return r.broadcaster.BroadcastToRoom(r.ID, event, payload)
}

func (r *Room) SendToUser(userID string, event string, payload interface{}) error {
	return r.broadcaster.SendToUser(userID, event, payload)
}

func (r *Room) IsOnline(userID string) bool {
	return r.presence.IsOnline(userID)
}

func (r *Room) Service() state.MatchService {
	return r.svc
}

// ScheduleForfeit arms the abandonment grace timer. The callback re-enters
// the room through the mutex and only acts if the session is still playing,
// unfinished and the player has not come back; the state check is the guard,
// not the timer itself.
func (r *Room) ScheduleForfeit(userID string, after time.Duration) {
	r.timers.AddTimer(after, func() {
		r.mutex.Lock()
		defer r.mutex.Unlock()
		if r.closed {
			return
		}
		if playing, ok := r.StateMachine.GetCurrentState().(*state.PlayingState); ok {
			playing.ForfeitAbandoned(userID)
		}
	})
}

// Teardown destroys the room. Safe to call more than once; only the first
// takes effect.
func (r *Room) Teardown(reason string) {
	if r.closed {
		return
	}
	r.closed = true
	close(r.closeChan)

	logger.Log.Infof("Room %s torn down (%s)", r.ID, reason)
	if r.onClose != nil {
		r.onClose(r, reason)
	}
}

// --- event entry points (all serialize on the room mutex) ---

// HandleEvent routes an inbound event to the current state.
func (r *Room) HandleEvent(player state.Player, event string, data json.RawMessage) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if r.closed || r.StateMachine == nil {
		return state.ErrWrongState
	}
	return r.StateMachine.GetCurrentState().HandleEvent(player, event, data)
}

// HandleDisconnect reacts to a participant losing its connection.
func (r *Room) HandleDisconnect(userID string) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if r.closed || r.StateMachine == nil {
		return
	}
	r.StateMachine.GetCurrentState().HandleDisconnect(userID)
}

// HasPlayer reports whether the user is one of the two participants.
func (r *Room) HasPlayer(userID string) bool {
	return userID == r.playerOneID || userID == r.playerTwoID
}

// InProposal reports whether the room still awaits acceptance.
func (r *Room) InProposal() bool {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return !r.closed && r.StateMachine != nil &&
		r.StateMachine.GetCurrentState().GetID() == "proposal"
}

// loop drives the current state's countdowns.
func (r *Room) loop() {
	for {
		select {
		case <-r.ticker.C:
			r.update()
		case <-r.closeChan:
			r.ticker.Stop()
			return
		}
	}
}

func (r *Room) update() {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if r.closed {
		return
	}
	r.StateMachine.GetCurrentState().OnUpdate()
}

// --- room manager ---

// Manager owns every live room and the player -> room index.
type Manager struct {
	rooms    map[string]*Room
	byUser   map[string]string // user id -> room id
	timers   *timer.Manager
	settings Settings
	onClosed func(roomID, reason string)
	mutex    sync.RWMutex
}

func NewRoomManager(timers *timer.Manager, settings Settings) *Manager {
	return &Manager{
		rooms:    make(map[string]*Room),
		byUser:   make(map[string]string),
		timers:   timers,
		settings: settings,
	}
}

// SetOnClosed registers a hook invoked after a room is removed.
func (m *Manager) SetOnClosed(fn func(roomID, reason string)) {
	m.onClosed = fn
}

// CreateRoom creates, indexes and starts a room for the pairing. Indexing
// happens before start so the matchFound fan-out already resolves.
func (m *Manager) CreateRoom(id, playerOneID, playerTwoID string, b Broadcaster,
	p Presence, svc state.MatchService) *Room {
	room := NewRoom(id, playerOneID, playerTwoID, b, p, svc, m.timers, m.settings)
	room.onClose = m.remove

	m.mutex.Lock()
	m.rooms[id] = room
	m.byUser[playerOneID] = id
	m.byUser[playerTwoID] = id
	m.mutex.Unlock()

	room.start()
	return room
}

func (m *Manager) remove(r *Room, reason string) {
	m.mutex.Lock()
	delete(m.rooms, r.ID)
	if m.byUser[r.playerOneID] == r.ID {
		delete(m.byUser, r.playerOneID)
	}
	if m.byUser[r.playerTwoID] == r.ID {
		delete(m.byUser, r.playerTwoID)
	}
	m.mutex.Unlock()

	if m.onClosed != nil {
		m.onClosed(r.ID, reason)
	}
}

func (m *Manager) GetRoom(id string) (*Room, bool) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	room, exists := m.rooms[id]
	return room, exists
}

// GetRoomByUser returns the room the player is currently bound to, if any.
func (m *Manager) GetRoomByUser(userID string) (*Room, bool) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	id, ok := m.byUser[userID]
	if !ok {
		return nil, false
	}
	room, exists := m.rooms[id]
	return room, exists
}

// PlayerIDs returns the two participants of a room, for fan-out.
func (m *Manager) PlayerIDs(roomID string) ([]string, bool) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	room, exists := m.rooms[roomID]
	if !exists {
		return nil, false
	}
	return []string{room.playerOneID, room.playerTwoID}, true
}

func (m *Manager) Count() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.rooms)
}
