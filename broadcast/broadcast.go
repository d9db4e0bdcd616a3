// broadcast/broadcast.go
package broadcast

import (
	"errors"

	"github.com/harelmarin/CultureClash/room"
	"github.com/harelmarin/CultureClash/session"
)

var (
	ErrRoomNotFound = errors.New("room not found")
	ErrUserOffline  = errors.New("user has no active connection")
)

// Broadcaster delivers events to rooms and players. Player delivery resolves
// the active connection at send time, so a reconnect swaps the transport
// without touching room state.
type Broadcaster interface {
	BroadcastToRoom(roomID string, event string, payload interface{}) error
	SendToUser(userID string, event string, payload interface{}) error
	IsOnline(userID string) bool
}

// RoomBroadcaster fans out through the room and session managers.
type RoomBroadcaster struct {
	roomManager    *room.Manager
	sessionManager *session.Manager
}

func NewRoomBroadcaster(roomManager *room.Manager, sessionManager *session.Manager) *RoomBroadcaster {
	return &RoomBroadcaster{
		roomManager:    roomManager,
		sessionManager: sessionManager,
	}
}

func (b *RoomBroadcaster) BroadcastToRoom(roomID string, event string, payload interface{}) error {
	userIDs, exists := b.roomManager.PlayerIDs(roomID)
	if !exists {
		return ErrRoomNotFound
	}

	for _, userID := range userIDs {
		// A disconnected participant is skipped, not an error; it gets
		// its own notification path.
		b.SendToUser(userID, event, payload)
	}
	return nil
}

func (b *RoomBroadcaster) SendToUser(userID string, event string, payload interface{}) error {
	sess := b.sessionManager.ActiveSession(userID)
	if sess == nil {
		return ErrUserOffline
	}
	return sess.Send(event, payload)
}

func (b *RoomBroadcaster) IsOnline(userID string) bool {
	return b.sessionManager.ActiveSession(userID) != nil
}
