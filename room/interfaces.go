package room

// Broadcaster defines the delivery interface a room needs. It is defined here
// to break the import cycle between room and broadcast.
type Broadcaster interface {
	BroadcastToRoom(roomID string, event string, payload interface{}) error
	SendToUser(userID string, event string, payload interface{}) error
}

// Presence answers whether a player currently has an active connection.
type Presence interface {
	IsOnline(userID string) bool
}
