// state/interfaces.go
package state

import (
	"time"

	"github.com/harelmarin/CultureClash/models"
)

// Player defines the minimal interface for a connected player that a state
// needs to interact with.
type Player interface {
	GetID() string
	UserID() string
}

// RoomContext defines the interface a match room must implement to be driven
// by the state machine. This breaks the import cycle between room and state.
type RoomContext interface {
	GetID() string
	PlayerOneID() string
	PlayerTwoID() string
	ChangeState(newState State) error
	Broadcast(event string, payload interface{}) error
	SendToUser(userID string, event string, payload interface{}) error
	IsOnline(userID string) bool
	// ScheduleForfeit arms the abandonment grace timer for the given player.
	ScheduleForfeit(userID string, after time.Duration)
	// Teardown destroys the room and all its bookkeeping.
	Teardown(reason string)
	Service() MatchService
}

// MatchService is the slice of the match service consumed by the states:
// durable match creation on confirmation, and the one-time outcome commit.
type MatchService interface {
	Create(matchID, playerOneID, playerTwoID string) (*models.Match, error)
	Finish(match *models.Match, playerOneScore, playerTwoScore int, winnerID string) (*models.MatchOutcome, error)
}
