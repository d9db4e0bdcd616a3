// persistence/interface.go
package persistence

import (
	"errors"

	"github.com/harelmarin/CultureClash/models"
)

// Database is the durable store behind the coordinator: the user directory,
// the question bank and the match record store.
type Database interface {
	UserExists(id string) (bool, error)
	GetUser(id string) (*models.User, error)
	SampleQuestions(n int) ([]models.Question, error)
	CreateMatch(id, playerOneID, playerTwoID string, questionIDs []string) (*models.Match, error)
	// FinishMatch commits the final scores, winner and both players' new
	// ratings and win/loss counters in one transaction.
	FinishMatch(result *MatchResult) error
	GetPlayerStats(userID string) (*models.PlayerStats, error)
	Close() error
}

// MatchResult is everything FinishMatch persists. WinnerID empty means draw;
// on a draw neither victories nor defeats move.
type MatchResult struct {
	MatchID         string
	PlayerOneID     string
	PlayerTwoID     string
	PlayerOneScore  int
	PlayerTwoScore  int
	PlayerOnePoints int
	PlayerTwoPoints int
	WinnerID        string
}

var (
	ErrRecordNotFound = errors.New("record not found")
)
