// models/models.go
package models

import (
	"time"
)

// GameStatus mirrors the lifecycle of a match row.
type GameStatus string

const (
	StatusPending  GameStatus = "PENDING"
	StatusFinished GameStatus = "FINISHED"
)

// User is a registered player as stored in the user directory.
type User struct {
	ID         string    `json:"id"`
	Email      string    `json:"email"`
	Username   string    `json:"username"`
	ProfilePic string    `json:"profilePic,omitempty"`
	Points     int       `json:"points"`
	Victories  int       `json:"victories"`
	Defeats    int       `json:"defeats"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Choice is one answer option of a question.
type Choice struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	IsCorrect bool   `json:"isCorrect"`
}

// Question is a quiz question with its choices.
type Question struct {
	ID              string   `json:"id"`
	Text            string   `json:"text"`
	CorrectAnswerID string   `json:"correctAnswerId,omitempty"`
	Choices         []Choice `json:"choices"`
}

// Match is the durable record of a head-to-head game.
type Match struct {
	ID             string     `json:"id"`
	PlayerOneID    string     `json:"playerOneId"`
	PlayerTwoID    string     `json:"playerTwoId"`
	PlayerOneScore *int       `json:"playerOneScore,omitempty"`
	PlayerTwoScore *int       `json:"playerTwoScore,omitempty"`
	WinnerID       *string    `json:"winnerId,omitempty"`
	Status         GameStatus `json:"status"`
	Questions      []Question `json:"questions"`
	CreatedAt      time.Time  `json:"createdAt"`
}

// MatchOutcome summarizes a committed finish: final scores, winner and the
// rating movement of both players. WinnerID is empty on a draw.
type MatchOutcome struct {
	MatchID        string `json:"matchId"`
	WinnerID       string `json:"winnerId,omitempty"`
	PlayerOneScore int    `json:"playerOneScore"`
	PlayerTwoScore int    `json:"playerTwoScore"`
	PlayerOneElo   int    `json:"playerOneElo"`
	PlayerTwoElo   int    `json:"playerTwoElo"`
	Draw           bool   `json:"draw"`
}

// PlayerStats aggregates a user's match history counters.
type PlayerStats struct {
	TotalGames int `json:"total_games"`
	Wins       int `json:"wins"`
	Losses     int `json:"losses"`
	Points     int `json:"points"`
}
