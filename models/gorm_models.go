// models/gorm_models.go
package models

import (
	"time"
)

// GormUser — users table.
type GormUser struct {
	ID         string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Email      string `gorm:"uniqueIndex;not null"`
	Username   string `gorm:"uniqueIndex;not null"`
	Password   string `gorm:"not null"`
	ProfilePic string
	Points     int `gorm:"default:0"`
	Victories  int `gorm:"default:0"`
	Defeats    int `gorm:"default:0"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (GormUser) TableName() string { return "users" }

// GormQuestion — questions table.
type GormQuestion struct {
	ID              string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Text            string `gorm:"not null"`
	CorrectAnswerID string
	Choices         []GormChoice `gorm:"foreignKey:QuestionID"`
	CreatedAt       time.Time
}

func (GormQuestion) TableName() string { return "questions" }

// GormChoice — choices table.
type GormChoice struct {
	ID         string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Text       string `gorm:"type:text;not null"`
	IsCorrect  bool   `gorm:"not null"`
	QuestionID string `gorm:"type:uuid;index;not null"`
}

func (GormChoice) TableName() string { return "choices" }

// GormMatch — matchmaking_sessions table.
type GormMatch struct {
	ID             string `gorm:"type:uuid;primaryKey"`
	PlayerOneID    string `gorm:"type:uuid;index;not null"`
	PlayerTwoID    string `gorm:"type:uuid;index;not null"`
	PlayerOneScore *int
	PlayerTwoScore *int
	WinnerID       *string        `gorm:"type:uuid"`
	Status         string         `gorm:"not null;default:PENDING"`
	Questions      []GormQuestion `gorm:"many2many:match_questions;"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (GormMatch) TableName() string { return "matchmaking_sessions" }

// ToUser converts the storage row to the domain shape.
func (u *GormUser) ToUser() *User {
	return &User{
		ID:         u.ID,
		Email:      u.Email,
		Username:   u.Username,
		ProfilePic: u.ProfilePic,
		Points:     u.Points,
		Victories:  u.Victories,
		Defeats:    u.Defeats,
		CreatedAt:  u.CreatedAt,
	}
}

// ToQuestion converts the storage row, including choices.
func (q *GormQuestion) ToQuestion() Question {
	choices := make([]Choice, 0, len(q.Choices))
	for _, c := range q.Choices {
		choices = append(choices, Choice{ID: c.ID, Text: c.Text, IsCorrect: c.IsCorrect})
	}
	return Question{
		ID:              q.ID,
		Text:            q.Text,
		CorrectAnswerID: q.CorrectAnswerID,
		Choices:         choices,
	}
}

// ToMatch converts the storage row, including assigned questions.
func (m *GormMatch) ToMatch() *Match {
	questions := make([]Question, 0, len(m.Questions))
	for i := range m.Questions {
		questions = append(questions, m.Questions[i].ToQuestion())
	}
	return &Match{
		ID:             m.ID,
		PlayerOneID:    m.PlayerOneID,
		PlayerTwoID:    m.PlayerTwoID,
		PlayerOneScore: m.PlayerOneScore,
		PlayerTwoScore: m.PlayerTwoScore,
		WinnerID:       m.WinnerID,
		Status:         GameStatus(m.Status),
		Questions:      questions,
		CreatedAt:      m.CreatedAt,
	}
}
