// services/player_service.go
package services

import (
	"github.com/harelmarin/CultureClash/models"
	"github.com/harelmarin/CultureClash/persistence"
)

// PlayerProfile bundles a user row with its aggregated match counters.
type PlayerProfile struct {
	User  *models.User        `json:"user"`
	Stats *models.PlayerStats `json:"stats"`
}

type PlayerService struct {
	db persistence.Database
}

func NewPlayerService(db persistence.Database) *PlayerService {
	return &PlayerService{db: db}
}

// Exists resolves a player id against the user directory.
func (s *PlayerService) Exists(userID string) (bool, error) {
	return s.db.UserExists(userID)
}

// GetPlayerWithStats returns the player and its match statistics.
func (s *PlayerService) GetPlayerWithStats(userID string) (*PlayerProfile, error) {
	user, err := s.db.GetUser(userID)
	if err != nil {
		return nil, err
	}

	stats, err := s.db.GetPlayerStats(userID)
	if err != nil {
		return nil, err
	}

	return &PlayerProfile{User: user, Stats: stats}, nil
}
