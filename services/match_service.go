// services/match_service.go
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/harelmarin/CultureClash/leaderboard"
	"github.com/harelmarin/CultureClash/logger"
	"github.com/harelmarin/CultureClash/models"
	"github.com/harelmarin/CultureClash/persistence"
	"github.com/harelmarin/CultureClash/rating"
)

var ErrUnknownPlayer = errors.New("unknown player")

// MatchService owns the durable side of a match: creation on proposal
// confirmation and the one-time outcome commit.
type MatchService struct {
	db            persistence.Database
	ranking       *leaderboard.Service
	questionCount int
	eloK          float64
}

func NewMatchService(db persistence.Database, ranking *leaderboard.Service,
	questionCount int, eloK float64) *MatchService {
	if questionCount <= 0 {
		questionCount = 1
	}
	if eloK <= 0 {
		eloK = rating.DefaultK
	}
	return &MatchService{
		db:            db,
		ranking:       ranking,
		questionCount: questionCount,
		eloK:          eloK,
	}
}

// Create validates both players, samples the question set and writes the
// pending match record. Any failure aborts the whole creation.
func (s *MatchService) Create(matchID, playerOneID, playerTwoID string) (*models.Match, error) {
	for _, id := range []string{playerOneID, playerTwoID} {
		exists, err := s.db.UserExists(id)
		if err != nil {
			return nil, fmt.Errorf("resolving player %s: %w", id, err)
		}
		if !exists {
			return nil, fmt.Errorf("%w: %s", ErrUnknownPlayer, id)
		}
	}

	questions, err := s.db.SampleQuestions(s.questionCount)
	if err != nil {
		return nil, fmt.Errorf("sampling questions: %w", err)
	}

	questionIDs := make([]string, 0, len(questions))
	for _, q := range questions {
		questionIDs = append(questionIDs, q.ID)
	}

	match, err := s.db.CreateMatch(matchID, playerOneID, playerTwoID, questionIDs)
	if err != nil {
		return nil, fmt.Errorf("creating match record: %w", err)
	}
	if len(match.Questions) == 0 {
		match.Questions = questions
	}
	return match, nil
}

// Finish computes both players' new ratings and commits scores, winner,
// ratings and win/loss counters. The commit is retried once; a second
// failure is returned along with the computed outcome so the callers can
// still report the result.
func (s *MatchService) Finish(match *models.Match, playerOneScore, playerTwoScore int,
	winnerID string) (*models.MatchOutcome, error) {

	playerOne, err := s.db.GetUser(match.PlayerOneID)
	if err != nil {
		return nil, fmt.Errorf("loading player %s: %w", match.PlayerOneID, err)
	}
	playerTwo, err := s.db.GetUser(match.PlayerTwoID)
	if err != nil {
		return nil, fmt.Errorf("loading player %s: %w", match.PlayerTwoID, err)
	}

	var newOne, newTwo int
	switch winnerID {
	case "":
		newOne, newTwo = rating.Draw(float64(playerOne.Points), float64(playerTwo.Points), s.eloK)
	case match.PlayerOneID:
		newOne, newTwo = rating.Win(float64(playerOne.Points), float64(playerTwo.Points), s.eloK)
	case match.PlayerTwoID:
		newTwo, newOne = rating.Win(float64(playerTwo.Points), float64(playerOne.Points), s.eloK)
	default:
		return nil, fmt.Errorf("%w: winner %s is not a participant", ErrUnknownPlayer, winnerID)
	}

	outcome := &models.MatchOutcome{
		MatchID:        match.ID,
		WinnerID:       winnerID,
		PlayerOneScore: playerOneScore,
		PlayerTwoScore: playerTwoScore,
		PlayerOneElo:   newOne,
		PlayerTwoElo:   newTwo,
		Draw:           winnerID == "",
	}

	result := &persistence.MatchResult{
		MatchID:         match.ID,
		PlayerOneID:     match.PlayerOneID,
		PlayerTwoID:     match.PlayerTwoID,
		PlayerOneScore:  playerOneScore,
		PlayerTwoScore:  playerTwoScore,
		PlayerOnePoints: newOne,
		PlayerTwoPoints: newTwo,
		WinnerID:        winnerID,
	}

	if err := s.db.FinishMatch(result); err != nil {
		logger.Log.Warnf("Match %s commit failed, retrying once: %v", match.ID, err)
		if err = s.db.FinishMatch(result); err != nil {
			return outcome, fmt.Errorf("committing match %s: %w", match.ID, err)
		}
	}

	s.updateRanking(match.PlayerOneID, newOne)
	s.updateRanking(match.PlayerTwoID, newTwo)

	return outcome, nil
}

// updateRanking mirrors the new rating into the Redis ranking, best effort.
func (s *MatchService) updateRanking(userID string, points int) {
	if s.ranking == nil {
		return
	}
	if err := s.ranking.SetPoints(context.Background(), userID, points); err != nil {
		logger.Log.Warnf("Ranking update for %s failed: %v", userID, err)
	}
}
