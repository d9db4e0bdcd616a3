package services

import (
	"errors"
	"testing"

	"github.com/harelmarin/CultureClash/models"
	"github.com/harelmarin/CultureClash/persistence"
)

// MockDatabase is a test double for the persistence.Database interface.
type MockDatabase struct {
	users     map[string]*models.User
	questions []models.Question

	sampleErr  error
	createErr  error
	finishErrs []error // consumed one per FinishMatch call

	createCalls int
	finishCalls int
	lastResult  *persistence.MatchResult
}

func newMockDatabase() *MockDatabase {
	return &MockDatabase{
		users: map[string]*models.User{
			"alice": {ID: "alice", Username: "alice", Points: 1000},
			"bob":   {ID: "bob", Username: "bob", Points: 1000},
		},
		questions: []models.Question{
			{ID: "q1", Text: "Which year was the Eiffel Tower completed?", CorrectAnswerID: "c2"},
		},
	}
}

func (m *MockDatabase) UserExists(id string) (bool, error) {
	_, ok := m.users[id]
	return ok, nil
}

func (m *MockDatabase) GetUser(id string) (*models.User, error) {
	user, ok := m.users[id]
	if !ok {
		return nil, persistence.ErrRecordNotFound
	}
	return user, nil
}

func (m *MockDatabase) SampleQuestions(n int) ([]models.Question, error) {
	if m.sampleErr != nil {
		return nil, m.sampleErr
	}
	if n > len(m.questions) {
		n = len(m.questions)
	}
	return m.questions[:n], nil
}

func (m *MockDatabase) CreateMatch(id, playerOneID, playerTwoID string, questionIDs []string) (*models.Match, error) {
	m.createCalls++
	if m.createErr != nil {
		return nil, m.createErr
	}
	return &models.Match{
		ID:          id,
		PlayerOneID: playerOneID,
		PlayerTwoID: playerTwoID,
		Status:      models.StatusPending,
	}, nil
}

func (m *MockDatabase) FinishMatch(result *persistence.MatchResult) error {
	m.finishCalls++
	m.lastResult = result
	if len(m.finishErrs) > 0 {
		err := m.finishErrs[0]
		m.finishErrs = m.finishErrs[1:]
		return err
	}
	return nil
}

func (m *MockDatabase) GetPlayerStats(userID string) (*models.PlayerStats, error) {
	user, ok := m.users[userID]
	if !ok {
		return nil, persistence.ErrRecordNotFound
	}
	return &models.PlayerStats{Points: user.Points}, nil
}

func (m *MockDatabase) Close() error { return nil }

func pendingMatch() *models.Match {
	return &models.Match{
		ID:          "match1",
		PlayerOneID: "alice",
		PlayerTwoID: "bob",
		Status:      models.StatusPending,
	}
}

func TestMatchService_Create(t *testing.T) {
	db := newMockDatabase()
	svc := NewMatchService(db, nil, 1, 4)

	match, err := svc.Create("match1", "alice", "bob")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if match.ID != "match1" || match.PlayerOneID != "alice" || match.PlayerTwoID != "bob" {
		t.Errorf("Unexpected match record: %+v", match)
	}
	if match.Status != models.StatusPending {
		t.Errorf("A fresh match should be pending, got %s", match.Status)
	}
	if len(match.Questions) != 1 {
		t.Errorf("Expected the sampled question set on the match, got %d", len(match.Questions))
	}
}

func TestMatchService_Create_UnknownPlayer(t *testing.T) {
	db := newMockDatabase()
	svc := NewMatchService(db, nil, 1, 4)

	_, err := svc.Create("match1", "alice", "mallory")
	if !errors.Is(err, ErrUnknownPlayer) {
		t.Errorf("Expected ErrUnknownPlayer, got %v", err)
	}
	if db.createCalls != 0 {
		t.Error("An unknown player must abort before any write")
	}
}

func TestMatchService_Finish_Win(t *testing.T) {
	db := newMockDatabase()
	svc := NewMatchService(db, nil, 1, 4)

	outcome, err := svc.Finish(pendingMatch(), 5, 3, "alice")
	if err != nil {
		t.Fatalf("Finish failed: %v", err)
	}

	if outcome.WinnerID != "alice" || outcome.Draw {
		t.Errorf("Unexpected outcome: %+v", outcome)
	}
	// Equal ratings with K=4 move exactly two points each way.
	if outcome.PlayerOneElo != 1002 || outcome.PlayerTwoElo != 998 {
		t.Errorf("Expected ratings 1002 and 998, got %d and %d",
			outcome.PlayerOneElo, outcome.PlayerTwoElo)
	}

	if db.lastResult == nil {
		t.Fatal("The outcome should be committed")
	}
	if db.lastResult.PlayerOnePoints != 1002 || db.lastResult.PlayerTwoPoints != 998 {
		t.Errorf("Committed ratings mismatch: %+v", db.lastResult)
	}
	if db.lastResult.WinnerID != "alice" {
		t.Errorf("Committed winner mismatch: %q", db.lastResult.WinnerID)
	}
}

func TestMatchService_Finish_Draw(t *testing.T) {
	db := newMockDatabase()
	svc := NewMatchService(db, nil, 1, 4)

	outcome, err := svc.Finish(pendingMatch(), 3, 3, "")
	if err != nil {
		t.Fatalf("Finish failed: %v", err)
	}

	if !outcome.Draw || outcome.WinnerID != "" {
		t.Errorf("Expected a draw outcome, got %+v", outcome)
	}
	if outcome.PlayerOneElo != 1000 || outcome.PlayerTwoElo != 1000 {
		t.Errorf("A draw between equal ratings should change nothing, got %d and %d",
			outcome.PlayerOneElo, outcome.PlayerTwoElo)
	}
}

func TestMatchService_Finish_NonParticipantWinner(t *testing.T) {
	db := newMockDatabase()
	svc := NewMatchService(db, nil, 1, 4)

	_, err := svc.Finish(pendingMatch(), 5, 3, "mallory")
	if !errors.Is(err, ErrUnknownPlayer) {
		t.Errorf("Expected ErrUnknownPlayer for a non-participant winner, got %v", err)
	}
	if db.finishCalls != 0 {
		t.Error("An invalid winner must not reach the commit")
	}
}

func TestMatchService_Finish_RetriesOnce(t *testing.T) {
	db := newMockDatabase()
	db.finishErrs = []error{errors.New("deadlock")}
	svc := NewMatchService(db, nil, 1, 4)

	outcome, err := svc.Finish(pendingMatch(), 5, 3, "alice")
	if err != nil {
		t.Fatalf("A single transient failure should be retried away, got: %v", err)
	}
	if db.finishCalls != 2 {
		t.Errorf("Expected one retry, got %d commit attempts", db.finishCalls)
	}
	if outcome == nil || outcome.WinnerID != "alice" {
		t.Errorf("Unexpected outcome after retry: %+v", outcome)
	}
}

func TestMatchService_Finish_SecondFailureSurfaces(t *testing.T) {
	db := newMockDatabase()
	db.finishErrs = []error{errors.New("down"), errors.New("still down")}
	svc := NewMatchService(db, nil, 1, 4)

	outcome, err := svc.Finish(pendingMatch(), 5, 3, "alice")
	if err == nil {
		t.Fatal("A persistent commit failure should be surfaced")
	}
	if outcome == nil {
		t.Fatal("The computed outcome should still be returned for reporting")
	}
	if outcome.WinnerID != "alice" || outcome.PlayerOneElo != 1002 {
		t.Errorf("Unexpected outcome alongside the error: %+v", outcome)
	}
}
