package state

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/harelmarin/CultureClash/logger"
	"github.com/harelmarin/CultureClash/models"
	"github.com/harelmarin/CultureClash/network"
)

// PlayingState is the live relay for a confirmed match: question advances and
// score reports are forwarded between the two participants, and the finish
// commit runs here exactly once.
type PlayingState struct {
	RoomStateBase
	match         *models.Match
	forfeitGrace  time.Duration
	questionIndex int
	scores        map[string]int
	finished      bool
}

func NewPlayingState(room RoomContext, match *models.Match, forfeitGrace time.Duration) *PlayingState {
	return &PlayingState{
		RoomStateBase: RoomStateBase{
			ID:   "playing",
			Room: room,
		},
		match:        match,
		forfeitGrace: forfeitGrace,
		scores: map[string]int{
			room.PlayerOneID(): 0,
			room.PlayerTwoID(): 0,
		},
	}
}

// OnEnter delivers matchStart to both players with their role flag.
func (s *PlayingState) OnEnter() {
	for _, userID := range []string{s.Room.PlayerOneID(), s.Room.PlayerTwoID()} {
		s.Room.SendToUser(userID, network.EvtMatchStart, network.MatchStartPayload{
			RoomID:      s.Room.GetID(),
			IsPlayerOne: userID == s.Room.PlayerOneID(),
			Match:       s.match,
		})
	}
}

func (s *PlayingState) HandleEvent(player Player, event string, data json.RawMessage) error {
	if !s.isParticipant(player.UserID()) {
		return ErrNotParticipant
	}

	switch event {
	case network.EvtAdvanceQuestion:
		var payload network.AdvanceQuestionPayload
		if err := json.Unmarshal(data, &payload); err != nil {
			return err
		}
		return s.advanceQuestion(payload.QuestionIndex)

	case network.EvtReportScore:
		var payload network.ReportScorePayload
		if err := json.Unmarshal(data, &payload); err != nil {
			return err
		}
		return s.reportScore(payload.UserID, payload.Score)

	case network.EvtFinishMatch:
		var payload network.FinishMatchPayload
		if err := json.Unmarshal(data, &payload); err != nil {
			return err
		}
		// The declared winnerId is ignored; the outcome is derived from
		// the scores.
		s.finish(payload.PlayerOneScore, payload.PlayerTwoScore, false, "")
		return nil

	default:
		return ErrWrongState
	}
}

// advanceQuestion is relayed as-is; the index is not validated against the
// assigned question set, clients drive the cadence.
func (s *PlayingState) advanceQuestion(index int) error {
	s.questionIndex = index
	return s.Room.Broadcast(network.EvtQuestionAdvanced, network.QuestionAdvancedPayload{
		QuestionIndex: index,
	})
}

// reportScore stores whatever the client reports and relays it to both sides.
func (s *PlayingState) reportScore(userID string, score int) error {
	if !s.isParticipant(userID) {
		return ErrNotParticipant
	}

	s.scores[userID] = score
	return s.Room.Broadcast(network.EvtScoreUpdated, network.ScoreUpdatedPayload{
		UserID: userID,
		Score:  score,
	})
}

// finish is the single commit path. The first call wins; any later call for
// the room is silently dropped. The forfeit path forces the result (a forced
// empty winner is a draw); otherwise the winner comes from comparing the two
// scores.
func (s *PlayingState) finish(playerOneScore, playerTwoScore int, forced bool, forcedWinner string) {
	if s.finished {
		logger.Log.Debugf("Room %s ignoring duplicate finish", s.Room.GetID())
		return
	}
	s.finished = true

	s.scores[s.Room.PlayerOneID()] = playerOneScore
	s.scores[s.Room.PlayerTwoID()] = playerTwoScore

	winnerID := forcedWinner
	if !forced {
		switch {
		case playerOneScore > playerTwoScore:
			winnerID = s.Room.PlayerOneID()
		case playerTwoScore > playerOneScore:
			winnerID = s.Room.PlayerTwoID()
		default:
			winnerID = ""
		}
	}

	outcome, err := s.Room.Service().Finish(s.match, playerOneScore, playerTwoScore, winnerID)
	if err != nil {
		// The result was already decided; persistence problems are an
		// operational concern, the players still get their outcome.
		logger.Log.Errorf("Room %s finish commit failed: %v", s.Room.GetID(), err)
	}
	if outcome == nil {
		outcome = &models.MatchOutcome{
			MatchID:        s.match.ID,
			WinnerID:       winnerID,
			PlayerOneScore: playerOneScore,
			PlayerTwoScore: playerTwoScore,
			Draw:           winnerID == "",
		}
	}

	message := "draw"
	if outcome.WinnerID != "" {
		message = fmt.Sprintf("player %s wins", outcome.WinnerID)
	}
	s.Room.Broadcast(network.EvtMatchOver, network.MatchOverPayload{
		WinnerID:       outcome.WinnerID,
		PlayerOneScore: outcome.PlayerOneScore,
		PlayerTwoScore: outcome.PlayerTwoScore,
		Message:        message,
	})

	s.Room.ChangeState(NewFinishedState(s.Room))
	s.Room.Teardown("finished")
}

// ForfeitAbandoned finishes the match in favor of the remaining player. It is
// invoked by the grace timer and re-checks the session state, so a timer that
// fires after a legitimate finish or after the player came back does nothing.
// With both players gone nobody earns the win and the match is recorded as a
// draw.
func (s *PlayingState) ForfeitAbandoned(userID string) {
	if s.finished || !s.isParticipant(userID) {
		return
	}
	if s.Room.IsOnline(userID) {
		return
	}

	other := s.Room.PlayerOneID()
	if userID == other {
		other = s.Room.PlayerTwoID()
	}

	playerOneScore := s.scores[s.Room.PlayerOneID()]
	playerTwoScore := s.scores[s.Room.PlayerTwoID()]

	if !s.Room.IsOnline(other) {
		logger.Log.Infof("Room %s abandoned by both players, recording a draw", s.Room.GetID())
		s.finish(playerOneScore, playerTwoScore, true, "")
		return
	}

	logger.Log.Infof("Room %s forfeited by %s, %s wins", s.Room.GetID(), userID, other)
	s.finish(playerOneScore, playerTwoScore, true, other)
}

// HandleDisconnect tells the opponent and arms the forfeit grace timer.
func (s *PlayingState) HandleDisconnect(userID string) {
	if s.finished || !s.isParticipant(userID) {
		return
	}

	other := s.Room.PlayerOneID()
	if userID == other {
		other = s.Room.PlayerTwoID()
	}
	s.Room.SendToUser(other, network.EvtOpponentLeft, network.RoomPayload{RoomID: s.Room.GetID()})
	s.Room.ScheduleForfeit(userID, s.forfeitGrace)
}

// Score returns the tracked score of the given player.
func (s *PlayingState) Score(userID string) int {
	return s.scores[userID]
}

// Finished reports whether the outcome has been committed.
func (s *PlayingState) Finished() bool {
	return s.finished
}

func (s *PlayingState) isParticipant(userID string) bool {
	return userID != "" &&
		(userID == s.Room.PlayerOneID() || userID == s.Room.PlayerTwoID())
}

// FinishedState is the terminal marker after the outcome commit. The room is
// torn down right after entering it; any residual event is rejected.
type FinishedState struct {
	RoomStateBase
}

func NewFinishedState(room RoomContext) *FinishedState {
	return &FinishedState{
		RoomStateBase: RoomStateBase{
			ID:   "finished",
			Room: room,
		},
	}
}
