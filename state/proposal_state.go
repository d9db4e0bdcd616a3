package state

import (
	"encoding/json"
	"time"

	"github.com/harelmarin/CultureClash/logger"
	"github.com/harelmarin/CultureClash/network"
)

// TickInterval is the cadence of the room update loop.
const TickInterval = 100 * time.Millisecond

// ProposalState is the window between pairing and mutual acceptance. Both
// players must accept before the deadline; a decline, the deadline, or a
// disconnect ends the proposal without ever creating a match record.
type ProposalState struct {
	RoomStateBase
	deadline      time.Duration
	forfeitGrace  time.Duration
	remainingTick int
	accepted      map[string]bool
}

// NewProposalState creates the state for a freshly paired room.
func NewProposalState(room RoomContext, deadline, forfeitGrace time.Duration) *ProposalState {
	return &ProposalState{
		RoomStateBase: RoomStateBase{
			ID:   "proposal",
			Room: room,
		},
		deadline:     deadline,
		forfeitGrace: forfeitGrace,
		accepted:     make(map[string]bool),
	}
}

// OnEnter notifies both players of the pairing and arms the deadline.
func (s *ProposalState) OnEnter() {
	s.remainingTick = int(s.deadline / TickInterval)

	s.Room.Broadcast(network.EvtMatchFound, network.MatchFoundPayload{
		RoomID:       s.Room.GetID(),
		Players:      []string{s.Room.PlayerOneID(), s.Room.PlayerTwoID()},
		TimeToAccept: int(s.deadline / time.Second),
	})
	logger.Log.Infof("Room %s proposed to %s and %s, %v to accept",
		s.Room.GetID(), s.Room.PlayerOneID(), s.Room.PlayerTwoID(), s.deadline)
}

// OnUpdate counts the deadline down. The countdown lives in the state itself,
// so a confirmation that has already replaced this state can never be timed
// out afterwards.
func (s *ProposalState) OnUpdate() {
	s.remainingTick--
	if s.remainingTick > 0 {
		return
	}

	logger.Log.Infof("Room %s proposal expired", s.Room.GetID())
	s.Room.Broadcast(network.EvtMatchTimeout, network.RoomPayload{RoomID: s.Room.GetID()})
	s.Room.Teardown("expired")
}

func (s *ProposalState) HandleEvent(player Player, event string, data json.RawMessage) error {
	switch event {
	case network.EvtAcceptMatch:
		return s.accept(player)
	case network.EvtDeclineMatch:
		return s.decline(player)
	default:
		return ErrWrongState
	}
}

func (s *ProposalState) accept(player Player) error {
	userID := player.UserID()
	if !s.isParticipant(userID) {
		return ErrNotParticipant
	}

	// A repeated accept from the same player is a harmless retry.
	if s.accepted[userID] {
		return nil
	}
	s.accepted[userID] = true

	if !s.accepted[s.Room.PlayerOneID()] || !s.accepted[s.Room.PlayerTwoID()] {
		return nil
	}

	return s.confirm()
}

// confirm creates the durable match and promotes the room to a live session.
func (s *ProposalState) confirm() error {
	room := s.Room
	match, err := room.Service().Create(room.GetID(), room.PlayerOneID(), room.PlayerTwoID())
	if err != nil {
		logger.Log.Errorf("Room %s match creation failed: %v", room.GetID(), err)
		room.Broadcast(network.EvtError, network.ErrorPayload{
			Message: "match creation failed",
			Details: err.Error(),
		})
		room.Teardown("creation_failed")
		return nil
	}

	logger.Log.Infof("Room %s confirmed, match %s created", room.GetID(), match.ID)
	return room.ChangeState(NewPlayingState(room, match, s.forfeitGrace))
}

func (s *ProposalState) decline(player Player) error {
	if !s.isParticipant(player.UserID()) {
		return ErrNotParticipant
	}

	logger.Log.Infof("Room %s declined by %s", s.Room.GetID(), player.UserID())
	s.Room.Broadcast(network.EvtMatchDeclined, network.RoomPayload{RoomID: s.Room.GetID()})
	s.Room.Teardown("declined")
	return nil
}

// HandleDisconnect abandons the proposal and tells the remaining player.
func (s *ProposalState) HandleDisconnect(userID string) {
	if !s.isParticipant(userID) {
		return
	}

	other := s.Room.PlayerOneID()
	if userID == other {
		other = s.Room.PlayerTwoID()
	}
	s.Room.SendToUser(other, network.EvtOpponentLeft, network.RoomPayload{RoomID: s.Room.GetID()})
	s.Room.Teardown("abandoned")
}

func (s *ProposalState) isParticipant(userID string) bool {
	return userID != "" &&
		(userID == s.Room.PlayerOneID() || userID == s.Room.PlayerTwoID())
}
