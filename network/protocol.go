package network

import "github.com/harelmarin/CultureClash/models"

// Inbound events (client -> server).
const (
	EvtAuthenticate    = "authenticate"
	EvtJoinQueue       = "joinQueue"
	EvtLeaveQueue      = "leaveQueue"
	EvtAcceptMatch     = "acceptMatch"
	EvtDeclineMatch    = "declineMatch"
	EvtAdvanceQuestion = "advanceQuestion"
	EvtReportScore     = "reportScore"
	EvtFinishMatch     = "finishMatch"
)

// Outbound events (server -> client).
const (
	EvtMatchFound       = "matchFound"
	EvtMatchStart       = "matchStart"
	EvtMatchTimeout     = "matchTimeout"
	EvtMatchDeclined    = "matchDeclined"
	EvtOpponentLeft     = "opponentLeft"
	EvtLeftQueue        = "leftQueue"
	EvtScoreUpdated     = "scoreUpdated"
	EvtQuestionAdvanced = "questionAdvanced"
	EvtMatchOver        = "matchOver"
	EvtError            = "error"
)

type AuthenticatePayload struct {
	UserID string `json:"userId"`
}

type JoinQueuePayload struct {
	UserID string `json:"userId,omitempty"`
}

type RoomPayload struct {
	RoomID string `json:"roomId"`
}

type AdvanceQuestionPayload struct {
	RoomID        string `json:"roomId"`
	QuestionIndex int    `json:"questionIndex"`
}

type ReportScorePayload struct {
	RoomID string `json:"roomId"`
	UserID string `json:"userId"`
	Score  int    `json:"score"`
}

type FinishMatchPayload struct {
	RoomID         string `json:"roomId"`
	PlayerOneScore int    `json:"playerOneScore"`
	PlayerTwoScore int    `json:"playerTwoScore"`
	// WinnerID is carried for wire compatibility but the server derives
	// the winner from the scores.
	WinnerID string `json:"winnerId,omitempty"`
}

type MatchFoundPayload struct {
	RoomID       string   `json:"roomId"`
	Players      []string `json:"players"`
	TimeToAccept int      `json:"timeToAccept"`
}

type MatchStartPayload struct {
	RoomID      string        `json:"roomId"`
	IsPlayerOne bool          `json:"isPlayerOne"`
	Match       *models.Match `json:"match"`
}

type ScoreUpdatedPayload struct {
	UserID string `json:"userId"`
	Score  int    `json:"score"`
}

type QuestionAdvancedPayload struct {
	QuestionIndex int `json:"questionIndex"`
}

type MatchOverPayload struct {
	WinnerID       string `json:"winnerId,omitempty"`
	PlayerOneScore int    `json:"playerOneScore"`
	PlayerTwoScore int    `json:"playerTwoScore"`
	Message        string `json:"message"`
}

type ErrorPayload struct {
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}
