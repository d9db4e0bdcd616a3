package server

import (
	"encoding/json"
	"net/http"
	"net/rpc"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/harelmarin/CultureClash/broadcast"
	"github.com/harelmarin/CultureClash/config"
	"github.com/harelmarin/CultureClash/leaderboard"
	"github.com/harelmarin/CultureClash/logger"
	"github.com/harelmarin/CultureClash/monitor"
	"github.com/harelmarin/CultureClash/network"
	"github.com/harelmarin/CultureClash/persistence"
	"github.com/harelmarin/CultureClash/queue"
	"github.com/harelmarin/CultureClash/room"
	cc_rpc "github.com/harelmarin/CultureClash/rpc"
	"github.com/harelmarin/CultureClash/services"
	"github.com/harelmarin/CultureClash/session"
)

// GameServer ties the socket surface, the matchmaking queue and the room
// manager together. One instance serves every connection.
type GameServer struct {
	addr           string
	upgrader       websocket.Upgrader
	queue          *queue.Queue
	roomManager    *room.Manager
	sessionManager *session.Manager
	matchService   *services.MatchService
	playerService  *services.PlayerService
	broadcaster    *broadcast.RoomBroadcaster
	rpcServer      *cc_rpc.Server
	monitor        *monitor.Monitor
	pairMutex      sync.Mutex
	shutdownChan   chan struct{}
}

// New builds a fully wired server from its dependencies.
func New(cfg *config.Config, db persistence.Database, ranking *leaderboard.Service,
	roomManager *room.Manager, mon *monitor.Monitor) *GameServer {
	s := &GameServer{
		addr:           cfg.Server.HTTPAddress,
		queue:          queue.NewQueue(),
		roomManager:    roomManager,
		sessionManager: session.NewManager(),
		matchService:   services.NewMatchService(db, ranking, cfg.Game.QuestionCount, cfg.Game.EloK),
		playerService:  services.NewPlayerService(db),
		monitor:        mon,
		shutdownChan:   make(chan struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}

	s.broadcaster = broadcast.NewRoomBroadcaster(s.roomManager, s.sessionManager)

	s.roomManager.SetOnClosed(func(roomID, reason string) {
		s.monitor.SetActiveMatches(s.roomManager.Count())
		if reason == "finished" {
			s.monitor.IncMatchesFinished()
		}
		logger.Log.Infof("Room %s closed: %s", roomID, reason)
	})

	rpcServer, err := cc_rpc.NewServer(cfg.Server.RPCAddress)
	if err != nil {
		logger.Log.Fatalf("Failed to create RPC server: %v", err)
	}
	s.rpcServer = rpcServer

	gameService := cc_rpc.NewGameService(s.playerService, ranking)
	rpc.Register(gameService)

	return s
}

func (s *GameServer) Start() error {
	go s.rpcServer.Start()

	http.HandleFunc("/ws", s.handleWebSocket)
	logger.Log.Infof("Game server listening on %s", s.addr)
	return http.ListenAndServe(s.addr, nil)
}

func (s *GameServer) Shutdown() {
	close(s.shutdownChan)
	s.rpcServer.Stop()
}

func (s *GameServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.Infof("Failed to upgrade connection: %v", err)
		return
	}
	s.handleConnection(network.NewWSConnection(conn))
}

func (s *GameServer) handleConnection(conn network.Connection) {
	sess := session.NewSession(uuid.New().String(), conn)
	s.sessionManager.Add(sess)
	s.monitor.IncOnlinePlayers()

	logger.Log.Infof("New connection from %s, session ID: %s", conn.RemoteAddr(), sess.GetID())

	defer func() {
		logger.Log.Infof("Connection closed from %s, session ID: %s", conn.RemoteAddr(), sess.GetID())
		s.handleDisconnect(sess)
		conn.Close()
	}()

	for {
		select {
		case <-s.shutdownChan:
			return
		default:
			event, err := conn.ReadEvent()
			if err != nil {
				return
			}
			start := time.Now()
			s.handleEvent(sess, event)
			s.monitor.IncMessagesReceived()
			s.monitor.ObserveMessageLatency(time.Since(start))
		}
	}
}

func (s *GameServer) handleEvent(sess *session.Session, event *network.Event) {
	sess.Touch()

	switch event.Name {
	case network.EvtAuthenticate:
		s.handleAuthenticate(sess, event.Data)
	case network.EvtJoinQueue:
		s.handleJoinQueue(sess, event.Data)
	case network.EvtLeaveQueue:
		s.handleLeaveQueue(sess)
	case network.EvtAcceptMatch, network.EvtDeclineMatch,
		network.EvtAdvanceQuestion, network.EvtReportScore, network.EvtFinishMatch:
		s.handleRoomEvent(sess, event)
	default:
		logger.Log.Infof("Unknown event %q from session %s", event.Name, sess.GetID())
		s.sendError(sess, "unknown event", event.Name)
	}
}

func (s *GameServer) handleAuthenticate(sess *session.Session, data json.RawMessage) {
	var payload network.AuthenticatePayload
	if err := json.Unmarshal(data, &payload); err != nil || payload.UserID == "" {
		s.sendError(sess, "invalid authenticate payload", "")
		return
	}

	exists, err := s.playerService.Exists(payload.UserID)
	if err != nil {
		logger.Log.Errorf("Authentication lookup failed for %s: %v", payload.UserID, err)
		s.sendError(sess, "authentication failed", err.Error())
		return
	}
	if !exists {
		s.sendError(sess, "unknown player", payload.UserID)
		return
	}

	s.sessionManager.Bind(sess, payload.UserID)
	logger.Log.Infof("Session %s authenticated as player %s", sess.GetID(), payload.UserID)
}

func (s *GameServer) handleJoinQueue(sess *session.Session, data json.RawMessage) {
	userID := sess.UserID()
	if userID == "" {
		s.sendError(sess, "authenticate before joining the queue", "")
		return
	}

	// The payload's userId is optional; when present it must name the
	// authenticated player.
	if len(data) > 0 {
		var payload network.JoinQueuePayload
		if err := json.Unmarshal(data, &payload); err != nil {
			s.sendError(sess, "invalid joinQueue payload", err.Error())
			return
		}
		if payload.UserID != "" && payload.UserID != userID {
			s.sendError(sess, "userId does not match the authenticated player", payload.UserID)
			return
		}
	}

	// Checking, joining and pairing are one step under the pair mutex, so a
	// player can never be queued and a room participant at the same time.
	s.pairMutex.Lock()
	defer s.pairMutex.Unlock()

	if r, ok := s.roomManager.GetRoomByUser(userID); ok {
		s.sendError(sess, "already in a match", r.GetID())
		return
	}

	if err := s.queue.Join(sess.GetID(), userID); err != nil {
		s.sendError(sess, err.Error(), "")
		return
	}
	logger.Log.Infof("Player %s joined the queue (depth %d)", userID, s.queue.Len())
	s.monitor.SetQueueDepth(s.queue.Len())

	s.pairWaiting()
}

// pairWaiting drains the queue two entries at a time, opening a proposal
// room per pair. Caller holds the pair mutex.
func (s *GameServer) pairWaiting() {
	for {
		first, second := s.queue.PopPair()
		if first == nil {
			break
		}

		roomID := uuid.New().String()
		s.roomManager.CreateRoom(roomID, first.UserID, second.UserID,
			s.broadcaster, s.broadcaster, s.matchService)

		logger.Log.Infof("Paired %s vs %s in room %s", first.UserID, second.UserID, roomID)
		s.monitor.IncMatchesCreated()
		s.monitor.SetActiveMatches(s.roomManager.Count())
	}
	s.monitor.SetQueueDepth(s.queue.Len())
}

func (s *GameServer) handleLeaveQueue(sess *session.Session) {
	userID := sess.UserID()
	if userID == "" {
		s.sendError(sess, "authenticate before leaving the queue", "")
		return
	}

	s.pairMutex.Lock()
	defer s.pairMutex.Unlock()

	// Once a proposal is out the player is no longer in the queue; declining
	// is the only way to back out.
	if r, ok := s.roomManager.GetRoomByUser(userID); ok && r.InProposal() {
		s.sendError(sess, "a match proposal is pending, accept or decline it", r.GetID())
		return
	}

	if s.queue.Leave(userID) {
		logger.Log.Infof("Player %s left the queue", userID)
	}
	s.monitor.SetQueueDepth(s.queue.Len())
	sess.Send(network.EvtLeftQueue, nil)
}

func (s *GameServer) handleRoomEvent(sess *session.Session, event *network.Event) {
	if sess.UserID() == "" {
		s.sendError(sess, "authenticate first", "")
		return
	}

	var target network.RoomPayload
	if err := json.Unmarshal(event.Data, &target); err != nil || target.RoomID == "" {
		s.sendError(sess, "missing roomId", event.Name)
		return
	}

	r, exists := s.roomManager.GetRoom(target.RoomID)
	if !exists {
		s.sendError(sess, "room not found", target.RoomID)
		return
	}

	if err := r.HandleEvent(sess, event.Name, event.Data); err != nil {
		logger.Log.Warnf("Event %s from %s rejected in room %s: %v",
			event.Name, sess.UserID(), target.RoomID, err)
		s.sendError(sess, err.Error(), event.Name)
	}
}

func (s *GameServer) handleDisconnect(sess *session.Session) {
	s.monitor.DecOnlinePlayers()

	// Cleanup runs under the pair mutex so a disconnect cannot slip between
	// a pairing's pop and the room creation; by the time the lookups run the
	// player is either still queued or already indexed to its room.
	s.pairMutex.Lock()
	defer s.pairMutex.Unlock()

	s.queue.RemoveSession(sess.GetID())
	s.monitor.SetQueueDepth(s.queue.Len())

	userID := sess.UserID()
	wasActive := userID != "" && s.sessionManager.ActiveSession(userID) == sess
	s.sessionManager.Remove(sess.GetID())

	if !wasActive {
		return
	}
	if r, ok := s.roomManager.GetRoomByUser(userID); ok {
		r.HandleDisconnect(userID)
	}
}

func (s *GameServer) sendError(sess *session.Session, message, details string) {
	sess.Send(network.EvtError, network.ErrorPayload{Message: message, Details: details})
}
