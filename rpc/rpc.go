package rpc

import (
	"context"
	"net"
	"net/rpc"

	"github.com/harelmarin/CultureClash/leaderboard"
	"github.com/harelmarin/CultureClash/logger"
	"github.com/harelmarin/CultureClash/services"
)

// Server manages the RPC listener.
type Server struct {
	listener net.Listener
	address  string
}

// NewServer creates a new RPC server.
func NewServer(addr string) (*Server, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	return &Server{
		listener: listener,
		address:  addr,
	}, nil
}

// Start begins listening for RPC requests.
func (s *Server) Start() {
	logger.Log.Infof("RPC server listening on %s", s.address)
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			// Check if the error is due to the listener being closed.
			if _, ok := err.(*net.OpError); ok {
				logger.Log.Info("RPC server listener closed.")
				return
			}
			logger.Log.Errorf("RPC server accept error: %v", err)
			continue
		}
		go rpc.ServeConn(conn)
	}
}

// Stop closes the RPC listener.
func (s *Server) Stop() {
	if s.listener != nil {
		logger.Log.Info("Stopping RPC server.")
		s.listener.Close()
	}
}

// GameService exposes read-only queries over net/rpc so backoffice
// tooling can inspect players and the ranking without a socket session.
type GameService struct {
	playerService *services.PlayerService
	ranking       *leaderboard.Service
}

// NewGameService creates a new GameService.
func NewGameService(ps *services.PlayerService, ranking *leaderboard.Service) *GameService {
	return &GameService{playerService: ps, ranking: ranking}
}

type GetPlayerArgs struct {
	UserID string
}

type GetPlayerReply struct {
	Profile *services.PlayerProfile
}

// GetPlayerWithStats returns a player's profile and aggregate stats.
func (gs *GameService) GetPlayerWithStats(args *GetPlayerArgs, reply *GetPlayerReply) error {
	profile, err := gs.playerService.GetPlayerWithStats(args.UserID)
	if err != nil {
		return err
	}
	reply.Profile = profile
	return nil
}

type GetLeaderboardArgs struct {
	Limit int
}

type GetLeaderboardReply struct {
	Entries []leaderboard.Entry
}

// GetLeaderboard returns the top ranked players by points.
func (gs *GameService) GetLeaderboard(args *GetLeaderboardArgs, reply *GetLeaderboardReply) error {
	limit := args.Limit
	if limit <= 0 {
		limit = 10
	}
	entries, err := gs.ranking.Top(context.Background(), limit)
	if err != nil {
		return err
	}
	reply.Entries = entries
	return nil
}
