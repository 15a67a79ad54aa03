package rpc

import (
	"net"
	"net/rpc"

	"github.com/rihaans/GameHub/logger"
	"github.com/rihaans/GameHub/models"
	"github.com/rihaans/GameHub/room"
	"github.com/rihaans/GameHub/services"
)

// Server manages the admin RPC listener.
type Server struct {
	listener net.Listener
	address  string
}

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

// Start begins accepting RPC connections.
func (s *Server) Start() {
	logger.Log.Infof("Admin RPC server listening on %s", s.address)
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if _, ok := err.(*net.OpError); ok {
				logger.Log.Info("Admin RPC listener closed.")
				return
			}
			logger.Log.Errorf("Admin RPC accept error: %v", err)
			continue
		}
		go rpc.ServeConn(conn)
	}
}

// Stop closes the RPC listener.
func (s *Server) Stop() {
	if s.listener != nil {
		logger.Log.Info("Stopping admin RPC server.")
		s.listener.Close()
	}
}

// AdminService exposes the ops surface: live room listing and archived
// player stats.
type AdminService struct {
	rooms   *room.Manager
	history *services.HistoryService
}

func NewAdminService(rooms *room.Manager, history *services.HistoryService) *AdminService {
	return &AdminService{rooms: rooms, history: history}
}

type ListRoomsArgs struct{}

type ListRoomsReply struct {
	Rooms []models.RoomSummary
}

func (s *AdminService) ListRooms(args *ListRoomsArgs, reply *ListRoomsReply) error {
	reply.Rooms = s.rooms.Summaries()
	return nil
}

type PlayerStatsArgs struct {
	PlayerID string
}

type PlayerStatsReply struct {
	Stats models.PlayerStats
}

func (s *AdminService) PlayerStats(args *PlayerStatsArgs, reply *PlayerStatsReply) error {
	stats, err := s.history.PlayerStats(args.PlayerID)
	if err != nil {
		return err
	}
	reply.Stats = stats
	return nil
}
