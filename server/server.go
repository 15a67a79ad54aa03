package server

import (
	"errors"
	"net/http"
	"net/rpc"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rihaans/GameHub/broadcast"
	"github.com/rihaans/GameHub/config"
	"github.com/rihaans/GameHub/game"
	"github.com/rihaans/GameHub/logger"
	"github.com/rihaans/GameHub/models"
	"github.com/rihaans/GameHub/monitor"
	"github.com/rihaans/GameHub/network"
	"github.com/rihaans/GameHub/persistence"
	"github.com/rihaans/GameHub/room"
	adminrpc "github.com/rihaans/GameHub/rpc"
	"github.com/rihaans/GameHub/services"
	"github.com/rihaans/GameHub/session"
	"github.com/rihaans/GameHub/timer"
)

type GameServer struct {
	cfg            *config.Config
	upgrader       websocket.Upgrader
	sessionManager *session.Manager
	roomManager    *room.Manager
	registry       *game.Registry
	monitor        *monitor.Monitor
	historyService *services.HistoryService
	rpcServer      *adminrpc.Server
	timers         *timer.Manager
	shutdownChan   chan struct{}
}

func NewGameServer(cfg *config.Config, registry *game.Registry, store persistence.Store) *GameServer {
	s := &GameServer{
		cfg:            cfg,
		registry:       registry,
		sessionManager: session.NewManager(),
		monitor:        monitor.NewMonitor("gamehub"),
		historyService: services.NewHistoryService(store),
		timers:         timer.NewManager(),
		shutdownChan:   make(chan struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}

	broadcaster := broadcast.NewRoomBroadcaster(func(string) {
		s.monitor.IncEnvelopesDropped()
	})
	s.roomManager = room.NewManager(registry, cfg.Room, broadcaster, s.timers, s.recordGame)

	rpcServer, err := adminrpc.NewServer(cfg.Server.RPCAddress)
	if err != nil {
		logger.Log.Fatalf("Failed to create admin RPC server: %v", err)
	}
	s.rpcServer = rpcServer
	rpc.Register(adminrpc.NewAdminService(s.roomManager, s.historyService))

	return s
}

func (s *GameServer) Start() error {
	go s.rpcServer.Start()
	s.monitor.StartServer(s.cfg.Server.MetricsAddress)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)

	logger.Log.Infof("Game server listening on %s", s.cfg.Server.HTTPAddress)
	return http.ListenAndServe(s.cfg.Server.HTTPAddress, mux)
}

func (s *GameServer) Shutdown() {
	close(s.shutdownChan)
	s.rpcServer.Stop()
	s.timers.Stop()
}

// recordGame archives a finished game off the hot path. A write failure is an
// operational problem, never a gameplay one.
func (s *GameServer) recordGame(rec models.GameRecord) {
	go func() {
		if err := s.historyService.RecordGame(rec); err != nil {
			logger.Log.Errorf("Failed to record game for room %s: %v", rec.RoomID, err)
		}
	}()
}

func (s *GameServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.Infof("Failed to upgrade connection: %v", err)
		return
	}

	name := r.URL.Query().Get("name")
	if name == "" {
		name = "Player"
	}
	s.handleConnection(conn, name)
}

func (s *GameServer) handleConnection(conn *websocket.Conn, name string) {
	wsConn := network.NewWSConnection(conn, s.cfg.Room.SendTimeout, s.cfg.Room.SendBuffer)
	sess := s.sessionManager.Register(wsConn, name)
	s.monitor.IncOnlinePlayers()

	logger.Log.Infof("New connection from %s, player %s (%s)", wsConn.RemoteAddr(), sess.ID, name)

	defer func() {
		logger.Log.Infof("Connection closed, player %s", sess.ID)
		s.cleanupSession(sess)
		wsConn.Close()
	}()

	for {
		select {
		case <-s.shutdownChan:
			return
		default:
			raw, err := wsConn.ReadEnvelope()
			if err != nil {
				return
			}
			s.handleEnvelope(sess, raw)
		}
	}
}

// cleanupSession is the disconnect path: drop the identity binding, then the
// room membership. Unregister is idempotent, so a racing second cleanup is a
// no-op.
func (s *GameServer) cleanupSession(sess *session.Session) {
	if s.sessionManager.Unregister(sess.ID) == nil {
		return
	}
	if err := s.roomManager.Leave(sess); err != nil && !errors.Is(err, room.ErrNotInRoom) {
		logger.Log.Warnf("Failed to remove player %s from room: %v", sess.ID, err)
	}
	s.monitor.DecOnlinePlayers()
	s.monitor.SetActiveRooms(s.roomManager.Count())
}

// handleEnvelope is the per-connection dispatch: parse, validate against the
// sender's state, route. Every taxonomy error is turned into an error
// envelope to this connection only; the connection stays open.
func (s *GameServer) handleEnvelope(sess *session.Session, raw []byte) {
	start := time.Now()
	s.monitor.IncEnvelopesReceived()
	defer func() {
		s.monitor.ObserveDispatchLatency(time.Since(start))
	}()

	env, err := network.DecodeClient(raw)
	if err != nil {
		s.sendError(sess, err)
		return
	}

	switch env.Type {
	case network.TypeCreate:
		if _, err := s.roomManager.CreateRoom(env.GameType, sess); err != nil {
			s.sendError(sess, err)
			return
		}
		s.monitor.SetActiveRooms(s.roomManager.Count())

	case network.TypeJoin:
		if _, err := s.roomManager.JoinRoom(env.RoomID, sess); err != nil {
			s.sendError(sess, err)
		}

	case network.TypeReady:
		r, err := s.currentRoom(sess)
		if err != nil {
			s.sendError(sess, err)
			return
		}
		if err := r.SetReady(sess.ID, env.Ready); err != nil {
			s.sendError(sess, err)
		}

	case network.TypeAction:
		r, err := s.currentRoom(sess)
		if err != nil {
			s.sendError(sess, err)
			return
		}
		if err := r.ApplyAction(sess.ID, env.Action, env.Data); err != nil {
			s.sendError(sess, err)
		}
	}
}

// currentRoom resolves the sender's room. A dangling room reference (the room
// was destroyed under the player) is cleared and reported as NotInRoom.
func (s *GameServer) currentRoom(sess *session.Session) (*room.Room, error) {
	roomID := sess.RoomID()
	if roomID == "" {
		return nil, room.ErrNotInRoom
	}
	r, exists := s.roomManager.GetRoom(roomID)
	if !exists {
		sess.SetRoomID("")
		return nil, room.ErrNotInRoom
	}
	return r, nil
}

func (s *GameServer) sendError(sess *session.Session, err error) {
	logger.Log.Infof("Rejected envelope from player %s: %v", sess.ID, err)
	sess.SendEnvelope(network.NewError(errorCode(err), err.Error()))
}

// errorCode maps an error to its taxonomy name for the wire.
func errorCode(err error) string {
	switch {
	case errors.Is(err, network.ErrMalformedEnvelope):
		return "MalformedEnvelope"
	case errors.Is(err, game.ErrUnknownGameType):
		return "UnknownGameType"
	case errors.Is(err, game.ErrInvalidAction):
		return "InvalidAction"
	case errors.Is(err, room.ErrRoomNotFound):
		return "RoomNotFound"
	case errors.Is(err, room.ErrRoomNotJoinable):
		return "RoomNotJoinable"
	case errors.Is(err, room.ErrRoomFull):
		return "RoomFull"
	case errors.Is(err, room.ErrAlreadyInRoom):
		return "AlreadyInRoom"
	case errors.Is(err, room.ErrNotInRoom):
		return "NotInRoom"
	case errors.Is(err, room.ErrInvalidState):
		return "InvalidState"
	default:
		return "Internal"
	}
}
