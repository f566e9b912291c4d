package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/blockfall/gameserver/broadcast"
	"github.com/blockfall/gameserver/config"
	"github.com/blockfall/gameserver/engine"
	"github.com/blockfall/gameserver/identity"
	"github.com/blockfall/gameserver/logger"
	"github.com/blockfall/gameserver/models"
	"github.com/blockfall/gameserver/monitor"
	"github.com/blockfall/gameserver/network"
	"github.com/blockfall/gameserver/session"
)

type GameServer struct {
	addr        string
	metricsAddr string
	upgrader    websocket.Upgrader

	games    *engine.Registry
	sessions *session.Manager
	identity *identity.Service
	hub      *broadcast.Hub
	monitor  *monitor.Monitor
	router   *Router

	shutdownChan chan struct{}
}

func NewGameServer(cfg *config.Config) *GameServer {
	s := &GameServer{
		addr:        cfg.Server.HTTPAddress,
		metricsAddr: cfg.Server.MetricsAddress,
		sessions:    session.NewManager(),
		identity:    identity.NewService(),
		monitor:     monitor.NewMonitor("blockfall"),
		games: engine.NewRegistry(
			time.Duration(cfg.Game.TickIntervalMs)*time.Millisecond,
			time.Duration(cfg.Game.GravityDelayMs)*time.Millisecond,
		),
		shutdownChan: make(chan struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // 允许所有跨域请求
			},
		},
	}

	s.hub = broadcast.NewHub(s.sessions, s.games)
	s.router = NewRouter(s.games, s.sessions, s.identity, s.hub, s.monitor, models.GameConfig{
		Cols: cfg.Game.Cols,
		Rows: cfg.Game.Rows,
		Name: cfg.Game.Name,
	})

	return s
}

func (s *GameServer) Start() error {
	s.monitor.StartServer(s.metricsAddr)

	http.HandleFunc("/ws", s.handleWebSocket)
	logger.Log.Infof("Game server listening on %s", s.addr)
	return http.ListenAndServe(s.addr, nil)
}

func (s *GameServer) Shutdown() {
	close(s.shutdownChan)
}

func (s *GameServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.Infof("Failed to upgrade connection: %v", err)
		return
	}
	s.handleConnection(conn, r.URL.Query().Get("token"))
}

func (s *GameServer) handleConnection(conn *websocket.Conn, token string) {
	wsConn := network.NewWSConnection(conn)
	sess := session.NewSession(uuid.New().String(), wsConn)

	// 带 token 的连接在升级时解析玩家身份
	if token != "" {
		if parsed, err := uuid.Parse(token); err == nil {
			if player, ok := s.identity.Resolve(parsed); ok {
				sess.BindPlayer(player)
			}
		}
	}

	s.sessions.Add(sess)
	s.monitor.IncSessions()
	logger.Log.Infof("New connection from %s, session ID: %s", wsConn.RemoteAddr(), sess.GetID())

	defer func() {
		logger.Log.Infof("Connection closed from %s, session ID: %s", wsConn.RemoteAddr(), sess.GetID())
		s.detach(sess)
		s.sessions.Remove(sess.GetID())
		s.monitor.DecSessions()
		wsConn.Close()
	}()

	for {
		select {
		case <-s.shutdownChan:
			return
		default:
			frame, err := wsConn.ReadFrame()
			if err != nil {
				return
			}
			if err := s.router.Handle(sess, frame); err != nil {
				if errors.Is(err, network.ErrMalformedFrame) {
					logger.Log.Warnf("session %s sent a malformed frame, closing", sess.GetID())
				}
				return
			}
		}
	}
}

// detach unwinds a session's game association on disconnect. A running
// game a participant drops out of is suspended, not torn down; a waiting
// game just loses the player.
func (s *GameServer) detach(sess *session.Session) {
	gameID := sess.GameID()
	if gameID == "" {
		return
	}
	eng, exists := s.games.Get(gameID)
	if !exists {
		return
	}
	player, bound := sess.Player()
	if !bound || !eng.HasPlayer(player.ID) {
		return
	}
	switch eng.Status() {
	case engine.StatusRunning:
		eng.Suspend()
	case engine.StatusWaiting:
		eng.RemovePlayer(player.ID)
	}
}
