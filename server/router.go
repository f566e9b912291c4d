// server/router.go
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/blockfall/gameserver/broadcast"
	"github.com/blockfall/gameserver/engine"
	"github.com/blockfall/gameserver/identity"
	"github.com/blockfall/gameserver/logger"
	"github.com/blockfall/gameserver/models"
	"github.com/blockfall/gameserver/monitor"
	"github.com/blockfall/gameserver/network"
	"github.com/blockfall/gameserver/session"
)

// Router 每连接的协议解码与分发。结构非法的帧是连接级致命错误；合法但
// 未知的命令返回错误响应，连接保持打开。属主校验（start/cancel/config）
// 在这里完成，引擎收到的调用都已通过授权。
type Router struct {
	games    *engine.Registry
	sessions *session.Manager
	identity *identity.Service
	hub      *broadcast.Hub
	monitor  *monitor.Monitor
	defaults models.GameConfig
}

func NewRouter(games *engine.Registry, sessions *session.Manager, ident *identity.Service,
	hub *broadcast.Hub, mon *monitor.Monitor, defaults models.GameConfig) *Router {
	return &Router{
		games:    games,
		sessions: sessions,
		identity: ident,
		hub:      hub,
		monitor:  mon,
		defaults: defaults,
	}
}

type signUpRequest struct {
	Name string `json:"name"`
}

type enterGameRequest struct {
	GameID string `json:"gameId"`
}

// Handle decodes and dispatches one inbound frame. A non-nil return means
// the connection must be closed.
func (r *Router) Handle(sess *session.Session, frame string) error {
	started := time.Now()
	r.monitor.IncCommandsReceived()
	defer func() {
		r.monitor.ObserveCommandLatency(time.Since(started))
	}()

	cmd, err := network.ParseCommand(frame)
	if err != nil {
		sess.Send(network.EncodeResponseRaw(rawIDToken(frame), network.Response{
			Status: network.StatusError,
			Errors: []string{err.Error()},
		}))
		return err
	}

	switch cmd.Name {
	case network.CmdSignUp:
		r.handleSignUp(sess, cmd)
	case network.CmdCreateGame:
		r.handleCreateGame(sess, cmd)
	case network.CmdEnterGame:
		r.handleEnterGame(sess, cmd)
	case network.CmdLeaveGame:
		r.handleLeaveGame(sess, cmd)
	case network.CmdCancelGame:
		r.handleCancelGame(sess, cmd)
	case network.CmdChangeConfig:
		r.handleChangeConfig(sess, cmd)
	case network.CmdStartGame:
		r.handleStartGame(sess, cmd)
	case network.CmdMoveLeft, network.CmdMoveRight, network.CmdMoveDown, network.CmdRotate:
		r.handleMove(sess, cmd)
	case network.CmdSendState:
		r.handleSendState(sess, cmd)
	case network.CmdSendGames:
		r.handleSendGames(sess, cmd)
	case network.CmdSendParticipants:
		r.handleSendParticipants(sess, cmd)
	default:
		r.respondError(sess, cmd, fmt.Sprintf("command not found: %s:%s", cmd.Name, cmd.ID))
	}
	return nil
}

// rawIDToken best-effort extracts the command id from a frame that failed
// to parse, so the error response can still reference it.
func rawIDToken(frame string) string {
	head, _, _ := strings.Cut(frame, "@")
	if _, id, found := strings.Cut(head, ":"); found {
		return id
	}
	return uuid.Nil.String()
}

func (r *Router) respond(sess *session.Session, cmd *network.Command, data any) {
	if cmd.ID == uuid.Nil {
		return
	}
	sess.Send(network.EncodeResponse(cmd.ID, network.Response{
		Status: network.StatusOK,
		Data:   data,
	}))
}

func (r *Router) respondError(sess *session.Session, cmd *network.Command, errs ...string) {
	if cmd.ID == uuid.Nil {
		return
	}
	sess.Send(network.EncodeResponse(cmd.ID, network.Response{
		Status: network.StatusError,
		Errors: errs,
	}))
}

// player returns the bound player or answers with an error response.
func (r *Router) player(sess *session.Session, cmd *network.Command) (models.Player, bool) {
	p, ok := sess.Player()
	if !ok {
		r.respondError(sess, cmd, "player not registered")
	}
	return p, ok
}

// game resolves the session's current game or notifies game_not_found.
func (r *Router) game(sess *session.Session, cmd *network.Command) (*engine.Engine, bool) {
	gameID := sess.GameID()
	if gameID == "" {
		r.respondError(sess, cmd, "not in a game")
		return nil, false
	}
	eng, exists := r.games.Get(gameID)
	if !exists {
		r.hub.GameNotFound(sess, gameID)
		r.respondError(sess, cmd, "game not found")
		return nil, false
	}
	return eng, true
}

func (r *Router) handleSignUp(sess *session.Session, cmd *network.Command) {
	var req signUpRequest
	if err := json.Unmarshal(cmd.Payload, &req); err != nil {
		r.respondError(sess, cmd, "invalid payload")
		return
	}
	player, token, err := r.identity.Register(req.Name)
	if err != nil {
		r.respondError(sess, cmd, err.Error())
		return
	}
	sess.BindPlayer(player)
	r.respond(sess, cmd, map[string]any{
		"id":    player.ID,
		"name":  player.Name,
		"token": token.String(),
	})
}

func (r *Router) handleCreateGame(sess *session.Session, cmd *network.Command) {
	player, ok := r.player(sess, cmd)
	if !ok {
		return
	}
	eng := r.games.Create(player.ID, r.defaults)
	eng.Subscribe(r.onEngineEvent)
	eng.AddPlayer(player.ID)
	r.sessions.SubscribeGame(sess, eng.ID())

	r.monitor.SetActiveGames(r.games.Count())
	r.hub.PushGamesList()
	logger.Log.Infof("player %s created game %s", player.ID, eng.ID())
	r.respond(sess, cmd, eng.Snapshot())
}

// onEngineEvent fans engine events out to the game scope and keeps the
// lobby list fresh on lifecycle changes.
func (r *Router) onEngineEvent(gameID string, ev engine.Event) {
	if err := r.hub.GameEvent(gameID, ev); err != nil && !errors.Is(err, broadcast.ErrGameNotFound) {
		logger.Log.Warnf("broadcast for game %s failed: %v", gameID, err)
	}
	if ev.Name == engine.EventStatusChanged {
		r.hub.PushGamesList()
	}
}

func (r *Router) handleEnterGame(sess *session.Session, cmd *network.Command) {
	player, ok := r.player(sess, cmd)
	if !ok {
		return
	}
	var req enterGameRequest
	if err := json.Unmarshal(cmd.Payload, &req); err != nil || req.GameID == "" {
		r.respondError(sess, cmd, "invalid payload")
		return
	}
	eng, exists := r.games.Get(req.GameID)
	if !exists {
		r.hub.GameNotFound(sess, req.GameID)
		r.respondError(sess, cmd, "game not found")
		return
	}

	if eng.HasPlayer(player.ID) {
		// 参与者重连：恢复被挂起的对局
		eng.Resume()
	} else {
		eng.AddPlayer(player.ID)
	}
	r.sessions.SubscribeGame(sess, eng.ID())
	r.respond(sess, cmd, eng.Snapshot())
}

func (r *Router) handleLeaveGame(sess *session.Session, cmd *network.Command) {
	player, ok := r.player(sess, cmd)
	if !ok {
		return
	}
	if eng, found := r.game(sess, cmd); found {
		eng.RemovePlayer(player.ID)
		r.sessions.UnsubscribeGame(sess)
		r.respond(sess, cmd, nil)
	}
}

func (r *Router) handleCancelGame(sess *session.Session, cmd *network.Command) {
	player, ok := r.player(sess, cmd)
	if !ok {
		return
	}
	eng, found := r.game(sess, cmd)
	if !found {
		return
	}
	if eng.OwnerID() != player.ID {
		// 非属主取消：按原有行为静默忽略
		r.respond(sess, cmd, nil)
		return
	}
	r.games.Evict(eng.ID())
	r.monitor.SetActiveGames(r.games.Count())
	r.hub.PushGamesList()
	r.respond(sess, cmd, nil)
}

func (r *Router) handleChangeConfig(sess *session.Session, cmd *network.Command) {
	player, ok := r.player(sess, cmd)
	if !ok {
		return
	}
	eng, found := r.game(sess, cmd)
	if !found {
		return
	}
	if eng.OwnerID() != player.ID {
		// 与 cancel/start 不对称：非属主改配置返回显式错误
		r.respondError(sess, cmd, "only the owner may change the config")
		return
	}
	var cfg models.GameConfig
	if err := json.Unmarshal(cmd.Payload, &cfg); err != nil {
		r.respondError(sess, cmd, "invalid payload")
		return
	}
	if cfg.Cols <= 0 || cfg.Rows <= 0 {
		r.respondError(sess, cmd, "cols and rows must be positive")
		return
	}
	eng.Configure(cfg)
	r.respond(sess, cmd, nil)
}

func (r *Router) handleStartGame(sess *session.Session, cmd *network.Command) {
	player, ok := r.player(sess, cmd)
	if !ok {
		return
	}
	eng, found := r.game(sess, cmd)
	if !found {
		return
	}
	if eng.OwnerID() != player.ID {
		r.respond(sess, cmd, nil)
		return
	}
	eng.Start()
	r.respond(sess, cmd, nil)
}

func (r *Router) handleMove(sess *session.Session, cmd *network.Command) {
	player, ok := r.player(sess, cmd)
	if !ok {
		return
	}
	eng, found := r.game(sess, cmd)
	if !found {
		return
	}
	if !eng.IsCurrentPlayer(player.ID) {
		// 回合校验不通过的指令直接忽略
		r.respond(sess, cmd, nil)
		return
	}
	switch cmd.Name {
	case network.CmdMoveLeft:
		eng.MoveLeft()
	case network.CmdMoveRight:
		eng.MoveRight()
	case network.CmdMoveDown:
		eng.MoveDown()
	case network.CmdRotate:
		eng.Rotate()
	}
	r.respond(sess, cmd, nil)
}

func (r *Router) handleSendState(sess *session.Session, cmd *network.Command) {
	if eng, found := r.game(sess, cmd); found {
		r.respond(sess, cmd, eng.Snapshot())
	}
}

func (r *Router) handleSendGames(sess *session.Session, cmd *network.Command) {
	r.sessions.SubscribeLobby(sess)
	list := r.games.List()
	sess.Send(network.EncodeEvent(network.EventGamesList, list))
	r.respond(sess, cmd, list)
}

func (r *Router) handleSendParticipants(sess *session.Session, cmd *network.Command) {
	if eng, found := r.game(sess, cmd); found {
		players := eng.Players()
		sess.Send(network.EncodeEvent(network.EventParticipantList, players))
		r.respond(sess, cmd, players)
	}
}
