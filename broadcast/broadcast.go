// broadcast/broadcast.go
package broadcast

import (
	"errors"

	"github.com/blockfall/gameserver/engine"
	"github.com/blockfall/gameserver/network"
	"github.com/blockfall/gameserver/session"
)

var ErrGameNotFound = errors.New("game not found")

// Broadcaster 两个投递作用域：单个对局的观察者，以及订阅开局列表的大厅
type Broadcaster interface {
	ToGame(gameID string, frame string) error
	ToLobby(frame string)
}

// Hub fans serialized frames out to subscribed connections. Delivery is
// at-most-once per currently-connected socket, fire-and-forget.
type Hub struct {
	sessions *session.Manager
	games    *engine.Registry
}

func NewHub(sessions *session.Manager, games *engine.Registry) *Hub {
	return &Hub{sessions: sessions, games: games}
}

// ToGame delivers a frame to every connection watching gameID. A game with
// no watchers is a silent no-op; an unknown game id is an error the caller
// surfaces as a game_not_found notification.
func (h *Hub) ToGame(gameID string, frame string) error {
	if _, exists := h.games.Get(gameID); !exists {
		return ErrGameNotFound
	}
	for _, s := range h.sessions.GameSessions(gameID) {
		// 单个连接发送失败不影响其他连接
		s.Send(frame)
	}
	return nil
}

// ToLobby delivers a frame to every lobby subscriber.
func (h *Hub) ToLobby(frame string) {
	for _, s := range h.sessions.LobbySessions() {
		s.Send(frame)
	}
}

// GameEvent serializes and fans out an engine event to the game scope.
func (h *Hub) GameEvent(gameID string, ev engine.Event) error {
	return h.ToGame(gameID, network.EncodeEvent(ev.Name, ev.Payload))
}

// PushGamesList snapshots the registry and refreshes every lobby
// subscriber.
func (h *Hub) PushGamesList() {
	h.ToLobby(network.EncodeEvent(network.EventGamesList, h.games.List()))
}

// GameNotFound notifies a single caller-scoped audience that a game id did
// not resolve.
func (h *Hub) GameNotFound(s *session.Session, gameID string) {
	s.Send(network.EncodeEvent(network.EventGameNotFound, map[string]any{"gameId": gameID}))
}
