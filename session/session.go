// session/session.go
package session

import (
	"sync"
	"time"

	"github.com/blockfall/gameserver/models"
	"github.com/blockfall/gameserver/network"
)

// Session 一条连接及其订阅关系
type Session struct {
	ID         string
	Conn       network.Connection
	CreatedAt  time.Time
	LastActive time.Time

	player *models.Player
	gameID string
	lobby  bool
	mutex  sync.RWMutex
}

func NewSession(id string, conn network.Connection) *Session {
	now := time.Now()
	return &Session{
		ID:         id,
		Conn:       conn,
		CreatedAt:  now,
		LastActive: now,
	}
}

func (s *Session) GetID() string {
	return s.ID
}

// Send queues a frame on the underlying connection. Safe for concurrent
// use; the router and engine fan-out paths both deliver through here.
func (s *Session) Send(frame string) error {
	s.mutex.Lock()
	s.LastActive = time.Now()
	s.mutex.Unlock()
	return s.Conn.Send(frame)
}

// BindPlayer associates a resolved player with the connection.
func (s *Session) BindPlayer(p models.Player) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.player = &p
}

// Player returns the bound player, if any.
func (s *Session) Player() (models.Player, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	if s.player == nil {
		return models.Player{}, false
	}
	return *s.player, true
}

// GameID returns the game the session is currently watching.
func (s *Session) GameID() string {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.gameID
}

func (s *Session) Close() error {
	return s.Conn.Close()
}

// Manager 连接目录：会话注册与按作用域查询
type Manager struct {
	sessions map[string]*Session
	mutex    sync.RWMutex
}

func NewManager() *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
	}
}

func (m *Manager) Add(session *Session) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.sessions[session.ID] = session
}

func (m *Manager) Remove(sessionID string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	delete(m.sessions, sessionID)
}

func (m *Manager) Get(sessionID string) (*Session, bool) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	session, exists := m.sessions[sessionID]
	return session, exists
}

// Count returns the number of live sessions.
func (m *Manager) Count() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.sessions)
}

// SubscribeGame associates the session with a game scope, replacing any
// previous game association.
func (m *Manager) SubscribeGame(s *Session, gameID string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.gameID = gameID
}

// SubscribeLobby adds the session to the lobby scope.
func (m *Manager) SubscribeLobby(s *Session) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.lobby = true
}

// UnsubscribeGame detaches the session from its game scope.
func (m *Manager) UnsubscribeGame(s *Session) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.gameID = ""
}

// GameSessions returns every session currently associated with gameID.
func (m *Manager) GameSessions(gameID string) []*Session {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	var result []*Session
	for _, s := range m.sessions {
		if s.GameID() == gameID {
			result = append(result, s)
		}
	}
	return result
}

// LobbySessions returns every session subscribed to the games list.
func (m *Manager) LobbySessions() []*Session {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	var result []*Session
	for _, s := range m.sessions {
		s.mutex.RLock()
		inLobby := s.lobby
		s.mutex.RUnlock()
		if inLobby {
			result = append(result, s)
		}
	}
	return result
}
