// identity/identity.go
package identity

import (
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/blockfall/gameserver/models"
)

var (
	ErrEmptyName = errors.New("name must not be empty")
	ErrNameTaken = errors.New("name already taken")
)

// Service 进程内的玩家注册表。名字不区分大小写唯一，token 仅在进程生命
// 周期内有效。
type Service struct {
	byToken map[uuid.UUID]models.Player
	names   map[string]string // lower(name) -> player id
	mutex   sync.RWMutex
}

func NewService() *Service {
	return &Service{
		byToken: make(map[uuid.UUID]models.Player),
		names:   make(map[string]string),
	}
}

// Register claims a nickname and issues an auth token for it.
func (s *Service) Register(name string) (models.Player, uuid.UUID, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Player{}, uuid.Nil, ErrEmptyName
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	key := strings.ToLower(name)
	if _, exists := s.names[key]; exists {
		return models.Player{}, uuid.Nil, ErrNameTaken
	}

	player := models.Player{ID: uuid.New().String(), Name: name}
	token := uuid.New()
	s.names[key] = player.ID
	s.byToken[token] = player
	return player, token, nil
}

// Resolve returns the player a token was issued for.
func (s *Service) Resolve(token uuid.UUID) (models.Player, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	player, exists := s.byToken[token]
	return player, exists
}
