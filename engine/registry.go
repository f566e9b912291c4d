// engine/registry.go
package engine

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/blockfall/gameserver/models"
)

var ErrGameNotFound = errors.New("game not found")

// Registry 游戏注册表：对局 id -> 引擎
type Registry struct {
	games        map[string]*Engine
	mutex        sync.RWMutex
	quantum      time.Duration
	gravityDelay time.Duration
}

// NewRegistry creates a registry handing every new engine the same tick
// quantum and gravity delay.
func NewRegistry(quantum, gravityDelay time.Duration) *Registry {
	return &Registry{
		games:        make(map[string]*Engine),
		quantum:      quantum,
		gravityDelay: gravityDelay,
	}
}

// Create builds a new waiting game owned by ownerID.
func (r *Registry) Create(ownerID string, cfg models.GameConfig) *Engine {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	id := uuid.New().String()
	eng := New(id, ownerID, cfg, r.quantum, r.gravityDelay)
	r.games[id] = eng
	return eng
}

// Get looks up a game by id.
func (r *Registry) Get(id string) (*Engine, bool) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	eng, exists := r.games[id]
	return eng, exists
}

// Evict stops and removes a game.
func (r *Registry) Evict(id string) {
	r.mutex.Lock()
	eng, exists := r.games[id]
	if exists {
		delete(r.games, id)
	}
	r.mutex.Unlock()

	if exists {
		eng.Stop()
	}
}

// Count returns the number of registered games.
func (r *Registry) Count() int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return len(r.games)
}

// List returns lobby summaries for every registered game.
func (r *Registry) List() []models.GameSummary {
	r.mutex.RLock()
	engines := make([]*Engine, 0, len(r.games))
	for _, eng := range r.games {
		engines = append(engines, eng)
	}
	r.mutex.RUnlock()

	summaries := make([]models.GameSummary, 0, len(engines))
	for _, eng := range engines {
		summaries = append(summaries, eng.Summary())
	}
	return summaries
}
