package game

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/reelparty/reelparty/internal/models"
)

// PlayerStore is the session registry: one Player record per live
// connection, created on join/create and destroyed on disconnect.
type PlayerStore struct {
	mu      sync.Mutex
	players map[uuid.UUID]*models.Player
}

// NewPlayerStore initializes an empty PlayerStore.
func NewPlayerStore() *PlayerStore {
	return &PlayerStore{
		players: make(map[uuid.UUID]*models.Player),
	}
}

// Create registers a new player session. Player ids are connection-scoped,
// so a duplicate id is a defect; the store refuses it rather than clobber
// the existing session.
func (s *PlayerStore) Create(id uuid.UUID, name, lobbyCode string) (*models.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.players[id]; exists {
		return nil, fmt.Errorf("player %s already registered", id)
	}
	p := &models.Player{
		ID:             id,
		Name:           name,
		LobbyCode:      lobbyCode,
		VotesRemaining: models.DefaultVoteBudget(),
	}
	s.players[id] = p
	return p, nil
}

// Get returns the player record for id, if present.
func (s *PlayerStore) Get(id uuid.UUID) (*models.Player, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.players[id]
	return p, ok
}

// Remove deletes the player record for id. Idempotent.
func (s *PlayerStore) Remove(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.players, id)
}
