package game

import (
	"math/rand"
	"sync"

	"github.com/google/uuid"

	"github.com/reelparty/reelparty/internal/models"
)

// codeAlphabet excludes easily confused glyphs (0/O, 1/I) so lobby codes
// survive being read aloud across a couch.
const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// codeLength is the number of characters in a lobby code.
const codeLength = 6

// LobbyStore manages active lobbies in memory, keyed by their shareable
// code. It is the single authority on which codes are live.
type LobbyStore struct {
	mu      sync.Mutex
	lobbies map[string]*Lobby

	// genCode produces candidate codes; swapped out in tests to force
	// collisions.
	genCode func() string
}

// NewLobbyStore initializes an empty LobbyStore.
func NewLobbyStore() *LobbyStore {
	return &LobbyStore{
		lobbies: make(map[string]*Lobby),
		genCode: randomCode,
	}
}

func randomCode() string {
	b := make([]byte, codeLength)
	for i := range b {
		b[i] = codeAlphabet[rand.Intn(len(codeAlphabet))]
	}
	return string(b)
}

// CreateLobby allocates a fresh code, builds a waiting lobby around the
// given movie selection and registers it. Collisions against live codes
// are retried; at 32^6 possible codes the loop almost never iterates, but
// the check is required for correctness, not speed.
func (s *LobbyStore) CreateLobby(hostID uuid.UUID, topic string, movies []models.Movie) *Lobby {
	s.mu.Lock()
	defer s.mu.Unlock()

	code := s.genCode()
	for {
		if _, taken := s.lobbies[code]; !taken {
			break
		}
		code = s.genCode()
	}

	l := NewLobby(code, hostID, topic, movies)
	s.lobbies[code] = l
	return l
}

// Get retrieves a lobby by code.
func (s *LobbyStore) Get(code string) (*Lobby, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.lobbies[code]
	return l, ok
}

// Delete removes a lobby from the store. Invoked via the lobby's OnEmpty
// callback when the last player leaves.
func (s *LobbyStore) Delete(code string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.lobbies, code)
}

// Lobbies returns a snapshot of the active lobbies, for listing and
// debugging. The copy keeps callers from racing the store while iterating.
func (s *LobbyStore) Lobbies() map[string]*Lobby {
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot := make(map[string]*Lobby, len(s.lobbies))
	for k, v := range s.lobbies {
		snapshot[k] = v
	}
	return snapshot
}
