// internal/game/lobby_store_test.go
package game

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateLobbyGeneratesCode(t *testing.T) {
	store := NewLobbyStore()

	l := store.CreateLobby(uuid.New(), "popular", testMovies(3))
	require.Len(t, l.Code, codeLength)
	for _, c := range l.Code {
		assert.Contains(t, codeAlphabet, string(c))
	}

	got, ok := store.Get(l.Code)
	require.True(t, ok)
	assert.Same(t, l, got)
}

func TestCreateLobbyRetriesOnCollision(t *testing.T) {
	store := NewLobbyStore()

	codes := []string{"AAAAAA", "AAAAAA", "BBBBBB"}
	store.genCode = func() string {
		code := codes[0]
		codes = codes[1:]
		return code
	}

	first := store.CreateLobby(uuid.New(), "popular", testMovies(3))
	assert.Equal(t, "AAAAAA", first.Code)

	// The second create draws the taken code and must retry.
	second := store.CreateLobby(uuid.New(), "popular", testMovies(3))
	assert.Equal(t, "BBBBBB", second.Code)
	assert.Empty(t, codes)
}

func TestLobbyStoreDelete(t *testing.T) {
	store := NewLobbyStore()
	l := store.CreateLobby(uuid.New(), "popular", testMovies(3))

	store.Delete(l.Code)
	_, ok := store.Get(l.Code)
	assert.False(t, ok)

	store.Delete(l.Code) // idempotent
}

func TestLobbiesSnapshot(t *testing.T) {
	store := NewLobbyStore()
	a := store.CreateLobby(uuid.New(), "popular", testMovies(3))
	b := store.CreateLobby(uuid.New(), "classic", testMovies(3))

	all := store.Lobbies()
	require.Len(t, all, 2)
	assert.Same(t, a, all[a.Code])
	assert.Same(t, b, all[b.Code])

	// Mutating the snapshot must not reach the store.
	delete(all, a.Code)
	_, ok := store.Get(a.Code)
	assert.True(t, ok)
}
