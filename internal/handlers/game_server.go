// internal/handlers/game_server.go
package handlers

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/reelparty/reelparty/internal/cache"
	"github.com/reelparty/reelparty/internal/game"
	"github.com/reelparty/reelparty/internal/models"
)

// MovieProvider supplies candidate movies for new lobbies. Satisfied by
// *tmdb.Client; tests substitute a fixed catalog.
type MovieProvider interface {
	MoviesForGame(ctx context.Context, topic string, count int) []models.Movie
	CustomMovies(ctx context.Context, titles []string, count int) []models.Movie
}

// GameServer owns the registries and the broadcast membership map: lobby
// code -> the set of live connection handles. It is constructed once at
// process start and handed to the websocket handler explicitly; there are
// no package-level singletons.
type GameServer struct {
	Lobbies  *game.LobbyStore
	Players  *game.PlayerStore
	Provider MovieProvider
	History  *cache.Publisher
	Logger   *logrus.Logger

	mu      sync.Mutex
	members map[string]map[uuid.UUID]*playerConn
}

// NewGameServer wires up empty registries around the given collaborators.
func NewGameServer(provider MovieProvider, history *cache.Publisher, logger *logrus.Logger) *GameServer {
	return &GameServer{
		Lobbies:  game.NewLobbyStore(),
		Players:  game.NewPlayerStore(),
		Provider: provider,
		History:  history,
		Logger:   logger,
		members:  make(map[string]map[uuid.UUID]*playerConn),
	}
}

// wireLobby points the lobby's delivery callbacks at this server's
// membership map and hooks lifecycle cleanup and history publishing.
func (gs *GameServer) wireLobby(l *game.Lobby) {
	code := l.Code
	l.BroadcastFn = func(ev game.Event) {
		for _, c := range gs.lobbyConns(code) {
			c.Send(outMessage{Type: ev.Type, Data: ev.Data})
		}
	}
	l.BroadcastToPlayerFn = func(playerID uuid.UUID, ev game.Event) {
		if c, ok := gs.memberConn(code, playerID); ok {
			c.Send(outMessage{Type: ev.Type, Data: ev.Data})
		}
	}
	l.OnEmpty = func(code string) {
		gs.Lobbies.Delete(code)
		gs.mu.Lock()
		delete(gs.members, code)
		gs.mu.Unlock()
		gs.Logger.Infof("lobby %s is empty, destroyed", code)
	}
	l.OnRoundComplete = func(code, topic string, res models.RoundResults) {
		rec := cache.RoundRecord{
			LobbyCode:   code,
			Topic:       topic,
			CompletedAt: time.Now().Unix(),
			Results:     res.Results,
			Votes:       res.Votes,
		}
		go gs.History.PublishRound(context.Background(), rec)
	}
}

// addMember registers conn as the live handle for its player within the
// lobby's broadcast group, superseding (and cancelling) any stale handle.
func (gs *GameServer) addMember(code string, conn *playerConn) {
	gs.mu.Lock()
	group, ok := gs.members[code]
	if !ok {
		group = make(map[uuid.UUID]*playerConn)
		gs.members[code] = group
	}
	old := group[conn.playerID]
	group[conn.playerID] = conn
	gs.mu.Unlock()

	if old != nil && old != conn {
		old.cancel()
	}
}

// removeMemberConn drops conn from the lobby's broadcast group. Returns
// false when conn has already been superseded by a reconnect, in which
// case the caller must not tear down the player's session.
func (gs *GameServer) removeMemberConn(code string, conn *playerConn) bool {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	group, ok := gs.members[code]
	if !ok {
		return false
	}
	if group[conn.playerID] != conn {
		return false
	}
	delete(group, conn.playerID)
	if len(group) == 0 {
		delete(gs.members, code)
	}
	return true
}

func (gs *GameServer) lobbyConns(code string) []*playerConn {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	conns := make([]*playerConn, 0, len(gs.members[code]))
	for _, c := range gs.members[code] {
		conns = append(conns, c)
	}
	return conns
}

func (gs *GameServer) memberConn(code string, playerID uuid.UUID) (*playerConn, bool) {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	c, ok := gs.members[code][playerID]
	return c, ok
}
