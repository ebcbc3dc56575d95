// internal/game/lobby.go
package game

import (
	"sync"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/reelparty/reelparty/internal/models"
)

// FetchPoolSize is how many candidates are requested from the catalog
// provider; MoviesPerRound of them are sampled for each lobby.
const (
	FetchPoolSize  = 25
	MoviesPerRound = 9
)

// State is the lobby's position in the round lifecycle.
type State string

const (
	StateWaiting    State = "waiting"
	StateInProgress State = "in_progress"
	StateCompleted  State = "completed"
)

// Event types emitted by the engine.
const (
	EventMovieNew       = "movie:new"
	EventPlayersStatus  = "players:status"
	EventVotesRemaining = "votes:remaining"
	EventRoundComplete  = "round:complete"
)

// Event is an outbound message produced by the engine. The gateway decides
// delivery: BroadcastFn fans out to every lobby member, BroadcastToPlayerFn
// targets a single player.
type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

// Lobby is the authoritative state for one game instance. All mutation
// happens with Mu held; the gateway takes the lock for the duration of each
// inbound event, so within a lobby events are processed one at a time to
// completion.
type Lobby struct {
	Code              string
	HostID            uuid.UUID
	Players           []uuid.UUID // join order
	Movies            []models.Movie
	CurrentMovieIndex int
	Votes             map[string]map[uuid.UUID]models.VoteType
	State             State
	Topic             string

	BroadcastFn         func(ev Event)
	BroadcastToPlayerFn func(playerID uuid.UUID, ev Event)

	// OnEmpty is invoked after the last player leaves, outside the lock.
	OnEmpty func(code string)

	// OnRoundComplete is invoked after round results have been broadcast.
	// Called with the lobby lock held; implementations must not call back
	// into the lobby.
	OnRoundComplete func(code, topic string, res models.RoundResults)

	Mu sync.Mutex
}

// NewLobby builds a waiting lobby around a fixed movie selection.
func NewLobby(code string, hostID uuid.UUID, topic string, movies []models.Movie) *Lobby {
	return &Lobby{
		Code:    code,
		HostID:  hostID,
		Players: []uuid.UUID{hostID},
		Movies:  movies,
		Votes:   make(map[string]map[uuid.UUID]models.VoteType),
		State:   StateWaiting,
		Topic:   topic,
	}
}

// AddPlayer appends a joining player and broadcasts the updated roster.
func (l *Lobby) AddPlayer(players *PlayerStore, playerID uuid.UUID) {
	l.Mu.Lock()
	defer l.Mu.Unlock()
	l.Players = append(l.Players, playerID)
	l.broadcastStatus(players)
}

// HandleReady processes a round:ready signal: the sender's budget and
// voted flag reset and they are marked ready. A completed lobby rolls back
// to waiting for a fresh round, and once every joined player is ready the
// round starts and the first movie fans out.
func (l *Lobby) HandleReady(players *PlayerStore, playerID uuid.UUID) {
	l.Mu.Lock()
	defer l.Mu.Unlock()

	// A ready signal mid-round is not applicable; ignoring it here keeps
	// it from resetting a voted flag and reopening the current movie.
	if l.State == StateInProgress {
		return
	}
	p, ok := players.Get(playerID)
	if !ok || p.LobbyCode != l.Code {
		return
	}

	p.VotesRemaining = models.DefaultVoteBudget()
	p.HasVoted = false
	p.IsReady = true

	if l.State == StateCompleted {
		l.resetRound(players)
	}

	l.broadcastStatus(players)

	if l.State == StateWaiting && l.allReady(players) {
		l.startRound(players)
	}
}

// CastVote applies one vote from playerID on the current movie. Policy
// violations (unknown player, double vote, wrong movie, exhausted budget)
// are silent no-ops. An accepted vote may complete the movie and advance
// the round.
func (l *Lobby) CastVote(players *PlayerStore, playerID uuid.UUID, movieID string, vote models.VoteType) {
	l.Mu.Lock()
	defer l.Mu.Unlock()

	if l.State != StateInProgress {
		return
	}
	p, ok := players.Get(playerID)
	if !ok || p.LobbyCode != l.Code || p.HasVoted {
		return
	}
	// Votes are only accepted for the movie on screen; this also keeps
	// every key in Votes a real member of Movies.
	if movieID != l.Movies[l.CurrentMovieIndex].ID {
		return
	}
	// A cast vote is immutable for the movie, independent of the flag.
	if _, voted := l.Votes[movieID][playerID]; voted {
		return
	}

	switch vote {
	case models.VoteUp:
		if p.VotesRemaining.Upvotes <= 0 {
			return
		}
		p.VotesRemaining.Upvotes--
	case models.VoteDown:
		if p.VotesRemaining.Downvotes <= 0 {
			return
		}
		p.VotesRemaining.Downvotes--
	case models.VotePass:
		// Passes are unbudgeted.
	default:
		return
	}

	if l.Votes[movieID] == nil {
		l.Votes[movieID] = make(map[uuid.UUID]models.VoteType)
	}
	l.Votes[movieID][playerID] = vote
	p.HasVoted = true

	l.sendToPlayer(playerID, Event{Type: EventVotesRemaining, Data: p.VotesRemaining})
	l.broadcastStatus(players)

	if l.allVoted(players) {
		l.advanceOrComplete(players)
	}
}

// RemovePlayer handles a disconnect: the player leaves the roster, host
// privileges move to the first remaining member in join order, and the
// all-voted condition is re-evaluated over whoever is left, since a
// departure can itself complete the current movie or the round. The last
// player leaving destroys the lobby via OnEmpty.
func (l *Lobby) RemovePlayer(players *PlayerStore, playerID uuid.UUID) {
	l.Mu.Lock()

	idx := -1
	for i, id := range l.Players {
		if id == playerID {
			idx = i
			break
		}
	}
	if idx < 0 {
		l.Mu.Unlock()
		return
	}
	l.Players = append(l.Players[:idx], l.Players[idx+1:]...)

	if len(l.Players) == 0 {
		onEmpty := l.OnEmpty
		l.Mu.Unlock()
		if onEmpty != nil {
			onEmpty(l.Code)
		}
		return
	}

	if l.HostID == playerID {
		l.HostID = l.Players[0]
	}

	l.broadcastStatus(players)

	if l.State == StateInProgress && l.allVoted(players) {
		l.advanceOrComplete(players)
	}
	l.Mu.Unlock()
}

// SendCurrentMovieTo pushes the movie on screen to a single player, used
// when a client joins a lobby mid-round.
func (l *Lobby) SendCurrentMovieTo(playerID uuid.UUID) {
	l.Mu.Lock()
	defer l.Mu.Unlock()
	if l.State != StateInProgress {
		return
	}
	l.sendToPlayer(playerID, l.currentMovieEvent())
}

// BroadcastStatus pushes the current roster to every member.
func (l *Lobby) BroadcastStatus(players *PlayerStore) {
	l.Mu.Lock()
	defer l.Mu.Unlock()
	l.broadcastStatus(players)
}

// StatusList returns the roster in join order.
func (l *Lobby) StatusList(players *PlayerStore) []models.PlayerStatus {
	l.Mu.Lock()
	defer l.Mu.Unlock()
	return l.statusList(players)
}

// startRound moves waiting -> in_progress and fans out the first movie.
// Ready flags are consumed by the start. Lock held.
func (l *Lobby) startRound(players *PlayerStore) {
	l.State = StateInProgress
	l.eachMember(players, func(p *models.Player) {
		p.IsReady = false
	})
	l.broadcast(l.currentMovieEvent())
}

// resetRound rolls a completed lobby back to waiting with a clean slate:
// cursor to the first movie, votes cleared, every member's budget and
// voted flag restored. Lock held.
func (l *Lobby) resetRound(players *PlayerStore) {
	l.CurrentMovieIndex = 0
	l.Votes = make(map[string]map[uuid.UUID]models.VoteType)
	l.State = StateWaiting
	l.eachMember(players, func(p *models.Player) {
		p.HasVoted = false
		p.VotesRemaining = models.DefaultVoteBudget()
	})
}

// advanceOrComplete fires once every joined player has voted on the
// current movie: either the cursor advances (voted flags reset, budgets
// kept) or the round completes and results fan out. Lock held.
func (l *Lobby) advanceOrComplete(players *PlayerStore) {
	if l.CurrentMovieIndex < len(l.Movies)-1 {
		l.CurrentMovieIndex++
		l.eachMember(players, func(p *models.Player) {
			p.HasVoted = false
		})
		l.broadcast(l.currentMovieEvent())
		return
	}

	l.State = StateCompleted
	l.eachMember(players, func(p *models.Player) {
		p.IsReady = false
	})
	res := ComputeResults(l.Movies, l.Votes)
	l.broadcast(Event{Type: EventRoundComplete, Data: res})
	if l.OnRoundComplete != nil {
		l.OnRoundComplete(l.Code, l.Topic, res)
	}
}

// allVoted reports whether every currently-joined player has voted on the
// current movie. Players missing from the session registry count as having
// voted; they are mid-removal. Lock held.
func (l *Lobby) allVoted(players *PlayerStore) bool {
	if len(l.Players) == 0 {
		return false
	}
	for _, id := range l.Players {
		if p, ok := players.Get(id); ok && !p.HasVoted {
			return false
		}
	}
	return true
}

// allReady reports whether every currently-joined player has signalled
// readiness. Lock held.
func (l *Lobby) allReady(players *PlayerStore) bool {
	if len(l.Players) == 0 {
		return false
	}
	for _, id := range l.Players {
		if p, ok := players.Get(id); ok && !p.IsReady {
			return false
		}
	}
	return true
}

func (l *Lobby) currentMovieEvent() Event {
	return Event{
		Type: EventMovieNew,
		Data: models.MoviePayload{
			Movie:       l.Movies[l.CurrentMovieIndex],
			MovieNumber: l.CurrentMovieIndex + 1,
			TotalMovies: len(l.Movies),
		},
	}
}

// statusList assembles the players:status payload in join order, skipping
// ids whose session record is already gone. Lock held.
func (l *Lobby) statusList(players *PlayerStore) []models.PlayerStatus {
	return lo.FilterMap(l.Players, func(id uuid.UUID, _ int) (models.PlayerStatus, bool) {
		p, ok := players.Get(id)
		if !ok {
			return models.PlayerStatus{}, false
		}
		return models.PlayerStatus{
			ID:       id.String(),
			Name:     p.Name,
			HasVoted: p.HasVoted,
			IsHost:   id == l.HostID,
			IsReady:  p.IsReady,
		}, true
	})
}

func (l *Lobby) broadcastStatus(players *PlayerStore) {
	l.broadcast(Event{Type: EventPlayersStatus, Data: l.statusList(players)})
}

func (l *Lobby) eachMember(players *PlayerStore, fn func(p *models.Player)) {
	for _, id := range l.Players {
		if p, ok := players.Get(id); ok {
			fn(p)
		}
	}
}

func (l *Lobby) broadcast(ev Event) {
	if l.BroadcastFn != nil {
		l.BroadcastFn(ev)
	}
}

func (l *Lobby) sendToPlayer(playerID uuid.UUID, ev Event) {
	if l.BroadcastToPlayerFn != nil {
		l.BroadcastToPlayerFn(playerID, ev)
	}
}
