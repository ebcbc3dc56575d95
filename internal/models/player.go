package models

import "github.com/google/uuid"

// VoteType is one of the three swipe directions.
type VoteType string

const (
	VoteUp   VoteType = "up"
	VoteDown VoteType = "down"
	VotePass VoteType = "pass"
)

// Valid reports whether v is a recognized vote type.
func (v VoteType) Valid() bool {
	return v == VoteUp || v == VoteDown || v == VotePass
}

// VoteBudget is the number of up/down votes a player has left this round.
// Passes are unlimited and never tracked here.
type VoteBudget struct {
	Upvotes   int `json:"upvotes"`
	Downvotes int `json:"downvotes"`
}

// DefaultVoteBudget is the per-round allowance every player starts with.
func DefaultVoteBudget() VoteBudget {
	return VoteBudget{Upvotes: 3, Downvotes: 3}
}

// Player is the session record for one live connection. Owned by the
// PlayerStore; lobbies reference players by ID only.
type Player struct {
	ID             uuid.UUID  `json:"id"`
	Name           string     `json:"name"`
	LobbyCode      string     `json:"-"`
	HasVoted       bool       `json:"hasVoted"`
	IsReady        bool       `json:"-"`
	VotesRemaining VoteBudget `json:"votesRemaining"`
}

// PlayerStatus is the per-player entry in the players:status broadcast.
type PlayerStatus struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	HasVoted bool   `json:"hasVoted"`
	IsHost   bool   `json:"isHost"`
	IsReady  bool   `json:"isReady"`
}
