package models

// Inbound event payloads. Each is a tagged struct validated with
// go-playground/validator before it touches game state; malformed payloads
// are surfaced as user-input errors on the acknowledgement, never panics.

// CreateLobbyRequest is the lobby:create payload.
type CreateLobbyRequest struct {
	PlayerName   string   `json:"playerName" validate:"required,max=32"`
	Topic        string   `json:"topic"`
	CustomMovies []string `json:"customMovies,omitempty"`
}

// JoinLobbyRequest is the lobby:join payload.
type JoinLobbyRequest struct {
	LobbyID    string `json:"lobbyId" validate:"required,len=6"`
	PlayerName string `json:"playerName" validate:"required,max=32"`
}

// CastVoteRequest is the vote:cast payload.
type CastVoteRequest struct {
	MovieID  string   `json:"movieId" validate:"required"`
	VoteType VoteType `json:"voteType" validate:"required,oneof=up down pass"`
}

// JoinAck is the synchronous acknowledgement for lobby:create and
// lobby:join, correlated to the request by its reqId.
type JoinAck struct {
	Success  bool   `json:"success"`
	Error    string `json:"error,omitempty"`
	LobbyID  string `json:"lobbyId,omitempty"`
	PlayerID string `json:"playerId,omitempty"`
	Topic    string `json:"topic,omitempty"`
	HostID   string `json:"hostId,omitempty"`
}

// MoviePayload is the movie:new payload fanned out when a round starts or
// advances, and sent to a single client rejoining mid-round.
type MoviePayload struct {
	Movie       Movie `json:"movie"`
	MovieNumber int   `json:"movieNumber"`
	TotalMovies int   `json:"totalMovies"`
}
