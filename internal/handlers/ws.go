// internal/handlers/ws.go
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	"github.com/reelparty/reelparty/internal/game"
	"github.com/reelparty/reelparty/internal/middleware"
	"github.com/reelparty/reelparty/internal/models"
)

var validate = validator.New()

// Inbound event types.
const (
	eventLobbyCreate = "lobby:create"
	eventLobbyJoin   = "lobby:join"
	eventRoundReady  = "round:ready"
	eventVoteCast    = "vote:cast"
)

// inMessage is the wire envelope for client -> server events. ReqID is an
// optional correlation id echoed on the acknowledgement.
type inMessage struct {
	Type  string          `json:"type"`
	ReqID string          `json:"reqId,omitempty"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// outMessage is the wire envelope for server -> client messages. ReqID is
// set only on acknowledgements.
type outMessage struct {
	Type  string      `json:"type"`
	ReqID string      `json:"reqId,omitempty"`
	Data  interface{} `json:"data,omitempty"`
}

// playerConn is the send side of one live websocket connection.
type playerConn struct {
	playerID uuid.UUID
	cancel   context.CancelFunc
	out      chan outMessage
	logger   *logrus.Logger
}

// Send pushes msg without blocking; a full channel drops the message and
// logs, so one slow or stale client cannot stall a lobby broadcast.
func (c *playerConn) Send(msg outMessage) {
	select {
	case c.out <- msg:
	default:
		c.logger.Warnf("ws: dropping %s for player %s (slow or stale connection)", msg.Type, c.playerID)
	}
}

func (c *playerConn) SendError(message string) {
	c.Send(outMessage{Type: "error", Data: map[string]string{"message": message}})
}

// WSHandler upgrades the connection and runs the event loop for one
// client. Each connection gets its own read goroutine, so the only
// blocking call in the flow (the catalog fetch during lobby:create) never
// stalls other lobbies.
func WSHandler(logger *logrus.Logger, gs *GameServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		playerID := EnsureSession(w, r)

		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			Subprotocols:   []string{"swipe"},
			OriginPatterns: []string{"*"}, // Adjust in production
		})
		if err != nil {
			logger.Warnf("websocket accept error: %v", err)
			return
		}
		defer c.Close(websocket.StatusInternalError, "handler finished")

		if c.Subprotocol() != "swipe" {
			c.Close(BadSubprotocolError, "client must speak the swipe subprotocol")
			return
		}

		middleware.LogWebSocketConnect(logger, r.RemoteAddr, r.URL.Path)

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()
		conn := &playerConn{
			playerID: playerID,
			cancel:   cancel,
			out:      make(chan outMessage, 16),
			logger:   logger,
		}

		// A live session for this player id means the previous transport
		// dropped without the server noticing; re-attach it.
		gs.handleReconnect(conn)

		go writePump(ctx, c, conn, logger)
		readErr := readPump(ctx, c, conn, gs, logger)

		middleware.LogWebSocketDisconnect(logger, r.RemoteAddr, r.URL.Path, readErr)
		gs.handleDisconnect(conn)
	}
}

// readPump decodes inbound envelopes and dispatches them until the
// connection dies. Returns the terminal read error, nil for a clean close.
func readPump(ctx context.Context, c *websocket.Conn, conn *playerConn, gs *GameServer, logger *logrus.Logger) error {
	for {
		typ, msg, err := c.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway || errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}
		if typ != websocket.MessageText {
			continue
		}

		var in inMessage
		if err := json.Unmarshal(msg, &in); err != nil {
			logger.Warnf("ws: invalid json from player %s: %v", conn.playerID, err)
			conn.SendError("invalid JSON")
			continue
		}
		gs.dispatch(ctx, conn, in)
	}
}

// Ping cadence for the write pump. Variables so tests can shorten them.
var (
	pingInterval = 30 * time.Second
	pingTimeout  = 15 * time.Second
)

// writePump drains the connection's outbound channel and keeps the
// transport alive with periodic pings. A write or ping failure cancels the
// connection context, which terminates readPump and runs disconnect
// repair; without that a member whose send side is dead would block every
// all-voted evaluation in its lobby.
func writePump(ctx context.Context, c *websocket.Conn, conn *playerConn, logger *logrus.Logger) {
	defer conn.cancel()

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-conn.out:
			data, err := json.Marshal(msg)
			if err != nil {
				logger.Warnf("ws: failed to marshal %s for player %s: %v", msg.Type, conn.playerID, err)
				continue
			}
			writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			err = c.Write(writeCtx, websocket.MessageText, data)
			cancel()
			if err != nil {
				logger.Warnf("ws: write failed for player %s: %v", conn.playerID, err)
				return
			}
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
			err := c.Ping(pingCtx)
			cancel()
			if err != nil {
				logger.Warnf("ws: ping failed for player %s, assuming disconnect: %v", conn.playerID, err)
				return
			}
		}
	}
}

func (gs *GameServer) dispatch(ctx context.Context, conn *playerConn, in inMessage) {
	switch in.Type {
	case eventLobbyCreate:
		gs.handleCreate(ctx, conn, in)
	case eventLobbyJoin:
		gs.handleJoin(conn, in)
	case eventRoundReady:
		gs.handleReady(conn)
	case eventVoteCast:
		gs.handleVote(conn, in)
	default:
		gs.Logger.Warnf("ws: unknown event type %q from player %s", in.Type, conn.playerID)
		conn.SendError("unknown event type: " + in.Type)
	}
}

// handleCreate builds a new lobby for the sender: candidates come either
// from the topic catalog (a larger pool sampled down) or from the caller's
// custom title list. The provider call happens before any lobby lock is
// taken, so a slow catalog only stalls this one connection.
func (gs *GameServer) handleCreate(ctx context.Context, conn *playerConn, in inMessage) {
	ack := func(a models.JoinAck) {
		conn.Send(outMessage{Type: eventLobbyCreate + ":ack", ReqID: in.ReqID, Data: a})
	}

	var req models.CreateLobbyRequest
	if err := json.Unmarshal(in.Data, &req); err != nil {
		ack(models.JoinAck{Error: "Invalid lobby:create payload"})
		return
	}
	if err := validate.Struct(req); err != nil {
		ack(models.JoinAck{Error: "Player name is required"})
		return
	}
	if _, exists := gs.Players.Get(conn.playerID); exists {
		ack(models.JoinAck{Error: "Already in a lobby"})
		return
	}

	topic := req.Topic
	var movies []models.Movie
	if len(req.CustomMovies) > 0 {
		// Blank entries drop and repeated titles collapse, so the round
		// never shows the same movie twice under different ids.
		titles := lo.FilterMap(req.CustomMovies, func(s string, _ int) (string, bool) {
			s = strings.TrimSpace(s)
			return s, s != ""
		})
		titles = lo.UniqBy(titles, strings.ToLower)
		if len(titles) < 2 {
			ack(models.JoinAck{Error: "At least 2 movie titles are required"})
			return
		}
		if len(titles) > game.MoviesPerRound {
			ack(models.JoinAck{Error: fmt.Sprintf("At most %d movie titles are allowed", game.MoviesPerRound)})
			return
		}
		if topic == "" {
			topic = "custom"
		}
		movies = gs.Provider.CustomMovies(ctx, titles, game.MoviesPerRound)
	} else {
		if topic == "" {
			topic = "popular"
		}
		pool := gs.Provider.MoviesForGame(ctx, topic, game.FetchPoolSize)
		movies = game.SampleMovies(pool, game.MoviesPerRound)
	}
	if len(movies) == 0 {
		ack(models.JoinAck{Error: "Failed to create lobby"})
		return
	}

	p, err := gs.Players.Create(conn.playerID, req.PlayerName, "")
	if err != nil {
		gs.Logger.WithError(err).Error("duplicate player session on lobby:create")
		ack(models.JoinAck{Error: "Failed to create lobby"})
		return
	}

	l := gs.Lobbies.CreateLobby(conn.playerID, topic, movies)
	p.LobbyCode = l.Code
	gs.wireLobby(l)
	gs.addMember(l.Code, conn)

	gs.Logger.WithFields(logrus.Fields{
		"lobby":  l.Code,
		"topic":  topic,
		"player": conn.playerID,
	}).Info("lobby created")

	ack(models.JoinAck{
		Success:  true,
		LobbyID:  l.Code,
		PlayerID: conn.playerID.String(),
		Topic:    topic,
		HostID:   conn.playerID.String(),
	})
	l.BroadcastStatus(gs.Players)
}

// handleJoin adds the sender to an existing lobby. A client joining a
// round already in progress immediately receives the movie on screen.
func (gs *GameServer) handleJoin(conn *playerConn, in inMessage) {
	ack := func(a models.JoinAck) {
		conn.Send(outMessage{Type: eventLobbyJoin + ":ack", ReqID: in.ReqID, Data: a})
	}

	var req models.JoinLobbyRequest
	if err := json.Unmarshal(in.Data, &req); err != nil {
		ack(models.JoinAck{Error: "Invalid lobby:join payload"})
		return
	}
	req.LobbyID = strings.ToUpper(strings.TrimSpace(req.LobbyID))
	if err := validate.Struct(req); err != nil {
		if hasFieldError(err, "PlayerName") {
			ack(models.JoinAck{Error: "Player name is required"})
		} else {
			ack(models.JoinAck{Error: "Lobby not found"})
		}
		return
	}

	l, ok := gs.Lobbies.Get(req.LobbyID)
	if !ok {
		ack(models.JoinAck{Error: "Lobby not found"})
		return
	}
	if _, exists := gs.Players.Get(conn.playerID); exists {
		ack(models.JoinAck{Error: "Already in a lobby"})
		return
	}

	if _, err := gs.Players.Create(conn.playerID, req.PlayerName, req.LobbyID); err != nil {
		gs.Logger.WithError(err).Error("duplicate player session on lobby:join")
		ack(models.JoinAck{Error: "Failed to join lobby"})
		return
	}
	gs.addMember(req.LobbyID, conn)
	l.AddPlayer(gs.Players, conn.playerID)

	l.Mu.Lock()
	topic, hostID := l.Topic, l.HostID
	l.Mu.Unlock()

	gs.Logger.WithFields(logrus.Fields{
		"lobby":  req.LobbyID,
		"player": conn.playerID,
	}).Info("player joined lobby")

	ack(models.JoinAck{
		Success:  true,
		LobbyID:  req.LobbyID,
		PlayerID: conn.playerID.String(),
		Topic:    topic,
		HostID:   hostID.String(),
	})
	l.SendCurrentMovieTo(conn.playerID)
}

func (gs *GameServer) handleReady(conn *playerConn) {
	p, ok := gs.Players.Get(conn.playerID)
	if !ok {
		return
	}
	l, ok := gs.Lobbies.Get(p.LobbyCode)
	if !ok {
		return
	}
	l.HandleReady(gs.Players, conn.playerID)
}

func (gs *GameServer) handleVote(conn *playerConn, in inMessage) {
	var req models.CastVoteRequest
	if err := json.Unmarshal(in.Data, &req); err != nil {
		conn.SendError("Invalid vote:cast payload")
		return
	}
	if err := validate.Struct(req); err != nil {
		conn.SendError("Invalid vote:cast payload")
		return
	}

	p, ok := gs.Players.Get(conn.playerID)
	if !ok {
		return
	}
	l, ok := gs.Lobbies.Get(p.LobbyCode)
	if !ok {
		return
	}
	l.CastVote(gs.Players, conn.playerID, req.MovieID, req.VoteType)
}

// handleReconnect re-attaches a connection whose player session is still
// live (the previous transport dropped without the server noticing) and
// brings it back up to date with the roster and the movie on screen.
func (gs *GameServer) handleReconnect(conn *playerConn) {
	p, ok := gs.Players.Get(conn.playerID)
	if !ok || p.LobbyCode == "" {
		return
	}
	l, ok := gs.Lobbies.Get(p.LobbyCode)
	if !ok {
		return
	}
	gs.addMember(p.LobbyCode, conn)
	conn.Send(outMessage{Type: game.EventPlayersStatus, Data: l.StatusList(gs.Players)})
	l.SendCurrentMovieTo(conn.playerID)
	gs.Logger.Infof("player %s re-attached to lobby %s", conn.playerID, p.LobbyCode)
}

// handleDisconnect tears down the player's session: removal from the
// broadcast group first so no later event leaks to the departed handle,
// then lobby repair, then the session record itself.
func (gs *GameServer) handleDisconnect(conn *playerConn) {
	p, ok := gs.Players.Get(conn.playerID)
	if !ok {
		return
	}
	code := p.LobbyCode
	if !gs.removeMemberConn(code, conn) {
		// Superseded by a reconnect; the session lives on.
		return
	}
	if l, ok := gs.Lobbies.Get(code); ok {
		l.RemovePlayer(gs.Players, conn.playerID)
	}
	gs.Players.Remove(conn.playerID)
	gs.Logger.Infof("player %s disconnected from lobby %s", conn.playerID, code)
}

// hasFieldError reports whether a validation error names the given field.
func hasFieldError(err error, field string) bool {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return false
	}
	for _, fe := range verrs {
		if fe.Field() == field {
			return true
		}
	}
	return false
}
