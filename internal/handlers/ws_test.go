// internal/handlers/ws_test.go
package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reelparty/reelparty/internal/auth"
	"github.com/reelparty/reelparty/internal/models"
)

// stubProvider serves a fixed catalog so game flow is deterministic.
type stubProvider struct{}

func (stubProvider) MoviesForGame(ctx context.Context, topic string, count int) []models.Movie {
	movies := make([]models.Movie, count)
	for i := range movies {
		movies[i] = models.Movie{ID: fmt.Sprintf("m%d", i+1), Title: fmt.Sprintf("Movie %d", i+1)}
	}
	return movies
}

func (stubProvider) CustomMovies(ctx context.Context, titles []string, count int) []models.Movie {
	if len(titles) > count {
		titles = titles[:count]
	}
	movies := make([]models.Movie, len(titles))
	for i, title := range titles {
		movies[i] = models.Movie{ID: fmt.Sprintf("m%d", i+1), Title: title}
	}
	return movies
}

func newTestServer(t *testing.T) (*GameServer, *httptest.Server) {
	t.Helper()
	require.NoError(t, auth.Init(time.Hour))

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	gs := NewGameServer(stubProvider{}, nil, logger)
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", WSHandler(logger, gs))
	mux.HandleFunc("/lobbies", ListLobbiesHandler(gs))

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return gs, server
}

// client is one connected test player.
type client struct {
	t    *testing.T
	ctx  context.Context
	conn *websocket.Conn
}

func dialClient(t *testing.T, server *httptest.Server) *client {
	t.Helper()
	c, _ := dialClientWithCookies(t, server, nil)
	return c
}

// dialClientWithCookies connects a client, optionally replaying session
// cookies from an earlier handshake, and returns the cookies this
// handshake set.
func dialClientWithCookies(t *testing.T, server *httptest.Server, cookies []*http.Cookie) (*client, []*http.Cookie) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)

	header := http.Header{}
	for _, ck := range cookies {
		header.Add("Cookie", ck.String())
	}

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"
	conn, resp, err := websocket.Dial(ctx, wsURL, &websocket.DialOptions{
		Subprotocols: []string{"swipe"},
		HTTPHeader:   header,
	})
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close(websocket.StatusNormalClosure, "test over") })

	return &client{t: t, ctx: ctx, conn: conn}, resp.Cookies()
}

func (c *client) send(msgType, reqID string, data interface{}) {
	c.t.Helper()
	var raw json.RawMessage
	if data != nil {
		b, err := json.Marshal(data)
		require.NoError(c.t, err)
		raw = b
	}
	b, err := json.Marshal(map[string]interface{}{
		"type":  msgType,
		"reqId": reqID,
		"data":  raw,
	})
	require.NoError(c.t, err)
	require.NoError(c.t, c.conn.Write(c.ctx, websocket.MessageText, b))
}

type wireMessage struct {
	Type  string          `json:"type"`
	ReqID string          `json:"reqId"`
	Data  json.RawMessage `json:"data"`
}

// readUntil discards messages until one of the wanted type arrives.
func (c *client) readUntil(msgType string) wireMessage {
	c.t.Helper()
	for {
		_, b, err := c.conn.Read(c.ctx)
		require.NoError(c.t, err, "waiting for %s", msgType)
		var msg wireMessage
		require.NoError(c.t, json.Unmarshal(b, &msg))
		if msg.Type == msgType {
			return msg
		}
	}
}

func (c *client) readAck(ackType string) (wireMessage, models.JoinAck) {
	c.t.Helper()
	msg := c.readUntil(ackType)
	var ack models.JoinAck
	require.NoError(c.t, json.Unmarshal(msg.Data, &ack))
	return msg, ack
}

type moviePayload struct {
	Movie struct {
		ID    string `json:"id"`
		Title string `json:"title"`
	} `json:"movie"`
	MovieNumber int `json:"movieNumber"`
	TotalMovies int `json:"totalMovies"`
}

func (c *client) readMovie() moviePayload {
	c.t.Helper()
	msg := c.readUntil("movie:new")
	var payload moviePayload
	require.NoError(c.t, json.Unmarshal(msg.Data, &payload))
	return payload
}

func (c *client) vote(movieID string, vote models.VoteType) {
	c.send("vote:cast", "", models.CastVoteRequest{MovieID: movieID, VoteType: vote})
}

func TestFullRoundOverWebsocket(t *testing.T) {
	_, server := newTestServer(t)

	host := dialClient(t, server)
	host.send("lobby:create", "r1", models.CreateLobbyRequest{
		PlayerName:   "Host",
		CustomMovies: []string{"Alpha", "Beta", "Gamma"},
	})
	msg, ack := host.readAck("lobby:create:ack")
	require.True(t, ack.Success, "create failed: %s", ack.Error)
	assert.Equal(t, "r1", msg.ReqID)
	assert.Len(t, ack.LobbyID, 6)
	assert.Equal(t, "custom", ack.Topic)
	assert.Equal(t, ack.PlayerID, ack.HostID)

	guest := dialClient(t, server)
	guest.send("lobby:join", "r2", models.JoinLobbyRequest{
		LobbyID:    strings.ToLower(ack.LobbyID), // case-insensitive join
		PlayerName: "Guest",
	})
	jmsg, jack := guest.readAck("lobby:join:ack")
	require.True(t, jack.Success, "join failed: %s", jack.Error)
	assert.Equal(t, "r2", jmsg.ReqID)
	assert.Equal(t, ack.LobbyID, jack.LobbyID)
	assert.Equal(t, ack.HostID, jack.HostID)

	// Both ready: the round starts and the first movie fans out.
	host.send("round:ready", "", nil)
	guest.send("round:ready", "", nil)

	first := host.readMovie()
	assert.Equal(t, "m1", first.Movie.ID)
	assert.Equal(t, "Alpha", first.Movie.Title)
	assert.Equal(t, 1, first.MovieNumber)
	assert.Equal(t, 3, first.TotalMovies)
	assert.Equal(t, "m1", guest.readMovie().Movie.ID)

	// Movie 1: both up. The voter gets their remaining budget back.
	host.vote("m1", models.VoteUp)
	remaining := host.readUntil("votes:remaining")
	var budget models.VoteBudget
	require.NoError(t, json.Unmarshal(remaining.Data, &budget))
	assert.Equal(t, models.VoteBudget{Upvotes: 2, Downvotes: 3}, budget)

	guest.vote("m1", models.VoteUp)
	assert.Equal(t, "m2", host.readMovie().Movie.ID)
	assert.Equal(t, "m2", guest.readMovie().Movie.ID)

	// Movie 2: both down.
	host.vote("m2", models.VoteDown)
	guest.vote("m2", models.VoteDown)
	assert.Equal(t, "m3", host.readMovie().Movie.ID)
	assert.Equal(t, "m3", guest.readMovie().Movie.ID)

	// Movie 3: both pass, completing the round.
	host.vote("m3", models.VotePass)
	guest.vote("m3", models.VotePass)

	complete := host.readUntil("round:complete")
	var results struct {
		Results []struct {
			ID    string `json:"id"`
			Score int    `json:"score"`
			Votes struct {
				Up   int `json:"up"`
				Down int `json:"down"`
				Pass int `json:"pass"`
			} `json:"votes"`
		} `json:"results"`
	}
	require.NoError(t, json.Unmarshal(complete.Data, &results))
	require.Len(t, results.Results, 3)

	assert.Equal(t, "m1", results.Results[0].ID)
	assert.Equal(t, 2, results.Results[0].Score)
	assert.Equal(t, "m3", results.Results[1].ID)
	assert.Equal(t, 0, results.Results[1].Score)
	assert.Equal(t, 2, results.Results[1].Votes.Pass)
	assert.Equal(t, "m2", results.Results[2].ID)
	assert.Equal(t, -2, results.Results[2].Score)

	guest.readUntil("round:complete")
}

func TestJoinMidRoundReceivesCurrentMovie(t *testing.T) {
	_, server := newTestServer(t)

	host := dialClient(t, server)
	host.send("lobby:create", "r1", models.CreateLobbyRequest{
		PlayerName:   "Host",
		CustomMovies: []string{"Alpha", "Beta"},
	})
	_, ack := host.readAck("lobby:create:ack")
	require.True(t, ack.Success)

	// Solo lobby: the host's ready starts the round immediately.
	host.send("round:ready", "", nil)
	require.Equal(t, "m1", host.readMovie().Movie.ID)

	guest := dialClient(t, server)
	guest.send("lobby:join", "r2", models.JoinLobbyRequest{LobbyID: ack.LobbyID, PlayerName: "Guest"})
	_, jack := guest.readAck("lobby:join:ack")
	require.True(t, jack.Success)

	// The joiner is caught up with the movie on screen right away.
	caught := guest.readMovie()
	assert.Equal(t, "m1", caught.Movie.ID)
	assert.Equal(t, 1, caught.MovieNumber)
	assert.Equal(t, 2, caught.TotalMovies)

	// The movie now needs both votes to advance.
	host.vote("m1", models.VoteUp)
	host.readUntil("votes:remaining")
	guest.vote("m1", models.VoteDown)
	assert.Equal(t, "m2", host.readMovie().Movie.ID)
	assert.Equal(t, "m2", guest.readMovie().Movie.ID)
}

func TestReconnectSupersedesStaleConnection(t *testing.T) {
	gs, server := newTestServer(t)

	stale, cookies := dialClientWithCookies(t, server, nil)
	require.NotEmpty(t, cookies)
	stale.send("lobby:create", "r1", models.CreateLobbyRequest{
		PlayerName:   "Host",
		CustomMovies: []string{"Alpha", "Beta"},
	})
	_, ack := stale.readAck("lobby:create:ack")
	require.True(t, ack.Success)
	playerID := uuid.MustParse(ack.PlayerID)

	// A second dial with the same session cookie re-attaches the player
	// and is brought up to date with the roster.
	live, _ := dialClientWithCookies(t, server, cookies)
	msg := live.readUntil("players:status")
	var status []models.PlayerStatus
	require.NoError(t, json.Unmarshal(msg.Data, &status))
	require.Len(t, status, 1)
	assert.Equal(t, ack.PlayerID, status[0].ID)

	// The superseded handle closing must not tear down the session.
	stale.conn.Close(websocket.StatusNormalClosure, "replaced")

	live.send("round:ready", "", nil)
	assert.Equal(t, "m1", live.readMovie().Movie.ID)

	_, ok := gs.Players.Get(playerID)
	assert.True(t, ok, "session must survive the stale handle's disconnect")
	_, ok = gs.Lobbies.Get(ack.LobbyID)
	assert.True(t, ok)
}

func TestDeadConnectionIsReaped(t *testing.T) {
	pingInterval, pingTimeout = 50*time.Millisecond, 100*time.Millisecond
	t.Cleanup(func() { pingInterval, pingTimeout = 30*time.Second, 15*time.Second })

	gs, server := newTestServer(t)

	c := dialClient(t, server)
	c.send("lobby:create", "r1", models.CreateLobbyRequest{
		PlayerName:   "Host",
		CustomMovies: []string{"Alpha", "Beta"},
	})
	_, ack := c.readAck("lobby:create:ack")
	require.True(t, ack.Success)

	// The client stops reading, so pings go unanswered. The failed ping
	// must cascade into disconnect repair and destroy the empty lobby.
	assert.Eventually(t, func() bool {
		_, ok := gs.Lobbies.Get(ack.LobbyID)
		return !ok
	}, 5*time.Second, 20*time.Millisecond, "unresponsive member was never reaped")

	_, ok := gs.Players.Get(uuid.MustParse(ack.PlayerID))
	assert.False(t, ok)
}

func TestCreateDedupesCustomTitles(t *testing.T) {
	gs, server := newTestServer(t)

	c := dialClient(t, server)
	c.send("lobby:create", "r1", models.CreateLobbyRequest{
		PlayerName:   "Ada",
		CustomMovies: []string{"Alpha", " alpha ", "", "Beta"},
	})
	_, ack := c.readAck("lobby:create:ack")
	require.True(t, ack.Success, "create failed: %s", ack.Error)

	l, ok := gs.Lobbies.Get(ack.LobbyID)
	require.True(t, ok)
	l.Mu.Lock()
	defer l.Mu.Unlock()
	require.Len(t, l.Movies, 2)
	assert.Equal(t, "Alpha", l.Movies[0].Title)
	assert.Equal(t, "Beta", l.Movies[1].Title)
}

func TestCreateRejectsDuplicatesBelowMinimum(t *testing.T) {
	_, server := newTestServer(t)

	c := dialClient(t, server)
	c.send("lobby:create", "r1", models.CreateLobbyRequest{
		PlayerName:   "Ada",
		CustomMovies: []string{"Alpha", "ALPHA"},
	})
	_, ack := c.readAck("lobby:create:ack")
	assert.False(t, ack.Success)
	assert.Equal(t, "At least 2 movie titles are required", ack.Error)
}

func TestCreateRejectsTooManyCustomTitles(t *testing.T) {
	_, server := newTestServer(t)

	titles := make([]string, 10)
	for i := range titles {
		titles[i] = fmt.Sprintf("Title %d", i+1)
	}

	c := dialClient(t, server)
	c.send("lobby:create", "r1", models.CreateLobbyRequest{
		PlayerName:   "Ada",
		CustomMovies: titles,
	})
	_, ack := c.readAck("lobby:create:ack")
	assert.False(t, ack.Success)
	assert.Equal(t, "At most 9 movie titles are allowed", ack.Error)
}

func TestJoinUnknownLobby(t *testing.T) {
	_, server := newTestServer(t)

	c := dialClient(t, server)
	c.send("lobby:join", "r1", models.JoinLobbyRequest{LobbyID: "ZZZZZZ", PlayerName: "Ada"})
	_, ack := c.readAck("lobby:join:ack")
	assert.False(t, ack.Success)
	assert.Equal(t, "Lobby not found", ack.Error)
}

func TestJoinWithoutName(t *testing.T) {
	_, server := newTestServer(t)

	c := dialClient(t, server)
	c.send("lobby:join", "r1", models.JoinLobbyRequest{LobbyID: "ABCDEF"})
	_, ack := c.readAck("lobby:join:ack")
	assert.False(t, ack.Success)
	assert.Equal(t, "Player name is required", ack.Error)
}

func TestCreateRequiresTwoCustomTitles(t *testing.T) {
	_, server := newTestServer(t)

	c := dialClient(t, server)
	c.send("lobby:create", "r1", models.CreateLobbyRequest{
		PlayerName:   "Ada",
		CustomMovies: []string{"Only One"},
	})
	_, ack := c.readAck("lobby:create:ack")
	assert.False(t, ack.Success)
	assert.Equal(t, "At least 2 movie titles are required", ack.Error)
}

func TestCreateDefaultsToPopularTopic(t *testing.T) {
	gs, server := newTestServer(t)

	c := dialClient(t, server)
	c.send("lobby:create", "r1", models.CreateLobbyRequest{PlayerName: "Ada"})
	_, ack := c.readAck("lobby:create:ack")
	require.True(t, ack.Success)
	assert.Equal(t, "popular", ack.Topic)

	l, ok := gs.Lobbies.Get(ack.LobbyID)
	require.True(t, ok)
	l.Mu.Lock()
	assert.Len(t, l.Movies, 9, "pool must be sampled down to one round")
	l.Mu.Unlock()
}

func TestUnknownEventType(t *testing.T) {
	_, server := newTestServer(t)

	c := dialClient(t, server)
	c.send("bogus:event", "", nil)
	msg := c.readUntil("error")
	assert.Contains(t, string(msg.Data), "unknown event type")
}

func TestRejectsMissingSubprotocol(t *testing.T) {
	_, server := newTestServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	require.NoError(t, err)
	defer conn.Close(websocket.StatusNormalClosure, "")

	_, _, err = conn.Read(ctx)
	require.Error(t, err)
	assert.Equal(t, websocket.StatusCode(BadSubprotocolError), websocket.CloseStatus(err))
}

func TestDisconnectRemovesPlayerFromLobby(t *testing.T) {
	gs, server := newTestServer(t)

	host := dialClient(t, server)
	host.send("lobby:create", "r1", models.CreateLobbyRequest{
		PlayerName:   "Host",
		CustomMovies: []string{"Alpha", "Beta"},
	})
	_, ack := host.readAck("lobby:create:ack")
	require.True(t, ack.Success)

	guest := dialClient(t, server)
	guest.send("lobby:join", "r2", models.JoinLobbyRequest{LobbyID: ack.LobbyID, PlayerName: "Guest"})
	_, jack := guest.readAck("lobby:join:ack")
	require.True(t, jack.Success)

	// Drain roster broadcasts until the guest shows up, so the shrink
	// below is unambiguous.
	readRoster := func() []models.PlayerStatus {
		msg := host.readUntil("players:status")
		var status []models.PlayerStatus
		require.NoError(t, json.Unmarshal(msg.Data, &status))
		return status
	}
	for len(readRoster()) < 2 {
	}

	guest.conn.Close(websocket.StatusNormalClosure, "leaving")

	// The host sees the roster shrink back to one.
	status := readRoster()
	for len(status) != 1 {
		status = readRoster()
	}
	assert.Equal(t, "Host", status[0].Name)
	assert.True(t, status[0].IsHost)

	assert.Eventually(t, func() bool {
		l, ok := gs.Lobbies.Get(ack.LobbyID)
		if !ok {
			return false
		}
		l.Mu.Lock()
		defer l.Mu.Unlock()
		return len(l.Players) == 1
	}, 5*time.Second, 20*time.Millisecond)
}

func TestListLobbies(t *testing.T) {
	gs, server := newTestServer(t)

	host := dialClient(t, server)
	host.send("lobby:create", "r1", models.CreateLobbyRequest{
		PlayerName:   "Host",
		CustomMovies: []string{"Alpha", "Beta"},
	})
	_, ack := host.readAck("lobby:create:ack")
	require.True(t, ack.Success)
	require.Len(t, gs.Lobbies.Lobbies(), 1)

	resp, err := http.Get(server.URL + "/lobbies")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var list []LobbySummary
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
	require.Len(t, list, 1)
	assert.Equal(t, ack.LobbyID, list[0].Code)
	assert.Equal(t, "custom", list[0].Topic)
	assert.Equal(t, 1, list[0].Players)
}
