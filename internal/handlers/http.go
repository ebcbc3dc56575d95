// internal/handlers/http.go
package handlers

import (
	"encoding/json"
	"net/http"
	"sort"

	"github.com/reelparty/reelparty/internal/game"
)

// LobbySummary is the public view of one active lobby.
type LobbySummary struct {
	Code    string     `json:"code"`
	Topic   string     `json:"topic"`
	State   game.State `json:"state"`
	Players int        `json:"players"`
}

// ListLobbiesHandler returns a summary of active lobbies, for dashboards
// and debugging.
func ListLobbiesHandler(gs *GameServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		lobbies := gs.Lobbies.Lobbies()
		summaries := make([]LobbySummary, 0, len(lobbies))
		for _, l := range lobbies {
			l.Mu.Lock()
			summaries = append(summaries, LobbySummary{
				Code:    l.Code,
				Topic:   l.Topic,
				State:   l.State,
				Players: len(l.Players),
			})
			l.Mu.Unlock()
		}
		sort.Slice(summaries, func(i, j int) bool {
			return summaries[i].Code < summaries[j].Code
		})

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(summaries); err != nil {
			gs.Logger.WithError(err).Warn("failed to encode lobby list")
		}
	}
}

// HealthHandler reports process liveness.
func HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}
}
