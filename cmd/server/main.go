// cmd/server/main.go
package main

import (
	"log"
	"net/http"

	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"

	"github.com/reelparty/reelparty/internal/auth"
	"github.com/reelparty/reelparty/internal/cache"
	"github.com/reelparty/reelparty/internal/config"
	"github.com/reelparty/reelparty/internal/handlers"
	"github.com/reelparty/reelparty/internal/middleware"
	"github.com/reelparty/reelparty/internal/tmdb"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logrus.New()
	logger.SetLevel(logrus.DebugLevel)

	if err := auth.Init(cfg.TokenExpireTime); err != nil {
		logger.Fatalf("auth init: %v", err)
	}

	if cfg.TMDBAPIKey == "" {
		logger.Warn("TMDB_API_KEY not set; serving the fallback catalog only")
	}
	provider := tmdb.New(cfg.TMDBAPIKey, logger)

	// Round history is optional: without Redis the game runs fine, rounds
	// just are not recorded.
	var history *cache.Publisher
	if cfg.RedisAddr != "" {
		history, err = cache.NewPublisher(cfg.RedisAddr, cfg.RedisDB, cfg.HistoryQueueName, logger)
		if err != nil {
			logger.WithError(err).Warn("round history disabled")
			history = nil
		}
	}

	gs := handlers.NewGameServer(provider, history, logger)

	mux := http.NewServeMux()
	// The websocket endpoint stays outside LogMiddleware: the upgrade
	// needs the raw ResponseWriter, and the session logs its own
	// connect/disconnect lines.
	mux.HandleFunc("/ws", handlers.WSHandler(logger, gs))
	mux.Handle("/lobbies", middleware.LogMiddleware(logger)(http.HandlerFunc(
		handlers.ListLobbiesHandler(gs),
	)))
	mux.HandleFunc("/healthz", handlers.HealthHandler())

	addr := ":" + cfg.Port
	logger.Infof("Running on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}
