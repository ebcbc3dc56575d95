// internal/cache/redis.go
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/reelparty/reelparty/internal/models"
)

// RoundRecord is one completed round, pushed onto a Redis list for
// downstream consumers (history dashboards, stats jobs).
type RoundRecord struct {
	LobbyCode   string                                `json:"lobby_code"`
	Topic       string                                `json:"topic"`
	CompletedAt int64                                 `json:"completed_at"`
	Results     []models.MovieResult                  `json:"results"`
	Votes       map[string]map[string]models.VoteType `json:"votes"`
}

// Publisher pushes round history to Redis. A nil *Publisher is valid and
// drops every record, which keeps the feature optional at runtime.
type Publisher struct {
	rdb    *redis.Client
	queue  string
	logger *logrus.Logger
}

// NewPublisher connects to Redis and verifies the connection with a ping.
func NewPublisher(addr string, db int, queue string, logger *logrus.Logger) (*Publisher, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}
	return &Publisher{rdb: rdb, queue: queue, logger: logger}, nil
}

// PublishRound serializes the record to JSON and RPushes it onto the
// queue. Best effort: failures are logged and never reach game flow.
func (p *Publisher) PublishRound(ctx context.Context, rec RoundRecord) {
	if p == nil {
		return
	}
	data, err := json.Marshal(rec)
	if err != nil {
		p.logger.WithError(err).Warn("history: failed to marshal round record")
		return
	}
	if err := p.rdb.RPush(ctx, p.queue, data).Err(); err != nil {
		p.logger.WithError(err).Warn("history: failed to push round record")
	}
}
