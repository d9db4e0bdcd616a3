// leaderboard/leaderboard.go
package leaderboard

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/harelmarin/CultureClash/config"
)

const rankingKey = "cultureclash:ranking"

// Entry is one leaderboard row.
type Entry struct {
	UserID string `json:"userId"`
	Points int    `json:"points"`
	Rank   int    `json:"rank"`
}

// Service keeps the points ranking in a Redis sorted set. It is written on
// every rating commit and read by the RPC leaderboard query; Postgres stays
// the source of truth.
type Service struct {
	client *redis.Client
}

func NewService(cfg config.RedisConfig) (*Service, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}
	return &Service{client: client}, nil
}

// SetPoints stores a player's current rating.
func (s *Service) SetPoints(ctx context.Context, userID string, points int) error {
	err := s.client.ZAdd(ctx, rankingKey, redis.Z{
		Score:  float64(points),
		Member: userID,
	}).Err()
	if err != nil {
		return fmt.Errorf("setting points: %w", err)
	}
	return nil
}

// Top returns the n best-ranked players.
func (s *Service) Top(ctx context.Context, n int) ([]Entry, error) {
	rows, err := s.client.ZRevRangeWithScores(ctx, rankingKey, 0, int64(n-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("reading ranking: %w", err)
	}

	entries := make([]Entry, 0, len(rows))
	for i, row := range rows {
		entries = append(entries, Entry{
			UserID: row.Member.(string),
			Points: int(row.Score),
			Rank:   i + 1,
		})
	}
	return entries, nil
}

// Rank returns a player's 1-based rank, or 0 when unranked.
func (s *Service) Rank(ctx context.Context, userID string) (int, error) {
	rank, err := s.client.ZRevRank(ctx, rankingKey, userID).Result()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("reading rank: %w", err)
	}
	return int(rank) + 1, nil
}

func (s *Service) Close() error {
	return s.client.Close()
}
