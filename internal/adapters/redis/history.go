package redisad

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"safari_reviews/internal/domain"
)

// HistoryKey is the fixed key holding the submitted reviews list.
const HistoryKey = "userReviews"

// History keeps submitted reviews in a Redis list, oldest first.
type History struct {
	c   *redis.Client
	key string
}

func NewHistory(c *redis.Client, key string) *History {
	if key == "" {
		key = HistoryKey
	}
	return &History{c: c, key: key}
}

// Load returns every saved entry in append order. Entries that do not
// decode are skipped.
func (h *History) Load(ctx context.Context) ([]domain.StoredReview, error) {
	raw, err := h.c.LRange(ctx, h.key, 0, -1).Result()
	if err != nil {
		return nil, err
	}
	out := make([]domain.StoredReview, 0, len(raw))
	for i, s := range raw {
		var r domain.StoredReview
		if err := json.Unmarshal([]byte(s), &r); err != nil {
			log.Warn().Err(err).Int("position", i).Msg("skipping unreadable saved review")
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (h *History) Append(ctx context.Context, r domain.StoredReview) error {
	b, err := json.Marshal(r)
	if err != nil {
		return err
	}
	return h.c.RPush(ctx, h.key, b).Err()
}
