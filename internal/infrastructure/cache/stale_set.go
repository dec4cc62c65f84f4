package cache

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/oksasatya/bootcamp-directory/pkg/helpers"
)

// StaleSet is a Redis set of bootcamp ids whose average cost needs to be
// recomputed.
type StaleSet struct {
	rdb redis.Cmdable
	key string
}

func NewStaleSet(rdb redis.Cmdable) *StaleSet {
	return &StaleSet{rdb: rdb, key: helpers.KeyStaleAverageCost}
}

func (s *StaleSet) Add(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	members := make([]any, len(ids))
	for i, id := range ids {
		members[i] = id
	}
	return s.rdb.SAdd(ctx, s.key, members...).Err()
}

// Pop removes and returns up to n ids.
func (s *StaleSet) Pop(ctx context.Context, n int64) ([]string, error) {
	ids, err := s.rdb.SPopN(ctx, s.key, n).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	return ids, err
}
