package convo

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore backs conversation threads with redis lists so threads
// survive across processes. The instruction turn lives under its own
// key so LTRIM can drop old turns without touching it; redis executes
// commands for one key serially, which gives per-correspondent
// append ordering.
type RedisStore struct {
	client      *redis.Client
	instruction string
	window      int
	ttl         time.Duration
}

// NewRedisStore wraps an existing client. A zero ttl disables expiry.
func NewRedisStore(client *redis.Client, instruction string, window int, ttl time.Duration) *RedisStore {
	if window <= 0 {
		window = DefaultWindow
	}
	return &RedisStore{client: client, instruction: instruction, window: window, ttl: ttl}
}

func (s *RedisStore) turnsKey(correspondent string) string {
	return "convo:" + correspondent + ":turns"
}

func (s *RedisStore) sysKey(correspondent string) string {
	return "convo:" + correspondent + ":sys"
}

func (s *RedisStore) Append(ctx context.Context, correspondent string, role Role, text string) error {
	raw, err := json.Marshal(Turn{Role: role, Text: text})
	if err != nil {
		return fmt.Errorf("marshal turn: %w", err)
	}

	pipe := s.client.TxPipeline()
	// Set, not SetNX: a restart with new persona or tone settings must
	// reach existing threads too.
	pipe.Set(ctx, s.sysKey(correspondent), s.instruction, 0)
	pipe.RPush(ctx, s.turnsKey(correspondent), raw)
	pipe.LTrim(ctx, s.turnsKey(correspondent), int64(-s.window), -1)
	if s.ttl > 0 {
		pipe.Expire(ctx, s.sysKey(correspondent), s.ttl)
		pipe.Expire(ctx, s.turnsKey(correspondent), s.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("append turn: %w", err)
	}
	return nil
}

func (s *RedisStore) Snapshot(ctx context.Context, correspondent string) ([]Turn, error) {
	sys, err := s.client.Get(ctx, s.sysKey(correspondent)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load instruction: %w", err)
	}

	raws, err := s.client.LRange(ctx, s.turnsKey(correspondent), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("load turns: %w", err)
	}

	turns := make([]Turn, 0, len(raws)+1)
	turns = append(turns, Turn{Role: RoleInstruction, Text: sys})
	for _, raw := range raws {
		var t Turn
		if err := json.Unmarshal([]byte(raw), &t); err != nil {
			return nil, fmt.Errorf("decode turn: %w", err)
		}
		turns = append(turns, t)
	}
	return turns, nil
}

func (s *RedisStore) Clear(ctx context.Context, correspondent string) error {
	if err := s.client.Del(ctx, s.sysKey(correspondent), s.turnsKey(correspondent)).Err(); err != nil {
		return fmt.Errorf("clear thread: %w", err)
	}
	return nil
}
