package ledger

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// redisLedger keeps counters in a hash and first-seen order in a list. Both
// keys are namespaced by session and expire, so nothing outlives the process
// that created them.
type redisLedger struct {
	redisClient *redis.Client
	countsKey   string
	orderKey    string
	ttl         time.Duration
}

// NewRedisLedger creates a ledger stored under a session-specific key prefix
func NewRedisLedger(redisClient *redis.Client, sessionID string, ttl time.Duration) Ledger {
	prefix := "wattle:ledger:" + sessionID
	return &redisLedger{
		redisClient: redisClient,
		countsKey:   prefix + ":counts",
		orderKey:    prefix + ":order",
		ttl:         ttl,
	}
}

func (l *redisLedger) touch(ctx context.Context, key Key) error {
	field := key.String()

	created, err := l.redisClient.HSetNX(ctx, l.countsKey, field, 0).Result()
	if err != nil {
		return fmt.Errorf("failed to create ledger entry %s: %w", field, err)
	}
	if created {
		if err := l.redisClient.RPush(ctx, l.orderKey, field).Err(); err != nil {
			return fmt.Errorf("failed to record ledger order for %s: %w", field, err)
		}
	}

	if l.ttl > 0 {
		pipe := l.redisClient.Pipeline()
		pipe.Expire(ctx, l.countsKey, l.ttl)
		pipe.Expire(ctx, l.orderKey, l.ttl)
		if _, err := pipe.Exec(ctx); err != nil {
			return fmt.Errorf("failed to refresh ledger expiry: %w", err)
		}
	}
	return nil
}

func (l *redisLedger) RecordSuccess(ctx context.Context, key Key) error {
	if err := l.touch(ctx, key); err != nil {
		return err
	}
	if err := l.redisClient.HSet(ctx, l.countsKey, key.String(), 0).Err(); err != nil {
		return fmt.Errorf("failed to record success for %s: %w", key, err)
	}
	return nil
}

func (l *redisLedger) RecordFailure(ctx context.Context, key Key) error {
	if err := l.touch(ctx, key); err != nil {
		return err
	}
	if err := l.redisClient.HIncrBy(ctx, l.countsKey, key.String(), 1).Err(); err != nil {
		return fmt.Errorf("failed to record failure for %s: %w", key, err)
	}
	return nil
}

func (l *redisLedger) FailedKeys(ctx context.Context, filter string) ([]Key, error) {
	order, err := l.redisClient.LRange(ctx, l.orderKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read ledger order: %w", err)
	}

	counts, err := l.redisClient.HGetAll(ctx, l.countsKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read ledger counters: %w", err)
	}

	var keys []Key
	for _, field := range order {
		key, err := ParseKey(field)
		if err != nil {
			log.Warnf("⚠️ Skipping ledger entry: %v", err)
			continue
		}
		if key.Filter != filter {
			continue
		}
		count, err := strconv.Atoi(counts[field])
		if err != nil || count <= 0 {
			continue
		}
		keys = append(keys, key)
	}
	return keys, nil
}

func (l *redisLedger) Count(ctx context.Context, key Key) (int, bool, error) {
	val, err := l.redisClient.HGet(ctx, l.countsKey, key.String()).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("failed to read ledger counter for %s: %w", key, err)
	}

	count, err := strconv.Atoi(val)
	if err != nil {
		return 0, false, fmt.Errorf("failed to parse ledger counter for %s: %w", key, err)
	}
	return count, true, nil
}

// Close removes the session's keys. The Redis client itself is owned by the caller.
func (l *redisLedger) Close() error {
	return l.redisClient.Del(context.Background(), l.countsKey, l.orderKey).Err()
}
