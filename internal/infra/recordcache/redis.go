package recordcache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"authstamp/internal/domain"
)

const redisKeyPrefix = "authstamp:record:"

// Redis shares the record cache across service instances.
type Redis struct {
	client *redis.Client
}

func NewRedis(addr, password string, db int) (*Redis, error) {
	if addr == "" {
		return nil, errors.New("redis addr is required")
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &Redis{client: client}, nil
}

func (c *Redis) Get(ctx context.Context, ref domain.RecordRef) (*domain.LedgerRecord, bool, error) {
	payload, err := c.client.Get(ctx, redisKeyPrefix+string(ref)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}
	var value domain.LedgerRecord
	if err := json.Unmarshal(payload, &value); err != nil {
		// A corrupt entry is treated as a miss; the next Put overwrites it.
		return nil, false, nil
	}
	return &value, true, nil
}

func (c *Redis) Put(ctx context.Context, ref domain.RecordRef, value domain.LedgerRecord, ttl time.Duration) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, redisKeyPrefix+string(ref), payload, ttl).Err()
}
