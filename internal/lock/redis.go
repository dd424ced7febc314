package lock

import (
	"context"
	"fmt"
	"time"

	"cardioalert/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// releaseScript deletes the key only if it still carries our token
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker shares locks between service instances with SET NX PX
type RedisLocker struct {
	client *redis.Client
	prefix string
}

func NewRedisLocker(client *redis.Client, prefix string) *RedisLocker {
	return &RedisLocker{client: client, prefix: prefix}
}

func (l *RedisLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (func(), bool, error) {
	fullKey := l.prefix + key
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, fullKey, token, ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("failed to acquire lock %s: %w", fullKey, err)
	}
	if !ok {
		return nil, false, nil
	}

	return func() {
		// released even when the request context is already cancelled
		releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := releaseScript.Run(releaseCtx, l.client, []string{fullKey}, token).Err(); err != nil {
			logger.Warn("Failed to release lock", zap.String("key", fullKey), zap.Error(err))
		}
	}, true, nil
}

// NewRedisClient connects and pings the configured Redis server
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}
