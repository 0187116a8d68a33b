package inflightguard

import (
	"context"
	"strings"
	"time"

	portsout "chainorg/internal/application/ports/out"
	apperrors "chainorg/internal/shared_kernel/errors"

	"github.com/redis/go-redis/v9"
)

const defaultKeyPrefix = "chainorg:registration:inflight:"

// releaseScript deletes the key only while it still holds the caller's token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisGuard shares the per-caller lock across every process that points
// at the same redis instance.
type RedisGuard struct {
	client    *redis.Client
	keyPrefix string
}

var _ portsout.InFlightGuard = (*RedisGuard)(nil)

// NewRedisClient parses url, connects and pings the server.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, *apperrors.AppError) {
	opts, err := redis.ParseURL(strings.TrimSpace(url))
	if err != nil {
		return nil, apperrors.NewInternal(
			"inflight_guard_redis_url_invalid",
			"in-flight guard redis url is invalid",
			map[string]any{"error": err.Error()},
		)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, apperrors.NewInternal(
			"inflight_guard_redis_unavailable",
			"in-flight guard redis ping failed",
			map[string]any{"error": err.Error()},
		)
	}

	return client, nil
}

func NewRedisGuard(client *redis.Client, keyPrefix string) *RedisGuard {
	if strings.TrimSpace(keyPrefix) == "" {
		keyPrefix = defaultKeyPrefix
	}
	return &RedisGuard{client: client, keyPrefix: keyPrefix}
}

func (g *RedisGuard) Acquire(ctx context.Context, callerID string, token string, ttl time.Duration) (bool, *apperrors.AppError) {
	if appErr := validateHold(callerID, token, ttl); appErr != nil {
		return false, appErr
	}

	acquired, err := g.client.SetNX(ctx, g.key(callerID), token, ttl).Result()
	if err != nil {
		return false, apperrors.NewInternal(
			"inflight_guard_unavailable",
			"failed to acquire in-flight guard",
			map[string]any{"caller_id": callerID, "error": err.Error()},
		)
	}
	return acquired, nil
}

func (g *RedisGuard) Release(ctx context.Context, callerID string, token string) *apperrors.AppError {
	if err := releaseScript.Run(ctx, g.client, []string{g.key(callerID)}, token).Err(); err != nil {
		return apperrors.NewInternal(
			"inflight_guard_unavailable",
			"failed to release in-flight guard",
			map[string]any{"caller_id": callerID, "error": err.Error()},
		)
	}
	return nil
}

func (g *RedisGuard) key(callerID string) string {
	return g.keyPrefix + strings.TrimSpace(callerID)
}

func validateHold(callerID string, token string, ttl time.Duration) *apperrors.AppError {
	if strings.TrimSpace(callerID) == "" || strings.TrimSpace(token) == "" {
		return apperrors.NewValidation(
			"inflight_guard_hold_invalid",
			"caller id and token are required",
			nil,
		)
	}
	if ttl <= 0 {
		return apperrors.NewValidation(
			"inflight_guard_ttl_invalid",
			"in-flight guard ttl must be greater than zero",
			map[string]any{"ttl": ttl.String()},
		)
	}
	return nil
}
