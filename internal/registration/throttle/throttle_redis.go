package throttle

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "enroll:otp_throttle:"

// Redis shares the fixed window across instances. The window starts with the
// first request: INCR and PEXPIRE NX run in one pipeline.
type Redis struct {
	client redis.Cmdable
	policy Policy
}

func NewRedis(client redis.Cmdable, policy Policy) *Redis {
	return &Redis{client: client, policy: policy.normalized()}
}

func (t *Redis) Allow(ctx context.Context, key string) (bool, error) {
	redisKey := keyPrefix + key
	pipe := t.client.TxPipeline()
	incr := pipe.Incr(ctx, redisKey)
	pipe.ExpireNX(ctx, redisKey, t.policy.Window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("otp throttle %s: %w", key, err)
	}
	return incr.Val() <= int64(t.policy.Limit), nil
}
