package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	maxLoginAttempts   = 5
	loginAttemptWindow = 15 * time.Minute
)

// LoginLimiter counts failed staff logins per email in redis.
type LoginLimiter struct {
	client redis.Cmdable
}

func NewLoginLimiter(client redis.Cmdable) *LoginLimiter {
	return &LoginLimiter{client: client}
}

func loginKey(email string) string {
	return fmt.Sprintf("ratelimit:login:%s", strings.ToLower(email))
}

// Allow records an attempt and reports whether it is within the limit.
func (l *LoginLimiter) Allow(ctx context.Context, email string) (bool, error) {
	key := loginKey(email)
	count, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to increment login attempt: %w", err)
	}
	if count == 1 {
		l.client.Expire(ctx, key, loginAttemptWindow)
	}
	return count <= maxLoginAttempts, nil
}

func (l *LoginLimiter) Reset(ctx context.Context, email string) error {
	return l.client.Del(ctx, loginKey(email)).Err()
}
