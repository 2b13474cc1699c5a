package ratelimit

import (
	"context"
	"time"

	internalsettings "github.com/finbot-app/finbot/internal/settings"
)

// PolicyFromSettings builds a PolicyProvider that reads the current
// policy from the settings store on every check, so operators can change
// the policy without a restart.
func PolicyFromSettings(store *internalsettings.Store) PolicyProvider {
	return func(ctx context.Context) Policy {
		if store == nil {
			return Policy{}
		}
		windowSecs := store.Int(ctx, internalsettings.LoginWindowSecondsKey, internalsettings.DefaultLoginWindowSeconds)
		if windowSecs <= 0 {
			windowSecs = internalsettings.DefaultLoginWindowSeconds
		}
		return Policy{
			MaxAttempts:   store.Int(ctx, internalsettings.LoginMaxAttemptsKey, internalsettings.DefaultLoginMaxAttempts),
			Window:        time.Duration(windowSecs) * time.Second,
			RedisEnabled:  store.Bool(ctx, internalsettings.RateLimitRedisEnabledKey, false),
			RedisAddr:     store.String(ctx, internalsettings.RateLimitRedisAddrKey, ""),
			RedisPassword: store.String(ctx, internalsettings.RateLimitRedisPasswordKey, ""),
			RedisDB:       store.Int(ctx, internalsettings.RateLimitRedisDBKey, 0),
			RedisPrefix:   store.String(ctx, internalsettings.RateLimitRedisPrefixKey, internalsettings.DefaultRedisPrefix),
		}
	}
}
