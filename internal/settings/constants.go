package settings

// Setting keys stored in the settings table.
const (
	// SiteNameKey holds the display name shown in outbound email.
	SiteNameKey = "site-name"
	// LoginMaxAttemptsKey caps login/code attempts per window (0 disables).
	LoginMaxAttemptsKey = "login.max-attempts"
	// LoginWindowSecondsKey sets the attempt window length in seconds.
	LoginWindowSecondsKey = "login.window-seconds"
	// RateLimitRedisEnabledKey switches the limiter to Redis.
	RateLimitRedisEnabledKey = "rate-limit.redis-enabled"
	// RateLimitRedisAddrKey is the Redis address for the shared limiter.
	RateLimitRedisAddrKey = "rate-limit.redis-addr"
	// RateLimitRedisPasswordKey is the Redis password.
	RateLimitRedisPasswordKey = "rate-limit.redis-password"
	// RateLimitRedisDBKey selects the Redis logical database.
	RateLimitRedisDBKey = "rate-limit.redis-db"
	// RateLimitRedisPrefixKey namespaces limiter keys in Redis.
	RateLimitRedisPrefixKey = "rate-limit.redis-prefix"
)

// Defaults seeded at migration. The attempt limit defaults to 0: the
// original system ships without brute-force protection, so the policy is
// surfaced but disabled until an operator raises it.
const (
	DefaultSiteName           = "Fin-Bot"
	DefaultLoginMaxAttempts   = 0
	DefaultLoginWindowSeconds = 60
	DefaultRedisPrefix        = "finbot:ratelimit"
)
