package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

const redisBreakerDuration = 30 * time.Second

// PolicyProvider supplies the latest attempt-limit policy snapshot.
type PolicyProvider func(ctx context.Context) Policy

// RedisClientFactory constructs a Redis client for the given options.
type RedisClientFactory func(options *redis.Options) *redis.Client

type redisConfig struct {
	addr     string
	password string
	prefix   string
	db       int
}

// Manager selects a limiter backend and enforces the attempt policy.
// Redis failures trip a short breaker and fall back to the in-memory
// limiter so auth never hard-fails on limiter infrastructure.
type Manager struct {
	provider       PolicyProvider
	nowFn          func() time.Time
	memoryLimiter  Limiter
	newRedisClient RedisClientFactory
	mu             sync.Mutex
	redisLimiter   *RedisLimiter
	redisCfg       redisConfig
	breakerUntil   time.Time
}

// NewManager constructs a Manager with default dependencies when nil.
func NewManager(provider PolicyProvider, nowFn func() time.Time, newRedisClient RedisClientFactory) *Manager {
	if nowFn == nil {
		nowFn = time.Now
	}
	if newRedisClient == nil {
		newRedisClient = redis.NewClient
	}
	return &Manager{
		provider:       provider,
		nowFn:          nowFn,
		memoryLimiter:  NewMemoryLimiter(),
		newRedisClient: newRedisClient,
	}
}

// Allow checks whether the attempt should be allowed under the current
// policy using the best available backend.
func (m *Manager) Allow(ctx context.Context, key string) (Result, error) {
	if m == nil || m.provider == nil || key == "" {
		return Result{Allowed: true}, nil
	}
	policy := m.provider(ctx)
	if policy.MaxAttempts <= 0 {
		return Result{Allowed: true}, nil
	}
	if policy.Window <= 0 {
		policy.Window = time.Minute
	}
	now := m.nowFn()

	if policy.RedisEnabled {
		if result, ok := m.allowRedis(ctx, key, policy, now); ok {
			return result, nil
		}
	}
	return m.memoryLimiter.Allow(ctx, key, policy.MaxAttempts, policy.Window, now)
}

func (m *Manager) allowRedis(ctx context.Context, key string, policy Policy, now time.Time) (Result, bool) {
	if ctx == nil {
		ctx = context.Background()
	}
	if m.isBreakerActive(now) {
		return Result{}, false
	}
	limiter := m.ensureRedis(policy)
	if limiter == nil {
		return Result{}, false
	}
	result, errAllow := limiter.Allow(ctx, key, policy.MaxAttempts, policy.Window, now)
	if errAllow != nil {
		log.WithError(errAllow).Warn("rate limit: redis backend failed, falling back to memory")
		m.tripBreaker(now)
		return Result{}, false
	}
	return result, true
}

func (m *Manager) ensureRedis(policy Policy) *RedisLimiter {
	if policy.RedisAddr == "" {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	cfg := redisConfig{
		addr:     policy.RedisAddr,
		password: policy.RedisPassword,
		prefix:   policy.RedisPrefix,
		db:       policy.RedisDB,
	}
	if m.redisLimiter != nil && m.redisCfg == cfg {
		return m.redisLimiter
	}

	client := m.newRedisClient(&redis.Options{
		Addr:     cfg.addr,
		Password: cfg.password,
		DB:       cfg.db,
	})
	m.redisLimiter = NewRedisLimiter(client, cfg.prefix)
	m.redisCfg = cfg
	return m.redisLimiter
}

func (m *Manager) isBreakerActive(now time.Time) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return now.Before(m.breakerUntil)
}

func (m *Manager) tripBreaker(now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.breakerUntil = now.Add(redisBreakerDuration)
}
