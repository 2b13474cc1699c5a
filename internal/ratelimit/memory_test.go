package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestMemoryLimiter_FixedWindow(t *testing.T) {
	l := NewMemoryLimiter()
	now := time.Unix(1_700_000_000, 0)
	window := time.Minute

	for i := 0; i < 3; i++ {
		res, err := l.Allow(context.Background(), "login:a@b.c", 3, window, now)
		if err != nil {
			t.Fatalf("allow: %v", err)
		}
		if !res.Allowed {
			t.Fatalf("attempt %d should be allowed", i+1)
		}
	}

	res, err := l.Allow(context.Background(), "login:a@b.c", 3, window, now)
	if err != nil {
		t.Fatalf("allow: %v", err)
	}
	if res.Allowed {
		t.Fatalf("fourth attempt in window should be denied")
	}

	later := now.Add(window)
	res, err = l.Allow(context.Background(), "login:a@b.c", 3, window, later)
	if err != nil {
		t.Fatalf("allow: %v", err)
	}
	if !res.Allowed {
		t.Fatalf("attempt in next window should be allowed")
	}
}

func TestMemoryLimiter_ZeroLimitDisabled(t *testing.T) {
	l := NewMemoryLimiter()
	for i := 0; i < 100; i++ {
		res, err := l.Allow(context.Background(), "login:a@b.c", 0, time.Minute, time.Now())
		if err != nil {
			t.Fatalf("allow: %v", err)
		}
		if !res.Allowed {
			t.Fatalf("zero limit must disable limiting")
		}
	}
}

func TestManager_DisabledPolicy(t *testing.T) {
	m := NewManager(func(context.Context) Policy { return Policy{} }, nil, nil)
	for i := 0; i < 10; i++ {
		res, err := m.Allow(context.Background(), "login:a@b.c:1.2.3.4")
		if err != nil {
			t.Fatalf("allow: %v", err)
		}
		if !res.Allowed {
			t.Fatalf("disabled policy must allow everything")
		}
	}
}

func TestManager_MemoryEnforcement(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	m := NewManager(func(context.Context) Policy {
		return Policy{MaxAttempts: 2, Window: time.Minute}
	}, func() time.Time { return now }, nil)

	key := AttemptKey("login", "A@B.C", "1.2.3.4")
	if key != "login:a@b.c:1.2.3.4" {
		t.Fatalf("unexpected key %q", key)
	}

	for i := 0; i < 2; i++ {
		res, err := m.Allow(context.Background(), key)
		if err != nil || !res.Allowed {
			t.Fatalf("attempt %d: allowed=%v err=%v", i+1, res.Allowed, err)
		}
	}
	res, err := m.Allow(context.Background(), key)
	if err != nil {
		t.Fatalf("allow: %v", err)
	}
	if res.Allowed {
		t.Fatalf("third attempt should be denied")
	}
}
