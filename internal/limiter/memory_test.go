package limiter

import (
	"context"
	"testing"
	"time"
)

func TestMemory_BlocksAfterMaxFailures(t *testing.T) {
	t.Parallel()
	now := time.Unix(1000, 0)
	l := NewMemory(15*time.Minute, 3, 15*time.Minute)
	l.now = func() time.Time { return now }

	ip := HashIP("127.0.0.1")
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		blocked, _, err := l.Failure(ctx, "aemiller", ip)
		if err != nil || blocked {
			t.Fatalf("attempt %d: blocked=%v err=%v", i, blocked, err)
		}
	}
	blocked, retry, err := l.Failure(ctx, "aemiller", ip)
	if err != nil || !blocked || retry <= 0 {
		t.Fatalf("third failure should block: blocked=%v retry=%v err=%v", blocked, retry, err)
	}

	allowed, _, err := l.Allow(ctx, "aemiller", ip)
	if err != nil || allowed {
		t.Fatalf("should be blocked: allowed=%v err=%v", allowed, err)
	}

	// other (user, ip) pairs unaffected
	allowed, _, _ = l.Allow(ctx, "bob", ip)
	if !allowed {
		t.Fatal("unrelated user blocked")
	}
	allowed, _, _ = l.Allow(ctx, "aemiller", HashIP("10.0.0.1"))
	if !allowed {
		t.Fatal("unrelated ip blocked")
	}

	// lock expires
	now = now.Add(16 * time.Minute)
	allowed, _, _ = l.Allow(ctx, "aemiller", ip)
	if !allowed {
		t.Fatal("block should have expired")
	}
}

func TestMemory_SuccessResets(t *testing.T) {
	t.Parallel()
	l := NewMemory(15*time.Minute, 2, 15*time.Minute)
	ip := HashIP("127.0.0.1")
	ctx := context.Background()

	if blocked, _, _ := l.Failure(ctx, "aemiller", ip); blocked {
		t.Fatal("first failure must not block")
	}
	if err := l.Success(ctx, "aemiller", ip); err != nil {
		t.Fatalf("Success: %v", err)
	}
	if blocked, _, _ := l.Failure(ctx, "aemiller", ip); blocked {
		t.Fatal("counter should have been reset")
	}
}

func TestMemory_WindowExpiry(t *testing.T) {
	t.Parallel()
	now := time.Unix(1000, 0)
	l := NewMemory(time.Minute, 2, 15*time.Minute)
	l.now = func() time.Time { return now }

	ip := HashIP("127.0.0.1")
	ctx := context.Background()

	if blocked, _, _ := l.Failure(ctx, "aemiller", ip); blocked {
		t.Fatal("first failure must not block")
	}
	now = now.Add(2 * time.Minute)
	if blocked, _, _ := l.Failure(ctx, "aemiller", ip); blocked {
		t.Fatal("stale window should have been reset")
	}
}
