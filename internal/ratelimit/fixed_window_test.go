package ratelimit

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func TestFixedWindowLimiterEnforcesLimit(t *testing.T) {
	r := miniredis.RunT(t)
	l, err := NewRedisFixedWindowLimiter(r.Addr(), "", 3, time.Minute)
	if err != nil {
		t.Fatalf("new limiter: %v", err)
	}
	for i := 0; i < 3; i++ {
		if !l.Allow("login:1.2.3.4") {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if l.Allow("login:1.2.3.4") {
		t.Fatal("fourth request in window should be blocked")
	}
	// other keys are unaffected
	if !l.Allow("login:5.6.7.8") {
		t.Fatal("different key should be allowed")
	}
}

func TestFixedWindowLimiterFailsClosedWithoutRedis(t *testing.T) {
	r := miniredis.RunT(t)
	l, err := NewRedisFixedWindowLimiter(r.Addr(), "", 3, time.Minute)
	if err != nil {
		t.Fatalf("new limiter: %v", err)
	}
	r.Close()
	if l.Allow("login:1.2.3.4") {
		t.Fatal("limiter should fail closed when redis is down")
	}
}

func TestFixedWindowLimiterRejectsBadConfig(t *testing.T) {
	if _, err := NewRedisFixedWindowLimiter("localhost:6379", "", 0, time.Minute); err == nil {
		t.Fatal("zero limit should be rejected")
	}
	if _, err := NewRedisFixedWindowLimiter("", "", 3, time.Minute); err == nil {
		t.Fatal("empty addr should be rejected")
	}
}
