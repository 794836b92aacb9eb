package store

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func TestRedisTokenStoreConsumeOnce(t *testing.T) {
	r := miniredis.RunT(t)
	s, err := NewRedisTokenStore(r.Addr(), "")
	if err != nil {
		t.Fatalf("new token store: %v", err)
	}

	token, err := s.NewToken("confirm", "user-1", time.Minute)
	if err != nil {
		t.Fatalf("new token: %v", err)
	}
	uid, ok, err := s.ConsumeToken("confirm", token)
	if err != nil || !ok {
		t.Fatalf("consume: ok=%v err=%v", ok, err)
	}
	if uid != "user-1" {
		t.Fatalf("expected user-1, got %q", uid)
	}
	// second redemption must fail
	if _, ok, _ := s.ConsumeToken("confirm", token); ok {
		t.Fatal("token should be single-use")
	}
}

func TestRedisTokenStorePurposeIsolation(t *testing.T) {
	r := miniredis.RunT(t)
	s, err := NewRedisTokenStore(r.Addr(), "")
	if err != nil {
		t.Fatalf("new token store: %v", err)
	}
	token, err := s.NewToken("recovery", "user-1", time.Minute)
	if err != nil {
		t.Fatalf("new token: %v", err)
	}
	if _, ok, _ := s.ConsumeToken("confirm", token); ok {
		t.Fatal("recovery token must not redeem as confirm token")
	}
	if _, ok, _ := s.ConsumeToken("recovery", token); !ok {
		t.Fatal("recovery token should redeem under its own purpose")
	}
}

func TestRedisTokenStoreExpiry(t *testing.T) {
	r := miniredis.RunT(t)
	s, err := NewRedisTokenStore(r.Addr(), "")
	if err != nil {
		t.Fatalf("new token store: %v", err)
	}
	token, err := s.NewToken("recovery", "user-1", time.Minute)
	if err != nil {
		t.Fatalf("new token: %v", err)
	}
	r.FastForward(2 * time.Minute)
	if _, ok, _ := s.ConsumeToken("recovery", token); ok {
		t.Fatal("token should expire with TTL")
	}
}
