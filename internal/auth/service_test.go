package auth

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"formkeeper/pkg/domain"
	"formkeeper/pkg/store"
)

func newTestService(t *testing.T) (*Service, *store.MemoryStore) {
	t.Helper()
	r := miniredis.RunT(t)
	tokens, err := store.NewRedisTokenStore(r.Addr(), "")
	if err != nil {
		t.Fatalf("new token store: %v", err)
	}
	sessions, err := store.NewJWTSessionStore("test-secret", time.Minute)
	if err != nil {
		t.Fatalf("new session store: %v", err)
	}
	dataStore := store.NewMemoryStore()
	svc, err := New(Config{
		Store:    dataStore,
		Sessions: sessions,
		Tokens:   tokens,
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, dataStore
}

func TestSignUpConfirmLoginFlow(t *testing.T) {
	svc, _ := newTestService(t)

	confirmToken, err := svc.SignUp("User@Example.com", "a sensible passphrase")
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	if confirmToken == "" {
		t.Fatal("expected confirmation token")
	}

	// login before confirmation is blocked
	if _, _, err := svc.Login("user@example.com", "a sensible passphrase"); err != ErrEmailNotConfirmed {
		t.Fatalf("expected ErrEmailNotConfirmed, got %v", err)
	}

	if err := svc.Confirm(confirmToken); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	user, token, err := svc.Login("user@example.com", "a sensible passphrase")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if user.Email != "user@example.com" {
		t.Fatalf("unexpected email %q", user.Email)
	}
	got, ok := svc.UserFromToken(token)
	if !ok || got.ID != user.ID {
		t.Fatalf("session should resolve, ok=%v", ok)
	}
}

func TestSignUpDuplicateEmail(t *testing.T) {
	svc, _ := newTestService(t)
	if _, err := svc.SignUp("user@example.com", "a sensible passphrase"); err != nil {
		t.Fatalf("signup: %v", err)
	}
	if _, err := svc.SignUp("user@example.com", "another passphrase"); err != ErrEmailAlreadyExists {
		t.Fatalf("expected ErrEmailAlreadyExists, got %v", err)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _ := newTestService(t)
	token, err := svc.SignUp("user@example.com", "a sensible passphrase")
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	if err := svc.Confirm(token); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if _, _, err := svc.Login("user@example.com", "wrong password!"); err != ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, _, err := svc.Login("stranger@example.com", "whatever password"); err != ErrInvalidCredentials {
		t.Fatalf("unknown email should report the same error, got %v", err)
	}
}

func TestConfirmTokenSingleUse(t *testing.T) {
	svc, _ := newTestService(t)
	token, err := svc.SignUp("user@example.com", "a sensible passphrase")
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	if err := svc.Confirm(token); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if err := svc.Confirm(token); err != ErrInvalidConfirmToken {
		t.Fatalf("expected ErrInvalidConfirmToken on reuse, got %v", err)
	}
}

func TestRequestPasswordResetNeverReportsExistence(t *testing.T) {
	svc, _ := newTestService(t)
	if _, err := svc.SignUp("user@example.com", "a sensible passphrase"); err != nil {
		t.Fatalf("signup: %v", err)
	}
	if err := svc.RequestPasswordReset("user@example.com"); err != nil {
		t.Fatalf("reset request (existing): %v", err)
	}
	if err := svc.RequestPasswordReset("nobody@example.com"); err != nil {
		t.Fatalf("reset request (unknown): %v", err)
	}
	if err := svc.RequestPasswordReset("not-an-email"); err != nil {
		t.Fatalf("reset request (malformed): %v", err)
	}
}

func TestCompletePasswordReset(t *testing.T) {
	r := miniredis.RunT(t)
	tokens, err := store.NewRedisTokenStore(r.Addr(), "")
	if err != nil {
		t.Fatalf("new token store: %v", err)
	}
	sessions, _ := store.NewJWTSessionStore("test-secret", time.Minute)
	dataStore := store.NewMemoryStore()
	svc, err := New(Config{Store: dataStore, Sessions: sessions, Tokens: tokens})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	confirmToken, err := svc.SignUp("user@example.com", "old passphrase 1")
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	if err := svc.Confirm(confirmToken); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	user, _, _ := dataStore.GetUserByEmail("user@example.com")

	// mint the recovery token directly; the service only logs it
	recovery, err := tokens.NewToken("recovery", user.ID, time.Minute)
	if err != nil {
		t.Fatalf("mint recovery: %v", err)
	}
	if err := svc.CompletePasswordReset(recovery, "new passphrase 2"); err != nil {
		t.Fatalf("complete reset: %v", err)
	}
	if _, _, err := svc.Login("user@example.com", "old passphrase 1"); err != ErrInvalidCredentials {
		t.Fatalf("old password should fail, got %v", err)
	}
	if _, _, err := svc.Login("user@example.com", "new passphrase 2"); err != nil {
		t.Fatalf("new password should work: %v", err)
	}
	// recovery token is single-use
	if err := svc.CompletePasswordReset(recovery, "another passphrase"); err != ErrInvalidRecoveryToken {
		t.Fatalf("expected ErrInvalidRecoveryToken on reuse, got %v", err)
	}
}

func TestDisabledUserCannotAuthenticate(t *testing.T) {
	svc, dataStore := newTestService(t)
	confirmToken, _ := svc.SignUp("user@example.com", "a sensible passphrase")
	if err := svc.Confirm(confirmToken); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	user, token, err := svc.Login("user@example.com", "a sensible passphrase")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	user.Status = domain.StatusDisabled
	if err := dataStore.SaveUser(user); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, ok := svc.UserFromToken(token); ok {
		t.Fatal("disabled user session must not resolve")
	}
	if _, _, err := svc.Login("user@example.com", "a sensible passphrase"); err != ErrInvalidCredentials {
		t.Fatalf("disabled login should report invalid credentials, got %v", err)
	}
}
