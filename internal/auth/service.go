package auth

import (
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"formkeeper/internal/util"
	"formkeeper/pkg/auth"
	"formkeeper/pkg/domain"
	"formkeeper/pkg/store"
)

const (
	tokenPurposeConfirm  = "confirm"
	tokenPurposeRecovery = "recovery"
)

// Config wires the auth service dependencies.
type Config struct {
	Store       store.Store
	Sessions    store.SessionStore
	Tokens      store.TokenStore
	ConfirmTTL  time.Duration
	RecoveryTTL time.Duration
}

// Service implements the session provider: sign-up with email
// confirmation, sign-in, sign-out, and password recovery.
type Service struct {
	store       store.Store
	sessions    store.SessionStore
	tokens      store.TokenStore
	confirmTTL  time.Duration
	recoveryTTL time.Duration
}

// New constructs the auth service.
func New(cfg Config) (*Service, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if cfg.Sessions == nil {
		return nil, fmt.Errorf("session store is required")
	}
	if cfg.Tokens == nil {
		return nil, fmt.Errorf("token store is required")
	}
	if cfg.ConfirmTTL == 0 {
		cfg.ConfirmTTL = 24 * time.Hour
	}
	if cfg.RecoveryTTL == 0 {
		cfg.RecoveryTTL = time.Hour
	}
	return &Service{
		store:       cfg.Store,
		sessions:    cfg.Sessions,
		tokens:      cfg.Tokens,
		confirmTTL:  cfg.ConfirmTTL,
		recoveryTTL: cfg.RecoveryTTL,
	}, nil
}

// SignUp registers a pending account and mints a one-shot confirmation
// token. Sign-in is blocked until the token is redeemed.
func (s *Service) SignUp(email, password string) (string, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return "", err
	}
	if password == "" {
		return "", ErrEmailAndPasswordRequired
	}
	if err := auth.ValidatePassword(password); err != nil {
		return "", err
	}
	exists, err := s.store.HasUserEmail(email)
	if err != nil {
		return "", fmt.Errorf("check email: %w", err)
	}
	if exists {
		return "", ErrEmailAlreadyExists
	}
	passwordHash, err := auth.HashPassword(password)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	now := time.Now().UTC()
	user := domain.User{
		ID:           util.NewID(),
		Email:        email,
		PasswordHash: passwordHash,
		Status:       domain.StatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.store.SaveUser(user); err != nil {
		return "", fmt.Errorf("save user: %w", err)
	}
	token, err := s.tokens.NewToken(tokenPurposeConfirm, user.ID, s.confirmTTL)
	if err != nil {
		return "", fmt.Errorf("mint confirmation token: %w", err)
	}
	return token, nil
}

// Confirm activates a pending account by redeeming its confirmation token.
func (s *Service) Confirm(token string) error {
	userID, ok, err := s.tokens.ConsumeToken(tokenPurposeConfirm, strings.TrimSpace(token))
	if err != nil {
		return fmt.Errorf("resolve confirmation token: %w", err)
	}
	if !ok {
		return ErrInvalidConfirmToken
	}
	user, found, err := s.store.GetUserByID(userID)
	if err != nil {
		return fmt.Errorf("fetch user: %w", err)
	}
	if !found {
		return ErrInvalidConfirmToken
	}
	if user.Status == domain.StatusPending {
		user.Status = domain.StatusActive
		user.UpdatedAt = time.Now().UTC()
		if err := s.store.SaveUser(user); err != nil {
			return fmt.Errorf("activate user: %w", err)
		}
	}
	return nil
}

// Login validates credentials and issues a session token.
func (s *Service) Login(email, password string) (domain.User, string, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return domain.User{}, "", ErrInvalidCredentials
	}
	user, ok, err := s.store.GetUserByEmail(email)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("fetch user: %w", err)
	}
	if !ok {
		return domain.User{}, "", ErrInvalidCredentials
	}
	if !auth.CheckPassword(password, user.PasswordHash) {
		return domain.User{}, "", ErrInvalidCredentials
	}
	switch user.Status {
	case domain.StatusPending:
		return domain.User{}, "", ErrEmailNotConfirmed
	case domain.StatusDisabled:
		return domain.User{}, "", ErrInvalidCredentials
	}
	token, err := s.sessions.NewSession(user.ID)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("issue session: %w", err)
	}
	return user, token, nil
}

// Logout invalidates a session token.
func (s *Service) Logout(token string) error {
	return s.sessions.DeleteSession(token)
}

// UserFromToken resolves a user from a session token.
func (s *Service) UserFromToken(token string) (domain.User, bool) {
	uid, ok, err := s.sessions.GetUserIDByToken(token)
	if err != nil || !ok {
		return domain.User{}, false
	}
	user, found, err := s.store.GetUserByID(uid)
	if err != nil || !found {
		return domain.User{}, false
	}
	if user.Status != domain.StatusActive {
		return domain.User{}, false
	}
	return user, true
}

// RequestPasswordReset mints a recovery token when the account exists.
// It never reports whether the email is registered; the handler always
// answers with the same success-shaped message. The token itself goes
// out through the mail channel (here: the server log).
func (s *Service) RequestPasswordReset(email string) error {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil
	}
	user, ok, err := s.store.GetUserByEmail(email)
	if err != nil {
		slog.Warn("password reset lookup failed", "err", err)
		return nil
	}
	if !ok || user.Status == domain.StatusDisabled {
		return nil
	}
	token, err := s.tokens.NewToken(tokenPurposeRecovery, user.ID, s.recoveryTTL)
	if err != nil {
		slog.Warn("password reset token mint failed", "err", err)
		return nil
	}
	// Stand-in for the mail delivery channel.
	slog.Info("password recovery token issued", "user_id", user.ID, "token", token)
	return nil
}

// CompletePasswordReset sets a new password by redeeming a recovery token.
func (s *Service) CompletePasswordReset(token, newPassword string) error {
	if strings.TrimSpace(newPassword) == "" {
		return ErrNewPasswordRequired
	}
	if err := auth.ValidatePassword(newPassword); err != nil {
		return err
	}
	userID, ok, err := s.tokens.ConsumeToken(tokenPurposeRecovery, strings.TrimSpace(token))
	if err != nil {
		return fmt.Errorf("resolve recovery token: %w", err)
	}
	if !ok {
		return ErrInvalidRecoveryToken
	}
	user, found, err := s.store.GetUserByID(userID)
	if err != nil {
		return fmt.Errorf("fetch user: %w", err)
	}
	if !found || user.Status == domain.StatusDisabled {
		return ErrInvalidRecoveryToken
	}
	passwordHash, err := auth.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	user.PasswordHash = passwordHash
	user.UpdatedAt = time.Now().UTC()
	if err := s.store.SaveUser(user); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}

func normalizeEmail(email string) (string, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		return "", ErrEmailAndPasswordRequired
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return "", fmt.Errorf("invalid email address")
	}
	return email, nil
}
