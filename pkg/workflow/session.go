package workflow

import (
	"sync"

	"formkeeper/pkg/domain"
)

// AuthProvider is the remote auth surface the session manager drives.
// *client.Client satisfies it.
type AuthProvider interface {
	SignUp(email, password string) (confirmationToken string, err error)
	Confirm(token string) error
	SignIn(email, password string) (domain.User, string, error)
	SignOut(token string) error
	RequestPasswordReset(email string) error
	CompletePasswordReset(token, newPassword string) error
}

// Session is the client-side view of an authenticated user.
type Session struct {
	User  domain.User
	Token string
}

// PendingConfirmation is the outcome of a sign-up: the account exists
// but cannot sign in until the confirmation token is redeemed.
type PendingConfirmation struct {
	Email             string
	ConfirmationToken string
}

// Manager tracks the current session and notifies subscribers on every
// change. Notifications are synchronous and run under the manager lock,
// in subscription order.
type Manager struct {
	provider AuthProvider

	mu      sync.Mutex
	session Session
	signed  bool
	subs    []func(Session, bool)
}

// NewManager builds a session manager over the auth provider.
func NewManager(provider AuthProvider) *Manager {
	return &Manager{provider: provider}
}

// Subscribe registers a listener for session changes. The listener is
// invoked immediately with the current state.
func (m *Manager) Subscribe(fn func(s Session, signedIn bool)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subs = append(m.subs, fn)
	fn(m.session, m.signed)
}

// SignUp registers a new account. It does not change the current
// session; the account stays pending until confirmed.
func (m *Manager) SignUp(email, password string) (PendingConfirmation, error) {
	token, err := m.provider.SignUp(email, password)
	if err != nil {
		return PendingConfirmation{}, err
	}
	return PendingConfirmation{Email: email, ConfirmationToken: token}, nil
}

// Confirm redeems an email confirmation token.
func (m *Manager) Confirm(token string) error {
	return m.provider.Confirm(token)
}

// SignIn authenticates and installs the session.
func (m *Manager) SignIn(email, password string) (Session, error) {
	user, token, err := m.provider.SignIn(email, password)
	if err != nil {
		return Session{}, err
	}
	s := Session{User: user, Token: token}
	m.mu.Lock()
	m.session = s
	m.signed = true
	m.notifyLocked()
	m.mu.Unlock()
	return s, nil
}

// SignOut revokes the remote session and clears the local one. The
// local session is cleared even when the remote call fails.
func (m *Manager) SignOut() error {
	m.mu.Lock()
	token := m.session.Token
	signed := m.signed
	m.session = Session{}
	m.signed = false
	m.notifyLocked()
	m.mu.Unlock()
	if !signed {
		return nil
	}
	return m.provider.SignOut(token)
}

// RequestPasswordReset asks the provider for a recovery token. The
// outcome is intentionally identical whether or not the email exists.
func (m *Manager) RequestPasswordReset(email string) error {
	return m.provider.RequestPasswordReset(email)
}

// CompletePasswordReset redeems a recovery token with a new password.
func (m *Manager) CompletePasswordReset(token, newPassword string) error {
	return m.provider.CompletePasswordReset(token, newPassword)
}

// Current returns the active session, if any.
func (m *Manager) Current() (Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session, m.signed
}

// Restore installs a previously persisted session without contacting
// the provider. A later request with a stale token fails normally.
func (m *Manager) Restore(s Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s.Token == "" {
		return
	}
	m.session = s
	m.signed = true
	m.notifyLocked()
}

func (m *Manager) notifyLocked() {
	for _, fn := range m.subs {
		fn(m.session, m.signed)
	}
}
