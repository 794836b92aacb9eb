package store

import (
	"time"

	"formkeeper/pkg/domain"
)

// Store defines persistence operations for users and records.
// Record ids are assigned by the store at insert time; callers never
// generate or infer them.
type Store interface {
	// users
	SaveUser(domain.User) error
	HasUserEmail(email string) (bool, error)
	GetUserByEmail(email string) (domain.User, bool, error)
	GetUserByID(id string) (domain.User, bool, error)

	// records
	InsertRecord(domain.Record) (domain.Record, error)
	ListRecords() ([]domain.Record, error)
	ListRecordsByOwner(ownerID string) ([]domain.Record, error)
	GetRecord(id string) (domain.Record, bool, error)
	DeleteRecord(id string) error
}

// SessionStore persists session tokens.
type SessionStore interface {
	NewSession(userID string) (string, error)
	GetUserIDByToken(token string) (string, bool, error)
	DeleteSession(token string) error
}

// TokenStore persists one-shot tokens (account confirmation, password
// recovery). Consuming a token invalidates it.
type TokenStore interface {
	NewToken(purpose, userID string, ttl time.Duration) (string, error)
	ConsumeToken(purpose, token string) (string, bool, error)
}
