package store

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"formkeeper/pkg/domain"
)

// MemoryStore keeps users and records in-process. Used by tests and
// by local development without Postgres.
type MemoryStore struct {
	mu      sync.RWMutex
	users   map[string]domain.User // key: user ID
	email   map[string]string      // email -> user ID
	records map[string]domain.Record
	order   []string // record ids in insertion order
}

// NewMemoryStore initializes an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:   make(map[string]domain.User),
		email:   make(map[string]string),
		records: make(map[string]domain.Record),
	}
}

// SaveUser stores or replaces a user.
func (m *MemoryStore) SaveUser(u domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if old, ok := m.users[u.ID]; ok && old.Email != u.Email {
		delete(m.email, old.Email)
	}
	m.users[u.ID] = u
	m.email[u.Email] = u.ID
	return nil
}

// HasUserEmail checks for an existing email.
func (m *MemoryStore) HasUserEmail(email string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.email[email]
	return ok, nil
}

// GetUserByEmail retrieves a user by email.
func (m *MemoryStore) GetUserByEmail(email string) (domain.User, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.email[email]
	if !ok {
		return domain.User{}, false, nil
	}
	u, ok := m.users[id]
	return u, ok, nil
}

// GetUserByID retrieves a user by id.
func (m *MemoryStore) GetUserByID(id string) (domain.User, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	return u, ok, nil
}

// InsertRecord assigns an id and stores the record.
func (m *MemoryStore) InsertRecord(r domain.Record) (domain.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r.ID = uuid.NewString()
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	m.records[r.ID] = r
	m.order = append(m.order, r.ID)
	return r, nil
}

// ListRecords returns all records, newest first.
func (m *MemoryStore) ListRecords() ([]domain.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.listLocked(""), nil
}

// ListRecordsByOwner returns records filtered by owner, newest first.
func (m *MemoryStore) ListRecordsByOwner(ownerID string) ([]domain.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.listLocked(ownerID), nil
}

func (m *MemoryStore) listLocked(ownerID string) []domain.Record {
	res := make([]domain.Record, 0, len(m.order))
	for i := len(m.order) - 1; i >= 0; i-- {
		r, ok := m.records[m.order[i]]
		if !ok {
			continue
		}
		if ownerID != "" && r.OwnerID != ownerID {
			continue
		}
		res = append(res, r)
	}
	return res
}

// GetRecord retrieves a record.
func (m *MemoryStore) GetRecord(id string) (domain.Record, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.records[id]
	return r, ok, nil
}

// DeleteRecord removes a record. Absent ids are not an error.
func (m *MemoryStore) DeleteRecord(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.records, id)
	return nil
}
