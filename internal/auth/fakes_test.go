package auth

import (
	"context"
	"sync"
	"time"

	"github.com/telvora/customer-portal/internal/model"
	"github.com/telvora/customer-portal/internal/repository"
)

// fakeAccountStore is an in-memory AccountStore with the same error
// contract as the MySQL repository: ErrNotFound on misses and
// ErrEmailExists on duplicate email inserts.
type fakeAccountStore struct {
	mu       sync.Mutex
	accounts map[string]*model.Account // keyed by id
}

func newFakeAccountStore() *fakeAccountStore {
	return &fakeAccountStore{accounts: map[string]*model.Account{}}
}

func (f *fakeAccountStore) Create(_ context.Context, a *model.Account) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.accounts {
		if existing.Email == a.Email {
			return repository.ErrEmailExists
		}
	}
	cp := *a
	cp.CreatedAt = time.Now().UTC()
	cp.UpdatedAt = cp.CreatedAt
	f.accounts[a.ID] = &cp
	return nil
}

func (f *fakeAccountStore) GetByEmail(_ context.Context, email string) (*model.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.accounts {
		if a.Email == email {
			cp := *a
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeAccountStore) GetByID(_ context.Context, id string) (*model.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.accounts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (f *fakeAccountStore) TouchUpdated(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if a, ok := f.accounts[id]; ok {
		a.UpdatedAt = time.Now().UTC()
	}
	return nil
}

// deactivate flips is_active for tests exercising the live-state checks.
func (f *fakeAccountStore) deactivate(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if a, ok := f.accounts[id]; ok {
		a.IsActive = false
	}
}

func (f *fakeAccountStore) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.accounts)
}

// fakeSessionStore is an in-memory SessionStore. Consume holds the mutex
// across check-and-set, matching the serializability the SQL conditional
// update provides.
type fakeSessionStore struct {
	mu       sync.Mutex
	sessions map[string]*model.Session // keyed by id
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{sessions: map[string]*model.Session{}}
}

func (f *fakeSessionStore) Create(_ context.Context, s *model.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *s
	cp.CreatedAt = time.Now().UTC()
	f.sessions[s.ID] = &cp
	return nil
}

func (f *fakeSessionStore) GetByToken(_ context.Context, token string) (*model.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.sessions {
		if s.Token == token {
			cp := *s
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeSessionStore) Consume(_ context.Context, id string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[id]
	if !ok || s.Revoked {
		return false, nil
	}
	s.Revoked = true
	return true, nil
}

func (f *fakeSessionStore) Revoke(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s, ok := f.sessions[id]; ok {
		s.Revoked = true
	}
	return nil
}

func (f *fakeSessionStore) RevokeAllForAccount(_ context.Context, accountID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.sessions {
		if s.AccountID == accountID {
			s.Revoked = true
		}
	}
	return nil
}

// expire backdates a session's expiry for tests.
func (f *fakeSessionStore) expire(token string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.sessions {
		if s.Token == token {
			s.ExpiresAt = time.Now().UTC().Add(-time.Minute)
		}
	}
}

func (f *fakeSessionStore) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sessions)
}
