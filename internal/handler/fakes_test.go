package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/telvora/customer-portal/internal/auth"
	"github.com/telvora/customer-portal/internal/handler"
	"github.com/telvora/customer-portal/internal/model"
	"github.com/telvora/customer-portal/internal/repository"
	"github.com/telvora/customer-portal/internal/router"
	"github.com/telvora/customer-portal/internal/utils"
)

const testSecret = "handler-test-secret"

// memAccounts is an in-memory account store implementing both
// auth.AccountStore and handler.ProfileStore.
type memAccounts struct {
	mu   sync.Mutex
	byID map[string]*model.Account
}

func newMemAccounts() *memAccounts { return &memAccounts{byID: map[string]*model.Account{}} }

func (m *memAccounts) Create(_ context.Context, a *model.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.byID {
		if e.Email == a.Email {
			return repository.ErrEmailExists
		}
	}
	cp := *a
	cp.CreatedAt = time.Now().UTC()
	cp.UpdatedAt = cp.CreatedAt
	m.byID[a.ID] = &cp
	return nil
}

func (m *memAccounts) GetByEmail(_ context.Context, email string) (*model.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.byID {
		if a.Email == email {
			cp := *a
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memAccounts) GetByID(_ context.Context, id string) (*model.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *memAccounts) TouchUpdated(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a, ok := m.byID[id]; ok {
		a.UpdatedAt = time.Now().UTC()
	}
	return nil
}

func (m *memAccounts) UpdateProfile(_ context.Context, id, firstName, lastName string, phone *string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a, ok := m.byID[id]; ok {
		a.FirstName = firstName
		a.LastName = lastName
		a.Phone = phone
		a.UpdatedAt = time.Now().UTC()
	}
	return nil
}

func (m *memAccounts) deactivate(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a, ok := m.byID[id]; ok {
		a.IsActive = false
	}
}

// memSessions is an in-memory session store implementing auth.SessionStore.
type memSessions struct {
	mu   sync.Mutex
	byID map[string]*model.Session
}

func newMemSessions() *memSessions { return &memSessions{byID: map[string]*model.Session{}} }

func (m *memSessions) Create(_ context.Context, s *model.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *s
	m.byID[s.ID] = &cp
	return nil
}

func (m *memSessions) GetByToken(_ context.Context, token string) (*model.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.byID {
		if s.Token == token {
			cp := *s
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memSessions) Consume(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.byID[id]
	if !ok || s.Revoked {
		return false, nil
	}
	s.Revoked = true
	return true, nil
}

func (m *memSessions) Revoke(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.byID[id]; ok {
		s.Revoked = true
	}
	return nil
}

func (m *memSessions) RevokeAllForAccount(_ context.Context, accountID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.byID {
		if s.AccountID == accountID {
			s.Revoked = true
		}
	}
	return nil
}

func (m *memSessions) expire(token string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.byID {
		if s.Token == token {
			s.ExpiresAt = time.Now().UTC().Add(-time.Minute)
		}
	}
}

// memCache is an in-memory handler.ProfileCache that counts hits so
// tests can tell whether a read was served from cache or storage.
type memCache struct {
	mu      sync.Mutex
	entries map[string]string
	hits    int
}

func newMemCache() *memCache { return &memCache{entries: map[string]string{}} }

func (m *memCache) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.entries[key]
	if !ok {
		return "", errors.New("cache miss")
	}
	m.hits++
	return v, nil
}

func (m *memCache) Set(_ context.Context, key, value string, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = value
	return nil
}

func (m *memCache) Del(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}

func (m *memCache) hitCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.hits
}

// testServer assembles the HTTP surface over in-memory stores: real
// routes, real middleware, fake storage.
type testServer struct {
	e        *echo.Echo
	accounts *memAccounts
	sessions *memSessions
}

func newTestServer() *testServer { return newTestServerWith(nil, nil) }

// newTestServerWith lets a test plug in a profile cache or a rate
// limiter; nil disables either, like in production without Redis.
func newTestServerWith(cache handler.ProfileCache, limiter echo.MiddlewareFunc) *testServer {
	accounts := newMemAccounts()
	sessions := newMemSessions()
	codec := utils.NewTokenCodec(testSecret, 15, 7)
	svc := auth.NewService(accounts, sessions, codec, bcrypt.MinCost)

	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterAuth(e, handler.NewAuthHandler(svc), handler.NewProfileHandler(accounts, cache), testSecret, limiter)
	return &testServer{e: e, accounts: accounts, sessions: sessions}
}

// do issues a JSON request against the in-memory server.
func (ts *testServer) do(t *testing.T, method, path, body, bearer string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	ts.e.ServeHTTP(rec, req)
	return rec
}

type bundleResp struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
	Account      struct {
		ID        string `json:"id"`
		Email     string `json:"email"`
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
		Role      string `json:"role"`
	} `json:"account"`
}

func decodeBundle(t *testing.T, rec *httptest.ResponseRecorder) bundleResp {
	t.Helper()
	var b bundleResp
	if err := json.Unmarshal(rec.Body.Bytes(), &b); err != nil {
		t.Fatalf("decode bundle: %v (body %s)", err, rec.Body.String())
	}
	return b
}

// registerAccount registers a default account and returns its bundle.
func (ts *testServer) registerAccount(t *testing.T, email string) bundleResp {
	t.Helper()
	rec := ts.do(t, http.MethodPost, "/v1/auth/register",
		`{"email":"`+email+`","password":"Abcd123!","first_name":"Ada","last_name":"Lovelace"}`, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("register status = %d, body %s", rec.Code, rec.Body.String())
	}
	return decodeBundle(t, rec)
}
