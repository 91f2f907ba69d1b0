package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/telvora/customer-portal/internal/model"
	"github.com/telvora/customer-portal/internal/repository"
)

const profileCacheTTL = 15 * time.Minute

// ProfileStore is the slice of the account repository the profile
// endpoints need. *repository.AccountRepo satisfies it.
type ProfileStore interface {
	GetByID(ctx context.Context, id string) (*model.Account, error)
	UpdateProfile(ctx context.Context, id, firstName, lastName string, phone *string) error
}

// ProfileCache is the cache surface profile reads go through. The
// Redis-backed implementation serves production; tests supply an
// in-memory one.
type ProfileCache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}

// redisProfileCache adapts a Redis client to ProfileCache.
type redisProfileCache struct{ rdb *redis.Client }

// NewRedisProfileCache wraps a Redis client for profile caching. A nil
// client yields a nil ProfileCache, which disables caching entirely.
func NewRedisProfileCache(rdb *redis.Client) ProfileCache {
	if rdb == nil {
		return nil
	}
	return &redisProfileCache{rdb: rdb}
}

func (c *redisProfileCache) Get(ctx context.Context, key string) (string, error) {
	return c.rdb.Get(ctx, key).Result()
}

func (c *redisProfileCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return c.rdb.Set(ctx, key, value, ttl).Err()
}

func (c *redisProfileCache) Del(ctx context.Context, key string) error {
	return c.rdb.Del(ctx, key).Err()
}

// ProfileHandler serves the authenticated customer's own profile. Reads
// go through a cache-aside layer keyed per account; writes update MySQL
// and drop the cache entry. A nil cache disables caching entirely and
// every read falls through to the database.
type ProfileHandler struct {
	Accounts ProfileStore
	Cache    ProfileCache
}

func NewProfileHandler(accounts ProfileStore, cache ProfileCache) *ProfileHandler {
	return &ProfileHandler{Accounts: accounts, Cache: cache}
}

type profileResp struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Phone     *string   `json:"phone,omitempty"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type updateProfileReq struct {
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Phone     *string `json:"phone,omitempty"`
}

func profileCacheKey(accountID string) string { return "profile:" + accountID }

// Get returns the caller's profile, served from cache when possible.
func (h *ProfileHandler) Get(c echo.Context) error {
	accountID, ok := c.Get("account_id").(string)
	if !ok || accountID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if h.Cache != nil {
		if raw, err := h.Cache.Get(ctx, profileCacheKey(accountID)); err == nil {
			var cached profileResp
			if json.Unmarshal([]byte(raw), &cached) == nil {
				return c.JSON(http.StatusOK, cached)
			}
		}
	}

	acct, err := h.Accounts.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "profile not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
	}

	resp := profileResp{
		ID:        acct.ID,
		Email:     acct.Email,
		FirstName: acct.FirstName,
		LastName:  acct.LastName,
		Phone:     acct.Phone,
		Role:      acct.Role,
		CreatedAt: acct.CreatedAt,
		UpdatedAt: acct.UpdatedAt,
	}

	if h.Cache != nil {
		if raw, err := json.Marshal(resp); err == nil {
			_ = h.Cache.Set(ctx, profileCacheKey(accountID), string(raw), profileCacheTTL)
		}
	}
	return c.JSON(http.StatusOK, resp)
}

// Update replaces the caller's name and phone, then invalidates the
// cached profile so the next read sees fresh data.
func (h *ProfileHandler) Update(c echo.Context) error {
	accountID, ok := c.Get("account_id").(string)
	if !ok || accountID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	var req updateProfileReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	fields := map[string]string{}
	if len(strings.TrimSpace(req.FirstName)) < 2 {
		fields["first_name"] = "first name required"
	}
	if len(strings.TrimSpace(req.LastName)) < 2 {
		fields["last_name"] = "last name required"
	}
	if len(fields) > 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "validation failed", "fields": fields})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Accounts.UpdateProfile(ctx, accountID,
		strings.TrimSpace(req.FirstName), strings.TrimSpace(req.LastName), req.Phone); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
	}

	if h.Cache != nil {
		_ = h.Cache.Del(ctx, profileCacheKey(accountID))
	}

	acct, err := h.Accounts.GetByID(ctx, accountID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
	}
	return c.JSON(http.StatusOK, profileResp{
		ID:        acct.ID,
		Email:     acct.Email,
		FirstName: acct.FirstName,
		LastName:  acct.LastName,
		Phone:     acct.Phone,
		Role:      acct.Role,
		CreatedAt: acct.CreatedAt,
		UpdatedAt: acct.UpdatedAt,
	})
}
