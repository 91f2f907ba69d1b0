package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/telvora/customer-portal/internal/auth"
	"github.com/telvora/customer-portal/internal/queue"
	queue_publisher "github.com/telvora/customer-portal/internal/service"
	"github.com/telvora/customer-portal/internal/utils"
)

// AuthHandler exposes the credential and session manager over HTTP. It
// owns request validation and status-code mapping; all credential logic
// lives in the auth service.
type AuthHandler struct {
	Auth *auth.Service
}

func NewAuthHandler(svc *auth.Service) *AuthHandler {
	return &AuthHandler{Auth: svc}
}

// ----- DTOs -----

type registerReq struct {
	Email     string  `json:"email"`
	Password  string  `json:"password"`
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Phone     *string `json:"phone,omitempty"`
}
type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
type refreshReq struct {
	RefreshToken string `json:"refresh_token"`
}
type validateReq struct {
	Token string `json:"token"`
}

// Register: validate the body, create the account and return the first
// token bundle. Validation failures carry field-level detail; a duplicate
// email is a plain 400 like any other bad request.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	fields := map[string]string{}
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		fields["email"] = "valid email required"
	}
	if msg := utils.CheckPasswordPolicy(req.Password); msg != "" {
		fields["password"] = msg
	}
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

	bundle, err := h.Auth.Register(ctx, auth.RegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Phone:     req.Phone,
	})
	if err != nil {
		if errors.Is(err, auth.ErrAlreadyExists) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "account with this email already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
	}

	// Fan out the registration to the notification pipeline. Best effort:
	// the response does not wait for, or depend on, the broker.
	ev := queue.AccountRegisteredEvent{
		AccountID:    bundle.Account.ID,
		Email:        bundle.Account.Email,
		FirstName:    bundle.Account.FirstName,
		LastName:     bundle.Account.LastName,
		Role:         bundle.Account.Role,
		RegisteredAt: time.Now().UTC().Format(time.RFC3339),
	}
	go func() { _ = queue_publisher.PublishAccountRegistered(context.Background(), ev) }()

	return c.JSON(http.StatusCreated, bundle)
}

// Login: verify credentials and return a new token pair. Unknown email
// and wrong password produce byte-identical responses.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	bundle, err := h.Auth.Login(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrUnauthenticated) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid email or password"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
	}
	return c.JSON(http.StatusOK, bundle)
}

// Refresh: exchange a refresh token for a rotated pair. The old token is
// dead after this call succeeds, even if it had time left.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "refresh_token required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	bundle, err := h.Auth.Refresh(ctx, strings.TrimSpace(req.RefreshToken))
	if err != nil {
		if errors.Is(err, auth.ErrUnauthenticated) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired refresh token"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
	}
	return c.JSON(http.StatusOK, bundle)
}

// Logout: revoke the session named by the refresh token in the body.
// The route sits behind JWTAuth, so an access token is required; an
// unknown refresh token is a 400, and revoking twice still succeeds.
func (h *AuthHandler) Logout(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "refresh_token required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	ok, err := h.Auth.Revoke(ctx, strings.TrimSpace(req.RefreshToken))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
	}
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid refresh token"})
	}

	if accountID, okID := c.Get("account_id").(string); okID {
		ev := queue.SessionRevokedEvent{
			AccountID: accountID,
			RevokedAt: time.Now().UTC().Format(time.RFC3339),
		}
		go func() { _ = queue_publisher.PublishSessionRevoked(context.Background(), ev) }()
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "logged out successfully"})
}

// LogoutAll: revoke every session of the authenticated caller, signing
// them out of all devices. Identified purely by the Bearer token.
func (h *AuthHandler) LogoutAll(c echo.Context) error {
	accountID, ok := c.Get("account_id").(string)
	if !ok || accountID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Auth.RevokeAll(ctx, accountID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
	}

	ev := queue.SessionRevokedEvent{
		AccountID: accountID,
		RevokedAt: time.Now().UTC().Format(time.RFC3339),
	}
	go func() { _ = queue_publisher.PublishSessionRevoked(context.Background(), ev) }()

	return c.JSON(http.StatusOK, echo.Map{"message": "logged out everywhere"})
}

// Validate: report whether an access token is currently usable. Every
// failure answers 401, a missing or empty token included; the check goes
// through the auth service so a token for a deactivated account fails
// even before it expires.
func (h *AuthHandler) Validate(c echo.Context) error {
	var req validateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if !h.Auth.ValidateAccessToken(ctx, strings.TrimSpace(req.Token)) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
	}
	return c.JSON(http.StatusOK, echo.Map{"valid": true})
}

// Me: simple protected endpoint echoing the caller's claims.
func (h *AuthHandler) Me(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"account_id": c.Get("account_id"),
		"email":      c.Get("email"),
		"role":       c.Get("role"),
	})
}
