package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/hearthhq/hearth-api/internal/model"
	"github.com/hearthhq/hearth-api/internal/queue"
	"github.com/hearthhq/hearth-api/internal/service"
)

// AuthHandler bundles dependencies for the auth endpoints.
type AuthHandler struct {
	Svc *service.AuthService
}

func NewAuthHandler(svc *service.AuthService) *AuthHandler {
	return &AuthHandler{Svc: svc}
}

// ----- DTOs -----

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
type refreshReq struct {
	RefreshToken string `json:"refresh_token"`
}

type tokenPairResp struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
}

type userPart struct {
	ID        uint64    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}
type membershipPart struct {
	ID            uint64 `json:"id"`
	HomeID        uint64 `json:"home_id"`
	HomeName      string `json:"home_name"`
	Role          string `json:"role"`
	IsDefaultHome bool   `json:"is_default_home"`
}
type meResp struct {
	User        userPart         `json:"user"`
	DefaultHome *membershipPart  `json:"default_home"`
	Memberships []membershipPart `json:"memberships"`
}

// Login verifies credentials and returns a fresh token pair. Unknown email
// and wrong password get the same answer.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if strings.TrimSpace(req.Email) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	pair, err := h.Svc.Login(ctx, req.Email, req.Password, c.Request().UserAgent(), c.RealIP())
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "login failed"})
	}

	// Audit trail is best-effort; a broker outage never fails a login.
	_ = queue.PublishAuthEvent(ctx, queue.AuthEvent{
		Type:      queue.EventLogin,
		Email:     strings.ToLower(strings.TrimSpace(req.Email)),
		IPAddress: c.RealIP(),
		UserAgent: c.Request().UserAgent(),
	})

	return c.JSON(http.StatusOK, tokenPairResp{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    "bearer",
		ExpiresIn:    pair.ExpiresIn,
	})
}

// Refresh rotates the refresh session and returns a new token pair. A
// replayed, revoked, expired or unknown token gets the same answer.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "refresh_token required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	pair, err := h.Svc.Refresh(ctx, req.RefreshToken, c.Request().UserAgent(), c.RealIP())
	if err != nil {
		if errors.Is(err, service.ErrInvalidOrExpiredSession) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired session"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "refresh failed"})
	}

	_ = queue.PublishAuthEvent(ctx, queue.AuthEvent{
		Type:      queue.EventRefresh,
		IPAddress: c.RealIP(),
		UserAgent: c.Request().UserAgent(),
	})

	return c.JSON(http.StatusOK, tokenPairResp{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    "bearer",
		ExpiresIn:    pair.ExpiresIn,
	})
}

// Logout revokes the session backing the supplied refresh token. Logout is
// idempotent: an unknown or already-revoked token is success, so logging out
// twice behaves the same both times.
func (h *AuthHandler) Logout(c echo.Context) error {
	var req refreshReq
	_ = c.Bind(&req)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	if err := h.Svc.Logout(ctx, req.RefreshToken); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "logout failed"})
	}

	_ = queue.PublishAuthEvent(ctx, queue.AuthEvent{
		Type:      queue.EventLogout,
		IPAddress: c.RealIP(),
		UserAgent: c.Request().UserAgent(),
	})

	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// Me resolves the bearer access token into the caller's identity: user
// record, default home and memberships.
func (h *AuthHandler) Me(c echo.Context) error {
	auth := c.Request().Header.Get("Authorization")
	if !strings.HasPrefix(auth, "Bearer ") {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	identity, err := h.Svc.WhoAmI(ctx, strings.TrimPrefix(auth, "Bearer "))
	if err != nil {
		if errors.Is(err, service.ErrUnauthenticated) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "identity lookup failed"})
	}

	return c.JSON(http.StatusOK, buildMeResp(identity))
}

func buildMeResp(identity service.Identity) meResp {
	resp := meResp{
		User: userPart{
			ID:        identity.User.ID,
			Email:     identity.User.Email,
			CreatedAt: identity.User.CreatedAt,
		},
		Memberships: make([]membershipPart, 0, len(identity.Memberships)),
	}
	for _, m := range identity.Memberships {
		resp.Memberships = append(resp.Memberships, toMembershipPart(m))
	}
	if identity.DefaultHome != nil {
		part := toMembershipPart(*identity.DefaultHome)
		resp.DefaultHome = &part
	}
	return resp
}

func toMembershipPart(m model.MembershipInfo) membershipPart {
	return membershipPart{
		ID:            m.MembershipID,
		HomeID:        m.HomeID,
		HomeName:      m.HomeName,
		Role:          m.Role,
		IsDefaultHome: m.IsDefaultHome,
	}
}
