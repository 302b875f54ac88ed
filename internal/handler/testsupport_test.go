package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/hearthhq/hearth-api/internal/config"
	"github.com/hearthhq/hearth-api/internal/middleware"
	"github.com/hearthhq/hearth-api/internal/model"
	"github.com/hearthhq/hearth-api/internal/repository"
	"github.com/hearthhq/hearth-api/internal/service"
	"github.com/hearthhq/hearth-api/internal/utils"
)

const (
	testSecret     = "test-secret"
	testIterations = 1000
)

// memStore is an in-memory stand-in for the MySQL repositories, implementing
// every store interface the handlers reach through.
type memStore struct {
	nextID       uint64
	users        map[string]model.User
	memberships  []model.MembershipInfo
	sessions     map[uint64]*model.AuthSession
	integrations map[uint64][]string
}

func newMemStore() *memStore {
	return &memStore{
		users:        make(map[string]model.User),
		sessions:     make(map[uint64]*model.AuthSession),
		integrations: make(map[uint64][]string),
	}
}

func (m *memStore) id() uint64 {
	m.nextID++
	return m.nextID
}

// addMember provisions a user with a password and a default membership in the
// given home.
func (m *memStore) addMember(t *testing.T, email, password, role string, homeID uint64, homeName string) model.User {
	t.Helper()
	hash, err := utils.HashPassword(password, testIterations)
	require.NoError(t, err)
	u := model.User{
		ID:           m.id(),
		Email:        email,
		PasswordHash: sql.NullString{String: hash, Valid: true},
		CreatedAt:    time.Now().UTC(),
	}
	m.users[email] = u
	m.memberships = append(m.memberships, model.MembershipInfo{
		MembershipID:  m.id(),
		HomeID:        homeID,
		HomeName:      homeName,
		Timezone:      "UTC",
		Role:          role,
		IsDefaultHome: true,
	})
	return u
}

func (m *memStore) GetByEmail(_ context.Context, email string) (model.User, error) {
	u, ok := m.users[email]
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	return u, nil
}

func (m *memStore) GetByID(_ context.Context, id uint64) (model.User, error) {
	for _, u := range m.users {
		if u.ID == id {
			return u, nil
		}
	}
	return model.User{}, repository.ErrNotFound
}

func (m *memStore) ListForUser(_ context.Context, userID uint64) ([]model.MembershipInfo, error) {
	return m.membershipsOf(userID), nil
}

func (m *memStore) DefaultForUser(_ context.Context, userID uint64) (model.MembershipInfo, error) {
	for _, info := range m.membershipsOf(userID) {
		if info.IsDefaultHome {
			return info, nil
		}
	}
	return model.MembershipInfo{}, repository.ErrNotFound
}

// membershipsOf relies on addMember allocating the membership id right after
// the user id.
func (m *memStore) membershipsOf(userID uint64) []model.MembershipInfo {
	var out []model.MembershipInfo
	for _, info := range m.memberships {
		if info.MembershipID == userID+1 {
			out = append(out, info)
		}
	}
	return out
}

func (m *memStore) Create(_ context.Context, userID uint64, tokenHash string, expiresAt time.Time, userAgent, ip string) (uint64, error) {
	for _, s := range m.sessions {
		if s.TokenHash == tokenHash {
			return 0, repository.ErrConflict
		}
	}
	id := m.id()
	m.sessions[id] = &model.AuthSession{
		ID: id, UserID: userID, TokenHash: tokenHash,
		UserAgent: userAgent, IPAddress: ip, ExpiresAt: expiresAt,
	}
	return id, nil
}

func (m *memStore) FindActiveByHash(_ context.Context, tokenHash string) (model.AuthSession, error) {
	for _, s := range m.sessions {
		if s.TokenHash == tokenHash && s.RevokedAt == nil && s.ExpiresAt.After(time.Now().UTC()) {
			return *s, nil
		}
	}
	return model.AuthSession{}, repository.ErrNotFound
}

func (m *memStore) Rotate(_ context.Context, oldID uint64, newHash string, expiresAt time.Time, userAgent, ip string) (uint64, error) {
	old, ok := m.sessions[oldID]
	if !ok || old.RevokedAt != nil {
		return 0, repository.ErrNotFound
	}
	now := time.Now().UTC()
	old.RevokedAt = &now
	return m.Create(context.Background(), old.UserID, newHash, expiresAt, userAgent, ip)
}

func (m *memStore) Revoke(_ context.Context, id uint64) error {
	s, ok := m.sessions[id]
	if !ok {
		return repository.ErrNotFound
	}
	if s.RevokedAt == nil {
		now := time.Now().UTC()
		s.RevokedAt = &now
	}
	return nil
}

func (m *memStore) RevokeAllForUser(_ context.Context, userID uint64) error {
	now := time.Now().UTC()
	for _, s := range m.sessions {
		if s.UserID == userID && s.RevokedAt == nil {
			s.RevokedAt = &now
		}
	}
	return nil
}

func (m *memStore) ListEnabled(_ context.Context, homeID uint64) ([]string, error) {
	ids := m.integrations[homeID]
	if ids == nil {
		ids = []string{}
	}
	return ids, nil
}

func (m *memStore) SetEnabled(_ context.Context, homeID uint64, serverIDs []string) error {
	m.integrations[homeID] = serverIDs
	return nil
}

// newTestApp wires an Echo instance the way the router does, minus the rate
// limiter, over a single in-memory store.
func newTestApp(store *memStore) *echo.Echo {
	cfg := &config.Config{
		JWTSecret:         testSecret,
		AccessTTLMin:      15,
		RefreshTTLDays:    30,
		ProtectedPrefixes: []string{"/api/v1/integrations"},
	}
	svc := service.NewAuthService(cfg, store, store, store)
	auth := NewAuthHandler(svc)
	integrations := NewIntegrationsHandler(store)

	e := echo.New()
	e.Use(middleware.Protected(cfg.JWTSecret, cfg.ProtectedPrefixes))

	authGroup := e.Group("/api/v1/auth")
	authGroup.POST("/login", auth.Login)
	authGroup.POST("/refresh", auth.Refresh)
	authGroup.POST("/logout", auth.Logout)
	authGroup.GET("/me", auth.Me)

	ig := e.Group("/api/v1/integrations")
	ig.GET("/servers", integrations.List, middleware.RequireRole(store, model.MembershipRoles...))
	ig.PUT("/servers", integrations.Update, middleware.RequireRole(store, "owner", "parent"))
	return e
}

func doJSON(e *echo.Echo, method, path, body, bearer string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func loginFor(t *testing.T, e *echo.Echo, email, password string) (access, refresh string) {
	t.Helper()
	rec := doJSON(e, http.MethodPost, "/api/v1/auth/login",
		`{"email":"`+email+`","password":"`+password+`"}`, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
	}
	require.NoError(t, decodeBody(rec, &resp))
	return resp.AccessToken, resp.RefreshToken
}

func decodeBody(rec *httptest.ResponseRecorder, v interface{}) error {
	return json.Unmarshal(rec.Body.Bytes(), v)
}
