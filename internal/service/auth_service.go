package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/hearthhq/hearth-api/internal/config"
	"github.com/hearthhq/hearth-api/internal/model"
	"github.com/hearthhq/hearth-api/internal/repository"
	"github.com/hearthhq/hearth-api/internal/utils"
)

// UserStore is the slice of the user repository the auth service needs.
type UserStore interface {
	GetByEmail(ctx context.Context, email string) (model.User, error)
	GetByID(ctx context.Context, id uint64) (model.User, error)
}

// MembershipStore resolves a user's home memberships.
type MembershipStore interface {
	ListForUser(ctx context.Context, userID uint64) ([]model.MembershipInfo, error)
}

// SessionStore persists refresh sessions keyed by token hash.
type SessionStore interface {
	Create(ctx context.Context, userID uint64, tokenHash string, expiresAt time.Time, userAgent, ip string) (uint64, error)
	FindActiveByHash(ctx context.Context, tokenHash string) (model.AuthSession, error)
	Rotate(ctx context.Context, oldID uint64, newHash string, expiresAt time.Time, userAgent, ip string) (uint64, error)
	Revoke(ctx context.Context, id uint64) error
	RevokeAllForUser(ctx context.Context, userID uint64) error
}

// TokenPair is the result of login and refresh: a short-lived access token,
// the raw refresh token (returned to the caller exactly once) and the access
// token TTL in seconds.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int
}

// Identity is the resolved "who am I" view: the user, their default home
// membership (nil when the user belongs to no home) and all memberships.
type Identity struct {
	User        model.User
	DefaultHome *model.MembershipInfo
	Memberships []model.MembershipInfo
}

// AuthService orchestrates login, refresh, logout and identity resolution
// over the credential hasher, the token helpers and the session store. All
// mutable state lives in the store; the service itself only holds read-only
// configuration.
type AuthService struct {
	cfg         *config.Config
	users       UserStore
	memberships MembershipStore
	sessions    SessionStore
}

func NewAuthService(cfg *config.Config, users UserStore, memberships MembershipStore, sessions SessionStore) *AuthService {
	return &AuthService{cfg: cfg, users: users, memberships: memberships, sessions: sessions}
}

// Login verifies the email/password pair and, on success, issues an access
// token and a fresh refresh session. An unknown email and a wrong password
// produce the same ErrInvalidCredentials; an account whose stored hash is
// NULL (seeded non-owner) rejects every password.
func (s *AuthService) Login(ctx context.Context, email, password, userAgent, ip string) (TokenPair, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return TokenPair{}, ErrInvalidCredentials
		}
		return TokenPair{}, err
	}
	if !u.PasswordHash.Valid || !utils.VerifyPassword(u.PasswordHash.String, password) {
		return TokenPair{}, ErrInvalidCredentials
	}
	return s.issuePair(ctx, u.ID, userAgent, ip)
}

// Refresh exchanges a valid refresh token for a new token pair, rotating the
// backing session: the old session is revoked and a new one inserted in a
// single transaction. Resubmitting an already-rotated token fails exactly
// like an unknown one, which is how replay after legitimate rotation is
// detected.
func (s *AuthService) Refresh(ctx context.Context, rawRefresh, userAgent, ip string) (TokenPair, error) {
	raw := strings.TrimSpace(rawRefresh)
	if raw == "" {
		return TokenPair{}, ErrInvalidOrExpiredSession
	}
	sess, err := s.sessions.FindActiveByHash(ctx, utils.HashRefreshRaw(raw))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return TokenPair{}, ErrInvalidOrExpiredSession
		}
		return TokenPair{}, err
	}

	newRefresh, err := utils.NewRefreshToken(s.cfg.RefreshTTLDays)
	if err != nil {
		return TokenPair{}, err
	}
	// Carry forward issuance metadata when the client supplies none.
	if userAgent == "" {
		userAgent = sess.UserAgent
	}
	if ip == "" {
		ip = sess.IPAddress
	}
	if _, err := s.sessions.Rotate(ctx, sess.ID, utils.HashRefreshRaw(newRefresh.Raw), newRefresh.Exp, userAgent, ip); err != nil {
		// A concurrent rotation of the same token wins the UPDATE or the
		// hash uniqueness check; the loser must see the token as dead.
		if errors.Is(err, repository.ErrNotFound) || errors.Is(err, repository.ErrConflict) {
			return TokenPair{}, ErrInvalidOrExpiredSession
		}
		return TokenPair{}, err
	}

	access, err := s.accessTokenFor(ctx, sess.UserID)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{
		AccessToken:  access.Token,
		RefreshToken: newRefresh.Raw,
		ExpiresIn:    s.cfg.AccessTTLMin * 60,
	}, nil
}

// Logout revokes the session backing the given refresh token. An unknown,
// already-revoked or expired token is a no-op success: logging out twice is
// not an error surface.
func (s *AuthService) Logout(ctx context.Context, rawRefresh string) error {
	raw := strings.TrimSpace(rawRefresh)
	if raw == "" {
		return nil
	}
	sess, err := s.sessions.FindActiveByHash(ctx, utils.HashRefreshRaw(raw))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return err
	}
	return s.sessions.Revoke(ctx, sess.ID)
}

// RevokeAll revokes every active session of a user.
func (s *AuthService) RevokeAll(ctx context.Context, userID uint64) error {
	return s.sessions.RevokeAllForUser(ctx, userID)
}

// WhoAmI verifies an access token and resolves the caller's identity: user
// record, default home and memberships. Any token failure yields
// ErrUnauthenticated.
func (s *AuthService) WhoAmI(ctx context.Context, accessToken string) (Identity, error) {
	userID, _, err := utils.ParseAccessToken(s.cfg.JWTSecret, accessToken)
	if err != nil {
		return Identity{}, ErrUnauthenticated
	}
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return Identity{}, ErrUnauthenticated
		}
		return Identity{}, err
	}
	memberships, err := s.memberships.ListForUser(ctx, userID)
	if err != nil {
		return Identity{}, err
	}
	return Identity{
		User:        u,
		DefaultHome: resolveDefault(memberships),
		Memberships: memberships,
	}, nil
}

// issuePair mints an access token and creates a refresh session for the
// user.
func (s *AuthService) issuePair(ctx context.Context, userID uint64, userAgent, ip string) (TokenPair, error) {
	access, err := s.accessTokenFor(ctx, userID)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := utils.NewRefreshToken(s.cfg.RefreshTTLDays)
	if err != nil {
		return TokenPair{}, err
	}
	if _, err := s.sessions.Create(ctx, userID, utils.HashRefreshRaw(refresh.Raw), refresh.Exp, userAgent, ip); err != nil {
		return TokenPair{}, err
	}
	return TokenPair{
		AccessToken:  access.Token,
		RefreshToken: refresh.Raw,
		ExpiresIn:    s.cfg.AccessTTLMin * 60,
	}, nil
}

func (s *AuthService) accessTokenFor(ctx context.Context, userID uint64) (utils.AccessToken, error) {
	memberships, err := s.memberships.ListForUser(ctx, userID)
	if err != nil {
		return utils.AccessToken{}, err
	}
	role := ""
	if d := resolveDefault(memberships); d != nil {
		role = d.Role
	}
	return utils.NewAccessToken(s.cfg.JWTSecret, userID, role, s.cfg.AccessTTLMin)
}

// resolveDefault picks the membership the user's identity resolves to when
// no home is explicitly selected: the first default-flagged membership, else
// the oldest membership, else nil.
func resolveDefault(memberships []model.MembershipInfo) *model.MembershipInfo {
	for i := range memberships {
		if memberships[i].IsDefaultHome {
			return &memberships[i]
		}
	}
	if len(memberships) > 0 {
		return &memberships[0]
	}
	return nil
}
