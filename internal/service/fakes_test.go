package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/hearthhq/hearth-api/internal/model"
	"github.com/hearthhq/hearth-api/internal/repository"
)

// In-memory store fakes mirroring the repository contracts, including the
// sentinel errors the real MySQL-backed repositories return.

type fakeUsers struct {
	nextID  uint64
	byEmail map[string]model.User
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byEmail: make(map[string]model.User)}
}

func (f *fakeUsers) add(email string, hash sql.NullString) model.User {
	f.nextID++
	u := model.User{
		ID:           f.nextID,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
		UpdatedAt:    time.Now().UTC(),
	}
	f.byEmail[email] = u
	return u
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (model.User, error) {
	u, ok := f.byEmail[email]
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	return u, nil
}

func (f *fakeUsers) GetByID(_ context.Context, id uint64) (model.User, error) {
	for _, u := range f.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return model.User{}, repository.ErrNotFound
}

func (f *fakeUsers) FindOrCreate(_ context.Context, email string, passwordHash sql.NullString) (model.User, bool, error) {
	if u, ok := f.byEmail[email]; ok {
		return u, false, nil
	}
	return f.add(email, passwordHash), true, nil
}

type fakeHomes struct {
	nextID uint64
	rows   []model.Home
}

func (f *fakeHomes) Create(_ context.Context, name, timezone string) (model.Home, error) {
	if timezone == "" {
		timezone = "UTC"
	}
	f.nextID++
	h := model.Home{ID: f.nextID, Name: name, Timezone: timezone, CreatedAt: time.Now().UTC()}
	f.rows = append(f.rows, h)
	return h, nil
}

func (f *fakeHomes) byID(id uint64) model.Home {
	for _, h := range f.rows {
		if h.ID == id {
			return h
		}
	}
	return model.Home{}
}

type fakeMemberships struct {
	nextID uint64
	homes  *fakeHomes
	rows   []model.HomeMembership
}

func newFakeMemberships(homes *fakeHomes) *fakeMemberships {
	return &fakeMemberships{homes: homes}
}

func (f *fakeMemberships) FindOrCreate(_ context.Context, homeID, userID uint64, role string, isDefaultHome bool) (model.HomeMembership, bool, error) {
	for _, m := range f.rows {
		if m.HomeID == homeID && m.UserID == userID && m.Role == role {
			return m, false, nil
		}
	}
	f.nextID++
	m := model.HomeMembership{
		ID:            f.nextID,
		HomeID:        homeID,
		UserID:        userID,
		Role:          role,
		IsDefaultHome: isDefaultHome,
		CreatedAt:     time.Now().UTC(),
	}
	f.rows = append(f.rows, m)
	return m, true, nil
}

func (f *fakeMemberships) ListForUser(_ context.Context, userID uint64) ([]model.MembershipInfo, error) {
	var defaults, rest []model.MembershipInfo
	for _, m := range f.rows {
		if m.UserID != userID {
			continue
		}
		home := f.homes.byID(m.HomeID)
		info := model.MembershipInfo{
			MembershipID:  m.ID,
			HomeID:        m.HomeID,
			HomeName:      home.Name,
			Timezone:      home.Timezone,
			Role:          m.Role,
			IsDefaultHome: m.IsDefaultHome,
		}
		if m.IsDefaultHome {
			defaults = append(defaults, info)
		} else {
			rest = append(rest, info)
		}
	}
	return append(defaults, rest...), nil
}

type fakeSessions struct {
	nextID uint64
	rows   map[uint64]*model.AuthSession
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{rows: make(map[uint64]*model.AuthSession)}
}

func (f *fakeSessions) insert(userID uint64, tokenHash string, expiresAt time.Time, userAgent, ip string) (uint64, error) {
	for _, s := range f.rows {
		if s.TokenHash == tokenHash {
			return 0, repository.ErrConflict
		}
	}
	f.nextID++
	f.rows[f.nextID] = &model.AuthSession{
		ID:        f.nextID,
		UserID:    userID,
		TokenHash: tokenHash,
		UserAgent: userAgent,
		IPAddress: ip,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now().UTC(),
	}
	return f.nextID, nil
}

func (f *fakeSessions) Create(_ context.Context, userID uint64, tokenHash string, expiresAt time.Time, userAgent, ip string) (uint64, error) {
	return f.insert(userID, tokenHash, expiresAt, userAgent, ip)
}

func (f *fakeSessions) FindActiveByHash(_ context.Context, tokenHash string) (model.AuthSession, error) {
	for _, s := range f.rows {
		if s.TokenHash == tokenHash && s.RevokedAt == nil && s.ExpiresAt.After(time.Now().UTC()) {
			return *s, nil
		}
	}
	return model.AuthSession{}, repository.ErrNotFound
}

func (f *fakeSessions) Rotate(_ context.Context, oldID uint64, newHash string, expiresAt time.Time, userAgent, ip string) (uint64, error) {
	old, ok := f.rows[oldID]
	if !ok || old.RevokedAt != nil {
		return 0, repository.ErrNotFound
	}
	now := time.Now().UTC()
	old.RevokedAt = &now
	return f.insert(old.UserID, newHash, expiresAt, userAgent, ip)
}

func (f *fakeSessions) Revoke(_ context.Context, id uint64) error {
	s, ok := f.rows[id]
	if !ok {
		return repository.ErrNotFound
	}
	if s.RevokedAt == nil {
		now := time.Now().UTC()
		s.RevokedAt = &now
	}
	return nil
}

func (f *fakeSessions) RevokeAllForUser(_ context.Context, userID uint64) error {
	now := time.Now().UTC()
	for _, s := range f.rows {
		if s.UserID == userID && s.RevokedAt == nil {
			s.RevokedAt = &now
		}
	}
	return nil
}
