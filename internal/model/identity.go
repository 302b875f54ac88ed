package model

import (
	"database/sql"
	"time"
)

// MembershipRoles lists every role a home membership may carry. The
// same person can hold different roles in different homes, so the
// role lives on the membership row rather than on the user.
var MembershipRoles = []string{"owner", "parent", "child", "caretaker", "guest", "member"}

// IsValidRole reports whether the given role name is one of the
// supported membership roles.
func IsValidRole(role string) bool {
	for _, r := range MembershipRoles {
		if r == role {
			return true
		}
	}
	return false
}

// User represents an application account as stored in the `users`
// table. Seeded non-owner accounts carry no password hash at all:
// PasswordHash is NULL in the database and login against such an
// account must always fail, whatever password is supplied.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Email        – unique, lowercased email address.
//  PasswordHash – self-describing PBKDF2 hash, NULL for passwordless accounts.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
	ID           uint64         // users.id
	Email        string         // users.email
	PasswordHash sql.NullString // users.password_hash (nullable)
	CreatedAt    time.Time      // users.created_at
	UpdatedAt    time.Time      // users.updated_at
}

// Home is a household container shared by one or more users. Homes
// are never deduplicated by name; every seeding run creates a fresh
// row, so two homes may share a display name.
type Home struct {
	ID        uint64    // homes.id
	Name      string    // homes.name
	Timezone  string    // homes.timezone
	CreatedAt time.Time // homes.created_at
}

// HomeMembership links a user to a home with a role. The
// (home_id, user_id, role) triple is unique; a user may appear in a
// home under several roles and in several homes under one role.
//
// Fields:
//  ID            – primary key identifier.
//  HomeID        – the home this membership belongs to.
//  UserID        – the member.
//  Role          – one of MembershipRoles.
//  IsDefaultHome – whether this membership is the user's default identity context.
//  CreatedAt     – timestamp of creation.
type HomeMembership struct {
	ID            uint64    // home_memberships.id
	HomeID        uint64    // home_memberships.home_id
	UserID        uint64    // home_memberships.user_id
	Role          string    // home_memberships.role
	IsDefaultHome bool      // home_memberships.is_default_home
	CreatedAt     time.Time // home_memberships.created_at
}

// MembershipInfo is a membership joined with its home's display data.
// It is what identity lookups (whoami, role guards) work with, since
// callers care about the home name alongside the role.
type MembershipInfo struct {
	MembershipID  uint64 // home_memberships.id
	HomeID        uint64 // homes.id
	HomeName      string // homes.name
	Timezone      string // homes.timezone
	Role          string // home_memberships.role
	IsDefaultHome bool   // home_memberships.is_default_home
}
