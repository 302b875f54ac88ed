package model

import "time"

// AuthSession models an entry in the `auth_sessions` table. A session
// backs one refresh token; the plain token is never persisted, only
// its SHA-256 hash. Rotation revokes the old row and inserts a new
// one, and a revoked session is never un-revoked.
//
// Fields:
//  ID        – primary key identifier.
//  UserID    – owner of the session.
//  TokenHash – SHA-256 hex digest of the refresh token value.
//  UserAgent – client user agent captured at issuance (nullable).
//  IPAddress – client IP captured at issuance (nullable).
//  ExpiresAt – expiration timestamp of the session.
//  RevokedAt – when the session was revoked (null if still active).
//  CreatedAt – timestamp of creation.
type AuthSession struct {
	ID        uint64     // auth_sessions.id
	UserID    uint64     // auth_sessions.user_id
	TokenHash string     // auth_sessions.token_hash
	UserAgent string     // auth_sessions.user_agent ('' when not captured)
	IPAddress string     // auth_sessions.ip_address ('' when not captured)
	ExpiresAt time.Time  // auth_sessions.expires_at
	RevokedAt *time.Time // auth_sessions.revoked_at (nullable)
	CreatedAt time.Time  // auth_sessions.created_at
}
