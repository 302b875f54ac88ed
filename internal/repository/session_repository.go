package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/hearthhq/hearth-api/internal/model"
)

// SessionRepo persists refresh sessions in the `auth_sessions` table.
// Sessions are always looked up by the SHA-256 hash of the refresh token;
// no code path compares raw token values.
type SessionRepo struct{ DB *sql.DB }

func NewSessionRepo(db *sql.DB) *SessionRepo { return &SessionRepo{DB: db} }

// Create inserts a session row for the hashed refresh token and returns its
// id. userAgent and ip are optional issuance metadata; empty strings are
// stored as NULL.
func (r *SessionRepo) Create(ctx context.Context, userID uint64, tokenHash string, expiresAt time.Time, userAgent, ip string) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO auth_sessions (user_id, token_hash, user_agent, ip_address, expires_at) VALUES (?,?,?,?,?)",
		userID, tokenHash, nullStr(userAgent), nullStr(ip), expiresAt)
	if err != nil {
		if isDuplicate(err) {
			return 0, ErrConflict
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// FindActiveByHash returns the session for the given token hash provided it
// is neither revoked nor past its expiry. Both conditions are checked; a
// revoked, expired or unknown hash all collapse into ErrNotFound.
func (r *SessionRepo) FindActiveByHash(ctx context.Context, tokenHash string) (model.AuthSession, error) {
	var (
		s         model.AuthSession
		userAgent sql.NullString
		ipAddress sql.NullString
		revokedAt sql.NullTime
	)
	err := r.DB.QueryRowContext(ctx,
		`SELECT id,user_id,token_hash,user_agent,ip_address,expires_at,revoked_at,created_at
		 FROM auth_sessions WHERE token_hash=? LIMIT 1`,
		tokenHash).Scan(&s.ID, &s.UserID, &s.TokenHash, &userAgent, &ipAddress, &s.ExpiresAt, &revokedAt, &s.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.AuthSession{}, ErrNotFound
	}
	if err != nil {
		return model.AuthSession{}, err
	}
	if revokedAt.Valid {
		return model.AuthSession{}, ErrNotFound
	}
	if !time.Now().UTC().Before(s.ExpiresAt) {
		return model.AuthSession{}, ErrNotFound
	}
	s.UserAgent = userAgent.String
	s.IPAddress = ipAddress.String
	return s, nil
}

// Rotate revokes the old session and inserts its replacement as a single
// transaction, so a crash between the two statements never leaves two
// simultaneously valid sessions for the same original token. Exactly one
// not-yet-revoked row must be claimed by the UPDATE; when a concurrent
// rotation already revoked it, the caller gets ErrNotFound and must treat
// the token as replayed.
func (r *SessionRepo) Rotate(ctx context.Context, oldID uint64, newHash string, expiresAt time.Time, userAgent, ip string) (uint64, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			_ = tx.Commit()
		}
	}()

	var res sql.Result
	res, err = tx.ExecContext(ctx,
		"UPDATE auth_sessions SET revoked_at=UTC_TIMESTAMP() WHERE id=? AND revoked_at IS NULL",
		oldID)
	if err != nil {
		return 0, err
	}
	var affected int64
	affected, err = res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if affected != 1 {
		err = ErrNotFound
		return 0, err
	}

	var userID uint64
	if err = tx.QueryRowContext(ctx,
		"SELECT user_id FROM auth_sessions WHERE id=?", oldID).Scan(&userID); err != nil {
		return 0, err
	}

	res, err = tx.ExecContext(ctx,
		"INSERT INTO auth_sessions (user_id, token_hash, user_agent, ip_address, expires_at) VALUES (?,?,?,?,?)",
		userID, newHash, nullStr(userAgent), nullStr(ip), expiresAt)
	if err != nil {
		if isDuplicate(err) {
			err = ErrConflict
		}
		return 0, err
	}
	var id int64
	id, err = res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// Revoke marks a session as revoked. Revoking an already revoked session is
// a no-op; a session is never un-revoked.
func (r *SessionRepo) Revoke(ctx context.Context, id uint64) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE auth_sessions SET revoked_at=UTC_TIMESTAMP() WHERE id=? AND revoked_at IS NULL",
		id)
	return err
}

// RevokeAllForUser revokes every active session of the user.
func (r *SessionRepo) RevokeAllForUser(ctx context.Context, userID uint64) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE auth_sessions SET revoked_at=UTC_TIMESTAMP() WHERE user_id=? AND revoked_at IS NULL",
		userID)
	return err
}

func nullStr(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
