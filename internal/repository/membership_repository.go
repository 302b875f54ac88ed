package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/hearthhq/hearth-api/internal/model"
)

// MembershipRepo persists rows of the `home_memberships` table and serves
// the joined membership views that identity resolution works with.
type MembershipRepo struct{ DB *sql.DB }

func NewMembershipRepo(db *sql.DB) *MembershipRepo { return &MembershipRepo{DB: db} }

// FindOrCreate returns the membership for the (home, user, role) triple,
// inserting it when absent. An existing row is left exactly as it is, so a
// repeated seed run never disturbs previously provisioned memberships. The
// UNIQUE(home_id, user_id, role) constraint arbitrates concurrent inserts:
// the loser re-reads the winner's row instead of double-writing.
func (r *MembershipRepo) FindOrCreate(ctx context.Context, homeID, userID uint64, role string, isDefaultHome bool) (model.HomeMembership, bool, error) {
	m, err := r.getByTriple(ctx, homeID, userID, role)
	if err == nil {
		return m, false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return model.HomeMembership{}, false, err
	}
	_, err = r.DB.ExecContext(ctx,
		"INSERT INTO home_memberships (home_id, user_id, role, is_default_home) VALUES (?,?,?,?)",
		homeID, userID, role, isDefaultHome)
	if err != nil {
		if isDuplicate(err) {
			m, err := r.getByTriple(ctx, homeID, userID, role)
			return m, false, err
		}
		return model.HomeMembership{}, false, err
	}
	m, err = r.getByTriple(ctx, homeID, userID, role)
	return m, true, err
}

func (r *MembershipRepo) getByTriple(ctx context.Context, homeID, userID uint64, role string) (model.HomeMembership, error) {
	var m model.HomeMembership
	err := r.DB.QueryRowContext(ctx,
		`SELECT id,home_id,user_id,role,is_default_home,created_at
		 FROM home_memberships WHERE home_id=? AND user_id=? AND role=? LIMIT 1`,
		homeID, userID, role).Scan(&m.ID, &m.HomeID, &m.UserID, &m.Role, &m.IsDefaultHome, &m.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.HomeMembership{}, ErrNotFound
	}
	return m, err
}

// ListForUser returns every membership of the user joined with its home,
// default memberships first, then oldest first.
func (r *MembershipRepo) ListForUser(ctx context.Context, userID uint64) ([]model.MembershipInfo, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT m.id, m.home_id, h.name, h.timezone, m.role, m.is_default_home
		 FROM home_memberships m
		 JOIN homes h ON h.id = m.home_id
		 WHERE m.user_id = ?
		 ORDER BY m.is_default_home DESC, m.created_at ASC`,
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.MembershipInfo
	for rows.Next() {
		var mi model.MembershipInfo
		if err := rows.Scan(&mi.MembershipID, &mi.HomeID, &mi.HomeName, &mi.Timezone, &mi.Role, &mi.IsDefaultHome); err != nil {
			return nil, err
		}
		out = append(out, mi)
	}
	return out, rows.Err()
}

// DefaultForUser returns the user's default-home membership. Unlike the
// identity payload, which falls back to the oldest membership for display,
// role enforcement uses this strict lookup: no default-home flag means
// ErrNotFound, and gated operations fail closed.
func (r *MembershipRepo) DefaultForUser(ctx context.Context, userID uint64) (model.MembershipInfo, error) {
	var mi model.MembershipInfo
	err := r.DB.QueryRowContext(ctx,
		`SELECT m.id, m.home_id, h.name, h.timezone, m.role, m.is_default_home
		 FROM home_memberships m
		 JOIN homes h ON h.id = m.home_id
		 WHERE m.user_id = ? AND m.is_default_home = 1
		 ORDER BY m.created_at ASC LIMIT 1`,
		userID).Scan(&mi.MembershipID, &mi.HomeID, &mi.HomeName, &mi.Timezone, &mi.Role, &mi.IsDefaultHome)
	if errors.Is(err, sql.ErrNoRows) {
		return model.MembershipInfo{}, ErrNotFound
	}
	return mi, err
}
