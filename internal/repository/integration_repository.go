package repository

import (
	"context"
	"database/sql"
)

// IntegrationRepo persists the set of enabled integration servers per home
// in the `home_integrations` table.
type IntegrationRepo struct{ DB *sql.DB }

func NewIntegrationRepo(db *sql.DB) *IntegrationRepo { return &IntegrationRepo{DB: db} }

// ListEnabled returns the enabled integration server ids for a home.
func (r *IntegrationRepo) ListEnabled(ctx context.Context, homeID uint64) ([]string, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT server_id FROM home_integrations WHERE home_id=? ORDER BY server_id",
		homeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// SetEnabled replaces the home's enabled set with the given server ids. The
// delete and inserts run in one transaction so concurrent writers cannot
// interleave into a mixed set.
func (r *IntegrationRepo) SetEnabled(ctx context.Context, homeID uint64, serverIDs []string) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			_ = tx.Commit()
		}
	}()

	if _, err = tx.ExecContext(ctx,
		"DELETE FROM home_integrations WHERE home_id=?", homeID); err != nil {
		return err
	}
	for _, id := range serverIDs {
		if _, err = tx.ExecContext(ctx,
			"INSERT INTO home_integrations (home_id, server_id) VALUES (?,?)",
			homeID, id); err != nil {
			return err
		}
	}
	return nil
}
