package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/hearthhq/hearth-api/internal/model"
)

// HomeRepo persists rows of the `homes` table. Homes are intentionally not
// deduplicated by name: every seeding run creates a fresh row.
type HomeRepo struct{ DB *sql.DB }

func NewHomeRepo(db *sql.DB) *HomeRepo { return &HomeRepo{DB: db} }

// Create inserts a home and returns the stored row.
func (r *HomeRepo) Create(ctx context.Context, name, timezone string) (model.Home, error) {
	if timezone == "" {
		timezone = "UTC"
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO homes (name, timezone) VALUES (?,?)",
		name, timezone)
	if err != nil {
		return model.Home{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Home{}, err
	}
	return r.GetByID(ctx, uint64(id))
}

// GetByID fetches a home by id. Returns ErrNotFound when absent.
func (r *HomeRepo) GetByID(ctx context.Context, id uint64) (model.Home, error) {
	var h model.Home
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,name,timezone,created_at FROM homes WHERE id=? LIMIT 1",
		id).Scan(&h.ID, &h.Name, &h.Timezone, &h.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Home{}, ErrNotFound
	}
	return h, err
}
