package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/hearthhq/hearth-api/internal/model"
)

// UserRepo persists rows of the `users` table. Password hashing happens in
// the service layer; this repository only stores whatever hash (or NULL
// sentinel) it is given.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// Create inserts a user and returns its ID. The passwordHash may be invalid
// (NULL) for accounts that must never authenticate with a password.
func (r *UserRepo) Create(ctx context.Context, email string, passwordHash sql.NullString) (uint64, error) {
	email = normalizeEmail(email)
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (email, password_hash) VALUES (?,?)",
		email, passwordHash)
	if err != nil {
		if isDuplicate(err) {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByEmail fetches a user by normalized email. Returns ErrNotFound when no
// such user exists.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = normalizeEmail(email)
	var u model.User
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,email,password_hash,created_at,updated_at FROM users WHERE email=? LIMIT 1",
		email).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, ErrNotFound
	}
	return u, err
}

// GetByID fetches a user by id. Returns ErrNotFound when absent.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	var u model.User
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,email,password_hash,created_at,updated_at FROM users WHERE id=? LIMIT 1",
		id).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, ErrNotFound
	}
	return u, err
}

// FindOrCreate returns the user with the given email, inserting it first if
// absent. An existing row is returned untouched, whatever hash it carries.
// The reported bool is true when this call created the row. A concurrent
// creator winning the race is handled by re-reading after a duplicate-key
// error.
func (r *UserRepo) FindOrCreate(ctx context.Context, email string, passwordHash sql.NullString) (model.User, bool, error) {
	u, err := r.GetByEmail(ctx, email)
	if err == nil {
		return u, false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return model.User{}, false, err
	}
	if _, err := r.Create(ctx, email, passwordHash); err != nil {
		if !errors.Is(err, ErrEmailExists) {
			return model.User{}, false, err
		}
		// Lost the race; the row now exists.
		u, err := r.GetByEmail(ctx, email)
		return u, false, err
	}
	u, err = r.GetByEmail(ctx, email)
	return u, true, err
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
