package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/hearthhq/hearth-api/internal/model"
	"github.com/hearthhq/hearth-api/internal/repository"
)

// DefaultMembershipStore resolves the caller's default-home membership for
// role enforcement.
type DefaultMembershipStore interface {
	DefaultForUser(ctx context.Context, userID uint64) (model.MembershipInfo, error)
}

// RequireRole returns a middleware that enforces that the authenticated
// caller's default-home membership carries one of the given roles. The role
// is read from the store, not from the token, so a stale claim cannot widen
// access. A caller with no default-home membership is rejected with 403:
// role-gated operations fail closed, they are never silently granted. A role
// failure is a 403, distinct from the 401 of a failed authentication,
// because the caller is known but insufficiently privileged. On success the
// caller's default home id is stored in the context under "home_id".
func RequireRole(store DefaultMembershipStore, roles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userID, ok := c.Get("user_id").(uint64)
			if !ok || userID == 0 {
				return unauthorized(c)
			}
			membership, err := store.DefaultForUser(c.Request().Context(), userID)
			if err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
				}
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "role lookup failed"})
			}
			if !allowed[membership.Role] {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
			}
			c.Set("home_id", membership.HomeID)
			return next(c)
		}
	}
}
