package middleware // reusable HTTP middleware for authentication and authorization

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/hearthhq/hearth-api/internal/utils"
)

// Protected returns an Echo middleware that enforces bearer authentication
// on every request whose path falls under one of the configured prefixes.
// Requests outside the protected prefixes pass through untouched. A missing,
// malformed, tampered or expired token always yields the same 401 body, so a
// caller cannot distinguish the failure modes. On success the token's
// subject and role claims are injected into the request context under
// "user_id" (uint64) and "role" (string).
func Protected(secret string, prefixes []string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !underPrefix(c.Request().URL.Path, prefixes) {
				return next(c)
			}
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return unauthorized(c)
			}
			raw := strings.TrimPrefix(auth, "Bearer ")
			userID, role, err := utils.ParseAccessToken(secret, raw)
			if err != nil {
				return unauthorized(c)
			}
			c.Set("user_id", userID)
			c.Set("role", role)
			return next(c)
		}
	}
}

// unauthorized writes the uniform 401 response used for every
// authentication failure.
func unauthorized(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
}

// underPrefix reports whether path falls under any of the prefixes. A match
// is either the prefix itself or a segment boundary below it, so
// "/api/v1/ledgers" does not match the "/api/v1/ledger" prefix.
func underPrefix(path string, prefixes []string) bool {
	for _, p := range prefixes {
		if path == p || strings.HasPrefix(path, p+"/") {
			return true
		}
	}
	return false
}
