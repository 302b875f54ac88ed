package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/hearthhq/hearth-api/internal/config"
	"github.com/hearthhq/hearth-api/internal/handler"
	"github.com/hearthhq/hearth-api/internal/middleware"
	"github.com/hearthhq/hearth-api/internal/model"
)

// Register wires every route and the request-boundary middleware.
//
// The bearer guard is installed globally: any request whose path falls under
// one of the configured protected prefixes (receipts, ledger, mcp,
// integrations, chat...) must carry a valid access token before a downstream
// handler runs, including routes served by other subsystems mounted later.
// The auth endpoints themselves live outside the protected prefixes and are
// throttled instead, since login is the expensive, attacker-facing
// operation.
func Register(e *echo.Echo, cfg *config.Config, auth *handler.AuthHandler, integrations *handler.IntegrationsHandler, members middleware.DefaultMembershipStore, rdb *redis.Client, rl config.RateLimitConfig) {
	e.GET("/healthz", handler.Health)

	e.Use(middleware.Protected(cfg.JWTSecret, cfg.ProtectedPrefixes))

	g := e.Group("/api/v1/auth", middleware.RateLimit(rl, rdb))
	g.POST("/login", auth.Login)
	g.POST("/refresh", auth.Refresh)
	g.POST("/logout", auth.Logout)
	g.GET("/me", auth.Me)

	// Enabled-integrations management. Reading is open to any home member;
	// mutating the enabled set is an administrative operation reserved for
	// owner and parent roles.
	ig := e.Group("/api/v1/integrations")
	ig.GET("/servers", integrations.List, middleware.RequireRole(members, model.MembershipRoles...))
	ig.PUT("/servers", integrations.Update, middleware.RequireRole(members, "owner", "parent"))
}
