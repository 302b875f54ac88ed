package queue

import "time"

// Auth event types published to the audit queue.
const (
	EventLogin      = "auth.login"
	EventRefresh    = "auth.refresh"
	EventLogout     = "auth.logout"
	EventRevokedAll = "auth.revoked_all"
)

// AuthEvent is the audit record emitted after a session-lifecycle change.
// Events are best-effort: consumers get a trail of logins, rotations and
// revocations, but the auth flow itself never depends on delivery.
type AuthEvent struct {
	Type       string    `json:"type"`
	UserID     uint64    `json:"user_id,omitempty"`
	Email      string    `json:"email,omitempty"`
	IPAddress  string    `json:"ip_address,omitempty"`
	UserAgent  string    `json:"user_agent,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
