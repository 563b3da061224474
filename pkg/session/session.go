package session

import (
	"time"

	"github.com/google/uuid"
)

// Session is an active refresh session held in memory. Sessions are
// discarded on logout and expire on their own; losing the process just
// forces a re-login.
type Session struct {
	Token     string    `json:"token"`
	UserID    uuid.UUID `json:"user_id"`
	IssuedAt  time.Time `json:"issued_at"`
	IPAddress string    `json:"ip_address"`
	UserAgent string    `json:"user_agent"`
}
