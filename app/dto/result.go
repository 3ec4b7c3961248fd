package dto

import (
	"time"

	"github.com/taskhub-io/ms-go-taskhub/app/entity"
)

// Session is the result of resolving or rotating a caller's credentials.
// Both tokens are freshly issued; the refresh token has already been
// persisted on the user row when a Session is returned.
type Session struct {
	User             *entity.User
	AccessToken      string
	AccessExpiresAt  time.Time
	RefreshToken     string
	RefreshExpiresAt time.Time
}

// CurrentUser is the request-scoped identity attached by the session
// middleware. It is a value type: the permission middleware re-attaches a
// copy with Role set rather than mutating shared state.
type CurrentUser struct {
	ID              uint64
	Username        string
	Email           string
	FullName        string
	Avatar          string
	IsEmailVerified bool

	// Role is the caller's role on the project addressed by the current
	// route. Empty until the permission gate has run.
	Role string
}
