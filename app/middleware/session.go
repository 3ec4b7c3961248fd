package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/taskhub-io/ms-go-taskhub/app/dto"
	httpdto "github.com/taskhub-io/ms-go-taskhub/app/dto/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

const (
	// Cookie names are part of the client contract.
	AccessTokenCookie  = "accessToken"
	RefreshTokenCookie = "refreshToken"

	contextUserKey = "currentUser"
)

type sessionResolver interface {
	Resolve(ctx context.Context, accessToken, refreshToken string) (*dto.Session, error)
}

// SessionMiddleware authenticates requests from the accessToken/refreshToken
// cookies. Every successfully resolved request rotates both tokens and sets
// the fresh pair on the response.
type SessionMiddleware struct {
	sessions sessionResolver
}

func NewSessionMiddleware(sessions sessionResolver) *SessionMiddleware {
	return &SessionMiddleware{sessions: sessions}
}

func (m *SessionMiddleware) RequireLogin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		session, err := m.sessions.Resolve(
			c.Request().Context(),
			readCookie(c, AccessTokenCookie),
			readCookie(c, RefreshTokenCookie),
		)
		if err != nil {
			logrus.WithError(err).Debug("session resolution failed")
			return httpdto.NewAPIError(http.StatusUnauthorized, "unauthorized access")
		}

		SetSessionCookies(c, session)
		c.Set(contextUserKey, dto.CurrentUser{
			ID:              session.User.ID,
			Username:        session.User.Username,
			Email:           session.User.Email,
			FullName:        session.User.FullName,
			Avatar:          session.User.Avatar.String,
			IsEmailVerified: session.User.IsEmailVerified,
		})

		return next(c)
	}
}

// CurrentUser returns the identity attached by RequireLogin.
func CurrentUser(c echo.Context) (dto.CurrentUser, bool) {
	user, ok := c.Get(contextUserKey).(dto.CurrentUser)
	return user, ok
}

// setCurrentUser replaces the attached identity; used by the permission
// gate to attach the resolved project role.
func setCurrentUser(c echo.Context, user dto.CurrentUser) {
	c.Set(contextUserKey, user)
}

// SetSessionCookies attaches both rotated tokens to the response. They MUST
// be set together on the same response that reports success.
func SetSessionCookies(c echo.Context, session *dto.Session) {
	c.SetCookie(sessionCookie(AccessTokenCookie, session.AccessToken, session.AccessExpiresAt))
	c.SetCookie(sessionCookie(RefreshTokenCookie, session.RefreshToken, session.RefreshExpiresAt))
}

// ClearSessionCookies expires both credential cookies on the client.
func ClearSessionCookies(c echo.Context) {
	expired := time.Unix(0, 0)
	c.SetCookie(sessionCookie(AccessTokenCookie, "", expired))
	c.SetCookie(sessionCookie(RefreshTokenCookie, "", expired))
}

func sessionCookie(name, value string, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
	}
}

func readCookie(c echo.Context, name string) string {
	cookie, err := c.Cookie(name)
	if err != nil {
		return ""
	}
	return cookie.Value
}
