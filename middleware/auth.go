package middleware

import (
	"net/http"
	"time"

	"claims_crm_go/config"
	"claims_crm_go/models"
	"claims_crm_go/services"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

const (
	// SessionCookieName is the name of the session cookie
	SessionCookieName = "claims_session"
	// ContextKeyPrincipal is the context key for the authenticated principal
	ContextKeyPrincipal = "principal"
	// ContextKeySession is the context key for the session
	ContextKeySession = "session"
)

// LoadPrincipal resolves the session cookie and stores the principal in the
// context. A missing or invalid cookie leaves the request anonymous; the
// scope guards decide whether that is acceptable.
func LoadPrincipal(db *gorm.DB, cfg *config.Config) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cookie, err := c.Cookie(SessionCookieName)
			if err != nil || cookie.Value == "" {
				return next(c)
			}

			principal, session, err := services.ResolveSession(db, cookie.Value)
			if err != nil {
				if services.KindOf(err) == services.KindPersistence {
					return err
				}
				ClearSessionCookie(c, cfg)
				return next(c)
			}

			c.Set(ContextKeyPrincipal, principal)
			c.Set(ContextKeySession, session)
			return next(c)
		}
	}
}

// RequireAdmin rejects requests that are not made by an admin
func RequireAdmin() echo.MiddlewareFunc {
	return requireKind(models.PrincipalAdmin)
}

// RequireClient rejects requests that are not made by a portal client
func RequireClient() echo.MiddlewareFunc {
	return requireKind(models.PrincipalClient)
}

// RequireAnyPrincipal rejects anonymous requests
func RequireAnyPrincipal() echo.MiddlewareFunc {
	return requireKind("")
}

func requireKind(kind models.PrincipalKind) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			principal := CurrentPrincipal(c)
			if principal == nil {
				return services.ErrNotAuthenticated
			}
			if kind != "" && principal.Kind() != kind {
				services.LogSecurityEvent("SCOPE_VIOLATION", principal.PrincipalID(),
					string(principal.Kind())+" on "+c.Request().Method+" "+c.Path())
				return services.ErrAccessDenied
			}
			return next(c)
		}
	}
}

// CurrentPrincipal returns the authenticated principal or nil
func CurrentPrincipal(c echo.Context) models.Principal {
	principal, ok := c.Get(ContextKeyPrincipal).(models.Principal)
	if !ok {
		return nil
	}
	return principal
}

// CurrentAdmin returns the admin principal, or nil for clients and anonymous requests
func CurrentAdmin(c echo.Context) *models.AdminPrincipal {
	if p, ok := CurrentPrincipal(c).(models.AdminPrincipal); ok {
		return &p
	}
	return nil
}

// CurrentClient returns the client principal, or nil for admins and anonymous requests
func CurrentClient(c echo.Context) *models.ClientPrincipal {
	if p, ok := CurrentPrincipal(c).(models.ClientPrincipal); ok {
		return &p
	}
	return nil
}

// CurrentSession returns the session backing the request, if any
func CurrentSession(c echo.Context) *models.Session {
	session, ok := c.Get(ContextKeySession).(*models.Session)
	if !ok {
		return nil
	}
	return session
}

// SessionToken returns the raw session cookie value
func SessionToken(c echo.Context) string {
	cookie, err := c.Cookie(SessionCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// SetSessionCookie writes the session cookie. Production cookies are
// Secure and SameSite=None so the separately hosted frontend can send them.
func SetSessionCookie(c echo.Context, cfg *config.Config, token string, expiresAt time.Time) {
	cookie := sessionCookie(cfg)
	cookie.Value = token
	cookie.Expires = expiresAt
	cookie.MaxAge = int(time.Until(expiresAt).Seconds())
	c.SetCookie(cookie)
}

// ClearSessionCookie expires the session cookie
func ClearSessionCookie(c echo.Context, cfg *config.Config) {
	cookie := sessionCookie(cfg)
	cookie.MaxAge = -1
	c.SetCookie(cookie)
}

func sessionCookie(cfg *config.Config) *http.Cookie {
	cookie := &http.Cookie{
		Name:     SessionCookieName,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	if cfg != nil && cfg.IsProduction() {
		cookie.Secure = true
		cookie.SameSite = http.SameSiteNoneMode
	}
	return cookie
}
