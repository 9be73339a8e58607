package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"claims_crm_go/config"
	"claims_crm_go/models"
	"claims_crm_go/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	dsn := "file:mw_" + uuid.New().String() + "?mode=memory&cache=shared&_foreign_keys=on"
	testDB, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err, "failed to connect to test database")

	require.NoError(t, testDB.AutoMigrate(models.All()...), "failed to migrate test database")
	return testDB
}

func okHandler(c echo.Context) error {
	return c.String(http.StatusOK, "success")
}

func newContext(e *echo.Echo, token string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if token != "" {
		req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: token})
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestLoadPrincipal(t *testing.T) {
	testDB := setupTestDB(t)
	cfg := &config.Config{}
	e := echo.New()

	admin, err := services.CreateAdmin(testDB, services.AdminInput{Username: "admin", Email: "admin@example.org", Password: "password1"})
	require.NoError(t, err)
	session, err := services.CreateSession(testDB, models.NewAdminPrincipal(admin), "127.0.0.1", "test-agent", time.Hour)
	require.NoError(t, err)

	t.Run("ValidSession", func(t *testing.T) {
		c, rec := newContext(e, session.Token)

		require.NoError(t, LoadPrincipal(testDB, cfg)(okHandler)(c))
		assert.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, CurrentAdmin(c))
		assert.Equal(t, admin.ID, CurrentAdmin(c).ID)
		assert.Nil(t, CurrentClient(c))
		assert.Equal(t, session.ID, CurrentSession(c).ID)
		assert.Equal(t, session.Token, SessionToken(c))
	})

	t.Run("NoCookie", func(t *testing.T) {
		c, rec := newContext(e, "")

		require.NoError(t, LoadPrincipal(testDB, cfg)(okHandler)(c))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Nil(t, CurrentPrincipal(c))
	})

	t.Run("UnknownTokenClearsCookie", func(t *testing.T) {
		c, rec := newContext(e, "bogus")

		require.NoError(t, LoadPrincipal(testDB, cfg)(okHandler)(c))
		assert.Nil(t, CurrentPrincipal(c))
		assert.Contains(t, rec.Header().Get("Set-Cookie"), SessionCookieName+"=;")
	})

	t.Run("ExpiredSession", func(t *testing.T) {
		expired, err := services.CreateSession(testDB, models.NewAdminPrincipal(admin), "", "", time.Hour)
		require.NoError(t, err)
		require.NoError(t, testDB.Model(expired).Update("expires_at", time.Now().Add(-time.Minute)).Error)

		c, _ := newContext(e, expired.Token)
		require.NoError(t, LoadPrincipal(testDB, cfg)(okHandler)(c))
		assert.Nil(t, CurrentPrincipal(c))
	})
}

func TestScopeGuards(t *testing.T) {
	e := echo.New()
	admin := models.AdminPrincipal{ID: "a1"}
	client := models.ClientPrincipal{ID: "c1"}

	tests := []struct {
		name      string
		guard     echo.MiddlewareFunc
		principal models.Principal
		wantErr   error
	}{
		{"admin scope with admin", RequireAdmin(), admin, nil},
		{"admin scope with client", RequireAdmin(), client, services.ErrAccessDenied},
		{"admin scope anonymous", RequireAdmin(), nil, services.ErrNotAuthenticated},
		{"client scope with client", RequireClient(), client, nil},
		{"client scope with admin", RequireClient(), admin, services.ErrAccessDenied},
		{"client scope anonymous", RequireClient(), nil, services.ErrNotAuthenticated},
		{"shared scope with admin", RequireAnyPrincipal(), admin, nil},
		{"shared scope with client", RequireAnyPrincipal(), client, nil},
		{"shared scope anonymous", RequireAnyPrincipal(), nil, services.ErrNotAuthenticated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec := newContext(e, "")
			if tt.principal != nil {
				c.Set(ContextKeyPrincipal, tt.principal)
			}

			err := tt.guard(okHandler)(c)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				assert.Equal(t, http.StatusOK, rec.Code)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestSessionCookieAttributes(t *testing.T) {
	e := echo.New()

	t.Run("Development", func(t *testing.T) {
		c, rec := newContext(e, "")
		SetSessionCookie(c, &config.Config{Environment: "development"}, "tok", time.Now().Add(time.Hour))

		header := rec.Header().Get("Set-Cookie")
		assert.Contains(t, header, SessionCookieName+"=tok")
		assert.Contains(t, header, "HttpOnly")
		assert.Contains(t, header, "SameSite=Lax")
		assert.NotContains(t, header, "Secure")
	})

	t.Run("Production", func(t *testing.T) {
		c, rec := newContext(e, "")
		SetSessionCookie(c, &config.Config{Environment: "production"}, "tok", time.Now().Add(time.Hour))

		header := rec.Header().Get("Set-Cookie")
		assert.Contains(t, header, "Secure")
		assert.Contains(t, header, "SameSite=None")
	})

	t.Run("Clear", func(t *testing.T) {
		c, rec := newContext(e, "")
		ClearSessionCookie(c, nil)
		assert.Contains(t, rec.Header().Get("Set-Cookie"), "Max-Age=0")
	})
}
