package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"claims_crm_go/models"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActivityContext(t *testing.T) {
	e := echo.New()

	t.Run("AdminPrincipal", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("User-Agent", "test-agent")
		req.Header.Set(echo.HeaderXRealIP, "10.1.2.3")
		c := e.NewContext(req, httptest.NewRecorder())
		c.Set(ContextKeyPrincipal, models.AdminPrincipal{ID: "admin-123"})

		require.NoError(t, ActivityContext()(okHandler)(c))

		ctx := GetActivityContext(c)
		assert.Equal(t, "admin-123", ctx.ActorID)
		assert.Equal(t, models.PrincipalAdmin, ctx.ActorType)
		assert.Equal(t, "test-agent", ctx.UserAgent)
		assert.Equal(t, "10.1.2.3", ctx.IPAddress)
	})

	t.Run("Anonymous", func(t *testing.T) {
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())

		require.NoError(t, ActivityContext()(okHandler)(c))

		ctx := GetActivityContext(c)
		assert.Empty(t, ctx.ActorID)
		assert.Empty(t, ctx.ActorType)
	})

	t.Run("PrincipalSetAfterMiddleware", func(t *testing.T) {
		c := e.NewContext(httptest.NewRequest(http.MethodPost, "/auth/client-login", nil), httptest.NewRecorder())

		handler := ActivityContext()(func(c echo.Context) error {
			c.Set(ContextKeyPrincipal, models.ClientPrincipal{ID: "client-9"})
			return nil
		})
		require.NoError(t, handler(c))

		ctx := GetActivityContext(c)
		assert.Equal(t, "client-9", ctx.ActorID)
		assert.Equal(t, models.PrincipalClient, ctx.ActorType)
	})
}
