package middleware

import (
	"claims_crm_go/services"

	"github.com/labstack/echo/v4"
)

const ContextKeyActivityContext = "activity_context"

// ActivityContext is middleware that records who is calling and from where,
// for the activity log. It must run after LoadPrincipal.
func ActivityContext() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(ContextKeyActivityContext, newActivityContext(c))
			return next(c)
		}
	}
}

// GetActivityContext retrieves the activity context of the request. The
// principal is re-read so that a login in the same request is attributed.
func GetActivityContext(c echo.Context) services.ActivityContext {
	ctx, ok := c.Get(ContextKeyActivityContext).(services.ActivityContext)
	if !ok || ctx.ActorID == "" {
		return newActivityContext(c)
	}
	return ctx
}

func newActivityContext(c echo.Context) services.ActivityContext {
	return services.ActivityContextFor(CurrentPrincipal(c), c.RealIP(), c.Request().UserAgent())
}
