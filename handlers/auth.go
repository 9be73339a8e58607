package handlers

import (
	"fmt"

	"claims_crm_go/middleware"
	"claims_crm_go/models"
	"claims_crm_go/services"

	"github.com/labstack/echo/v4"
)

type adminLoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type clientLoginRequest struct {
	TaxCode  string `json:"codice_fiscale"`
	Password string `json:"password"`
}

// sessionInfo is returned by login and /auth/me
type sessionInfo struct {
	Type      models.PrincipalKind `json:"tipo"`
	Principal models.Principal     `json:"utente"`
}

// AdminLogin handles POST /auth/admin-login
func (h *Handler) AdminLogin(c echo.Context) error {
	var req adminLoginRequest
	if err := c.Bind(&req); err != nil {
		return services.ValidationError("Invalid request body")
	}

	admin, err := services.AuthenticateAdmin(h.DB, req.Username, req.Password)
	if err != nil {
		return err
	}

	principal := models.NewAdminPrincipal(admin)
	if err := h.startSession(c, principal); err != nil {
		return err
	}
	h.logActivity(c, models.ActionLogin, fmt.Sprintf("Admin login: %s", admin.Username))

	return success(c, sessionInfo{Type: principal.Kind(), Principal: principal}, "Login successful")
}

// ClientLogin handles POST /auth/client-login
func (h *Handler) ClientLogin(c echo.Context) error {
	var req clientLoginRequest
	if err := c.Bind(&req); err != nil {
		return services.ValidationError("Invalid request body")
	}

	client, err := services.AuthenticateClient(h.DB, req.TaxCode, req.Password)
	if err != nil {
		return err
	}

	principal := models.NewClientPrincipal(client)
	if err := h.startSession(c, principal); err != nil {
		return err
	}
	h.logActivity(c, models.ActionLogin, fmt.Sprintf("Client login: #%d %s", client.ClientNumber, client.FullName))

	return success(c, sessionInfo{Type: principal.Kind(), Principal: principal}, "Login successful")
}

// startSession replaces any session of the request with a new one for
// principal and sets the cookie
func (h *Handler) startSession(c echo.Context, principal models.Principal) error {
	if old := middleware.SessionToken(c); old != "" {
		if err := services.EndSession(h.DB, old); err != nil {
			return err
		}
	}

	session, err := services.CreateSession(h.DB, principal, c.RealIP(), c.Request().UserAgent(), h.Config.SessionTTL)
	if err != nil {
		return err
	}

	middleware.SetSessionCookie(c, h.Config, session.Token, session.ExpiresAt)
	c.Set(middleware.ContextKeyPrincipal, principal)
	c.Set(middleware.ContextKeySession, session)
	return nil
}

// Logout handles POST /auth/logout. It succeeds without a session.
func (h *Handler) Logout(c echo.Context) error {
	if principal := middleware.CurrentPrincipal(c); principal != nil {
		h.logActivity(c, models.ActionLogout, fmt.Sprintf("%s logout", principal.Kind()))
	}

	if err := services.EndSession(h.DB, middleware.SessionToken(c)); err != nil {
		return err
	}
	middleware.ClearSessionCookie(c, h.Config)

	return success(c, nil, "Logout successful")
}

// Me handles GET /auth/me
func (h *Handler) Me(c echo.Context) error {
	principal := middleware.CurrentPrincipal(c)
	if principal == nil {
		return services.ErrNotAuthenticated
	}
	return success(c, sessionInfo{Type: principal.Kind(), Principal: principal}, "")
}
