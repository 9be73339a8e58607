package handlers

import (
	"claims_crm_go/middleware"

	"github.com/labstack/echo/v4"
)

// RegisterRoutes mounts every endpoint on e. Principal loading and the
// activity context run for all requests. Scope guards are attached per
// route: Group.Use would add catch-all routes that turn a wrong method into
// 404 instead of 405.
func RegisterRoutes(e *echo.Echo, h *Handler) {
	e.HTTPErrorHandler = HTTPErrorHandler

	e.Use(middleware.LoadPrincipal(h.DB, h.Config))
	e.Use(middleware.ActivityContext())

	// Authentication
	auth := e.Group("/auth")
	{
		login := middleware.LoginRateLimiter.Middleware()
		auth.POST("/admin-login", h.AdminLogin, login)
		auth.POST("/client-login", h.ClientLogin, login)
		auth.POST("/logout", h.Logout)
		auth.GET("/me", h.Me, middleware.RequireAnyPrincipal())
	}

	// Admin portal
	admin := e.Group("/admin")
	{
		guard := middleware.RequireAdmin()
		admin.GET("/clients", h.GetClients, guard)
		admin.POST("/clients", h.CreateClient, guard)
		admin.PUT("/clients", h.UpdateClient, guard)
		admin.DELETE("/clients", h.DeleteClient, guard)

		admin.GET("/practices", h.GetPractices, guard)
		admin.POST("/practices", h.CreatePractice, guard)
		admin.PUT("/practices", h.UpdatePractice, guard)
		admin.DELETE("/practices", h.DeletePractice, guard)

		admin.GET("/documents", h.GetDocuments, guard)
		admin.POST("/documents", h.UploadDocument, guard)
		admin.PUT("/documents", h.UpdateDocument, guard)
		admin.DELETE("/documents", h.DeleteDocument, guard)

		admin.GET("/dashboard", h.AdminDashboard, guard)
		admin.POST("/import-csv", h.ImportSpreadsheet, guard)
		admin.GET("/import-template", h.ImportTemplate, guard)
		admin.GET("/activity", h.ListActivity, guard)
	}

	// Client portal
	client := e.Group("/client")
	{
		guard := middleware.RequireClient()
		client.GET("/dashboard", h.ClientDashboard, guard)
		client.GET("/practices", h.ClientPractices, guard)
		client.GET("/documents", h.ClientDocuments, guard)
	}

	// Lookups for both portals
	shared := e.Group("/shared")
	{
		guard := middleware.RequireAnyPrincipal()
		shared.GET("/banks", h.ListBanks, guard)
		shared.GET("/states", h.ListStatuses, guard)
	}
}
