package handlers

import (
	"fmt"
	"log"

	"claims_crm_go/models"
	"claims_crm_go/services"

	"github.com/labstack/echo/v4"
)

type clientListData struct {
	Clients    []services.ClientListItem `json:"clients"`
	Pagination services.PageInfo         `json:"pagination"`
}

type clientDetailData struct {
	Client    *models.Client    `json:"client"`
	Practices []models.Practice `json:"practices"`
}

type portalAccessData struct {
	Client    *models.Client `json:"client"`
	Password  string         `json:"password"`
	EmailSent bool           `json:"email_sent"`
}

// GetClients handles GET /admin/clients: the paginated list, or one client
// with its practices when id is given
func (h *Handler) GetClients(c echo.Context) error {
	if id := c.QueryParam("id"); id != "" {
		client, err := services.GetClient(h.DB, id)
		if err != nil {
			return err
		}
		practices := client.Practices
		if practices == nil {
			practices = []models.Practice{}
		}
		client.Practices = nil
		return success(c, clientDetailData{Client: client, Practices: practices}, "")
	}

	page := pagination(c)
	clients, total, err := services.ListClients(h.DB, page, c.QueryParam("search"))
	if err != nil {
		return err
	}
	return success(c, clientListData{Clients: clients, Pagination: page.Info(total)}, "")
}

// CreateClient handles POST /admin/clients. With action=provision-access it
// instead issues portal credentials for the client given by id.
func (h *Handler) CreateClient(c echo.Context) error {
	if c.QueryParam("action") == "provision-access" {
		return h.provisionAccess(c)
	}

	var input services.ClientInput
	if err := c.Bind(&input); err != nil {
		return services.ValidationError("Invalid request body")
	}

	client, err := services.CreateClient(h.DB, input)
	if err != nil {
		return err
	}
	h.logActivity(c, models.ActionCreateClient, fmt.Sprintf("Created client #%d %s", client.ClientNumber, client.FullName))

	return created(c, client, "Client created successfully")
}

// UpdateClient handles PUT /admin/clients?id=
func (h *Handler) UpdateClient(c echo.Context) error {
	id, err := requireID(c, "Client")
	if err != nil {
		return err
	}

	var input services.ClientInput
	if err := c.Bind(&input); err != nil {
		return services.ValidationError("Invalid request body")
	}

	client, err := services.UpdateClient(h.DB, id, input)
	if err != nil {
		return err
	}
	h.logActivity(c, models.ActionUpdateClient, fmt.Sprintf("Updated client #%d %s", client.ClientNumber, client.FullName))

	return success(c, client, "Client updated successfully")
}

// DeleteClient handles DELETE /admin/clients?id=
func (h *Handler) DeleteClient(c echo.Context) error {
	id, err := requireID(c, "Client")
	if err != nil {
		return err
	}

	client, err := services.DeleteClient(h.DB, id)
	if err != nil {
		return err
	}
	h.logActivity(c, models.ActionDeleteClient, fmt.Sprintf("Deleted client #%d %s", client.ClientNumber, client.FullName))

	return success(c, nil, "Client deleted successfully")
}

// provisionAccess generates a portal password and mails it when the client
// has an email address. The password is also returned to the admin, since
// delivery may fail or be impossible.
func (h *Handler) provisionAccess(c echo.Context) error {
	id, err := requireID(c, "Client")
	if err != nil {
		return err
	}

	client, password, err := services.ProvisionClientAccess(h.DB, id)
	if err != nil {
		return err
	}
	h.logActivity(c, models.ActionProvisionAccess, fmt.Sprintf("Portal access for client #%d %s", client.ClientNumber, client.FullName))

	data := portalAccessData{Client: client, Password: password}
	email, err := services.BuildPortalAccessEmail(h.Config, client, password)
	switch {
	case err != nil:
		log.Printf("[EMAIL] Failed to build portal access email for client %s: %v", client.ID, err)
	case email != nil:
		if err := services.SendEmail(h.Config, email); err != nil {
			log.Printf("[EMAIL] Failed to send portal access email for client %s: %v", client.ID, err)
		} else {
			data.EmailSent = true
		}
	}

	return success(c, data, "Portal access activated")
}
