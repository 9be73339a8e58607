package handlers

import (
	"claims_crm_go/middleware"
	"claims_crm_go/models"
	"claims_crm_go/services"

	"github.com/labstack/echo/v4"
)

// ClientPractices handles GET /client/practices[?id=]. A single practice
// is shown only to its owner and only with client-visible documents.
func (h *Handler) ClientPractices(c echo.Context) error {
	client := middleware.CurrentClient(c)
	if client == nil {
		return services.ErrNotAuthenticated
	}

	if id := c.QueryParam("id"); id != "" {
		practice, err := services.GetPractice(h.DB, id)
		if err != nil {
			return err
		}
		if err := services.AuthorizePracticeView(*client, practice); err != nil {
			return err
		}
		docs := services.VisibleDocuments(*client, practice.Documents)
		practice.DocumentCount = int64(len(docs))
		return success(c, newPracticeDetail(practice, docs), "")
	}

	practices, err := services.GetClientPractices(h.DB, client.ID)
	if err != nil {
		return err
	}
	if practices == nil {
		practices = []models.Practice{}
	}
	return success(c, practices, "")
}

// ClientDocuments handles GET /client/documents[?action=download&id=]
func (h *Handler) ClientDocuments(c echo.Context) error {
	client := middleware.CurrentClient(c)
	if client == nil {
		return services.ErrNotAuthenticated
	}

	if c.QueryParam("action") == "download" {
		return h.downloadDocument(c)
	}

	docs, err := services.ListClientDocuments(h.DB, client.ID)
	if err != nil {
		return err
	}
	return success(c, emptyIfNil(docs), "")
}
