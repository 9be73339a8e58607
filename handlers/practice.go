package handlers

import (
	"fmt"
	"net/http"
	"time"

	"claims_crm_go/models"
	"claims_crm_go/services"

	"github.com/labstack/echo/v4"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type practiceListData struct {
	Practices  []models.Practice `json:"practices"`
	Pagination services.PageInfo `json:"pagination"`
}

type practiceDetailData struct {
	Practice  *models.Practice  `json:"practice"`
	Documents []models.Document `json:"documents"`
}

func practiceFilters(c echo.Context) services.PracticeFilters {
	return services.PracticeFilters{
		Search:   c.QueryParam("search"),
		StatusID: c.QueryParam("stato_pratica_id"),
		BankID:   c.QueryParam("banca_id"),
		ClientID: c.QueryParam("cliente_id"),
	}
}

// newPracticeDetail splits the documents off a loaded practice
func newPracticeDetail(practice *models.Practice, docs []models.Document) practiceDetailData {
	if docs == nil {
		docs = []models.Document{}
	}
	practice.Documents = nil
	return practiceDetailData{Practice: practice, Documents: docs}
}

// GetPractices handles GET /admin/practices. Besides the list and the
// single practice (id), it serves the spreadsheet export (action=export) and
// the printable summary (action=pdf&id=).
func (h *Handler) GetPractices(c echo.Context) error {
	switch c.QueryParam("action") {
	case "export":
		return h.exportPractices(c)
	case "pdf":
		return h.practicePDF(c)
	}

	if id := c.QueryParam("id"); id != "" {
		practice, err := services.GetPractice(h.DB, id)
		if err != nil {
			return err
		}
		return success(c, newPracticeDetail(practice, practice.Documents), "")
	}

	page := pagination(c)
	practices, total, err := services.ListPractices(h.DB, page, practiceFilters(c))
	if err != nil {
		return err
	}
	if practices == nil {
		practices = []models.Practice{}
	}
	return success(c, practiceListData{Practices: practices, Pagination: page.Info(total)}, "")
}

// CreatePractice handles POST /admin/practices
func (h *Handler) CreatePractice(c echo.Context) error {
	var input services.PracticeInput
	if err := c.Bind(&input); err != nil {
		return services.ValidationError("Invalid request body")
	}

	practice, err := services.CreatePractice(h.DB, input)
	if err != nil {
		return err
	}
	h.logActivity(c, models.ActionCreatePractice, fmt.Sprintf("Created practice %s", practice.ContractNumber))

	return created(c, practice, "Practice created successfully")
}

// UpdatePractice handles PUT /admin/practices?id=
func (h *Handler) UpdatePractice(c echo.Context) error {
	id, err := requireID(c, "Practice")
	if err != nil {
		return err
	}

	var input services.PracticeInput
	if err := c.Bind(&input); err != nil {
		return services.ValidationError("Invalid request body")
	}

	practice, err := services.UpdatePractice(h.DB, id, input)
	if err != nil {
		return err
	}
	h.logActivity(c, models.ActionUpdatePractice, fmt.Sprintf("Updated practice %s", practice.ContractNumber))

	return success(c, practice, "Practice updated successfully")
}

// DeletePractice handles DELETE /admin/practices?id=
func (h *Handler) DeletePractice(c echo.Context) error {
	id, err := requireID(c, "Practice")
	if err != nil {
		return err
	}

	practice, err := services.DeletePractice(c.Request().Context(), h.DB, h.Storage, id)
	if err != nil {
		return err
	}
	h.logActivity(c, models.ActionDeletePractice, fmt.Sprintf("Deleted practice %s", practice.ContractNumber))

	return success(c, nil, "Practice deleted successfully")
}

func (h *Handler) exportPractices(c echo.Context) error {
	buf, err := services.ExportPractices(h.DB, practiceFilters(c))
	if err != nil {
		return err
	}

	filename := fmt.Sprintf("pratiche_%s.xlsx", time.Now().Format("20060102"))
	setAttachment(c, filename)
	return c.Blob(http.StatusOK, xlsxContentType, buf.Bytes())
}

func (h *Handler) practicePDF(c echo.Context) error {
	id, err := requireID(c, "Practice")
	if err != nil {
		return err
	}

	practice, err := services.GetPractice(h.DB, id)
	if err != nil {
		return err
	}

	html, err := services.RenderPracticeSummaryHTML(practice, time.Now())
	if err != nil {
		return err
	}
	pdf, err := services.GeneratePDF(c.Request().Context(), h.Config.ChromePath, html, services.DefaultPDFOptions())
	if err != nil {
		return err
	}

	setAttachment(c, fmt.Sprintf("pratica_%s.pdf", practice.ContractNumber))
	return c.Blob(http.StatusOK, "application/pdf", pdf)
}
