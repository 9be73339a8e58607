package handlers

import (
	"fmt"
	"net/http"

	"claims_crm_go/models"
	"claims_crm_go/services"

	"github.com/labstack/echo/v4"
)

// ImportSpreadsheet handles POST /admin/import-csv. The multipart field
// csv_file may hold a .csv or .xlsx file; import_type selects clients or
// practices (the default).
func (h *Handler) ImportSpreadsheet(c echo.Context) error {
	file, err := c.FormFile("csv_file")
	if err != nil {
		return services.ValidationError("No file uploaded")
	}
	if file.Size > services.MaxImportSize {
		return services.ValidationError("File too large (max 10MB)")
	}

	kind := c.FormValue("import_type")
	if kind == "" {
		kind = services.ImportTypePractices
	}
	if kind != services.ImportTypeClients && kind != services.ImportTypePractices {
		return services.ValidationError("Invalid import type %q", kind)
	}

	src, err := file.Open()
	if err != nil {
		return services.ErrInvalidUpload.WithCause(err)
	}
	defer src.Close()

	records, err := services.ReadSpreadsheet(file.Filename, src)
	if err != nil {
		return err
	}

	result, err := services.ImportSpreadsheet(h.DB, kind, records)
	if err != nil {
		return err
	}

	action := models.ActionImportPractices
	if kind == services.ImportTypeClients {
		action = models.ActionImportClients
	}
	h.logActivity(c, action, fmt.Sprintf("Imported %d %s from %s (%d skipped, %d errors)",
		result.Imported, kind, file.Filename, result.Skipped, len(result.Errors)))

	return success(c, result, fmt.Sprintf("Import completed: %d %s imported", result.Imported, kind))
}

// ImportTemplate handles GET /admin/import-template?type=
func (h *Handler) ImportTemplate(c echo.Context) error {
	kind := c.QueryParam("type")
	if kind == "" {
		kind = services.ImportTypePractices
	}

	buf, err := services.GenerateImportTemplate(kind)
	if err != nil {
		return err
	}

	setAttachment(c, "template_"+kind+".xlsx")
	return c.Blob(http.StatusOK, xlsxContentType, buf.Bytes())
}
