package handlers

import (
	"fmt"
	"mime"
	"net/http"
	"strconv"

	"claims_crm_go/middleware"
	"claims_crm_go/models"
	"claims_crm_go/services"

	"github.com/labstack/echo/v4"
)

type documentListData struct {
	Documents  []models.Document `json:"documents"`
	Pagination services.PageInfo `json:"pagination"`
}

// GetDocuments handles GET /admin/documents: download (action=download&id=),
// a practice's documents (pratica_id), one document (id) or the paginated
// list of all documents.
func (h *Handler) GetDocuments(c echo.Context) error {
	if c.QueryParam("action") == "download" {
		return h.downloadDocument(c)
	}

	if practiceID := c.QueryParam("pratica_id"); practiceID != "" {
		docs, err := services.ListDocumentsByPractice(h.DB, practiceID, false)
		if err != nil {
			return err
		}
		return success(c, emptyIfNil(docs), "")
	}

	if id := c.QueryParam("id"); id != "" {
		doc, err := services.GetDocument(h.DB, id)
		if err != nil {
			return err
		}
		return success(c, doc, "")
	}

	page := pagination(c)
	docs, total, err := services.ListAllDocuments(h.DB, page, c.QueryParam("search"))
	if err != nil {
		return err
	}
	return success(c, documentListData{Documents: emptyIfNil(docs), Pagination: page.Info(total)}, "")
}

// UploadDocument handles the multipart POST /admin/documents
func (h *Handler) UploadDocument(c echo.Context) error {
	practiceID := c.FormValue("pratica_id")
	if practiceID == "" {
		return services.ValidationError("File and practice ID are required")
	}

	file, err := c.FormFile("document")
	if err != nil {
		return services.ErrInvalidUpload.WithCause(err)
	}

	doc, err := services.UploadDocument(c.Request().Context(), h.DB, h.Storage, practiceID, file,
		c.FormValue("visibile_cliente"), c.FormValue("descrizione"))
	if err != nil {
		return err
	}
	h.logActivity(c, models.ActionUploadDocument, fmt.Sprintf("Uploaded %s to practice %s", doc.OriginalName, practiceID))

	return created(c, doc, "Document uploaded successfully")
}

// UpdateDocument handles PUT /admin/documents?id=
func (h *Handler) UpdateDocument(c echo.Context) error {
	id, err := requireID(c, "Document")
	if err != nil {
		return err
	}

	var input services.DocumentUpdate
	if err := c.Bind(&input); err != nil {
		return services.ValidationError("Invalid request body")
	}

	doc, err := services.UpdateDocument(h.DB, id, input)
	if err != nil {
		return err
	}
	h.logActivity(c, models.ActionUpdateDocument, fmt.Sprintf("Updated document %s", doc.OriginalName))

	return success(c, doc, "Document updated successfully")
}

// DeleteDocument handles DELETE /admin/documents?id=
func (h *Handler) DeleteDocument(c echo.Context) error {
	id, err := requireID(c, "Document")
	if err != nil {
		return err
	}

	doc, err := services.DeleteDocument(c.Request().Context(), h.DB, h.Storage, id)
	if err != nil {
		return err
	}
	h.logActivity(c, models.ActionDeleteDocument, fmt.Sprintf("Deleted document %s", doc.OriginalName))

	return success(c, nil, "Document deleted successfully")
}

// downloadDocument streams a document to the current principal. Access is
// decided by the document service; client downloads are logged.
func (h *Handler) downloadDocument(c echo.Context) error {
	id, err := requireID(c, "Document")
	if err != nil {
		return err
	}

	principal := middleware.CurrentPrincipal(c)
	dl, err := services.DownloadDocument(c.Request().Context(), h.DB, h.Storage, id, principal)
	if err != nil {
		return err
	}
	defer dl.Reader.Close()

	if principal.Kind() == models.PrincipalClient {
		h.logActivity(c, models.ActionDownload, fmt.Sprintf("Downloaded %s", dl.FileName))
	}

	setAttachment(c, dl.FileName)
	if dl.Size > 0 {
		c.Response().Header().Set(echo.HeaderContentLength, strconv.FormatInt(dl.Size, 10))
	}
	return c.Stream(http.StatusOK, dl.MimeType, dl.Reader)
}

// setAttachment marks the response as a file download named filename
func setAttachment(c echo.Context, filename string) {
	disposition := mime.FormatMediaType("attachment", map[string]string{"filename": filename})
	if disposition == "" {
		disposition = "attachment"
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, disposition)
}

func emptyIfNil(docs []models.Document) []models.Document {
	if docs == nil {
		return []models.Document{}
	}
	return docs
}
