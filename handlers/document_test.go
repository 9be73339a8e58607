package handlers

import (
	"net/http"
	"strconv"
	"testing"

	"claims_crm_go/models"
	"claims_crm_go/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var samplePDF = []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\n%%EOF\n")

// upload posts a document through the admin endpoint
func (s *testServer) upload(t *testing.T, cookie *http.Cookie, practiceID, filename, visibility string) models.Document {
	t.Helper()
	body, contentType := multipartBody(t, "document", filename, samplePDF, map[string]string{
		"pratica_id":       practiceID,
		"visibile_cliente": visibility,
		"descrizione":      "Contratto firmato",
	})
	rec := s.do(t, http.MethodPost, "/admin/documents", body, contentType, cookie)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var doc models.Document
	decodeData(t, rec, &doc)
	return doc
}

func TestDocumentLifecycle(t *testing.T) {
	s := newTestServer(t)
	cookie := s.adminCookie(t)
	client := s.createClient(t, 1, "Mario Rossi", "")
	practice := s.createPractice(t, client.ID, "CTR-1")

	doc := s.upload(t, cookie, practice.ID, "contratto firmato.pdf", "Yes")
	assert.Equal(t, "contratto firmato.pdf", doc.OriginalName)
	assert.Equal(t, "application/pdf", doc.MimeType)
	assert.Equal(t, int64(len(samplePDF)), doc.Size)
	assert.Equal(t, models.FlagYes, doc.ClientVisible)

	t.Run("listed under the practice", func(t *testing.T) {
		rec := s.do(t, http.MethodGet, "/admin/documents?pratica_id="+practice.ID, nil, "", cookie)
		require.Equal(t, http.StatusOK, rec.Code)
		var docs []models.Document
		decodeData(t, rec, &docs)
		require.Len(t, docs, 1)
		assert.Equal(t, doc.ID, docs[0].ID)
	})

	t.Run("paginated list", func(t *testing.T) {
		rec := s.do(t, http.MethodGet, "/admin/documents?search=contratto", nil, "", cookie)
		require.Equal(t, http.StatusOK, rec.Code)
		var data struct {
			Documents  []models.Document `json:"documents"`
			Pagination services.PageInfo `json:"pagination"`
		}
		decodeData(t, rec, &data)
		assert.Len(t, data.Documents, 1)
		assert.Equal(t, int64(1), data.Pagination.TotalRecords)
	})

	t.Run("download", func(t *testing.T) {
		rec := s.do(t, http.MethodGet, "/admin/documents?action=download&id="+doc.ID, nil, "", cookie)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
		assert.Equal(t, `attachment; filename="contratto firmato.pdf"`, rec.Header().Get("Content-Disposition"))
		assert.Equal(t, strconv.Itoa(len(samplePDF)), rec.Header().Get("Content-Length"))
		assert.Equal(t, samplePDF, rec.Body.Bytes())
	})

	t.Run("update visibility", func(t *testing.T) {
		rec := s.doJSON(t, http.MethodPut, "/admin/documents?id="+doc.ID, map[string]interface{}{
			"visibile_cliente": "No",
		}, cookie)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var updated models.Document
		decodeData(t, rec, &updated)
		assert.Equal(t, models.FlagNo, updated.ClientVisible)
	})

	t.Run("delete", func(t *testing.T) {
		rec := s.do(t, http.MethodDelete, "/admin/documents?id="+doc.ID, nil, "", cookie)
		require.Equal(t, http.StatusOK, rec.Code)

		gone := s.do(t, http.MethodGet, "/admin/documents?action=download&id="+doc.ID, nil, "", cookie)
		assert.Equal(t, http.StatusNotFound, gone.Code)
	})
}

func TestUploadDocumentErrors(t *testing.T) {
	s := newTestServer(t)
	cookie := s.adminCookie(t)

	t.Run("missing practice", func(t *testing.T) {
		body, contentType := multipartBody(t, "document", "a.pdf", samplePDF, nil)
		rec := s.do(t, http.MethodPost, "/admin/documents", body, contentType, cookie)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "File and practice ID are required", decodeEnvelope(t, rec).Message)
	})

	t.Run("missing file", func(t *testing.T) {
		body, contentType := multipartBody(t, "", "", nil, map[string]string{"pratica_id": "p1"})
		rec := s.do(t, http.MethodPost, "/admin/documents", body, contentType, cookie)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown practice", func(t *testing.T) {
		body, contentType := multipartBody(t, "document", "a.pdf", samplePDF, map[string]string{"pratica_id": "missing"})
		rec := s.do(t, http.MethodPost, "/admin/documents", body, contentType, cookie)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestClientPortal(t *testing.T) {
	s := newTestServer(t)
	adminCookie := s.adminCookie(t)

	mario := s.createClient(t, 1, "Mario Rossi", "RSSMRA80A01H501U")
	luca := s.createClient(t, 2, "Luca Bianchi", "BNCLCU85B02F205X")
	own := s.createPractice(t, mario.ID, "CTR-1")
	foreign := s.createPractice(t, luca.ID, "CTR-2")

	visible := s.upload(t, adminCookie, own.ID, "visibile.pdf", "Yes")
	hidden := s.upload(t, adminCookie, own.ID, "interno.pdf", "No")
	foreignDoc := s.upload(t, adminCookie, foreign.ID, "altro.pdf", "Yes")

	cookie := s.clientCookie(t, mario)

	t.Run("own practices only", func(t *testing.T) {
		rec := s.do(t, http.MethodGet, "/client/practices", nil, "", cookie)
		require.Equal(t, http.StatusOK, rec.Code)
		var practices []models.Practice
		decodeData(t, rec, &practices)
		require.Len(t, practices, 1)
		assert.Equal(t, own.ID, practices[0].ID)
	})

	t.Run("practice detail hides internal documents", func(t *testing.T) {
		rec := s.do(t, http.MethodGet, "/client/practices?id="+own.ID, nil, "", cookie)
		require.Equal(t, http.StatusOK, rec.Code)
		var data struct {
			Practice  models.Practice   `json:"practice"`
			Documents []models.Document `json:"documents"`
		}
		decodeData(t, rec, &data)
		require.Len(t, data.Documents, 1)
		assert.Equal(t, visible.ID, data.Documents[0].ID)
		assert.Equal(t, int64(1), data.Practice.DocumentCount)
	})

	t.Run("foreign practice is forbidden", func(t *testing.T) {
		rec := s.do(t, http.MethodGet, "/client/practices?id="+foreign.ID, nil, "", cookie)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("document list", func(t *testing.T) {
		rec := s.do(t, http.MethodGet, "/client/documents", nil, "", cookie)
		require.Equal(t, http.StatusOK, rec.Code)
		var docs []models.Document
		decodeData(t, rec, &docs)
		require.Len(t, docs, 1)
		assert.Equal(t, visible.ID, docs[0].ID)
	})

	t.Run("downloads", func(t *testing.T) {
		tests := []struct {
			name     string
			docID    string
			wantCode int
		}{
			{"visible", visible.ID, http.StatusOK},
			{"hidden", hidden.ID, http.StatusForbidden},
			{"other client", foreignDoc.ID, http.StatusForbidden},
			{"unknown", "missing", http.StatusNotFound},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				rec := s.do(t, http.MethodGet, "/client/documents?action=download&id="+tt.docID, nil, "", cookie)
				assert.Equal(t, tt.wantCode, rec.Code)
			})
		}

		var logged int64
		s.db.Model(&models.ActivityLog{}).Where("action = ? AND actor_id = ?", models.ActionDownload, mario.ID).Count(&logged)
		assert.Equal(t, int64(1), logged)
	})
}
