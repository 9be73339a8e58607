package handlers

import (
	"bytes"
	"net/http"
	"os"
	"strings"
	"testing"

	"claims_crm_go/models"
	"claims_crm_go/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPracticeCRUD(t *testing.T) {
	s := newTestServer(t)
	cookie := s.adminCookie(t)
	client := s.createClient(t, 1, "Mario Rossi", "")

	rec := s.doJSON(t, http.MethodPost, "/admin/practices", map[string]interface{}{
		"cliente_id":          client.ID,
		"numero_contratto":    "CTR-100",
		"data_mandato":        "15/01/2024",
		"importo_reclamo":     "1.234,50",
		"percentuale_mandato": 0.4,
	}, cookie)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var practice models.Practice
	decodeData(t, rec, &practice)
	assert.Equal(t, "CTR-100", practice.ContractNumber)
	assert.NotEmpty(t, practice.StatusID)
	require.True(t, practice.ClaimAmount.Valid)
	assert.Equal(t, "1234.5", practice.ClaimAmount.Decimal.String())

	t.Run("list filtered by client", func(t *testing.T) {
		other := s.createClient(t, 2, "Luca Bianchi", "")
		s.createPractice(t, other.ID, "CTR-200")

		rec := s.do(t, http.MethodGet, "/admin/practices?cliente_id="+client.ID, nil, "", cookie)
		require.Equal(t, http.StatusOK, rec.Code)

		var data struct {
			Practices  []models.Practice `json:"practices"`
			Pagination services.PageInfo `json:"pagination"`
		}
		decodeData(t, rec, &data)
		require.Len(t, data.Practices, 1)
		assert.Equal(t, "Mario Rossi", data.Practices[0].ClientName)
		assert.Equal(t, int64(1), data.Pagination.TotalRecords)
	})

	t.Run("detail", func(t *testing.T) {
		rec := s.do(t, http.MethodGet, "/admin/practices?id="+practice.ID, nil, "", cookie)
		require.Equal(t, http.StatusOK, rec.Code)

		var data struct {
			Practice  models.Practice   `json:"practice"`
			Documents []models.Document `json:"documents"`
		}
		decodeData(t, rec, &data)
		assert.Equal(t, practice.ID, data.Practice.ID)
		assert.NotNil(t, data.Documents)
	})

	t.Run("update", func(t *testing.T) {
		rec := s.doJSON(t, http.MethodPut, "/admin/practices?id="+practice.ID, map[string]interface{}{
			"cliente_id":       client.ID,
			"numero_contratto": "CTR-101",
			"note":             "richiamare",
		}, cookie)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var updated models.Practice
		decodeData(t, rec, &updated)
		assert.Equal(t, "CTR-101", updated.ContractNumber)
	})

	t.Run("unknown status", func(t *testing.T) {
		rec := s.doJSON(t, http.MethodPost, "/admin/practices", map[string]interface{}{
			"cliente_id":       client.ID,
			"numero_contratto": "CTR-300",
			"stato_pratica_id": "missing",
		}, cookie)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, services.ErrStatusUnknown.Message, decodeEnvelope(t, rec).Message)
	})

	t.Run("unknown client", func(t *testing.T) {
		rec := s.doJSON(t, http.MethodPost, "/admin/practices", map[string]interface{}{
			"cliente_id":       "missing",
			"numero_contratto": "CTR-400",
		}, cookie)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("delete", func(t *testing.T) {
		rec := s.do(t, http.MethodDelete, "/admin/practices?id="+practice.ID, nil, "", cookie)
		require.Equal(t, http.StatusOK, rec.Code)

		again := s.do(t, http.MethodDelete, "/admin/practices?id="+practice.ID, nil, "", cookie)
		assert.Equal(t, http.StatusNotFound, again.Code)
	})
}

func TestExportPractices(t *testing.T) {
	s := newTestServer(t)
	cookie := s.adminCookie(t)
	client := s.createClient(t, 1, "Mario Rossi", "")
	s.createPractice(t, client.ID, "CTR-1")

	rec := s.do(t, http.MethodGet, "/admin/practices?action=export", nil, "", cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, xlsxContentType, rec.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Disposition"), "attachment; filename=pratiche_"))

	records, err := services.ReadXLSX(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestPracticePDF(t *testing.T) {
	s := newTestServer(t)
	cookie := s.adminCookie(t)

	t.Run("requires id", func(t *testing.T) {
		rec := s.do(t, http.MethodGet, "/admin/practices?action=pdf", nil, "", cookie)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Practice ID is required", decodeEnvelope(t, rec).Message)
	})

	t.Run("renders", func(t *testing.T) {
		chrome := os.Getenv("CHROME_PATH")
		if chrome == "" {
			t.Skip("CHROME_PATH not set")
		}
		s.cfg.ChromePath = chrome
		client := s.createClient(t, 1, "Mario Rossi", "")
		practice := s.createPractice(t, client.ID, "CTR-9")

		rec := s.do(t, http.MethodGet, "/admin/practices?action=pdf&id="+practice.ID, nil, "", cookie)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
		assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")))
	})
}
