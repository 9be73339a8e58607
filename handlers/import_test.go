package handlers

import (
	"bytes"
	"net/http"
	"strings"
	"testing"

	"claims_crm_go/models"
	"claims_crm_go/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImportSpreadsheet(t *testing.T) {
	s := newTestServer(t)
	cookie := s.adminCookie(t)

	t.Run("clients from csv", func(t *testing.T) {
		body, contentType := multipartBody(t, "csv_file", "clienti.csv",
			[]byte("1;;Mario Rossi\n2;;Luca Bianchi\n"), map[string]string{"import_type": "clients"})
		rec := s.do(t, http.MethodPost, "/admin/import-csv", body, contentType, cookie)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var result services.ImportResult
		env := decodeData(t, rec, &result)
		assert.Equal(t, 2, result.Imported)
		assert.Equal(t, "Import completed: 2 clients imported", env.Message)

		var count int64
		s.db.Model(&models.Client{}).Count(&count)
		assert.Equal(t, int64(2), count)

		var logged int64
		s.db.Model(&models.ActivityLog{}).Where("action = ?", models.ActionImportClients).Count(&logged)
		assert.Equal(t, int64(1), logged)
	})

	t.Run("practices by default from the template", func(t *testing.T) {
		buf, err := services.GenerateImportTemplate(services.ImportTypePractices)
		require.NoError(t, err)

		body, contentType := multipartBody(t, "csv_file", "monitoraggio.xlsx", buf.Bytes(), nil)
		rec := s.do(t, http.MethodPost, "/admin/import-csv", body, contentType, cookie)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.True(t, strings.HasSuffix(decodeEnvelope(t, rec).Message, "practices imported"))
	})

	t.Run("missing file", func(t *testing.T) {
		body, contentType := multipartBody(t, "", "", nil, map[string]string{"import_type": "clients"})
		rec := s.do(t, http.MethodPost, "/admin/import-csv", body, contentType, cookie)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "No file uploaded", decodeEnvelope(t, rec).Message)
	})

	t.Run("invalid type", func(t *testing.T) {
		body, contentType := multipartBody(t, "csv_file", "x.csv", []byte("1;;A\n"), map[string]string{"import_type": "banks"})
		rec := s.do(t, http.MethodPost, "/admin/import-csv", body, contentType, cookie)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unsupported format", func(t *testing.T) {
		body, contentType := multipartBody(t, "csv_file", "x.pdf", samplePDF, nil)
		rec := s.do(t, http.MethodPost, "/admin/import-csv", body, contentType, cookie)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestImportTemplate(t *testing.T) {
	s := newTestServer(t)
	cookie := s.adminCookie(t)

	rec := s.do(t, http.MethodGet, "/admin/import-template?type=practices", nil, "", cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, xlsxContentType, rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename=template_practices.xlsx`, rec.Header().Get("Content-Disposition"))

	records, err := services.ReadXLSX(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, services.PracticeColumnHeaders[:], records[0])

	bad := s.do(t, http.MethodGet, "/admin/import-template?type=other", nil, "", cookie)
	assert.Equal(t, http.StatusBadRequest, bad.Code)
}

func TestSharedLookups(t *testing.T) {
	s := newTestServer(t)
	cookie := s.adminCookie(t)
	for _, name := range []string{"Banca Sella", "Intesa Sanpaolo", "UniCredit"} {
		require.NoError(t, s.db.Create(&models.Bank{Name: name}).Error)
	}

	tests := []struct {
		name      string
		query     string
		wantCode  int
		wantBanks int
	}{
		{"default", "", http.StatusOK, 3},
		{"search", "?search=sella", http.StatusOK, 1},
		{"limited", "?limit=2", http.StatusOK, 2},
		{"zero means all", "?limit=0", http.StatusOK, 3},
		{"negative", "?limit=-1", http.StatusBadRequest, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(t, http.MethodGet, "/shared/banks"+tt.query, nil, "", cookie)
			require.Equal(t, tt.wantCode, rec.Code)
			if tt.wantCode != http.StatusOK {
				return
			}
			var banks []models.Bank
			decodeData(t, rec, &banks)
			assert.Len(t, banks, tt.wantBanks)
		})
	}

	t.Run("statuses in order", func(t *testing.T) {
		rec := s.do(t, http.MethodGet, "/shared/states", nil, "", cookie)
		require.Equal(t, http.StatusOK, rec.Code)
		var statuses []models.Status
		decodeData(t, rec, &statuses)
		require.Len(t, statuses, len(services.DefaultStatuses))
		assert.Equal(t, "In Progress", statuses[0].Name)
	})
}

func TestDashboards(t *testing.T) {
	s := newTestServer(t)
	client := s.createClient(t, 1, "Mario Rossi", "RSSMRA80A01H501U")
	s.createPractice(t, client.ID, "CTR-1")
	s.createPractice(t, client.ID, "CTR-2")

	t.Run("admin", func(t *testing.T) {
		rec := s.do(t, http.MethodGet, "/admin/dashboard", nil, "", s.adminCookie(t))
		require.Equal(t, http.StatusOK, rec.Code)
		var stats services.DashboardStats
		decodeData(t, rec, &stats)
		assert.Equal(t, int64(2), stats.TotalPractices)
		assert.Equal(t, int64(1), stats.TotalClients)
		assert.Len(t, stats.MonthlyStats, services.MonthlyStatsMonths)
	})

	t.Run("client", func(t *testing.T) {
		rec := s.do(t, http.MethodGet, "/client/dashboard", nil, "", s.clientCookie(t, client))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, decodeEnvelope(t, rec).Success)
	})
}

func TestListActivity(t *testing.T) {
	s := newTestServer(t)
	cookie := s.adminCookie(t)

	s.doJSON(t, http.MethodPost, "/admin/clients", map[string]interface{}{"progressivo_cliente": 1, "nome_completo": "Mario Rossi"}, cookie)
	s.doJSON(t, http.MethodPost, "/admin/clients", map[string]interface{}{"progressivo_cliente": 2, "nome_completo": "Luca Bianchi"}, cookie)

	rec := s.do(t, http.MethodGet, "/admin/activity?action=create_client&search=bianchi", nil, "", cookie)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var data struct {
		Entries    []models.ActivityLog `json:"entries"`
		Pagination services.PageInfo    `json:"pagination"`
	}
	decodeData(t, rec, &data)
	require.Len(t, data.Entries, 1)
	assert.Contains(t, data.Entries[0].Details, "Luca Bianchi")

	bad := s.do(t, http.MethodGet, "/admin/activity?date_from=01-02-2024", nil, "", cookie)
	assert.Equal(t, http.StatusBadRequest, bad.Code)
}
