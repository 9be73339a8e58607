package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"claims_crm_go/config"
	"claims_crm_go/middleware"
	"claims_crm_go/models"
	"claims_crm_go/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type testServer struct {
	e     *echo.Echo
	db    *gorm.DB
	store services.StorageProvider
	cfg   *config.Config
}

// envelope mirrors Response with the data left undecoded
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:h_" + uuid.New().String() + "?mode=memory&cache=shared&_foreign_keys=on&_busy_timeout=5000"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(models.All()...))
	require.NoError(t, services.SeedStatuses(conn))

	t.Cleanup(func() {
		if sqlDB, err := conn.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return conn
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	cfg := &config.Config{
		Environment:   "development",
		UploadDir:     t.TempDir(),
		EmailTestMode: true,
		EmailFrom:     "noreply@example.org",
		AppURL:        "https://clienti.example.org",
		SessionTTL:    time.Hour,
	}
	s := &testServer{
		e:     echo.New(),
		db:    setupTestDB(t),
		store: services.NewLocalStorage(cfg.UploadDir),
		cfg:   cfg,
	}
	RegisterRoutes(s.e, New(s.db, s.store, cfg))
	return s
}

// do serves one request; cookie may be nil
func (s *testServer) do(t *testing.T, method, target string, body io.Reader, contentType string, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, body)
	if contentType != "" {
		req.Header.Set(echo.HeaderContentType, contentType)
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) doJSON(t *testing.T, method, target string, payload interface{}, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	}
	return s.do(t, method, target, body, echo.MIMEApplicationJSON, cookie)
}

// sessionCookie opens a session for principal without going through login
func (s *testServer) sessionCookie(t *testing.T, principal models.Principal) *http.Cookie {
	t.Helper()
	session, err := services.CreateSession(s.db, principal, "127.0.0.1", "test", time.Hour)
	require.NoError(t, err)
	return &http.Cookie{Name: middleware.SessionCookieName, Value: session.Token}
}

// clientCookie provisions portal access for client and opens a session.
// Sessions of clients without portal access do not resolve.
func (s *testServer) clientCookie(t *testing.T, client *models.Client) *http.Cookie {
	t.Helper()
	provisioned, _, err := services.ProvisionClientAccess(s.db, client.ID)
	require.NoError(t, err)
	return s.sessionCookie(t, models.NewClientPrincipal(provisioned))
}

func (s *testServer) adminCookie(t *testing.T) *http.Cookie {
	t.Helper()
	admin, err := services.CreateAdmin(s.db, services.AdminInput{
		Username: "admin-" + uuid.New().String()[:8],
		Email:    uuid.New().String()[:8] + "@example.org",
		Password: "password123",
	})
	require.NoError(t, err)
	return s.sessionCookie(t, models.NewAdminPrincipal(admin))
}

func (s *testServer) createClient(t *testing.T, number int, name, taxCode string) *models.Client {
	t.Helper()
	input := services.ClientInput{ClientNumber: services.FlexInt(number), FullName: name}
	if taxCode != "" {
		input.TaxCode = &taxCode
	}
	client, err := services.CreateClient(s.db, input)
	require.NoError(t, err)
	return client
}

func (s *testServer) createPractice(t *testing.T, clientID, contract string) *models.Practice {
	t.Helper()
	practice, err := services.CreatePractice(s.db, services.PracticeInput{ClientID: clientID, ContractNumber: contract})
	require.NoError(t, err)
	return practice
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return env
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) envelope {
	t.Helper()
	env := decodeEnvelope(t, rec)
	require.True(t, env.Success, env.Message)
	require.NoError(t, json.Unmarshal(env.Data, v))
	return env
}

// multipartBody builds a form with one file part and plain fields
func multipartBody(t *testing.T, fileField, filename string, content []byte, fields map[string]string) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if fileField != "" {
		part, err := w.CreateFormFile(fileField, filename)
		require.NoError(t, err)
		_, err = io.Copy(part, bytes.NewReader(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func findCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if strings.EqualFold(c.Name, name) {
			return c
		}
	}
	return nil
}
