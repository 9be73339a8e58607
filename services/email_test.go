package services

import (
	"testing"

	"claims_crm_go/config"
	"claims_crm_go/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildPortalAccessEmail(t *testing.T) {
	cfg := &config.Config{AppURL: "https://clienti.example.org/"}
	client := &models.Client{
		FullName: "Mario <Rossi>",
		TaxCode:  strPtr("RSSMRA80A01H501U"),
		Email:    strPtr(" mario@example.org "),
	}

	email, err := BuildPortalAccessEmail(cfg, client, "Segreta-123")
	require.NoError(t, err)
	require.NotNil(t, email)

	assert.Equal(t, []string{"mario@example.org"}, email.To)
	assert.Equal(t, "Accesso all'area clienti", email.Subject)
	assert.Contains(t, email.TextBody, "RSSMRA80A01H501U")
	assert.Contains(t, email.TextBody, "Segreta-123")
	assert.Contains(t, email.TextBody, "https://clienti.example.org/login")
	assert.Contains(t, email.HTMLBody, "Mario &lt;Rossi&gt;")
	assert.NotContains(t, email.HTMLBody, "<Rossi>")
}

func TestBuildPortalAccessEmailWithoutAddress(t *testing.T) {
	cfg := &config.Config{}

	email, err := BuildPortalAccessEmail(cfg, &models.Client{FullName: "Luca"}, "x")
	require.NoError(t, err)
	assert.Nil(t, email)

	email, err = BuildPortalAccessEmail(cfg, &models.Client{FullName: "Luca", Email: strPtr("  ")}, "x")
	require.NoError(t, err)
	assert.Nil(t, email)
}

func TestSendEmail(t *testing.T) {
	email := &Email{To: []string{"a@example.org"}, Subject: "s", TextBody: "body"}

	t.Run("test mode only logs", func(t *testing.T) {
		assert.NoError(t, SendEmail(&config.Config{EmailTestMode: true}, email))
	})

	t.Run("missing API key", func(t *testing.T) {
		err := SendEmail(&config.Config{}, email)
		assert.ErrorContains(t, err, "RESEND_API_KEY")
	})

	t.Run("empty body", func(t *testing.T) {
		err := SendEmail(&config.Config{ResendAPIKey: "re_test"}, &Email{To: email.To, Subject: "s"})
		assert.ErrorContains(t, err, "HTMLBody or TextBody")
	})
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 5))
	assert.Equal(t, "ab", truncate("abc", 2))
}
