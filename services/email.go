package services

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	"log"
	"strings"
	texttemplate "text/template"

	"claims_crm_go/config"
	"claims_crm_go/models"

	"github.com/resend/resend-go/v2"
)

// Email represents an email message
type Email struct {
	To       []string
	Subject  string
	HTMLBody string
	TextBody string
}

// SendEmail sends an email using Resend API
func SendEmail(cfg *config.Config, email *Email) error {
	// In development mode, log the email instead of sending
	if cfg.EmailTestMode {
		logEmailToConsole(email)
		return nil
	}

	if cfg.ResendAPIKey == "" {
		return fmt.Errorf("RESEND_API_KEY not configured")
	}

	client := resend.NewClient(cfg.ResendAPIKey)

	params := &resend.SendEmailRequest{
		From:    fmt.Sprintf("%s <%s>", cfg.EmailFromName, cfg.EmailFrom),
		To:      email.To,
		Subject: email.Subject,
		Html:    email.HTMLBody,
		Text:    email.TextBody,
	}
	if params.Html == "" && params.Text == "" {
		return fmt.Errorf("email must have either HTMLBody or TextBody")
	}

	sent, err := client.Emails.Send(params)
	if err != nil {
		return fmt.Errorf("failed to send email via Resend: %w", err)
	}

	log.Printf("Email sent successfully via Resend (ID: %s) to: %v", sent.Id, email.To)
	return nil
}

// logEmailToConsole logs email details to console in development mode
func logEmailToConsole(email *Email) {
	separator := strings.Repeat("=", 80)
	log.Printf("\n%s\nEMAIL (test mode, not sent)\n%s", separator, separator)
	log.Printf("To: %v", email.To)
	log.Printf("Subject: %s", email.Subject)
	log.Printf("\n--- TEXT BODY ---\n%s", email.TextBody)
	log.Printf("\n--- HTML BODY (first 500 chars) ---\n%s...", truncate(email.HTMLBody, 500))
	log.Printf("%s\n", separator)
}

// truncate truncates a string to a maximum length
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen]
}

// PortalAccessEmailData contains data for the portal credentials email
type PortalAccessEmailData struct {
	FullName string
	TaxCode  string
	Password string
	LoginURL string
}

var portalAccessHTML = htmltemplate.Must(htmltemplate.New("portal_access.html").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #1f2937;">
  <p>Gentile {{.FullName}},</p>
  <p>è stato attivato il suo accesso all'area clienti, dove può seguire lo stato delle sue pratiche e scaricare i documenti.</p>
  <table style="border-collapse: collapse;">
    <tr><td style="padding: 4px 12px 4px 0;">Codice fiscale</td><td><strong>{{.TaxCode}}</strong></td></tr>
    <tr><td style="padding: 4px 12px 4px 0;">Password</td><td><strong>{{.Password}}</strong></td></tr>
  </table>
  {{if .LoginURL}}<p><a href="{{.LoginURL}}">Accedi all'area clienti</a></p>{{end}}
  <p>Conservi queste credenziali in un luogo sicuro.</p>
</body>
</html>`))

var portalAccessText = texttemplate.Must(texttemplate.New("portal_access.txt").Parse(`Gentile {{.FullName}},

è stato attivato il suo accesso all'area clienti.

Codice fiscale: {{.TaxCode}}
Password: {{.Password}}
{{if .LoginURL}}
Accedi: {{.LoginURL}}
{{end}}
Conservi queste credenziali in un luogo sicuro.
`))

// BuildPortalAccessEmail creates the email carrying a client's new portal
// credentials. It returns nil when the client has no email address.
func BuildPortalAccessEmail(cfg *config.Config, client *models.Client, password string) (*Email, error) {
	if client.Email == nil || strings.TrimSpace(*client.Email) == "" {
		return nil, nil
	}

	data := PortalAccessEmailData{
		FullName: client.FullName,
		Password: password,
	}
	if client.TaxCode != nil {
		data.TaxCode = *client.TaxCode
	}
	if cfg.AppURL != "" {
		data.LoginURL = strings.TrimRight(cfg.AppURL, "/") + "/login"
	}

	var html, text bytes.Buffer
	if err := portalAccessHTML.Execute(&html, data); err != nil {
		return nil, fmt.Errorf("failed to render portal access email: %w", err)
	}
	if err := portalAccessText.Execute(&text, data); err != nil {
		return nil, fmt.Errorf("failed to render portal access email: %w", err)
	}

	return &Email{
		To:       []string{strings.TrimSpace(*client.Email)},
		Subject:  "Accesso all'area clienti",
		HTMLBody: html.String(),
		TextBody: text.String(),
	}, nil
}
