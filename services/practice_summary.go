package services

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"claims_crm_go/models"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

var summaryFuncs = template.FuncMap{
	"date": func(d *datatypes.Date) string {
		if d == nil {
			return "-"
		}
		return formatDate(d)
	},
	"euro": func(d decimal.NullDecimal) string {
		if !d.Valid {
			return "-"
		}
		return "€ " + d.Decimal.StringFixed(2)
	},
	"percent": func(d decimal.Decimal) string {
		return d.Mul(decimal.NewFromInt(100)).StringFixed(0) + "%"
	},
	"text": func(s *string) string {
		if s == nil || *s == "" {
			return "-"
		}
		return *s
	},
	"size": func(n int64) string {
		return fmt.Sprintf("%.1f KB", float64(n)/1024)
	},
}

var practiceSummaryTemplate = template.Must(template.New("practice_summary").Funcs(summaryFuncs).Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="UTF-8">
<style>
  body { font-family: Arial, Helvetica, sans-serif; font-size: 10pt; color: #111827; }
  h1 { font-size: 16pt; margin: 0 0 4pt 0; }
  h2 { font-size: 12pt; margin: 16pt 0 6pt 0; border-bottom: 1px solid #d1d5db; padding-bottom: 2pt; }
  table { width: 100%; border-collapse: collapse; }
  td, th { padding: 3pt 6pt; vertical-align: top; text-align: left; }
  td.label { width: 40%; color: #4b5563; }
  .status { display: inline-block; padding: 2pt 8pt; border-radius: 8pt; color: #fff; }
  .muted { color: #6b7280; font-size: 8pt; }
</style>
</head>
<body>
  <h1>Pratica {{.Practice.ContractNumber}}</h1>
  <div>
    <span class="status" style="background: {{.Practice.StatusColor}}">{{.Practice.StatusName}}</span>
  </div>

  <h2>Cliente</h2>
  <table>
    <tr><td class="label">Progressivo</td><td>{{.Practice.ClientNumber}}</td></tr>
    <tr><td class="label">Nome e cognome</td><td>{{.Practice.ClientName}}</td></tr>
    <tr><td class="label">Codice fiscale</td><td>{{if .Practice.ClientTaxCode}}{{.Practice.ClientTaxCode}}{{else}}-{{end}}</td></tr>
  </table>

  <h2>Contratto</h2>
  <table>
    <tr><td class="label">Banca</td><td>{{if .Practice.BankName}}{{.Practice.BankName}}{{else}}-{{end}}</td></tr>
    <tr><td class="label">Data mandato</td><td>{{date .Practice.MandateDate}}</td></tr>
    <tr><td class="label">Data contratto</td><td>{{date .Practice.ContractDate}}</td></tr>
    <tr><td class="label">Durata (mesi)</td><td>{{with .Practice.ContractDuration}}{{.}}{{else}}-{{end}}</td></tr>
    <tr><td class="label">Percentuale mandato</td><td>{{percent .Practice.MandatePercentage}}</td></tr>
  </table>

  <h2>Reclamo</h2>
  <table>
    <tr><td class="label">Importo reclamo</td><td>{{euro .Practice.ClaimAmount}}</td></tr>
    <tr><td class="label">Proposta interna</td><td>{{euro .Practice.InternalProposal}}</td></tr>
    <tr><td class="label">Proposta banca</td><td>{{euro .Practice.BankProposal}}</td></tr>
    <tr><td class="label">Accettazione banca</td><td>{{.Practice.BankAcceptance}}</td></tr>
    <tr><td class="label">Data PEC accesso atti</td><td>{{date .Practice.PecRecordsAccessDate}}</td></tr>
    <tr><td class="label">Scadenza accesso atti</td><td>{{date .Practice.RecordsAccessDeadline}}</td></tr>
    <tr><td class="label">Data PEC reclamo</td><td>{{date .Practice.PecClaimDate}}</td></tr>
    <tr><td class="label">Scadenza reclamo</td><td>{{date .Practice.ClaimDeadline}}</td></tr>
    <tr><td class="label">Procura ricorso</td><td>{{.Practice.PowerOfAttorney}}</td></tr>
  </table>

  <h2>Incasso</h2>
  <table>
    <tr><td class="label">Euro incasso</td><td>{{euro .Practice.CollectedAmount}}</td></tr>
    <tr><td class="label">Modalità incasso</td><td>{{text .Practice.CollectionMethod}}</td></tr>
    <tr><td class="label">Chi incassa</td><td>{{.Practice.WhoCollects}}</td></tr>
    <tr><td class="label">Quietanza incasso</td><td>{{.Practice.CollectionReceipt}}</td></tr>
  </table>

  {{if .Practice.Notes}}
  <h2>Note</h2>
  <p>{{text .Practice.Notes}}</p>
  {{end}}

  <h2>Documenti ({{len .Practice.Documents}})</h2>
  {{if .Practice.Documents}}
  <table>
    <tr><th>File</th><th>Visibile al cliente</th><th>Dimensione</th></tr>
    {{range .Practice.Documents}}
    <tr><td>{{.OriginalName}}</td><td>{{.ClientVisible}}</td><td>{{size .Size}}</td></tr>
    {{end}}
  </table>
  {{else}}
  <p>-</p>
  {{end}}

  <p class="muted">Generato il {{.GeneratedAt}}</p>
</body>
</html>`))

// RenderPracticeSummaryHTML renders a practice loaded by GetPractice as a
// printable page
func RenderPracticeSummaryHTML(practice *models.Practice, now time.Time) (string, error) {
	data := struct {
		Practice    *models.Practice
		GeneratedAt string
	}{practice, now.Format("02/01/2006 15:04")}

	var buf bytes.Buffer
	if err := practiceSummaryTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render practice summary: %w", err)
	}
	return buf.String(), nil
}
