package services

import (
	"log"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"gorm.io/datatypes"
)

// ImportResult contains the summary of an import
type ImportResult struct {
	Imported       int      `json:"imported"`
	Skipped        int      `json:"skipped"`
	Errors         []string `json:"errors"`
	UnmatchedBanks []string `json:"unmatched_banks,omitempty"`
}

// cell returns the trimmed value at index i, or "" past the end of the row
func cell(cols []string, i int) string {
	if i < 0 || i >= len(cols) {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(cols[i], "\ufeff"))
}

// rowFailure logs a database failure for a row and returns the message
// shown in the import result.
func rowFailure(line int, err error) string {
	if se, ok := err.(*ServiceError); ok && se.Kind == KindValidation {
		return se.Message
	}
	log.Printf("[IMPORT] Row %d failed: %v", line, err)
	return "Row " + strconv.Itoa(line) + ": could not be saved"
}

// parseClientNumber accepts "12", "0012" and spreadsheet floats like "12.0"
func parseClientNumber(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n, n > 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) || f <= 0 || f > math.MaxInt32 {
		return 0, false
	}
	return int(f), true
}

// blankClientNumber reports whether s is empty or a zero placeholder like
// "0" or "0.0"
func blankClientNumber(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return true
	}
	f, err := strconv.ParseFloat(s, 64)
	return err == nil && f == 0
}

// parseImportInt parses an optional integer; unparseable text yields nil
func parseImportInt(s string) *int {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		return &n
	}
	if f, err := strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64); err == nil {
		n := int(f)
		return &n
	}
	return nil
}

// ParseAmount parses money written the Italian way ("€ 1.234,56") or the
// English way ("1,234.56").
func ParseAmount(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "€")
	s = strings.TrimSuffix(s, "€")
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, "\u00a0", "")
	if s == "" {
		return decimal.Zero, false
	}

	lastComma := strings.LastIndex(s, ",")
	lastDot := strings.LastIndex(s, ".")
	switch {
	case lastComma >= 0 && lastDot >= 0:
		if lastComma > lastDot {
			// 1.234,56
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			// 1,234.56
			s = strings.ReplaceAll(s, ",", "")
		}
	case lastComma >= 0:
		if strings.Count(s, ",") > 1 {
			s = strings.ReplaceAll(s, ",", "")
		} else {
			s = strings.Replace(s, ",", ".", 1)
		}
	case strings.Count(s, ".") > 1:
		s = strings.ReplaceAll(s, ".", "")
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

func parseImportAmount(s string) decimal.NullDecimal {
	d, ok := ParseAmount(s)
	return decimal.NullDecimal{Decimal: d, Valid: ok}
}

// ParsePercentage parses a mandate share. Values written as percentages
// ("50%", "50") are scaled to a fraction; "0,5" is taken as is.
func ParsePercentage(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	percent := strings.HasSuffix(s, "%")
	d, ok := ParseAmount(strings.TrimSuffix(s, "%"))
	if !ok || d.IsNegative() {
		return decimal.Zero, false
	}
	if percent || d.GreaterThan(decimal.NewFromInt(1)) {
		d = d.Div(decimal.NewFromInt(100))
	}
	if d.GreaterThan(decimal.NewFromInt(1)) {
		return decimal.Zero, false
	}
	return d, true
}

var importDateLayouts = []string{
	"02/01/2006",
	"2/1/2006",
	"02-01-2006",
	"2-1-2006",
	"02.01.2006",
	"2006-01-02",
	"2006/01/02",
	"02/01/06",
	"2/1/06",
	"02-01-06",
	"2006-01-02 15:04:05",
	"02/01/2006 15:04",
	"02/01/2006 15:04:05",
	time.RFC3339,
}

// ParseDate reads a day-first date from free text. Spreadsheet serial
// numbers are accepted too.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range importDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	if serial, err := strconv.ParseFloat(s, 64); err == nil && serial >= 1 && serial < 100000 {
		if t, err := excelize.ExcelDateToTime(serial, false); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// parseImportDate returns nil for empty or unreadable dates
func parseImportDate(s string) *datatypes.Date {
	t, ok := ParseDate(s)
	if !ok {
		return nil
	}
	d := datatypes.Date(t)
	return &d
}

// normalizeAcceptance maps spreadsheet spellings to the stored values and
// keeps unknown text verbatim.
func normalizeAcceptance(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return ""
	case "pending", "in attesa", "attesa":
		return "Pending"
	case "accepted", "accettata", "accettato", "si", "sì", "yes":
		return "Accepted"
	case "rejected", "rifiutata", "rifiutato", "no":
		return "Rejected"
	default:
		return SanitizeText(s)
	}
}

// normalizeCollector maps spreadsheet spellings of who collects the money
func normalizeCollector(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return ""
	case "association", "associazione":
		return "Association"
	case "client", "cliente":
		return "Client"
	default:
		return SanitizeText(s)
	}
}
