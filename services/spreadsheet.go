package services

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"claims_crm_go/models"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	ImportTypeClients   = "clients"
	ImportTypePractices = "practices"

	// PracticeSheetName is the sheet read from practice workbooks when present
	PracticeSheetName = "Monitoraggio"

	// MaxImportSize bounds spreadsheet uploads
	MaxImportSize = 10 * 1024 * 1024
)

// ReadSpreadsheet reads every row of an uploaded .csv or .xlsx file
func ReadSpreadsheet(filename string, r io.Reader) ([][]string, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xlsm":
		return ReadXLSX(r)
	case ".csv", ".txt", "":
		return ReadCSV(r)
	default:
		return nil, ValidationError("Invalid file format. Upload a CSV or XLSX file")
	}
}

// ReadCSV parses comma- or semicolon-separated text. The separator is taken
// from the first line; Italian spreadsheet exports use ';'.
func ReadCSV(r io.Reader) ([][]string, error) {
	br := bufio.NewReader(r)
	first, err := br.Peek(4096)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	first = bytes.TrimPrefix(first, []byte("\xef\xbb\xbf"))
	if len(bytes.TrimSpace(first)) == 0 {
		return nil, ValidationError("The CSV file is empty")
	}
	if i := bytes.IndexByte(first, '\n'); i >= 0 {
		first = first[:i]
	}

	reader := csv.NewReader(br)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	if bytes.Count(first, []byte(";")) > bytes.Count(first, []byte(",")) {
		reader.Comma = ';'
	}

	records, err := reader.ReadAll()
	if err != nil {
		return nil, ValidationError("Unable to read the CSV file: %v", err)
	}
	return records, nil
}

// ReadXLSX reads the practice sheet of a workbook, or its first sheet
func ReadXLSX(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, ValidationError("Unable to read the Excel file")
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	for _, name := range f.GetSheetList() {
		if strings.EqualFold(name, PracticeSheetName) {
			sheet = name
			break
		}
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, ValidationError("Unable to read sheet %q", sheet)
	}
	if len(rows) == 0 {
		return nil, ValidationError("The Excel file is empty")
	}
	return rows, nil
}

// ImportSpreadsheet dispatches parsed records to the importer for kind
func ImportSpreadsheet(db *gorm.DB, kind string, records [][]string) (*ImportResult, error) {
	switch kind {
	case ImportTypeClients:
		return ImportClients(db, records)
	case ImportTypePractices:
		return ImportPractices(db, records)
	default:
		return nil, ValidationError("Invalid import type %q", kind)
	}
}

// GenerateImportTemplate builds an empty workbook with the headers of the
// given import kind and one example row.
func GenerateImportTemplate(kind string) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	var headers, example []string
	sheet := "Clienti"
	switch kind {
	case ImportTypeClients:
		headers = []string{"Progressivo", "Data mandato", "Nome e cognome"}
		example = []string{"1", "15/01/2024", "Mario Rossi"}
	case ImportTypePractices:
		sheet = PracticeSheetName
		headers = PracticeColumnHeaders[:]
		example = make([]string, practiceColumnCount)
		example[colClientNumber] = "1"
		example[colMandateDate] = "15/01/2024"
		example[colClientName] = "Mario Rossi"
		example[colContractNumber] = "CTR-0001"
		example[colMandatePercentage] = "0,50"
		example[colBankAcceptance] = "In attesa"
		example[colWhoCollects] = "Associazione"
		example[colCollectionReceipt] = "No"
		example[colPowerOfAttorney] = "No"
	default:
		return nil, ValidationError("Invalid import type %q", kind)
	}

	f.SetSheetName("Sheet1", sheet)
	if err := writeSheetRow(f, sheet, 1, headers); err != nil {
		return nil, err
	}
	if err := writeSheetRow(f, sheet, 2, example); err != nil {
		return nil, err
	}
	styleHeader(f, sheet, len(headers))

	return f.WriteToBuffer()
}

// ExportPractices writes the filtered practices in the import column order,
// so an export can be edited and imported back.
func ExportPractices(db *gorm.DB, filters PracticeFilters) (*bytes.Buffer, error) {
	var practices []models.Practice
	err := db.Scopes(practiceFilterScope(filters)).
		Select("practices.*").
		Preload("Client").Preload("Status").Preload("Bank").
		Order("practices.updated_at DESC").
		Find(&practices).Error
	if err != nil {
		return nil, PersistenceError("export practices", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := PracticeSheetName
	f.SetSheetName("Sheet1", sheet)
	if err := writeSheetRow(f, sheet, 1, PracticeColumnHeaders[:]); err != nil {
		return nil, err
	}
	for i := range practices {
		p := &practices[i]
		p.Flatten()
		if err := writeSheetRow(f, sheet, i+2, practiceExportRow(p)); err != nil {
			return nil, err
		}
	}
	styleHeader(f, sheet, practiceColumnCount)

	return f.WriteToBuffer()
}

func practiceExportRow(p *models.Practice) []string {
	row := make([]string, practiceColumnCount)
	row[colClientNumber] = strconv.Itoa(p.ClientNumber)
	row[colMandateDate] = formatDate(p.MandateDate)
	row[colClientName] = p.ClientName
	row[colContractNumber] = p.ContractNumber
	row[colContractDate] = formatDate(p.ContractDate)
	if p.ContractDuration != nil {
		row[colDuration] = strconv.Itoa(*p.ContractDuration)
	}
	row[colBank] = p.BankName
	row[colMandatePercentage] = p.MandatePercentage.String()
	row[colCollectedAmount] = formatAmount(p.CollectedAmount)
	row[colStatus] = p.StatusName
	row[colClaimAmount] = formatAmount(p.ClaimAmount)
	row[colInternalProposal] = formatAmount(p.InternalProposal)
	row[colBankProposal] = formatAmount(p.BankProposal)
	row[colBankAcceptance] = p.BankAcceptance
	row[colCollectionMethod] = deref(p.CollectionMethod)
	row[colWhoCollects] = p.WhoCollects
	row[colCollectionReceipt] = p.CollectionReceipt
	row[colPecRecordsAccessDate] = formatDate(p.PecRecordsAccessDate)
	row[colRecordsAccessDeadline] = formatDate(p.RecordsAccessDeadline)
	row[colPecClaimDate] = formatDate(p.PecClaimDate)
	row[colClaimDeadline] = formatDate(p.ClaimDeadline)
	row[colPowerOfAttorney] = p.PowerOfAttorney
	row[colNotes] = deref(p.Notes)
	return row
}

func writeSheetRow(f *excelize.File, sheet string, rowNum int, values []string) error {
	cellName, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return err
	}
	row := make([]interface{}, len(values))
	for i, v := range values {
		row[i] = v
	}
	return f.SetSheetRow(sheet, cellName, &row)
}

func styleHeader(f *excelize.File, sheet string, columns int) {
	last, err := excelize.ColumnNumberToName(columns)
	if err != nil {
		return
	}
	if style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err == nil {
		f.SetCellStyle(sheet, "A1", last+"1", style)
	}
	f.SetColWidth(sheet, "A", last, 18)
}

// formatDate renders a date the way the import parser reads it back
func formatDate(d *datatypes.Date) string {
	if d == nil {
		return ""
	}
	return time.Time(*d).Format("02/01/2006")
}

func formatAmount(d decimal.NullDecimal) string {
	if !d.Valid {
		return ""
	}
	return d.Decimal.StringFixed(2)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
