package services

import (
	"claims_crm_go/models"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Column layout of the practice spreadsheet ("Monitoraggio" sheet). Row 0
// is a header.
const (
	colClientNumber = iota
	colMandateDate
	colClientName
	colContractNumber
	colContractDate
	colDuration
	colBank
	colMandatePercentage
	colCollectedAmount
	colStatus
	colClaimAmount
	colInternalProposal
	colBankProposal
	colBankAcceptance
	colCollectionMethod
	colWhoCollects
	colCollectionReceipt
	colPecRecordsAccessDate
	colRecordsAccessDeadline
	colPecClaimDate
	colClaimDeadline
	colPowerOfAttorney
	colNotes
	practiceColumnCount
)

// PracticeColumnHeaders are the header labels of the practice spreadsheet
var PracticeColumnHeaders = [practiceColumnCount]string{
	"Progressivo",
	"Data mandato",
	"Nome e cognome",
	"Numero contratto",
	"Data contratto",
	"Durata (mesi)",
	"Banca",
	"Percentuale mandato",
	"Euro incasso",
	"Stato pratica",
	"Importo reclamo",
	"Proposta Intutela",
	"Proposta banca",
	"Accettazione banca",
	"Modalità incasso",
	"Chi incassa",
	"Quietanza incasso",
	"Data PEC accesso atti",
	"Scadenza accesso atti",
	"Data PEC reclamo",
	"Scadenza reclamo",
	"Procura ricorso",
	"Note",
}

// PracticeImportRow is one parsed line of the practice spreadsheet
type PracticeImportRow struct {
	Line           int
	ClientNumber   int
	ClientName     string
	ContractNumber string
	BankName       string
	StatusName     string

	MandateDate           *datatypes.Date
	ContractDate          *datatypes.Date
	ContractDuration      *int
	MandatePercentage     decimal.Decimal
	CollectedAmount       decimal.NullDecimal
	ClaimAmount           decimal.NullDecimal
	InternalProposal      decimal.NullDecimal
	BankProposal          decimal.NullDecimal
	BankAcceptance        string
	CollectionMethod      *string
	WhoCollects           string
	CollectionReceipt     string
	PecRecordsAccessDate  *datatypes.Date
	RecordsAccessDeadline *datatypes.Date
	PecClaimDate          *datatypes.Date
	ClaimDeadline         *datatypes.Date
	PowerOfAttorney       string
	Notes                 *string
}

// ParsePracticeRow parses a raw record with defaulting. incomplete is true
// when the client number (empty or zero), name or contract number is
// missing; such rows are skipped without error. Unreadable dates and numbers
// become empty values.
func ParsePracticeRow(line int, cols []string) (row PracticeImportRow, incomplete bool, err error) {
	number := cell(cols, colClientNumber)
	name := SanitizeText(cell(cols, colClientName))
	contract := SanitizeText(cell(cols, colContractNumber))
	if blankClientNumber(number) || name == "" || contract == "" {
		return row, true, nil
	}

	n, ok := parseClientNumber(number)
	if !ok {
		return row, false, ValidationError("Row %d: invalid client number %q", line, number)
	}

	row = PracticeImportRow{
		Line:                  line,
		ClientNumber:          n,
		ClientName:            name,
		ContractNumber:        contract,
		BankName:              cell(cols, colBank),
		StatusName:            cell(cols, colStatus),
		MandateDate:           parseImportDate(cell(cols, colMandateDate)),
		ContractDate:          parseImportDate(cell(cols, colContractDate)),
		ContractDuration:      parseImportInt(cell(cols, colDuration)),
		MandatePercentage:     models.DefaultMandatePercentage,
		CollectedAmount:       parseImportAmount(cell(cols, colCollectedAmount)),
		ClaimAmount:           parseImportAmount(cell(cols, colClaimAmount)),
		InternalProposal:      parseImportAmount(cell(cols, colInternalProposal)),
		BankProposal:          parseImportAmount(cell(cols, colBankProposal)),
		BankAcceptance:        normalizeAcceptance(cell(cols, colBankAcceptance)),
		WhoCollects:           normalizeCollector(cell(cols, colWhoCollects)),
		CollectionReceipt:     NormalizeYesNo(cell(cols, colCollectionReceipt), models.FlagNo),
		PecRecordsAccessDate:  parseImportDate(cell(cols, colPecRecordsAccessDate)),
		RecordsAccessDeadline: parseImportDate(cell(cols, colRecordsAccessDeadline)),
		PecClaimDate:          parseImportDate(cell(cols, colPecClaimDate)),
		ClaimDeadline:         parseImportDate(cell(cols, colClaimDeadline)),
		PowerOfAttorney:       NormalizeYesNo(cell(cols, colPowerOfAttorney), models.FlagNo),
	}
	if pct, ok := ParsePercentage(cell(cols, colMandatePercentage)); ok && !pct.IsZero() {
		row.MandatePercentage = pct
	}
	if row.BankAcceptance == "" {
		row.BankAcceptance = models.AcceptancePending
	}
	if row.WhoCollects == "" {
		row.WhoCollects = models.CollectorAssociation
	}
	method := cell(cols, colCollectionMethod)
	row.CollectionMethod = SanitizeOptional(&method)
	notes := cell(cols, colNotes)
	row.Notes = SanitizeOptional(&notes)

	return row, false, nil
}

func (r PracticeImportRow) practice(clientID, statusID string, bankID *string) *models.Practice {
	return &models.Practice{
		ClientID:              clientID,
		ContractNumber:        r.ContractNumber,
		MandateDate:           r.MandateDate,
		ContractDate:          r.ContractDate,
		ContractDuration:      r.ContractDuration,
		BankID:                bankID,
		MandatePercentage:     r.MandatePercentage,
		CollectedAmount:       r.CollectedAmount,
		StatusID:              statusID,
		ClaimAmount:           r.ClaimAmount,
		InternalProposal:      r.InternalProposal,
		BankProposal:          r.BankProposal,
		BankAcceptance:        r.BankAcceptance,
		CollectionMethod:      r.CollectionMethod,
		WhoCollects:           r.WhoCollects,
		CollectionReceipt:     r.CollectionReceipt,
		PecRecordsAccessDate:  r.PecRecordsAccessDate,
		RecordsAccessDeadline: r.RecordsAccessDeadline,
		PecClaimDate:          r.PecClaimDate,
		ClaimDeadline:         r.ClaimDeadline,
		PowerOfAttorney:       r.PowerOfAttorney,
		Notes:                 r.Notes,
	}
}

// ImportPractices inserts the practices found in records, creating missing
// clients on the way. Banks and statuses are matched by exact name: an
// unknown bank leaves the practice without one (and is listed in
// UnmatchedBanks), an unknown status falls back to the default status.
// A practice whose client already has the same contract number is skipped.
func ImportPractices(db *gorm.DB, records [][]string) (*ImportResult, error) {
	result := &ImportResult{Errors: []string{}}

	idx, err := loadLookupIndex(db)
	if err != nil {
		return nil, dbError("load lookups", err, nil)
	}
	unmatched := map[string]bool{}

	err = db.Transaction(func(tx *gorm.DB) error {
		for i, cols := range records {
			if i == 0 {
				continue
			}
			row, incomplete, err := ParsePracticeRow(i+1, cols)
			if incomplete {
				result.Skipped++
				continue
			}
			if err != nil {
				result.Errors = append(result.Errors, err.Error())
				continue
			}

			bankID, matched := idx.bankID(row.BankName)
			if !matched && !unmatched[row.BankName] {
				unmatched[row.BankName] = true
				result.UnmatchedBanks = append(result.UnmatchedBanks, row.BankName)
			}

			created := false
			err = tx.Transaction(func(rowTx *gorm.DB) error {
				clientID, err := resolveImportClient(rowTx, row)
				if err != nil {
					return err
				}

				var dup int64
				if err := rowTx.Model(&models.Practice{}).
					Where("client_id = ? AND contract_number = ?", clientID, row.ContractNumber).
					Count(&dup).Error; err != nil {
					return err
				}
				if dup > 0 {
					return nil
				}

				created = true
				return rowTx.Create(row.practice(clientID, idx.statusID(row.StatusName), bankID)).Error
			})
			switch {
			case err != nil:
				if isConnectionError(err) {
					return err
				}
				result.Errors = append(result.Errors, rowFailure(row.Line, err))
			case created:
				result.Imported++
			default:
				result.Skipped++
			}
		}
		return nil
	})
	if err != nil {
		return nil, PersistenceError("import practices", err)
	}

	return result, nil
}

// resolveImportClient finds the client by number or creates it from the
// row's number and name.
func resolveImportClient(tx *gorm.DB, row PracticeImportRow) (string, error) {
	var client models.Client
	err := tx.Where("client_number = ?", row.ClientNumber).Limit(1).Find(&client).Error
	if err != nil {
		return "", err
	}
	if client.ID != "" {
		return client.ID, nil
	}

	client = models.Client{ClientNumber: row.ClientNumber, FullName: row.ClientName}
	if err := tx.Create(&client).Error; err != nil {
		return "", err
	}
	return client.ID, nil
}
