package services

import (
	"context"
	"log"
	"strings"
	"time"

	"claims_crm_go/models"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// PracticeInput is a practice as submitted by the admin portal. Numeric and
// date fields arrive as text and go through the same parsers as imports.
type PracticeInput struct {
	ClientID              string     `json:"cliente_id"`
	ContractNumber        string     `json:"numero_contratto"`
	MandateDate           FlexString `json:"data_mandato"`
	ContractDate          FlexString `json:"data_contratto"`
	ContractDuration      FlexString `json:"durata_contratto"`
	BankID                string     `json:"banca_id"`
	MandatePercentage     FlexString `json:"percentuale_mandato"`
	CollectedAmount       FlexString `json:"euro_incasso"`
	StatusID              string     `json:"stato_pratica_id"`
	ClaimAmount           FlexString `json:"importo_reclamo"`
	InternalProposal      FlexString `json:"proposta_intutela"`
	BankProposal          FlexString `json:"proposta_banca"`
	BankAcceptance        string     `json:"accettazione_banca"`
	CollectionMethod      *string    `json:"modalita_incasso"`
	WhoCollects           string     `json:"chi_incassa"`
	CollectionReceipt     string     `json:"quietanza_incasso"`
	PecRecordsAccessDate  FlexString `json:"data_pec_accesso_atti"`
	RecordsAccessDeadline FlexString `json:"scadenza_accesso_atti"`
	PecClaimDate          FlexString `json:"data_pec_reclamo"`
	ClaimDeadline         FlexString `json:"scadenza_reclamo"`
	PowerOfAttorney       string     `json:"procura_ricorso"`
	Notes                 *string    `json:"note"`
}

// PracticeFilters narrows the admin practice list. Empty fields are ignored.
type PracticeFilters struct {
	Search   string
	StatusID string
	BankID   string
	ClientID string
}

// practiceMutableColumns are replaced as a whole on update
var practiceMutableColumns = []string{
	"contract_number", "mandate_date", "contract_date", "contract_duration",
	"bank_id", "mandate_percentage", "collected_amount", "status_id",
	"claim_amount", "internal_proposal", "bank_proposal", "bank_acceptance",
	"collection_method", "who_collects", "collection_receipt",
	"pec_records_access_date", "records_access_deadline", "pec_claim_date",
	"claim_deadline", "power_of_attorney", "notes", "updated_at",
}

func optionalDate(field string, v FlexString) (*datatypes.Date, error) {
	if v == "" {
		return nil, nil
	}
	d := parseImportDate(v.String())
	if d == nil {
		return nil, ValidationError("Invalid date for %s: %q", field, v.String())
	}
	return d, nil
}

func optionalAmount(field string, v FlexString) (decimal.NullDecimal, error) {
	if v == "" {
		return decimal.NullDecimal{}, nil
	}
	d, ok := ParseAmount(v.String())
	if !ok {
		return decimal.NullDecimal{}, ValidationError("Invalid amount for %s: %q", field, v.String())
	}
	return decimal.NewNullDecimal(d), nil
}

// build validates the input and fills every mutable field of p, applying
// the creation defaults to anything omitted.
func (in PracticeInput) build(db *gorm.DB, p *models.Practice) error {
	var err error

	p.ContractNumber = SanitizeText(in.ContractNumber)
	if p.ContractNumber == "" {
		return ValidationError("Contract number is required")
	}

	dates := []struct {
		name string
		in   FlexString
		out  **datatypes.Date
	}{
		{"data_mandato", in.MandateDate, &p.MandateDate},
		{"data_contratto", in.ContractDate, &p.ContractDate},
		{"data_pec_accesso_atti", in.PecRecordsAccessDate, &p.PecRecordsAccessDate},
		{"scadenza_accesso_atti", in.RecordsAccessDeadline, &p.RecordsAccessDeadline},
		{"data_pec_reclamo", in.PecClaimDate, &p.PecClaimDate},
		{"scadenza_reclamo", in.ClaimDeadline, &p.ClaimDeadline},
	}
	for _, d := range dates {
		if *d.out, err = optionalDate(d.name, d.in); err != nil {
			return err
		}
	}

	amounts := []struct {
		name string
		in   FlexString
		out  *decimal.NullDecimal
	}{
		{"euro_incasso", in.CollectedAmount, &p.CollectedAmount},
		{"importo_reclamo", in.ClaimAmount, &p.ClaimAmount},
		{"proposta_intutela", in.InternalProposal, &p.InternalProposal},
		{"proposta_banca", in.BankProposal, &p.BankProposal},
	}
	for _, a := range amounts {
		if *a.out, err = optionalAmount(a.name, a.in); err != nil {
			return err
		}
	}

	p.ContractDuration = nil
	if in.ContractDuration != "" {
		if p.ContractDuration = parseImportInt(in.ContractDuration.String()); p.ContractDuration == nil {
			return ValidationError("Invalid contract duration: %q", in.ContractDuration.String())
		}
	}

	p.MandatePercentage = models.DefaultMandatePercentage
	if in.MandatePercentage != "" {
		pct, ok := ParsePercentage(in.MandatePercentage.String())
		if !ok {
			return ValidationError("Invalid mandate percentage: %q", in.MandatePercentage.String())
		}
		p.MandatePercentage = pct
	}

	if in.StatusID == "" {
		def, err := DefaultStatus(db)
		if err != nil {
			return err
		}
		p.StatusID = def.ID
	} else {
		var n int64
		if err := db.Model(&models.Status{}).Where("id = ?", in.StatusID).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return ErrStatusUnknown
		}
		p.StatusID = in.StatusID
	}

	p.BankID = nil
	if in.BankID != "" {
		var n int64
		if err := db.Model(&models.Bank{}).Where("id = ?", in.BankID).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return ErrBankUnknown
		}
		bankID := in.BankID
		p.BankID = &bankID
	}

	p.BankAcceptance = normalizeAcceptance(in.BankAcceptance)
	if p.BankAcceptance == "" {
		p.BankAcceptance = models.AcceptancePending
	}
	p.WhoCollects = normalizeCollector(in.WhoCollects)
	if p.WhoCollects == "" {
		p.WhoCollects = models.CollectorAssociation
	}
	p.CollectionReceipt = NormalizeYesNo(in.CollectionReceipt, models.FlagNo)
	p.PowerOfAttorney = NormalizeYesNo(in.PowerOfAttorney, models.FlagNo)
	p.CollectionMethod = SanitizeOptional(in.CollectionMethod)
	p.Notes = SanitizeOptional(in.Notes)

	return nil
}

// practiceFilterScope applies the list filters. Client and bank are joined
// so search can match their names.
func practiceFilterScope(f PracticeFilters) func(*gorm.DB) *gorm.DB {
	return func(tx *gorm.DB) *gorm.DB {
		tx = tx.Joins("JOIN clients ON clients.id = practices.client_id").
			Joins("LEFT JOIN banks ON banks.id = practices.bank_id")
		if s := strings.TrimSpace(f.Search); s != "" {
			p := likePattern(s)
			tx = tx.Where("clients.full_name LIKE ? OR practices.contract_number LIKE ? OR banks.name LIKE ?", p, p, p)
		}
		if f.StatusID != "" {
			tx = tx.Where("practices.status_id = ?", f.StatusID)
		}
		if f.BankID != "" {
			tx = tx.Where("practices.bank_id = ?", f.BankID)
		}
		if f.ClientID != "" {
			tx = tx.Where("practices.client_id = ?", f.ClientID)
		}
		return tx
	}
}

// ListPractices returns a page of practices, most recently updated first
func ListPractices(db *gorm.DB, page Pagination, filters PracticeFilters) ([]models.Practice, int64, error) {
	var total int64
	if err := db.Model(&models.Practice{}).Scopes(practiceFilterScope(filters)).Count(&total).Error; err != nil {
		return nil, 0, PersistenceError("count practices", err)
	}

	var practices []models.Practice
	err := db.Scopes(practiceFilterScope(filters)).
		Select("practices.*").
		Preload("Client").Preload("Status").Preload("Bank").
		Order("practices.updated_at DESC").
		Offset(page.Offset()).
		Limit(page.PageSize).
		Find(&practices).Error
	if err != nil {
		return nil, 0, PersistenceError("list practices", err)
	}

	if err := attachDocumentCounts(db, practices, false); err != nil {
		return nil, 0, err
	}
	return practices, total, nil
}

// attachDocumentCounts fills DocumentCount, optionally counting only
// documents visible to the client.
func attachDocumentCounts(db *gorm.DB, practices []models.Practice, clientVisibleOnly bool) error {
	if len(practices) == 0 {
		return nil
	}
	ids := make([]string, len(practices))
	for i := range practices {
		ids[i] = practices[i].ID
	}

	query := db.Model(&models.Document{}).
		Select("practice_id, COUNT(*) AS total").
		Where("practice_id IN ?", ids)
	if clientVisibleOnly {
		query = query.Where("client_visible = ?", models.FlagYes)
	}

	var counts []struct {
		PracticeID string
		Total      int64
	}
	if err := query.Group("practice_id").Scan(&counts).Error; err != nil {
		return PersistenceError("count documents", err)
	}

	byID := make(map[string]int64, len(counts))
	for _, c := range counts {
		byID[c.PracticeID] = c.Total
	}
	for i := range practices {
		practices[i].DocumentCount = byID[practices[i].ID]
		practices[i].Flatten()
	}
	return nil
}

// GetPractice returns a practice with display fields and its unfiltered
// documents, newest first.
func GetPractice(db *gorm.DB, id string) (*models.Practice, error) {
	var practice models.Practice
	err := db.Preload("Client").Preload("Status").Preload("Bank").
		Preload("Documents", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("documents.created_at DESC")
		}).
		First(&practice, "id = ?", id).Error
	if err != nil {
		return nil, dbError("get practice", err, ErrPracticeNotFound)
	}

	practice.Flatten()
	practice.DocumentCount = int64(len(practice.Documents))
	return &practice, nil
}

// CreatePractice inserts a practice for an existing client
func CreatePractice(db *gorm.DB, input PracticeInput) (*models.Practice, error) {
	var practice models.Practice
	err := db.Transaction(func(tx *gorm.DB) error {
		var client models.Client
		if err := tx.First(&client, "id = ?", input.ClientID).Error; err != nil {
			return dbError("load client", err, ErrClientNotFound)
		}
		if err := input.build(tx, &practice); err != nil {
			return err
		}
		practice.ClientID = client.ID
		return tx.Create(&practice).Error
	})
	if err != nil {
		return nil, dbError("create practice", err, nil)
	}

	return GetPractice(db, practice.ID)
}

// UpdatePractice replaces every mutable field of a practice. The owning
// client cannot be changed.
func UpdatePractice(db *gorm.DB, id string, input PracticeInput) (*models.Practice, error) {
	err := db.Transaction(func(tx *gorm.DB) error {
		var practice models.Practice
		if err := tx.First(&practice, "id = ?", id).Error; err != nil {
			return err
		}
		if err := input.build(tx, &practice); err != nil {
			return err
		}
		practice.UpdatedAt = time.Now()
		return tx.Model(&practice).Select(practiceMutableColumns).Updates(&practice).Error
	})
	if err != nil {
		return nil, dbError("update practice", err, ErrPracticeNotFound)
	}

	return GetPractice(db, id)
}

// DeletePractice removes a practice together with its documents. Stored
// files are removed after the rows are gone; a failed file delete is
// logged and leaves the rows deleted.
func DeletePractice(ctx context.Context, db *gorm.DB, store StorageProvider, id string) (*models.Practice, error) {
	var practice models.Practice
	var keys []string

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Client").First(&practice, "id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Document{}).Where("practice_id = ?", id).Pluck("storage_key", &keys).Error; err != nil {
			return err
		}
		if err := tx.Where("practice_id = ?", id).Delete(&models.Document{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.Practice{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrPracticeNotFound
		}
		return nil
	})
	if err != nil {
		return nil, dbError("delete practice", err, ErrPracticeNotFound)
	}

	for _, key := range keys {
		if err := store.Delete(ctx, key); err != nil {
			log.Printf("[STORAGE] Failed to delete %s of practice %s: %v", key, id, err)
		}
	}

	practice.Flatten()
	return &practice, nil
}

// GetClientPractices returns all practices of one client for the portal.
// Document counts include only client-visible documents.
func GetClientPractices(db *gorm.DB, clientID string) ([]models.Practice, error) {
	var practices []models.Practice
	err := db.Preload("Status").Preload("Bank").
		Where("client_id = ?", clientID).
		Order("updated_at DESC").
		Find(&practices).Error
	if err != nil {
		return nil, PersistenceError("client practices", err)
	}

	if err := attachDocumentCounts(db, practices, true); err != nil {
		return nil, err
	}
	return practices, nil
}

// ClientDashboard summarises a client's practices by outcome
type ClientDashboard struct {
	TotalPractices int               `json:"total_practices"`
	Completed      int               `json:"completed"`
	InProgress     int               `json:"in_progress"`
	Cancelled      int               `json:"cancelled"`
	Practices      []models.Practice `json:"practices"`
}

// GetClientDashboard counts a client's practices. A practice is completed
// when its status is named exactly "Already Reimbursed", cancelled when it
// is "Cancelled", and in progress otherwise.
func GetClientDashboard(db *gorm.DB, clientID string) (*ClientDashboard, error) {
	practices, err := GetClientPractices(db, clientID)
	if err != nil {
		return nil, err
	}

	dash := &ClientDashboard{TotalPractices: len(practices), Practices: practices}
	for _, p := range practices {
		switch p.StatusName {
		case models.StatusNameReimbursed:
			dash.Completed++
		case models.StatusNameCancelled:
			dash.Cancelled++
		default:
			dash.InProgress++
		}
	}
	if dash.Practices == nil {
		dash.Practices = []models.Practice{}
	}
	return dash, nil
}
