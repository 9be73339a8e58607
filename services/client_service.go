package services

import (
	"errors"
	"strings"
	"time"

	"claims_crm_go/models"

	"gorm.io/gorm"
)

// ClientInput is the mutable part of a client as submitted by an admin
type ClientInput struct {
	ClientNumber FlexInt `json:"progressivo_cliente"`
	FullName     string  `json:"nome_completo"`
	TaxCode      *string `json:"codice_fiscale"`
	Email        *string `json:"email"`
	Phone        *string `json:"telefono"`
	Address      *string `json:"indirizzo"`
}

// ClientListItem is a client annotated with practice statistics
type ClientListItem struct {
	models.Client
	PracticeCount int64      `json:"num_pratiche"`
	LastActivity  *time.Time `json:"ultima_attivita"`
	PortalActive  bool       `json:"accesso_attivo"`
}

// NormalizeTaxCode trims and uppercases an Italian tax code
func NormalizeTaxCode(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

func (in ClientInput) normalize() (ClientInput, error) {
	in.FullName = SanitizeText(in.FullName)
	if in.ClientNumber <= 0 {
		return in, ValidationError("Client number must be a positive integer")
	}
	if in.FullName == "" {
		return in, ValidationError("Full name is required")
	}
	if in.TaxCode != nil {
		tc := NormalizeTaxCode(*in.TaxCode)
		if tc == "" {
			in.TaxCode = nil
		} else {
			in.TaxCode = &tc
		}
	}
	in.Email = trimOptional(in.Email)
	in.Phone = trimOptional(in.Phone)
	in.Address = SanitizeOptional(in.Address)
	return in, nil
}

func (in ClientInput) apply(c *models.Client) {
	c.ClientNumber = in.ClientNumber.Int()
	c.FullName = in.FullName
	c.TaxCode = in.TaxCode
	c.Email = in.Email
	c.Phone = in.Phone
	c.Address = in.Address
}

// ListClients returns a page of clients ordered by client number
func ListClients(db *gorm.DB, page Pagination, search string) ([]ClientListItem, int64, error) {
	query := db.Model(&models.Client{})
	if search = strings.TrimSpace(search); search != "" {
		p := likePattern(search)
		query = query.Where("full_name LIKE ? OR tax_code LIKE ? OR CAST(client_number AS TEXT) LIKE ?", p, p, p)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, PersistenceError("count clients", err)
	}

	var clients []models.Client
	err := query.Order("client_number ASC").
		Offset(page.Offset()).
		Limit(page.PageSize).
		Find(&clients).Error
	if err != nil {
		return nil, 0, PersistenceError("list clients", err)
	}

	stats, err := practiceStatsByClient(db, clientIDs(clients))
	if err != nil {
		return nil, 0, err
	}

	items := make([]ClientListItem, len(clients))
	for i, c := range clients {
		items[i] = ClientListItem{Client: c, PortalActive: c.HasPortalAccess()}
		if s, ok := stats[c.ID]; ok {
			items[i].PracticeCount = s.count
			last := s.last
			items[i].LastActivity = &last
		}
	}

	return items, total, nil
}

type clientPracticeStats struct {
	count int64
	last  time.Time
}

// practiceStatsByClient aggregates in Go: SQLite returns MAX() over a
// datetime column as untyped text.
func practiceStatsByClient(db *gorm.DB, ids []string) (map[string]clientPracticeStats, error) {
	stats := make(map[string]clientPracticeStats, len(ids))
	if len(ids) == 0 {
		return stats, nil
	}

	var rows []struct {
		ClientID  string
		UpdatedAt time.Time
	}
	err := db.Model(&models.Practice{}).
		Select("client_id, updated_at").
		Where("client_id IN ?", ids).
		Scan(&rows).Error
	if err != nil {
		return nil, PersistenceError("client practice stats", err)
	}

	for _, r := range rows {
		s := stats[r.ClientID]
		s.count++
		if r.UpdatedAt.After(s.last) {
			s.last = r.UpdatedAt
		}
		stats[r.ClientID] = s
	}
	return stats, nil
}

func clientIDs(clients []models.Client) []string {
	ids := make([]string, len(clients))
	for i, c := range clients {
		ids[i] = c.ID
	}
	return ids
}

// GetClient returns a client with its practices, newest first
func GetClient(db *gorm.DB, id string) (*models.Client, error) {
	var client models.Client
	err := db.Preload("Practices", func(tx *gorm.DB) *gorm.DB {
		return tx.Order("practices.created_at DESC")
	}).
		Preload("Practices.Status").
		Preload("Practices.Bank").
		First(&client, "id = ?", id).Error
	if err != nil {
		return nil, dbError("get client", err, ErrClientNotFound)
	}

	for i := range client.Practices {
		client.Practices[i].Flatten()
	}
	return &client, nil
}

// CreateClient inserts a client. Client number and tax code must be unused.
func CreateClient(db *gorm.DB, input ClientInput) (*models.Client, error) {
	input, err := input.normalize()
	if err != nil {
		return nil, err
	}

	var client models.Client
	input.apply(&client)

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := checkClientUnique(tx, "", input); err != nil {
			return err
		}
		return tx.Create(&client).Error
	})
	if err != nil {
		return nil, dbError("create client", err, nil)
	}

	return &client, nil
}

// UpdateClient replaces the mutable fields of a client
func UpdateClient(db *gorm.DB, id string, input ClientInput) (*models.Client, error) {
	input, err := input.normalize()
	if err != nil {
		return nil, err
	}

	var client models.Client
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&client, "id = ?", id).Error; err != nil {
			return err
		}
		if err := checkClientUnique(tx, id, input); err != nil {
			return err
		}
		input.apply(&client)
		client.UpdatedAt = time.Now()
		return tx.Model(&client).
			Select("client_number", "full_name", "tax_code", "email", "phone", "address", "updated_at").
			Updates(&client).Error
	})
	if err != nil {
		return nil, dbError("update client", err, ErrClientNotFound)
	}

	return &client, nil
}

func checkClientUnique(tx *gorm.DB, selfID string, input ClientInput) error {
	var count int64
	q := tx.Model(&models.Client{}).Where("client_number = ?", input.ClientNumber.Int())
	if selfID != "" {
		q = q.Where("id <> ?", selfID)
	}
	if err := q.Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrDuplicateClientNumber
	}

	if input.TaxCode == nil {
		return nil
	}
	q = tx.Model(&models.Client{}).Where("tax_code = ?", *input.TaxCode)
	if selfID != "" {
		q = q.Where("id <> ?", selfID)
	}
	if err := q.Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrDuplicateTaxCode
	}
	return nil
}

// DeleteClient removes a client that owns no practices
func DeleteClient(db *gorm.DB, id string) (*models.Client, error) {
	var client models.Client
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&client, "id = ?", id).Error; err != nil {
			return err
		}

		var practices int64
		if err := tx.Model(&models.Practice{}).Where("client_id = ?", id).Count(&practices).Error; err != nil {
			return err
		}
		if practices > 0 {
			return ErrHasDependentPractices
		}

		if err := tx.Where("client_id = ?", id).Delete(&models.Session{}).Error; err != nil {
			return err
		}
		return tx.Delete(&client).Error
	})
	if err != nil {
		return nil, dbError("delete client", err, ErrClientNotFound)
	}

	return &client, nil
}

// ClientImportRow is one parsed line of a client spreadsheet.
// Columns: 0 client number, 1 mandate date (ignored), 2 full name.
type ClientImportRow struct {
	Line         int
	ClientNumber int
	FullName     string
}

// ParseClientRow parses a raw record. blank is true for rows with neither
// a number nor a name, which are ignored without error.
func ParseClientRow(line int, cols []string) (row ClientImportRow, blank bool, err error) {
	number := cell(cols, 0)
	name := SanitizeText(cell(cols, 2))

	if number == "" && name == "" {
		return row, true, nil
	}
	n, ok := parseClientNumber(number)
	if !ok || name == "" {
		return row, false, ValidationError("Row %d: missing required data", line)
	}

	return ClientImportRow{Line: line, ClientNumber: n, FullName: name}, false, nil
}

// ImportClients inserts the clients found in records. Existing client
// numbers are skipped silently; invalid rows are reported and skipped.
// Successful rows commit together.
func ImportClients(db *gorm.DB, records [][]string) (*ImportResult, error) {
	result := &ImportResult{Errors: []string{}}

	err := db.Transaction(func(tx *gorm.DB) error {
		for i, cols := range records {
			row, blank, err := ParseClientRow(i+1, cols)
			if blank {
				continue
			}
			if err != nil {
				result.Errors = append(result.Errors, err.Error())
				continue
			}

			// Nested transaction = savepoint; a failing row leaves no writes behind
			created := false
			err = tx.Transaction(func(rowTx *gorm.DB) error {
				var exists int64
				if err := rowTx.Model(&models.Client{}).Where("client_number = ?", row.ClientNumber).Count(&exists).Error; err != nil {
					return err
				}
				if exists > 0 {
					return nil
				}
				created = true
				return rowTx.Create(&models.Client{ClientNumber: row.ClientNumber, FullName: row.FullName}).Error
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
		return nil, PersistenceError("import clients", err)
	}

	return result, nil
}

// isConnectionError reports failures that make continuing the batch pointless
func isConnectionError(err error) bool {
	return errors.Is(err, gorm.ErrInvalidDB) || errors.Is(err, gorm.ErrInvalidTransaction)
}
