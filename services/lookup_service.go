package services

import (
	"strings"

	"claims_crm_go/models"

	"gorm.io/gorm"
)

// DefaultBankLimit caps the shared bank list when no limit is given
const DefaultBankLimit = 100

// ListStatuses returns every practice status ordered by workflow position
func ListStatuses(db *gorm.DB) ([]models.Status, error) {
	var statuses []models.Status
	if err := db.Order("position ASC, name ASC").Find(&statuses).Error; err != nil {
		return nil, PersistenceError("list statuses", err)
	}
	return statuses, nil
}

// DefaultStatus returns the status assigned to practices created without one
func DefaultStatus(db *gorm.DB) (*models.Status, error) {
	var status models.Status
	err := db.Order("position ASC, created_at ASC").First(&status).Error
	if err != nil {
		return nil, dbError("default status", err, ValidationError("No practice statuses are configured"))
	}
	return &status, nil
}

// ListBanks returns banks ordered by name. A limit of 0 or less returns all.
func ListBanks(db *gorm.DB, search string, limit int) ([]models.Bank, error) {
	query := db.Model(&models.Bank{})
	if search = strings.TrimSpace(search); search != "" {
		query = query.Where("name LIKE ?", likePattern(search))
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	var banks []models.Bank
	if err := query.Order("name ASC").Find(&banks).Error; err != nil {
		return nil, PersistenceError("list banks", err)
	}
	return banks, nil
}

// lookupIndex maps exact names to ids for import reconciliation
type lookupIndex struct {
	banks         map[string]string
	statuses      map[string]string
	defaultStatus string
}

func loadLookupIndex(db *gorm.DB) (*lookupIndex, error) {
	def, err := DefaultStatus(db)
	if err != nil {
		return nil, err
	}

	var banks []models.Bank
	if err := db.Find(&banks).Error; err != nil {
		return nil, err
	}
	var statuses []models.Status
	if err := db.Find(&statuses).Error; err != nil {
		return nil, err
	}

	idx := &lookupIndex{
		banks:         make(map[string]string, len(banks)),
		statuses:      make(map[string]string, len(statuses)),
		defaultStatus: def.ID,
	}
	for _, b := range banks {
		idx.banks[b.Name] = b.ID
	}
	for _, s := range statuses {
		idx.statuses[s.Name] = s.ID
	}
	return idx, nil
}

// bankID resolves a bank by exact name. ok is false for a non-empty name
// with no match.
func (l *lookupIndex) bankID(name string) (id *string, ok bool) {
	if name == "" {
		return nil, true
	}
	if v, found := l.banks[name]; found {
		return &v, true
	}
	return nil, false
}

// statusID resolves a status by exact name, falling back to the default
func (l *lookupIndex) statusID(name string) string {
	if v, found := l.statuses[name]; found {
		return v
	}
	return l.defaultStatus
}
