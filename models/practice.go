package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Two-valued flags stored as text, kept readable in exports
const (
	FlagYes = "Yes"
	FlagNo  = "No"
)

const (
	AcceptancePending  = "Pending"
	AcceptanceAccepted = "Accepted"
	AcceptanceRejected = "Rejected"

	CollectorAssociation = "Association"
	CollectorClient      = "Client"
)

// DefaultMandatePercentage applies when a practice is created without one
var DefaultMandatePercentage = decimal.RequireFromString("0.50")

// Practice is a claim case file owned by exactly one client
type Practice struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `gorm:"index" json:"updated_at"`

	ClientID       string `gorm:"type:uuid;not null;index;index:idx_practice_client_contract" json:"cliente_id"`
	ContractNumber string `gorm:"not null;index:idx_practice_client_contract" json:"numero_contratto"`

	MandateDate      *datatypes.Date `json:"data_mandato"`
	ContractDate     *datatypes.Date `json:"data_contratto"`
	ContractDuration *int            `json:"durata_contratto"` // months

	BankID            *string             `gorm:"type:uuid;index" json:"banca_id"`
	MandatePercentage decimal.Decimal     `gorm:"type:decimal(5,4);not null" json:"percentuale_mandato"`
	CollectedAmount   decimal.NullDecimal `gorm:"type:decimal(12,2)" json:"euro_incasso"`
	StatusID          string              `gorm:"type:uuid;not null;index" json:"stato_pratica_id"`

	ClaimAmount      decimal.NullDecimal `gorm:"type:decimal(12,2)" json:"importo_reclamo"`
	InternalProposal decimal.NullDecimal `gorm:"type:decimal(12,2)" json:"proposta_intutela"`
	BankProposal     decimal.NullDecimal `gorm:"type:decimal(12,2)" json:"proposta_banca"`
	BankAcceptance   string              `gorm:"not null;default:Pending" json:"accettazione_banca"`

	CollectionMethod  *string `json:"modalita_incasso"`
	WhoCollects       string  `gorm:"not null;default:Association" json:"chi_incassa"`
	CollectionReceipt string  `gorm:"not null;default:No" json:"quietanza_incasso"`

	PecRecordsAccessDate  *datatypes.Date `json:"data_pec_accesso_atti"`
	RecordsAccessDeadline *datatypes.Date `json:"scadenza_accesso_atti"`
	PecClaimDate          *datatypes.Date `json:"data_pec_reclamo"`
	ClaimDeadline         *datatypes.Date `json:"scadenza_reclamo"`
	PowerOfAttorney       string          `gorm:"not null;default:No" json:"procura_ricorso"`

	Notes *string `gorm:"type:text" json:"note"`

	// Relationships
	Client    *Client    `gorm:"foreignKey:ClientID" json:"-"`
	Bank      *Bank      `gorm:"foreignKey:BankID" json:"-"`
	Status    *Status    `gorm:"foreignKey:StatusID" json:"-"`
	Documents []Document `gorm:"foreignKey:PracticeID" json:"documenti,omitempty"`

	// Display fields flattened from the relationships above
	ClientName    string `gorm:"-" json:"cliente_nome,omitempty"`
	ClientNumber  int    `gorm:"-" json:"progressivo_cliente,omitempty"`
	ClientTaxCode string `gorm:"-" json:"codice_fiscale,omitempty"`
	StatusName    string `gorm:"-" json:"stato_nome,omitempty"`
	StatusColor   string `gorm:"-" json:"stato_colore,omitempty"`
	BankName      string `gorm:"-" json:"banca_nome,omitempty"`
	DocumentCount int64  `gorm:"-" json:"num_documenti"`
}

// BeforeCreate hook to generate UUID
func (p *Practice) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return nil
}

// Flatten copies display fields from loaded relationships
func (p *Practice) Flatten() {
	if p.Client != nil {
		p.ClientName = p.Client.FullName
		p.ClientNumber = p.Client.ClientNumber
		if p.Client.TaxCode != nil {
			p.ClientTaxCode = *p.Client.TaxCode
		}
	}
	if p.Status != nil {
		p.StatusName = p.Status.Name
		p.StatusColor = p.Status.Color
	}
	if p.Bank != nil {
		p.BankName = p.Bank.Name
	}
}

// TableName specifies the table name for Practice model
func (Practice) TableName() string {
	return "practices"
}
