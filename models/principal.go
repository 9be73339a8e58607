package models

// PrincipalKind tags the two kinds of authenticated caller
type PrincipalKind string

const (
	PrincipalAdmin  PrincipalKind = "admin"
	PrincipalClient PrincipalKind = "client"
)

// Principal is the authenticated caller of a request. It is either an
// AdminPrincipal or a ClientPrincipal; the unexported method keeps the set
// closed so access checks switch over exactly these two cases.
type Principal interface {
	Kind() PrincipalKind
	PrincipalID() string
	principal()
}

// AdminPrincipal is a back-office operator
type AdminPrincipal struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	DisplayName string `json:"nome"`
	Role        string `json:"ruolo"`
}

func (AdminPrincipal) Kind() PrincipalKind {
	return PrincipalAdmin
}

func (p AdminPrincipal) PrincipalID() string {
	return p.ID
}

func (AdminPrincipal) principal() {}

// ClientPrincipal is an end client logged into the portal
type ClientPrincipal struct {
	ID           string `json:"id"`
	ClientNumber int    `json:"progressivo_cliente"`
	FullName     string `json:"nome_completo"`
	TaxCode      string `json:"codice_fiscale"`
	Email        string `json:"email,omitempty"`
}

func (ClientPrincipal) Kind() PrincipalKind {
	return PrincipalClient
}

func (p ClientPrincipal) PrincipalID() string {
	return p.ID
}

func (ClientPrincipal) principal() {}

// NewAdminPrincipal builds the principal for an authenticated admin
func NewAdminPrincipal(a *Admin) AdminPrincipal {
	return AdminPrincipal{
		ID:          a.ID,
		Username:    a.Username,
		Email:       a.Email,
		DisplayName: a.DisplayName(),
		Role:        a.Role,
	}
}

// NewClientPrincipal builds the principal for an authenticated client
func NewClientPrincipal(c *Client) ClientPrincipal {
	p := ClientPrincipal{
		ID:           c.ID,
		ClientNumber: c.ClientNumber,
		FullName:     c.FullName,
	}
	if c.TaxCode != nil {
		p.TaxCode = *c.TaxCode
	}
	if c.Email != nil {
		p.Email = *c.Email
	}
	return p
}
