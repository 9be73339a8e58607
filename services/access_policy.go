package services

import (
	"claims_crm_go/models"
)

// AuthorizePracticeView allows admins to view any practice and clients to
// view only their own.
func AuthorizePracticeView(principal models.Principal, practice *models.Practice) error {
	switch p := principal.(type) {
	case models.AdminPrincipal:
		return nil
	case models.ClientPrincipal:
		if practice != nil && practice.ClientID == p.ID {
			return nil
		}
		LogSecurityEvent("PRACTICE_ACCESS_DENIED", p.ID, "practice "+practiceIDOf(practice))
		return ErrAccessDenied
	default:
		return ErrNotAuthenticated
	}
}

// VisibleDocuments filters docs down to what the principal may see
func VisibleDocuments(principal models.Principal, docs []models.Document) []models.Document {
	if _, ok := principal.(models.AdminPrincipal); ok {
		return docs
	}
	visible := make([]models.Document, 0, len(docs))
	for _, d := range docs {
		if d.IsClientVisible() {
			visible = append(visible, d)
		}
	}
	return visible
}

// CanDownload reports whether the principal may fetch the document's bytes.
// The document must have its owning client loaded.
func CanDownload(principal models.Principal, doc *models.Document) error {
	switch p := principal.(type) {
	case models.AdminPrincipal:
		return nil
	case models.ClientPrincipal:
		if doc.IsClientVisible() && doc.ClientID == p.ID {
			return nil
		}
		LogSecurityEvent("DOCUMENT_ACCESS_DENIED", p.ID, "document "+doc.ID)
		return ErrAccessDenied
	default:
		return ErrNotAuthenticated
	}
}

func practiceIDOf(p *models.Practice) string {
	if p == nil {
		return "<nil>"
	}
	return p.ID
}
