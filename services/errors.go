package services

import (
	"errors"
	"fmt"
	"log"

	"gorm.io/gorm"
)

// ErrorKind classifies service failures so the HTTP layer can map them
type ErrorKind int

const (
	KindValidation ErrorKind = iota + 1
	KindNotFound
	KindConflict
	KindUnauthorized
	KindForbidden
	KindStorage
	KindPersistence
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindStorage:
		return "storage"
	case KindPersistence:
		return "persistence"
	default:
		return "unknown"
	}
}

// ServiceError carries a kind, a caller-safe message and an optional cause
type ServiceError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// Is matches sentinels by identity of kind and message, so wrapped copies
// created with WithCause still satisfy errors.Is.
func (e *ServiceError) Is(target error) bool {
	t, ok := target.(*ServiceError)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Message == t.Message
}

// WithCause returns a copy of the sentinel that wraps err
func (e *ServiceError) WithCause(err error) *ServiceError {
	return &ServiceError{Kind: e.Kind, Message: e.Message, Err: err}
}

func newError(kind ErrorKind, msg string) *ServiceError {
	return &ServiceError{Kind: kind, Message: msg}
}

// Sentinel errors
var (
	ErrInvalidCredentials    = newError(KindUnauthorized, "Invalid credentials")
	ErrAccountNotProvisioned = newError(KindUnauthorized, "Client not found or portal access not activated")
	ErrNotAuthenticated      = newError(KindUnauthorized, "Authentication required")
	ErrSessionExpired        = newError(KindUnauthorized, "Session expired")
	ErrAccessDenied          = newError(KindForbidden, "Access denied")

	ErrClientNotFound   = newError(KindNotFound, "Client not found")
	ErrPracticeNotFound = newError(KindNotFound, "Practice not found")
	ErrDocumentNotFound = newError(KindNotFound, "Document not found")
	ErrAdminNotFound    = newError(KindNotFound, "Admin not found")
	ErrFileMissing      = newError(KindNotFound, "File not found on storage")

	ErrDuplicateClientNumber = newError(KindConflict, "Client number already exists")
	ErrDuplicateTaxCode      = newError(KindConflict, "Tax code already registered")
	ErrHasDependentPractices = newError(KindConflict, "Cannot delete a client with associated practices")

	ErrInvalidUpload = newError(KindValidation, "File upload failed")
	ErrFileTooLarge  = newError(KindValidation, "File too large (max 10MB)")
	ErrStatusUnknown = newError(KindValidation, "Unknown practice status")
	ErrBankUnknown   = newError(KindValidation, "Unknown bank")
)

// ValidationError builds a validation failure surfaced verbatim to the caller
func ValidationError(format string, args ...interface{}) *ServiceError {
	return newError(KindValidation, fmt.Sprintf(format, args...))
}

// StorageError wraps a file storage failure
func StorageError(op string, err error) *ServiceError {
	log.Printf("[STORAGE] %s failed: %v", op, err)
	return &ServiceError{Kind: KindStorage, Message: "Storage error", Err: err}
}

// PersistenceError wraps a database failure. The cause is logged here and
// never shown to callers.
func PersistenceError(op string, err error) *ServiceError {
	log.Printf("[DB] %s failed: %v", op, err)
	return &ServiceError{Kind: KindPersistence, Message: "Server error", Err: err}
}

// KindOf returns the kind of err, or KindPersistence for anything unclassified
func KindOf(err error) ErrorKind {
	var se *ServiceError
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindPersistence
}

// dbError maps a gorm error to a service error; record-not-found becomes notFound
func dbError(op string, err error, notFound *ServiceError) error {
	if err == nil {
		return nil
	}
	var se *ServiceError
	if errors.As(err, &se) {
		return err
	}
	if notFound != nil && errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound
	}
	return PersistenceError(op, err)
}
