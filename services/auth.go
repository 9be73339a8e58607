package services

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"math/big"
	"strings"
	"sync"
	"time"

	"claims_crm_go/models"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	// BcryptCost is the cost factor for bcrypt hashing
	BcryptCost = 10
	// SessionTokenLength is the length of the session token in bytes (64 chars hex)
	SessionTokenLength = 32
	// DefaultSessionDuration applies when the caller passes a zero TTL
	DefaultSessionDuration = 24 * time.Hour
	// PortalPasswordLength is the length of generated client passwords
	PortalPasswordLength = 8
)

const portalPasswordAlphabet = "abcdefghijkmnpqrstuvwxyzABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// dummyHash is compared against when a login lookup misses, so both failure
// paths cost one bcrypt comparison.
var dummyHash = sync.OnceValue(func() []byte {
	h, _ := bcrypt.GenerateFromPassword([]byte("not-a-real-password"), BcryptCost)
	return h
})

// HashPassword hashes a password using bcrypt
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(bytes), nil
}

// VerifyPassword verifies a password against a bcrypt hash
func VerifyPassword(hashedPassword, password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
	return err == nil
}

// AuthenticateAdmin checks the credentials of an active admin identified by
// username or email. Lookup misses and wrong passwords fail identically.
func AuthenticateAdmin(db *gorm.DB, identifier, password string) (*models.Admin, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || password == "" {
		return nil, ValidationError("Username and password are required")
	}

	var admin models.Admin
	err := db.Where("(username = ? OR email = ?) AND is_active = ?", identifier, identifier, true).
		First(&admin).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, PersistenceError("admin lookup", err)
		}
		_ = bcrypt.CompareHashAndPassword(dummyHash(), []byte(password))
		LogSecurityEvent("ADMIN_LOGIN_FAILED", "", "unknown identifier "+identifier)
		return nil, ErrInvalidCredentials
	}

	if !VerifyPassword(admin.PasswordHash, password) {
		LogSecurityEvent("ADMIN_LOGIN_FAILED", admin.ID, "password mismatch")
		return nil, ErrInvalidCredentials
	}

	now := time.Now()
	if err := db.Model(&admin).UpdateColumn("last_access_at", now).Error; err != nil {
		return nil, PersistenceError("admin last access update", err)
	}
	admin.LastAccessAt = &now

	return &admin, nil
}

// AuthenticateClient checks portal credentials of a client by tax code. A
// client without provisioned credentials is reported as not provisioned.
func AuthenticateClient(db *gorm.DB, taxCode, password string) (*models.Client, error) {
	taxCode = NormalizeTaxCode(taxCode)
	if taxCode == "" || password == "" {
		return nil, ValidationError("Tax code and password are required")
	}

	var client models.Client
	err := db.Where("tax_code = ? AND password_hash IS NOT NULL AND password_hash <> ''", taxCode).
		First(&client).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, PersistenceError("client lookup", err)
		}
		return nil, ErrAccountNotProvisioned
	}

	if !VerifyPassword(*client.PasswordHash, password) {
		LogSecurityEvent("CLIENT_LOGIN_FAILED", client.ID, "password mismatch")
		return nil, ErrInvalidCredentials
	}

	return &client, nil
}

// GenerateSessionToken generates a cryptographically secure random token
func GenerateSessionToken() (string, error) {
	bytes := make([]byte, SessionTokenLength)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate session token: %w", err)
	}
	return hex.EncodeToString(bytes), nil
}

// CreateSession creates a new session scoped to the given principal
func CreateSession(db *gorm.DB, principal models.Principal, ipAddress, userAgent string, ttl time.Duration) (*models.Session, error) {
	if ttl <= 0 {
		ttl = DefaultSessionDuration
	}

	token, err := GenerateSessionToken()
	if err != nil {
		return nil, err
	}

	session := &models.Session{
		ID:            uuid.New().String(),
		Token:         token,
		PrincipalType: principal.Kind(),
		ExpiresAt:     time.Now().Add(ttl),
		IPAddress:     ipAddress,
		UserAgent:     userAgent,
	}

	id := principal.PrincipalID()
	switch principal.(type) {
	case models.AdminPrincipal:
		session.AdminID = &id
	case models.ClientPrincipal:
		session.ClientID = &id
	}

	if err := db.Create(session).Error; err != nil {
		return nil, PersistenceError("create session", err)
	}

	return session, nil
}

// ResolveSession validates a session token and returns the principal it is
// scoped to. Expired sessions are deleted.
func ResolveSession(db *gorm.DB, token string) (models.Principal, *models.Session, error) {
	if token == "" {
		return nil, nil, ErrNotAuthenticated
	}

	var session models.Session
	err := db.Preload("Admin").Preload("Client").
		Where("token = ?", token).
		First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrNotAuthenticated
		}
		return nil, nil, PersistenceError("validate session", err)
	}

	if session.IsExpired() {
		db.Delete(&session)
		return nil, nil, ErrSessionExpired
	}

	switch session.PrincipalType {
	case models.PrincipalAdmin:
		if session.Admin == nil || !session.Admin.IsActive {
			db.Delete(&session)
			return nil, nil, ErrNotAuthenticated
		}
		return models.NewAdminPrincipal(session.Admin), &session, nil
	case models.PrincipalClient:
		if session.Client == nil || !session.Client.HasPortalAccess() {
			db.Delete(&session)
			return nil, nil, ErrNotAuthenticated
		}
		return models.NewClientPrincipal(session.Client), &session, nil
	default:
		return nil, nil, ErrNotAuthenticated
	}
}

// EndSession deletes a session (logout). Unknown tokens are not an error.
func EndSession(db *gorm.DB, token string) error {
	if token == "" {
		return nil
	}
	result := db.Where("token = ?", token).Delete(&models.Session{})
	if result.Error != nil {
		return PersistenceError("delete session", result.Error)
	}
	return nil
}

// CleanupExpiredSessions removes all expired sessions from the database
func CleanupExpiredSessions(db *gorm.DB) error {
	result := db.Where("expires_at < ?", time.Now()).Delete(&models.Session{})
	if result.Error != nil {
		return fmt.Errorf("failed to cleanup expired sessions: %w", result.Error)
	}
	if result.RowsAffected > 0 {
		log.Printf("Cleaned up %d expired sessions", result.RowsAffected)
	}
	return nil
}

// GeneratePortalPassword returns a random password for a client account
func GeneratePortalPassword() (string, error) {
	out := make([]byte, PortalPasswordLength)
	max := big.NewInt(int64(len(portalPasswordAlphabet)))
	for i := range out {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to generate password: %w", err)
		}
		out[i] = portalPasswordAlphabet[n.Int64()]
	}
	return string(out), nil
}

// ProvisionClientAccess gives a client portal credentials. The plain password
// is returned once and only its hash is stored. Existing sessions of the
// client are revoked.
func ProvisionClientAccess(db *gorm.DB, clientID string) (*models.Client, string, error) {
	var client models.Client
	if err := db.First(&client, "id = ?", clientID).Error; err != nil {
		return nil, "", dbError("load client", err, ErrClientNotFound)
	}
	if client.TaxCode == nil || *client.TaxCode == "" {
		return nil, "", ValidationError("The client needs a tax code before portal access can be activated")
	}

	password, err := GeneratePortalPassword()
	if err != nil {
		return nil, "", err
	}
	hash, err := HashPassword(password)
	if err != nil {
		return nil, "", err
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&client).Update("password_hash", hash).Error; err != nil {
			return err
		}
		return tx.Where("client_id = ?", client.ID).Delete(&models.Session{}).Error
	})
	if err != nil {
		return nil, "", PersistenceError("provision client access", err)
	}
	client.PasswordHash = &hash

	return &client, password, nil
}

// LogSecurityEvent logs security-related events
func LogSecurityEvent(eventType, principalID, details string) {
	log.Printf("[SECURITY] %s | Principal: %s | Details: %s", eventType, principalID, details)
}
