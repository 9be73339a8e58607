package services

import (
	"errors"
	"strings"

	"claims_crm_go/models"

	"gorm.io/gorm"
)

// AdminInput holds the fields for a new admin account
type AdminInput struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
	Role      string
}

// MinAdminPasswordLength is the shortest admin password accepted
const MinAdminPasswordLength = 8

// CreateAdmin validates and inserts an admin account
func CreateAdmin(db *gorm.DB, input AdminInput) (*models.Admin, error) {
	input.Username = strings.TrimSpace(input.Username)
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))

	if input.Username == "" {
		return nil, ValidationError("Username is required")
	}
	if input.Email == "" || !strings.Contains(input.Email, "@") {
		return nil, ValidationError("A valid email is required")
	}
	if len(input.Password) < MinAdminPasswordLength {
		return nil, ValidationError("Password must be at least %d characters", MinAdminPasswordLength)
	}
	if input.Role == "" {
		input.Role = models.AdminRoleAdmin
	}
	if input.Role != models.AdminRoleAdmin && input.Role != models.AdminRoleSuperAdmin {
		return nil, ValidationError("Invalid role %q", input.Role)
	}

	var existing models.Admin
	err := db.Where("username = ? OR email = ?", input.Username, input.Email).First(&existing).Error
	if err == nil {
		return nil, newError(KindConflict, "Username or email already in use")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, PersistenceError("admin lookup", err)
	}

	hash, err := HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	admin := &models.Admin{
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(input.FirstName),
		LastName:     strings.TrimSpace(input.LastName),
		Role:         input.Role,
		IsActive:     true,
	}
	if err := db.Create(admin).Error; err != nil {
		return nil, PersistenceError("create admin", err)
	}
	return admin, nil
}
