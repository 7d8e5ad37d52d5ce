package models

import (
	"time"

	"github.com/google/uuid"
)

// User representa um usuário da plataforma.
// JSON field names follow the portal wire format (camelCase).
type User struct {
	ID                uuid.UUID  `json:"id"`
	FirstName         string     `json:"firstName"`
	LastName          string     `json:"lastName"`
	Email             string     `json:"email"`
	Phone             string     `json:"phone"`
	Address           string     `json:"address"`
	PasswordHash      string     `json:"-"`
	UserTypeID        uuid.UUID  `json:"userTypeId"`
	BankName          *string    `json:"bankName,omitempty"`
	BankIfscCode      *string    `json:"bankIfscCode,omitempty"`
	BankAccountNumber *string    `json:"bankAccountNumber,omitempty"`
	BankAddress       *string    `json:"bankAddress,omitempty"`
	Picture           *string    `json:"picture,omitempty"`
	IsActive          bool       `json:"isActive"`
	IsDeleted         bool       `json:"isDeleted"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
	UserType          *UserType  `json:"userType,omitempty"`
}

// UserType representa o papel (role) de um usuário.
type UserType struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// PredefinedUserTypes são os papéis fixos da hierarquia.
// These role names can never be deleted.
var PredefinedUserTypes = []string{"superadmin", "admin", "manager", "user"}

// IsPredefinedUserType reports whether name is one of the fixed hierarchy roles
func IsPredefinedUserType(name string) bool {
	for _, t := range PredefinedUserTypes {
		if t == name {
			return true
		}
	}
	return false
}
