package models

import "github.com/google/uuid"

// Auth requests

type RegisterRequest struct {
	FirstName string `json:"firstName" binding:"required"`
	LastName  string `json:"lastName" binding:"required"`
	Phone     string `json:"phone" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8"`
	Address   string `json:"address" binding:"required"`
	OTP       string `json:"otp" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	OTP      string `json:"otp" binding:"required"`
}

type ForgotPasswordRequest struct {
	Email       string `json:"email" binding:"required,email"`
	OTP         string `json:"otp" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required,min=8"`
}

type SendOTPRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type VerifyOTPRequest struct {
	Email string `json:"email" binding:"required,email"`
	OTP   string `json:"otp" binding:"required"`
}

type GoogleLoginRequest struct {
	Token string `json:"token" binding:"required"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// User management requests

type CreateUserRequest struct {
	FirstName         string  `json:"firstName" binding:"required"`
	LastName          string  `json:"lastName" binding:"required"`
	Phone             string  `json:"phone" binding:"required"`
	Email             string  `json:"email" binding:"required,email"`
	Password          string  `json:"password" binding:"required,min=8"`
	Address           string  `json:"address" binding:"required"`
	UserTypeID        string  `json:"userTypeId" binding:"required,uuid"`
	BankName          *string `json:"bankName,omitempty"`
	BankIfscCode      *string `json:"bankIfscCode,omitempty"`
	BankAccountNumber *string `json:"bankAccountNumber,omitempty"`
	BankAddress       *string `json:"bankAddress,omitempty"`
	Picture           *string `json:"picture,omitempty"`
}

type UpdateUserRequest struct {
	FirstName         *string `json:"firstName,omitempty"`
	LastName          *string `json:"lastName,omitempty"`
	Phone             *string `json:"phone,omitempty"`
	Email             *string `json:"email,omitempty"`
	Address           *string `json:"address,omitempty"`
	UserTypeID        *string `json:"userTypeId,omitempty"`
	BankName          *string `json:"bankName,omitempty"`
	BankIfscCode      *string `json:"bankIfscCode,omitempty"`
	BankAccountNumber *string `json:"bankAccountNumber,omitempty"`
	BankAddress       *string `json:"bankAddress,omitempty"`
	Picture           *string `json:"picture,omitempty"`
	IsActive          *bool   `json:"isActive,omitempty"`
}

type ChangeUserTypeRequest struct {
	UserTypeID string `json:"userTypeId" binding:"required,uuid"`
}

// Module requests

type CreateModuleRequest struct {
	Name        string  `json:"name" binding:"required"`
	URLSlug     string  `json:"urlSlug" binding:"required"`
	ParentID    *string `json:"parentId,omitempty"`
	ToolTip     *string `json:"toolTip,omitempty"`
	Description *string `json:"description,omitempty"`
}

type UpdateModuleRequest struct {
	Name        *string `json:"name,omitempty"`
	URLSlug     *string `json:"urlSlug,omitempty"`
	ParentID    *string `json:"parentId,omitempty"`
	ToolTip     *string `json:"toolTip,omitempty"`
	Description *string `json:"description,omitempty"`
	IsActive    *bool   `json:"isActive,omitempty"`
}

type BulkUpdateModulesRequest struct {
	Modules []BulkModuleUpdate `json:"modules" binding:"required,min=1"`
}

type BulkModuleUpdate struct {
	ID string `json:"id" binding:"required,uuid"`
	UpdateModuleRequest
}

// Permission requests

type AssignModuleRequest struct {
	UserID   string `json:"userId" binding:"required,uuid"`
	ModuleID string `json:"moduleId" binding:"required,uuid"`
}

type UnassignModuleRequest struct {
	UserID   string `json:"userId" binding:"required,uuid"`
	ModuleID string `json:"moduleId" binding:"required,uuid"`
}

type BulkAssignModulesRequest struct {
	UserID    string   `json:"userId" binding:"required,uuid"`
	ModuleIDs []string `json:"moduleIds" binding:"required,min=1"`
}

// User type requests

type CreateUserTypeRequest struct {
	Name string `json:"name" binding:"required"`
}

type UpdateUserTypeRequest struct {
	Name     *string `json:"name,omitempty"`
	IsActive *bool   `json:"isActive,omitempty"`
}

// ParseOptionalUUID converts a nullable string field to a *uuid.UUID
func ParseOptionalUUID(s *string) (*uuid.UUID, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	id, err := uuid.Parse(*s)
	if err != nil {
		return nil, err
	}
	return &id, nil
}
