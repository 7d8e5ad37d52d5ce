package client

import (
	"encoding/json"
	"time"
)

// User espelha o payload de usuário da API.
type User struct {
	ID                string    `json:"id"`
	FirstName         string    `json:"firstName"`
	LastName          string    `json:"lastName"`
	Email             string    `json:"email"`
	Phone             string    `json:"phone"`
	Address           string    `json:"address"`
	UserTypeID        string    `json:"userTypeId"`
	BankName          *string   `json:"bankName,omitempty"`
	BankIfscCode      *string   `json:"bankIfscCode,omitempty"`
	BankAccountNumber *string   `json:"bankAccountNumber,omitempty"`
	BankAddress       *string   `json:"bankAddress,omitempty"`
	Picture           *string   `json:"picture,omitempty"`
	IsActive          bool      `json:"isActive"`
	IsDeleted         bool      `json:"isDeleted"`
	UserType          *UserType `json:"userType,omitempty"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// Role returns the user's role name, empty when the type is not loaded
func (u *User) Role() string {
	if u.UserType == nil {
		return ""
	}
	return u.UserType.Name
}

// UserType espelha o payload de tipo de usuário da API.
type UserType struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	IsActive bool   `json:"isActive"`
}

// Module espelha o payload de módulo da API. Children é preenchido apenas
// pelo BuildTree; a API devolve a lista plana.
type Module struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	URLSlug     string   `json:"urlSlug"`
	ParentID    *string  `json:"parentId,omitempty"`
	ToolTip     *string  `json:"toolTip,omitempty"`
	Description *string  `json:"description,omitempty"`
	IsActive    bool     `json:"isActive"`
	Children    []Module `json:"children,omitempty"`
}

// UserAccess é a relação usuário↔módulo.
type UserAccess struct {
	ID        string `json:"id"`
	UserID    string `json:"userId"`
	ModuleID  string `json:"moduleId"`
	CreatedBy string `json:"createdBy"`
	IsActive  bool   `json:"isActive"`
}

// Session espelha a sessão do servidor. Expiry é epoch seconds.
type Session struct {
	ID     string `json:"id"`
	UserID string `json:"userId"`
	Expiry int64  `json:"expiry"`
}

// AuthResult é o retorno de login/registro.
type AuthResult struct {
	User         *User    `json:"user"`
	Session      *Session `json:"session"`
	AccessToken  string   `json:"accessToken"`
	RefreshToken string   `json:"refreshToken"`
}

// TokenPair é o retorno da renovação de tokens.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Pagination metadata das listagens.
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// UserList é a página de usuários.
type UserList struct {
	Users      []User     `json:"users"`
	Pagination Pagination `json:"pagination"`
}

// UserModules é o conjunto de módulos de um usuário.
type UserModules struct {
	Modules    []Module     `json:"modules"`
	UserAccess []UserAccess `json:"userAccess"`
}

// BulkResult é o resultado agregado de operações em lote.
type BulkResult struct {
	Requested int    `json:"requested"`
	Succeeded int    `json:"succeeded"`
	Failed    int    `json:"failed"`
	FirstErr  string `json:"firstError,omitempty"`
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
}
