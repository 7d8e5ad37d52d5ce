package models

import (
	"time"

	"github.com/google/uuid"
)

// Module representa uma unidade administrativa atribuível a usuários.
// ParentID forms a tree; cycle prevention is enforced at update time.
type Module struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	URLSlug     string     `json:"urlSlug"`
	ParentID    *uuid.UUID `json:"parentId,omitempty"`
	ToolTip     *string    `json:"toolTip,omitempty"`
	Description *string    `json:"description,omitempty"`
	UserID      uuid.UUID  `json:"userId"`
	IsActive    bool       `json:"isActive"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	Children    []Module   `json:"children,omitempty"`
}

// UserAccess liga um usuário a um módulo (relação de permissão).
// At most one active relation exists per (userId, moduleId) pair.
type UserAccess struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"userId"`
	ModuleID  uuid.UUID `json:"moduleId"`
	CreatedBy uuid.UUID `json:"createdBy"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Module    *Module   `json:"module,omitempty"`
}
