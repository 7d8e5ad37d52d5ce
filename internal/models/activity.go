package models

import (
	"time"

	"github.com/google/uuid"
)

// Activity types recorded by the platform
const (
	ActivityUserCreated       = "user_created"
	ActivityUserUpdated       = "user_updated"
	ActivityUserDeleted       = "user_deleted"
	ActivityModuleAssigned    = "module_assigned"
	ActivityPermissionChanged = "permission_changed"
	ActivityLogin             = "login"
	ActivityLogout            = "logout"
	ActivityPasswordChanged   = "password_changed"
)

// Activity representa um evento do log de atividades (read-only via API).
type Activity struct {
	ID          uuid.UUID              `json:"id"`
	Type        string                 `json:"type"`
	Description string                 `json:"description"`
	Timestamp   time.Time              `json:"timestamp"`
	UserID      *uuid.UUID             `json:"-"`
	User        *ActivityUser          `json:"user,omitempty"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
}

// ActivityUser é a referência resumida do usuário no feed de atividades
type ActivityUser struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

// ActivityFilters filtra a listagem paginada de atividades
type ActivityFilters struct {
	Type      string
	UserID    *uuid.UUID
	StartDate *time.Time
	EndDate   *time.Time
	Page      int
	Limit     int
}
