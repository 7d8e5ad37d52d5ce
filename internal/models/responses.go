package models

// Envelope is the uniform API response shape consumed by the portals
type Envelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// AuthResponse é o payload de login/registro bem-sucedido
type AuthResponse struct {
	User         *User    `json:"user"`
	Session      *Session `json:"session"`
	AccessToken  string   `json:"accessToken"`
	RefreshToken string   `json:"refreshToken"`
}

// TokenResponse é o payload de renovação de token
type TokenResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken,omitempty"`
}

// Pagination metadata for list responses
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

type UserListResponse struct {
	Users      []User     `json:"users"`
	Pagination Pagination `json:"pagination"`
}

type ModuleListResponse struct {
	Modules []Module `json:"modules"`
}

type UserModulesResponse struct {
	Modules    []Module     `json:"modules"`
	UserAccess []UserAccess `json:"userAccess"`
}

type UserTypeListResponse struct {
	UserTypes []UserType `json:"userTypes"`
}

type ActivityListResponse struct {
	Activities []Activity `json:"activities"`
	Pagination Pagination `json:"pagination"`
}

// BulkResult reports the aggregate outcome of a non-transactional bulk
// operation. Partial success is possible; there is no rollback.
type BulkResult struct {
	Requested int    `json:"requested"`
	Succeeded int    `json:"succeeded"`
	Failed    int    `json:"failed"`
	FirstErr  string `json:"firstError,omitempty"`
}

// DashboardMetrics são os contadores agregados do painel
type DashboardMetrics struct {
	TotalUsers      int `json:"totalUsers"`
	ActiveUsers     int `json:"activeUsers"`
	DeletedUsers    int `json:"deletedUsers"`
	TotalModules    int `json:"totalModules"`
	ActiveModules   int `json:"activeModules"`
	TotalUserTypes  int `json:"totalUserTypes"`
	AssignedModules int `json:"assignedModules"`
}

// UserStats alimenta o gráfico de registros/atividade por mês
type UserStats struct {
	UserRegistrations []int    `json:"userRegistrations"`
	UserActivity      []int    `json:"userActivity"`
	Categories        []string `json:"categories"`
}
