package repository

import (
	"context"
	"fmt"

	"github.com/business-admin-api/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PermissionRepository struct {
	pool *pgxpool.Pool
}

func NewPermissionRepository(pool *pgxpool.Pool) *PermissionRepository {
	return &PermissionRepository{pool: pool}
}

// GetUserModules retorna os módulos atribuídos a um usuário junto com as
// relações de acesso
func (r *PermissionRepository) GetUserModules(ctx context.Context, userID uuid.UUID) ([]models.Module, []models.UserAccess, error) {
	query := `
		SELECT
			m.id, m.name, m.url_slug, m.parent_id, m.tool_tip, m.description,
			m.user_id, m.is_active, m.created_at, m.updated_at,
			a.id, a.user_id, a.module_id, a.created_by, a.is_active, a.created_at, a.updated_at
		FROM user_access a
		JOIN modules m ON m.id = a.module_id
		WHERE a.user_id = $1 AND a.is_active = true
		ORDER BY m.name ASC
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query user modules: %w", err)
	}
	defer rows.Close()

	var modules []models.Module
	var access []models.UserAccess
	for rows.Next() {
		var m models.Module
		var a models.UserAccess
		if err := rows.Scan(
			&m.ID, &m.Name, &m.URLSlug, &m.ParentID, &m.ToolTip, &m.Description,
			&m.UserID, &m.IsActive, &m.CreatedAt, &m.UpdatedAt,
			&a.ID, &a.UserID, &a.ModuleID, &a.CreatedBy, &a.IsActive, &a.CreatedAt, &a.UpdatedAt,
		); err != nil {
			return nil, nil, fmt.Errorf("failed to scan user module: %w", err)
		}
		modules = append(modules, m)
		access = append(access, a)
	}

	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("error iterating user modules: %w", err)
	}

	return modules, access, nil
}

// AssignModule cria a relação usuário↔módulo. Idempotent: assigning an
// already-assigned pair is a no-op.
func (r *PermissionRepository) AssignModule(ctx context.Context, userID, moduleID, createdBy uuid.UUID) error {
	query := `
		INSERT INTO user_access (user_id, module_id, created_by)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, module_id) DO NOTHING
	`

	if _, err := r.pool.Exec(ctx, query, userID, moduleID, createdBy); err != nil {
		return fmt.Errorf("failed to assign module: %w", err)
	}

	return nil
}

// UnassignModule remove a relação usuário↔módulo
func (r *PermissionRepository) UnassignModule(ctx context.Context, userID, moduleID uuid.UUID) error {
	query := `DELETE FROM user_access WHERE user_id = $1 AND module_id = $2`

	result, err := r.pool.Exec(ctx, query, userID, moduleID)
	if err != nil {
		return fmt.Errorf("failed to unassign module: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// CountAssignments conta as relações ativas (dashboard)
func (r *PermissionRepository) CountAssignments(ctx context.Context) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM user_access WHERE is_active = true`
	if err := r.pool.QueryRow(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count assignments: %w", err)
	}
	return count, nil
}
