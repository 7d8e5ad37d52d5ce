package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/business-admin-api/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ModuleRepository struct {
	pool *pgxpool.Pool
}

func NewModuleRepository(pool *pgxpool.Pool) *ModuleRepository {
	return &ModuleRepository{pool: pool}
}

const moduleColumns = `id, name, url_slug, parent_id, tool_tip, description, user_id, is_active, created_at, updated_at`

func scanModule(row pgx.Row) (*models.Module, error) {
	var module models.Module
	err := row.Scan(
		&module.ID,
		&module.Name,
		&module.URLSlug,
		&module.ParentID,
		&module.ToolTip,
		&module.Description,
		&module.UserID,
		&module.IsActive,
		&module.CreatedAt,
		&module.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &module, nil
}

// GetAllModules retorna todos os módulos (lista plana)
func (r *ModuleRepository) GetAllModules(ctx context.Context) ([]models.Module, error) {
	query := `
		SELECT ` + moduleColumns + `
		FROM modules
		ORDER BY name ASC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query modules: %w", err)
	}
	defer rows.Close()

	var modules []models.Module
	for rows.Next() {
		module, err := scanModule(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan module: %w", err)
		}
		modules = append(modules, *module)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating modules: %w", err)
	}

	return modules, nil
}

// GetModuleByID retorna um módulo por ID
func (r *ModuleRepository) GetModuleByID(ctx context.Context, moduleID uuid.UUID) (*models.Module, error) {
	query := `
		SELECT ` + moduleColumns + `
		FROM modules
		WHERE id = $1
	`

	module, err := scanModule(r.pool.QueryRow(ctx, query, moduleID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get module: %w", err)
	}

	return module, nil
}

// CreateModule cria um novo módulo
func (r *ModuleRepository) CreateModule(ctx context.Context, req *models.CreateModuleRequest, parentID *uuid.UUID, createdBy uuid.UUID) (*models.Module, error) {
	query := `
		INSERT INTO modules (name, url_slug, parent_id, tool_tip, description, user_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + moduleColumns + `
	`

	module, err := scanModule(r.pool.QueryRow(ctx, query,
		req.Name, req.URLSlug, parentID, req.ToolTip, req.Description, createdBy,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create module: %w", err)
	}

	return module, nil
}

// UpdateModule atualiza apenas os campos presentes. clearParent remove o pai
// quando a requisição envia parentId vazio.
func (r *ModuleRepository) UpdateModule(ctx context.Context, moduleID uuid.UUID, req *models.UpdateModuleRequest, parentID *uuid.UUID, clearParent bool) (*models.Module, error) {
	query := `
		UPDATE modules SET
			name = COALESCE($2, name),
			url_slug = COALESCE($3, url_slug),
			parent_id = CASE WHEN $4 THEN NULL ELSE COALESCE($5, parent_id) END,
			tool_tip = COALESCE($6, tool_tip),
			description = COALESCE($7, description),
			is_active = COALESCE($8, is_active),
			updated_at = NOW()
		WHERE id = $1
		RETURNING ` + moduleColumns + `
	`

	module, err := scanModule(r.pool.QueryRow(ctx, query, moduleID,
		req.Name, req.URLSlug, clearParent, parentID, req.ToolTip, req.Description, req.IsActive,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update module: %w", err)
	}

	return module, nil
}

// DeactivateModule marca um módulo como inativo
func (r *ModuleRepository) DeactivateModule(ctx context.Context, moduleID uuid.UUID) error {
	query := `UPDATE modules SET is_active = false, updated_at = NOW() WHERE id = $1`

	result, err := r.pool.Exec(ctx, query, moduleID)
	if err != nil {
		return fmt.Errorf("failed to deactivate module: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// DeleteModule deleta um módulo (filhos são promovidos a raiz)
func (r *ModuleRepository) DeleteModule(ctx context.Context, moduleID uuid.UUID) error {
	// Promote children before removing the parent so the tree stays valid
	promoteQuery := `UPDATE modules SET parent_id = NULL, updated_at = NOW() WHERE parent_id = $1`
	if _, err := r.pool.Exec(ctx, promoteQuery, moduleID); err != nil {
		return fmt.Errorf("failed to promote child modules: %w", err)
	}

	deleteQuery := `DELETE FROM modules WHERE id = $1`
	result, err := r.pool.Exec(ctx, deleteQuery, moduleID)
	if err != nil {
		return fmt.Errorf("failed to delete module: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// CheckSlugExists verifica se o url_slug já existe (para outro módulo)
func (r *ModuleRepository) CheckSlugExists(ctx context.Context, slug string, excludeID *uuid.UUID) (bool, error) {
	var query string
	var args []interface{}

	if excludeID != nil {
		query = `SELECT EXISTS(SELECT 1 FROM modules WHERE url_slug = $1 AND id != $2)`
		args = []interface{}{slug, *excludeID}
	} else {
		query = `SELECT EXISTS(SELECT 1 FROM modules WHERE url_slug = $1)`
		args = []interface{}{slug}
	}

	var exists bool
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check slug existence: %w", err)
	}

	return exists, nil
}

// GetParentMap retorna o mapa id→parent_id de todos os módulos.
// Used by the hierarchy service for the ancestor-chain cycle check.
func (r *ModuleRepository) GetParentMap(ctx context.Context) (map[uuid.UUID]*uuid.UUID, error) {
	query := `SELECT id, parent_id FROM modules`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query module parents: %w", err)
	}
	defer rows.Close()

	parents := make(map[uuid.UUID]*uuid.UUID)
	for rows.Next() {
		var id uuid.UUID
		var parentID *uuid.UUID
		if err := rows.Scan(&id, &parentID); err != nil {
			return nil, fmt.Errorf("failed to scan module parent: %w", err)
		}
		parents[id] = parentID
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating module parents: %w", err)
	}

	return parents, nil
}

// CountModules retorna total e ativos para o dashboard
func (r *ModuleRepository) CountModules(ctx context.Context) (total, active int, err error) {
	query := `
		SELECT COUNT(*), COUNT(*) FILTER (WHERE is_active = true)
		FROM modules
	`

	if err = r.pool.QueryRow(ctx, query).Scan(&total, &active); err != nil {
		return 0, 0, fmt.Errorf("failed to count modules: %w", err)
	}

	return total, active, nil
}
