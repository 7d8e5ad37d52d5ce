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

// ErrPredefinedUserType is returned when deleting a fixed hierarchy role
var ErrPredefinedUserType = errors.New("predefined user types cannot be deleted")

type UserTypeRepository struct {
	pool *pgxpool.Pool
}

func NewUserTypeRepository(pool *pgxpool.Pool) *UserTypeRepository {
	return &UserTypeRepository{pool: pool}
}

// GetAllUserTypes retorna todos os tipos de usuário
func (r *UserTypeRepository) GetAllUserTypes(ctx context.Context) ([]models.UserType, error) {
	query := `
		SELECT id, name, is_active, created_at, updated_at
		FROM user_types
		ORDER BY name ASC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query user types: %w", err)
	}
	defer rows.Close()

	var userTypes []models.UserType
	for rows.Next() {
		var userType models.UserType
		if err := rows.Scan(
			&userType.ID,
			&userType.Name,
			&userType.IsActive,
			&userType.CreatedAt,
			&userType.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan user type: %w", err)
		}
		userTypes = append(userTypes, userType)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating user types: %w", err)
	}

	return userTypes, nil
}

// GetUserTypeByID retorna um tipo de usuário por ID
func (r *UserTypeRepository) GetUserTypeByID(ctx context.Context, userTypeID uuid.UUID) (*models.UserType, error) {
	query := `
		SELECT id, name, is_active, created_at, updated_at
		FROM user_types
		WHERE id = $1
	`

	var userType models.UserType
	err := r.pool.QueryRow(ctx, query, userTypeID).Scan(
		&userType.ID,
		&userType.Name,
		&userType.IsActive,
		&userType.CreatedAt,
		&userType.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user type: %w", err)
	}

	return &userType, nil
}

// GetUserTypeByName retorna um tipo de usuário pelo nome (case-insensitive)
func (r *UserTypeRepository) GetUserTypeByName(ctx context.Context, name string) (*models.UserType, error) {
	query := `
		SELECT id, name, is_active, created_at, updated_at
		FROM user_types
		WHERE LOWER(name) = LOWER($1)
	`

	var userType models.UserType
	err := r.pool.QueryRow(ctx, query, name).Scan(
		&userType.ID,
		&userType.Name,
		&userType.IsActive,
		&userType.CreatedAt,
		&userType.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user type by name: %w", err)
	}

	return &userType, nil
}

// CreateUserType cria um novo tipo de usuário
func (r *UserTypeRepository) CreateUserType(ctx context.Context, name string) (*models.UserType, error) {
	query := `
		INSERT INTO user_types (name)
		VALUES ($1)
		RETURNING id, name, is_active, created_at, updated_at
	`

	var userType models.UserType
	err := r.pool.QueryRow(ctx, query, name).Scan(
		&userType.ID,
		&userType.Name,
		&userType.IsActive,
		&userType.CreatedAt,
		&userType.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create user type: %w", err)
	}

	return &userType, nil
}

// UpdateUserType atualiza um tipo de usuário existente
func (r *UserTypeRepository) UpdateUserType(ctx context.Context, userTypeID uuid.UUID, name *string, isActive *bool) (*models.UserType, error) {
	query := `
		UPDATE user_types
		SET name = COALESCE($2, name), is_active = COALESCE($3, is_active), updated_at = NOW()
		WHERE id = $1
		RETURNING id, name, is_active, created_at, updated_at
	`

	var userType models.UserType
	err := r.pool.QueryRow(ctx, query, userTypeID, name, isActive).Scan(
		&userType.ID,
		&userType.Name,
		&userType.IsActive,
		&userType.CreatedAt,
		&userType.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update user type: %w", err)
	}

	return &userType, nil
}

// DeleteUserType deleta um tipo de usuário (papéis fixos são protegidos)
func (r *UserTypeRepository) DeleteUserType(ctx context.Context, userTypeID uuid.UUID) error {
	userType, err := r.GetUserTypeByID(ctx, userTypeID)
	if err != nil {
		return err
	}

	if models.IsPredefinedUserType(userType.Name) {
		return ErrPredefinedUserType
	}

	// Verifica se há usuários usando este tipo
	var count int
	checkQuery := `SELECT COUNT(*) FROM users WHERE user_type_id = $1`
	if err := r.pool.QueryRow(ctx, checkQuery, userTypeID).Scan(&count); err != nil {
		return fmt.Errorf("failed to check user type usage: %w", err)
	}

	if count > 0 {
		return fmt.Errorf("cannot delete user type: %d users are using this type", count)
	}

	deleteQuery := `DELETE FROM user_types WHERE id = $1`
	result, err := r.pool.Exec(ctx, deleteQuery, userTypeID)
	if err != nil {
		return fmt.Errorf("failed to delete user type: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// CountUserTypes conta os tipos de usuário cadastrados
func (r *UserTypeRepository) CountUserTypes(ctx context.Context) (int, error) {
	var count int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM user_types`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count user types: %w", err)
	}
	return count, nil
}
