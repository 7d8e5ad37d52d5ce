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

// ErrNotFound is returned when a row does not exist
var ErrNotFound = errors.New("not found")

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

const userColumns = `
	u.id, u.first_name, u.last_name, u.email, u.phone, u.address, u.password_hash,
	u.user_type_id, u.bank_name, u.bank_ifsc_code, u.bank_account_number, u.bank_address,
	u.picture, u.is_active, u.is_deleted, u.created_at, u.updated_at,
	t.id, t.name, t.is_active, t.created_at, t.updated_at
`

func scanUser(row pgx.Row) (*models.User, error) {
	var user models.User
	var userType models.UserType

	err := row.Scan(
		&user.ID,
		&user.FirstName,
		&user.LastName,
		&user.Email,
		&user.Phone,
		&user.Address,
		&user.PasswordHash,
		&user.UserTypeID,
		&user.BankName,
		&user.BankIfscCode,
		&user.BankAccountNumber,
		&user.BankAddress,
		&user.Picture,
		&user.IsActive,
		&user.IsDeleted,
		&user.CreatedAt,
		&user.UpdatedAt,
		&userType.ID,
		&userType.Name,
		&userType.IsActive,
		&userType.CreatedAt,
		&userType.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	user.UserType = &userType
	return &user, nil
}

// CreateUser insere um novo usuário com o hash de senha já calculado
func (r *UserRepository) CreateUser(ctx context.Context, req *models.CreateUserRequest, passwordHash string, userTypeID uuid.UUID) (*models.User, error) {
	query := `
		WITH inserted AS (
			INSERT INTO users (
				first_name, last_name, email, phone, address, password_hash, user_type_id,
				bank_name, bank_ifsc_code, bank_account_number, bank_address, picture
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
			RETURNING *
		)
		SELECT ` + userColumns + `
		FROM inserted u
		JOIN user_types t ON t.id = u.user_type_id
	`

	user, err := scanUser(r.pool.QueryRow(ctx, query,
		req.FirstName, req.LastName, req.Email, req.Phone, req.Address, passwordHash, userTypeID,
		req.BankName, req.BankIfscCode, req.BankAccountNumber, req.BankAddress, req.Picture,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// GetUserByEmail retorna um usuário não deletado pelo email
func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users u
		JOIN user_types t ON t.id = u.user_type_id
		WHERE u.email = $1 AND u.is_deleted = false
	`

	user, err := scanUser(r.pool.QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return user, nil
}

// GetUserByID retorna um usuário pelo ID (inclui soft-deletados)
func (r *UserRepository) GetUserByID(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users u
		JOIN user_types t ON t.id = u.user_type_id
		WHERE u.id = $1
	`

	user, err := scanUser(r.pool.QueryRow(ctx, query, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return user, nil
}

// ListUsers retorna usuários paginados (não deletados por padrão)
func (r *UserRepository) ListUsers(ctx context.Context, includeDeleted bool, page, limit int) ([]models.User, int, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	offset := (page - 1) * limit

	where := "WHERE u.is_deleted = false"
	if includeDeleted {
		where = ""
	}

	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM users u %s`, where)
	var total int
	if err := r.pool.QueryRow(ctx, countQuery).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM users u
		JOIN user_types t ON t.id = u.user_type_id
		%s
		ORDER BY u.created_at DESC
		LIMIT $1 OFFSET $2
	`, userColumns, where)

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, *user)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating users: %w", err)
	}

	return users, total, nil
}

// UpdateUser atualiza apenas os campos presentes na requisição
func (r *UserRepository) UpdateUser(ctx context.Context, userID uuid.UUID, req *models.UpdateUserRequest, userTypeID *uuid.UUID) (*models.User, error) {
	query := `
		WITH updated AS (
			UPDATE users SET
				first_name = COALESCE($2, first_name),
				last_name = COALESCE($3, last_name),
				phone = COALESCE($4, phone),
				email = COALESCE($5, email),
				address = COALESCE($6, address),
				user_type_id = COALESCE($7, user_type_id),
				bank_name = COALESCE($8, bank_name),
				bank_ifsc_code = COALESCE($9, bank_ifsc_code),
				bank_account_number = COALESCE($10, bank_account_number),
				bank_address = COALESCE($11, bank_address),
				picture = COALESCE($12, picture),
				is_active = COALESCE($13, is_active),
				updated_at = NOW()
			WHERE id = $1 AND is_deleted = false
			RETURNING *
		)
		SELECT ` + userColumns + `
		FROM updated u
		JOIN user_types t ON t.id = u.user_type_id
	`

	user, err := scanUser(r.pool.QueryRow(ctx, query, userID,
		req.FirstName, req.LastName, req.Phone, req.Email, req.Address, userTypeID,
		req.BankName, req.BankIfscCode, req.BankAccountNumber, req.BankAddress,
		req.Picture, req.IsActive,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	return user, nil
}

// SoftDeleteUser marca o usuário como deletado (recuperável)
func (r *UserRepository) SoftDeleteUser(ctx context.Context, userID uuid.UUID) error {
	query := `UPDATE users SET is_deleted = true, is_active = false, updated_at = NOW() WHERE id = $1 AND is_deleted = false`

	result, err := r.pool.Exec(ctx, query, userID)
	if err != nil {
		return fmt.Errorf("failed to soft delete user: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// HardDeleteUser remove o usuário definitivamente
func (r *UserRepository) HardDeleteUser(ctx context.Context, userID uuid.UUID) error {
	query := `DELETE FROM users WHERE id = $1`

	result, err := r.pool.Exec(ctx, query, userID)
	if err != nil {
		return fmt.Errorf("failed to hard delete user: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// RecoverUser reverte um soft delete
func (r *UserRepository) RecoverUser(ctx context.Context, userID uuid.UUID) error {
	query := `UPDATE users SET is_deleted = false, is_active = true, updated_at = NOW() WHERE id = $1 AND is_deleted = true`

	result, err := r.pool.Exec(ctx, query, userID)
	if err != nil {
		return fmt.Errorf("failed to recover user: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// ChangeUserType troca o papel do usuário
func (r *UserRepository) ChangeUserType(ctx context.Context, userID, userTypeID uuid.UUID) error {
	query := `UPDATE users SET user_type_id = $2, updated_at = NOW() WHERE id = $1 AND is_deleted = false`

	result, err := r.pool.Exec(ctx, query, userID, userTypeID)
	if err != nil {
		return fmt.Errorf("failed to change user type: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// UpdatePassword grava um novo hash de senha
func (r *UserRepository) UpdatePassword(ctx context.Context, userID uuid.UUID, passwordHash string) error {
	query := `UPDATE users SET password_hash = $2, updated_at = NOW() WHERE id = $1 AND is_deleted = false`

	result, err := r.pool.Exec(ctx, query, userID, passwordHash)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// CountUsers retorna os contadores agregados para o dashboard
func (r *UserRepository) CountUsers(ctx context.Context) (total, active, deleted int, err error) {
	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE is_active = true AND is_deleted = false),
			COUNT(*) FILTER (WHERE is_deleted = true)
		FROM users
	`

	if err = r.pool.QueryRow(ctx, query).Scan(&total, &active, &deleted); err != nil {
		return 0, 0, 0, fmt.Errorf("failed to count users: %w", err)
	}

	return total, active, deleted, nil
}

// MonthlyRegistrations conta registros de usuários por mês (últimos n meses)
func (r *UserRepository) MonthlyRegistrations(ctx context.Context, months int) ([]string, []int, error) {
	query := `
		SELECT to_char(month, 'Mon') AS label,
		       COALESCE(COUNT(u.id), 0) AS registrations
		FROM generate_series(
			date_trunc('month', NOW()) - ($1 - 1) * INTERVAL '1 month',
			date_trunc('month', NOW()),
			INTERVAL '1 month'
		) AS month
		LEFT JOIN users u ON date_trunc('month', u.created_at) = month
		GROUP BY month
		ORDER BY month
	`

	rows, err := r.pool.Query(ctx, query, months)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query monthly registrations: %w", err)
	}
	defer rows.Close()

	var labels []string
	var counts []int
	for rows.Next() {
		var label string
		var count int
		if err := rows.Scan(&label, &count); err != nil {
			return nil, nil, fmt.Errorf("failed to scan monthly registrations: %w", err)
		}
		labels = append(labels, label)
		counts = append(counts, count)
	}

	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("error iterating monthly registrations: %w", err)
	}

	return labels, counts, nil
}
