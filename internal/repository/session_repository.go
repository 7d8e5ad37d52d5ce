package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/business-admin-api/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type SessionRepository struct {
	pool *pgxpool.Pool
}

func NewSessionRepository(pool *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{pool: pool}
}

// CreateSession cria uma sessão com expiração em epoch seconds
func (r *SessionRepository) CreateSession(ctx context.Context, userID uuid.UUID, expiry time.Time) (*models.Session, error) {
	query := `
		INSERT INTO sessions (user_id, expiry)
		VALUES ($1, $2)
		RETURNING id, user_id, expiry, created_at
	`

	var session models.Session
	var expiryTime time.Time
	err := r.pool.QueryRow(ctx, query, userID, expiry).Scan(
		&session.ID,
		&session.UserID,
		&expiryTime,
		&session.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	session.Expiry = expiryTime.Unix()
	return &session, nil
}

// GetSessionByID retorna uma sessão ativa (não expirada)
func (r *SessionRepository) GetSessionByID(ctx context.Context, sessionID uuid.UUID) (*models.Session, error) {
	query := `
		SELECT id, user_id, expiry, created_at
		FROM sessions
		WHERE id = $1 AND expiry > NOW()
	`

	var session models.Session
	var expiryTime time.Time
	err := r.pool.QueryRow(ctx, query, sessionID).Scan(
		&session.ID,
		&session.UserID,
		&expiryTime,
		&session.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	session.Expiry = expiryTime.Unix()
	return &session, nil
}

// ExtendSession move a expiração da sessão para frente (token refresh)
func (r *SessionRepository) ExtendSession(ctx context.Context, sessionID uuid.UUID, expiry time.Time) error {
	query := `UPDATE sessions SET expiry = $2 WHERE id = $1 AND expiry > NOW()`

	result, err := r.pool.Exec(ctx, query, sessionID, expiry)
	if err != nil {
		return fmt.Errorf("failed to extend session: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// DeleteSession destrói uma sessão (logout)
func (r *SessionRepository) DeleteSession(ctx context.Context, sessionID uuid.UUID) error {
	query := `DELETE FROM sessions WHERE id = $1`

	if _, err := r.pool.Exec(ctx, query, sessionID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	return nil
}

// DeleteUserSessions destrói todas as sessões de um usuário (logout all)
func (r *SessionRepository) DeleteUserSessions(ctx context.Context, userID uuid.UUID) error {
	query := `DELETE FROM sessions WHERE user_id = $1`

	if _, err := r.pool.Exec(ctx, query, userID); err != nil {
		return fmt.Errorf("failed to delete user sessions: %w", err)
	}

	return nil
}

// PurgeExpiredSessions remove sessões vencidas (housekeeping)
func (r *SessionRepository) PurgeExpiredSessions(ctx context.Context) (int64, error) {
	query := `DELETE FROM sessions WHERE expiry <= NOW()`

	result, err := r.pool.Exec(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("failed to purge sessions: %w", err)
	}

	return result.RowsAffected(), nil
}
