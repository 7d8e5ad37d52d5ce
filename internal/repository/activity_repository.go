package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/business-admin-api/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ActivityRepository struct {
	pool *pgxpool.Pool
}

func NewActivityRepository(pool *pgxpool.Pool) *ActivityRepository {
	return &ActivityRepository{pool: pool}
}

// RecordActivity insere um evento no log de atividades
func (r *ActivityRepository) RecordActivity(ctx context.Context, activityType, description string, userID *uuid.UUID, metadata map[string]interface{}) error {
	query := `
		INSERT INTO activities (type, description, user_id, metadata)
		VALUES ($1, $2, $3, $4)
	`

	if _, err := r.pool.Exec(ctx, query, activityType, description, userID, metadata); err != nil {
		return fmt.Errorf("failed to record activity: %w", err)
	}

	return nil
}

// ListActivities retorna o feed paginado, com filtros opcionais
func (r *ActivityRepository) ListActivities(ctx context.Context, filters models.ActivityFilters) ([]models.Activity, int, error) {
	page := filters.Page
	limit := filters.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	offset := (page - 1) * limit

	var conditions []string
	var args []interface{}

	if filters.Type != "" {
		args = append(args, filters.Type)
		conditions = append(conditions, fmt.Sprintf("a.type = $%d", len(args)))
	}
	if filters.UserID != nil {
		args = append(args, *filters.UserID)
		conditions = append(conditions, fmt.Sprintf("a.user_id = $%d", len(args)))
	}
	if filters.StartDate != nil {
		args = append(args, *filters.StartDate)
		conditions = append(conditions, fmt.Sprintf("a.created_at >= $%d", len(args)))
	}
	if filters.EndDate != nil {
		args = append(args, *filters.EndDate)
		conditions = append(conditions, fmt.Sprintf("a.created_at <= $%d", len(args)))
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM activities a %s`, where)
	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count activities: %w", err)
	}

	args = append(args, limit, offset)
	query := fmt.Sprintf(`
		SELECT a.id, a.type, a.description, a.created_at, a.user_id, a.metadata,
		       u.first_name, u.last_name, u.email
		FROM activities a
		LEFT JOIN users u ON u.id = a.user_id
		%s
		ORDER BY a.created_at DESC
		LIMIT $%d OFFSET $%d
	`, where, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query activities: %w", err)
	}
	defer rows.Close()

	var activities []models.Activity
	for rows.Next() {
		var activity models.Activity
		var firstName, lastName, email *string
		if err := rows.Scan(
			&activity.ID,
			&activity.Type,
			&activity.Description,
			&activity.Timestamp,
			&activity.UserID,
			&activity.Metadata,
			&firstName,
			&lastName,
			&email,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan activity: %w", err)
		}

		if firstName != nil {
			activity.User = &models.ActivityUser{
				FirstName: *firstName,
				LastName:  derefString(lastName),
				Email:     derefString(email),
			}
		}
		activities = append(activities, activity)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating activities: %w", err)
	}

	return activities, total, nil
}

// MonthlyActivity conta eventos por mês (últimos n meses, para o gráfico)
func (r *ActivityRepository) MonthlyActivity(ctx context.Context, months int) ([]int, error) {
	query := `
		SELECT COALESCE(COUNT(a.id), 0)
		FROM generate_series(
			date_trunc('month', NOW()) - ($1 - 1) * INTERVAL '1 month',
			date_trunc('month', NOW()),
			INTERVAL '1 month'
		) AS month
		LEFT JOIN activities a ON date_trunc('month', a.created_at) = month
		GROUP BY month
		ORDER BY month
	`

	rows, err := r.pool.Query(ctx, query, months)
	if err != nil {
		return nil, fmt.Errorf("failed to query monthly activity: %w", err)
	}
	defer rows.Close()

	var counts []int
	for rows.Next() {
		var count int
		if err := rows.Scan(&count); err != nil {
			return nil, fmt.Errorf("failed to scan monthly activity: %w", err)
		}
		counts = append(counts, count)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating monthly activity: %w", err)
	}

	return counts, nil
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
