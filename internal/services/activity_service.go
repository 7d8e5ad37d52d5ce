package services

import (
	"context"
	"log"
	"time"

	"github.com/business-admin-api/internal/models"
	"github.com/business-admin-api/internal/repository"
	"github.com/google/uuid"
)

// ActivityService grava eventos do log de atividades.
type ActivityService struct {
	repo *repository.ActivityRepository
}

func NewActivityService(repo *repository.ActivityRepository) *ActivityService {
	return &ActivityService{repo: repo}
}

// Record grava um evento de forma assíncrona. Logging must never fail the
// request that triggered it, so errors are only logged.
func (s *ActivityService) Record(activityType, description string, userID *uuid.UUID, metadata map[string]interface{}) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := s.repo.RecordActivity(ctx, activityType, description, userID, metadata); err != nil {
			log.Printf("activity log write failed (%s): %v", activityType, err)
		}
	}()
}

// List retorna o feed paginado com filtros
func (s *ActivityService) List(ctx context.Context, filters models.ActivityFilters) ([]models.Activity, int, error) {
	return s.repo.ListActivities(ctx, filters)
}
