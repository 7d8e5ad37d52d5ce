package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/business-admin-api/internal/models"
	"github.com/business-admin-api/internal/repository"
	"github.com/business-admin-api/internal/utils"
	"github.com/google/uuid"
)

var (
	// ErrSlugTaken indica url_slug duplicado
	ErrSlugTaken = errors.New("url slug already in use")
	// ErrSelfParent indica módulo apontando para si mesmo
	ErrSelfParent = errors.New("module cannot be its own parent")
	// ErrParentCycle indica que o novo pai criaria um ciclo na hierarquia
	ErrParentCycle = errors.New("parent change would create a cycle")
)

// ModuleService aplica as regras de hierarquia sobre o repositório de módulos.
type ModuleService struct {
	repo *repository.ModuleRepository
}

func NewModuleService(repo *repository.ModuleRepository) *ModuleService {
	return &ModuleService{repo: repo}
}

// Create valida slug e pai antes de criar
func (s *ModuleService) Create(ctx context.Context, req *models.CreateModuleRequest, createdBy uuid.UUID) (*models.Module, error) {
	req.URLSlug = utils.NormalizeSlug(req.URLSlug)

	exists, err := s.repo.CheckSlugExists(ctx, req.URLSlug, nil)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrSlugTaken
	}

	parentID, err := models.ParseOptionalUUID(req.ParentID)
	if err != nil {
		return nil, fmt.Errorf("invalid parent id: %w", err)
	}
	if parentID != nil {
		if _, err := s.repo.GetModuleByID(ctx, *parentID); err != nil {
			return nil, fmt.Errorf("parent module: %w", err)
		}
	}

	return s.repo.CreateModule(ctx, req, parentID, createdBy)
}

// Update valida slug, pai e ausência de ciclo antes de atualizar.
// Sending an empty parentId clears the parent (module becomes a root).
func (s *ModuleService) Update(ctx context.Context, moduleID uuid.UUID, req *models.UpdateModuleRequest) (*models.Module, error) {
	if req.URLSlug != nil {
		slug := utils.NormalizeSlug(*req.URLSlug)
		req.URLSlug = &slug

		exists, err := s.repo.CheckSlugExists(ctx, slug, &moduleID)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, ErrSlugTaken
		}
	}

	var parentID *uuid.UUID
	clearParent := false
	if req.ParentID != nil {
		if *req.ParentID == "" {
			clearParent = true
		} else {
			parsed, err := uuid.Parse(*req.ParentID)
			if err != nil {
				return nil, fmt.Errorf("invalid parent id: %w", err)
			}
			parentID = &parsed

			if parsed == moduleID {
				return nil, ErrSelfParent
			}

			if _, err := s.repo.GetModuleByID(ctx, parsed); err != nil {
				return nil, fmt.Errorf("parent module: %w", err)
			}

			parents, err := s.repo.GetParentMap(ctx)
			if err != nil {
				return nil, err
			}
			if CreatesCycle(parents, moduleID, parsed) {
				return nil, ErrParentCycle
			}
		}
	}

	return s.repo.UpdateModule(ctx, moduleID, req, parentID, clearParent)
}

// BulkUpdate aplica as atualizações uma a uma, sem transação. Partial
// success is reported in the aggregate result, not rolled back.
func (s *ModuleService) BulkUpdate(ctx context.Context, updates []models.BulkModuleUpdate) models.BulkResult {
	result := models.BulkResult{Requested: len(updates)}

	for _, update := range updates {
		moduleID, err := uuid.Parse(update.ID)
		if err != nil {
			result.Failed++
			if result.FirstErr == "" {
				result.FirstErr = fmt.Sprintf("invalid module id %q", update.ID)
			}
			continue
		}

		if _, err := s.Update(ctx, moduleID, &update.UpdateModuleRequest); err != nil {
			result.Failed++
			if result.FirstErr == "" {
				result.FirstErr = err.Error()
			}
			continue
		}
		result.Succeeded++
	}

	return result
}

// CreatesCycle percorre a cadeia de ancestrais do novo pai. Returns true
// when the walk reaches the module being re-parented.
func CreatesCycle(parents map[uuid.UUID]*uuid.UUID, moduleID, newParent uuid.UUID) bool {
	seen := make(map[uuid.UUID]bool)

	current := newParent
	for {
		if current == moduleID {
			return true
		}
		if seen[current] {
			// Pre-existing cycle in stored data; the new edge does not reach
			// moduleID, so allow the update.
			return false
		}
		seen[current] = true

		parent, ok := parents[current]
		if !ok || parent == nil {
			return false
		}
		current = *parent
	}
}
