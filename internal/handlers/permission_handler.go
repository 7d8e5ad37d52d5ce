package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/business-admin-api/internal/middleware"
	"github.com/business-admin-api/internal/models"
	"github.com/business-admin-api/internal/repository"
	"github.com/business-admin-api/internal/services"
	"github.com/business-admin-api/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// PermissionHandler expõe as atribuições usuário×módulo que alimentam a
// matriz de permissões do painel.
type PermissionHandler struct {
	permissionRepo *repository.PermissionRepository
	userRepo       *repository.UserRepository
	moduleRepo     *repository.ModuleRepository
	activity       *services.ActivityService
}

func NewPermissionHandler(
	permissionRepo *repository.PermissionRepository,
	userRepo *repository.UserRepository,
	moduleRepo *repository.ModuleRepository,
	activity *services.ActivityService,
) *PermissionHandler {
	return &PermissionHandler{
		permissionRepo: permissionRepo,
		userRepo:       userRepo,
		moduleRepo:     moduleRepo,
		activity:       activity,
	}
}

// GetUserModules retorna os módulos atribuídos a um usuário.
// GET /permissions/users/:id/modules
func (h *PermissionHandler) GetUserModules(c *gin.Context) {
	userID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if _, err := h.userRepo.GetUserByID(c.Request.Context(), userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			utils.RespondError(c, http.StatusNotFound, "User not found", "")
			return
		}
		utils.RespondError(c, http.StatusInternalServerError, "Failed to get user modules", err.Error())
		return
	}

	modules, access, err := h.permissionRepo.GetUserModules(c.Request.Context(), userID)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, "Failed to get user modules", err.Error())
		return
	}

	utils.RespondOK(c, http.StatusOK, "User modules retrieved", &models.UserModulesResponse{
		Modules:    modules,
		UserAccess: access,
	})
}

// GetMyModules retorna os módulos do usuário autenticado (menu do portal).
// GET /permissions/my-modules
func (h *PermissionHandler) GetMyModules(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)

	modules, access, err := h.permissionRepo.GetUserModules(c.Request.Context(), userID)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, "Failed to get modules", err.Error())
		return
	}

	utils.RespondOK(c, http.StatusOK, "Modules retrieved", &models.UserModulesResponse{
		Modules:    modules,
		UserAccess: access,
	})
}

// Assign concede um módulo a um usuário. Atribuição repetida é no-op.
// POST /permissions/assign
func (h *PermissionHandler) Assign(c *gin.Context) {
	var req models.AssignModuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request", err.Error())
		return
	}

	userID, moduleID, ok := h.resolvePair(c, req.UserID, req.ModuleID)
	if !ok {
		return
	}

	actorID := c.MustGet(middleware.ContextUserID).(uuid.UUID)

	if err := h.permissionRepo.AssignModule(c.Request.Context(), userID, moduleID, actorID); err != nil {
		utils.RespondError(c, http.StatusInternalServerError, "Failed to assign module", err.Error())
		return
	}

	h.activity.Record(models.ActivityModuleAssigned, "Module assigned", &actorID, gin.H{
		"targetId": userID.String(),
		"moduleId": moduleID.String(),
	})

	utils.RespondOK(c, http.StatusOK, "Module assigned", nil)
}

// Unassign revoga um módulo de um usuário.
// POST /permissions/unassign
func (h *PermissionHandler) Unassign(c *gin.Context) {
	var req models.UnassignModuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request", err.Error())
		return
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid user id", err.Error())
		return
	}
	moduleID, err := uuid.Parse(req.ModuleID)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid module id", err.Error())
		return
	}

	if err := h.permissionRepo.UnassignModule(c.Request.Context(), userID, moduleID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			utils.RespondError(c, http.StatusNotFound, "Assignment not found", "")
			return
		}
		utils.RespondError(c, http.StatusInternalServerError, "Failed to unassign module", err.Error())
		return
	}

	actorID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	h.activity.Record(models.ActivityPermissionChanged, "Module unassigned", &actorID, gin.H{
		"targetId": userID.String(),
		"moduleId": moduleID.String(),
	})

	utils.RespondOK(c, http.StatusOK, "Module unassigned", nil)
}

// BulkAssign concede vários módulos a um usuário, sem transação. O resultado
// agregado informa sucessos e falhas parciais.
// POST /permissions/bulk-assign
func (h *PermissionHandler) BulkAssign(c *gin.Context) {
	var req models.BulkAssignModulesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request", err.Error())
		return
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid user id", err.Error())
		return
	}

	if _, err := h.userRepo.GetUserByID(c.Request.Context(), userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			utils.RespondError(c, http.StatusNotFound, "User not found", "")
			return
		}
		utils.RespondError(c, http.StatusInternalServerError, "Failed to bulk assign", err.Error())
		return
	}

	actorID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	result := models.BulkResult{Requested: len(req.ModuleIDs)}

	for _, rawID := range req.ModuleIDs {
		moduleID, err := uuid.Parse(rawID)
		if err != nil {
			result.Failed++
			if result.FirstErr == "" {
				result.FirstErr = fmt.Sprintf("invalid module id %q", rawID)
			}
			continue
		}

		if err := h.permissionRepo.AssignModule(c.Request.Context(), userID, moduleID, actorID); err != nil {
			result.Failed++
			if result.FirstErr == "" {
				result.FirstErr = err.Error()
			}
			continue
		}
		result.Succeeded++
	}

	h.activity.Record(models.ActivityModuleAssigned, "Modules bulk assigned", &actorID, gin.H{
		"targetId":  userID.String(),
		"requested": result.Requested,
		"succeeded": result.Succeeded,
	})

	status := http.StatusOK
	if result.Failed > 0 && result.Succeeded == 0 {
		status = http.StatusBadRequest
	} else if result.Failed > 0 {
		status = http.StatusMultiStatus
	}

	utils.RespondOK(c, status, "Bulk assign processed", result)
}

func (h *PermissionHandler) resolvePair(c *gin.Context, rawUserID, rawModuleID string) (uuid.UUID, uuid.UUID, bool) {
	userID, err := uuid.Parse(rawUserID)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid user id", err.Error())
		return uuid.Nil, uuid.Nil, false
	}
	moduleID, err := uuid.Parse(rawModuleID)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid module id", err.Error())
		return uuid.Nil, uuid.Nil, false
	}

	if _, err := h.userRepo.GetUserByID(c.Request.Context(), userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			utils.RespondError(c, http.StatusNotFound, "User not found", "")
		} else {
			utils.RespondError(c, http.StatusInternalServerError, "Failed to resolve user", err.Error())
		}
		return uuid.Nil, uuid.Nil, false
	}
	if _, err := h.moduleRepo.GetModuleByID(c.Request.Context(), moduleID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			utils.RespondError(c, http.StatusNotFound, "Module not found", "")
		} else {
			utils.RespondError(c, http.StatusInternalServerError, "Failed to resolve module", err.Error())
		}
		return uuid.Nil, uuid.Nil, false
	}

	return userID, moduleID, true
}
