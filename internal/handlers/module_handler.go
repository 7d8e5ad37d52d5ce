package handlers

import (
	"errors"
	"net/http"

	"github.com/business-admin-api/internal/middleware"
	"github.com/business-admin-api/internal/models"
	"github.com/business-admin-api/internal/repository"
	"github.com/business-admin-api/internal/services"
	"github.com/business-admin-api/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ModuleHandler expõe o CRUD de módulos (itens de navegação).
type ModuleHandler struct {
	moduleRepo    *repository.ModuleRepository
	moduleService *services.ModuleService
	activity      *services.ActivityService
}

func NewModuleHandler(moduleRepo *repository.ModuleRepository, moduleService *services.ModuleService, activity *services.ActivityService) *ModuleHandler {
	return &ModuleHandler{
		moduleRepo:    moduleRepo,
		moduleService: moduleService,
		activity:      activity,
	}
}

// List retorna todos os módulos como lista plana. Os portais montam a
// árvore localmente a partir de parentId.
// GET /modules
func (h *ModuleHandler) List(c *gin.Context) {
	modules, err := h.moduleRepo.GetAllModules(c.Request.Context())
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, "Failed to list modules", err.Error())
		return
	}

	utils.RespondOK(c, http.StatusOK, "Modules retrieved", &models.ModuleListResponse{Modules: modules})
}

// Get retorna um módulo por ID.
// GET /modules/:id
func (h *ModuleHandler) Get(c *gin.Context) {
	moduleID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	module, err := h.moduleRepo.GetModuleByID(c.Request.Context(), moduleID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			utils.RespondError(c, http.StatusNotFound, "Module not found", "")
			return
		}
		utils.RespondError(c, http.StatusInternalServerError, "Failed to get module", err.Error())
		return
	}

	utils.RespondOK(c, http.StatusOK, "Module retrieved", gin.H{"module": module})
}

// Create cria um módulo.
// POST /modules
func (h *ModuleHandler) Create(c *gin.Context) {
	var req models.CreateModuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request", err.Error())
		return
	}

	actorID := c.MustGet(middleware.ContextUserID).(uuid.UUID)

	module, err := h.moduleService.Create(c.Request.Context(), &req, actorID)
	if err != nil {
		h.respondModuleError(c, err, "Failed to create module")
		return
	}

	h.activity.Record(models.ActivityModuleAssigned, "Module created", &actorID, gin.H{"moduleId": module.ID.String()})

	utils.RespondOK(c, http.StatusCreated, "Module created", gin.H{"module": module})
}

// Update atualiza um módulo (campos parciais, inclusive troca de pai).
// PUT /modules/:id
func (h *ModuleHandler) Update(c *gin.Context) {
	moduleID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req models.UpdateModuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request", err.Error())
		return
	}

	module, err := h.moduleService.Update(c.Request.Context(), moduleID, &req)
	if err != nil {
		h.respondModuleError(c, err, "Failed to update module")
		return
	}

	actorID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	h.activity.Record(models.ActivityModuleAssigned, "Module updated", &actorID, gin.H{"moduleId": moduleID.String()})

	utils.RespondOK(c, http.StatusOK, "Module updated", gin.H{"module": module})
}

func (h *ModuleHandler) respondModuleError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, services.ErrSlugTaken):
		utils.RespondError(c, http.StatusConflict, "URL slug already in use", "")
	case errors.Is(err, services.ErrSelfParent):
		utils.RespondError(c, http.StatusBadRequest, "Module cannot be its own parent", "")
	case errors.Is(err, services.ErrParentCycle):
		utils.RespondError(c, http.StatusBadRequest, "Parent change would create a cycle", "")
	case errors.Is(err, repository.ErrNotFound):
		utils.RespondError(c, http.StatusNotFound, "Module not found", "")
	default:
		utils.RespondError(c, http.StatusInternalServerError, fallback, err.Error())
	}
}

// BulkUpdate aplica várias atualizações em sequência, sem transação.
// PATCH /modules/bulk
func (h *ModuleHandler) BulkUpdate(c *gin.Context) {
	var req models.BulkUpdateModulesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request", err.Error())
		return
	}

	result := h.moduleService.BulkUpdate(c.Request.Context(), req.Modules)

	actorID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	h.activity.Record(models.ActivityModuleAssigned, "Modules bulk updated", &actorID, gin.H{
		"requested": result.Requested,
		"succeeded": result.Succeeded,
	})

	status := http.StatusOK
	if result.Failed > 0 && result.Succeeded == 0 {
		status = http.StatusBadRequest
	} else if result.Failed > 0 {
		status = http.StatusMultiStatus
	}

	utils.RespondOK(c, status, "Bulk update processed", result)
}

// Deactivate marca um módulo como inativo sem removê-lo.
// PATCH /modules/:id/deactivate
func (h *ModuleHandler) Deactivate(c *gin.Context) {
	moduleID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.moduleRepo.DeactivateModule(c.Request.Context(), moduleID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			utils.RespondError(c, http.StatusNotFound, "Module not found", "")
			return
		}
		utils.RespondError(c, http.StatusInternalServerError, "Failed to deactivate module", err.Error())
		return
	}

	actorID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	h.activity.Record(models.ActivityModuleAssigned, "Module deactivated", &actorID, gin.H{"moduleId": moduleID.String()})

	utils.RespondOK(c, http.StatusOK, "Module deactivated", nil)
}

// Delete remove um módulo. Filhos são promovidos a raiz.
// DELETE /modules/:id
func (h *ModuleHandler) Delete(c *gin.Context) {
	moduleID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.moduleRepo.DeleteModule(c.Request.Context(), moduleID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			utils.RespondError(c, http.StatusNotFound, "Module not found", "")
			return
		}
		utils.RespondError(c, http.StatusInternalServerError, "Failed to delete module", err.Error())
		return
	}

	actorID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	h.activity.Record(models.ActivityModuleAssigned, "Module deleted", &actorID, gin.H{"moduleId": moduleID.String()})

	utils.RespondOK(c, http.StatusOK, "Module deleted", nil)
}
