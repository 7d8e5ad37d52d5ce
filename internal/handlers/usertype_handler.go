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

// UserTypeHandler expõe o CRUD de tipos de usuário. Os quatro papéis da
// hierarquia fixa não podem ser deletados.
type UserTypeHandler struct {
	userTypeRepo *repository.UserTypeRepository
	activity     *services.ActivityService
}

func NewUserTypeHandler(userTypeRepo *repository.UserTypeRepository, activity *services.ActivityService) *UserTypeHandler {
	return &UserTypeHandler{userTypeRepo: userTypeRepo, activity: activity}
}

// List retorna todos os tipos de usuário.
// GET /user-types
func (h *UserTypeHandler) List(c *gin.Context) {
	userTypes, err := h.userTypeRepo.GetAllUserTypes(c.Request.Context())
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, "Failed to list user types", err.Error())
		return
	}

	utils.RespondOK(c, http.StatusOK, "User types retrieved", &models.UserTypeListResponse{UserTypes: userTypes})
}

// Create cria um tipo de usuário customizado.
// POST /user-types
func (h *UserTypeHandler) Create(c *gin.Context) {
	var req models.CreateUserTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request", err.Error())
		return
	}

	if _, err := h.userTypeRepo.GetUserTypeByName(c.Request.Context(), req.Name); err == nil {
		utils.RespondError(c, http.StatusConflict, "User type already exists", "")
		return
	} else if !errors.Is(err, repository.ErrNotFound) {
		utils.RespondError(c, http.StatusInternalServerError, "Failed to create user type", err.Error())
		return
	}

	userType, err := h.userTypeRepo.CreateUserType(c.Request.Context(), req.Name)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, "Failed to create user type", err.Error())
		return
	}

	actorID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	h.activity.Record(models.ActivityPermissionChanged, "User type created", &actorID, gin.H{"name": userType.Name})

	utils.RespondOK(c, http.StatusCreated, "User type created", gin.H{"userType": userType})
}

// Update atualiza nome/estado de um tipo de usuário.
// PUT /user-types/:id
func (h *UserTypeHandler) Update(c *gin.Context) {
	userTypeID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req models.UpdateUserTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request", err.Error())
		return
	}

	// Renomear um papel fixo quebraria a hierarquia
	if req.Name != nil {
		existing, err := h.userTypeRepo.GetUserTypeByID(c.Request.Context(), userTypeID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				utils.RespondError(c, http.StatusNotFound, "User type not found", "")
				return
			}
			utils.RespondError(c, http.StatusInternalServerError, "Failed to update user type", err.Error())
			return
		}
		if models.IsPredefinedUserType(existing.Name) && *req.Name != existing.Name {
			utils.RespondError(c, http.StatusBadRequest, "Predefined user types cannot be renamed", "")
			return
		}
	}

	userType, err := h.userTypeRepo.UpdateUserType(c.Request.Context(), userTypeID, req.Name, req.IsActive)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			utils.RespondError(c, http.StatusNotFound, "User type not found", "")
			return
		}
		utils.RespondError(c, http.StatusInternalServerError, "Failed to update user type", err.Error())
		return
	}

	actorID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	h.activity.Record(models.ActivityPermissionChanged, "User type updated", &actorID, gin.H{"name": userType.Name})

	utils.RespondOK(c, http.StatusOK, "User type updated", gin.H{"userType": userType})
}

// Delete remove um tipo de usuário customizado sem usuários vinculados.
// DELETE /user-types/:id
func (h *UserTypeHandler) Delete(c *gin.Context) {
	userTypeID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.userTypeRepo.DeleteUserType(c.Request.Context(), userTypeID); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			utils.RespondError(c, http.StatusNotFound, "User type not found", "")
		case errors.Is(err, repository.ErrPredefinedUserType):
			utils.RespondError(c, http.StatusBadRequest, "Predefined user types cannot be deleted", "")
		default:
			utils.RespondError(c, http.StatusBadRequest, "Failed to delete user type", err.Error())
		}
		return
	}

	actorID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	h.activity.Record(models.ActivityPermissionChanged, "User type deleted", &actorID, gin.H{"id": userTypeID.String()})

	utils.RespondOK(c, http.StatusOK, "User type deleted", nil)
}
