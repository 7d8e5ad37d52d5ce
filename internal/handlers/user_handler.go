package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/business-admin-api/internal/cache"
	"github.com/business-admin-api/internal/middleware"
	"github.com/business-admin-api/internal/models"
	"github.com/business-admin-api/internal/rbac"
	"github.com/business-admin-api/internal/repository"
	"github.com/business-admin-api/internal/services"
	"github.com/business-admin-api/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// UserHandler expõe o CRUD de usuários do painel administrativo.
type UserHandler struct {
	userRepo     *repository.UserRepository
	userTypeRepo *repository.UserTypeRepository
	sessionRepo  *repository.SessionRepository
	activity     *services.ActivityService
	cache        *cache.Client
}

func NewUserHandler(
	userRepo *repository.UserRepository,
	userTypeRepo *repository.UserTypeRepository,
	sessionRepo *repository.SessionRepository,
	activity *services.ActivityService,
	cacheClient *cache.Client,
) *UserHandler {
	return &UserHandler{
		userRepo:     userRepo,
		userTypeRepo: userTypeRepo,
		sessionRepo:  sessionRepo,
		activity:     activity,
		cache:        cacheClient,
	}
}

func parseIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid id", err.Error())
		return uuid.Nil, false
	}
	return id, true
}

// parsePagination lê page/limit da query string e normaliza valores
// ausentes, não numéricos ou fora da faixa. limit nunca chega a zero:
// o totalPages é calculado dividindo por ele.
func parsePagination(c *gin.Context) (page, limit int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))

	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return page, limit
}

// canManageTarget impede que um papel gerencie alguém acima dele na
// hierarquia. Superadmin gerencia todos.
func canManageTarget(actorRole string, target *models.User) bool {
	if rbac.Rank(actorRole) == rbac.Rank(rbac.RoleSuperadmin) {
		return true
	}
	targetRole := ""
	if target.UserType != nil {
		targetRole = target.UserType.Name
	}
	return rbac.Outranks(actorRole, targetRole)
}

// List retorna usuários paginados.
// GET /users?page=&limit=&includeDeleted=
func (h *UserHandler) List(c *gin.Context) {
	page, limit := parsePagination(c)
	includeDeleted := c.Query("includeDeleted") == "true"

	// Somente superadmin enxerga contas deletadas
	role := c.GetString(middleware.ContextUserRole)
	if includeDeleted && !rbac.Can(role, rbac.CapRecoverUsers) {
		includeDeleted = false
	}

	users, total, err := h.userRepo.ListUsers(c.Request.Context(), includeDeleted, page, limit)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, "Failed to list users", err.Error())
		return
	}

	totalPages := (total + limit - 1) / limit
	utils.RespondOK(c, http.StatusOK, "Users retrieved", &models.UserListResponse{
		Users: users,
		Pagination: models.Pagination{
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: totalPages,
		},
	})
}

// Get retorna um usuário por ID.
// GET /users/:id
func (h *UserHandler) Get(c *gin.Context) {
	userID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	user, err := h.userRepo.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			utils.RespondError(c, http.StatusNotFound, "User not found", "")
			return
		}
		utils.RespondError(c, http.StatusInternalServerError, "Failed to get user", err.Error())
		return
	}

	utils.RespondOK(c, http.StatusOK, "User retrieved", gin.H{"user": user})
}

// Create cria um usuário via painel administrativo.
// POST /users
func (h *UserHandler) Create(c *gin.Context) {
	var req models.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request", err.Error())
		return
	}

	req.Email = utils.NormalizeEmail(req.Email)

	userTypeID, err := uuid.Parse(req.UserTypeID)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid user type id", err.Error())
		return
	}

	userType, err := h.userTypeRepo.GetUserTypeByID(c.Request.Context(), userTypeID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			utils.RespondError(c, http.StatusBadRequest, "User type not found", "")
			return
		}
		utils.RespondError(c, http.StatusInternalServerError, "Failed to create user", err.Error())
		return
	}

	// Não se cria alguém acima do próprio papel
	actorRole := c.GetString(middleware.ContextUserRole)
	if rbac.Rank(userType.Name) > rbac.Rank(actorRole) {
		utils.RespondError(c, http.StatusForbidden, "Cannot create a user above your role", "")
		return
	}

	if _, err := h.userRepo.GetUserByEmail(c.Request.Context(), req.Email); err == nil {
		utils.RespondError(c, http.StatusConflict, "Email already registered", "")
		return
	} else if !errors.Is(err, repository.ErrNotFound) {
		utils.RespondError(c, http.StatusInternalServerError, "Failed to create user", err.Error())
		return
	}

	passwordHash, err := utils.HashPassword(req.Password)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, "Failed to create user", err.Error())
		return
	}

	user, err := h.userRepo.CreateUser(c.Request.Context(), &req, passwordHash, userTypeID)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, "Failed to create user", err.Error())
		return
	}

	actorID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	h.activity.Record(models.ActivityUserCreated, "User created", &actorID, gin.H{"targetEmail": user.Email})

	utils.RespondOK(c, http.StatusCreated, "User created", gin.H{"user": user})
}

// Update atualiza um usuário (campos parciais).
// PUT /users/:id
func (h *UserHandler) Update(c *gin.Context) {
	userID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req models.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request", err.Error())
		return
	}

	target, err := h.userRepo.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			utils.RespondError(c, http.StatusNotFound, "User not found", "")
			return
		}
		utils.RespondError(c, http.StatusInternalServerError, "Failed to update user", err.Error())
		return
	}

	actorRole := c.GetString(middleware.ContextUserRole)
	actorID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	if actorID != userID && !canManageTarget(actorRole, target) {
		utils.RespondError(c, http.StatusForbidden, "Cannot modify a user at or above your role", "")
		return
	}

	var userTypeID *uuid.UUID
	if req.UserTypeID != nil {
		userTypeID, err = models.ParseOptionalUUID(req.UserTypeID)
		if err != nil {
			utils.RespondError(c, http.StatusBadRequest, "Invalid user type id", err.Error())
			return
		}
	}

	if req.Email != nil {
		normalized := utils.NormalizeEmail(*req.Email)
		req.Email = &normalized
	}

	user, err := h.userRepo.UpdateUser(c.Request.Context(), userID, &req, userTypeID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			utils.RespondError(c, http.StatusNotFound, "User not found", "")
			return
		}
		utils.RespondError(c, http.StatusInternalServerError, "Failed to update user", err.Error())
		return
	}

	if userTypeID != nil {
		// Papel pode ter mudado; o cache não deve servir o antigo
		_ = h.cache.InvalidateUserRole(c.Request.Context(), userID.String())
	}

	h.activity.Record(models.ActivityUserUpdated, "User updated", &actorID, gin.H{"targetId": userID.String()})

	utils.RespondOK(c, http.StatusOK, "User updated", gin.H{"user": user})
}

// Delete faz o soft delete (conta recuperável).
// DELETE /users/:id
func (h *UserHandler) Delete(c *gin.Context) {
	h.deleteUser(c, false)
}

// HardDelete remove a conta definitivamente (somente superadmin).
// DELETE /users/:id/hard
func (h *UserHandler) HardDelete(c *gin.Context) {
	h.deleteUser(c, true)
}

func (h *UserHandler) deleteUser(c *gin.Context, hard bool) {
	userID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	actorID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	if actorID == userID {
		utils.RespondError(c, http.StatusBadRequest, "Cannot delete your own account", "")
		return
	}

	target, err := h.userRepo.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			utils.RespondError(c, http.StatusNotFound, "User not found", "")
			return
		}
		utils.RespondError(c, http.StatusInternalServerError, "Failed to delete user", err.Error())
		return
	}

	actorRole := c.GetString(middleware.ContextUserRole)
	if !canManageTarget(actorRole, target) {
		utils.RespondError(c, http.StatusForbidden, "Cannot delete a user at or above your role", "")
		return
	}

	if hard {
		err = h.userRepo.HardDeleteUser(c.Request.Context(), userID)
	} else {
		err = h.userRepo.SoftDeleteUser(c.Request.Context(), userID)
	}
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			utils.RespondError(c, http.StatusNotFound, "User not found", "")
			return
		}
		utils.RespondError(c, http.StatusInternalServerError, "Failed to delete user", err.Error())
		return
	}

	// Contas removidas perdem as sessões imediatamente
	if err := h.sessionRepo.DeleteUserSessions(c.Request.Context(), userID); err != nil {
		utils.RespondError(c, http.StatusInternalServerError, "Failed to terminate sessions", err.Error())
		return
	}
	_ = h.cache.InvalidateUserRole(c.Request.Context(), userID.String())

	h.activity.Record(models.ActivityUserDeleted, "User deleted", &actorID, gin.H{
		"targetId": userID.String(),
		"hard":     hard,
	})

	utils.RespondOK(c, http.StatusOK, "User deleted", nil)
}

// Recover reverte um soft delete (somente superadmin).
// POST /users/:id/recover
func (h *UserHandler) Recover(c *gin.Context) {
	userID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.userRepo.RecoverUser(c.Request.Context(), userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			utils.RespondError(c, http.StatusNotFound, "User not found or not deleted", "")
			return
		}
		utils.RespondError(c, http.StatusInternalServerError, "Failed to recover user", err.Error())
		return
	}

	actorID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	h.activity.Record(models.ActivityUserUpdated, "User recovered", &actorID, gin.H{"targetId": userID.String()})

	utils.RespondOK(c, http.StatusOK, "User recovered", nil)
}

// ChangeUserType troca o papel de um usuário.
// PATCH /users/:id/user-type
func (h *UserHandler) ChangeUserType(c *gin.Context) {
	userID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req models.ChangeUserTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request", err.Error())
		return
	}

	userTypeID, err := uuid.Parse(req.UserTypeID)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid user type id", err.Error())
		return
	}

	userType, err := h.userTypeRepo.GetUserTypeByID(c.Request.Context(), userTypeID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			utils.RespondError(c, http.StatusBadRequest, "User type not found", "")
			return
		}
		utils.RespondError(c, http.StatusInternalServerError, "Failed to change user type", err.Error())
		return
	}

	target, err := h.userRepo.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			utils.RespondError(c, http.StatusNotFound, "User not found", "")
			return
		}
		utils.RespondError(c, http.StatusInternalServerError, "Failed to change user type", err.Error())
		return
	}

	actorRole := c.GetString(middleware.ContextUserRole)
	if !canManageTarget(actorRole, target) || rbac.Rank(userType.Name) > rbac.Rank(actorRole) {
		utils.RespondError(c, http.StatusForbidden, "Cannot assign a role at or above your own", "")
		return
	}

	if err := h.userRepo.ChangeUserType(c.Request.Context(), userID, userTypeID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			utils.RespondError(c, http.StatusNotFound, "User not found", "")
			return
		}
		utils.RespondError(c, http.StatusInternalServerError, "Failed to change user type", err.Error())
		return
	}

	// O papel mudou: cache antigo fora, sessões continuam válidas
	_ = h.cache.InvalidateUserRole(c.Request.Context(), userID.String())

	actorID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	h.activity.Record(models.ActivityPermissionChanged, "User role changed", &actorID, gin.H{
		"targetId": userID.String(),
		"newRole":  userType.Name,
	})

	utils.RespondOK(c, http.StatusOK, "User type changed", nil)
}

// ForceLogout encerra todas as sessões de um usuário.
// POST /users/:id/force-logout
func (h *UserHandler) ForceLogout(c *gin.Context) {
	userID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.sessionRepo.DeleteUserSessions(c.Request.Context(), userID); err != nil {
		utils.RespondError(c, http.StatusInternalServerError, "Failed to force logout", err.Error())
		return
	}

	actorID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	h.activity.Record(models.ActivityLogout, "User force logged out", &actorID, gin.H{"targetId": userID.String()})

	utils.RespondOK(c, http.StatusOK, "Sessions terminated", nil)
}
