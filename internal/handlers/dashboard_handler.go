package handlers

import (
	"net/http"
	"time"

	"github.com/business-admin-api/internal/models"
	"github.com/business-admin-api/internal/repository"
	"github.com/business-admin-api/internal/services"
	"github.com/business-admin-api/internal/utils"
	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
)

const statsMonths = 12

// DashboardHandler agrega contadores e o feed de atividades do painel.
type DashboardHandler struct {
	userRepo       *repository.UserRepository
	moduleRepo     *repository.ModuleRepository
	userTypeRepo   *repository.UserTypeRepository
	permissionRepo *repository.PermissionRepository
	activityRepo   *repository.ActivityRepository
	activity       *services.ActivityService
}

func NewDashboardHandler(
	userRepo *repository.UserRepository,
	moduleRepo *repository.ModuleRepository,
	userTypeRepo *repository.UserTypeRepository,
	permissionRepo *repository.PermissionRepository,
	activityRepo *repository.ActivityRepository,
	activity *services.ActivityService,
) *DashboardHandler {
	return &DashboardHandler{
		userRepo:       userRepo,
		moduleRepo:     moduleRepo,
		userTypeRepo:   userTypeRepo,
		permissionRepo: permissionRepo,
		activityRepo:   activityRepo,
		activity:       activity,
	}
}

// Metrics retorna os contadores agregados. As consultas rodam em paralelo.
// GET /dashboard/metrics
func (h *DashboardHandler) Metrics(c *gin.Context) {
	var metrics models.DashboardMetrics

	g, ctx := errgroup.WithContext(c.Request.Context())

	g.Go(func() error {
		total, active, deleted, err := h.userRepo.CountUsers(ctx)
		if err != nil {
			return err
		}
		metrics.TotalUsers = total
		metrics.ActiveUsers = active
		metrics.DeletedUsers = deleted
		return nil
	})

	g.Go(func() error {
		total, active, err := h.moduleRepo.CountModules(ctx)
		if err != nil {
			return err
		}
		metrics.TotalModules = total
		metrics.ActiveModules = active
		return nil
	})

	g.Go(func() error {
		count, err := h.userTypeRepo.CountUserTypes(ctx)
		if err != nil {
			return err
		}
		metrics.TotalUserTypes = count
		return nil
	})

	g.Go(func() error {
		count, err := h.permissionRepo.CountAssignments(ctx)
		if err != nil {
			return err
		}
		metrics.AssignedModules = count
		return nil
	})

	if err := g.Wait(); err != nil {
		utils.RespondError(c, http.StatusInternalServerError, "Failed to load metrics", err.Error())
		return
	}

	utils.RespondOK(c, http.StatusOK, "Metrics retrieved", metrics)
}

// UserStats retorna os registros e atividade por mês para o gráfico.
// GET /dashboard/user-stats
func (h *DashboardHandler) UserStats(c *gin.Context) {
	var stats models.UserStats

	g, ctx := errgroup.WithContext(c.Request.Context())

	g.Go(func() error {
		labels, counts, err := h.userRepo.MonthlyRegistrations(ctx, statsMonths)
		if err != nil {
			return err
		}
		stats.Categories = labels
		stats.UserRegistrations = counts
		return nil
	})

	g.Go(func() error {
		counts, err := h.activityRepo.MonthlyActivity(ctx, statsMonths)
		if err != nil {
			return err
		}
		stats.UserActivity = counts
		return nil
	})

	if err := g.Wait(); err != nil {
		utils.RespondError(c, http.StatusInternalServerError, "Failed to load user stats", err.Error())
		return
	}

	utils.RespondOK(c, http.StatusOK, "User stats retrieved", stats)
}

// Activities retorna o feed paginado com filtros opcionais.
// GET /dashboard/activities?type=&userId=&startDate=&endDate=&page=&limit=
func (h *DashboardHandler) Activities(c *gin.Context) {
	page, limit := parsePagination(c)

	filters := models.ActivityFilters{
		Type:  c.Query("type"),
		Page:  page,
		Limit: limit,
	}

	if rawUserID := c.Query("userId"); rawUserID != "" {
		userID, err := models.ParseOptionalUUID(&rawUserID)
		if err != nil {
			utils.RespondError(c, http.StatusBadRequest, "Invalid userId filter", err.Error())
			return
		}
		filters.UserID = userID
	}

	if raw := c.Query("startDate"); raw != "" {
		start, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			utils.RespondError(c, http.StatusBadRequest, "Invalid startDate filter", err.Error())
			return
		}
		filters.StartDate = &start
	}
	if raw := c.Query("endDate"); raw != "" {
		end, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			utils.RespondError(c, http.StatusBadRequest, "Invalid endDate filter", err.Error())
			return
		}
		filters.EndDate = &end
	}

	activities, total, err := h.activity.List(c.Request.Context(), filters)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, "Failed to load activities", err.Error())
		return
	}

	totalPages := (total + limit - 1) / limit

	utils.RespondOK(c, http.StatusOK, "Activities retrieved", &models.ActivityListResponse{
		Activities: activities,
		Pagination: models.Pagination{
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: totalPages,
		},
	})
}
