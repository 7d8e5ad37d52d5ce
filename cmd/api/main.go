package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/business-admin-api/internal/cache"
	"github.com/business-admin-api/internal/config"
	"github.com/business-admin-api/internal/database"
	"github.com/business-admin-api/internal/handlers"
	"github.com/business-admin-api/internal/middleware"
	"github.com/business-admin-api/internal/rbac"
	"github.com/business-admin-api/internal/repository"
	"github.com/business-admin-api/internal/services"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg := config.Load()

	gin.SetMode(cfg.Server.GinMode)

	// Banco de dados
	dbManager := database.GetManager(cfg)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := dbManager.InitPool(ctx); err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}
	defer dbManager.Close()

	pool := dbManager.GetPool()

	// Redis
	cacheClient, err := cache.NewClient(&cfg.Redis)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer cacheClient.Close()

	// Repositórios
	userRepo := repository.NewUserRepository(pool)
	userTypeRepo := repository.NewUserTypeRepository(pool)
	moduleRepo := repository.NewModuleRepository(pool)
	permissionRepo := repository.NewPermissionRepository(pool)
	sessionRepo := repository.NewSessionRepository(pool)
	activityRepo := repository.NewActivityRepository(pool)

	// Serviços
	otpService := services.NewOTPService(cacheClient, cfg)
	activityService := services.NewActivityService(activityRepo)
	moduleService := services.NewModuleService(moduleRepo)

	// Handlers
	authHandler := handlers.NewAuthHandler(cfg, userRepo, userTypeRepo, sessionRepo, otpService, activityService, cacheClient)
	userHandler := handlers.NewUserHandler(userRepo, userTypeRepo, sessionRepo, activityService, cacheClient)
	moduleHandler := handlers.NewModuleHandler(moduleRepo, moduleService, activityService)
	permissionHandler := handlers.NewPermissionHandler(permissionRepo, userRepo, moduleRepo, activityService)
	userTypeHandler := handlers.NewUserTypeHandler(userTypeRepo, activityService)
	dashboardHandler := handlers.NewDashboardHandler(userRepo, moduleRepo, userTypeRepo, permissionRepo, activityRepo, activityService)

	router := setupRouter(cfg, userRepo, sessionRepo, cacheClient,
		authHandler, userHandler, moduleHandler, permissionHandler, userTypeHandler, dashboardHandler)

	server := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	// Limpeza periódica de sessões expiradas
	go sessionCleanup(sessionRepo)

	go func() {
		log.Printf("server listening on port %s", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Aguarda sinal de término para desligar graciosamente
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}

	log.Println("server stopped")
}

func setupRouter(
	cfg *config.Config,
	userRepo *repository.UserRepository,
	sessionRepo *repository.SessionRepository,
	cacheClient *cache.Client,
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	moduleHandler *handlers.ModuleHandler,
	permissionHandler *handlers.PermissionHandler,
	userTypeHandler *handlers.UserTypeHandler,
	dashboardHandler *handlers.DashboardHandler,
) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery(), middleware.CORSMiddleware())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")

	// Rotas públicas
	auth := api.Group("/auth")
	{
		auth.POST("/send-otp", authHandler.SendOTP)
		auth.POST("/verify-otp", authHandler.VerifyOTP)
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/google", authHandler.GoogleLogin)
		auth.POST("/forgot-password", authHandler.ForgotPassword)
		auth.POST("/refresh-token", authHandler.RefreshToken)
	}

	// Rotas autenticadas
	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware(cfg, userRepo, sessionRepo, cacheClient))
	{
		protected.POST("/auth/logout", authHandler.Logout)
		protected.POST("/auth/logout-all", authHandler.LogoutAll)
		protected.GET("/user/data", authHandler.GetUserData)
		protected.GET("/permissions/my-modules", permissionHandler.GetMyModules)
		protected.GET("/modules", moduleHandler.List)
		protected.GET("/modules/:id", moduleHandler.Get)
	}

	// Gestão de usuários (manager para cima)
	management := protected.Group("")
	management.Use(middleware.RequireRoles(rbac.RoleAdmin, rbac.RoleManager))
	{
		management.GET("/users", userHandler.List)
		management.GET("/users/:id", userHandler.Get)
		management.POST("/users", userHandler.Create)
		management.PUT("/users/:id", userHandler.Update)
		management.DELETE("/users/:id", userHandler.Delete)
		management.POST("/users/:id/force-logout", userHandler.ForceLogout)
		management.GET("/dashboard/metrics", dashboardHandler.Metrics)
		management.GET("/dashboard/user-stats", dashboardHandler.UserStats)
		management.GET("/dashboard/activities", dashboardHandler.Activities)
	}

	// Administração (admin para cima)
	admin := protected.Group("")
	admin.Use(middleware.RequireRoles(rbac.RoleAdmin))
	{
		admin.PATCH("/users/:id/user-type", userHandler.ChangeUserType)

		admin.POST("/modules", moduleHandler.Create)
		admin.PUT("/modules/:id", moduleHandler.Update)
		admin.PATCH("/modules/bulk", moduleHandler.BulkUpdate)
		admin.PATCH("/modules/:id/deactivate", moduleHandler.Deactivate)
		admin.DELETE("/modules/:id", moduleHandler.Delete)

		admin.GET("/permissions/users/:id/modules", permissionHandler.GetUserModules)
		admin.POST("/permissions/assign", permissionHandler.Assign)
		admin.POST("/permissions/unassign", permissionHandler.Unassign)
		admin.POST("/permissions/bulk-assign", permissionHandler.BulkAssign)

		admin.GET("/user-types", userTypeHandler.List)
		admin.POST("/user-types", userTypeHandler.Create)
		admin.PUT("/user-types/:id", userTypeHandler.Update)
		admin.DELETE("/user-types/:id", userTypeHandler.Delete)
	}

	// Operações exclusivas do superadmin (RequireRoles sem papéis listados
	// nega todo mundo exceto superadmin, que sempre passa)
	superadmin := protected.Group("")
	superadmin.Use(middleware.RequireRoles())
	{
		superadmin.DELETE("/users/:id/hard", userHandler.HardDelete)
		superadmin.POST("/users/:id/recover", userHandler.Recover)
	}

	return router
}

func sessionCleanup(sessionRepo *repository.SessionRepository) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for range ticker.C {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		purged, err := sessionRepo.PurgeExpiredSessions(ctx)
		cancel()

		if err != nil {
			log.Printf("session cleanup failed: %v", err)
			continue
		}
		if purged > 0 {
			log.Printf("purged %d expired sessions", purged)
		}
	}
}
