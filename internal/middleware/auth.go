package middleware

import (
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/business-admin-api/internal/cache"
	"github.com/business-admin-api/internal/config"
	"github.com/business-admin-api/internal/rbac"
	"github.com/business-admin-api/internal/repository"
	"github.com/business-admin-api/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// Context keys set by the auth middleware
const (
	ContextUserID    = "user_id"
	ContextSessionID = "session_id"
	ContextUserRole  = "user_role"
)

const roleCacheTTL = 10 * time.Minute

// AuthMiddleware valida o bearer token e carrega o papel do usuário.
// The role is cached in Redis; a cache miss falls back to the database.
func AuthMiddleware(cfg *config.Config, userRepo *repository.UserRepository, sessionRepo *repository.SessionRepository, cacheClient *cache.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.RespondError(c, http.StatusUnauthorized, "Authorization required", "missing authorization header")
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			utils.RespondError(c, http.StatusUnauthorized, "Authorization required", "invalid authorization header")
			c.Abort()
			return
		}

		claims, err := utils.ValidateToken(parts[1], utils.TokenTypeAccess, cfg)
		if err != nil {
			utils.RespondError(c, http.StatusUnauthorized, "Invalid or expired token", err.Error())
			c.Abort()
			return
		}

		// A destroyed session invalidates the token even before its expiry
		if _, err := sessionRepo.GetSessionByID(c.Request.Context(), claims.SessionID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				utils.RespondError(c, http.StatusUnauthorized, "Session expired", "session not found")
			} else {
				utils.RespondError(c, http.StatusInternalServerError, "Failed to validate session", err.Error())
			}
			c.Abort()
			return
		}

		role, err := cacheClient.GetUserRole(c.Request.Context(), claims.UserID.String())
		if err != nil {
			if !errors.Is(err, redis.Nil) {
				log.Printf("role cache read failed: %v", err)
			}

			user, err := userRepo.GetUserByID(c.Request.Context(), claims.UserID)
			if err != nil {
				utils.RespondError(c, http.StatusUnauthorized, "User not found", err.Error())
				c.Abort()
				return
			}
			if user.IsDeleted || !user.IsActive {
				utils.RespondError(c, http.StatusForbidden, "Account disabled", "user inactive or deleted")
				c.Abort()
				return
			}

			role = ""
			if user.UserType != nil {
				role = user.UserType.Name
			}

			if err := cacheClient.SetUserRole(c.Request.Context(), claims.UserID.String(), role, roleCacheTTL); err != nil {
				log.Printf("role cache write failed: %v", err)
			}
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextSessionID, claims.SessionID)
		c.Set(ContextUserRole, role)
		c.Next()
	}
}

// RequireRoles restringe a rota aos papéis informados. Superadmin sempre
// passa, independente da lista.
func RequireRoles(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(ContextUserRole)

		if !rbac.CanAccess(role, roles) {
			utils.RespondError(c, http.StatusForbidden, "Insufficient permissions", "role not allowed")
			c.Abort()
			return
		}

		c.Next()
	}
}

// CORSMiddleware libera os portais (admin e usuário) para consumir a API
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
