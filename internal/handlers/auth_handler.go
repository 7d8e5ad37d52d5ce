package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/business-admin-api/internal/cache"
	"github.com/business-admin-api/internal/config"
	"github.com/business-admin-api/internal/middleware"
	"github.com/business-admin-api/internal/models"
	"github.com/business-admin-api/internal/repository"
	"github.com/business-admin-api/internal/services"
	"github.com/business-admin-api/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"google.golang.org/api/idtoken"
)

// AuthHandler expõe os endpoints de autenticação e sessão.
type AuthHandler struct {
	cfg          *config.Config
	userRepo     *repository.UserRepository
	userTypeRepo *repository.UserTypeRepository
	sessionRepo  *repository.SessionRepository
	otpService   *services.OTPService
	activity     *services.ActivityService
	cache        *cache.Client
}

func NewAuthHandler(
	cfg *config.Config,
	userRepo *repository.UserRepository,
	userTypeRepo *repository.UserTypeRepository,
	sessionRepo *repository.SessionRepository,
	otpService *services.OTPService,
	activity *services.ActivityService,
	cacheClient *cache.Client,
) *AuthHandler {
	return &AuthHandler{
		cfg:          cfg,
		userRepo:     userRepo,
		userTypeRepo: userTypeRepo,
		sessionRepo:  sessionRepo,
		otpService:   otpService,
		activity:     activity,
		cache:        cacheClient,
	}
}

// issueSession cria a sessão e o par de tokens para um usuário autenticado
func (h *AuthHandler) issueSession(c *gin.Context, user *models.User) (*models.AuthResponse, error) {
	expiry := time.Now().Add(time.Duration(h.cfg.JWT.SessionTTLHours) * time.Hour)

	session, err := h.sessionRepo.CreateSession(c.Request.Context(), user.ID, expiry)
	if err != nil {
		return nil, err
	}

	accessToken, err := utils.GenerateAccessToken(user.ID, session.ID, h.cfg)
	if err != nil {
		return nil, err
	}

	refreshToken, err := utils.GenerateRefreshToken(user.ID, session.ID, h.cfg)
	if err != nil {
		return nil, err
	}

	return &models.AuthResponse{
		User:         user,
		Session:      session,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// SendOTP gera um código e envia para o email informado.
// POST /auth/send-otp
func (h *AuthHandler) SendOTP(c *gin.Context) {
	var req models.SendOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request", err.Error())
		return
	}

	code, err := h.otpService.GenerateAndStore(c.Request.Context(), req.Email)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, "Failed to send OTP", err.Error())
		return
	}

	// TODO: integrate the transactional mail provider; until then the code
	// is returned in development mode only
	var data interface{}
	if h.cfg.App.Env == "development" {
		data = gin.H{"otp": code}
	}

	utils.RespondOK(c, http.StatusOK, "OTP sent", data)
}

// VerifyOTP confere o código sem consumi-lo (pré-validação dos portais).
// POST /auth/verify-otp
func (h *AuthHandler) VerifyOTP(c *gin.Context) {
	var req models.VerifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request", err.Error())
		return
	}

	if err := h.otpService.Verify(c.Request.Context(), req.Email, req.OTP); err != nil {
		h.respondOTPError(c, err)
		return
	}

	utils.RespondOK(c, http.StatusOK, "OTP verified", nil)
}

func (h *AuthHandler) respondOTPError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrOTPNotFound):
		utils.RespondError(c, http.StatusBadRequest, "Please send OTP first", err.Error())
	case errors.Is(err, services.ErrOTPMismatch):
		utils.RespondError(c, http.StatusBadRequest, "Invalid OTP", err.Error())
	default:
		utils.RespondError(c, http.StatusInternalServerError, "Failed to verify OTP", err.Error())
	}
}

// Register cria uma conta no portal de usuários (papel padrão "user").
// POST /auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request", err.Error())
		return
	}

	req.Email = utils.NormalizeEmail(req.Email)

	if err := h.otpService.Consume(c.Request.Context(), req.Email, req.OTP); err != nil {
		h.respondOTPError(c, err)
		return
	}

	if _, err := h.userRepo.GetUserByEmail(c.Request.Context(), req.Email); err == nil {
		utils.RespondError(c, http.StatusConflict, "Email already registered", "")
		return
	} else if !errors.Is(err, repository.ErrNotFound) {
		utils.RespondError(c, http.StatusInternalServerError, "Failed to register", err.Error())
		return
	}

	userType, err := h.userTypeRepo.GetUserTypeByName(c.Request.Context(), "user")
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, "Failed to register", err.Error())
		return
	}

	passwordHash, err := utils.HashPassword(req.Password)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, "Failed to register", err.Error())
		return
	}

	createReq := &models.CreateUserRequest{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		Email:     req.Email,
		Address:   req.Address,
	}

	user, err := h.userRepo.CreateUser(c.Request.Context(), createReq, passwordHash, userType.ID)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, "Failed to register", err.Error())
		return
	}

	resp, err := h.issueSession(c, user)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, "Failed to create session", err.Error())
		return
	}

	h.activity.Record(models.ActivityUserCreated, "User registered", &user.ID, gin.H{"email": user.Email})

	utils.RespondOK(c, http.StatusCreated, "Registration successful", resp)
}

// Login autentica com email, senha e OTP de uso único.
// POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request", err.Error())
		return
	}

	req.Email = utils.NormalizeEmail(req.Email)

	if err := h.otpService.Consume(c.Request.Context(), req.Email, req.OTP); err != nil {
		h.respondOTPError(c, err)
		return
	}

	user, err := h.userRepo.GetUserByEmail(c.Request.Context(), req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			utils.RespondError(c, http.StatusUnauthorized, "Invalid credentials", "")
			return
		}
		utils.RespondError(c, http.StatusInternalServerError, "Failed to login", err.Error())
		return
	}

	if !utils.CheckPasswordHash(req.Password, user.PasswordHash) {
		utils.RespondError(c, http.StatusUnauthorized, "Invalid credentials", "")
		return
	}

	if !user.IsActive {
		utils.RespondError(c, http.StatusForbidden, "Account disabled", "")
		return
	}

	resp, err := h.issueSession(c, user)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, "Failed to create session", err.Error())
		return
	}

	h.activity.Record(models.ActivityLogin, "User logged in", &user.ID, nil)

	utils.RespondOK(c, http.StatusOK, "Login successful", resp)
}

// GoogleLogin autentica via ID token do Google. A conta precisa existir.
// POST /auth/google
func (h *AuthHandler) GoogleLogin(c *gin.Context) {
	var req models.GoogleLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request", err.Error())
		return
	}

	payload, err := idtoken.Validate(c.Request.Context(), req.Token, h.cfg.Google.ClientID)
	if err != nil {
		utils.RespondError(c, http.StatusUnauthorized, "Invalid Google token", err.Error())
		return
	}

	email, _ := payload.Claims["email"].(string)
	if email == "" {
		utils.RespondError(c, http.StatusUnauthorized, "Invalid Google token", "token has no email claim")
		return
	}

	user, err := h.userRepo.GetUserByEmail(c.Request.Context(), utils.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			utils.RespondError(c, http.StatusUnauthorized, "Account not registered", "")
			return
		}
		utils.RespondError(c, http.StatusInternalServerError, "Failed to login", err.Error())
		return
	}

	if !user.IsActive {
		utils.RespondError(c, http.StatusForbidden, "Account disabled", "")
		return
	}

	resp, err := h.issueSession(c, user)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, "Failed to create session", err.Error())
		return
	}

	h.activity.Record(models.ActivityLogin, "User logged in with Google", &user.ID, nil)

	utils.RespondOK(c, http.StatusOK, "Login successful", resp)
}

// ForgotPassword redefine a senha com OTP e encerra todas as sessões.
// POST /auth/forgot-password
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req models.ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request", err.Error())
		return
	}

	req.Email = utils.NormalizeEmail(req.Email)

	if err := h.otpService.Consume(c.Request.Context(), req.Email, req.OTP); err != nil {
		h.respondOTPError(c, err)
		return
	}

	user, err := h.userRepo.GetUserByEmail(c.Request.Context(), req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			utils.RespondError(c, http.StatusNotFound, "User not found", "")
			return
		}
		utils.RespondError(c, http.StatusInternalServerError, "Failed to reset password", err.Error())
		return
	}

	passwordHash, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, "Failed to reset password", err.Error())
		return
	}

	if err := h.userRepo.UpdatePassword(c.Request.Context(), user.ID, passwordHash); err != nil {
		utils.RespondError(c, http.StatusInternalServerError, "Failed to reset password", err.Error())
		return
	}

	// Sessões antigas não sobrevivem à troca de senha
	if err := h.sessionRepo.DeleteUserSessions(c.Request.Context(), user.ID); err != nil {
		utils.RespondError(c, http.StatusInternalServerError, "Failed to reset password", err.Error())
		return
	}

	h.activity.Record(models.ActivityPasswordChanged, "Password reset", &user.ID, nil)

	utils.RespondOK(c, http.StatusOK, "Password reset successful", nil)
}

// RefreshToken troca um refresh token válido por um novo par de tokens.
// A sessão é estendida e o refresh token anterior deixa de valer na prática
// porque a expiração do novo supera a do antigo.
// POST /auth/refresh-token
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req models.RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.RefreshToken == "" {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request", "refreshToken is required")
		return
	}

	claims, err := utils.ValidateToken(req.RefreshToken, utils.TokenTypeRefresh, h.cfg)
	if err != nil {
		utils.RespondError(c, http.StatusUnauthorized, "Invalid or expired refresh token", err.Error())
		return
	}

	if _, err := h.sessionRepo.GetSessionByID(c.Request.Context(), claims.SessionID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			utils.RespondError(c, http.StatusUnauthorized, "Session expired", "")
			return
		}
		utils.RespondError(c, http.StatusInternalServerError, "Failed to refresh token", err.Error())
		return
	}

	expiry := time.Now().Add(time.Duration(h.cfg.JWT.SessionTTLHours) * time.Hour)
	if err := h.sessionRepo.ExtendSession(c.Request.Context(), claims.SessionID, expiry); err != nil {
		utils.RespondError(c, http.StatusInternalServerError, "Failed to refresh token", err.Error())
		return
	}

	accessToken, err := utils.GenerateAccessToken(claims.UserID, claims.SessionID, h.cfg)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, "Failed to refresh token", err.Error())
		return
	}

	refreshToken, err := utils.GenerateRefreshToken(claims.UserID, claims.SessionID, h.cfg)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, "Failed to refresh token", err.Error())
		return
	}

	utils.RespondOK(c, http.StatusOK, "Token refreshed", &models.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	})
}

// Logout destrói a sessão corrente.
// POST /auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	sessionID := c.MustGet(middleware.ContextSessionID).(uuid.UUID)
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)

	if err := h.sessionRepo.DeleteSession(c.Request.Context(), sessionID); err != nil {
		utils.RespondError(c, http.StatusInternalServerError, "Failed to logout", err.Error())
		return
	}

	h.activity.Record(models.ActivityLogout, "User logged out", &userID, nil)

	utils.RespondOK(c, http.StatusOK, "Logout successful", nil)
}

// LogoutAll destrói todas as sessões do usuário corrente.
// POST /auth/logout-all
func (h *AuthHandler) LogoutAll(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)

	if err := h.sessionRepo.DeleteUserSessions(c.Request.Context(), userID); err != nil {
		utils.RespondError(c, http.StatusInternalServerError, "Failed to logout", err.Error())
		return
	}

	h.activity.Record(models.ActivityLogout, "User logged out from all devices", &userID, nil)

	utils.RespondOK(c, http.StatusOK, "All sessions terminated", nil)
}

// GetUserData retorna o perfil do usuário autenticado. Os portais comparam
// estes campos com o snapshot local para detectar contas alteradas.
// GET /user/data
func (h *AuthHandler) GetUserData(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)

	user, err := h.userRepo.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			utils.RespondError(c, http.StatusNotFound, "User not found", "")
			return
		}
		utils.RespondError(c, http.StatusInternalServerError, "Failed to load user", err.Error())
		return
	}

	if user.IsDeleted || !user.IsActive {
		utils.RespondError(c, http.StatusForbidden, "Account disabled", "")
		return
	}

	utils.RespondOK(c, http.StatusOK, "User data", gin.H{"user": user})
}
