package utils

import (
	"fmt"
	"strings"
	"time"

	"github.com/business-admin-api/internal/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Token types carried in the JWT claims
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// Claims representa os claims do JWT
type Claims struct {
	UserID    uuid.UUID `json:"user_id"`
	SessionID uuid.UUID `json:"session_id"`
	TokenType string    `json:"token_type"`
	jwt.RegisteredClaims
}

// HashPassword cria um hash bcrypt da senha
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

// CheckPasswordHash verifica se a senha corresponde ao hash
func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// GenerateAccessToken gera o token de acesso de curta duração
func GenerateAccessToken(userID, sessionID uuid.UUID, cfg *config.Config) (string, error) {
	ttl := time.Duration(cfg.JWT.AccessTTLMinutes) * time.Minute
	return generateToken(userID, sessionID, TokenTypeAccess, ttl, cfg)
}

// GenerateRefreshToken gera o token de renovação atrelado à sessão
func GenerateRefreshToken(userID, sessionID uuid.UUID, cfg *config.Config) (string, error) {
	ttl := time.Duration(cfg.JWT.SessionTTLHours) * time.Hour
	return generateToken(userID, sessionID, TokenTypeRefresh, ttl, cfg)
}

func generateToken(userID, sessionID uuid.UUID, tokenType string, ttl time.Duration, cfg *config.Config) (string, error) {
	now := time.Now()

	claims := &Claims{
		UserID:    userID,
		SessionID: sessionID,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(cfg.JWT.Secret))
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// ValidateToken valida um JWT do tipo esperado e retorna os claims
func ValidateToken(tokenString, expectedType string, cfg *config.Config) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(cfg.JWT.Secret), nil
	})

	if err != nil {
		return nil, err
	}

	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	if claims.TokenType != expectedType {
		return nil, fmt.Errorf("wrong token type: expected %s", expectedType)
	}

	return claims, nil
}

// NormalizeSlug normaliza um texto para formato slug (lowercase, hífens)
func NormalizeSlug(text string) string {
	slug := strings.ToLower(text)

	slug = strings.ReplaceAll(slug, " ", "-")
	slug = strings.ReplaceAll(slug, "_", "-")

	// Remover caracteres não alfanuméricos (exceto hífen)
	var result strings.Builder
	for _, r := range slug {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' {
			result.WriteRune(r)
		}
	}

	// Remover hífens duplicados e do início/fim
	slug = result.String()
	for strings.Contains(slug, "--") {
		slug = strings.ReplaceAll(slug, "--", "-")
	}
	slug = strings.Trim(slug, "-")

	return slug
}

// NormalizeEmail normaliza um email (lowercase e trim)
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
