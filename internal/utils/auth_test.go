package utils

import (
	"testing"

	"github.com/business-admin-api/internal/config"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		JWT: config.JWTConfig{
			Secret:           "test-secret",
			AccessTTLMinutes: 60,
			SessionTTLHours:  24,
		},
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("s3cret-pass")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret-pass", hash)

	assert.True(t, CheckPasswordHash("s3cret-pass", hash))
	assert.False(t, CheckPasswordHash("wrong-pass", hash))
}

func TestTokenRoundTrip(t *testing.T) {
	cfg := testConfig()
	userID := uuid.New()
	sessionID := uuid.New()

	access, err := GenerateAccessToken(userID, sessionID, cfg)
	require.NoError(t, err)

	claims, err := ValidateToken(access, TokenTypeAccess, cfg)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, sessionID, claims.SessionID)
	assert.Equal(t, TokenTypeAccess, claims.TokenType)
}

func TestTokenTypeMismatch(t *testing.T) {
	cfg := testConfig()
	userID := uuid.New()
	sessionID := uuid.New()

	refresh, err := GenerateRefreshToken(userID, sessionID, cfg)
	require.NoError(t, err)

	// Um refresh token não pode ser aceito como access token
	_, err = ValidateToken(refresh, TokenTypeAccess, cfg)
	assert.Error(t, err)
}

func TestTokenWrongSecret(t *testing.T) {
	cfg := testConfig()

	access, err := GenerateAccessToken(uuid.New(), uuid.New(), cfg)
	require.NoError(t, err)

	other := testConfig()
	other.JWT.Secret = "another-secret"
	_, err = ValidateToken(access, TokenTypeAccess, other)
	assert.Error(t, err)
}

func TestNormalizeSlug(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"User Management", "user-management"},
		{"Sales_Reports", "sales-reports"},
		{"  Already-ok  ", "already-ok"},
		{"Weird!@#Chars", "weirdchars"},
		{"double--dash", "double-dash"},
		{"-trim-", "trim"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeSlug(tt.input))
		})
	}
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "user@example.com", NormalizeEmail("  User@Example.COM "))
}

func TestGenerateOTPCode(t *testing.T) {
	code := GenerateOTPCode(6)
	assert.Len(t, code, 6)
	for _, r := range code {
		assert.True(t, r >= '0' && r <= '9')
	}
}
