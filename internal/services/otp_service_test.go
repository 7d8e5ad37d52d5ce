package services

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/business-admin-api/internal/cache"
	"github.com/business-admin-api/internal/config"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestOTPService(t *testing.T) (*OTPService, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)

	client := &cache.Client{Client: redis.NewClient(&redis.Options{Addr: mr.Addr()})}
	cfg := &config.Config{
		OTP: config.OTPConfig{TTLMinutes: 5, CodeLength: 6},
	}

	return NewOTPService(client, cfg), mr
}

func TestOTPGenerateAndConsume(t *testing.T) {
	svc, _ := newTestOTPService(t)
	ctx := context.Background()

	code, err := svc.GenerateAndStore(ctx, "User@Example.com")
	require.NoError(t, err)
	assert.Len(t, code, 6)

	// Verify does not consume
	require.NoError(t, svc.Verify(ctx, "user@example.com", code))
	require.NoError(t, svc.Verify(ctx, "user@example.com", code))

	// Consume invalidates the code
	require.NoError(t, svc.Consume(ctx, "user@example.com", code))
	assert.ErrorIs(t, svc.Consume(ctx, "user@example.com", code), ErrOTPNotFound)
}

func TestOTPWrongCode(t *testing.T) {
	svc, _ := newTestOTPService(t)
	ctx := context.Background()

	code, err := svc.GenerateAndStore(ctx, "user@example.com")
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Verify(ctx, "user@example.com", "000000"+code), ErrOTPMismatch)

	// Wrong code must not consume the stored one
	require.NoError(t, svc.Consume(ctx, "user@example.com", code))
}

func TestOTPExpiry(t *testing.T) {
	svc, mr := newTestOTPService(t)
	ctx := context.Background()

	code, err := svc.GenerateAndStore(ctx, "user@example.com")
	require.NoError(t, err)

	mr.FastForward(6 * time.Minute)

	assert.ErrorIs(t, svc.Verify(ctx, "user@example.com", code), ErrOTPNotFound)
}

func TestOTPResendReplacesCode(t *testing.T) {
	svc, _ := newTestOTPService(t)
	ctx := context.Background()

	first, err := svc.GenerateAndStore(ctx, "user@example.com")
	require.NoError(t, err)
	second, err := svc.GenerateAndStore(ctx, "user@example.com")
	require.NoError(t, err)

	if first != second {
		assert.ErrorIs(t, svc.Verify(ctx, "user@example.com", first), ErrOTPMismatch)
	}
	require.NoError(t, svc.Verify(ctx, "user@example.com", second))
}

func TestOTPUnknownEmail(t *testing.T) {
	svc, _ := newTestOTPService(t)

	err := svc.Verify(context.Background(), "nobody@example.com", "123456")
	assert.ErrorIs(t, err, ErrOTPNotFound)
}
