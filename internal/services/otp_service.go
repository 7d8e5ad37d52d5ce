package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/business-admin-api/internal/cache"
	"github.com/business-admin-api/internal/config"
	"github.com/business-admin-api/internal/utils"
	"github.com/redis/go-redis/v9"
)

var (
	// ErrOTPNotFound indica que nenhum código foi enviado ou já expirou
	ErrOTPNotFound = errors.New("otp not found or expired")
	// ErrOTPMismatch indica código incorreto
	ErrOTPMismatch = errors.New("invalid otp code")
)

// OTPService gerencia códigos de verificação de curta duração no Redis.
type OTPService struct {
	cache *cache.Client
	cfg   *config.Config
}

func NewOTPService(cacheClient *cache.Client, cfg *config.Config) *OTPService {
	return &OTPService{cache: cacheClient, cfg: cfg}
}

func otpKey(email string) string {
	return fmt.Sprintf("otp:%s", utils.NormalizeEmail(email))
}

// GenerateAndStore cria um código novo e grava com TTL. Sending a new code
// replaces any previous one for the same email.
func (s *OTPService) GenerateAndStore(ctx context.Context, email string) (string, error) {
	code := utils.GenerateOTPCode(s.cfg.OTP.CodeLength)

	ttl := time.Duration(s.cfg.OTP.TTLMinutes) * time.Minute
	if err := s.cache.Set(ctx, otpKey(email), code, ttl); err != nil {
		return "", fmt.Errorf("failed to store otp: %w", err)
	}

	return code, nil
}

// Verify compara o código sem consumi-lo (pré-validação do fluxo de login)
func (s *OTPService) Verify(ctx context.Context, email, code string) error {
	stored, err := s.cache.Get(ctx, otpKey(email))
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrOTPNotFound
		}
		return fmt.Errorf("failed to read otp: %w", err)
	}

	if stored != code {
		return ErrOTPMismatch
	}

	return nil
}

// Consume valida o código e o invalida. Single use: a second login with the
// same code must fail.
func (s *OTPService) Consume(ctx context.Context, email, code string) error {
	if err := s.Verify(ctx, email, code); err != nil {
		return err
	}

	if err := s.cache.Delete(ctx, otpKey(email)); err != nil {
		return fmt.Errorf("failed to consume otp: %w", err)
	}

	return nil
}
