package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	"cinetrack/internal/domain"
	"cinetrack/internal/repository"
)

const (
	// 32 símbolos sin 0/O ni 1/I: 8 caracteres dan 40 bits de entropía.
	resetCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	resetCodeLength   = 8
	defaultResetTTL   = 15 * time.Minute
)

// ResetCodeService genera, guarda (sólo el hash) y consume códigos de recuperación.
type ResetCodeService struct {
	accounts repository.AccountRepository
	hasher   Hasher
	ttl      time.Duration
	now      func() time.Time
}

func NewResetCodeService(accounts repository.AccountRepository, hasher Hasher, ttl time.Duration) *ResetCodeService {
	if ttl <= 0 {
		ttl = defaultResetTTL
	}
	return &ResetCodeService{
		accounts: accounts,
		hasher:   hasher,
		ttl:      ttl,
		now:      time.Now,
	}
}

// Generate devuelve un código corto en mayúsculas usando crypto/rand.
func (s *ResetCodeService) Generate() (string, error) {
	max := big.NewInt(int64(len(resetCodeAlphabet)))
	var b strings.Builder
	b.Grow(resetCodeLength)
	for i := 0; i < resetCodeLength; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("generate reset code: %w", err)
		}
		b.WriteByte(resetCodeAlphabet[n.Int64()])
	}
	return b.String(), nil
}

// Store reemplaza cualquier código pendiente de la cuenta (gana la última escritura).
func (s *ResetCodeService) Store(ctx context.Context, accountID, code string) (time.Time, error) {
	hash, err := s.hasher.Hash(ctx, normalizeResetCode(code))
	if err != nil {
		return time.Time{}, fmt.Errorf("hash reset code: %w", err)
	}
	expiresAt := s.now().UTC().Add(s.ttl)
	if err := s.accounts.SetResetCode(ctx, accountID, hash, &expiresAt); err != nil {
		return time.Time{}, err
	}
	return expiresAt, nil
}

// Check consume el código: sólo un intento exitoso por código emitido.
func (s *ResetCodeService) Check(ctx context.Context, account domain.Account, supplied string) error {
	if !account.HasResetCode() {
		return ErrInvalidCode
	}
	if account.ResetCodeExpiresAt != nil && s.now().UTC().After(*account.ResetCodeExpiresAt) {
		return ErrInvalidCode
	}
	supplied = normalizeResetCode(supplied)
	if supplied == "" || !s.hasher.Verify(ctx, supplied, account.ResetCodeHash) {
		return ErrInvalidCode
	}
	consumed, err := s.accounts.ConsumeResetCode(ctx, account.ID, account.ResetCodeHash)
	if err != nil {
		return fmt.Errorf("clear reset code: %w", err)
	}
	if !consumed {
		return ErrInvalidCode
	}
	return nil
}

func normalizeResetCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
