package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"cinetrack/internal/domain"
	"cinetrack/internal/email"
	"cinetrack/internal/repository"
)

// AccountService coordina registro, login y ciclo de vida de la cuenta.
type AccountService struct {
	logger      *zap.Logger
	accounts    repository.AccountRepository
	library     repository.LibraryRepository
	hasher      Hasher
	tokens      *TokenService
	resetCodes  *ResetCodeService
	emailSender email.Sender
	settings    AccountSettings
	now         func() time.Time

	dummyOnce sync.Once
	dummyHash string
}

// AccountSettings agrupa parámetros de configuración del ciclo de vida.
type AccountSettings struct {
	DefaultAvatarURL string
	ResetTokenTTL    time.Duration
}

func NewAccountService(
	logger *zap.Logger,
	accounts repository.AccountRepository,
	library repository.LibraryRepository,
	hasher Hasher,
	tokens *TokenService,
	resetCodes *ResetCodeService,
	emailSender email.Sender,
	settings AccountSettings,
) *AccountService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if settings.ResetTokenTTL <= 0 {
		settings.ResetTokenTTL = defaultResetTTL
	}
	return &AccountService{
		logger:      logger,
		accounts:    accounts,
		library:     library,
		hasher:      hasher,
		tokens:      tokens,
		resetCodes:  resetCodes,
		emailSender: emailSender,
		settings:    settings,
		now:         time.Now,
	}
}

type RegisterInput struct {
	Name     string `json:"name" validate:"required,min=1,max=100"`
	Email    string `json:"email" validate:"required,email,max=100"`
	Password string `json:"password" validate:"required,max=72,pwbytes,password"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email,max=100"`
	Password string `json:"password" validate:"required,max=72,pwbytes,password"`
}

type UpdateProfileInput struct {
	Name  *string `json:"name" validate:"omitempty,min=1,max=100"`
	Email *string `json:"email" validate:"omitempty,email,max=100"`
	Img   *string `json:"img" validate:"omitempty,min=1,max=100"`
}

type ChangePasswordInput struct {
	Password        string `json:"password" validate:"required,max=72,pwbytes,password"`
	CurrentPassword string `json:"currentPassword" validate:"omitempty,max=72,pwbytes"`
}

type ForgotPasswordInput struct {
	Email string `json:"email" validate:"required,email,max=100"`
}

type CheckCodeInput struct {
	Email string `json:"email" validate:"required,email,max=100"`
	Code  string `json:"code" validate:"required,max=16"`
}

// Register crea la cuenta y devuelve un token para la nueva sesión.
func (s *AccountService) Register(ctx context.Context, input RegisterInput) (string, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Email = normalizeEmail(input.Email)
	if err := validateStruct(input); err != nil {
		return "", err
	}

	_, err := s.accounts.GetByEmail(ctx, input.Email)
	if err == nil {
		return "", ErrDuplicateEmail
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return "", fmt.Errorf("lookup email: %w", err)
	}

	passwordHash, err := s.hasher.Hash(ctx, input.Password)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}

	now := s.now().UTC()
	account := domain.Account{
		ID:                uuid.NewString(),
		Name:              input.Name,
		Email:             input.Email,
		PasswordHash:      passwordHash,
		Img:               s.settings.DefaultAvatarURL,
		PasswordChangedAt: now,
		CreatedAt:         now,
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		// El índice único cubre la carrera entre dos registros simultáneos.
		if errors.Is(err, repository.ErrDuplicate) {
			return "", ErrDuplicateEmail
		}
		return "", fmt.Errorf("create account: %w", err)
	}

	s.logger.Info("account registered", zap.String("user_id", account.ID))
	return s.tokens.Issue(account.ID, account.IsAdmin)
}

// Login no distingue email inexistente de contraseña incorrecta.
func (s *AccountService) Login(ctx context.Context, input LoginInput) (string, error) {
	input.Email = normalizeEmail(input.Email)
	if err := validateStruct(input); err != nil {
		return "", err
	}

	account, err := s.accounts.GetByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			s.burnHash(ctx, input.Password)
			return "", ErrInvalidCredentials
		}
		return "", fmt.Errorf("lookup email: %w", err)
	}
	if !s.hasher.Verify(ctx, input.Password, account.PasswordHash) {
		return "", ErrInvalidCredentials
	}
	return s.tokens.Issue(account.ID, account.IsAdmin)
}

// ResolveAccount carga la cuenta del token y rechaza tokens previos al último
// cambio de contraseña.
func (s *AccountService) ResolveAccount(ctx context.Context, identity Identity) (domain.Account, error) {
	return resolveAccount(ctx, s.accounts, identity)
}

func (s *AccountService) Profile(ctx context.Context, identity Identity) (domain.Profile, error) {
	account, err := s.ResolveAccount(ctx, identity)
	if err != nil {
		return domain.Profile{}, err
	}

	profile := domain.Profile{Account: account}
	lists := []struct {
		kind domain.ListKind
		dst  *[]string
	}{
		{domain.ListWatchlist, &profile.Watchlist},
		{domain.ListFavorites, &profile.Favorites},
		{domain.ListSeen, &profile.Seen},
	}
	for _, l := range lists {
		ids, err := s.library.ListMovieIDs(ctx, account.ID, l.kind)
		if err != nil {
			return domain.Profile{}, fmt.Errorf("load %s: %w", l.kind, err)
		}
		*l.dst = nonNil(ids)
	}
	ratings, err := s.library.UserRatings(ctx, account.ID)
	if err != nil {
		return domain.Profile{}, fmt.Errorf("load ratings: %w", err)
	}
	profile.Ratings = nonNil(ratings)
	return profile, nil
}

func (s *AccountService) UpdateProfile(ctx context.Context, identity Identity, input UpdateProfileInput) error {
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		input.Name = &name
	}
	if input.Email != nil {
		addr := normalizeEmail(*input.Email)
		input.Email = &addr
	}
	if err := validateStruct(input); err != nil {
		return err
	}

	account, err := s.ResolveAccount(ctx, identity)
	if err != nil {
		return err
	}
	if input.Email != nil && *input.Email != account.Email {
		other, err := s.accounts.GetByEmail(ctx, *input.Email)
		if err == nil && other.ID != account.ID {
			return ErrDuplicateEmail
		}
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("lookup email: %w", err)
		}
	}

	err = s.accounts.UpdateProfile(ctx, account.ID, repository.AccountUpdate{
		Name:  input.Name,
		Email: input.Email,
		Img:   input.Img,
	})
	switch {
	case errors.Is(err, repository.ErrDuplicate):
		return ErrDuplicateEmail
	case errors.Is(err, pgx.ErrNoRows):
		return ErrAccountNotFound
	case err != nil:
		return fmt.Errorf("update account: %w", err)
	}
	return nil
}

// ChangePassword exige la contraseña actual, salvo que el token venga de un
// código de recuperación recién validado. Ese token sirve una sola vez.
func (s *AccountService) ChangePassword(ctx context.Context, identity Identity, input ChangePasswordInput) error {
	if err := validateStruct(input); err != nil {
		return err
	}

	account, err := s.ResolveAccount(ctx, identity)
	if err != nil {
		return err
	}

	switch {
	case input.CurrentPassword != "":
		if !s.hasher.Verify(ctx, input.CurrentPassword, account.PasswordHash) {
			return ErrInvalidPassword
		}
	case !identity.Reset:
		return ErrCurrentPasswordRequired
	default:
		consumed, err := s.accounts.ConsumeResetToken(ctx, account.ID, identity.TokenID)
		if err != nil {
			return fmt.Errorf("consume reset token: %w", err)
		}
		if !consumed {
			return ErrInvalidToken
		}
	}

	passwordHash, err := s.hasher.Hash(ctx, input.Password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.accounts.UpdatePassword(ctx, account.ID, passwordHash, s.now().UTC()); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrAccountNotFound
		}
		return fmt.Errorf("update password: %w", err)
	}
	s.logger.Info("password changed", zap.String("user_id", account.ID), zap.Bool("via_reset", input.CurrentPassword == ""))
	return nil
}

// Delete borra la cuenta del sujeto del token, nunca un id provisto por el cliente.
func (s *AccountService) Delete(ctx context.Context, identity Identity) error {
	account, err := s.ResolveAccount(ctx, identity)
	if err != nil {
		return err
	}
	if err := s.accounts.Delete(ctx, account.ID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrAccountNotFound
		}
		return fmt.Errorf("delete account: %w", err)
	}
	s.logger.Info("account deleted", zap.String("user_id", account.ID))
	return nil
}

// ForgotPassword guarda primero el hash del código y luego envía el email; si el
// envío falla el código queda vigente y el usuario puede reintentar.
func (s *AccountService) ForgotPassword(ctx context.Context, input ForgotPasswordInput) error {
	input.Email = normalizeEmail(input.Email)
	if err := validateStruct(input); err != nil {
		return err
	}

	account, err := s.accounts.GetByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrEmailNotRegistered
		}
		return fmt.Errorf("lookup email: %w", err)
	}

	code, err := s.resetCodes.Generate()
	if err != nil {
		return err
	}
	expiresAt, err := s.resetCodes.Store(ctx, account.ID, code)
	if err != nil {
		return fmt.Errorf("store reset code: %w", err)
	}

	if s.emailSender == nil {
		return ErrEmailSendFailure
	}
	if err := s.emailSender.SendPasswordReset(ctx, account.Email, code, expiresAt); err != nil {
		s.logger.Warn("send password reset failed", zap.Error(err), zap.String("user_id", account.ID))
		return ErrEmailSendFailure
	}
	return nil
}

// CheckResetCode consume el código y devuelve un token de recuperación.
func (s *AccountService) CheckResetCode(ctx context.Context, input CheckCodeInput) (string, error) {
	input.Email = normalizeEmail(input.Email)
	if err := validateStruct(input); err != nil {
		return "", err
	}

	account, err := s.accounts.GetByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrInvalidCode
		}
		return "", fmt.Errorf("lookup email: %w", err)
	}
	if err := s.resetCodes.Check(ctx, account, input.Code); err != nil {
		return "", err
	}
	tokenID := uuid.NewString()
	if err := s.accounts.SetResetToken(ctx, account.ID, tokenID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrInvalidCode
		}
		return "", fmt.Errorf("store reset token: %w", err)
	}
	return s.tokens.IssueReset(account.ID, account.IsAdmin, tokenID, s.settings.ResetTokenTTL)
}

// burnHash iguala el costo de un login con email inexistente al de uno real.
func (s *AccountService) burnHash(ctx context.Context, password string) {
	s.dummyOnce.Do(func() {
		hash, err := s.hasher.Hash(ctx, "cinetrack-timing-equalizer")
		if err == nil {
			s.dummyHash = hash
		}
	})
	if s.dummyHash != "" {
		_ = s.hasher.Verify(ctx, password, s.dummyHash)
	}
}

func resolveAccount(ctx context.Context, accounts repository.AccountRepository, identity Identity) (domain.Account, error) {
	account, err := accounts.GetByID(ctx, identity.UserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Account{}, ErrAccountNotFound
		}
		return domain.Account{}, fmt.Errorf("load account: %w", err)
	}
	if identity.issuedBefore(account.PasswordChangedAt) {
		return domain.Account{}, ErrInvalidToken
	}
	return account, nil
}

func nonNil[T any](values []T) []T {
	if values == nil {
		return []T{}
	}
	return values
}
