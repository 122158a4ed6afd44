package service

import "errors"

var (
	ErrInvalidToken            = errors.New("invalid token")
	ErrSigningSecretMissing    = errors.New("jwt signing secret is not configured")
	ErrDuplicateEmail          = errors.New("email already registered")
	ErrInvalidCredentials      = errors.New("invalid credentials")
	ErrInvalidPassword         = errors.New("invalid current password")
	ErrCurrentPasswordRequired = errors.New("current password required")
	ErrAccountNotFound         = errors.New("account not found")
	ErrEmailNotRegistered      = errors.New("email not registered")
	ErrInvalidCode             = errors.New("invalid reset code")
	ErrEmailSendFailure        = errors.New("email send failed")
	ErrMovieNotFound           = errors.New("movie not found")
	ErrDuplicateMovie          = errors.New("movie already registered")
	ErrRateLimited             = errors.New("rate limited")
)

// ValidationError describe la primera regla de entrada violada.
// Message se devuelve al cliente sin cambios.
type ValidationError struct {
	Message string
}

func (e ValidationError) Error() string {
	return e.Message
}
