package service

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenService emite y valida el token bearer stateless (HS256).
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// Claims lleva sólo el id del sujeto y el flag de admin, más iat/exp.
// Los tokens de recuperación agregan rst y un jti de un solo uso.
type Claims struct {
	UserID  string `json:"_id"`
	IsAdmin bool   `json:"isAdmin"`
	Reset   bool   `json:"rst,omitempty"`
	jwt.RegisteredClaims
}

// Identity es el resultado de verificar un token.
type Identity struct {
	UserID   string
	IsAdmin  bool
	Reset    bool
	TokenID  string
	IssuedAt time.Time
}

// NewTokenService falla si no hay secreto; ttl <= 0 emite tokens sin expiración.
func NewTokenService(secret string, ttl time.Duration) (*TokenService, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, ErrSigningSecretMissing
	}
	if ttl < 0 {
		ttl = 0
	}
	return &TokenService{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

func (s *TokenService) Issue(userID string, isAdmin bool) (string, error) {
	return s.sign(userID, isAdmin, "", s.ttl)
}

// IssueReset emite un token de vida corta tras validar un código de recuperación.
// tokenID queda en jti y debe estar registrado en la cuenta para poder usarse.
func (s *TokenService) IssueReset(userID string, isAdmin bool, tokenID string, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		return "", errors.New("reset token ttl must be positive")
	}
	if strings.TrimSpace(tokenID) == "" {
		return "", errors.New("reset token id is empty")
	}
	return s.sign(userID, isAdmin, tokenID, ttl)
}

func (s *TokenService) Verify(token string) (Identity, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Identity{}, ErrInvalidToken
	}

	var claims Claims
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuedAt(),
		jwt.WithStrictDecoding(),
		jwt.WithTimeFunc(s.now),
	)
	_, err := parser.ParseWithClaims(token, &claims, func(_ *jwt.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil {
		return Identity{}, ErrInvalidToken
	}
	if strings.TrimSpace(claims.UserID) == "" {
		return Identity{}, ErrInvalidToken
	}
	if claims.Reset && claims.ID == "" {
		return Identity{}, ErrInvalidToken
	}

	identity := Identity{
		UserID:  claims.UserID,
		IsAdmin: claims.IsAdmin,
		Reset:   claims.Reset,
		TokenID: claims.ID,
	}
	if claims.IssuedAt != nil {
		identity.IssuedAt = claims.IssuedAt.Time
	}
	return identity, nil
}

func (s *TokenService) sign(userID string, isAdmin bool, resetID string, ttl time.Duration) (string, error) {
	if len(s.secret) == 0 {
		return "", ErrSigningSecretMissing
	}
	if strings.TrimSpace(userID) == "" {
		return "", errors.New("token subject is empty")
	}
	now := s.now().UTC()
	claims := Claims{
		UserID:  userID,
		IsAdmin: isAdmin,
		Reset:   resetID != "",
		RegisteredClaims: jwt.RegisteredClaims{
			ID:       resetID,
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// issuedBefore indica si el token es anterior a t, con la precisión en segundos de iat.
func (i Identity) issuedBefore(t time.Time) bool {
	if i.IssuedAt.IsZero() {
		return !t.IsZero()
	}
	return i.IssuedAt.Before(t.Truncate(time.Second))
}
