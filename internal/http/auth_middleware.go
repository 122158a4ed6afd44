package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"cinetrack/internal/service"
)

const (
	authHeader  = "x-auth-token"
	identityKey = "auth_identity"
)

type identityCtxKey struct{}

// AuthMiddleware valida el token de x-auth-token sin consultar la base y deja
// la identidad en el contexto del request y en el de gin.
func AuthMiddleware(tokens *service.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokens == nil {
			c.String(http.StatusInternalServerError, msgInternal)
			c.Abort()
			return
		}

		token := strings.TrimSpace(c.GetHeader(authHeader))
		if token == "" {
			c.String(http.StatusUnauthorized, msgNoToken)
			c.Abort()
			return
		}

		identity, err := tokens.Verify(token)
		if err != nil {
			c.String(http.StatusBadRequest, msgInvalidToken)
			c.Abort()
			return
		}

		c.Set(identityKey, identity)
		c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), identityCtxKey{}, identity))
		c.Next()
	}
}

// RequireAdmin va después de AuthMiddleware.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := GetIdentity(c)
		if !ok || !identity.IsAdmin {
			c.String(http.StatusUnauthorized, msgNotAdmin)
			c.Abort()
			return
		}
		c.Next()
	}
}

// GetIdentity obtiene la identidad autenticada desde el contexto de gin.
func GetIdentity(c *gin.Context) (service.Identity, bool) {
	val, ok := c.Get(identityKey)
	if !ok {
		return service.Identity{}, false
	}
	identity, ok := val.(service.Identity)
	return identity, ok
}

func IdentityFromContext(ctx context.Context) (service.Identity, bool) {
	identity, ok := ctx.Value(identityCtxKey{}).(service.Identity)
	return identity, ok
}

// mustIdentity responde 401 si la ruta quedó sin AuthMiddleware.
func mustIdentity(c *gin.Context) (service.Identity, bool) {
	identity, ok := GetIdentity(c)
	if !ok {
		c.String(http.StatusUnauthorized, msgNoToken)
		return service.Identity{}, false
	}
	return identity, true
}
