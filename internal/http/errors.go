package http

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"cinetrack/internal/service"
)

const (
	msgNoToken         = "No token provided..."
	msgInvalidToken    = "Invalid token..."
	msgNotAdmin        = "Ah ah ah! You didn't say the magic word!"
	msgTooManyRequests = "Too many requests, please try again later."
	msgInvalidBody     = "Invalid request body"
	msgInternal        = "Something went wrong."
)

type errorMapping struct {
	target  error
	status  int
	message string
}

var errorTable = []errorMapping{
	{service.ErrInvalidToken, http.StatusBadRequest, msgInvalidToken},
	{service.ErrDuplicateEmail, http.StatusBadRequest, "User already registered"},
	{service.ErrInvalidCredentials, http.StatusBadRequest, "Invalid email or password"},
	{service.ErrInvalidPassword, http.StatusBadRequest, "Invalid password"},
	{service.ErrCurrentPasswordRequired, http.StatusBadRequest, "Current password is required"},
	{service.ErrAccountNotFound, http.StatusNotFound, "The user with the given ID was not found."},
	{service.ErrEmailNotRegistered, http.StatusNotFound, "No user with that email address"},
	{service.ErrInvalidCode, http.StatusBadRequest, "Invalid Code"},
	{service.ErrEmailSendFailure, http.StatusServiceUnavailable, "Email delivery unavailable, please try again later."},
	{service.ErrMovieNotFound, http.StatusNotFound, "The movie with the given ID was not found."},
	{service.ErrDuplicateMovie, http.StatusBadRequest, "Movie already registered"},
	{service.ErrRateLimited, http.StatusTooManyRequests, msgTooManyRequests},
}

// writeError traduce errores de servicio a status y mensaje en texto plano.
// Los errores no reconocidos se loguean y el cliente sólo ve un mensaje genérico.
func writeError(c *gin.Context, logger *zap.Logger, err error) {
	var verr service.ValidationError
	if errors.As(err, &verr) {
		logger.Warn("validation failed", zap.String("path", c.FullPath()), zap.String("reason", verr.Message))
		c.String(http.StatusBadRequest, verr.Message)
		return
	}
	for _, m := range errorTable {
		if errors.Is(err, m.target) {
			c.String(m.status, m.message)
			return
		}
	}
	logger.Error("request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Error(err),
	)
	c.String(http.StatusInternalServerError, msgInternal)
}

// bindJSON decodifica el body; un body vacío es válido sólo si optional.
func bindJSON(c *gin.Context, logger *zap.Logger, dst any, optional bool) bool {
	err := c.ShouldBindJSON(dst)
	if err == nil || (optional && errors.Is(err, io.EOF)) {
		return true
	}
	logger.Warn("invalid request body", zap.String("path", c.FullPath()), zap.Error(err))
	c.String(http.StatusBadRequest, msgInvalidBody)
	return false
}
