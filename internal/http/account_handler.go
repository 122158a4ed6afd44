package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"cinetrack/internal/service"
)

// AccountHandler mantiene dependencias para endpoints de cuentas.
type AccountHandler struct {
	logger   *zap.Logger
	accounts *service.AccountService
}

func NewAccountHandler(logger *zap.Logger, accounts *service.AccountService) *AccountHandler {
	return &AccountHandler{logger: logger, accounts: accounts}
}

// Me maneja GET /api/users.
func (h *AccountHandler) Me(c *gin.Context) {
	identity, ok := mustIdentity(c)
	if !ok {
		return
	}
	profile, err := h.accounts.Profile(c.Request.Context(), identity)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// Register maneja POST /api/users. El token va en el body y en x-auth-token.
func (h *AccountHandler) Register(c *gin.Context) {
	var req service.RegisterInput
	if !bindJSON(c, h.logger, &req, false) {
		return
	}
	token, err := h.accounts.Register(c.Request.Context(), req)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.Header(authHeader, token)
	c.String(http.StatusOK, token)
}

// Update maneja PUT /api/users.
func (h *AccountHandler) Update(c *gin.Context) {
	identity, ok := mustIdentity(c)
	if !ok {
		return
	}
	var req service.UpdateProfileInput
	if !bindJSON(c, h.logger, &req, false) {
		return
	}
	if err := h.accounts.UpdateProfile(c.Request.Context(), identity, req); err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.Status(http.StatusOK)
}

// Delete maneja DELETE /api/users.
func (h *AccountHandler) Delete(c *gin.Context) {
	identity, ok := mustIdentity(c)
	if !ok {
		return
	}
	if err := h.accounts.Delete(c.Request.Context(), identity); err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.Status(http.StatusOK)
}

// Login maneja POST /api/users/login.
func (h *AccountHandler) Login(c *gin.Context) {
	var req service.LoginInput
	if !bindJSON(c, h.logger, &req, false) {
		return
	}
	token, err := h.accounts.Login(c.Request.Context(), req)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.String(http.StatusOK, token)
}

// ChangePassword maneja PUT /api/users/changePassword.
func (h *AccountHandler) ChangePassword(c *gin.Context) {
	identity, ok := mustIdentity(c)
	if !ok {
		return
	}
	var req service.ChangePasswordInput
	if !bindJSON(c, h.logger, &req, false) {
		return
	}
	if err := h.accounts.ChangePassword(c.Request.Context(), identity, req); err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.Status(http.StatusOK)
}

// ForgotPassword maneja POST /api/users/forgotPassword.
func (h *AccountHandler) ForgotPassword(c *gin.Context) {
	var req service.ForgotPasswordInput
	if !bindJSON(c, h.logger, &req, false) {
		return
	}
	if err := h.accounts.ForgotPassword(c.Request.Context(), req); err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.Status(http.StatusOK)
}

// CheckCode maneja POST /api/users/checkCode y devuelve un token de recuperación.
func (h *AccountHandler) CheckCode(c *gin.Context) {
	var req service.CheckCodeInput
	if !bindJSON(c, h.logger, &req, false) {
		return
	}
	token, err := h.accounts.CheckResetCode(c.Request.Context(), req)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.String(http.StatusOK, token)
}
