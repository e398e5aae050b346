package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"aptcare/backend/internal/dto"
	"aptcare/backend/internal/service"
	"aptcare/backend/pkg/response"
)

// AuthHandler authentication endpoints
type AuthHandler struct {
	authSvc service.AuthService
}

// NewAuthHandler creates an AuthHandler
func NewAuthHandler(authSvc service.AuthService) *AuthHandler {
	return &AuthHandler{authSvc: authSvc}
}

// Login
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	result, err := h.authSvc.Login(c.Request.Context(), &req)
	if err != nil {
		h.handleAuthError(c, err)
		return
	}

	response.OK(c, result)
}

// Refresh exchanges a refresh token for a new pair
// POST /api/v1/auth/refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req dto.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	result, err := h.authSvc.Refresh(c.Request.Context(), &req)
	if err != nil {
		h.handleAuthError(c, err)
		return
	}

	response.OK(c, result)
}

// Logout revokes the current access token
// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	claims, ok := MustGetClaims(c)
	if !ok {
		return
	}

	// body is optional
	var req dto.LogoutRequest
	_ = c.ShouldBindJSON(&req)

	if err := h.authSvc.Logout(c.Request.Context(), claims, req.RefreshToken); err != nil {
		handleError(c, err)
		return
	}

	response.OKMessage(c, "Đăng xuất thành công")
}

// Me
// GET /api/v1/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	user, err := h.authSvc.Me(c.Request.Context(), caller)
	if err != nil {
		handleError(c, err)
		return
	}

	response.OK(c, user)
}

// ChangePassword
// PUT /api/v1/auth/password
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	var req dto.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	msg, err := h.authSvc.ChangePassword(c.Request.Context(), caller, &req)
	if err != nil {
		handleError(c, err)
		return
	}

	response.OKMessage(c, msg)
}

// RegisterDevice stores a push device token
// POST /api/v1/auth/devices
func (h *AuthHandler) RegisterDevice(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	var req dto.DeviceTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	msg, err := h.authSvc.RegisterDeviceToken(c.Request.Context(), caller, &req)
	if err != nil {
		handleError(c, err)
		return
	}

	response.OKMessage(c, msg)
}

// RemoveDevice
// DELETE /api/v1/auth/devices/:token
func (h *AuthHandler) RemoveDevice(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	msg, err := h.authSvc.RemoveDeviceToken(c.Request.Context(), caller, c.Param("token"))
	if err != nil {
		handleError(c, err)
		return
	}

	response.OKMessage(c, msg)
}

// handleAuthError credential failures are 401, everything else goes by kind
func (h *AuthHandler) handleAuthError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		response.Unauthorized(c, 11001, service.ErrInvalidCredentials.Message)
	case errors.Is(err, service.ErrInvalidRefreshToken):
		response.Unauthorized(c, 11002, service.ErrInvalidRefreshToken.Message)
	default:
		handleError(c, err)
	}
}
