package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/salatech/promotion-service/internal/middleware"
	"github.com/salatech/promotion-service/internal/model"
	"github.com/salatech/promotion-service/internal/repository"
	"github.com/salatech/promotion-service/internal/response"
	"github.com/salatech/promotion-service/internal/service"
	"github.com/salatech/promotion-service/internal/validator"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	authService *service.AuthService
	admins      *repository.AdminRepository
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *service.AuthService, admins *repository.AdminRepository) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		admins:      admins,
	}
}

// Login godoc
// POST /api/v1/auth/login
// Validates email + password, returns a JWT with permissions embedded.
func (h *AuthHandler) Login(c *gin.Context) {
	var req model.AdminLoginRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	admin, err := h.admins.GetByEmail(c.Request.Context(), req.Email)
	if err != nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrInvalidCredentials)
		return
	}

	if err := h.authService.CheckPassword(admin.PasswordHash, req.Password); err != nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrInvalidCredentials)
		return
	}

	token, err := h.authService.GenerateToken(admin, model.AllPermissions)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, model.AdminLoginResponse{
		Token: token,
		Admin: *admin,
	})
}

// Me godoc
// GET /api/v1/auth/me
// Returns the profile of the currently authenticated admin.
func (h *AuthHandler) Me(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	admin, err := h.admins.GetByID(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"admin":       admin,
		"permissions": claims.Permissions,
	})
}
