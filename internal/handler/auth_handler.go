// Package handler provides HTTP handlers for API endpoints.
package handler

import (
	"net/http"
	"time"

	"account-service/internal/middleware"
	"account-service/internal/services"
	"account-service/internal/transport/httpdto"
	apperrors "account-service/pkg/errors"

	"github.com/gin-gonic/gin"
)

const (
	AvatarField        = "avatar"
	CoverImageField    = "coverImage"
	RefreshTokenCookie = "refreshToken"
)

// CookieConfig controls the attributes of the credential cookies.
type CookieConfig struct {
	Secure bool
	Domain string
}

// AuthHandler handles account HTTP endpoints.
type AuthHandler struct {
	service *services.AuthService
	cookies CookieConfig
}

// NewAuthHandler creates an auth handler.
func NewAuthHandler(service *services.AuthService, cookies CookieConfig) *AuthHandler {
	return &AuthHandler{service: service, cookies: cookies}
}

// Register handles account registration. Expects the StageFiles middleware
// to have saved the avatar and cover image.
func (h *AuthHandler) Register(c *gin.Context) {
	var req httpdto.RegisterRequest
	if err := c.ShouldBind(&req); err != nil {
		_ = c.Error(apperrors.Validation("invalid request"))
		return
	}

	profile, err := h.service.Register(c.Request.Context(), services.RegisterInput{
		FullName:       req.FullName,
		Email:          req.Email,
		Username:       req.Username,
		Password:       req.Password,
		AvatarPath:     middleware.StagedFile(c, AvatarField),
		CoverImagePath: middleware.StagedFile(c, CoverImageField),
	})
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, httpdto.NewSuccessResponse(http.StatusCreated, profile, "User successfully registered"))
}

// Login handles account authentication and sets both credential cookies.
func (h *AuthHandler) Login(c *gin.Context) {
	var req httpdto.LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		_ = c.Error(apperrors.Validation("invalid request"))
		return
	}

	res, err := h.service.Login(c.Request.Context(), services.LoginInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}

	h.setCookie(c, middleware.AccessTokenCookie, res.AccessToken, res.AccessTTL)
	h.setCookie(c, RefreshTokenCookie, res.RefreshToken, res.RefreshTTL)

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(http.StatusOK, httpdto.LoginResponse{
		User:         res.User,
		AccessToken:  res.AccessToken,
		RefreshToken: res.RefreshToken,
	}, "User logged in successfully"))
}

// Logout clears the stored refresh token and both cookies.
func (h *AuthHandler) Logout(c *gin.Context) {
	accountID, ok := services.AccountIDFromContext(c.Request.Context())
	if !ok {
		_ = c.Error(apperrors.Unauthorized("Unauthorized request"))
		return
	}

	if err := h.service.Logout(c.Request.Context(), accountID); err != nil {
		_ = c.Error(err)
		return
	}

	h.clearCookie(c, middleware.AccessTokenCookie)
	h.clearCookie(c, RefreshTokenCookie)
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(http.StatusOK, gin.H{}, "User logged out"))
}

// Me returns the sanitized profile of the authenticated account.
func (h *AuthHandler) Me(c *gin.Context) {
	accountID, ok := services.AccountIDFromContext(c.Request.Context())
	if !ok {
		_ = c.Error(apperrors.Unauthorized("Unauthorized request"))
		return
	}

	profile, err := h.service.CurrentAccount(c.Request.Context(), accountID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(http.StatusOK, profile, "Current user fetched successfully"))
}

func (h *AuthHandler) setCookie(c *gin.Context, name, value string, ttl time.Duration) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(name, value, int(ttl.Seconds()), "/", h.cookies.Domain, h.cookies.Secure, true)
}

func (h *AuthHandler) clearCookie(c *gin.Context, name string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(name, "", -1, "/", h.cookies.Domain, h.cookies.Secure, true)
}
