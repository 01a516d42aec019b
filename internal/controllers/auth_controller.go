package controllers

import (
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"

	"scribesnap/internal/middleware"
	"scribesnap/internal/models"
	"scribesnap/internal/service"
)

type AuthController struct {
	authService service.AuthService
	frontendURL string
}

func NewAuthController(authService service.AuthService, frontendURL string) *AuthController {
	return &AuthController{
		authService: authService,
		frontendURL: frontendURL,
	}
}

// SignUp handles POST /api/v1/auth/signup
func (ac *AuthController) SignUp(c *gin.Context) {
	var req models.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	response, err := ac.authService.SignUp(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrEmailTaken) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, response)
}

// Login handles POST /api/v1/auth/login
func (ac *AuthController) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	response, err := ac.authService.Login(c.Request.Context(), &req)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, response)
}

// VerifyOTP handles POST /api/v1/auth/otp/verify
func (ac *AuthController) VerifyOTP(c *gin.Context) {
	var req models.VerifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	response, err := ac.authService.VerifyOTP(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrCodeExpired) || errors.Is(err, service.ErrCodeInvalid) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, response)
}

// ResendOTP handles POST /api/v1/auth/otp/resend
func (ac *AuthController) ResendOTP(c *gin.Context) {
	var req models.ResendOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	if err := ac.authService.ResendOTP(c.Request.Context(), &req); err != nil {
		if errors.Is(err, service.ErrResendCooldown) {
			c.JSON(http.StatusTooManyRequests, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Verification code sent"})
}

// ForgotPassword handles POST /api/v1/auth/password/forgot
func (ac *AuthController) ForgotPassword(c *gin.Context) {
	var req models.ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	if err := ac.authService.ForgotPassword(c.Request.Context(), &req); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	// Same response whether or not the address exists.
	c.JSON(http.StatusOK, gin.H{"message": "If the address is registered, a reset link is on its way"})
}

// ResetPassword handles POST /api/v1/auth/password/reset
func (ac *AuthController) ResetPassword(c *gin.Context) {
	var req models.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	if err := ac.authService.ResetPassword(c.Request.Context(), &req); err != nil {
		if errors.Is(err, service.ErrResetTokenInvalid) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password updated"})
}

// GoogleRedirect handles GET /api/v1/auth/oauth/google
func (ac *AuthController) GoogleRedirect(c *gin.Context) {
	authURL, err := ac.authService.GoogleAuthURL(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Redirect(http.StatusTemporaryRedirect, authURL)
}

// GoogleCallback handles GET /api/v1/auth/oauth/google/callback. On success
// the browser is sent back to the frontend with the session token in the URL
// fragment, where it never reaches server logs.
func (ac *AuthController) GoogleCallback(c *gin.Context) {
	state := c.Query("state")
	code := c.Query("code")
	if state == "" || code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing state or code"})
		return
	}

	response, err := ac.authService.GoogleCallback(c.Request.Context(), state, code)
	if err != nil {
		c.Redirect(http.StatusTemporaryRedirect, ac.frontendURL+"/auth?error="+url.QueryEscape(err.Error()))
		return
	}

	c.Redirect(http.StatusTemporaryRedirect, ac.frontendURL+"/auth#token="+url.QueryEscape(response.Token))
}

// Me handles GET /api/v1/me
func (ac *AuthController) Me(c *gin.Context) {
	userID := middleware.UserID(c)

	user, err := ac.authService.CurrentUser(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "session user no longer exists"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

// UpdateProfile handles PATCH /api/v1/me
func (ac *AuthController) UpdateProfile(c *gin.Context) {
	var req models.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	user, err := ac.authService.UpdateProfile(c.Request.Context(), middleware.UserID(c), &req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

// Logout handles POST /api/v1/auth/logout
func (ac *AuthController) Logout(c *gin.Context) {
	tokenID := middleware.TokenID(c)
	remaining := time.Until(middleware.TokenExpiry(c))

	if err := ac.authService.Logout(c.Request.Context(), tokenID, remaining); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Signed out"})
}
