package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/charter-api/internal/service"
)

// AuthHandler обрабатывает запросы, связанные с аутентификацией
type AuthHandler struct {
	authService *service.AuthService
}

// NewAuthHandler создает новый обработчик аутентификации
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Структуры запросов и ответов

// RegisterRequest представляет запрос на регистрацию
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8,max=72"`
	FullName string `json:"full_name" binding:"required,min=2,max=150"`
	Phone    string `json:"phone" binding:"omitempty,max=30"`
}

// LoginRequest представляет запрос на вход
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// VerifyCodeRequest представляет запрос на завершение двухэтапного входа
type VerifyCodeRequest struct {
	Email string `json:"email" binding:"required,email"`
	Code  string `json:"code" binding:"required"`
}

// ResendCodeRequest представляет запрос на повторную отправку кода
type ResendCodeRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// RefreshTokenRequest представляет запрос на обновление токенов
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// LogoutRequest представляет запрос на выход
type LogoutRequest struct {
	RefreshToken string `json:"refresh_token" binding:"omitempty"`
}

// Register обрабатывает запрос на регистрацию
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.authService.Register(req.Email, req.Password, req.FullName, req.Phone)
	if err != nil {
		respondError(c, err)
		return
	}

	log.Printf("[AuthHandler] Пользователь ID=%d (%s) успешно зарегистрирован", user.ID, user.Email)
	c.JSON(http.StatusCreated, user)
}

// Login обрабатывает запрос на вход. Для персонала ответ содержит
// two_factor_required=true, и вход завершается через VerifyCode.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password", "error_type": "invalid_credentials"})
			return
		}
		respondError(c, err)
		return
	}

	if result.TwoFactorRequired {
		log.Printf("[AuthHandler] Персоналу %s выдан одноразовый код входа", req.Email)
		c.JSON(http.StatusAccepted, result)
		return
	}

	c.JSON(http.StatusOK, result)
}

// VerifyCode завершает двухэтапный вход персонала
func (h *AuthHandler) VerifyCode(c *gin.Context) {
	var req VerifyCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, verification, err := h.authService.CompleteTwoFactor(req.Email, req.Code)
	if err != nil {
		respondError(c, err)
		return
	}

	if verification != nil {
		status := http.StatusUnauthorized
		if errors.Is(verification.Failure, service.ErrTooManyAttempts) {
			status = http.StatusTooManyRequests
		}
		c.JSON(status, gin.H{
			"error":              verification.Message,
			"error_type":         verification.Failure.Error(),
			"attempts_remaining": verification.AttemptsRemaining,
		})
		return
	}

	log.Printf("[AuthHandler] Персонал %s завершил двухэтапный вход", req.Email)
	c.JSON(http.StatusOK, result)
}

// ResendCode повторно отправляет код персоналу
func (h *AuthHandler) ResendCode(c *gin.Context) {
	var req ResendCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	issue, err := h.authService.ResendTwoFactor(c.Request.Context(), req.Email)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email", "error_type": "invalid_credentials"})
			return
		}
		if errors.Is(err, service.ErrResendNotAvailable) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "error_type": "resend_not_available"})
			return
		}
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"issued":     issue.Issued,
		"delivered":  issue.Delivered,
		"expires_in": h.authService.TwoFactorStatus(req.Email),
	})
}

// CodeStatus возвращает оставшееся время жизни кода в секундах
func (h *AuthHandler) CodeStatus(c *gin.Context) {
	email := c.Query("email")
	if email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email query parameter is required"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"expires_in": h.authService.TwoFactorStatus(email)})
}

// RefreshToken обновляет пару токенов
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tokens, err := h.authService.RefreshTokens(req.RefreshToken)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, tokens)
}

// Logout завершает текущую сессию
func (h *AuthHandler) Logout(c *gin.Context) {
	var req LogoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.RefreshToken != "" {
		if err := h.authService.Logout(req.RefreshToken); err != nil {
			log.Printf("[AuthHandler] Ошибка удаления refresh токена при выходе: %v", err)
		}
	}

	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

// LogoutAll завершает все сессии пользователя
func (h *AuthHandler) LogoutAll(c *gin.Context) {
	userID := c.GetUint("user_id")

	if err := h.authService.LogoutAllDevices(userID); err != nil {
		respondError(c, err)
		return
	}

	log.Printf("[AuthHandler] Пользователь ID=%d завершил все сессии", userID)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out from all devices"})
}
