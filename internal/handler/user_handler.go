package handler

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/charter-api/internal/handler/dto"
	"github.com/yourusername/charter-api/internal/handler/helper"
	"github.com/yourusername/charter-api/internal/service"
)

// UserHandler обрабатывает запросы, связанные с профилями пользователей
type UserHandler struct {
	userService *service.UserService
}

// NewUserHandler создает новый обработчик пользователей
func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// UpdateProfileRequest представляет запрос на обновление профиля
type UpdateProfileRequest struct {
	FullName string `json:"full_name" binding:"required,min=2,max=150"`
	Phone    string `json:"phone" binding:"omitempty,max=30"`
}

// ChangePasswordRequest представляет запрос на изменение пароля
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8,max=72"`
}

// SetProfileStatusRequest представляет решение модератора по профилю
type SetProfileStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=approved rejected pending"`
}

// SetMembershipRequest представляет запрос на назначение членства
type SetMembershipRequest struct {
	MembershipType string     `json:"membership_type" binding:"required,oneof=none standard basic premium"`
	ExpiresAt      *time.Time `json:"expires_at" binding:"omitempty"`
}

// GetMe возвращает профиль текущего пользователя
func (h *UserHandler) GetMe(c *gin.Context) {
	userID := c.GetUint("user_id")

	user, err := h.userService.GetByID(userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// UpdateMe обновляет профиль текущего пользователя
func (h *UserHandler) UpdateMe(c *gin.Context) {
	userID := c.GetUint("user_id")

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.userService.UpdateProfile(userID, req.FullName, req.Phone)
	if err != nil {
		respondError(c, err)
		return
	}

	log.Printf("[UserHandler] Пользователь ID=%d обновил профиль", userID)
	c.JSON(http.StatusOK, user)
}

// ChangePassword меняет пароль текущего пользователя
func (h *UserHandler) ChangePassword(c *gin.Context) {
	userID := c.GetUint("user_id")

	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.userService.ChangePassword(userID, req.OldPassword, req.NewPassword); err != nil {
		respondError(c, err)
		return
	}

	log.Printf("[UserHandler] Пользователь ID=%d сменил пароль", userID)
	c.JSON(http.StatusOK, gin.H{"message": "Password changed"})
}

// GetUser возвращает пользователя по ID (действие персонала)
func (h *UserHandler) GetUser(c *gin.Context) {
	userID := c.GetUint("target_user_id")

	user, err := h.userService.GetByID(userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, helper.ConvertUserToDTO(user))
}

// ListUsers возвращает пользователей с пагинацией (действие персонала)
func (h *UserHandler) ListUsers(c *gin.Context) {
	page, pageSize := parsePagination(c)

	users, total, err := h.userService.List(page, pageSize)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.PaginatedUsersResponse{
		Users:   helper.ConvertUsersToDTO(users),
		Total:   total,
		Page:    page,
		PerPage: pageSize,
	})
}

// ListPendingProfiles возвращает очередь модерации профилей (действие персонала)
func (h *UserHandler) ListPendingProfiles(c *gin.Context) {
	page, pageSize := parsePagination(c)

	users, total, err := h.userService.ListPendingProfiles(page, pageSize)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.PaginatedUsersResponse{
		Users:   helper.ConvertUsersToDTO(users),
		Total:   total,
		Page:    page,
		PerPage: pageSize,
	})
}

// SetProfileStatus одобряет или отклоняет профиль клиента (действие персонала)
func (h *UserHandler) SetProfileStatus(c *gin.Context) {
	userID := c.GetUint("target_user_id")

	var req SetProfileStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.userService.SetProfileStatus(userID, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}

	log.Printf("[UserHandler] Профиль пользователя ID=%d переведен в статус %s", userID, req.Status)
	c.JSON(http.StatusOK, helper.ConvertUserToDTO(user))
}

// SetMembership назначает клиенту тариф членства (действие администратора)
func (h *UserHandler) SetMembership(c *gin.Context) {
	userID := c.GetUint("target_user_id")

	var req SetMembershipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.userService.SetMembership(userID, req.MembershipType, req.ExpiresAt)
	if err != nil {
		respondError(c, err)
		return
	}

	log.Printf("[UserHandler] Пользователю ID=%d назначено членство %s", userID, req.MembershipType)
	c.JSON(http.StatusOK, helper.ConvertUserToDTO(user))
}

// parsePagination извлекает параметры пагинации из query string
func parsePagination(c *gin.Context) (page, pageSize int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ = strconv.Atoi(c.DefaultQuery("per_page", "20"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return page, pageSize
}
