package service

import (
	"fmt"
	"time"

	"github.com/yourusername/charter-api/internal/domain/entity"
	"github.com/yourusername/charter-api/internal/domain/repository"
	apperrors "github.com/yourusername/charter-api/internal/pkg/errors"
)

// UserService предоставляет операции над профилями и членством
type UserService struct {
	userRepo repository.UserRepository
}

// NewUserService создает сервис пользователей
func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// GetByID возвращает пользователя по ID
func (s *UserService) GetByID(id uint) (*entity.User, error) {
	return s.userRepo.GetByID(id)
}

// UpdateProfile обновляет редактируемые поля профиля. Изменение данных
// возвращает профиль клиента в очередь модерации.
func (s *UserService) UpdateProfile(userID uint, fullName, phone string) (*entity.User, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"full_name": fullName,
		"phone":     phone,
	}
	if user.Role == entity.RoleCustomer {
		updates["profile_status"] = entity.ProfileStatusPending
	}

	if err := s.userRepo.UpdateProfile(userID, updates); err != nil {
		return nil, err
	}
	return s.userRepo.GetByID(userID)
}

// ChangePassword меняет пароль после проверки старого
func (s *UserService) ChangePassword(userID uint, oldPassword, newPassword string) error {
	if len(newPassword) < 8 {
		return fmt.Errorf("%w: password must be at least 8 characters", apperrors.ErrValidation)
	}

	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return err
	}
	if !user.CheckPassword(oldPassword) {
		return fmt.Errorf("%w: old password is incorrect", apperrors.ErrForbidden)
	}
	return s.userRepo.UpdatePassword(userID, newPassword)
}

// SetProfileStatus одобряет или отклоняет профиль клиента (действие персонала)
func (s *UserService) SetProfileStatus(userID uint, status string) (*entity.User, error) {
	switch status {
	case entity.ProfileStatusApproved, entity.ProfileStatusRejected, entity.ProfileStatusPending:
	default:
		return nil, fmt.Errorf("%w: unknown profile status %q", apperrors.ErrValidation, status)
	}

	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if user.Role != entity.RoleCustomer {
		return nil, fmt.Errorf("%w: profile moderation applies to customers only", apperrors.ErrValidation)
	}

	if err := s.userRepo.UpdateProfile(userID, map[string]interface{}{"profile_status": status}); err != nil {
		return nil, err
	}
	user.ProfileStatus = status
	return user, nil
}

// SetMembership назначает клиенту тариф членства и срок его действия
func (s *UserService) SetMembership(userID uint, membershipType string, expiresAt *time.Time) (*entity.User, error) {
	switch membershipType {
	case entity.MembershipNone, entity.MembershipStandard, entity.MembershipBasic, entity.MembershipPremium:
	default:
		return nil, fmt.Errorf("%w: unknown membership type %q", apperrors.ErrValidation, membershipType)
	}

	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if user.Role != entity.RoleCustomer {
		return nil, fmt.Errorf("%w: membership applies to customers only", apperrors.ErrValidation)
	}

	updates := map[string]interface{}{
		"membership_type":       membershipType,
		"membership_expires_at": expiresAt,
	}
	if err := s.userRepo.UpdateProfile(userID, updates); err != nil {
		return nil, err
	}
	return s.userRepo.GetByID(userID)
}

// ListPendingProfiles возвращает очередь модерации профилей
func (s *UserService) ListPendingProfiles(page, pageSize int) ([]entity.User, int64, error) {
	limit, offset := normalizePage(page, pageSize)
	return s.userRepo.ListByProfileStatus(entity.ProfileStatusPending, limit, offset)
}

// List возвращает пользователей с пагинацией (действие персонала)
func (s *UserService) List(page, pageSize int) ([]entity.User, int64, error) {
	limit, offset := normalizePage(page, pageSize)
	return s.userRepo.List(limit, offset)
}

func normalizePage(page, pageSize int) (limit, offset int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	} else if pageSize > 100 {
		pageSize = 100
	}
	return pageSize, (page - 1) * pageSize
}
