package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/charter-api/internal/domain/entity"
	"github.com/yourusername/charter-api/internal/domain/repository"
	apperrors "github.com/yourusername/charter-api/internal/pkg/errors"
	"github.com/yourusername/charter-api/pkg/auth"
)

// TokenPair — пара access/refresh токенов, выдаваемая после входа
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"` // секунды жизни access-токена
}

// LoginResult — итог первого шага входа. Для персонала вход двухэтапный:
// пароль принят, но токены выдаются только после проверки одноразового кода.
type LoginResult struct {
	TwoFactorRequired bool         `json:"two_factor_required"`
	CodeExpiresIn     int          `json:"code_expires_in,omitempty"` // секунды
	CodeDelivered     bool         `json:"code_delivered,omitempty"`
	Tokens            *TokenPair   `json:"tokens,omitempty"`
	User              *entity.User `json:"user,omitempty"`
}

// AuthService реализует регистрацию, парольный вход, двухэтапный вход
// персонала и работу с refresh-токенами
type AuthService struct {
	userRepo         repository.UserRepository
	refreshTokenRepo repository.RefreshTokenRepository
	jwtService       *auth.JWTService
	twoFactor        *TwoFactorService

	refreshTokenTTL time.Duration
	// resendWindow — за сколько секунд до истечения кода разрешён повторный
	// запрос. Сам TwoFactorService повторную выдачу не ограничивает:
	// троттлинг — обязанность вызывающей стороны.
	resendWindow time.Duration
}

// NewAuthService создает сервис аутентификации
func NewAuthService(
	userRepo repository.UserRepository,
	refreshTokenRepo repository.RefreshTokenRepository,
	jwtService *auth.JWTService,
	twoFactor *TwoFactorService,
	refreshTokenTTL time.Duration,
	resendWindow time.Duration,
) (*AuthService, error) {
	if userRepo == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	if refreshTokenRepo == nil {
		return nil, fmt.Errorf("refresh token repository is required")
	}
	if jwtService == nil {
		return nil, fmt.Errorf("jwt service is required")
	}
	if twoFactor == nil {
		return nil, fmt.Errorf("two factor service is required")
	}
	if refreshTokenTTL <= 0 {
		refreshTokenTTL = 30 * 24 * time.Hour
	}
	if resendWindow <= 0 {
		resendWindow = 60 * time.Second
	}

	return &AuthService{
		userRepo:         userRepo,
		refreshTokenRepo: refreshTokenRepo,
		jwtService:       jwtService,
		twoFactor:        twoFactor,
		refreshTokenTTL:  refreshTokenTTL,
		resendWindow:     resendWindow,
	}, nil
}

// Register создает нового клиента. Профиль попадает в очередь модерации
// со статусом pending.
func (s *AuthService) Register(email, password, fullName, phone string) (*entity.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password are required", apperrors.ErrValidation)
	}
	if len(password) < 8 {
		return nil, fmt.Errorf("%w: password must be at least 8 characters", apperrors.ErrValidation)
	}

	if _, err := s.userRepo.GetByEmail(email); err == nil {
		return nil, fmt.Errorf("%w: email already registered", apperrors.ErrConflict)
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	user := &entity.User{
		Email:          email,
		Password:       password, // хешируется в BeforeSave
		FullName:       strings.TrimSpace(fullName),
		Phone:          strings.TrimSpace(phone),
		Role:           entity.RoleCustomer,
		MembershipType: entity.MembershipNone,
		ProfileStatus:  entity.ProfileStatusPending,
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login проверяет пароль. Клиент получает токены сразу; оператору и
// администратору выдается одноразовый код, и вход завершается только
// после CompleteTwoFactor.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.userRepo.GetByEmail(email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !user.CheckPassword(password) {
		return nil, ErrInvalidCredentials
	}

	if user.IsStaff() {
		issue, err := s.twoFactor.IssueCode(ctx, user.Email, user.FullName)
		if err != nil {
			return nil, fmt.Errorf("failed to issue login code: %w", err)
		}
		return &LoginResult{
			TwoFactorRequired: true,
			CodeExpiresIn:     s.twoFactor.TimeRemaining(user.Email),
			CodeDelivered:     issue.Delivered,
		}, nil
	}

	tokens, err := s.issueTokens(user)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Tokens: tokens, User: user}, nil
}

// CompleteTwoFactor завершает вход персонала проверкой одноразового кода.
// При отказе проверки возвращается её структурированный результат, а не
// ошибка выполнения.
func (s *AuthService) CompleteTwoFactor(email, code string) (*LoginResult, *VerificationResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	verification := s.twoFactor.VerifyCode(email, code)
	if !verification.Valid {
		return nil, &verification, nil
	}

	user, err := s.userRepo.GetByEmail(email)
	if err != nil {
		return nil, nil, err
	}

	tokens, err := s.issueTokens(user)
	if err != nil {
		return nil, nil, err
	}
	return &LoginResult{Tokens: tokens, User: user}, nil, nil
}

// ResendTwoFactor повторно выдает код персоналу. Разрешено только когда до
// истечения текущего кода осталось не больше resendWindow (или кода уже нет):
// выдача с полным запасом попыток не должна обходить лимит попыток.
func (s *AuthService) ResendTwoFactor(ctx context.Context, email string) (*IssueResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.userRepo.GetByEmail(email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !user.IsStaff() {
		return nil, fmt.Errorf("%w: two factor login is for staff accounts", apperrors.ErrForbidden)
	}

	if remaining := s.twoFactor.TimeRemaining(user.Email); remaining > int(s.resendWindow.Seconds()) {
		return nil, fmt.Errorf("%w: code is still valid for %d seconds", ErrResendNotAvailable, remaining)
	}

	return s.twoFactor.IssueCode(ctx, user.Email, user.FullName)
}

// TwoFactorStatus возвращает оставшееся время жизни кода в секундах
func (s *AuthService) TwoFactorStatus(email string) int {
	return s.twoFactor.TimeRemaining(strings.ToLower(strings.TrimSpace(email)))
}

// RefreshTokens меняет действующий refresh-токен на новую пару токенов
func (s *AuthService) RefreshTokens(refreshToken string) (*TokenPair, error) {
	stored, err := s.refreshTokenRepo.GetByToken(refreshToken)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) || errors.Is(err, apperrors.ErrExpiredToken) {
			return nil, apperrors.ErrUnauthorized
		}
		return nil, err
	}

	user, err := s.userRepo.GetByID(stored.UserID)
	if err != nil {
		return nil, err
	}

	// Ротация: старый токен удаляется до выдачи нового
	if err := s.refreshTokenRepo.Delete(refreshToken); err != nil {
		log.Printf("[AuthService] Ошибка удаления refresh токена при ротации: %v", err)
	}

	return s.issueTokens(user)
}

// Logout завершает сессию, удаляя refresh-токен
func (s *AuthService) Logout(refreshToken string) error {
	return s.refreshTokenRepo.Delete(refreshToken)
}

// LogoutAllDevices завершает все сессии пользователя
func (s *AuthService) LogoutAllDevices(userID uint) error {
	return s.refreshTokenRepo.DeleteAllForUser(userID)
}

// CleanupExpiredTokens удаляет просроченные refresh-токены (вызывается по таймеру)
func (s *AuthService) CleanupExpiredTokens() (int64, error) {
	return s.refreshTokenRepo.CleanupExpired()
}

func (s *AuthService) issueTokens(user *entity.User) (*TokenPair, error) {
	accessToken, err := s.jwtService.GenerateToken(user)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refresh := &entity.RefreshToken{
		UserID:    user.ID,
		Token:     uuid.NewString(),
		ExpiresAt: time.Now().Add(s.refreshTokenTTL),
		CreatedAt: time.Now(),
	}
	if err := s.refreshTokenRepo.Create(refresh); err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refresh.Token,
		ExpiresIn:    int64(s.jwtService.AccessTokenTTL().Seconds()),
	}, nil
}
