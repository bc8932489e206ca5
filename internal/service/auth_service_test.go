package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/yourusername/charter-api/internal/domain/entity"
	apperrors "github.com/yourusername/charter-api/internal/pkg/errors"
	"github.com/yourusername/charter-api/pkg/auth"
)

// MockRefreshTokenRepository реализует repository.RefreshTokenRepository
type MockRefreshTokenRepository struct {
	mock.Mock
}

func (m *MockRefreshTokenRepository) Create(token *entity.RefreshToken) error {
	args := m.Called(token)
	return args.Error(0)
}

func (m *MockRefreshTokenRepository) GetByToken(token string) (*entity.RefreshToken, error) {
	args := m.Called(token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.RefreshToken), args.Error(1)
}

func (m *MockRefreshTokenRepository) Delete(token string) error {
	args := m.Called(token)
	return args.Error(0)
}

func (m *MockRefreshTokenRepository) DeleteAllForUser(userID uint) error {
	args := m.Called(userID)
	return args.Error(0)
}

func (m *MockRefreshTokenRepository) CleanupExpired() (int64, error) {
	args := m.Called()
	return args.Get(0).(int64), args.Error(1)
}

// ============================================================================
// Хелперы
// ============================================================================

func hashedTestPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

type authTestEnv struct {
	auth      *AuthService
	twoFactor *TwoFactorService
	clock     *virtualClock
	notifier  *captureNotifier
	userRepo  *MockUserRepository
	tokenRepo *MockRefreshTokenRepository
}

func createTestAuthService(t *testing.T) *authTestEnv {
	t.Helper()

	notifier := &captureNotifier{}
	twoFactor, clock := createTestTwoFactorService(t, notifier)

	jwtService, err := auth.NewJWTService("test-secret", 1)
	require.NoError(t, err)

	userRepo := new(MockUserRepository)
	tokenRepo := new(MockRefreshTokenRepository)

	authService, err := NewAuthService(userRepo, tokenRepo, jwtService, twoFactor, 30*24*time.Hour, 60*time.Second)
	require.NoError(t, err)

	return &authTestEnv{
		auth:      authService,
		twoFactor: twoFactor,
		clock:     clock,
		notifier:  notifier,
		userRepo:  userRepo,
		tokenRepo: tokenRepo,
	}
}

// ============================================================================
// Тесты
// ============================================================================

func TestAuthService_Login_Customer(t *testing.T) {
	env := createTestAuthService(t)

	customer := &entity.User{
		ID:       7,
		Email:    "customer@example.com",
		Password: hashedTestPassword(t, "secret-pass"),
		Role:     entity.RoleCustomer,
	}
	env.userRepo.On("GetByEmail", "customer@example.com").Return(customer, nil)
	env.tokenRepo.On("Create", mock.AnythingOfType("*entity.RefreshToken")).Return(nil)

	result, err := env.auth.Login(context.Background(), "Customer@Example.com ", "secret-pass")
	require.NoError(t, err)

	assert.False(t, result.TwoFactorRequired, "Клиент входит без второго шага")
	require.NotNil(t, result.Tokens)
	assert.NotEmpty(t, result.Tokens.AccessToken)
	assert.NotEmpty(t, result.Tokens.RefreshToken)
	assert.Equal(t, 0, env.notifier.sent, "Клиенту код не отправляется")
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	env := createTestAuthService(t)

	customer := &entity.User{
		ID:       7,
		Email:    "customer@example.com",
		Password: hashedTestPassword(t, "secret-pass"),
		Role:     entity.RoleCustomer,
	}
	env.userRepo.On("GetByEmail", "customer@example.com").Return(customer, nil)

	_, err := env.auth.Login(context.Background(), "customer@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_Login_UnknownEmail(t *testing.T) {
	env := createTestAuthService(t)
	env.userRepo.On("GetByEmail", "nobody@example.com").Return(nil, apperrors.ErrNotFound)

	_, err := env.auth.Login(context.Background(), "nobody@example.com", "whatever")
	assert.ErrorIs(t, err, ErrInvalidCredentials, "Неизвестный email неотличим от неверного пароля")
}

func TestAuthService_Login_StaffRequiresTwoFactor(t *testing.T) {
	env := createTestAuthService(t)

	operator := &entity.User{
		ID:       2,
		Email:    "ops@example.com",
		Password: hashedTestPassword(t, "secret-pass"),
		FullName: "Оператор",
		Role:     entity.RoleOperator,
	}
	env.userRepo.On("GetByEmail", "ops@example.com").Return(operator, nil)

	result, err := env.auth.Login(context.Background(), "ops@example.com", "secret-pass")
	require.NoError(t, err)

	assert.True(t, result.TwoFactorRequired, "Персонал проходит второй шаг входа")
	assert.Nil(t, result.Tokens, "Токены не выдаются до проверки кода")
	assert.Equal(t, 600, result.CodeExpiresIn)
	assert.True(t, result.CodeDelivered)
	assert.Equal(t, 1, env.notifier.sent)
}

func TestAuthService_CompleteTwoFactor(t *testing.T) {
	env := createTestAuthService(t)

	operator := &entity.User{
		ID:       2,
		Email:    "ops@example.com",
		Password: hashedTestPassword(t, "secret-pass"),
		Role:     entity.RoleOperator,
	}
	env.userRepo.On("GetByEmail", "ops@example.com").Return(operator, nil)
	env.tokenRepo.On("Create", mock.AnythingOfType("*entity.RefreshToken")).Return(nil)

	_, err := env.auth.Login(context.Background(), "ops@example.com", "secret-pass")
	require.NoError(t, err)

	// Неверный код — структурированный отказ, не ошибка выполнения
	wrong := "000000"
	if env.notifier.LastCode() == wrong {
		wrong = "000001"
	}
	result, verification, err := env.auth.CompleteTwoFactor("ops@example.com", wrong)
	require.NoError(t, err)
	assert.Nil(t, result)
	require.NotNil(t, verification)
	assert.ErrorIs(t, verification.Failure, ErrCodeMismatch)
	assert.Equal(t, 2, verification.AttemptsRemaining)

	// Верный код завершает вход
	result, verification, err = env.auth.CompleteTwoFactor("ops@example.com", env.notifier.LastCode())
	require.NoError(t, err)
	assert.Nil(t, verification)
	require.NotNil(t, result)
	require.NotNil(t, result.Tokens)
	assert.NotEmpty(t, result.Tokens.AccessToken)
}

func TestAuthService_ResendTwoFactor_Throttled(t *testing.T) {
	env := createTestAuthService(t)

	operator := &entity.User{
		ID:       2,
		Email:    "ops@example.com",
		Password: hashedTestPassword(t, "secret-pass"),
		Role:     entity.RoleOperator,
	}
	env.userRepo.On("GetByEmail", "ops@example.com").Return(operator, nil)

	_, err := env.auth.Login(context.Background(), "ops@example.com", "secret-pass")
	require.NoError(t, err)

	// Код свежий — повтор запрещен
	_, err = env.auth.ResendTwoFactor(context.Background(), "ops@example.com")
	assert.ErrorIs(t, err, ErrResendNotAvailable)

	// Под конец жизни кода повтор разрешается
	env.clock.Advance(9*time.Minute + 30*time.Second)
	issue, err := env.auth.ResendTwoFactor(context.Background(), "ops@example.com")
	require.NoError(t, err)
	assert.True(t, issue.Issued)
	assert.Equal(t, 2, env.notifier.sent)
}

func TestAuthService_ResendTwoFactor_CustomerForbidden(t *testing.T) {
	env := createTestAuthService(t)

	customer := &entity.User{
		ID:    7,
		Email: "customer@example.com",
		Role:  entity.RoleCustomer,
	}
	env.userRepo.On("GetByEmail", "customer@example.com").Return(customer, nil)

	_, err := env.auth.ResendTwoFactor(context.Background(), "customer@example.com")
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestAuthService_Register(t *testing.T) {
	env := createTestAuthService(t)

	env.userRepo.On("GetByEmail", "new@example.com").Return(nil, apperrors.ErrNotFound)
	env.userRepo.On("Create", mock.AnythingOfType("*entity.User")).Return(nil)

	user, err := env.auth.Register("New@Example.com", "secret-pass", "Новый Клиент", "+7 700 000 00 00")
	require.NoError(t, err)

	assert.Equal(t, "new@example.com", user.Email, "Email нормализуется к нижнему регистру")
	assert.Equal(t, entity.RoleCustomer, user.Role)
	assert.Equal(t, entity.MembershipNone, user.MembershipType)
	assert.Equal(t, entity.ProfileStatusPending, user.ProfileStatus, "Новый профиль попадает в очередь модерации")
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	env := createTestAuthService(t)

	existing := &entity.User{ID: 7, Email: "new@example.com"}
	env.userRepo.On("GetByEmail", "new@example.com").Return(existing, nil)

	_, err := env.auth.Register("new@example.com", "secret-pass", "", "")
	assert.ErrorIs(t, err, apperrors.ErrConflict)
	env.userRepo.AssertNotCalled(t, "Create")
}

func TestAuthService_Register_ShortPassword(t *testing.T) {
	env := createTestAuthService(t)

	_, err := env.auth.Register("new@example.com", "short", "", "")
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestAuthService_RefreshTokens_Rotation(t *testing.T) {
	env := createTestAuthService(t)

	user := &entity.User{ID: 7, Email: "customer@example.com", Role: entity.RoleCustomer}
	stored := &entity.RefreshToken{
		ID:        1,
		UserID:    7,
		Token:     "old-token",
		ExpiresAt: time.Now().Add(time.Hour),
	}
	env.tokenRepo.On("GetByToken", "old-token").Return(stored, nil)
	env.userRepo.On("GetByID", uint(7)).Return(user, nil)
	env.tokenRepo.On("Delete", "old-token").Return(nil)
	env.tokenRepo.On("Create", mock.AnythingOfType("*entity.RefreshToken")).Return(nil)

	tokens, err := env.auth.RefreshTokens("old-token")
	require.NoError(t, err)

	assert.NotEqual(t, "old-token", tokens.RefreshToken, "Ротация выдаёт новый refresh-токен")
	env.tokenRepo.AssertCalled(t, "Delete", "old-token")
}

func TestAuthService_RefreshTokens_Expired(t *testing.T) {
	env := createTestAuthService(t)
	env.tokenRepo.On("GetByToken", "stale").Return(nil, apperrors.ErrExpiredToken)

	_, err := env.auth.RefreshTokens("stale")
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

// Хранилище кодов используется напрямую, без сервиса — smoke-тест стыковки
func TestAuthService_TwoFactorStatus(t *testing.T) {
	env := createTestAuthService(t)

	assert.Equal(t, 0, env.auth.TwoFactorStatus("ops@example.com"))

	_, err := env.twoFactor.IssueCode(context.Background(), "ops@example.com", "Оператор")
	require.NoError(t, err)
	assert.Equal(t, 600, env.auth.TwoFactorStatus("ops@example.com"))
}
