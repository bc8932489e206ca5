package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestUser_IsStaff(t *testing.T) {
	assert.False(t, (&User{Role: RoleCustomer}).IsStaff())
	assert.True(t, (&User{Role: RoleOperator}).IsStaff())
	assert.True(t, (&User{Role: RoleAdmin}).IsStaff())
}

func TestUser_EffectiveLimits(t *testing.T) {
	// Нулевые лимиты означают значения по умолчанию
	customer := &User{Role: RoleCustomer}
	assert.Equal(t, DefaultBookingLimit, customer.EffectiveBookingLimit())
	assert.Equal(t, DefaultCancellationLimit, customer.EffectiveCancellationLimit())

	operator := &User{Role: RoleOperator}
	assert.Equal(t, DefaultOperatorCancellationLimit, operator.EffectiveCancellationLimit())

	// Индивидуальные лимиты перекрывают умолчания
	custom := &User{Role: RoleCustomer, BookingLimit: 3, CancellationLimit: 1}
	assert.Equal(t, 3, custom.EffectiveBookingLimit())
	assert.Equal(t, 1, custom.EffectiveCancellationLimit())
}

func TestUser_PasswordHashing(t *testing.T) {
	user := &User{Email: "a@example.com", Password: "secret-pass"}

	// BeforeSave хеширует пароль один раз
	require.NoError(t, user.BeforeSave(&gorm.DB{}))
	assert.NotEqual(t, "secret-pass", user.Password)
	assert.True(t, user.CheckPassword("secret-pass"))
	assert.False(t, user.CheckPassword("wrong"))

	// Повторный вызов не хеширует хеш
	hashed := user.Password
	require.NoError(t, user.BeforeSave(&gorm.DB{}))
	assert.Equal(t, hashed, user.Password)
}
