package entity

import (
	"log"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Роли пользователей в системе
const (
	RoleCustomer = "customer"
	RoleOperator = "operator"
	RoleAdmin    = "admin"
)

// Тарифы членства (только для клиентов)
const (
	MembershipNone     = "none"
	MembershipStandard = "standard"
	MembershipBasic    = "basic"
	MembershipPremium  = "premium"
)

// Статусы проверки профиля клиента
const (
	ProfileStatusPending  = "pending"
	ProfileStatusApproved = "approved"
	ProfileStatusRejected = "rejected"
)

// Лимиты по умолчанию, если в записи пользователя не задано иное
const (
	DefaultBookingLimit              = 10
	DefaultCancellationLimit         = 10
	DefaultOperatorCancellationLimit = 25
)

// User представляет пользователя системы бронирования чартерных рейсов
type User struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Email    string `gorm:"size:100;not null;uniqueIndex" json:"email"`
	Password string `gorm:"size:100;not null" json:"-"`
	FullName string `gorm:"size:150;not null;default:''" json:"full_name"`
	Phone    string `gorm:"size:30;not null;default:''" json:"phone"`
	Role     string `gorm:"size:20;not null;default:'customer';index" json:"role"` // customer, operator, admin

	// Поля членства (имеют смысл только для role=customer)
	MembershipType      string     `gorm:"size:20;not null;default:'none'" json:"membership_type"` // none, standard, basic, premium
	MembershipExpiresAt *time.Time `gorm:"type:timestamp" json:"membership_expires_at,omitempty"`
	ProfileStatus       string     `gorm:"size:20;not null;default:'pending'" json:"profile_status"` // pending, approved, rejected

	// Счётчики и лимиты бронирований. Нулевой лимит означает "использовать
	// значение по умолчанию" (DefaultBookingLimit / DefaultCancellationLimit).
	BookingCount      int `gorm:"not null;default:0" json:"booking_count"`
	BookingLimit      int `gorm:"not null;default:0" json:"booking_limit"`
	CancellationCount int `gorm:"not null;default:0" json:"cancellation_count"`
	CancellationLimit int `gorm:"not null;default:0" json:"cancellation_limit"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (User) TableName() string {
	return "users"
}

// IsStaff возвращает true для операторов и администраторов.
// Персонал проходит вход с обязательной двухфакторной проверкой.
func (u *User) IsStaff() bool {
	return u.Role == RoleOperator || u.Role == RoleAdmin
}

// EffectiveBookingLimit возвращает лимит бронирований с учётом значения по умолчанию
func (u *User) EffectiveBookingLimit() int {
	if u.BookingLimit > 0 {
		return u.BookingLimit
	}
	return DefaultBookingLimit
}

// EffectiveCancellationLimit возвращает лимит отмен с учётом роли и значения по умолчанию
func (u *User) EffectiveCancellationLimit() int {
	if u.CancellationLimit > 0 {
		return u.CancellationLimit
	}
	if u.Role == RoleOperator {
		return DefaultOperatorCancellationLimit
	}
	return DefaultCancellationLimit
}

// BeforeSave хеширует пароль перед сохранением, только если он не является bcrypt-хешем
func (u *User) BeforeSave(tx *gorm.DB) error {
	// Хешируем пароль только если он:
	// 1. Не пустой
	// 2. Не является уже bcrypt-хешем (начинается с "$2a$", "$2b$" или "$2y$")
	if len(u.Password) > 0 && !strings.HasPrefix(u.Password, "$2a$") &&
		!strings.HasPrefix(u.Password, "$2b$") && !strings.HasPrefix(u.Password, "$2y$") {
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
		if err != nil {
			log.Printf("[User.BeforeSave] Ошибка при хешировании пароля для email=%s: %v", u.Email, err)
			return err
		}
		u.Password = string(hashedPassword)
	}
	return nil
}

// CheckPassword проверяет, соответствует ли переданный пароль хешу
func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password))
	return err == nil
}
