package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/yourusername/charter-api/internal/domain/entity"
)

func createTestEligibilityService(now time.Time) *EligibilityService {
	svc := NewEligibilityService()
	svc.now = func() time.Time { return now }
	return svc
}

func TestEligibilityService_Evaluate(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(24 * time.Hour)

	approvedCustomer := entity.BookingEligibilitySubject{
		Role:           entity.RoleCustomer,
		MembershipType: entity.MembershipNone,
		ProfileStatus:  entity.ProfileStatusApproved,
	}

	tests := []struct {
		name    string
		subject entity.BookingEligibilitySubject
		allowed bool
		reason  entity.EligibilityReason
	}{
		{
			name:    "одобренный клиент без ограничений",
			subject: approvedCustomer,
			allowed: true,
		},
		{
			name: "оператор не бронирует через клиентский поток",
			subject: entity.BookingEligibilitySubject{
				Role:          entity.RoleOperator,
				ProfileStatus: entity.ProfileStatusApproved,
			},
			reason: entity.ReasonRoleNotPermitted,
		},
		{
			name: "администратор не бронирует",
			subject: entity.BookingEligibilitySubject{
				Role:          entity.RoleAdmin,
				ProfileStatus: entity.ProfileStatusApproved,
			},
			reason: entity.ReasonRoleNotPermitted,
		},
		{
			name: "профиль на модерации",
			subject: entity.BookingEligibilitySubject{
				Role:          entity.RoleCustomer,
				ProfileStatus: entity.ProfileStatusPending,
			},
			reason: entity.ReasonProfileNotApproved,
		},
		{
			name: "профиль отклонен",
			subject: entity.BookingEligibilitySubject{
				Role:          entity.RoleCustomer,
				ProfileStatus: entity.ProfileStatusRejected,
			},
			reason: entity.ReasonProfileNotApproved,
		},
		{
			name: "членство просрочено",
			subject: entity.BookingEligibilitySubject{
				Role:                entity.RoleCustomer,
				ProfileStatus:       entity.ProfileStatusApproved,
				MembershipType:      entity.MembershipPremium,
				MembershipExpiresAt: &past,
			},
			reason: entity.ReasonMembershipExpired,
		},
		{
			name: "членство действует",
			subject: entity.BookingEligibilitySubject{
				Role:                entity.RoleCustomer,
				ProfileStatus:       entity.ProfileStatusApproved,
				MembershipType:      entity.MembershipPremium,
				MembershipExpiresAt: &future,
			},
			allowed: true,
		},
		{
			name: "лимит отмен исчерпан",
			subject: entity.BookingEligibilitySubject{
				Role:              entity.RoleCustomer,
				ProfileStatus:     entity.ProfileStatusApproved,
				MembershipType:    entity.MembershipPremium,
				CancellationCount: entity.DefaultCancellationLimit,
			},
			reason: entity.ReasonCancellationLimitReached,
		},
		{
			name: "лимит бронирований исчерпан для none",
			subject: entity.BookingEligibilitySubject{
				Role:           entity.RoleCustomer,
				ProfileStatus:  entity.ProfileStatusApproved,
				MembershipType: entity.MembershipNone,
				BookingCount:   entity.DefaultBookingLimit,
			},
			reason: entity.ReasonBookingLimitReached,
		},
		{
			name: "лимит бронирований исчерпан для standard",
			subject: entity.BookingEligibilitySubject{
				Role:           entity.RoleCustomer,
				ProfileStatus:  entity.ProfileStatusApproved,
				MembershipType: entity.MembershipStandard,
				BookingCount:   entity.DefaultBookingLimit,
			},
			reason: entity.ReasonBookingLimitReached,
		},
		{
			name: "пустой тариф трактуется как ограниченный",
			subject: entity.BookingEligibilitySubject{
				Role:          entity.RoleCustomer,
				ProfileStatus: entity.ProfileStatusApproved,
				BookingCount:  entity.DefaultBookingLimit,
			},
			reason: entity.ReasonBookingLimitReached,
		},
		{
			name: "basic не ограничен количеством бронирований",
			subject: entity.BookingEligibilitySubject{
				Role:           entity.RoleCustomer,
				ProfileStatus:  entity.ProfileStatusApproved,
				MembershipType: entity.MembershipBasic,
				BookingCount:   999,
			},
			allowed: true,
		},
		{
			name: "premium не ограничен количеством бронирований",
			subject: entity.BookingEligibilitySubject{
				Role:           entity.RoleCustomer,
				ProfileStatus:  entity.ProfileStatusApproved,
				MembershipType: entity.MembershipPremium,
				BookingCount:   999,
			},
			allowed: true,
		},
		{
			name: "индивидуальный лимит бронирований выше умолчания",
			subject: entity.BookingEligibilitySubject{
				Role:           entity.RoleCustomer,
				ProfileStatus:  entity.ProfileStatusApproved,
				MembershipType: entity.MembershipNone,
				BookingCount:   entity.DefaultBookingLimit,
				BookingLimit:   entity.DefaultBookingLimit + 5,
			},
			allowed: true,
		},
		{
			name: "на границе лимита бронирование еще разрешено",
			subject: entity.BookingEligibilitySubject{
				Role:           entity.RoleCustomer,
				ProfileStatus:  entity.ProfileStatusApproved,
				MembershipType: entity.MembershipNone,
				BookingCount:   entity.DefaultBookingLimit - 1,
			},
			allowed: true,
		},
	}

	svc := createTestEligibilityService(now)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decision := svc.Evaluate(tt.subject)
			assert.Equal(t, tt.allowed, decision.Allowed)
			assert.Equal(t, tt.reason, decision.Reason)
		})
	}
}

// Порядок проверок строгий: роль важнее статуса профиля, статус важнее
// членства, членство важнее лимитов
func TestEligibilityService_Evaluate_Precedence(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	svc := createTestEligibilityService(now)

	// Оператор с неодобренным профилем, просроченным членством и исчерпанными
	// лимитами — выигрывает причина роли
	decision := svc.Evaluate(entity.BookingEligibilitySubject{
		Role:                entity.RoleOperator,
		ProfileStatus:       entity.ProfileStatusRejected,
		MembershipExpiresAt: &past,
		BookingCount:        999,
		CancellationCount:   999,
	})
	assert.Equal(t, entity.ReasonRoleNotPermitted, decision.Reason)

	// Клиент с неодобренным профилем и просроченным членством — статус профиля
	decision = svc.Evaluate(entity.BookingEligibilitySubject{
		Role:                entity.RoleCustomer,
		ProfileStatus:       entity.ProfileStatusPending,
		MembershipExpiresAt: &past,
		CancellationCount:   999,
	})
	assert.Equal(t, entity.ReasonProfileNotApproved, decision.Reason)

	// Одобренный клиент с просроченным членством и исчерпанными лимитами — членство
	decision = svc.Evaluate(entity.BookingEligibilitySubject{
		Role:                entity.RoleCustomer,
		ProfileStatus:       entity.ProfileStatusApproved,
		MembershipExpiresAt: &past,
		BookingCount:        999,
		CancellationCount:   999,
	})
	assert.Equal(t, entity.ReasonMembershipExpired, decision.Reason)

	// Исчерпаны оба лимита — отмены важнее бронирований
	decision = svc.Evaluate(entity.BookingEligibilitySubject{
		Role:              entity.RoleCustomer,
		ProfileStatus:     entity.ProfileStatusApproved,
		MembershipType:    entity.MembershipNone,
		BookingCount:      999,
		CancellationCount: 999,
	})
	assert.Equal(t, entity.ReasonCancellationLimitReached, decision.Reason)
}

func TestEligibilityService_Evaluate_OperatorCancellationLimit(t *testing.T) {
	// Лимит отмен оператора выше клиентского, но роль оператора все равно
	// блокирует бронирование раньше
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc := createTestEligibilityService(now)

	decision := svc.Evaluate(entity.BookingEligibilitySubject{
		Role:              entity.RoleOperator,
		ProfileStatus:     entity.ProfileStatusApproved,
		CancellationCount: entity.DefaultOperatorCancellationLimit - 1,
	})
	assert.Equal(t, entity.ReasonRoleNotPermitted, decision.Reason)
}
