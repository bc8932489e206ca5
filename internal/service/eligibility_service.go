package service

import (
	"time"

	"github.com/yourusername/charter-api/internal/domain/entity"
)

// EligibilityService принимает решение о допуске пользователя к созданию
// нового бронирования. Оценка — чистая функция от субъекта и текущего
// времени: без побочных эффектов, повторный вызов с теми же входными данными
// даёт тот же результат.
type EligibilityService struct {
	// now подменяется в тестах
	now func() time.Time
}

// NewEligibilityService создает сервис оценки допуска к бронированию
func NewEligibilityService() *EligibilityService {
	return &EligibilityService{now: time.Now}
}

// Evaluate возвращает решение о допуске. Проверки выполняются в строгом
// порядке, выигрывает первая применимая причина:
//  1. операторы и администраторы не бронируют через клиентский поток;
//  2. профиль клиента должен быть одобрен;
//  3. членство не должно быть просрочено;
//  4. лимит отмен не должен быть исчерпан;
//  5. для тарифов none/standard действует лимит количества бронирований
//     (basic и premium — тарифы без ограничения количества).
func (s *EligibilityService) Evaluate(subject entity.BookingEligibilitySubject) entity.EligibilityDecision {
	if subject.Role == entity.RoleOperator || subject.Role == entity.RoleAdmin {
		return entity.EligibilityDecision{Allowed: false, Reason: entity.ReasonRoleNotPermitted}
	}

	if subject.ProfileStatus != entity.ProfileStatusApproved {
		return entity.EligibilityDecision{Allowed: false, Reason: entity.ReasonProfileNotApproved}
	}

	if subject.MembershipExpiresAt != nil && s.now().After(*subject.MembershipExpiresAt) {
		return entity.EligibilityDecision{Allowed: false, Reason: entity.ReasonMembershipExpired}
	}

	if subject.CancellationCount >= cancellationLimit(subject) {
		return entity.EligibilityDecision{Allowed: false, Reason: entity.ReasonCancellationLimitReached}
	}

	if cappedMembership(subject.MembershipType) && subject.BookingCount >= bookingLimit(subject) {
		return entity.EligibilityDecision{Allowed: false, Reason: entity.ReasonBookingLimitReached}
	}

	return entity.EligibilityDecision{Allowed: true}
}

// cappedMembership возвращает true для тарифов, на которые распространяется
// лимит количества бронирований
func cappedMembership(membershipType string) bool {
	switch membershipType {
	case entity.MembershipBasic, entity.MembershipPremium:
		return false
	default:
		// "", none и standard ограничены лимитом
		return true
	}
}

func bookingLimit(subject entity.BookingEligibilitySubject) int {
	if subject.BookingLimit > 0 {
		return subject.BookingLimit
	}
	return entity.DefaultBookingLimit
}

func cancellationLimit(subject entity.BookingEligibilitySubject) int {
	if subject.CancellationLimit > 0 {
		return subject.CancellationLimit
	}
	if subject.Role == entity.RoleOperator {
		return entity.DefaultOperatorCancellationLimit
	}
	return entity.DefaultCancellationLimit
}
