package entity

import "time"

// EligibilityReason — категориальный код причины, по которой бронирование
// запрещено. Причины не комбинируются: возвращается первая применимая по
// порядку проверки.
type EligibilityReason string

const (
	ReasonRoleNotPermitted         EligibilityReason = "role_not_permitted"
	ReasonProfileNotApproved       EligibilityReason = "profile_not_approved"
	ReasonMembershipExpired        EligibilityReason = "membership_expired"
	ReasonCancellationLimitReached EligibilityReason = "cancellation_limit_reached"
	ReasonBookingLimitReached      EligibilityReason = "booking_limit_reached"
)

// BookingEligibilitySubject — снимок состояния пользователя, по которому
// принимается решение о допуске к бронированию. Субъект только читается,
// изменение счётчиков — ответственность сервисов аккаунтов и бронирований.
type BookingEligibilitySubject struct {
	Role                string
	MembershipType      string
	MembershipExpiresAt *time.Time
	ProfileStatus       string
	BookingCount        int
	BookingLimit        int // 0 — использовать DefaultBookingLimit
	CancellationCount   int
	CancellationLimit   int // 0 — использовать лимит по умолчанию для роли
}

// EligibilityDecision — результат оценки. Отказ — это нормальное решение,
// а не ошибка: Reason заполнен только при Allowed=false.
type EligibilityDecision struct {
	Allowed bool              `json:"allowed"`
	Reason  EligibilityReason `json:"reason,omitempty"`
}

// EligibilitySubjectFromUser строит субъект оценки из записи пользователя
func EligibilitySubjectFromUser(u *User) BookingEligibilitySubject {
	return BookingEligibilitySubject{
		Role:                u.Role,
		MembershipType:      u.MembershipType,
		MembershipExpiresAt: u.MembershipExpiresAt,
		ProfileStatus:       u.ProfileStatus,
		BookingCount:        u.BookingCount,
		BookingLimit:        u.BookingLimit,
		CancellationCount:   u.CancellationCount,
		CancellationLimit:   u.CancellationLimit,
	}
}
