package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log"
	"math/big"
	"strings"
	"time"

	"github.com/yourusername/charter-api/internal/domain/entity"
	"github.com/yourusername/charter-api/internal/domain/repository"
	apperrors "github.com/yourusername/charter-api/internal/pkg/errors"
)

// IssueResult разделяет факт создания кода и факт его доставки. Недоставка —
// мягкая ошибка: код остаётся действительным, чтобы временный сбой почтового
// канала не блокировал вход пользователя.
type IssueResult struct {
	Issued    bool      `json:"issued"`
	Delivered bool      `json:"delivered"`
	ExpiresAt time.Time `json:"expires_at"`
}

// VerificationResult — структурированный итог проверки кода. Отказ в проверке
// не является ошибкой выполнения: Failure содержит один из сентинелов
// (ErrCodeNotFound, ErrCodeExpired, ErrTooManyAttempts, ErrCodeMismatch),
// а Message — готовый текст для пользователя.
type VerificationResult struct {
	Valid             bool   `json:"valid"`
	Failure           error  `json:"-"`
	AttemptsRemaining int    `json:"attempts_remaining"`
	Message           string `json:"message,omitempty"`
}

// TwoFactorService управляет жизненным циклом одноразовых кодов входа:
// выдача с TTL, проверка с лимитом попыток, периодическая чистка.
type TwoFactorService struct {
	store         repository.TwoFactorStore
	notifier      Notifier
	ttl           time.Duration
	maxAttempts   int
	purgeInterval time.Duration

	// now подменяется в тестах для управления виртуальными часами
	now func() time.Time
}

// NewTwoFactorService создает сервис одноразовых кодов
func NewTwoFactorService(
	store repository.TwoFactorStore,
	notifier Notifier,
	ttl time.Duration,
	maxAttempts int,
	purgeInterval time.Duration,
) (*TwoFactorService, error) {
	if store == nil {
		return nil, fmt.Errorf("two factor store is required")
	}
	if notifier == nil {
		return nil, fmt.Errorf("notifier is required")
	}
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	if purgeInterval <= 0 {
		purgeInterval = 5 * time.Minute
	}

	return &TwoFactorService{
		store:         store,
		notifier:      notifier,
		ttl:           ttl,
		maxAttempts:   maxAttempts,
		purgeInterval: purgeInterval,
		now:           time.Now,
	}, nil
}

// IssueCode генерирует новый код для identity и отправляет его через Notifier.
// Существующая запись (вместе со счётчиком попыток) перезаписывается: повторная
// выдача всегда даёт полный запас попыток. Сбой доставки не отменяет выдачу.
func (s *TwoFactorService) IssueCode(ctx context.Context, identity, displayName string) (*IssueResult, error) {
	identity = strings.TrimSpace(identity)
	if identity == "" {
		return nil, fmt.Errorf("%w: empty identity", apperrors.ErrValidation)
	}

	code, err := generateLoginCode()
	if err != nil {
		return nil, fmt.Errorf("failed to generate login code: %w", err)
	}

	now := s.now()
	record := &entity.TwoFactorCode{
		Identity:    identity,
		DisplayName: displayName,
		Code:        code,
		IssuedAt:    now,
		ExpiresAt:   now.Add(s.ttl),
		Attempts:    0,
		MaxAttempts: s.maxAttempts,
	}
	if err := s.store.Set(record); err != nil {
		return nil, fmt.Errorf("failed to store login code: %w", err)
	}

	result := &IssueResult{Issued: true, Delivered: true, ExpiresAt: record.ExpiresAt}
	if err := s.notifier.SendCode(ctx, identity, displayName, code); err != nil {
		// Мягкий отказ: код уже создан и действителен, пользователь может
		// запросить повторную отправку. Логируем и продолжаем.
		log.Printf("[TwoFactorService] Доставка кода для %s не подтверждена: %v", identity, err)
		result.Delivered = false
	}
	return result, nil
}

// VerifyCode проверяет введённый код. Запись удаляется при успехе (код
// одноразовый), при обнаружении истечения срока и при входе с уже исчерпанными
// попытками. Несовпадение только увеличивает счётчик: запись, у которой
// попытки закончились на этом же вводе, доживает до следующего обращения.
func (s *TwoFactorService) VerifyCode(identity, input string) VerificationResult {
	record, err := s.store.Get(strings.TrimSpace(identity))
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			log.Printf("[TwoFactorService] Ошибка чтения кода для %s: %v", identity, err)
		}
		return VerificationResult{
			Failure: ErrCodeNotFound,
			Message: "no verification code found, request a new one",
		}
	}

	now := s.now()
	if record.IsExpired(now) {
		if err := s.store.Delete(record.Identity); err != nil {
			log.Printf("[TwoFactorService] Ошибка удаления истекшего кода для %s: %v", identity, err)
		}
		return VerificationResult{
			Failure: ErrCodeExpired,
			Message: "code expired, request a new one",
		}
	}

	if record.AttemptsExhausted() {
		if err := s.store.Delete(record.Identity); err != nil {
			log.Printf("[TwoFactorService] Ошибка удаления кода с исчерпанными попытками для %s: %v", identity, err)
		}
		return VerificationResult{
			Failure: ErrTooManyAttempts,
			Message: "too many failed attempts, request a new code",
		}
	}

	if strings.TrimSpace(input) == record.Code {
		if err := s.store.Delete(record.Identity); err != nil {
			log.Printf("[TwoFactorService] Ошибка удаления использованного кода для %s: %v", identity, err)
		}
		return VerificationResult{Valid: true}
	}

	record.Attempts++
	if err := s.store.Set(record); err != nil {
		log.Printf("[TwoFactorService] Ошибка сохранения счётчика попыток для %s: %v", identity, err)
	}
	return VerificationResult{
		Failure:           ErrCodeMismatch,
		AttemptsRemaining: record.AttemptsRemaining(),
		Message:           "incorrect code",
	}
}

// TimeRemaining возвращает оставшееся время жизни кода в секундах (с
// округлением вверх). Для неизвестной identity или истекшего кода — 0.
func (s *TwoFactorService) TimeRemaining(identity string) int {
	record, err := s.store.Get(strings.TrimSpace(identity))
	if err != nil {
		return 0
	}

	remaining := record.ExpiresAt.Sub(s.now())
	if remaining <= 0 {
		return 0
	}
	return int((remaining + time.Second - 1) / time.Second)
}

// PurgeExpired удаляет все записи с истекшим сроком и возвращает их количество
func (s *TwoFactorService) PurgeExpired() int {
	identities, err := s.store.Identities()
	if err != nil {
		log.Printf("[TwoFactorService] Ошибка перечисления записей при очистке: %v", err)
		return 0
	}

	now := s.now()
	removed := 0
	for _, identity := range identities {
		record, err := s.store.Get(identity)
		if err != nil {
			continue
		}
		if !record.ExpiresAt.After(now) {
			if err := s.store.Delete(identity); err != nil {
				log.Printf("[TwoFactorService] Ошибка удаления записи %s при очистке: %v", identity, err)
				continue
			}
			removed++
		}
	}
	return removed
}

// RunPurgeLoop запускает периодическую очистку истекших кодов: один проход
// сразу при старте, далее каждые purgeInterval до отмены контекста.
// Предназначен для запуска в отдельной горутине на время жизни процесса.
func (s *TwoFactorService) RunPurgeLoop(ctx context.Context) {
	log.Printf("[TwoFactorService] Запуск периодической очистки кодов (каждые %v)", s.purgeInterval)

	if removed := s.PurgeExpired(); removed > 0 {
		log.Printf("[TwoFactorService] Стартовая очистка удалила %d записей", removed)
	}

	ticker := time.NewTicker(s.purgeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if removed := s.PurgeExpired(); removed > 0 {
				log.Printf("[TwoFactorService] Очистка удалила %d истекших записей", removed)
			}
		case <-ctx.Done():
			log.Println("[TwoFactorService] Завершение работы горутины очистки кодов")
			return
		}
	}
}

// generateLoginCode возвращает 6-значный код из диапазона [100000, 999999]
func generateLoginCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
