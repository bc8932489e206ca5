package memory

import (
	"sync"

	"github.com/yourusername/charter-api/internal/domain/entity"
	apperrors "github.com/yourusername/charter-api/internal/pkg/errors"
)

// TwoFactorStore — in-memory реализация repository.TwoFactorStore.
// Записи живут в памяти процесса и намеренно не переживают перезапуск.
type TwoFactorStore struct {
	mu    sync.RWMutex
	codes map[string]*entity.TwoFactorCode
}

// NewTwoFactorStore создает пустое хранилище кодов
func NewTwoFactorStore() *TwoFactorStore {
	return &TwoFactorStore{
		codes: make(map[string]*entity.TwoFactorCode),
	}
}

// Get возвращает запись по identity или apperrors.ErrNotFound
func (s *TwoFactorStore) Get(identity string) (*entity.TwoFactorCode, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	code, ok := s.codes[identity]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	// Отдаём копию, чтобы вызывающий не менял хранимую запись напрямую
	copied := *code
	return &copied, nil
}

// Set сохраняет запись, перезаписывая существующую для той же identity
func (s *TwoFactorStore) Set(code *entity.TwoFactorCode) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *code
	s.codes[code.Identity] = &copied
	return nil
}

// Delete удаляет запись; отсутствие записи ошибкой не считается
func (s *TwoFactorStore) Delete(identity string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.codes, identity)
	return nil
}

// Identities возвращает ключи всех хранимых записей
func (s *TwoFactorStore) Identities() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	identities := make([]string, 0, len(s.codes))
	for identity := range s.codes {
		identities = append(identities, identity)
	}
	return identities, nil
}
