package repository

import (
	"github.com/yourusername/charter-api/internal/domain/entity"
)

// TwoFactorStore — абстракция key-value хранилища одноразовых кодов входа.
// Ключ — identity (email). Записи живут только в рамках процесса: коды не
// должны переживать перезапуск, поэтому базовая реализация — in-memory
// (internal/repository/memory). Интерфейс позволяет заменить её на
// распределённый кеш при горизонтальном масштабировании.
type TwoFactorStore interface {
	// Get возвращает запись по identity или apperrors.ErrNotFound
	Get(identity string) (*entity.TwoFactorCode, error)
	// Set сохраняет запись, перезаписывая существующую для той же identity
	Set(code *entity.TwoFactorCode) error
	// Delete удаляет запись; отсутствие записи ошибкой не считается
	Delete(identity string) error
	// Identities возвращает ключи всех хранимых записей (для периодической очистки)
	Identities() ([]string, error)
}
