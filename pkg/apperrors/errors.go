package apperrors

import (
	"errors"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Список общих ошибок приложения
var (
	// ErrNotFound возвращается, когда запись не найдена (обобщенная ошибка)
	ErrNotFound = errors.New("запись не найдена")

	// ErrCacheMiss возвращается, когда запись не найдена в кэше
	ErrCacheMiss = redis.Nil

	// ErrRecordNotFound возвращается, когда запись не найдена в базе данных
	ErrRecordNotFound = gorm.ErrRecordNotFound

	// ErrInvalidInput возвращается при некорректных входных данных запроса
	ErrInvalidInput = errors.New("некорректные входные данные")

	// ErrCircuitOpen возвращается, когда circuit breaker не пропускает запросы
	ErrCircuitOpen = errors.New("circuit breaker is open")

	// ErrInsufficientQuantity возвращается, когда в инвентаре нет нужного предмета
	ErrInsufficientQuantity = errors.New("недостаточно предметов в инвентаре")

	// ErrAlreadyExists возвращается при повторном создании уникальной записи
	ErrAlreadyExists = errors.New("запись уже существует")

	// ErrPermissionDenied возвращается, когда запрос затрагивает чужие данные
	ErrPermissionDenied = errors.New("доступ запрещен")

	// IgnoredErrors содержит список ошибок, которые не считаются отказами хранилища
	IgnoredErrors = []error{
		ErrNotFound,
		ErrCacheMiss,
		ErrRecordNotFound,
		ErrInvalidInput,
		ErrInsufficientQuantity,
		ErrAlreadyExists,
	}
)

// IsNotFound проверяет, является ли ошибка ошибкой "запись не найдена"
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}

	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrCacheMiss) ||
		errors.Is(err, ErrRecordNotFound)
}

// IsIgnored проверяет, относится ли ошибка к бизнес-ошибкам, а не к отказам хранилища
func IsIgnored(err error) bool {
	for _, ignored := range IgnoredErrors {
		if errors.Is(err, ignored) {
			return true
		}
	}
	return false
}
