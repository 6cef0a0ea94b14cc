package service

import (
	"errors"
	"fmt"

	"github.com/linemk/jpashop-orders/internal/domain/models"
	"github.com/linemk/jpashop-orders/internal/projection"
	"github.com/linemk/jpashop-orders/internal/storage"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// InvalidArgumentError описывает неверный входной параметр.
// errors.Is(err, ErrInvalidArgument) для него истинно.
type InvalidArgumentError struct {
	Field  string
	Reason string
}

func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *InvalidArgumentError) Is(target error) bool {
	return target == ErrInvalidArgument
}

func invalidArgument(field, reason string) error {
	return &InvalidArgumentError{Field: field, Reason: reason}
}

// classify приводит ошибку хранилища к одному из видов ошибок сервиса.
// Уже классифицированные ошибки и нарушения контракта проекции не меняются.
func classify(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrNotFound),
		errors.Is(err, ErrInvalidArgument),
		errors.Is(err, ErrStorageUnavailable),
		errors.Is(err, projection.ErrContractViolation):
		return err
	case errors.Is(err, storage.ErrOrderNotFound):
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	default:
		return fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}
}

// ValidatePage проверяет границы окна выборки.
func ValidatePage(page models.Page) error {
	if page.Offset < 0 {
		return invalidArgument("offset", "must be greater than or equal to 0")
	}
	if page.Limit < 1 || page.Limit > models.MaxPageLimit {
		return invalidArgument("limit", fmt.Sprintf("must be between 1 and %d", models.MaxPageLimit))
	}
	return nil
}
