package service

import (
	"errors"
	"fmt"
)

// Ошибки сервисов, проверяются через errors.Is
var (
	ErrValidation          = errors.New("validation error")
	ErrUnauthenticated     = errors.New("caller identity cannot be established")
	ErrForbidden           = errors.New("forbidden")
	ErrNotFound            = errors.New("not found")
	ErrInvalidTransition   = errors.New("invalid reservation transition")
	ErrSlotConflict        = errors.New("requested time is no longer free")
	ErrCollaboratorFailure = errors.New("external collaborator failure")
)

// ValidationError описывает некорректное поле запроса
type ValidationError struct {
	Index  int // индекс в списке availabilities, -1 если поле не из списка
	Field  string
	Reason string
}

func newFieldError(field, reason string) *ValidationError {
	return &ValidationError{Index: -1, Field: field, Reason: reason}
}

// Path полный путь к полю, например availabilities[2].startTime
func (e *ValidationError) Path() string {
	if e.Index >= 0 {
		return fmt.Sprintf("availabilities[%d].%s", e.Index, e.Field)
	}
	return e.Field
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Path(), e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}
