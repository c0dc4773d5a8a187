package availability

import (
	"errors"
	"fmt"

	"github.com/Freeeeeet/mytrackly_booking/internal/model"
)

var (
	ErrInvalidDayOfWeek = errors.New("dayOfWeek must be between 0 and 6")
	ErrEmptyRange       = errors.New("startTime must be before endTime")
)

// SlotError указывает на конкретное правило и поле
type SlotError struct {
	Index int
	Field string
	Err   error
}

func (e *SlotError) Error() string {
	return fmt.Sprintf("availabilities[%d].%s: %v", e.Index, e.Field, e.Err)
}

func (e *SlotError) Unwrap() error {
	return e.Err
}

// ValidateSlot проверяет одно правило
func ValidateSlot(slot model.AvailabilitySlot) (field string, err error) {
	if slot.DayOfWeek < 0 || slot.DayOfWeek > 6 {
		return "dayOfWeek", ErrInvalidDayOfWeek
	}

	start, err := ToMinutes(slot.StartTime)
	if err != nil {
		return "startTime", err
	}

	end, err := ToMinutes(slot.EndTime)
	if err != nil {
		return "endTime", err
	}

	if start >= end {
		return "endTime", ErrEmptyRange
	}

	return "", nil
}

// ValidateSlots возвращает первую ошибку как *SlotError.
// Пересечения правил одного дня допустимы.
func ValidateSlots(slots []model.AvailabilitySlot) error {
	for i, slot := range slots {
		if field, err := ValidateSlot(slot); err != nil {
			return &SlotError{Index: i, Field: field, Err: err}
		}
	}
	return nil
}
