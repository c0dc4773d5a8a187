package model

import (
	"time"

	"github.com/google/uuid"
)

// DefaultSlotDuration длительность слота по умолчанию, в минутах
const DefaultSlotDuration = 60

// AvailabilitySlot еженедельное правило доступности коуча
type AvailabilitySlot struct {
	DayOfWeek int    `json:"dayOfWeek"` // 0 = Sunday, 6 = Saturday
	StartTime string `json:"startTime"` // HH:mm, локальное время коуча
	EndTime   string `json:"endTime"`   // HH:mm
	IsActive  *bool  `json:"isActive,omitempty"`
}

// Active возвращает true если флаг не задан или равен true
func (s AvailabilitySlot) Active() bool {
	return s.IsActive == nil || *s.IsActive
}

// AvailabilityConfig документ доступности, принадлежит одному коучу
type AvailabilityConfig struct {
	CoachID        uuid.UUID          `json:"-"`
	Availabilities []AvailabilitySlot `json:"availabilities"`
	SlotDuration   int                `json:"slotDuration"` // минуты
	UpdatedAt      time.Time          `json:"-"`
}

// DefaultAvailabilityConfig пустая конфигурация для коуча, который ещё ничего не сохранил
func DefaultAvailabilityConfig(coachID uuid.UUID) *AvailabilityConfig {
	return &AvailabilityConfig{
		CoachID:        coachID,
		Availabilities: []AvailabilitySlot{},
		SlotDuration:   DefaultSlotDuration,
	}
}

// TimeSlot вычисленное окно для записи, не хранится
type TimeSlot struct {
	Start string `json:"start"`
	End   string `json:"end"`
}
