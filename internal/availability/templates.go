package availability

import (
	"fmt"
	"time"

	"github.com/Freeeeeet/mytrackly_booking/internal/model"
)

// Имена шаблонов, которые принимает Template
const (
	TemplateStandard = "standard"
	TemplatePartTime = "part-time"
	TemplateWeekend  = "weekend"
	TemplateClear    = "clear"
)

// Template строит список правил по имени шаблона. Это обычный список для полной замены,
// отдельной операции хранилища для шаблонов нет.
func Template(name string) ([]model.AvailabilitySlot, error) {
	switch name {
	case TemplateStandard:
		return weekly([]time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday},
			[2]string{"09:00", "12:00"}, [2]string{"14:00", "18:00"}), nil
	case TemplatePartTime:
		return weekly([]time.Weekday{time.Monday, time.Wednesday, time.Friday},
			[2]string{"09:00", "13:00"}), nil
	case TemplateWeekend:
		return weekly([]time.Weekday{time.Saturday, time.Sunday},
			[2]string{"09:00", "13:00"}), nil
	case TemplateClear:
		return []model.AvailabilitySlot{}, nil
	default:
		return nil, fmt.Errorf("unknown availability template %q", name)
	}
}

func weekly(days []time.Weekday, ranges ...[2]string) []model.AvailabilitySlot {
	slots := make([]model.AvailabilitySlot, 0, len(days)*len(ranges))
	for _, day := range days {
		for _, r := range ranges {
			slots = append(slots, model.AvailabilitySlot{
				DayOfWeek: int(day),
				StartTime: r[0],
				EndTime:   r[1],
			})
		}
	}
	return slots
}
