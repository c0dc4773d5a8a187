package availability

import (
	"fmt"
	"sort"
	"time"

	"github.com/Freeeeeet/mytrackly_booking/internal/model"
)

// Interval занятый промежуток в минутах от начала суток, [Start, End)
type Interval struct {
	Start int
	End   int
}

// DeriveSlots вычисляет свободные окна длиной slotDuration для дня недели weekday.
//
// Хвост правила короче slotDuration отбрасывается. Дубликаты по началу убираются
// (первый выигрывает), окна пересекающие busy и начинающиеся раньше earliestStart
// не возвращаются. Результат отсортирован по началу.
func DeriveSlots(rules []model.AvailabilitySlot, slotDuration int, weekday time.Weekday, busy []Interval, earliestStart int) ([]model.TimeSlot, error) {
	if slotDuration <= 0 {
		return nil, fmt.Errorf("slot duration %d: must be positive", slotDuration)
	}

	type candidate struct{ start, end int }

	seen := make(map[int]struct{})
	var candidates []candidate

	for i, rule := range rules {
		if rule.DayOfWeek != int(weekday) || !rule.Active() {
			continue
		}

		start, err := ToMinutes(rule.StartTime)
		if err != nil {
			return nil, &SlotError{Index: i, Field: "startTime", Err: err}
		}
		end, err := ToMinutes(rule.EndTime)
		if err != nil {
			return nil, &SlotError{Index: i, Field: "endTime", Err: err}
		}

		for t := start; t+slotDuration <= end; t += slotDuration {
			if _, dup := seen[t]; dup {
				continue
			}
			seen[t] = struct{}{}
			candidates = append(candidates, candidate{start: t, end: t + slotDuration})
		}
	}

	slots := make([]model.TimeSlot, 0, len(candidates))
	sort.SliceStable(candidates, func(i, j int) bool { return candidates[i].start < candidates[j].start })

	for _, c := range candidates {
		if c.start < earliestStart || overlapsAny(c.start, c.end, busy) {
			continue
		}

		startStr, err := ToHHMM(c.start)
		if err != nil {
			return nil, err
		}
		endStr, err := ToHHMM(c.end)
		if err != nil {
			return nil, err
		}

		slots = append(slots, model.TimeSlot{Start: startStr, End: endStr})
	}

	return slots, nil
}

func overlapsAny(start, end int, busy []Interval) bool {
	for _, b := range busy {
		if Overlaps(start, end, b.Start, b.End) {
			return true
		}
	}
	return false
}
