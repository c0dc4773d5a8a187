// Package availability содержит арифметику времени суток, проверку недельных правил
// и вычисление свободных слотов. Пакет не имеет побочных эффектов.
package availability

import (
	"errors"
	"fmt"
)

// MinutesPerDay количество минут в сутках
const MinutesPerDay = 24 * 60

var (
	ErrInvalidTimeFormat = errors.New("invalid time format, expected HH:mm")
	ErrInvalidRange      = errors.New("minutes out of range [0, 1440)")
)

// ToMinutes переводит HH:mm в минуты от начала суток
func ToMinutes(hhmm string) (int, error) {
	if len(hhmm) != 5 || hhmm[2] != ':' {
		return 0, fmt.Errorf("%q: %w", hhmm, ErrInvalidTimeFormat)
	}
	for _, i := range []int{0, 1, 3, 4} {
		if hhmm[i] < '0' || hhmm[i] > '9' {
			return 0, fmt.Errorf("%q: %w", hhmm, ErrInvalidTimeFormat)
		}
	}

	hour := int(hhmm[0]-'0')*10 + int(hhmm[1]-'0')
	minute := int(hhmm[3]-'0')*10 + int(hhmm[4]-'0')
	if hour > 23 || minute > 59 {
		return 0, fmt.Errorf("%q: %w", hhmm, ErrInvalidTimeFormat)
	}

	return hour*60 + minute, nil
}

// ToHHMM обратное преобразование
func ToHHMM(minutes int) (string, error) {
	if minutes < 0 || minutes >= MinutesPerDay {
		return "", fmt.Errorf("%d: %w", minutes, ErrInvalidRange)
	}
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60), nil
}

// Overlaps полуоткрытые интервалы, касание концами не пересечение
func Overlaps(aStart, aEnd, bStart, bEnd int) bool {
	return aStart < bEnd && bStart < aEnd
}
