package model

import (
	"time"

	"github.com/google/uuid"
)

// Role роль пользователя в приложении
type Role string

const (
	RolePersonal Role = "personnel" // Самостоятельный пользователь без коуча
	RoleStudent  Role = "eleve"     // Ученик, привязанный к коучу
	RoleCoach    Role = "coach"
)

// Valid проверяет что роль известна
func (r Role) Valid() bool {
	switch r {
	case RolePersonal, RoleStudent, RoleCoach:
		return true
	}
	return false
}

type User struct {
	ID             uuid.UUID  `json:"id"`
	Email          string     `json:"email"`
	FirstName      string     `json:"firstName"`
	LastName       string     `json:"lastName"`
	Role           Role       `json:"role"`
	CoachID        *uuid.UUID `json:"coachId,omitempty"` // только для учеников
	TelegramChatID *int64     `json:"-"`                 // nil - уведомления в Telegram не отправляются
	Timezone       string     `json:"timezone"`          // IANA, пусто = часовой пояс по умолчанию
	CreatedAt      time.Time  `json:"createdAt"`
}

// IsCoach проверяет является ли пользователь коучем
func (u *User) IsCoach() bool {
	return u.Role == RoleCoach
}

// HasCoach проверяет что ученик привязан к указанному коучу
func (u *User) HasCoach(coachID uuid.UUID) bool {
	return u.Role == RoleStudent && u.CoachID != nil && *u.CoachID == coachID
}

// DisplayName возвращает имя для уведомлений
func (u *User) DisplayName() string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	default:
		return u.Email
	}
}

// Session - аутентифицированный вызывающий, передаётся явно в каждый вызов сервиса
type Session struct {
	UserID uuid.UUID
	Role   Role
}

// Authenticated проверяет что личность вызывающего установлена
func (s *Session) Authenticated() bool {
	return s != nil && s.UserID != uuid.Nil && s.Role.Valid()
}
