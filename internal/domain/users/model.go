package users

import "time"

const (
	RoleAdmin  = "admin"
	RoleAlumno = "alumno"
)

type User struct {
	ID        uint    `gorm:"primaryKey"`
	Email     string  `gorm:"not null;uniqueIndex:idx_users_email"`
	Name      string  `gorm:"not null"`
	GoogleSub *string `gorm:"uniqueIndex:idx_users_google_sub"`
	AvatarURL *string
	Role      string `gorm:"type:varchar(20);not null;default:'alumno'"`
	IsActive  bool   `gorm:"not null"`

	// Global premium: satisfies every premium course. Only admin actions flip it.
	HasPremiumAccess bool `gorm:"column:has_premium_access;not null;default:false"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}
