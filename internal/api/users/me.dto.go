package users

import "time"

type MeResponse struct {
	User    UserDTO     `json:"user"`
	Courses []MyCourses `json:"courses"`
	Grants  []MyGrant   `json:"grants,omitempty"`
}

/* ---------- USER ---------- */

type UserDTO struct {
	ID               uint      `json:"id"`
	Email            string    `json:"email"`
	Name             string    `json:"name"`
	AvatarURL        *string   `json:"avatar_url"`
	Role             string    `json:"role"`
	IsAdmin          bool      `json:"is_admin"`
	HasPremiumAccess bool      `json:"has_premium_access"`
	CreatedAt        time.Time `json:"created_at"`
}

/* ---------- COURSES ---------- */

type MyCourses struct {
	CourseID  uint   `json:"course_id"`
	Title     string `json:"title"`
	IsPremium bool   `json:"is_premium"`
	Reason    string `json:"reason"`
}

/* ---------- GRANTS ---------- */

type MyGrant struct {
	ID        uint      `json:"id"`
	GrantedBy uint      `json:"granted_by"`
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"created_at"`
}
