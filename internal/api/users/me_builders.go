package users

import (
	"learning-platform/internal/domain/access"
	"learning-platform/internal/domain/courses"
	"learning-platform/internal/domain/enrollments"
	"learning-platform/internal/domain/users"
)

func BuildUserDTO(u *users.User) UserDTO {
	return UserDTO{
		ID:               u.ID,
		Email:            u.Email,
		Name:             u.Name,
		AvatarURL:        u.AvatarURL,
		Role:             u.Role,
		IsAdmin:          u.IsAdmin(),
		HasPremiumAccess: u.HasPremiumAccess,
		CreatedAt:        u.CreatedAt,
	}
}

func BuildMyCourse(c courses.Course, d access.Decision) MyCourses {
	return MyCourses{
		CourseID:  c.ID,
		Title:     c.Title,
		IsPremium: c.IsPremium,
		Reason:    string(d.Reason),
	}
}

func BuildMyGrants(rows []enrollments.GlobalAccessGrant) []MyGrant {
	out := make([]MyGrant, 0, len(rows))
	for _, g := range rows {
		out = append(out, MyGrant{ID: g.ID, GrantedBy: g.GrantedBy, Notes: g.Notes, CreatedAt: g.CreatedAt})
	}
	return out
}
