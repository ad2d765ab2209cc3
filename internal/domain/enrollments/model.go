package enrollments

import "time"

// CourseEnrollment is the per (user, course) grant plus the cached progress aggregate.
// ProgressPercentage and CompletedLessons are derived; recompute them, never patch them.
type CourseEnrollment struct {
	ID       uint `gorm:"primaryKey"`
	UserID   uint `gorm:"not null;uniqueIndex:idx_enrollment_user_course"`
	CourseID uint `gorm:"not null;uniqueIndex:idx_enrollment_user_course;index"`

	HasAccess       bool       `gorm:"not null;default:false"`
	AccessGrantedAt *time.Time `gorm:"column:access_granted_date"`
	AccessGrantedBy *uint      `gorm:"column:access_granted_by"`

	ProgressPercentage int `gorm:"not null;default:0"`
	CompletedLessons   int `gorm:"not null;default:0"`
	LastAccessedAt     *time.Time

	CreatedAt time.Time `gorm:"column:enrollment_date"`
	UpdatedAt time.Time
}

// GlobalAccessGrant records that an admin granted lifetime premium to a user.
// It is an audit log only and never participates in access decisions.
type GlobalAccessGrant struct {
	ID        uint   `gorm:"primaryKey"`
	UserID    uint   `gorm:"not null;index"`
	GrantedBy uint   `gorm:"not null"`
	Notes     string `gorm:"size:500"`
	CreatedAt time.Time
}
