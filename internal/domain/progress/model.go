package progress

import (
	"time"

	"learning-platform/internal/domain/courses"
)

type LessonProgress struct {
	ID       uint `gorm:"primaryKey"`
	UserID   uint `gorm:"not null;uniqueIndex:idx_progress_user_lesson"`
	LessonID uint `gorm:"not null;uniqueIndex:idx_progress_user_lesson;index"`

	// rows go away with their lesson, never on their own
	Lesson *courses.Lesson `gorm:"constraint:OnDelete:CASCADE" json:"-"`

	IsCompleted         bool `gorm:"not null;default:false"`
	ProgressPercentage  int  `gorm:"not null;default:0"`
	TimeSpentSeconds    int  `gorm:"not null;default:0"`
	LastPositionSeconds int  `gorm:"not null;default:0"`
	CompletedAt         *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (LessonProgress) TableName() string { return "lesson_progress" }
