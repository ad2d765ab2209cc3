package courses

import "time"

type Course struct {
	ID               uint   `gorm:"primaryKey"`
	Title            string `gorm:"not null"`
	Description      string
	ShortDescription string `gorm:"size:500"`
	CoverImageURL    *string
	Level            string `gorm:"default:'Beginner'"`
	Language         string `gorm:"default:'Español'"`
	Category         string
	EstimatedHours   *int `gorm:"column:estimated_duration_hours"`
	IsPublished      bool `gorm:"not null;default:false"`
	IsPremium        bool `gorm:"not null"`
	Price            string
	InstructorID     uint `gorm:"not null"`

	Chapters []Chapter `gorm:"constraint:OnDelete:CASCADE"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

type Chapter struct {
	ID          uint   `gorm:"primaryKey"`
	CourseID    uint   `gorm:"not null;index"`
	Title       string `gorm:"not null"`
	Description string
	OrderIndex  int  `gorm:"not null"`
	IsPublished bool `gorm:"not null;default:false"`

	Lessons []Lesson `gorm:"constraint:OnDelete:CASCADE"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

type Lesson struct {
	ID          uint `gorm:"primaryKey"`
	ChapterID   uint `gorm:"not null;index"`
	CourseID    uint `gorm:"not null;index:idx_lessons_course_published"` // redundant with chapter, kept for aggregation queries
	Title       string
	Description string
	ContentType string `gorm:"size:50;not null"` // video|pdf|image|text|quiz

	VideoURL             *string
	VideoDurationSeconds *int
	FileURL              *string
	FileType             *string
	FileSizeBytes        *int64
	TextContent          *string

	OrderIndex       int  `gorm:"not null"`
	EstimatedMinutes *int `gorm:"column:estimated_duration_minutes"`
	IsPublished      bool `gorm:"not null;default:false;index:idx_lessons_course_published"`
	IsFree           bool `gorm:"not null;default:false"`
	CanDownload      bool `gorm:"not null;default:false"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
