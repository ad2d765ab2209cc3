package repository

import (
	"learning-platform/internal/domain/courses"
	"learning-platform/internal/domain/enrollments"

	"gorm.io/gorm"
)

func publishedCoursesQuery(db *gorm.DB) *gorm.DB {
	return db.Model(&courses.Course{}).
		Where("is_published = ?", true)
}

func publishedLessonsQuery(db *gorm.DB, courseID uint) *gorm.DB {
	return db.Model(&courses.Lesson{}).
		Where("course_id = ? AND is_published = ?", courseID, true)
}

func enrollmentQuery(db *gorm.DB, userID, courseID uint) *gorm.DB {
	return db.Model(&enrollments.CourseEnrollment{}).
		Where("user_id = ? AND course_id = ?", userID, courseID)
}
