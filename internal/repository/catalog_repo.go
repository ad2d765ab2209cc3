package repository

import (
	"context"

	"learning-platform/internal/domain/courses"
	"learning-platform/internal/domain/progress"

	"gorm.io/gorm"
)

type catalogRepo struct{ db *gorm.DB }

func (r *catalogRepo) FindCourse(ctx context.Context, id uint) (*courses.Course, error) {
	var c courses.Course
	if err := r.db.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *catalogRepo) FindLesson(ctx context.Context, id uint) (*courses.Lesson, error) {
	var l courses.Lesson
	if err := r.db.WithContext(ctx).First(&l, id).Error; err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *catalogRepo) ListPublishedCourses(ctx context.Context) ([]courses.Course, error) {
	var out []courses.Course
	err := publishedCoursesQuery(r.db.WithContext(ctx)).
		Order("created_at DESC").
		Find(&out).Error
	return out, err
}

func (r *catalogRepo) ListPremiumCourses(ctx context.Context) ([]courses.Course, error) {
	var out []courses.Course
	err := r.db.WithContext(ctx).
		Where("is_premium = ?", true).
		Order("created_at DESC").
		Find(&out).Error
	return out, err
}

func (r *catalogRepo) PublishedStructure(ctx context.Context, courseID uint) ([]courses.Chapter, error) {
	var chapters []courses.Chapter
	err := r.db.WithContext(ctx).
		Where("course_id = ? AND is_published = ?", courseID, true).
		Preload("Lessons", func(db *gorm.DB) *gorm.DB {
			return db.Where("is_published = ?", true).Order("order_index ASC")
		}).
		Order("order_index ASC").
		Find(&chapters).Error
	return chapters, err
}

func (r *catalogRepo) PublishedLessons(ctx context.Context, courseID uint) ([]courses.Lesson, error) {
	var out []courses.Lesson
	err := publishedLessonsQuery(r.db.WithContext(ctx), courseID).
		Order("chapter_id ASC, order_index ASC").
		Find(&out).Error
	return out, err
}

func (r *catalogRepo) SetLessonPublished(ctx context.Context, lessonID uint, published bool) error {
	res := r.db.WithContext(ctx).Model(&courses.Lesson{}).
		Where("id = ?", lessonID).
		Update("is_published", published)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *catalogRepo) DeleteLesson(ctx context.Context, lessonID uint) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("lesson_id = ?", lessonID).Delete(&progress.LessonProgress{}).Error; err != nil {
		return err
	}
	res := db.Delete(&courses.Lesson{}, lessonID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
