package repository

import (
	"context"

	"learning-platform/internal/domain/progress"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type progressRepo struct{ db *gorm.DB }

func (r *progressRepo) Find(ctx context.Context, userID, lessonID uint) (*progress.LessonProgress, error) {
	var p progress.LessonProgress
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND lesson_id = ?", userID, lessonID).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *progressRepo) Save(ctx context.Context, p *progress.LessonProgress) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "lesson_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"is_completed",
			"progress_percentage",
			"time_spent_seconds",
			"last_position_seconds",
			"completed_at",
			"updated_at",
		}),
	}).Omit(clause.Associations).Create(p).Error
}

func (r *progressRepo) CountCompleted(ctx context.Context, userID uint, lessonIDs []uint) (int64, error) {
	if len(lessonIDs) == 0 {
		return 0, nil
	}
	var n int64
	err := r.db.WithContext(ctx).Model(&progress.LessonProgress{}).
		Where("user_id = ? AND is_completed = ? AND lesson_id IN ?", userID, true, lessonIDs).
		Count(&n).Error
	return n, err
}

func (r *progressRepo) ListForLessons(ctx context.Context, userID uint, lessonIDs []uint) ([]progress.LessonProgress, error) {
	if len(lessonIDs) == 0 {
		return nil, nil
	}
	var out []progress.LessonProgress
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND lesson_id IN ?", userID, lessonIDs).
		Find(&out).Error
	return out, err
}
