package repository

import (
	"context"
	"time"

	"learning-platform/internal/domain/enrollments"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type enrollmentRepo struct{ db *gorm.DB }

var userCourseConflict = []clause.Column{{Name: "user_id"}, {Name: "course_id"}}

func (r *enrollmentRepo) Find(ctx context.Context, userID, courseID uint) (*enrollments.CourseEnrollment, error) {
	var e enrollments.CourseEnrollment
	if err := enrollmentQuery(r.db.WithContext(ctx), userID, courseID).First(&e).Error; err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *enrollmentRepo) UpsertGrant(ctx context.Context, userID, courseID, grantedBy uint, at time.Time) (*enrollments.CourseEnrollment, error) {
	row := enrollments.CourseEnrollment{
		UserID:          userID,
		CourseID:        courseID,
		HasAccess:       true,
		AccessGrantedAt: &at,
		AccessGrantedBy: &grantedBy,
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   userCourseConflict,
		DoUpdates: clause.AssignmentColumns([]string{"has_access", "access_granted_date", "access_granted_by", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return nil, err
	}
	// the conflict path keeps the stored progress columns; read them back
	return r.Find(ctx, userID, courseID)
}

func (r *enrollmentRepo) Revoke(ctx context.Context, userID, courseID uint) (bool, error) {
	res := enrollmentQuery(r.db.WithContext(ctx), userID, courseID).
		Update("has_access", false)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *enrollmentRepo) LockForUpdate(ctx context.Context, userID, courseID uint) (*enrollments.CourseEnrollment, error) {
	db := r.db.WithContext(ctx)

	seed := enrollments.CourseEnrollment{UserID: userID, CourseID: courseID}
	if err := db.Clauses(clause.OnConflict{Columns: userCourseConflict, DoNothing: true}).Create(&seed).Error; err != nil {
		return nil, err
	}

	var e enrollments.CourseEnrollment
	err := enrollmentQuery(db, userID, courseID).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&e).Error
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *enrollmentRepo) SaveProgress(ctx context.Context, e *enrollments.CourseEnrollment) error {
	return r.db.WithContext(ctx).Model(&enrollments.CourseEnrollment{}).
		Where("id = ?", e.ID).
		Updates(map[string]interface{}{
			"progress_percentage": e.ProgressPercentage,
			"completed_lessons":   e.CompletedLessons,
			"last_accessed_at":    e.LastAccessedAt,
		}).Error
}

func (r *enrollmentRepo) ListGrantedForUser(ctx context.Context, userID uint) ([]enrollments.CourseEnrollment, error) {
	var out []enrollments.CourseEnrollment
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND has_access = ?", userID, true).
		Find(&out).Error
	return out, err
}

func (r *enrollmentRepo) ListForUser(ctx context.Context, userID uint) ([]enrollments.CourseEnrollment, error) {
	var out []enrollments.CourseEnrollment
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("last_accessed_at DESC NULLS LAST").
		Find(&out).Error
	return out, err
}

func (r *enrollmentRepo) ListByCourse(ctx context.Context, courseID uint) ([]enrollments.CourseEnrollment, error) {
	var out []enrollments.CourseEnrollment
	err := r.db.WithContext(ctx).
		Where("course_id = ?", courseID).
		Order("user_id ASC").
		Find(&out).Error
	return out, err
}

func (r *enrollmentRepo) ListAll(ctx context.Context) ([]enrollments.CourseEnrollment, error) {
	var out []enrollments.CourseEnrollment
	err := r.db.WithContext(ctx).
		Order("enrollment_date DESC").
		Find(&out).Error
	return out, err
}
