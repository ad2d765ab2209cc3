package repository

import (
	"context"
	"time"

	"learning-platform/internal/domain/courses"
	"learning-platform/internal/domain/enrollments"
	"learning-platform/internal/domain/progress"
	"learning-platform/internal/domain/users"
)

// Lookups that find nothing return gorm.ErrRecordNotFound, whatever the backend.

type UserRepository interface {
	FindByID(ctx context.Context, id uint) (*users.User, error)
	SetPremium(ctx context.Context, id uint, premium bool) error
}

type CatalogRepository interface {
	FindCourse(ctx context.Context, id uint) (*courses.Course, error)
	FindLesson(ctx context.Context, id uint) (*courses.Lesson, error)
	ListPublishedCourses(ctx context.Context) ([]courses.Course, error)
	ListPremiumCourses(ctx context.Context) ([]courses.Course, error)
	// PublishedStructure returns published chapters (ordered) with their published lessons (ordered).
	PublishedStructure(ctx context.Context, courseID uint) ([]courses.Chapter, error)
	// PublishedLessons returns every published lesson of a course, whatever its chapter.
	PublishedLessons(ctx context.Context, courseID uint) ([]courses.Lesson, error)
	SetLessonPublished(ctx context.Context, lessonID uint, published bool) error
	// DeleteLesson removes the lesson and its progress rows.
	DeleteLesson(ctx context.Context, lessonID uint) error
}

type EnrollmentRepository interface {
	Find(ctx context.Context, userID, courseID uint) (*enrollments.CourseEnrollment, error)
	// UpsertGrant creates or updates the row with has_access = true.
	UpsertGrant(ctx context.Context, userID, courseID, grantedBy uint, at time.Time) (*enrollments.CourseEnrollment, error)
	// Revoke sets has_access = false; it reports whether a row existed.
	Revoke(ctx context.Context, userID, courseID uint) (bool, error)
	// LockForUpdate creates the row if missing and locks it until the transaction ends.
	LockForUpdate(ctx context.Context, userID, courseID uint) (*enrollments.CourseEnrollment, error)
	SaveProgress(ctx context.Context, e *enrollments.CourseEnrollment) error
	ListGrantedForUser(ctx context.Context, userID uint) ([]enrollments.CourseEnrollment, error)
	ListForUser(ctx context.Context, userID uint) ([]enrollments.CourseEnrollment, error)
	ListByCourse(ctx context.Context, courseID uint) ([]enrollments.CourseEnrollment, error)
	ListAll(ctx context.Context) ([]enrollments.CourseEnrollment, error)
}

type ProgressRepository interface {
	Find(ctx context.Context, userID, lessonID uint) (*progress.LessonProgress, error)
	// Save inserts or updates the single (user, lesson) row.
	Save(ctx context.Context, p *progress.LessonProgress) error
	CountCompleted(ctx context.Context, userID uint, lessonIDs []uint) (int64, error)
	ListForLessons(ctx context.Context, userID uint, lessonIDs []uint) ([]progress.LessonProgress, error)
}

type GrantRepository interface {
	Append(ctx context.Context, g *enrollments.GlobalAccessGrant) error
	ListForUser(ctx context.Context, userID uint) ([]enrollments.GlobalAccessGrant, error)
}

// Store groups the repositories behind one transaction boundary.
type Store interface {
	Users() UserRepository
	Catalog() CatalogRepository
	Enrollments() EnrollmentRepository
	Progress() ProgressRepository
	Grants() GrantRepository

	// Transaction runs fn against a Store bound to a single transaction.
	// Returning an error rolls back everything fn wrote.
	Transaction(ctx context.Context, fn func(tx Store) error) error
}
