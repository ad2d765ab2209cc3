package service

import (
	"context"
	"errors"
	"time"

	"learning-platform/internal/domain/courses"
	"learning-platform/internal/domain/enrollments"
	"learning-platform/internal/domain/progress"
	"learning-platform/internal/domain/users"
	"learning-platform/internal/repository"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// ProgressService records lesson progress and keeps the per-course aggregate
// on CourseEnrollment in step with it. The aggregate is always recomputed from
// the LessonProgress rows of currently published lessons.
type ProgressService struct {
	store repository.Store
	now   func() time.Time
}

func NewProgressService(store repository.Store) *ProgressService {
	return &ProgressService{store: store, now: time.Now}
}

// PositionUpdate is the continuous tracking payload sent by players.
type PositionUpdate struct {
	Percentage       int
	PositionSeconds  int
	TimeSpentSeconds int
}

func (p PositionUpdate) validate() error {
	if !progress.ValidPercentage(p.Percentage) {
		return invalid("progress_percentage must be within 0..100, got %d", p.Percentage)
	}
	if p.PositionSeconds < 0 {
		return invalid("last_position_seconds must not be negative")
	}
	if p.TimeSpentSeconds < 0 {
		return invalid("time_spent_seconds must not be negative")
	}
	return nil
}

// LessonStatus is one lesson row of a CourseReport.
type LessonStatus struct {
	LessonID            uint
	Title               string
	ChapterID           uint
	IsCompleted         bool
	ProgressPercentage  int
	LastPositionSeconds int
	CompletedAt         *time.Time
}

// CourseReport is the read-only progress view for one user and course.
type CourseReport struct {
	CourseID           uint
	TotalLessons       int
	CompletedLessons   int
	ProgressPercentage int
	Lessons            []LessonStatus
}

// authorizeLesson loads a visible lesson and checks the caller may touch its progress.
func authorizeLesson(ctx context.Context, tx repository.Store, u *users.User, lessonID uint) (*courses.Lesson, error) {
	if u == nil {
		return nil, ErrAccessDenied
	}
	l, c, err := visibleLesson(ctx, tx, u, lessonID)
	if err != nil {
		return nil, err
	}
	d, err := decideLesson(ctx, tx, u, l, c)
	if err != nil {
		return nil, err
	}
	if !d.Granted {
		return nil, ErrAccessDenied
	}
	return l, nil
}

func findOrNewProgress(ctx context.Context, tx repository.Store, userID, lessonID uint) (*progress.LessonProgress, error) {
	p, err := tx.Progress().Find(ctx, userID, lessonID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &progress.LessonProgress{UserID: userID, LessonID: lessonID}, nil
	}
	return p, err
}

func (s *ProgressService) complete(p *progress.LessonProgress) {
	if !p.IsCompleted {
		now := s.now()
		p.IsCompleted = true
		p.CompletedAt = &now
	}
	p.ProgressPercentage = 100
}

// MarkLessonComplete completes the lesson for u and recomputes the course
// aggregate in the same transaction. Completing twice keeps the first completed_at.
func (s *ProgressService) MarkLessonComplete(ctx context.Context, u *users.User, lessonID uint) (*progress.LessonProgress, error) {
	var out *progress.LessonProgress
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		l, err := authorizeLesson(ctx, tx, u, lessonID)
		if err != nil {
			return err
		}
		p, err := findOrNewProgress(ctx, tx, u.ID, l.ID)
		if err != nil {
			return err
		}
		s.complete(p)
		if err := tx.Progress().Save(ctx, p); err != nil {
			return err
		}
		if _, err := s.recompute(ctx, tx, u.ID, l.CourseID); err != nil {
			return err
		}
		out = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateLessonPosition stores the resume point without completing the lesson.
// A percentage of 100 completes it and recomputes the course; a completed
// lesson keeps reporting 100 whatever position the player sends later.
func (s *ProgressService) UpdateLessonPosition(ctx context.Context, u *users.User, lessonID uint, upd PositionUpdate) (*progress.LessonProgress, error) {
	if err := upd.validate(); err != nil {
		return nil, err
	}

	var out *progress.LessonProgress
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		l, err := authorizeLesson(ctx, tx, u, lessonID)
		if err != nil {
			return err
		}
		p, err := findOrNewProgress(ctx, tx, u.ID, l.ID)
		if err != nil {
			return err
		}
		p.LastPositionSeconds = upd.PositionSeconds
		p.TimeSpentSeconds = upd.TimeSpentSeconds
		if upd.Percentage >= 100 || p.IsCompleted {
			s.complete(p)
		} else {
			p.ProgressPercentage = upd.Percentage
		}
		if err := tx.Progress().Save(ctx, p); err != nil {
			return err
		}
		if upd.Percentage >= 100 {
			if _, err := s.recompute(ctx, tx, u.ID, l.CourseID); err != nil {
				return err
			}
		}
		out = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// RecomputeCourseProgress rebuilds the aggregate for u on a course u can access.
func (s *ProgressService) RecomputeCourseProgress(ctx context.Context, u *users.User, courseID uint) (*enrollments.CourseEnrollment, error) {
	if u == nil {
		return nil, ErrAccessDenied
	}

	var out *enrollments.CourseEnrollment
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		c, err := visibleCourse(ctx, tx, u, courseID)
		if err != nil {
			return err
		}
		d, err := resolveCourse(ctx, tx, u, c)
		if err != nil {
			return err
		}
		if !d.Granted {
			return ErrAccessDenied
		}
		e, err := s.recompute(ctx, tx, u.ID, c.ID)
		out = e
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// recompute must run inside tx. The enrollment row is locked before counting so
// two recomputes for the same pair serialise and the later one sees the
// earlier one's committed progress.
func (s *ProgressService) recompute(ctx context.Context, tx repository.Store, userID, courseID uint) (*enrollments.CourseEnrollment, error) {
	e, err := tx.Enrollments().LockForUpdate(ctx, userID, courseID)
	if err != nil {
		return nil, err
	}

	lessons, err := tx.Catalog().PublishedLessons(ctx, courseID)
	if err != nil {
		return nil, err
	}
	ids := lessonIDs(lessons)
	completed, err := tx.Progress().CountCompleted(ctx, userID, ids)
	if err != nil {
		return nil, err
	}
	total := int64(len(ids))
	if completed > total {
		completed = total
	}

	now := s.now()
	e.CompletedLessons = int(completed)
	e.ProgressPercentage = progress.CoursePercentage(completed, total)
	e.LastAccessedAt = &now
	if err := tx.Enrollments().SaveProgress(ctx, e); err != nil {
		return nil, err
	}

	log.Debug().
		Uint("user_id", userID).
		Uint("course_id", courseID).
		Int64("completed", completed).
		Int64("total", total).
		Int("percentage", e.ProgressPercentage).
		Msg("course progress recomputed")
	return e, nil
}

// refreshCourse recomputes every enrollment of a course inside tx, after the
// published lesson set changed. It returns how many enrollments it touched.
func (s *ProgressService) refreshCourse(ctx context.Context, tx repository.Store, courseID uint) (int, error) {
	rows, err := tx.Enrollments().ListByCourse(ctx, courseID)
	if err != nil {
		return 0, err
	}
	for _, e := range rows {
		if _, err := s.recompute(ctx, tx, e.UserID, courseID); err != nil {
			return 0, err
		}
	}
	return len(rows), nil
}

// CourseReport computes progress for u without writing anything.
func (s *ProgressService) CourseReport(ctx context.Context, u *users.User, courseID uint) (*CourseReport, error) {
	if u == nil {
		return nil, ErrAccessDenied
	}
	c, err := visibleCourse(ctx, s.store, u, courseID)
	if err != nil {
		return nil, err
	}
	d, err := resolveCourse(ctx, s.store, u, c)
	if err != nil {
		return nil, err
	}
	if !d.Granted {
		return nil, ErrAccessDenied
	}

	lessons, err := s.store.Catalog().PublishedLessons(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	rows, err := s.store.Progress().ListForLessons(ctx, u.ID, lessonIDs(lessons))
	if err != nil {
		return nil, err
	}
	byLesson := make(map[uint]progress.LessonProgress, len(rows))
	for _, p := range rows {
		byLesson[p.LessonID] = p
	}

	report := &CourseReport{CourseID: c.ID, TotalLessons: len(lessons), Lessons: make([]LessonStatus, 0, len(lessons))}
	for _, l := range lessons {
		p := byLesson[l.ID]
		if p.IsCompleted {
			report.CompletedLessons++
		}
		report.Lessons = append(report.Lessons, LessonStatus{
			LessonID:            l.ID,
			Title:               l.Title,
			ChapterID:           l.ChapterID,
			IsCompleted:         p.IsCompleted,
			ProgressPercentage:  p.ProgressPercentage,
			LastPositionSeconds: p.LastPositionSeconds,
			CompletedAt:         p.CompletedAt,
		})
	}
	report.ProgressPercentage = progress.CoursePercentage(int64(report.CompletedLessons), int64(report.TotalLessons))
	return report, nil
}

func lessonIDs(lessons []courses.Lesson) []uint {
	ids := make([]uint, 0, len(lessons))
	for _, l := range lessons {
		ids = append(ids, l.ID)
	}
	return ids
}
