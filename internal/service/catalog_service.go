package service

import (
	"context"

	"learning-platform/internal/domain/access"
	"learning-platform/internal/domain/courses"
	"learning-platform/internal/domain/enrollments"
	"learning-platform/internal/domain/users"
	"learning-platform/internal/repository"

	"github.com/rs/zerolog/log"
)

// CatalogService serves the public catalog with per-caller access flags and the
// admin lesson lifecycle. Any change to the published lesson set refreshes the
// progress aggregate of every enrollment of the affected course.
type CatalogService struct {
	store    repository.Store
	progress *ProgressService
}

func NewCatalogService(store repository.Store, progress *ProgressService) *CatalogService {
	return &CatalogService{store: store, progress: progress}
}

type CourseSummary struct {
	Course             courses.Course
	Access             access.Decision
	ProgressPercentage *int
}

type LessonView struct {
	Lesson courses.Lesson
	Access access.Decision
}

type ChapterView struct {
	Chapter courses.Chapter
	Lessons []LessonView
}

type CourseStructure struct {
	Course   courses.Course
	Access   access.Decision
	Chapters []ChapterView
}

// ListCourses returns published courses. u may be nil; anonymous callers get
// access flags for free courses only and no progress.
func (s *CatalogService) ListCourses(ctx context.Context, u *users.User) ([]CourseSummary, error) {
	published, err := s.store.Catalog().ListPublishedCourses(ctx)
	if err != nil {
		return nil, err
	}

	mine := map[uint]enrollments.CourseEnrollment{}
	if u != nil {
		rows, err := s.store.Enrollments().ListForUser(ctx, u.ID)
		if err != nil {
			return nil, err
		}
		for _, e := range rows {
			mine[e.CourseID] = e
		}
	}

	out := make([]CourseSummary, 0, len(published))
	for i := range published {
		c := &published[i]
		e, enrolled := mine[c.ID]
		d, err := access.DecideCourse(u, c, func() (bool, error) { return enrolled && e.HasAccess, nil })
		if err != nil {
			return nil, err
		}
		sum := CourseSummary{Course: *c, Access: d}
		if enrolled {
			pct := e.ProgressPercentage
			sum.ProgressPercentage = &pct
		}
		out = append(out, sum)
	}
	return out, nil
}

// Structure returns the published chapters and lessons of a course with one
// access decision per lesson. The course decision is resolved once and reused.
func (s *CatalogService) Structure(ctx context.Context, u *users.User, courseID uint) (*CourseStructure, error) {
	c, err := visibleCourse(ctx, s.store, u, courseID)
	if err != nil {
		return nil, err
	}
	courseDecision, err := resolveCourse(ctx, s.store, u, c)
	if err != nil {
		return nil, err
	}
	chapters, err := s.store.Catalog().PublishedStructure(ctx, c.ID)
	if err != nil {
		return nil, err
	}

	cached := func() (bool, error) { return courseDecision.Reason == access.ReasonCourseGrant, nil }
	out := &CourseStructure{Course: *c, Access: courseDecision, Chapters: make([]ChapterView, 0, len(chapters))}
	for _, ch := range chapters {
		view := ChapterView{Chapter: ch, Lessons: make([]LessonView, 0, len(ch.Lessons))}
		for i := range ch.Lessons {
			d, err := access.DecideLesson(u, &ch.Lessons[i], c, cached)
			if err != nil {
				return nil, err
			}
			view.Lessons = append(view.Lessons, LessonView{Lesson: ch.Lessons[i], Access: d})
		}
		view.Chapter.Lessons = nil
		out.Chapters = append(out.Chapters, view)
	}
	return out, nil
}

// SetLessonPublished flips the lesson's published flag and recomputes every
// enrollment of its course. It returns the lesson and the number of
// enrollments refreshed.
func (s *CatalogService) SetLessonPublished(ctx context.Context, actor *users.User, lessonID uint, published bool) (*courses.Lesson, int, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, 0, err
	}

	var (
		out       *courses.Lesson
		refreshed int
	)
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		l, err := tx.Catalog().FindLesson(ctx, lessonID)
		if err != nil {
			return lookupErr(err, "lesson", lessonID)
		}
		if l.IsPublished != published {
			if err := tx.Catalog().SetLessonPublished(ctx, lessonID, published); err != nil {
				return err
			}
			l.IsPublished = published
		}
		n, err := s.progress.refreshCourse(ctx, tx, l.CourseID)
		if err != nil {
			return err
		}
		out, refreshed = l, n
		return nil
	})
	if err != nil {
		return nil, 0, err
	}

	log.Info().
		Uint("lesson_id", lessonID).
		Bool("published", published).
		Int("enrollments_refreshed", refreshed).
		Msg("lesson publish state changed")
	return out, refreshed, nil
}

// DeleteLesson removes the lesson with its progress rows and recomputes the
// course aggregates, so deletion counts the same as unpublishing.
func (s *CatalogService) DeleteLesson(ctx context.Context, actor *users.User, lessonID uint) (int, error) {
	if err := requireAdmin(actor); err != nil {
		return 0, err
	}

	var refreshed int
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		l, err := tx.Catalog().FindLesson(ctx, lessonID)
		if err != nil {
			return lookupErr(err, "lesson", lessonID)
		}
		if err := tx.Catalog().DeleteLesson(ctx, lessonID); err != nil {
			return err
		}
		n, err := s.progress.refreshCourse(ctx, tx, l.CourseID)
		refreshed = n
		return err
	})
	if err != nil {
		return 0, err
	}

	log.Info().Uint("lesson_id", lessonID).Int("enrollments_refreshed", refreshed).Msg("lesson deleted")
	return refreshed, nil
}
