package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"learning-platform/internal/domain/access"
	"learning-platform/internal/domain/courses"
	"learning-platform/internal/domain/enrollments"
	"learning-platform/internal/domain/users"
	"learning-platform/internal/repository"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const defaultGlobalGrantNotes = "Payment verified - lifetime premium access"

// AccessService answers entitlement questions and applies admin grants.
// Decisions are read-only; every grant and revoke re-checks the admin role itself.
type AccessService struct {
	store repository.Store
	now   func() time.Time
}

func NewAccessService(store repository.Store) *AccessService {
	return &AccessService{store: store, now: time.Now}
}

// CourseAccessStatus is one row of the admin per-user overview.
type CourseAccessStatus struct {
	Course           courses.Course
	Access           access.Decision
	HasPremiumGlobal bool
}

func enrollmentLookup(ctx context.Context, store repository.Store, userID, courseID uint) access.GrantLookup {
	return func() (bool, error) {
		e, err := store.Enrollments().Find(ctx, userID, courseID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		if err != nil {
			return false, err
		}
		return e.HasAccess, nil
	}
}

func resolveCourse(ctx context.Context, store repository.Store, u *users.User, c *courses.Course) (access.Decision, error) {
	if u == nil || c == nil {
		return access.DecideCourse(u, c, nil)
	}
	return access.DecideCourse(u, c, enrollmentLookup(ctx, store, u.ID, c.ID))
}

func resolveLesson(ctx context.Context, store repository.Store, u *users.User, l *courses.Lesson) (access.Decision, error) {
	if l == nil || l.IsFree {
		return access.DecideLesson(u, l, nil, nil)
	}
	c, err := store.Catalog().FindCourse(ctx, l.CourseID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return access.Deny(), nil
	}
	if err != nil {
		return access.Deny(), err
	}
	return decideLesson(ctx, store, u, l, c)
}

// decideLesson decides on a lesson whose course is already loaded.
func decideLesson(ctx context.Context, store repository.Store, u *users.User, l *courses.Lesson, c *courses.Course) (access.Decision, error) {
	var lookup access.GrantLookup
	if u != nil && c != nil {
		lookup = enrollmentLookup(ctx, store, u.ID, c.ID)
	}
	return access.DecideLesson(u, l, c, lookup)
}

// visibleCourse hides unpublished courses from everyone but admins.
func visibleCourse(ctx context.Context, store repository.Store, u *users.User, courseID uint) (*courses.Course, error) {
	c, err := store.Catalog().FindCourse(ctx, courseID)
	if err != nil {
		return nil, lookupErr(err, "course", courseID)
	}
	if !c.IsPublished && !u.IsAdmin() {
		return nil, notFound("course", courseID)
	}
	return c, nil
}

// visibleLesson hides a lesson from non-admins when it or its course is unpublished.
func visibleLesson(ctx context.Context, store repository.Store, u *users.User, lessonID uint) (*courses.Lesson, *courses.Course, error) {
	l, err := store.Catalog().FindLesson(ctx, lessonID)
	if err != nil {
		return nil, nil, lookupErr(err, "lesson", lessonID)
	}
	c, err := store.Catalog().FindCourse(ctx, l.CourseID)
	if err != nil {
		return nil, nil, lookupErr(err, "lesson", lessonID)
	}
	if (!l.IsPublished || !c.IsPublished) && !u.IsAdmin() {
		return nil, nil, notFound("lesson", lessonID)
	}
	return l, c, nil
}

func requireAdmin(actor *users.User) error {
	if !actor.IsAdmin() {
		return fmt.Errorf("%w: admin role required", ErrAccessDenied)
	}
	return nil
}

// ResolveCourseAccess decides on an already loaded course. u may be nil for anonymous callers.
func (s *AccessService) ResolveCourseAccess(ctx context.Context, u *users.User, c *courses.Course) (access.Decision, error) {
	return resolveCourse(ctx, s.store, u, c)
}

// ResolveLessonAccess decides on an already loaded lesson. u may be nil for anonymous callers.
func (s *AccessService) ResolveLessonAccess(ctx context.Context, u *users.User, l *courses.Lesson) (access.Decision, error) {
	return resolveLesson(ctx, s.store, u, l)
}

// CourseAccess loads the course and decides on it; a missing course is ErrNotFound, not a denial.
func (s *AccessService) CourseAccess(ctx context.Context, u *users.User, courseID uint) (*courses.Course, access.Decision, error) {
	c, err := visibleCourse(ctx, s.store, u, courseID)
	if err != nil {
		return nil, access.Deny(), err
	}
	d, err := resolveCourse(ctx, s.store, u, c)
	return c, d, err
}

// LessonAccess loads the lesson and decides on it; a missing lesson is ErrNotFound, not a denial.
func (s *AccessService) LessonAccess(ctx context.Context, u *users.User, lessonID uint) (*courses.Lesson, access.Decision, error) {
	l, c, err := visibleLesson(ctx, s.store, u, lessonID)
	if err != nil {
		return nil, access.Deny(), err
	}
	d, err := decideLesson(ctx, s.store, u, l, c)
	return l, d, err
}

// GrantGlobalPremium sets the user's premium flag and appends a GlobalAccessGrant audit row.
func (s *AccessService) GrantGlobalPremium(ctx context.Context, actor *users.User, userID uint, notes string) (*users.User, error) {
	return s.grantGlobal(ctx, actor, userID, notes, false)
}

// GrantGlobalPremiumOnce is GrantGlobalPremium keyed by notes: when the user already
// has a grant with the same notes, the flag is set again but no row is appended.
func (s *AccessService) GrantGlobalPremiumOnce(ctx context.Context, actor *users.User, userID uint, notes string) (*users.User, error) {
	return s.grantGlobal(ctx, actor, userID, notes, true)
}

func (s *AccessService) grantGlobal(ctx context.Context, actor *users.User, userID uint, notes string, once bool) (*users.User, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	notes = strings.TrimSpace(notes)
	if notes == "" {
		notes = defaultGlobalGrantNotes
	}

	var out *users.User
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		if _, err := tx.Users().FindByID(ctx, userID); err != nil {
			return lookupErr(err, "user", userID)
		}
		if err := tx.Users().SetPremium(ctx, userID, true); err != nil {
			return err
		}
		if once {
			seen, err := hasGrantWithNotes(ctx, tx, userID, notes)
			if err != nil {
				return err
			}
			if seen {
				u, err := tx.Users().FindByID(ctx, userID)
				out = u
				return err
			}
		}
		grant := enrollments.GlobalAccessGrant{
			UserID:    userID,
			GrantedBy: actor.ID,
			Notes:     notes,
			CreatedAt: s.now(),
		}
		if err := tx.Grants().Append(ctx, &grant); err != nil {
			return err
		}
		u, err := tx.Users().FindByID(ctx, userID)
		out = u
		return err
	})
	if err != nil {
		return nil, err
	}

	log.Info().Uint("user_id", userID).Uint("granted_by", actor.ID).Msg("global premium granted")
	return out, nil
}

func hasGrantWithNotes(ctx context.Context, tx repository.Store, userID uint, notes string) (bool, error) {
	rows, err := tx.Grants().ListForUser(ctx, userID)
	if err != nil {
		return false, err
	}
	for _, g := range rows {
		if g.Notes == notes {
			return true, nil
		}
	}
	return false, nil
}

// SetPremiumFlag toggles has_premium_access without touching enrollments or the grant log.
func (s *AccessService) SetPremiumFlag(ctx context.Context, actor *users.User, userID uint, premium bool) (*users.User, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	var out *users.User
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		if err := tx.Users().SetPremium(ctx, userID, premium); err != nil {
			return lookupErr(err, "user", userID)
		}
		u, err := tx.Users().FindByID(ctx, userID)
		out = u
		return err
	})
	if err != nil {
		return nil, err
	}

	log.Info().Uint("user_id", userID).Bool("premium", premium).Uint("by", actor.ID).Msg("premium flag changed")
	return out, nil
}

// GrantCourseAccess upserts the (user, course) enrollment with has_access = true.
// Granting twice refreshes the grant timestamp and granting admin.
func (s *AccessService) GrantCourseAccess(ctx context.Context, actor *users.User, userID, courseID uint) (*enrollments.CourseEnrollment, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	var out *enrollments.CourseEnrollment
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		if _, err := tx.Catalog().FindCourse(ctx, courseID); err != nil {
			return lookupErr(err, "course", courseID)
		}
		if _, err := tx.Users().FindByID(ctx, userID); err != nil {
			return lookupErr(err, "user", userID)
		}
		e, err := tx.Enrollments().UpsertGrant(ctx, userID, courseID, actor.ID, s.now())
		out = e
		return err
	})
	if err != nil {
		return nil, err
	}

	log.Info().Uint("user_id", userID).Uint("course_id", courseID).Uint("granted_by", actor.ID).Msg("course access granted")
	return out, nil
}

// RevokeCourseAccess clears has_access and keeps the row with its progress.
// It reports whether a row existed; revoking nothing is not an error.
func (s *AccessService) RevokeCourseAccess(ctx context.Context, actor *users.User, userID, courseID uint) (bool, error) {
	if err := requireAdmin(actor); err != nil {
		return false, err
	}

	revoked, err := s.store.Enrollments().Revoke(ctx, userID, courseID)
	if err != nil {
		return false, err
	}

	log.Info().Uint("user_id", userID).Uint("course_id", courseID).Bool("existed", revoked).Msg("course access revoked")
	return revoked, nil
}

// AccessibleCourses lists published courses the user may open. Only course
// enrollments are consulted, so the global grant log can never show up here.
func (s *AccessService) AccessibleCourses(ctx context.Context, u *users.User) ([]courses.Course, error) {
	published, err := s.store.Catalog().ListPublishedCourses(ctx)
	if err != nil {
		return nil, err
	}
	if u.IsAdmin() || (u != nil && u.HasPremiumAccess) {
		return published, nil
	}

	granted := map[uint]bool{}
	if u != nil {
		rows, err := s.store.Enrollments().ListGrantedForUser(ctx, u.ID)
		if err != nil {
			return nil, err
		}
		for _, e := range rows {
			granted[e.CourseID] = true
		}
	}

	out := make([]courses.Course, 0, len(published))
	for _, c := range published {
		if !c.IsPremium || granted[c.ID] {
			out = append(out, c)
		}
	}
	return out, nil
}

// CourseAccessOverview resolves every premium course for one user, for admins.
func (s *AccessService) CourseAccessOverview(ctx context.Context, actor *users.User, userID uint) ([]CourseAccessStatus, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	target, err := s.store.Users().FindByID(ctx, userID)
	if err != nil {
		return nil, lookupErr(err, "user", userID)
	}
	premium, err := s.store.Catalog().ListPremiumCourses(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]CourseAccessStatus, 0, len(premium))
	for i := range premium {
		d, err := resolveCourse(ctx, s.store, target, &premium[i])
		if err != nil {
			return nil, err
		}
		out = append(out, CourseAccessStatus{
			Course:           premium[i],
			Access:           d,
			HasPremiumGlobal: target.HasPremiumAccess,
		})
	}
	return out, nil
}

func (s *AccessService) Enrollments(ctx context.Context, actor *users.User) ([]enrollments.CourseEnrollment, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	return s.store.Enrollments().ListAll(ctx)
}

func (s *AccessService) GlobalGrants(ctx context.Context, actor *users.User, userID uint) ([]enrollments.GlobalAccessGrant, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if _, err := s.store.Users().FindByID(ctx, userID); err != nil {
		return nil, lookupErr(err, "user", userID)
	}
	return s.store.Grants().ListForUser(ctx, userID)
}
