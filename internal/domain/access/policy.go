package access

import (
	"learning-platform/internal/domain/courses"
	"learning-platform/internal/domain/users"
)

// GrantLookup reports whether a per-course enrollment grants access.
// It is only called when every cheaper tier has failed.
type GrantLookup func() (bool, error)

// DecideCourse applies the tiers in order; the first match wins:
//  1. admin role
//  2. course is not premium (anonymous callers included)
//  3. global premium flag
//  4. enrollment with has_access
//
// A nil user is an anonymous caller. A nil course is denied.
func DecideCourse(u *users.User, c *courses.Course, lookup GrantLookup) (Decision, error) {
	if c == nil {
		return Deny(), nil
	}
	if u.IsAdmin() {
		return Grant(ReasonAdmin), nil
	}
	if !c.IsPremium {
		return Grant(ReasonFreeCourse), nil
	}
	if u == nil {
		return Deny(), nil
	}
	if u.HasPremiumAccess {
		return Grant(ReasonGlobalPremium), nil
	}
	if lookup == nil {
		return Deny(), nil
	}
	ok, err := lookup()
	if err != nil {
		return Deny(), err
	}
	if ok {
		return Grant(ReasonCourseGrant), nil
	}
	return Deny(), nil
}

// DecideLesson grants free lessons to anyone, otherwise defers to the lesson's course.
func DecideLesson(u *users.User, l *courses.Lesson, c *courses.Course, lookup GrantLookup) (Decision, error) {
	if l == nil {
		return Deny(), nil
	}
	if l.IsFree {
		return Grant(ReasonFreeLesson), nil
	}
	return DecideCourse(u, c, lookup)
}
