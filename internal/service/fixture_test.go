package service

import (
	"testing"
	"time"

	"learning-platform/internal/domain/courses"
	"learning-platform/internal/domain/users"
	"learning-platform/internal/repository/memory"
)

var fixedNow = time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)

type fixture struct {
	store    *memory.Store
	access   *AccessService
	progress *ProgressService
	catalog  *CatalogService

	admin   *users.User
	student *users.User
	other   *users.User

	premium *courses.Course
	free    *courses.Course
	draft   *courses.Course
	lessons []*courses.Lesson // four published lessons of premium
	preview *courses.Lesson   // free lesson inside premium
	hidden  *courses.Lesson   // unpublished lesson of premium
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	s := memory.NewStore()
	f := &fixture{store: s}

	f.access = NewAccessService(s)
	f.access.now = func() time.Time { return fixedNow }
	f.progress = NewProgressService(s)
	f.progress.now = func() time.Time { return fixedNow }
	f.catalog = NewCatalogService(s, f.progress)

	f.admin = s.AddUser(users.User{Email: "admin@example.com", Role: users.RoleAdmin, IsActive: true})
	f.student = s.AddUser(users.User{Email: "ana@example.com", IsActive: true})
	f.other = s.AddUser(users.User{Email: "luis@example.com", IsActive: true})

	f.premium = s.AddCourse(courses.Course{Title: "Go en produccion", IsPublished: true, IsPremium: true})
	f.free = s.AddCourse(courses.Course{Title: "Intro", IsPublished: true, IsPremium: false})
	f.draft = s.AddCourse(courses.Course{Title: "Borrador", IsPublished: false, IsPremium: true})

	ch1 := s.AddChapter(courses.Chapter{CourseID: f.premium.ID, Title: "Basics", OrderIndex: 1, IsPublished: true})
	ch2 := s.AddChapter(courses.Chapter{CourseID: f.premium.ID, Title: "Advanced", OrderIndex: 2, IsPublished: true})
	for i := 0; i < 4; i++ {
		ch := ch1
		if i >= 2 {
			ch = ch2
		}
		f.lessons = append(f.lessons, s.AddLesson(courses.Lesson{ChapterID: ch.ID, Title: "Lesson", OrderIndex: i + 1, IsPublished: true}))
	}
	f.preview = s.AddLesson(courses.Lesson{ChapterID: ch1.ID, Title: "Preview", OrderIndex: 0, IsFree: true, IsPublished: false})
	f.hidden = s.AddLesson(courses.Lesson{ChapterID: ch2.ID, Title: "Soon", OrderIndex: 9, IsPublished: false})

	freeCh := s.AddChapter(courses.Chapter{CourseID: f.free.ID, Title: "Only", OrderIndex: 1, IsPublished: true})
	s.AddLesson(courses.Lesson{ChapterID: freeCh.ID, Title: "Hello", OrderIndex: 1, IsPublished: true})
	return f
}
