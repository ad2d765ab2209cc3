// Package memory is an in-process repository.Store. Transactions are serialised
// and roll back by restoring a snapshot, which is enough to exercise the
// service layer without Postgres. Writes outside a transaction take the same
// transaction lock, so a rollback never discards them.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"learning-platform/internal/domain/courses"
	"learning-platform/internal/domain/enrollments"
	"learning-platform/internal/domain/progress"
	"learning-platform/internal/domain/users"
	"learning-platform/internal/repository"
)

type pair struct{ a, b uint }

type tables struct {
	nextID      uint
	users       map[uint]users.User
	courses     map[uint]courses.Course
	chapters    map[uint]courses.Chapter
	lessons     map[uint]courses.Lesson
	enrollments map[pair]enrollments.CourseEnrollment
	progress    map[pair]progress.LessonProgress
	grants      []enrollments.GlobalAccessGrant
}

func newTables() *tables {
	return &tables{
		users:       map[uint]users.User{},
		courses:     map[uint]courses.Course{},
		chapters:    map[uint]courses.Chapter{},
		lessons:     map[uint]courses.Lesson{},
		enrollments: map[pair]enrollments.CourseEnrollment{},
		progress:    map[pair]progress.LessonProgress{},
	}
}

func (t *tables) clone() *tables {
	c := newTables()
	c.nextID = t.nextID
	for k, v := range t.users {
		c.users[k] = v
	}
	for k, v := range t.courses {
		c.courses[k] = v
	}
	for k, v := range t.chapters {
		c.chapters[k] = v
	}
	for k, v := range t.lessons {
		c.lessons[k] = v
	}
	for k, v := range t.enrollments {
		c.enrollments[k] = v
	}
	for k, v := range t.progress {
		c.progress[k] = v
	}
	c.grants = append(c.grants, t.grants...)
	return c
}

func (t *tables) id() uint {
	t.nextID++
	return t.nextID
}

type Store struct {
	mu   *sync.Mutex
	txMu *sync.Mutex
	t    *tables
	inTx bool
}

func NewStore() *Store {
	return &Store{mu: &sync.Mutex{}, txMu: &sync.Mutex{}, t: newTables()}
}

var _ repository.Store = (*Store)(nil)

func (s *Store) Users() repository.UserRepository { return userRepo{s} }
func (s *Store) Catalog() repository.CatalogRepository { return catalogRepo{s} }
func (s *Store) Enrollments() repository.EnrollmentRepository { return enrollmentRepo{s} }
func (s *Store) Progress() repository.ProgressRepository { return progressRepo{s} }
func (s *Store) Grants() repository.GrantRepository { return grantRepo{s} }

// lockWrite serialises a write against running transactions and returns the unlock.
func (s *Store) lockWrite() func() {
	if !s.inTx {
		s.txMu.Lock()
	}
	s.mu.Lock()
	return func() {
		s.mu.Unlock()
		if !s.inTx {
			s.txMu.Unlock()
		}
	}
}

func (s *Store) Transaction(ctx context.Context, fn func(tx repository.Store) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !s.inTx {
		s.txMu.Lock()
		defer s.txMu.Unlock()
	}

	s.mu.Lock()
	snapshot := s.t.clone()
	s.mu.Unlock()

	err := fn(&Store{mu: s.mu, txMu: s.txMu, t: s.t, inTx: true})
	if err != nil {
		s.mu.Lock()
		*s.t = *snapshot
		s.mu.Unlock()
	}
	return err
}

func (s *Store) AddUser(u users.User) *users.User {
	defer s.lockWrite()()
	u.ID = s.t.id()
	if u.Role == "" {
		u.Role = users.RoleAlumno
	}
	u.CreatedAt = time.Now()
	s.t.users[u.ID] = u
	return &u
}

func (s *Store) AddCourse(c courses.Course) *courses.Course {
	defer s.lockWrite()()
	c.ID = s.t.id()
	c.CreatedAt = time.Now()
	c.Chapters = nil
	s.t.courses[c.ID] = c
	return &c
}

func (s *Store) AddChapter(ch courses.Chapter) *courses.Chapter {
	defer s.lockWrite()()
	ch.ID = s.t.id()
	ch.Lessons = nil
	s.t.chapters[ch.ID] = ch
	return &ch
}

// AddLesson copies CourseID from the chapter when it is left empty.
func (s *Store) AddLesson(l courses.Lesson) *courses.Lesson {
	defer s.lockWrite()()
	l.ID = s.t.id()
	if l.CourseID == 0 {
		l.CourseID = s.t.chapters[l.ChapterID].CourseID
	}
	s.t.lessons[l.ID] = l
	return &l
}

func sortLessons(ls []courses.Lesson) {
	sort.Slice(ls, func(i, j int) bool {
		if ls[i].ChapterID != ls[j].ChapterID {
			return ls[i].ChapterID < ls[j].ChapterID
		}
		return ls[i].OrderIndex < ls[j].OrderIndex
	})
}
