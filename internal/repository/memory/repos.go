package memory

import (
	"context"
	"sort"
	"time"

	"learning-platform/internal/domain/courses"
	"learning-platform/internal/domain/enrollments"
	"learning-platform/internal/domain/progress"
	"learning-platform/internal/domain/users"

	"gorm.io/gorm"
)

type userRepo struct{ s *Store }

func (r userRepo) FindByID(_ context.Context, id uint) (*users.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.t.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &u, nil
}

func (r userRepo) SetPremium(_ context.Context, id uint, premium bool) error {
	defer r.s.lockWrite()()
	u, ok := r.s.t.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.HasPremiumAccess = premium
	u.UpdatedAt = time.Now()
	r.s.t.users[id] = u
	return nil
}

type catalogRepo struct{ s *Store }

func (r catalogRepo) FindCourse(_ context.Context, id uint) (*courses.Course, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.t.courses[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &c, nil
}

func (r catalogRepo) FindLesson(_ context.Context, id uint) (*courses.Lesson, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	l, ok := r.s.t.lessons[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &l, nil
}

func (r catalogRepo) listCourses(keep func(courses.Course) bool) []courses.Course {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []courses.Course
	for _, c := range r.s.t.courses {
		if keep(c) {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r catalogRepo) ListPublishedCourses(_ context.Context) ([]courses.Course, error) {
	return r.listCourses(func(c courses.Course) bool { return c.IsPublished }), nil
}

func (r catalogRepo) ListPremiumCourses(_ context.Context) ([]courses.Course, error) {
	return r.listCourses(func(c courses.Course) bool { return c.IsPremium }), nil
}

func (r catalogRepo) PublishedStructure(_ context.Context, courseID uint) ([]courses.Chapter, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var chapters []courses.Chapter
	for _, ch := range r.s.t.chapters {
		if ch.CourseID != courseID || !ch.IsPublished {
			continue
		}
		ch.Lessons = nil
		for _, l := range r.s.t.lessons {
			if l.ChapterID == ch.ID && l.IsPublished {
				ch.Lessons = append(ch.Lessons, l)
			}
		}
		sortLessons(ch.Lessons)
		chapters = append(chapters, ch)
	}
	sort.Slice(chapters, func(i, j int) bool { return chapters[i].OrderIndex < chapters[j].OrderIndex })
	return chapters, nil
}

func (r catalogRepo) PublishedLessons(_ context.Context, courseID uint) ([]courses.Lesson, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []courses.Lesson
	for _, l := range r.s.t.lessons {
		if l.CourseID == courseID && l.IsPublished {
			out = append(out, l)
		}
	}
	sortLessons(out)
	return out, nil
}

func (r catalogRepo) SetLessonPublished(_ context.Context, lessonID uint, published bool) error {
	defer r.s.lockWrite()()
	l, ok := r.s.t.lessons[lessonID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	l.IsPublished = published
	r.s.t.lessons[lessonID] = l
	return nil
}

func (r catalogRepo) DeleteLesson(_ context.Context, lessonID uint) error {
	defer r.s.lockWrite()()
	if _, ok := r.s.t.lessons[lessonID]; !ok {
		return gorm.ErrRecordNotFound
	}
	for k := range r.s.t.progress {
		if k.b == lessonID {
			delete(r.s.t.progress, k)
		}
	}
	delete(r.s.t.lessons, lessonID)
	return nil
}

type enrollmentRepo struct{ s *Store }

func (r enrollmentRepo) Find(_ context.Context, userID, courseID uint) (*enrollments.CourseEnrollment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, ok := r.s.t.enrollments[pair{userID, courseID}]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &e, nil
}

// ensure must be called with mu held.
func (r enrollmentRepo) ensure(userID, courseID uint) enrollments.CourseEnrollment {
	k := pair{userID, courseID}
	e, ok := r.s.t.enrollments[k]
	if !ok {
		e = enrollments.CourseEnrollment{ID: r.s.t.id(), UserID: userID, CourseID: courseID, CreatedAt: time.Now()}
		r.s.t.enrollments[k] = e
	}
	return e
}

func (r enrollmentRepo) UpsertGrant(_ context.Context, userID, courseID, grantedBy uint, at time.Time) (*enrollments.CourseEnrollment, error) {
	defer r.s.lockWrite()()
	e := r.ensure(userID, courseID)
	e.HasAccess = true
	e.AccessGrantedAt = &at
	e.AccessGrantedBy = &grantedBy
	e.UpdatedAt = at
	r.s.t.enrollments[pair{userID, courseID}] = e
	return &e, nil
}

func (r enrollmentRepo) Revoke(_ context.Context, userID, courseID uint) (bool, error) {
	defer r.s.lockWrite()()
	k := pair{userID, courseID}
	e, ok := r.s.t.enrollments[k]
	if !ok {
		return false, nil
	}
	e.HasAccess = false
	r.s.t.enrollments[k] = e
	return true, nil
}

func (r enrollmentRepo) LockForUpdate(_ context.Context, userID, courseID uint) (*enrollments.CourseEnrollment, error) {
	defer r.s.lockWrite()()
	e := r.ensure(userID, courseID)
	return &e, nil
}

func (r enrollmentRepo) SaveProgress(_ context.Context, e *enrollments.CourseEnrollment) error {
	defer r.s.lockWrite()()
	k := pair{e.UserID, e.CourseID}
	cur, ok := r.s.t.enrollments[k]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	cur.ProgressPercentage = e.ProgressPercentage
	cur.CompletedLessons = e.CompletedLessons
	cur.LastAccessedAt = e.LastAccessedAt
	cur.UpdatedAt = time.Now()
	r.s.t.enrollments[k] = cur
	return nil
}

func (r enrollmentRepo) list(keep func(enrollments.CourseEnrollment) bool) []enrollments.CourseEnrollment {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []enrollments.CourseEnrollment
	for _, e := range r.s.t.enrollments {
		if keep(e) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r enrollmentRepo) ListGrantedForUser(_ context.Context, userID uint) ([]enrollments.CourseEnrollment, error) {
	return r.list(func(e enrollments.CourseEnrollment) bool { return e.UserID == userID && e.HasAccess }), nil
}

func (r enrollmentRepo) ListForUser(_ context.Context, userID uint) ([]enrollments.CourseEnrollment, error) {
	return r.list(func(e enrollments.CourseEnrollment) bool { return e.UserID == userID }), nil
}

func (r enrollmentRepo) ListByCourse(_ context.Context, courseID uint) ([]enrollments.CourseEnrollment, error) {
	return r.list(func(e enrollments.CourseEnrollment) bool { return e.CourseID == courseID }), nil
}

func (r enrollmentRepo) ListAll(_ context.Context) ([]enrollments.CourseEnrollment, error) {
	return r.list(func(enrollments.CourseEnrollment) bool { return true }), nil
}

type progressRepo struct{ s *Store }

func (r progressRepo) Find(_ context.Context, userID, lessonID uint) (*progress.LessonProgress, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.t.progress[pair{userID, lessonID}]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &p, nil
}

func (r progressRepo) Save(_ context.Context, p *progress.LessonProgress) error {
	defer r.s.lockWrite()()
	k := pair{p.UserID, p.LessonID}
	now := time.Now()
	if cur, ok := r.s.t.progress[k]; ok {
		p.ID = cur.ID
		p.CreatedAt = cur.CreatedAt
	} else {
		p.ID = r.s.t.id()
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	r.s.t.progress[k] = *p
	return nil
}

func (r progressRepo) CountCompleted(_ context.Context, userID uint, lessonIDs []uint) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, id := range lessonIDs {
		if p, ok := r.s.t.progress[pair{userID, id}]; ok && p.IsCompleted {
			n++
		}
	}
	return n, nil
}

func (r progressRepo) ListForLessons(_ context.Context, userID uint, lessonIDs []uint) ([]progress.LessonProgress, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []progress.LessonProgress
	for _, id := range lessonIDs {
		if p, ok := r.s.t.progress[pair{userID, id}]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

type grantRepo struct{ s *Store }

func (r grantRepo) Append(_ context.Context, g *enrollments.GlobalAccessGrant) error {
	defer r.s.lockWrite()()
	g.ID = r.s.t.id()
	if g.CreatedAt.IsZero() {
		g.CreatedAt = time.Now()
	}
	r.s.t.grants = append(r.s.t.grants, *g)
	return nil
}

func (r grantRepo) ListForUser(_ context.Context, userID uint) ([]enrollments.GlobalAccessGrant, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []enrollments.GlobalAccessGrant
	for i := len(r.s.t.grants) - 1; i >= 0; i-- {
		if r.s.t.grants[i].UserID == userID {
			out = append(out, r.s.t.grants[i])
		}
	}
	return out, nil
}
