package service

import (
	"context"
	"testing"

	"learning-platform/internal/domain/access"
	"learning-platform/internal/domain/courses"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListCourses_Anonymous(t *testing.T) {
	f := newFixture(t)

	got, err := f.catalog.ListCourses(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, got, 2)
	for _, c := range got {
		assert.Nil(t, c.ProgressPercentage)
		assert.Equal(t, !c.Course.IsPremium, c.Access.Granted)
	}
}

func TestListCourses_WithEnrollment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	grantStudent(t, f)
	_, err := f.progress.MarkLessonComplete(ctx, f.student, f.lessons[0].ID)
	require.NoError(t, err)

	got, err := f.catalog.ListCourses(ctx, f.student)
	require.NoError(t, err)
	var premium *CourseSummary
	for i := range got {
		if got[i].Course.ID == f.premium.ID {
			premium = &got[i]
		}
	}
	require.NotNil(t, premium)
	assert.Equal(t, access.Grant(access.ReasonCourseGrant), premium.Access)
	require.NotNil(t, premium.ProgressPercentage)
	assert.Equal(t, 25, *premium.ProgressPercentage)
}

func TestStructure_PerLessonDecisions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	taster := f.store.AddLesson(courses.Lesson{ChapterID: f.lessons[0].ChapterID, Title: "Taster", OrderIndex: 3, IsFree: true, IsPublished: true})

	st, err := f.catalog.Structure(ctx, f.student, f.premium.ID)
	require.NoError(t, err)
	assert.False(t, st.Access.Granted)
	require.Len(t, st.Chapters, 2)

	decisions := map[uint]access.Decision{}
	for _, ch := range st.Chapters {
		assert.Nil(t, ch.Chapter.Lessons)
		for _, lv := range ch.Lessons {
			decisions[lv.Lesson.ID] = lv.Access
		}
	}
	assert.Len(t, decisions, 5, "unpublished lessons are left out")
	assert.Equal(t, access.Grant(access.ReasonFreeLesson), decisions[taster.ID])
	assert.Equal(t, access.Deny(), decisions[f.lessons[0].ID])

	grantStudent(t, f)
	st, err = f.catalog.Structure(ctx, f.student, f.premium.ID)
	require.NoError(t, err)
	for _, ch := range st.Chapters {
		for _, lv := range ch.Lessons {
			assert.True(t, lv.Access.Granted)
		}
	}
}

func TestStructure_DraftHiddenFromStudents(t *testing.T) {
	f := newFixture(t)

	_, err := f.catalog.Structure(context.Background(), f.student, f.draft.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSetLessonPublished_Errors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, _, err := f.catalog.SetLessonPublished(ctx, f.student, f.hidden.ID, true)
	assert.ErrorIs(t, err, ErrAccessDenied)
	_, _, err = f.catalog.SetLessonPublished(ctx, f.admin, 4040, true)
	assert.ErrorIs(t, err, ErrNotFound)

	l, _, err := f.catalog.SetLessonPublished(ctx, f.admin, f.hidden.ID, true)
	require.NoError(t, err)
	assert.True(t, l.IsPublished)
}
