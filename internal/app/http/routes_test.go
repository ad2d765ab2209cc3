package routes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"learning-platform/config"
	"learning-platform/internal/domain/courses"
	"learning-platform/internal/domain/users"
	"learning-platform/internal/repository/memory"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

type env struct {
	t       *testing.T
	router  *gin.Engine
	store   *memory.Store
	admin   *users.User
	student *users.User
	premium *courses.Course
	free    *courses.Course
	lessons []*courses.Lesson
	taster  *courses.Lesson
}

func newEnv(t *testing.T) *env {
	t.Helper()
	gin.SetMode(gin.TestMode)

	s := memory.NewStore()
	e := &env{t: t, store: s}
	e.admin = s.AddUser(users.User{Email: "admin@example.com", Role: users.RoleAdmin, IsActive: true})
	e.student = s.AddUser(users.User{Email: "ana@example.com", IsActive: true})

	video := "https://cdn.example.com/v1.mp4"
	e.premium = s.AddCourse(courses.Course{Title: "Go", IsPublished: true, IsPremium: true})
	e.free = s.AddCourse(courses.Course{Title: "Intro", IsPublished: true})
	ch := s.AddChapter(courses.Chapter{CourseID: e.premium.ID, Title: "One", OrderIndex: 1, IsPublished: true})
	for i := 0; i < 4; i++ {
		e.lessons = append(e.lessons, s.AddLesson(courses.Lesson{ChapterID: ch.ID, Title: fmt.Sprintf("L%d", i+1), OrderIndex: i + 1, IsPublished: true, VideoURL: &video}))
	}
	e.taster = s.AddLesson(courses.Lesson{ChapterID: ch.ID, Title: "Taster", OrderIndex: 0, IsPublished: false, IsFree: true, VideoURL: &video})

	r := gin.New()
	RegisterRoutes(r, Deps{
		Config: &config.Config{JWTSecret: testSecret, ProgressRateLimit: 120},
		Store:  s,
	})
	e.router = r
	return e
}

func token(t *testing.T, u *users.User) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": u.ID,
		"email":   u.Email,
		"role":    u.Role,
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	s, err := tok.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return s
}

func (e *env) do(method, path string, body interface{}, u *users.User) *httptest.ResponseRecorder {
	e.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(e.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if u != nil {
		req.Header.Set("Authorization", "Bearer "+token(e.t, u))
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v))
}

func TestHealth(t *testing.T) {
	e := newEnv(t)
	w := e.do(http.MethodGet, "/health", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestStructure_HidesProtectedFieldsWithoutAccess(t *testing.T) {
	e := newEnv(t)
	path := fmt.Sprintf("/courses/%d/structure", e.premium.ID)

	var anon struct {
		Course   struct{ HasAccess bool `json:"has_access"` } `json:"course"`
		Chapters []struct {
			Lessons []map[string]interface{} `json:"lessons"`
		} `json:"chapters"`
	}
	w := e.do(http.MethodGet, path, nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &anon)
	assert.False(t, anon.Course.HasAccess)
	require.Len(t, anon.Chapters, 1)
	require.Len(t, anon.Chapters[0].Lessons, 4)
	for _, l := range anon.Chapters[0].Lessons {
		assert.NotContains(t, l, "video_url")
		assert.Equal(t, false, l["has_access"])
	}

	w = e.do(http.MethodGet, path, nil, e.admin)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "https://cdn.example.com/v1.mp4")
}

func TestAccessEndpoints(t *testing.T) {
	e := newEnv(t)

	w := e.do(http.MethodGet, fmt.Sprintf("/courses/%d/access", e.free.ID), nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"has_access":true,"reason":"free_course"}`, w.Body.String())

	w = e.do(http.MethodGet, fmt.Sprintf("/courses/%d/access", e.premium.ID), nil, e.student)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"has_access":false,"reason":"denied"}`, w.Body.String())

	w = e.do(http.MethodGet, "/courses/9999/access", nil, e.student)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = e.do(http.MethodGet, fmt.Sprintf("/lessons/%d/access", e.lessons[0].ID), nil, e.admin)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"has_access":true,"reason":"admin"}`, w.Body.String())

	w = e.do(http.MethodGet, "/courses/abc/access", nil, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLessonContent_NotFoundVersusForbidden(t *testing.T) {
	e := newEnv(t)

	w := e.do(http.MethodGet, fmt.Sprintf("/lessons/%d/content", e.lessons[0].ID), nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = e.do(http.MethodGet, fmt.Sprintf("/lessons/%d/content", e.lessons[0].ID), nil, e.student)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = e.do(http.MethodGet, fmt.Sprintf("/lessons/%d/content", e.taster.ID), nil, e.student)
	assert.Equal(t, http.StatusNotFound, w.Code, "unpublished lessons do not exist for students")

	w = e.do(http.MethodGet, "/lessons/9999/content", nil, e.student)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGrantThenProgressFlow(t *testing.T) {
	e := newEnv(t)

	w := e.do(http.MethodPost, "/admin/access/grant-course", gin.H{"user_id": e.student.ID, "course_id": e.premium.ID}, e.admin)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = e.do(http.MethodGet, fmt.Sprintf("/lessons/%d/content", e.lessons[0].ID), nil, e.student)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"reason":"course_grant"`)

	for _, l := range e.lessons[:2] {
		w = e.do(http.MethodPost, fmt.Sprintf("/lessons/%d/complete", l.ID), nil, e.student)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}

	var report struct {
		TotalLessons       int `json:"total_lessons"`
		CompletedLessons   int `json:"completed_lessons"`
		ProgressPercentage int `json:"progress_percentage"`
	}
	w = e.do(http.MethodGet, fmt.Sprintf("/courses/%d/progress", e.premium.ID), nil, e.student)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &report)
	assert.Equal(t, 4, report.TotalLessons)
	assert.Equal(t, 2, report.CompletedLessons)
	assert.Equal(t, 50, report.ProgressPercentage)

	w = e.do(http.MethodPost, fmt.Sprintf("/admin/lessons/%d/unpublish", e.lessons[3].ID), nil, e.admin)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"enrollments_refreshed":1`)

	w = e.do(http.MethodPost, fmt.Sprintf("/courses/%d/progress/recompute", e.premium.ID), nil, e.student)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"progress_percentage":67`)

	w = e.do(http.MethodPost, "/admin/access/revoke-course", gin.H{"user_id": e.student.ID, "course_id": e.premium.ID}, e.admin)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"revoked":true`)

	w = e.do(http.MethodPost, fmt.Sprintf("/lessons/%d/complete", e.lessons[2].ID), nil, e.student)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestUpdatePosition_Validation(t *testing.T) {
	e := newEnv(t)
	path := fmt.Sprintf("/lessons/%d/progress", e.lessons[0].ID)

	w := e.do(http.MethodPost, path, gin.H{"progress_percentage": 50}, e.admin)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"is_completed":false`)

	w = e.do(http.MethodPost, path, gin.H{"progress_percentage": 150}, e.admin)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = e.do(http.MethodPost, path, gin.H{"last_position_seconds": 10}, e.admin)
	assert.Equal(t, http.StatusBadRequest, w.Code, "percentage is required")
}

func TestAdminRoutesRequireAdmin(t *testing.T) {
	e := newEnv(t)

	w := e.do(http.MethodPost, fmt.Sprintf("/admin/premium/grant/%d", e.student.ID), nil, e.student)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = e.do(http.MethodGet, "/admin/enrollments", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGrantLifetime(t *testing.T) {
	e := newEnv(t)

	w := e.do(http.MethodPost, fmt.Sprintf("/admin/access/grant-lifetime/%d", e.student.ID), gin.H{"notes": "<b>paid</b> by transfer"}, e.admin)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"has_premium_access":true`)

	var grants []struct {
		Notes string `json:"notes"`
	}
	w = e.do(http.MethodGet, fmt.Sprintf("/admin/users/%d/grants", e.student.ID), nil, e.admin)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &grants)
	require.Len(t, grants, 1)
	assert.Equal(t, "paid by transfer", grants[0].Notes)

	var mine []struct {
		ID uint `json:"id"`
	}
	w = e.do(http.MethodGet, "/my-courses", nil, e.student)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &mine)
	assert.Len(t, mine, 2)

	w = e.do(http.MethodGet, "/admin/enrollments", nil, e.admin)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String(), "lifetime access writes no enrollment")

	w = e.do(http.MethodPost, "/admin/access/grant-lifetime/9999", nil, e.admin)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMe(t *testing.T) {
	e := newEnv(t)

	var me struct {
		User struct {
			Email            string `json:"email"`
			HasPremiumAccess bool   `json:"has_premium_access"`
		} `json:"user"`
		Courses []struct {
			CourseID uint   `json:"course_id"`
			Reason   string `json:"reason"`
		} `json:"courses"`
	}
	w := e.do(http.MethodGet, "/me", nil, e.student)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &me)
	assert.Equal(t, "ana@example.com", me.User.Email)
	require.Len(t, me.Courses, 1)
	assert.Equal(t, e.free.ID, me.Courses[0].CourseID)
	assert.Equal(t, "free_course", me.Courses[0].Reason)

	raw := map[string]interface{}{}
	decode(t, w, &raw)
	assert.NotContains(t, raw, "grants", "students never see the grant log")
}

func TestMe_AdminSeesOwnGrantLog(t *testing.T) {
	e := newEnv(t)

	w := e.do(http.MethodPost, fmt.Sprintf("/admin/access/grant-lifetime/%d", e.admin.ID), gin.H{"notes": "manual"}, e.admin)
	require.Equal(t, http.StatusOK, w.Code)

	var me struct {
		Grants []struct {
			GrantedBy uint   `json:"granted_by"`
			Notes     string `json:"notes"`
		} `json:"grants"`
	}
	w = e.do(http.MethodGet, "/me", nil, e.admin)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &me)
	require.Len(t, me.Grants, 1)
	assert.Equal(t, e.admin.ID, me.Grants[0].GrantedBy)
	assert.Equal(t, "manual", me.Grants[0].Notes)
}

func TestDeleteLesson(t *testing.T) {
	e := newEnv(t)

	w := e.do(http.MethodDelete, fmt.Sprintf("/admin/lessons/%d", e.lessons[0].ID), nil, e.admin)
	require.Equal(t, http.StatusOK, w.Code)

	w = e.do(http.MethodDelete, fmt.Sprintf("/admin/lessons/%d", e.lessons[0].ID), nil, e.admin)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestWebhookDisabledWithoutSecret(t *testing.T) {
	e := newEnv(t)

	w := e.do(http.MethodPost, "/webhook/stripe", gin.H{"type": "checkout.session.completed"}, nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestAdminListings(t *testing.T) {
	e := newEnv(t)

	w := e.do(http.MethodPost, "/admin/access/grant-course", gin.H{"user_id": e.student.ID, "course_id": e.premium.ID}, e.admin)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var enrolled []struct {
		UserID    uint `json:"user_id"`
		CourseID  uint `json:"course_id"`
		HasAccess bool `json:"has_access"`
	}
	w = e.do(http.MethodGet, "/admin/enrollments", nil, e.admin)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &enrolled)
	require.Len(t, enrolled, 1)
	assert.Equal(t, e.student.ID, enrolled[0].UserID)
	assert.Equal(t, e.premium.ID, enrolled[0].CourseID)
	assert.True(t, enrolled[0].HasAccess)

	var overview []struct {
		CourseID         uint   `json:"course_id"`
		HasAccess        bool   `json:"has_access"`
		Reason           string `json:"reason"`
		HasPremiumGlobal bool   `json:"has_premium_global"`
	}
	w = e.do(http.MethodGet, fmt.Sprintf("/admin/users/%d/courses", e.student.ID), nil, e.admin)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &overview)
	require.Len(t, overview, 1, "only premium courses are listed")
	assert.Equal(t, e.premium.ID, overview[0].CourseID)
	assert.True(t, overview[0].HasAccess)
	assert.Equal(t, "course_grant", overview[0].Reason)
	assert.False(t, overview[0].HasPremiumGlobal)

	var grants []struct {
		UserID uint   `json:"user_id"`
		Notes  string `json:"notes"`
	}
	w = e.do(http.MethodGet, fmt.Sprintf("/admin/users/%d/grants", e.student.ID), nil, e.admin)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &grants)
	assert.Empty(t, grants)

	w = e.do(http.MethodPost, fmt.Sprintf("/admin/access/grant-lifetime/%d", e.student.ID), nil, e.admin)
	require.Equal(t, http.StatusOK, w.Code)
	w = e.do(http.MethodGet, fmt.Sprintf("/admin/users/%d/grants", e.student.ID), nil, e.admin)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &grants)
	require.Len(t, grants, 1)
	assert.Equal(t, e.student.ID, grants[0].UserID)

	w = e.do(http.MethodGet, "/admin/enrollments", nil, e.admin)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &enrolled)
	assert.Len(t, enrolled, 1, "the lifetime grant is not an enrollment")

	for _, path := range []string{"/admin/enrollments", fmt.Sprintf("/admin/users/%d/courses", e.student.ID), fmt.Sprintf("/admin/users/%d/grants", e.student.ID)} {
		assert.Equal(t, http.StatusForbidden, e.do(http.MethodGet, path, nil, e.student).Code, path)
	}
	assert.Equal(t, http.StatusNotFound, e.do(http.MethodGet, "/admin/users/9999/courses", nil, e.admin).Code)
	assert.Equal(t, http.StatusNotFound, e.do(http.MethodGet, "/admin/users/9999/grants", nil, e.admin).Code)
}
