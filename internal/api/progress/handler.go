package progress

import (
	"net/http"
	"time"

	"learning-platform/internal/api/respond"
	"learning-platform/internal/app/http/middleware"
	"learning-platform/internal/domain/enrollments"
	domain "learning-platform/internal/domain/progress"
	"learning-platform/internal/service"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	progress *service.ProgressService
}

func NewHandler(progress *service.ProgressService) *Handler {
	return &Handler{progress: progress}
}

type PositionRequest struct {
	ProgressPercentage  *int `json:"progress_percentage" validate:"required"`
	LastPositionSeconds int  `json:"last_position_seconds"`
	TimeSpentSeconds    int  `json:"time_spent_seconds"`
}

type LessonProgressDTO struct {
	LessonID            uint       `json:"lesson_id"`
	IsCompleted         bool       `json:"is_completed"`
	ProgressPercentage  int        `json:"progress_percentage"`
	TimeSpentSeconds    int        `json:"time_spent_seconds"`
	LastPositionSeconds int        `json:"last_position_seconds"`
	CompletedAt         *time.Time `json:"completed_at"`
}

type EnrollmentProgressDTO struct {
	CourseID           uint       `json:"course_id"`
	ProgressPercentage int        `json:"progress_percentage"`
	CompletedLessons   int        `json:"completed_lessons"`
	LastAccessedAt     *time.Time `json:"last_accessed_at"`
}

type LessonStatusDTO struct {
	LessonID            uint       `json:"lesson_id"`
	ChapterID           uint       `json:"chapter_id"`
	Title               string     `json:"title"`
	IsCompleted         bool       `json:"is_completed"`
	ProgressPercentage  int        `json:"progress_percentage"`
	LastPositionSeconds int        `json:"last_position_seconds"`
	CompletedAt         *time.Time `json:"completed_at"`
}

type CourseProgressResponse struct {
	CourseID           uint              `json:"course_id"`
	TotalLessons       int               `json:"total_lessons"`
	CompletedLessons   int               `json:"completed_lessons"`
	ProgressPercentage int               `json:"progress_percentage"`
	Lessons            []LessonStatusDTO `json:"lessons"`
}

func lessonProgressDTO(p *domain.LessonProgress) LessonProgressDTO {
	return LessonProgressDTO{
		LessonID:            p.LessonID,
		IsCompleted:         p.IsCompleted,
		ProgressPercentage:  p.ProgressPercentage,
		TimeSpentSeconds:    p.TimeSpentSeconds,
		LastPositionSeconds: p.LastPositionSeconds,
		CompletedAt:         p.CompletedAt,
	}
}

func enrollmentDTO(e *enrollments.CourseEnrollment) EnrollmentProgressDTO {
	return EnrollmentProgressDTO{
		CourseID:           e.CourseID,
		ProgressPercentage: e.ProgressPercentage,
		CompletedLessons:   e.CompletedLessons,
		LastAccessedAt:     e.LastAccessedAt,
	}
}

func (h *Handler) MarkComplete(c *gin.Context) {
	id, ok := respond.IDParam(c, "id")
	if !ok {
		return
	}
	p, err := h.progress.MarkLessonComplete(c.Request.Context(), middleware.CurrentUser(c), id)
	if err != nil {
		respond.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, lessonProgressDTO(p))
}

func (h *Handler) UpdatePosition(c *gin.Context) {
	id, ok := respond.IDParam(c, "id")
	if !ok {
		return
	}
	var req PositionRequest
	if !respond.BindJSON(c, &req) {
		return
	}
	p, err := h.progress.UpdateLessonPosition(c.Request.Context(), middleware.CurrentUser(c), id, service.PositionUpdate{
		Percentage:       *req.ProgressPercentage,
		PositionSeconds:  req.LastPositionSeconds,
		TimeSpentSeconds: req.TimeSpentSeconds,
	})
	if err != nil {
		respond.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, lessonProgressDTO(p))
}

func (h *Handler) CourseProgress(c *gin.Context) {
	id, ok := respond.IDParam(c, "id")
	if !ok {
		return
	}
	r, err := h.progress.CourseReport(c.Request.Context(), middleware.CurrentUser(c), id)
	if err != nil {
		respond.Error(c, err)
		return
	}
	resp := CourseProgressResponse{
		CourseID:           r.CourseID,
		TotalLessons:       r.TotalLessons,
		CompletedLessons:   r.CompletedLessons,
		ProgressPercentage: r.ProgressPercentage,
		Lessons:            make([]LessonStatusDTO, 0, len(r.Lessons)),
	}
	for _, l := range r.Lessons {
		resp.Lessons = append(resp.Lessons, LessonStatusDTO{
			LessonID:            l.LessonID,
			ChapterID:           l.ChapterID,
			Title:               l.Title,
			IsCompleted:         l.IsCompleted,
			ProgressPercentage:  l.ProgressPercentage,
			LastPositionSeconds: l.LastPositionSeconds,
			CompletedAt:         l.CompletedAt,
		})
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) Recompute(c *gin.Context) {
	id, ok := respond.IDParam(c, "id")
	if !ok {
		return
	}
	e, err := h.progress.RecomputeCourseProgress(c.Request.Context(), middleware.CurrentUser(c), id)
	if err != nil {
		respond.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, enrollmentDTO(e))
}
