package courses

import (
	"net/http"

	"learning-platform/internal/api/respond"
	"learning-platform/internal/app/http/middleware"
	"learning-platform/internal/service"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	access  *service.AccessService
	catalog *service.CatalogService
}

func NewHandler(access *service.AccessService, catalog *service.CatalogService) *Handler {
	return &Handler{access: access, catalog: catalog}
}

// ListCourses is public; a valid token adds access flags and progress.
func (h *Handler) ListCourses(c *gin.Context) {
	rows, err := h.catalog.ListCourses(c.Request.Context(), middleware.CurrentUser(c))
	if err != nil {
		respond.Error(c, err)
		return
	}
	out := make([]CourseDTO, 0, len(rows))
	for _, r := range rows {
		out = append(out, buildCourseDTO(r.Course, r.Access, r.ProgressPercentage, false))
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) GetStructure(c *gin.Context) {
	id, ok := respond.IDParam(c, "id")
	if !ok {
		return
	}
	st, err := h.catalog.Structure(c.Request.Context(), middleware.CurrentUser(c), id)
	if err != nil {
		respond.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, buildStructure(st))
}

func (h *Handler) CheckCourseAccess(c *gin.Context) {
	id, ok := respond.IDParam(c, "id")
	if !ok {
		return
	}
	_, d, err := h.access.CourseAccess(c.Request.Context(), middleware.CurrentUser(c), id)
	if err != nil {
		respond.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, AccessDTO{HasAccess: d.Granted, Reason: d.Reason})
}

func (h *Handler) CheckLessonAccess(c *gin.Context) {
	id, ok := respond.IDParam(c, "id")
	if !ok {
		return
	}
	_, d, err := h.access.LessonAccess(c.Request.Context(), middleware.CurrentUser(c), id)
	if err != nil {
		respond.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, AccessDTO{HasAccess: d.Granted, Reason: d.Reason})
}

// GetLessonContent is 404 for missing or unpublished lessons and 403 when access is denied.
func (h *Handler) GetLessonContent(c *gin.Context) {
	id, ok := respond.IDParam(c, "id")
	if !ok {
		return
	}
	l, d, err := h.access.LessonAccess(c.Request.Context(), middleware.CurrentUser(c), id)
	if err != nil {
		respond.Error(c, err)
		return
	}
	if !d.Granted {
		c.JSON(http.StatusForbidden, gin.H{"error": "You do not have access to this lesson"})
		return
	}
	c.JSON(http.StatusOK, LessonContentResponse{
		Lesson:   buildLessonDTO(*l, d),
		CourseID: l.CourseID,
		Reason:   d.Reason,
	})
}

func (h *Handler) MyCourses(c *gin.Context) {
	u := middleware.CurrentUser(c)
	list, err := h.access.AccessibleCourses(c.Request.Context(), u)
	if err != nil {
		respond.Error(c, err)
		return
	}
	out := make([]CourseDTO, 0, len(list))
	for _, course := range list {
		d, err := h.access.ResolveCourseAccess(c.Request.Context(), u, &course)
		if err != nil {
			respond.Error(c, err)
			return
		}
		out = append(out, buildCourseDTO(course, d, nil, false))
	}
	c.JSON(http.StatusOK, out)
}
