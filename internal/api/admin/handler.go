package admin

import (
	"net/http"
	"time"

	"learning-platform/internal/api/respond"
	"learning-platform/internal/app/http/middleware"
	"learning-platform/internal/domain/access"
	"learning-platform/internal/domain/enrollments"
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

type CourseAccessRequest struct {
	UserID   uint `json:"user_id" validate:"required"`
	CourseID uint `json:"course_id" validate:"required"`
}

type LifetimeRequest struct {
	Notes string `json:"notes" validate:"max=500"`
}

type AdminEnrollment struct {
	ID                 uint       `json:"id"`
	UserID             uint       `json:"user_id"`
	CourseID           uint       `json:"course_id"`
	HasAccess          bool       `json:"has_access"`
	AccessGrantedAt    *time.Time `json:"access_granted_date"`
	AccessGrantedBy    *uint      `json:"access_granted_by"`
	ProgressPercentage int        `json:"progress_percentage"`
	CompletedLessons   int        `json:"completed_lessons"`
	EnrolledAt         time.Time  `json:"enrollment_date"`
}

type AdminUserCourse struct {
	CourseID         uint          `json:"course_id"`
	Title            string        `json:"title"`
	HasAccess        bool          `json:"has_access"`
	Reason           access.Reason `json:"reason"`
	HasPremiumGlobal bool          `json:"has_premium_global"`
}

type AdminGrant struct {
	ID        uint      `json:"id"`
	UserID    uint      `json:"user_id"`
	GrantedBy uint      `json:"granted_by"`
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"created_at"`
}

func adminEnrollment(e *enrollments.CourseEnrollment) AdminEnrollment {
	return AdminEnrollment{
		ID:                 e.ID,
		UserID:             e.UserID,
		CourseID:           e.CourseID,
		HasAccess:          e.HasAccess,
		AccessGrantedAt:    e.AccessGrantedAt,
		AccessGrantedBy:    e.AccessGrantedBy,
		ProgressPercentage: e.ProgressPercentage,
		CompletedLessons:   e.CompletedLessons,
		EnrolledAt:         e.CreatedAt,
	}
}

func (h *Handler) GrantLifetime(c *gin.Context) {
	userID, ok := respond.IDParam(c, "user_id")
	if !ok {
		return
	}
	var req LifetimeRequest
	if c.Request.ContentLength > 0 && !respond.BindJSON(c, &req) {
		return
	}
	u, err := h.access.GrantGlobalPremium(c.Request.Context(), middleware.CurrentUser(c), userID, req.Notes)
	if err != nil {
		respond.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":            "Lifetime premium access granted",
		"user_id":            u.ID,
		"has_premium_access": u.HasPremiumAccess,
	})
}

func (h *Handler) setPremium(c *gin.Context, premium bool) {
	userID, ok := respond.IDParam(c, "user_id")
	if !ok {
		return
	}
	u, err := h.access.SetPremiumFlag(c.Request.Context(), middleware.CurrentUser(c), userID, premium)
	if err != nil {
		respond.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user_id": u.ID, "has_premium_access": u.HasPremiumAccess})
}

func (h *Handler) GrantPremium(c *gin.Context)  { h.setPremium(c, true) }
func (h *Handler) RevokePremium(c *gin.Context) { h.setPremium(c, false) }

func (h *Handler) GrantCourse(c *gin.Context) {
	var req CourseAccessRequest
	if !respond.BindJSON(c, &req) {
		return
	}
	e, err := h.access.GrantCourseAccess(c.Request.Context(), middleware.CurrentUser(c), req.UserID, req.CourseID)
	if err != nil {
		respond.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, adminEnrollment(e))
}

// RevokeCourse answers 200 whether or not an enrollment existed.
func (h *Handler) RevokeCourse(c *gin.Context) {
	var req CourseAccessRequest
	if !respond.BindJSON(c, &req) {
		return
	}
	revoked, err := h.access.RevokeCourseAccess(c.Request.Context(), middleware.CurrentUser(c), req.UserID, req.CourseID)
	if err != nil {
		respond.Error(c, err)
		return
	}
	msg := "Course access revoked"
	if !revoked {
		msg = "No enrollment to revoke"
	}
	c.JSON(http.StatusOK, gin.H{"message": msg, "revoked": revoked})
}

func (h *Handler) ListEnrollments(c *gin.Context) {
	rows, err := h.access.Enrollments(c.Request.Context(), middleware.CurrentUser(c))
	if err != nil {
		respond.Error(c, err)
		return
	}
	out := make([]AdminEnrollment, 0, len(rows))
	for i := range rows {
		out = append(out, adminEnrollment(&rows[i]))
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) UserCourses(c *gin.Context) {
	userID, ok := respond.IDParam(c, "id")
	if !ok {
		return
	}
	rows, err := h.access.CourseAccessOverview(c.Request.Context(), middleware.CurrentUser(c), userID)
	if err != nil {
		respond.Error(c, err)
		return
	}
	out := make([]AdminUserCourse, 0, len(rows))
	for _, r := range rows {
		out = append(out, AdminUserCourse{
			CourseID:         r.Course.ID,
			Title:            r.Course.Title,
			HasAccess:        r.Access.Granted,
			Reason:           r.Access.Reason,
			HasPremiumGlobal: r.HasPremiumGlobal,
		})
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) UserGrants(c *gin.Context) {
	userID, ok := respond.IDParam(c, "id")
	if !ok {
		return
	}
	rows, err := h.access.GlobalGrants(c.Request.Context(), middleware.CurrentUser(c), userID)
	if err != nil {
		respond.Error(c, err)
		return
	}
	out := make([]AdminGrant, 0, len(rows))
	for _, g := range rows {
		out = append(out, AdminGrant{ID: g.ID, UserID: g.UserID, GrantedBy: g.GrantedBy, Notes: g.Notes, CreatedAt: g.CreatedAt})
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) setLessonPublished(c *gin.Context, published bool) {
	id, ok := respond.IDParam(c, "id")
	if !ok {
		return
	}
	l, refreshed, err := h.catalog.SetLessonPublished(c.Request.Context(), middleware.CurrentUser(c), id, published)
	if err != nil {
		respond.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"lesson_id":             l.ID,
		"is_published":          l.IsPublished,
		"enrollments_refreshed": refreshed,
	})
}

func (h *Handler) PublishLesson(c *gin.Context)   { h.setLessonPublished(c, true) }
func (h *Handler) UnpublishLesson(c *gin.Context) { h.setLessonPublished(c, false) }

func (h *Handler) DeleteLesson(c *gin.Context) {
	id, ok := respond.IDParam(c, "id")
	if !ok {
		return
	}
	refreshed, err := h.catalog.DeleteLesson(c.Request.Context(), middleware.CurrentUser(c), id)
	if err != nil {
		respond.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Lesson deleted", "enrollments_refreshed": refreshed})
}
