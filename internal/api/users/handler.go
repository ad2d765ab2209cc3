package users

import (
	"net/http"

	"learning-platform/internal/api/respond"
	"learning-platform/internal/app/http/middleware"
	"learning-platform/internal/service"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	access *service.AccessService
}

func NewHandler(access *service.AccessService) *Handler {
	return &Handler{access: access}
}

func (h *Handler) GetCurrentUser(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	ctx := c.Request.Context()
	list, err := h.access.AccessibleCourses(ctx, user)
	if err != nil {
		respond.Error(c, err)
		return
	}

	resp := MeResponse{User: BuildUserDTO(user), Courses: make([]MyCourses, 0, len(list))}
	for i := range list {
		d, err := h.access.ResolveCourseAccess(ctx, user, &list[i])
		if err != nil {
			respond.Error(c, err)
			return
		}
		resp.Courses = append(resp.Courses, BuildMyCourse(list[i], d))
	}

	// the global grant log is an admin view, including on /me
	if user.IsAdmin() {
		rows, err := h.access.GlobalGrants(ctx, user, user.ID)
		if err != nil {
			respond.Error(c, err)
			return
		}
		resp.Grants = BuildMyGrants(rows)
	}

	c.JSON(http.StatusOK, resp)
}
