package routes

import (
	"time"

	"learning-platform/config"
	adminapi "learning-platform/internal/api/admin"
	coursesapi "learning-platform/internal/api/courses"
	progressapi "learning-platform/internal/api/progress"
	stripewebhooks "learning-platform/internal/api/stripewebhook"
	"learning-platform/internal/api/users"
	"learning-platform/internal/app/http/middleware"
	domainusers "learning-platform/internal/domain/users"
	"learning-platform/internal/repository"
	"learning-platform/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

type Deps struct {
	Config *config.Config
	Store  repository.Store
	Redis  *redis.Client // nil disables rate limiting
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	accessSvc := service.NewAccessService(d.Store)
	progressSvc := service.NewProgressService(d.Store)
	catalogSvc := service.NewCatalogService(d.Store, progressSvc)

	coursesH := coursesapi.NewHandler(accessSvc, catalogSvc)
	progressH := progressapi.NewHandler(progressSvc)
	adminH := adminapi.NewHandler(accessSvc, catalogSvc)
	usersH := users.NewHandler(accessSvc)
	webhookH := stripewebhooks.NewHandler(accessSvc, d.Store.Users(), d.Config.StripeWebhookSecret, d.Config.BillingAdminID)
	limiter := middleware.NewRateLimiter(d.Redis)

	// signature check needs the raw body, so no sanitizer here
	r.POST("/webhook/stripe", webhookH.StripeWebhook)
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Public, token optional
	public := r.Group("/")
	public.Use(
		middleware.OptionalAuth(d.Config.JWTSecret),
		middleware.LoadCurrentUser(d.Store.Users(), false),
	)
	public.GET("/courses", coursesH.ListCourses)
	public.GET("/courses/:id/structure", coursesH.GetStructure)
	public.GET("/courses/:id/access", coursesH.CheckCourseAccess)
	public.GET("/lessons/:id/access", coursesH.CheckLessonAccess)

	// Authenticated
	auth := r.Group("/")
	auth.Use(
		middleware.AuthMiddleware(d.Config.JWTSecret),
		middleware.LoadCurrentUser(d.Store.Users(), true),
		middleware.SanitizeAndCleanInputMiddleware(),
	)
	auth.GET("/me", usersH.GetCurrentUser)
	auth.GET("/my-courses", coursesH.MyCourses)
	auth.GET("/lessons/:id/content", coursesH.GetLessonContent)
	auth.POST("/lessons/:id/complete", progressH.MarkComplete)
	auth.POST("/lessons/:id/progress",
		limiter.Limit("lesson_progress", d.Config.ProgressRateLimit, time.Minute),
		progressH.UpdatePosition,
	)
	auth.GET("/courses/:id/progress", progressH.CourseProgress)
	auth.POST("/courses/:id/progress/recompute", progressH.Recompute)

	// Admin routes
	admin := r.Group("/admin")
	admin.Use(
		middleware.AuthMiddleware(d.Config.JWTSecret),
		middleware.RequireRole(domainusers.RoleAdmin),
		middleware.LoadCurrentUser(d.Store.Users(), true),
		middleware.SanitizeAndCleanInputMiddleware(),
	)
	admin.POST("/access/grant-lifetime/:user_id", adminH.GrantLifetime)
	admin.POST("/premium/grant/:user_id", adminH.GrantPremium)
	admin.POST("/premium/revoke/:user_id", adminH.RevokePremium)
	admin.POST("/access/grant-course", adminH.GrantCourse)
	admin.POST("/access/revoke-course", adminH.RevokeCourse)
	admin.GET("/enrollments", adminH.ListEnrollments)
	admin.GET("/users/:id/courses", adminH.UserCourses)
	admin.GET("/users/:id/grants", adminH.UserGrants)
	admin.POST("/lessons/:id/publish", adminH.PublishLesson)
	admin.POST("/lessons/:id/unpublish", adminH.UnpublishLesson)
	admin.DELETE("/lessons/:id", adminH.DeleteLesson)
}
