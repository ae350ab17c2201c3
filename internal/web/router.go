package web

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"placement/internal/auth"
	"placement/internal/httpmiddleware"
)

// Router wires middleware and every route.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(httpmiddleware.RequestID())
	r.Use(httpmiddleware.AccessLog())
	r.Use(httpmiddleware.Metrics())
	r.Use(cors.New(cors.Config{
		AllowOriginFunc:  func(string) bool { return true },
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(securityHeaders())
	r.Use(httpmiddleware.RateLimit(s.Limiter))
	r.Use(httpmiddleware.BodyLimit(s.Config.MaxUploadBytes))
	r.Use(auth.Session(s.Config.SecretKey))
	r.NoRoute(s.notFound)

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/healthz", s.healthz)

	login := auth.RequireLogin()
	admin := auth.RequireRole(auth.RoleAdmin)
	student := auth.RequireRole(auth.RoleStudent)

	r.GET("/", s.home)
	r.GET("/register", s.registerPage)
	r.POST("/register", s.register)
	r.GET("/login", s.loginPage)
	r.POST("/login", s.login)
	r.GET("/logout", s.logout)

	r.GET("/student_dashboard", student, s.studentDashboard)
	r.GET("/placements", s.placements)
	r.POST("/apply/:pid", login, s.apply)
	r.GET("/my_applications", login, s.myApplications)
	r.GET("/profile", login, s.profilePage)
	r.POST("/profile", login, s.updateProfile)
	r.GET("/uploads/profile_pics/:filename", login, serveUpload(s.Config.ProfilePicDir))
	r.GET("/uploads/resumes/:filename", login, serveUpload(s.Config.ResumeDir))
	r.GET("/resume_review", s.resumeReviewPage)
	r.POST("/resume_review", s.resumeReview)
	r.GET("/ask", s.askPage)
	r.POST("/ask", s.ask)
	r.POST("/chat", s.chat)
	r.GET("/rate", s.ratePage)
	r.POST("/rate", login, s.rate)

	api := r.Group("/api")
	api.GET("/search_placements", s.apiSearchPlacements)
	api.GET("/jobs", s.apiJobs)

	r.GET("/admin_dashboard", admin, s.adminDashboard)
	r.GET("/reports", admin, s.reports)
	r.GET("/manage_placements", admin, s.managePlacements)
	r.POST("/manage_placements", admin, s.createPlacement)
	r.GET("/edit_placement/:pid", admin, s.editPlacementPage)
	r.POST("/edit_placement/:pid", admin, s.editPlacement)
	r.POST("/delete_placement/:pid", admin, s.deletePlacement)
	r.GET("/view_applications/:pid", admin, s.viewApplications)
	r.POST("/update_status/:app_id", admin, s.updateStatus)
	r.GET("/admin/applications", admin, s.allApplications)
	r.GET("/manage_students", admin, s.manageStudents)

	students := r.Group("/students", admin)
	students.GET("/edit_student/:id", s.editStudentPage)
	students.POST("/edit_student/:id", s.editStudent)
	students.POST("/delete/:id", s.deleteStudent)
	students.GET("/student_resumes/:id", s.studentResumes)
	students.GET("/:id/applications", s.studentApplications)

	return r
}

func securityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		if gin.Mode() == gin.ReleaseMode {
			c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}
		c.Next()
	}
}
