package routes

import (
	"github.com/gin-gonic/gin"

	"civictrack-be/middlewares"
)

// AdminRoutes mounts everything under /api/admin behind the admin check.
func AdminRoutes(r *gin.Engine, opts Options) {
	admin := r.Group("/api/admin",
		middlewares.AuthMiddleware(opts.Authenticator),
		middlewares.RequireAdmin(),
	)
	{
		admin.GET("/dashboard", opts.Admin.Dashboard)
		admin.GET("/analytics", opts.Admin.Analytics)

		admin.GET("/issues", opts.Admin.ListIssues)
		admin.PATCH("/issues/:id/status", opts.Issues.UpdateIssueStatus)
		admin.DELETE("/issues/:id", opts.Issues.DeleteIssue)

		admin.GET("/flags", opts.Admin.ListFlags)
		admin.PATCH("/flags/:id/review", opts.Admin.ReviewFlag)
		admin.DELETE("/flags/:id", opts.Admin.DeleteFlag)
	}
	userRoutes(admin, opts)
}
