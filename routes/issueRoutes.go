package routes

import (
	"github.com/gin-gonic/gin"

	"civictrack-be/middlewares"
)

// IssueRoutes sets up the issue routes
func IssueRoutes(r *gin.Engine, opts Options) {
	requireAuth := middlewares.AuthMiddleware(opts.Authenticator)
	optionalAuth := middlewares.OptionalAuth(opts.Authenticator)

	issue := r.Group("/api/issues")
	{
		issue.GET("", optionalAuth, opts.Issues.GetAllIssues)
		issue.POST("",
			requireAuth,
			middlewares.IssueRateLimiter(opts.Redis, opts.IssueQueue, opts.IssueLimit),
			opts.Issues.CreateIssue,
		)
		issue.GET("/user", requireAuth, opts.Issues.GetIssuesByUser)
		issue.POST("/photos", requireAuth, opts.Issues.UploadPhoto)
		issue.GET("/:id", optionalAuth, opts.Issues.GetIssue)
		issue.DELETE("/:id", requireAuth, opts.Issues.DeleteIssue)
		issue.PATCH("/:id/status", requireAuth, opts.Issues.UpdateIssueStatus)
		issue.POST("/:id/flag", requireAuth, opts.Issues.FlagIssue)
	}
}
