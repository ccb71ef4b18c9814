package routes

import (
	"github.com/gin-gonic/gin"

	"civictrack-be/middlewares"
)

// AuthRoutes sets up the authentication routes
func AuthRoutes(r *gin.Engine, opts Options) {
	auth := r.Group("/api/auth")
	{
		auth.POST("/register", opts.Auth.RegisterUser)
		auth.POST("/login", opts.Auth.LoginUser)
		auth.GET("/me", middlewares.AuthMiddleware(opts.Authenticator), opts.Auth.GetMe)
	}
}
