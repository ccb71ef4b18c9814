package routes

import (
	"github.com/gin-gonic/gin"
)

func userRoutes(admin *gin.RouterGroup, opts Options) {
	users := admin.Group("/users")
	{
		users.GET("", opts.Users.ListUsers)
		users.PATCH("/:id/ban", opts.Users.BanUser)
		users.PATCH("/:id/unban", opts.Users.UnbanUser)
	}
}
