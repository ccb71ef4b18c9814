package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"civictrack-be/middlewares"
	"civictrack-be/response"
)

// UserController is the admin side of user management.
type UserController struct {
	admin AdminService
}

func NewUserController(admin AdminService) *UserController {
	return &UserController{admin: admin}
}

// ListUsers pages through users, optionally filtered by name or email
func (ctl *UserController) ListUsers(c *gin.Context) {
	page, err := queryPage(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	users, err := ctl.admin.ListUsers(ctx, middlewares.CurrentViewer(c), c.Query("search"), page)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, users)
}

func (ctl *UserController) BanUser(c *gin.Context) {
	ctl.setBan(c, true)
}

func (ctl *UserController) UnbanUser(c *gin.Context) {
	ctl.setBan(c, false)
}

func (ctl *UserController) setBan(c *gin.Context, banned bool) {
	userID, err := pathID(c, "User")
	if err != nil {
		response.Error(c, err)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	user, err := ctl.admin.SetBan(ctx, middlewares.CurrentViewer(c), userID, banned)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}
