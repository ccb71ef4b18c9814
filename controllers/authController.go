package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"civictrack-be/middlewares"
	"civictrack-be/response"
	"civictrack-be/services"
)

type AuthController struct {
	auth AuthService
}

func NewAuthController(auth AuthService) *AuthController {
	return &AuthController{auth: auth}
}

// RegisterUser handles user registration
func (ctl *AuthController) RegisterUser(c *gin.Context) {
	var input struct {
		Name     string `json:"name" binding:"required,max=50"`
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required,min=6"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		response.BadRequest(c, err)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	result, err := ctl.auth.Register(ctx, services.RegisterInput{
		Name:     input.Name,
		Email:    input.Email,
		Password: input.Password,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

// LoginUser handles user login
func (ctl *AuthController) LoginUser(c *gin.Context) {
	var input struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		response.BadRequest(c, err)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	result, err := ctl.auth.Login(ctx, input.Email, input.Password)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetMe retrieves the authenticated user's information
func (ctl *AuthController) GetMe(c *gin.Context) {
	viewer := middlewares.CurrentViewer(c)

	ctx, cancel := requestContext(c)
	defer cancel()

	user, err := ctl.auth.Me(ctx, viewer.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}
