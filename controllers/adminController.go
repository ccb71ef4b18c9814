package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"civictrack-be/middlewares"
	"civictrack-be/response"
	"civictrack-be/services"
)

type AdminController struct {
	admin      AdminService
	issues     IssueService
	moderation ModerationService
}

func NewAdminController(admin AdminService, issues IssueService, moderation ModerationService) *AdminController {
	return &AdminController{admin: admin, issues: issues, moderation: moderation}
}

// Dashboard returns aggregate counts for the admin home page
func (ctl *AdminController) Dashboard(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	dashboard, err := ctl.admin.Dashboard(ctx, middlewares.CurrentViewer(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dashboard)
}

// Analytics reports issue creation per day and category
func (ctl *AdminController) Analytics(c *gin.Context) {
	days, err := queryInt(c, "days", services.DefaultAnalyticsDays)
	if err != nil {
		response.Error(c, err)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	analytics, err := ctl.admin.Analytics(ctx, middlewares.CurrentViewer(c), days)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, analytics)
}

func (ctl *AdminController) ListIssues(c *gin.Context) {
	page, err := queryPage(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	issues, err := ctl.issues.ListAll(ctx, middlewares.CurrentViewer(c), services.AdminIssueQuery{
		Category: c.Query("category"),
		Status:   c.Query("status"),
		Search:   c.Query("search"),
		Page:     page,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, issues)
}

func (ctl *AdminController) ListFlags(c *gin.Context) {
	page, err := queryPage(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	flags, err := ctl.admin.ListFlags(ctx, middlewares.CurrentViewer(c), c.Query("reviewStatus"), page)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, flags)
}

// ReviewFlag settles a pending flag as valid or spam
func (ctl *AdminController) ReviewFlag(c *gin.Context) {
	flagID, err := pathID(c, "Flag")
	if err != nil {
		response.Error(c, err)
		return
	}

	var input struct {
		Outcome   string `json:"outcome" binding:"required,reviewoutcome"`
		AdminNote string `json:"adminNote" binding:"max=500"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BadRequest(c, err)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	flag, err := ctl.moderation.ReviewFlag(ctx, middlewares.CurrentViewer(c), flagID, services.ReviewFlagInput{
		Outcome:   input.Outcome,
		AdminNote: input.AdminNote,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, flag)
}

func (ctl *AdminController) DeleteFlag(c *gin.Context) {
	flagID, err := pathID(c, "Flag")
	if err != nil {
		response.Error(c, err)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if err := ctl.moderation.DeleteFlag(ctx, middlewares.CurrentViewer(c), flagID); err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Flag deleted successfully"})
}
