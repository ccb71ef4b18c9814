package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"civictrack-be/apperrors"
	"civictrack-be/geo"
	"civictrack-be/middlewares"
	"civictrack-be/models"
	"civictrack-be/response"
	"civictrack-be/services"
)

const maxPhotoBytes = 5 << 20

type IssueController struct {
	issues     IssueService
	moderation ModerationService
}

func NewIssueController(issues IssueService, moderation ModerationService) *IssueController {
	return &IssueController{issues: issues, moderation: moderation}
}

type createIssueRequest struct {
	Title       string   `json:"title" binding:"required,min=5,max=100"`
	Description string   `json:"description" binding:"required,min=10,max=1000"`
	Category    string   `json:"category" binding:"required,category"`
	Location    location `json:"location"`
	Photos      []string `json:"photos" binding:"max=5,dive,url"`
	Anonymous   bool     `json:"anonymous"`
}

type location struct {
	Lat     *float64 `json:"lat" binding:"required,gte=-90,lte=90"`
	Lng     *float64 `json:"lng" binding:"required,gte=-180,lte=180"`
	Address string   `json:"address" binding:"required,max=200"`
}

// CreateIssue handles the creation of a new issue
func (ctl *IssueController) CreateIssue(c *gin.Context) {
	var input createIssueRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BadRequest(c, err)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	issue, err := ctl.issues.Create(ctx, middlewares.CurrentViewer(c), services.CreateIssueInput{
		Title:       input.Title,
		Description: input.Description,
		Category:    input.Category,
		Location: models.Location{
			Lat:     *input.Location.Lat,
			Lng:     *input.Location.Lng,
			Address: input.Location.Address,
		},
		Photos:    input.Photos,
		Anonymous: input.Anonymous,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, issue)
}

// GetAllIssues lists issues, optionally around a point (lat, lng, radius in km)
func (ctl *IssueController) GetAllIssues(c *gin.Context) {
	lat, err := queryFloat(c, "lat")
	if err != nil {
		response.Error(c, err)
		return
	}
	lng, err := queryFloat(c, "lng")
	if err != nil {
		response.Error(c, err)
		return
	}
	radius, err := queryFloat(c, "radius")
	if err != nil {
		response.Error(c, err)
		return
	}

	q := services.ListIssuesQuery{
		Category: c.Query("category"),
		Status:   c.Query("status"),
		RadiusKm: radius,
	}
	switch {
	case lat != nil && lng != nil:
		q.Center = &geo.Point{Lat: *lat, Lng: *lng}
	case lat != nil || lng != nil:
		response.Error(c, apperrors.InvalidArgument("lat and lng must be provided together"))
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	issues, err := ctl.issues.List(ctx, middlewares.CurrentViewer(c), q)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"count":  len(issues),
		"issues": issues,
	})
}

// GetIssue retrieves an issue by its ID with its status timeline
func (ctl *IssueController) GetIssue(c *gin.Context) {
	issueID, err := pathID(c, "Issue")
	if err != nil {
		response.Error(c, err)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	detail, err := ctl.issues.Get(ctx, middlewares.CurrentViewer(c), issueID)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, detail)
}

// GetIssuesByUser returns the caller's own issues
func (ctl *IssueController) GetIssuesByUser(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	issues, err := ctl.issues.ListMine(ctx, middlewares.CurrentViewer(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"count":  len(issues),
		"issues": issues,
	})
}

// DeleteIssue removes an issue along with its timeline and flags
func (ctl *IssueController) DeleteIssue(c *gin.Context) {
	issueID, err := pathID(c, "Issue")
	if err != nil {
		response.Error(c, err)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if err := ctl.issues.Delete(ctx, middlewares.CurrentViewer(c), issueID); err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Issue deleted successfully"})
}

// UpdateIssueStatus moves an issue through moderation
func (ctl *IssueController) UpdateIssueStatus(c *gin.Context) {
	issueID, err := pathID(c, "Issue")
	if err != nil {
		response.Error(c, err)
		return
	}

	var input struct {
		Status  string `json:"status" binding:"required,issuestatus"`
		Comment string `json:"comment" binding:"max=500"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BadRequest(c, err)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	issue, err := ctl.moderation.UpdateStatus(ctx, middlewares.CurrentViewer(c), issueID, input.Status, input.Comment)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, issue)
}

// FlagIssue files the caller's moderation flag against an issue
func (ctl *IssueController) FlagIssue(c *gin.Context) {
	issueID, err := pathID(c, "Issue")
	if err != nil {
		response.Error(c, err)
		return
	}

	var input struct {
		Reason      string `json:"reason" binding:"required,flagreason"`
		Description string `json:"description" binding:"max=200"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BadRequest(c, err)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	flag, err := ctl.moderation.FileFlag(ctx, middlewares.CurrentViewer(c), issueID, services.FileFlagInput{
		Reason:      input.Reason,
		Description: input.Description,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, flag)
}

// UploadPhoto accepts a multipart "photo" image and returns its hosted URL
func (ctl *IssueController) UploadPhoto(c *gin.Context) {
	header, err := c.FormFile("photo")
	if err != nil {
		response.Error(c, apperrors.InvalidArgument("photo file is required"))
		return
	}
	if header.Size > maxPhotoBytes {
		response.Error(c, apperrors.InvalidArgument("photo must be at most 5MB"))
		return
	}
	if !strings.HasPrefix(header.Header.Get("Content-Type"), "image/") {
		response.Error(c, apperrors.InvalidArgument("photo must be an image"))
		return
	}

	file, err := header.Open()
	if err != nil {
		response.Error(c, apperrors.InvalidArgument("photo could not be read"))
		return
	}
	defer file.Close()

	ctx, cancel := requestContext(c)
	defer cancel()

	url, err := ctl.issues.UploadPhoto(ctx, middlewares.CurrentViewer(c), file)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"url": url})
}
