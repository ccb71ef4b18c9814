package controllers

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"civictrack-be/apperrors"
	"civictrack-be/models"
)

const requestTimeout = 10 * time.Second

func requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), requestTimeout)
}

// pathID parses the :id route parameter.
func pathID(c *gin.Context, resource string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return primitive.NilObjectID, apperrors.InvalidArgument("Invalid " + strings.ToLower(resource) + " ID")
	}
	return id, nil
}

func queryInt(c *gin.Context, key string, fallback int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperrors.InvalidArgument(key + " must be an integer")
	}
	return n, nil
}

func queryPage(c *gin.Context) (models.Page, error) {
	page, err := queryInt(c, "page", 1)
	if err != nil {
		return models.Page{}, err
	}
	limit, err := queryInt(c, "limit", models.DefaultPageLimit)
	if err != nil {
		return models.Page{}, err
	}
	if limit < 1 || limit > models.MaxPageLimit {
		return models.Page{}, apperrors.InvalidArgument("limit must be between 1 and 100")
	}
	return models.NewPage(page, limit), nil
}

// queryFloat returns nil when the parameter is absent.
func queryFloat(c *gin.Context, key string) (*float64, error) {
	raw, ok := c.GetQuery(key)
	if !ok || raw == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, apperrors.InvalidArgument(key + " must be a number")
	}
	return &f, nil
}
