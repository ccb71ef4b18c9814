package middlewares

import (
	"context"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"civictrack-be/apperrors"
	"civictrack-be/models"
	"civictrack-be/response"
	"civictrack-be/services"
)

const (
	UserIDKey = "user_id"
	UserKey   = "user"
)

type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.User, error)
}

func bearerToken(c *gin.Context) string {
	authHeader := c.Request.Header.Get("Authorization")
	// Extracting token from "Bearer <token>" format
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}
	return strings.TrimSpace(authHeader)
}

func authenticate(c *gin.Context, auth Authenticator, token string) (*models.User, error) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()
	return auth.Authenticate(ctx, token)
}

func setUser(c *gin.Context, user *models.User) {
	c.Set(UserIDKey, user.ID.Hex())
	c.Set(UserKey, user)
}

// AuthMiddleware requires a valid bearer token belonging to an active user.
func AuthMiddleware(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			response.Error(c, apperrors.Unauthenticated("No authorization token provided"))
			return
		}

		user, err := authenticate(c, auth, token)
		if err != nil {
			response.Logger(c).Debug("Token validation failed", zap.Error(err))
			response.Error(c, err)
			return
		}
		if user.Banned {
			response.Error(c, apperrors.Forbidden("Your account has been banned"))
			return
		}

		setUser(c, user)
		c.Next()
	}
}

// OptionalAuth identifies the caller when a valid token is present and
// otherwise continues anonymously.
func OptionalAuth(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := bearerToken(c); token != "" {
			if user, err := authenticate(c, auth, token); err == nil {
				setUser(c, user)
			}
		}
		c.Next()
	}
}

// RequireAdmin must run after AuthMiddleware.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !CurrentUser(c).IsAdmin() {
			response.Error(c, apperrors.Forbidden("Admin access required"))
			return
		}
		c.Next()
	}
}

func CurrentUser(c *gin.Context) *models.User {
	if v, ok := c.Get(UserKey); ok {
		if u, ok := v.(*models.User); ok {
			return u
		}
	}
	return nil
}

// CurrentViewer returns the caller, or an anonymous viewer.
func CurrentViewer(c *gin.Context) services.Viewer {
	return services.ViewerFromUser(CurrentUser(c))
}
