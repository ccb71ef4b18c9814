package services

import (
	"context"
	"net/mail"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"civictrack-be/apperrors"
	"civictrack-be/models"
	authUtils "civictrack-be/utils"
)

type AuthSettings struct {
	JWTSecret string
	TokenTTL  time.Duration
}

type AuthService struct {
	deps     Deps
	settings AuthSettings
}

func NewAuthService(deps Deps, settings AuthSettings) *AuthService {
	return &AuthService{deps: deps.withDefaults(), settings: settings}
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

type AuthResult struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	f := fieldErrors{}
	f.length("name", in.Name, 1, 50)
	_, mailErr := mail.ParseAddress(in.Email)
	f.check(mailErr == nil, "email", "email must be a valid email address")
	f.check(len(in.Password) >= 6, "password", "password must be at least 6 characters")
	if err := f.err(); err != nil {
		return nil, err
	}

	now := s.deps.Now()
	user := &models.User{
		ID:        primitive.NewObjectID(),
		Name:      strings.TrimSpace(in.Name),
		Email:     strings.ToLower(strings.TrimSpace(in.Email)),
		Password:  in.Password,
		Role:      models.RoleUser,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := user.HashPassword(); err != nil {
		return nil, apperrors.Internal("Error hashing password", err)
	}
	if err := s.deps.Users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.deps.Logger.Info("user registered", zap.String("user_id", user.ID.Hex()))
	return s.issue(user)
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.deps.Users.FindByEmail(ctx, strings.TrimSpace(email))
	if apperrors.Is(err, apperrors.CodeNotFound) {
		return nil, apperrors.Unauthenticated("Invalid credentials")
	}
	if err != nil {
		return nil, err
	}
	if !user.ComparePassword(password) {
		return nil, apperrors.Unauthenticated("Invalid credentials")
	}
	if user.Banned {
		return nil, apperrors.Forbidden("Your account has been banned")
	}
	return s.issue(user)
}

func (s *AuthService) issue(user *models.User) (*AuthResult, error) {
	token, err := authUtils.GenerateToken(s.settings.JWTSecret, user.ID.Hex(), string(user.Role), s.settings.TokenTTL)
	if err != nil {
		return nil, apperrors.Internal("Could not generate token", err)
	}
	user.Password = ""
	return &AuthResult{Token: token, User: user}, nil
}

// Authenticate resolves a bearer token to its user. The user is reloaded so
// role and ban changes apply to tokens already issued.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	claims, err := authUtils.ParseToken(s.settings.JWTSecret, token)
	if err != nil {
		return nil, apperrors.Unauthenticated("Invalid authorization token")
	}
	id, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return nil, apperrors.Unauthenticated("Invalid token claims")
	}

	user, err := s.deps.Users.FindByID(ctx, id)
	if apperrors.Is(err, apperrors.CodeNotFound) {
		return nil, apperrors.Unauthenticated("User no longer exists")
	}
	if err != nil {
		return nil, err
	}
	user.Password = ""
	return user, nil
}

func (s *AuthService) Me(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	user, err := s.deps.Users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	user.Password = ""
	return user, nil
}
