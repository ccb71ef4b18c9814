package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"civictrack-be/models"
)

func tickingClock() func() time.Time {
	var mu sync.Mutex
	now := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now = now.Add(time.Minute)
		return now
	}
}

func newTestDeps(s *store) Deps {
	d := s.deps()
	d.Now = tickingClock()
	return d
}

func validInput(lat, lng float64) CreateIssueInput {
	return CreateIssueInput{
		Title:       "Deep pothole",
		Description: "A deep pothole in the left lane",
		Category:    string(models.CategoryPothole),
		Location:    models.Location{Lat: lat, Lng: lng, Address: "Main St"},
	}
}

func mustCreate(t *testing.T, svc *IssueService, author Viewer, in CreateIssueInput) *IssueView {
	t.Helper()
	view, err := svc.Create(context.Background(), author, in)
	require.NoError(t, err)
	return view
}

func primitiveID() primitive.ObjectID {
	return primitive.NewObjectID()
}
