package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Flag is a user's moderation report against an issue. At most one flag
// exists per (user, issue).
type Flag struct {
	ID           primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	UserID       primitive.ObjectID  `bson:"userId" json:"userId"`
	IssueID      primitive.ObjectID  `bson:"issueId" json:"issueId"`
	Reason       FlagReason          `bson:"reason" json:"reason"`
	Description  string              `bson:"description,omitempty" json:"description,omitempty"`
	ReviewStatus ReviewStatus        `bson:"reviewStatus" json:"reviewStatus"`
	AdminNote    string              `bson:"adminNote,omitempty" json:"adminNote,omitempty"`
	ReviewedBy   *primitive.ObjectID `bson:"reviewedBy,omitempty" json:"reviewedBy,omitempty"`
	ReviewedAt   *time.Time          `bson:"reviewedAt,omitempty" json:"reviewedAt,omitempty"`
	CreatedAt    time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time           `bson:"updatedAt" json:"updatedAt"`
}

// FlagWithIssue is a flag joined with a summary of the issue it targets.
type FlagWithIssue struct {
	Flag  `bson:",inline"`
	Issue IssueSummary `bson:"issue" json:"issue"`
}

type IssueSummary struct {
	ID       primitive.ObjectID `bson:"_id" json:"id"`
	Title    string             `bson:"title" json:"title"`
	Status   Status             `bson:"status" json:"status"`
	Category Category           `bson:"category" json:"category"`
	Hidden   bool               `bson:"hidden" json:"hidden"`
}
