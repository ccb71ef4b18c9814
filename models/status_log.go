package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// StatusLog is one immutable entry in an issue's status history.
type StatusLog struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	IssueID   primitive.ObjectID `bson:"issueId" json:"issueId"`
	Status    Status             `bson:"status" json:"status"`
	Comment   string             `bson:"comment,omitempty" json:"comment,omitempty"`
	UpdatedBy primitive.ObjectID `bson:"updatedBy" json:"updatedBy"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

func NewStatusLog(issueID primitive.ObjectID, status Status, comment string, actor primitive.ObjectID, at time.Time) *StatusLog {
	return &StatusLog{
		ID:        primitive.NewObjectID(),
		IssueID:   issueID,
		Status:    status,
		Comment:   comment,
		UpdatedBy: actor,
		CreatedAt: at,
	}
}
