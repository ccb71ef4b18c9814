package services

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"civictrack-be/apperrors"
	"civictrack-be/events"
	"civictrack-be/models"
)

type ModerationSettings struct {
	// StrictTransitions rejects status changes off the expected path.
	StrictTransitions bool
	// FlagHideThreshold hides an issue at this many non-spam flags; 0 disables.
	FlagHideThreshold int
}

type ModerationService struct {
	deps     Deps
	settings ModerationSettings
}

func NewModerationService(deps Deps, settings ModerationSettings) *ModerationService {
	return &ModerationService{deps: deps.withDefaults(), settings: settings}
}

// UpdateStatus moves an issue to status and records the change in its
// status log. Rejecting an issue clears its flags.
func (s *ModerationService) UpdateStatus(ctx context.Context, actor Viewer, issueID primitive.ObjectID, status, comment string) (*models.Issue, error) {
	if !actor.IsAdmin() {
		return nil, apperrors.Forbidden("Only admins can change issue status")
	}
	target, err := models.ParseStatus(status)
	if err != nil {
		return nil, apperrors.InvalidArgument(err.Error())
	}
	f := fieldErrors{}
	f.length("comment", comment, 0, 500)
	if err := f.err(); err != nil {
		return nil, err
	}

	issue, err := s.deps.Issues.FindByID(ctx, issueID)
	if err != nil {
		return nil, err
	}
	if s.settings.StrictTransitions && !models.CanTransition(issue.Status, target) {
		return nil, apperrors.InvalidArgument(fmt.Sprintf("cannot move issue from %s to %s", issue.Status, target))
	}

	now := s.deps.Now()
	entry := models.NewStatusLog(issueID, target, comment, actor.ID, now)
	var previous models.Status
	var cleared int64

	err = s.deps.Tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		if previous, err = s.deps.Issues.UpdateStatus(ctx, issueID, target, now); err != nil {
			return err
		}
		if err := s.deps.Logs.Append(ctx, entry); err != nil {
			if !s.deps.Tx.Enabled() {
				s.restoreStatus(ctx, issueID, previous)
			}
			return err
		}
		if target == models.StatusRejected && s.deps.Tx.Enabled() {
			cleared, err = s.deps.Flags.DeleteByIssue(ctx, issueID)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	// status and log are committed; a cleanup failure only leaves stale flags
	if target == models.StatusRejected && !s.deps.Tx.Enabled() {
		if cleared, err = s.deps.Flags.DeleteByIssue(ctx, issueID); err != nil {
			s.deps.Logger.Warn("failed to clear flags of rejected issue",
				zap.String("issue_id", issueID.Hex()),
				zap.Error(err),
			)
		}
	}

	s.deps.Logger.Info("issue status changed",
		zap.String("issue_id", issueID.Hex()),
		zap.String("from", string(previous)),
		zap.String("to", string(target)),
		zap.String("actor", actor.ID.Hex()),
		zap.Int64("flags_cleared", cleared),
	)
	s.deps.Metrics.StatusChanged(previous, target)
	s.deps.publish(ctx, events.IssueStatusChanged, map[string]any{
		"issueId": issueID.Hex(),
		"from":    previous,
		"to":      target,
		"comment": comment,
	})

	issue.Status = target
	issue.UpdatedAt = now
	return issue, nil
}

func (s *ModerationService) restoreStatus(ctx context.Context, issueID primitive.ObjectID, previous models.Status) {
	if _, err := s.deps.Issues.UpdateStatus(ctx, issueID, previous, s.deps.Now()); err != nil {
		s.deps.Logger.Error("failed to restore issue status after log append failure",
			zap.String("issue_id", issueID.Hex()),
			zap.String("status", string(previous)),
			zap.Error(err),
		)
	}
}

type FileFlagInput struct {
	Reason      string
	Description string
}

// FileFlag records actor's flag against an issue. A second flag from the
// same user is a Conflict.
func (s *ModerationService) FileFlag(ctx context.Context, actor Viewer, issueID primitive.ObjectID, in FileFlagInput) (*models.Flag, error) {
	if !actor.Authenticated() {
		return nil, apperrors.Unauthenticated("User not authenticated")
	}
	if actor.Banned {
		return nil, apperrors.Forbidden("Your account has been banned")
	}

	f := fieldErrors{}
	f.check(models.FlagReason(in.Reason).Valid(), "reason", "reason must be one of inappropriate, spam, duplicate, other")
	f.length("description", in.Description, 0, 200)
	if err := f.err(); err != nil {
		return nil, err
	}

	if _, err := s.deps.Issues.FindByID(ctx, issueID); err != nil {
		return nil, err
	}

	now := s.deps.Now()
	flag := &models.Flag{
		ID:           primitive.NewObjectID(),
		UserID:       actor.ID,
		IssueID:      issueID,
		Reason:       models.FlagReason(in.Reason),
		Description:  in.Description,
		ReviewStatus: models.ReviewPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.deps.Flags.Create(ctx, flag); err != nil {
		return nil, err
	}

	s.deps.Metrics.FlagFiled(flag.Reason)
	s.refreshVisibility(ctx, issueID)
	s.deps.publish(ctx, events.FlagFiled, map[string]any{
		"flagId":  flag.ID.Hex(),
		"issueId": issueID.Hex(),
		"reason":  flag.Reason,
	})
	return flag, nil
}

type ReviewFlagInput struct {
	Outcome   string
	AdminNote string
}

// ReviewFlag settles a pending flag as valid or spam. Reviewed flags are
// final.
func (s *ModerationService) ReviewFlag(ctx context.Context, actor Viewer, flagID primitive.ObjectID, in ReviewFlagInput) (*models.Flag, error) {
	if !actor.IsAdmin() {
		return nil, apperrors.Forbidden("Only admins can review flags")
	}

	outcome := models.ReviewStatus(in.Outcome)
	f := fieldErrors{}
	f.check(outcome.Outcome(), "outcome", "outcome must be valid or spam")
	f.length("adminNote", in.AdminNote, 0, 500)
	if err := f.err(); err != nil {
		return nil, err
	}

	flag, err := s.deps.Flags.Review(ctx, flagID, outcome, in.AdminNote, actor.ID, s.deps.Now())
	if err != nil {
		return nil, err
	}

	s.deps.Logger.Info("flag reviewed",
		zap.String("flag_id", flagID.Hex()),
		zap.String("outcome", string(outcome)),
		zap.String("actor", actor.ID.Hex()),
	)
	if outcome == models.ReviewSpam {
		s.refreshVisibility(ctx, flag.IssueID)
	}
	return flag, nil
}

func (s *ModerationService) DeleteFlag(ctx context.Context, actor Viewer, flagID primitive.ObjectID) error {
	if !actor.IsAdmin() {
		return apperrors.Forbidden("Only admins can delete flags")
	}

	flag, err := s.deps.Flags.Delete(ctx, flagID)
	if err != nil {
		return err
	}

	s.deps.Logger.Info("flag deleted", zap.String("flag_id", flagID.Hex()), zap.String("actor", actor.ID.Hex()))
	s.refreshVisibility(ctx, flag.IssueID)
	return nil
}

// refreshVisibility hides an issue once its non-spam flags reach the
// threshold and shows it again when they drop below. Failures are logged;
// the triggering operation has already succeeded.
func (s *ModerationService) refreshVisibility(ctx context.Context, issueID primitive.ObjectID) {
	if s.settings.FlagHideThreshold <= 0 {
		return
	}

	issue, err := s.deps.Issues.FindByID(ctx, issueID)
	if err != nil {
		if !apperrors.Is(err, apperrors.CodeNotFound) {
			s.deps.Logger.Warn("failed to load issue for visibility check", zap.String("issue_id", issueID.Hex()), zap.Error(err))
		}
		return
	}

	active, err := s.deps.Flags.CountActive(ctx, issueID)
	if err != nil {
		s.deps.Logger.Warn("failed to count flags", zap.String("issue_id", issueID.Hex()), zap.Error(err))
		return
	}

	hidden := active >= int64(s.settings.FlagHideThreshold)
	if hidden == issue.Hidden {
		return
	}
	if err := s.deps.Issues.SetHidden(ctx, issueID, hidden); err != nil {
		s.deps.Logger.Warn("failed to update issue visibility", zap.String("issue_id", issueID.Hex()), zap.Error(err))
		return
	}
	s.deps.Logger.Info("issue visibility changed",
		zap.String("issue_id", issueID.Hex()),
		zap.Bool("hidden", hidden),
		zap.Int64("active_flags", active),
	)
}
