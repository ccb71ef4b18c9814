package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"civictrack-be/models"
)

// Deps bundles the collaborators shared by the services. Events, Metrics,
// Photos, Logger and Now are optional.
type Deps struct {
	Issues  IssueStore
	Logs    StatusLogStore
	Flags   FlagStore
	Users   UserStore
	Tx      TxRunner
	Photos  PhotoStore
	Events  EventPublisher
	Metrics Recorder
	Logger  *zap.Logger
	Now     func() time.Time
}

func (d Deps) withDefaults() Deps {
	if d.Tx == nil {
		d.Tx = directTx{}
	}
	if d.Events == nil {
		d.Events = noopPublisher{}
	}
	if d.Metrics == nil {
		d.Metrics = noopRecorder{}
	}
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.Now == nil {
		d.Now = func() time.Time { return time.Now().UTC() }
	}
	return d
}

// publish is fire-and-forget; delivery failures are logged, never returned.
func (d Deps) publish(ctx context.Context, routingKey string, payload any) {
	if err := d.Events.Publish(ctx, routingKey, payload); err != nil {
		d.Logger.Warn("failed to publish event", zap.String("routing_key", routingKey), zap.Error(err))
	}
}

type directTx struct{}

func (directTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (directTx) Enabled() bool { return false }

type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, string, any) error { return nil }

type noopRecorder struct{}

func (noopRecorder) IssueCreated(models.Category)         {}
func (noopRecorder) StatusChanged(from, to models.Status) {}
func (noopRecorder) FlagFiled(models.FlagReason)          {}
func (noopRecorder) IssueDeleted()                        {}
