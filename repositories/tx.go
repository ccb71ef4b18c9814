package repositories

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
)

// Transactor runs a unit of work, inside a multi-document transaction when
// enabled. Repositories called with the ctx handed to fn join the session.
type Transactor struct {
	client  *mongo.Client
	enabled bool
}

func NewTransactor(client *mongo.Client, enabled bool) *Transactor {
	return &Transactor{client: client, enabled: enabled}
}

func (t *Transactor) Enabled() bool {
	return t != nil && t.enabled
}

func (t *Transactor) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if !t.Enabled() {
		return fn(ctx)
	}

	return t.client.UseSession(ctx, func(sc mongo.SessionContext) error {
		_, err := sc.WithTransaction(sc, func(txCtx mongo.SessionContext) (interface{}, error) {
			return nil, fn(txCtx)
		})
		return err
	})
}
