package repositories

import (
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/mongo"

	"civictrack-be/apperrors"
)

// mapErr converts driver errors into the application taxonomy. resource
// names the entity for NotFound messages.
func mapErr(err error, resource, op string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return apperrors.NotFound(resource)
	}
	return errors.Wrapf(err, "%s %s", op, resource)
}
