package mongodb

import (
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/phrazzld/taskboard-api/internal/query"
	"github.com/phrazzld/taskboard-api/internal/store"
)

// invalidIDError reports an identity operand that is not an ObjectID. It
// matches query.ErrInvalid.
type invalidIDError struct {
	field string
	value string
}

func (e *invalidIDError) Error() string {
	return fmt.Sprintf("%v: %q is not a valid id for %q", query.ErrInvalid, e.value, e.field)
}

func (e *invalidIDError) Is(target error) bool {
	return target == query.ErrInvalid
}

// mapError maps a driver error to the store errors. notFound is returned
// for mongo.ErrNoDocuments. The unique email index is the only unique
// index, so duplicate key errors map to store.ErrEmailExists.
func mapError(err error, notFound error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return notFound
	}
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("%w: %v", store.ErrEmailExists, err)
	}
	return err
}
