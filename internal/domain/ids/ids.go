package ids

import (
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var ErrInvalidID = errors.New("invalid id")

// New mints a new object id in its canonical hex form.
func New() string {
	return primitive.NewObjectID().Hex()
}

// Validate checks that id is a well-formed 24-character hex object id.
// Identities are opaque to callers; this only guards request parsing.
func Validate(id string) error {
	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		return ErrInvalidID
	}
	return nil
}
