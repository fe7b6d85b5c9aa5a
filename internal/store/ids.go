package store

import (
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// IDSource produces run identifiers.
//
// The production source draws UUIDv7s so run ids sort by creation time;
// tests substitute a fixed source for byte-stable listings.
type IDSource interface {
	NewID() (string, error)
}

type uuidSource struct{}

// NewUUIDSource returns the production IDSource backed by UUIDv7.
func NewUUIDSource() IDSource {
	return uuidSource{}
}

func (uuidSource) NewID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", errors.Wrap(err, "generate run id")
	}
	return id.String(), nil
}
