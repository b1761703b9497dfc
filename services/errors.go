package services

import (
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/database"
)

var (
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = database.ErrNotFound
	ErrConflict     = errors.New("conflict")
	ErrUpstream     = errors.New("upstream failure")
)

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func missing(what string) error {
	return fmt.Errorf("%s %w", what, ErrNotFound)
}

// parseID parses a hex ObjectID, reporting a malformed id as not found.
func parseID(hex, what string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID, missing(what)
	}
	return id, nil
}

// parseRef parses an ObjectID supplied in a request body.
func parseRef(hex, field string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID, invalid("%s is not a valid id", field)
	}
	return id, nil
}
