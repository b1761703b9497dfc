package auth

import (
	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/models"
)

// Identity is the authenticated caller of a request. It is built by the auth
// middleware and handed to services explicitly.
type Identity struct {
	UserID primitive.ObjectID
	Role   string
}

func (i Identity) IsAdmin() bool {
	return i.Role == models.RoleAdmin
}

// Owns reports whether the identity is the given owner.
func (i Identity) Owns(owner primitive.ObjectID) bool {
	return !i.UserID.IsZero() && i.UserID == owner
}
