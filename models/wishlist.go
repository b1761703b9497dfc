package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Wishlist struct {
	ID        primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID   `bson:"userId" json:"userId"`
	Products  []primitive.ObjectID `bson:"products" json:"products"`
	UpdatedAt time.Time            `bson:"updatedAt" json:"updatedAt"`
}

// WishlistEntry is nil-safe the same way CartLine is.
type WishlistEntry struct {
	ProductID primitive.ObjectID `json:"productId"`
	Product   *Product           `json:"product"`
}

type WishlistView struct {
	ID        primitive.ObjectID `json:"id"`
	UserID    primitive.ObjectID `json:"userId"`
	Products  []WishlistEntry    `json:"products"`
	UpdatedAt time.Time          `json:"updatedAt"`
}
