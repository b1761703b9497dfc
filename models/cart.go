package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CartItem struct {
	ProductID primitive.ObjectID `bson:"productId" json:"productId"`
	Quantity  int                `bson:"quantity" json:"quantity"`
}

type Cart struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID `bson:"userId" json:"userId"`
	Items     []CartItem         `bson:"items" json:"items"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Item returns the line for productID, if present.
func (c *Cart) Item(productID primitive.ObjectID) (CartItem, bool) {
	for _, it := range c.Items {
		if it.ProductID == productID {
			return it, true
		}
	}
	return CartItem{}, false
}

// CartLine is a cart item joined with its product. Product is nil when the
// product has been deleted since it was added.
type CartLine struct {
	ProductID primitive.ObjectID `json:"productId"`
	Product   *Product           `json:"product"`
	Quantity  int                `json:"quantity"`
}

type CartView struct {
	ID        primitive.ObjectID `json:"id"`
	UserID    primitive.ObjectID `json:"userId"`
	Items     []CartLine         `json:"items"`
	UpdatedAt time.Time          `json:"updatedAt"`
}
