package database

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"storefront/models"
)

type mongoCarts struct {
	coll *mongo.Collection
}

func (r *mongoCarts) FindByUser(ctx context.Context, userID primitive.ObjectID) (*models.Cart, error) {
	var cart models.Cart
	if err := r.coll.FindOne(ctx, bson.M{"userId": userID}).Decode(&cart); err != nil {
		return nil, notFound(err)
	}
	return &cart, nil
}

func (r *mongoCarts) GetOrCreate(ctx context.Context, userID primitive.ObjectID) (*models.Cart, error) {
	update := bson.M{"$setOnInsert": bson.M{
		"userId":    userID,
		"items":     bson.A{},
		"updatedAt": time.Now(),
	}}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var cart models.Cart
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"userId": userID}, update, opts).Decode(&cart)
	if mongo.IsDuplicateKeyError(err) {
		// lost the upsert race; the winner's document is there now
		return r.FindByUser(ctx, userID)
	}
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

func (r *mongoCarts) AddItem(ctx context.Context, userID, productID primitive.ObjectID, quantity int) error {
	for attempt := 0; attempt < 2; attempt++ {
		res, err := r.coll.UpdateOne(ctx,
			bson.M{"userId": userID, "items.productId": productID},
			bson.M{
				"$inc": bson.M{"items.$.quantity": quantity},
				"$set": bson.M{"updatedAt": time.Now()},
			},
		)
		if err != nil {
			return err
		}
		if res.MatchedCount > 0 {
			return nil
		}

		_, err = r.coll.UpdateOne(ctx,
			bson.M{"userId": userID, "items.productId": bson.M{"$ne": productID}},
			bson.M{
				"$push": bson.M{"items": models.CartItem{ProductID: productID, Quantity: quantity}},
				"$set":  bson.M{"updatedAt": time.Now()},
			},
			options.Update().SetUpsert(true),
		)
		if mongo.IsDuplicateKeyError(err) {
			// someone pushed the same product between the two updates
			continue
		}
		return err
	}
	return ErrDuplicate
}

func (r *mongoCarts) SetItemQuantity(ctx context.Context, userID, productID primitive.ObjectID, quantity int) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"userId": userID, "items.productId": productID},
		bson.M{"$set": bson.M{"items.$.quantity": quantity, "updatedAt": time.Now()}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoCarts) RemoveItem(ctx context.Context, userID, productID primitive.ObjectID) error {
	_, err := r.coll.UpdateOne(ctx,
		bson.M{"userId": userID},
		bson.M{
			"$pull": bson.M{"items": bson.M{"productId": productID}},
			"$set":  bson.M{"updatedAt": time.Now()},
		},
	)
	return err
}

func (r *mongoCarts) Clear(ctx context.Context, userID primitive.ObjectID) error {
	_, err := r.coll.UpdateOne(ctx,
		bson.M{"userId": userID},
		bson.M{"$set": bson.M{"items": bson.A{}, "updatedAt": time.Now()}},
	)
	return err
}
