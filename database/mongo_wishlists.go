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

type mongoWishlists struct {
	coll *mongo.Collection
}

func (r *mongoWishlists) FindByUser(ctx context.Context, userID primitive.ObjectID) (*models.Wishlist, error) {
	var w models.Wishlist
	if err := r.coll.FindOne(ctx, bson.M{"userId": userID}).Decode(&w); err != nil {
		return nil, notFound(err)
	}
	return &w, nil
}

func (r *mongoWishlists) GetOrCreate(ctx context.Context, userID primitive.ObjectID) (*models.Wishlist, error) {
	update := bson.M{"$setOnInsert": bson.M{
		"userId":    userID,
		"products":  bson.A{},
		"updatedAt": time.Now(),
	}}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var w models.Wishlist
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"userId": userID}, update, opts).Decode(&w)
	if mongo.IsDuplicateKeyError(err) {
		return r.FindByUser(ctx, userID)
	}
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *mongoWishlists) Add(ctx context.Context, userID, productID primitive.ObjectID) error {
	_, err := r.coll.UpdateOne(ctx,
		bson.M{"userId": userID},
		bson.M{
			"$addToSet": bson.M{"products": productID},
			"$set":      bson.M{"updatedAt": time.Now()},
		},
		options.Update().SetUpsert(true),
	)
	if mongo.IsDuplicateKeyError(err) {
		return r.Add(ctx, userID, productID)
	}
	return err
}

func (r *mongoWishlists) Remove(ctx context.Context, userID, productID primitive.ObjectID) error {
	_, err := r.coll.UpdateOne(ctx,
		bson.M{"userId": userID},
		bson.M{
			"$pull": bson.M{"products": productID},
			"$set":  bson.M{"updatedAt": time.Now()},
		},
	)
	return err
}
