package database

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type mongoBlacklist struct {
	coll *mongo.Collection
}

func (r *mongoBlacklist) Revoke(ctx context.Context, token string, expiresAt time.Time) error {
	_, err := r.coll.InsertOne(ctx, bson.M{"token": token, "expiresAt": expiresAt})
	if mongo.IsDuplicateKeyError(err) {
		return nil
	}
	return err
}

func (r *mongoBlacklist) IsRevoked(ctx context.Context, token string) (bool, error) {
	err := r.coll.FindOne(ctx, bson.M{"token": token}).Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
