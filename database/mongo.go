package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	usersCollection     = "users"
	productsCollection  = "products"
	ordersCollection    = "orders"
	cartsCollection     = "carts"
	wishlistsCollection = "wishlists"
	blacklistCollection = "blacklist_tokens"
)

// ConnectMongo dials the cluster and verifies it answers a ping.
func ConnectMongo(ctx context.Context, uri string) (*mongo.Client, error) {
	if uri == "" {
		return nil, errors.New("MONGO_URI not set")
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	slog.Info("connected to mongodb")
	return client, nil
}

// NewMongoStore wires repositories over db. Transactions need a replica set
// or sharded cluster.
func NewMongoStore(client *mongo.Client, db *mongo.Database) *Store {
	return &Store{
		Products:  &mongoProducts{coll: db.Collection(productsCollection)},
		Orders:    &mongoOrders{coll: db.Collection(ordersCollection)},
		Carts:     &mongoCarts{coll: db.Collection(cartsCollection)},
		Wishlists: &mongoWishlists{coll: db.Collection(wishlistsCollection)},
		Users:     &mongoUsers{coll: db.Collection(usersCollection)},
		Tokens:    &mongoBlacklist{coll: db.Collection(blacklistCollection)},
		Tx:        &mongoTx{client: client},
	}
}

func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := map[string][]mongo.IndexModel{
		usersCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		cartsCollection: {
			{Keys: bson.D{{Key: "userId", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		wishlistsCollection: {
			{Keys: bson.D{{Key: "userId", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		ordersCollection: {
			{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "orderDate", Value: -1}}},
			{Keys: bson.D{{Key: "status", Value: 1}, {Key: "orderDate", Value: -1}}},
		},
		productsCollection: {
			{Keys: bson.D{{Key: "category", Value: 1}}},
		},
		blacklistCollection: {
			{Keys: bson.D{{Key: "token", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "expiresAt", Value: 1}}, Options: options.Index().SetExpireAfterSeconds(0)},
		},
	}

	for name, idx := range indexes {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, idx); err != nil {
			return fmt.Errorf("create indexes on %s: %w", name, err)
		}
	}
	return nil
}

type mongoTx struct {
	client *mongo.Client
}

func (t *mongoTx) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	sess, err := t.client.StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}

func notFound(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	return err
}
