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

type mongoOrders struct {
	coll *mongo.Collection
}

func (r *mongoOrders) Create(ctx context.Context, o *models.Order) error {
	if o.ID.IsZero() {
		o.ID = primitive.NewObjectID()
	}
	_, err := r.coll.InsertOne(ctx, o)
	return err
}

func (r *mongoOrders) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	var o models.Order
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&o); err != nil {
		return nil, notFound(err)
	}
	return &o, nil
}

func (r *mongoOrders) List(ctx context.Context, f OrderFilter) ([]models.Order, error) {
	filter := bson.M{}
	if f.UserID != nil {
		filter["userId"] = *f.UserID
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}

	opts := options.Find().SetSort(bson.D{{Key: "orderDate", Value: -1}, {Key: "_id", Value: -1}})
	if f.Limit > 0 {
		opts.SetLimit(f.Limit)
	}

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	orders := []models.Order{}
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *mongoOrders) UpdateStatus(ctx context.Context, id primitive.ObjectID, from, to models.OrderStatus, deliveryDate *time.Time) (*models.Order, error) {
	filter := bson.M{"_id": id}
	if from != "" {
		filter["status"] = from
	}
	set := bson.M{"status": to}
	if deliveryDate != nil {
		set["deliveryDate"] = *deliveryDate
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var updated models.Order
	err := r.coll.FindOneAndUpdate(ctx, filter, bson.M{"$set": set}, opts).Decode(&updated)
	if err != nil {
		return nil, notFound(err)
	}
	return &updated, nil
}

func (r *mongoOrders) Count(ctx context.Context, status models.OrderStatus) (int64, error) {
	filter := bson.M{}
	if status != "" {
		filter["status"] = status
	}
	return r.coll.CountDocuments(ctx, filter)
}

func (r *mongoOrders) Revenue(ctx context.Context) (float64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"status": bson.M{"$ne": models.StatusCancelled}}}},
		{{Key: "$group", Value: bson.M{"_id": nil, "total": bson.M{"$sum": "$totalAmount"}}}},
	}
	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, err
	}

	var rows []struct {
		Total float64 `bson:"total"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return rows[0].Total, nil
}
