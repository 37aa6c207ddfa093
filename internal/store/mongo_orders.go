package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"afrizone/internal/models"
)

type MongoOrders struct {
	mongoBase
}

var _ OrderStore = (*MongoOrders)(nil)

func NewMongoOrders(db *mongo.Database, timeout time.Duration) *MongoOrders {
	return &MongoOrders{newMongoBase(db, ordersCollection, timeout)}
}

var newestFirst = bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}

func (s *MongoOrders) Create(ctx context.Context, order *models.Order) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	res, err := s.coll.InsertOne(ctx, order)
	if err != nil {
		return translate(err)
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		order.ID = id
	}
	return nil
}

func (s *MongoOrders) FindByID(ctx context.Context, id primitive.ObjectID) (models.Order, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var order models.Order
	if err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&order); err != nil {
		return models.Order{}, translate(err)
	}
	return order, nil
}

func (s *MongoOrders) find(ctx context.Context, filter bson.M) ([]models.Order, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	cursor, err := s.coll.Find(ctx, filter, options.Find().SetSort(newestFirst))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	orders := make([]models.Order, 0)
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (s *MongoOrders) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error) {
	return s.find(ctx, bson.M{"user": userID})
}

func (s *MongoOrders) List(ctx context.Context) ([]models.Order, error) {
	return s.find(ctx, bson.M{})
}

func patchSet(patch OrderPatch) bson.M {
	set := bson.M{}
	if patch.Status != "" {
		set["status"] = patch.Status
	}
	if patch.PaymentStatus != "" {
		set["paymentStatus"] = patch.PaymentStatus
	}
	if patch.PaidAt != nil {
		set["paidAt"] = *patch.PaidAt
	}
	if patch.ShippedAt != nil {
		set["shippedAt"] = *patch.ShippedAt
	}
	if patch.DeliveredAt != nil {
		set["deliveredAt"] = *patch.DeliveredAt
	}
	if patch.CancelledAt != nil {
		set["cancelledAt"] = *patch.CancelledAt
	}
	return set
}

func (s *MongoOrders) Transition(ctx context.Context, id primitive.ObjectID, from []string, patch OrderPatch) (models.Order, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	filter := bson.M{"_id": id}
	if len(from) > 0 {
		filter["status"] = bson.M{"$in": from}
	}

	var order models.Order
	err := s.coll.FindOneAndUpdate(ctx, filter, bson.M{"$set": patchSet(patch)},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&order)
	if err == mongo.ErrNoDocuments {
		if _, findErr := s.FindByID(ctx, id); findErr != nil {
			return models.Order{}, findErr
		}
		return models.Order{}, ErrStateConflict
	}
	if err != nil {
		return models.Order{}, err
	}
	return order, nil
}
