package database

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"afrizone/internal/logging"
)

func createIndexes(db *mongo.Database, log logrus.FieldLogger, collection string, models ...mongo.IndexModel) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	entry := logging.Area(log, logging.AreaDB).WithField("collection", collection)
	entry.Debug("creating indexes")
	names, err := db.Collection(collection).Indexes().CreateMany(ctx, models)
	if err != nil {
		entry.WithError(err).Error("index creation failed")
		return err
	}
	entry.WithField("indexes", names).Info("indexes ensured")
	return nil
}

func UserIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{{
		Keys: bson.D{{Key: "email", Value: 1}},
		Options: options.Index().
			SetName("email_unique").
			SetUnique(true),
	}}
}

func ProductIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "category", Value: 1}, {Key: "isDeleted", Value: 1}},
			Options: options.Index().SetName("category_index"),
		},
		{
			Keys:    bson.D{{Key: "averageRating", Value: -1}},
			Options: options.Index().SetName("averageRating_index"),
		},
	}
}

func OrderIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{{
		Keys:    bson.D{{Key: "user", Value: 1}, {Key: "createdAt", Value: -1}},
		Options: options.Index().SetName("user_createdAt_index"),
	}}
}

func EnsureUserIndexes(db *mongo.Database, log logrus.FieldLogger) error {
	return createIndexes(db, log, "users", UserIndexes()...)
}

func EnsureProductIndexes(db *mongo.Database, log logrus.FieldLogger) error {
	return createIndexes(db, log, "products", ProductIndexes()...)
}

func EnsureOrderIndexes(db *mongo.Database, log logrus.FieldLogger) error {
	return createIndexes(db, log, "orders", OrderIndexes()...)
}
