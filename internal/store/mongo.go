package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
)

const (
	usersCollection    = "users"
	productsCollection = "products"
	ordersCollection   = "orders"
)

const defaultTimeout = 5 * time.Second

type mongoBase struct {
	coll    *mongo.Collection
	timeout time.Duration
}

func newMongoBase(db *mongo.Database, name string, timeout time.Duration) mongoBase {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return mongoBase{coll: db.Collection(name), timeout: timeout}
}

func (b mongoBase) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, b.timeout)
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case err == mongo.ErrNoDocuments:
		return ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return ErrDuplicateKey
	default:
		return err
	}
}
