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

type MongoUsers struct {
	mongoBase
}

var _ UserStore = (*MongoUsers)(nil)

func NewMongoUsers(db *mongo.Database, timeout time.Duration) *MongoUsers {
	return &MongoUsers{newMongoBase(db, usersCollection, timeout)}
}

func (s *MongoUsers) Create(ctx context.Context, user *models.User) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if user.Favorites == nil {
		user.Favorites = []primitive.ObjectID{}
	}
	res, err := s.coll.InsertOne(ctx, user)
	if err != nil {
		return translate(err)
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		user.ID = id
	}
	return nil
}

func (s *MongoUsers) findOne(ctx context.Context, filter bson.M) (models.User, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var user models.User
	if err := s.coll.FindOne(ctx, filter).Decode(&user); err != nil {
		return models.User{}, translate(err)
	}
	return user, nil
}

func (s *MongoUsers) FindByID(ctx context.Context, id primitive.ObjectID) (models.User, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

func (s *MongoUsers) FindByEmail(ctx context.Context, email string) (models.User, error) {
	return s.findOne(ctx, bson.M{"email": email})
}

func (s *MongoUsers) find(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]models.User, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	cursor, err := s.coll.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	users := make([]models.User, 0)
	if err := cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (s *MongoUsers) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	if len(ids) == 0 {
		return []models.User{}, nil
	}
	return s.find(ctx, bson.M{"_id": bson.M{"$in": ids}})
}

func (s *MongoUsers) List(ctx context.Context) ([]models.User, error) {
	return s.find(ctx, bson.M{})
}

func (s *MongoUsers) Update(ctx context.Context, user models.User) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	res, err := s.coll.UpdateByID(ctx, user.ID, bson.M{
		"$set": bson.M{
			"firstName": user.FirstName,
			"lastName":  user.LastName,
			"email":     user.Email,
			"password":  user.PasswordHash,
			"role":      user.Role,
			"phone":     user.Phone,
			"address":   user.Address,
			"updatedAt": user.UpdatedAt,
		},
	})
	if err != nil {
		return translate(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoUsers) Delete(ctx context.Context, id primitive.ObjectID) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoUsers) updateFavorites(ctx context.Context, userID primitive.ObjectID, op string, productID primitive.ObjectID) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	res, err := s.coll.UpdateByID(ctx, userID, bson.M{
		op:     bson.M{"favorites": productID},
		"$set": bson.M{"updatedAt": time.Now()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoUsers) AddFavorite(ctx context.Context, userID, productID primitive.ObjectID) error {
	return s.updateFavorites(ctx, userID, "$addToSet", productID)
}

func (s *MongoUsers) RemoveFavorite(ctx context.Context, userID, productID primitive.ObjectID) error {
	return s.updateFavorites(ctx, userID, "$pull", productID)
}
