package store

import (
	"context"
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"afrizone/internal/models"
)

type MongoProducts struct {
	mongoBase
}

var _ ProductStore = (*MongoProducts)(nil)

func NewMongoProducts(db *mongo.Database, timeout time.Duration) *MongoProducts {
	return &MongoProducts{newMongoBase(db, productsCollection, timeout)}
}

func visible(filter bson.M) bson.M {
	filter["isDeleted"] = bson.M{"$ne": true}
	return filter
}

func listFilter(q ProductQuery) bson.M {
	filter := visible(bson.M{})
	if q.Category != "" && q.Category != models.CategoryAll {
		filter["category"] = q.Category
	}
	if search := strings.TrimSpace(q.Search); search != "" {
		pattern := regexp.QuoteMeta(search)
		filter["$or"] = []bson.M{
			{"name": bson.M{"$regex": pattern, "$options": "i"}},
			{"description": bson.M{"$regex": pattern, "$options": "i"}},
		}
	}
	return filter
}

func listSort(sort string) bson.D {
	switch sort {
	case SortPriceAsc:
		return bson.D{{Key: "price", Value: 1}, {Key: "_id", Value: 1}}
	case SortPriceDesc:
		return bson.D{{Key: "price", Value: -1}, {Key: "_id", Value: 1}}
	case SortRating:
		return bson.D{{Key: "averageRating", Value: -1}, {Key: "_id", Value: 1}}
	case SortNewest:
		return bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}
	default:
		return nil
	}
}

func (s *MongoProducts) Create(ctx context.Context, product *models.Product) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if product.Ratings == nil {
		product.Ratings = []models.Rating{}
	}
	res, err := s.coll.InsertOne(ctx, product)
	if err != nil {
		return translate(err)
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		product.ID = id
	}
	return nil
}

func (s *MongoProducts) FindByID(ctx context.Context, id primitive.ObjectID) (models.Product, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var raw bson.M
	if err := s.coll.FindOne(ctx, visible(bson.M{"_id": id})).Decode(&raw); err != nil {
		return models.Product{}, translate(err)
	}
	return normalizeProductDocument(raw)
}

func (s *MongoProducts) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.Product, error) {
	cursor, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	return decodeProducts(ctx, cursor)
}

func (s *MongoProducts) FindByIDs(ctx context.Context, ids []primitive.ObjectID, includeDeleted bool) ([]models.Product, error) {
	if len(ids) == 0 {
		return []models.Product{}, nil
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	filter := bson.M{"_id": bson.M{"$in": ids}}
	if !includeDeleted {
		filter = visible(filter)
	}
	return s.find(ctx, filter, options.Find())
}

func (s *MongoProducts) List(ctx context.Context, q ProductQuery) ([]models.Product, int64, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	filter := listFilter(q)
	total, err := s.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().SetSkip(q.Skip).SetLimit(q.Limit)
	if sort := listSort(q.Sort); sort != nil {
		opts.SetSort(sort)
	}
	products, err := s.find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

func (s *MongoProducts) Top(ctx context.Context, n int64) ([]models.Product, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "averageRating", Value: -1}, {Key: "_id", Value: 1}}).
		SetLimit(n)
	return s.find(ctx, visible(bson.M{}), opts)
}

func (s *MongoProducts) Replace(ctx context.Context, id primitive.ObjectID, fields ProductFields) (models.Product, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	images := fields.Images
	if images == nil {
		images = []string{}
	}
	update := bson.M{"$set": bson.M{
		"name":        fields.Name,
		"description": fields.Description,
		"price":       fields.Price,
		"category":    fields.Category,
		"origin":      fields.Origin,
		"images":      images,
		"stock":       fields.Stock,
		"updatedAt":   time.Now(),
	}}

	var raw bson.M
	err := s.coll.FindOneAndUpdate(ctx, visible(bson.M{"_id": id}), update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&raw)
	if err != nil {
		return models.Product{}, translate(err)
	}
	return normalizeProductDocument(raw)
}

func (s *MongoProducts) SoftDelete(ctx context.Context, id primitive.ObjectID) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	now := time.Now()
	res, err := s.coll.UpdateOne(ctx, visible(bson.M{"_id": id}), bson.M{"$set": bson.M{
		"isDeleted": true,
		"deletedAt": now,
		"updatedAt": now,
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// AddRating runs a single conditional pipeline update so concurrent reviews
// cannot lose each other's ratings or skew the average.
func (s *MongoProducts) AddRating(ctx context.Context, id primitive.ObjectID, rating models.Rating) (models.Product, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	filter := visible(bson.M{
		"_id":          id,
		"ratings.user": bson.M{"$ne": rating.User},
	})
	update := mongo.Pipeline{
		{{Key: "$set", Value: bson.M{
			"ratings": bson.M{"$concatArrays": bson.A{
				bson.M{"$ifNull": bson.A{"$ratings", bson.A{}}},
				bson.M{"$literal": bson.A{rating}},
			}},
		}}},
		{{Key: "$set", Value: bson.M{
			"averageRating": bson.M{"$ifNull": bson.A{bson.M{"$avg": "$ratings.rating"}, 0}},
			"updatedAt":     time.Now(),
		}}},
	}

	var raw bson.M
	err := s.coll.FindOneAndUpdate(ctx, filter, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&raw)
	if err == mongo.ErrNoDocuments {
		if _, findErr := s.FindByID(ctx, id); findErr != nil {
			return models.Product{}, findErr
		}
		return models.Product{}, ErrAlreadyRated
	}
	if err != nil {
		return models.Product{}, err
	}
	return normalizeProductDocument(raw)
}

func (s *MongoProducts) CountByCategory(ctx context.Context) (map[models.Category]int64, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	cursor, err := s.coll.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$match", Value: visible(bson.M{})}},
		{{Key: "$group", Value: bson.M{"_id": "$category", "count": bson.M{"$sum": 1}}}},
	})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Category models.Category `bson:"_id"`
		Count    int64           `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}

	counts := make(map[models.Category]int64, len(rows))
	for _, row := range rows {
		counts[row.Category] = row.Count
	}
	return counts, nil
}
