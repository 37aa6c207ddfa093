package store

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"afrizone/internal/models"
)

// normalizeProductDocument coerces numeric fields that older writers stored
// with a different BSON type before decoding into models.Product.
func normalizeProductDocument(raw bson.M) (models.Product, error) {
	if val, ok := raw["stock"]; ok {
		switch typed := val.(type) {
		case int32:
			raw["stock"] = int(typed)
		case int64:
			raw["stock"] = int(typed)
		case float64:
			raw["stock"] = int(typed)
		case int:
			raw["stock"] = typed
		default:
			raw["stock"] = 0
		}
	} else {
		raw["stock"] = 0
	}

	switch typed := raw["averageRating"].(type) {
	case int32:
		raw["averageRating"] = float64(typed)
	case int64:
		raw["averageRating"] = float64(typed)
	case float64:
	default:
		raw["averageRating"] = 0.0
	}

	data, err := bson.Marshal(raw)
	if err != nil {
		return models.Product{}, err
	}

	var p models.Product
	if err := bson.Unmarshal(data, &p); err != nil {
		return models.Product{}, err
	}
	if p.Ratings == nil {
		p.Ratings = []models.Rating{}
	}
	if p.Images == nil {
		p.Images = models.StringList{}
	}

	return p, nil
}

func decodeProducts(ctx context.Context, cursor *mongo.Cursor) ([]models.Product, error) {
	products := make([]models.Product, 0)

	for cursor.Next(ctx) {
		var raw bson.M
		if err := cursor.Decode(&raw); err != nil {
			return nil, err
		}

		product, err := normalizeProductDocument(raw)
		if err != nil {
			return nil, err
		}

		products = append(products, product)
	}

	if err := cursor.Err(); err != nil {
		return nil, err
	}

	return products, nil
}
