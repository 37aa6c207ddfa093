package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Origin is where a product comes from. Country is mandatory.
type Origin struct {
	Country string `bson:"country" json:"country"`
	Region  string `bson:"region,omitempty" json:"region,omitempty"`
}

// Rating is a single review left by a user. A user rates a product at most once.
type Rating struct {
	User      primitive.ObjectID `bson:"user" json:"user"`
	Rating    int                `bson:"rating" json:"rating"`
	Comment   string             `bson:"comment,omitempty" json:"comment,omitempty"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

type Product struct {
	ID            primitive.ObjectID  `bson:"_id,omitempty" json:"_id"`
	Name          string              `bson:"name" json:"name"`
	Description   string              `bson:"description" json:"description"`
	Price         float64             `bson:"price" json:"price"`
	Category      Category            `bson:"category" json:"category"`
	Origin        Origin              `bson:"origin" json:"origin"`
	Images        StringList          `bson:"images" json:"images"`
	Stock         int                 `bson:"stock" json:"stock"`
	Seller        *primitive.ObjectID `bson:"seller,omitempty" json:"seller,omitempty"`
	Ratings       []Rating            `bson:"ratings" json:"ratings"`
	AverageRating float64             `bson:"averageRating" json:"averageRating"`
	IsDeleted     bool                `bson:"isDeleted" json:"-"`
	DeletedAt     *time.Time          `bson:"deletedAt,omitempty" json:"-"`
	CreatedAt     time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time           `bson:"updatedAt" json:"updatedAt"`
}

// RatedBy reports whether userID already has a rating on the product.
func (p Product) RatedBy(userID primitive.ObjectID) bool {
	for _, r := range p.Ratings {
		if r.User == userID {
			return true
		}
	}
	return false
}

// AverageRating is the arithmetic mean of the rating values, 0 when there are none.
func AverageRating(ratings []Rating) float64 {
	if len(ratings) == 0 {
		return 0
	}
	sum := 0
	for _, r := range ratings {
		sum += r.Rating
	}
	return float64(sum) / float64(len(ratings))
}
