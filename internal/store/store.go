// Package store persists users, products and orders.
package store

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"afrizone/internal/models"
)

var (
	ErrNotFound     = errors.New("document not found")
	ErrDuplicateKey = errors.New("duplicate key")
	ErrAlreadyRated = errors.New("product already rated by user")
	// ErrStateConflict means the document exists but its current status does
	// not allow the requested transition.
	ErrStateConflict = errors.New("status does not allow update")
)

const (
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
	SortRating    = "rating"
	SortNewest    = "newest"
)

// ProductQuery filters and pages a product listing. An empty Category or
// Search disables that filter; an unknown Sort keeps storage order.
type ProductQuery struct {
	Category string
	Search   string
	Sort     string
	Skip     int64
	Limit    int64
}

// ProductFields are the admin-editable product fields. Replace overwrites all of them.
type ProductFields struct {
	Name        string
	Description string
	Price       float64
	Category    models.Category
	Origin      models.Origin
	Images      []string
	Stock       int
}

// OrderPatch lists the order fields a status transition may set.
type OrderPatch struct {
	Status        string
	PaymentStatus string
	PaidAt        *time.Time
	ShippedAt     *time.Time
	DeliveredAt   *time.Time
	CancelledAt   *time.Time
}

type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id primitive.ObjectID) (models.User, error)
	FindByEmail(ctx context.Context, email string) (models.User, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error)
	List(ctx context.Context) ([]models.User, error)
	// Update writes the profile fields of user (everything except favorites).
	Update(ctx context.Context, user models.User) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	AddFavorite(ctx context.Context, userID, productID primitive.ObjectID) error
	RemoveFavorite(ctx context.Context, userID, productID primitive.ObjectID) error
}

type ProductStore interface {
	Create(ctx context.Context, product *models.Product) error
	FindByID(ctx context.Context, id primitive.ObjectID) (models.Product, error)
	// FindByIDs returns matches in no particular order; deleted products are
	// included only when includeDeleted is set.
	FindByIDs(ctx context.Context, ids []primitive.ObjectID, includeDeleted bool) ([]models.Product, error)
	List(ctx context.Context, q ProductQuery) ([]models.Product, int64, error)
	Top(ctx context.Context, n int64) ([]models.Product, error)
	Replace(ctx context.Context, id primitive.ObjectID, fields ProductFields) (models.Product, error)
	SoftDelete(ctx context.Context, id primitive.ObjectID) error
	// AddRating appends rating and recomputes averageRating in one write.
	AddRating(ctx context.Context, id primitive.ObjectID, rating models.Rating) (models.Product, error)
	CountByCategory(ctx context.Context) (map[models.Category]int64, error)
}

type OrderStore interface {
	Create(ctx context.Context, order *models.Order) error
	FindByID(ctx context.Context, id primitive.ObjectID) (models.Order, error)
	ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error)
	List(ctx context.Context) ([]models.Order, error)
	// Transition applies patch only while the order status is one of from.
	Transition(ctx context.Context, id primitive.ObjectID, from []string, patch OrderPatch) (models.Order, error)
}
