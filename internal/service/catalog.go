package service

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"afrizone/internal/apperr"
	"afrizone/internal/logging"
	"afrizone/internal/metrics"
	"afrizone/internal/models"
	"afrizone/internal/store"
)

const (
	DefaultPage  = 1
	DefaultLimit = 12
	MaxLimit     = 100
	topCount     = 5
)

type ListParams struct {
	Category string
	Search   string
	Sort     string
	Page     int64
	Limit    int64
}

type ProductPage struct {
	Products []models.Product `json:"products"`
	Page     int64            `json:"page"`
	Pages    int64            `json:"pages"`
	Total    int64            `json:"total"`
}

// RatingView is a rating with its author resolved. User is null when the
// author account no longer exists.
type RatingView struct {
	User      *UserSummary `json:"user"`
	Rating    int          `json:"rating"`
	Comment   string       `json:"comment,omitempty"`
	CreatedAt *time.Time   `json:"createdAt,omitempty"`
}

// ProductDetail is a product whose ratings carry author names.
type ProductDetail struct {
	models.Product
	Ratings []RatingView `json:"ratings"`
}

type Catalog struct {
	products store.ProductStore
	users    store.UserStore
	log      *logrus.Entry
	now      Clock
}

func NewCatalog(products store.ProductStore, users store.UserStore, logger logrus.FieldLogger) *Catalog {
	return &Catalog{
		products: products,
		users:    users,
		log:      logging.Area(logger, logging.AreaCatalog),
		now:      defaultClock,
	}
}

// PageCount is ceil(total/limit).
func PageCount(total, limit int64) int64 {
	if limit <= 0 {
		return 0
	}
	return int64(math.Ceil(float64(total) / float64(limit)))
}

func (s *Catalog) List(ctx context.Context, params ListParams) (ProductPage, error) {
	page, limit := params.Page, params.Limit
	if page < 1 {
		page = DefaultPage
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	// (page-1)*limit must stay representable as a skip.
	if maxPage := math.MaxInt64 / limit; page > maxPage {
		page = maxPage
	}

	products, total, err := s.products.List(ctx, store.ProductQuery{
		Category: strings.TrimSpace(params.Category),
		Search:   params.Search,
		Sort:     params.Sort,
		Skip:     (page - 1) * limit,
		Limit:    limit,
	})
	if err != nil {
		return ProductPage{}, apperr.Internal("list products", err)
	}

	return ProductPage{
		Products: products,
		Page:     page,
		Pages:    PageCount(total, limit),
		Total:    total,
	}, nil
}

func (s *Catalog) load(ctx context.Context, id primitive.ObjectID) (models.Product, error) {
	product, err := s.products.FindByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return models.Product{}, errProductNotFound
	}
	if err != nil {
		return models.Product{}, apperr.Internal("find product", err)
	}
	return product, nil
}

// Get returns the product with the names of its reviewers.
func (s *Catalog) Get(ctx context.Context, id primitive.ObjectID) (ProductDetail, error) {
	product, err := s.load(ctx, id)
	if err != nil {
		return ProductDetail{}, err
	}

	authorIDs := make([]primitive.ObjectID, 0, len(product.Ratings))
	for _, r := range product.Ratings {
		authorIDs = append(authorIDs, r.User)
	}
	authors, err := s.users.FindByIDs(ctx, uniqueIDs(authorIDs))
	if err != nil {
		return ProductDetail{}, apperr.Internal("find rating authors", err)
	}
	byID := make(map[primitive.ObjectID]models.User, len(authors))
	for _, u := range authors {
		byID[u.ID] = u
	}

	ratings := make([]RatingView, 0, len(product.Ratings))
	for _, r := range product.Ratings {
		view := RatingView{Rating: r.Rating, Comment: r.Comment}
		if !r.CreatedAt.IsZero() {
			createdAt := r.CreatedAt
			view.CreatedAt = &createdAt
		}
		if author, ok := byID[r.User]; ok {
			view.User = summarizeUser(author, false)
		}
		ratings = append(ratings, view)
	}
	return ProductDetail{Product: product, Ratings: ratings}, nil
}

func (s *Catalog) Create(ctx context.Context, sellerID primitive.ObjectID, fields store.ProductFields) (models.Product, error) {
	now := s.now()
	seller := sellerID
	product := models.Product{
		Name:        strings.TrimSpace(fields.Name),
		Description: fields.Description,
		Price:       fields.Price,
		Category:    fields.Category,
		Origin:      fields.Origin,
		Images:      models.StringList(fields.Images),
		Stock:       fields.Stock,
		Seller:      &seller,
		Ratings:     []models.Rating{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if product.Images == nil {
		product.Images = models.StringList{}
	}

	if err := s.products.Create(ctx, &product); err != nil {
		return models.Product{}, apperr.Internal("create product", err)
	}
	s.log.WithFields(logrus.Fields{"productId": product.ID.Hex(), "category": product.Category}).Info("product created")
	return product, nil
}

// Update replaces every editable field; omitted fields are cleared.
func (s *Catalog) Update(ctx context.Context, id primitive.ObjectID, fields store.ProductFields) (models.Product, error) {
	fields.Name = strings.TrimSpace(fields.Name)
	if fields.Images == nil {
		fields.Images = []string{}
	}

	product, err := s.products.Replace(ctx, id, fields)
	if errors.Is(err, store.ErrNotFound) {
		return models.Product{}, errProductNotFound
	}
	if err != nil {
		return models.Product{}, apperr.Internal("replace product", err)
	}
	s.log.WithField("productId", id.Hex()).Info("product updated")
	return product, nil
}

func (s *Catalog) Delete(ctx context.Context, id primitive.ObjectID) error {
	err := s.products.SoftDelete(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return errProductNotFound
	}
	if err != nil {
		return apperr.Internal("delete product", err)
	}
	s.log.WithField("productId", id.Hex()).Info("product deleted")
	return nil
}

// AddReview records userID's rating. A user reviews a product at most once.
func (s *Catalog) AddReview(ctx context.Context, productID, userID primitive.ObjectID, rating int, comment string) error {
	_, err := s.products.AddRating(ctx, productID, models.Rating{
		User:      userID,
		Rating:    rating,
		Comment:   strings.TrimSpace(comment),
		CreatedAt: s.now(),
	})
	switch {
	case err == nil:
	case errors.Is(err, store.ErrNotFound):
		return errProductNotFound
	case errors.Is(err, store.ErrAlreadyRated):
		return apperr.ErrDuplicateReview
	default:
		return apperr.Internal("add rating", err)
	}

	metrics.RecordReviewSubmitted()
	s.log.WithFields(logrus.Fields{"productId": productID.Hex(), "userId": userID.Hex(), "rating": rating}).Info("review added")
	return nil
}

// Top returns the best rated products; ties keep storage order.
func (s *Catalog) Top(ctx context.Context) ([]models.Product, error) {
	products, err := s.products.Top(ctx, topCount)
	if err != nil {
		return nil, apperr.Internal("top products", err)
	}
	return products, nil
}

// Categories lists every category with its number of visible products.
func (s *Catalog) Categories(ctx context.Context) ([]models.CategoryCount, error) {
	counts, err := s.products.CountByCategory(ctx)
	if err != nil {
		return nil, apperr.Internal("count categories", err)
	}

	out := make([]models.CategoryCount, 0, len(models.Categories))
	for _, category := range models.Categories {
		out = append(out, models.CategoryCount{Name: category, Count: counts[category]})
	}
	return out, nil
}
