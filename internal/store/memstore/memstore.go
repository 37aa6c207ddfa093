// Package memstore is an in-memory implementation of the store interfaces. It
// is safe for concurrent use and is intended for tests and local development.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"afrizone/internal/models"
	"afrizone/internal/store"
)

// Store keeps every collection in insertion order, which stands in for
// MongoDB's natural order.
type Store struct {
	mu       sync.RWMutex
	users    []models.User
	products []models.Product
	orders   []models.Order
	now      func() time.Time
}

func New() *Store {
	return &Store{now: time.Now}
}

func (s *Store) Users() *Users       { return &Users{s} }
func (s *Store) Products() *Products { return &Products{s} }
func (s *Store) Orders() *Orders     { return &Orders{s} }

type Users struct{ s *Store }
type Products struct{ s *Store }
type Orders struct{ s *Store }

var _ store.UserStore = (*Users)(nil)
var _ store.ProductStore = (*Products)(nil)
var _ store.OrderStore = (*Orders)(nil)

func cloneUser(u models.User) models.User {
	u.Favorites = append([]primitive.ObjectID{}, u.Favorites...)
	return u
}

func cloneProduct(p models.Product) models.Product {
	p.Images = append(models.StringList{}, p.Images...)
	p.Ratings = append([]models.Rating{}, p.Ratings...)
	return p
}

func cloneOrder(o models.Order) models.Order {
	o.Items = append([]models.OrderItem{}, o.Items...)
	return o
}

func (s *Store) userIndex(match func(models.User) bool) int {
	for i, u := range s.users {
		if match(u) {
			return i
		}
	}
	return -1
}

func (s *Store) productIndex(id primitive.ObjectID) int {
	for i, p := range s.products {
		if p.ID == id && !p.IsDeleted {
			return i
		}
	}
	return -1
}

func (s *Store) orderIndex(id primitive.ObjectID) int {
	for i, o := range s.orders {
		if o.ID == id {
			return i
		}
	}
	return -1
}

// Users

func (r *Users) Create(_ context.Context, user *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.s.userIndex(func(u models.User) bool { return u.Email == user.Email }) >= 0 {
		return store.ErrDuplicateKey
	}
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	if user.Favorites == nil {
		user.Favorites = []primitive.ObjectID{}
	}
	r.s.users = append(r.s.users, cloneUser(*user))
	return nil
}

func (r *Users) FindByID(_ context.Context, id primitive.ObjectID) (models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	i := r.s.userIndex(func(u models.User) bool { return u.ID == id })
	if i < 0 {
		return models.User{}, store.ErrNotFound
	}
	return cloneUser(r.s.users[i]), nil
}

func (r *Users) FindByEmail(_ context.Context, email string) (models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	i := r.s.userIndex(func(u models.User) bool { return u.Email == email })
	if i < 0 {
		return models.User{}, store.ErrNotFound
	}
	return cloneUser(r.s.users[i]), nil
}

func (r *Users) FindByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	want := make(map[primitive.ObjectID]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}
	out := make([]models.User, 0, len(ids))
	for _, u := range r.s.users {
		if _, ok := want[u.ID]; ok {
			out = append(out, cloneUser(u))
		}
	}
	return out, nil
}

func (r *Users) List(_ context.Context) ([]models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]models.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		out = append(out, cloneUser(u))
	}
	return out, nil
}

func (r *Users) Update(_ context.Context, user models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	i := r.s.userIndex(func(u models.User) bool { return u.ID == user.ID })
	if i < 0 {
		return store.ErrNotFound
	}
	if r.s.userIndex(func(u models.User) bool { return u.Email == user.Email && u.ID != user.ID }) >= 0 {
		return store.ErrDuplicateKey
	}
	user.Favorites = r.s.users[i].Favorites
	user.CreatedAt = r.s.users[i].CreatedAt
	r.s.users[i] = cloneUser(user)
	return nil
}

func (r *Users) Delete(_ context.Context, id primitive.ObjectID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	i := r.s.userIndex(func(u models.User) bool { return u.ID == id })
	if i < 0 {
		return store.ErrNotFound
	}
	r.s.users = append(r.s.users[:i], r.s.users[i+1:]...)
	return nil
}

func (r *Users) AddFavorite(_ context.Context, userID, productID primitive.ObjectID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	i := r.s.userIndex(func(u models.User) bool { return u.ID == userID })
	if i < 0 {
		return store.ErrNotFound
	}
	if !r.s.users[i].HasFavorite(productID) {
		r.s.users[i].Favorites = append(r.s.users[i].Favorites, productID)
	}
	r.s.users[i].UpdatedAt = r.s.now()
	return nil
}

func (r *Users) RemoveFavorite(_ context.Context, userID, productID primitive.ObjectID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	i := r.s.userIndex(func(u models.User) bool { return u.ID == userID })
	if i < 0 {
		return store.ErrNotFound
	}
	kept := make([]primitive.ObjectID, 0, len(r.s.users[i].Favorites))
	for _, id := range r.s.users[i].Favorites {
		if id != productID {
			kept = append(kept, id)
		}
	}
	r.s.users[i].Favorites = kept
	r.s.users[i].UpdatedAt = r.s.now()
	return nil
}

// Products

func (r *Products) Create(_ context.Context, product *models.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if product.ID.IsZero() {
		product.ID = primitive.NewObjectID()
	}
	if product.Ratings == nil {
		product.Ratings = []models.Rating{}
	}
	r.s.products = append(r.s.products, cloneProduct(*product))
	return nil
}

func (r *Products) FindByID(_ context.Context, id primitive.ObjectID) (models.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	i := r.s.productIndex(id)
	if i < 0 {
		return models.Product{}, store.ErrNotFound
	}
	return cloneProduct(r.s.products[i]), nil
}

func (r *Products) FindByIDs(_ context.Context, ids []primitive.ObjectID, includeDeleted bool) ([]models.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	want := make(map[primitive.ObjectID]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}
	out := make([]models.Product, 0, len(ids))
	for _, p := range r.s.products {
		if _, ok := want[p.ID]; ok && (includeDeleted || !p.IsDeleted) {
			out = append(out, cloneProduct(p))
		}
	}
	return out, nil
}

func matches(p models.Product, q store.ProductQuery) bool {
	if p.IsDeleted {
		return false
	}
	if q.Category != "" && q.Category != models.CategoryAll && string(p.Category) != q.Category {
		return false
	}
	if search := strings.ToLower(strings.TrimSpace(q.Search)); search != "" {
		return strings.Contains(strings.ToLower(p.Name), search) ||
			strings.Contains(strings.ToLower(p.Description), search)
	}
	return true
}

func sortProducts(products []models.Product, key string) {
	var less func(a, b models.Product) bool
	switch key {
	case store.SortPriceAsc:
		less = func(a, b models.Product) bool { return a.Price < b.Price }
	case store.SortPriceDesc:
		less = func(a, b models.Product) bool { return a.Price > b.Price }
	case store.SortRating:
		less = func(a, b models.Product) bool { return a.AverageRating > b.AverageRating }
	case store.SortNewest:
		less = func(a, b models.Product) bool { return a.CreatedAt.After(b.CreatedAt) }
	default:
		return
	}
	sort.SliceStable(products, func(i, j int) bool { return less(products[i], products[j]) })
}

func (r *Products) List(_ context.Context, q store.ProductQuery) ([]models.Product, int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	matched := make([]models.Product, 0)
	for _, p := range r.s.products {
		if matches(p, q) {
			matched = append(matched, cloneProduct(p))
		}
	}
	sortProducts(matched, q.Sort)

	total := int64(len(matched))
	start := q.Skip
	if start < 0 {
		start = 0
	}
	if start > total {
		start = total
	}
	end := total
	if q.Limit > 0 && q.Limit < end-start {
		end = start + q.Limit
	}
	return matched[start:end], total, nil
}

func (r *Products) Top(ctx context.Context, n int64) ([]models.Product, error) {
	products, _, err := r.List(ctx, store.ProductQuery{Sort: store.SortRating, Limit: n})
	return products, err
}

func (r *Products) Replace(_ context.Context, id primitive.ObjectID, fields store.ProductFields) (models.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	i := r.s.productIndex(id)
	if i < 0 {
		return models.Product{}, store.ErrNotFound
	}
	p := &r.s.products[i]
	p.Name = fields.Name
	p.Description = fields.Description
	p.Price = fields.Price
	p.Category = fields.Category
	p.Origin = fields.Origin
	p.Images = append(models.StringList{}, fields.Images...)
	p.Stock = fields.Stock
	p.UpdatedAt = r.s.now()
	return cloneProduct(*p), nil
}

func (r *Products) SoftDelete(_ context.Context, id primitive.ObjectID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	i := r.s.productIndex(id)
	if i < 0 {
		return store.ErrNotFound
	}
	now := r.s.now()
	r.s.products[i].IsDeleted = true
	r.s.products[i].DeletedAt = &now
	r.s.products[i].UpdatedAt = now
	return nil
}

func (r *Products) AddRating(_ context.Context, id primitive.ObjectID, rating models.Rating) (models.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	i := r.s.productIndex(id)
	if i < 0 {
		return models.Product{}, store.ErrNotFound
	}
	p := &r.s.products[i]
	if p.RatedBy(rating.User) {
		return models.Product{}, store.ErrAlreadyRated
	}
	p.Ratings = append(p.Ratings, rating)
	p.AverageRating = models.AverageRating(p.Ratings)
	p.UpdatedAt = r.s.now()
	return cloneProduct(*p), nil
}

func (r *Products) CountByCategory(_ context.Context) (map[models.Category]int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	counts := make(map[models.Category]int64)
	for _, p := range r.s.products {
		if !p.IsDeleted {
			counts[p.Category]++
		}
	}
	return counts, nil
}

// Orders

func (r *Orders) Create(_ context.Context, order *models.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if order.ID.IsZero() {
		order.ID = primitive.NewObjectID()
	}
	r.s.orders = append(r.s.orders, cloneOrder(*order))
	return nil
}

func (r *Orders) FindByID(_ context.Context, id primitive.ObjectID) (models.Order, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	i := r.s.orderIndex(id)
	if i < 0 {
		return models.Order{}, store.ErrNotFound
	}
	return cloneOrder(r.s.orders[i]), nil
}

func (r *Orders) newestFirst(keep func(models.Order) bool) []models.Order {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]models.Order, 0)
	for i := len(r.s.orders) - 1; i >= 0; i-- {
		if keep(r.s.orders[i]) {
			out = append(out, cloneOrder(r.s.orders[i]))
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (r *Orders) ListByUser(_ context.Context, userID primitive.ObjectID) ([]models.Order, error) {
	return r.newestFirst(func(o models.Order) bool { return o.User == userID }), nil
}

func (r *Orders) List(_ context.Context) ([]models.Order, error) {
	return r.newestFirst(func(models.Order) bool { return true }), nil
}

func (r *Orders) Transition(_ context.Context, id primitive.ObjectID, from []string, patch store.OrderPatch) (models.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	i := r.s.orderIndex(id)
	if i < 0 {
		return models.Order{}, store.ErrNotFound
	}
	o := &r.s.orders[i]
	if len(from) > 0 && !contains(from, o.Status) {
		return models.Order{}, store.ErrStateConflict
	}
	if patch.Status != "" {
		o.Status = patch.Status
	}
	if patch.PaymentStatus != "" {
		o.PaymentStatus = patch.PaymentStatus
	}
	if patch.PaidAt != nil {
		o.PaidAt = patch.PaidAt
	}
	if patch.ShippedAt != nil {
		o.ShippedAt = patch.ShippedAt
	}
	if patch.DeliveredAt != nil {
		o.DeliveredAt = patch.DeliveredAt
	}
	if patch.CancelledAt != nil {
		o.CancelledAt = patch.CancelledAt
	}
	return cloneOrder(*o), nil
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}
