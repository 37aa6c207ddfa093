package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"afrizone/internal/auth"
	"afrizone/internal/logging"
	"afrizone/internal/models"
	"afrizone/internal/store"
	"afrizone/internal/store/memstore"
)

// tickingClock advances one second per call so creation order is observable.
type tickingClock struct {
	mu  sync.Mutex
	cur time.Time
}

func (c *tickingClock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cur = c.cur.Add(time.Second)
	return c.cur
}

type harness struct {
	db      *memstore.Store
	users   *Users
	catalog *Catalog
	orders  *Orders
}

func newHarness(t *testing.T) harness {
	t.Helper()

	db := memstore.New()
	clock := &tickingClock{cur: time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)}
	logger := logging.Discard()

	users := NewUsers(db.Users(), db.Products(), auth.NewTokenIssuer("service-secret", time.Hour), auth.NewHasher(bcrypt.MinCost), logger)
	catalog := NewCatalog(db.Products(), db.Users(), logger)
	orders := NewOrders(db.Orders(), db.Users(), db.Products(), logger)
	users.now, catalog.now, orders.now = clock.now, clock.now, clock.now

	return harness{db: db, users: users, catalog: catalog, orders: orders}
}

func (h harness) register(t *testing.T, first, email string) models.User {
	t.Helper()
	res, err := h.users.Register(context.Background(), RegisterInput{
		FirstName: first,
		LastName:  "Diallo",
		Email:     email,
		Password:  "secret123",
	})
	require.NoError(t, err)
	user, err := h.users.Get(context.Background(), res.ID)
	require.NoError(t, err)
	return user
}

func (h harness) admin(t *testing.T) models.User {
	t.Helper()
	user := h.register(t, "Admin", "admin@afrizone.test")
	_, err := h.users.Update(context.Background(), user.ID, UserPatch{Role: models.RoleAdmin})
	require.NoError(t, err)
	user.Role = models.RoleAdmin
	return user
}

func (h harness) product(t *testing.T, seller models.User, name string, category models.Category, price float64) models.Product {
	t.Helper()
	p, err := h.catalog.Create(context.Background(), seller.ID, store.ProductFields{
		Name:        name,
		Description: "Produit artisanal " + name,
		Price:       price,
		Category:    category,
		Origin:      models.Origin{Country: "Sénégal"},
		Images:      []string{name + ".jpg"},
		Stock:       10,
	})
	require.NoError(t, err)
	return p
}
