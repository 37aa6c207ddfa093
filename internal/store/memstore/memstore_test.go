package memstore

import (
	"context"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"afrizone/internal/models"
	"afrizone/internal/store"
)

func seedProducts(t *testing.T, products *Products, items ...models.Product) []models.Product {
	t.Helper()
	out := make([]models.Product, 0, len(items))
	for _, p := range items {
		p := p
		require.NoError(t, products.Create(context.Background(), &p))
		out = append(out, p)
	}
	return out
}

func TestUsersDuplicateEmail(t *testing.T) {
	users := New().Users()
	ctx := context.Background()

	require.NoError(t, users.Create(ctx, &models.User{Email: "a@x.com"}))
	err := users.Create(ctx, &models.User{Email: "a@x.com"})
	assert.ErrorIs(t, err, store.ErrDuplicateKey)
}

func TestFavoritesAreASet(t *testing.T) {
	users := New().Users()
	ctx := context.Background()
	u := models.User{Email: "a@x.com"}
	require.NoError(t, users.Create(ctx, &u))

	productID := primitive.NewObjectID()
	require.NoError(t, users.AddFavorite(ctx, u.ID, productID))
	require.NoError(t, users.AddFavorite(ctx, u.ID, productID))
	got, err := users.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, []primitive.ObjectID{productID}, got.Favorites)

	require.NoError(t, users.RemoveFavorite(ctx, u.ID, primitive.NewObjectID()))
	require.NoError(t, users.RemoveFavorite(ctx, u.ID, productID))
	got, err = users.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Favorites)

	assert.ErrorIs(t, users.AddFavorite(ctx, primitive.NewObjectID(), productID), store.ErrNotFound)
}

func TestListFiltersSortsAndPages(t *testing.T) {
	products := New().Products()
	seedProducts(t, products,
		models.Product{Name: "Café Touba", Description: "épicé", Category: models.CategoryBeverage, Price: 8},
		models.Product{Name: "Masque Dan", Description: "bois sculpté", Category: models.CategoryArt, Price: 120},
		models.Product{Name: "Bissap", Description: "Infusion d'hibiscus", Category: models.CategoryBeverage, Price: 4},
		models.Product{Name: "Pagne wax", Description: "coton", Category: models.CategoryTextile, Price: 25},
	)
	ctx := context.Background()

	page, total, err := products.List(ctx, store.ProductQuery{Category: "beverage", Sort: store.SortPriceAsc, Limit: 12})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Equal(t, "Bissap", page[0].Name)

	page, total, err = products.List(ctx, store.ProductQuery{Search: "HIBISCUS", Limit: 12})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, "Bissap", page[0].Name)

	page, total, err = products.List(ctx, store.ProductQuery{Category: "all", Skip: 3, Limit: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 4, total)
	require.Len(t, page, 1)
	assert.Equal(t, "Pagne wax", page[0].Name)

	page, _, err = products.List(ctx, store.ProductQuery{Skip: 10, Limit: 2})
	require.NoError(t, err)
	assert.Empty(t, page)
}

func TestTopIsStableOnTies(t *testing.T) {
	products := New().Products()
	seeded := seedProducts(t, products,
		models.Product{Name: "a", AverageRating: 4},
		models.Product{Name: "b", AverageRating: 5},
		models.Product{Name: "c", AverageRating: 4},
		models.Product{Name: "d", AverageRating: 1},
		models.Product{Name: "e", AverageRating: 4},
		models.Product{Name: "f", AverageRating: 3},
	)
	require.NoError(t, products.SoftDelete(context.Background(), seeded[1].ID))

	top, err := products.Top(context.Background(), 5)
	require.NoError(t, err)
	names := make([]string, 0, len(top))
	for _, p := range top {
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{"a", "c", "e", "f", "d"}, names)
}

func TestAddRatingConcurrentKeepsEveryRating(t *testing.T) {
	products := New().Products()
	p := seedProducts(t, products, models.Product{Name: "Karité"})[0]

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, err := products.AddRating(context.Background(), p.ID, models.Rating{
				User:   primitive.NewObjectID(),
				Rating: n%5 + 1,
			})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	got, err := products.FindByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Len(t, got.Ratings, 20)
	assert.InDelta(t, models.AverageRating(got.Ratings), got.AverageRating, 1e-9)
}

func TestAddRatingOncePerUser(t *testing.T) {
	products := New().Products()
	p := seedProducts(t, products, models.Product{Name: "Karité"})[0]
	user := primitive.NewObjectID()

	_, err := products.AddRating(context.Background(), p.ID, models.Rating{User: user, Rating: 5})
	require.NoError(t, err)
	_, err = products.AddRating(context.Background(), p.ID, models.Rating{User: user, Rating: 1})
	assert.ErrorIs(t, err, store.ErrAlreadyRated)

	_, err = products.AddRating(context.Background(), primitive.NewObjectID(), models.Rating{User: user, Rating: 1})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestOrderTransitionGuardsStatus(t *testing.T) {
	orders := New().Orders()
	ctx := context.Background()
	o := models.Order{User: primitive.NewObjectID(), Status: models.StatusCancelled, CreatedAt: time.Now()}
	require.NoError(t, orders.Create(ctx, &o))

	_, err := orders.Transition(ctx, o.ID, []string{models.StatusProcessing}, store.OrderPatch{Status: models.StatusShipped})
	assert.ErrorIs(t, err, store.ErrStateConflict)

	_, err = orders.Transition(ctx, primitive.NewObjectID(), nil, store.OrderPatch{Status: models.StatusShipped})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestOrdersNewestFirst(t *testing.T) {
	orders := New().Orders()
	ctx := context.Background()
	owner := primitive.NewObjectID()
	base := time.Now()

	for i, at := range []time.Time{base.Add(-time.Hour), base, base.Add(-2 * time.Hour)} {
		user := owner
		if i == 1 {
			user = primitive.NewObjectID()
		}
		o := models.Order{User: user, CreatedAt: at}
		require.NoError(t, orders.Create(ctx, &o))
	}

	all, err := orders.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.True(t, all[0].CreatedAt.Equal(base))

	mine, err := orders.ListByUser(ctx, owner)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.True(t, mine[0].CreatedAt.After(mine[1].CreatedAt))
}

func TestProductListNegativeSkip(t *testing.T) {
	products := New().Products()
	seedProducts(t, products, models.Product{Name: "a"}, models.Product{Name: "b"}, models.Product{Name: "c"})

	got, total, err := products.List(context.Background(), store.ProductQuery{Skip: -12, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, got, 2)

	got, _, err = products.List(context.Background(), store.ProductQuery{Skip: 1, Limit: math.MaxInt64})
	require.NoError(t, err)
	assert.Len(t, got, 2)
}
