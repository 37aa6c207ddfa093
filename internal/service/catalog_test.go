package service

import (
	"context"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"afrizone/internal/apperr"
	"afrizone/internal/models"
	"afrizone/internal/store"
)

func TestAverageRatingFollowsReviews(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	admin := h.admin(t)
	p := h.product(t, admin, "cafe touba", models.CategoryBeverage, 4.5)

	detail, err := h.catalog.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Zero(t, detail.AverageRating)

	scores := []int{5, 2, 4}
	for i, score := range scores {
		reviewer := h.register(t, fmt.Sprintf("r%d", i), fmt.Sprintf("r%d@x.com", i))
		require.NoError(t, h.catalog.AddReview(ctx, p.ID, reviewer.ID, score, "  bon  "))

		detail, err = h.catalog.Get(ctx, p.ID)
		require.NoError(t, err)
		assert.InDelta(t, models.AverageRating(detail.Product.Ratings), detail.AverageRating, 1e-9)
	}
	assert.InDelta(t, 11.0/3.0, detail.AverageRating, 1e-9)
	assert.Equal(t, "bon", detail.Ratings[0].Comment)
}

func TestDuplicateReviewRejected(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	admin := h.admin(t)
	p := h.product(t, admin, "mil", models.CategoryFood, 2)
	user := h.register(t, "Awa", "awa@x.com")

	require.NoError(t, h.catalog.AddReview(ctx, p.ID, user.ID, 4, ""))
	err := h.catalog.AddReview(ctx, p.ID, user.ID, 1, "")
	assert.ErrorIs(t, err, apperr.ErrDuplicateReview)

	detail, err := h.catalog.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Len(t, detail.Ratings, 1)
	assert.Equal(t, 4.0, detail.AverageRating)
}

func TestReviewMissingProduct(t *testing.T) {
	h := newHarness(t)
	user := h.register(t, "Awa", "awa@x.com")

	err := h.catalog.AddReview(context.Background(), primitive.NewObjectID(), user.ID, 3, "")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestGetResolvesReviewerNames(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	admin := h.admin(t)
	p := h.product(t, admin, "bogolan", models.CategoryTextile, 40)
	awa := h.register(t, "Awa", "awa@x.com")
	gone := h.register(t, "Gone", "gone@x.com")

	require.NoError(t, h.catalog.AddReview(ctx, p.ID, awa.ID, 5, "superbe"))
	require.NoError(t, h.catalog.AddReview(ctx, p.ID, gone.ID, 3, ""))
	require.NoError(t, h.users.Delete(ctx, admin.ID, gone.ID))

	detail, err := h.catalog.Get(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, detail.Ratings, 2)
	require.NotNil(t, detail.Ratings[0].User)
	assert.Equal(t, "Awa", detail.Ratings[0].User.FirstName)
	assert.Empty(t, detail.Ratings[0].User.Email)
	assert.Nil(t, detail.Ratings[1].User)
}

func TestPaginationInvariant(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	admin := h.admin(t)
	for i := 0; i < 13; i++ {
		h.product(t, admin, fmt.Sprintf("produit-%02d", i), models.CategoryArt, float64(i))
	}

	for _, limit := range []int64{1, 2, 5, 12, 13, 50} {
		for page := int64(1); page <= 4; page++ {
			res, err := h.catalog.List(ctx, ListParams{Page: page, Limit: limit})
			require.NoError(t, err)
			assert.Equal(t, int64(13), res.Total)
			assert.Equal(t, PageCount(13, limit), res.Pages)
			assert.LessOrEqual(t, int64(len(res.Products)), limit)
		}
	}

	res, err := h.catalog.List(ctx, ListParams{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Page)
	assert.Equal(t, int64(2), res.Pages)
	assert.Len(t, res.Products, 12)
}

func TestListHugePageIsEmpty(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	admin := h.admin(t)
	h.product(t, admin, "Kora", models.CategoryArt, 120)

	for _, limit := range []int64{1, 12, 100} {
		res, err := h.catalog.List(ctx, ListParams{Page: math.MaxInt64, Limit: limit})
		require.NoError(t, err)
		assert.Empty(t, res.Products)
		assert.Equal(t, int64(1), res.Total)
		assert.Equal(t, int64(math.MaxInt64)/limit, res.Page)
	}
}

func TestPageCount(t *testing.T) {
	assert.Equal(t, int64(0), PageCount(0, 12))
	assert.Equal(t, int64(1), PageCount(12, 12))
	assert.Equal(t, int64(2), PageCount(13, 12))
	assert.Equal(t, int64(0), PageCount(5, 0))
}

func TestListFiltersAndSorts(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	admin := h.admin(t)
	h.product(t, admin, "Bissap rouge", models.CategoryBeverage, 3)
	h.product(t, admin, "Gingembre", models.CategoryBeverage, 2)
	h.product(t, admin, "Masque dan", models.CategoryArt, 90)

	res, err := h.catalog.List(ctx, ListParams{Category: "beverage", Sort: store.SortPriceAsc})
	require.NoError(t, err)
	require.Len(t, res.Products, 2)
	assert.Equal(t, "Gingembre", res.Products[0].Name)

	res, err = h.catalog.List(ctx, ListParams{Category: models.CategoryAll, Search: "MASQUE"})
	require.NoError(t, err)
	require.Len(t, res.Products, 1)
	assert.Equal(t, "Masque dan", res.Products[0].Name)

	res, err = h.catalog.List(ctx, ListParams{Sort: "bogus"})
	require.NoError(t, err)
	assert.Equal(t, "Bissap rouge", res.Products[0].Name)
}

func TestUpdateReplacesAllFields(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	admin := h.admin(t)
	p := h.product(t, admin, "beurre", models.CategoryBeauty, 8)
	user := h.register(t, "Awa", "awa@x.com")
	require.NoError(t, h.catalog.AddReview(ctx, p.ID, user.ID, 5, ""))

	updated, err := h.catalog.Update(ctx, p.ID, store.ProductFields{
		Name:     "beurre de karité",
		Price:    9,
		Category: models.CategoryBeauty,
		Origin:   models.Origin{Country: "Burkina Faso"},
	})
	require.NoError(t, err)
	assert.Equal(t, "beurre de karité", updated.Name)
	assert.Empty(t, updated.Description)
	assert.Empty(t, updated.Images)
	assert.Zero(t, updated.Stock)
	assert.Equal(t, 5.0, updated.AverageRating)
	require.NotNil(t, updated.Seller)
	assert.Equal(t, admin.ID, *updated.Seller)

	_, err = h.catalog.Update(ctx, primitive.NewObjectID(), store.ProductFields{Name: "x"})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestDeleteHidesProduct(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	admin := h.admin(t)
	p := h.product(t, admin, "calebasse", models.CategoryArt, 15)

	require.NoError(t, h.catalog.Delete(ctx, p.ID))
	_, err := h.catalog.Get(ctx, p.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.ErrorIs(t, h.catalog.Delete(ctx, p.ID), apperr.ErrNotFound)

	res, err := h.catalog.List(ctx, ListParams{})
	require.NoError(t, err)
	assert.Zero(t, res.Total)
}

func TestTopReturnsFiveBestRated(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	admin := h.admin(t)
	reviewer := h.register(t, "Awa", "awa@x.com")

	scores := []int{3, 5, 1, 4, 5, 2, 4}
	for i, score := range scores {
		p := h.product(t, admin, fmt.Sprintf("p%d", i), models.CategoryFood, 1)
		require.NoError(t, h.catalog.AddReview(ctx, p.ID, reviewer.ID, score, ""))
	}

	top, err := h.catalog.Top(ctx)
	require.NoError(t, err)
	names := make([]string, 0, len(top))
	for _, p := range top {
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{"p1", "p4", "p3", "p6", "p0"}, names)
}

func TestCategoriesCountVisibleProducts(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	admin := h.admin(t)
	h.product(t, admin, "mil", models.CategoryFood, 1)
	h.product(t, admin, "fonio", models.CategoryFood, 1)
	gone := h.product(t, admin, "kente", models.CategoryTextile, 1)
	require.NoError(t, h.catalog.Delete(ctx, gone.ID))

	counts, err := h.catalog.Categories(ctx)
	require.NoError(t, err)
	require.Len(t, counts, len(models.Categories))
	assert.Equal(t, models.CategoryCount{Name: models.CategoryFood, Count: 2}, counts[0])
	assert.Equal(t, models.CategoryCount{Name: models.CategoryTextile, Count: 0}, counts[2])
}
