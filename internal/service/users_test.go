package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"afrizone/internal/apperr"
	"afrizone/internal/models"
)

func TestRegisterThenLogin(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	reg, err := h.users.Register(ctx, RegisterInput{FirstName: "Awa", LastName: "Ndiaye", Email: "a@x.com", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleCustomer, reg.Role)
	assert.NotEmpty(t, reg.Token)

	res, err := h.users.Login(ctx, "a@x.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, reg.ID, res.ID)
	assert.NotEmpty(t, res.Token)

	_, err = h.users.Login(ctx, "a@x.com", "wrong")
	assert.ErrorIs(t, err, apperr.ErrInvalidCredentials)

	_, err = h.users.Login(ctx, "nobody@x.com", "secret123")
	assert.ErrorIs(t, err, apperr.ErrInvalidCredentials)
}

func TestRegisterStoresDigestNotSecret(t *testing.T) {
	h := newHarness(t)
	user := h.register(t, "Awa", "awa@x.com")

	stored, err := h.db.Users().FindByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.NotEqual(t, "secret123", stored.PasswordHash)
	assert.NotEmpty(t, stored.PasswordHash)
}

func TestRegisterDuplicateEmailIgnoresCase(t *testing.T) {
	h := newHarness(t)
	h.register(t, "Awa", "awa@x.com")

	_, err := h.users.Register(context.Background(), RegisterInput{FirstName: "B", LastName: "C", Email: " AWA@x.com ", Password: "secret123"})
	assert.ErrorIs(t, err, apperr.ErrDuplicateEmail)
}

func TestUpdateProfileMergesFields(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	user := h.register(t, "Awa", "awa@x.com")

	_, err := h.users.UpdateProfile(ctx, user.ID, ProfilePatch{
		Phone:   "+221770000000",
		Address: &models.Address{Street: "12 rue Carnot", City: "Dakar", Country: "Sénégal"},
	})
	require.NoError(t, err)

	view, err := h.users.UpdateProfile(ctx, user.ID, ProfilePatch{
		LastName: "Sow",
		Address:  &models.Address{City: "Thiès"},
	})
	require.NoError(t, err)

	assert.Equal(t, "Awa", view.FirstName)
	assert.Equal(t, "Sow", view.LastName)
	assert.Equal(t, "+221770000000", view.Phone)
	require.NotNil(t, view.Address)
	assert.Equal(t, models.Address{Street: "12 rue Carnot", City: "Thiès", Country: "Sénégal"}, *view.Address)
}

func TestUpdateProfileEmailAndPassword(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.register(t, "Awa", "awa@x.com")
	kofi := h.register(t, "Kofi", "kofi@x.com")

	_, err := h.users.UpdateProfile(ctx, kofi.ID, ProfilePatch{Email: "awa@x.com"})
	assert.ErrorIs(t, err, apperr.ErrDuplicateEmail)

	_, err = h.users.UpdateProfile(ctx, kofi.ID, ProfilePatch{Password: "nouveau456"})
	require.NoError(t, err)

	_, err = h.users.Login(ctx, "kofi@x.com", "secret123")
	assert.ErrorIs(t, err, apperr.ErrInvalidCredentials)
	_, err = h.users.Login(ctx, "kofi@x.com", "nouveau456")
	assert.NoError(t, err)
}

func TestFavoritesAreIdempotent(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	user := h.register(t, "Awa", "awa@x.com")
	p := h.product(t, user, "karite", models.CategoryBeauty, 8)

	require.NoError(t, h.users.AddFavorite(ctx, user.ID, p.ID))
	require.NoError(t, h.users.AddFavorite(ctx, user.ID, p.ID))

	profile, err := h.users.Profile(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, []primitive.ObjectID{p.ID}, profile.Favorites)

	require.NoError(t, h.users.RemoveFavorite(ctx, user.ID, primitive.NewObjectID()))
	require.NoError(t, h.users.RemoveFavorite(ctx, user.ID, p.ID))
	require.NoError(t, h.users.RemoveFavorite(ctx, user.ID, p.ID))

	profile, err = h.users.Profile(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, profile.Favorites)
}

func TestAddFavoriteUnknownProduct(t *testing.T) {
	h := newHarness(t)
	user := h.register(t, "Awa", "awa@x.com")

	err := h.users.AddFavorite(context.Background(), user.ID, primitive.NewObjectID())
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestFavoritesKeepOrderAndSkipDeleted(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	user := h.register(t, "Awa", "awa@x.com")
	a := h.product(t, user, "bissap", models.CategoryBeverage, 3)
	b := h.product(t, user, "pagne", models.CategoryTextile, 25)
	c := h.product(t, user, "masque", models.CategoryArt, 60)

	for _, id := range []primitive.ObjectID{c.ID, a.ID, b.ID} {
		require.NoError(t, h.users.AddFavorite(ctx, user.ID, id))
	}
	require.NoError(t, h.catalog.Delete(ctx, a.ID))

	favorites, err := h.users.Favorites(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, favorites, 2)
	assert.Equal(t, "masque", favorites[0].Name)
	assert.Equal(t, "pagne", favorites[1].Name)
}

func TestAdminUpdateUser(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	user := h.register(t, "Awa", "awa@x.com")

	_, err := h.users.Update(ctx, user.ID, UserPatch{Role: "superuser"})
	assert.ErrorIs(t, err, apperr.Validation(""))

	view, err := h.users.Update(ctx, user.ID, UserPatch{Role: models.RoleAdmin, Phone: "+225"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, view.Role)
	assert.Equal(t, "Awa", view.FirstName)
	assert.Nil(t, view.Address)

	_, err = h.users.Update(ctx, primitive.NewObjectID(), UserPatch{FirstName: "X"})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestAdminDeleteUser(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	admin := h.admin(t)
	user := h.register(t, "Awa", "awa@x.com")

	assert.ErrorIs(t, h.users.Delete(ctx, admin.ID, admin.ID), apperr.ErrForbidden)

	require.NoError(t, h.users.Delete(ctx, admin.ID, user.ID))
	_, err := h.users.Get(ctx, user.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	assert.ErrorIs(t, h.users.Delete(ctx, admin.ID, user.ID), apperr.ErrNotFound)

	users, err := h.users.List(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}
