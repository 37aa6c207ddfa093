package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"afrizone/internal/apperr"
	"afrizone/internal/logging"
	"afrizone/internal/models"
	"afrizone/internal/service"
)

var errProductNotFound = apperr.NotFound("Produit non trouvé")

type addressRequest struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	Country    string `json:"country"`
	PostalCode string `json:"postalCode"`
}

func (r addressRequest) toModel() models.Address {
	return models.Address{Street: r.Street, City: r.City, Country: r.Country, PostalCode: r.PostalCode}
}

type profileRequest struct {
	FirstName string          `json:"firstName"`
	LastName  string          `json:"lastName"`
	Email     string          `json:"email" binding:"omitempty,email"`
	Phone     string          `json:"phone"`
	Password  string          `json:"password" binding:"omitempty,min=6"`
	Address   *addressRequest `json:"address"`
}

func GetProfile(users *service.Users) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			return
		}

		profile, err := users.Profile(c.Request.Context(), user.ID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, profile)
	}
}

func UpdateProfile(users *service.Users) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /api/auth/profile"

		user, ok := currentUser(c)
		if !ok {
			return
		}

		var req profileRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, validationError(err))
			return
		}

		patch := service.ProfilePatch{
			FirstName: req.FirstName,
			LastName:  req.LastName,
			Email:     req.Email,
			Phone:     req.Phone,
			Password:  req.Password,
		}
		if req.Address != nil {
			address := req.Address.toModel()
			patch.Address = &address
		}

		view, err := users.UpdateProfile(c.Request.Context(), user.ID, patch)
		if err != nil {
			respondError(c, err)
			return
		}

		routeLog(c, logging.AreaUser, route).WithField("userId", user.ID.Hex()).Info("profile updated")
		c.JSON(http.StatusOK, view)
	}
}

func GetFavorites(users *service.Users) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			return
		}

		products, err := users.Favorites(c.Request.Context(), user.ID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, products)
	}
}

func AddFavorite(users *service.Users) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			return
		}
		productID, ok := pathObjectID(c, "id", errProductNotFound)
		if !ok {
			return
		}

		if err := users.AddFavorite(c.Request.Context(), user.ID, productID); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Produit ajouté aux favoris"})
	}
}

// RemoveFavorite accepts any id: removing something that is not a favorite
// is a successful no-op.
func RemoveFavorite(users *service.Users) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			return
		}
		productID, ok := pathObjectID(c, "id", errProductNotFound)
		if !ok {
			return
		}

		if err := users.RemoveFavorite(c.Request.Context(), user.ID, productID); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Produit supprimé des favoris"})
	}
}
