package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"afrizone/internal/logging"
	"afrizone/internal/service"
)

// GetProducts lists the catalog with optional category, search and sort.
func GetProducts(catalog *service.Catalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/products"

		page, limit := parsePaginationParams(c.Query("page"), c.Query("limit"))
		routeLog(c, logging.AreaCatalog, route).
			WithField("page", page).
			WithField("limit", limit).
			WithField("category", c.Query("category")).
			Debug("hit")

		res, err := catalog.List(c.Request.Context(), service.ListParams{
			Category: c.Query("category"),
			Search:   c.Query("search"),
			Sort:     c.Query("sort"),
			Page:     page,
			Limit:    limit,
		})
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, res)
	}
}

func GetProduct(catalog *service.Catalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathObjectID(c, "id", errProductNotFound)
		if !ok {
			return
		}

		product, err := catalog.Get(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, product)
	}
}

func GetTopProducts(catalog *service.Catalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		products, err := catalog.Top(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, products)
	}
}

func AddReview(catalog *service.Catalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			return
		}
		id, ok := pathObjectID(c, "id", errProductNotFound)
		if !ok {
			return
		}

		var req reviewRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, validationError(err))
			return
		}

		if err := catalog.AddReview(c.Request.Context(), id, user.ID, req.Rating, req.Comment); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"message": "Évaluation ajoutée"})
	}
}
