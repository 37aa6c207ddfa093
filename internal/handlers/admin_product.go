package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"afrizone/internal/service"
)

// CreateProduct stores a product sold by the calling admin.
func CreateProduct(catalog *service.Catalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		admin, ok := currentUser(c)
		if !ok {
			return
		}

		var req productRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, validationError(err))
			return
		}

		product, err := catalog.Create(c.Request.Context(), admin.ID, req.toFields())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, product)
	}
}

// UpdateProduct replaces every editable field of the product.
func UpdateProduct(catalog *service.Catalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathObjectID(c, "id", errProductNotFound)
		if !ok {
			return
		}

		var req productRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, validationError(err))
			return
		}

		product, err := catalog.Update(c.Request.Context(), id, req.toFields())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, product)
	}
}

func DeleteProduct(catalog *service.Catalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathObjectID(c, "id", errProductNotFound)
		if !ok {
			return
		}

		if err := catalog.Delete(c.Request.Context(), id); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Produit supprimé"})
	}
}
