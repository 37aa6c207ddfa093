package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"afrizone/internal/logging"
	"afrizone/internal/service"
)

func GetCategories(catalog *service.Catalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/products/categories"

		categories, err := catalog.Categories(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}

		routeLog(c, logging.AreaCatalog, route).Debugf("returning %d categories", len(categories))
		c.JSON(http.StatusOK, categories)
	}
}
