package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Home is the liveness probe.
func Home() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.String(http.StatusOK, "API Afrizone fonctionnelle !")
	}
}
