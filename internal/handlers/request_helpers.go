package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"afrizone/internal/apperr"
	"afrizone/internal/database"
	"afrizone/internal/logging"
	"afrizone/internal/middleware"
	"afrizone/internal/models"
)

func routeLog(c *gin.Context, area, route string) *logrus.Entry {
	return logging.Area(middleware.Logger(c), area).WithField("route", route)
}

func respondError(c *gin.Context, err error) {
	middleware.AbortWithError(c, err)
}

// pathObjectID parses the :name path parameter. An id that is not a valid
// ObjectID cannot resolve, so it is answered with notFound.
func pathObjectID(c *gin.Context, name string, notFound error) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param(name))
	if err != nil {
		respondError(c, notFound)
		return primitive.NilObjectID, false
	}
	return id, true
}

// currentUser returns the authenticated account, answering 401 when the
// route was mounted without Protect.
func currentUser(c *gin.Context) (models.User, bool) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		respondError(c, apperr.ErrUnauthenticated)
		return models.User{}, false
	}
	return user, true
}

// Health reports 503 while the primary is unreachable.
func Health(client database.Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /healthz"

		if err := database.Ping(c.Request.Context(), client); err != nil {
			routeLog(c, logging.AreaDB, route).WithError(err).Warn("database unavailable")
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "database": "down"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "database": "up"})
	}
}
