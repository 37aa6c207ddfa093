package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"afrizone/internal/models"
	"afrizone/internal/service"
)

type transitionFunc func(ctx context.Context, requester models.User, id primitive.ObjectID) (models.Order, error)

// orderTransition wraps a status change of the order named by :id and
// answers with message on success.
func orderTransition(apply transitionFunc, message string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			return
		}
		id, ok := pathObjectID(c, "id", errOrderNotFound)
		if !ok {
			return
		}

		order, err := apply(c.Request.Context(), user, id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": message, "order": order})
	}
}

func ListOrders(orders *service.Orders) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := orders.List(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, list)
	}
}

func DeliverOrder(orders *service.Orders) gin.HandlerFunc {
	return orderTransition(orders.Deliver, "Commande livrée")
}

func ShipOrder(orders *service.Orders) gin.HandlerFunc {
	return orderTransition(orders.Ship, "Commande expédiée")
}
