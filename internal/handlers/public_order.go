package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"afrizone/internal/apperr"
	"afrizone/internal/logging"
	"afrizone/internal/service"
)

var errOrderNotFound = apperr.NotFound("Commande non trouvée")

type orderItemRequest struct {
	Product  string   `json:"product" binding:"required,objectid"`
	Quantity int      `json:"quantity" binding:"required,min=1"`
	Price    *float64 `json:"price" binding:"required,min=0"`
}

// orderRequest leaves items optional so that a missing list is reported as an
// empty order rather than a validation failure.
type orderRequest struct {
	Items           []orderItemRequest `json:"items" binding:"dive"`
	ShippingAddress addressRequest     `json:"shippingAddress"`
	PaymentMethod   string             `json:"paymentMethod" binding:"required,oneof=mobile_money credit_card on_delivery"`
}

func (r orderRequest) toInput() service.OrderInput {
	items := make([]service.OrderItemInput, 0, len(r.Items))
	for _, item := range r.Items {
		productID, _ := primitive.ObjectIDFromHex(item.Product)
		items = append(items, service.OrderItemInput{
			Product:  productID,
			Quantity: item.Quantity,
			Price:    *item.Price,
		})
	}
	return service.OrderInput{
		Items:           items,
		ShippingAddress: r.ShippingAddress.toModel(),
		PaymentMethod:   r.PaymentMethod,
	}
}

func CreateOrder(orders *service.Orders) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/orders"

		user, ok := currentUser(c)
		if !ok {
			return
		}

		var req orderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, validationError(err))
			return
		}
		if len(req.Items) == 0 {
			routeLog(c, logging.AreaOrder, route).WithField("userId", user.ID.Hex()).Info("empty order refused")
			respondError(c, apperr.ErrEmptyOrder)
			return
		}

		order, err := orders.Create(c.Request.Context(), user.ID, req.toInput())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, order)
	}
}

func GetOrder(orders *service.Orders) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			return
		}
		id, ok := pathObjectID(c, "id", errOrderNotFound)
		if !ok {
			return
		}

		order, err := orders.Get(c.Request.Context(), user, id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, order)
	}
}

func GetMyOrders(orders *service.Orders) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			return
		}

		list, err := orders.Mine(c.Request.Context(), user.ID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, list)
	}
}

func PayOrder(orders *service.Orders) gin.HandlerFunc {
	return orderTransition(orders.Pay, "Paiement effectué")
}

func CancelOrder(orders *service.Orders) gin.HandlerFunc {
	return orderTransition(orders.Cancel, "Commande annulée")
}
