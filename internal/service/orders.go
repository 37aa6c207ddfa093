package service

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"afrizone/internal/apperr"
	"afrizone/internal/logging"
	"afrizone/internal/metrics"
	"afrizone/internal/models"
	"afrizone/internal/store"
)

var (
	errOrderNotFound = apperr.NotFound("Commande non trouvée")
	errOrderAccess   = apperr.Forbidden("Non autorisé")
)

type OrderItemInput struct {
	Product  primitive.ObjectID
	Quantity int
	Price    float64
}

type OrderInput struct {
	Items           []OrderItemInput
	ShippingAddress models.Address
	PaymentMethod   string
}

// OrderItemView is an order line with its product summary. Product is null
// when the product no longer exists.
type OrderItemView struct {
	Product  *ProductSummary `json:"product"`
	Quantity int             `json:"quantity"`
	Price    float64         `json:"price"`
}

// OrderSummary is an order with its owner populated.
type OrderSummary struct {
	models.Order
	User *UserSummary `json:"user"`
}

// OrderDetail is an order with its owner and products populated.
type OrderDetail struct {
	models.Order
	User  *UserSummary    `json:"user"`
	Items []OrderItemView `json:"items"`
}

type Orders struct {
	orders   store.OrderStore
	users    store.UserStore
	products store.ProductStore
	log      *logrus.Entry
	now      Clock
}

func NewOrders(orders store.OrderStore, users store.UserStore, products store.ProductStore, logger logrus.FieldLogger) *Orders {
	return &Orders{
		orders:   orders,
		users:    users,
		products: products,
		log:      logging.Area(logger, logging.AreaOrder),
		now:      defaultClock,
	}
}

// OrderTotal sums price×quantity over items, rounded to cents.
func OrderTotal(items []OrderItemInput) float64 {
	total := decimal.Zero
	for _, item := range items {
		line := decimal.NewFromFloat(item.Price).Mul(decimal.NewFromInt(int64(item.Quantity)))
		total = total.Add(line)
	}
	return total.Round(2).InexactFloat64()
}

// Create places an order for userID using the supplied unit prices.
func (s *Orders) Create(ctx context.Context, userID primitive.ObjectID, in OrderInput) (models.Order, error) {
	if len(in.Items) == 0 {
		return models.Order{}, apperr.ErrEmptyOrder
	}

	items := make([]models.OrderItem, 0, len(in.Items))
	for _, item := range in.Items {
		items = append(items, models.OrderItem{Product: item.Product, Quantity: item.Quantity, Price: item.Price})
	}

	order := models.Order{
		User:            userID,
		Items:           items,
		ShippingAddress: in.ShippingAddress,
		PaymentMethod:   in.PaymentMethod,
		PaymentStatus:   models.PaymentPending,
		TotalPrice:      OrderTotal(in.Items),
		Status:          models.StatusProcessing,
		CreatedAt:       s.now(),
	}
	if err := s.orders.Create(ctx, &order); err != nil {
		return models.Order{}, apperr.Internal("create order", err)
	}

	metrics.RecordOrderCreated()
	s.log.WithFields(logrus.Fields{
		"orderId":    order.ID.Hex(),
		"userId":     userID.Hex(),
		"items":      len(items),
		"totalPrice": order.TotalPrice,
	}).Info("order created")
	return order, nil
}

func (s *Orders) load(ctx context.Context, id primitive.ObjectID) (models.Order, error) {
	order, err := s.orders.FindByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return models.Order{}, errOrderNotFound
	}
	if err != nil {
		return models.Order{}, apperr.Internal("find order", err)
	}
	return order, nil
}

func canAccess(order models.Order, requester models.User) bool {
	return order.OwnedBy(requester.ID) || requester.IsAdmin()
}

// Get returns the order to its owner or to an admin.
func (s *Orders) Get(ctx context.Context, requester models.User, id primitive.ObjectID) (OrderDetail, error) {
	order, err := s.load(ctx, id)
	if err != nil {
		return OrderDetail{}, err
	}
	if !canAccess(order, requester) {
		s.log.WithFields(logrus.Fields{"orderId": id.Hex(), "userId": requester.ID.Hex()}).Warn("order read refused")
		return OrderDetail{}, errOrderAccess
	}

	owners, err := s.populateUsers(ctx, []models.Order{order}, true)
	if err != nil {
		return OrderDetail{}, err
	}

	productIDs := make([]primitive.ObjectID, 0, len(order.Items))
	for _, item := range order.Items {
		productIDs = append(productIDs, item.Product)
	}
	found, err := s.products.FindByIDs(ctx, uniqueIDs(productIDs), true)
	if err != nil {
		return OrderDetail{}, apperr.Internal("find order products", err)
	}
	products := make(map[primitive.ObjectID]models.Product, len(found))
	for _, p := range found {
		products[p.ID] = p
	}

	items := make([]OrderItemView, 0, len(order.Items))
	for _, item := range order.Items {
		view := OrderItemView{Quantity: item.Quantity, Price: item.Price}
		if p, ok := products[item.Product]; ok {
			view.Product = &ProductSummary{ID: p.ID, Name: p.Name, Images: p.Images, Price: p.Price}
		}
		items = append(items, view)
	}

	return OrderDetail{Order: order, User: owners[order.User], Items: items}, nil
}

func (s *Orders) populateUsers(ctx context.Context, orders []models.Order, withEmail bool) (map[primitive.ObjectID]*UserSummary, error) {
	ids := make([]primitive.ObjectID, 0, len(orders))
	for _, o := range orders {
		ids = append(ids, o.User)
	}
	users, err := s.users.FindByIDs(ctx, uniqueIDs(ids))
	if err != nil {
		return nil, apperr.Internal("find order owners", err)
	}
	out := make(map[primitive.ObjectID]*UserSummary, len(users))
	for _, u := range users {
		out[u.ID] = summarizeUser(u, withEmail)
	}
	return out, nil
}

// transition applies patch when the order is in one of from. Owner-only
// transitions pass ownerOnly; admins always pass.
func (s *Orders) transition(ctx context.Context, requester models.User, id primitive.ObjectID, ownerOnly bool, from []string, patch store.OrderPatch) (models.Order, error) {
	if ownerOnly {
		order, err := s.load(ctx, id)
		if err != nil {
			return models.Order{}, err
		}
		if !canAccess(order, requester) {
			s.log.WithFields(logrus.Fields{"orderId": id.Hex(), "userId": requester.ID.Hex()}).Warn("order update refused")
			return models.Order{}, errOrderAccess
		}
	}

	order, err := s.orders.Transition(ctx, id, from, patch)
	switch {
	case err == nil:
	case errors.Is(err, store.ErrNotFound):
		return models.Order{}, errOrderNotFound
	case errors.Is(err, store.ErrStateConflict):
		return models.Order{}, apperr.ErrInvalidTransition
	default:
		return models.Order{}, apperr.Internal("update order", err)
	}

	s.log.WithFields(logrus.Fields{
		"orderId":       id.Hex(),
		"status":        order.Status,
		"paymentStatus": order.PaymentStatus,
	}).Info("order updated")
	return order, nil
}

// Pay marks the order paid. Only the owner or an admin may do it and a
// cancelled order cannot be paid.
func (s *Orders) Pay(ctx context.Context, requester models.User, id primitive.ObjectID) (models.Order, error) {
	now := s.now()
	return s.transition(ctx, requester, id, true,
		[]string{models.StatusProcessing, models.StatusShipped, models.StatusDelivered},
		store.OrderPatch{PaymentStatus: models.PaymentCompleted, PaidAt: &now},
	)
}

func (s *Orders) Ship(ctx context.Context, requester models.User, id primitive.ObjectID) (models.Order, error) {
	now := s.now()
	return s.transition(ctx, requester, id, false,
		[]string{models.StatusProcessing},
		store.OrderPatch{Status: models.StatusShipped, ShippedAt: &now},
	)
}

func (s *Orders) Deliver(ctx context.Context, requester models.User, id primitive.ObjectID) (models.Order, error) {
	now := s.now()
	return s.transition(ctx, requester, id, false,
		[]string{models.StatusProcessing, models.StatusShipped, models.StatusDelivered},
		store.OrderPatch{Status: models.StatusDelivered, DeliveredAt: &now},
	)
}

// Cancel is allowed to the owner or an admin while the order is processing.
func (s *Orders) Cancel(ctx context.Context, requester models.User, id primitive.ObjectID) (models.Order, error) {
	now := s.now()
	return s.transition(ctx, requester, id, true,
		[]string{models.StatusProcessing},
		store.OrderPatch{Status: models.StatusCancelled, CancelledAt: &now},
	)
}

func (s *Orders) Mine(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error) {
	orders, err := s.orders.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperr.Internal("list user orders", err)
	}
	return orders, nil
}

// List returns every order, newest first, with owner names.
func (s *Orders) List(ctx context.Context) ([]OrderSummary, error) {
	orders, err := s.orders.List(ctx)
	if err != nil {
		return nil, apperr.Internal("list orders", err)
	}
	owners, err := s.populateUsers(ctx, orders, false)
	if err != nil {
		return nil, err
	}

	out := make([]OrderSummary, 0, len(orders))
	for _, o := range orders {
		out = append(out, OrderSummary{Order: o, User: owners[o.User]})
	}
	return out, nil
}
