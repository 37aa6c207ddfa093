// Package router assembles the HTTP route table.
package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"afrizone/internal/database"
	"afrizone/internal/handlers"
	"afrizone/internal/logging"
	"afrizone/internal/metrics"
	"afrizone/internal/middleware"
	"afrizone/internal/service"
)

// Deps are the collaborators the routes are wired to.
type Deps struct {
	Users   *service.Users
	Catalog *service.Catalog
	Orders  *service.Orders

	Tokens   middleware.TokenVerifier
	Accounts middleware.UserFinder
	DB       database.Pinger
	Logger   logrus.FieldLogger

	// TrustedProxies may set X-Forwarded-For; nil trusts none and the
	// client IP is the connection's remote address.
	TrustedProxies []string
	CORSOrigins    []string
	AuthRateLimit  float64
	AuthRateBurst  int
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders: []string{"Content-Length", middleware.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}

func New(d Deps) *gin.Engine {
	handlers.RegisterValidators()

	r := gin.New()
	if err := r.SetTrustedProxies(d.TrustedProxies); err != nil {
		logging.Area(d.Logger, logging.AreaHTTP).WithError(err).Warn("invalid trusted proxies, trusting none")
		_ = r.SetTrustedProxies(nil)
	}
	r.Use(
		middleware.RequestID(d.Logger),
		middleware.AccessLog(),
		middleware.Metrics(),
		middleware.Recovery(),
		cors.New(corsConfig(d.CORSOrigins)),
	)

	r.GET("/", handlers.Home())
	r.GET("/metrics", gin.WrapH(metrics.Handler()))
	if d.DB != nil {
		r.GET("/healthz", handlers.Health(d.DB))
	}

	protect := middleware.Protect(d.Tokens, d.Accounts)
	admin := middleware.AdminOnly()
	limiter := middleware.NewRateLimiter(d.AuthRateLimit, d.AuthRateBurst)

	api := r.Group("/api")

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", limiter.Handler(), handlers.Register(d.Users))
		authGroup.POST("/login", limiter.Handler(), handlers.Login(d.Users))
		authGroup.GET("/profile", protect, handlers.GetProfile(d.Users))
		authGroup.PUT("/profile", protect, handlers.UpdateProfile(d.Users))
		authGroup.GET("/favorites", protect, handlers.GetFavorites(d.Users))
		authGroup.POST("/favorites/:id", protect, handlers.AddFavorite(d.Users))
		authGroup.DELETE("/favorites/:id", protect, handlers.RemoveFavorite(d.Users))
	}

	products := api.Group("/products")
	{
		products.GET("", handlers.GetProducts(d.Catalog))
		products.POST("", protect, admin, handlers.CreateProduct(d.Catalog))
		products.GET("/top", handlers.GetTopProducts(d.Catalog))
		products.GET("/categories", handlers.GetCategories(d.Catalog))
		products.GET("/:id", handlers.GetProduct(d.Catalog))
		products.PUT("/:id", protect, admin, handlers.UpdateProduct(d.Catalog))
		products.DELETE("/:id", protect, admin, handlers.DeleteProduct(d.Catalog))
		products.POST("/:id/reviews", protect, handlers.AddReview(d.Catalog))
	}

	orders := api.Group("/orders", protect)
	{
		orders.POST("", handlers.CreateOrder(d.Orders))
		orders.GET("", admin, handlers.ListOrders(d.Orders))
		orders.GET("/myorders", handlers.GetMyOrders(d.Orders))
		orders.GET("/:id", handlers.GetOrder(d.Orders))
		orders.PUT("/:id/pay", handlers.PayOrder(d.Orders))
		orders.PUT("/:id/cancel", handlers.CancelOrder(d.Orders))
		orders.PUT("/:id/ship", admin, handlers.ShipOrder(d.Orders))
		orders.PUT("/:id/deliver", admin, handlers.DeliverOrder(d.Orders))
	}

	users := api.Group("/users", protect, admin)
	{
		users.GET("", handlers.ListUsers(d.Users))
		users.GET("/:id", handlers.GetUser(d.Users))
		users.PUT("/:id", handlers.UpdateUser(d.Users))
		users.DELETE("/:id", handlers.DeleteUser(d.Users))
	}

	return r
}
