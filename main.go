package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"afrizone/internal/auth"
	"afrizone/internal/config"
	"afrizone/internal/database"
	"afrizone/internal/logging"
	"afrizone/internal/router"
	"afrizone/internal/service"
	"afrizone/internal/store"
)

func main() {
	config.Load()
	cfg := config.AppEnv

	logger := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err := cfg.Validate(); err != nil {
		logger.WithError(err).Fatal("invalid configuration")
	}
	gin.SetMode(cfg.GinMode)

	dbLog := logging.Area(logger, logging.AreaDB)
	client, err := database.Connect(cfg.MongoURI)
	if err != nil {
		dbLog.WithError(err).Fatal("mongo connection failed")
	}
	db := client.Database(cfg.DBName)
	dbLog.WithField("database", db.Name()).Info("MongoDB connected")

	if err := database.EnsureProductIndexes(db, logger); err != nil {
		dbLog.WithError(err).Warn("product index warning")
	}
	if err := database.EnsureUserIndexes(db, logger); err != nil {
		dbLog.WithError(err).Warn("user index warning")
	}
	if err := database.EnsureOrderIndexes(db, logger); err != nil {
		dbLog.WithError(err).Warn("order index warning")
	}

	users := store.NewMongoUsers(db, cfg.DBTimeout)
	products := store.NewMongoProducts(db, cfg.DBTimeout)
	orders := store.NewMongoOrders(db, cfg.DBTimeout)

	tokens := auth.NewTokenIssuer(cfg.JWTSecret, cfg.AccessTokenTTL)
	hasher := auth.NewHasher(bcrypt.DefaultCost)

	r := router.New(router.Deps{
		Users:          service.NewUsers(users, products, tokens, hasher, logger),
		Catalog:        service.NewCatalog(products, users, logger),
		Orders:         service.NewOrders(orders, users, products, logger),
		Tokens:         tokens,
		Accounts:       users,
		DB:             client,
		Logger:         logger,
		TrustedProxies: cfg.TrustedProxies,
		CORSOrigins:    cfg.CORSOrigins,
		AuthRateLimit:  cfg.AuthRateLimit,
		AuthRateBurst:  cfg.AuthRateBurst,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.WithField("port", cfg.Port).Info("server started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("server stopped unexpectedly")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("graceful shutdown failed")
	}
	if err := client.Disconnect(ctx); err != nil {
		dbLog.WithError(err).Error("mongo disconnect failed")
	}
	logger.Info("server stopped")
}
