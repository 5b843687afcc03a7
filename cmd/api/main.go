package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"

	"github.com/rexrel213/music-store-finally/internal/config"
	"github.com/rexrel213/music-store-finally/internal/handler"
	"github.com/rexrel213/music-store-finally/internal/middleware"
	"github.com/rexrel213/music-store-finally/internal/repository"
	"github.com/rexrel213/music-store-finally/internal/service"
	"github.com/rexrel213/music-store-finally/internal/worker"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.Load()
	if err != nil {
		log.Error("load config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// PostgreSQL
	poolCfg, err := pgxpool.ParseConfig(cfg.DB.DSN())
	if err != nil {
		log.Error("parse db config", "error", err)
		os.Exit(1)
	}
	poolCfg.MaxConns = cfg.DB.MaxConns

	dbPool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		log.Error("connect to database", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	if err := dbPool.Ping(ctx); err != nil {
		log.Error("ping database", "error", err)
		os.Exit(1)
	}
	log.Info("connected to PostgreSQL")

	// Redis
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Error("connect to Redis", "error", err)
		os.Exit(1)
	}
	log.Info("connected to Redis")

	// RabbitMQ
	amqpConn, err := amqp.Dial(cfg.RabbitMQ.URL)
	if err != nil {
		log.Error("connect to RabbitMQ", "error", err)
		os.Exit(1)
	}
	defer amqpConn.Close()

	amqpCh, err := amqpConn.Channel()
	if err != nil {
		log.Error("open RabbitMQ channel", "error", err)
		os.Exit(1)
	}
	defer amqpCh.Close()

	if err := worker.SetupRabbitMQ(amqpCh); err != nil {
		log.Error("setup RabbitMQ", "error", err)
		os.Exit(1)
	}
	log.Info("connected to RabbitMQ")

	// Repositories
	userRepo := repository.NewUserRepository(dbPool)
	productRepo := repository.NewProductRepository(dbPool)
	brandRepo := repository.NewBrandRepository(dbPool)
	categoryRepo := repository.NewCategoryRepository(dbPool)
	typeRepo := repository.NewInstrumentTypeRepository(dbPool)
	orderRepo := repository.NewOrderRepository(dbPool)
	reviewRepo := repository.NewReviewRepository(dbPool)
	favoriteRepo := repository.NewFavoriteRepository(dbPool)
	supplyRepo := repository.NewSupplyRepository(dbPool)

	// Services
	authSvc := service.NewAuthService(userRepo, cfg.JWT.Secret, cfg.JWT.Expiration)
	userSvc := service.NewUserService(userRepo)
	productSvc := service.NewProductService(productRepo, redisClient)
	catalogSvc := service.NewCatalogService(brandRepo, categoryRepo, typeRepo, productRepo)
	orderSvc := service.NewOrderService(orderRepo, productRepo, amqpCh)
	reviewSvc := service.NewReviewService(reviewRepo, orderRepo, productRepo, userRepo)
	favoriteSvc := service.NewFavoriteService(favoriteRepo, productRepo)
	supplySvc := service.NewSupplyService(supplyRepo, productRepo, userRepo)

	// Handlers
	authH := handler.NewAuthHandler(authSvc)
	userH := handler.NewUserHandler(userSvc)
	productH := handler.NewProductHandler(productSvc, catalogSvc)
	orderH := handler.NewOrderHandler(orderSvc)
	reviewH := handler.NewReviewHandler(reviewSvc)
	favoriteH := handler.NewFavoriteHandler(favoriteSvc)
	supplyH := handler.NewSupplyHandler(supplySvc)
	adminH := handler.NewAdminHandler(productSvc, catalogSvc, orderSvc, reviewSvc, supplySvc, cfg.Static.Dir)
	healthH := handler.NewHealthHandler(dbPool, redisClient, amqpConn)

	// Worker
	barcodeWorker := worker.NewBarcodeWorker(amqpCh, orderRepo, redisClient, cfg.Static.Dir, log)

	// Router
	router := gin.Default()
	router.GET("/healthz", healthH.Healthz)
	router.GET("/readyz", healthH.Readyz)
	router.Static("/static", cfg.Static.Dir)

	auth := middleware.AuthMiddleware(cfg.JWT.Secret)

	router.POST("/register", authH.Register)
	router.POST("/login", authH.Login)

	profile := router.Group("/login/profile", auth)
	{
		profile.GET("", userH.Profile)
		profile.PATCH("", userH.UpdateProfile)
		profile.DELETE("", userH.DeleteProfile)
		profile.POST("/avatar", userH.UploadAvatar)
	}
	router.GET("/login/profile/avatar/:id", userH.Avatar)

	products := router.Group("/products")
	{
		products.GET("", productH.List)
		products.GET("/top", productH.ListTop)
		products.GET("/:id", productH.GetByID)
		products.GET("/:id/comments", reviewH.ListComments)
		products.GET("/:id/rating", reviewH.AverageRating)

		products.POST("/:id/comments", auth, reviewH.CreateComment)
		products.POST("/:id/comments/reply", auth, reviewH.Reply)
		products.PATCH("/comments/:id", auth, reviewH.UpdateComment)
		products.POST("/comments/:id/vote", auth, reviewH.Vote)
		products.POST("/:id/rating", auth, reviewH.Rate)
	}

	router.GET("/brand", productH.ListBrands)
	router.GET("/brand/:id", productH.GetBrand)
	router.GET("/category/:id/products", productH.CategoryProducts)

	order := router.Group("/order", auth)
	{
		order.GET("/me", orderH.Cart)
		order.POST("/items", orderH.AddItem)
		order.PATCH("/items/:id", orderH.UpdateItem)
		order.DELETE("/items/:id", orderH.DeleteItem)
		order.POST("/me/checkout", orderH.Checkout)
		order.GET("/me/history", orderH.History)
		order.GET("/me/barcode", orderH.Barcode)
		order.GET("/:id", orderH.GetByID)
	}

	favorites := router.Group("/favorites", auth)
	{
		favorites.POST("", favoriteH.Add)
		favorites.GET("", favoriteH.List)
		favorites.GET("/check", favoriteH.Check)
		favorites.DELETE("/:id", favoriteH.Remove)
	}

	router.POST("/supplies", auth, supplyH.Create)

	admin := router.Group("/admin", auth, middleware.AdminOnly())
	{
		admin.GET("/products", adminH.ListProducts)
		admin.POST("/products", adminH.CreateProduct)
		admin.POST("/products/:id/images", adminH.AddProductImages)
		admin.GET("/brands", adminH.ListBrands)
		admin.POST("/brands", adminH.CreateBrand)
		admin.GET("/categories", adminH.ListCategories)
		admin.POST("/categories", adminH.CreateCategory)
		admin.GET("/instrument-types", adminH.ListInstrumentTypes)
		admin.POST("/instrument-types", adminH.CreateInstrumentType)
		admin.GET("/comments", adminH.ListComments)
		admin.GET("/orders", adminH.ListOrders)
		admin.GET("/order-items", adminH.ListOrderItems)
		admin.GET("/order-items/:id", adminH.GetOrderItem)
		admin.GET("/ratings/:id", adminH.GetRating)
		admin.GET("/suppliers", adminH.ListSuppliers)
		admin.GET("/suppliers/:id", adminH.GetSupplier)
		admin.POST("/suppliers", adminH.CreateSupplier)
		admin.GET("/supplies", adminH.ListSupplies)
		admin.GET("/supply-items", adminH.ListSupplyItems)
	}
	router.GET("/total", auth, middleware.AdminOnly(), adminH.SalesReport)

	if err := barcodeWorker.Start(ctx); err != nil {
		log.Error("start barcode worker", "error", err)
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info("starting HTTP server", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown", "error", err)
	}

	barcodeWorker.Stop()
	time.Sleep(500 * time.Millisecond)
	cancel()
	log.Info("server stopped")
}
