package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/TON618OFF/FactorioStore-sub000/internal/cart"
	"github.com/TON618OFF/FactorioStore-sub000/internal/catalog"
	"github.com/TON618OFF/FactorioStore-sub000/internal/checkout"
	"github.com/TON618OFF/FactorioStore-sub000/internal/config"
	"github.com/TON618OFF/FactorioStore-sub000/internal/docstore"
	"github.com/TON618OFF/FactorioStore-sub000/internal/events"
	"github.com/TON618OFF/FactorioStore-sub000/internal/favorites"
	"github.com/TON618OFF/FactorioStore-sub000/internal/httpapi"
	"github.com/TON618OFF/FactorioStore-sub000/internal/orders"
	"github.com/TON618OFF/FactorioStore-sub000/internal/reviews"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func main() {
	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	mongoStore, err := docstore.ConnectMongo(ctx, cfg.MongoURI, cfg.MongoDBName)
	cancel()
	if err != nil {
		log.Fatalf("failed to connect to MongoDB: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := mongoStore.Close(ctx); err != nil {
			log.Printf("failed to disconnect from MongoDB: %v", err)
		}
	}()

	// All document traffic goes through the breaker so a struggling store
	// fails fast instead of piling up requests.
	store := docstore.NewBreakerStore(mongoStore)

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	defer redisClient.Close()

	catalogSvc := catalog.NewService(
		catalog.NewRepository(store),
		catalog.NewRedisCache(redisClient),
	)

	var publisher checkout.EventPublisher
	if len(cfg.KafkaBrokers) > 0 {
		kafkaPublisher := events.NewPublisher(cfg.KafkaBrokers...)
		defer func() {
			if err := kafkaPublisher.Close(); err != nil {
				log.Printf("failed to close kafka publisher: %v", err)
			}
		}()
		publisher = kafkaPublisher
	} else {
		log.Println("KAFKA_BROKERS not set, order events disabled")
	}

	registry := cart.NewRegistry(store)
	defer registry.Close()

	orderRepo := orders.NewRepository(store)

	router := httpapi.NewRouter(httpapi.Handlers{
		Cart:      httpapi.NewCartHandler(registry, catalogSvc, cfg.RequestTimeout),
		Checkout:  httpapi.NewCheckoutHandler(registry, orderRepo, catalogSvc, publisher, cfg.RequestTimeout),
		Products:  httpapi.NewProductHandler(catalogSvc, cfg.RequestTimeout),
		Orders:    httpapi.NewOrdersHandler(orderRepo, cfg.RequestTimeout),
		Favorites: httpapi.NewFavoritesHandler(favorites.NewRepository(store), cfg.RequestTimeout),
		Reviews:   httpapi.NewReviewsHandler(reviews.NewRepository(store), cfg.RequestTimeout),
	}, cfg.RequestTimeout)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      otelhttp.NewHandler(router, "storefront"),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("storefront starting on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down server...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	log.Println("server exited")
}
