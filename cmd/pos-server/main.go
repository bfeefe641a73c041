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

	"github.com/redis/go-redis/v9"

	"github.com/kimutaiwycliff/shop-website-pos-sub000/internal/cart"
	"github.com/kimutaiwycliff/shop-website-pos-sub000/internal/catalog"
	"github.com/kimutaiwycliff/shop-website-pos-sub000/internal/config"
	"github.com/kimutaiwycliff/shop-website-pos-sub000/internal/db"
	"github.com/kimutaiwycliff/shop-website-pos-sub000/internal/events"
	"github.com/kimutaiwycliff/shop-website-pos-sub000/internal/httpapi"
	"github.com/kimutaiwycliff/shop-website-pos-sub000/internal/journal"
	"github.com/kimutaiwycliff/shop-website-pos-sub000/internal/pricing"
	"github.com/kimutaiwycliff/shop-website-pos-sub000/internal/sale"
	"github.com/kimutaiwycliff/shop-website-pos-sub000/internal/storefront"
	"github.com/kimutaiwycliff/shop-website-pos-sub000/internal/till"
)

func main() {
	cfg := config.Load()
	logger := log.New(os.Stdout, "", log.LstdFlags|log.Lmicroseconds)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// --- storefront clients ---
	client, err := storefront.NewClient(cfg.StorefrontURL, &http.Client{}, cfg.UpstreamTimeout)
	if err != nil {
		logger.Fatalf("storefront client: %v", err)
	}
	products := storefront.NewProductsClient(client)
	orders := storefront.NewOrdersClient(client)
	transactions := storefront.NewTransactionsClient(client)
	customers := storefront.NewCustomersClient(client)

	cache := catalog.NewCache(products, catalog.DefaultRetry(), logger)

	// --- journal (optional) ---
	var recorder journal.Recorder
	if cfg.DatabaseDSN != "" {
		pool, err := db.NewPool(ctx, cfg.DatabaseDSN)
		if err != nil {
			logger.Fatalf("db connect: %v", err)
		}
		defer pool.Close()

		if cfg.RunMigrations {
			if err := db.RunMigrations(cfg.DatabaseDSN, logger); err != nil {
				logger.Fatalf("db migrate: %v", err)
			}
		}
		recorder = journal.NewPostgresRepository(pool)
	} else {
		logger.Printf("sale journal disabled (no DATABASE_DSN)")
	}

	// --- events (optional) ---
	var publisher sale.EventPublisher
	if cfg.RabbitURL != "" {
		conn, err := events.Dial(cfg.RabbitURL)
		if err != nil {
			logger.Fatalf("rabbitmq: %v", err)
		}
		defer conn.Close()

		pub, err := events.NewPublisher(conn)
		if err != nil {
			logger.Fatalf("rabbitmq publisher: %v", err)
		}
		defer pub.Close()
		publisher = pub
	} else {
		logger.Printf("sale events disabled (no RABBITMQ_URL)")
	}

	// --- session snapshots (optional) ---
	var store till.SnapshotStore
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		store = till.NewRedisStore(rdb, 0)
		defer rdb.Close()
	}
	registry := till.NewRegistry(store, logger)

	pricingSettings := pricing.Settings{DefaultTaxRate: cfg.TaxRate, TaxIncluded: cfg.TaxIncluded}
	cartSettings := cart.Settings{MaxDiscountPercent: cfg.MaxDiscountPercent}

	committer := sale.NewCommitter(products, orders, transactions, cache, recorder, publisher, logger, sale.Config{
		Pricing:   pricingSettings,
		Currency:  cfg.Currency,
		StoreName: cfg.StoreName,
	})

	// --- HTTP ---
	h := httpapi.NewHandler(registry, cache, customers, committer, cartSettings, pricingSettings, logger)
	router := httpapi.NewRouter(h, cfg.CORSAllowOrigins)

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)

	go func() {
		logger.Printf("http listening on %s", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Warm the catalog so the first scan does not pay the fetch latency.
	warmCtx, warmCancel := context.WithTimeout(ctx, 30*time.Second)
	if _, err := cache.Search(warmCtx, ""); err != nil {
		logger.Printf("catalog warmup: %v", err)
	}
	warmCancel()

	// --- graceful shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Printf("shutdown signal: %s", sig)
	case err := <-errCh:
		logger.Printf("fatal error: %v", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	_ = httpServer.Shutdown(shutdownCtx)
	cancel()

	logger.Printf("shutdown complete")
}
