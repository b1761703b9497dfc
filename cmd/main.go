package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"storefront/auth"
	"storefront/config"
	"storefront/database"
	"storefront/events"
	"storefront/logger"
	"storefront/middleware"
	"storefront/payment"
	"storefront/routes"
	"storefront/services"
)

func main() {
	config.LoadEnv()
	cfg := config.Load()

	log := logger.New(logger.Options{
		Service:   "storefront",
		Env:       cfg.AppEnv,
		Level:     cfg.LogLevel,
		AddSource: true,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("storefront stopped", slog.Any("err", err))
		os.Exit(1)
	}
	log.Info("bye")
}

func run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	if cfg.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	store, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	var publisher events.Publisher = events.Nop{}
	if brokers := events.ParseBrokers(cfg.KafkaBrokers); len(brokers) > 0 {
		kp := events.NewKafkaPublisher(brokers, cfg.KafkaOrderTopic)
		defer kp.Close()
		publisher = kp
		log.Info("publishing order events", slog.Any("brokers", brokers), slog.String("topic", cfg.KafkaOrderTopic))
	}

	policy := services.StrictPolicy()
	if cfg.CheckoutPolicy == config.CheckoutLegacy {
		policy.StrictCheckout = false
	}
	policy.GuardTransitions = cfg.OrderStatusGuard
	log.Info("order policy",
		slog.Bool("strict_checkout", policy.StrictCheckout),
		slog.Bool("guard_transitions", policy.GuardTransitions),
	)

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL)
	razorpay := payment.NewRazorpayClient(cfg.RazorpayBaseURL, cfg.RazorpayKeyID, cfg.RazorpayKeySecret)
	users := services.NewUserService(store, tokens, log)

	bootCtx, cancel := context.WithTimeout(ctx, cfg.DBTimeout)
	err = users.EnsureAdmin(bootCtx, cfg.AdminEmail, cfg.AdminPassword)
	cancel()
	if err != nil {
		return fmt.Errorf("bootstrap admin: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	if cfg.AppEnv == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := routes.NewRouter(routes.Deps{
		Store:    store,
		Tokens:   tokens,
		Users:    users,
		Catalog:  services.NewCatalogService(store),
		Carts:    services.NewCartService(store),
		Wishlist: services.NewWishlistService(store),
		Orders:   services.NewOrderService(store, publisher, policy, log),
		Payments: services.NewPaymentService(razorpay, razorpay.KeySecret()),
		Stats:    services.NewStatsService(store),
		Metrics:  middleware.NewMetrics(reg),
		Log:      log,
		Timeout:  cfg.DBTimeout,
	})

	addr := ":" + cfg.Port
	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serveErr := make(chan error, 1)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Info("http server starting", slog.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown requested")
	case err := <-serveErr:
		return fmt.Errorf("http server: %w", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown error", slog.Any("err", err))
	}
	wg.Wait()
	return nil
}

func openStore(ctx context.Context, cfg config.Config, log *slog.Logger) (*database.Store, func(), error) {
	switch cfg.Storage {
	case config.StorageMemory:
		log.Warn("using in-memory storage; data is lost on restart")
		return database.NewMemoryStore().Store(), func() {}, nil
	case config.StorageMongo:
	default:
		return nil, nil, fmt.Errorf("unknown STORAGE %q", cfg.Storage)
	}

	if cfg.MongoURI == "" {
		return nil, nil, errors.New("MONGO_URI is required when STORAGE=mongo")
	}
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := database.ConnectMongo(connectCtx, cfg.MongoURI)
	if err != nil {
		return nil, nil, err
	}
	db := client.Database(cfg.DBName)
	if err := database.EnsureIndexes(connectCtx, db); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("ensure indexes: %w", err)
	}
	log.Info("connected to MongoDB", slog.String("db", cfg.DBName))

	closeFn := func() {
		dctx, dcancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer dcancel()
		if err := client.Disconnect(dctx); err != nil {
			log.Error("mongo disconnect", slog.Any("err", err))
		}
	}
	return database.NewMongoStore(client, db), closeFn, nil
}
