package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/makahco2025-svg/test3/internal/cache"
	"github.com/makahco2025-svg/test3/internal/catalog"
	"github.com/makahco2025-svg/test3/internal/checkout"
	"github.com/makahco2025-svg/test3/internal/config"
	storehttp "github.com/makahco2025-svg/test3/internal/http"
	"github.com/makahco2025-svg/test3/internal/orders"
	"github.com/makahco2025-svg/test3/internal/publisher"
	"github.com/makahco2025-svg/test3/internal/session"
	"github.com/makahco2025-svg/test3/pkg/circuitbreaker"
	"github.com/makahco2025-svg/test3/pkg/logger"
	"github.com/makahco2025-svg/test3/pkg/tracing"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

const serviceName = "storefront"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	l, err := logger.New(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer l.Sync()
	zap.ReplaceGlobals(l)

	if err := run(cfg, l); err != nil {
		l.Fatal("storefront stopped with error", zap.Error(err))
	}
}

func run(cfg config.Config, l *zap.Logger) error {
	ctx := context.Background()

	shutdownTracing := tracing.Install(tracing.NewProvider(cfg.Tracing.SampleRatio))
	defer shutdownTracing(ctx)

	// Catalog
	repo, err := openCatalog(ctx, cfg, l)
	if err != nil {
		return err
	}
	defer repo.Close()

	// Order sinks
	var (
		sinks   []checkout.OrderSink
		history storehttp.OrderHistory
	)

	if cfg.Mongo.URI != "" {
		db, err := orders.ConnectMongoDB(ctx, cfg.Mongo.URI, cfg.Mongo.Database)
		if err != nil {
			return fmt.Errorf("failed to connect to MongoDB: %w", err)
		}
		defer disconnectMongo(db, l)

		journal := orders.NewMongoJournal(db)
		if err := journal.CreateIndexes(ctx); err != nil {
			return fmt.Errorf("failed to create order indexes: %w", err)
		}
		sinks = append(sinks, guard(journal, "order-journal", l))
		history = journal
		l.Info("order journal enabled", zap.String("database", cfg.Mongo.Database))
	}

	if len(cfg.Kafka.Brokers) > 0 {
		pub := publisher.NewOrderPublisher(publisher.NewKafkaWriter(cfg.Kafka.Topic, cfg.Kafka.Brokers...))
		defer pub.Close()
		sinks = append(sinks, guard(pub, "order-publisher", l))
		l.Info("order events enabled",
			zap.Strings("brokers", cfg.Kafka.Brokers),
			zap.String("topic", cfg.Kafka.Topic))
	}

	// Sessions
	registry := session.NewRegistry(session.Options{
		TTL:             cfg.Session.TTL,
		CleanupInterval: cfg.Session.CleanupInterval,
		InboxCapacity:   cfg.Session.InboxCapacity,
		Logger:          l.Named("session"),
		Checkout: checkout.Settings{
			Handoff:     logHandoff(l.Named("handoff")),
			Sinks:       sinks,
			Recipient:   cfg.Checkout.Recipient,
			SinkTimeout: cfg.Checkout.SinkTimeout,
			Logger:      l.Named("checkout"),
		},
	})
	defer registry.Close()

	router := storehttp.NewRouter(storehttp.RouterConfig{
		Catalog:  repo,
		Sessions: registry,
		Orders:   history,
		Cookie: storehttp.CookieConfig{
			Name:   cfg.Session.CookieName,
			Secure: cfg.Session.CookieSecure,
			TTL:    cfg.Session.TTL,
		},
		AdminPassword:  cfg.Admin.Password,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		RequestTimeout: cfg.HTTP.WriteTimeout,
		Logger:         l,
	})
	if cfg.Admin.Password == "" {
		l.Warn("admin API disabled, set STOREFRONT_ADMIN__PASSWORD to enable it")
	}

	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      router,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	// Health over gRPC for orchestrators
	lis, err := net.Listen("tcp", cfg.HealthGRPC.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", cfg.HealthGRPC.Addr, err)
	}
	healthServer := health.NewServer()
	grpcServer := grpc.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	reflection.Register(grpcServer)

	errCh := make(chan error, 2)
	go func() {
		l.Info("health server listening", zap.String("addr", cfg.HealthGRPC.Addr))
		if err := grpcServer.Serve(lis); err != nil {
			errCh <- fmt.Errorf("health server: %w", err)
		}
	}()
	go func() {
		l.Info("storefront listening", zap.String("addr", cfg.HTTP.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()
	healthServer.SetServingStatus(serviceName, healthpb.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	var serveErr error
	select {
	case sig := <-quit:
		l.Info("shutting down storefront", zap.String("signal", sig.String()))
	case serveErr = <-errCh:
		l.Error("server failed, shutting down", zap.Error(serveErr))
	}

	healthServer.Shutdown()

	shutdownCtx, cancel := context.WithTimeout(ctx, cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		l.Error("http shutdown failed", zap.Error(err))
	}
	grpcServer.GracefulStop()

	l.Info("storefront stopped")
	return serveErr
}

func openCatalog(ctx context.Context, cfg config.Config, l *zap.Logger) (catalog.Repository, error) {
	var repo catalog.Repository

	switch cfg.Catalog.Backend {
	case "sqlite":
		sqliteRepo, err := catalog.NewSQLiteRepository(cfg.Catalog.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open catalog: %w", err)
		}
		if err := sqliteRepo.RunMigrations(); err != nil {
			sqliteRepo.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		if err := sqliteRepo.Seed(ctx, catalog.SeedProducts()); err != nil {
			sqliteRepo.Close()
			return nil, fmt.Errorf("failed to seed catalog: %w", err)
		}
		l.Info("catalog opened", zap.String("backend", "sqlite"), zap.String("path", cfg.Catalog.SQLitePath))
		repo = sqliteRepo
	default:
		repo = catalog.NewMemoryRepository(catalog.SeedProducts())
		l.Info("catalog opened", zap.String("backend", "memory"))
	}

	if cfg.Redis.Addr == "" {
		return repo, nil
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		redisClient.Close()
		repo.Close()
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}
	l.Info("catalog cache enabled", zap.String("redis", cfg.Redis.Addr))

	return &closingRepository{
		Repository: catalog.NewCachedRepository(repo, cache.NewRedisCache(redisClient), l.Named("catalog")),
		closeFn:    redisClient.Close,
	}, nil
}

// closingRepository also closes the cache client with the catalog.
type closingRepository struct {
	catalog.Repository
	closeFn func() error
}

func (r *closingRepository) Close() error {
	return errors.Join(r.Repository.Close(), r.closeFn())
}

func guard(sink checkout.OrderSink, name string, l *zap.Logger) checkout.OrderSink {
	settings := circuitbreaker.DefaultSettings(name)
	settings.Logger = l.Named("breaker")
	return checkout.GuardSink(sink, circuitbreaker.New(settings))
}

// logHandoff stands in for opening the messaging app: the link is returned
// to the client, which opens it, so the server only records it.
func logHandoff(l *zap.Logger) checkout.Handoff {
	return checkout.HandoffFunc(func(_ context.Context, link string) error {
		l.Info("order handed off", zap.Int("link_length", len(link)))
		return nil
	})
}

func disconnectMongo(db *mongo.Database, l *zap.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.Client().Disconnect(ctx); err != nil {
		l.Warn("mongo disconnect failed", zap.Error(err))
	}
}
