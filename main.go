package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-faster/errors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"foodstore/internal/config"
	"foodstore/internal/database"
	"foodstore/internal/handlers"
	"foodstore/internal/idempotency"
	"foodstore/internal/middleware"
	"foodstore/internal/orders"
)

func main() {
	config.Load()
	cfg := config.AppEnv

	lg, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer func() { _ = lg.Sync() }()

	if err := run(cfg, lg); err != nil {
		lg.Fatal("Server failed", zap.Error(err))
	}
}

func run(cfg config.Config, lg *zap.Logger) error {
	if cfg.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	connectCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	client, err := database.Connect(connectCtx, cfg.MongoURI)
	cancel()
	if err != nil {
		return err
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			lg.Warn("Mongo disconnect failed", zap.Error(err))
		}
	}()

	db := client.Database(cfg.DBName)
	lg.Info("MongoDB connected", zap.String("db", db.Name()))

	if err := database.EnsureIndexes(db, lg); err != nil {
		lg.Warn("Index setup incomplete", zap.Error(err))
	}

	var opts []orders.Option
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		defer func() { _ = rdb.Close() }()

		if err := rdb.Ping(ctx).Err(); err != nil {
			lg.Warn("Redis unreachable, order submission is not deduplicated until it recovers", zap.Error(err))
		}
		keys := idempotency.NewRedisStore(rdb, cfg.IdempotencyTTL, idempotency.WithPendingTTL(cfg.PendingTTL))
		opts = append(opts, orders.WithIdempotency(keys))
		lg.Info("Idempotent order submission enabled", zap.String("redis", cfg.RedisAddr))
	}
	svc := orders.NewService(orders.NewMongoRepository(db), opts...)

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(lg))

	r.GET("/health", handlers.Health(db))

	api := r.Group(handlers.APIBase)
	handlers.RegisterOrderRoutes(api, svc, cfg.JWTSecret)
	handlers.RegisterCatalogRoutes(api, db, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		lg.Info("Listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return errors.Wrap(err, "listen")
	case <-ctx.Done():
	}

	lg.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "shutdown")
	}
	return nil
}
