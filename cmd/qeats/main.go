package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/kailas-cloud/qeats/internal/config"
	"github.com/kailas-cloud/qeats/internal/db"
	dbRedis "github.com/kailas-cloud/qeats/internal/db/redis"
	logpkg "github.com/kailas-cloud/qeats/internal/logger"
	"github.com/kailas-cloud/qeats/internal/metrics"
	"github.com/kailas-cloud/qeats/internal/repository/memstore"
	"github.com/kailas-cloud/qeats/internal/repository/proximity"
	restaurantrepo "github.com/kailas-cloud/qeats/internal/repository/restaurant"
	"github.com/kailas-cloud/qeats/internal/repository/seed"
	chiTransport "github.com/kailas-cloud/qeats/internal/transport/chi"
	healthuc "github.com/kailas-cloud/qeats/internal/usecase/health"
	menuuc "github.com/kailas-cloud/qeats/internal/usecase/menu"
	restaurantuc "github.com/kailas-cloud/qeats/internal/usecase/restaurant"
	"github.com/kailas-cloud/qeats/internal/version"
)

// restaurantStore is everything the composition root needs from a store backend.
type restaurantStore interface {
	restaurantuc.Store
	menuuc.Store
	healthuc.StorePinger
}

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting qeats API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("store_driver", cfg.Store.Driver),
		zap.Bool("cache_enabled", cfg.Cache.Enabled),
		zap.Strings("cache_addrs", cfg.Cache.Addrs),
	)

	ctx := context.Background()

	loc, err := cfg.Search.Location()
	if err != nil {
		logger.Fatal("Invalid search timezone", zap.Error(err))
	}

	// Register metrics explicitly (no init())
	metrics.Register()

	store, closeStore, err := openStore(ctx, cfg.Store, logger)
	if err != nil {
		logger.Fatal("Failed to open restaurant store", zap.Error(err))
	}
	defer closeStore()

	// Cache handle stays unavailable unless a backend comes up; lookups then bypass it.
	handle := db.NewHandle()
	if cfg.Cache.Enabled {
		initCache(ctx, handle, cfg.Cache, logger)
	} else {
		logger.Info("Proximity cache disabled by config")
	}

	nearby := proximity.New(handle, store, metrics.ProximityCacheTotal, logger).
		WithTTL(cfg.Cache.EntryTTL()).
		WithKeyPrefix(cfg.Cache.KeyPrefix).
		WithPopulateGuard(cfg.Cache.PopulateGuard())

	// Create use case services
	restaurantSvc := restaurantuc.New(store, nearby).
		WithMetrics(metrics.SearchPredicateDuration, metrics.SearchRequestsTotal)
	menuSvc := menuuc.New(store)
	healthSvc := healthuc.New(store, handle)

	// Create chi server
	server := chiTransport.NewServer(restaurantSvc, menuSvc, healthSvc, logger).
		WithClock(time.Now, loc).
		WithConcurrentSearch(cfg.Search.Concurrent)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(metrics.Middleware())
	server.Mount(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	if err := handle.Dispose(shutdownCtx, false); err != nil {
		logger.Warn("Cache dispose failed", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// openStore builds the restaurant store for the configured driver and loads the seed dataset.
func openStore(ctx context.Context, cfg config.StoreConfig, logger *zap.Logger) (restaurantStore, func(), error) {
	var cat *seed.Catalogue
	if cfg.Seed != "" {
		ds, err := seed.Load(ctx, cfg.Seed, cfg.AWSRegion)
		if err != nil {
			return nil, nil, fmt.Errorf("load seed: %w", err)
		}
		if cat, err = ds.Catalogue(); err != nil {
			return nil, nil, fmt.Errorf("seed catalogue: %w", err)
		}
		logger.Info("Seed dataset loaded",
			zap.String("source", cfg.Seed),
			zap.Int("restaurants", len(cat.Restaurants)),
			zap.Int("items", len(cat.Items)),
			zap.Int("menus", len(cat.Menus)),
		)
	}

	switch cfg.Driver {
	case "memory":
		s := memstore.New()
		if cat != nil {
			s.Load(cat.Restaurants, cat.Items, cat.Menus)
		}
		return s, func() {}, nil
	case "postgres":
		repo, err := restaurantrepo.Open(cfg.DSN)
		if err != nil {
			return nil, nil, err
		}
		closeRepo := func() {
			if err := repo.Close(); err != nil {
				logger.Warn("Failed to close restaurant store", zap.Error(err))
			}
		}
		if err := repo.Ping(ctx); err != nil {
			closeRepo()
			return nil, nil, err
		}
		if cfg.AutoMigrate {
			if err := repo.Migrate(ctx); err != nil {
				closeRepo()
				return nil, nil, err
			}
		}
		if cat != nil {
			if err := repo.Seed(ctx, cat.Restaurants, cat.Items, cat.Menus); err != nil {
				closeRepo()
				return nil, nil, err
			}
		}
		logger.Info("Connected to restaurant store")
		return repo, closeRepo, nil
	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}

// initCache connects the cache backend and installs it into handle.
// Failures leave the handle unavailable and the service runs uncached.
func initCache(ctx context.Context, handle *db.Handle, cfg config.CacheConfig, logger *zap.Logger) {
	// rueidis speaks RESP to both Valkey and Redis.
	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Addrs,
		Password: cfg.Password,
	})
	if err != nil {
		logger.Warn("Failed to create cache store, running uncached",
			zap.String("driver", cfg.Driver), zap.Error(err))
		return
	}

	if err := store.WaitForReady(ctx, time.Duration(cfg.ReadinessTimeout)*time.Second); err != nil {
		store.Close()
		logger.Warn("Cache not ready, running uncached",
			zap.String("driver", cfg.Driver), zap.Error(err))
		return
	}

	handle.Init(store)
	logger.Info("Connected to cache", zap.String("driver", cfg.Driver))
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"code":    "internal_error",
						"message": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			requestID := chiMiddleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("query", r.URL.RawQuery),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
