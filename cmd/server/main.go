// Command server runs the streamgate API: request admission in front of
// cached media endpoints. main wires dependencies and owns the process
// lifecycle; domain logic lives under internal/.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"streamgate/internal/cache"
	mediaservice "streamgate/internal/media/service"
	"streamgate/internal/platform/config"
	"streamgate/internal/platform/httpserver"
	"streamgate/internal/platform/logger"
	platformredis "streamgate/internal/platform/redis"
	"streamgate/internal/platform/token"
	rladmin "streamgate/internal/ratelimit/admin"
	rlmetrics "streamgate/internal/ratelimit/metrics"
	rlmiddleware "streamgate/internal/ratelimit/middleware"
	rlservice "streamgate/internal/ratelimit/service"
	"streamgate/internal/ratelimit/store/counter"
	httptransport "streamgate/internal/transport/http"
)

func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		log.Error("redis connection failed", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	// Cache backing store: redis when configured, in-process otherwise.
	var cacheStore cache.Store
	if redisClient != nil {
		cacheStore = cache.NewRedisStore(redisClient.Client)
		log.Info("cache backed by redis")
	} else {
		cacheStore = cache.NewMemoryStore()
		log.Info("cache backed by process memory")
	}

	cacheSvc, err := cache.New(cacheStore,
		cache.WithLogger(log),
		cache.WithMetrics(cache.NewMetrics()),
		cache.WithCompression(cfg.CacheCompression),
	)
	if err != nil {
		log.Error("cache init failed", "error", err)
		os.Exit(1)
	}

	cacheManager, err := cache.NewManager(cacheSvc)
	if err != nil {
		log.Error("cache manager init failed", "error", err)
		os.Exit(1)
	}

	admissionMetrics := rlmetrics.New()

	// Counter store: redis keeps windows consistent across replicas; the
	// in-memory store sweeps expired windows in the background and reports
	// the surviving count through the tracked-counters gauge.
	var counters rlservice.CounterStore
	if cfg.CounterStore == "redis" && redisClient != nil {
		counters = counter.NewRedis(redisClient.Client)
		log.Info("rate limit counters backed by redis")
	} else {
		memStore := counter.New()
		memStore.StartSweeper(ctx, time.Minute, admissionMetrics.SetTrackedCounters)
		counters = memStore
		log.Info("rate limit counters backed by process memory")
	}

	admission, err := rlservice.New(counters,
		rlservice.WithLogger(log),
		rlservice.WithMetrics(admissionMetrics),
	)
	if err != nil {
		log.Error("admission service init failed", "error", err)
		os.Exit(1)
	}

	adminSvc, err := rladmin.New(counters,
		rladmin.WithLogger(log),
		rladmin.WithConfig(admission.Config()),
	)
	if err != nil {
		log.Error("admin service init failed", "error", err)
		os.Exit(1)
	}

	catalog := mediaservice.New(mediaservice.WithLogger(log))

	deps := httptransport.Deps{
		Logger:         log,
		Media:          httptransport.NewMediaHandler(catalog, cacheManager, log),
		Admission:      rlmiddleware.New(admission, log, rlmiddleware.WithDisabled(cfg.RateLimitDisabled)),
		RateLimitAdmin: rladmin.NewHandler(adminSvc),
		CacheAdmin:     httptransport.NewCacheAdminHandler(cacheManager),
		TokenValidator: token.NewValidator(cfg.JWTSigningKey),
	}
	if redisClient != nil {
		deps.Health = redisClient
	}
	router := httptransport.NewRouter(deps)

	srv := httpserver.New(cfg.Addr, router)

	go func() {
		log.Info("starting streamgate", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
}
