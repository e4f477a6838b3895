package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/op/go-logging"
	"github.com/redis/go-redis/v9"

	"github.com/mfigueroa/fastfood-pos/internal/adapter/feed"
	"github.com/mfigueroa/fastfood-pos/internal/adapter/handler"
	"github.com/mfigueroa/fastfood-pos/internal/adapter/notify"
	"github.com/mfigueroa/fastfood-pos/internal/adapter/rates"
	"github.com/mfigueroa/fastfood-pos/internal/adapter/storage"
	"github.com/mfigueroa/fastfood-pos/internal/config"
	"github.com/mfigueroa/fastfood-pos/internal/core/service"
	"github.com/mfigueroa/fastfood-pos/internal/port"
)

var log = logging.MustGetLogger("main")

func main() {
	cfg, err := config.InitConfig()
	if err != nil {
		logging.MustGetLogger("main").Fatalf("config: %v", err)
	}
	if err := initLogger(cfg.LogLevel); err != nil {
		log.Fatalf("logger: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		log.Fatalf("load timezone %q: %v", cfg.Timezone, err)
	}

	// MySQL
	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("open mysql: %v", err)
	}
	db.SetMaxOpenConns(50)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)
	if err := db.PingContext(ctx); err != nil {
		log.Fatalf("ping mysql: %v", err)
	}
	log.Info("connected to mysql")

	// Redis
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddress, PoolSize: 100})
	redisUp := rdb.Ping(ctx).Err() == nil
	if redisUp {
		log.Info("connected to redis")
	} else {
		log.Warning("redis unavailable, falling back to polling change feed and in-process degradation")
	}

	// Adapters
	mysqlAdapter := storage.NewMySQLAdapter(db)
	var redisAdapter *storage.RedisAdapter
	if redisUp {
		redisAdapter = storage.NewRedisAdapter(rdb)
		mysqlAdapter.WithPublisher(redisAdapter)
	}

	var rateCache port.RateCache
	var sessions port.SessionStore
	var idem port.IdempotencyStore
	if redisUp {
		rateCache = redisAdapter
		sessions = redisAdapter
		idem = redisAdapter
	} else {
		mem := storage.NewMemoryCache()
		rateCache, sessions, idem = mem, mem, mem
	}

	rateClient := rates.NewClient(cfg.RateURL, cfg.FallbackRate, rateCache)
	notifier := notify.NewNotifier(mysqlAdapter, mysqlAdapter)

	// The change feed prefers push; polling is the fallback strategy.
	var changeFeed port.ChangeFeed
	if redisUp {
		changeFeed = feed.NewRedisFeed(rdb)
	} else {
		changeFeed = feed.NewPoller(mysqlAdapter, cfg.PollInterval)
	}

	// Services
	authService := service.NewAuthService(mysqlAdapter, sessions)
	orderService := service.NewOrderService(mysqlAdapter, notifier)
	closureService := service.NewClosureService(mysqlAdapter, mysqlAdapter, idem, loc)
	catalogService := service.NewCatalogService(mysqlAdapter)
	notificationService := service.NewNotificationService(mysqlAdapter)
	carts := service.NewCartStore()

	// HTTP server
	httpHandler := handler.NewHTTPHandler(
		authService, orderService, carts, catalogService,
		closureService, notificationService, rateClient, changeFeed, loc,
	)
	mux := http.NewServeMux()
	httpHandler.Register(mux)

	httpServer := &http.Server{
		Addr:    cfg.HTTPAddress,
		Handler: mux,
	}

	go func() {
		log.Infof("HTTP server listening on %s", cfg.HTTPAddress)
		if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
			log.Errorf("HTTP server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	httpServer.Shutdown(shutdownCtx)
	log.Info("HTTP server stopped")

	cancel()
	rdb.Close()
	db.Close()
	log.Info("connections closed")
}

// initLogger configures the go-logging backend with the requested level.
func initLogger(logLevel string) error {
	baseBackend := logging.NewLogBackend(os.Stdout, "", 0)
	format := logging.MustStringFormatter(
		`%{time:2006-01-02 15:04:05} %{level:.5s}     %{message}`,
	)
	backendFormatter := logging.NewBackendFormatter(baseBackend, format)
	backendLeveled := logging.AddModuleLevel(backendFormatter)

	level, err := logging.LogLevel(logLevel)
	if err != nil {
		return err
	}
	backendLeveled.SetLevel(level, "")
	logging.SetBackend(backendLeveled)
	return nil
}
