package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"spa-booking-backend/config"
	"spa-booking-backend/repository"
	"spa-booking-backend/routes"
	"spa-booking-backend/services"
	"spa-booking-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"
)

const serviceName = "spa-booking-backend"

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	cfg, err := config.Load(serviceName)
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}
	cfg.LogConfiguration()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		cfg.Log.Fatal("server stopped with error", "error", err)
	}
	cfg.Log.Info("server stopped")
}

func run(ctx context.Context, cfg *config.Config) error {
	logger := cfg.Log

	db, err := config.ConnectDB(cfg)
	if err != nil {
		return err
	}
	if err := repository.Migrate(db); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	catalogRepo := repository.NewGormCatalog(db)
	bookings := repository.NewGormBookings(db)
	counter := repository.NewGormBillCounter(db)

	var (
		carts repository.CartStore        = repository.NewMemoryCartStore()
		idem  repository.IdempotencyStore = repository.NewMemoryIdempotency()
	)
	if cfg.RedisAddr != "" {
		rdb, err := repository.NewRedis(ctx, cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			return err
		}
		defer rdb.Close()
		carts = repository.NewRedisCartStore(rdb, cfg.SessionTTL)
		idem = repository.NewRedisIdempotency(rdb, cfg.IdempotencyTTL)
		logger.Info("redis connected", "addr", cfg.RedisAddr)
	} else {
		logger.Warn("REDIS_ADDR not set, carts and idempotency keys are kept in memory")
	}

	var notifier services.Notifier = services.NopNotifier{}
	if cfg.TwilioEnabled() {
		notifier = services.NewTwilioNotifier(cfg, repository.NewGormNotificationLogs(db))
	}

	var events services.EventPublisher = services.NopPublisher{}
	if len(cfg.KafkaBrokers) > 0 {
		events = services.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, serviceName)
	}
	defer events.Close()

	var legacy services.LegacyHistory
	if cfg.MongoURI != "" {
		client, err := services.ConnectMongo(ctx, cfg.MongoURI)
		if err != nil {
			// history still works from the primary store
			logger.Error("legacy history disabled", "error", err)
		} else {
			defer client.Disconnect(context.Background())
			legacy = services.NewMongoLegacyHistory(client, cfg.MongoDatabase)
		}
	}

	catalog := services.NewCatalogService(catalogRepo, logger)
	orders := services.NewOrderService(services.OrderDeps{
		Catalog:  catalogRepo,
		Bookings: bookings,
		Counter:  counter,
		Tx:       repository.NewGormTx(db),
		Notifier: notifier,
		Events:   events,
		Log:      logger,
	}, services.OrderSettings{
		Location:       cfg.Location,
		CutoffHour:     cfg.BusinessDayCutoff,
		EstimateBuffer: cfg.EstimateBuffer,
	})
	history := services.NewHistoryService(bookings, legacy, catalogRepo, carts, logger)
	cartService := services.NewCartService(carts, catalog, orders, logger)

	dailyClose := services.NewDailyClose(bookings, counter, cfg)
	if err := dailyClose.Start(); err != nil {
		return err
	}
	defer dailyClose.Stop()

	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	r, err := routes.SetupRouter(routes.Deps{
		Config:  cfg,
		Tokens:  utils.NewTokenIssuer(cfg.JWTSecret, cfg.SessionTTL, cfg.AdminTokenTTL),
		Catalog: catalog,
		Carts:   cartService,
		Orders:  orders,
		History: history,
		Close:   dailyClose,
		Idem:    idem,
	})
	if err != nil {
		return err
	}
	printRoutes(logger, r)

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server listening", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down", "timeout", cfg.ShutdownTimeout)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func printRoutes(logger *config.Logger, r *gin.Engine) {
	for _, route := range r.Routes() {
		logger.Debug("route registered", "method", route.Method, "path", route.Path)
	}
}
