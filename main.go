package main

import (
	"context"
	"errors"
	"os"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog/log"

	"storefront/internal/auth"
	"storefront/internal/cache"
	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/handlers"
	"storefront/internal/logging"
	"storefront/internal/middleware"
	"storefront/internal/repositories"
	"storefront/internal/services"
	"storefront/pkg/rabbitmq"
)

// memoryDSN selects the in-memory product repository instead of a database.
const memoryDSN = "memory"

func main() {
	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	logging.Setup(cfg.Env)

	ctx := context.Background()

	// --- Store ---
	repo, connector, err := openStore(ctx, cfg.DatabaseDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open product store")
	}
	if cfg.SeedOnStart {
		if _, err := repositories.Seed(ctx, repo, repositories.SampleProducts()); err != nil {
			log.Fatal().Err(err).Msg("failed to seed products")
		}
	}

	// --- Page cache ---
	pages, err := openPageCache(ctx, cfg.Redis)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open page cache")
	}

	// --- Product events ---
	// The broker is optional; without it mutations are not announced.
	var events services.EventPublisher
	var mqClient *rabbitmq.Client
	if cfg.RabbitMQ.URL != "" {
		mqClient, err = rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQ.URL, Queue: cfg.RabbitMQ.Queue})
		if err != nil {
			log.Warn().Err(err).Msg("RabbitMQ unavailable, product events disabled")
		} else {
			events = mqClient
			if err := mqClient.ConsumeProductEvents(rabbitmq.LogProductEvent); err != nil {
				log.Error().Err(err).Msg("failed to start product event consumer")
			}
		}
	}

	// --- Services and handlers ---
	checker, err := auth.FromConfig(cfg.Admin)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid admin credential")
	}
	productService := services.NewProductService(repo, pages, events)
	insightService := services.NewInsightService(repo, pages)

	checks := map[string]handlers.Pinger{"cache": pages}
	if connector != nil {
		checks["database"] = connector
	}
	app := newApp(cfg, productService, insightService, checker, handlers.NewHealthHandler(checks))

	// --- HTTP server ---
	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("starting server")
		if err := app.Listen(cfg.Port); err != nil {
			log.Error().Err(err).Msg("server stopped")
		}
	}()

	wait := gfshutdown.GracefulShutdown(ctx, cfg.ShutdownTimeout, map[string]gfshutdown.Operation{
		"storefront": func(ctx context.Context) error {
			log.Info().Msg("graceful shutdown initiated")
			return shutdown(ctx, app, mqClient, pages, connector)
		},
	})

	exitCode := <-wait
	log.Info().Int("code", exitCode).Msg("server gracefully stopped")
	os.Exit(exitCode)
}

// newApp builds the Fiber application with middleware and every route.
func newApp(cfg *config.Config, products *services.ProductService, insights *services.InsightService, checker auth.CredentialChecker, health *handlers.HealthHandler) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "Storefront",
		DisableStartupMessage: cfg.IsProduction(),
		ErrorHandler:          handlers.ErrorHandler,
	})

	// --- Middleware ---
	app.Use(recover.New())
	app.Use(cors.New())
	app.Use(middleware.RequestLogger())

	// --- Routes ---
	handlers.Mount(app, products, insights, checker)
	app.Get("/health", health.HandleHealth)

	return app
}

// openStore returns the product repository for dsn. The connector is nil for
// the in-memory repository.
func openStore(ctx context.Context, dsn string) (repositories.ProductRepository, *database.Connector, error) {
	if dsn == memoryDSN {
		log.Warn().Msg("using in-memory product repository, data is not persisted")
		return repositories.NewMockProductRepository(), nil, nil
	}

	connector := database.NewConnector(dsn)
	if err := connector.Migrate(ctx); err != nil {
		_ = connector.Disconnect()
		return nil, nil, err
	}
	return repositories.NewGORMProductRepository(connector), connector, nil
}

// openPageCache connects to Redis when an address is configured and falls
// back to a process-local cache otherwise.
func openPageCache(ctx context.Context, cfg config.RedisConfig) (cache.PageCache, error) {
	if cfg.Addr == "" {
		log.Info().Msg("REDIS_ADDR not set, using in-memory page cache")
		return cache.NewMemoryPageCache(), nil
	}
	pages, err := cache.NewRedisPageCache(ctx, cache.RedisOptions{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
		Prefix:   cfg.Prefix,
	})
	if err != nil {
		return nil, err
	}
	log.Info().Str("addr", cfg.Addr).Msg("connected to Redis page cache")
	return pages, nil
}

// shutdown stops accepting requests, waits for in-flight ones and then
// releases the backends in reverse start order.
func shutdown(ctx context.Context, app *fiber.App, mqClient *rabbitmq.Client, pages cache.PageCache, connector *database.Connector) error {
	var errs []error
	if err := app.ShutdownWithContext(ctx); err != nil {
		errs = append(errs, err)
	}
	if mqClient != nil {
		if err := mqClient.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := pages.Close(); err != nil {
		errs = append(errs, err)
	}
	if connector != nil {
		if err := connector.Disconnect(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
