package main

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	jwtware "github.com/gofiber/jwt/v2"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/wichananm65/clickshop-backend/internal/apperror"
	"github.com/wichananm65/clickshop-backend/internal/auth"
	"github.com/wichananm65/clickshop-backend/internal/cart"
	"github.com/wichananm65/clickshop-backend/internal/checkout"
	"github.com/wichananm65/clickshop-backend/internal/config"
	"github.com/wichananm65/clickshop-backend/internal/database"
	"github.com/wichananm65/clickshop-backend/internal/events"
	"github.com/wichananm65/clickshop-backend/internal/metrics"
	"github.com/wichananm65/clickshop-backend/internal/order"
	"github.com/wichananm65/clickshop-backend/internal/product"
	"github.com/wichananm65/clickshop-backend/internal/user"
	"github.com/wichananm65/clickshop-backend/internal/validation"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalw("load config", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.MigrateOnStart {
		if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
			log.Fatalw("run migrations", "error", err)
		}
	}

	db, err := database.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalw("open database", "error", err)
	}
	defer db.Close()

	publisher := newPublisher(cfg.RabbitMQURL)
	defer publisher.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	app := fiber.New(fiber.Config{ErrorHandler: apperror.ErrorHandler})
	app.Use(recover.New())
	app.Use(requestid.New())
	setupCORS(app, cfg.CORSAllowOrigins)

	app.Get("/health", healthHandler(db))
	app.Get("/metrics", metrics.Handler(reg))

	if cfg.JWTSecret != "" {
		app.Use(jwtware.New(jwtware.Config{
			SigningKey: []byte(cfg.JWTSecret),
			ContextKey: auth.LocalsKey,
		}))
	} else {
		log.Warn("JWT_SECRET is not set, routes are not authenticated")
	}
	app.Use(auth.TagCaller())
	app.Use(logger.New(logger.Config{
		Format: "${time} ${locals:requestid} ${locals:callerId} ${status} ${method} ${path} ${latency}\n",
	}))

	validate := validation.New()
	catalog := product.NewService(product.NewPostgresRepository(db))
	identity := user.NewService(user.NewPostgresRepository(db))

	cartService := cart.NewService(cart.NewPostgresStore(db), catalog, identity, m)
	cart.NewHandler(cartService, validate).RegisterProtectedRoutes(app)

	checkoutService := checkout.NewService(checkout.NewPostgresUnitOfWork(db), publisher, m)
	checkout.NewHandler(checkoutService, validate).RegisterProtectedRoutes(app)

	order.NewHandler(order.NewService(order.NewPostgresRepository(db))).RegisterProtectedRoutes(app)

	go func() {
		if err := app.Listen(cfg.Addr); err != nil {
			log.Errorw("server stopped", "error", err)
			stop()
		}
	}()
	log.Infow("server started", "addr", cfg.Addr)

	<-ctx.Done()
	log.Info("shutting down")
	if err := app.ShutdownWithTimeout(cfg.ShutdownTimeout); err != nil {
		log.Errorw("shutdown", "error", err)
	}
}

func setupCORS(app *fiber.App, origins string) {
	app.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowMethods: "GET,POST,HEAD,PUT,DELETE,PATCH",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
}

// newPublisher connects to RabbitMQ when a URL is configured. Without a
// broker, order events are dropped.
func newPublisher(url string) events.Publisher {
	if url == "" {
		log.Info("RABBITMQ_URL is not set, order events are disabled")
		return events.NoopPublisher{}
	}
	p, conn, err := events.Dial(url)
	if err != nil {
		log.Warnw("rabbitmq unavailable, order events are disabled", "error", err)
		return events.NoopPublisher{}
	}
	return closingPublisher{Publisher: p, conn: conn}
}

type closingPublisher struct {
	events.Publisher
	conn io.Closer
}

func (p closingPublisher) Close() error {
	return errors.Join(p.Publisher.Close(), p.conn.Close())
}

func healthHandler(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "unavailable"})
		}
		return c.JSON(fiber.Map{"status": "ok"})
	}
}
