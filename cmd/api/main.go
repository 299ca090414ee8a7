package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/uptrace/bun"

	_ "github.com/alu-network/backend/docs" // Swagger docs (generated)
	"github.com/alu-network/backend/internal/admin"
	"github.com/alu-network/backend/internal/auth"
	"github.com/alu-network/backend/internal/config"
	"github.com/alu-network/backend/internal/database"
	httpServer "github.com/alu-network/backend/internal/http"
	"github.com/alu-network/backend/internal/link"
	"github.com/alu-network/backend/internal/logging"
	"github.com/alu-network/backend/internal/ratelimit"
	"github.com/alu-network/backend/internal/user"
	"github.com/alu-network/backend/internal/validation"
)

// @title           ALU Network API
// @version         1.0
// @description     REST API for the alumni network: accounts, profiles, social links, and a staff management surface.

// @contact.name   API Support
// @contact.email  support@example.com

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @host      localhost:8080
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the token.

func main() {
	if err := run(); err != nil {
		log.Fatalf("Application error: %v", err)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	logger := logging.NewLogger(cfg.Server.IsDevelopment())
	logger.Info("starting application",
		"env", cfg.Server.Env,
		"port", cfg.Server.Port,
	)

	// Initialize database connection
	db, err := initDB(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	if err := database.CreateSchema(context.Background(), db); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	// Initialize Redis connection
	redisClient, err := initRedis(cfg.Redis)
	if err != nil {
		return fmt.Errorf("failed to initialize Redis: %w", err)
	}
	defer redisClient.Close()

	// Initialize repositories
	userRepo := user.NewRepository(db)
	linkRepo := link.NewRepository(db)
	tokenRegistry := auth.NewRedisTokenRegistry(redisClient)

	// Initialize rate limiter
	rateLimiter := ratelimit.NewLimiter(redisClient)

	// Initialize PASETO service
	pasetoService, err := auth.NewPasetoService(cfg.Auth.PasetoKey)
	if err != nil {
		return fmt.Errorf("failed to initialize PASETO service: %w", err)
	}

	// Initialize services
	userService := user.NewService(userRepo, tokenRegistry, logger)
	linkService := link.NewService(linkRepo)
	authService := auth.NewService(
		userRepo,
		tokenRegistry,
		pasetoService,
		logger,
		cfg.Auth.TokenDuration,
	)

	if err := bootstrapSuperuser(context.Background(), cfg.Admin, userService, logger); err != nil {
		return fmt.Errorf("failed to bootstrap superuser: %w", err)
	}

	// Initialize HTTP handlers
	userHandler := user.NewHandler(userService, linkService, rateLimiter, logger)
	linkHandler := link.NewHandler(linkService, logger)
	authHandler := auth.NewHandler(authService, rateLimiter, logger)
	adminHandler := admin.NewHandler(userService, linkService, logger)
	authMiddleware := auth.NewMiddleware(pasetoService, tokenRegistry, userRepo)

	// Initialize router
	router := httpServer.NewRouter(cfg, userHandler, linkHandler, authHandler, adminHandler, authMiddleware, logger)

	// Initialize HTTP server
	serverAddr := ":" + cfg.Server.Port
	server := httpServer.NewServer(
		serverAddr,
		router,
		cfg.Server.ReadTimeout,
		cfg.Server.WriteTimeout,
	)

	// Start server in a goroutine
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- server.Start()
	}()

	// Wait for interrupt signal or server error
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		log.Printf("Received signal: %v", sig)

		// Graceful shutdown with timeout
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// bootstrapSuperuser creates the configured admin account on first
// startup. A no-op when unconfigured or when the account already exists.
func bootstrapSuperuser(ctx context.Context, cfg config.AdminConfig, users *user.Service, logger *logging.Logger) error {
	if cfg.Email == "" || cfg.Password == "" {
		return nil
	}

	created, err := users.CreateSuperuser(ctx, cfg.Email, cfg.Password)
	if err != nil {
		var verrs validation.Errors
		if errors.As(err, &verrs) && verrs.Has("email") {
			// Already bootstrapped on a previous start
			return nil
		}
		return err
	}

	logger.Info("bootstrapped superuser", "user_id", created.ID)
	return nil
}

// initDB initializes the database connection and returns a Bun DB instance
func initDB(cfg config.DatabaseConfig) (*bun.DB, error) {
	sqlDB, err := sql.Open("postgres", cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Verify connection
	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// Set connection pool settings
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	return database.NewBunDB(sqlDB), nil
}

// initRedis initializes the Redis connection and returns a Redis client
func initRedis(cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Verify connection
	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	return client, nil
}
