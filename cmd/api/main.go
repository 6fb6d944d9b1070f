package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/techflow/techflow-backend/internal/api"
	"github.com/techflow/techflow-backend/internal/auth"
	"github.com/techflow/techflow-backend/internal/config"
	"github.com/techflow/techflow-backend/internal/contact"
	gdb "github.com/techflow/techflow-backend/internal/db"
	"github.com/techflow/techflow-backend/internal/db/entities"
	"github.com/techflow/techflow-backend/internal/db/interfaces"
	"github.com/techflow/techflow-backend/internal/log"
	"github.com/techflow/techflow-backend/internal/metrics"
	"github.com/techflow/techflow-backend/internal/posts"
	"github.com/techflow/techflow-backend/internal/site"
	"github.com/techflow/techflow-backend/internal/sitemap"
	"github.com/techflow/techflow-backend/internal/store"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Setup logger
	logger, err := log.NewSugar(cfg.Env)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Infow("Starting web backend",
		"env", cfg.Env,
		"addr", cfg.HTTPAddr,
		"profile", cfg.Site.Profile,
		"version", api.Version,
	)

	// Setup metrics
	metricsObj, metricsHandler, err := metrics.Setup("web-api")
	if err != nil {
		logger.Fatalw("Failed to setup metrics", "error", err)
	}

	// Initialize database via the backend abstraction
	db := gdb.MustNewDatabase(&gdb.Config{
		Type: cfg.Database.Type,
		DSN:  cfg.Database.PostgresDSN,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := gdb.ConnectAndMigrate(ctx, db, gdb.AllSchemas()); err != nil {
		logger.Fatalw("Failed to initialize database", "error", err)
	}
	defer db.Disconnect(context.Background())
	logger.Infow("Database initialized", "type", cfg.Database.Type)

	// Seed the in-memory backend in dev so the site has content to show
	if cfg.IsDev() && cfg.Database.Type == "memory" {
		if err := seedDev(ctx, db); err != nil {
			logger.Warnw("Dev seed failed", "error", err)
		} else {
			logger.Infow("Dev fixtures seeded")
		}
	}

	// Setup cache, falls back to in-memory when Redis is unreachable
	cache, err := store.NewCache(cfg.Cache.RedisAddr, logger, metricsObj)
	if err != nil {
		logger.Fatalw("Failed to setup cache", "error", err)
	}
	defer cache.Close()

	if err := cache.Ping(ctx); err != nil {
		logger.Fatalw("Cache ping failed", "error", err)
	}
	logger.Infow("Cache ready", "in_memory", cache.IsInMemoryMode())

	// Resolve the active site profile
	profile, err := site.Lookup(cfg.Site.Profile, cfg.Site.BaseURL)
	if err != nil {
		logger.Fatalw("Unknown site profile", "profile", cfg.Site.Profile, "known", site.Names())
	}

	// Setup services
	postsSvc := posts.NewService(db, cache, logger, metricsObj)
	authSvc := auth.NewService(db, cache, logger, cfg.Auth.SessionTTL, cfg.Auth.BcryptCost)
	contactSvc := contact.NewService(db, contact.NewLogMailer(logger), cfg.Contact.Recipient, logger, metricsObj)
	sitemapSvc := sitemap.NewService(postsSvc, cache, cfg.Site.BaseURL, logger)

	// Setup API handler and middleware
	handler := api.NewHandler(postsSvc, authSvc, contactSvc, sitemapSvc, profile, db, cache, cfg, logger)
	middleware := api.NewMiddleware(logger, metricsObj, authSvc)

	router := handler.Routes(middleware, cfg.Security.CORSAllowedOrigins, cfg.Security.RateLimitRPM)
	logger.Infow("CORS configured", "allowed_origins", cfg.Security.CORSAllowedOrigins)

	// Add metrics endpoint
	handler.MountMetrics(router, metricsHandler)

	// Setup HTTP server
	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in background
	serverErrors := make(chan error, 1)
	go func() {
		logger.Infow("API server starting", "addr", server.Addr)
		serverErrors <- server.ListenAndServe()
	}()

	// Wait for interrupt signal
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		logger.Fatalw("Server startup failed", "error", err)
	case sig := <-shutdown:
		logger.Infow("Shutdown signal received", "signal", sig.String())

		// Give outstanding requests 30 seconds to complete
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			logger.Errorw("Graceful shutdown failed", "error", err)
			server.Close()
		}

		logger.Infow("Server stopped")
	}
}

// seedDev loads sample users, admin grants, and posts. Users are created
// through the repository so the generated IDs can be threaded into the
// dependent fixtures.
func seedDev(ctx context.Context, db interfaces.Database) error {
	userRepo := db.Repository(entities.UserSchema)

	userIDs := make([]string, 0, len(gdb.UserFixtures))
	for _, fixture := range gdb.UserFixtures {
		user, err := userRepo.Create(ctx, fixture)
		if err != nil {
			return fmt.Errorf("seed user: %w", err)
		}
		userIDs = append(userIDs, user["id"].(string))
	}

	if err := db.Seed(ctx, entities.AdminSettingSchema, gdb.AdminSettingFixtures(userIDs)); err != nil {
		return fmt.Errorf("seed admin settings: %w", err)
	}
	if err := db.Seed(ctx, entities.PostSchema, gdb.PostFixtures(userIDs)); err != nil {
		return fmt.Errorf("seed posts: %w", err)
	}
	return nil
}
