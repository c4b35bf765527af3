package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"crypto/tls"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"offer-catalog-api/internal/auth"
	"offer-catalog-api/internal/cache"
	"offer-catalog-api/internal/config"
	"offer-catalog-api/internal/database"
	"offer-catalog-api/internal/events"
	"offer-catalog-api/internal/features"
	"offer-catalog-api/internal/handler"
	"offer-catalog-api/internal/middleware"
	"offer-catalog-api/internal/service"
	tlsconfig "offer-catalog-api/internal/tls"
	"offer-catalog-api/internal/tracing"
)

func main() {
	configFile := flag.String("config", "", "Path to JSON config file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Generate an ephemeral secret for development when none is configured.
	// Tokens will not survive a restart.
	if cfg.Auth.JWTSecret == "" {
		cfg.Auth.JWTSecret = randomSecret()
		log.Println("WARNING: JWT_SECRET not set, using an ephemeral secret")
	}

	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Initialize database
	db, err := database.NewDB(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// Initialize tracing
	if _, err := tracing.InitTracing(tracing.Config{
		Enabled:     cfg.Tracing.Enabled,
		Endpoint:    cfg.Tracing.Endpoint,
		ServiceName: cfg.Tracing.ServiceName,
		Environment: cfg.Tracing.Environment,
	}); err != nil {
		log.Fatalf("Failed to initialize tracing: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracing.Shutdown(ctx); err != nil {
			log.Printf("Error shutting down tracing: %v", err)
		}
	}()

	// Select cache backend: Redis when configured, in-process otherwise.
	var cacheBackend cache.Cache
	if cfg.Cache.Enabled {
		if cfg.Redis.Addr != "" {
			redisCache, err := cache.NewRedisCache(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
			if err != nil {
				log.Printf("WARNING: Redis unavailable (%v), falling back to in-memory cache", err)
				cacheBackend = cache.NewInMemoryCache()
			} else {
				cacheBackend = redisCache
				log.Printf("Cache: Redis at %s", cfg.Redis.Addr)
			}
		} else {
			cacheBackend = cache.NewInMemoryCache()
			log.Println("Cache: in-memory")
		}
	}

	// Feature flags
	flags := features.NewManager()
	flags.Register(features.CacheEnabled, cfg.Cache.Enabled, "Cache the current week's offer listing")
	flags.Register(features.EventsEnabled, true, "Publish catalog change events")
	flags.Register(features.ChatAssistant, true, "Storefront chat assistant")

	// Events: log catalog changes as they happen.
	eventManager := events.NewManager()
	for _, t := range []events.Type{
		events.OfferCreated,
		events.OfferUpdated,
		events.OfferDeleted,
		events.OffersReordered,
		events.ContactReceived,
		events.NewsletterSubscribed,
	} {
		eventManager.Subscribe(t, logEvent)
	}

	// Initialize service
	svc := service.NewService(db, service.Options{
		Cache:    cacheBackend,
		Events:   eventManager,
		Flags:    flags,
		CacheTTL: time.Duration(cfg.Cache.TTLMinutes) * time.Minute,
	})

	// Initialize auth
	authManager := auth.NewManager(db, cfg.Auth.JWTSecret, time.Duration(cfg.Auth.TokenTTLHours)*time.Hour)

	// Initialize handlers
	h := handler.NewHandlerWithOptions(svc, authManager, flags, handler.NewHandlerOptions{
		MaxBodySize: cfg.Security.MaxRequestBodySize,
	})

	// Initialize rate limiter
	rateLimiter := middleware.NewRateLimiter(cfg.RateLimit.Rate, time.Duration(cfg.RateLimit.Window)*time.Second)
	defer rateLimiter.Stop()

	// Setup router
	r := chi.NewRouter()

	// Middleware (order matters)
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)

	if cfg.RateLimit.Enabled {
		r.Use(middleware.RateLimitMiddleware(rateLimiter))
	}

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   strings.Split(cfg.Security.AllowedOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if cfg.Tracing.Enabled {
		r.Use(middleware.TracingMiddleware())
	}

	r.Mount("/", h.Routes())

	// Configure TLS if enabled
	var tlsConfig *tls.Config
	if cfg.Server.EnableTLS {
		tlsCfg := tlsconfig.Config{
			CertFile: cfg.Server.CertFile,
			KeyFile:  cfg.Server.KeyFile,
		}

		var err error
		tlsConfig, err = tlsconfig.LoadTLSConfig(tlsCfg)
		if err != nil {
			log.Fatalf("Failed to load TLS configuration: %v", err)
		}

		if cfg.Server.CertFile == "" || cfg.Server.KeyFile == "" {
			log.Println("WARNING: No certificate files provided, using self-signed certificate for development")
		}
	}

	// Start server
	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	protocol := "HTTP"
	if cfg.Server.EnableTLS {
		protocol = "HTTPS"
	}
	log.Printf("Starting %s server on %s", protocol, addr)
	log.Printf("Database: %s", cfg.Database.Path)
	if cfg.RateLimit.Enabled {
		log.Printf("Rate limit: %d requests per %d seconds", cfg.RateLimit.Rate, cfg.RateLimit.Window)
	}

	server := &http.Server{
		Addr:      addr,
		Handler:   r,
		TLSConfig: tlsConfig,
	}

	// Graceful shutdown
	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, os.Interrupt, syscall.SIGTERM)
		<-sigint

		log.Println("Shutting down server...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			log.Printf("Error shutting down server: %v", err)
		}
	}()

	if cfg.Server.EnableTLS {
		if cfg.Server.CertFile != "" && cfg.Server.KeyFile != "" {
			err = server.ListenAndServeTLS(cfg.Server.CertFile, cfg.Server.KeyFile)
		} else {
			// Self-signed cert - need to use custom listener
			listener, listenErr := tls.Listen("tcp", addr, tlsConfig)
			if listenErr != nil {
				log.Fatalf("Failed to create TLS listener: %v", listenErr)
			}
			err = server.Serve(listener)
		}
	} else {
		err = server.ListenAndServe()
	}

	if err != nil && err != http.ErrServerClosed {
		log.Fatalf("Server failed: %v", err)
	}
}

// logEvent is the default event subscriber: one log line per catalog change.
func logEvent(ctx context.Context, e events.Event) {
	log.Printf("event %s at %s", e.Type, e.Timestamp.Format(time.RFC3339))
}

// randomSecret returns a hex-encoded 32-byte random secret.
func randomSecret() string {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		log.Fatalf("Failed to generate secret: %v", err)
	}
	return hex.EncodeToString(buf)
}
