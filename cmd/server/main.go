package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"immosearch/internal/auth"
	"immosearch/internal/config"
	"immosearch/internal/handler"
	"immosearch/internal/repository"
	"immosearch/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	log.Printf("ImmoSearch Conversational Search")
	log.Printf("Version: %s", Version)
	log.Printf("Build Time: %s", BuildTime)
	log.Printf("Git Commit: %s", GitCommit)
	log.Println("")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Set Gin mode
	gin.SetMode(cfg.Server.GinMode)

	// Initialize session store
	sessions, err := repository.NewSessionRepository(
		cfg.GetPostgreSQLDSN(),
		cfg.PostgreSQL.MaxConnections,
		cfg.PostgreSQL.MaxIdleConnections,
	)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer sessions.Close()

	if err := sessions.EnsureSchema(context.Background()); err != nil {
		log.Fatalf("Failed to ensure session schema: %v", err)
	}
	log.Println("✅ Connected to PostgreSQL session store")

	// Initialize language model client
	ollamaClient := service.NewOllamaClient(&cfg.Ollama)
	log.Printf("✅ Ollama client initialized")
	log.Printf("   - URL: %s", cfg.Ollama.URL)
	log.Printf("   - Model: %s", cfg.Ollama.Model)
	log.Printf("   - Temperature: %.2f", cfg.Ollama.Temperature)

	// Initialize services
	extractor := service.NewIntentExtractor(ollamaClient)
	builder := service.NewQueryBuilder(cfg.OpenSearch.EmbeddingModelID, cfg.OpenSearch.NeuralK)
	engine := service.NewOpenSearchClient(&cfg.OpenSearch)
	searchService := service.NewSearchService(sessions, extractor, builder, engine)

	log.Printf("✅ Services initialized")
	log.Printf("   - Search index: %s", cfg.OpenSearch.Index)

	// Initialize authentication
	keyCache := auth.NewKeyCache(
		cfg.GetKeycloakJWKSURL(),
		time.Duration(cfg.Auth.JWKSCacheTTL)*time.Second,
	)
	if cfg.Auth.Enabled {
		log.Printf("✅ Keycloak authentication enabled")
		log.Printf("   - Issuer: %s", cfg.GetKeycloakIssuer())
	} else {
		log.Println("⚠️  Authentication is disabled - all requests run as anonymous")
	}

	// Initialize handlers
	searchHandler := handler.NewSearchHandler(searchService, &cfg.Search)
	sessionHandler := handler.NewSessionHandler(sessions)

	// Setup Gin router
	router := gin.Default()

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.Server.AllowedOrigins}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Content-Type", "Authorization"}
	router.Use(cors.New(corsConfig))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":     "healthy",
			"service":    "immosearch",
			"version":    Version,
			"build_time": BuildTime,
			"git_commit": GitCommit,
		})
	})

	// API routes
	apiV1 := router.Group("/api/v1")
	apiV1.Use(auth.Middleware(cfg, keyCache))
	{
		apiV1.POST("/search", searchHandler.Search)
		apiV1.GET("/me", searchHandler.Me)

		apiV1.GET("/sessions", sessionHandler.List)
		apiV1.GET("/session/:id", sessionHandler.Get)
		apiV1.GET("/session/:id/history", sessionHandler.History)
		apiV1.POST("/session/:id/reset", sessionHandler.Reset)
		apiV1.DELETE("/session/:id", sessionHandler.Delete)
	}

	// Start server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		log.Printf("🚀 Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Forced shutdown: %v", err)
	}
	log.Println("✅ Server stopped")
}
