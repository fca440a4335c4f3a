package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"screen_ai_server/config"
	"screen_ai_server/internal/ai"
	"screen_ai_server/internal/api"
	"screen_ai_server/internal/auth"
	"screen_ai_server/internal/ratelimit"
	"screen_ai_server/internal/repository"
	"screen_ai_server/internal/service"
)

func main() {
	// Load .env before viper so local overrides are visible.
	err := godotenv.Load()
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("Warning: Error loading .env file: %v", err)
		} else {
			log.Println("Info: .env file not found, relying on system environment variables.")
		}
	} else {
		log.Println("Info: Loaded environment variables from .env file.")
	}

	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("Cannot load config: %v", err)
	}

	// --- Dependency Initialization ---

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Could not open database: %v", err)
	}
	defer db.Close()

	pingCtx, pingCancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := db.PingContext(pingCtx); err != nil {
		pingCancel()
		log.Fatalf("Database connectivity verification failed: %v", err)
	}
	pingCancel()
	log.Println("Database connection established")

	authClient, err := auth.InitializeFirebase(cfg.FirebaseCredentialsPath)
	if err != nil {
		log.Fatalf("Could not initialize Firebase auth: %v", err)
	}

	store := repository.New(db)
	completer := ai.NewOpenAICompleter(cfg.OpenAIKey, cfg.OpenAIModel)
	generator := ai.NewGenerator(completer, time.Duration(cfg.GenerationTimeoutSeconds)*time.Second)

	generationService := service.NewGenerationService(store, generator)
	projectService := service.NewProjectService(store)

	limiter := ratelimit.New(cfg.RateLimitPerMinute)
	defer limiter.Stop()

	apiHandler := api.NewAPIHandler(generationService, projectService)

	// --- API Server ---

	appEnv := os.Getenv("APP_ENV")
	if appEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
		log.Println("Running in Gin Debug Mode")
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = strings.Split(cfg.CORSAllowedOrigins, ",")
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	router.Use(cors.New(corsConfig))

	api.RegisterRoutes(router, apiHandler, authClient, limiter)

	server := &http.Server{
		Addr:    cfg.ServerAddress,
		Handler: router,
		// Generation requests hold the connection for the whole model call.
		ReadTimeout:  15 * time.Second,
		WriteTimeout: time.Duration(cfg.GenerationTimeoutSeconds+30) * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Starting API server on %s\n", cfg.ServerAddress)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("API server listen error: %s\n", err)
		}
		log.Println("API server has stopped listening.")
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Printf("Received signal: %s. Shutting down server...", sig)

	shutdownCtx, serverCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer serverCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("API server forced shutdown error: %v", err)
	} else {
		log.Println("API server gracefully stopped.")
	}

	log.Println("Application exiting.")
}
