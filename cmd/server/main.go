package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/omniboard/backend/internal/application/services"
	"github.com/omniboard/backend/internal/infrastructure/crmapi"
	"github.com/omniboard/backend/internal/interfaces/middleware"
	"github.com/omniboard/backend/internal/interfaces/rest"
	"github.com/omniboard/backend/pkg/constants"
)

func main() {
	// Load .env if present; real environments set variables directly
	_ = godotenv.Load()

	port := os.Getenv(constants.EnvPort)
	if port == "" {
		port = constants.DefaultPort
	}

	// Platform API client (CRUD hook, AI enrichment, option collections)
	apiClient := crmapi.NewClientFromEnv()
	log.Printf("🔌 Platform API: %s", apiClient.BaseURL)

	// Initialize service manager
	svcMgr := services.NewServiceManager(apiClient, sessionTTL())
	log.Println("🔧 Service manager initialized")

	// Create Gin router
	router := gin.Default()

	// CORS middleware - Allow credentials from any origin
	router.Use(middleware.Cors())

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
			"server": "golang",
		})
	})

	// Initialize handlers
	metadataHandler := rest.NewMetadataHandler()
	formHandler := rest.NewFormHandler(svcMgr)
	detailHandler := rest.NewDetailHandler(svcMgr)

	// Initialize middleware
	requireAuth := middleware.RequireAuth()

	// API routes
	api := router.Group("/api")
	{
		// Entity metadata (schemas + detail layouts)
		metadata := api.Group("/metadata")
		metadata.Use(requireAuth)
		{
			metadata.GET("/entities", metadataHandler.GetEntityTypes)
			metadata.GET("/entities/:type", metadataHandler.GetEntitySchema)
			metadata.GET("/layouts/:type", metadataHandler.GetDetailLayout)
		}

		// Form sessions
		forms := api.Group("/forms")
		forms.Use(requireAuth)
		{
			forms.POST("/open", formHandler.Open)
			forms.GET("/:sessionId", formHandler.Get)
			forms.PATCH("/:sessionId/field", formHandler.SetField)
			forms.POST("/:sessionId/submit", formHandler.Submit)
			forms.DELETE("/:sessionId", formHandler.Close)
		}

		// Detail views (enrichment + line items)
		details := api.Group("/details")
		details.Use(requireAuth)
		{
			details.POST("/open", detailHandler.Open)
			details.GET("/:viewId/enrichment", detailHandler.GetEnrichment)
			details.POST("/:viewId/refresh", detailHandler.Refresh)
			details.POST("/:viewId/email", detailHandler.GenerateEmail)
			details.GET("/:viewId/items", detailHandler.GetLineItems)
			details.POST("/:viewId/items", detailHandler.AddLineItem)
			details.PATCH("/:viewId/items/:index", detailHandler.UpdateLineItem)
			details.DELETE("/:viewId/items/:index", detailHandler.RemoveLineItem)
			details.POST("/:viewId/items/save", detailHandler.SaveLineItems)
			details.DELETE("/:viewId", detailHandler.Close)
		}
	}

	// Start the session janitor
	sweepSpec := os.Getenv(constants.EnvSessionSweepCron)
	if sweepSpec == "" {
		sweepSpec = constants.DefaultSessionSweepCron
	}
	if err := svcMgr.StartJanitor(sweepSpec); err != nil {
		log.Fatalf("Failed to start session janitor: %v", err)
	}
	log.Printf("🧹 Session janitor started (%s)", sweepSpec)

	// Start server
	log.Println("🚀 OmniBoard Form & Detail Engine Started")
	log.Printf("📍 Server:        http://localhost:%s", port)
	log.Printf("📊 Metadata API:  http://localhost:%s/api/metadata", port)
	log.Printf("📝 Forms API:     http://localhost:%s/api/forms", port)
	log.Printf("🔍 Details API:   http://localhost:%s/api/details", port)
	log.Printf("💚 Health check:  http://localhost:%s/health", port)

	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	svcMgr.StopJanitor()
	log.Println("🛑 Session janitor stopped")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown: ", err)
	}

	log.Println("Server exiting")
}

// sessionTTL reads the idle session lifetime from the environment
func sessionTTL() time.Duration {
	minutes := constants.DefaultSessionTTLMin
	if raw := os.Getenv(constants.EnvSessionTTL); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			minutes = parsed
		}
	}
	return time.Duration(minutes) * time.Minute
}
