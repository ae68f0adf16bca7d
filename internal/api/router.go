package api

import (
	"net/http"

	"github.com/amax-bi/anna-gateway/internal/api/middleware"
	"github.com/amax-bi/anna-gateway/internal/api/widget"
	"github.com/amax-bi/anna-gateway/internal/config"
	"github.com/amax-bi/anna-gateway/internal/service"
	"github.com/gin-gonic/gin"
)

// RouterConfig holds configuration for the router
type RouterConfig struct {
	AllowOrigins []string
	RateLimit    config.RateLimitConfig
}

// SetupRouter sets up the Gin router
func SetupRouter(
	chatService *service.ChatService,
	widgetService *service.WidgetService,
	cfg RouterConfig,
) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.AllowOrigins))

	// Non-POST against the chat endpoint gets an explicit 405, matching the
	// contract the widget was written against.
	r.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{
			"error":   "Method not allowed",
			"message": "This endpoint only accepts POST requests",
		})
	})
	r.HandleMethodNotAllowed = true

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Widget API
	widgetHandler := widget.NewHandler(chatService, widgetService)
	apiGroup := r.Group("/api")
	if cfg.RateLimit.Enabled {
		apiGroup.Use(middleware.RateLimit(middleware.NewRateLimiter(cfg.RateLimit.RequestsPerHour)))
	}
	widgetHandler.RegisterRoutes(apiGroup)

	return r
}
