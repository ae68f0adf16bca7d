package widget

import (
	"errors"
	"net/http"

	"github.com/amax-bi/anna-gateway/internal/domain"
	"github.com/amax-bi/anna-gateway/internal/relay"
	"github.com/amax-bi/anna-gateway/internal/service"
	"github.com/gin-gonic/gin"
)

// Handler handles widget API requests
type Handler struct {
	chatService   *service.ChatService
	widgetService *service.WidgetService
}

// NewHandler creates a new widget handler
func NewHandler(chatService *service.ChatService, widgetService *service.WidgetService) *Handler {
	return &Handler{chatService: chatService, widgetService: widgetService}
}

// RegisterRoutes registers widget routes
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/widget/config", h.GetConfig)
	r.POST("/chat", h.Chat)
	r.GET("/chat/history", h.History)
}

// GetConfig returns the widget bootstrap configuration
func (h *Handler) GetConfig(c *gin.Context) {
	c.JSON(http.StatusOK, h.widgetService.GetWidgetConfig(c.Request.Context()))
}

// Chat handles a chat message. Upstream failures still return 200 with an
// inline fallback; only envelope and authorization failures get error codes.
func (h *Handler) Chat(c *gin.Context) {
	var req domain.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"message": "Message is required and must be a string",
		})
		return
	}

	meta := relay.NewMetadata(
		c.ClientIP(),
		c.GetHeader("X-Forwarded-For"),
		c.GetHeader("User-Agent"),
	)

	resp, err := h.chatService.Chat(c.Request.Context(), &req, meta)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUnauthorized):
			c.JSON(http.StatusForbidden, gin.H{
				"error":   "Access denied",
				"message": "AMAX domain required for access",
			})
		case errors.Is(err, domain.ErrEmptyMessage):
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "Invalid request",
				"message": "Message is required and must be a string",
			})
		case errors.Is(err, domain.ErrMessageTooLong):
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "Message too long",
				"message": "Message must be less than 2000 characters",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		}
		return
	}

	c.JSON(http.StatusOK, resp)
}

// History returns the retained turns for a thread
func (h *Handler) History(c *gin.Context) {
	threadID := c.Query("threadId")
	if threadID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "threadId is required"})
		return
	}

	turns, err := h.chatService.History(c.Request.Context(), threadID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	if turns == nil {
		turns = []*domain.Turn{}
	}

	c.JSON(http.StatusOK, gin.H{"threadId": threadID, "turns": turns})
}
