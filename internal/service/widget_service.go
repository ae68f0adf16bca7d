package service

import (
	"context"

	"github.com/amax-bi/anna-gateway/internal/config"
)

// WidgetConfigResponse is the bootstrap payload for the embedded widget
type WidgetConfigResponse struct {
	AssistantName  string   `json:"assistant_name"`
	WelcomeMessage string   `json:"welcome_message"`
	Placeholder    string   `json:"placeholder"`
	PrimaryColor   string   `json:"primary_color"`
	QuickQuestions []string `json:"quick_questions"`
	BaseURL        string   `json:"base_url"`
}

// WidgetService handles widget bootstrap operations
type WidgetService struct {
	cfg *config.Config
}

// NewWidgetService creates a new widget service
func NewWidgetService(cfg *config.Config) *WidgetService {
	return &WidgetService{cfg: cfg}
}

// GetWidgetConfig returns the widget configuration
func (s *WidgetService) GetWidgetConfig(ctx context.Context) *WidgetConfigResponse {
	return &WidgetConfigResponse{
		AssistantName:  s.cfg.Widget.AssistantName,
		WelcomeMessage: s.cfg.Widget.WelcomeMessage,
		Placeholder:    s.cfg.Widget.Placeholder,
		PrimaryColor:   s.cfg.Widget.PrimaryColor,
		QuickQuestions: s.cfg.Widget.QuickQuestions,
		BaseURL:        s.cfg.Server.BaseURL,
	}
}
