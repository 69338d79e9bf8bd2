package handlers

import (
	"net/http"

	"me-platform/internal/config"
	"me-platform/internal/models"
	"me-platform/internal/workflow"
)

// ConfigHandler exposes public client configuration
type ConfigHandler struct {
	config *config.Config
}

// NewConfigHandler creates a new config handler
func NewConfigHandler(cfg *config.Config) *ConfigHandler {
	return &ConfigHandler{config: cfg}
}

// AppConfig is the configuration a frontend needs before login
type AppConfig struct {
	Name              string         `json:"name"`
	Version           string         `json:"version"`
	Environment       string         `json:"environment"`
	StrictStageReview bool           `json:"strict_stage_review"`
	ReviewStages      []models.Stage `json:"review_stages"`
}

// GetAppConfig returns the public app configuration for the frontend
// @Summary Get app configuration
// @Tags Configuration
// @Produce json
// @Success 200 {object} AppConfig
// @Router /config/app [get]
func (h *ConfigHandler) GetAppConfig(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, r, http.StatusOK, AppConfig{
		Name:              h.config.App.Name,
		Version:           h.config.App.Version,
		Environment:       h.config.App.Env,
		StrictStageReview: h.config.Workflow.StrictStage,
		ReviewStages:      workflow.ReviewStages,
	})
}
