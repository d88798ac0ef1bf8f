package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"
	"github.com/snappy-loop/seacreatures/internal/models"
	"github.com/snappy-loop/seacreatures/internal/services"
)

// creatureService is the subset of services.CreatureService used by Handler.
type creatureService interface {
	Submit(ctx context.Context, idea string, p services.Presenter) *models.Submission
}

// Handler contains all HTTP handlers
type Handler struct {
	creatures  creatureService
	creds      models.Credentials
	textModel  string
	imageModel string
}

// NewHandler creates a new handler. textModel and imageModel are only shown in the page footer.
func NewHandler(creatures creatureService, creds models.Credentials, textModel, imageModel string) *Handler {
	return &Handler{
		creatures:  creatures,
		creds:      creds,
		textModel:  textModel,
		imageModel: imageModel,
	}
}

// Health handles GET /healthz
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, models.HealthResponse{
		Status:   "ok",
		TextKey:  h.creds.TextAPIKey != "",
		ImageKey: h.creds.ImageAPIKey != "",
	})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
