// handler.go — основной обработчик API File Link Gateway.
// Объединяет health и файловые обработчики, делегируя запросы в сервисный слой.
package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/bigkaa/gofilelink/internal/links"
	"github.com/bigkaa/gofilelink/internal/service"
)

// APIHandler — основной обработчик API File Link Gateway.
type APIHandler struct {
	resolver    *service.ResolverService
	streamer    *service.StreamService
	signer      *links.Signer
	health      *HealthHandler
	baseURL     string
	maxFileSize int64
	logger      *slog.Logger
}

// NewAPIHandler создаёт основной обработчик API.
// signer может быть nil — тогда ссылки выдаются без токенов доступа.
// maxFileSize ограничивает размер раздаваемых файлов (0 — без лимита).
func NewAPIHandler(
	resolver *service.ResolverService,
	streamer *service.StreamService,
	signer *links.Signer,
	health *HealthHandler,
	baseURL string,
	maxFileSize int64,
	logger *slog.Logger,
) *APIHandler {
	return &APIHandler{
		resolver:    resolver,
		streamer:    streamer,
		signer:      signer,
		health:      health,
		baseURL:     baseURL,
		maxFileSize: maxFileSize,
		logger:      logger.With(slog.String("component", "api_handler")),
	}
}

// --- Health endpoints (делегируются в HealthHandler) ---

// Health — состояние сервиса ("/" и "/health").
func (h *APIHandler) Health(w http.ResponseWriter, r *http.Request) {
	h.health.Health(w, r)
}

// GetMetrics — Prometheus метрики.
func (h *APIHandler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	h.health.GetMetrics(w, r)
}

// --- Вспомогательные функции ---

// writeJSON записывает JSON-ответ с указанным статусом.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
