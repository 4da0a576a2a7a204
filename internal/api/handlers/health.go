// health.go — обработчики health endpoints File Link Gateway.
// / и /health — состояние сервиса (процесс жив, кэш, зависимости)
// /metrics — Prometheus метрики
package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bigkaa/gofilelink/internal/config"
	"github.com/bigkaa/gofilelink/internal/service"
)

// DependencyReporter — интерфейс отчёта о состоянии зависимостей.
type DependencyReporter interface {
	// Health возвращает состояние зависимостей: имя -> true если ok.
	Health() map[string]bool
}

// HealthHandler — обработчик health endpoints.
type HealthHandler struct {
	cache       *service.CacheService
	deps        DependencyReporter
	start       time.Time
	promHandler http.Handler
}

// NewHealthHandler создаёт обработчик health endpoints.
// deps — отчёт о зависимостях (может быть nil — раздел dependencies не выводится).
func NewHealthHandler(cache *service.CacheService, deps DependencyReporter) *HealthHandler {
	return &HealthHandler{
		cache:       cache,
		deps:        deps,
		start:       time.Now(),
		promHandler: promhttp.Handler(),
	}
}

// healthResponse — ответ health endpoint.
type healthResponse struct {
	Status       string            `json:"status"`
	Service      string            `json:"service"`
	Version      string            `json:"version"`
	Timestamp    string            `json:"timestamp"`
	Uptime       string            `json:"uptime"`
	CacheEntries int               `json:"cache_entries"`
	Dependencies map[string]string `json:"dependencies,omitempty"`
}

// Health — состояние сервиса ("/" и "/health").
// Возвращает 200 пока процесс жив; состояние зависимостей
// отражается в теле ответа, не в статус-коде.
func (h *HealthHandler) Health(w http.ResponseWriter, _ *http.Request) {
	resp := healthResponse{
		Status:       "healthy",
		Service:      "file-gateway",
		Version:      config.Version,
		Timestamp:    time.Now().UTC().Format(time.RFC3339),
		Uptime:       time.Since(h.start).Round(time.Second).String(),
		CacheEntries: h.cache.Len(),
	}

	if h.deps != nil {
		deps := h.deps.Health()
		resp.Dependencies = make(map[string]string, len(deps))
		for name, ok := range deps {
			status := "ok"
			if !ok {
				status = statusFail
			}
			resp.Dependencies[name] = status
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(resp)
}

// GetMetrics — Prometheus метрики.
func (h *HealthHandler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	h.promHandler.ServeHTTP(w, r)
}

// Константы статусов health check.
const statusFail = "fail"
