// Пакет server — HTTP-сервер File Link Gateway с graceful shutdown.
// Без TLS — HTTP внутри кластера, TLS termination на reverse proxy.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"

	"github.com/bigkaa/gofilelink/internal/api/handlers"
	"github.com/bigkaa/gofilelink/internal/config"
)

// Server — HTTP-сервер File Link Gateway.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
	cfg        *config.Config
}

// New создаёт новый HTTP-сервер с настроенными routes и middleware.
// linkAuth — middleware проверки токена доступа для маршрутов содержимого,
// nil — раздача публичная.
// middlewares — дополнительные middleware (request id, metrics, logging),
// добавляются в порядке переданного среза.
func New(cfg *config.Config, logger *slog.Logger, handler *handlers.APIHandler, linkAuth func(http.Handler) http.Handler, middlewares ...func(http.Handler) http.Handler) *Server {
	router := chi.NewRouter()

	// Применяем переданные middleware
	for _, mw := range middlewares {
		router.Use(mw)
	}

	registerRoutes(router, handler, linkAuth)

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	return &Server{
		httpServer: srv,
		logger:     logger,
		cfg:        cfg,
	}
}

// registerRoutes регистрирует маршруты API.
// Маршруты содержимого поддерживают GET и HEAD.
// linkAuth подключается через With после сопоставления маршрута,
// чтобы chi.URLParam был доступен внутри middleware.
func registerRoutes(router chi.Router, h *handlers.APIHandler, linkAuth func(http.Handler) http.Handler) {
	// Служебные маршруты — всегда публичные
	router.Get("/", h.Health)
	router.Get("/health", h.Health)
	router.Get("/metrics", h.GetMetrics)

	// Метаданные файла — публичные, в ответе подписанные ссылки
	router.Get("/info/{fileID}", h.FileInfo)

	// Маршруты содержимого
	content := router
	if linkAuth != nil {
		content = router.With(linkAuth)
	}

	content.Get("/stream/{fileID}", h.StreamRedirect)
	content.Head("/stream/{fileID}", h.StreamRedirect)
	content.Get("/stream/{fileID}/{filename}", h.StreamFile)
	content.Head("/stream/{fileID}/{filename}", h.StreamFile)
	content.Get("/download/{fileID}", h.DownloadRedirect)
	content.Head("/download/{fileID}", h.DownloadRedirect)
	content.Get("/download/{fileID}/{filename}", h.DownloadFile)
	content.Head("/download/{fileID}/{filename}", h.DownloadFile)
	content.Get("/direct/{fileID}/{filename}", h.DirectLink)
	content.Head("/direct/{fileID}/{filename}", h.DirectLink)
}

// Run запускает сервер и ожидает сигнала завершения (SIGINT, SIGTERM).
// При получении сигнала выполняется graceful shutdown.
func (s *Server) Run() error {
	// Канал для ошибок сервера
	errCh := make(chan error, 1)

	go func() {
		s.logger.Info("HTTP-сервер запущен",
			slog.String("addr", s.httpServer.Addr),
		)

		err := s.httpServer.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	// Ожидание сигнала завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		s.logger.Info("Получен сигнал завершения", slog.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("ошибка HTTP-сервера: %w", err)
		}
	}

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	s.logger.Info("Выполняется graceful shutdown...")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("ошибка при graceful shutdown: %w", err)
	}

	s.logger.Info("HTTP-сервер остановлен")
	return nil
}
