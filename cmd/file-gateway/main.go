// main.go — точка входа File Link Gateway.
// Собирает зависимости: конфигурация, логгер, клиент шлюза хранилища,
// кэш метаданных, сервисы раздачи, HTTP-сервер.
package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/bigkaa/gofilelink/internal/api/handlers"
	"github.com/bigkaa/gofilelink/internal/api/middleware"
	"github.com/bigkaa/gofilelink/internal/config"
	"github.com/bigkaa/gofilelink/internal/links"
	"github.com/bigkaa/gofilelink/internal/server"
	"github.com/bigkaa/gofilelink/internal/service"
	"github.com/bigkaa/gofilelink/internal/upstream/botapi"
)

func main() {
	// 1. Загрузка конфигурации из переменных окружения
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}

	// 2. Настройка логгера
	logger := config.SetupLogger(cfg)
	logger.Info("File Link Gateway запускается",
		slog.String("version", config.Version),
		slog.Int("port", cfg.Port),
		slog.String("upstream", cfg.UpstreamURL),
		slog.String("base_url", cfg.BaseURL),
	)

	// Предупреждения о дефолтных значениях topologymetrics
	if cfg.DephealthEnabled && os.Getenv("FG_DEPHEALTH_GROUP") == "" {
		logger.Warn("FG_DEPHEALTH_GROUP не задана, используется значение по умолчанию",
			slog.String("default", cfg.DephealthGroup),
		)
	}

	// 3. Клиент шлюза хранилища
	store, err := botapi.New(cfg.UpstreamURL, cfg.UpstreamToken, cfg.UpstreamCACert, cfg.UpstreamTimeout, logger)
	if err != nil {
		logger.Error("Ошибка создания клиента шлюза хранилища", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 4. Кэш метаданных файлов (TTL LRU)
	cacheSvc := service.NewCacheService(cfg.CacheMaxEntries, cfg.CacheTTL)

	// 5. Сервис резолва идентификаторов
	resolverSvc := service.NewResolverService(store, cacheSvc, logger)

	// 6. Сервис потоковой раздачи содержимого
	streamSvc := service.NewStreamService(store, cfg.ChunkSize, logger)

	// 7. Подписание ссылок (опционально, FG_LINK_SECRET)
	var signer *links.Signer
	if cfg.LinkSecret != "" {
		signer = links.NewSigner(cfg.LinkSecret, cfg.LinkTokenTTL)
		logger.Info("Подписание ссылок включено",
			slog.String("token_ttl", cfg.LinkTokenTTL.String()),
		)
	}

	// 8. topologymetrics — мониторинг зависимостей (шлюз хранилища)
	ctx := context.Background()
	var dephealthSvc *service.DephealthService
	if cfg.DephealthEnabled {
		var dephealthErr error
		dephealthSvc, dephealthErr = service.NewDephealthService(
			"file-gateway",
			cfg.DephealthGroup,
			cfg.UpstreamURL,
			cfg.DephealthCheckInterval,
			cfg.DephealthIsEntry,
			logger,
		)
		if dephealthErr != nil {
			logger.Warn("topologymetrics недоступен, запуск без мониторинга зависимостей",
				slog.String("error", dephealthErr.Error()),
			)
		} else {
			if startErr := dephealthSvc.Start(ctx); startErr != nil {
				logger.Warn("Ошибка запуска topologymetrics",
					slog.String("error", startErr.Error()),
				)
			} else {
				logger.Info("topologymetrics запущен",
					slog.String("group", cfg.DephealthGroup),
					slog.String("check_interval", cfg.DephealthCheckInterval.String()),
				)
			}
		}
	}

	// 9. Health handler.
	// dephealthSvc передаётся через локальную переменную интерфейсного типа,
	// чтобы nil-указатель не превратился в non-nil интерфейс.
	var deps handlers.DependencyReporter
	if dephealthSvc != nil {
		deps = dephealthSvc
	}
	healthHandler := handlers.NewHealthHandler(cacheSvc, deps)

	// 10. API handler
	apiHandler := handlers.NewAPIHandler(
		resolverSvc,
		streamSvc,
		signer,
		healthHandler,
		cfg.BaseURL,
		cfg.MaxFileSize,
		logger,
	)

	// 11. Middleware: request id -> метрики -> логирование запросов
	middlewares := []func(http.Handler) http.Handler{
		middleware.RequestID(),
		middleware.MetricsMiddleware(),
		middleware.RequestLogger(logger),
	}

	// 12. Проверка токенов доступа на маршрутах содержимого (опционально)
	var linkAuth func(http.Handler) http.Handler
	if cfg.LinkSecret != "" {
		// 30s leeway — допуск рассинхронизации часов
		linkAuth = middleware.NewLinkAuth(cfg.LinkSecret, 30*time.Second, logger).Middleware()
	}

	// 13. HTTP-сервер
	srv := server.New(cfg, logger, apiHandler, linkAuth, middlewares...)

	// 14. Запуск сервера (блокирующий вызов с graceful shutdown)
	if err := srv.Run(); err != nil {
		logger.Error("Ошибка сервера", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 15. Graceful shutdown фоновых задач
	if dephealthSvc != nil {
		dephealthSvc.Stop()
	}

	logger.Info("File Link Gateway остановлен")
}
