// resolver.go — разрешение идентификатора файла в дескриптор.
// Pipeline: разбор <container>_<item> → LRU-кэш → шлюз хранилища →
// классификация вложения → кэширование результата.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/bigkaa/gofilelink/internal/domain/model"
	"github.com/bigkaa/gofilelink/internal/media"
	"github.com/bigkaa/gofilelink/internal/upstream"
)

// Ошибки сервисного слоя.
var (
	// ErrNotFound — файл не найден в хранилище.
	ErrNotFound = errors.New("файл не найден")
)

// Prometheus-метрики резолвера.
var (
	resolveTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fg_resolve_total",
		Help: "Общее количество разрешений идентификаторов (по результату).",
	}, []string{"status"})

	resolveDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "fg_resolve_duration_seconds",
		Help:    "Длительность разрешения идентификатора через шлюз хранилища.",
		Buckets: prometheus.DefBuckets,
	})
)

// ResolverService — разрешение идентификаторов файлов в дескрипторы.
// На каждый промах кэша выполняется ровно один запрос к хранилищу;
// одновременные промахи по одному идентификатору не схлопываются
// (результаты идентичны, записи кэша заменяются целиком).
type ResolverService struct {
	store  upstream.Store
	cache  *CacheService
	logger *slog.Logger
}

// NewResolverService создаёт сервис разрешения идентификаторов.
func NewResolverService(store upstream.Store, cache *CacheService, logger *slog.Logger) *ResolverService {
	return &ResolverService{
		store:  store,
		cache:  cache,
		logger: logger.With(slog.String("component", "resolver_service")),
	}
}

// Resolve возвращает дескриптор файла по составному идентификатору.
//
// Возвращаемые ошибки:
//   - model.ErrInvalidIdentifier — некорректный формат идентификатора
//   - ErrNotFound — элемента нет в хранилище или вид вложения не поддерживается
//   - прочие — сбой обращения к хранилищу
func (rs *ResolverService) Resolve(ctx context.Context, fileID string) (*model.FileDescriptor, error) {
	containerID, itemID, err := model.ParseFileID(fileID)
	if err != nil {
		resolveTotal.WithLabelValues("invalid_id").Inc()
		return nil, err
	}

	// Проверяем кэш
	if desc, ok := rs.cache.Get(fileID); ok {
		resolveTotal.WithLabelValues("cache_hit").Inc()
		return desc, nil
	}

	// Cache miss — запрос к хранилищу
	start := time.Now()
	item, err := rs.store.Resolve(ctx, containerID, itemID)
	resolveDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		if errors.Is(err, upstream.ErrNotFound) {
			resolveTotal.WithLabelValues("not_found").Inc()
			return nil, ErrNotFound
		}
		resolveTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("поиск элемента %s в хранилище: %w", fileID, err)
	}

	// Классификация вложения: fallback-имена, MIME и категория
	attrs := media.Classify(item.Kind, item.Name, item.MimeType, item.Locator.RemoteID)

	desc := &model.FileDescriptor{
		FileID:     fileID,
		Name:       attrs.Name,
		Size:       item.Size,
		MimeType:   attrs.MimeType,
		Category:   attrs.Category,
		Streamable: attrs.Streamable,
		Locator:    item.Locator,
	}

	// Сохраняем в кэш
	rs.cache.Set(fileID, desc)
	resolveTotal.WithLabelValues("success").Inc()

	rs.logger.Debug("Дескриптор разрешён",
		slog.String("file_id", fileID),
		slog.String("name", desc.Name),
		slog.Int64("size", desc.Size),
		slog.String("category", string(desc.Category)),
	)

	return desc, nil
}
