// Пакет service — бизнес-логика File Link Gateway.
// CacheService — LRU-кэш дескрипторов файлов с TTL.
// Обёртка над hashicorp/golang-lru/v2/expirable.
package service

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/bigkaa/gofilelink/internal/domain/model"
)

// Prometheus-метрики кэша.
var (
	cacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fg_cache_hits_total",
		Help: "Общее количество попаданий в LRU-кэш дескрипторов.",
	})
	cacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fg_cache_misses_total",
		Help: "Общее количество промахов LRU-кэша дескрипторов.",
	})
)

// CacheService — LRU-кэш дескрипторов файлов с автоматическим TTL.
// Единственное разделяемое изменяемое состояние сервиса; записи
// неизменяемы, обновление — замена целиком (last-writer-wins).
type CacheService struct {
	cache *expirable.LRU[string, *model.FileDescriptor]
}

// NewCacheService создаёт LRU-кэш с указанным максимальным размером и TTL.
// maxSize — максимальное количество записей в кэше.
// ttl — время жизни записи после добавления.
func NewCacheService(maxSize int, ttl time.Duration) *CacheService {
	cache := expirable.NewLRU[string, *model.FileDescriptor](maxSize, nil, ttl)
	return &CacheService{cache: cache}
}

// Get возвращает дескриптор из кэша по fileID.
// Возвращает (дескриптор, true) при hit или (nil, false) при miss.
// Обновляет Prometheus-метрики hit/miss.
func (c *CacheService) Get(fileID string) (*model.FileDescriptor, bool) {
	val, ok := c.cache.Get(fileID)
	if ok {
		cacheHitsTotal.Inc()
		return val, true
	}
	cacheMissesTotal.Inc()
	return nil, false
}

// Set добавляет или обновляет дескриптор в кэше.
func (c *CacheService) Set(fileID string, desc *model.FileDescriptor) {
	c.cache.Add(fileID, desc)
}

// Delete удаляет запись из кэша.
func (c *CacheService) Delete(fileID string) {
	c.cache.Remove(fileID)
}

// Len возвращает текущее количество записей в кэше (для /health).
func (c *CacheService) Len() int {
	return c.cache.Len()
}
